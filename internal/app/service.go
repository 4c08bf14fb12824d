package app

import (
	"github.com/google/uuid"

	"bundle-resolver/internal/adapters"
	"bundle-resolver/internal/ports"
)

type Service struct {
	Manifests ports.ManifestSourcePort
	Products  ports.DescriptorReaderPort
	Features  ports.DescriptorReaderPort
	Renderer  ports.GraphRendererPort
	NewRunID  func() string
}

func NewService() Service {
	return Service{
		Manifests: adapters.NewManifestFileAdapter(),
		Products:  adapters.NewProductXMLAdapter(),
		Features:  adapters.NewFeatureXMLAdapter(),
		Renderer:  adapters.NewGraphvizRendererAdapter(),
		NewRunID:  uuid.NewString,
	}
}
