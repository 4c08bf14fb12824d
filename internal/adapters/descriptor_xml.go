package adapters

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"bundle-resolver/internal/ports"
	"bundle-resolver/internal/types"
)

type platformAttrs struct {
	OS   string `xml:"os,attr"`
	WS   string `xml:"ws,attr"`
	Arch string `xml:"arch,attr"`
}

func (p platformAttrs) filter() types.PlatformFilter {
	return types.PlatformFilter{OS: p.OS, WS: p.WS, Arch: p.Arch}
}

type productXML struct {
	ID       string              `xml:"id,attr"`
	UID      string              `xml:"uid,attr"`
	Version  string              `xml:"version,attr"`
	Plugins  []descriptorPlugin  `xml:"plugins>plugin"`
	Features []descriptorFeature `xml:"features>feature"`
	Configs  []descriptorPlugin  `xml:"configurations>plugin"`
}

type featureXML struct {
	ID       string              `xml:"id,attr"`
	Version  string              `xml:"version,attr"`
	Plugins  []descriptorPlugin  `xml:"plugin"`
	Includes []descriptorFeature `xml:"includes"`
	Imports  []featureImport     `xml:"requires>import"`
}

type descriptorPlugin struct {
	platformAttrs
	ID         string `xml:"id,attr"`
	Version    string `xml:"version,attr"`
	Fragment   string `xml:"fragment,attr"`
	StartLevel string `xml:"startLevel,attr"`
}

type descriptorFeature struct {
	platformAttrs
	ID      string `xml:"id,attr"`
	Version string `xml:"version,attr"`
}

type featureImport struct {
	platformAttrs
	Plugin  string `xml:"plugin,attr"`
	Feature string `xml:"feature,attr"`
	Version string `xml:"version,attr"`
}

// ProductXMLAdapter reads Eclipse .product files. Start levels come from
// the configurations section; configured plugins that are not listed are
// added as entries of their own.
type ProductXMLAdapter struct{}

func NewProductXMLAdapter() ProductXMLAdapter {
	return ProductXMLAdapter{}
}

func (a ProductXMLAdapter) Kind() types.DescriptorKind {
	return types.DescriptorKindProduct
}

func (a ProductXMLAdapter) Read(path string) (types.Descriptor, error) {
	var product productXML
	if err := readXML(path, "product", &product); err != nil {
		return types.Descriptor{}, err
	}
	id := strings.TrimSpace(product.ID)
	if id == "" {
		id = strings.TrimSpace(product.UID)
	}
	descriptor := types.Descriptor{
		Kind:    types.DescriptorKindProduct,
		ID:      id,
		Version: strings.TrimSpace(product.Version),
	}

	levels := map[string]*int{}
	var configured []descriptorPlugin
	for _, config := range product.Configs {
		level, err := parseStartLevel(config.StartLevel)
		if err != nil {
			return types.Descriptor{}, descriptorError(path, err)
		}
		levels[strings.TrimSpace(config.ID)] = level
		configured = append(configured, config)
	}

	listed := map[string]struct{}{}
	for _, plugin := range product.Plugins {
		entry, ok, err := pluginEntry(plugin)
		if err != nil {
			return types.Descriptor{}, descriptorError(path, err)
		}
		if !ok {
			continue
		}
		if entry.StartLevel == nil {
			entry.StartLevel = levels[entry.ID]
		}
		listed[entry.ID] = struct{}{}
		descriptor.Plugins = append(descriptor.Plugins, entry)
	}
	for _, config := range configured {
		entry, ok, _ := pluginEntry(config)
		if !ok {
			continue
		}
		if _, dup := listed[entry.ID]; dup {
			continue
		}
		listed[entry.ID] = struct{}{}
		descriptor.Plugins = append(descriptor.Plugins, entry)
	}
	for _, feature := range product.Features {
		if entry, ok := featureEntry(feature); ok {
			descriptor.Features = append(descriptor.Features, entry)
		}
	}
	return descriptor, nil
}

// FeatureXMLAdapter reads feature.xml descriptors: plugins, included
// features and required imports.
type FeatureXMLAdapter struct{}

func NewFeatureXMLAdapter() FeatureXMLAdapter {
	return FeatureXMLAdapter{}
}

func (a FeatureXMLAdapter) Kind() types.DescriptorKind {
	return types.DescriptorKindFeature
}

func (a FeatureXMLAdapter) Read(path string) (types.Descriptor, error) {
	var feature featureXML
	if err := readXML(path, "feature", &feature); err != nil {
		return types.Descriptor{}, err
	}
	descriptor := types.Descriptor{
		Kind:    types.DescriptorKindFeature,
		ID:      strings.TrimSpace(feature.ID),
		Version: strings.TrimSpace(feature.Version),
	}
	for _, plugin := range feature.Plugins {
		entry, ok, err := pluginEntry(plugin)
		if err != nil {
			return types.Descriptor{}, descriptorError(path, err)
		}
		if ok {
			descriptor.Plugins = append(descriptor.Plugins, entry)
		}
	}
	for _, imp := range feature.Imports {
		switch {
		case strings.TrimSpace(imp.Plugin) != "":
			descriptor.Plugins = append(descriptor.Plugins, types.PluginEntry{
				ID:       strings.TrimSpace(imp.Plugin),
				Version:  strings.TrimSpace(imp.Version),
				Platform: imp.filter(),
			})
		case strings.TrimSpace(imp.Feature) != "":
			descriptor.Features = append(descriptor.Features, types.FeatureEntry{
				ID:       strings.TrimSpace(imp.Feature),
				Version:  strings.TrimSpace(imp.Version),
				Platform: imp.filter(),
			})
		}
	}
	for _, included := range feature.Includes {
		if entry, ok := featureEntry(included); ok {
			descriptor.Features = append(descriptor.Features, entry)
		}
	}
	return descriptor, nil
}

func readXML(path string, root string, target any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeNotFound).
			WithMsg(fmt.Sprintf("failed to read %s descriptor", root)).
			WithCause(err)
	}
	if err := xml.Unmarshal(content, target); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg(fmt.Sprintf("failed to parse %s descriptor", root)).
			WithCause(err)
	}
	return nil
}

func descriptorError(path string, err error) error {
	return errbuilder.New().
		WithCode(errbuilder.CodeInvalidArgument).
		WithMsg(fmt.Sprintf("invalid descriptor %s", path)).
		WithCause(err)
}

func pluginEntry(plugin descriptorPlugin) (types.PluginEntry, bool, error) {
	id := strings.TrimSpace(plugin.ID)
	if id == "" {
		return types.PluginEntry{}, false, nil
	}
	level, err := parseStartLevel(plugin.StartLevel)
	if err != nil {
		return types.PluginEntry{}, false, err
	}
	return types.PluginEntry{
		ID:         id,
		Version:    strings.TrimSpace(plugin.Version),
		StartLevel: level,
		Fragment:   strings.EqualFold(strings.TrimSpace(plugin.Fragment), "true"),
		Platform:   plugin.filter(),
	}, true, nil
}

func featureEntry(feature descriptorFeature) (types.FeatureEntry, bool) {
	id := strings.TrimSpace(feature.ID)
	if id == "" {
		return types.FeatureEntry{}, false
	}
	return types.FeatureEntry{
		ID:       id,
		Version:  strings.TrimSpace(feature.Version),
		Platform: feature.filter(),
	}, true
}

func parseStartLevel(value string) (*int, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	level, err := strconv.Atoi(trimmed)
	if err != nil {
		return nil, fmt.Errorf("invalid startLevel %q: %w", trimmed, err)
	}
	return &level, nil
}

var _ ports.DescriptorReaderPort = ProductXMLAdapter{}
var _ ports.DescriptorReaderPort = FeatureXMLAdapter{}
