package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"bundle-resolver/internal/app"
)

func newManifestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "manifest <bundle>",
		Short: "Print the parsed manifest of a bundle folder or jar",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runManifest(cmd.Context(), args[0])
		},
	}
}

func runManifest(ctx context.Context, path string) error {
	service := newAppService()
	result, err := service.Manifest(ctx, app.ManifestRequest{Path: path})
	if err != nil {
		return err
	}
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(result.Bundle); err != nil {
		return err
	}
	return encoder.Close()
}
