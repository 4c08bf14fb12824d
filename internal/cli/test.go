package cli

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bundle-resolver/internal/app"
)

type testOptions struct {
	runOptions
	Libraries []string
	Bundles   []string
}

func newTestCommand() *cobra.Command {
	opts := testOptions{}
	cmd := &cobra.Command{
		Use:   "test",
		Short: "Resolve test libraries and test bundle directories",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTest(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Libraries, "test-library", nil, "Test library bundle names")
	cmd.Flags().StringSliceVar(&opts.Bundles, "test-bundles", nil, "Directories holding test bundles")
	bindRunFlags(cmd, &opts.runOptions)

	_ = viper.BindPFlag("test_libraries", cmd.Flags().Lookup("test-library"))
	_ = viper.BindPFlag("test_bundles", cmd.Flags().Lookup("test-bundles"))
	return cmd
}

func runTest(ctx context.Context, cmd *cobra.Command, opts testOptions) error {
	service := newAppService()
	result, err := service.ResolveTests(ctx, app.TestRequest{
		ResolveRequest: runRequest(cmd, opts.runOptions),
		TestLibraries:  resolveStrings(cmd, opts.Libraries, "test_libraries", "test-library"),
		TestBundles:    resolveStrings(cmd, opts.Bundles, "test_bundles", "test-bundles"),
	})
	if err != nil {
		return err
	}
	printResult(result.Bundles, result.Unresolved, result.OutputDir)
	return nil
}
