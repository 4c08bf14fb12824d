package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type resolveOptions struct {
	runOptions
	Product string
	Bundles []string
}

func newResolveCommand() *cobra.Command {
	opts := resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Resolve the bundles of a product and write the run outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(cmd.Context(), cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Product, "product", "", "Product descriptor path")
	cmd.Flags().StringSliceVar(&opts.Bundles, "bundle", nil, "Extra bundle references, e.g. 'core.lib;bundle-version=\"[1.0,2.0)\"'")
	bindRunFlags(cmd, &opts.runOptions)

	_ = viper.BindPFlag("product", cmd.Flags().Lookup("product"))
	_ = viper.BindPFlag("bundles", cmd.Flags().Lookup("bundle"))
	return cmd
}

func runResolve(ctx context.Context, cmd *cobra.Command, opts resolveOptions) error {
	req := runRequest(cmd, opts.runOptions)
	req.ProductPath = resolveString(cmd, opts.Product, "product", "product")
	req.Bundles = resolveStrings(cmd, opts.Bundles, "bundles", "bundle")

	service := newAppService()
	result, err := service.Resolve(ctx, req)
	if err != nil {
		return err
	}
	printResult(result.Bundles, result.Unresolved, result.OutputDir)
	return nil
}

func printResult(bundles int, unresolved []string, output string) {
	fmt.Printf("resolved: %d bundles into %s\n", bundles, output)
	for _, name := range unresolved {
		fmt.Printf("unresolved: %s\n", name)
	}
}
