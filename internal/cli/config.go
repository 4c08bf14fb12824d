package cli

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"bundle-resolver/internal/adapters"
	"bundle-resolver/internal/app"
)

// runOptions are the flags shared by every command that performs a run.
type runOptions struct {
	Plugins          []string
	Features         []string
	Catalogs         []string
	CacheDir         string
	OutputDir        string
	Workers          int
	Exclude          []string
	PreferOlder      []string
	OS               string
	WS               string
	Arch             string
	GraphSVG         bool
	MetricsFile      string
	HTTPTimeoutSec   int
	HTTPRetries      int
	HTTPRetryDelayMs int
	CatalogUser      string
	CatalogAPIKey    string
}

func bindRunFlags(cmd *cobra.Command, opts *runOptions) {
	cmd.Flags().StringSliceVar(&opts.Plugins, "plugins", nil, "Plugin directories, scanned in order")
	cmd.Flags().StringSliceVar(&opts.Features, "features", nil, "Feature directories")
	cmd.Flags().StringSliceVar(&opts.Catalogs, "catalog", nil, "Repository catalog paths or URLs")
	cmd.Flags().StringVar(&opts.CacheDir, "cache-dir", "", "Download cache directory")
	cmd.Flags().StringVar(&opts.OutputDir, "output", "out", "Output directory")
	cmd.Flags().IntVar(&opts.Workers, "workers", 4, "Parallel top-level resolutions")
	cmd.Flags().StringSliceVar(&opts.Exclude, "exclude", nil, "Bundle names or patterns to skip")
	cmd.Flags().StringSliceVar(&opts.PreferOlder, "prefer-older", nil, "Bundles resolved to their oldest remote version")
	cmd.Flags().StringVar(&opts.OS, "os", "", "Target operating system")
	cmd.Flags().StringVar(&opts.WS, "ws", "", "Target windowing system")
	cmd.Flags().StringVar(&opts.Arch, "arch", "", "Target architecture")
	cmd.Flags().BoolVar(&opts.GraphSVG, "graph-svg", false, "Render the dependency graph to SVG")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write prometheus metrics to this textfile")
	cmd.Flags().IntVar(&opts.HTTPTimeoutSec, "http-timeout", 30, "Catalog HTTP timeout in seconds")
	cmd.Flags().IntVar(&opts.HTTPRetries, "http-retries", 3, "Catalog HTTP retries")
	cmd.Flags().IntVar(&opts.HTTPRetryDelayMs, "http-retry-delay-ms", 200, "Catalog HTTP retry delay (ms)")
	cmd.Flags().StringVar(&opts.CatalogUser, "catalog-user", "", "Catalog basic auth user")
	cmd.Flags().StringVar(&opts.CatalogAPIKey, "catalog-api-key", "", "Catalog basic auth password or API key")

	_ = viper.BindPFlag("plugins", cmd.Flags().Lookup("plugins"))
	_ = viper.BindPFlag("features", cmd.Flags().Lookup("features"))
	_ = viper.BindPFlag("catalogs", cmd.Flags().Lookup("catalog"))
	_ = viper.BindPFlag("cache_dir", cmd.Flags().Lookup("cache-dir"))
	_ = viper.BindPFlag("output", cmd.Flags().Lookup("output"))
	_ = viper.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	_ = viper.BindPFlag("exclude", cmd.Flags().Lookup("exclude"))
	_ = viper.BindPFlag("prefer_older", cmd.Flags().Lookup("prefer-older"))
	_ = viper.BindPFlag("os", cmd.Flags().Lookup("os"))
	_ = viper.BindPFlag("ws", cmd.Flags().Lookup("ws"))
	_ = viper.BindPFlag("arch", cmd.Flags().Lookup("arch"))
	_ = viper.BindPFlag("graph_svg", cmd.Flags().Lookup("graph-svg"))
	_ = viper.BindPFlag("metrics_file", cmd.Flags().Lookup("metrics-file"))
	_ = viper.BindPFlag("http_timeout", cmd.Flags().Lookup("http-timeout"))
	_ = viper.BindPFlag("http_retries", cmd.Flags().Lookup("http-retries"))
	_ = viper.BindPFlag("http_retry_delay_ms", cmd.Flags().Lookup("http-retry-delay-ms"))
	_ = viper.BindPFlag("catalog_user", cmd.Flags().Lookup("catalog-user"))
	_ = viper.BindPFlag("catalog_api_key", cmd.Flags().Lookup("catalog-api-key"))
}

// runRequest merges flags with the viper configuration. Folder name
// overrides only come from the config file.
func runRequest(cmd *cobra.Command, opts runOptions) app.ResolveRequest {
	return app.ResolveRequest{
		PluginRoots:  resolveStrings(cmd, opts.Plugins, "plugins", "plugins"),
		FeatureRoots: resolveStrings(cmd, opts.Features, "features", "features"),
		Catalogs:     resolveStrings(cmd, opts.Catalogs, "catalogs", "catalog"),
		CacheDir:     resolveString(cmd, opts.CacheDir, "cache_dir", "cache-dir"),
		OutputDir:    resolveString(cmd, opts.OutputDir, "output", "output"),
		Workers:      resolveInt(cmd, opts.Workers, "workers", "workers"),
		Exclude:      resolveStrings(cmd, opts.Exclude, "exclude", "exclude"),
		PreferOlder:  resolveStrings(cmd, opts.PreferOlder, "prefer_older", "prefer-older"),
		FolderNames:  viper.GetStringMapString("folder_names"),
		OS:           resolveString(cmd, opts.OS, "os", "os"),
		WS:           resolveString(cmd, opts.WS, "ws", "ws"),
		Arch:         resolveString(cmd, opts.Arch, "arch", "arch"),
		GraphSVG:     resolveBool(cmd, opts.GraphSVG, "graph_svg", "graph-svg"),
		MetricsFile:  resolveString(cmd, opts.MetricsFile, "metrics_file", "metrics-file"),
		HTTP: adapters.HTTPConfig{
			TimeoutSec:   resolveInt(cmd, opts.HTTPTimeoutSec, "http_timeout", "http-timeout"),
			Retries:      resolveInt(cmd, opts.HTTPRetries, "http_retries", "http-retries"),
			RetryDelayMs: resolveInt(cmd, opts.HTTPRetryDelayMs, "http_retry_delay_ms", "http-retry-delay-ms"),
			User:         resolveString(cmd, opts.CatalogUser, "catalog_user", "catalog-user"),
			APIKey:       resolveString(cmd, opts.CatalogAPIKey, "catalog_api_key", "catalog-api-key"),
		},
	}
}

func resolveString(cmd *cobra.Command, value string, key string, flagName string) string {
	if cmd == nil {
		if value != "" {
			return value
		}
		return viper.GetString(key)
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetString(key)
}

func resolveStrings(cmd *cobra.Command, values []string, key string, flagName string) []string {
	if cmd == nil {
		if len(values) > 0 {
			return values
		}
		return viper.GetStringSlice(key)
	}
	if flagChanged(cmd, flagName) {
		return values
	}
	return viper.GetStringSlice(key)
}

func resolveBool(cmd *cobra.Command, value bool, key string, flagName string) bool {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetBool(key)
}

func resolveInt(cmd *cobra.Command, value int, key string, flagName string) int {
	if cmd == nil {
		return value
	}
	if flagChanged(cmd, flagName) {
		return value
	}
	return viper.GetInt(key)
}

func flagChanged(cmd *cobra.Command, name string) bool {
	if cmd == nil || strings.TrimSpace(name) == "" {
		return false
	}
	if flag := cmd.Flags().Lookup(name); flag != nil {
		return flag.Changed
	}
	if flag := cmd.PersistentFlags().Lookup(name); flag != nil {
		return flag.Changed
	}
	return false
}
