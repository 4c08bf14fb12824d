package types

// ResolvedBundle is the serialized form of a registered bundle.
type ResolvedBundle struct {
	Name                         string   `yaml:"name"`
	Version                      string   `yaml:"version"`
	Path                         string   `yaml:"path"`
	StartLevel                   *int     `yaml:"start_level,omitempty"`
	Classpath                    []string `yaml:"classpath,omitempty"`
	Requires                     []string `yaml:"requires,omitempty"`
	Reexports                    []string `yaml:"reexports,omitempty"`
	FragmentHost                 string   `yaml:"fragment_host,omitempty"`
	Fragments                    []string `yaml:"fragments,omitempty"`
	RequiredFragments            []string `yaml:"required_fragments,omitempty"`
	RequiredExecutionEnvironment string   `yaml:"required_execution_environment,omitempty"`
}

// ResolutionReport is everything a run writes out.
type ResolutionReport struct {
	RunID      string              `yaml:"run_id"`
	Product    string              `yaml:"product,omitempty"`
	Bundles    []ResolvedBundle    `yaml:"bundles"`
	Features   map[string][]string `yaml:"features,omitempty"`
	Unresolved []string            `yaml:"unresolved,omitempty"`
}

// GraphEdge is one "requires" edge of the dependency graph.
type GraphEdge struct {
	From string
	To   string
}
