package types

// CatalogEntry is one downloadable unit advertised by a remote repository.
// Location is repository-relative and only meaningful to the repository
// that produced the entry.
type CatalogEntry struct {
	Name     string      `yaml:"name"`
	Version  string      `yaml:"version"`
	Location string      `yaml:"location"`
	OS       string      `yaml:"os,omitempty"`
	WS       string      `yaml:"ws,omitempty"`
	Arch     string      `yaml:"arch,omitempty"`
	Requires []string    `yaml:"requires,omitempty"`
	Fragment *CatalogRef `yaml:"fragment_host,omitempty"`
}

// CatalogRef is a name plus raw range string as written in a catalog.
type CatalogRef struct {
	Name  string `yaml:"name"`
	Range string `yaml:"range,omitempty"`
}

// CatalogFile is the on-disk form of a repository catalog.
type CatalogFile struct {
	Name     string         `yaml:"name"`
	Bundles  []CatalogEntry `yaml:"bundles"`
	Features []CatalogEntry `yaml:"features"`
}
