package domain

// ManifestFileName is the default name of the vendor manifest.
const ManifestFileName = "vendors.json"

// Manifest lists the third-party resources aggregated into the vendor bundles.
// A loaded Manifest is an immutable snapshot for the duration of one vendor run.
type Manifest struct {
	Fonts []string `yaml:"fonts" json:"fonts"`
	JS    []string `yaml:"js" json:"js"`
	CSS   []string `yaml:"css" json:"css"`
}

// IsEmpty reports whether no category lists any resource.
func (m *Manifest) IsEmpty() bool {
	return m == nil || len(m.Fonts) == 0 && len(m.JS) == 0 && len(m.CSS) == 0
}
