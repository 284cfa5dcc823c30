package utils

// Job carries the full configuration for one manifest processing run, from the
// CLI layer down into the pipeline.
type Job struct {
	ID               string
	ManifestSource   string // local file path or http(s) URL
	OutputPath       string
	Workers          int
	KeepSegments     bool
	RequireComplete  bool
	FFmpegFlags      []string
	HTTPClientConfig HTTPClientConfig
}

// BatchEntry is one item of a YAML batch list.
type BatchEntry struct {
	Manifest string `yaml:"manifest"`
	Output   string `yaml:"output"`
}
