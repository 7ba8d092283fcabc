package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// StoreConfig holds settings for the file-based paper store.
type StoreConfig struct {
	// InternalDir is the partition for manually curated papers (priority on reads).
	InternalDir string `json:"internal_dir" yaml:"internal_dir"`

	// ExternalDir is the partition for automatically collected papers.
	ExternalDir string `json:"external_dir" yaml:"external_dir"`
}

// SourceConfig holds settings for the remote source adapters.
type SourceConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxPapers is the default retrieval target (default 10).
	MaxPapers int `json:"max_papers" yaml:"max_papers"`

	// EnableArxiv controls whether the arXiv adapter is used.
	EnableArxiv bool `json:"enable_arxiv" yaml:"enable_arxiv"`

	// EnableSemanticScholar controls whether the Semantic Scholar adapter is used.
	EnableSemanticScholar bool `json:"enable_semantic_scholar" yaml:"enable_semantic_scholar"`

	// SemanticScholarAPIKey unlocks higher Semantic Scholar rate limits.
	// Without it the public tier is used and 403s are possible.
	SemanticScholarAPIKey string `json:"semantic_scholar_api_key,omitempty" yaml:"semantic_scholar_api_key,omitempty"`

	// RequestInterval is the fixed pause enforced before every Semantic
	// Scholar request (default 1s).
	RequestInterval time.Duration `json:"request_interval" yaml:"request_interval"`
}

// PDFConfig holds settings for PDF download and persistence.
type PDFConfig struct {
	HTTPConfig `yaml:",inline"`

	// DownloadPDFs controls whether retrieval fetches and persists PDFs.
	DownloadPDFs bool `json:"download_pdfs" yaml:"download_pdfs"`

	// MaxRetries bounds timeout retries per download (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// LLMConfig holds settings for the completion service used by the
// conference resolver. Provider is "anthropic" or "openai".
type LLMConfig struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model" yaml:"model"`
	APIKey   string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// Config groups all stage configurations.
type Config struct {
	Store   StoreConfig  `json:"store" yaml:"store"`
	Sources SourceConfig `json:"sources" yaml:"sources"`
	PDF     PDFConfig    `json:"pdf" yaml:"pdf"`
	LLM     LLMConfig    `json:"llm" yaml:"llm"`
}

// DefaultConfig returns the configuration used when no file or flags
// override it.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			InternalDir: "papers_internal",
			ExternalDir: "papers_external",
		},
		Sources: SourceConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "litreview/0.1",
			},
			MaxPapers:             10,
			EnableArxiv:           true,
			EnableSemanticScholar: true,
			RequestInterval:       time.Second,
		},
		PDF: PDFConfig{
			HTTPConfig: HTTPConfig{
				Timeout: 30 * time.Second,
			},
			DownloadPDFs: true,
			MaxRetries:   3,
		},
		LLM: LLMConfig{
			Provider: "anthropic",
			Model:    "claude-3-5-sonnet-20241022",
		},
	}
}
