package types

import "encoding/json"

// Document is one paper's metadata, one JSON line in a shard index file.
// Field names follow the corpus annotation format produced by the
// offline ingestion jobs.
type Document struct {
	DOI      string   `json:"doi"`
	Title    string   `json:"title"`
	Abstract string   `json:"abstract,omitempty"`
	URL      string   `json:"url,omitempty"`
	DOIURL   string   `json:"doi_url,omitempty"`
	Journal  string   `json:"journal_name"`
	Year     int      `json:"year"`
	Authors  []string `json:"z_authors"`
	Category string   `json:"category"`
}

// Link returns the best available URL for the paper.
func (d Document) Link() string {
	if d.URL != "" {
		return d.URL
	}
	return d.DOIURL
}

// SearchResponse is the payload returned for a search or refine call:
// per-result scores (search only), facet lists and the metadata array.
type SearchResponse struct {
	Journals   []string          `json:"journals"`
	PubYears   []int             `json:"pubyears"`
	Categories []string          `json:"categories"`
	Scores     []float64         `json:"scores,omitempty"`
	Results    []json.RawMessage `json:"results"`
}

// Config is the top-level pubgrep configuration.
type Config struct {
	DataDir string       `toml:"data_dir" mapstructure:"data_dir"`
	Bundle  BundleConfig `toml:"bundle"   mapstructure:"bundle"`
	Search  SearchConfig `toml:"search"   mapstructure:"search"`
	Server  ServerConfig `toml:"server"   mapstructure:"server"`
	Build   BuildConfig  `toml:"build"    mapstructure:"build"`
}

// BundleConfig locates the frozen model bundle produced by the offline build.
type BundleConfig struct {
	VocabPath      string `toml:"vocab_path"      mapstructure:"vocab_path"`
	TFIDFPath      string `toml:"tfidf_path"      mapstructure:"tfidf_path"`
	ClassifierPath string `toml:"classifier_path" mapstructure:"classifier_path"`
	ShardDir       string `toml:"shard_dir"       mapstructure:"shard_dir"`
}

// SearchConfig holds query-time parameters.
type SearchConfig struct {
	TopK       int `toml:"top_k"       mapstructure:"top_k"`       // per-shard budget
	QueryCat   int `toml:"query_cat"   mapstructure:"query_cat"`   // classified categories searched
	TimeoutSec int `toml:"timeout_sec" mapstructure:"timeout_sec"` // per-query deadline
}

// ServerConfig holds the HTTP front-end settings.
type ServerConfig struct {
	Addr      string `toml:"addr"       mapstructure:"addr"`
	CachePath string `toml:"cache_path" mapstructure:"cache_path"`
}

// BuildConfig holds offline index-build parameters.
type BuildConfig struct {
	CorpusPath string  `toml:"corpus_path" mapstructure:"corpus_path"`
	OutDir     string  `toml:"out_dir"     mapstructure:"out_dir"`
	NoBelow    int     `toml:"no_below"    mapstructure:"no_below"`
	NoAbove    float64 `toml:"no_above"    mapstructure:"no_above"`
	KeepN      int     `toml:"keep_n"      mapstructure:"keep_n"`
	PruneAt    int     `toml:"prune_at"    mapstructure:"prune_at"`
	ShardSplit int     `toml:"shard_split" mapstructure:"shard_split"` // docs per sub-shard
}

// Defaults fills in zero-valued fields.
func (c *Config) Defaults() {
	if c.Search.TopK == 0 {
		c.Search.TopK = 20
	}
	if c.Search.QueryCat == 0 {
		c.Search.QueryCat = 3
	}
	if c.Search.TimeoutSec == 0 {
		c.Search.TimeoutSec = 10
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":7600"
	}
	if c.Build.NoBelow == 0 {
		c.Build.NoBelow = 2
	}
	if c.Build.NoAbove == 0 {
		c.Build.NoAbove = 0.5
	}
	if c.Build.KeepN == 0 {
		c.Build.KeepN = 300000
	}
	if c.Build.PruneAt == 0 {
		c.Build.PruneAt = 100000
	}
	if c.Build.ShardSplit == 0 {
		c.Build.ShardSplit = 100000
	}
}

// LLMConfig selects and configures the LLM provider used by the router.
type LLMConfig struct {
	Provider, Model, BaseURL, APIKey string
	TimeoutSec                       int
}

// AgentResult is one completed LLM call as returned by the router.
type AgentResult struct {
	Content, Agent, Model string
	LatencyMs             int64
	TokensIn, TokensOut   int
}
