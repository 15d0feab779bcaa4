package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultDataDir       = "./data"
	defaultVectorBackend = "file"
	defaultChunkSize     = 500 // tokens
	defaultChunkOverlap  = 50  // tokens
	defaultMinChunkChars = 50
	defaultSearchLimit   = 5
	defaultRenderDPI     = 150
	defaultMaxDimension  = 1568
	defaultCacheSize     = 20
	defaultCacheTTLSecs  = 300
)

type Config struct {
	DataDir       string         `yaml:"data_dir"`
	SettingsPath  string         `yaml:"settings_path"`
	SecretKey     string         `yaml:"secret_key"`
	VectorBackend string         `yaml:"vector_backend"` // "file" or "chromem"
	RAG           RAGConfig      `yaml:"rag"`
	Render        RenderConfig   `yaml:"render"`
	Database      DatabaseConfig `yaml:"database"`
}

type RAGConfig struct {
	ChunkSize     int `yaml:"chunk_size"`    // tokens
	ChunkOverlap  int `yaml:"chunk_overlap"` // tokens
	MinChunkChars int `yaml:"min_chunk_chars"`
	SearchLimit   int `yaml:"search_limit"`
}

type RenderConfig struct {
	DPI          int `yaml:"dpi"`
	MaxDimension int `yaml:"max_dimension"` // longest side after downscale, px
	CacheSize    int `yaml:"cache_size"`
	CacheTTLSecs int `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig is only needed when the Postgres-backed document store is
// selected; the default deployment keeps metadata in a JSON file.
type DatabaseConfig struct {
	DSN      string `yaml:"dsn"`
	Password string `yaml:"password"`
	Debug    bool   `yaml:"debug"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a config with every default applied, for callers that run
// without a config file.
func Default() *Config {
	cfg := &Config{}
	cfg.ApplyDefaults()
	return cfg
}

func (c *Config) ApplyDefaults() {
	if c.DataDir == "" {
		c.DataDir = defaultDataDir
	}
	if c.VectorBackend == "" {
		c.VectorBackend = defaultVectorBackend
	}
	if c.RAG.ChunkSize == 0 {
		c.RAG.ChunkSize = defaultChunkSize
	}
	if c.RAG.ChunkOverlap == 0 {
		c.RAG.ChunkOverlap = defaultChunkOverlap
	}
	if c.RAG.MinChunkChars == 0 {
		c.RAG.MinChunkChars = defaultMinChunkChars
	}
	if c.RAG.SearchLimit == 0 {
		c.RAG.SearchLimit = defaultSearchLimit
	}
	if c.Render.DPI == 0 {
		c.Render.DPI = defaultRenderDPI
	}
	if c.Render.MaxDimension == 0 {
		c.Render.MaxDimension = defaultMaxDimension
	}
	if c.Render.CacheSize == 0 {
		c.Render.CacheSize = defaultCacheSize
	}
	if c.Render.CacheTTLSecs == 0 {
		c.Render.CacheTTLSecs = defaultCacheTTLSecs
	}
}
