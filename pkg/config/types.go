package config

import (
	"fmt"
	"strconv"
)

// Config represents the persistent figmatch configuration stored as
// config.toml in the .figmatch/ directory. The TOML layout uses sections
// for logical grouping.
type Config struct {
	Version   int             `toml:"version"`
	Server    ServerConfig    `toml:"server"`
	Storage   StorageConfig   `toml:"storage"`
	Catalog   CatalogConfig   `toml:"catalog"`
	Matcher   MatcherConfig   `toml:"matcher"`
	Embedding EmbeddingConfig `toml:"embedding"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Listen string `toml:"listen,omitempty"`
}

// StorageConfig holds the flat-file image storage settings.
type StorageConfig struct {
	UploadDir string `toml:"upload_dir,omitempty"`
	CropDir   string `toml:"crop_dir,omitempty"`
}

// CatalogConfig holds the embedding catalog settings.
type CatalogConfig struct {
	Dir string `toml:"dir,omitempty"`
}

// MatcherConfig holds nearest-neighbor matcher settings.
type MatcherConfig struct {
	Backend string `toml:"backend,omitempty"`
	IndexDB string `toml:"index_db,omitempty"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `toml:"provider,omitempty"`
	Target     string `toml:"target,omitempty"`
	Model      string `toml:"model,omitempty"`
	Dimensions uint   `toml:"dimensions,omitempty"`
}

// configKeyInfo maps a user-facing dotted key name to a getter and setter on *Config.
type configKeyInfo struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

// configKeys is the authoritative map of all supported config keys.
// Keys use dotted notation matching the TOML section structure.
var configKeys = map[string]configKeyInfo{
	"server.listen": {
		get: func(c *Config) string { return c.Server.Listen },
		set: func(c *Config, v string) error { c.Server.Listen = v; return nil },
	},
	"storage.upload_dir": {
		get: func(c *Config) string { return c.Storage.UploadDir },
		set: func(c *Config, v string) error { c.Storage.UploadDir = v; return nil },
	},
	"storage.crop_dir": {
		get: func(c *Config) string { return c.Storage.CropDir },
		set: func(c *Config, v string) error { c.Storage.CropDir = v; return nil },
	},
	"catalog.dir": {
		get: func(c *Config) string { return c.Catalog.Dir },
		set: func(c *Config, v string) error { c.Catalog.Dir = v; return nil },
	},
	"matcher.backend": {
		get: func(c *Config) string { return c.Matcher.Backend },
		set: func(c *Config, v string) error { c.Matcher.Backend = v; return nil },
	},
	"matcher.index_db": {
		get: func(c *Config) string { return c.Matcher.IndexDB },
		set: func(c *Config, v string) error { c.Matcher.IndexDB = v; return nil },
	},
	"embedding.provider": {
		get: func(c *Config) string { return c.Embedding.Provider },
		set: func(c *Config, v string) error { c.Embedding.Provider = v; return nil },
	},
	"embedding.target": {
		get: func(c *Config) string { return c.Embedding.Target },
		set: func(c *Config, v string) error { c.Embedding.Target = v; return nil },
	},
	"embedding.model": {
		get: func(c *Config) string { return c.Embedding.Model },
		set: func(c *Config, v string) error { c.Embedding.Model = v; return nil },
	},
	"embedding.dimensions": {
		get: func(c *Config) string {
			if c.Embedding.Dimensions == 0 {
				return ""
			}
			return strconv.FormatUint(uint64(c.Embedding.Dimensions), 10)
		},
		set: func(c *Config, v string) error {
			n, err := strconv.ParseUint(v, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid value for embedding.dimensions: %w", err)
			}
			c.Embedding.Dimensions = uint(n)
			return nil
		},
	},
}
