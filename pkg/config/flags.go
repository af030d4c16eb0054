package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flag is the single source of truth for a CLI flag.
// Commands reference flags by registry key rather than hard-coding names,
// shorthands, defaults, and descriptions inline, so the same logical flag
// cannot drift between commands.
type Flag struct {
	// Name is the long flag name (e.g. "listen").
	Name string

	// Shorthand is the one-letter short flag (e.g. "l"). Empty for no shorthand.
	Shorthand string

	// ViperKey is the dotted config key this flag maps to (e.g. "server.listen").
	ViperKey string

	// Description is the help text shown in --help output.
	Description string
}

// FlagSet is a mapping of registry keys to Flag structs.
type FlagSet map[string]Flag

// Flag registry keys.
// Use these constants when calling AddStringFlag, AddUintFlag,
// and BindRegisteredFlags to avoid typos or drift from one command to another.
const (
	FlagListen         = "listen"
	FlagUploadDir      = "upload-dir"
	FlagCropDir        = "crop-dir"
	FlagCatalogDir     = "catalog-dir"
	FlagMatcherBackend = "matcher-backend"
	FlagMatcherIndexDB = "matcher-index-db"
	FlagEmbeddingProv  = "embedding-provider"
	FlagEmbeddingTgt   = "embedding-target"
	FlagEmbeddingModel = "embedding-model"
	FlagEmbeddingDims  = "embedding-dimensions"
)

// ServeFlags is the flag registry for the serve command.
var ServeFlags = FlagSet{
	FlagListen: {
		Name: "listen", Shorthand: "l", ViperKey: "server.listen",
		Description: "Address for the HTTP server to listen on",
	},
	FlagUploadDir: {
		Name: "upload-dir", ViperKey: "storage.upload_dir",
		Description: "Directory for original uploaded images",
	},
	FlagCropDir: {
		Name: "crop-dir", ViperKey: "storage.crop_dir",
		Description: "Directory for cropped part images",
	},
	FlagCatalogDir: {
		Name: "catalog-dir", Shorthand: "c", ViperKey: "catalog.dir",
		Description: "Directory holding the per-category embedding catalogs",
	},
	FlagMatcherBackend: {
		Name: "matcher-backend", ViperKey: "matcher.backend",
		Description: "Nearest-neighbor backend (brute, sqlitevec)",
	},
	FlagMatcherIndexDB: {
		Name: "matcher-index-db", ViperKey: "matcher.index_db",
		Description: "SQLite path for the sqlitevec backend index",
	},
	FlagEmbeddingProv: {
		Name: "embedding-provider", ViperKey: "embedding.provider",
		Description: "Embedding provider (clipd)",
	},
	FlagEmbeddingTgt: {
		Name: "embedding-target", ViperKey: "embedding.target",
		Description: "Embedding sidecar URL",
	},
	FlagEmbeddingModel: {
		Name: "embedding-model", ViperKey: "embedding.model",
		Description: "Embedding model variant",
	},
	FlagEmbeddingDims: {
		Name: "embedding-dimensions", ViperKey: "embedding.dimensions",
		Description: "Embedding output dimensionality",
	},
}

// AddStringFlag registers a string flag on cmd from the given FlagSet.
// The flag's name, shorthand, default, and description all come from the
// FlagSet entry so they cannot drift across commands.
func AddStringFlag(cmd *cobra.Command, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}

	defaultVal := defaultString(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().StringVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().StringVar(target, def.Name, defaultVal, def.Description)
	}
}

// AddUintFlag registers a uint flag on cmd from the given FlagSet.
func AddUintFlag(cmd *cobra.Command, fs FlagSet, registryKey string, target *uint) {
	def, ok := fs[registryKey]
	if !ok {
		return
	}

	defaultVal := defaultUint(def.ViperKey)
	if def.Shorthand != "" {
		cmd.Flags().UintVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
	} else {
		cmd.Flags().UintVar(target, def.Name, defaultVal, def.Description)
	}
}

// BindRegisteredFlags binds already-registered flags to viper using definitions
// from the given FlagSet. Call this in PreRunE after InitViper to connect flags
// to the viper precedence chain (flag > env > config file > default).
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, registryKeys []string) {
	for _, registryKey := range registryKeys {
		def, ok := fs[registryKey]
		if !ok {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

// defaultString returns the default string value for a viper key from NewDefaultConfig.
func defaultString(viperKey string) string {
	v := viper.New()
	setViperDefaults(v)
	return v.GetString(viperKey)
}

// defaultUint returns the default uint value for a viper key from NewDefaultConfig.
func defaultUint(viperKey string) uint {
	v := viper.New()
	setViperDefaults(v)
	return v.GetUint(viperKey)
}
