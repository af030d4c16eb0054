package config

const (
	defaultListen = ":5000"

	defaultUploadDir  = "uploads"
	defaultCropDir    = "cropped"
	defaultCatalogDir = "catalogs"

	defaultMatcherBackend = "brute"
	defaultMatcherIndexDB = ":memory:"

	defaultEmbeddingProvider   = "clipd"
	defaultEmbeddingTarget     = "http://localhost:8300"
	defaultEmbeddingModel      = "ViT-B/32"
	defaultEmbeddingDimensions = 512
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Server: ServerConfig{
			Listen: defaultListen,
		},
		Storage: StorageConfig{
			UploadDir: defaultUploadDir,
			CropDir:   defaultCropDir,
		},
		Catalog: CatalogConfig{
			Dir: defaultCatalogDir,
		},
		Matcher: MatcherConfig{
			Backend: defaultMatcherBackend,
			IndexDB: defaultMatcherIndexDB,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
	}
}
