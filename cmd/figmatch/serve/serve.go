// Package servecmder provides the figmatch serve cobra command.
package servecmder

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/api"
	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/config"
	embeddingutils "github.com/figmatch/figmatch/pkg/embeddings/utils"
	"github.com/figmatch/figmatch/pkg/logger"
	matcherutils "github.com/figmatch/figmatch/pkg/matcher/utils"
	"github.com/figmatch/figmatch/pkg/session"
	"github.com/figmatch/figmatch/pkg/storage"
)

type serveCommander struct {
	listen         string
	uploadDir      string
	cropDir        string
	catalogDir     string
	matcherBackend string
	matcherIndexDB string
	embeddingProv  string
	embeddingTgt   string
	embeddingModel string
	embeddingDims  uint

	debug  bool
	logger *zap.Logger
	viper  *viper.Viper
}

const serveLongDesc string = `Run the figmatch HTTP server.

The server drives the three-step crop workflow (head, torso, legs) over an
uploaded figure photo and matches each cropped part against its category's
embedding catalog.`

const serveShortDesc string = "Run the figmatch HTTP server"

var serveFlagKeys = []string{
	config.FlagListen,
	config.FlagUploadDir,
	config.FlagCropDir,
	config.FlagCatalogDir,
	config.FlagMatcherBackend,
	config.FlagMatcherIndexDB,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, err := cmd.Flags().GetString("config")
			if err != nil {
				configDir = ""
			}

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, config.ServeFlags, serveFlagKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}

			cmder.resolve()
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.ServeFlags, config.FlagListen, &cmder.listen)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagUploadDir, &cmder.uploadDir)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagCropDir, &cmder.cropDir)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagCatalogDir, &cmder.catalogDir)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagMatcherBackend, &cmder.matcherBackend)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagMatcherIndexDB, &cmder.matcherIndexDB)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingProv, &cmder.embeddingProv)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingTgt, &cmder.embeddingTgt)
	config.AddStringFlag(cmd, config.ServeFlags, config.FlagEmbeddingModel, &cmder.embeddingModel)
	config.AddUintFlag(cmd, config.ServeFlags, config.FlagEmbeddingDims, &cmder.embeddingDims)

	return cmd
}

// resolve pulls final values out of viper after flag binding, so the
// flag > env > file > default precedence applies.
func (c *serveCommander) resolve() {
	c.listen = c.viper.GetString("server.listen")
	c.uploadDir = c.viper.GetString("storage.upload_dir")
	c.cropDir = c.viper.GetString("storage.crop_dir")
	c.catalogDir = c.viper.GetString("catalog.dir")
	c.matcherBackend = c.viper.GetString("matcher.backend")
	c.matcherIndexDB = c.viper.GetString("matcher.index_db")
	c.embeddingProv = c.viper.GetString("embedding.provider")
	c.embeddingTgt = c.viper.GetString("embedding.target")
	c.embeddingModel = c.viper.GetString("embedding.model")
	c.embeddingDims = c.viper.GetUint("embedding.dimensions")
}

func (c *serveCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	catalogs, err := catalog.NewStore(c.catalogDir, c.logger)
	if err != nil {
		return fmt.Errorf("failed to open catalog store: %w", err)
	}
	defer catalogs.Close()

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: c.embeddingProv,
		TargetURL:    c.embeddingTgt,
		Model:        c.embeddingModel,
		Dimensions:   c.embeddingDims,
	})
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}
	defer embedder.Close()

	m, err := matcherutils.NewMatcher(&matcherutils.NewMatcherOpts{
		Backend:  c.matcherBackend,
		IndexDB:  c.matcherIndexDB,
		Catalogs: catalogs,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create matcher: %w", err)
	}
	defer m.Close()

	files, err := storage.NewStore(c.uploadDir, c.cropDir, c.logger)
	if err != nil {
		return fmt.Errorf("failed to create file store: %w", err)
	}

	coordinator := session.NewCoordinator(session.NewStore(), files, embedder, m, c.logger)

	server := api.NewServer(api.Config{
		ListenAddr: c.listen,
	}, coordinator, files, c.logger)

	c.logger.Info("starting figmatch server",
		zap.String("listen", c.listen),
		zap.String("catalog_dir", c.catalogDir),
		zap.String("matcher_backend", c.matcherBackend),
		zap.String("embedding_provider", c.embeddingProv),
	)

	return server.Run()
}
