// Package indexcmder provides the figmatch index cobra command.
package indexcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/figmatch/figmatch/pkg/catalog"
	"github.com/figmatch/figmatch/pkg/cliui"
	"github.com/figmatch/figmatch/pkg/config"
	"github.com/figmatch/figmatch/pkg/matcher/sqlitevec"
	"github.com/figmatch/figmatch/pkg/parts"
)

const indexLongDesc string = `Build the sqlite-vec index from the embedding catalogs.

Reads every category's embedding catalog and writes a SQLite database with
vec0 virtual tables, so a server running with --matcher-backend sqlitevec
can start without re-indexing.

Examples:
  figmatch index
  figmatch index --catalog-dir ./catalogs --out ./figmatch-index.db`

const indexShortDesc string = "Build the sqlite-vec index from the embedding catalogs"

type indexCommander struct {
	catalogDir string
	out        string
}

func NewIndexCmd() *cobra.Command {
	cmder := &indexCommander{}

	cmd := &cobra.Command{
		Use:   "index",
		Short: indexShortDesc,
		Long:  indexLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			return cmder.run(configDir)
		},
	}

	cmd.Flags().StringVar(&cmder.catalogDir, "catalog-dir", "", "Directory containing the embedding catalogs")
	cmd.Flags().StringVar(&cmder.out, "out", "", "Path of the SQLite index database to write")

	return cmd
}

func (c *indexCommander) run(configDir string) error {
	cfger, err := config.NewConfiger(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	cfg, err := cfger.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	catalogDir := c.catalogDir
	if catalogDir == "" {
		catalogDir = cfg.Catalog.Dir
	}

	out := c.out
	if out == "" {
		out = cfg.Matcher.IndexDB
	}
	if out == "" || out == ":memory:" {
		return fmt.Errorf("no index path: pass --out or set matcher.index_db to a file path")
	}

	catalogs, err := catalog.NewStore(catalogDir, zap.NewNop())
	if err != nil {
		return fmt.Errorf("opening catalog store: %w", err)
	}
	defer catalogs.Close()

	var entries int
	if err := cliui.Step(os.Stdout, "Indexing catalogs", func() error {
		m, indexErr := sqlitevec.NewSQLiteVecMatcher(sqlitevec.Config{DBPath: out}, catalogs, zap.NewNop())
		if indexErr != nil {
			return indexErr
		}
		defer m.Close()

		for _, category := range parts.Order {
			cat, loadErr := catalogs.Load(category)
			if loadErr != nil {
				return loadErr
			}
			entries += cat.Len()
		}
		return nil
	}); err != nil {
		return err
	}

	fmt.Printf("\n  %s Indexed %s entries %s\n\n",
		cliui.SuccessMark,
		cliui.ValueStyle.Render(fmt.Sprintf("%d", entries)),
		cliui.DimStyle.Render(out),
	)
	return nil
}
