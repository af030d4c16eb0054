// Package configcmder provides the config command for managing persistent
// figmatch configuration stored in the .figmatch/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent figmatch configuration.

Configuration is stored as config.toml in the .figmatch/ directory and
provides default values for command flags. CLI flags always take precedence
over config file values.

Keys use dotted notation matching the TOML section structure:
  server.listen,
  storage.upload_dir, storage.crop_dir,
  catalog.dir,
  matcher.backend, matcher.index_db,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions

Use subcommands to get, set, or list configuration values:
  figmatch config set <key> <value>    Set a configuration value
  figmatch config get <key>            Get a configuration value
  figmatch config list                 List all configuration values

Examples:
  figmatch config set matcher.backend sqlitevec
  figmatch config set embedding.target http://localhost:8300
  figmatch config get catalog.dir
  figmatch config list`

const configShortDesc string = "Manage persistent figmatch configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
