// Package figmatchcmder
package figmatchcmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/figmatch/figmatch/cmd/figmatch/config"
	indexcmder "github.com/figmatch/figmatch/cmd/figmatch/index"
	servecmder "github.com/figmatch/figmatch/cmd/figmatch/serve"
	versioncmder "github.com/figmatch/figmatch/cmd/figmatch/version"
)

const figmatchLongDesc string = `Figmatch finds the catalog parts that best match a photographed minifigure.

Upload a photo, crop the head, torso, and legs in order, and figmatch
searches the per-category embedding catalogs for the closest parts.

Run the service using:
  figmatch serve       Run the HTTP server
  figmatch index       Build the sqlite-vec index from the catalogs
  figmatch config      Manage persistent configuration`

const figmatchShortDesc string = "Figmatch - minifigure part matcher"

func NewFigmatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "figmatch",
		Short: figmatchShortDesc,
		Long:  figmatchLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config", "", "Config directory override (default: .figmatch/ discovery)")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(indexcmder.NewIndexCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
