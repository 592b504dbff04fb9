package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/dirtybirdnj/vt-geodata/internal/dataset"
)

var townsCmd = &cobra.Command{
	Use:   "towns",
	Short: "Build the town boundaries dataset from a COUSUB shapefile",
	Long: `Reads a TIGER/Line county-subdivision shapefile and writes the town
boundaries dataset with survey land and water areas. The output feeds
the cutout stage and publishes on its own.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		shpPath, _ := cmd.Flags().GetString("cousub")
		out, _ := cmd.Flags().GetString("output")
		name, _ := cmd.Flags().GetString("name")
		if out == "" {
			out = filepath.Join(cfg.Paths.OutputDir, "vt_towns.geojson")
		}

		boundaries, err := readBoundaryInput(shpPath)
		if err != nil {
			return eris.Wrap(err, "towns")
		}

		if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
			return eris.Wrapf(err, "towns: create output dir %s", filepath.Dir(out))
		}

		c := dataset.FromBoundaries(boundaries, dataset.Metadata{
			Name:   name,
			Source: "TIGER/Line COUSUB",
		})
		if err := c.Write(out); err != nil {
			return eris.Wrap(err, "towns")
		}

		fmt.Printf("wrote %d town boundaries (%d counties) to %s\n",
			c.Metadata.FeaturesCount, len(c.Metadata.Counties), out)
		return nil
	},
}

func init() {
	townsCmd.Flags().String("cousub", "", "COUSUB shapefile or towns GeoJSON dataset (required)")
	townsCmd.Flags().String("output", "", "dataset path (default: vt_towns.geojson in the output directory)")
	townsCmd.Flags().String("name", "Vermont Towns", "dataset name stamped in the metadata")
	_ = townsCmd.MarkFlagRequired("cousub")
	rootCmd.AddCommand(townsCmd)
}
