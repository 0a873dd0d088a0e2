package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/usecases"
	"github.com/hydroline/analytics/internal/pkg/geospatial"
)

// version is set via ldflags at build time.
var version = "dev"

// options are the persistent flags shared by every subcommand.
type options struct {
	policy string
	north  float64
	south  float64
	east   float64
	west   float64
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:   "hydrolinectl",
		Short: "Inspect the green-hydrogen site catalog and its map projection",
		Long: `hydrolinectl works offline against the embedded site catalog. It lists
sites, renders detail views, and projects coordinates onto the map canvas
exactly as the API does.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.policy, "policy", string(geospatial.PolicyClamp), "out-of-box policy: clamp or reject")
	pf.Float64Var(&opts.north, "north", domain.IndiaBounds.North, "bounding box north edge")
	pf.Float64Var(&opts.south, "south", domain.IndiaBounds.South, "bounding box south edge")
	pf.Float64Var(&opts.east, "east", domain.IndiaBounds.East, "bounding box east edge")
	pf.Float64Var(&opts.west, "west", domain.IndiaBounds.West, "bounding box west edge")

	root.AddCommand(
		newSitesCmd(),
		newDetailCmd(),
		newStatesCmd(),
		newProjectCmd(opts),
		newLayoutCmd(opts),
		newValidateCmd(),
		newVersionCmd(),
	)
	return root
}

func (o *options) mapService(cat *catalog.Catalog) (*usecases.MapService, error) {
	policy, err := geospatial.ParsePolicy(o.policy)
	if err != nil {
		return nil, err
	}
	box := domain.BoundingBox{North: o.north, South: o.south, East: o.east, West: o.west}
	projector, err := geospatial.NewProjector(box, policy)
	if err != nil {
		return nil, err
	}
	return usecases.NewMapService(cat, projector, nil, 0), nil
}

// printJSON writes v as indented JSON to the command's output.
func printJSON(cmd *cobra.Command, v interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
