package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hydroline/analytics/internal/catalog"
	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/core/usecases"
)

func newSitesCmd() *cobra.Command {
	var category, state string
	cmd := &cobra.Command{
		Use:   "sites",
		Short: "List catalog sites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			f := usecases.SiteFilter{State: state}
			if category != "" {
				if f.Category, err = domain.ParseCategory(category); err != nil {
					return err
				}
			}
			sites, err := usecases.NewSiteService(cat).List(cmd.Context(), f)
			if err != nil {
				return err
			}
			return printJSON(cmd, sites)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "existing or potential")
	cmd.Flags().StringVar(&state, "state", "", "case-insensitive state filter")
	return cmd
}

func newDetailCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "detail [site-id]",
		Short: "Show the formatted detail view of a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			detail, err := usecases.NewSiteService(cat).Detail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd, detail)
		},
	}
}

func newStatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "states",
		Short: "Count sites per state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			summaries, err := usecases.NewSiteService(cat).StateSummaries(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, summaries)
		},
	}
}

func newProjectCmd(opts *options) *cobra.Command {
	var lat, lon float64
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Project a coordinate onto the map canvas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			maps, err := opts.mapService(cat)
			if err != nil {
				return err
			}
			pos, err := maps.Project(cmd.Context(), domain.GeoPoint{Lat: lat, Lon: lon})
			if err != nil {
				return err
			}
			return printJSON(cmd, pos)
		},
	}
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lon")
	return cmd
}

func newLayoutCmd(opts *options) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the marker layout of one tab",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := domain.ParseCategory(category)
			if err != nil {
				return err
			}
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			maps, err := opts.mapService(cat)
			if err != nil {
				return err
			}
			layout, err := maps.Layout(cmd.Context(), c)
			if err != nil {
				return err
			}
			return printJSON(cmd, layout)
		},
	}
	cmd.Flags().StringVar(&category, "category", string(domain.DefaultCategory), "existing or potential")
	return cmd
}

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check the embedded catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := catalog.Load()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catalog OK: %d existing, %d potential, %d states\n",
				len(cat.ExistingSites()), len(cat.PotentialSites()), len(cat.States()))
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of hydrolinectl",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "hydrolinectl %s\n", version)
		},
	}
}
