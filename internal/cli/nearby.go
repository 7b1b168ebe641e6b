package cli

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/geo"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

func (a *app) nearbyCmd() *cobra.Command {
	var (
		file     string
		lat, lon float64
		radius   float64
	)

	c := &cobra.Command{
		Use:   "nearby",
		Short: "List the plan's stops within a radius of a point, nearest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			center, err := geo.NewCoordinate(lat, lon)
			if err != nil {
				return err
			}
			r, err := geo.Meters(radius)
			if err != nil {
				return err
			}

			p, err := plan.Load(file)
			if err != nil {
				return err
			}
			res, err := a.build(cmd.Context(), p)
			if err != nil {
				return err
			}

			matches, err := res.StopIndex().Nearby(center, r)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if len(matches) == 0 {
				fmt.Fprintf(w, "no stops within %s of %s\n", r, center)
				return nil
			}
			names, routes := stopDirectory(res)
			for _, m := range matches {
				id := domain.StopID(m.Stop.ID)
				fmt.Fprintf(w, "%-12s %7.0f m  %-24s %s  [%s]\n",
					id, m.Meters, names[id], center.BearingTo(m.Stop.Position).Compass(), strings.Join(routes[id], ","))
			}
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "plan file, .yaml or .yaml.gz (required)")
	c.Flags().Float64Var(&lat, "lat", 0, "latitude of the search center")
	c.Flags().Float64Var(&lon, "lon", 0, "longitude of the search center")
	c.Flags().Float64Var(&radius, "radius", 500, "search radius in meters")

	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("lat")
	_ = c.MarkFlagRequired("lon")
	return c
}

// stopDirectory maps each stop to its name and the routes serving it.
func stopDirectory(res *plan.Result) (map[domain.StopID]string, map[domain.StopID][]string) {
	names := make(map[domain.StopID]string)
	routes := make(map[domain.StopID][]string)
	for _, br := range res.Routes {
		rid := string(br.Route.ID())
		for _, s := range br.Stops {
			if names[s.ID] == "" {
				names[s.ID] = s.Name
			}
			if !slices.Contains(routes[s.ID], rid) {
				routes[s.ID] = append(routes[s.ID], rid)
			}
		}
	}
	return names, routes
}
