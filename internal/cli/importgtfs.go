package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/gtfsimport"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

const gtfsAuthor = "gtfs-import"

func (a *app) importGTFSCmd() *cobra.Command {
	var (
		file         string
		routeID      string
		direction    int
		scheduleName string
		out          string
		activate     bool
	)

	c := &cobra.Command{
		Use:   "import-gtfs",
		Short: "Build a route and its timetable from a GTFS static feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if direction != 0 && direction != 1 {
				return fmt.Errorf("--direction must be 0 or 1, got %d", direction)
			}

			feed, err := gtfsimport.LoadFeed(file, a.logger)
			if err != nil {
				return err
			}
			rp, err := gtfsimport.ToPlan(feed, gtfsimport.Options{
				RouteID:      routeID,
				Direction:    direction,
				ScheduleName: scheduleName,
			})
			if err != nil {
				return err
			}
			if activate {
				rp.Activate = rp.OperatingHours != nil
				for i := range rp.Schedules {
					rp.Schedules[i].Activate = true
				}
			}

			p := &plan.Plan{Author: gtfsAuthor, Routes: []plan.RoutePlan{rp}}
			res, err := a.build(cmd.Context(), p)
			if err != nil {
				return err
			}

			if out != "" {
				if err := plan.Write(out, p); err != nil {
					return err
				}
				logging.LogOperation(a.logger, "plan_written",
					slog.String("path", out),
					slog.String("route_id", rp.ID))
			}

			now, err := a.now()
			if err != nil {
				return err
			}
			a.report(cmd.OutOrStdout(), res, now)
			return nil
		},
	}

	c.Flags().StringVarP(&file, "file", "f", "", "GTFS zip archive (required)")
	c.Flags().StringVar(&routeID, "route", "", "GTFS route_id to import (required)")
	c.Flags().IntVar(&direction, "direction", 0, "0 for the first direction in the feed, 1 for the second")
	c.Flags().StringVar(&scheduleName, "schedule-name", "GTFS timetable", "name of the generated schedule; empty skips it")
	c.Flags().StringVarP(&out, "out", "o", "", "also write the derived plan to this file (.yaml or .yaml.gz)")
	c.Flags().BoolVar(&activate, "activate", false, "activate the route and schedule")

	_ = c.MarkFlagRequired("file")
	_ = c.MarkFlagRequired("route")
	return c
}
