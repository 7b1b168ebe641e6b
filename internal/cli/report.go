package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/domain"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/logging"
	"github.com/Nurik9292/bus-transport-monitoring-sub000/internal/plan"
)

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// build applies p and records what happened in the metrics registry.
func (a *app) build(ctx context.Context, p *plan.Plan) (*plan.Result, error) {
	b, err := a.builder()
	if err != nil {
		return nil, err
	}

	done := a.metrics.TimeOperation("build_plan")
	res, err := b.Build(ctx, p)
	done()
	if err != nil {
		return nil, a.fail("build plan", err)
	}

	a.metrics.ObserveEvents(res.Events)
	for _, br := range res.Routes {
		a.metrics.ObserveRoute(br.Route)
	}
	logging.LogOperation(a.logger, "plan_built",
		slog.Int("routes", len(res.Routes)),
		slog.Int("events", len(res.Events)))
	return res, nil
}

// report prints a summary of every built route. Next departures are looked up
// from now.
func (a *app) report(w io.Writer, res *plan.Result, now time.Time) {
	for i, br := range res.Routes {
		if i > 0 {
			fmt.Fprintln(w)
		}
		writeRoute(w, br, now)
	}
	if a.cfg.Verbose {
		fmt.Fprintf(w, "\nevents (%d):\n", len(res.Events))
		for _, e := range res.Events {
			writeEvent(w, e)
		}
	}
}

func writeRoute(w io.Writer, br plan.BuiltRoute, now time.Time) {
	r := br.Route
	fmt.Fprintf(w, "route %s %q [%s] %s %s\n", r.ID(), r.Name(), r.Status(), r.Type(), r.Direction())

	stops := make([]string, 0, r.StopCount())
	for _, id := range r.Stops() {
		stops = append(stops, string(id))
	}
	fmt.Fprintf(w, "  stops:      %d (%s)\n", r.StopCount(), strings.Join(stops, " -> "))
	fmt.Fprintf(w, "  length:     %s, %s, complexity %s\n", r.TotalDistance(), r.TotalDuration(), r.Complexity())
	if hours, ok := r.OperatingHours(); ok {
		fmt.Fprintf(w, "  hours:      %s\n", hours)
	}
	if r.RequiresMaintenanceAlert() {
		fmt.Fprintf(w, "  alert:      %s\n", r.MaintenanceNotes())
	}
	if line := br.Polyline(); line != "" {
		fmt.Fprintf(w, "  polyline:   %s\n", line)
	}

	for _, s := range br.Schedules {
		state := "inactive"
		if s.IsActive() {
			state = "active"
		}
		fmt.Fprintf(w, "  schedule %s %q %s %s\n", s.ID(), s.Name(), s.Type(), state)

		to := "open"
		if !s.EffectiveTo().IsZero() {
			to = s.EffectiveTo().Format(time.DateOnly)
		}
		fmt.Fprintf(w, "    effective:  %s .. %s\n", s.EffectiveFrom().Format(time.DateOnly), to)
		freq := s.BaseFrequency()
		fmt.Fprintf(w, "    trips/day:  %d over %s, %s (%.1f trips/h)\n", s.TotalDailyTrips(), s.TotalServiceTime(), freq, freq.TripsPerHour())
		if next, ok := s.NextDepartureAt(now); ok {
			fmt.Fprintf(w, "    next:       %s\n", next.Format("Mon 2006-01-02 15:04"))
		}
	}
}

func writeEvent(w io.Writer, e domain.Event) {
	fmt.Fprintf(w, "  %s %s v%d %s\n", e.OccurredAt.Format(time.RFC3339), e.AggregateID, e.AggregateVersion, e.Kind)
}

func dump(w io.Writer, res *plan.Result) {
	dumper.Fdump(w, res)
}
