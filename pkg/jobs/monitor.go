package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// Snapshot is the outcome of one working set refresh
type Snapshot struct {
	Counters    reconcile.Counters `json:"counters"`
	Active      int                `json:"active"`
	Overdue     []string           `json:"overdue"`
	Excluded    map[string]int     `json:"excluded"`
	Degraded    bool               `json:"degraded"`
	RefreshedAt time.Time          `json:"refreshed_at"`
}

// WorkingSetMonitor reconciles the sheets in the background and publishes
// the result as metrics
type WorkingSetMonitor struct {
	leads   *leads.Service
	metrics *metrics.Metrics
	loc     *time.Location
	log     logger.Logger
	now     func() time.Time
}

// NewWorkingSetMonitor creates a monitor. m may be nil.
func NewWorkingSetMonitor(ls *leads.Service, m *metrics.Metrics, loc *time.Location, log logger.Logger) *WorkingSetMonitor {
	if log == nil {
		log = logger.Default()
	}
	if loc == nil {
		loc = time.Local
	}
	return &WorkingSetMonitor{leads: ls, metrics: m, loc: loc, log: log.With("job", "working_set"), now: time.Now}
}

// Refresh fetches both sheets, reconciles them and updates the gauges.
// A sheet that cannot be read is replaced by the local copy and the
// snapshot is marked degraded.
func (m *WorkingSetMonitor) Refresh(ctx context.Context) (*Snapshot, error) {
	ls, fus, notices, err := m.leads.WorkingSet(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load working set: %w", err)
	}

	now := m.now()
	view := reconcile.Reconcile(ls, fus, now, m.loc)
	snap := &Snapshot{
		Counters:    view.Counters,
		Active:      len(view.Active),
		Overdue:     overdue(view.Active, now, m.loc),
		Excluded:    map[string]int{},
		Degraded:    len(notices) > 0,
		RefreshedAt: now,
	}
	for _, e := range view.Exclusions {
		snap.Excluded[e.Reason]++
	}
	if snap.Degraded {
		m.log.Warn("working set built from local data", "notices", len(notices))
	}
	m.log.Debug("working set refreshed", "active", snap.Active, "overdue", len(snap.Overdue), "excluded", len(view.Exclusions))

	m.metrics.SetWorkingSet(metrics.WorkingSet{
		Active:            snap.Active,
		Pending:           view.Counters.PendingFollowUps,
		Today:             view.Counters.TodayActivity,
		TotalInteractions: view.Counters.TotalInteractions,
		Excluded:          snap.Excluded,
	})
	return snap, nil
}

// overdue lists active follow-up leads whose next date is before today
func overdue(active []reconcile.MergedLead, now time.Time, loc *time.Location) []string {
	today := sheetdate.DayKey(now, loc)
	out := make([]string, 0)
	for _, l := range active {
		if l.LeadStatus != models.StatusFollowUp || strings.TrimSpace(l.NextFollowupDate) == "" {
			continue
		}
		t, err := sheetdate.ParseStrict(l.NextFollowupDate, loc)
		if err != nil {
			continue
		}
		if sheetdate.DayKey(t, loc) < today {
			out = append(out, l.LeadNo)
		}
	}
	return out
}
