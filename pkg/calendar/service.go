package calendar

import (
	"context"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// DayRequest selects the calendar day; blank means today
type DayRequest struct {
	Date string `query:"date"`
}

// DayView is the calendar page payload
type DayView struct {
	Date       string          `json:"date"`
	Events     []View          `json:"events"`
	EventDates []string        `json:"event_dates"`
	Notices    []models.Notice `json:"notices,omitempty"`
}

// Service builds calendar views from the lead working set
type Service struct {
	leads *leads.Service
	loc   *time.Location
	log   logger.Logger
	now   func() time.Time
}

// NewService creates a calendar service
func NewService(ls *leads.Service, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{leads: ls, loc: loc, log: log.With("component", "calendar"), now: time.Now}
}

// Day returns the events of one day and every day that has events
func (s *Service) Day(ctx context.Context, req DayRequest) (*DayView, error) {
	day := s.now().In(s.loc)
	if raw := strings.TrimSpace(req.Date); raw != "" {
		t, err := time.ParseInLocation(sheetdate.DateLayout, raw, s.loc)
		if err != nil {
			return nil, domain.NewValidationError("Invalid date", map[string]string{
				"date": "Date must be in YYYY-MM-DD format",
			})
		}
		day = t
	}

	ls, fus, notices, err := s.leads.WorkingSet(ctx)
	if err != nil {
		return nil, err
	}
	merged, _ := reconcile.MergeAll(ls, fus)
	cleanFollowUps, _ := reconcile.CleanFollowUps(fus)

	plain := make([]models.Lead, len(merged))
	for i, m := range merged {
		plain[i] = m.Lead
	}
	events := Build(plain, cleanFollowUps, s.loc)

	view := &DayView{
		Date:       sheetdate.DayKey(day, s.loc),
		Events:     make([]View, 0),
		EventDates: Dates(events, s.loc),
		Notices:    notices,
	}
	for _, e := range On(events, day, s.loc) {
		view.Events = append(view.Events, Describe(e, s.loc))
	}
	s.log.Debug("calendar built", "date", view.Date, "events", len(view.Events), "days", len(view.EventDates))
	return view, nil
}
