// Package reports builds the read-only summary pages: the dashboard and
// the received patients list.
package reports

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/enquiries"
	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/search"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// RecentLeadsLimit is how many leads the dashboard lists
const RecentLeadsLimit = 5

// Received patient sources
const (
	SourceDirect   = "Direct"
	SourceFromLead = "From Lead"
)

// Dashboard is the dashboard page payload
type Dashboard struct {
	TotalLeads       int                    `json:"total_leads"`
	FollowUpLeads    int                    `json:"follow_up_leads"`
	ReceivedPatients int                    `json:"received_patients"`
	TotalEnquiries   int                    `json:"total_enquiries"`
	PendingFollowUps int                    `json:"pending_follow_ups"`
	ConversionRate   int                    `json:"conversion_rate"`
	RecentLeads      []reconcile.MergedLead `json:"recent_leads"`
	Notices          []models.Notice        `json:"notices,omitempty"`
}

// ReceivedPatient is one row of the received patients page
type ReceivedPatient struct {
	models.Enquiry
	Source string `json:"source"`
}

// ReceivedPatientsRequest holds the received patients search text
type ReceivedPatientsRequest struct {
	Query string `query:"q"`
}

// ReceivedPatients is the received patients page payload. The totals cover
// every received patient, not just the search matches.
type ReceivedPatients struct {
	Data          []ReceivedPatient `json:"data"`
	Total         int               `json:"total"`
	TotalPatients int               `json:"total_patients"`
	ThisMonth     int               `json:"this_month"`
	Notices       []models.Notice   `json:"notices,omitempty"`
}

// Service builds reports from the lead and enquiry services
type Service struct {
	leads     *leads.Service
	enquiries *enquiries.Service
	loc       *time.Location
	log       logger.Logger
	now       func() time.Time
}

// NewService creates a report service
func NewService(ls *leads.Service, es *enquiries.Service, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		leads:     ls,
		enquiries: es,
		loc:       loc,
		log:       log.With("component", "reports"),
		now:       time.Now,
	}
}

// merged loads both sheets and overlays follow-ups onto every lead
func (s *Service) merged(ctx context.Context) ([]reconcile.MergedLead, []models.Notice, error) {
	ls, fus, notices, err := s.leads.WorkingSet(ctx)
	if err != nil {
		return nil, nil, err
	}
	merged, excl := reconcile.MergeAll(ls, fus)
	if len(excl) > 0 {
		s.log.Debug("rows left out of reports", "excluded", len(excl))
	}
	return merged, notices, nil
}

// Dashboard computes the dashboard counters and the most recent leads
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	merged, notices, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}
	enqs, enqNotices, err := s.enquiries.Load(ctx)
	if err != nil {
		return nil, err
	}
	notices = append(notices, enqNotices...)

	today := sheetdate.DayKey(s.now(), s.loc)
	d := &Dashboard{
		TotalLeads:     len(merged),
		TotalEnquiries: len(enqs),
		Notices:        notices,
	}
	for _, l := range merged {
		switch l.LeadStatus {
		case models.StatusFollowUp:
			d.FollowUpLeads++
			if due, ok := s.dueBy(l.NextFollowupDate, today); ok && due {
				d.PendingFollowUps++
			}
		case models.StatusReceived:
			d.ReceivedPatients++
		}
	}
	if d.TotalLeads > 0 {
		d.ConversionRate = (d.ReceivedPatients*100 + d.TotalLeads/2) / d.TotalLeads
	}
	d.RecentLeads = recent(merged, RecentLeadsLimit)
	return d, nil
}

// dueBy reports whether a next follow-up date falls on or before today.
// ok is false for blank or unreadable dates.
func (s *Service) dueBy(raw, today string) (due, ok bool) {
	if strings.TrimSpace(raw) == "" {
		return false, false
	}
	t, err := sheetdate.ParseStrict(raw, s.loc)
	if err != nil {
		return false, false
	}
	return sheetdate.DayKey(t, s.loc) <= today, true
}

func leadTime(l reconcile.MergedLead) time.Time {
	if l.TimestampFallback {
		return time.Unix(0, 0)
	}
	return l.Timestamp
}

// recent returns up to n leads, newest first
func recent(merged []reconcile.MergedLead, n int) []reconcile.MergedLead {
	sorted := make([]reconcile.MergedLead, len(merged))
	copy(sorted, merged)
	sort.SliceStable(sorted, func(i, j int) bool {
		return leadTime(sorted[i]).After(leadTime(sorted[j]))
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ReceivedPatients lists direct enquiries and enquiries whose lead has been
// received, newest first
func (s *Service) ReceivedPatients(ctx context.Context, req ReceivedPatientsRequest) (*ReceivedPatients, error) {
	merged, notices, err := s.merged(ctx)
	if err != nil {
		return nil, err
	}
	enqs, enqNotices, err := s.enquiries.Load(ctx)
	if err != nil {
		return nil, err
	}
	notices = append(notices, enqNotices...)

	received := make(map[string]bool, len(merged))
	for _, l := range merged {
		if l.LeadStatus == models.StatusReceived {
			received[strings.TrimSpace(l.LeadNo)] = true
		}
	}

	var all []ReceivedPatient
	for _, e := range enqs {
		switch {
		case e.ReceivedType == models.ReceivedDirect:
			all = append(all, ReceivedPatient{Enquiry: e, Source: SourceDirect})
		case received[strings.TrimSpace(e.DirectNoOrLeadNo)]:
			all = append(all, ReceivedPatient{Enquiry: e, Source: SourceFromLead})
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Timestamp.After(all[j].Timestamp)
	})

	now := s.now().In(s.loc)
	m := search.NewMatcher(req.Query)
	out := &ReceivedPatients{Data: make([]ReceivedPatient, 0, len(all)), Notices: notices}
	for _, p := range all {
		out.TotalPatients += p.TotalPatient
		if !p.TimestampFallback && sameMonth(p.Timestamp.In(s.loc), now) {
			out.ThisMonth++
		}
		if m.Match(append(enquiries.Fields(p.Enquiry), p.Source)...) {
			out.Data = append(out.Data, p)
		}
	}
	out.Total = len(out.Data)
	return out, nil
}

func sameMonth(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month()
}
