// Package calendar places scheduled and completed lead activity on days.
package calendar

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// Event kinds
const (
	KindLeadFollowUp = "lead-followup"
	KindLeadPlanned  = "lead-planned"
	KindInteraction  = "interaction"
)

// Event is one calendar entry. The set of implementations is closed:
// LeadFollowUpEvent, LeadPlannedEvent and InteractionEvent.
type Event interface {
	At() time.Time
	event()
}

// LeadFollowUpEvent is a lead's next follow-up date
type LeadFollowUpEvent struct {
	Lead models.Lead
	On   time.Time
}

// LeadPlannedEvent is a lead's planned action date
type LeadPlannedEvent struct {
	Lead models.Lead
	On   time.Time
}

// InteractionEvent is a recorded follow-up call
type InteractionEvent struct {
	FollowUp models.FollowUp
}

func (e LeadFollowUpEvent) At() time.Time { return e.On }
func (e LeadPlannedEvent) At() time.Time  { return e.On }
func (e InteractionEvent) At() time.Time  { return e.FollowUp.Timestamp }

func (LeadFollowUpEvent) event() {}
func (LeadPlannedEvent) event()  {}
func (InteractionEvent) event()  {}

// View is the display form of an event
type View struct {
	Kind        string `json:"kind"`
	Date        string `json:"date"`
	Title       string `json:"title"`
	Color       string `json:"color"`
	State       string `json:"state"`
	LeadNo      string `json:"lead_no"`
	CompanyName string `json:"company_name,omitempty"`
	PersonName  string `json:"person_name,omitempty"`
	PhoneNumber string `json:"phone_number,omitempty"`
	Note        string `json:"note,omitempty"`
	Time        string `json:"time,omitempty"`
}

// Describe renders an event for display
func Describe(e Event, loc *time.Location) View {
	if loc == nil {
		loc = time.Local
	}
	v := View{Date: sheetdate.DayKey(e.At(), loc), State: "Scheduled"}
	switch ev := e.(type) {
	case LeadFollowUpEvent:
		v.Kind = KindLeadFollowUp
		v.Title = "Follow-up: " + ev.Lead.CompanyName
		v.Color = "bg-orange-100 text-orange-800 border-orange-200"
		fillLead(&v, ev.Lead)
		v.Note = ev.Lead.WhatDidCustomerSay
	case LeadPlannedEvent:
		v.Kind = KindLeadPlanned
		v.Title = "Planned: " + ev.Lead.CompanyName
		v.Color = "bg-blue-100 text-blue-800 border-blue-200"
		fillLead(&v, ev.Lead)
		v.Note = ev.Lead.Remarks
	case InteractionEvent:
		v.Kind = KindInteraction
		v.Title = "Call: " + ev.FollowUp.LeadNo
		v.Color = "bg-green-100 text-green-800 border-green-200"
		v.State = "Completed"
		v.LeadNo = ev.FollowUp.LeadNo
		v.Note = ev.FollowUp.WhatDidCustomerSay
		v.Time = ev.FollowUp.Timestamp.In(loc).Format("3:04 PM")
	default:
		panic(fmt.Sprintf("calendar: unknown event %T", e))
	}
	return v
}

func fillLead(v *View, l models.Lead) {
	v.LeadNo = l.LeadNo
	v.CompanyName = l.CompanyName
	v.PersonName = l.PersonName
	v.PhoneNumber = l.PhoneNumber
}

// Build lists the events for leads and recorded follow-ups. Dates that do
// not parse and follow-ups without a real timestamp produce no event.
func Build(leads []models.Lead, followUps []models.FollowUp, loc *time.Location) []Event {
	if loc == nil {
		loc = time.Local
	}
	var out []Event
	for _, l := range leads {
		if t, ok := parseDay(l.NextFollowupDate, loc); ok {
			out = append(out, LeadFollowUpEvent{Lead: l, On: t})
		}
		if t, ok := parseDay(l.Planned, loc); ok {
			out = append(out, LeadPlannedEvent{Lead: l, On: t})
		}
	}
	for _, f := range followUps {
		if f.TimestampFallback || f.Timestamp.IsZero() {
			continue
		}
		out = append(out, InteractionEvent{FollowUp: f})
	}
	return out
}

func parseDay(raw string, loc *time.Location) (time.Time, bool) {
	if strings.TrimSpace(raw) == "" {
		return time.Time{}, false
	}
	t, err := sheetdate.ParseStrict(raw, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// On returns the events that fall on day in loc, in input order
func On(events []Event, day time.Time, loc *time.Location) []Event {
	var out []Event
	for _, e := range events {
		if sheetdate.SameDay(e.At(), day, loc) {
			out = append(out, e)
		}
	}
	return out
}

// Dates returns the distinct yyyy-mm-dd days that carry at least one event, ascending
func Dates(events []Event, loc *time.Location) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, e := range events {
		k := sheetdate.DayKey(e.At(), loc)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
