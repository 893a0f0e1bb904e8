// Package reconcile merges the leads sheet with the follow-up sheet.
//
// Reconcile is a pure function of its inputs and the supplied instant: it
// never mutates the slices it is given, and the same inputs on the same
// calendar day always produce the same view in the same order.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// Exclusion reasons
const (
	ReasonMissingLeadNo   = "missing-lead-no"
	ReasonDuplicateLeadNo = "duplicate-lead-no"
)

// Exclusion kinds
const (
	KindLead     = "lead"
	KindFollowUp = "follow_up"
)

// Exclusion records one input row left out of the merge
type Exclusion struct {
	Kind   string `json:"kind"`
	Index  int    `json:"index"`
	LeadNo string `json:"lead_no,omitempty"`
	Reason string `json:"reason"`
}

// MergedLead is an active lead with its latest follow-up overlaid
type MergedLead struct {
	models.Lead
	LatestFollowUp *models.FollowUp `json:"latest_follow_up,omitempty"`
	FollowUpCount  int              `json:"follow_up_count"`
}

// Counters are the call tracker summary numbers
type Counters struct {
	TotalInteractions int `json:"total_interactions"`
	TodayActivity     int `json:"today_activity"`
	PendingFollowUps  int `json:"pending_follow_ups"`
}

// View is the reconciled working set
type View struct {
	Active     []MergedLead `json:"active"`
	Counters   Counters     `json:"counters"`
	Exclusions []Exclusion  `json:"exclusions"`
}

// ExclusionCount returns how many exclusions have the given reason
func (v View) ExclusionCount(reason string) int {
	n := 0
	for _, e := range v.Exclusions {
		if e.Reason == reason {
			n++
		}
	}
	return n
}

// IsActive reports whether a lead has a planned action and no actual one
func IsActive(l models.Lead) bool {
	return strings.TrimSpace(l.Planned) != "" && strings.TrimSpace(l.Actual) == ""
}

// CleanLeads drops leads without a lead number and repeated lead numbers,
// keeping the first occurrence. The input is not modified.
func CleanLeads(leads []models.Lead) ([]models.Lead, []Exclusion) {
	out := make([]models.Lead, 0, len(leads))
	var excl []Exclusion
	seen := make(map[string]bool, len(leads))

	for i, l := range leads {
		no := strings.TrimSpace(l.LeadNo)
		switch {
		case no == "":
			excl = append(excl, Exclusion{Kind: KindLead, Index: i, Reason: ReasonMissingLeadNo})
		case seen[no]:
			excl = append(excl, Exclusion{Kind: KindLead, Index: i, LeadNo: no, Reason: ReasonDuplicateLeadNo})
		default:
			seen[no] = true
			out = append(out, l)
		}
	}
	return out, excl
}

// CleanFollowUps drops follow-ups without a lead number
func CleanFollowUps(followUps []models.FollowUp) ([]models.FollowUp, []Exclusion) {
	out := make([]models.FollowUp, 0, len(followUps))
	var excl []Exclusion
	for i, f := range followUps {
		if strings.TrimSpace(f.LeadNo) == "" {
			excl = append(excl, Exclusion{Kind: KindFollowUp, Index: i, Reason: ReasonMissingLeadNo})
			continue
		}
		out = append(out, f)
	}
	return out, excl
}

// sortKey treats fallback and zero timestamps as the epoch so they sort oldest
func sortKey(f models.FollowUp) time.Time {
	if f.TimestampFallback || f.Timestamp.IsZero() {
		return time.Unix(0, 0)
	}
	return f.Timestamp
}

// SortNewestFirst returns a copy of followUps ordered by timestamp
// descending; ties keep their original order
func SortNewestFirst(followUps []models.FollowUp) []models.FollowUp {
	out := make([]models.FollowUp, len(followUps))
	copy(out, followUps)
	sort.SliceStable(out, func(i, j int) bool {
		return sortKey(out[i]).After(sortKey(out[j]))
	})
	return out
}

// GroupLatest indexes follow-ups by trimmed lead number, newest first
func GroupLatest(followUps []models.FollowUp) map[string][]models.FollowUp {
	groups := make(map[string][]models.FollowUp)
	for _, f := range SortNewestFirst(followUps) {
		no := strings.TrimSpace(f.LeadNo)
		groups[no] = append(groups[no], f)
	}
	return groups
}

// Overlay applies the latest follow-up to a lead. With no follow-ups the
// lead's own status fields are kept as they are.
func Overlay(l models.Lead, newestFirst []models.FollowUp) MergedLead {
	m := MergedLead{Lead: l, FollowUpCount: len(newestFirst)}
	if len(newestFirst) == 0 {
		return m
	}
	latest := newestFirst[0]
	m.LeadStatus = latest.LeadStatus
	m.NextFollowupDate = latest.NextFollowupDate
	m.WhatDidCustomerSay = latest.WhatDidCustomerSay
	m.LatestFollowUp = &latest
	return m
}

// Reconcile builds the call tracker view. Counters use the cleaned
// follow-up collection throughout, and "today" is calendar-day equality in
// loc.
func Reconcile(leads []models.Lead, followUps []models.FollowUp, now time.Time, loc *time.Location) View {
	if loc == nil {
		loc = time.Local
	}

	cleanLeads, leadExcl := CleanLeads(leads)
	cleanFollowUps, fuExcl := CleanFollowUps(followUps)
	groups := GroupLatest(cleanFollowUps)

	v := View{
		Active:     make([]MergedLead, 0),
		Exclusions: make([]Exclusion, 0, len(leadExcl)+len(fuExcl)),
	}
	v.Exclusions = append(v.Exclusions, leadExcl...)
	v.Exclusions = append(v.Exclusions, fuExcl...)

	for _, l := range cleanLeads {
		if !IsActive(l) {
			continue
		}
		m := Overlay(l, groups[strings.TrimSpace(l.LeadNo)])
		v.Active = append(v.Active, m)
		if m.LeadStatus == models.StatusFollowUp {
			v.Counters.PendingFollowUps++
		}
	}

	v.Counters.TotalInteractions = len(cleanFollowUps)
	v.Counters.TodayActivity = CountOnDay(cleanFollowUps, now, loc)
	return v
}

// CountOnDay counts follow-ups with a real timestamp on the same calendar day as day
func CountOnDay(followUps []models.FollowUp, day time.Time, loc *time.Location) int {
	n := 0
	for _, f := range followUps {
		if f.TimestampFallback {
			continue
		}
		if sheetdate.SameDay(f.Timestamp, day, loc) {
			n++
		}
	}
	return n
}

// ByLeadNo indexes leads by trimmed lead number, first occurrence wins
func ByLeadNo(leads []models.Lead) map[string]models.Lead {
	idx := make(map[string]models.Lead, len(leads))
	for _, l := range leads {
		no := strings.TrimSpace(l.LeadNo)
		if no == "" {
			continue
		}
		if _, ok := idx[no]; !ok {
			idx[no] = l
		}
	}
	return idx
}

// MergeAll overlays the latest follow-up on every cleaned lead, active or
// not. Lead order is kept.
func MergeAll(leads []models.Lead, followUps []models.FollowUp) ([]MergedLead, []Exclusion) {
	cleanLeads, excl := CleanLeads(leads)
	cleanFollowUps, fuExcl := CleanFollowUps(followUps)
	excl = append(excl, fuExcl...)
	groups := GroupLatest(cleanFollowUps)

	out := make([]MergedLead, 0, len(cleanLeads))
	for _, l := range cleanLeads {
		out = append(out, Overlay(l, groups[strings.TrimSpace(l.LeadNo)]))
	}
	return out, excl
}
