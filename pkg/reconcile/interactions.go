package reconcile

import (
	"strings"

	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/search"
)

// Interaction is one row of the call tracker history
type Interaction struct {
	models.FollowUp
	CompanyName string `json:"company_name"`
	StatusColor string `json:"status_color"`
}

// Interactions lists follow-ups newest first with the company name of their
// lead, or models.UnknownLead for orphans
func Interactions(leads []models.Lead, followUps []models.FollowUp) []Interaction {
	idx := ByLeadNo(leads)
	sorted := SortNewestFirst(followUps)
	out := make([]Interaction, 0, len(sorted))
	for _, f := range sorted {
		name := models.UnknownLead
		if l, ok := idx[strings.TrimSpace(f.LeadNo)]; ok {
			name = l.CompanyName
		}
		out = append(out, Interaction{
			FollowUp:    f,
			CompanyName: name,
			StatusColor: models.StatusColor(f.LeadStatus),
		})
	}
	return out
}

// FilterInteractions keeps interactions whose lead number or customer note
// contains query and, when leadNo is set and not "all", whose lead matches
func FilterInteractions(items []Interaction, query, leadNo string) []Interaction {
	m := search.NewMatcher(query)
	leadNo = strings.TrimSpace(leadNo)
	out := make([]Interaction, 0, len(items))
	for _, it := range items {
		if !m.Match(it.LeadNo, it.WhatDidCustomerSay) {
			continue
		}
		if leadNo != "" && leadNo != "all" && strings.TrimSpace(it.LeadNo) != leadNo {
			continue
		}
		out = append(out, it)
	}
	return out
}
