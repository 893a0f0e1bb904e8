package mapper

import (
	"errors"

	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// Report summarizes a batch mapping run
type Report struct {
	Sheet     string
	Rows      int
	Fallbacks int
	Issues    []Issue
}

// Count returns how many issues match target
func (r Report) Count(target error) int {
	n := 0
	for _, i := range r.Issues {
		if errors.Is(i.Err, target) {
			n++
		}
	}
	return n
}

// Reasons groups issues by error text
func (r Report) Reasons() map[string]int {
	out := make(map[string]int)
	for _, i := range r.Issues {
		out[i.Err.Error()]++
	}
	return out
}

func (r *Report) add(issues []Issue) {
	for _, i := range issues {
		if errors.Is(i.Err, ErrTimestampFallback) {
			r.Fallbacks++
		}
	}
	r.Issues = append(r.Issues, issues...)
}

// MapLeads maps every row. Rows with a blank lead number are kept so the
// reconciler can count them as exclusions.
func MapLeads(rows [][]string, opts Options) ([]models.Lead, Report) {
	rep := Report{Sheet: LeadSchema.Name, Rows: len(rows)}
	out := make([]models.Lead, 0, len(rows))
	for i, row := range rows {
		l, issues := mapLead(row, i+1, opts)
		rep.add(issues)
		out = append(out, l)
	}
	return out, rep
}

// MapFollowUps maps every Flw-Up row
func MapFollowUps(rows [][]string, opts Options) ([]models.FollowUp, Report) {
	rep := Report{Sheet: FollowUpSchema.Name, Rows: len(rows)}
	out := make([]models.FollowUp, 0, len(rows))
	for i, row := range rows {
		f, issues := mapFollowUp(row, i+1, opts)
		rep.add(issues)
		out = append(out, f)
	}
	return out, rep
}

// MapEnquiries maps every Enquiery row, dropping rows without a reference
func MapEnquiries(rows [][]string, opts Options) ([]models.Enquiry, Report) {
	rep := Report{Sheet: EnquirySchema.Name, Rows: len(rows)}
	out := make([]models.Enquiry, 0, len(rows))
	for i, row := range rows {
		e, issues := mapEnquiry(row, i+1, opts)
		rep.add(issues)
		if e.DirectNoOrLeadNo == "" {
			continue
		}
		out = append(out, e)
	}
	return out, rep
}
