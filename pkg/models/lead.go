package models

import (
	"strings"
	"time"
)

// LeadStatus is the display status of a lead or follow-up
type LeadStatus string

const (
	StatusFollowUp  LeadStatus = "follow-up"
	StatusReceived  LeadStatus = "received"
	StatusCancelled LeadStatus = "cancelled"
)

// Valid reports whether s is one of the known statuses
func (s LeadStatus) Valid() bool {
	switch s {
	case StatusFollowUp, StatusReceived, StatusCancelled:
		return true
	}
	return false
}

// ParseLeadStatus normalizes a raw cell value into a LeadStatus.
// The second return value is false when the value is blank or unknown.
func ParseLeadStatus(raw string) (LeadStatus, bool) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return "", false
	}
	v = strings.NewReplacer(" ", "-", "_", "-").Replace(v)
	if v == "followup" {
		v = string(StatusFollowUp)
	}
	s := LeadStatus(v)
	return s, s.Valid()
}

// StatusColor returns the badge classes used for a status
func StatusColor(s LeadStatus) string {
	switch s {
	case StatusReceived:
		return "bg-green-100 text-green-800 hover:bg-green-100"
	case StatusCancelled:
		return "bg-red-100 text-red-800 hover:bg-red-100"
	default:
		return "bg-blue-100 text-blue-800 hover:bg-blue-100"
	}
}

// Lead is one row of the leads sheet
type Lead struct {
	ID                 string     `json:"id"`
	Timestamp          time.Time  `json:"timestamp"`
	TimestampRaw       string     `json:"timestamp_raw,omitempty"`
	TimestampFallback  bool       `json:"timestamp_fallback,omitempty"`
	LeadNo             string     `json:"lead_no"`
	ReceivedBy         string     `json:"received_by"`
	Source             string     `json:"source"`
	CompanyName        string     `json:"company_name"`
	PhoneNumber        string     `json:"phone_number"`
	PersonName         string     `json:"person_name"`
	Location           string     `json:"location"`
	Email              string     `json:"email"`
	State              string     `json:"state"`
	Address            string     `json:"address"`
	NatureOfBusiness   string     `json:"nature_of_business"`
	Remarks            string     `json:"remarks"`
	Planned            string     `json:"planned"`
	Actual             string     `json:"actual"`
	TimeDelay          string     `json:"time_delay"`
	LeadStatus         LeadStatus `json:"lead_status"`
	NextFollowupDate   string     `json:"next_followup_date"`
	WhatDidCustomerSay string     `json:"what_did_customer_say"`
	Planned1           string     `json:"planned1"`
	Actual1            string     `json:"actual1"`
	TimeDelay1         string     `json:"time_delay1"`
	Status1            string     `json:"status1"`

	// Cells holds the sheet text of cells that were normalized while mapping
	Cells map[string]SourceCell `json:"source_cells,omitempty"`
}

// SourceCell is the original text of a normalized cell and the value it was
// normalized to. Row writers use Raw while the typed field still holds Mapped.
type SourceCell struct {
	Raw    string `json:"raw"`
	Mapped string `json:"mapped"`
}

// LeadPatch carries the fields to change on a stored lead; nil fields are left alone
type LeadPatch struct {
	CompanyName        *string     `json:"company_name,omitempty"`
	PhoneNumber        *string     `json:"phone_number,omitempty"`
	PersonName         *string     `json:"person_name,omitempty"`
	Email              *string     `json:"email,omitempty"`
	Remarks            *string     `json:"remarks,omitempty"`
	Planned            *string     `json:"planned,omitempty"`
	Actual             *string     `json:"actual,omitempty"`
	LeadStatus         *LeadStatus `json:"lead_status,omitempty"`
	NextFollowupDate   *string     `json:"next_followup_date,omitempty"`
	WhatDidCustomerSay *string     `json:"what_did_customer_say,omitempty"`
}

// Apply copies the non-nil fields of p onto l
func (p LeadPatch) Apply(l *Lead) {
	setString(&l.CompanyName, p.CompanyName)
	setString(&l.PhoneNumber, p.PhoneNumber)
	setString(&l.PersonName, p.PersonName)
	setString(&l.Email, p.Email)
	setString(&l.Remarks, p.Remarks)
	setString(&l.Planned, p.Planned)
	setString(&l.Actual, p.Actual)
	if p.LeadStatus != nil {
		l.LeadStatus = *p.LeadStatus
	}
	setString(&l.NextFollowupDate, p.NextFollowupDate)
	setString(&l.WhatDidCustomerSay, p.WhatDidCustomerSay)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// CreateLeadRequest is the lead form payload
type CreateLeadRequest struct {
	ReceivedBy       string `json:"received_by" validate:"required"`
	Source           string `json:"source" validate:"required"`
	CompanyName      string `json:"company_name" validate:"required"`
	PhoneNumber      string `json:"phone_number" validate:"required,min=10,phone"`
	PersonName       string `json:"person_name" validate:"required"`
	Location         string `json:"location" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	State            string `json:"state" validate:"required"`
	Address          string `json:"address" validate:"required"`
	NatureOfBusiness string `json:"nature_of_business" validate:"required"`
	Remarks          string `json:"remarks"`
}

// LeadListRequest holds the lead details filters
type LeadListRequest struct {
	Query  string `query:"q" json:"q"`
	Status string `query:"status" json:"status" validate:"omitempty,oneof=follow-up received cancelled"`
}

// LeadListResponse is the lead details page payload
type LeadListResponse struct {
	Data     []Lead   `json:"data"`
	Total    int      `json:"total"`
	Excluded int      `json:"excluded,omitempty"`
	Notices  []Notice `json:"notices,omitempty"`
}

// WriteResult reports the outcome of a create operation that writes locally and remotely
type WriteResult struct {
	Synced bool    `json:"synced"`
	Notice *Notice `json:"notice,omitempty"`
}

// CreateLeadResponse is returned after a lead is added
type CreateLeadResponse struct {
	Lead Lead `json:"lead"`
	WriteResult
}
