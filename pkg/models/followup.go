package models

import "time"

// UnknownLead is shown for follow-ups whose lead number matches no lead
const UnknownLead = "Unknown Lead"

// FollowUp is one interaction row of the follow-up sheet
type FollowUp struct {
	ID                 string     `json:"id"`
	Timestamp          time.Time  `json:"timestamp"`
	TimestampRaw       string     `json:"timestamp_raw,omitempty"`
	TimestampFallback  bool       `json:"timestamp_fallback,omitempty"`
	LeadNo             string     `json:"lead_no"`
	LeadStatus         LeadStatus `json:"lead_status"`
	NextFollowupDate   string     `json:"next_followup_date"`
	WhatDidCustomerSay string     `json:"what_did_customer_say"`

	Cells map[string]SourceCell `json:"source_cells,omitempty"`
}

// CreateFollowUpRequest is the follow-up form payload
type CreateFollowUpRequest struct {
	LeadNo             string `json:"lead_no" validate:"required"`
	LeadStatus         string `json:"lead_status" validate:"required,oneof=follow-up received cancelled"`
	NextFollowupDate   string `json:"next_followup_date" validate:"omitempty,datetime=2006-01-02"`
	WhatDidCustomerSay string `json:"what_did_customer_say" validate:"required"`
}

// CreateFollowUpResponse is returned after a follow-up is recorded
type CreateFollowUpResponse struct {
	FollowUp FollowUp `json:"follow_up"`
	WriteResult
}

// CallTrackerRequest holds the call tracker filters
type CallTrackerRequest struct {
	Query  string `query:"q"`
	LeadNo string `query:"lead_no"`
}
