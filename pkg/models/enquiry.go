package models

import "time"

// ReceivedType tells whether an enquiry came in directly or through a lead
type ReceivedType string

const (
	ReceivedDirect ReceivedType = "direct"
	ReceivedLead   ReceivedType = "lead"
)

// Enquiry is one row of the enquiry sheet
type Enquiry struct {
	ID                 string       `json:"id"`
	Timestamp          time.Time    `json:"timestamp"`
	TimestampRaw       string       `json:"timestamp_raw,omitempty"`
	TimestampFallback  bool         `json:"timestamp_fallback,omitempty"`
	DirectNoOrLeadNo   string       `json:"direct_no_or_lead_no"`
	ReceivedType       ReceivedType `json:"received_type"`
	PersonName         string       `json:"person_name"`
	TotalPatient       int          `json:"total_patient"`
	PatientName        string       `json:"patient_name"`
	PatientPhoneNumber string       `json:"patient_phone_number"`
	PatientAddress     string       `json:"patient_address"`

	Cells map[string]SourceCell `json:"source_cells,omitempty"`
}

// EnquiryRequest is the enquiry form payload, used for create and update.
// A blank reference on a direct enquiry gets a generated DIR number.
type EnquiryRequest struct {
	DirectNoOrLeadNo   string `json:"direct_no_or_lead_no" validate:"required_if=ReceivedType lead"`
	ReceivedType       string `json:"received_type" validate:"required,oneof=direct lead"`
	PersonName         string `json:"person_name" validate:"required"`
	TotalPatient       int    `json:"total_patient" validate:"min=1"`
	PatientName        string `json:"patient_name" validate:"required"`
	PatientPhoneNumber string `json:"patient_phone_number" validate:"required,min=10,phone"`
	PatientAddress     string `json:"patient_address" validate:"required"`
}

// EnquiryListResponse is the enquiry page payload
type EnquiryListResponse struct {
	Data          []Enquiry `json:"data"`
	Total         int       `json:"total"`
	TotalPatients int       `json:"total_patients"`
	Notices       []Notice  `json:"notices,omitempty"`
}

// EnquiryListRequest holds the enquiry search text
type EnquiryListRequest struct {
	Query string `query:"q"`
}

// CreateEnquiryResponse is returned after an enquiry is added
type CreateEnquiryResponse struct {
	Enquiry Enquiry `json:"enquiry"`
	WriteResult
}
