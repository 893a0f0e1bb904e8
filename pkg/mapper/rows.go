package mapper

import (
	"strconv"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

type writer struct {
	schema Schema
	row    []string
	cells  map[string]models.SourceCell
}

func newWriter(s Schema, cells map[string]models.SourceCell) *writer {
	return &writer{schema: s, row: make([]string, s.Width()), cells: cells}
}

// cell writes the original sheet text when value is still what it was mapped to
func (w *writer) cell(field, value string) {
	if c, ok := w.cells[field]; ok && c.Mapped == value {
		value = c.Raw
	}
	w.set(field, value)
}

func (w *writer) set(field, value string) {
	if i := w.schema.Index(field); i >= 0 {
		w.row[i] = value
	}
}

// timestampCell prefers the original cell text so rows round-trip exactly
func timestampCell(raw string, fallback bool, t time.Time) string {
	if raw != "" {
		return raw
	}
	if fallback || t.IsZero() {
		return ""
	}
	return sheetdate.FormatSheet(t)
}

// LeadRow writes a lead back into the FMS column layout. Non-blank cells keep
// their sheet text; blank display cells come back as NotAvailable and blank
// dates as empty strings.
func LeadRow(l models.Lead) []string {
	w := newWriter(LeadSchema, l.Cells)
	w.set(FieldTimestamp, timestampCell(l.TimestampRaw, l.TimestampFallback, l.Timestamp))
	w.cell(FieldLeadNo, l.LeadNo)
	w.set(FieldReceivedBy, l.ReceivedBy)
	w.set(FieldSource, l.Source)
	w.set(FieldCompanyName, l.CompanyName)
	w.set(FieldPhoneNumber, l.PhoneNumber)
	w.set(FieldPersonName, l.PersonName)
	w.set(FieldLocation, l.Location)
	w.set(FieldEmail, l.Email)
	w.set(FieldState, l.State)
	w.set(FieldAddress, l.Address)
	w.set(FieldNatureOfBusiness, l.NatureOfBusiness)
	w.set(FieldRemarks, l.Remarks)
	w.set(FieldPlanned, l.Planned)
	w.set(FieldActual, l.Actual)
	w.set(FieldTimeDelay, l.TimeDelay)
	w.cell(FieldLeadStatus, string(l.LeadStatus))
	w.set(FieldNextFollowupDate, l.NextFollowupDate)
	w.set(FieldWhatDidCustomerSay, l.WhatDidCustomerSay)
	w.set(FieldTimeDelay1, l.TimeDelay1)
	return w.row
}

// NewLeadRow is the row appended to FMS for a freshly entered lead. The
// follow-up columns are left for the sheet's own formulas.
func NewLeadRow(l models.Lead) []string {
	row := LeadRow(l)
	for _, f := range []string{FieldPlanned, FieldActual, FieldTimeDelay, FieldLeadStatus, FieldNextFollowupDate, FieldWhatDidCustomerSay, FieldTimeDelay1} {
		row[LeadSchema.Index(f)] = ""
	}
	if l.Remarks == NotAvailable {
		row[LeadSchema.Index(FieldRemarks)] = ""
	}
	return row[:LeadSchema.Index(FieldWhatDidCustomerSay)+1]
}

// FollowUpRow writes a follow-up back into the Flw-Up column layout
func FollowUpRow(f models.FollowUp) []string {
	w := newWriter(FollowUpSchema, f.Cells)
	w.set(FieldTimestamp, timestampCell(f.TimestampRaw, f.TimestampFallback, f.Timestamp))
	w.cell(FieldLeadNo, f.LeadNo)
	w.cell(FieldLeadStatus, string(f.LeadStatus))
	w.set(FieldNextFollowupDate, f.NextFollowupDate)
	w.set(FieldWhatDidCustomerSay, f.WhatDidCustomerSay)
	return w.row
}

// EnquiryRow writes an enquiry back into the Enquiery column layout
func EnquiryRow(e models.Enquiry) []string {
	w := newWriter(EnquirySchema, e.Cells)
	w.set(FieldTimestamp, timestampCell(e.TimestampRaw, e.TimestampFallback, e.Timestamp))
	w.cell(FieldDirectNoOrLeadNo, e.DirectNoOrLeadNo)
	w.cell(FieldReceivedType, string(e.ReceivedType))
	w.set(FieldPersonName, e.PersonName)
	w.cell(FieldTotalPatient, strconv.Itoa(e.TotalPatient))
	w.set(FieldPatientName, e.PatientName)
	w.set(FieldPatientPhoneNumber, e.PatientPhoneNumber)
	w.set(FieldPatientAddress, e.PatientAddress)
	return w.row
}
