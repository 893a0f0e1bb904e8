// Package mapper turns positional sheet rows into typed records and back.
package mapper

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
)

// NotAvailable is the value blank display cells map to
const NotAvailable = "N/A"

// Status1Pending is the second-stage status of every mapped lead; the sheet has no column for it
const Status1Pending = "pending"

// Row issues
var (
	ErrShapeMismatch     = errors.New("row is shorter than the key column")
	ErrMissingKey        = errors.New("key cell is blank")
	ErrTimestampFallback = errors.New("timestamp could not be parsed")
	ErrInvalidStatus     = errors.New("unknown lead status")
	ErrInvalidNumber     = errors.New("not a non-negative number")
	ErrInvalidType       = errors.New("unknown received type")
)

// Issue describes something the mapper had to paper over in one row
type Issue struct {
	Sheet string
	Row   int
	Field string
	Value string
	Err   error
}

func (i Issue) Error() string {
	return fmt.Sprintf("%s row %d %s %q: %v", i.Sheet, i.Row, i.Field, i.Value, i.Err)
}

func (i Issue) Unwrap() error { return i.Err }

// Options control defaults applied while mapping
type Options struct {
	// StatusDefault applies to blank or unknown status cells
	StatusDefault models.LeadStatus
	// DisplayDefault replaces blank display cells; empty means NotAvailable
	DisplayDefault string
	// Now is substituted for unparseable timestamps
	Now      time.Time
	Location *time.Location
	NewID    func() string
}

// DefaultOptions are the options used by the lead details and call tracker views
func DefaultOptions(now time.Time, loc *time.Location) Options {
	return Options{
		StatusDefault: models.StatusFollowUp,
		Now:           now,
		Location:      loc,
	}
}

func (o Options) normalize() Options {
	if !o.StatusDefault.Valid() {
		o.StatusDefault = models.StatusFollowUp
	}
	if o.DisplayDefault == "" {
		o.DisplayDefault = NotAvailable
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	return o
}

type reader struct {
	schema Schema
	row    []string
	rowNum int
	opts   Options
	issues []Issue
	cells  map[string]models.SourceCell
}

func newReader(s Schema, row []string, rowNum int, opts Options) *reader {
	r := &reader{schema: s, row: row, rowNum: rowNum, opts: opts.normalize()}
	if key := s.Key(); key.Index >= len(row) {
		r.issue(key.Field, "", ErrShapeMismatch)
	}
	return r
}

func (r *reader) issue(field, value string, err error) {
	r.issues = append(r.issues, Issue{Sheet: r.schema.Name, Row: r.rowNum, Field: field, Value: value, Err: err})
}

func (r *reader) raw(field string) string {
	i := r.schema.Index(field)
	if i < 0 || i >= len(r.row) {
		return ""
	}
	return r.row[i]
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

// keep remembers the text of a non-blank cell that mapped to something else
func (r *reader) keep(field, raw, mapped string) {
	if blank(raw) || raw == mapped {
		return
	}
	if r.cells == nil {
		r.cells = make(map[string]models.SourceCell)
	}
	r.cells[field] = models.SourceCell{Raw: raw, Mapped: mapped}
}

func (r *reader) key(field string) string {
	raw := r.raw(field)
	v := strings.TrimSpace(raw)
	if v == "" && !r.shapeMismatch() {
		r.issue(field, "", ErrMissingKey)
	}
	r.keep(field, raw, v)
	return v
}

func (r *reader) shapeMismatch() bool {
	for _, i := range r.issues {
		if errors.Is(i.Err, ErrShapeMismatch) {
			return true
		}
	}
	return false
}

func (r *reader) text(field string) string {
	v := r.raw(field)
	if blank(v) {
		return r.opts.DisplayDefault
	}
	return v
}

func (r *reader) date(field string) string {
	v := r.raw(field)
	if blank(v) {
		return ""
	}
	return v
}

func (r *reader) timestamp(field string) sheetdate.Result {
	v := r.raw(field)
	res := sheetdate.Parse(v, r.opts.Now, r.opts.Location)
	if res.Fallback {
		r.issue(field, v, ErrTimestampFallback)
	}
	return res
}

func (r *reader) status(field string) models.LeadStatus {
	v := r.raw(field)
	if blank(v) {
		return r.opts.StatusDefault
	}
	s, ok := models.ParseLeadStatus(v)
	if !ok {
		r.issue(field, v, ErrInvalidStatus)
		s = r.opts.StatusDefault
	}
	r.keep(field, v, string(s))
	return s
}

func (r *reader) number(field string) int {
	raw := r.raw(field)
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	n := 0
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		r.issue(field, v, ErrInvalidNumber)
	} else {
		n = int(f)
	}
	r.keep(field, raw, strconv.Itoa(n))
	return n
}

func (r *reader) receivedType(field string) models.ReceivedType {
	raw := r.raw(field)
	t := models.ReceivedType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case models.ReceivedDirect, models.ReceivedLead:
	case "":
		return models.ReceivedDirect
	default:
		r.issue(field, string(t), ErrInvalidType)
		t = models.ReceivedDirect
	}
	r.keep(field, raw, string(t))
	return t
}

// MapLead maps one FMS row. It never fails; problems are returned as issues.
func MapLead(row []string, opts Options) (models.Lead, []Issue) {
	return mapLead(row, 0, opts)
}

func mapLead(row []string, rowNum int, opts Options) (models.Lead, []Issue) {
	r := newReader(LeadSchema, row, rowNum, opts)
	ts := r.timestamp(FieldTimestamp)

	l := models.Lead{
		ID:                 r.opts.NewID(),
		Timestamp:          ts.Time,
		TimestampRaw:       ts.Raw,
		TimestampFallback:  ts.Fallback,
		LeadNo:             r.key(FieldLeadNo),
		ReceivedBy:         r.text(FieldReceivedBy),
		Source:             r.text(FieldSource),
		CompanyName:        r.text(FieldCompanyName),
		PhoneNumber:        r.text(FieldPhoneNumber),
		PersonName:         r.text(FieldPersonName),
		Location:           r.text(FieldLocation),
		Email:              r.text(FieldEmail),
		State:              r.text(FieldState),
		Address:            r.text(FieldAddress),
		NatureOfBusiness:   r.text(FieldNatureOfBusiness),
		Remarks:            r.text(FieldRemarks),
		Planned:            r.date(FieldPlanned),
		Actual:             r.date(FieldActual),
		TimeDelay:          r.text(FieldTimeDelay),
		LeadStatus:         r.status(FieldLeadStatus),
		NextFollowupDate:   r.date(FieldNextFollowupDate),
		WhatDidCustomerSay: r.text(FieldWhatDidCustomerSay),
		TimeDelay1:         r.text(FieldTimeDelay1),
		Status1:            Status1Pending,
	}
	l.Cells = r.cells
	return l, r.issues
}

// MapFollowUp maps one Flw-Up row
func MapFollowUp(row []string, opts Options) (models.FollowUp, []Issue) {
	return mapFollowUp(row, 0, opts)
}

func mapFollowUp(row []string, rowNum int, opts Options) (models.FollowUp, []Issue) {
	r := newReader(FollowUpSchema, row, rowNum, opts)
	ts := r.timestamp(FieldTimestamp)

	f := models.FollowUp{
		ID:                 r.opts.NewID(),
		Timestamp:          ts.Time,
		TimestampRaw:       ts.Raw,
		TimestampFallback:  ts.Fallback,
		LeadNo:             r.key(FieldLeadNo),
		LeadStatus:         r.status(FieldLeadStatus),
		NextFollowupDate:   r.date(FieldNextFollowupDate),
		WhatDidCustomerSay: r.text(FieldWhatDidCustomerSay),
		Cells:              r.cells,
	}
	return f, r.issues
}

// MapEnquiry maps one Enquiery row
func MapEnquiry(row []string, opts Options) (models.Enquiry, []Issue) {
	return mapEnquiry(row, 0, opts)
}

func mapEnquiry(row []string, rowNum int, opts Options) (models.Enquiry, []Issue) {
	r := newReader(EnquirySchema, row, rowNum, opts)
	ts := r.timestamp(FieldTimestamp)

	e := models.Enquiry{
		ID:                 r.opts.NewID(),
		Timestamp:          ts.Time,
		TimestampRaw:       ts.Raw,
		TimestampFallback:  ts.Fallback,
		DirectNoOrLeadNo:   r.key(FieldDirectNoOrLeadNo),
		ReceivedType:       r.receivedType(FieldReceivedType),
		PersonName:         r.text(FieldPersonName),
		TotalPatient:       r.number(FieldTotalPatient),
		PatientName:        r.text(FieldPatientName),
		PatientPhoneNumber: r.text(FieldPatientPhoneNumber),
		PatientAddress:     r.text(FieldPatientAddress),
	}
	e.Cells = r.cells
	return e, r.issues
}
