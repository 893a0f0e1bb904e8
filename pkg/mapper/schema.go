package mapper

import (
	"errors"
	"fmt"
)

// Kind tells the mapper how to read and write a column
type Kind int

const (
	// KindText is a display field; blank becomes NotAvailable
	KindText Kind = iota
	// KindKey is the business key; blank marks the row malformed
	KindKey
	// KindDate is a date field kept as text; blank stays blank
	KindDate
	// KindTimestamp is parsed with sheetdate
	KindTimestamp
	// KindStatus is a LeadStatus; blank takes the caller's default
	KindStatus
	// KindNumber is a non-negative integer; blank or junk becomes 0
	KindNumber
	// KindReceivedType is direct or lead
	KindReceivedType
)

// Column binds a record field to a sheet column position
type Column struct {
	Field string
	Index int
	Kind  Kind
}

// Schema is the column layout of one sheet
type Schema struct {
	Name     string
	Columns  []Column
	Required []string
}

// Schema errors
var (
	ErrDuplicateIndex = errors.New("duplicate column index")
	ErrDuplicateField = errors.New("duplicate field")
	ErrNegativeIndex  = errors.New("negative column index")
	ErrMissingField   = errors.New("required field not mapped")
	ErrKeyColumn      = errors.New("schema must have exactly one key column")
)

// Validate checks the column table. It runs at startup so a reordered sheet
// layout fails loudly instead of shifting fields.
func (s Schema) Validate() error {
	var errs []error
	byIndex := make(map[int]string, len(s.Columns))
	byField := make(map[string]bool, len(s.Columns))
	keys := 0

	for _, c := range s.Columns {
		if c.Index < 0 {
			errs = append(errs, fmt.Errorf("%s.%s: %w (%d)", s.Name, c.Field, ErrNegativeIndex, c.Index))
		}
		if other, ok := byIndex[c.Index]; ok {
			errs = append(errs, fmt.Errorf("%s: %w %d used by %s and %s", s.Name, ErrDuplicateIndex, c.Index, other, c.Field))
		}
		if byField[c.Field] {
			errs = append(errs, fmt.Errorf("%s: %w %s", s.Name, ErrDuplicateField, c.Field))
		}
		if c.Kind == KindKey {
			keys++
		}
		byIndex[c.Index] = c.Field
		byField[c.Field] = true
	}

	if keys != 1 {
		errs = append(errs, fmt.Errorf("%s: %w (found %d)", s.Name, ErrKeyColumn, keys))
	}
	for _, f := range s.Required {
		if !byField[f] {
			errs = append(errs, fmt.Errorf("%s: %w %s", s.Name, ErrMissingField, f))
		}
	}

	return errors.Join(errs...)
}

// Index returns the column position of field, or -1
func (s Schema) Index(field string) int {
	for _, c := range s.Columns {
		if c.Field == field {
			return c.Index
		}
	}
	return -1
}

// Key returns the key column
func (s Schema) Key() Column {
	for _, c := range s.Columns {
		if c.Kind == KindKey {
			return c
		}
	}
	return Column{Index: -1}
}

// Width is the number of cells a row written with this schema has
func (s Schema) Width() int {
	w := 0
	for _, c := range s.Columns {
		if c.Index+1 > w {
			w = c.Index + 1
		}
	}
	return w
}

// Lead sheet fields
const (
	FieldTimestamp          = "timestamp"
	FieldLeadNo             = "leadNo"
	FieldReceivedBy         = "receivedBy"
	FieldSource             = "source"
	FieldCompanyName        = "companyName"
	FieldPhoneNumber        = "phoneNumber"
	FieldPersonName         = "personName"
	FieldLocation           = "location"
	FieldEmail              = "email"
	FieldState              = "state"
	FieldAddress            = "address"
	FieldNatureOfBusiness   = "natureOfBusiness"
	FieldRemarks            = "remarks"
	FieldPlanned            = "planned"
	FieldActual             = "actual"
	FieldTimeDelay          = "timeDelay"
	FieldLeadStatus         = "leadStatus"
	FieldNextFollowupDate   = "nextFollowupDate"
	FieldWhatDidCustomerSay = "whatDidCustomerSay"
	FieldTimeDelay1         = "timeDelay1"
)

// Enquiry sheet fields
const (
	FieldDirectNoOrLeadNo   = "directNoOrLeadNo"
	FieldReceivedType       = "receivedType"
	FieldTotalPatient       = "totalPatient"
	FieldPatientName        = "patientName"
	FieldPatientPhoneNumber = "patientPhoneNumber"
	FieldPatientAddress     = "patientAddress"
)

// LeadSchema is the layout of the FMS sheet
var LeadSchema = Schema{
	Name: "leads",
	Columns: []Column{
		{FieldTimestamp, 0, KindTimestamp},
		{FieldLeadNo, 1, KindKey},
		{FieldReceivedBy, 2, KindText},
		{FieldSource, 3, KindText},
		{FieldCompanyName, 4, KindText},
		{FieldPhoneNumber, 5, KindText},
		{FieldPersonName, 6, KindText},
		{FieldLocation, 7, KindText},
		{FieldEmail, 8, KindText},
		{FieldState, 9, KindText},
		{FieldAddress, 10, KindText},
		{FieldNatureOfBusiness, 11, KindText},
		{FieldRemarks, 12, KindText},
		{FieldPlanned, 13, KindDate},
		{FieldActual, 14, KindDate},
		{FieldTimeDelay, 15, KindText},
		{FieldLeadStatus, 16, KindStatus},
		{FieldNextFollowupDate, 17, KindDate},
		{FieldWhatDidCustomerSay, 18, KindText},
		{FieldTimeDelay1, 19, KindText},
	},
	Required: []string{FieldTimestamp, FieldLeadNo, FieldPlanned, FieldActual, FieldLeadStatus, FieldNextFollowupDate, FieldWhatDidCustomerSay},
}

// FollowUpSchema is the layout of the Flw-Up sheet
var FollowUpSchema = Schema{
	Name: "follow_ups",
	Columns: []Column{
		{FieldTimestamp, 0, KindTimestamp},
		{FieldLeadNo, 1, KindKey},
		{FieldLeadStatus, 2, KindStatus},
		{FieldNextFollowupDate, 3, KindDate},
		{FieldWhatDidCustomerSay, 4, KindText},
	},
	Required: []string{FieldTimestamp, FieldLeadNo, FieldLeadStatus},
}

// EnquirySchema is the layout of the Enquiery sheet
var EnquirySchema = Schema{
	Name: "enquiries",
	Columns: []Column{
		{FieldTimestamp, 0, KindTimestamp},
		{FieldDirectNoOrLeadNo, 1, KindKey},
		{FieldReceivedType, 2, KindReceivedType},
		{FieldPersonName, 3, KindText},
		{FieldTotalPatient, 4, KindNumber},
		{FieldPatientName, 5, KindText},
		{FieldPatientPhoneNumber, 6, KindText},
		{FieldPatientAddress, 7, KindText},
	},
	Required: []string{FieldTimestamp, FieldDirectNoOrLeadNo, FieldReceivedType, FieldTotalPatient},
}

// ValidateAll validates every built-in schema
func ValidateAll() error {
	return errors.Join(LeadSchema.Validate(), FollowUpSchema.Validate(), EnquirySchema.Validate())
}
