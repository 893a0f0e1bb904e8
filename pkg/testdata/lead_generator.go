// Package testdata generates realistic sheet rows and records for tests.
package testdata

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/jordanlanch/leadtoorder/pkg/mapper"
	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// LeadGeneratorConfig configures lead row generation
type LeadGeneratorConfig struct {
	Count int
	// StartNo is the number of the first generated lead (LN-%03d)
	StartNo int
	// PlannedChance and ActualChance control the follow-up columns, so a
	// run contains active, completed and unscheduled leads
	PlannedChance float64
	ActualChance  float64
	// BlankChance is the probability each optional display cell is blank
	BlankChance float64
	// WhitespaceChance makes blank planned/actual cells whitespace-only
	WhitespaceChance float64
	Base             time.Time
}

// Sources mirrors the lead source options of the lead form
var Sources = []string{"Website", "Referral", "Cold Call", "Exhibition", "Social Media", "IndiaMART", "Walk-in"}

// Statuses lists every lead status
var Statuses = []models.LeadStatus{models.StatusFollowUp, models.StatusReceived, models.StatusCancelled}

var natureOfBusiness = []string{"Hospital", "Clinic Services", "Diagnostics", "Pharmacy", "Medical Equipment", "Healthcare Services"}

// DefaultLeadConfig returns a mixed distribution of lead rows
func DefaultLeadConfig(count int) LeadGeneratorConfig {
	return LeadGeneratorConfig{
		Count:            count,
		StartNo:          1,
		PlannedChance:    0.7,
		ActualChance:     0.4,
		BlankChance:      0.1,
		WhitespaceChance: 0.2,
		Base:             time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC),
	}
}

// LeadNo formats a sequential lead number
func LeadNo(n int) string {
	return fmt.Sprintf("LN-%03d", n)
}

func maybe(chance float64, v string) string {
	if rand.Float64() < chance {
		return ""
	}
	return v
}

func blankish(whitespace float64) string {
	if rand.Float64() < whitespace {
		return strings.Repeat(" ", 1+rand.Intn(3))
	}
	return ""
}

// GenerateLeadRow creates one FMS row for lead number n
func GenerateLeadRow(config LeadGeneratorConfig, n int) []string {
	ts := config.Base.Add(time.Duration(n) * time.Hour)

	planned := blankish(config.WhitespaceChance)
	if rand.Float64() < config.PlannedChance {
		planned = ts.AddDate(0, 0, 1).Format("2006-01-02")
	}
	actual := blankish(config.WhitespaceChance)
	if rand.Float64() < config.ActualChance {
		actual = ts.AddDate(0, 0, 2).Format("2006-01-02")
	}

	person := gofakeit.Name()
	company := gofakeit.Company()

	row := make([]string, mapper.LeadSchema.Width())
	set := func(field, v string) { row[mapper.LeadSchema.Index(field)] = v }

	set(mapper.FieldTimestamp, ts.Format("02/01/2006 15:04:05"))
	set(mapper.FieldLeadNo, LeadNo(n))
	set(mapper.FieldReceivedBy, gofakeit.FirstName())
	set(mapper.FieldSource, Sources[rand.Intn(len(Sources))])
	set(mapper.FieldCompanyName, company)
	set(mapper.FieldPhoneNumber, maybe(config.BlankChance, "9"+gofakeit.DigitN(9)))
	set(mapper.FieldPersonName, person)
	set(mapper.FieldLocation, maybe(config.BlankChance, gofakeit.City()))
	set(mapper.FieldEmail, maybe(config.BlankChance, gofakeit.Email()))
	set(mapper.FieldState, maybe(config.BlankChance, gofakeit.State()))
	set(mapper.FieldAddress, maybe(config.BlankChance, gofakeit.Street()))
	set(mapper.FieldNatureOfBusiness, natureOfBusiness[rand.Intn(len(natureOfBusiness))])
	set(mapper.FieldRemarks, maybe(config.BlankChance, gofakeit.Sentence(5)))
	set(mapper.FieldPlanned, planned)
	set(mapper.FieldActual, actual)
	set(mapper.FieldTimeDelay, maybe(config.BlankChance, fmt.Sprintf("%d days", rand.Intn(5))))
	set(mapper.FieldLeadStatus, string(Statuses[rand.Intn(len(Statuses))]))
	set(mapper.FieldNextFollowupDate, maybe(0.5, ts.AddDate(0, 0, 5).Format("2006-01-02")))
	set(mapper.FieldWhatDidCustomerSay, maybe(config.BlankChance, gofakeit.Sentence(4)))
	set(mapper.FieldTimeDelay1, "")
	return row
}

// GenerateLeadRows creates config.Count FMS rows with sequential lead numbers
func GenerateLeadRows(config LeadGeneratorConfig) [][]string {
	rows := make([][]string, config.Count)
	for i := 0; i < config.Count; i++ {
		rows[i] = GenerateLeadRow(config, config.StartNo+i)
	}
	return rows
}

// GenerateFollowUpRows creates perLead follow-up rows for each lead number,
// each one an hour after the previous so the last row is the latest
func GenerateFollowUpRows(leadNos []string, perLead int, base time.Time) [][]string {
	rows := make([][]string, 0, len(leadNos)*perLead)
	for i, no := range leadNos {
		for j := 0; j < perLead; j++ {
			ts := base.Add(time.Duration(i*perLead+j) * time.Hour)
			rows = append(rows, []string{
				ts.Format("02/01/2006 15:04:05"),
				no,
				string(Statuses[rand.Intn(len(Statuses))]),
				maybe(0.3, ts.AddDate(0, 0, 3).Format("2006-01-02")),
				gofakeit.Sentence(4),
			})
		}
	}
	return rows
}

// GenerateEnquiryRow creates one Enquiery row
func GenerateEnquiryRow(ref string, receivedType models.ReceivedType, ts time.Time) []string {
	patients := 1 + rand.Intn(3)
	names := make([]string, patients)
	for i := range names {
		names[i] = gofakeit.Name()
	}
	return []string{
		ts.Format("02/01/2006 15:04:05"),
		ref,
		string(receivedType),
		gofakeit.Name(),
		fmt.Sprint(patients),
		strings.Join(names, ", "),
		"9" + gofakeit.DigitN(9),
		gofakeit.Street(),
	}
}

// GenerateLeadRequest creates a valid lead form payload
func GenerateLeadRequest() models.CreateLeadRequest {
	return models.CreateLeadRequest{
		ReceivedBy:       gofakeit.FirstName(),
		Source:           Sources[rand.Intn(len(Sources))],
		CompanyName:      gofakeit.Company(),
		PhoneNumber:      "+91 98765 43210",
		PersonName:       gofakeit.Name(),
		Location:         gofakeit.City(),
		Email:            gofakeit.Email(),
		State:            gofakeit.State(),
		Address:          gofakeit.Street(),
		NatureOfBusiness: natureOfBusiness[rand.Intn(len(natureOfBusiness))],
		Remarks:          gofakeit.Sentence(5),
	}
}
