package validation

import (
	"testing"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validLead() models.CreateLeadRequest {
	return models.CreateLeadRequest{
		ReceivedBy:       "Asha",
		Source:           "Referral",
		CompanyName:      "Acme Clinics",
		PhoneNumber:      "+91 98765 43210",
		PersonName:       "Ravi",
		Location:         "Pune",
		Email:            "ravi@acme.in",
		State:            "Maharashtra",
		Address:          "12 MG Road",
		NatureOfBusiness: "Hospital",
	}
}

func TestValidate_LeadForm(t *testing.T) {
	v := New("IN")

	assert.NoError(t, v.Validate(validLead()))

	bad := validLead()
	bad.CompanyName = ""
	bad.PhoneNumber = "12345"
	bad.Email = "not-an-email"

	err := v.Validate(bad)
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))

	fields := domain.ValidationFields(err)
	assert.Equal(t, "Company Name is required", fields["company_name"])
	assert.Equal(t, "Valid phone number required", fields["phone_number"])
	assert.Equal(t, "Valid email is required", fields["email"])
	assert.NotContains(t, fields, "remarks")
}

func TestValidate_FollowUpForm(t *testing.T) {
	v := New("IN")

	req := models.CreateFollowUpRequest{
		LeadNo:             "LN-001",
		LeadStatus:         "received",
		NextFollowupDate:   "2025-01-20",
		WhatDidCustomerSay: "Confirmed",
	}
	assert.NoError(t, v.Validate(req))

	req.NextFollowupDate = ""
	assert.NoError(t, v.Validate(req), "next follow-up date is optional")

	req.LeadStatus = "lost"
	req.NextFollowupDate = "20/01/2025"
	req.WhatDidCustomerSay = ""
	fields := domain.ValidationFields(v.Validate(req))
	assert.Equal(t, "Must be one of: follow-up, received, cancelled", fields["lead_status"])
	assert.Equal(t, "Date must be in YYYY-MM-DD format", fields["next_followup_date"])
	assert.Equal(t, "Customer feedback is required", fields["what_did_customer_say"])
}

func TestValidate_EnquiryForm(t *testing.T) {
	v := New("IN")

	req := models.EnquiryRequest{
		ReceivedType:       string(models.ReceivedDirect),
		PersonName:         "Ravi",
		TotalPatient:       2,
		PatientName:        "A, B",
		PatientPhoneNumber: "9876543210",
		PatientAddress:     "Pune",
	}
	assert.NoError(t, v.Validate(req), "direct enquiries may leave the reference blank")

	req.ReceivedType = string(models.ReceivedLead)
	fields := domain.ValidationFields(v.Validate(req))
	assert.Equal(t, "Direct No / Lead No is required", fields["direct_no_or_lead_no"])

	req.DirectNoOrLeadNo = "LN-001"
	req.TotalPatient = 0
	fields = domain.ValidationFields(v.Validate(req))
	assert.Equal(t, "At least one patient is required", fields["total_patient"])
}

func TestValidate_NonStruct(t *testing.T) {
	err := New("").Validate("nope")
	assert.True(t, domain.IsBadRequest(err))
}
