package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/models"
)

// Seed is a set of records loaded into an empty store
type Seed struct {
	Leads     []models.Lead
	FollowUps []models.FollowUp
	Enquiries []models.Enquiry
}

// SeedIfEmpty writes seed when the leads collection is empty and reports
// whether it did
func (s *Store) SeedIfEmpty(ctx context.Context, seed Seed) (bool, error) {
	leads, err := s.Leads.GetAll(ctx)
	if err != nil {
		return false, err
	}
	if len(leads) > 0 {
		return false, nil
	}

	if err := s.Leads.Replace(ctx, seed.Leads); err != nil {
		return false, fmt.Errorf("failed to seed leads: %w", err)
	}
	if err := s.FollowUps.Replace(ctx, seed.FollowUps); err != nil {
		return false, fmt.Errorf("failed to seed follow-ups: %w", err)
	}
	if err := s.Enquiries.Replace(ctx, seed.Enquiries); err != nil {
		return false, fmt.Errorf("failed to seed enquiries: %w", err)
	}
	s.log.Info("seeded demo data", "leads", len(seed.Leads), "follow_ups", len(seed.FollowUps), "enquiries", len(seed.Enquiries))
	return true, nil
}

func at(layout, value string) time.Time {
	t, _ := time.ParseInLocation(layout, value, time.Local)
	return t
}

// DemoSeed is the sample data shown on a fresh install
func DemoSeed() Seed {
	const layout = "2006-01-02T15:04:05"
	return Seed{
		Leads: []models.Lead{
			{
				ID: "1", Timestamp: at(layout, "2025-01-15T10:30:00"), LeadNo: "LD001",
				ReceivedBy: "John Doe", Source: "Website", CompanyName: "ABC Healthcare",
				PhoneNumber: "+1234567890", PersonName: "John Doe", Location: "New York",
				Email: "john@abchealthcare.com", State: "NY", Address: "123 Main St, New York, NY 10001",
				NatureOfBusiness: "Healthcare Services", Remarks: "Interested in bulk orders",
				Planned: "2025-01-16", Actual: "2025-01-16", TimeDelay: "0 days",
				LeadStatus: models.StatusFollowUp, NextFollowupDate: "2025-01-20",
				WhatDidCustomerSay: "Will review proposal and get back",
				Planned1: "2025-01-20", Status1: "pending",
			},
			{
				ID: "2", Timestamp: at(layout, "2025-01-14T14:20:00"), LeadNo: "LD002",
				ReceivedBy: "Sarah Smith", Source: "Referral", CompanyName: "XYZ Medical Center",
				PhoneNumber: "+1234567891", PersonName: "Sarah Smith", Location: "Los Angeles",
				Email: "sarah@xyzmedical.com", State: "CA", Address: "456 Oak Ave, Los Angeles, CA 90001",
				NatureOfBusiness: "Medical Equipment", Remarks: "Urgent requirement",
				Planned: "2025-01-15", Actual: "2025-01-15", TimeDelay: "0 days",
				LeadStatus: models.StatusReceived, WhatDidCustomerSay: "Confirmed order placement",
				Status1: "completed",
			},
			{
				ID: "3", Timestamp: at(layout, "2025-01-13T09:15:00"), LeadNo: "LD003",
				ReceivedBy: "Mike Johnson", Source: "Cold Call", CompanyName: "Health Plus Clinic",
				PhoneNumber: "+1234567892", PersonName: "Mike Johnson", Location: "Chicago",
				Email: "mike@healthplus.com", State: "IL", Address: "789 Pine Rd, Chicago, IL 60601",
				NatureOfBusiness: "Clinic Services", Remarks: "Budget constraints",
				Planned: "2025-01-14", Actual: "2025-01-14", TimeDelay: "0 days",
				LeadStatus: models.StatusCancelled, WhatDidCustomerSay: "Not interested at this time",
				Status1: "cancelled",
			},
		},
		FollowUps: []models.FollowUp{
			{
				ID: "1", Timestamp: at(layout, "2025-01-16T11:00:00"), LeadNo: "LD001",
				LeadStatus: models.StatusFollowUp, NextFollowupDate: "2025-01-20",
				WhatDidCustomerSay: "Will review proposal and get back",
			},
			{
				ID: "2", Timestamp: at(layout, "2025-01-15T15:30:00"), LeadNo: "LD002",
				LeadStatus: models.StatusReceived, WhatDidCustomerSay: "Confirmed order placement",
			},
		},
		Enquiries: []models.Enquiry{
			{
				ID: "1", Timestamp: at(layout, "2025-01-15T13:45:00"), DirectNoOrLeadNo: "LD001",
				ReceivedType: models.ReceivedLead, PersonName: "John Doe", TotalPatient: 3,
				PatientName: "Patient A, Patient B, Patient C", PatientPhoneNumber: "+1234567890",
				PatientAddress: "123 Main St, New York, NY 10001",
			},
			{
				ID: "2", Timestamp: at(layout, "2025-01-14T16:20:00"), DirectNoOrLeadNo: "DIR001",
				ReceivedType: models.ReceivedDirect, PersonName: "Jane Williams", TotalPatient: 1,
				PatientName: "Patient D", PatientPhoneNumber: "+1234567893",
				PatientAddress: "321 Elm St, Boston, MA 02101",
			},
		},
	}
}
