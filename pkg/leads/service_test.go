package leads

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/sheets"
	"github.com/jordanlanch/leadtoorder/pkg/sheets/sheetstest"
	"github.com/jordanlanch/leadtoorder/pkg/store"
	"github.com/jordanlanch/leadtoorder/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	newLeads []string
	unsynced []string
}

func (n *recordingNotifier) NotifyNewLead(_ context.Context, lead models.Lead) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newLeads = append(n.newLeads, lead.LeadNo)
	return nil
}

func (n *recordingNotifier) NotifyUnsynced(_ context.Context, kind, ref string, _ error) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.unsynced = append(n.unsynced, kind+":"+ref)
	return nil
}

type fixture struct {
	svc      *Service
	srv      *sheetstest.Server
	store    *store.Store
	notifier *recordingNotifier
	now      time.Time
}

func setup(t *testing.T) fixture {
	t.Helper()
	srv := sheetstest.NewServer(t)
	client := sheets.NewClient(sheets.Config{
		ScriptURL:      srv.URL,
		Timeout:        2 * time.Second,
		LeadsSheet:     "FMS",
		FollowUpsSheet: "Flw-Up",
	})
	st := store.NewMemory(logger.Nop())
	n := &recordingNotifier{}
	svc := NewService(client, st, n, nil, Config{LeadsSheet: "FMS", Location: time.UTC}, logger.Nop())

	now := time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }
	srv.Now = svc.now

	return fixture{svc: svc, srv: srv, store: st, notifier: n, now: now}
}

func leadRow(no, company, planned, actual, status string) []string {
	return []string{
		"10/01/2025 09:00:00", no, "Asha", "Website", company, "9876543210", "Ravi", "Pune",
		"ravi@example.com", "MH", "12 MG Road", "Clinic", "", planned, actual, "", status, "", "", "",
	}
}

func validRequest() models.CreateLeadRequest {
	return models.CreateLeadRequest{
		ReceivedBy: "Asha", Source: "Website", CompanyName: "Acme Clinics", PhoneNumber: "+91 98765 43210",
		PersonName: "Ravi", Location: "Pune", Email: "ravi@acme.in", State: "MH", Address: "12 MG Road",
		NatureOfBusiness: "Clinic",
	}
}

func TestNextLeadNo(t *testing.T) {
	tests := []struct {
		last string
		want string
	}{
		{"", "LN-001"},
		{"   ", "LN-001"},
		{"LN-015", "LN-016"},
		{"LN-099", "LN-100"},
		{"LN-999", "LN-1000"},
		{"LN-abc", "LN-001"},
		{"garbage", "LN-001"},
	}
	for _, tt := range tests {
		t.Run(tt.last, func(t *testing.T) {
			assert.Equal(t, tt.want, NextLeadNo(tt.last))
		})
	}
}

func TestAddLead_NumbersAndSyncs(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.srv.SetLastLeadNo("LN-015")

	resp, err := f.svc.AddLead(ctx, validRequest())
	require.NoError(t, err)

	assert.Equal(t, "LN-016", resp.Lead.LeadNo)
	assert.True(t, resp.Synced)
	assert.Nil(t, resp.Notice)
	assert.Equal(t, models.StatusFollowUp, resp.Lead.LeadStatus)

	rows := f.srv.Rows("FMS")
	require.Len(t, rows, 1)
	require.Len(t, rows[0], 19)
	assert.Equal(t, "20/01/2025 10:00:00", rows[0][0])
	assert.Equal(t, "LN-016", rows[0][1])
	assert.Equal(t, "Acme Clinics", rows[0][4])
	assert.Equal(t, "", rows[0][13], "planned is left for the sheet")

	stored, err := f.store.Leads.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, resp.Lead.ID, stored[0].ID)

	assert.Equal(t, []string{"LN-016"}, f.notifier.newLeads)

	again, err := f.svc.AddLead(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "LN-017", again.Lead.LeadNo, "the sheet now reports LN-016 as last")
}

func TestAddLead_FirstLead(t *testing.T) {
	f := setup(t)

	resp, err := f.svc.AddLead(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, "LN-001", resp.Lead.LeadNo)
}

func TestAddLead_RemoteWriteFails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.srv.FailNext(sheets.ActionInsert, 1)

	resp, err := f.svc.AddLead(ctx, validRequest())
	require.NoError(t, err, "partial failure is not an error")

	assert.False(t, resp.Synced)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, models.NoticeWarning, resp.Notice.Level)
	assert.Equal(t, NoticeNotSynced, resp.Notice.Message)

	stored, _ := f.store.Leads.GetAll(ctx)
	assert.Len(t, stored, 1, "local copy is kept")
	assert.Empty(t, f.srv.Rows("FMS"))
	assert.Equal(t, []string{"lead:LN-001"}, f.notifier.unsynced)
	assert.Empty(t, f.notifier.newLeads)
}

func TestAddLead_LastLeadNoUnavailable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.Leads.Add(ctx, models.Lead{ID: "a", LeadNo: "LN-007"}))
	require.NoError(t, f.store.Leads.Add(ctx, models.Lead{ID: "b", LeadNo: "LD001"}))
	f.srv.FailNext(sheets.ActionGetLastLeadNo, 1)

	resp, err := f.svc.AddLead(ctx, validRequest())
	require.NoError(t, err)
	assert.Equal(t, "LN-008", resp.Lead.LeadNo)
	assert.True(t, resp.Synced)
	require.NotNil(t, resp.Notice)
	assert.Equal(t, NoticeLeadNoLocal, resp.Notice.Message)
}

func TestListLeads_SearchAndStatus(t *testing.T) {
	f := setup(t)
	f.srv.SetStringRows("FMS", [][]string{
		leadRow("LN-001", "Acme Clinics", "", "", "follow-up"),
		leadRow("LN-002", "Bogotá Health", "", "", "received"),
		leadRow("LN-003", "Zen Hospital", "", "", "Cancelled"),
	})
	ctx := context.Background()

	all, err := f.svc.ListLeads(ctx, models.LeadListRequest{})
	require.NoError(t, err)
	assert.Equal(t, 3, all.Total)
	assert.Empty(t, all.Notices)

	byText, err := f.svc.ListLeads(ctx, models.LeadListRequest{Query: "bogota"})
	require.NoError(t, err)
	require.Equal(t, 1, byText.Total)
	assert.Equal(t, "LN-002", byText.Data[0].LeadNo)

	byStatus, err := f.svc.ListLeads(ctx, models.LeadListRequest{Status: "cancelled"})
	require.NoError(t, err)
	require.Equal(t, 1, byStatus.Total)
	assert.Equal(t, "LN-003", byStatus.Data[0].LeadNo)

	_, err = f.svc.ListLeads(ctx, models.LeadListRequest{Status: "lost"})
	assert.True(t, domain.IsValidation(err))
}

func TestListLeads_LeavesOutBlankAndRepeatedLeadNumbers(t *testing.T) {
	f := setup(t)
	f.srv.SetStringRows("FMS", [][]string{
		leadRow("LN-001", "Acme", "", "", "follow-up"),
		leadRow("", "Ghost", "", "", "follow-up"),
		leadRow("LN-001", "Dup", "", "", "received"),
	})

	resp, err := f.svc.ListLeads(context.Background(), models.LeadListRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "LN-001", resp.Data[0].LeadNo)
	assert.Equal(t, "Acme", resp.Data[0].CompanyName, "first occurrence wins")
	assert.Equal(t, 2, resp.Excluded)
}

func TestListLeads_FallsBackToLocal(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.Leads.Add(ctx, models.Lead{ID: "a", LeadNo: "LN-009", CompanyName: "Local Co"}))
	f.srv.SetRawResponse(sheets.ActionGetLeads, `{"success":false}`)

	resp, err := f.svc.ListLeads(ctx, models.LeadListRequest{})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	assert.Equal(t, "LN-009", resp.Data[0].LeadNo)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, NoticeLeadsUnavailable, resp.Notices[0].Message)
}

func TestDeleteLead_LocalOnly(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.Leads.Add(ctx, models.Lead{ID: "a", LeadNo: "LN-001"}))

	n, err := f.svc.DeleteLead(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = f.svc.DeleteLead(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Equal(t, 0, f.srv.Calls(sheets.ActionInsert))
}

func TestCallTracker_Reconciles(t *testing.T) {
	f := setup(t)
	f.srv.SetStringRows("FMS", [][]string{
		leadRow("LN-1", "Acme", "2025-01-10", "", "follow-up"),
		leadRow("LN-2", "Beta", "2025-01-10", "2025-01-11", "follow-up"),
		leadRow("", "Nameless", "2025-01-10", "", "follow-up"),
	})
	f.srv.SetStringRows("Flw-Up", [][]string{
		{"2025-01-18T09:00:00.000Z", "LN-1", "follow-up", "", "Call back"},
		{"2025-01-19T09:00:00.000Z", "LN-1", "received", "", "Confirmed"},
		{"2025-01-20T08:00:00.000Z", "LN-404", "follow-up", "", "Who is this"},
	})

	view, err := f.svc.CallTracker(context.Background(), models.CallTrackerRequest{})
	require.NoError(t, err)

	require.Len(t, view.Active, 1)
	assert.Equal(t, "LN-1", view.Active[0].LeadNo)
	assert.Equal(t, models.StatusReceived, view.Active[0].LeadStatus)
	assert.Equal(t, "Confirmed", view.Active[0].WhatDidCustomerSay)

	assert.Equal(t, reconcile.Counters{TotalInteractions: 3, TodayActivity: 1, PendingFollowUps: 0}, view.Counters)
	require.Len(t, view.Exclusions, 1)
	assert.Equal(t, reconcile.ReasonMissingLeadNo, view.Exclusions[0].Reason)

	require.Len(t, view.Interactions, 3)
	assert.Equal(t, models.UnknownLead, view.Interactions[0].CompanyName)
	assert.Equal(t, "Acme", view.Interactions[1].CompanyName)

	filtered, err := f.svc.CallTracker(context.Background(), models.CallTrackerRequest{LeadNo: "LN-1", Query: "call"})
	require.NoError(t, err)
	require.Len(t, filtered.Interactions, 1)
	assert.Equal(t, "Call back", filtered.Interactions[0].WhatDidCustomerSay)
}

func TestCallTracker_FollowUpsUnavailable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.srv.SetStringRows("FMS", [][]string{leadRow("LN-1", "Acme", "2025-01-10", "", "follow-up")})
	require.NoError(t, f.store.FollowUps.Add(ctx, models.FollowUp{
		ID: "x", Timestamp: f.now.Add(-time.Hour), LeadNo: "LN-1", LeadStatus: models.StatusCancelled, WhatDidCustomerSay: "No budget",
	}))
	f.srv.FailNext(sheets.ActionGetFollowUps, 1)

	view, err := f.svc.CallTracker(ctx, models.CallTrackerRequest{})
	require.NoError(t, err)
	require.Len(t, view.Notices, 1)
	assert.Equal(t, NoticeFollowUpsUnavailable, view.Notices[0].Message)
	require.Len(t, view.Active, 1)
	assert.Equal(t, models.StatusCancelled, view.Active[0].LeadStatus)
}

func followUpRequest(status string) models.CreateFollowUpRequest {
	return models.CreateFollowUpRequest{
		LeadNo:             "LN-1",
		LeadStatus:         status,
		NextFollowupDate:   "2025-01-25",
		WhatDidCustomerSay: "Order placed",
	}
}

func trackerFixture(t *testing.T) fixture {
	f := setup(t)
	f.srv.SetStringRows("FMS", [][]string{leadRow("LN-1", "Acme", "2025-01-10", "", "follow-up")})
	f.srv.SetStringRows("Flw-Up", [][]string{
		{"2025-01-19T09:00:00.000Z", "LN-1", "follow-up", "", "Call back"},
	})
	return f
}

func TestAddFollowUp_WrittenAndVisible(t *testing.T) {
	f := trackerFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Leads.Add(ctx, models.Lead{ID: "local", LeadNo: "LN-1", LeadStatus: models.StatusFollowUp}))

	res, err := f.svc.AddFollowUp(ctx, &SubmitGuard{}, followUpRequest("received"))
	require.NoError(t, err)

	assert.True(t, res.Synced)
	assert.Equal(t, models.StatusReceived, res.FollowUp.LeadStatus)
	assert.Len(t, f.srv.Rows("Flw-Up"), 2)

	require.NotNil(t, res.View)
	assert.Equal(t, 2, res.View.Counters.TotalInteractions, "the written row is not counted twice")
	assert.Equal(t, 1, res.View.Counters.TodayActivity)
	require.Len(t, res.View.Active, 1)
	assert.Equal(t, models.StatusReceived, res.View.Active[0].LeadStatus)

	local, ok, err := f.store.LeadByNo(ctx, "LN-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, models.StatusReceived, local.LeadStatus)
	assert.Equal(t, "2025-01-25", local.NextFollowupDate)
	assert.Equal(t, "Order placed", local.WhatDidCustomerSay)

	saved, err := f.store.FollowUpsByLeadNo(ctx, "LN-1")
	require.NoError(t, err)
	assert.Len(t, saved, 1)
}

func TestAddFollowUp_SheetNotCaughtUp(t *testing.T) {
	f := trackerFixture(t)
	f.srv.HideFollowUpWrites = true

	res, err := f.svc.AddFollowUp(context.Background(), &SubmitGuard{}, followUpRequest("cancelled"))
	require.NoError(t, err)

	assert.True(t, res.Synced)
	assert.Len(t, f.srv.Rows("Flw-Up"), 1)
	assert.Equal(t, 2, res.View.Counters.TotalInteractions, "the just-written follow-up is overlaid")
	assert.Equal(t, models.StatusCancelled, res.View.Active[0].LeadStatus)
	assert.Equal(t, "Order placed", res.View.Interactions[0].WhatDidCustomerSay)
}

func TestAddFollowUp_RemoteWriteFails(t *testing.T) {
	f := trackerFixture(t)
	f.srv.FailNext(sheets.ActionInsertFollowUp, 1)

	res, err := f.svc.AddFollowUp(context.Background(), &SubmitGuard{}, followUpRequest("received"))
	require.NoError(t, err)

	assert.False(t, res.Synced)
	require.NotNil(t, res.Notice)
	assert.Equal(t, NoticeNotSynced, res.Notice.Message)
	assert.Equal(t, []string{"follow-up:LN-1"}, f.notifier.unsynced)
	assert.Equal(t, models.StatusReceived, res.View.Active[0].LeadStatus)
}

func TestAddFollowUp_GuardRejectsConcurrentSubmit(t *testing.T) {
	f := trackerFixture(t)
	guard := &SubmitGuard{}

	release, err := guard.Acquire()
	require.NoError(t, err)

	_, err = f.svc.AddFollowUp(context.Background(), guard, followUpRequest("received"))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSubmissionInFlight)
	assert.True(t, domain.IsConflict(err))
	assert.Equal(t, 0, f.srv.Calls(sheets.ActionInsertFollowUp))

	release()
	_, err = f.svc.AddFollowUp(context.Background(), guard, followUpRequest("received"))
	require.NoError(t, err)

	next, err := guard.Acquire()
	require.NoError(t, err, "guard is released after the submission")
	next()
}

func TestAddFollowUp_InvalidStatus(t *testing.T) {
	f := trackerFixture(t)

	_, err := f.svc.AddFollowUp(context.Background(), nil, followUpRequest("lost"))
	assert.True(t, domain.IsValidation(err))
}

func TestGuards_PerUser(t *testing.T) {
	g := NewGuards()
	a := g.For("asha")
	assert.Same(t, a, g.For("asha"))
	assert.NotSame(t, a, g.For("ravi"))

	release, err := a.Acquire()
	require.NoError(t, err)
	_, err = g.For("ravi").Acquire()
	assert.NoError(t, err, "other users are not blocked")
	release()
}

func TestAddLead_GeneratedRequests(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.svc.AddLead(ctx, testdata.GenerateLeadRequest())
		require.NoError(t, err)
	}

	rows := f.srv.Rows("FMS")
	require.Len(t, rows, 5)
	assert.Equal(t, "LN-005", rows[4][1])
}
