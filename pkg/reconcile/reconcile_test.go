package reconcile_test

import (
	"strings"
	"testing"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/mapper"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/testdata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 1, 11, 15, 0, 0, 0, time.UTC)

func lead(no, planned, actual string) models.Lead {
	return models.Lead{ID: "id-" + no, LeadNo: no, Planned: planned, Actual: actual, LeadStatus: models.StatusFollowUp, CompanyName: "Co " + no}
}

func followUp(no, ts string, status models.LeadStatus, say string) models.FollowUp {
	f, _ := mapper.MapFollowUp([]string{ts, no, string(status), "", say}, mapper.DefaultOptions(now, time.UTC))
	return f
}

func TestIsActive(t *testing.T) {
	tests := []struct {
		planned, actual string
		want            bool
	}{
		{"2025-01-10", "", true},
		{"2025-01-10", "   ", true},
		{"2025-01-10", "2025-01-11", false},
		{"", "", false},
		{"  ", "", false},
		{"", "2025-01-11", false},
	}
	for _, tt := range tests {
		t.Run(tt.planned+"|"+tt.actual, func(t *testing.T) {
			assert.Equal(t, tt.want, reconcile.IsActive(lead("LN-1", tt.planned, tt.actual)))
		})
	}
}

func TestIsActive_Property(t *testing.T) {
	cfg := testdata.DefaultLeadConfig(500)
	leads, _ := mapper.MapLeads(testdata.GenerateLeadRows(cfg), mapper.DefaultOptions(now, time.UTC))

	view := reconcile.Reconcile(leads, nil, now, time.UTC)

	active := make(map[string]bool, len(view.Active))
	for _, m := range view.Active {
		active[m.LeadNo] = true
	}
	for _, l := range leads {
		want := strings.TrimSpace(l.Planned) != "" && strings.TrimSpace(l.Actual) == ""
		assert.Equal(t, want, active[l.LeadNo], l.LeadNo)
	}
}

func TestReconcile_ScenarioReceivedOverlay(t *testing.T) {
	leads := []models.Lead{lead("LN-1", "2025-01-10", "")}
	fus := []models.FollowUp{followUp("LN-1", "2025-01-11T09:00:00Z", models.StatusReceived, "Confirmed")}

	view := reconcile.Reconcile(leads, fus, now, time.UTC)

	require.Len(t, view.Active, 1)
	m := view.Active[0]
	assert.Equal(t, "LN-1", m.LeadNo)
	assert.Equal(t, models.StatusReceived, m.LeadStatus)
	assert.Equal(t, "Confirmed", m.WhatDidCustomerSay)
	assert.Equal(t, "", m.NextFollowupDate)
	assert.Equal(t, 1, m.FollowUpCount)
	require.NotNil(t, m.LatestFollowUp)
	assert.Equal(t, 0, view.Counters.PendingFollowUps)
	assert.Equal(t, 1, view.Counters.TotalInteractions)
}

func TestReconcile_ScenarioNotActive(t *testing.T) {
	view := reconcile.Reconcile([]models.Lead{lead("LN-2", "", "")}, nil, now, time.UTC)
	assert.Empty(t, view.Active)
	assert.Empty(t, view.Exclusions, "inactive leads are filtered, not excluded")
}

func TestReconcile_LatestWins(t *testing.T) {
	leads := []models.Lead{lead("LN-1", "2025-01-10", "")}
	t1 := followUp("LN-1", "10/01/2025 09:00:00", models.StatusCancelled, "T1")
	t2 := followUp("LN-1", "10/01/2025 18:00:00", models.StatusReceived, "T2")

	for name, fus := range map[string][]models.FollowUp{
		"ascending":  {t1, t2},
		"descending": {t2, t1},
	} {
		t.Run(name, func(t *testing.T) {
			view := reconcile.Reconcile(leads, fus, now, time.UTC)
			require.Len(t, view.Active, 1)
			assert.Equal(t, "T2", view.Active[0].WhatDidCustomerSay)
			assert.Equal(t, models.StatusReceived, view.Active[0].LeadStatus)
		})
	}
}

func TestReconcile_TiesKeepOriginalOrder(t *testing.T) {
	leads := []models.Lead{lead("LN-1", "2025-01-10", "")}
	a := followUp("LN-1", "10/01/2025 09:00:00", models.StatusReceived, "first")
	b := followUp("LN-1", "10/01/2025 09:00:00", models.StatusCancelled, "second")

	view := reconcile.Reconcile(leads, []models.FollowUp{a, b}, now, time.UTC)
	assert.Equal(t, "first", view.Active[0].WhatDidCustomerSay)
}

func TestReconcile_FallbackTimestampSortsOldest(t *testing.T) {
	leads := []models.Lead{lead("LN-1", "2025-01-10", "")}
	broken := followUp("LN-1", "not a date", models.StatusCancelled, "broken")
	valid := followUp("LN-1", "01/01/2020", models.StatusReceived, "real")
	require.True(t, broken.TimestampFallback)

	view := reconcile.Reconcile(leads, []models.FollowUp{broken, valid}, now, time.UTC)
	assert.Equal(t, "real", view.Active[0].WhatDidCustomerSay)
}

func TestReconcile_NoFollowUpsKeepsLeadStatus(t *testing.T) {
	l := lead("LN-1", "2025-01-10", "")
	l.LeadStatus = models.StatusCancelled
	l.WhatDidCustomerSay = "original"

	view := reconcile.Reconcile([]models.Lead{l}, []models.FollowUp{followUp("LN-9", "10/01/2025", models.StatusReceived, "other")}, now, time.UTC)

	require.Len(t, view.Active, 1)
	assert.Equal(t, models.StatusCancelled, view.Active[0].LeadStatus)
	assert.Equal(t, "original", view.Active[0].WhatDidCustomerSay)
	assert.Nil(t, view.Active[0].LatestFollowUp)
	assert.Equal(t, 0, view.Active[0].FollowUpCount)
}

func TestReconcile_Property_OverlayIsMaxTimestamp(t *testing.T) {
	leadNos := []string{"LN-001", "LN-002", "LN-003", "LN-004"}
	base := time.Date(2025, 1, 5, 8, 0, 0, 0, time.UTC)
	fus, _ := mapper.MapFollowUps(testdata.GenerateFollowUpRows(leadNos, 6, base), mapper.DefaultOptions(now, time.UTC))

	// reverse so the newest rows come first in sheet order
	reversed := make([]models.FollowUp, len(fus))
	for i := range fus {
		reversed[len(fus)-1-i] = fus[i]
	}

	var leads []models.Lead
	for _, no := range leadNos {
		leads = append(leads, lead(no, "2025-01-10", ""))
	}

	for _, input := range [][]models.FollowUp{fus, reversed} {
		view := reconcile.Reconcile(leads, input, now, time.UTC)
		require.Len(t, view.Active, len(leadNos))

		for _, m := range view.Active {
			var want models.FollowUp
			for _, f := range fus {
				if f.LeadNo == m.LeadNo && (want.LeadNo == "" || f.Timestamp.After(want.Timestamp)) {
					want = f
				}
			}
			assert.Equal(t, want.LeadStatus, m.LeadStatus)
			assert.Equal(t, want.NextFollowupDate, m.NextFollowupDate)
			assert.Equal(t, want.WhatDidCustomerSay, m.WhatDidCustomerSay)
			assert.Equal(t, 6, m.FollowUpCount)
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	cfg := testdata.DefaultLeadConfig(100)
	leads, _ := mapper.MapLeads(testdata.GenerateLeadRows(cfg), mapper.DefaultOptions(now, time.UTC))
	var nos []string
	for _, l := range leads {
		nos = append(nos, l.LeadNo)
	}
	fus, _ := mapper.MapFollowUps(testdata.GenerateFollowUpRows(nos, 3, cfg.Base), mapper.DefaultOptions(now, time.UTC))

	leadsBefore := append([]models.Lead(nil), leads...)
	fusBefore := append([]models.FollowUp(nil), fus...)

	first := reconcile.Reconcile(leads, fus, now, time.UTC)
	second := reconcile.Reconcile(leads, fus, now, time.UTC)

	assert.Equal(t, first, second)
	assert.Equal(t, leadsBefore, leads, "leads must not be mutated")
	assert.Equal(t, fusBefore, fus, "follow-ups must not be mutated")
}

func TestReconcile_MalformedRowsAreCounted(t *testing.T) {
	rows := [][]string{
		{"10/01/2025", "LN-1", "", "", "", "", "", "", "", "", "", "", "", "2025-01-10", ""},
		{"10/01/2025", "", "", "", "", "", "", "", "", "", "", "", "", "2025-01-10", ""},
		{"10/01/2025"},
		{"10/01/2025", "LN-1", "", "", "dup", "", "", "", "", "", "", "", "", "2025-01-10", ""},
	}
	leads, _ := mapper.MapLeads(rows, mapper.DefaultOptions(now, time.UTC))
	fus := []models.FollowUp{{LeadNo: " "}, followUp("LN-1", "11/01/2025 10:00", models.StatusFollowUp, "x")}

	view := reconcile.Reconcile(leads, fus, now, time.UTC)

	require.Len(t, view.Active, 1)
	assert.NotEqual(t, "dup", view.Active[0].CompanyName, "first occurrence wins")
	assert.Equal(t, 3, view.ExclusionCount(reconcile.ReasonMissingLeadNo))
	assert.Equal(t, 1, view.ExclusionCount(reconcile.ReasonDuplicateLeadNo))
	assert.Equal(t, reconcile.Exclusion{Kind: reconcile.KindLead, Index: 3, LeadNo: "LN-1", Reason: reconcile.ReasonDuplicateLeadNo}, view.Exclusions[2])
	assert.Equal(t, 1, view.Counters.TotalInteractions, "malformed follow-ups are not interactions")
}

func TestReconcile_Counters(t *testing.T) {
	leads := []models.Lead{
		lead("LN-1", "2025-01-10", ""),
		lead("LN-2", "2025-01-10", ""),
		lead("LN-3", "2025-01-10", ""),
		lead("LN-4", "2025-01-10", "2025-01-11"),
	}
	fus := []models.FollowUp{
		followUp("LN-1", "11/01/2025 09:00", models.StatusReceived, "today"),
		followUp("LN-2", "11/01/2025 23:59", models.StatusFollowUp, "today late"),
		followUp("LN-2", "10/01/2025 23:59", models.StatusCancelled, "yesterday"),
		followUp("LN-4", "12/01/2025 00:00", models.StatusFollowUp, "tomorrow"),
		followUp("LN-9", "garbage", models.StatusFollowUp, "fallback is never today"),
	}

	view := reconcile.Reconcile(leads, fus, now, time.UTC)

	assert.Equal(t, 5, view.Counters.TotalInteractions)
	assert.Equal(t, 2, view.Counters.TodayActivity)
	// LN-2 latest is follow-up, LN-3 has none and keeps follow-up
	assert.Equal(t, 2, view.Counters.PendingFollowUps)
}

func TestReconcile_TodayUsesLocation(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	f := models.FollowUp{LeadNo: "LN-1", Timestamp: time.Date(2025, 1, 10, 20, 0, 0, 0, time.UTC)}

	localNow := time.Date(2025, 1, 11, 9, 0, 0, 0, ist)
	assert.Equal(t, 1, reconcile.Reconcile(nil, []models.FollowUp{f}, localNow, ist).Counters.TodayActivity)
	assert.Equal(t, 0, reconcile.Reconcile(nil, []models.FollowUp{f}, localNow, time.UTC).Counters.TodayActivity)
}

func TestInteractions(t *testing.T) {
	leads := []models.Lead{lead("LN-1", "", "")}
	fus := []models.FollowUp{
		followUp("LN-1", "10/01/2025 09:00", models.StatusReceived, "older call"),
		followUp("LN-7", "10/01/2025 10:00", models.StatusCancelled, "orphan"),
	}

	items := reconcile.Interactions(leads, fus)
	require.Len(t, items, 2)
	assert.Equal(t, "orphan", items[0].WhatDidCustomerSay)
	assert.Equal(t, models.UnknownLead, items[0].CompanyName)
	assert.Equal(t, "Co LN-1", items[1].CompanyName)
	assert.Equal(t, models.StatusColor(models.StatusReceived), items[1].StatusColor)

	t.Run("search", func(t *testing.T) {
		assert.Len(t, reconcile.FilterInteractions(items, "OLDER", ""), 1)
		assert.Len(t, reconcile.FilterInteractions(items, "ln-7", "all"), 1)
		assert.Len(t, reconcile.FilterInteractions(items, "", ""), 2)
	})

	t.Run("lead filter", func(t *testing.T) {
		got := reconcile.FilterInteractions(items, "", "LN-1")
		require.Len(t, got, 1)
		assert.Equal(t, "LN-1", got[0].LeadNo)
		assert.Empty(t, reconcile.FilterInteractions(items, "orphan", "LN-1"))
	})
}

func TestMergeAll_OverlaysInactiveLeads(t *testing.T) {
	leads := []models.Lead{
		lead("LN-1", "2025-01-10", "2025-01-11"),
		lead("", "2025-01-10", ""),
		lead("LN-2", "", ""),
	}
	fus := []models.FollowUp{
		followUp("LN-1", "10/01/2025 09:00:00", models.StatusReceived, "booked"),
	}

	merged, excl := reconcile.MergeAll(leads, fus)

	require.Len(t, merged, 2)
	assert.Equal(t, "LN-1", merged[0].LeadNo)
	assert.Equal(t, models.StatusReceived, merged[0].LeadStatus)
	assert.Equal(t, 1, merged[0].FollowUpCount)
	assert.Equal(t, models.StatusFollowUp, merged[1].LeadStatus)
	require.Len(t, excl, 1)
	assert.Equal(t, reconcile.ReasonMissingLeadNo, excl[0].Reason)
}
