package leads

import (
	"context"
	"strings"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"golang.org/x/sync/errgroup"
)

// writeSkew is how far the sheet clock may lag ours when looking for a
// follow-up we just wrote
const writeSkew = 5 * time.Minute

// CallTrackerView is the call tracker page payload
type CallTrackerView struct {
	Active       []reconcile.MergedLead  `json:"active"`
	Interactions []reconcile.Interaction `json:"interactions"`
	Counters     reconcile.Counters      `json:"counters"`
	Exclusions   []reconcile.Exclusion   `json:"exclusions"`
	Notices      []models.Notice         `json:"notices,omitempty"`
}

// AddFollowUpResult is returned after a follow-up is recorded, together with
// the refreshed call tracker
type AddFollowUpResult struct {
	models.CreateFollowUpResponse
	View *CallTrackerView `json:"view"`
}

// WorkingSet fetches leads and follow-ups concurrently and reconciles them.
// Each side falls back to the echo store on its own when the sheet fails.
func (s *Service) WorkingSet(ctx context.Context) ([]models.Lead, []models.FollowUp, []models.Notice, error) {
	var (
		leads     []models.Lead
		followUps []models.FollowUp
		leadsErr  error
		fusErr    error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		leads, _, leadsErr = s.FetchLeads(gctx)
		return nil
	})
	g.Go(func() error {
		followUps, _, fusErr = s.FetchFollowUps(gctx)
		return nil
	})
	_ = g.Wait()

	var notices []models.Notice
	if leadsErr != nil {
		s.log.Warn("sheet leads unavailable, using local copy", "error", leadsErr)
		local, err := s.store.Leads.GetAll(ctx)
		if err != nil {
			return nil, nil, nil, domain.NewInternalError(err)
		}
		leads = local
		notices = append(notices, models.NewWarning(NoticeLeadsUnavailable))
	}
	if fusErr != nil {
		s.log.Warn("sheet follow-ups unavailable, using local copy", "error", fusErr)
		local, err := s.store.FollowUps.GetAll(ctx)
		if err != nil {
			return nil, nil, nil, domain.NewInternalError(err)
		}
		followUps = local
		notices = append(notices, models.NewWarning(NoticeFollowUpsUnavailable))
	}
	return leads, followUps, notices, nil
}

// CallTracker builds the call tracker page
func (s *Service) CallTracker(ctx context.Context, req models.CallTrackerRequest) (*CallTrackerView, error) {
	return s.callTracker(ctx, req, nil)
}

// callTracker reconciles the working set. pending is a follow-up just written
// to the sheet; it is merged in when the sheet does not show it yet.
func (s *Service) callTracker(ctx context.Context, req models.CallTrackerRequest, pending *models.FollowUp) (*CallTrackerView, error) {
	leads, followUps, notices, err := s.WorkingSet(ctx)
	if err != nil {
		return nil, err
	}
	if pending != nil && !containsWrite(followUps, *pending) {
		followUps = append(followUps[:len(followUps):len(followUps)], *pending)
	}

	v := reconcile.Reconcile(leads, followUps, s.now(), s.cfg.Location)
	cleanFollowUps, _ := reconcile.CleanFollowUps(followUps)
	interactions := reconcile.FilterInteractions(reconcile.Interactions(leads, cleanFollowUps), req.Query, req.LeadNo)

	return &CallTrackerView{
		Active:       v.Active,
		Interactions: interactions,
		Counters:     v.Counters,
		Exclusions:   v.Exclusions,
		Notices:      notices,
	}, nil
}

// containsWrite reports whether followUps already holds the row the sheet
// stamped for written
func containsWrite(followUps []models.FollowUp, written models.FollowUp) bool {
	for _, f := range followUps {
		if strings.TrimSpace(f.LeadNo) != strings.TrimSpace(written.LeadNo) ||
			f.LeadStatus != written.LeadStatus ||
			strings.TrimSpace(f.WhatDidCustomerSay) != strings.TrimSpace(written.WhatDidCustomerSay) {
			continue
		}
		if !f.TimestampFallback && !f.Timestamp.Before(written.Timestamp.Add(-writeSkew)) {
			return true
		}
	}
	return false
}

// AddFollowUp records an interaction. The steps run in order: save locally,
// write to the sheet, overlay the local lead, then re-read the call tracker.
// guard rejects a second submission while one is running.
func (s *Service) AddFollowUp(ctx context.Context, guard *SubmitGuard, req models.CreateFollowUpRequest) (*AddFollowUpResult, error) {
	if guard == nil {
		guard = &SubmitGuard{}
	}
	release, err := guard.Acquire()
	if err != nil {
		return nil, err
	}
	defer release()

	status, ok := models.ParseLeadStatus(req.LeadStatus)
	if !ok {
		return nil, domain.NewValidationError("Unknown status", map[string]string{"lead_status": "Must be one of: follow-up, received, cancelled"})
	}

	f := models.FollowUp{
		ID:                 s.newID(),
		Timestamp:          s.now(),
		LeadNo:             strings.TrimSpace(req.LeadNo),
		LeadStatus:         status,
		NextFollowupDate:   strings.TrimSpace(req.NextFollowupDate),
		WhatDidCustomerSay: strings.TrimSpace(req.WhatDidCustomerSay),
	}

	if err := s.store.FollowUps.Add(ctx, f); err != nil {
		return nil, domain.NewInternalError(err)
	}

	res := &AddFollowUpResult{CreateFollowUpResponse: models.CreateFollowUpResponse{
		FollowUp:    f,
		WriteResult: models.WriteResult{Synced: true},
	}}
	if err := s.sheets.InsertFollowUp(ctx, f); err != nil {
		s.log.Error("follow-up saved locally but not synced", "lead_no", f.LeadNo, "error", err)
		notice := models.NewWarning(NoticeNotSynced)
		res.Synced = false
		res.Notice = &notice
		s.notifyUnsynced(ctx, "follow-up", f.LeadNo, err)
	} else {
		s.log.Info("follow-up recorded", "lead_no", f.LeadNo, "status", f.LeadStatus)
	}
	s.metrics.RecordWrite("follow-up", res.Synced)

	if err := s.overlayLocalLead(ctx, f); err != nil {
		return nil, err
	}

	view, err := s.callTracker(ctx, models.CallTrackerRequest{}, &f)
	if err != nil {
		return nil, err
	}
	res.View = view
	return res, nil
}

// overlayLocalLead copies the follow-up status onto the locally saved lead
func (s *Service) overlayLocalLead(ctx context.Context, f models.FollowUp) error {
	lead, ok, err := s.store.LeadByNo(ctx, f.LeadNo)
	if err != nil {
		return domain.NewInternalError(err)
	}
	if !ok {
		return nil
	}
	status, next, say := f.LeadStatus, f.NextFollowupDate, f.WhatDidCustomerSay
	patch := models.LeadPatch{LeadStatus: &status, NextFollowupDate: &next, WhatDidCustomerSay: &say}
	if _, err := s.store.Leads.Update(ctx, lead.ID, patch); err != nil {
		return domain.NewInternalError(err)
	}
	return nil
}
