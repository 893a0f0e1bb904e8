// Package leads implements the lead details and call tracker use cases on
// top of the sheet client, the record mapper, the reconciler and the echo
// store.
package leads

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/mapper"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/jordanlanch/leadtoorder/pkg/search"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
	"github.com/jordanlanch/leadtoorder/pkg/store"
)

// LeadNoPrefix starts every generated lead number
const LeadNoPrefix = "LN-"

// User-visible notices
const (
	NoticeLeadsUnavailable     = "Failed to load leads from sheet; showing locally saved leads"
	NoticeFollowUpsUnavailable = "Failed to load follow-ups from sheet; showing locally saved follow-ups"
	NoticeNotSynced            = "Saved locally, not synced to the sheet"
	NoticeLeadNoLocal          = "Could not read the last lead number from the sheet; numbered from local data"
)

// Config configures the service
type Config struct {
	LeadsSheet string
	Location   *time.Location
}

// Service implements the lead use cases
type Service struct {
	sheets   domain.SheetClient
	store    *store.Store
	notifier domain.Notifier
	metrics  *metrics.Metrics
	cfg      Config
	log      logger.Logger
	now      func() time.Time
	newID    func() string
}

// NewService creates a lead service. notifier and m may be nil.
func NewService(sc domain.SheetClient, st *store.Store, notifier domain.Notifier, m *metrics.Metrics, cfg Config, log logger.Logger) *Service {
	if cfg.LeadsSheet == "" {
		cfg.LeadsSheet = "FMS"
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if log == nil {
		log = logger.Default()
	}
	return &Service{
		sheets:   sc,
		store:    st,
		notifier: notifier,
		metrics:  m,
		cfg:      cfg,
		log:      log.With("component", "leads"),
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *Service) mapOptions() mapper.Options {
	opts := mapper.DefaultOptions(s.now(), s.cfg.Location)
	opts.NewID = s.newID
	return opts
}

// FetchLeads reads and maps the leads sheet
func (s *Service) FetchLeads(ctx context.Context) ([]models.Lead, mapper.Report, error) {
	rows, err := s.sheets.GetLeads(ctx)
	if err != nil {
		return nil, mapper.Report{}, err
	}
	leads, rep := mapper.MapLeads(rows, s.mapOptions())
	if len(rep.Issues) > 0 {
		s.log.Debug("lead rows needed defaults", "rows", rep.Rows, "issues", len(rep.Issues), "fallbacks", rep.Fallbacks)
	}
	return leads, rep, nil
}

// FetchFollowUps reads and maps the follow-up sheet
func (s *Service) FetchFollowUps(ctx context.Context) ([]models.FollowUp, mapper.Report, error) {
	rows, err := s.sheets.GetFollowUps(ctx)
	if err != nil {
		return nil, mapper.Report{}, err
	}
	fus, rep := mapper.MapFollowUps(rows, s.mapOptions())
	if len(rep.Issues) > 0 {
		s.log.Debug("follow-up rows needed defaults", "rows", rep.Rows, "issues", len(rep.Issues), "fallbacks", rep.Fallbacks)
	}
	return fus, rep, nil
}

// loadLeads returns the sheet leads, or the echo store copy plus a notice
// when the sheet cannot be read
func (s *Service) loadLeads(ctx context.Context) ([]models.Lead, []models.Notice, error) {
	leads, _, err := s.FetchLeads(ctx)
	if err == nil {
		return leads, nil, nil
	}
	s.log.Warn("sheet leads unavailable, using local copy", "error", err)
	local, lerr := s.store.Leads.GetAll(ctx)
	if lerr != nil {
		return nil, nil, domain.NewInternalError(lerr)
	}
	return local, []models.Notice{models.NewWarning(NoticeLeadsUnavailable)}, nil
}

// ListLeads returns the lead details page: every lead matching the search
// text in any field and the optional status. Rows without a lead number and
// repeats of a lead number are left out and counted.
func (s *Service) ListLeads(ctx context.Context, req models.LeadListRequest) (*models.LeadListResponse, error) {
	loaded, notices, err := s.loadLeads(ctx)
	if err != nil {
		return nil, err
	}
	all, excl := reconcile.CleanLeads(loaded)
	if len(excl) > 0 {
		s.log.Warn("lead rows left out of the list", "excluded", len(excl))
	}

	var status models.LeadStatus
	if strings.TrimSpace(req.Status) != "" {
		st, ok := models.ParseLeadStatus(req.Status)
		if !ok {
			return nil, domain.NewValidationError("Unknown status filter", map[string]string{"status": "Must be one of: follow-up, received, cancelled"})
		}
		status = st
	}

	m := search.NewMatcher(req.Query)
	out := make([]models.Lead, 0, len(all))
	for _, l := range all {
		if status != "" && l.LeadStatus != status {
			continue
		}
		if !m.Match(leadFields(l)...) {
			continue
		}
		out = append(out, l)
	}

	return &models.LeadListResponse{Data: out, Total: len(out), Excluded: len(excl), Notices: notices}, nil
}

func leadFields(l models.Lead) []string {
	return []string{
		l.LeadNo, l.ReceivedBy, l.Source, l.CompanyName, l.PhoneNumber, l.PersonName,
		l.Location, l.Email, l.State, l.Address, l.NatureOfBusiness, l.Remarks,
		l.Planned, l.Actual, l.TimeDelay, string(l.LeadStatus), l.NextFollowupDate,
		l.WhatDidCustomerSay,
	}
}

// NextLeadNo returns the lead number after last, e.g. LN-015 → LN-016. A
// blank or unreadable last number starts the sequence at LN-001.
func NextLeadNo(last string) string {
	return fmt.Sprintf("%s%03d", LeadNoPrefix, leadNoSeq(last)+1)
}

func leadNoSeq(no string) int {
	no = strings.TrimSpace(no)
	i := strings.LastIndex(no, "-")
	if i < 0 {
		return 0
	}
	n, err := strconv.Atoi(no[i+1:])
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// nextLeadNo asks the sheet for the last lead number. When the sheet cannot
// answer, the highest locally saved number is used instead.
func (s *Service) nextLeadNo(ctx context.Context) (string, *models.Notice, error) {
	last, err := s.sheets.GetLastLeadNo(ctx)
	if err == nil {
		return NextLeadNo(last), nil, nil
	}
	s.log.Warn("last lead number unavailable, numbering from local leads", "error", err)

	local, lerr := s.store.Leads.GetAll(ctx)
	if lerr != nil {
		return "", nil, domain.NewInternalError(lerr)
	}
	highest := 0
	for _, l := range local {
		if strings.HasPrefix(strings.TrimSpace(l.LeadNo), LeadNoPrefix) {
			if n := leadNoSeq(l.LeadNo); n > highest {
				highest = n
			}
		}
	}
	notice := models.Notice{Level: models.NoticeInfo, Message: NoticeLeadNoLocal}
	return fmt.Sprintf("%s%03d", LeadNoPrefix, highest+1), &notice, nil
}

// AddLead numbers a new lead, saves it locally and appends it to the sheet.
// A failed sheet write leaves the local copy in place and is reported as
// not synced.
func (s *Service) AddLead(ctx context.Context, req models.CreateLeadRequest) (*models.CreateLeadResponse, error) {
	leadNo, numberNotice, err := s.nextLeadNo(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now().In(s.cfg.Location)
	lead := models.Lead{
		ID:               s.newID(),
		Timestamp:        now,
		TimestampRaw:     sheetdate.FormatSheet(now),
		LeadNo:           leadNo,
		ReceivedBy:       strings.TrimSpace(req.ReceivedBy),
		Source:           strings.TrimSpace(req.Source),
		CompanyName:      strings.TrimSpace(req.CompanyName),
		PhoneNumber:      strings.TrimSpace(req.PhoneNumber),
		PersonName:       strings.TrimSpace(req.PersonName),
		Location:         strings.TrimSpace(req.Location),
		Email:            strings.TrimSpace(req.Email),
		State:            strings.TrimSpace(req.State),
		Address:          strings.TrimSpace(req.Address),
		NatureOfBusiness: strings.TrimSpace(req.NatureOfBusiness),
		Remarks:          strings.TrimSpace(req.Remarks),
		LeadStatus:       models.StatusFollowUp,
		Status1:          mapper.Status1Pending,
	}

	if err := s.store.Leads.Add(ctx, lead); err != nil {
		return nil, domain.NewInternalError(err)
	}

	resp := &models.CreateLeadResponse{Lead: lead, WriteResult: models.WriteResult{Synced: true, Notice: numberNotice}}
	if err := s.sheets.Insert(ctx, s.cfg.LeadsSheet, mapper.NewLeadRow(lead)); err != nil {
		s.log.Error("lead saved locally but not synced", "lead_no", lead.LeadNo, "error", err)
		notice := models.NewWarning(NoticeNotSynced)
		resp.Synced = false
		resp.Notice = &notice
		s.notifyUnsynced(ctx, "lead", lead.LeadNo, err)
	} else {
		s.log.Info("lead added", "lead_no", lead.LeadNo)
		s.notifyNewLead(ctx, lead)
	}
	s.metrics.RecordWrite("lead", resp.Synced)

	return resp, nil
}

// DeleteLead removes a lead from the echo store only; the sheet keeps it
func (s *Service) DeleteLead(ctx context.Context, id string) (int, error) {
	n, err := s.store.Leads.Delete(ctx, id)
	if err != nil {
		return 0, domain.NewInternalError(err)
	}
	return n, nil
}

func (s *Service) notifyNewLead(ctx context.Context, lead models.Lead) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyNewLead(ctx, lead); err != nil {
		s.log.Warn("new lead notification failed", "lead_no", lead.LeadNo, "error", err)
	}
}

func (s *Service) notifyUnsynced(ctx context.Context, kind, ref string, cause error) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.NotifyUnsynced(ctx, kind, ref, cause); err != nil {
		s.log.Warn("unsynced notification failed", "kind", kind, "ref", ref, "error", err)
	}
}
