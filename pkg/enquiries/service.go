// Package enquiries implements the enquiry page: patient enquiries that
// arrive directly or through a lead.
package enquiries

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/mapper"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/search"
	"github.com/jordanlanch/leadtoorder/pkg/sheetdate"
	"github.com/jordanlanch/leadtoorder/pkg/store"
)

// DirectRefPrefix starts generated references of direct enquiries
const DirectRefPrefix = "DIR"

// User-visible notices
const (
	NoticeUnavailable = "Failed to load enquiries from sheet; showing locally saved enquiries"
	NoticeNotSynced   = "Saved locally, not synced to the sheet"
)

// Config configures the service
type Config struct {
	EnquiriesSheet string
	Location       *time.Location
}

// Service implements the enquiry use cases
type Service struct {
	sheets   domain.SheetClient
	store    *store.Store
	notifier domain.Notifier
	metrics  *metrics.Metrics
	cfg      Config
	log      logger.Logger
	now      func() time.Time
	newID    func() string
	randN    func(n int) int
}

// NewService creates an enquiry service. notifier and m may be nil.
func NewService(sc domain.SheetClient, st *store.Store, notifier domain.Notifier, m *metrics.Metrics, cfg Config, log logger.Logger) *Service {
	if cfg.EnquiriesSheet == "" {
		cfg.EnquiriesSheet = "Enquiery"
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
		log:      log.With("component", "enquiries"),
		now:      time.Now,
		newID:    uuid.NewString,
		randN:    rand.IntN,
	}
}

// Fetch reads and maps the enquiry sheet. Rows without a reference are dropped.
func (s *Service) Fetch(ctx context.Context) ([]models.Enquiry, error) {
	rows, err := s.sheets.GetEnquiries(ctx)
	if err != nil {
		return nil, err
	}
	opts := mapper.DefaultOptions(s.now(), s.cfg.Location)
	opts.NewID = s.newID
	enquiries, rep := mapper.MapEnquiries(rows, opts)
	if n := rep.Count(mapper.ErrMissingKey); n > 0 {
		s.log.Debug("dropped enquiry rows without a reference", "rows", n)
	}
	return enquiries, nil
}

// Load returns the sheet enquiries, or the echo store copy plus a notice
func (s *Service) Load(ctx context.Context) ([]models.Enquiry, []models.Notice, error) {
	enquiries, err := s.Fetch(ctx)
	if err == nil {
		return enquiries, nil, nil
	}
	s.log.Warn("sheet enquiries unavailable, using local copy", "error", err)
	local, lerr := s.store.Enquiries.GetAll(ctx)
	if lerr != nil {
		return nil, nil, domain.NewInternalError(lerr)
	}
	return local, []models.Notice{models.NewWarning(NoticeUnavailable)}, nil
}

// List returns the enquiries matching the search text in any field. The
// patient total covers every enquiry, not just the matches.
func (s *Service) List(ctx context.Context, req models.EnquiryListRequest) (*models.EnquiryListResponse, error) {
	all, notices, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}

	m := search.NewMatcher(req.Query)
	out := make([]models.Enquiry, 0, len(all))
	total := 0
	for _, e := range all {
		total += e.TotalPatient
		if m.Match(Fields(e)...) {
			out = append(out, e)
		}
	}
	return &models.EnquiryListResponse{Data: out, Total: len(out), TotalPatients: total, Notices: notices}, nil
}

// Fields lists the searchable text of an enquiry
func Fields(e models.Enquiry) []string {
	return []string{
		e.DirectNoOrLeadNo, string(e.ReceivedType), e.PersonName, strconv.Itoa(e.TotalPatient),
		e.PatientName, e.PatientPhoneNumber, e.PatientAddress,
	}
}

// DirectRef generates a direct enquiry reference DIR0000 to DIR9999
func (s *Service) DirectRef() string {
	return fmt.Sprintf("%s%04d", DirectRefPrefix, s.randN(10000))
}

func (s *Service) fromRequest(req models.EnquiryRequest) models.Enquiry {
	ref := strings.TrimSpace(req.DirectNoOrLeadNo)
	typ := models.ReceivedType(strings.ToLower(strings.TrimSpace(req.ReceivedType)))
	if ref == "" && typ == models.ReceivedDirect {
		ref = s.DirectRef()
	}
	return models.Enquiry{
		DirectNoOrLeadNo:   ref,
		ReceivedType:       typ,
		PersonName:         strings.TrimSpace(req.PersonName),
		TotalPatient:       max(req.TotalPatient, 0),
		PatientName:        strings.TrimSpace(req.PatientName),
		PatientPhoneNumber: strings.TrimSpace(req.PatientPhoneNumber),
		PatientAddress:     strings.TrimSpace(req.PatientAddress),
	}
}

// Create saves an enquiry locally and appends it to the sheet
func (s *Service) Create(ctx context.Context, req models.EnquiryRequest) (*models.CreateEnquiryResponse, error) {
	e := s.fromRequest(req)
	if e.DirectNoOrLeadNo == "" {
		return nil, domain.NewValidationError("Please correct the highlighted fields", map[string]string{
			"direct_no_or_lead_no": "Direct No / Lead No is required",
		})
	}
	now := s.now().In(s.cfg.Location)
	e.ID = s.newID()
	e.Timestamp = now
	e.TimestampRaw = sheetdate.FormatSheet(now)

	if err := s.store.Enquiries.Add(ctx, e); err != nil {
		return nil, domain.NewInternalError(err)
	}

	resp := &models.CreateEnquiryResponse{Enquiry: e, WriteResult: models.WriteResult{Synced: true}}
	if err := s.sheets.Insert(ctx, s.cfg.EnquiriesSheet, mapper.EnquiryRow(e)); err != nil {
		s.log.Error("enquiry saved locally but not synced", "ref", e.DirectNoOrLeadNo, "error", err)
		notice := models.NewWarning(NoticeNotSynced)
		resp.Synced = false
		resp.Notice = &notice
		if s.notifier != nil {
			if nerr := s.notifier.NotifyUnsynced(ctx, "enquiry", e.DirectNoOrLeadNo, err); nerr != nil {
				s.log.Warn("unsynced notification failed", "error", nerr)
			}
		}
	} else {
		s.log.Info("enquiry added", "ref", e.DirectNoOrLeadNo, "type", e.ReceivedType)
	}
	s.metrics.RecordWrite("enquiry", resp.Synced)
	return resp, nil
}

// formPatch carries the editable enquiry fields for a store update
type formPatch struct {
	DirectNoOrLeadNo   string              `json:"direct_no_or_lead_no"`
	ReceivedType       models.ReceivedType `json:"received_type"`
	PersonName         string              `json:"person_name"`
	TotalPatient       int                 `json:"total_patient"`
	PatientName        string              `json:"patient_name"`
	PatientPhoneNumber string              `json:"patient_phone_number"`
	PatientAddress     string              `json:"patient_address"`
}

// Update edits a locally saved enquiry; the sheet row is left alone
func (s *Service) Update(ctx context.Context, id string, req models.EnquiryRequest) (*models.Enquiry, error) {
	current, ok, err := s.store.Enquiries.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	if !ok {
		return nil, domain.NewNotFoundError("enquiry")
	}

	if strings.TrimSpace(req.DirectNoOrLeadNo) == "" {
		req.DirectNoOrLeadNo = current.DirectNoOrLeadNo
	}
	e := s.fromRequest(req)
	patch := formPatch{
		DirectNoOrLeadNo:   e.DirectNoOrLeadNo,
		ReceivedType:       e.ReceivedType,
		PersonName:         e.PersonName,
		TotalPatient:       e.TotalPatient,
		PatientName:        e.PatientName,
		PatientPhoneNumber: e.PatientPhoneNumber,
		PatientAddress:     e.PatientAddress,
	}
	if _, err := s.store.Enquiries.Update(ctx, id, patch); err != nil {
		return nil, domain.NewInternalError(err)
	}

	updated, _, err := s.store.Enquiries.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError(err)
	}
	return &updated, nil
}

// Delete removes a locally saved enquiry
func (s *Service) Delete(ctx context.Context, id string) (int, error) {
	n, err := s.store.Enquiries.Delete(ctx, id)
	if err != nil {
		return 0, domain.NewInternalError(err)
	}
	return n, nil
}
