// Package export renders the call tracker as a downloadable spreadsheet.
package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/jordanlanch/leadtoorder/pkg/domain"
	"github.com/jordanlanch/leadtoorder/pkg/leads"
	"github.com/jordanlanch/leadtoorder/pkg/logger"
	"github.com/jordanlanch/leadtoorder/pkg/metrics"
	"github.com/jordanlanch/leadtoorder/pkg/models"
	"github.com/jordanlanch/leadtoorder/pkg/reconcile"
	"github.com/xuri/excelize/v2"
)

// Formats
const (
	FormatExcel = "excel"
	FormatCSV   = "csv"
)

// Content types
const (
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV   = "text/csv"
)

// Sheet names of the Excel export
const (
	SheetActive       = "Active Leads"
	SheetInteractions = "Interactions"
)

// NoticeUploadFailed is attached when the copy could not be stored remotely
const NoticeUploadFailed = "Export created, but the copy could not be uploaded"

var activeHeaders = []string{
	"Lead No", "Company Name", "Person Name", "Phone Number", "Email", "Location",
	"Planned", "Lead Status", "Next Follow-up Date", "What Did Customer Say", "Follow-ups",
}

var interactionHeaders = []string{
	"Timestamp", "Lead No", "Company Name", "Lead Status", "Next Follow-up Date", "What Did Customer Say",
}

// Uploader stores a finished export somewhere durable and returns where
type Uploader interface {
	Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
}

// Request selects the export format and the call tracker filters
type Request struct {
	Format string `query:"format"`
	models.CallTrackerRequest
}

// File is a rendered export
type File struct {
	Name        string
	ContentType string
	Data        []byte
	// Location is where a copy was stored, if anywhere
	Location string
	Notices  []models.Notice
}

// Service creates exports
type Service struct {
	leads       *leads.Service
	uploader    Uploader
	storagePath string
	metrics     *metrics.Metrics
	loc         *time.Location
	log         logger.Logger
	now         func() time.Time
}

// NewService creates an export service. uploader may be nil and
// storagePath may be empty, in which case exports are only returned.
func NewService(ls *leads.Service, uploader Uploader, storagePath string, m *metrics.Metrics, loc *time.Location, log logger.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = logger.Default()
	}
	if storagePath != "" {
		if err := os.MkdirAll(storagePath, 0o755); err != nil {
			log.Warn("export directory unavailable, exports will not be kept", "path", storagePath, "error", err)
			storagePath = ""
		}
	}
	return &Service{
		leads:       ls,
		uploader:    uploader,
		storagePath: storagePath,
		metrics:     m,
		loc:         loc,
		log:         log.With("component", "export"),
		now:         time.Now,
	}
}

// CallTracker exports the active leads and, for Excel, the interaction history
func (s *Service) CallTracker(ctx context.Context, req Request) (*File, error) {
	if req.Format == "" {
		req.Format = FormatExcel
	}
	if req.Format != FormatExcel && req.Format != FormatCSV {
		return nil, domain.NewValidationError("Invalid export format", map[string]string{
			"format": "Must be one of: excel, csv",
		})
	}

	view, err := s.leads.CallTracker(ctx, req.CallTrackerRequest)
	if err != nil {
		return nil, err
	}

	stamp := s.now().In(s.loc).Format("20060102-150405")
	file := &File{Notices: view.Notices}
	switch req.Format {
	case FormatCSV:
		file.Name = fmt.Sprintf("call-tracker-%s.csv", stamp)
		file.ContentType = ContentTypeCSV
		file.Data, err = s.generateCSV(view.Active)
	default:
		file.Name = fmt.Sprintf("call-tracker-%s.xlsx", stamp)
		file.ContentType = ContentTypeExcel
		file.Data, err = s.generateExcel(view.Active, view.Interactions)
	}
	if err != nil {
		return nil, domain.NewInternalError(err)
	}

	s.keep(ctx, file)
	s.metrics.RecordExportCreated(req.Format)
	s.log.Info("export created", "name", file.Name, "active", len(view.Active), "bytes", len(file.Data))
	return file, nil
}

// keep stores a copy locally and remotely. Failures only add notices.
func (s *Service) keep(ctx context.Context, file *File) {
	if s.storagePath != "" {
		path := filepath.Join(s.storagePath, file.Name)
		if err := os.WriteFile(path, file.Data, 0o644); err != nil {
			s.log.Warn("failed to keep export locally", "path", path, "error", err)
		} else {
			file.Location = path
		}
	}
	if s.uploader != nil {
		loc, err := s.uploader.Upload(ctx, "exports/"+file.Name, bytes.NewReader(file.Data), file.ContentType)
		if err != nil {
			s.log.Warn("failed to upload export", "name", file.Name, "error", err)
			file.Notices = append(file.Notices, models.NewWarning(NoticeUploadFailed))
			return
		}
		file.Location = loc
	}
}

func activeRow(l reconcile.MergedLead) []string {
	return []string{
		l.LeadNo, l.CompanyName, l.PersonName, l.PhoneNumber, l.Email, l.Location,
		l.Planned, string(l.LeadStatus), l.NextFollowupDate, l.WhatDidCustomerSay,
		strconv.Itoa(l.FollowUpCount),
	}
}

func (s *Service) interactionRow(it reconcile.Interaction) []string {
	ts := it.TimestampRaw
	if !it.TimestampFallback && !it.Timestamp.IsZero() {
		ts = it.Timestamp.In(s.loc).Format("02/01/2006 15:04:05")
	}
	return []string{
		ts, it.LeadNo, it.CompanyName, string(it.LeadStatus), it.NextFollowupDate, it.WhatDidCustomerSay,
	}
}

func (s *Service) generateCSV(active []reconcile.MergedLead) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(activeHeaders); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for _, l := range active {
		if err := w.Write(activeRow(l)); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *Service) generateExcel(active []reconcile.MergedLead, interactions []reconcile.Interaction) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetSheetName("Sheet1", SheetActive); err != nil {
		return nil, fmt.Errorf("failed to rename sheet: %w", err)
	}
	rows := make([][]string, 0, len(active))
	for _, l := range active {
		rows = append(rows, activeRow(l))
	}
	if err := writeSheet(f, SheetActive, activeHeaders, rows, headerStyle); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(SheetInteractions); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	rows = make([][]string, 0, len(interactions))
	for _, it := range interactions {
		rows = append(rows, s.interactionRow(it))
	}
	if err := writeSheet(f, SheetInteractions, interactionHeaders, rows, headerStyle); err != nil {
		return nil, err
	}

	f.SetActiveSheet(0)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet string, headers []string, rows [][]string, headerStyle int) error {
	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	last, err := excelize.CoordinatesToCellName(len(headers), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", lastCol, 18)
}
