package ingestion

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rpattn/fleetreg/internal/domain"
	"github.com/rpattn/fleetreg/internal/logging"
	"github.com/rpattn/fleetreg/internal/metrics"
	"github.com/rpattn/fleetreg/internal/repository"
	"github.com/rpattn/fleetreg/pkg/validator"
)

// ErrUnknownResource is returned for a resource with no registered importer.
var ErrUnknownResource = errors.New("unknown import resource")

// Service runs spreadsheet imports for the registered resources.
type Service struct {
	importers map[string]Importer
	logRepo   repository.ImportLogRepository
	metrics   *metrics.Metrics
}

// NewService creates a new import service. logRepo and m may be nil.
func NewService(logRepo repository.ImportLogRepository, m *metrics.Metrics, importers ...Importer) *Service {
	byResource := make(map[string]Importer, len(importers))
	for _, imp := range importers {
		byResource[imp.Resource()] = imp
	}
	return &Service{
		importers: byResource,
		logRepo:   logRepo,
		metrics:   m,
	}
}

// Request describes one upload.
type Request struct {
	Resource string
	FileName string
	Data     io.Reader
}

// Schema returns the column layout of a resource.
func (s *Service) Schema(resource string) (validator.Schema, bool) {
	imp, ok := s.importers[resource]
	if !ok {
		return nil, false
	}
	return imp.Schema(), true
}

// Import reads the upload and reconciles every row in source order. Only a
// *FormatError or an unknown resource fails the call; row problems are
// reported in the returned Report.
func (s *Service) Import(ctx context.Context, req Request) (Report, error) {
	imp, ok := s.importers[req.Resource]
	if !ok {
		return Report{}, fmt.Errorf("%w: %s", ErrUnknownResource, req.Resource)
	}
	logger := logging.FromContext(ctx).With("resource", req.Resource, "file", req.FileName)

	rows, err := s.readUpload(req)
	if err != nil {
		s.metrics.ImportFailed(req.Resource)
		s.logImportError(ctx, req, nil, err)
		logger.Warn("import rejected", "error", err)
		return Report{}, err
	}

	start := time.Now()
	rowValidator := validator.NewRowValidator(imp.Schema())
	builder := NewReportBuilder()

	for _, row := range rows {
		outcome := s.processRow(ctx, imp, rowValidator, row)
		if outcome.Kind == OutcomeErrored {
			rowNumber := outcome.Row
			s.logImportError(ctx, req, &rowNumber, errors.New(outcome.Message))
			logger.Debug("import row failed", "row", outcome.Row, "error", outcome.Message)
		}
		builder.Add(outcome)
	}

	report := builder.Build()
	s.metrics.ObserveImport(req.Resource, map[string]int{
		string(OutcomeCreated): report.Created,
		string(OutcomeUpdated): report.Updated,
		string(OutcomeSkipped): report.Skipped,
		string(OutcomeErrored): report.Errored,
	}, time.Since(start))

	logger.Info("import finished",
		"total_rows", report.TotalRows,
		"created", report.Created,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"errored", report.Errored,
		"duration", time.Since(start),
	)
	return report, nil
}

func (s *Service) readUpload(req Request) ([]ImportRow, error) {
	format, err := FormatFromFileName(req.FileName)
	if err != nil {
		return nil, err
	}
	if req.Data == nil {
		return nil, &FormatError{FileName: req.FileName, Err: errors.New("no file provided")}
	}

	payload, err := io.ReadAll(req.Data)
	if err != nil {
		return nil, &FormatError{FileName: req.FileName, Err: fmt.Errorf("failed to read upload: %w", err)}
	}
	if len(payload) == 0 {
		return nil, &FormatError{FileName: req.FileName, Err: errors.New("file is empty")}
	}

	rows, err := ReadRows(format, payload)
	if err != nil {
		var formatErr *FormatError
		if errors.As(err, &formatErr) {
			formatErr.FileName = req.FileName
		}
		return nil, err
	}
	return rows, nil
}

func (s *Service) processRow(ctx context.Context, imp Importer, rowValidator *validator.RowValidator, row ImportRow) RowOutcome {
	if row.Empty() {
		return Skipped(row.Index, "empty row")
	}

	record, err := rowValidator.Validate(row.Values)
	if err != nil {
		return Errored(row.Index, err)
	}
	return imp.ImportRecord(ctx, row.Index, record)
}

func (s *Service) logImportError(ctx context.Context, req Request, rowNumber *int, err error) {
	if s.logRepo == nil || err == nil {
		return
	}
	entry := domain.ImportLogEntry{
		Resource:     req.Resource,
		FileName:     req.FileName,
		RowNumber:    rowNumber,
		ErrorMessage: err.Error(),
	}
	if recordErr := s.logRepo.Record(ctx, entry); recordErr != nil {
		logging.FromContext(ctx).Warn("failed to record import log", "error", recordErr)
	}
}
