package service

import (
	"context"
	"errors"
	"io"

	"microblog/internal/middleware"
	"microblog/internal/models"
	"microblog/internal/observability"
	"microblog/internal/repository"
	"microblog/internal/spreadsheet"

	"go.opentelemetry.io/otel/attribute"
)

// ImportService bulk-loads metrics from spreadsheets and exports the registry.
type ImportService struct {
	metricRepo repository.MetricRepository
}

// NewImportService returns a new ImportService.
func NewImportService(metricRepo repository.MetricRepository) *ImportService {
	return &ImportService{metricRepo: metricRepo}
}

// Import reads every data row of the spreadsheet in r and stores them as metrics owned by
// creatorID. Either all rows are stored or none is. It returns the number of rows stored.
func (s *ImportService) Import(ctx context.Context, filename string, r io.Reader, creatorID *uint) (n int, err error) {
	ctx, span := observability.StartSpan(ctx, "import", "metrics",
		attribute.String("import.filename", filename),
	)
	defer func() { observability.EndSpan(span, err) }()

	rows, err := spreadsheet.Read(filename, r)
	if err != nil {
		reason := "unreadable"
		if errors.Is(err, spreadsheet.ErrUnsupportedFormat) {
			reason = "format"
		}
		observability.ImportFailures.WithLabelValues(reason).Inc()
		return 0, models.NewValidationError(err.Error())
	}

	metrics, err := spreadsheet.MetricsFromRows(rows)
	if err != nil {
		observability.ImportFailures.WithLabelValues("layout").Inc()
		return 0, models.NewValidationError(err.Error())
	}
	for _, m := range metrics {
		m.UserID = creatorID
	}

	if err := s.metricRepo.CreateBatch(ctx, metrics); err != nil {
		observability.ImportFailures.WithLabelValues("storage").Inc()
		return 0, err
	}

	observability.MetricRowsImported.Add(float64(len(metrics)))
	span.SetAttributes(attribute.Int("import.rows", len(metrics)))
	middleware.Logger.InfoContext(ctx, "metrics imported", "filename", filename, "rows", len(metrics))
	return len(metrics), nil
}

// Export writes the whole registry to w as a spreadsheet.
func (s *ImportService) Export(ctx context.Context, format spreadsheet.Format, w io.Writer) error {
	metrics, err := s.metricRepo.List(ctx)
	if err != nil {
		return err
	}
	return spreadsheet.Write(format, spreadsheet.MetricColumns(), spreadsheet.MetricRows(metrics), w)
}

// Grid returns the registry as header plus rows, the shape spreadsheet widgets consume.
func (s *ImportService) Grid(ctx context.Context) ([]string, [][]string, error) {
	metrics, err := s.metricRepo.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return spreadsheet.MetricColumns(), spreadsheet.MetricRows(metrics), nil
}
