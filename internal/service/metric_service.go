package service

import (
	"context"
	"reflect"

	"microblog/internal/models"
	"microblog/internal/repository"
	"microblog/internal/validation"

	"github.com/jinzhu/copier"
)

// MetricInput is the add/edit form of the metric registry.
type MetricInput struct {
	ServiceName               string `json:"service_name" form:"service_name" validate:"required,max=120"`
	ServiceElementName        string `json:"service_element_name" form:"service_element_name" validate:"required,max=120"`
	ServiceLevelDetail        string `json:"service_level_detail" form:"service_level_detail" validate:"max=4000"`
	Target                    string `json:"target" form:"target" validate:"required,max=120"`
	ServiceProviderSteward1   string `json:"service_provider_steward_1" form:"service_provider_steward_1" validate:"max=120"`
	MetricName                string `json:"metric_name" form:"metric_name" validate:"required,max=120"`
	MetricDescription         string `json:"metric_description" form:"metric_description" validate:"max=5000"`
	MetricRationale           string `json:"metric_rationale" form:"metric_rationale" validate:"max=4000"`
	MetricValueDisplayFormat  string `json:"metric_value_display_format" form:"metric_value_display_format" validate:"max=120"`
	ThresholdTarget           string `json:"threshold_target" form:"threshold_target" validate:"max=120"`
	ThresholdTargetRationale  string `json:"threshold_target_rationale" form:"threshold_target_rationale" validate:"max=500"`
	ThresholdTargetDirection  string `json:"threshold_target_direction" form:"threshold_target_direction" validate:"max=10"`
	ThresholdTrigger          string `json:"threshold_trigger" form:"threshold_trigger" validate:"max=120"`
	ThresholdTriggerRationale string `json:"threshold_trigger_rationale" form:"threshold_trigger_rationale" validate:"max=500"`
	ThresholdTriggerDirection string `json:"threshold_trigger_direction" form:"threshold_trigger_direction" validate:"max=10"`
	DataSource                string `json:"data_source" form:"data_source" validate:"max=120"`
	DataUpdateFrequency       string `json:"data_update_frequency" form:"data_update_frequency" validate:"max=120"`
	MetricOwnerPrimary        string `json:"metric_owner_primary" form:"metric_owner_primary" validate:"max=120"`
	VantageControlID          string `json:"vantage_control_id" form:"vantage_control_id" validate:"max=120"`
}

// Converters between form text and models.Measure, applied field by field by copier.
var (
	parseMeasure = copier.TypeConverter{
		SrcType: "",
		DstType: models.Measure{},
		Fn: func(src interface{}) (interface{}, error) {
			return models.ParseMeasure(src.(string)), nil
		},
	}
	formatMeasure = copier.TypeConverter{
		SrcType: models.Measure{},
		DstType: "",
		Fn: func(src interface{}) (interface{}, error) {
			return src.(models.Measure).String(), nil
		},
	}
)

// ToMetric maps the form onto a new, unsaved metric.
func (in MetricInput) ToMetric() (*models.Metric, error) {
	m := &models.Metric{}
	if err := copier.CopyWithOption(m, &in, copier.Option{Converters: []copier.TypeConverter{parseMeasure}}); err != nil {
		return nil, models.NewInternalError(err)
	}
	return m, nil
}

// MetricInputFrom prefills the form from a stored metric.
func MetricInputFrom(m *models.Metric) (MetricInput, error) {
	var in MetricInput
	if err := copier.CopyWithOption(&in, m, copier.Option{Converters: []copier.TypeConverter{formatMeasure}}); err != nil {
		return in, models.NewInternalError(err)
	}
	return in, nil
}

// MetricFormFields lists the form's field names in registry column order.
func MetricFormFields() []string {
	t := reflect.TypeOf(MetricInput{})
	fields := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		fields = append(fields, t.Field(i).Tag.Get("json"))
	}
	return fields
}

// MetricService manages the service metric registry.
type MetricService struct {
	metricRepo repository.MetricRepository
}

// NewMetricService returns a new MetricService.
func NewMetricService(metricRepo repository.MetricRepository) *MetricService {
	return &MetricService{metricRepo: metricRepo}
}

// ListMetrics returns every metric in id order.
func (s *MetricService) ListMetrics(ctx context.Context) ([]*models.Metric, error) {
	return s.metricRepo.List(ctx)
}

// GetMetric returns one metric or a not-found error.
func (s *MetricService) GetMetric(ctx context.Context, id uint) (*models.Metric, error) {
	return s.metricRepo.GetByID(ctx, id)
}

// CreateMetric validates the form and stores a new metric owned by creatorID.
func (s *MetricService) CreateMetric(ctx context.Context, in MetricInput, creatorID *uint) (*models.Metric, error) {
	metric, err := s.fromForm(in)
	if err != nil {
		return nil, err
	}
	metric.UserID = creatorID
	if err := s.metricRepo.Create(ctx, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

// UpdateMetric overwrites every editable field of metric id with the form values.
// A missing metric is reported as not found before the form is validated.
func (s *MetricService) UpdateMetric(ctx context.Context, id uint, in MetricInput) (*models.Metric, error) {
	metric, err := s.metricRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	incoming, err := s.fromForm(in)
	if err != nil {
		return nil, err
	}
	metric.Overwrite(incoming)
	if err := s.metricRepo.Update(ctx, metric); err != nil {
		return nil, err
	}
	return metric, nil
}

// DeleteMetric removes metric id for good.
func (s *MetricService) DeleteMetric(ctx context.Context, id uint) error {
	return s.metricRepo.Delete(ctx, id)
}

func (s *MetricService) fromForm(in MetricInput) (*models.Metric, error) {
	if err := validation.Struct(&in); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	return in.ToMetric()
}
