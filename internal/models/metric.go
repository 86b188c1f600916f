package models

import (
	"fmt"
	"time"
)

// MetricColumns are the registry's column names, in order, as used by spreadsheets.
var MetricColumns = []string{
	"service_name",
	"service_element_name",
	"service_level_detail",
	"target",
	"service_provider_steward_1",
	"metric_name",
	"metric_description",
	"metric_rationale",
	"metric_value_display_format",
	"threshold_target",
	"threshold_target_rationale",
	"threshold_target_direction",
	"threshold_trigger",
	"threshold_trigger_rationale",
	"threshold_trigger_direction",
	"data_source",
	"data_update_frequency",
	"metric_owner_primary",
	"vantage_control_id",
}

// Metric is a KPI-style service metric record in the registry.
// Metrics are fully mutable and hard-deleted.
type Metric struct {
	ID                        uint    `gorm:"primaryKey" json:"id"`
	ServiceName               string  `gorm:"size:120;index" json:"service_name" validate:"max=120"`
	ServiceElementName        string  `gorm:"size:120;index" json:"service_element_name" validate:"max=120"`
	ServiceLevelDetail        string  `gorm:"type:text" json:"service_level_detail" validate:"max=4000"`
	Target                    Measure `gorm:"embedded;embeddedPrefix:target_" json:"target"`
	ServiceProviderSteward1   string  `gorm:"column:service_provider_steward_1;size:120;index" json:"service_provider_steward_1" validate:"max=120"`
	MetricName                string  `gorm:"size:120;index" json:"metric_name" validate:"max=120"`
	MetricDescription         string  `gorm:"type:text" json:"metric_description" validate:"max=5000"`
	MetricRationale           string  `gorm:"type:text" json:"metric_rationale" validate:"max=4000"`
	MetricValueDisplayFormat  string  `gorm:"size:120" json:"metric_value_display_format" validate:"max=120"`
	ThresholdTarget           Measure `gorm:"embedded;embeddedPrefix:threshold_target_" json:"threshold_target"`
	ThresholdTargetRationale  string  `gorm:"size:500" json:"threshold_target_rationale" validate:"max=500"`
	ThresholdTargetDirection  string  `gorm:"size:10" json:"threshold_target_direction" validate:"max=10"`
	ThresholdTrigger          Measure `gorm:"embedded;embeddedPrefix:threshold_trigger_" json:"threshold_trigger"`
	ThresholdTriggerRationale string  `gorm:"size:500" json:"threshold_trigger_rationale" validate:"max=500"`
	ThresholdTriggerDirection string  `gorm:"size:10" json:"threshold_trigger_direction" validate:"max=10"`
	DataSource                string  `gorm:"size:120;index" json:"data_source" validate:"max=120"`
	DataUpdateFrequency       string  `gorm:"size:120;index" json:"data_update_frequency" validate:"max=120"`
	MetricOwnerPrimary        string  `gorm:"size:120;index" json:"metric_owner_primary" validate:"max=120"`
	VantageControlID          string  `gorm:"size:120;index" json:"vantage_control_id" validate:"max=120"`

	// UserID is the creator. Anonymous imports leave it nil.
	UserID    *uint     `gorm:"index" json:"user_id"`
	Creator   *User     `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Metric) TableName() string {
	return "metrics"
}

// Values returns the user-editable fields in MetricColumns order.
func (m *Metric) Values() []string {
	return []string{
		m.ServiceName,
		m.ServiceElementName,
		m.ServiceLevelDetail,
		m.Target.String(),
		m.ServiceProviderSteward1,
		m.MetricName,
		m.MetricDescription,
		m.MetricRationale,
		m.MetricValueDisplayFormat,
		m.ThresholdTarget.String(),
		m.ThresholdTargetRationale,
		m.ThresholdTargetDirection,
		m.ThresholdTrigger.String(),
		m.ThresholdTriggerRationale,
		m.ThresholdTriggerDirection,
		m.DataSource,
		m.DataUpdateFrequency,
		m.MetricOwnerPrimary,
		m.VantageControlID,
	}
}

// Overwrite replaces every user-editable field of m with src. ID and creator are kept.
func (m *Metric) Overwrite(src *Metric) {
	m.ServiceName = src.ServiceName
	m.ServiceElementName = src.ServiceElementName
	m.ServiceLevelDetail = src.ServiceLevelDetail
	m.Target = src.Target
	m.ServiceProviderSteward1 = src.ServiceProviderSteward1
	m.MetricName = src.MetricName
	m.MetricDescription = src.MetricDescription
	m.MetricRationale = src.MetricRationale
	m.MetricValueDisplayFormat = src.MetricValueDisplayFormat
	m.ThresholdTarget = src.ThresholdTarget
	m.ThresholdTargetRationale = src.ThresholdTargetRationale
	m.ThresholdTargetDirection = src.ThresholdTargetDirection
	m.ThresholdTrigger = src.ThresholdTrigger
	m.ThresholdTriggerRationale = src.ThresholdTriggerRationale
	m.ThresholdTriggerDirection = src.ThresholdTriggerDirection
	m.DataSource = src.DataSource
	m.DataUpdateFrequency = src.DataUpdateFrequency
	m.MetricOwnerPrimary = src.MetricOwnerPrimary
	m.VantageControlID = src.VantageControlID
}

// MetricFromValues builds a metric from one row of values in MetricColumns order.
func MetricFromValues(v []string) (*Metric, error) {
	if len(v) != len(MetricColumns) {
		return nil, fmt.Errorf("expected %d values, got %d", len(MetricColumns), len(v))
	}
	return &Metric{
		ServiceName:               v[0],
		ServiceElementName:        v[1],
		ServiceLevelDetail:        v[2],
		Target:                    ParseMeasure(v[3]),
		ServiceProviderSteward1:   v[4],
		MetricName:                v[5],
		MetricDescription:         v[6],
		MetricRationale:           v[7],
		MetricValueDisplayFormat:  v[8],
		ThresholdTarget:           ParseMeasure(v[9]),
		ThresholdTargetRationale:  v[10],
		ThresholdTargetDirection:  v[11],
		ThresholdTrigger:          ParseMeasure(v[12]),
		ThresholdTriggerRationale: v[13],
		ThresholdTriggerDirection: v[14],
		DataSource:                v[15],
		DataUpdateFrequency:       v[16],
		MetricOwnerPrimary:        v[17],
		VantageControlID:          v[18],
	}, nil
}
