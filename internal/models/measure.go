package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Measure is a numeric metric field as entered by a person or a spreadsheet.
// Raw keeps the original text. Value is set only when Raw parses as a number.
type Measure struct {
	Value *float64 `gorm:"column:value" json:"value"`
	Raw   string   `gorm:"column:raw;size:120" json:"raw" validate:"max=120"`
}

// ParseMeasure builds a Measure from free text. Empty input has no value.
// Decimal numbers may carry a trailing % or thousands separators.
func ParseMeasure(s string) Measure {
	raw := strings.TrimSpace(s)
	m := Measure{Raw: raw}
	if raw == "" {
		return m
	}

	num := strings.TrimSpace(strings.TrimSuffix(raw, "%"))
	num = strings.ReplaceAll(num, ",", "")
	if v, err := strconv.ParseFloat(num, 64); err == nil {
		m.Value = &v
	}
	return m
}

// MeasureOf returns a Measure holding v.
func MeasureOf(v float64) Measure {
	return Measure{Value: &v, Raw: strconv.FormatFloat(v, 'f', -1, 64)}
}

// IsEmpty reports whether nothing was entered.
func (m Measure) IsEmpty() bool {
	return m.Raw == "" && m.Value == nil
}

// Parsed reports whether the raw text was a number. Empty measures count as parsed.
func (m Measure) Parsed() bool {
	return m.Value != nil || m.Raw == ""
}

func (m Measure) String() string {
	if m.Raw != "" {
		return m.Raw
	}
	if m.Value != nil {
		return strconv.FormatFloat(*m.Value, 'f', -1, 64)
	}
	return ""
}

// MarshalJSON renders the measure as its display text.
func (m Measure) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

// UnmarshalJSON accepts either a JSON number or a string.
func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Measure{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*m = ParseMeasure(s)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("measure must be a number or string: %w", err)
	}
	*m = MeasureOf(f)
	return nil
}
