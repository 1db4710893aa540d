package autofill

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	"github.com/shopspring/decimal"
)

var errNoJSON = errors.New("no JSON object in collaborator response")

var (
	maxEstimatedValue = decimal.NewFromInt(1000)
	maxCO2Estimate    = decimal.NewFromInt(50)
)

// extractJSON strips markdown fences and returns the outermost {...} span.
func extractJSON(text string) (string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.ReplaceAll(cleaned, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return "", errNoJSON
	}
	return cleaned[start : end+1], nil
}

// rawSuggestion accepts loosely typed collaborator output. Numbers may come
// back as strings.
type rawSuggestion struct {
	Name           string      `json:"name"`
	ModelNumber    string      `json:"model"`
	Manufacturer   string      `json:"manufacturer"`
	DeviceType     string      `json:"device_type"`
	EstimatedValue interface{} `json:"estimated_value"`
	CO2Estimate    interface{} `json:"co2_estimate"`
	StockType      string      `json:"stock_type"`
	HazardLevel    string      `json:"hazard_level"`
	Priority       string      `json:"priority"`
	RecyclingNotes string      `json:"recycling_notes"`
	Description    string      `json:"description"`
}

// sanitize merges collaborator output over the fallback, field by field. It
// returns the names of fields that had to be replaced.
func sanitize(text string, fallback Suggestion) (Suggestion, []string, error) {
	payload, err := extractJSON(text)
	if err != nil {
		return Suggestion{}, nil, err
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Suggestion{}, nil, fmt.Errorf("decode collaborator response: %w", err)
	}

	out := fallback
	var replaced []string
	note := func(field string) { replaced = append(replaced, field) }

	if s := strings.TrimSpace(raw.Name); s != "" {
		out.Name = s
	}
	if s := strings.TrimSpace(raw.Manufacturer); s != "" {
		out.Manufacturer = s
	}
	if s := strings.ToLower(strings.TrimSpace(raw.DeviceType)); validDeviceType(s) {
		out.DeviceType = s
		out.CO2Estimate = estimateCO2(s)
		out.RecyclingNotes = defaultRecyclingNotes(s)
	} else if raw.DeviceType != "" {
		note("device_type")
	}

	if v, ok := boundedDecimal(raw.EstimatedValue, maxEstimatedValue); ok {
		out.EstimatedValue = v
	} else {
		note("estimated_value")
	}
	if v, ok := boundedDecimal(raw.CO2Estimate, maxCO2Estimate); ok {
		out.CO2Estimate = v
	} else {
		note("co2_estimate")
	}

	if st, ok := catalog.Parse(catalog.StockTypes, raw.StockType); ok {
		out.StockType = st
	} else if raw.StockType != "" {
		note("stock_type")
	}
	if h, ok := catalog.Parse(catalog.HazardLevels, raw.HazardLevel); ok {
		out.HazardLevel = h
	} else if raw.HazardLevel != "" {
		note("hazard_level")
	}
	if p, ok := catalog.Parse(catalog.Priorities, raw.Priority); ok {
		out.Priority = p
	} else if raw.Priority != "" {
		note("priority")
	}

	if s := strings.TrimSpace(raw.RecyclingNotes); s != "" {
		out.RecyclingNotes = s
	}
	if s := strings.TrimSpace(raw.Description); s != "" {
		out.Description = s
	}

	// Items offered for pickup are assumed not to work.
	out.Condition = catalog.ConditionNonWorking

	return out, replaced, nil
}

// boundedDecimal accepts numbers or numeric strings within [0, max].
func boundedDecimal(v interface{}, max decimal.Decimal) (decimal.Decimal, bool) {
	var d decimal.Decimal
	switch n := v.(type) {
	case float64:
		d = decimal.NewFromFloat(n)
	case string:
		parsed, err := decimal.NewFromString(strings.TrimSpace(n))
		if err != nil {
			return decimal.Decimal{}, false
		}
		d = parsed
	default:
		return decimal.Decimal{}, false
	}
	if d.IsNegative() || d.GreaterThan(max) {
		return decimal.Decimal{}, false
	}
	return d.Round(2), true
}
