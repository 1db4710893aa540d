// Package autofill suggests item details for a device from its name and
// serial number. A generative collaborator is asked first; whatever it gets
// wrong or cannot answer is filled from deterministic serial-number rules.
package autofill

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	"github.com/frahmantamala/ewaste-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

// ErrUnavailable means the collaborator could not be reached or is disabled.
var ErrUnavailable = errors.New("autofill collaborator unavailable")

// Collaborator turns a prompt into free-form text.
type Collaborator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Suggestion mirrors the item fields a batch accepts, plus device metadata.
type Suggestion struct {
	Name           string              `json:"name"`
	ModelNumber    string              `json:"model"`
	Manufacturer   string              `json:"manufacturer"`
	DeviceType     string              `json:"device_type"`
	EstimatedValue decimal.Decimal     `json:"estimated_value"`
	CO2Estimate    decimal.Decimal     `json:"co2_estimate"`
	StockType      catalog.StockType   `json:"stock_type"`
	Condition      catalog.Condition   `json:"condition"`
	HazardLevel    catalog.HazardLevel `json:"hazard_level"`
	Priority       catalog.Priority    `json:"priority"`
	RecyclingNotes string              `json:"recycling_notes"`
	Description    string              `json:"description"`
}

type Result struct {
	Data    Suggestion `json:"data"`
	Warning string     `json:"warning,omitempty"`
}

type SuggestDTO struct {
	ItemName     string `json:"item_name"`
	SerialNumber string `json:"serial_number"`
}

func (dto SuggestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("serial_number", dto.SerialNumber).Custom(func(value interface{}) *internal.AppError {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return internal.NewValidationFieldError("serial_number", "Serial number is required", internal.ErrCodeSerialRequired)
		}
		return nil
	}).MaxLength(100)
	v.Field("item_name", dto.ItemName).MaxLength(200)

	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DeviceTypes lists the device classes the suggester understands.
var DeviceTypes = []string{"laptop", "desktop", "monitor", "printer", "server", "mobile", "tablet", "phone"}

func validDeviceType(t string) bool {
	for _, d := range DeviceTypes {
		if d == t {
			return true
		}
	}
	return false
}
