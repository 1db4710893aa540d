package autofill

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/metrics"
)

type Authorizer interface {
	CanUseAutofill(u *internal.User) bool
}

type Service struct {
	collaborator Collaborator
	authz        Authorizer
	logger       *slog.Logger
}

func NewService(collaborator Collaborator, authz Authorizer, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		collaborator: collaborator,
		authz:        authz,
		logger:       logger,
	}
}

// Suggest never fails because of the collaborator. Any problem there is
// reported as a warning on a fallback result.
func (s *Service) Suggest(ctx context.Context, actor *internal.User, dto SuggestDTO) (*Result, error) {
	if !s.authz.CanUseAutofill(actor) {
		return nil, internal.ErrForbidden
	}
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	itemName := strings.TrimSpace(dto.ItemName)
	serial := strings.TrimSpace(dto.SerialNumber)
	fallback := fallbackSuggestion(itemName, serial)

	text, err := s.collaborator.Generate(ctx, buildPrompt(itemName, serial))
	if err != nil {
		reason := "error"
		if errors.Is(err, ErrUnavailable) {
			reason = "unavailable"
		}
		return s.fallback(fallback, reason, err), nil
	}

	suggestion, replaced, err := sanitize(text, fallback)
	if err != nil {
		return s.fallback(fallback, "malformed", err), nil
	}

	result := &Result{Data: suggestion}
	if len(replaced) > 0 {
		metrics.AutofillFallbacksTotal.WithLabelValues("invalid_field").Inc()
		result.Warning = "Some fields were replaced with defaults: " + strings.Join(replaced, ", ")
		s.logger.Warn("autofill fields replaced", "fields", replaced, "serial", serial)
	}
	return result, nil
}

func (s *Service) fallback(suggestion Suggestion, reason string, cause error) *Result {
	metrics.AutofillFallbacksTotal.WithLabelValues(reason).Inc()
	s.logger.Warn("autofill using fallback data", "reason", reason, "error", cause)
	return &Result{
		Data:    suggestion,
		Warning: "Used fallback data because the suggestion service was " + reasonText(reason),
	}
}

func reasonText(reason string) string {
	switch reason {
	case "unavailable":
		return "unavailable"
	case "malformed":
		return "unreadable"
	default:
		return "failing"
	}
}

func buildPrompt(itemName, serial string) string {
	if itemName == "" {
		itemName = "not provided"
	}
	return fmt.Sprintf(`Identify this device for an e-waste recycling intake form.

Item name: %s
Serial or model number: %s

Assume the device does not work. Reply with a single JSON object and nothing else, using exactly these keys:
{
  "name": "full product name",
  "model": "%s",
  "manufacturer": "brand",
  "device_type": "one of: %s",
  "estimated_value": resale value of the broken device in USD between 0 and 1000,
  "co2_estimate": CO2 footprint in kg between 0 and 50,
  "stock_type": "electronic | it | battery | medical | telecom | industrial",
  "hazard_level": "none | low | medium | high",
  "priority": "low | medium | high",
  "recycling_notes": "step-by-step dismantling and disposal instructions",
  "description": "short factual description"
}`, itemName, serial, serial, strings.Join(DeviceTypes, ", "))
}
