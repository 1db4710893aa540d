package batch

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	"github.com/frahmantamala/ewaste-management/internal/core/common/validation"
	"github.com/shopspring/decimal"
)

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// CreateBatchDTO carries no status: new batches are always pending.
type CreateBatchDTO struct {
	Name           string `json:"name"`
	ContactPerson  string `json:"contact_person"`
	PickupLocation string `json:"pickup_location"`
	Department     string `json:"department,omitempty"`
	RequestDate    string `json:"request_date"`
	Notes          string `json:"notes,omitempty"`
}

// Validate checks the payload and returns the parsed request date.
func (dto CreateBatchDTO) Validate() (time.Time, error) {
	v := validation.NewValidator()
	v.Field("name", dto.Name).Required().MaxLength(200).Custom(func(value interface{}) *internal.AppError {
		if !strings.ContainsFunc(value.(string), unicode.IsLetter) {
			return internal.NewValidationFieldError("name", "name must contain at least one word", internal.ErrCodeInvalidName)
		}
		return nil
	})
	v.Field("contact_person", dto.ContactPerson).Required().MaxLength(200)
	v.Field("pickup_location", dto.PickupLocation).Required().MaxLength(500)
	v.Field("department", dto.Department).MaxLength(200)
	v.Field("notes", dto.Notes).MaxLength(2000)

	requestDate, ok := validation.ParseDate(dto.RequestDate)
	v.Field("request_date", dto.RequestDate).Required().Custom(func(interface{}) *internal.AppError {
		if !ok {
			return internal.NewValidationFieldError("request_date", "request_date must be a valid date (YYYY-MM-DD)", internal.ErrCodeInvalidDate)
		}
		return nil
	})

	if err := v.Validate(); err != nil {
		return time.Time{}, err
	}
	return requestDate, nil
}

type ItemDTO struct {
	Name                string          `json:"name"`
	ModelNumber         string          `json:"model,omitempty"`
	Quantity            int             `json:"quantity"`
	Condition           string          `json:"condition"`
	StockType           string          `json:"stock_type"`
	EstimatedValue      decimal.Decimal `json:"estimated_value"`
	CO2Estimate         decimal.Decimal `json:"co2_estimate"`
	EnvironmentalImpact string          `json:"environmental_impact,omitempty"`
	HazardLevel         string          `json:"hazard_level,omitempty"`
	Priority            string          `json:"priority"`
	RecyclingNotes      string          `json:"recycling_notes,omitempty"`
	Description         string          `json:"description,omitempty"`
}

func (dto ItemDTO) addRules(v *validation.ValidationBuilder, prefix string) {
	f := func(name string) string { return prefix + name }

	v.Field(f("name"), dto.Name).Required().MaxLength(200)
	v.Field(f("quantity"), dto.Quantity).
		MinInt(1, internal.ErrCodeInvalidQuantity).
		MaxInt(MaxItemQuantity, internal.ErrCodeInvalidQuantity)
	v.Field(f("condition"), dto.Condition).Required().
		OneOf(catalog.Names(catalog.Conditions), internal.ErrCodeInvalidCondition)
	v.Field(f("stock_type"), dto.StockType).Required().
		OneOf(catalog.Names(catalog.StockTypes), internal.ErrCodeInvalidStockType)
	v.Field(f("hazard_level"), dto.HazardLevel).
		OneOf(catalog.Names(catalog.HazardLevels), internal.ErrCodeInvalidHazardLevel)
	v.Field(f("priority"), dto.Priority).Required().
		OneOf(catalog.Names(catalog.Priorities), internal.ErrCodeInvalidPriority)
	amountRules(v.Field(f("estimated_value"), dto.EstimatedValue))
	amountRules(v.Field(f("co2_estimate"), dto.CO2Estimate))
}

func amountRules(fv *validation.FieldValidator) {
	fv.NonNegative(internal.ErrCodeNegativeAmount).
		MaxDecimal(MaxItemAmount, internal.ErrCodeAmountTooLarge).
		MaxPlaces(AmountPlaces, internal.ErrCodeAmountPrecision)
}

// ToItem assumes the DTO has been validated. A missing hazard level means none.
func (dto ItemDTO) ToItem() Item {
	hazard := catalog.HazardLevel(dto.HazardLevel)
	if hazard == "" {
		hazard = catalog.HazardNone
	}
	return Item{
		Name:                strings.TrimSpace(dto.Name),
		ModelNumber:         strings.TrimSpace(dto.ModelNumber),
		Quantity:            dto.Quantity,
		Condition:           catalog.Condition(dto.Condition),
		StockType:           catalog.StockType(dto.StockType),
		EstimatedValue:      dto.EstimatedValue,
		CO2Estimate:         dto.CO2Estimate,
		EnvironmentalImpact: dto.EnvironmentalImpact,
		HazardLevel:         hazard,
		Priority:            catalog.Priority(dto.Priority),
		RecyclingNotes:      dto.RecyclingNotes,
		Description:         dto.Description,
	}
}

type AddItemsDTO struct {
	Items []ItemDTO `json:"items"`
}

func (dto AddItemsDTO) Validate() error {
	if len(dto.Items) == 0 {
		return internal.NewValidationFieldError("items", "items must be a non-empty array", internal.ErrCodeNoItems)
	}
	v := validation.NewValidator()
	for i, item := range dto.Items {
		item.addRules(v, fmt.Sprintf("items[%d].", i))
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto AddItemsDTO) ToItems() []Item {
	items := make([]Item, len(dto.Items))
	for i, it := range dto.Items {
		items[i] = it.ToItem()
	}
	return items
}

type UpdateStatusDTO struct {
	Status string `json:"status"`
}

func (dto UpdateStatusDTO) Validate() (Status, error) {
	v := validation.NewValidator()
	v.Field("status", dto.Status).Required().OneOf(catalog.Names(Statuses), internal.ErrCodeInvalidStatus)
	if err := v.Validate(); err != nil {
		return "", err
	}
	return Status(dto.Status), nil
}

type ScheduleDTO struct {
	ScheduledPickupDate string `json:"scheduled_pickup_date,omitempty"`
	ActualPickupDate    string `json:"actual_pickup_date,omitempty"`
	AssignedTo          *int64 `json:"assigned_to,omitempty"`

	scheduled *time.Time
	actual    *time.Time
}

// Validate parses the optional dates in place. At least one field is required.
func (dto *ScheduleDTO) Validate() error {
	v := validation.NewValidator()
	dto.scheduled = parseOptionalDate(v, "scheduled_pickup_date", dto.ScheduledPickupDate)
	dto.actual = parseOptionalDate(v, "actual_pickup_date", dto.ActualPickupDate)
	if dto.AssignedTo != nil {
		v.Field("assigned_to", *dto.AssignedTo).MinInt(1, internal.ErrCodeValidationFailed)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	if dto.scheduled == nil && dto.actual == nil && dto.AssignedTo == nil {
		return internal.NewValidationFieldError("scheduled_pickup_date", "at least one scheduling field is required", internal.ErrCodeRequiredField)
	}
	return nil
}

func parseOptionalDate(v *validation.ValidationBuilder, field, raw string) *time.Time {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	t, ok := validation.ParseDate(raw)
	v.Field(field, raw).Custom(func(interface{}) *internal.AppError {
		if !ok {
			return internal.NewValidationFieldError(field, field+" must be a valid date", internal.ErrCodeInvalidDate)
		}
		return nil
	})
	if !ok {
		return nil
	}
	return &t
}

// ListFilter is built from query parameters.
type ListFilter struct {
	Status    Status
	Search    string
	Page      int
	Limit     int
	CreatedBy *int64
}

func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

type ListQueryDTO struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// Validate applies defaults and returns the normalised filter.
func (dto ListQueryDTO) Validate() (ListFilter, error) {
	v := validation.NewValidator()
	v.Field("status", dto.Status).OneOf(catalog.Names(Statuses), internal.ErrCodeInvalidStatus)
	v.Field("page", dto.Page).MinInt(0, internal.ErrCodeInvalidPage)
	v.Field("limit", dto.Limit).MinInt(0, internal.ErrCodeInvalidPage).MaxInt(MaxPageLimit, internal.ErrCodeInvalidPage)
	if err := v.Validate(); err != nil {
		return ListFilter{}, err
	}

	f := ListFilter{
		Status: Status(dto.Status),
		Search: strings.TrimSpace(dto.Search),
		Page:   dto.Page,
		Limit:  dto.Limit,
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageLimit
	}
	return f, nil
}

type Pagination struct {
	CurrentPage int   `json:"current_page"`
	TotalPages  int   `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	pages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		CurrentPage: page,
		TotalPages:  pages,
		TotalItems:  total,
		HasNext:     page < pages,
		HasPrev:     page > 1,
	}
}

type BatchPage struct {
	Data       []*Batch   `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Stats struct {
	ByStatus       map[Status]int64 `json:"by_status"`
	TotalBatches   int64            `json:"total_batches"`
	TotalItems     int64            `json:"total_items"`
	TotalQuantity  int64            `json:"total_quantity"`
	TotalValue     decimal.Decimal  `json:"total_estimated_value"`
	TotalCO2Impact decimal.Decimal  `json:"total_co2_impact"`
}
