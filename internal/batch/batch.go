package batch

import (
	"math"
	"time"

	"github.com/frahmantamala/ewaste-management/internal"
	"github.com/frahmantamala/ewaste-management/internal/core/catalog"
	batchDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/batch"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

var Statuses = []Status{StatusPending, StatusInProgress, StatusCompleted, StatusCancelled}

// Amounts are stored as NUMERIC(14,2) and quantities as INTEGER.
const (
	AmountPlaces     int32 = 2
	MaxItemQuantity        = 1_000_000
	maxTotalQuantity       = math.MaxInt32
)

var (
	MaxItemAmount  = decimal.New(1, 9)
	maxTotalAmount = decimal.RequireFromString("999999999999.99")
)

func ParseStatus(raw string) (Status, bool) {
	return catalog.Parse(Statuses, raw)
}

// AcceptsItems reports whether items may still be appended.
func (s Status) AcceptsItems() bool {
	return s == StatusPending || s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Batch struct {
	ID                  int64           `json:"id"`
	BatchKey            string          `json:"batch_id"`
	Name                string          `json:"name"`
	ContactPerson       string          `json:"contact_person"`
	PickupLocation      string          `json:"pickup_location"`
	Department          string          `json:"department,omitempty"`
	RequestDate         time.Time       `json:"request_date"`
	Notes               string          `json:"notes,omitempty"`
	Status              Status          `json:"status"`
	Items               []Item          `json:"items"`
	CreatedBy           int64           `json:"created_by"`
	AssignedTo          *int64          `json:"assigned_to,omitempty"`
	TotalEstimatedValue decimal.Decimal `json:"total_estimated_value"`
	TotalCO2Impact      decimal.Decimal `json:"total_co2_impact"`
	ItemCount           int             `json:"item_count"`
	TotalQuantity       int             `json:"total_quantity"`
	ScheduledPickupDate *time.Time      `json:"scheduled_pickup_date,omitempty"`
	ActualPickupDate    *time.Time      `json:"actual_pickup_date,omitempty"`
	ProcessedAt         *time.Time      `json:"processed_at,omitempty"`
	CompletedAt         *time.Time      `json:"completed_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`

	Version int64 `json:"-"`
}

// Item is a line entry. EstimatedValue and CO2Estimate are totals for the
// line and are never multiplied by Quantity.
type Item struct {
	ID                  int64               `json:"id"`
	Name                string              `json:"name"`
	ModelNumber         string              `json:"model,omitempty"`
	Quantity            int                 `json:"quantity"`
	Condition           catalog.Condition   `json:"condition"`
	StockType           catalog.StockType   `json:"stock_type"`
	EstimatedValue      decimal.Decimal     `json:"estimated_value"`
	CO2Estimate         decimal.Decimal     `json:"co2_estimate"`
	EnvironmentalImpact string              `json:"environmental_impact,omitempty"`
	HazardLevel         catalog.HazardLevel `json:"hazard_level"`
	Priority            catalog.Priority    `json:"priority"`
	RecyclingNotes      string              `json:"recycling_notes,omitempty"`
	Description         string              `json:"description,omitempty"`
	AddedBy             int64               `json:"added_by"`
	AddedAt             time.Time           `json:"added_at"`
}

// NewBatch always starts in pending, whatever the request carried.
func NewBatch(key string, createdBy int64, dto CreateBatchDTO, requestDate time.Time) *Batch {
	now := time.Now()
	b := &Batch{
		BatchKey:       key,
		Name:           dto.Name,
		ContactPerson:  dto.ContactPerson,
		PickupLocation: dto.PickupLocation,
		Department:     dto.Department,
		RequestDate:    requestDate,
		Notes:          dto.Notes,
		Status:         StatusPending,
		Items:          []Item{},
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	b.Recalculate()
	return b
}

// AddItems appends lines on behalf of actorID. Amounts are rounded to the
// stored scale first so totals always equal the sum of what is persisted.
// The first addition to a pending batch promotes it to in_progress; later
// additions leave the status alone.
func (b *Batch) AddItems(actorID int64, items []Item, at time.Time) error {
	if !b.Status.AcceptsItems() {
		return internal.ErrBatchClosed
	}

	b.Recalculate()
	value, co2, qty := b.TotalEstimatedValue, b.TotalCO2Impact, b.TotalQuantity
	added := make([]Item, len(items))
	for i, it := range items {
		it.ID = 0
		it.AddedBy = actorID
		it.AddedAt = at
		it.EstimatedValue = it.EstimatedValue.Round(AmountPlaces)
		it.CO2Estimate = it.CO2Estimate.Round(AmountPlaces)
		value = value.Add(it.EstimatedValue)
		co2 = co2.Add(it.CO2Estimate)
		qty += it.Quantity
		added[i] = it
	}
	if value.GreaterThan(maxTotalAmount) || co2.GreaterThan(maxTotalAmount) || qty > maxTotalQuantity {
		return internal.ErrBatchTooLarge
	}

	b.Items = append(b.Items, added...)
	if b.Status == StatusPending && len(items) > 0 {
		b.Status = StatusInProgress
	}
	b.UpdatedAt = at
	b.Recalculate()
	return nil
}

// UpdateStatus sets any of the four statuses. Moving to completed stamps
// CompletedAt; other moves never clear it.
func (b *Batch) UpdateStatus(status Status, at time.Time) {
	b.Status = status
	if status == StatusCompleted {
		completed := at
		b.CompletedAt = &completed
	}
	b.UpdatedAt = at
}

func (b *Batch) Schedule(dto ScheduleDTO, at time.Time) {
	if dto.scheduled != nil {
		b.ScheduledPickupDate = dto.scheduled
	}
	if dto.actual != nil {
		b.ActualPickupDate = dto.actual
	}
	if dto.AssignedTo != nil {
		b.AssignedTo = dto.AssignedTo
	}
	b.UpdatedAt = at
}

// Recalculate derives the totals from the current items. Values are summed
// per line as stored.
func (b *Batch) Recalculate() {
	value := decimal.Zero
	co2 := decimal.Zero
	qty := 0
	for _, it := range b.Items {
		value = value.Add(it.EstimatedValue)
		co2 = co2.Add(it.CO2Estimate)
		qty += it.Quantity
	}
	b.TotalEstimatedValue = value
	b.TotalCO2Impact = co2
	b.ItemCount = len(b.Items)
	b.TotalQuantity = qty
}

func (b *Batch) IsOwnedBy(userID int64) bool {
	return b.CreatedBy == userID
}

// ToDataModel recomputes totals before producing the row, so no save path can
// persist stale aggregates.
func ToDataModel(b *Batch) *batchDatamodel.Batch {
	b.Recalculate()

	items := make([]batchDatamodel.Item, len(b.Items))
	for i, it := range b.Items {
		items[i] = batchDatamodel.Item{
			ID:                  it.ID,
			BatchID:             b.ID,
			Position:            i,
			Name:                it.Name,
			ModelNumber:         it.ModelNumber,
			Quantity:            it.Quantity,
			Condition:           string(it.Condition),
			StockType:           string(it.StockType),
			EstimatedValue:      it.EstimatedValue,
			CO2Estimate:         it.CO2Estimate,
			EnvironmentalImpact: it.EnvironmentalImpact,
			HazardLevel:         string(it.HazardLevel),
			Priority:            string(it.Priority),
			RecyclingNotes:      it.RecyclingNotes,
			Description:         it.Description,
			AddedBy:             it.AddedBy,
			AddedAt:             it.AddedAt,
		}
	}

	return &batchDatamodel.Batch{
		ID:                  b.ID,
		BatchKey:            b.BatchKey,
		Name:                b.Name,
		ContactPerson:       b.ContactPerson,
		PickupLocation:      b.PickupLocation,
		Department:          b.Department,
		RequestDate:         b.RequestDate,
		Notes:               b.Notes,
		Status:              string(b.Status),
		CreatedBy:           b.CreatedBy,
		AssignedTo:          b.AssignedTo,
		TotalEstimatedValue: b.TotalEstimatedValue,
		TotalCO2Impact:      b.TotalCO2Impact,
		ItemCount:           b.ItemCount,
		TotalQuantity:       b.TotalQuantity,
		ScheduledPickupDate: b.ScheduledPickupDate,
		ActualPickupDate:    b.ActualPickupDate,
		ProcessedAt:         b.ProcessedAt,
		CompletedAt:         b.CompletedAt,
		Version:             b.Version,
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
		Items:               items,
	}
}

func FromDataModel(m *batchDatamodel.Batch) *Batch {
	items := make([]Item, len(m.Items))
	for i, it := range m.Items {
		items[i] = Item{
			ID:                  it.ID,
			Name:                it.Name,
			ModelNumber:         it.ModelNumber,
			Quantity:            it.Quantity,
			Condition:           catalog.Condition(it.Condition),
			StockType:           catalog.StockType(it.StockType),
			EstimatedValue:      it.EstimatedValue,
			CO2Estimate:         it.CO2Estimate,
			EnvironmentalImpact: it.EnvironmentalImpact,
			HazardLevel:         catalog.HazardLevel(it.HazardLevel),
			Priority:            catalog.Priority(it.Priority),
			RecyclingNotes:      it.RecyclingNotes,
			Description:         it.Description,
			AddedBy:             it.AddedBy,
			AddedAt:             it.AddedAt,
		}
	}

	return &Batch{
		ID:                  m.ID,
		BatchKey:            m.BatchKey,
		Name:                m.Name,
		ContactPerson:       m.ContactPerson,
		PickupLocation:      m.PickupLocation,
		Department:          m.Department,
		RequestDate:         m.RequestDate,
		Notes:               m.Notes,
		Status:              Status(m.Status),
		Items:               items,
		CreatedBy:           m.CreatedBy,
		AssignedTo:          m.AssignedTo,
		TotalEstimatedValue: m.TotalEstimatedValue,
		TotalCO2Impact:      m.TotalCO2Impact,
		ItemCount:           m.ItemCount,
		TotalQuantity:       m.TotalQuantity,
		ScheduledPickupDate: m.ScheduledPickupDate,
		ActualPickupDate:    m.ActualPickupDate,
		ProcessedAt:         m.ProcessedAt,
		CompletedAt:         m.CompletedAt,
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
		Version:             m.Version,
	}
}

func FromDataModelSlice(rows []*batchDatamodel.Batch) []*Batch {
	result := make([]*Batch, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
