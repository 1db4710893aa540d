package batch

import (
	"time"

	"github.com/shopspring/decimal"
)

type Batch struct {
	ID                  int64           `gorm:"primaryKey"`
	BatchKey            string          `gorm:"column:batch_key;uniqueIndex;not null"`
	Name                string          `gorm:"column:name;not null"`
	ContactPerson       string          `gorm:"column:contact_person;not null"`
	PickupLocation      string          `gorm:"column:pickup_location;not null"`
	Department          string          `gorm:"column:department"`
	RequestDate         time.Time       `gorm:"column:request_date;not null"`
	Notes               string          `gorm:"column:notes"`
	Status              string          `gorm:"column:status;index;not null"`
	CreatedBy           int64           `gorm:"column:created_by;index;not null"`
	AssignedTo          *int64          `gorm:"column:assigned_to"`
	TotalEstimatedValue decimal.Decimal `gorm:"column:total_estimated_value;type:numeric(14,2);not null"`
	TotalCO2Impact      decimal.Decimal `gorm:"column:total_co2_impact;type:numeric(14,2);not null"`
	ItemCount           int             `gorm:"column:item_count;not null"`
	TotalQuantity       int             `gorm:"column:total_quantity;not null"`
	ScheduledPickupDate *time.Time      `gorm:"column:scheduled_pickup_date"`
	ActualPickupDate    *time.Time      `gorm:"column:actual_pickup_date"`
	ProcessedAt         *time.Time      `gorm:"column:processed_at"`
	CompletedAt         *time.Time      `gorm:"column:completed_at"`
	Version             int64           `gorm:"column:version;not null"`
	CreatedAt           time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt           time.Time       `gorm:"column:updated_at;autoUpdateTime"`
	Items               []Item          `gorm:"foreignKey:BatchID"`
}

func (Batch) TableName() string {
	return "batches"
}

type Item struct {
	ID                  int64           `gorm:"primaryKey"`
	BatchID             int64           `gorm:"column:batch_id;index;not null"`
	Position            int             `gorm:"column:position;not null"`
	Name                string          `gorm:"column:name;not null"`
	ModelNumber         string          `gorm:"column:model_number"`
	Quantity            int             `gorm:"column:quantity;not null"`
	Condition           string          `gorm:"column:condition;not null"`
	StockType           string          `gorm:"column:stock_type;not null"`
	EstimatedValue      decimal.Decimal `gorm:"column:estimated_value;type:numeric(14,2);not null"`
	CO2Estimate         decimal.Decimal `gorm:"column:co2_estimate;type:numeric(14,2);not null"`
	EnvironmentalImpact string          `gorm:"column:environmental_impact"`
	HazardLevel         string          `gorm:"column:hazard_level;not null"`
	Priority            string          `gorm:"column:priority;not null"`
	RecyclingNotes      string          `gorm:"column:recycling_notes"`
	Description         string          `gorm:"column:description"`
	AddedBy             int64           `gorm:"column:added_by;not null"`
	AddedAt             time.Time       `gorm:"column:added_at;not null"`
}

func (Item) TableName() string {
	return "batch_items"
}
