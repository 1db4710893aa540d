package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/frahmantamala/ewaste-management/internal/batch"
	batchDatamodel "github.com/frahmantamala/ewaste-management/internal/core/datamodel/batch"
	"gorm.io/gorm"
)

// BatchRepository implements batch.Repository using GORM
type BatchRepository struct {
	db *gorm.DB
}

func NewBatchRepository(db *gorm.DB) *BatchRepository {
	return &BatchRepository{db: db}
}

func (r *BatchRepository) Create(ctx context.Context, b *batch.Batch) error {
	m := batch.ToDataModel(b)
	m.Version = 1

	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		if isUniqueViolation(err) {
			return batch.ErrDuplicateKey
		}
		return err
	}

	b.ID = m.ID
	b.Version = m.Version
	b.CreatedAt = m.CreatedAt
	b.UpdatedAt = m.UpdatedAt
	for i := range m.Items {
		b.Items[i].ID = m.Items[i].ID
	}
	return nil
}

func (r *BatchRepository) ExistsByKey(ctx context.Context, key string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&batchDatamodel.Batch{}).
		Where("batch_key = ?", key).
		Count(&count).Error
	return count > 0, err
}

func (r *BatchRepository) GetByID(ctx context.Context, id int64) (*batch.Batch, error) {
	var m batchDatamodel.Batch
	err := r.db.WithContext(ctx).
		Preload("Items", orderedItems).
		Where("id = ?", id).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, batch.ErrNotFound
		}
		return nil, err
	}
	return batch.FromDataModel(&m), nil
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *BatchRepository) List(ctx context.Context, filter batch.ListFilter) ([]*batch.Batch, int64, error) {
	query := r.db.WithContext(ctx).Model(&batchDatamodel.Batch{})

	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.CreatedBy != nil {
		query = query.Where("created_by = ?", *filter.CreatedBy)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(filter.Search)) + "%"
		query = query.Where(
			`LOWER(batch_key) LIKE ? ESCAPE '\' OR LOWER(name) LIKE ? ESCAPE '\' OR `+
				`LOWER(contact_person) LIKE ? ESCAPE '\' OR LOWER(pickup_location) LIKE ? ESCAPE '\'`,
			pattern, pattern, pattern, pattern,
		)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []*batchDatamodel.Batch
	err := query.
		Preload("Items", orderedItems).
		Order("created_at DESC").
		Order("id DESC").
		Limit(filter.Limit).
		Offset(filter.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, err
	}

	return batch.FromDataModelSlice(rows), total, nil
}

// Save writes the batch if nobody else has since it was loaded, and appends
// the items that have not been stored yet, all in one transaction.
func (r *BatchRepository) Save(ctx context.Context, b *batch.Batch) error {
	m := batch.ToDataModel(b)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&batchDatamodel.Batch{}).
			Where("id = ? AND version = ?", b.ID, b.Version).
			Updates(map[string]interface{}{
				"status":                m.Status,
				"name":                  m.Name,
				"contact_person":        m.ContactPerson,
				"pickup_location":       m.PickupLocation,
				"department":            m.Department,
				"notes":                 m.Notes,
				"assigned_to":           m.AssignedTo,
				"total_estimated_value": m.TotalEstimatedValue,
				"total_co2_impact":      m.TotalCO2Impact,
				"item_count":            m.ItemCount,
				"total_quantity":        m.TotalQuantity,
				"scheduled_pickup_date": m.ScheduledPickupDate,
				"actual_pickup_date":    m.ActualPickupDate,
				"processed_at":          m.ProcessedAt,
				"completed_at":          m.CompletedAt,
				"version":               b.Version + 1,
				"updated_at":            m.UpdatedAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&batchDatamodel.Batch{}).Where("id = ?", b.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return batch.ErrNotFound
			}
			return batch.ErrVersionConflict
		}

		for i := range m.Items {
			if m.Items[i].ID != 0 {
				continue
			}
			m.Items[i].BatchID = b.ID
			if err := tx.Create(&m.Items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	b.Version++
	for i := range m.Items {
		b.Items[i].ID = m.Items[i].ID
	}
	return nil
}

func (r *BatchRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("batch_id = ?", id).Delete(&batchDatamodel.Item{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&batchDatamodel.Batch{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return batch.ErrNotFound
		}
		return nil
	})
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "SQLSTATE 23505")
}
