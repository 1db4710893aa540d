package postgres

import (
	"context"

	"github.com/frahmantamala/ewaste-management/internal/batch"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// StatsRepository answers the dashboard aggregate with a single grouped query.
type StatsRepository struct {
	db *sqlx.DB
}

func NewStatsRepository(db *sqlx.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

type statusRow struct {
	Status   string          `db:"status"`
	Batches  int64           `db:"batches"`
	Items    int64           `db:"items"`
	Quantity int64           `db:"quantity"`
	Value    decimal.Decimal `db:"value"`
	CO2      decimal.Decimal `db:"co2"`
}

const statsQuery = `
	SELECT status,
	       COUNT(*) AS batches,
	       COALESCE(SUM(item_count), 0) AS items,
	       COALESCE(SUM(total_quantity), 0) AS quantity,
	       COALESCE(SUM(total_estimated_value), 0) AS value,
	       COALESCE(SUM(total_co2_impact), 0) AS co2
	FROM batches`

func (r *StatsRepository) Stats(ctx context.Context, createdBy *int64) (*batch.Stats, error) {
	query := statsQuery
	var args []interface{}
	if createdBy != nil {
		query += ` WHERE created_by = ?`
		args = append(args, *createdBy)
	}
	query += ` GROUP BY status`

	var rows []statusRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	stats := &batch.Stats{
		ByStatus:       make(map[batch.Status]int64, len(batch.Statuses)),
		TotalValue:     decimal.Zero,
		TotalCO2Impact: decimal.Zero,
	}
	for _, s := range batch.Statuses {
		stats.ByStatus[s] = 0
	}
	for _, row := range rows {
		stats.ByStatus[batch.Status(row.Status)] = row.Batches
		stats.TotalBatches += row.Batches
		stats.TotalItems += row.Items
		stats.TotalQuantity += row.Quantity
		stats.TotalValue = stats.TotalValue.Add(row.Value)
		stats.TotalCO2Impact = stats.TotalCO2Impact.Add(row.CO2)
	}
	return stats, nil
}
