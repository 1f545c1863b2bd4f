package postgres

import (
	"context"

	"github.com/frahmantamala/evaluation-criteria/internal/category"
	"github.com/jmoiron/sqlx"
)

const weightSummaryQuery = `
	SELECT COUNT(*) AS active_count, COALESCE(SUM(weight), 0) AS active_total
	FROM categories
	WHERE is_active = ?`

// SummaryRepository reads aggregate weight figures straight from the pool.
type SummaryRepository struct {
	db *sqlx.DB
}

func NewSummaryRepository(db *sqlx.DB) category.SummaryReader {
	return &SummaryRepository{db: db}
}

func (r *SummaryRepository) WeightSummary(ctx context.Context) (*category.WeightSummary, error) {
	var summary category.WeightSummary
	if err := r.db.GetContext(ctx, &summary, r.db.Rebind(weightSummaryQuery), true); err != nil {
		return nil, err
	}
	return &summary, nil
}
