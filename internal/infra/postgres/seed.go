package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"clarity-score-service/internal/domain"
	"github.com/uptrace/bun"
)

type questionnaireRow struct {
	bun.BaseModel `bun:"table:questionnaires"`

	ID   string          `bun:"id,pk"`
	Data json.RawMessage `bun:"data,type:jsonb"`
}

// Seed upserts questionnaires so the loader can serve them.
func Seed(ctx context.Context, db *bun.DB, questionnaires ...domain.Questionnaire) error {
	for _, q := range questionnaires {
		if err := q.Validate(); err != nil {
			return fmt.Errorf("seed %q: %w", q.ID, err)
		}
		data, err := json.Marshal(q)
		if err != nil {
			return fmt.Errorf("marshal questionnaire: %w", err)
		}
		row := &questionnaireRow{ID: q.ID, Data: data}
		if _, err := db.NewInsert().
			Model(row).
			On("CONFLICT (id) DO UPDATE").
			Set("data = EXCLUDED.data").
			Exec(ctx); err != nil {
			return fmt.Errorf("seed %q: %w", q.ID, err)
		}
	}
	return nil
}
