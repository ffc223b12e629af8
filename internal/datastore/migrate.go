package datastore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates every table and index the service needs. It is safe to run
// more than once.
func Migrate(ctx context.Context, db *bun.DB) error {
	steps := []struct {
		name string
		fn   func(context.Context, *bun.DB) error
	}{
		{"surveys", CreateTableSurvey},
		{"question_groups", CreateTableQuestionGroup},
		{"questions", CreateTableQuestion},
		{"question_l10ns", CreateTableQuestionL10n},
		{"answers", CreateTableAnswer},
		{"defaultvalues", CreateTableDefaultValue},
		{"question_attributes", CreateTableQuestionAttribute},
		{"plugins", CreateTablePlugin},
		{"config", CreateTableConfig},
	}

	for _, step := range steps {
		if err := step.fn(ctx, db); err != nil {
			return fmt.Errorf("migrate %s: %w", step.name, err)
		}
	}

	return nil
}
