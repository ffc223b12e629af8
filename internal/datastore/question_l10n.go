package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuestionL10n(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.QuestionL10n)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.QuestionL10n)(nil)).
		Index("index_question_l10ns_qid_language").
		Column("qid", "language").
		Unique().IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetQuestionL10ns(ctx context.Context, db bun.IDB, questionID int64) ([]*models.QuestionL10n, error) {
	var l10ns []*models.QuestionL10n
	err := db.NewSelect().Model(&l10ns).Where("qid = ?", questionID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return l10ns, nil
}

func InsertQuestionL10n(ctx context.Context, db bun.IDB, l10n *models.QuestionL10n) error {
	_, err := db.NewInsert().Model(l10n).Returning("*").Exec(ctx)
	return err
}
