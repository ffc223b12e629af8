package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableAnswer(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Answer)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.Answer)(nil)).
		Index("index_answers_qid_code_scale_id").
		Column("qid", "code", "scale_id").
		Unique().IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateTable().Model((*models.AnswerL10n)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.AnswerL10n)(nil)).
		Index("index_answer_l10ns_aid_language").
		Column("aid", "language").
		Unique().IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetAnswers(ctx context.Context, db bun.IDB, questionID int64) ([]*models.Answer, error) {
	var answers []*models.Answer
	err := db.NewSelect().Model(&answers).
		Where("qid = ?", questionID).
		Order("scale_id ASC", "sortorder ASC", "aid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

func GetAnswerL10ns(ctx context.Context, db bun.IDB, answerID int64) ([]*models.AnswerL10n, error) {
	var l10ns []*models.AnswerL10n
	err := db.NewSelect().Model(&l10ns).Where("aid = ?", answerID).Order("id ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return l10ns, nil
}

func InsertAnswer(ctx context.Context, db bun.IDB, answer *models.Answer) error {
	_, err := db.NewInsert().Model(answer).Returning("*").Exec(ctx)
	return err
}

func InsertAnswerL10n(ctx context.Context, db bun.IDB, l10n *models.AnswerL10n) error {
	_, err := db.NewInsert().Model(l10n).Returning("*").Exec(ctx)
	return err
}
