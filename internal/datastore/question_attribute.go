package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuestionAttribute(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.QuestionAttribute)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.QuestionAttribute)(nil)).
		Index("index_question_attributes_qid").
		Column("qid").IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetQuestionAttributes(ctx context.Context, db bun.IDB, questionID int64) ([]*models.QuestionAttribute, error) {
	var attributes []*models.QuestionAttribute
	err := db.NewSelect().Model(&attributes).Where("qid = ?", questionID).Order("qaid ASC").Scan(ctx)
	if err != nil {
		return nil, err
	}
	return attributes, nil
}

func InsertQuestionAttribute(ctx context.Context, db bun.IDB, attribute *models.QuestionAttribute) error {
	_, err := db.NewInsert().Model(attribute).Returning("*").Exec(ctx)
	return err
}
