package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableQuestion(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Question)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.Question)(nil)).
		Index("index_questions_gid_parent_qid_title").
		Column("gid", "parent_qid", "title").
		Unique().IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.Question)(nil)).
		Index("index_questions_parent_qid").
		Column("parent_qid").IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func GetQuestion(ctx context.Context, db bun.IDB, questionID int64) (*models.Question, error) {
	var question models.Question
	err := db.NewSelect().Model(&question).Where("qid = ?", questionID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// GetSubquestions returns the questions whose parent is parentID.
func GetSubquestions(ctx context.Context, db bun.IDB, parentID int64) ([]*models.Question, error) {
	var questions []*models.Question
	err := db.NewSelect().Model(&questions).
		Where("parent_qid = ?", parentID).
		Order("question_order ASC", "qid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func GetGroupQuestions(ctx context.Context, db bun.IDB, groupID int64) ([]*models.Question, error) {
	var questions []*models.Question
	err := db.NewSelect().Model(&questions).
		Where("gid = ?", groupID).
		Where("parent_qid = 0").
		Order("question_order ASC", "qid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func GetSurveyQuestions(ctx context.Context, db bun.IDB, surveyID int64) ([]*models.Question, error) {
	var questions []*models.Question
	err := db.NewSelect().Model(&questions).
		Where("sid = ?", surveyID).
		Where("parent_qid = 0").
		Order("gid ASC", "question_order ASC", "qid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return questions, nil
}

func InsertQuestion(ctx context.Context, db bun.IDB, question *models.Question) error {
	_, err := db.NewInsert().Model(question).Returning("*").Exec(ctx)
	return err
}
