package datastore

import (
	"context"

	"surveycopy/internal/models"

	"github.com/uptrace/bun"
)

func CreateTableSurvey(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.Survey)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}
	return nil
}

func CreateTableQuestionGroup(ctx context.Context, db *bun.DB) error {
	_, err := db.NewCreateTable().Model((*models.QuestionGroup)(nil)).IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	_, err = db.NewCreateIndex().
		Model((*models.QuestionGroup)(nil)).
		Index("index_question_groups_sid").
		Column("sid").IfNotExists().Exec(ctx)
	if err != nil {
		return err
	}

	return nil
}

func InsertSurvey(ctx context.Context, db bun.IDB, survey *models.Survey) error {
	_, err := db.NewInsert().Model(survey).Returning("*").Exec(ctx)
	return err
}

func GetSurvey(ctx context.Context, db bun.IDB, surveyID int64) (*models.Survey, error) {
	var survey models.Survey
	err := db.NewSelect().Model(&survey).Where("sid = ?", surveyID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func InsertQuestionGroup(ctx context.Context, db bun.IDB, group *models.QuestionGroup) error {
	_, err := db.NewInsert().Model(group).Returning("*").Exec(ctx)
	return err
}

func GetQuestionGroup(ctx context.Context, db bun.IDB, groupID int64) (*models.QuestionGroup, error) {
	var group models.QuestionGroup
	err := db.NewSelect().Model(&group).Where("gid = ?", groupID).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func GetSurveyGroups(ctx context.Context, db bun.IDB, surveyID int64) ([]*models.QuestionGroup, error) {
	var groups []*models.QuestionGroup
	err := db.NewSelect().Model(&groups).
		Where("sid = ?", surveyID).
		Order("group_order ASC", "gid ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// DeleteSurveyTree removes a survey together with its groups, questions and
// every record hanging under them. Children go first.
func DeleteSurveyTree(ctx context.Context, db bun.IDB, surveyID int64) error {
	questionIDs := db.NewSelect().Model((*models.Question)(nil)).Column("qid").Where("sid = ?", surveyID)
	answerIDs := db.NewSelect().Model((*models.Answer)(nil)).Column("aid").Where("qid IN (?)", questionIDs)
	defaultValueIDs := db.NewSelect().Model((*models.DefaultValue)(nil)).Column("dvid").Where("qid IN (?)", questionIDs)

	steps := []*bun.DeleteQuery{
		db.NewDelete().Model((*models.AnswerL10n)(nil)).Where("aid IN (?)", answerIDs),
		db.NewDelete().Model((*models.Answer)(nil)).Where("qid IN (?)", questionIDs),
		db.NewDelete().Model((*models.DefaultValueL10n)(nil)).Where("dvid IN (?)", defaultValueIDs),
		db.NewDelete().Model((*models.DefaultValue)(nil)).Where("qid IN (?)", questionIDs),
		db.NewDelete().Model((*models.QuestionAttribute)(nil)).Where("qid IN (?)", questionIDs),
		db.NewDelete().Model((*models.QuestionL10n)(nil)).Where("qid IN (?)", questionIDs),
		db.NewDelete().Model((*models.Question)(nil)).Where("sid = ?", surveyID),
		db.NewDelete().Model((*models.QuestionGroup)(nil)).Where("sid = ?", surveyID),
		db.NewDelete().Model((*models.Survey)(nil)).Where("sid = ?", surveyID),
	}

	for _, q := range steps {
		if _, err := q.Exec(ctx); err != nil {
			return err
		}
	}

	return nil
}
