// Package fixture imports surveys described in YAML and removes them again.
package fixture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"

	"github.com/uptrace/bun"
	"gopkg.in/yaml.v3"
)

type SurveyDocument struct {
	Language            string          `yaml:"language"`
	AdditionalLanguages []string        `yaml:"additional_languages"`
	Active              bool            `yaml:"active"`
	Groups              []GroupDocument `yaml:"groups"`
}

type GroupDocument struct {
	Name      string             `yaml:"name"`
	Order     int                `yaml:"order"`
	Relevance string             `yaml:"relevance"`
	Questions []QuestionDocument `yaml:"questions"`
}

type QuestionDocument struct {
	Code          string                 `yaml:"code"`
	Type          models.QuestionType    `yaml:"type"`
	Order         int                    `yaml:"order"`
	Mandatory     bool                   `yaml:"mandatory"`
	Other         bool                   `yaml:"other"`
	Encrypted     bool                   `yaml:"encrypted"`
	ScaleID       int                    `yaml:"scale_id"`
	SameDefault   bool                   `yaml:"same_default"`
	SameScript    bool                   `yaml:"same_script"`
	Preg          string                 `yaml:"preg"`
	Relevance     string                 `yaml:"relevance"`
	Theme         string                 `yaml:"theme"`
	Module        string                 `yaml:"module"`
	L10ns         []QuestionL10nDoc      `yaml:"l10ns"`
	Subquestions  []QuestionDocument     `yaml:"subquestions"`
	Answers       []AnswerDocument       `yaml:"answers"`
	DefaultValues []DefaultValueDocument `yaml:"default_values"`
	Attributes    []AttributeDocument    `yaml:"attributes"`
}

type QuestionL10nDoc struct {
	Language string `yaml:"language"`
	Question string `yaml:"question"`
	Help     string `yaml:"help"`
	Script   string `yaml:"script"`
}

type AnswerDocument struct {
	Code            string          `yaml:"code"`
	SortOrder       int             `yaml:"sort_order"`
	AssessmentValue int             `yaml:"assessment_value"`
	ScaleID         int             `yaml:"scale_id"`
	L10ns           []AnswerL10nDoc `yaml:"l10ns"`
}

type AnswerL10nDoc struct {
	Language string `yaml:"language"`
	Answer   string `yaml:"answer"`
}

// DefaultValueDocument refers to a subquestion of the same question by code.
type DefaultValueDocument struct {
	Subquestion string                `yaml:"sq"`
	ScaleID     int                   `yaml:"scale_id"`
	SpecialType string                `yaml:"special_type"`
	L10ns       []DefaultValueL10nDoc `yaml:"l10ns"`
}

type DefaultValueL10nDoc struct {
	Language string `yaml:"language"`
	Value    string `yaml:"value"`
}

type AttributeDocument struct {
	Attribute string `yaml:"attribute"`
	Value     string `yaml:"value"`
	Language  string `yaml:"language"`
}

func Decode(r io.Reader) (*SurveyDocument, error) {
	var doc SurveyDocument
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode survey: %w", err)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

func (doc *SurveyDocument) validate() error {
	if doc.Language == "" {
		return errors.New("survey has no language")
	}
	for i, group := range doc.Groups {
		for j, question := range group.Questions {
			if err := question.validate(); err != nil {
				return fmt.Errorf("group %d question %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func (q *QuestionDocument) validate() error {
	if q.Code == "" {
		return errors.New("question has no code")
	}
	codes := map[string]bool{}
	for _, sq := range q.Subquestions {
		if sq.Code == "" {
			return fmt.Errorf("%s: subquestion has no code", q.Code)
		}
		codes[sq.Code] = true
	}
	for _, dv := range q.DefaultValues {
		if dv.Subquestion != "" && !codes[dv.Subquestion] {
			return fmt.Errorf("%s: default value refers to unknown subquestion %q", q.Code, dv.Subquestion)
		}
	}
	return nil
}

// ImportSurvey inserts the survey read from r with all of its groups and
// questions in one transaction. Identities are assigned by the store.
func ImportSurvey(ctx context.Context, db *bun.DB, r io.Reader) (*models.Survey, error) {
	doc, err := Decode(r)
	if err != nil {
		return nil, err
	}

	survey := &models.Survey{
		Language:            doc.Language,
		AdditionalLanguages: strings.Join(doc.AdditionalLanguages, " "),
		Active:              doc.Active,
	}

	err = db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := datastore.InsertSurvey(ctx, tx, survey); err != nil {
			return fmt.Errorf("insert survey: %w", err)
		}

		for _, g := range doc.Groups {
			group := &models.QuestionGroup{
				SurveyID:   survey.ID,
				GroupOrder: g.Order,
				Relevance:  g.Relevance,
				Name:       g.Name,
			}
			if err := datastore.InsertQuestionGroup(ctx, tx, group); err != nil {
				return fmt.Errorf("insert group %s: %w", g.Name, err)
			}

			for _, q := range g.Questions {
				question, err := importQuestion(ctx, tx, group, 0, q)
				if err != nil {
					return err
				}
				group.Questions = append(group.Questions, question)
			}
			survey.Groups = append(survey.Groups, group)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return survey, nil
}

func importQuestion(ctx context.Context, db bun.IDB, group *models.QuestionGroup, parentID int64, q QuestionDocument) (*models.Question, error) {
	question := &models.Question{
		ParentID:          parentID,
		SurveyID:          group.SurveyID,
		GroupID:           group.ID,
		Type:              q.Type,
		Title:             q.Code,
		Preg:              q.Preg,
		Other:             q.Other,
		Mandatory:         q.Mandatory,
		Encrypted:         q.Encrypted,
		QuestionOrder:     q.Order,
		ScaleID:           q.ScaleID,
		SameDefault:       q.SameDefault,
		Relevance:         q.Relevance,
		QuestionThemeName: q.Theme,
		ModuleName:        q.Module,
		SameScript:        q.SameScript,
	}
	if question.Type == "" {
		question.Type = models.QuestionTypeShortText
	}
	if err := datastore.InsertQuestion(ctx, db, question); err != nil {
		return nil, fmt.Errorf("insert question %s: %w", q.Code, err)
	}

	for _, l := range q.L10ns {
		l10n := &models.QuestionL10n{
			QuestionID: question.ID,
			Language:   l.Language,
			Question:   l.Question,
			Help:       l.Help,
			Script:     l.Script,
		}
		if err := datastore.InsertQuestionL10n(ctx, db, l10n); err != nil {
			return nil, fmt.Errorf("insert question %s l10n %s: %w", q.Code, l.Language, err)
		}
		question.L10ns = append(question.L10ns, l10n)
	}

	subquestionIDs := map[string]int64{}
	for _, sq := range q.Subquestions {
		subquestion, err := importQuestion(ctx, db, group, question.ID, sq)
		if err != nil {
			return nil, err
		}
		subquestionIDs[sq.Code] = subquestion.ID
	}

	for _, a := range q.Answers {
		answer := &models.Answer{
			QuestionID:      question.ID,
			Code:            a.Code,
			SortOrder:       a.SortOrder,
			AssessmentValue: a.AssessmentValue,
			ScaleID:         a.ScaleID,
		}
		if err := datastore.InsertAnswer(ctx, db, answer); err != nil {
			return nil, fmt.Errorf("insert question %s answer %s: %w", q.Code, a.Code, err)
		}
		for _, l := range a.L10ns {
			l10n := &models.AnswerL10n{AnswerID: answer.ID, Language: l.Language, Answer: l.Answer}
			if err := datastore.InsertAnswerL10n(ctx, db, l10n); err != nil {
				return nil, fmt.Errorf("insert question %s answer %s l10n %s: %w", q.Code, a.Code, l.Language, err)
			}
		}
	}

	for _, d := range q.DefaultValues {
		value := &models.DefaultValue{
			QuestionID:    question.ID,
			ScaleID:       d.ScaleID,
			SubquestionID: subquestionIDs[d.Subquestion],
			SpecialType:   d.SpecialType,
		}
		if err := datastore.InsertDefaultValue(ctx, db, value); err != nil {
			return nil, fmt.Errorf("insert question %s default value: %w", q.Code, err)
		}
		for _, l := range d.L10ns {
			l10n := &models.DefaultValueL10n{DefaultValueID: value.ID, Language: l.Language, DefaultValue: l.Value}
			if err := datastore.InsertDefaultValueL10n(ctx, db, l10n); err != nil {
				return nil, fmt.Errorf("insert question %s default value l10n %s: %w", q.Code, l.Language, err)
			}
		}
	}

	for _, a := range q.Attributes {
		attribute := &models.QuestionAttribute{
			QuestionID: question.ID,
			Attribute:  a.Attribute,
			Value:      a.Value,
			Language:   a.Language,
		}
		if err := datastore.InsertQuestionAttribute(ctx, db, attribute); err != nil {
			return nil, fmt.Errorf("insert question %s attribute %s: %w", q.Code, a.Attribute, err)
		}
	}

	return question, nil
}

// DeleteSurvey removes the survey and everything under it.
func DeleteSurvey(ctx context.Context, db *bun.DB, surveyID int64) error {
	return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := datastore.GetSurvey(ctx, tx, surveyID); err != nil {
			return fmt.Errorf("survey %d: %w", surveyID, err)
		}
		return datastore.DeleteSurveyTree(ctx, tx, surveyID)
	})
}
