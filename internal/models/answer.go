package models

import "github.com/uptrace/bun"

// Answer is an answer option of a question.
type Answer struct {
	bun.BaseModel   `bun:"table:answers"`
	ID              int64  `bun:"aid,pk,autoincrement" json:"aid"`
	QuestionID      int64  `bun:"qid,notnull" json:"qid"`
	Code            string `bun:"code,notnull" json:"code"`
	SortOrder       int    `bun:"sortorder,notnull,default:0" json:"sortorder"`
	AssessmentValue int    `bun:"assessment_value,notnull,default:0" json:"assessment_value"`
	ScaleID         int    `bun:"scale_id,notnull,default:0" json:"scale_id"`

	L10ns []*AnswerL10n `bun:"-" json:"l10ns,omitempty"`
}

func (a *Answer) CloneFor(qid int64) *Answer {
	return &Answer{
		QuestionID:      qid,
		Code:            a.Code,
		SortOrder:       a.SortOrder,
		AssessmentValue: a.AssessmentValue,
		ScaleID:         a.ScaleID,
	}
}

type AnswerL10n struct {
	bun.BaseModel `bun:"table:answer_l10ns"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	AnswerID      int64  `bun:"aid,notnull" json:"aid"`
	Language      string `bun:"language,notnull" json:"language"`
	Answer        string `bun:"answer" json:"answer"`
}

func (l *AnswerL10n) CloneFor(aid int64) *AnswerL10n {
	return &AnswerL10n{
		AnswerID: aid,
		Language: l.Language,
		Answer:   l.Answer,
	}
}
