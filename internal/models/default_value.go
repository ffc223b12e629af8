package models

import "github.com/uptrace/bun"

// DefaultValue is a default answer of a question. SubquestionID is set when the
// default belongs to one subquestion of the question.
type DefaultValue struct {
	bun.BaseModel `bun:"table:defaultvalues"`
	ID            int64  `bun:"dvid,pk,autoincrement" json:"dvid"`
	QuestionID    int64  `bun:"qid,notnull" json:"qid"`
	ScaleID       int    `bun:"scale_id,notnull,default:0" json:"scale_id"`
	SubquestionID int64  `bun:"sqid,notnull,default:0" json:"sqid"`
	SpecialType   string `bun:"specialtype" json:"specialtype"`

	L10ns []*DefaultValueL10n `bun:"-" json:"l10ns,omitempty"`
}

func (d *DefaultValue) CloneFor(qid int64) *DefaultValue {
	return &DefaultValue{
		QuestionID:    qid,
		ScaleID:       d.ScaleID,
		SubquestionID: d.SubquestionID,
		SpecialType:   d.SpecialType,
	}
}

type DefaultValueL10n struct {
	bun.BaseModel  `bun:"table:defaultvalue_l10ns"`
	ID             int64  `bun:"id,pk,autoincrement" json:"id"`
	DefaultValueID int64  `bun:"dvid,notnull" json:"dvid"`
	Language       string `bun:"language,notnull" json:"language"`
	DefaultValue   string `bun:"defaultvalue" json:"defaultvalue"`
}

func (l *DefaultValueL10n) CloneFor(dvid int64) *DefaultValueL10n {
	return &DefaultValueL10n{
		DefaultValueID: dvid,
		Language:       l.Language,
		DefaultValue:   l.DefaultValue,
	}
}
