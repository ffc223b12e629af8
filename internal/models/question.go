package models

import (
	"github.com/uptrace/bun"
)

type QuestionType string

const (
	QuestionTypeList          QuestionType = "L"
	QuestionTypeMultipleShort QuestionType = "Q"
	QuestionTypeArray         QuestionType = "F"
	QuestionTypeMultiple      QuestionType = "M"
	QuestionTypeShortText     QuestionType = "S"
)

// db
type Question struct {
	bun.BaseModel     `bun:"table:questions"`
	ID                int64        `bun:"qid,pk,autoincrement" json:"qid"`
	ParentID          int64        `bun:"parent_qid,notnull,default:0" json:"parent_qid"`
	SurveyID          int64        `bun:"sid,notnull" json:"sid"`
	GroupID           int64        `bun:"gid,notnull" json:"gid"`
	Type              QuestionType `bun:"type,notnull" json:"type"`
	Title             string       `bun:"title,notnull" json:"title"`
	Preg              string       `bun:"preg" json:"preg"`
	Other             bool         `bun:"other,notnull,default:false" json:"other"`
	Mandatory         bool         `bun:"mandatory,notnull,default:false" json:"mandatory"`
	Encrypted         bool         `bun:"encrypted,notnull,default:false" json:"encrypted"`
	QuestionOrder     int          `bun:"question_order,notnull,default:0" json:"question_order"`
	ScaleID           int          `bun:"scale_id,notnull,default:0" json:"scale_id"`
	SameDefault       bool         `bun:"same_default,notnull,default:false" json:"same_default"`
	Relevance         string       `bun:"relevance" json:"relevance"`
	QuestionThemeName string       `bun:"question_theme_name" json:"question_theme_name"`
	ModuleName        string       `bun:"modulename" json:"modulename"`
	SameScript        bool         `bun:"same_script,notnull,default:false" json:"same_script"`

	L10ns []*QuestionL10n `bun:"-" json:"l10ns,omitempty"`
}

// IsSubquestion reports whether q hangs under another question.
func (q *Question) IsSubquestion() bool {
	return q.ParentID != 0
}

// CloneForCopy copies every schema field of q except the identity. The result
// has no identity until it is inserted.
func (q *Question) CloneForCopy() *Question {
	return &Question{
		ParentID:          q.ParentID,
		SurveyID:          q.SurveyID,
		GroupID:           q.GroupID,
		Type:              q.Type,
		Title:             q.Title,
		Preg:              q.Preg,
		Other:             q.Other,
		Mandatory:         q.Mandatory,
		Encrypted:         q.Encrypted,
		QuestionOrder:     q.QuestionOrder,
		ScaleID:           q.ScaleID,
		SameDefault:       q.SameDefault,
		Relevance:         q.Relevance,
		QuestionThemeName: q.QuestionThemeName,
		ModuleName:        q.ModuleName,
		SameScript:        q.SameScript,
	}
}
