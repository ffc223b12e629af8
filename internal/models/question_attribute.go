package models

import "github.com/uptrace/bun"

// QuestionAttribute holds one general or advanced setting of a question.
// Language is empty for settings that are not translated.
type QuestionAttribute struct {
	bun.BaseModel `bun:"table:question_attributes"`
	ID            int64  `bun:"qaid,pk,autoincrement" json:"qaid"`
	QuestionID    int64  `bun:"qid,notnull" json:"qid"`
	Attribute     string `bun:"attribute,notnull" json:"attribute"`
	Value         string `bun:"value" json:"value"`
	Language      string `bun:"language" json:"language,omitempty"`
}

func (a *QuestionAttribute) CloneFor(qid int64) *QuestionAttribute {
	return &QuestionAttribute{
		QuestionID: qid,
		Attribute:  a.Attribute,
		Value:      a.Value,
		Language:   a.Language,
	}
}
