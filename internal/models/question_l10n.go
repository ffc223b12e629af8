package models

import "github.com/uptrace/bun"

type QuestionL10n struct {
	bun.BaseModel `bun:"table:question_l10ns"`
	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	QuestionID    int64  `bun:"qid,notnull" json:"qid"`
	Language      string `bun:"language,notnull" json:"language"`
	Question      string `bun:"question" json:"question"`
	Help          string `bun:"help" json:"help"`
	Script        string `bun:"script" json:"script,omitempty"`
}

// CloneFor returns a copy of l pointing at question qid.
func (l *QuestionL10n) CloneFor(qid int64) *QuestionL10n {
	return &QuestionL10n{
		QuestionID: qid,
		Language:   l.Language,
		Question:   l.Question,
		Help:       l.Help,
		Script:     l.Script,
	}
}
