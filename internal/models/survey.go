package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Survey struct {
	bun.BaseModel       `bun:"table:surveys"`
	ID                  int64     `bun:"sid,pk,autoincrement" json:"sid"`
	Language            string    `bun:"language,notnull" json:"language"`
	AdditionalLanguages string    `bun:"additional_languages" json:"additional_languages"`
	Active              bool      `bun:"active,notnull,default:false" json:"active"`
	CreatedAt           time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	Groups []*QuestionGroup `bun:"-" json:"groups,omitempty"`
}

// Languages returns the base language followed by the additional ones.
func (s *Survey) Languages() []string {
	languages := []string{s.Language}
	for _, l := range strings.Fields(s.AdditionalLanguages) {
		if l != s.Language {
			languages = append(languages, l)
		}
	}
	return languages
}

type QuestionGroup struct {
	bun.BaseModel `bun:"table:question_groups"`
	ID            int64  `bun:"gid,pk,autoincrement" json:"gid"`
	SurveyID      int64  `bun:"sid,notnull" json:"sid"`
	GroupOrder    int    `bun:"group_order,notnull,default:0" json:"group_order"`
	Relevance     string `bun:"grelevance" json:"grelevance"`
	Name          string `bun:"group_name" json:"group_name"`

	Questions []*Question `bun:"-" json:"questions,omitempty"`
}
