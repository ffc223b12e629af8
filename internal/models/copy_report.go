package models

import "time"

type CopyMode string

const (
	// CopyModeAtomic writes the whole clone in one transaction.
	CopyModeAtomic CopyMode = "atomic"
	// CopyModeBestEffort persists every record on its own and keeps going past
	// dependent failures.
	CopyModeBestEffort CopyMode = "best_effort"
)

func (m CopyMode) Valid() bool {
	switch m {
	case CopyModeAtomic, CopyModeBestEffort:
		return true
	default:
		return false
	}
}

// CopyReport summarises one question copy.
type CopyReport struct {
	ID        string    `json:"id" msgpack:"id"`
	SourceQID int64     `json:"source_qid" msgpack:"source_qid"`
	NewQID    int64     `json:"new_qid" msgpack:"new_qid"`
	Mode      CopyMode  `json:"mode" msgpack:"mode"`
	CreatedAt time.Time `json:"created_at" msgpack:"created_at"`

	Languages       int  `json:"languages" msgpack:"languages"`
	LanguagesCopied bool `json:"languages_copied" msgpack:"languages_copied"`

	Subquestions       int `json:"subquestions" msgpack:"subquestions"`
	SubquestionL10ns   int `json:"subquestion_l10ns" msgpack:"subquestion_l10ns"`
	AnswerOptions      int `json:"answer_options" msgpack:"answer_options"`
	AnswerOptionL10ns  int `json:"answer_option_l10ns" msgpack:"answer_option_l10ns"`
	DefaultAnswers     int `json:"default_answers" msgpack:"default_answers"`
	DefaultAnswerL10ns int `json:"default_answer_l10ns" msgpack:"default_answer_l10ns"`

	SettingsRequested bool `json:"settings_requested" msgpack:"settings_requested"`
	Settings          int  `json:"settings" msgpack:"settings"`
	SettingsCopied    bool `json:"settings_copied" msgpack:"settings_copied"`

	Failures []string `json:"failures,omitempty" msgpack:"failures"`
}

// Complete reports whether every requested part was copied without failures
// or anomalies.
func (r *CopyReport) Complete() bool {
	if r == nil || r.NewQID == 0 || len(r.Failures) > 0 || !r.LanguagesCopied {
		return false
	}
	if r.SettingsRequested && !r.SettingsCopied {
		return false
	}
	return true
}

// RolledBack drops everything the report counted as written, keeping the
// identity of the attempt and its failures.
func (r *CopyReport) RolledBack() {
	*r = CopyReport{
		ID:                r.ID,
		SourceQID:         r.SourceQID,
		Mode:              r.Mode,
		CreatedAt:         r.CreatedAt,
		SettingsRequested: r.SettingsRequested,
		Failures:          r.Failures,
	}
}
