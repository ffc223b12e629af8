package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

type CopyStep string

const (
	StepRoot           CopyStep = "root"
	StepLanguages      CopyStep = "languages"
	StepSubquestions   CopyStep = "subquestions"
	StepAnswerOptions  CopyStep = "answer_options"
	StepDefaultAnswers CopyStep = "default_answers"
	StepSettings       CopyStep = "settings"
	StepCommit         CopyStep = "commit"
)

var (
	ErrRootCreation    = errors.New("copied question could not be saved")
	ErrMissingSource   = errors.New("missing question to copy")
	ErrInvalidCopyMode = errors.New("invalid copy mode")
)

// CopyError reports the step at which a copy stopped. Report holds what had
// been written up to that point, or nothing but the failure after a rollback.
type CopyError struct {
	Step   CopyStep
	Err    error
	Report *models.CopyReport
}

func (e *CopyError) Error() string {
	return fmt.Sprintf("copy question: %s: %v", e.Step, e.Err)
}

func (e *CopyError) Unwrap() error {
	return e.Err
}

func (e *CopyError) Is(target error) bool {
	return target == ErrRootCreation && e.Step == StepRoot
}

// CopyQuestionValues are the inputs of one copy: which question, under which
// code and into which group. A zero QuestionSurveyID keeps the survey of the
// source.
type CopyQuestionValues struct {
	QuestionToCopy   *models.Question
	QuestionCode     string
	QuestionGroupID  int64
	QuestionSurveyID int64
}

type CopyOptions struct {
	CopySubquestions   bool            `json:"copy_subquestions"`
	CopyAnswerOptions  bool            `json:"copy_answer_options"`
	CopyDefaultAnswers bool            `json:"copy_default_answers"`
	CopySettings       bool            `json:"copy_settings"`
	Mode               models.CopyMode `json:"mode,omitempty"`
}

// CopyAll returns options that copy every dependent collection.
func CopyAll(mode models.CopyMode) CopyOptions {
	return CopyOptions{
		CopySubquestions:   true,
		CopyAnswerOptions:  true,
		CopyDefaultAnswers: true,
		CopySettings:       true,
		Mode:               mode,
	}
}

// CopyQuestion duplicates a question and the parts of its subtree selected by
// CopyOptions. The source is only read.
type CopyQuestion struct {
	db     *bun.DB
	values CopyQuestionValues
	logger *zap.Logger

	newQuestion *models.Question
}

func NewCopyQuestion(db *bun.DB, values CopyQuestionValues, logger *zap.Logger) *CopyQuestion {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CopyQuestion{db: db, values: values, logger: logger}
}

// Copy runs the copy. In atomic mode any failed write rolls everything back
// and is returned. In best-effort mode only a failure to create the new
// question is returned; other failures end up in the report.
func (c *CopyQuestion) Copy(ctx context.Context, opts CopyOptions) (*models.CopyReport, error) {
	c.newQuestion = nil

	source := c.values.QuestionToCopy
	if source == nil || source.ID == 0 {
		return nil, ErrMissingSource
	}

	mode := opts.Mode
	if mode == "" {
		mode = models.CopyModeAtomic
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCopyMode, mode)
	}

	report := &models.CopyReport{
		ID:                uuid.NewString(),
		SourceQID:         source.ID,
		Mode:              mode,
		CreatedAt:         time.Now().UTC(),
		SettingsRequested: opts.CopySettings,
	}

	r := &copyRun{
		source:         source,
		code:           c.values.QuestionCode,
		groupID:        c.values.QuestionGroupID,
		surveyID:       c.values.QuestionSurveyID,
		opts:           opts,
		report:         report,
		logger:         c.logger.With(zap.String("copy_id", report.ID), zap.Int64("source_qid", source.ID)),
		subquestionIDs: map[int64]int64{},
	}

	var err error
	switch mode {
	case models.CopyModeAtomic:
		r.strict = true
		err = c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			r.db = tx
			return r.run(ctx)
		})
		if err != nil {
			var copyErr *CopyError
			if !errors.As(err, &copyErr) {
				copyErr = &CopyError{Step: StepCommit, Err: err}
			}
			report.RolledBack()
			report.Failures = append(report.Failures, copyErr.Error())
			copyErr.Report = report
			r.logger.Warn("question copy rolled back", zap.String("step", string(copyErr.Step)), zap.Error(copyErr.Err))
			return nil, copyErr
		}
	default:
		r.db = c.db
		if err = r.run(ctx); err != nil {
			var copyErr *CopyError
			if errors.As(err, &copyErr) {
				copyErr.Report = report
			}
			r.logger.Warn("question copy failed", zap.Error(err))
			return nil, err
		}
	}

	c.newQuestion = r.newQuestion
	r.logger.Info("question copied",
		zap.Int64("new_qid", report.NewQID),
		zap.String("mode", string(mode)),
		zap.Bool("complete", report.Complete()),
		zap.Int("failures", len(report.Failures)),
	)

	return report, nil
}

// NewCopiedQuestion returns the new question, or nil when no copy succeeded.
func (c *CopyQuestion) NewCopiedQuestion() *models.Question {
	return c.newQuestion
}

type copyRun struct {
	db     bun.IDB
	strict bool

	source   *models.Question
	code     string
	groupID  int64
	surveyID int64
	opts     CopyOptions

	report *models.CopyReport
	logger *zap.Logger

	newQuestion    *models.Question
	subquestionIDs map[int64]int64
}

func (r *copyRun) run(ctx context.Context) error {
	if err := r.copyRoot(ctx); err != nil {
		return err
	}

	type step struct {
		enabled bool
		fn      func(context.Context) error
	}

	steps := []step{
		{true, r.copyLanguages},
		{r.opts.CopySubquestions, r.copySubquestions},
		{r.opts.CopyAnswerOptions, r.copyAnswerOptions},
		{r.opts.CopyDefaultAnswers, r.copyDefaultAnswers},
		{r.opts.CopySettings, r.copySettings},
	}

	for _, s := range steps {
		if !s.enabled {
			continue
		}
		if err := s.fn(ctx); err != nil {
			return err
		}
	}

	return nil
}

// fail handles a failed read or write below the root. Strict runs stop here;
// best-effort runs note it and carry on.
func (r *copyRun) fail(step CopyStep, record string, err error) error {
	if r.strict {
		return &CopyError{Step: step, Err: fmt.Errorf("%s: %w", record, err)}
	}

	r.report.Failures = append(r.report.Failures, fmt.Sprintf("%s: %s: %v", step, record, err))
	r.logger.Warn("record not copied",
		zap.String("step", string(step)),
		zap.String("record", record),
		zap.Error(err),
	)
	return nil
}

func (r *copyRun) copyRoot(ctx context.Context) error {
	question := r.source.CloneForCopy()
	question.Title = r.code
	question.GroupID = r.groupID
	if r.surveyID != 0 {
		question.SurveyID = r.surveyID
	}

	if err := datastore.InsertQuestion(ctx, r.db, question); err != nil {
		return &CopyError{Step: StepRoot, Err: err}
	}

	r.newQuestion = question
	r.report.NewQID = question.ID
	return nil
}

func (r *copyRun) copyLanguages(ctx context.Context) error {
	l10ns, err := datastore.GetQuestionL10ns(ctx, r.db, r.source.ID)
	if err != nil {
		return r.fail(StepLanguages, fmt.Sprintf("question %d l10ns", r.source.ID), err)
	}

	allCopied := true
	for _, l10n := range l10ns {
		clone := l10n.CloneFor(r.newQuestion.ID)
		if err := datastore.InsertQuestionL10n(ctx, r.db, clone); err != nil {
			allCopied = false
			if err := r.fail(StepLanguages, fmt.Sprintf("l10n %d (%s)", l10n.ID, l10n.Language), err); err != nil {
				return err
			}
			continue
		}
		r.newQuestion.L10ns = append(r.newQuestion.L10ns, clone)
		r.report.Languages++
	}

	// no language at all means something is off with the source
	r.report.LanguagesCopied = allCopied && len(l10ns) > 0
	return nil
}

func (r *copyRun) copySubquestions(ctx context.Context) error {
	subquestions, err := datastore.GetSubquestions(ctx, r.db, r.source.ID)
	if err != nil {
		return r.fail(StepSubquestions, fmt.Sprintf("question %d subquestions", r.source.ID), err)
	}

	for _, subquestion := range subquestions {
		clone := subquestion.CloneForCopy()
		clone.ParentID = r.newQuestion.ID
		clone.GroupID = r.newQuestion.GroupID
		clone.SurveyID = r.newQuestion.SurveyID

		if err := datastore.InsertQuestion(ctx, r.db, clone); err != nil {
			if err := r.fail(StepSubquestions, fmt.Sprintf("subquestion %d (%s)", subquestion.ID, subquestion.Title), err); err != nil {
				return err
			}
			continue
		}
		r.subquestionIDs[subquestion.ID] = clone.ID
		r.report.Subquestions++

		l10ns, err := datastore.GetQuestionL10ns(ctx, r.db, subquestion.ID)
		if err != nil {
			if err := r.fail(StepSubquestions, fmt.Sprintf("subquestion %d l10ns", subquestion.ID), err); err != nil {
				return err
			}
			continue
		}

		for _, l10n := range l10ns {
			if err := datastore.InsertQuestionL10n(ctx, r.db, l10n.CloneFor(clone.ID)); err != nil {
				if err := r.fail(StepSubquestions, fmt.Sprintf("subquestion l10n %d (%s)", l10n.ID, l10n.Language), err); err != nil {
					return err
				}
				continue
			}
			r.report.SubquestionL10ns++
		}
	}

	return nil
}

func (r *copyRun) copyAnswerOptions(ctx context.Context) error {
	answers, err := datastore.GetAnswers(ctx, r.db, r.source.ID)
	if err != nil {
		return r.fail(StepAnswerOptions, fmt.Sprintf("question %d answers", r.source.ID), err)
	}

	for _, answer := range answers {
		clone := answer.CloneFor(r.newQuestion.ID)
		if err := datastore.InsertAnswer(ctx, r.db, clone); err != nil {
			if err := r.fail(StepAnswerOptions, fmt.Sprintf("answer %d (%s)", answer.ID, answer.Code), err); err != nil {
				return err
			}
			continue
		}
		r.report.AnswerOptions++

		l10ns, err := datastore.GetAnswerL10ns(ctx, r.db, answer.ID)
		if err != nil {
			if err := r.fail(StepAnswerOptions, fmt.Sprintf("answer %d l10ns", answer.ID), err); err != nil {
				return err
			}
			continue
		}

		for _, l10n := range l10ns {
			if err := datastore.InsertAnswerL10n(ctx, r.db, l10n.CloneFor(clone.ID)); err != nil {
				if err := r.fail(StepAnswerOptions, fmt.Sprintf("answer l10n %d (%s)", l10n.ID, l10n.Language), err); err != nil {
					return err
				}
				continue
			}
			r.report.AnswerOptionL10ns++
		}
	}

	return nil
}

func (r *copyRun) copyDefaultAnswers(ctx context.Context) error {
	values, err := datastore.GetDefaultValues(ctx, r.db, r.source.ID)
	if err != nil {
		return r.fail(StepDefaultAnswers, fmt.Sprintf("question %d default values", r.source.ID), err)
	}

	for _, value := range values {
		clone := value.CloneFor(r.newQuestion.ID)
		if newID, ok := r.subquestionIDs[value.SubquestionID]; ok {
			clone.SubquestionID = newID
		}

		if err := datastore.InsertDefaultValue(ctx, r.db, clone); err != nil {
			if err := r.fail(StepDefaultAnswers, fmt.Sprintf("default value %d", value.ID), err); err != nil {
				return err
			}
			continue
		}
		r.report.DefaultAnswers++

		// l10ns are keyed by the original default value
		l10ns, err := datastore.GetDefaultValueL10ns(ctx, r.db, value.ID)
		if err != nil {
			if err := r.fail(StepDefaultAnswers, fmt.Sprintf("default value %d l10ns", value.ID), err); err != nil {
				return err
			}
			continue
		}

		for _, l10n := range l10ns {
			if err := datastore.InsertDefaultValueL10n(ctx, r.db, l10n.CloneFor(clone.ID)); err != nil {
				if err := r.fail(StepDefaultAnswers, fmt.Sprintf("default value l10n %d (%s)", l10n.ID, l10n.Language), err); err != nil {
					return err
				}
				continue
			}
			r.report.DefaultAnswerL10ns++
		}
	}

	return nil
}

func (r *copyRun) copySettings(ctx context.Context) error {
	attributes, err := datastore.GetQuestionAttributes(ctx, r.db, r.source.ID)
	if err != nil {
		return r.fail(StepSettings, fmt.Sprintf("question %d attributes", r.source.ID), err)
	}

	allCopied := true
	for _, attribute := range attributes {
		if err := datastore.InsertQuestionAttribute(ctx, r.db, attribute.CloneFor(r.newQuestion.ID)); err != nil {
			allCopied = false
			if err := r.fail(StepSettings, fmt.Sprintf("attribute %d (%s)", attribute.ID, attribute.Attribute), err); err != nil {
				return err
			}
			continue
		}
		r.report.Settings++
	}

	r.report.SettingsCopied = allCopied && len(attributes) > 0
	return nil
}
