package services

import (
	"context"
	"errors"
	"testing"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"
	"surveycopy/internal/testutil"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCopyQuestionFullScenario(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]
	require.NotNil(t, q1)

	copier := NewCopyQuestion(db, CopyQuestionValues{
		QuestionToCopy:  q1,
		QuestionCode:    "Q1_copy",
		QuestionGroupID: q1.GroupID,
	}, zap.NewNop())
	assert.Nil(t, copier.NewCopiedQuestion())

	report, err := copier.Copy(ctx, CopyAll(""))
	require.NoError(t, err)

	copied := copier.NewCopiedQuestion()
	require.NotNil(t, copied)
	assert.NotEqual(t, q1.ID, copied.ID)
	assert.Equal(t, "Q1_copy", copied.Title)
	assert.Equal(t, q1.GroupID, copied.GroupID)

	stored, err := datastore.GetQuestion(ctx, db, copied.ID)
	require.NoError(t, err)
	diff := cmp.Diff(q1, stored, cmpopts.IgnoreFields(models.Question{}, "ID", "Title", "L10ns"))
	assert.Empty(t, diff)

	l10ns, err := datastore.GetQuestionL10ns(ctx, db, copied.ID)
	require.NoError(t, err)
	require.Len(t, l10ns, 1)
	assert.Equal(t, "en", l10ns[0].Language)
	assert.Equal(t, "Which colour do you like best?", l10ns[0].Question)

	answers, err := datastore.GetAnswers(ctx, db, copied.ID)
	require.NoError(t, err)
	require.Len(t, answers, 3)
	for _, answer := range answers {
		answerL10ns, err := datastore.GetAnswerL10ns(ctx, db, answer.ID)
		require.NoError(t, err)
		assert.Len(t, answerL10ns, 2)
		for _, l10n := range answerL10ns {
			assert.Equal(t, answer.ID, l10n.AnswerID)
		}
	}

	assert.Equal(t, 0, testutil.Count(t, db, (*models.DefaultValue)(nil), "qid = ?", copied.ID))
	assert.Equal(t, 2, testutil.Count(t, db, (*models.QuestionAttribute)(nil), "qid = ?", copied.ID))

	assert.Equal(t, models.CopyModeAtomic, report.Mode)
	assert.Equal(t, q1.ID, report.SourceQID)
	assert.Equal(t, copied.ID, report.NewQID)
	assert.Equal(t, 1, report.Languages)
	assert.True(t, report.LanguagesCopied)
	assert.Equal(t, 3, report.AnswerOptions)
	assert.Equal(t, 6, report.AnswerOptionL10ns)
	assert.Equal(t, 0, report.DefaultAnswers)
	assert.Equal(t, 2, report.Settings)
	assert.True(t, report.SettingsCopied)
	assert.Empty(t, report.Failures)
	assert.True(t, report.Complete())
	assert.NotEmpty(t, report.ID)
}

func TestCopyQuestionLeavesSourceUntouched(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q2 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q2"]

	before, err := datastore.GetAnswers(ctx, db, q2.ID)
	require.NoError(t, err)
	beforeDefaults, err := datastore.GetDefaultValues(ctx, db, q2.ID)
	require.NoError(t, err)

	_, err = NewCopyQuestion(db, CopyQuestionValues{q2, "Q2_copy", q2.GroupID, 0}, nil).Copy(ctx, CopyAll(""))
	require.NoError(t, err)

	after, err := datastore.GetAnswers(ctx, db, q2.ID)
	require.NoError(t, err)
	afterDefaults, err := datastore.GetDefaultValues(ctx, db, q2.ID)
	require.NoError(t, err)

	assert.Empty(t, cmp.Diff(before, after))
	assert.Empty(t, cmp.Diff(beforeDefaults, afterDefaults))

	reloaded, err := datastore.GetQuestion(ctx, db, q2.ID)
	require.NoError(t, err)
	assert.Equal(t, "Q2", reloaded.Title)
}

func TestCopyQuestionWithoutFlags(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q2 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q2"]

	copier := NewCopyQuestion(db, CopyQuestionValues{q2, "Q2_bare", q2.GroupID, 0}, nil)
	report, err := copier.Copy(ctx, CopyOptions{})
	require.NoError(t, err)

	copied := copier.NewCopiedQuestion()
	subquestions, err := datastore.GetSubquestions(ctx, db, copied.ID)
	require.NoError(t, err)
	assert.Empty(t, subquestions)
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Answer)(nil), "qid = ?", copied.ID))
	assert.Equal(t, 0, testutil.Count(t, db, (*models.DefaultValue)(nil), "qid = ?", copied.ID))
	assert.Equal(t, 0, testutil.Count(t, db, (*models.QuestionAttribute)(nil), "qid = ?", copied.ID))

	// languages are always copied
	assert.Equal(t, 2, report.Languages)
	assert.Len(t, copied.L10ns, 2)
	assert.False(t, report.SettingsRequested)
	assert.True(t, report.Complete())
}

func TestCopyQuestionSubquestionsAndDefaults(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q2 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q2"]
	target := survey.Groups[1]
	require.NotEqual(t, q2.GroupID, target.ID)

	copier := NewCopyQuestion(db, CopyQuestionValues{q2, "Q2", target.ID, 0}, nil)
	report, err := copier.Copy(ctx, CopyAll(models.CopyModeAtomic))
	require.NoError(t, err)
	copied := copier.NewCopiedQuestion()
	assert.Equal(t, target.ID, copied.GroupID)

	subquestions, err := datastore.GetSubquestions(ctx, db, copied.ID)
	require.NoError(t, err)
	require.Len(t, subquestions, 2)

	byID := map[int64]*models.Question{}
	for _, sq := range subquestions {
		assert.Equal(t, target.ID, sq.GroupID)
		assert.Equal(t, copied.ID, sq.ParentID)
		byID[sq.ID] = sq

		l10ns, err := datastore.GetQuestionL10ns(ctx, db, sq.ID)
		require.NoError(t, err)
		assert.Len(t, l10ns, 2)
	}
	assert.Equal(t, 2, report.Subquestions)
	assert.Equal(t, 4, report.SubquestionL10ns)

	defaults, err := datastore.GetDefaultValues(ctx, db, copied.ID)
	require.NoError(t, err)
	require.Len(t, defaults, 2)

	codes := []string{}
	for _, dv := range defaults {
		sq, ok := byID[dv.SubquestionID]
		require.True(t, ok, "default value %d points at a subquestion outside the copy", dv.ID)
		codes = append(codes, sq.Title)
	}
	assert.ElementsMatch(t, []string{"SQ001", "SQ002"}, codes)
	assert.Equal(t, 2, report.DefaultAnswers)
	assert.Equal(t, 3, report.DefaultAnswerL10ns)

	for _, dv := range defaults {
		l10ns, err := datastore.GetDefaultValueL10ns(ctx, db, dv.ID)
		require.NoError(t, err)
		for _, l10n := range l10ns {
			assert.Equal(t, dv.ID, l10n.DefaultValueID)
		}
	}
}

func TestCopyQuestionDefaultsWithoutSubquestionsKeepReference(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q2 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q2"]

	source, err := datastore.GetDefaultValues(ctx, db, q2.ID)
	require.NoError(t, err)

	copier := NewCopyQuestion(db, CopyQuestionValues{q2, "Q2_defaults", q2.GroupID, 0}, nil)
	_, err = copier.Copy(ctx, CopyOptions{CopyDefaultAnswers: true})
	require.NoError(t, err)

	copied, err := datastore.GetDefaultValues(ctx, db, copier.NewCopiedQuestion().ID)
	require.NoError(t, err)
	require.Len(t, copied, len(source))
	for i := range source {
		assert.Equal(t, source[i].SubquestionID, copied[i].SubquestionID)
	}
}

func TestCopyQuestionRootFailure(t *testing.T) {
	for _, mode := range []models.CopyMode{models.CopyModeAtomic, models.CopyModeBestEffort} {
		t.Run(string(mode), func(t *testing.T) {
			ctx := context.Background()
			db := testutil.NewDB(t)
			survey := testutil.ImportSurvey(t, db, "copy_source")
			q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]

			questions := testutil.Count(t, db, (*models.Question)(nil), "")
			l10ns := testutil.Count(t, db, (*models.QuestionL10n)(nil), "")
			answers := testutil.Count(t, db, (*models.Answer)(nil), "")

			// Q2 already lives in the group
			copier := NewCopyQuestion(db, CopyQuestionValues{q1, "Q2", q1.GroupID, 0}, nil)
			report, err := copier.Copy(ctx, CopyAll(mode))
			require.Error(t, err)
			assert.Nil(t, report)
			assert.True(t, errors.Is(err, ErrRootCreation))

			var copyErr *CopyError
			require.True(t, errors.As(err, &copyErr))
			assert.Equal(t, StepRoot, copyErr.Step)
			require.NotNil(t, copyErr.Report)
			assert.Zero(t, copyErr.Report.NewQID)

			assert.Nil(t, copier.NewCopiedQuestion())
			assert.Equal(t, questions, testutil.Count(t, db, (*models.Question)(nil), ""))
			assert.Equal(t, l10ns, testutil.Count(t, db, (*models.QuestionL10n)(nil), ""))
			assert.Equal(t, answers, testutil.Count(t, db, (*models.Answer)(nil), ""))
		})
	}
}

func TestCopyQuestionAtomicRollback(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]

	questions := testutil.Count(t, db, (*models.Question)(nil), "")
	answers := testutil.Count(t, db, (*models.Answer)(nil), "")
	testutil.FailInserts(t, db, "answer_l10ns", "answer l10n rejected")

	copier := NewCopyQuestion(db, CopyQuestionValues{q1, "Q1_copy", q1.GroupID, 0}, nil)
	report, err := copier.Copy(ctx, CopyAll(models.CopyModeAtomic))
	require.Error(t, err)
	assert.Nil(t, report)
	assert.False(t, errors.Is(err, ErrRootCreation))

	var copyErr *CopyError
	require.True(t, errors.As(err, &copyErr))
	assert.Equal(t, StepAnswerOptions, copyErr.Step)
	assert.Contains(t, copyErr.Error(), "answer l10n rejected")
	require.NotNil(t, copyErr.Report)
	assert.Zero(t, copyErr.Report.NewQID)
	assert.False(t, copyErr.Report.Complete())

	assert.Nil(t, copier.NewCopiedQuestion())
	assert.Equal(t, questions, testutil.Count(t, db, (*models.Question)(nil), ""))
	assert.Equal(t, answers, testutil.Count(t, db, (*models.Answer)(nil), ""))
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Question)(nil), "title = ?", "Q1_copy"))
}

func TestCopyQuestionAtomicRollbackClearsCounts(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]

	testutil.FailInserts(t, db, "question_attributes", "setting rejected")

	copier := NewCopyQuestion(db, CopyQuestionValues{q1, "Q1_copy", q1.GroupID, 0}, nil)
	_, err := copier.Copy(ctx, CopyAll(models.CopyModeAtomic))
	require.Error(t, err)

	var copyErr *CopyError
	require.True(t, errors.As(err, &copyErr))
	assert.Equal(t, StepSettings, copyErr.Step)
	require.NotNil(t, copyErr.Report)

	got := copyErr.Report
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, q1.ID, got.SourceQID)
	assert.Equal(t, models.CopyModeAtomic, got.Mode)
	assert.False(t, got.CreatedAt.IsZero())
	assert.True(t, got.SettingsRequested)
	require.Len(t, got.Failures, 1)
	assert.Contains(t, got.Failures[0], "setting rejected")

	want := models.CopyReport{
		ID:                got.ID,
		SourceQID:         got.SourceQID,
		Mode:              got.Mode,
		CreatedAt:         got.CreatedAt,
		SettingsRequested: true,
		Failures:          got.Failures,
	}
	assert.Empty(t, cmp.Diff(want, *got))
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Question)(nil), "title = ?", "Q1_copy"))
}

func TestCopyQuestionBestEffortKeepsGoing(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]
	testutil.FailInserts(t, db, "answer_l10ns", "answer l10n rejected")

	copier := NewCopyQuestion(db, CopyQuestionValues{q1, "Q1_copy", q1.GroupID, 0}, nil)
	report, err := copier.Copy(ctx, CopyAll(models.CopyModeBestEffort))
	require.NoError(t, err)

	copied := copier.NewCopiedQuestion()
	require.NotNil(t, copied)
	assert.Equal(t, 3, report.AnswerOptions)
	assert.Equal(t, 0, report.AnswerOptionL10ns)
	assert.Len(t, report.Failures, 6)
	assert.Equal(t, 2, report.Settings)
	assert.True(t, report.SettingsCopied)
	assert.False(t, report.Complete())

	assert.Equal(t, 3, testutil.Count(t, db, (*models.Answer)(nil), "qid = ?", copied.ID))
}

func TestCopyQuestionBestEffortSkipsChildrenOfFailedParent(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]
	testutil.FailInserts(t, db, "answers", "answer rejected")

	copier := NewCopyQuestion(db, CopyQuestionValues{q1, "Q1_copy", q1.GroupID, 0}, nil)
	report, err := copier.Copy(ctx, CopyAll(models.CopyModeBestEffort))
	require.NoError(t, err)

	assert.Equal(t, 0, report.AnswerOptions)
	assert.Equal(t, 0, report.AnswerOptionL10ns)
	assert.Len(t, report.Failures, 3)
	for _, failure := range report.Failures {
		assert.Contains(t, failure, string(StepAnswerOptions))
	}
}

func TestCopyQuestionWithoutLanguages(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	group := survey.Groups[1]

	bare := &models.Question{SurveyID: survey.ID, GroupID: group.ID, Type: models.QuestionTypeShortText, Title: "Bare"}
	require.NoError(t, datastore.InsertQuestion(ctx, db, bare))

	report, err := NewCopyQuestion(db, CopyQuestionValues{bare, "Bare_copy", group.ID, 0}, nil).Copy(ctx, CopyAll(""))
	require.NoError(t, err)
	assert.NotZero(t, report.NewQID)
	assert.Equal(t, 0, report.Languages)
	assert.False(t, report.LanguagesCopied)
	assert.False(t, report.SettingsCopied)
	assert.False(t, report.Complete())
}

func TestCopyQuestionIntoAnotherSurvey(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)
	source := testutil.ImportSurvey(t, db, "copy_source")
	target := testutil.ImportSurvey(t, db, "second_survey")
	q2 := testutil.AllSurveyQuestions(t, db, source.ID)["Q2"]
	group := target.Groups[0]

	copier := NewCopyQuestion(db, CopyQuestionValues{q2, "Q2", group.ID, target.ID}, nil)
	_, err := copier.Copy(ctx, CopyAll(""))
	require.NoError(t, err)

	copied := copier.NewCopiedQuestion()
	assert.Equal(t, target.ID, copied.SurveyID)
	subquestions, err := datastore.GetSubquestions(ctx, db, copied.ID)
	require.NoError(t, err)
	for _, sq := range subquestions {
		assert.Equal(t, target.ID, sq.SurveyID)
	}

	assert.Contains(t, testutil.AllSurveyQuestions(t, db, target.ID), "Q2")
}

func TestCopyQuestionRejectsBadInput(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	_, err := NewCopyQuestion(db, CopyQuestionValues{}, nil).Copy(ctx, CopyOptions{})
	assert.ErrorIs(t, err, ErrMissingSource)

	source := &models.Question{ID: 1}
	_, err = NewCopyQuestion(db, CopyQuestionValues{QuestionToCopy: source, QuestionCode: "X"}, nil).Copy(ctx, CopyOptions{Mode: "eventually"})
	assert.ErrorIs(t, err, ErrInvalidCopyMode)
}
