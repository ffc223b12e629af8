package testutil

import (
	"context"
	"runtime"
	"testing"

	"surveycopy/internal/datastore"
	"surveycopy/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSurvey(t *testing.T) {
	db := NewDB(t)

	var surveyID int64
	t.Run("import", func(t *testing.T) {
		survey := ImportSurvey(t, db, "copy_source")
		surveyID = survey.ID
		assert.Equal(t, []string{"en", "de"}, survey.Languages())
		require.Len(t, survey.Groups, 2)

		questions := AllSurveyQuestions(t, db, survey.ID)
		assert.Len(t, questions, 3)
		for _, code := range []string{"Q1", "Q2", "Q3"} {
			require.Contains(t, questions, code)
			assert.False(t, questions[code].IsSubquestion())
		}

		subquestions, err := datastore.GetSubquestions(context.Background(), db, questions["Q2"].ID)
		require.NoError(t, err)
		assert.Len(t, subquestions, 2)
	})

	// the subtest cleanup removed everything
	assert.Equal(t, 0, Count(t, db, (*models.Survey)(nil), "sid = ?", surveyID))
	assert.Equal(t, 0, Count(t, db, (*models.Question)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.QuestionL10n)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.Answer)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.AnswerL10n)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.DefaultValue)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.DefaultValueL10n)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.QuestionAttribute)(nil), ""))
	assert.Equal(t, 0, Count(t, db, (*models.QuestionGroup)(nil), ""))
}

func TestImportSurveyAssignsFreshIdentities(t *testing.T) {
	db := NewDB(t)
	first := ImportSurvey(t, db, "copy_source")
	second := ImportSurvey(t, db, "copy_source")
	assert.NotEqual(t, first.ID, second.ID)

	a := AllSurveyQuestions(t, db, first.ID)
	b := AllSurveyQuestions(t, db, second.ID)
	for code := range a {
		assert.NotEqual(t, a[code].ID, b[code].ID)
	}
}

func TestPluginHelpers(t *testing.T) {
	ctx := context.Background()
	db := NewDB(t)

	plugin := InstallAndActivatePlugin(t, db, "Authdb")
	assert.True(t, plugin.Active)

	DeactivatePlugin(t, db, "Authdb")
	stored, err := datastore.GetPluginByName(ctx, db, "Authdb")
	require.NoError(t, err)
	assert.False(t, stored.Active)

	InstallAndActivatePlugin(t, db, "Authdb")
	stored, err = datastore.GetPluginByName(ctx, db, "Authdb")
	require.NoError(t, err)
	assert.True(t, stored.Active)
	assert.Equal(t, 1, Count(t, db, (*models.Plugin)(nil), ""))

	// unknown plugins are ignored
	DeactivatePlugin(t, db, "Missing")
}

// failureRecorder swallows assertion failures so a helper can be checked for
// failing.
type failureRecorder struct {
	testing.TB
	failed bool
}

func (r *failureRecorder) Errorf(string, ...any) {
	r.failed = true
}

func (r *failureRecorder) FailNow() {
	r.failed = true
	runtime.Goexit()
}

func TestAllSurveyQuestionsUnknownSurvey(t *testing.T) {
	db := NewDB(t)
	ImportSurvey(t, db, "copy_source")

	recorder := &failureRecorder{TB: t}
	done := make(chan struct{})
	go func() {
		defer close(done)
		AllSurveyQuestions(recorder, db, 999999)
	}()
	<-done

	assert.True(t, recorder.failed)
}
