// Package testutil sets up throwaway stores and fixture surveys for tests.
package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"embed"
	"path"
	"testing"

	"surveycopy/internal/datastore"
	"surveycopy/internal/fixture"
	"surveycopy/internal/models"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite"
)

//go:embed testdata/surveys/*.yaml
var surveys embed.FS

// NewDB opens a migrated in-memory store that is closed when the test ends.
// The pool holds a single connection so every query sees the same database.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		// nolint:errcheck
		db.Close()
	})

	require.NoError(t, datastore.Migrate(context.Background(), db))
	return db
}

// ImportSurvey imports testdata/surveys/<name>.yaml and deletes the survey
// again when the test ends.
func ImportSurvey(t testing.TB, db *bun.DB, name string) *models.Survey {
	t.Helper()

	b, err := surveys.ReadFile(path.Join("testdata", "surveys", name+".yaml"))
	require.NoError(t, err, "fixture survey %s", name)

	survey, err := fixture.ImportSurvey(context.Background(), db, bytes.NewReader(b))
	require.NoError(t, err, "import survey %s", name)
	require.NotZero(t, survey.ID)

	t.Cleanup(func() {
		if err := fixture.DeleteSurvey(context.Background(), db, survey.ID); err != nil {
			t.Errorf("delete survey %d: %v", survey.ID, err)
		}
	})

	return survey
}

// AllSurveyQuestions returns the root questions of the survey keyed by code.
func AllSurveyQuestions(t testing.TB, db bun.IDB, surveyID int64) map[string]*models.Question {
	t.Helper()
	require.NotZero(t, surveyID, "no survey imported")

	_, err := datastore.GetSurvey(context.Background(), db, surveyID)
	require.NoError(t, err, "survey %d does not exist", surveyID)

	questions, err := datastore.GetSurveyQuestions(context.Background(), db, surveyID)
	require.NoError(t, err)

	result := make(map[string]*models.Question, len(questions))
	for _, question := range questions {
		if question.IsSubquestion() {
			continue
		}
		result[question.Title] = question
	}
	return result
}

func InstallAndActivatePlugin(t testing.TB, db *bun.DB, name string) *models.Plugin {
	t.Helper()

	plugin, err := datastore.InstallAndActivatePlugin(context.Background(), db, name)
	require.NoError(t, err)
	return plugin
}

func DeactivatePlugin(t testing.TB, db *bun.DB, name string) {
	t.Helper()

	_, err := datastore.DeactivatePlugin(context.Background(), db, name)
	require.NoError(t, err)
}

// FailInserts makes every insert into table abort with message. Used to force
// a dependent save to fail.
func FailInserts(t testing.TB, db bun.IDB, table string, message string) {
	t.Helper()

	_, err := db.ExecContext(context.Background(), "CREATE TRIGGER fail_"+table+" BEFORE INSERT ON "+table+
		" BEGIN SELECT RAISE(ABORT, '"+message+"'); END")
	require.NoError(t, err)
}

// Count returns the number of rows of model matching where.
func Count(t testing.TB, db bun.IDB, model any, where string, args ...any) int {
	t.Helper()

	q := db.NewSelect().Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	n, err := q.Count(context.Background())
	require.NoError(t, err)
	return n
}
