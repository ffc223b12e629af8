package fixture_test

import (
	"context"
	"strings"
	"testing"

	"surveycopy/internal/datastore"
	"surveycopy/internal/fixture"
	"surveycopy/internal/models"
	"surveycopy/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doc = `
language: en
groups:
  - name: G1
    questions:
      - code: M1
        type: M
        l10ns:
          - {language: en, question: Pick some}
        subquestions:
          - code: SQ1
          - code: SQ2
        default_values:
          - sq: SQ2
            l10ns:
              - {language: en, value: "Y"}
`

func TestImportSurveyResolvesSubquestionCodes(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	survey, err := fixture.ImportSurvey(ctx, db, strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, survey.Groups, 1)
	require.Len(t, survey.Groups[0].Questions, 1)

	m1 := survey.Groups[0].Questions[0]
	assert.Equal(t, models.QuestionTypeMultiple, m1.Type)
	assert.Len(t, m1.L10ns, 1)

	subquestions, err := datastore.GetSubquestions(ctx, db, m1.ID)
	require.NoError(t, err)
	require.Len(t, subquestions, 2)

	values, err := datastore.GetDefaultValues(ctx, db, m1.ID)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, subquestions[1].ID, values[0].SubquestionID)

	require.NoError(t, fixture.DeleteSurvey(ctx, db, survey.ID))
	assert.Error(t, fixture.DeleteSurvey(ctx, db, survey.ID))
}

func TestImportSurveyRejectsBadDocuments(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t)

	cases := map[string]string{
		"no language":    "groups: []\n",
		"unknown field":  "language: en\ncolour: red\n",
		"no code":        "language: en\ngroups:\n  - questions:\n      - type: S\n",
		"unknown sq":     "language: en\ngroups:\n  - questions:\n      - code: A\n        default_values:\n          - sq: NOPE\n",
		"duplicate code": "language: en\ngroups:\n  - questions:\n      - code: A\n      - code: A\n",
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := fixture.ImportSurvey(ctx, db, strings.NewReader(body))
			assert.Error(t, err)
		})
	}

	// failed imports leave nothing behind
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Survey)(nil), ""))
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Question)(nil), ""))
}
