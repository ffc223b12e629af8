package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"surveycopy/internal/interfaces"
	"surveycopy/internal/models"
	"surveycopy/internal/pkg/caching"
	"surveycopy/internal/pkg/limiter"
	"surveycopy/internal/services"
	"surveycopy/internal/testutil"

	"github.com/labstack/echo/v4"
	"github.com/samber/do"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

const testAPIKey = "secret"

func newTestRouter(t *testing.T) (http.Handler, *bun.DB, *do.Injector) {
	t.Helper()

	db := testutil.NewDB(t)
	cache := caching.NewCacheLocal(1000, time.Minute)

	injector := do.New()
	do.ProvideValue(injector, db)
	do.ProvideNamedValue(injector, "db-readonly", db)
	do.ProvideValue[caching.Cache](injector, cache)
	do.ProvideValue[caching.ReadOnlyCache](injector, cache)
	do.ProvideValue[interfaces.Locker](injector, testutil.NewLocker())
	do.ProvideValue[interfaces.CopyReportStore](injector, testutil.NewReportStore())
	do.ProvideValue[interfaces.Limiter](injector, testutil.NewLimiter(limiter.ErrRateLimited))
	do.ProvideValue(injector, zap.NewNop())
	do.Provide(injector, func(i *do.Injector) (*services.ServiceConfig, error) {
		return services.NewServiceConfig(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServiceQuestion, error) {
		return services.NewServiceQuestion(i)
	})
	do.Provide(injector, func(i *do.Injector) (*services.ServicePlugin, error) {
		return services.NewServicePlugin(i)
	})

	router, err := New(&Config{
		Container:   injector,
		Mode:        "test",
		Origins:     []string{"*"},
		AdminAPIKey: testAPIKey,
	})
	require.NoError(t, err)
	return router, db, injector
}

func serve(router http.Handler, method, target, body string, authenticated bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if authenticated {
		req.Header.Set(HeaderAPIKey, testAPIKey)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)
	rec := serve(router, http.MethodGet, "/", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuestionRoutes(t *testing.T) {
	router, db, _ := newTestRouter(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]
	path := "/api/v1/question/" + strconv.FormatInt(q1.ID, 10)

	rec := serve(router, http.MethodGet, path, "", false)
	assert.NotEqual(t, http.StatusOK, rec.Code)

	rec = serve(router, http.MethodGet, path, "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Which colour do you like best?")

	rec = serve(router, http.MethodGet, "/api/v1/group/"+strconv.FormatInt(q1.GroupID, 10)+"/questions", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"Q3"`)

	rec = serve(router, http.MethodPost, path+"/copy", `{"code":"Q1_copy","gid":`+strconv.FormatInt(q1.GroupID, 10)+`,"copy_answer_options":true}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "Q1_copy")
	assert.Contains(t, rec.Body.String(), `"answer_options":3`)

	copies := testutil.Count(t, db, (*models.Question)(nil), "title = ?", "Q1_copy")
	assert.Equal(t, 1, copies)

	rec = serve(router, http.MethodGet, path+"/copies", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mode":"atomic"`)
}

func TestCopyFailureReturnsReportID(t *testing.T) {
	router, db, _ := newTestRouter(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q1 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q1"]
	testutil.FailInserts(t, db, "answer_l10ns", "answer l10n rejected")

	path := "/api/v1/question/" + strconv.FormatInt(q1.ID, 10) + "/copy"
	rec := serve(router, http.MethodPost, path, `{"code":"Q1_copy","gid":`+strconv.FormatInt(q1.GroupID, 10)+`,"copy_answer_options":true,"mode":"atomic"}`, true)
	require.Equal(t, http.StatusInternalServerError, rec.Code, rec.Body.String())

	var body struct {
		Code string `json:"code"`
		Data struct {
			ReportID string `json:"report_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "internal-service-failure", body.Code)
	require.NotEmpty(t, body.Data.ReportID)
	assert.NotContains(t, rec.Body.String(), "answer l10n rejected")

	rec = serve(router, http.MethodGet, "/api/v1/copy-report/"+body.Data.ReportID, "", true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), `"new_qid":0`)
	assert.Contains(t, rec.Body.String(), `"answer_options":0`)
	assert.Contains(t, rec.Body.String(), "answer l10n rejected")
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Question)(nil), "title = ?", "Q1_copy"))
}

func TestCopyRateLimited(t *testing.T) {
	router, db, injector := newTestRouter(t)
	survey := testutil.ImportSurvey(t, db, "copy_source")
	q3 := testutil.AllSurveyQuestions(t, db, survey.ID)["Q3"]

	serviceConfig := do.MustInvoke[*services.ServiceConfig](injector)
	_, err := serviceConfig.SetConfig(context.Background(), services.CONFIG_COPY_RATE_LIMIT_PER_MINUTE, "1")
	require.NoError(t, err)

	path := "/api/v1/question/" + strconv.FormatInt(q3.ID, 10) + "/copy"
	gid := strconv.FormatInt(q3.GroupID, 10)

	rec := serve(router, http.MethodPost, path, `{"code":"Q3a","gid":`+gid+`}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = serve(router, http.MethodPost, path, `{"code":"Q3b","gid":`+gid+`}`, true)
	assert.NotEqual(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Question)(nil), "title = ?", "Q3b"))
}

func TestPluginRoutes(t *testing.T) {
	router, db, _ := newTestRouter(t)

	rec := serve(router, http.MethodPost, "/api/v1/plugin/AuditLog/activate", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, testutil.Count(t, db, (*models.Plugin)(nil), "active = ?", true))

	rec = serve(router, http.MethodGet, "/api/v1/plugins", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AuditLog")

	rec = serve(router, http.MethodPost, "/api/v1/plugin/AuditLog/deactivate", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, testutil.Count(t, db, (*models.Plugin)(nil), "active = ?", true))
}
