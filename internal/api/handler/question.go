package handler

import (
	"errors"
	"strconv"

	"surveycopy/internal/models"
	"surveycopy/internal/services"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/hiendaovinh/toolkit/pkg/httpx-echo"
	"github.com/labstack/echo/v4"
	"github.com/samber/do"
)

type groupQuestion struct {
	container *do.Injector
}

func paramID(c echo.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errorx.Wrap(errors.New("invalid "+name), errorx.Validation)
	}
	return id, nil
}

func (gr *groupQuestion) Show(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	qid, err := paramID(c, "qid")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	question, err := serviceQuestion.GetQuestion(c.Request().Context(), qid)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, question, nil)
}

func (gr *groupQuestion) GroupQuestions(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	gid, err := paramID(c, "gid")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	questions, err := serviceQuestion.GetGroupQuestions(c.Request().Context(), gid)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, questions, nil)
}

type copyQuestionPayload struct {
	Code    string `json:"code"`
	GroupID int64  `json:"gid"`
	services.CopyOptions
}

func (gr *groupQuestion) Copy(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	qid, err := paramID(c, "qid")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	var payload copyQuestionPayload
	if err := c.Bind(&payload); err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Invalid))
	}

	question, report, err := serviceQuestion.CopyQuestion(c.Request().Context(), services.CopyQuestionRequest{
		QuestionID:  qid,
		Code:        payload.Code,
		GroupID:     payload.GroupID,
		CopyOptions: payload.CopyOptions,
	})
	var copyErr *services.CopyError
	if errors.As(err, &copyErr) && copyErr.Report != nil {
		return abortCopyFailure(c, err, copyErr.Report)
	}
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, struct {
		Question *models.Question   `json:"question"`
		Report   *models.CopyReport `json:"report"`
	}{question, report}, nil)
}

type copyFailureBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Data    copyFailureReport `json:"data"`
}

type copyFailureReport struct {
	ReportID string `json:"report_id"`
}

// abortCopyFailure renders err like httpx.Abort and points at the stored
// report of the failed attempt.
func abortCopyFailure(c echo.Context, err error, report *models.CopyReport) error {
	var target *errorx.Error
	if !errors.As(err, &target) {
		target = errorx.Wrap(err, errorx.Service)
	}
	if target.Of(errorx.Database) || target.Of(errorx.Service) {
		c.Logger().Error(err)
	}

	return c.JSON(target.Status(), &copyFailureBody{
		Code:    target.Code(),
		Message: errorx.MaskErrorMessage(target),
		Data:    copyFailureReport{ReportID: report.ID},
	})
}

func (gr *groupQuestion) CopyReport(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	report, err := serviceQuestion.GetCopyReport(c.Request().Context(), c.Param("id"))
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, report, nil)
}

func (gr *groupQuestion) CopyHistory(c echo.Context) error {
	serviceQuestion, err := do.Invoke[*services.ServiceQuestion](gr.container)
	if err != nil {
		return httpx.RestAbort(c, nil, errorx.Wrap(err, errorx.Service))
	}

	qid, err := paramID(c, "qid")
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	reports, err := serviceQuestion.GetQuestionCopyHistory(c.Request().Context(), qid)
	if err != nil {
		return httpx.RestAbort(c, nil, err)
	}

	return httpx.RestAbort(c, reports, nil)
}
