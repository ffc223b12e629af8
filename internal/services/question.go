package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"

	"surveycopy/internal/datastore"
	"surveycopy/internal/interfaces"
	"surveycopy/internal/models"
	"surveycopy/internal/pkg/caching"

	"github.com/hiendaovinh/toolkit/pkg/errorx"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
)

var questionCodePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

var ErrSubquestionSource = errors.New("a subquestion cannot be copied on its own")

// CheckCopySource rejects sources that only make sense under their parent.
func CheckCopySource(source *models.Question) error {
	if source == nil {
		return ErrMissingSource
	}
	if source.IsSubquestion() {
		return ErrSubquestionSource
	}
	return nil
}

type ServiceQuestion struct {
	container          *do.Injector
	postgresDB         *bun.DB
	readonlyPostgresDB *bun.DB
	cache              caching.Cache
	readonlyCache      caching.ReadOnlyCache
	locker             interfaces.Locker
	reports            interfaces.CopyReportStore
	serviceConfig      *ServiceConfig
	logger             *zap.Logger
}

func NewServiceQuestion(container *do.Injector) (*ServiceQuestion, error) {
	postgresDB, err := do.Invoke[*bun.DB](container)
	if err != nil {
		return nil, err
	}

	readonlyPostgresDB, err := do.InvokeNamed[*bun.DB](container, "db-readonly")
	if err != nil {
		return nil, err
	}

	cache, err := do.Invoke[caching.Cache](container)
	if err != nil {
		return nil, err
	}

	readonlyCache, err := do.Invoke[caching.ReadOnlyCache](container)
	if err != nil {
		return nil, err
	}

	locker, err := do.Invoke[interfaces.Locker](container)
	if err != nil {
		return nil, err
	}

	reports, err := do.Invoke[interfaces.CopyReportStore](container)
	if err != nil {
		return nil, err
	}

	serviceConfig, err := do.Invoke[*ServiceConfig](container)
	if err != nil {
		return nil, err
	}

	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil {
		return nil, err
	}

	return &ServiceQuestion{
		container:          container,
		postgresDB:         postgresDB,
		readonlyPostgresDB: readonlyPostgresDB,
		cache:              cache,
		readonlyCache:      readonlyCache,
		locker:             locker,
		reports:            reports,
		serviceConfig:      serviceConfig,
		logger:             logger.Named("question"),
	}, nil
}

func (service *ServiceQuestion) GetQuestion(ctx context.Context, questionID int64) (*models.Question, error) {
	callback := func() (*models.Question, error) {
		question, err := datastore.GetQuestion(ctx, service.readonlyPostgresDB, questionID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errorx.Wrap(fmt.Errorf("question %d not found", questionID), errorx.NotExist)
		}
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		question.L10ns, err = datastore.GetQuestionL10ns(ctx, service.readonlyPostgresDB, question.ID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}

		return question, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyQuestion(questionID), CACHE_TTL_15_MINS, callback)
}

func (service *ServiceQuestion) GetGroupQuestions(ctx context.Context, groupID int64) ([]*models.Question, error) {
	callback := func() ([]*models.Question, error) {
		questions, err := datastore.GetGroupQuestions(ctx, service.readonlyPostgresDB, groupID)
		if err != nil {
			return nil, errorx.Wrap(err, errorx.Service)
		}
		return questions, nil
	}

	return caching.UseCacheWithRO(ctx, service.readonlyCache, service.cache, DBKeyGroupQuestions(groupID), CACHE_TTL_5_MINS, callback)
}

type CopyQuestionRequest struct {
	QuestionID int64  `json:"qid"`
	Code       string `json:"code"`
	GroupID    int64  `json:"gid"`
	CopyOptions
}

func (req *CopyQuestionRequest) Validate() error {
	if req.QuestionID <= 0 {
		return errors.New("invalid question id")
	}
	if req.GroupID <= 0 {
		return errors.New("invalid group id")
	}
	if req.Code == "" {
		return errors.New("missing question code")
	}
	if len(req.Code) > QUESTION_CODE_MAX_LENGTH {
		return fmt.Errorf("question code longer than %d characters", QUESTION_CODE_MAX_LENGTH)
	}
	if !questionCodePattern.MatchString(req.Code) {
		return errors.New("question code must start with a letter and contain only letters, digits and underscores")
	}
	if req.Mode != "" && !req.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidCopyMode, req.Mode)
	}
	return nil
}

// CopyQuestion copies a root question into a group under a new code. The
// report is stored whether or not the copy went through.
func (service *ServiceQuestion) CopyQuestion(ctx context.Context, req CopyQuestionRequest) (*models.Question, *models.CopyReport, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Validation)
	}

	unlock, err := service.locker.TryLock(ctx, LockKeyQuestionCode(req.GroupID, req.Code))
	if err != nil {
		return nil, nil, errorx.Wrap(ErrQuestionCodeLock, errorx.Invalid)
	}
	defer unlock()

	source, err := datastore.GetQuestion(ctx, service.postgresDB, req.QuestionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(fmt.Errorf("question %d not found", req.QuestionID), errorx.NotExist)
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}
	if err := CheckCopySource(source); err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Invalid)
	}

	group, err := datastore.GetQuestionGroup(ctx, service.postgresDB, req.GroupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, errorx.Wrap(fmt.Errorf("group %d not found", req.GroupID), errorx.NotExist)
	}
	if err != nil {
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	opts := req.CopyOptions
	if opts.Mode == "" {
		opts.Mode, err = service.serviceConfig.CopyQuestionMode(ctx)
		if err != nil {
			service.logger.Warn("falling back to atomic copy", zap.Error(err))
			opts.Mode = models.CopyModeAtomic
		}
	}

	copier := NewCopyQuestion(service.postgresDB, CopyQuestionValues{
		QuestionToCopy:   source,
		QuestionCode:     req.Code,
		QuestionGroupID:  group.ID,
		QuestionSurveyID: group.SurveyID,
	}, service.logger)

	report, err := copier.Copy(ctx, opts)
	if err != nil {
		var copyErr *CopyError
		if errors.As(err, &copyErr) && copyErr.Report != nil {
			service.saveReport(ctx, copyErr.Report)
		}
		if errors.Is(err, ErrRootCreation) {
			return nil, nil, errorx.Wrap(err, errorx.Invalid)
		}
		return nil, nil, errorx.Wrap(err, errorx.Service)
	}

	service.saveReport(ctx, report)

	if err := caching.Invalidate(ctx, service.cache, DBKeyGroupQuestions(group.ID)); err != nil {
		service.logger.Warn("group questions cache not invalidated", zap.Int64("gid", group.ID), zap.Error(err))
	}

	return copier.NewCopiedQuestion(), report, nil
}

func (service *ServiceQuestion) saveReport(ctx context.Context, report *models.CopyReport) {
	if err := service.reports.SaveCopyReport(ctx, report); err != nil {
		service.logger.Warn("copy report not stored", zap.String("copy_id", report.ID), zap.Error(err))
	}
}

func (service *ServiceQuestion) GetCopyReport(ctx context.Context, id string) (*models.CopyReport, error) {
	report, err := service.reports.GetCopyReport(ctx, id)
	if errors.Is(err, redis.Nil) {
		return nil, errorx.Wrap(fmt.Errorf("copy report %s not found", id), errorx.NotExist)
	}
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return report, nil
}

func (service *ServiceQuestion) GetQuestionCopyHistory(ctx context.Context, questionID int64) ([]*models.CopyReport, error) {
	reports, err := service.reports.GetQuestionCopyHistory(ctx, questionID)
	if err != nil {
		return nil, errorx.Wrap(err, errorx.Service)
	}
	return reports, nil
}
