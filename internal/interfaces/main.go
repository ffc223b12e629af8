package interfaces

import (
	"context"

	"surveycopy/internal/models"

	"github.com/go-redis/redis_rate/v10"
)

type Limiter interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) error
}

// Locker hands out named mutexes. Unlock must be called once the lock is held.
type Locker interface {
	TryLock(ctx context.Context, name string) (unlock func(), err error)
}

type CopyReportStore interface {
	SaveCopyReport(ctx context.Context, v *models.CopyReport) error
	GetCopyReport(ctx context.Context, id string) (*models.CopyReport, error)
	GetQuestionCopyHistory(ctx context.Context, sourceQID int64) ([]*models.CopyReport, error)
}
