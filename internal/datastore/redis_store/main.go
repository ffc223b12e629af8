package redis_store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"surveycopy/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const (
	COPY_REPORT_TTL     = 7 * 24 * time.Hour
	COPY_HISTORY_LENGTH = 20
)

func dbKeyCopyReport(id string) string {
	return fmt.Sprintf("copy_report:%s", id)
}

func dbKeyQuestionCopyHistory(sourceQID int64) string {
	return fmt.Sprintf("question:%d:copy_history", sourceQID)
}

func SaveCopyReport(ctx context.Context, cmd redis.Cmdable, v *models.CopyReport) error {
	if v == nil || v.ID == "" {
		return errors.New("invalid copy report")
	}

	b, err := msgpack.Marshal(v)
	if err != nil {
		return err
	}

	_, err = cmd.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, dbKeyCopyReport(v.ID), b, COPY_REPORT_TTL)
		pipe.LPush(ctx, dbKeyQuestionCopyHistory(v.SourceQID), v.ID)
		pipe.LTrim(ctx, dbKeyQuestionCopyHistory(v.SourceQID), 0, COPY_HISTORY_LENGTH-1)
		pipe.Expire(ctx, dbKeyQuestionCopyHistory(v.SourceQID), COPY_REPORT_TTL)
		return nil
	})
	return err
}

func GetCopyReport(ctx context.Context, cmd redis.Cmdable, id string) (*models.CopyReport, error) {
	var v *models.CopyReport
	b, err := cmd.Get(ctx, dbKeyCopyReport(id)).Bytes()
	if err != nil {
		return nil, err
	}

	err = msgpack.Unmarshal(b, &v)
	return v, err
}

// GetQuestionCopyHistory returns the latest reports of copies made from
// sourceQID, newest first. Expired reports are skipped.
func GetQuestionCopyHistory(ctx context.Context, cmd redis.Cmdable, sourceQID int64) ([]*models.CopyReport, error) {
	ids, err := cmd.LRange(ctx, dbKeyQuestionCopyHistory(sourceQID), 0, COPY_HISTORY_LENGTH-1).Result()
	if err != nil {
		return nil, err
	}

	reports := make([]*models.CopyReport, 0, len(ids))
	for _, id := range ids {
		report, err := GetCopyReport(ctx, cmd, id)
		if err == redis.Nil {
			continue
		}
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}

	return reports, nil
}

// Store adapts a redis client to the report store used by the services.
type Store struct {
	cmd redis.Cmdable
}

func NewStore(cmd redis.Cmdable) *Store {
	return &Store{cmd}
}

func (s *Store) SaveCopyReport(ctx context.Context, v *models.CopyReport) error {
	return SaveCopyReport(ctx, s.cmd, v)
}

func (s *Store) GetCopyReport(ctx context.Context, id string) (*models.CopyReport, error) {
	return GetCopyReport(ctx, s.cmd, id)
}

func (s *Store) GetQuestionCopyHistory(ctx context.Context, sourceQID int64) ([]*models.CopyReport, error) {
	return GetQuestionCopyHistory(ctx, s.cmd, sourceQID)
}
