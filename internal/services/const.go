package services

import (
	"errors"
	"fmt"
	"time"
)

var ErrQuestionCodeLock = errors.New("question code locked")

const (
	CONFIG_COPY_QUESTION_MODE         = "COPY_QUESTION_MODE"
	CONFIG_COPY_RATE_LIMIT_PER_MINUTE = "COPY_RATE_LIMIT_PER_MINUTE"

	COPY_RATE_LIMIT_PER_MINUTE = 30
	QUESTION_CODE_MAX_LENGTH   = 20

	CACHE_TTL_5_MINS  = 5 * time.Minute
	CACHE_TTL_15_MINS = 15 * time.Minute
)

func LockKeyQuestionCode(groupID int64, code string) string {
	return fmt.Sprintf("lock:question-code:%d:%s", groupID, code)
}

func LimitKeyCopyQuestion(apiKey string) string {
	return fmt.Sprintf("limit:copy-question:%s", apiKey)
}

// db
func DBKeyQuestion(questionID int64) string {
	return fmt.Sprintf("question:%d", questionID)
}

func DBKeyGroupQuestions(groupID int64) string {
	return fmt.Sprintf("group:%d:questions", groupID)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", key)
}
