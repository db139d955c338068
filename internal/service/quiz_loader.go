package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"quiz-match/internal/cache"
	"quiz-match/internal/domain"
	"quiz-match/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// QuizLoader reads quiz trees cache-aside.
type QuizLoader interface {
	// Load returns the quiz in any status, or nil when it does not exist.
	Load(ctx context.Context, quizID string) (*domain.Quiz, error)
	// LoadActive returns a QUIZ_NOT_FOUND error unless the quiz exists and is active.
	LoadActive(ctx context.Context, quizID string) (*domain.Quiz, error)
}

type quizLoader struct {
	repo  domain.QuizRepository
	cache domain.Cache // nil disables caching
	ttl   time.Duration
	group singleflight.Group
}

func NewQuizLoader(repo domain.QuizRepository, cache domain.Cache, ttl time.Duration) QuizLoader {
	return &quizLoader{repo: repo, cache: cache, ttl: ttl}
}

func (l *quizLoader) LoadActive(ctx context.Context, quizID string) (*domain.Quiz, error) {
	quiz, err := l.Load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	if !quiz.IsActive() {
		return nil, domain.NewQuizNotFoundError(quizID)
	}
	return quiz, nil
}

func (l *quizLoader) Load(ctx context.Context, quizID string) (*domain.Quiz, error) {
	key := cache.QuizKey(quizID)

	if quiz, ok := l.fromCache(ctx, key); ok {
		return quiz, nil
	}

	// Concurrent misses for one quiz share a single store read.
	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		// Shared by every waiter, so one caller's cancellation must not fail the rest.
		ctx := context.WithoutCancel(ctx)
		quiz, err := l.repo.GetQuizWithQuestions(ctx, quizID)
		if err != nil {
			return nil, err
		}
		if quiz != nil {
			l.toCache(ctx, key, quiz)
		}
		return quiz, nil
	})
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to load quiz", err)
	}
	quiz, _ := v.(*domain.Quiz)
	return quiz, nil
}

func (l *quizLoader) fromCache(ctx context.Context, key string) (*domain.Quiz, bool) {
	if l.cache == nil {
		return nil, false
	}
	raw, err := l.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("QuizLoader: cache read failed, falling back to store",
				zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal([]byte(raw), &quiz); err != nil {
		logger.Get().Warn("QuizLoader: discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return &quiz, true
}

func (l *quizLoader) toCache(ctx context.Context, key string, quiz *domain.Quiz) {
	if l.cache == nil {
		return
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		logger.Get().Warn("QuizLoader: failed to encode quiz for cache", zap.String("key", key), zap.Error(err))
		return
	}
	if err := l.cache.Set(ctx, key, string(data), l.ttl); err != nil {
		logger.Get().Warn("QuizLoader: cache write failed", zap.String("key", key), zap.Error(err))
	}
}
