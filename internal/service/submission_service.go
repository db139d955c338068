package service

import (
	"context"
	"strings"
	"sync"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"
	"quiz-match/internal/dto"
	"quiz-match/internal/logger"
	"quiz-match/internal/matching"
	"quiz-match/internal/metrics"
	"quiz-match/internal/util"
	"quiz-match/internal/validation"

	"go.uber.org/zap"
)

// SubmissionService defines the shopper-facing and shop-facing quiz result operations.
type SubmissionService interface {
	Submit(ctx context.Context, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error)
	RecordView(ctx context.Context, quizID string) error
	RedactResults(ctx context.Context, shopID, email string) (int64, error)
	GetAnalytics(ctx context.Context, shopID, quizID string) (*domain.QuizAnalytics, error)
	// Shutdown waits for in-flight notifications. New ones are dropped afterwards.
	Shutdown(ctx context.Context) error
}

type submissionService struct {
	quizzes     QuizLoader
	usage       UsageService
	recommender RecommendationService
	results     domain.ResultRepository
	analytics   domain.AnalyticsRepository
	tx          domain.TransactionManager
	notifier    domain.Notifier
	cfg         config.SubmissionConfig

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// NewSubmissionService creates a new submission service
func NewSubmissionService(
	quizzes QuizLoader,
	usage UsageService,
	recommender RecommendationService,
	results domain.ResultRepository,
	analytics domain.AnalyticsRepository,
	tx domain.TransactionManager,
	notifier domain.Notifier,
	cfg config.SubmissionConfig,
) SubmissionService {
	return &submissionService{
		quizzes:     quizzes,
		usage:       usage,
		recommender: recommender,
		results:     results,
		analytics:   analytics,
		tx:          tx,
		notifier:    notifier,
		cfg:         cfg,
	}
}

func (s *submissionService) Submit(ctx context.Context, req *dto.SubmitQuizRequest) (*dto.SubmitQuizResponse, error) {
	req.QuizID = strings.TrimSpace(req.QuizID)
	req.Email = normalizeEmail(req.Email)
	if errs := validation.ValidateStruct(req); len(errs) > 0 {
		metrics.RecordSubmission(metrics.OutcomeInvalid)
		return nil, errs
	}

	quiz, err := s.quizzes.LoadActive(ctx, req.QuizID)
	if err != nil {
		metrics.RecordSubmission(outcomeFor(err))
		return nil, err
	}

	check, err := s.usage.CheckAndAdvance(ctx, quiz.ShopID)
	if err != nil {
		metrics.RecordSubmission(metrics.OutcomeError)
		return nil, err
	}
	if !check.Allowed {
		metrics.RecordSubmission(metrics.OutcomeLimitReached)
		logger.Get().Info("Service: submission rejected by usage limit",
			zap.String("shop_id", quiz.ShopID),
			zap.String("tier", string(check.Tier)),
			zap.Int("current_usage", check.CurrentUsage),
			zap.Int("limit", check.Limit))
		return nil, domain.NewLimitReachedError(check)
	}

	answers := req.DomainAnswers()
	criteria := matching.ExtractCriteria(quiz, answers)
	recs := s.recommender.Resolve(ctx, criteria)

	result := &domain.QuizResult{
		ID:                  util.NewULID(),
		QuizID:              quiz.ID,
		Email:               req.Email,
		Answers:             answers,
		RecommendedProducts: recs,
	}
	if err := s.commit(ctx, quiz, result, req.DomainTimings()); err != nil {
		metrics.RecordSubmission(metrics.OutcomeError)
		logger.Get().Error("Service: failed to commit submission",
			zap.String("quiz_id", quiz.ID), zap.String("result_id", result.ID), zap.Error(err))
		return nil, domain.NewPersistenceError("Failed to save quiz result", err)
	}

	// Outside the transaction; a failure here never fails the submission.
	sideCtx, cancel := s.sideEffectContext(ctx)
	_ = s.usage.IncrementCompletion(sideCtx, quiz.ShopID)
	cancel()

	s.notifyCompleted(ctx, quiz, result)

	metrics.RecordSubmission(metrics.OutcomeSuccess)
	return &dto.SubmitQuizResponse{
		Success:             true,
		ResultID:            result.ID,
		RecommendedProducts: recs,
	}, nil
}

// commit writes the result and its analytics as one unit, bounded by its own deadline.
func (s *submissionService) commit(ctx context.Context, quiz *domain.Quiz, result *domain.QuizResult, timings []domain.QuestionTiming) error {
	txCtx := context.WithoutCancel(ctx)
	if s.cfg.TransactionTimeout > 0 {
		var cancel context.CancelFunc
		txCtx, cancel = context.WithTimeout(txCtx, s.cfg.TransactionTimeout)
		defer cancel()
	}

	return s.tx.WithTransaction(txCtx, func(ctx context.Context) error {
		if err := s.results.Create(ctx, result); err != nil {
			return err
		}
		if err := s.analytics.IncrementCompletions(ctx, quiz.ID, result.Email != ""); err != nil {
			return err
		}
		for _, timing := range timings {
			if quiz.Question(timing.QuestionID) == nil {
				continue
			}
			if err := s.analytics.RecordQuestionTiming(ctx, quiz.ID, timing); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *submissionService) notifyCompleted(ctx context.Context, quiz *domain.Quiz, result *domain.QuizResult) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		logger.Get().Warn("Service: shutting down, dropping completion notification",
			zap.String("result_id", result.ID))
		return
	}
	s.inflight.Add(1)
	s.mu.Unlock()

	payload := map[string]interface{}{
		"quizId":              quiz.ID,
		"resultId":            result.ID,
		"emailCaptured":       result.Email != "",
		"recommendedProducts": len(result.RecommendedProducts),
	}
	notifyCtx, cancel := s.sideEffectContext(ctx)
	go func() {
		defer s.inflight.Done()
		defer cancel()
		if err := s.notifier.Deliver(notifyCtx, quiz.ShopID, domain.EventQuizCompleted, payload); err != nil {
			metrics.RecordSideEffectFailure("notification")
			logger.Get().Warn("Service: completion notification failed",
				zap.String("shop_id", quiz.ShopID),
				zap.String("result_id", result.ID),
				zap.Error(domain.NewSideEffectError("notification", err)))
		}
	}()
}

// sideEffectContext detaches from the request so a client disconnect does not cancel bookkeeping.
func (s *submissionService) sideEffectContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if s.cfg.SideEffectTimeout > 0 {
		return context.WithTimeout(detached, s.cfg.SideEffectTimeout)
	}
	return context.WithCancel(detached)
}

func (s *submissionService) RecordView(ctx context.Context, quizID string) error {
	quiz, err := s.quizzes.LoadActive(ctx, strings.TrimSpace(quizID))
	if err != nil {
		return err
	}
	if err := s.analytics.IncrementViews(ctx, quiz.ID); err != nil {
		return domain.NewPersistenceError("Failed to record quiz view", err)
	}
	return nil
}

func (s *submissionService) RedactResults(ctx context.Context, shopID, email string) (int64, error) {
	email = normalizeEmail(email)
	if errs := validation.ValidateVar("email", email, "required,max=254,basic_email"); len(errs) > 0 {
		return 0, errs
	}

	deleted, err := s.results.DeleteByEmail(ctx, shopID, email)
	if err != nil {
		return 0, domain.NewPersistenceError("Failed to delete results", err)
	}
	logger.Get().Info("Service: redacted shopper results",
		zap.String("shop_id", shopID), zap.Int64("deleted", deleted))
	return deleted, nil
}

func (s *submissionService) GetAnalytics(ctx context.Context, shopID, quizID string) (*domain.QuizAnalytics, error) {
	quiz, err := s.quizzes.Load(ctx, quizID)
	if err != nil {
		return nil, err
	}
	// Other shops' quizzes are reported as missing.
	if quiz == nil || quiz.ShopID != shopID {
		return nil, domain.NewNotFoundError("Quiz not found")
	}

	analytics, err := s.analytics.GetByQuizID(ctx, quiz.ID)
	if err != nil {
		return nil, domain.NewPersistenceError("Failed to read analytics", err)
	}
	if analytics == nil {
		analytics = &domain.QuizAnalytics{QuizID: quiz.ID}
	}
	return analytics, nil
}

func (s *submissionService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func outcomeFor(err error) string {
	if domain.IsCode(err, domain.CodeQuizNotFound) {
		return metrics.OutcomeInvalid
	}
	return metrics.OutcomeError
}
