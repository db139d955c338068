package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"quiz-match/internal/config"
	"quiz-match/internal/domain"
	"quiz-match/internal/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type submissionFixture struct {
	loader    *MockQuizLoader
	usage     *MockUsageService
	catalog   *MockCatalogService
	results   *MockResultRepository
	analytics *MockAnalyticsRepository
	tx        *MockTransactionManager
	notifier  *MockNotifier
	svc       SubmissionService
}

func newSubmissionFixture() *submissionFixture {
	f := &submissionFixture{
		loader:    new(MockQuizLoader),
		usage:     new(MockUsageService),
		catalog:   new(MockCatalogService),
		results:   new(MockResultRepository),
		analytics: new(MockAnalyticsRepository),
		tx:        new(MockTransactionManager),
		notifier:  new(MockNotifier),
	}
	f.svc = NewSubmissionService(
		f.loader,
		f.usage,
		NewRecommendationService(f.catalog, time.Second),
		f.results,
		f.analytics,
		f.tx,
		f.notifier,
		config.SubmissionConfig{TransactionTimeout: time.Second, SideEffectTimeout: time.Second},
	)
	return f
}

// expectAllowed wires the happy path up to and including the commit.
func (f *submissionFixture) expectAllowed() {
	f.loader.On("LoadActive", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	f.usage.On("CheckAndAdvance", mock.Anything, "shop-1").
		Return(&domain.UsageCheck{Allowed: true, CurrentUsage: 4, Limit: 100, Tier: domain.TierFree}, nil)
	f.tx.On("WithTransaction", mock.Anything).Return(nil)
}

func budgetStyleRequest() *dto.SubmitQuizRequest {
	return &dto.SubmitQuizRequest{
		QuizID: " quiz-1 ",
		Email:  "  Shopper@Example.COM ",
		Answers: []dto.AnswerRequest{
			{QuestionID: "q-budget", OptionID: "b-mid"},
			{QuestionID: "q-style", OptionID: "s-casual"},
		},
		QuestionTimings: []dto.QuestionTimingRequest{
			{QuestionID: "q-style", TimeSpentMs: 1200},
			{QuestionID: "q-unknown", TimeSpentMs: 50},
		},
	}
}

func (f *submissionFixture) shutdown(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, f.svc.Shutdown(ctx))
}

func TestSubmit_BudgetAndStyleEndToEnd(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.MatchedBy(func(q domain.CatalogQuery) bool {
		return assert.ObjectsAreEqual([]string{"casual"}, q.Tags) &&
			q.MinPrice != nil && *q.MinPrice == 50 &&
			q.MaxPrice != nil && *q.MaxPrice == 150
	})).Return([]domain.CatalogProduct{product("tee", 60), product("boots", 400), product("hoodie", 150)}, nil)

	var saved *domain.QuizResult
	f.results.On("Create", mock.Anything, mock.AnythingOfType("*domain.QuizResult")).
		Run(func(args mock.Arguments) { saved = args.Get(1).(*domain.QuizResult) }).
		Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, "quiz-1", true).Return(nil)
	f.analytics.On("RecordQuestionTiming", mock.Anything, "quiz-1", domain.QuestionTiming{QuestionID: "q-style", TimeSpentMs: 1200}).Return(nil)
	f.usage.On("IncrementCompletion", mock.Anything, "shop-1").Return(nil)
	f.notifier.On("Deliver", mock.Anything, "shop-1", domain.EventQuizCompleted, mock.MatchedBy(func(p map[string]interface{}) bool {
		return p["quizId"] == "quiz-1" && p["emailCaptured"] == true && p["recommendedProducts"] == 2
	})).Return(nil)

	resp, err := f.svc.Submit(context.Background(), budgetStyleRequest())
	require.NoError(t, err)
	f.shutdown(t)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ResultID)
	assert.Equal(t, []string{"tee", "hoodie"}, ids(resp.RecommendedProducts))

	require.NotNil(t, saved)
	assert.Equal(t, resp.ResultID, saved.ID)
	assert.Equal(t, "shopper@example.com", saved.Email)
	assert.Equal(t, "quiz-1", saved.QuizID)
	assert.Len(t, saved.Answers, 2)
	assert.Equal(t, resp.RecommendedProducts, saved.RecommendedProducts)

	f.analytics.AssertNumberOfCalls(t, "RecordQuestionTiming", 1)
	f.usage.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

func TestSubmit_ValidationRejectsBeforeAnyWork(t *testing.T) {
	f := newSubmissionFixture()
	req := &dto.SubmitQuizRequest{QuizID: "quiz-1", Email: "nope", Answers: nil}

	_, err := f.svc.Submit(context.Background(), req)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"email", "answers"}, fields)
	f.loader.AssertNotCalled(t, "LoadActive", mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestSubmit_QuizNotFound(t *testing.T) {
	f := newSubmissionFixture()
	f.loader.On("LoadActive", mock.Anything, "quiz-1").Return(nil, domain.NewQuizNotFoundError("quiz-1"))

	_, err := f.svc.Submit(context.Background(), budgetStyleRequest())

	assert.True(t, domain.IsCode(err, domain.CodeQuizNotFound))
	f.usage.AssertNotCalled(t, "CheckAndAdvance", mock.Anything, mock.Anything)
}

func TestSubmit_LimitReached(t *testing.T) {
	f := newSubmissionFixture()
	f.loader.On("LoadActive", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	f.usage.On("CheckAndAdvance", mock.Anything, "shop-1").Return(&domain.UsageCheck{
		Allowed:      false,
		Reason:       "Monthly completion limit reached (100/100) for the free plan",
		CurrentUsage: 100,
		Limit:        100,
		Tier:         domain.TierFree,
	}, nil)

	_, err := f.svc.Submit(context.Background(), budgetStyleRequest())

	var de *domain.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, domain.CodeLimitReached, de.Code)
	assert.Equal(t, 100, de.Context["currentUsage"])
	assert.Equal(t, 100, de.Context["limit"])
	assert.Equal(t, "free", de.Context["tier"])
	f.catalog.AssertNotCalled(t, "SearchProducts", mock.Anything, mock.Anything)
	f.tx.AssertNotCalled(t, "WithTransaction", mock.Anything)
}

func TestSubmit_UsageIncrementFailureStillSucceeds(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(1, 100), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, "quiz-1", true).Return(nil)
	f.analytics.On("RecordQuestionTiming", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.usage.On("IncrementCompletion", mock.Anything, "shop-1").Return(domain.NewSideEffectError("usage", errors.New("db gone")))
	f.notifier.On("Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("webhook 500"))

	resp, err := f.svc.Submit(context.Background(), budgetStyleRequest())
	f.shutdown(t)

	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.ResultID)
	f.notifier.AssertExpectations(t)
}

func TestSubmit_CommitFailureSkipsSideEffects(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(1, 100), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ORA-00060: deadlock"))

	_, err := f.svc.Submit(context.Background(), budgetStyleRequest())
	f.shutdown(t)

	assert.True(t, domain.IsCode(err, domain.CodePersistence))
	f.analytics.AssertNotCalled(t, "RecordQuestionTiming", mock.Anything, mock.Anything, mock.Anything)
	f.usage.AssertNotCalled(t, "IncrementCompletion", mock.Anything, mock.Anything)
	f.notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmit_CommitSurvivesCancelledRequest(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	f.catalog.On("AnyProducts", mock.Anything, mock.Anything).Return(nil, context.Canceled)
	f.results.On("Create", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, "quiz-1", true).Return(nil)
	f.analytics.On("RecordQuestionTiming", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.usage.On("IncrementCompletion", mock.MatchedBy(func(ctx context.Context) bool { return ctx.Err() == nil }), "shop-1").Return(nil)
	f.notifier.On("Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp, err := f.svc.Submit(ctx, budgetStyleRequest())
	f.shutdown(t)

	require.NoError(t, err)
	assert.Empty(t, resp.RecommendedProducts)
	assert.NotNil(t, resp.RecommendedProducts)
	f.usage.AssertExpectations(t)
}

func TestSubmit_NoEmailNoCapture(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(1, 100), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, "quiz-1", false).Return(nil).Once()
	f.usage.On("IncrementCompletion", mock.Anything, "shop-1").Return(nil)
	f.notifier.On("Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	req := budgetStyleRequest()
	req.Email = "   "
	req.QuestionTimings = nil
	_, err := f.svc.Submit(context.Background(), req)
	f.shutdown(t)

	require.NoError(t, err)
	f.analytics.AssertExpectations(t)
}

func TestShutdown_DropsLateNotifications(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(1, 100), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("RecordQuestionTiming", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.usage.On("IncrementCompletion", mock.Anything, "shop-1").Return(nil)

	f.shutdown(t)
	resp, err := f.svc.Submit(context.Background(), budgetStyleRequest())

	require.NoError(t, err)
	assert.True(t, resp.Success)
	f.notifier.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestShutdown_HonoursDeadline(t *testing.T) {
	f := newSubmissionFixture()
	f.expectAllowed()
	f.catalog.On("SearchProducts", mock.Anything, mock.Anything).Return(products(1, 100), nil)
	f.results.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("IncrementCompletions", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.analytics.On("RecordQuestionTiming", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	f.usage.On("IncrementCompletion", mock.Anything, "shop-1").Return(nil)
	release := make(chan struct{})
	f.notifier.On("Deliver", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { <-release }).
		Return(nil)

	_, err := f.svc.Submit(context.Background(), budgetStyleRequest())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, f.svc.Shutdown(ctx), context.DeadlineExceeded)

	close(release)
	f.shutdown(t)
}

func TestRecordView(t *testing.T) {
	f := newSubmissionFixture()
	f.loader.On("LoadActive", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	f.loader.On("LoadActive", mock.Anything, "draft").Return(nil, domain.NewQuizNotFoundError("draft"))
	f.analytics.On("IncrementViews", mock.Anything, "quiz-1").Return(nil).Once()

	require.NoError(t, f.svc.RecordView(context.Background(), "quiz-1"))
	assert.True(t, domain.IsCode(f.svc.RecordView(context.Background(), "draft"), domain.CodeQuizNotFound))
	f.analytics.AssertExpectations(t)
}

func TestRedactResults(t *testing.T) {
	f := newSubmissionFixture()
	f.results.On("DeleteByEmail", mock.Anything, "shop-1", "shopper@example.com").Return(int64(3), nil)

	deleted, err := f.svc.RedactResults(context.Background(), "shop-1", " Shopper@Example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)

	_, err = f.svc.RedactResults(context.Background(), "shop-1", "not-an-email")
	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "email", verrs[0].Field)
	f.results.AssertNumberOfCalls(t, "DeleteByEmail", 1)
}

func TestGetAnalytics(t *testing.T) {
	f := newSubmissionFixture()
	f.loader.On("Load", mock.Anything, "quiz-1").Return(activeQuiz(), nil)
	f.loader.On("Load", mock.Anything, "missing").Return(nil, nil)
	f.analytics.On("GetByQuizID", mock.Anything, "quiz-1").Return(nil, nil)

	analytics, err := f.svc.GetAnalytics(context.Background(), "shop-1", "quiz-1")
	require.NoError(t, err)
	assert.Equal(t, &domain.QuizAnalytics{QuizID: "quiz-1"}, analytics)

	_, err = f.svc.GetAnalytics(context.Background(), "shop-2", "quiz-1")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))

	_, err = f.svc.GetAnalytics(context.Background(), "shop-1", "missing")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}
