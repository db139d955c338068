package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/repository/models"
	"quiz-match/internal/util"

	"github.com/jmoiron/sqlx"
)

// upsertQueries holds one dialect's increment statements. Both dialects take the
// same arguments in the same order.
type upsertQueries struct {
	views       string // quiz_id, now
	completions string // quiz_id, email increment, now
	timing      string // quiz_id, question_id, time_ms, now
}

var ansiUpserts = upsertQueries{
	views: `INSERT INTO quiz_analytics (quiz_id, total_views, total_completions, email_capture_count, updated_at)
		VALUES (?, 1, 0, 0, ?)
		ON CONFLICT (quiz_id) DO UPDATE SET
			total_views = quiz_analytics.total_views + 1,
			updated_at = excluded.updated_at`,
	completions: `INSERT INTO quiz_analytics (quiz_id, total_views, total_completions, email_capture_count, updated_at)
		VALUES (?, 0, 1, ?, ?)
		ON CONFLICT (quiz_id) DO UPDATE SET
			total_completions = quiz_analytics.total_completions + 1,
			email_capture_count = quiz_analytics.email_capture_count + excluded.email_capture_count,
			updated_at = excluded.updated_at`,
	timing: `INSERT INTO question_analytics (quiz_id, question_id, answer_count, total_time_ms, updated_at)
		VALUES (?, ?, 1, ?, ?)
		ON CONFLICT (quiz_id, question_id) DO UPDATE SET
			answer_count = question_analytics.answer_count + 1,
			total_time_ms = question_analytics.total_time_ms + excluded.total_time_ms,
			updated_at = excluded.updated_at`,
}

var oracleUpserts = upsertQueries{
	views: `MERGE INTO quiz_analytics t
		USING (SELECT ? AS quiz_id, ? AS now_ts FROM dual) s
		ON (t.quiz_id = s.quiz_id)
		WHEN MATCHED THEN UPDATE SET t.total_views = t.total_views + 1, t.updated_at = s.now_ts
		WHEN NOT MATCHED THEN INSERT (quiz_id, total_views, total_completions, email_capture_count, updated_at)
			VALUES (s.quiz_id, 1, 0, 0, s.now_ts)`,
	completions: `MERGE INTO quiz_analytics t
		USING (SELECT ? AS quiz_id, ? AS email_inc, ? AS now_ts FROM dual) s
		ON (t.quiz_id = s.quiz_id)
		WHEN MATCHED THEN UPDATE SET
			t.total_completions = t.total_completions + 1,
			t.email_capture_count = t.email_capture_count + s.email_inc,
			t.updated_at = s.now_ts
		WHEN NOT MATCHED THEN INSERT (quiz_id, total_views, total_completions, email_capture_count, updated_at)
			VALUES (s.quiz_id, 0, 1, s.email_inc, s.now_ts)`,
	timing: `MERGE INTO question_analytics t
		USING (SELECT ? AS quiz_id, ? AS question_id, ? AS time_ms, ? AS now_ts FROM dual) s
		ON (t.quiz_id = s.quiz_id AND t.question_id = s.question_id)
		WHEN MATCHED THEN UPDATE SET
			t.answer_count = t.answer_count + 1,
			t.total_time_ms = t.total_time_ms + s.time_ms,
			t.updated_at = s.now_ts
		WHEN NOT MATCHED THEN INSERT (quiz_id, question_id, answer_count, total_time_ms, updated_at)
			VALUES (s.quiz_id, s.question_id, 1, s.time_ms, s.now_ts)`,
}

func upsertsFor(driverName string) upsertQueries {
	if driverName == "oracle" {
		return oracleUpserts
	}
	return ansiUpserts
}

type sqlxAnalyticsRepository struct {
	db  DBTX
	now func() time.Time
}

func NewSQLXAnalyticsRepository(db *sqlx.DB) domain.AnalyticsRepository {
	return &sqlxAnalyticsRepository{db: db, now: time.Now}
}

func (r *sqlxAnalyticsRepository) IncrementViews(ctx context.Context, quizID string) error {
	exec := GetExecutor(ctx, r.db)
	q := upsertsFor(exec.DriverName()).views
	if _, err := exec.ExecContext(ctx, exec.Rebind(q), quizID, util.DBTime(r.now())); err != nil {
		return fmt.Errorf("failed to increment views for quiz %s: %w", quizID, err)
	}
	return nil
}

func (r *sqlxAnalyticsRepository) IncrementCompletions(ctx context.Context, quizID string, emailCaptured bool) error {
	emailInc := 0
	if emailCaptured {
		emailInc = 1
	}
	exec := GetExecutor(ctx, r.db)
	q := upsertsFor(exec.DriverName()).completions
	if _, err := exec.ExecContext(ctx, exec.Rebind(q), quizID, emailInc, util.DBTime(r.now())); err != nil {
		return fmt.Errorf("failed to increment completions for quiz %s: %w", quizID, err)
	}
	return nil
}

func (r *sqlxAnalyticsRepository) RecordQuestionTiming(ctx context.Context, quizID string, timing domain.QuestionTiming) error {
	exec := GetExecutor(ctx, r.db)
	q := upsertsFor(exec.DriverName()).timing
	_, err := exec.ExecContext(ctx, exec.Rebind(q), quizID, timing.QuestionID, timing.TimeSpentMs, util.DBTime(r.now()))
	if err != nil {
		return fmt.Errorf("failed to record timing for question %s: %w", timing.QuestionID, err)
	}
	return nil
}

func (r *sqlxAnalyticsRepository) GetByQuizID(ctx context.Context, quizID string) (*domain.QuizAnalytics, error) {
	var m models.QuizAnalytics
	exec := GetExecutor(ctx, r.db)
	err := exec.GetContext(ctx, &m, exec.Rebind(
		`SELECT quiz_id, total_views, total_completions, email_capture_count, updated_at
		 FROM quiz_analytics WHERE quiz_id = ?`), quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analytics for quiz %s: %w", quizID, err)
	}
	return &domain.QuizAnalytics{
		QuizID:            m.QuizID,
		TotalViews:        m.TotalViews,
		TotalCompletions:  m.TotalCompletions,
		EmailCaptureCount: m.EmailCaptureCount,
		UpdatedAt:         m.UpdatedAt,
	}, nil
}
