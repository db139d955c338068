package repository

import (
	"context"
	"fmt"
	"time"

	"quiz-match/internal/domain"
	"quiz-match/internal/repository/models"
	"quiz-match/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxResultRepository struct {
	db DBTX
}

func NewSQLXResultRepository(db *sqlx.DB) domain.ResultRepository {
	return &sqlxResultRepository{db: db}
}

// Create inserts the result. Timestamps default to now.
func (r *sqlxResultRepository) Create(ctx context.Context, result *domain.QuizResult) error {
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	result.CreatedAt = util.DBTime(result.CreatedAt)
	result.UpdatedAt = result.CreatedAt

	m := fromDomainResult(result)
	exec := GetExecutor(ctx, r.db)
	_, err := exec.ExecContext(ctx, exec.Rebind(
		`INSERT INTO quiz_results (id, quiz_id, email, answers, recommended_products, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		m.ID, m.QuizID, m.Email, m.Answers, m.RecommendedProducts, m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create quiz result: %w", err)
	}
	return nil
}

// DeleteByEmail only touches results of quizzes the shop owns.
func (r *sqlxResultRepository) DeleteByEmail(ctx context.Context, shopID, email string) (int64, error) {
	exec := GetExecutor(ctx, r.db)
	res, err := exec.ExecContext(ctx, exec.Rebind(
		`DELETE FROM quiz_results
		 WHERE email = ? AND quiz_id IN (SELECT id FROM quizzes WHERE shop_id = ?)`), email, shopID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete quiz results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n, nil
}

func fromDomainResult(r *domain.QuizResult) *models.QuizResult {
	return &models.QuizResult{
		ID:                  r.ID,
		QuizID:              r.QuizID,
		Email:               util.StringToNullString(r.Email),
		Answers:             models.JSONList[domain.Answer](r.Answers),
		RecommendedProducts: models.JSONList[domain.RecommendedProduct](r.RecommendedProducts),
		CreatedAt:           r.CreatedAt,
		UpdatedAt:           r.UpdatedAt,
	}
}
