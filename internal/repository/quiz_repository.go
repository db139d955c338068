package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"quiz-match/internal/domain"
	"quiz-match/internal/repository/models"
	"quiz-match/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxQuizRepository struct {
	db DBTX
}

func NewSQLXQuizRepository(db *sqlx.DB) domain.QuizRepository {
	return &sqlxQuizRepository{db: db}
}

// GetQuizWithQuestions loads the quiz row, then its questions and options in two queries.
func (r *sqlxQuizRepository) GetQuizWithQuestions(ctx context.Context, quizID string) (*domain.Quiz, error) {
	exec := GetExecutor(ctx, r.db)

	var quiz models.Quiz
	err := exec.GetContext(ctx, &quiz, exec.Rebind(
		`SELECT id, shop_id, title, status, created_at, updated_at FROM quizzes WHERE id = ?`), quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", quizID, err)
	}

	var questions []models.Question
	err = exec.SelectContext(ctx, &questions, exec.Rebind(
		`SELECT id, quiz_id, question_text, sort_order, condition_rule
		 FROM questions WHERE quiz_id = ? ORDER BY sort_order, id`), quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}

	var options []models.QuestionOption
	err = exec.SelectContext(ctx, &options, exec.Rebind(
		`SELECT o.id, o.question_id, o.option_text, o.sort_order, o.matching_rule
		 FROM question_options o JOIN questions q ON q.id = o.question_id
		 WHERE q.quiz_id = ? ORDER BY o.sort_order, o.id`), quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to get options for quiz %s: %w", quizID, err)
	}

	return toDomainQuiz(&quiz, questions, options), nil
}

func toDomainQuiz(q *models.Quiz, questions []models.Question, options []models.QuestionOption) *domain.Quiz {
	quiz := &domain.Quiz{
		ID:        q.ID,
		ShopID:    q.ShopID,
		Title:     q.Title,
		Status:    domain.QuizStatus(q.Status),
		Questions: make([]*domain.Question, 0, len(questions)),
		CreatedAt: q.CreatedAt,
		UpdatedAt: q.UpdatedAt,
	}

	byID := make(map[string]*domain.Question, len(questions))
	for _, mq := range questions {
		question := &domain.Question{
			ID:            mq.ID,
			QuizID:        mq.QuizID,
			Text:          mq.Text,
			Position:      mq.SortOrder,
			ConditionRule: util.NullStringToString(mq.ConditionRule),
		}
		byID[mq.ID] = question
		quiz.Questions = append(quiz.Questions, question)
	}

	for _, mo := range options {
		question, ok := byID[mo.QuestionID]
		if !ok {
			continue
		}
		question.Options = append(question.Options, &domain.QuestionOption{
			ID:         mo.ID,
			QuestionID: mo.QuestionID,
			Text:       mo.Text,
			Position:   mo.SortOrder,
			RawRule:    util.NullStringToString(mo.MatchingRule),
		})
	}
	return quiz
}
