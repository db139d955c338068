package models

import (
	"database/sql"
	"time"
)

type Quiz struct {
	ID        string    `db:"id"`
	ShopID    string    `db:"shop_id"`
	Title     string    `db:"title"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Question struct {
	ID            string         `db:"id"`
	QuizID        string         `db:"quiz_id"`
	Text          string         `db:"question_text"`
	SortOrder     int            `db:"sort_order"`
	ConditionRule sql.NullString `db:"condition_rule"`
}

type QuestionOption struct {
	ID           string         `db:"id"`
	QuestionID   string         `db:"question_id"`
	Text         string         `db:"option_text"`
	SortOrder    int            `db:"sort_order"`
	MatchingRule sql.NullString `db:"matching_rule"`
}
