package domain

import (
	"time"
)

// QuizStatus is the editor-controlled lifecycle state of a quiz.
type QuizStatus string

const (
	QuizStatusDraft  QuizStatus = "draft"
	QuizStatusActive QuizStatus = "active"
)

// Quiz represents a storefront quiz together with its question tree.
type Quiz struct {
	ID        string
	ShopID    string
	Title     string
	Status    QuizStatus
	Questions []*Question
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive reports whether shoppers may submit the quiz.
func (q *Quiz) IsActive() bool {
	return q != nil && q.Status == QuizStatusActive
}

// Question looks up a question by id. Display order is irrelevant here.
func (q *Quiz) Question(id string) *Question {
	for _, question := range q.Questions {
		if question.ID == id {
			return question
		}
	}
	return nil
}

// Question represents one step of a quiz
type Question struct {
	ID            string
	QuizID        string
	Text          string
	Position      int
	ConditionRule string // opaque to matching
	Options       []*QuestionOption
}

// Option looks up an option of this question by id.
func (q *Question) Option(id string) *QuestionOption {
	for _, option := range q.Options {
		if option.ID == id {
			return option
		}
	}
	return nil
}

// QuestionOption is a selectable answer. RawRule holds the editor's matching payload as stored.
type QuestionOption struct {
	ID         string
	QuestionID string
	Text       string
	Position   int
	RawRule    string
}

// MatchingRule decodes RawRule. See ParseMatchingRule for the tolerated shapes.
func (o *QuestionOption) MatchingRule() (MatchingRule, error) {
	return ParseMatchingRule([]byte(o.RawRule))
}

// Answer is one (question, option) pair chosen by a shopper.
type Answer struct {
	QuestionID string `json:"questionId"`
	OptionID   string `json:"optionId"`
}

// QuestionTiming is the optional time a shopper spent on one question.
type QuestionTiming struct {
	QuestionID  string `json:"questionId"`
	TimeSpentMs int64  `json:"timeSpentMs"`
}
