package dto

import "quiz-match/internal/domain"

// AnswerRequest is one selected option.
type AnswerRequest struct {
	QuestionID string `json:"questionId" validate:"required,max=64"`
	OptionID   string `json:"optionId" validate:"required,max=64"`
}

// QuestionTimingRequest is the optional time spent on one question.
type QuestionTimingRequest struct {
	QuestionID  string `json:"questionId" validate:"required,max=64"`
	TimeSpentMs int64  `json:"timeSpentMs" validate:"gte=0"`
}

// SubmitQuizRequest is the body of POST /api/quiz/submit.
// @Description Quiz completion submitted by a shopper
type SubmitQuizRequest struct {
	QuizID          string                  `json:"quizId" validate:"required,max=64"`
	Email           string                  `json:"email,omitempty" validate:"omitempty,max=254,basic_email"`
	Answers         []AnswerRequest         `json:"answers" validate:"required,min=1,max=50,dive"`
	QuestionTimings []QuestionTimingRequest `json:"questionTimings,omitempty" validate:"omitempty,max=50,dive"`
}

// DomainAnswers converts the request answers, keeping request order.
func (r *SubmitQuizRequest) DomainAnswers() []domain.Answer {
	answers := make([]domain.Answer, 0, len(r.Answers))
	for _, a := range r.Answers {
		answers = append(answers, domain.Answer{QuestionID: a.QuestionID, OptionID: a.OptionID})
	}
	return answers
}

func (r *SubmitQuizRequest) DomainTimings() []domain.QuestionTiming {
	timings := make([]domain.QuestionTiming, 0, len(r.QuestionTimings))
	for _, t := range r.QuestionTimings {
		timings = append(timings, domain.QuestionTiming{QuestionID: t.QuestionID, TimeSpentMs: t.TimeSpentMs})
	}
	return timings
}

// SubmitQuizResponse is returned for a committed submission.
// @Description Committed submission with its recommendations
type SubmitQuizResponse struct {
	Success             bool                        `json:"success"`
	ResultID            string                      `json:"resultId"`
	RecommendedProducts []domain.RecommendedProduct `json:"recommendedProducts"`
}
