package matching

import (
	"regexp"

	"quiz-match/internal/domain"
	"quiz-match/internal/logger"

	"go.uber.org/zap"
)

var budgetQuestionPattern = regexp.MustCompile(`(?i)budget|price|spend|cost|afford|willing to pay`)

// IsBudgetQuestion classifies a question by its wording.
func IsBudgetQuestion(text string) bool {
	return budgetQuestionPattern.MatchString(text)
}

// ExtractCriteria unions the matching rules of every selected option.
//
// Answers referencing unknown questions or options are ignored. When several answers carry a
// budget, the last one in request order wins; this is a known simplification.
func ExtractCriteria(quiz *domain.Quiz, answers []domain.Answer) domain.MatchCriteria {
	var criteria domain.MatchCriteria
	if quiz == nil {
		return criteria
	}

	tags := newOrderedSet()
	types := newOrderedSet()
	productIDs := newOrderedSet()

	for _, answer := range answers {
		question := quiz.Question(answer.QuestionID)
		if question == nil {
			continue
		}
		option := question.Option(answer.OptionID)
		if option == nil {
			continue
		}

		budgetSet := false
		rule, err := option.MatchingRule()
		if err != nil {
			logger.Get().Warn("Skipping option with malformed matching rule",
				zap.String("quiz_id", quiz.ID),
				zap.String("question_id", question.ID),
				zap.String("option_id", option.ID),
				zap.Error(err),
			)
		} else if !rule.IsEmpty() {
			if rule.Version > domain.CurrentMatchingRuleVersion {
				logger.Get().Debug("Matching rule is newer than this build, applying known fields",
					zap.String("option_id", option.ID),
					zap.Int("version", rule.Version),
				)
			}
			tags.add(rule.Tags...)
			types.add(rule.Types...)
			productIDs.add(rule.ExactProductIDs...)
			if rule.BudgetMin != nil || rule.BudgetMax != nil {
				criteria.MinPrice, criteria.MaxPrice = rule.BudgetMin, rule.BudgetMax
				budgetSet = true
			}
		}

		if !budgetSet && IsBudgetQuestion(question.Text) {
			if pr := ParsePriceRange(option.Text); pr != nil {
				criteria.MinPrice, criteria.MaxPrice = pr.Min, pr.Max
			}
		}
	}

	criteria.Tags = tags.values()
	criteria.Types = types.values()
	criteria.ExactProductIDs = productIDs.values()
	return criteria
}

// orderedSet keeps first-seen order so queries are deterministic.
type orderedSet struct {
	seen  map[string]struct{}
	items []string
}

func newOrderedSet() *orderedSet {
	return &orderedSet{seen: make(map[string]struct{})}
}

func (s *orderedSet) add(values ...string) {
	for _, v := range values {
		if _, ok := s.seen[v]; ok {
			continue
		}
		s.seen[v] = struct{}{}
		s.items = append(s.items, v)
	}
}

func (s *orderedSet) values() []string {
	return s.items
}
