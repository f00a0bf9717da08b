package cart

import (
	"strings"

	"go-restaurant-ordering/models"

	"github.com/shopspring/decimal"
)

// SelectionRequest is a shopper's raw answer to one question. Multi-select
// questions read Answers; the others read Answer.
type SelectionRequest struct {
	QuestionID string   `json:"questionId" validate:"required"`
	Answer     string   `json:"answer"`
	Answers    []string `json:"answers"`
}

type ItemRequest struct {
	MenuItemID   string             `json:"menuItemId" validate:"required"`
	Quantity     int                `json:"quantity" validate:"required,gt=0"`
	CustomWishes string             `json:"customWishes" validate:"max=500"`
	Selections   []SelectionRequest `json:"selections" validate:"dive"`
}

// Configure turns a shopper's answers into a priced cart line. Surcharges
// come from the option groups, never from the request. Selections are
// returned in question order so equal configurations merge.
func Configure(item models.MenuItem, groups []models.OptionGroup, req ItemRequest) (models.CartLineItem, error) {
	if req.Quantity <= 0 {
		return models.CartLineItem{}, newValidationError("quantity", "must be at least 1")
	}

	answered := make(map[string]SelectionRequest, len(req.Selections))
	for _, sel := range req.Selections {
		if _, dup := answered[sel.QuestionID]; dup {
			return models.CartLineItem{}, newValidationError("selections", "question %q answered twice", sel.QuestionID)
		}
		answered[sel.QuestionID] = sel
	}

	selections := make([]models.Selection, 0, len(answered))
	for _, group := range groups {
		for _, question := range group.Questions {
			sel, ok := answered[question.ID]
			if !ok {
				continue
			}
			delete(answered, question.ID)
			selection, err := answer(question, sel)
			if err != nil {
				return models.CartLineItem{}, err
			}
			if selection != nil {
				selections = append(selections, *selection)
			}
		}
	}
	for _, sel := range req.Selections {
		if _, left := answered[sel.QuestionID]; left {
			return models.CartLineItem{}, newValidationError("selections", "unknown question %q", sel.QuestionID)
		}
	}

	return models.CartLineItem{
		MenuItem:            models.CartMenuItem{ID: item.ID, Title: item.Title, Price: item.Price},
		Quantity:            req.Quantity,
		CustomWishes:        strings.TrimSpace(req.CustomWishes),
		KeuzemenuSelections: selections,
	}, nil
}

// answer returns nil for a blank answer, which leaves the question unanswered.
func answer(q models.Question, sel SelectionRequest) (*models.Selection, error) {
	out := models.Selection{QuestionID: q.ID, Question: q.Question}
	switch q.QuestionType {
	case models.QuestionText:
		text := strings.TrimSpace(sel.Answer)
		if text == "" {
			return nil, nil
		}
		out.Answer = text
		return &out, nil

	case models.QuestionMultiple:
		chosen := sel.Answers
		if len(chosen) == 0 && sel.Answer != "" {
			chosen = []string{sel.Answer}
		}
		if len(chosen) == 0 {
			return nil, nil
		}
		seen := make(map[string]bool, len(chosen))
		total := decimal.Zero
		for _, label := range chosen {
			if seen[label] {
				return nil, newValidationError("selections", "option %q chosen twice for %q", label, q.Question)
			}
			seen[label] = true
			option, ok := findOption(q, label)
			if !ok {
				return nil, newValidationError("selections", "unknown option %q for %q", label, q.Question)
			}
			total = total.Add(decimal.NewFromFloat(option.Surcharge()))
		}
		out.Multiple = true
		out.Answers = append([]string(nil), chosen...)
		out.Price = surcharge(total)
		return &out, nil

	default:
		if len(sel.Answers) > 1 {
			return nil, newValidationError("selections", "%q takes a single answer", q.Question)
		}
		label := sel.Answer
		if label == "" && len(sel.Answers) == 1 {
			label = sel.Answers[0]
		}
		if label == "" {
			return nil, nil
		}
		option, ok := findOption(q, label)
		if !ok {
			return nil, newValidationError("selections", "unknown option %q for %q", label, q.Question)
		}
		out.Answer = label
		out.Price = surcharge(decimal.NewFromFloat(option.Surcharge()))
		return &out, nil
	}
}

func findOption(q models.Question, label string) (models.Option, bool) {
	for _, option := range q.Options {
		if option.Label == label {
			return option, true
		}
	}
	return models.Option{}, false
}

func surcharge(total decimal.Decimal) *float64 {
	if !total.IsPositive() {
		return nil
	}
	v, _ := total.Round(2).Float64()
	return &v
}
