package models

import (
	"encoding/json"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Selection is the answer to one option-group question. Price is the
// aggregate surcharge of the chosen option(s).
type Selection struct {
	QuestionID string   `bson:"question_id" json:"questionId"`
	Question   string   `bson:"question" json:"question"`
	Answer     string   `bson:"answer,omitempty" json:"-"`
	Answers    []string `bson:"answers,omitempty" json:"-"`
	Multiple   bool     `bson:"multiple" json:"-"`
	Price      *float64 `bson:"price,omitempty" json:"price,omitempty"`
}

type selectionJSON struct {
	QuestionID string          `json:"questionId"`
	Question   string          `json:"question"`
	Answer     json.RawMessage `json:"answer"`
	Price      *float64        `json:"price,omitempty"`
}

// MarshalJSON writes the answer as a string, or a list for multi-select.
func (s Selection) MarshalJSON() ([]byte, error) {
	var answer interface{} = s.Answer
	if s.Multiple {
		answers := s.Answers
		if answers == nil {
			answers = []string{}
		}
		answer = answers
	}
	raw, err := json.Marshal(answer)
	if err != nil {
		return nil, err
	}
	return json.Marshal(selectionJSON{QuestionID: s.QuestionID, Question: s.Question, Answer: raw, Price: s.Price})
}

func (s *Selection) UnmarshalJSON(data []byte) error {
	var aux selectionJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*s = Selection{QuestionID: aux.QuestionID, Question: aux.Question, Price: aux.Price}
	if len(aux.Answer) == 0 || string(aux.Answer) == "null" {
		return nil
	}
	if aux.Answer[0] == '[' {
		s.Multiple = true
		return json.Unmarshal(aux.Answer, &s.Answers)
	}
	return json.Unmarshal(aux.Answer, &s.Answer)
}

// AnswerValues returns the chosen answer(s) as a list.
func (s Selection) AnswerValues() []string {
	if s.Multiple {
		return s.Answers
	}
	return []string{s.Answer}
}

// Equal compares question, answer value(s) and surcharge.
func (s Selection) Equal(other Selection) bool {
	if s.QuestionID != other.QuestionID || s.Question != other.Question || s.Multiple != other.Multiple {
		return false
	}
	if s.Multiple {
		if len(s.Answers) != len(other.Answers) {
			return false
		}
		for i := range s.Answers {
			if s.Answers[i] != other.Answers[i] {
				return false
			}
		}
	} else if s.Answer != other.Answer {
		return false
	}
	switch {
	case s.Price == nil && other.Price == nil:
		return true
	case s.Price == nil || other.Price == nil:
		return false
	}
	return *s.Price == *other.Price
}

// CartMenuItem is the snapshot of a menu item held in a cart line.
type CartMenuItem struct {
	ID    primitive.ObjectID `bson:"id" json:"id"`
	Title string             `bson:"title" json:"title"`
	Price float64            `bson:"price" json:"price"`
}

type CartLineItem struct {
	MenuItem            CartMenuItem `bson:"menu_item" json:"menuItem"`
	Quantity            int          `bson:"quantity" json:"quantity"`
	CustomWishes        string       `bson:"custom_wishes" json:"customWishes"`
	KeuzemenuSelections []Selection  `bson:"keuzemenu_selections" json:"keuzemenuSelections"`
}

// SameConfiguration reports whether two lines can be merged into one.
func (l CartLineItem) SameConfiguration(other CartLineItem) bool {
	if l.MenuItem.ID != other.MenuItem.ID || l.CustomWishes != other.CustomWishes {
		return false
	}
	if len(l.KeuzemenuSelections) != len(other.KeuzemenuSelections) {
		return false
	}
	for i := range l.KeuzemenuSelections {
		if !l.KeuzemenuSelections[i].Equal(other.KeuzemenuSelections[i]) {
			return false
		}
	}
	return true
}

type CustomerInfo struct {
	Name           string         `bson:"name" json:"name"`
	Email          string         `bson:"email" json:"email"`
	Phone          string         `bson:"phone" json:"phone"`
	Address        string         `bson:"address" json:"address"`
	HouseNumber    string         `bson:"house_number" json:"houseNumber"`
	PostalCode     string         `bson:"postal_code" json:"postalCode"`
	City           string         `bson:"city" json:"city"`
	DeliveryMethod DeliveryMethod `bson:"delivery_method" json:"deliveryMethod"`
	PaymentMethod  PaymentMethod  `bson:"payment_method" json:"paymentMethod"`
}

// DefaultCustomerInfo is the blank customer: delivery, paid online.
func DefaultCustomerInfo() CustomerInfo {
	return CustomerInfo{DeliveryMethod: DeliveryDelivery, PaymentMethod: PaymentOnline}
}

// CustomerPatch holds the fields to overwrite; nil fields are kept.
type CustomerPatch struct {
	Name           *string         `json:"name"`
	Email          *string         `json:"email" validate:"omitempty,email"`
	Phone          *string         `json:"phone"`
	Address        *string         `json:"address"`
	HouseNumber    *string         `json:"houseNumber"`
	PostalCode     *string         `json:"postalCode"`
	City           *string         `json:"city"`
	DeliveryMethod *DeliveryMethod `json:"deliveryMethod" validate:"omitempty,eq=delivery|eq=pickup"`
	PaymentMethod  *PaymentMethod  `json:"paymentMethod" validate:"omitempty,eq=online|eq=cash|eq=cash_pin"`
}

// Merge applies the patch shallowly on top of c.
func (p CustomerPatch) Merge(c CustomerInfo) CustomerInfo {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	set(&c.Name, p.Name)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.Address, p.Address)
	set(&c.HouseNumber, p.HouseNumber)
	set(&c.PostalCode, p.PostalCode)
	set(&c.City, p.City)
	if p.DeliveryMethod != nil {
		c.DeliveryMethod = *p.DeliveryMethod
	}
	if p.PaymentMethod != nil {
		c.PaymentMethod = *p.PaymentMethod
	}
	return c
}

// CartSnapshot is the persisted state of one shopper's cart and details.
type CartSnapshot struct {
	SessionID string         `bson:"_id" json:"sessionId"`
	Items     []CartLineItem `bson:"items" json:"items"`
	Customer  CustomerInfo   `bson:"customer" json:"customer"`
	UpdatedAt time.Time      `bson:"updated_at" json:"updatedAt"`
}
