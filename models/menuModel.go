package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Category struct {
	Title string `bson:"title" json:"title" validate:"required"`
	Slug  string `bson:"slug" json:"slug" validate:"required"`
}

type MenuItem struct {
	ID           primitive.ObjectID   `bson:"_id" json:"id"`
	Title        string               `bson:"title" json:"title" validate:"required,min=2,max=100"`
	Slug         string               `bson:"slug" json:"slug"`
	Description  string               `bson:"description" json:"description"`
	Price        float64              `bson:"price" json:"price" validate:"gte=0"`
	Image        string               `bson:"image,omitempty" json:"image,omitempty"`
	Category     Category             `bson:"category" json:"menuCategory"`
	OptionGroups []primitive.ObjectID `bson:"option_groups" json:"keuzemenus"`
	CreatedAt    time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updated_at" json:"updatedAt"`
}

type QuestionType string

const (
	QuestionSingle   QuestionType = "radio"
	QuestionMultiple QuestionType = "checkbox"
	QuestionText     QuestionType = "text"
)

type Option struct {
	Label string   `bson:"label" json:"label" validate:"required"`
	Price *float64 `bson:"price,omitempty" json:"price,omitempty"`
}

// Surcharge is the option price, zero when the option is free.
func (o Option) Surcharge() float64 {
	if o.Price == nil {
		return 0
	}
	return *o.Price
}

type Question struct {
	ID           string       `bson:"id" json:"id" validate:"required"`
	Question     string       `bson:"question" json:"question" validate:"required"`
	QuestionType QuestionType `bson:"question_type" json:"questionType" validate:"required,eq=radio|eq=checkbox|eq=text"`
	Options      []Option     `bson:"options" json:"options" validate:"dive"`
}

// OptionGroup is a reusable "keuzemenu" that menu items can reference.
type OptionGroup struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	Title       string             `bson:"title" json:"title" validate:"required"`
	Description string             `bson:"description" json:"description"`
	Questions   []Question         `bson:"questions" json:"questions" validate:"dive"`
}

// FindQuestion looks a question up by id.
func (g OptionGroup) FindQuestion(id string) (Question, bool) {
	for _, q := range g.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}
