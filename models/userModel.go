package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	RoleAdmin   = "ADMIN"
	RoleKitchen = "KITCHEN"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	Name      string             `bson:"name" json:"name" validate:"required,min=2,max=100"`
	Password  string             `bson:"password" json:"password,omitempty" validate:"required,min=6"`
	Email     string             `bson:"email" json:"email" validate:"email,required"`
	UserRole  string             `bson:"user_role" json:"userRole" validate:"required,eq=ADMIN|eq=KITCHEN"`
	CreatedAt time.Time          `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updatedAt"`
}
