package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// DefaultDeliveryDuration is used when no delivery time can be resolved.
const DefaultDeliveryDuration = 45

type DeliveryArea struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	ZipCode          string             `bson:"zip_code" json:"zipCode" validate:"required"`
	MinOrder         float64            `bson:"min_order" json:"minOrder" validate:"gte=0"`
	DeliveryCosts    float64            `bson:"delivery_costs" json:"deliveryCosts" validate:"gte=0"`
	FreeDeliveryFrom *float64           `bson:"free_delivery_from,omitempty" json:"freeDeliveryFrom,omitempty"`
	DeliveryTime     *int               `bson:"delivery_time,omitempty" json:"deliveryTime,omitempty"`
	Active           bool               `bson:"active" json:"active"`
}
