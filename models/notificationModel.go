package models

const (
	EventNewOrder     = "newOrder"
	EventOrderUpdated = "orderUpdated"
)

// BoardEvent is pushed to connected kitchen boards.
type BoardEvent struct {
	Event   string `json:"event"`
	Payload Order  `json:"payload"`
}
