package entity

import "time"

// Session is one hot-seat table: an engine snapshot shared by the two players at one screen.
type Session struct {
	ID        string    `json:"id"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
