package pkg

import "github.com/google/uuid"

// GenerateSessionID - generates a unique identifier for a hot-seat session.
func GenerateSessionID() string {
	return uuid.NewString()
}
