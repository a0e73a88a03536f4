package pkg

import "github.com/google/uuid"

// GenerateSessionID - generates a random (v4) identifier for a new session.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateConnectionID - generates an identifier bound to a single live connection.
func GenerateConnectionID() string {
	return "conn-" + uuid.NewString()
}
