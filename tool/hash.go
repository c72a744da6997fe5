package tool

import "github.com/google/uuid"

// GenerateRandomUUID is used for submission request ids and locally assigned file ids.
func GenerateRandomUUID() string {
	return uuid.New().String()
}
