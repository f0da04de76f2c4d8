package model

import (
	"time"
)

// User is the operator currently signed in to the console.
type User struct {
	Username   string    `json:"username"`
	Token      string    `json:"token"`
	LoggedInAt time.Time `json:"logged_in_at"`
}
