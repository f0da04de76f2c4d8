package model

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel grades a notification.
type NotificationLevel string

const (
	NotificationError   NotificationLevel = "error"
	NotificationWarning NotificationLevel = "warning"
)

// Notification is a dismissible message shown to the operator.
type Notification struct {
	ID        uuid.UUID         `json:"id"`
	Level     NotificationLevel `json:"level"`
	Message   string            `json:"message"`
	ProductID ID                `json:"product_id,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Dismissed bool              `json:"dismissed"`
}

// InitMeta assigns the notification id and creation time.
func (n *Notification) InitMeta() {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
}
