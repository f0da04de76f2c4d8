// Package notify keeps the dismissible failure notifications shown to the operator.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-console/internal/model"
)

// ErrNotificationNotFound is returned by Dismiss for an unknown id.
var ErrNotificationNotFound = errors.New("notification not found")

// DefaultCapacity bounds how many notifications a Center keeps.
const DefaultCapacity = 200

// Center is an in-memory, bounded list of notifications, newest last.
type Center struct {
	mu       sync.Mutex
	items    []model.Notification
	capacity int
}

// NewCenter creates a Center keeping at most capacity notifications. Non-positive means DefaultCapacity.
func NewCenter(capacity int) *Center {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Center{capacity: capacity}
}

// Report adds a notification. The oldest ones are dropped once the center is full.
func (c *Center) Report(ctx context.Context, level model.NotificationLevel, productID model.ID, message string) {
	n := model.Notification{Level: level, Message: message, ProductID: productID}
	n.InitMeta()

	c.mu.Lock()
	c.items = append(c.items, n)
	if over := len(c.items) - c.capacity; over > 0 {
		c.items = slices.Delete(c.items, 0, over)
	}
	c.mu.Unlock()

	slog.InfoContext(ctx, "notification raised",
		slog.String("notification_id", n.ID.String()),
		slog.String("level", string(level)),
		slog.String("product_id", productID.String()),
		slog.String("message", message))
}

// List returns the notifications, oldest first. Dismissed ones are included only on request.
func (c *Center) List(includeDismissed bool) []model.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]model.Notification, 0, len(c.items))
	for _, n := range c.items {
		if n.Dismissed && !includeDismissed {
			continue
		}
		out = append(out, n)
	}
	return out
}

// Dismiss hides a notification.
func (c *Center) Dismiss(id uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.IndexFunc(c.items, func(n model.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotificationNotFound
	}
	c.items[i].Dismissed = true
	return nil
}
