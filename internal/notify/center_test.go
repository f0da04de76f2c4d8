package notify_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/notify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCenter(t *testing.T) {
	ctx := context.Background()

	t.Run("report and dismiss", func(t *testing.T) {
		center := notify.NewCenter(0)
		center.Report(ctx, model.NotificationError, "2", "Failed to update product")
		center.Report(ctx, model.NotificationWarning, "", "1 malformed catalog record(s) were skipped")

		items := center.List(false)
		require.Len(t, items, 2)
		assert.Equal(t, model.NotificationError, items[0].Level)
		assert.Equal(t, model.ID("2"), items[0].ProductID)
		assert.NotEqual(t, uuid.Nil, items[0].ID)

		require.NoError(t, center.Dismiss(items[0].ID))
		visible := center.List(false)
		require.Len(t, visible, 1)
		assert.Equal(t, items[1].ID, visible[0].ID)

		all := center.List(true)
		require.Len(t, all, 2)
		assert.True(t, all[0].Dismissed)
	})

	t.Run("dismiss unknown id", func(t *testing.T) {
		center := notify.NewCenter(0)
		assert.ErrorIs(t, center.Dismiss(uuid.New()), notify.ErrNotificationNotFound)
	})

	t.Run("drops the oldest beyond capacity", func(t *testing.T) {
		center := notify.NewCenter(2)
		for i := range 3 {
			center.Report(ctx, model.NotificationError, "", fmt.Sprintf("failure %d", i))
		}

		items := center.List(true)
		require.Len(t, items, 2)
		assert.Equal(t, "failure 1", items[0].Message)
		assert.Equal(t, "failure 2", items[1].Message)
	})
}
