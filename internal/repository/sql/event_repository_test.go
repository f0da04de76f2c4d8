package sql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/iyhunko/inventory-console/internal/config"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/repository"
	"github.com/iyhunko/inventory-console/internal/repository/sql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var eventColumns = []string{"id", "event_type", "event_data", "status", "created_at", "processed_at"}

func TestEventRepository_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		event, err := sql.CreateEvent("mutation.create", map[string]any{
			"action":     "create",
			"product_id": "21",
			"name":       "Desk lamp",
			"price":      19.5,
		})
		require.NoError(t, err)

		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WithArgs(sqlmock.AnyArg(), event.EventType, sqlmock.AnyArg(), event.Status, sqlmock.AnyArg(), nil).
			WillReturnResult(sqlmock.NewResult(1, 1))

		result, err := repo.Create(ctx, event)

		require.NoError(t, err)
		created, ok := result.(*model.Event)
		require.True(t, ok)
		assert.NotEqual(t, uuid.Nil, created.ID)
		assert.Equal(t, "mutation.create", created.EventType)
		assert.Equal(t, model.EventStatusPending, created.Status)
		assert.JSONEq(t, `{"action":"create","product_id":"21","name":"Desk lamp","price":19.5}`, string(created.EventData))

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert fails", func(t *testing.T) {
		event, err := sql.CreateEvent("mutation.delete", map[string]string{"action": "delete"})
		require.NoError(t, err)

		mock.ExpectPrepare("INSERT INTO events").
			ExpectExec().
			WillReturnError(errors.New("connection reset"))

		_, err = repo.Create(ctx, event)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert event")

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wrong resource type", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.Notification{})
		assert.ErrorIs(t, err, repository.ErrInvalidType)
	})
}

func TestEventRepository_FindByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	t.Run("successful find", func(t *testing.T) {
		eventID := uuid.New()
		processedAt := time.Now()

		rows := sqlmock.NewRows(eventColumns).
			AddRow(eventID.String(), "mutation.update", []byte(`{"action":"update"}`), "processed", time.Now(), processedAt)

		mock.ExpectPrepare("SELECT (.+) FROM events WHERE id").
			ExpectQuery().
			WithArgs(eventID).
			WillReturnRows(rows)

		result, err := repo.FindByID(ctx, eventID)

		require.NoError(t, err)
		event, ok := result.(*model.Event)
		require.True(t, ok)
		assert.Equal(t, eventID, event.ID)
		assert.Equal(t, "mutation.update", event.EventType)
		assert.Equal(t, model.EventStatusProcessed, event.Status)
		require.NotNil(t, event.ProcessedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		eventID := uuid.New()

		mock.ExpectPrepare("SELECT (.+) FROM events WHERE id").
			ExpectQuery().
			WithArgs(eventID).
			WillReturnRows(sqlmock.NewRows(eventColumns))

		_, err := repo.FindByID(ctx, eventID)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	t.Run("list pending events", func(t *testing.T) {
		eventID1 := uuid.New()
		eventID2 := uuid.New()
		data := []byte(`{"action":"create"}`)

		rows := sqlmock.NewRows(eventColumns).
			AddRow(eventID1.String(), "mutation.create", data, "pending", time.Now(), nil).
			AddRow(eventID2.String(), "mutation.delete", data, "pending", time.Now().Add(time.Minute), nil)

		query := repository.NewQuery().With(repository.StatusField, string(model.EventStatusPending))
		query.Limit = 10

		mock.ExpectPrepare("SELECT (.+) FROM events WHERE status = \\$1 ORDER BY created_at ASC, id ASC LIMIT \\$2").
			ExpectQuery().
			WithArgs("pending", 10).
			WillReturnRows(rows)

		results, err := repo.List(ctx, *query)

		require.NoError(t, err)
		require.Len(t, results, 2)

		event1, ok := results[0].(*model.Event)
		require.True(t, ok)
		assert.Equal(t, eventID1, event1.ID)
		assert.Nil(t, event1.ProcessedAt)

		event2, ok := results[1].(*model.Event)
		require.True(t, ok)
		assert.Equal(t, eventID2, event2.ID)
		assert.Equal(t, "mutation.delete", event2.EventType)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock.ExpectPrepare("SELECT (.+) FROM events").
			ExpectQuery().
			WillReturnError(errors.New("relation does not exist"))

		_, err := repo.List(ctx, *repository.NewQuery())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to query events")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestBuildListQuery(t *testing.T) {
	cursor := &repository.Paginator{LastID: uuid.New(), LastCreatedAt: time.Now()}

	tests := []struct {
		name      string
		query     func() repository.Query
		wantSQL   string
		wantCount int
	}{
		{
			name:      "no filters uses default limit",
			query:     func() repository.Query { return *repository.NewQuery() },
			wantSQL:   "SELECT id, event_type, event_data, status, created_at, processed_at FROM events ORDER BY created_at ASC, id ASC LIMIT $1",
			wantCount: 1,
		},
		{
			name: "status, type and cursor",
			query: func() repository.Query {
				q := repository.NewQuery().
					With(repository.EventTypeField, "mutation.update").
					With(repository.StatusField, "failed")
				q.Limit = 5
				q.Paginator = cursor
				return *q
			},
			wantSQL:   "SELECT id, event_type, event_data, status, created_at, processed_at FROM events WHERE status = $1 AND event_type = $2 AND (created_at, id) > ($3, $4) ORDER BY created_at ASC, id ASC LIMIT $5",
			wantCount: 5,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotSQL, args := sql.BuildListQuery(tt.query())
			assert.Equal(t, tt.wantSQL, gotSQL)
			assert.Len(t, args, tt.wantCount)
		})
	}
}

func TestEventRepository_UpdateStatus(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	for _, status := range []model.EventStatus{model.EventStatusProcessed, model.EventStatusFailed} {
		t.Run("update to "+string(status), func(t *testing.T) {
			id := uuid.New()

			mock.ExpectPrepare(regexp.QuoteMeta("UPDATE events SET status = $1, processed_at = $2 WHERE id = $3")).
				ExpectExec().
				WithArgs(status, sqlmock.AnyArg(), id).
				WillReturnResult(sqlmock.NewResult(0, 1))

			require.NoError(t, repo.UpdateStatus(ctx, id, status))
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("event not found", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectPrepare("UPDATE events SET status").
			ExpectExec().
			WithArgs(model.EventStatusProcessed, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.UpdateStatus(ctx, id, model.EventStatusProcessed)
		assert.ErrorIs(t, err, repository.ErrNotFound)

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_DeleteByID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	t.Run("deletes an event", func(t *testing.T) {
		event := &model.Event{ID: uuid.New()}

		mock.ExpectPrepare("DELETE FROM events WHERE id").
			ExpectExec().
			WithArgs(event.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, repo.DeleteByID(ctx, event))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing event", func(t *testing.T) {
		event := &model.Event{ID: uuid.New()}

		mock.ExpectPrepare("DELETE FROM events WHERE id").
			ExpectExec().
			WithArgs(event.ID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteByID(ctx, event), repository.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestEventRepository_WithinTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := sql.NewEventRepository(db)
	ctx := context.Background()

	t.Run("commits on success", func(t *testing.T) {
		id := uuid.New()

		mock.ExpectBegin()
		mock.ExpectPrepare("UPDATE events SET status").
			ExpectExec().
			WithArgs(model.EventStatusProcessed, sqlmock.AnyArg(), id).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.WithinTransaction(ctx, func(txRepo repository.EventRepository) error {
			txEventRepo, ok := txRepo.(*sql.EventRepository)
			require.True(t, ok)
			assert.NotNil(t, sql.GetTxFromEventRepo(txEventRepo))
			return txRepo.UpdateStatus(ctx, id, model.EventStatusProcessed)
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")

		mock.ExpectBegin()
		mock.ExpectRollback()

		err := repo.WithinTransaction(ctx, func(repository.EventRepository) error {
			return boom
		})
		assert.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDSN(t *testing.T) {
	dsn := sql.DSN(config.DB{Host: "db", User: "console", Password: "secret", Name: "journal", Port: "5433"})
	assert.Equal(t, "host=db user=console password=secret dbname=journal port=5433 sslmode=disable", dsn)
}
