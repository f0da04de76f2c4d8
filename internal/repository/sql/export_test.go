package sql

import (
	"database/sql"

	"github.com/iyhunko/inventory-console/internal/repository"
)

// GetTxFromEventRepo is a test helper to extract transaction from EventRepository.
func GetTxFromEventRepo(repo *EventRepository) *sql.Tx {
	return repo.txn
}

// BuildListQuery exposes the journal list query builder.
func BuildListQuery(query repository.Query) (string, []any) {
	return buildListQuery(query)
}
