package gateway

import (
	"context"
	"fmt"
	"strings"

	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements Gateway on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new gateway repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Gateway.
var _ Gateway = (*Repo)(nil)

// deleteStatement returns the tenant-scoped DELETE for entity. Unknown
// entities never reach SQL.
func deleteStatement(entity Entity) (string, error) {
	table := entity.table()
	if table == "" {
		return "", apperr.BadRequest(fmt.Sprintf("unknown entity %q", entity))
	}
	return fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND agency_id = $2`, table), nil
}

// Delete removes one row of the given entity, scoped to the agency.
func (r *Repo) Delete(ctx context.Context, agencyID uuid.UUID, entity Entity, id uuid.UUID) error {
	query, err := deleteStatement(entity)
	if err != nil {
		return err
	}
	result, err := r.pool.Exec(ctx, query, id, agencyID)
	if err != nil {
		return fmt.Errorf("delete %s: %w", entity, err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(string(entity) + " not found")
	}
	return nil
}

// whereBuilder accumulates positional predicates. The agency predicate is
// always the first one.
type whereBuilder struct {
	clauses []string
	args    []interface{}
}

func newWhere(alias string, agencyID uuid.UUID) *whereBuilder {
	return &whereBuilder{
		clauses: []string{alias + "agency_id = $1"},
		args:    []interface{}{agencyID},
	}
}

// add appends a predicate; each "?" in clause is replaced by the next placeholder
// bound to the same value.
func (w *whereBuilder) add(clause string, value interface{}) {
	w.args = append(w.args, value)
	w.clauses = append(w.clauses, strings.ReplaceAll(clause, "?", fmt.Sprintf("$%d", len(w.args))))
}

func (w *whereBuilder) sql() string {
	return strings.Join(w.clauses, " AND ")
}

// next returns the placeholder index after the current arguments.
func (w *whereBuilder) next() int {
	return len(w.args) + 1
}

// likePattern wraps a search term for ILIKE, escaping wildcards.
func likePattern(term string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(strings.TrimSpace(term)) + "%"
}
