package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"agency_backoffice/internal/domain"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contractNotFoundMessage = "contract not found"

const contractColumns = `id, agency_id, type, status, property_id, contact_id, data, created_at, updated_at`

func scanContract(row pgx.Row) (domain.Contract, error) {
	var c domain.Contract
	var contractType, status string
	var data []byte
	if err := row.Scan(
		&c.ID, &c.AgencyID, &contractType, &status, &c.PropertyID, &c.ContactID, &data, &c.CreatedAt, &c.UpdatedAt,
	); err != nil {
		return domain.Contract{}, err
	}
	c.Type = domain.ContractType(contractType)
	c.Status = domain.ContractStatus(status)
	if len(data) > 0 {
		if err := json.Unmarshal(data, &c.Data); err != nil {
			return domain.Contract{}, fmt.Errorf("decode contract data of %s: %w", c.ID, err)
		}
	}
	return c, nil
}

// GetContract retrieves a contract by id.
func (r *Repo) GetContract(ctx context.Context, agencyID, id uuid.UUID) (domain.Contract, error) {
	query := fmt.Sprintf(`SELECT %s FROM contracts WHERE id = $1 AND agency_id = $2`, contractColumns)
	c, err := scanContract(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contract{}, apperr.NotFound(contractNotFoundMessage)
		}
		return domain.Contract{}, fmt.Errorf("get contract: %w", err)
	}
	return c, nil
}

func buildContractWhere(agencyID uuid.UUID, filter ContractFilter) *whereBuilder {
	where := newWhere("", agencyID)
	if filter.PropertyID != nil {
		where.add("property_id = ?", *filter.PropertyID)
	}
	if filter.ContactID != nil {
		where.add("contact_id = ?", *filter.ContactID)
	}
	if filter.Status != nil {
		where.add("status = ?", string(*filter.Status))
	}
	return where
}

// ListContracts returns one page of contracts plus the total matching count.
func (r *Repo) ListContracts(ctx context.Context, agencyID uuid.UUID, filter ContractFilter) ([]domain.Contract, int, error) {
	where := buildContractWhere(agencyID, filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM contracts WHERE %s`, where.sql())
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contracts: %w", err)
	}

	page := filter.Page.normalized()
	idx := where.next()
	query := fmt.Sprintf(`
		SELECT %s FROM contracts
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, contractColumns, where.sql(), idx, idx+1)
	rows, err := r.pool.Query(ctx, query, append(where.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	defer rows.Close()

	contracts := make([]domain.Contract, 0)
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("list contracts: %w", err)
		}
		contracts = append(contracts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("list contracts: %w", err)
	}
	return contracts, total, nil
}

// InsertContract creates a contract.
func (r *Repo) InsertContract(ctx context.Context, agencyID uuid.UUID, params NewContract) (domain.Contract, error) {
	data, err := json.Marshal(params.Data)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("encode contract data: %w", err)
	}
	status := params.Status
	if status == "" {
		status = domain.ContractDraft
	}

	query := fmt.Sprintf(`
		INSERT INTO contracts (agency_id, type, status, property_id, contact_id, data)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s`, contractColumns)
	c, err := scanContract(r.pool.QueryRow(ctx, query,
		agencyID, string(params.Type), string(status), params.PropertyID, params.ContactID, data,
	))
	if err != nil {
		return domain.Contract{}, fmt.Errorf("insert contract: %w", err)
	}
	return c, nil
}

// UpdateContractStatus sets the status of a contract. Transition rules are
// enforced by the caller.
func (r *Repo) UpdateContractStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error) {
	query := fmt.Sprintf(`
		UPDATE contracts SET status = $3, updated_at = now()
		WHERE id = $1 AND agency_id = $2
		RETURNING %s`, contractColumns)
	c, err := scanContract(r.pool.QueryRow(ctx, query, id, agencyID, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contract{}, apperr.NotFound(contractNotFoundMessage)
		}
		return domain.Contract{}, fmt.Errorf("update contract status: %w", err)
	}
	return c, nil
}
