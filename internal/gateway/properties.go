package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"agency_backoffice/internal/domain"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const propertyNotFoundMessage = "property not found"

const propertyColumns = `id, agency_id, reference, title, type, status, price::float8, street, city, postal_code, country,
	characteristics, owner_id, created_at, updated_at`

func scanProperty(row pgx.Row) (domain.Property, error) {
	var p domain.Property
	var status string
	var characteristics []byte
	err := row.Scan(
		&p.ID, &p.AgencyID, &p.Reference, &p.Title, &p.Type, &status, &p.Price,
		&p.Address.Street, &p.Address.City, &p.Address.PostalCode, &p.Address.Country,
		&characteristics, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return domain.Property{}, err
	}
	p.Status = domain.PropertyStatus(status)
	if len(characteristics) > 0 {
		if err := json.Unmarshal(characteristics, &p.Characteristics); err != nil {
			return domain.Property{}, fmt.Errorf("decode characteristics of %s: %w", p.ID, err)
		}
	}
	return p, nil
}

func collectProperties(rows pgx.Rows) ([]domain.Property, error) {
	defer rows.Close()

	properties := make([]domain.Property, 0)
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		properties = append(properties, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return properties, nil
}

// buildPropertyWhere translates a filter into predicates; the agency id is always $1.
func buildPropertyWhere(agencyID uuid.UUID, filter PropertyFilter) *whereBuilder {
	where := newWhere("", agencyID)
	if filter.Type != nil && *filter.Type != "" {
		where.add("type = ?", *filter.Type)
	}
	if filter.Status != nil {
		where.add("status = ?", string(*filter.Status))
	}
	if filter.MinPrice != nil {
		where.add("price >= ?", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		where.add("price <= ?", *filter.MaxPrice)
	}
	if filter.City != nil && strings.TrimSpace(*filter.City) != "" {
		where.add("lower(city) = lower(?)", strings.TrimSpace(*filter.City))
	}
	if strings.TrimSpace(filter.Search) != "" {
		where.add("(reference ILIKE ? OR title ILIKE ? OR street ILIKE ? OR city ILIKE ? OR postal_code ILIKE ?)", likePattern(filter.Search))
	}
	return where
}

// ListProperties returns one page of properties plus the total matching count.
func (r *Repo) ListProperties(ctx context.Context, agencyID uuid.UUID, filter PropertyFilter) ([]domain.Property, int, error) {
	where := buildPropertyWhere(agencyID, filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM properties WHERE %s`, where.sql())
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count properties: %w", err)
	}

	page := filter.Page.normalized()
	idx := where.next()
	query := fmt.Sprintf(`
		SELECT %s FROM properties
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, propertyColumns, where.sql(), idx, idx+1)

	rows, err := r.pool.Query(ctx, query, append(where.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list properties: %w", err)
	}
	return properties, total, nil
}

// GetProperty retrieves a property by id.
func (r *Repo) GetProperty(ctx context.Context, agencyID, id uuid.UUID) (domain.Property, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1 AND agency_id = $2`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, apperr.NotFound(propertyNotFoundMessage)
		}
		return domain.Property{}, fmt.Errorf("get property: %w", err)
	}
	return p, nil
}

// FindPropertyByReference matches a reference case-insensitively.
func (r *Repo) FindPropertyByReference(ctx context.Context, agencyID uuid.UUID, reference string) (domain.Property, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM properties
		WHERE agency_id = $1 AND lower(reference) = lower($2)
		ORDER BY updated_at DESC
		LIMIT 1`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, agencyID, strings.TrimSpace(reference)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, apperr.NotFound(propertyNotFoundMessage)
		}
		return domain.Property{}, fmt.Errorf("find property by reference: %w", err)
	}
	return p, nil
}

// PropertyCandidates fetches the most recently updated properties matching
// filter for fuzzy ranking. Search and pagination in filter are ignored.
func (r *Repo) PropertyCandidates(ctx context.Context, agencyID uuid.UUID, filter PropertyFilter, limit int) ([]domain.Property, error) {
	filter.Search = ""
	where := buildPropertyWhere(agencyID, filter)
	query := fmt.Sprintf(`
		SELECT %s FROM properties
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d`, propertyColumns, where.sql(), where.next())

	rows, err := r.pool.Query(ctx, query, append(where.args, limit)...)
	if err != nil {
		return nil, fmt.Errorf("property candidates: %w", err)
	}
	properties, err := collectProperties(rows)
	if err != nil {
		return nil, fmt.Errorf("property candidates: %w", err)
	}
	return properties, nil
}

// propertyInsertArgs returns the positional arguments of the property insert.
// Listings start as drafts in France unless told otherwise.
func propertyInsertArgs(agencyID uuid.UUID, params NewProperty) ([]interface{}, error) {
	characteristics, err := json.Marshal(params.Characteristics)
	if err != nil {
		return nil, fmt.Errorf("encode characteristics: %w", err)
	}
	status := params.Status
	if status == "" {
		status = domain.PropertyDraft
	}
	country := params.Address.Country
	if country == "" {
		country = "FR"
	}
	return []interface{}{
		agencyID, params.Reference, params.Title, params.Type, string(status), params.Price,
		params.Address.Street, params.Address.City, params.Address.PostalCode, country, characteristics, params.OwnerID,
	}, nil
}

// InsertProperty creates a property.
func (r *Repo) InsertProperty(ctx context.Context, agencyID uuid.UUID, params NewProperty) (domain.Property, error) {
	args, err := propertyInsertArgs(agencyID, params)
	if err != nil {
		return domain.Property{}, err
	}

	query := fmt.Sprintf(`
		INSERT INTO properties (
			agency_id, reference, title, type, status, price, street, city, postal_code, country, characteristics, owner_id
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return domain.Property{}, fmt.Errorf("insert property: %w", err)
	}
	return p, nil
}

// UpdatePropertyStatus sets the marketing status of a property.
func (r *Repo) UpdatePropertyStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.PropertyStatus) (domain.Property, error) {
	query := fmt.Sprintf(`
		UPDATE properties SET status = $3, updated_at = now()
		WHERE id = $1 AND agency_id = $2
		RETURNING %s`, propertyColumns)
	p, err := scanProperty(r.pool.QueryRow(ctx, query, id, agencyID, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Property{}, apperr.NotFound(propertyNotFoundMessage)
		}
		return domain.Property{}, fmt.Errorf("update property status: %w", err)
	}
	return p, nil
}
