package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"agency_backoffice/internal/domain"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const contactNotFoundMessage = "contact not found"

const contactColumns = `id, agency_id, type, first_name, last_name, email, phone, status, notes, created_at, updated_at`

func scanContact(row pgx.Row) (domain.Contact, error) {
	var c domain.Contact
	var contactType string
	err := row.Scan(
		&c.ID, &c.AgencyID, &contactType, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.Status, &c.Notes, &c.CreatedAt, &c.UpdatedAt,
	)
	c.Type = domain.ContactType(contactType)
	return c, err
}

func collectContacts(rows pgx.Rows) ([]domain.Contact, error) {
	defer rows.Close()

	contacts := make([]domain.Contact, 0)
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

func buildContactWhere(agencyID uuid.UUID, filter ContactFilter) *whereBuilder {
	where := newWhere("", agencyID)
	if filter.Type != nil {
		where.add("type = ?", string(*filter.Type))
	}
	if filter.Status != nil {
		where.add("status = ?", *filter.Status)
	}
	if strings.TrimSpace(filter.Search) != "" {
		where.add("(first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR phone ILIKE ?)", likePattern(filter.Search))
	}
	return where
}

// ListContacts returns one page of contacts plus the total matching count.
func (r *Repo) ListContacts(ctx context.Context, agencyID uuid.UUID, filter ContactFilter) ([]domain.Contact, int, error) {
	where := buildContactWhere(agencyID, filter)

	var total int
	countQuery := fmt.Sprintf(`SELECT COUNT(*) FROM contacts WHERE %s`, where.sql())
	if err := r.pool.QueryRow(ctx, countQuery, where.args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count contacts: %w", err)
	}

	page := filter.Page.normalized()
	idx := where.next()
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE %s
		ORDER BY updated_at DESC
		LIMIT $%d OFFSET $%d`, contactColumns, where.sql(), idx, idx+1)

	rows, err := r.pool.Query(ctx, query, append(where.args, page.Limit, page.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, 0, fmt.Errorf("list contacts: %w", err)
	}
	return contacts, total, nil
}

// GetContact retrieves a contact by id.
func (r *Repo) GetContact(ctx context.Context, agencyID, id uuid.UUID) (domain.Contact, error) {
	query := fmt.Sprintf(`SELECT %s FROM contacts WHERE id = $1 AND agency_id = $2`, contactColumns)
	c, err := scanContact(r.pool.QueryRow(ctx, query, id, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return domain.Contact{}, fmt.Errorf("get contact: %w", err)
	}
	return c, nil
}

// FindContactByEmail matches an email case-insensitively. When several
// contacts share the address the most recently updated wins.
func (r *Repo) FindContactByEmail(ctx context.Context, agencyID uuid.UUID, email string) (domain.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE agency_id = $1 AND lower(email) = lower($2)
		ORDER BY updated_at DESC
		LIMIT 1`, contactColumns)
	c, err := scanContact(r.pool.QueryRow(ctx, query, agencyID, strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return domain.Contact{}, fmt.Errorf("find contact by email: %w", err)
	}
	return c, nil
}

// FindContactsByPhoneSuffix returns contacts whose phone digits end with suffix.
func (r *Repo) FindContactsByPhoneSuffix(ctx context.Context, agencyID uuid.UUID, suffix string) ([]domain.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE agency_id = $1
			AND phone IS NOT NULL
			AND right(regexp_replace(phone, '\D', '', 'g'), $3) = $2
		ORDER BY updated_at DESC`, contactColumns)
	rows, err := r.pool.Query(ctx, query, agencyID, suffix, len(suffix))
	if err != nil {
		return nil, fmt.Errorf("find contacts by phone: %w", err)
	}
	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, fmt.Errorf("find contacts by phone: %w", err)
	}
	return contacts, nil
}

// ContactCandidates fetches the most recently updated contacts for fuzzy ranking.
func (r *Repo) ContactCandidates(ctx context.Context, agencyID uuid.UUID, limit int) ([]domain.Contact, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM contacts
		WHERE agency_id = $1
		ORDER BY updated_at DESC
		LIMIT $2`, contactColumns)
	rows, err := r.pool.Query(ctx, query, agencyID, limit)
	if err != nil {
		return nil, fmt.Errorf("contact candidates: %w", err)
	}
	contacts, err := collectContacts(rows)
	if err != nil {
		return nil, fmt.Errorf("contact candidates: %w", err)
	}
	return contacts, nil
}

// InsertContact creates a contact.
func (r *Repo) InsertContact(ctx context.Context, agencyID uuid.UUID, params NewContact) (domain.Contact, error) {
	status := params.Status
	if status == "" {
		status = domain.ContactStatusNew
	}
	query := fmt.Sprintf(`
		INSERT INTO contacts (agency_id, type, first_name, last_name, email, phone, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING %s`, contactColumns)
	c, err := scanContact(r.pool.QueryRow(ctx, query,
		agencyID, string(params.Type), params.FirstName, params.LastName, params.Email, params.Phone, status, params.Notes,
	))
	if err != nil {
		return domain.Contact{}, fmt.Errorf("insert contact: %w", err)
	}
	return c, nil
}

// UpdateContact applies the non-nil fields of params.
func (r *Repo) UpdateContact(ctx context.Context, agencyID, id uuid.UUID, params ContactUpdate) (domain.Contact, error) {
	var contactType *string
	if params.Type != nil {
		t := string(*params.Type)
		contactType = &t
	}
	query := fmt.Sprintf(`
		UPDATE contacts
		SET type = COALESCE($3, type),
			first_name = COALESCE($4, first_name),
			last_name = COALESCE($5, last_name),
			email = COALESCE($6, email),
			phone = COALESCE($7, phone),
			status = COALESCE($8, status),
			notes = COALESCE($9, notes),
			updated_at = now()
		WHERE id = $1 AND agency_id = $2
		RETURNING %s`, contactColumns)
	c, err := scanContact(r.pool.QueryRow(ctx, query,
		id, agencyID, contactType, params.FirstName, params.LastName, params.Email, params.Phone, params.Status, params.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Contact{}, apperr.NotFound(contactNotFoundMessage)
		}
		return domain.Contact{}, fmt.Errorf("update contact: %w", err)
	}
	return c, nil
}
