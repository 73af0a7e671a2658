// Command contact-phone-backfill rewrites stored contact phone numbers to
// E.164 so the exact-phone resolution tier sees one format.
package main

import (
	"context"
	"time"

	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/config"
	"agency_backoffice/platform/db"
	"agency_backoffice/platform/logger"
	"agency_backoffice/platform/phone"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contactPhone struct {
	id       uuid.UUID
	agencyID uuid.UUID
	phone    string
}

func main() {
	cfg, err := config.LoadToolServer()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting contact phone backfill")

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	repo := gateway.New(pool)

	const batchSize = 200
	cursor := uuid.Nil
	updated, skipped := 0, 0
	for {
		batch, err := listUnnormalizedPhones(ctx, pool, cursor, batchSize)
		if err != nil {
			log.Error("failed to list contacts", "error", err)
			return
		}
		if len(batch) == 0 {
			log.Info("contact phone backfill complete", "updated", updated, "skipped", skipped)
			return
		}

		for _, c := range batch {
			cursor = c.id
			normalized := phone.NormalizeE164(c.phone)
			if normalized == "" || normalized == c.phone || normalized[0] != '+' {
				log.Info("skipping phone that cannot be normalized", "contactId", c.id)
				skipped++
				continue
			}

			if _, err := repo.UpdateContact(ctx, c.agencyID, c.id, gateway.ContactUpdate{Phone: &normalized}); err != nil {
				log.Error("failed to update contact", "contactId", c.id, "error", err)
				skipped++
				time.Sleep(100 * time.Millisecond)
				continue
			}
			updated++
		}
	}
}

// listUnnormalizedPhones pages through contacts across all agencies by id.
func listUnnormalizedPhones(ctx context.Context, pool *pgxpool.Pool, after uuid.UUID, limit int) ([]contactPhone, error) {
	rows, err := pool.Query(ctx, `
		SELECT id, agency_id, phone
		FROM contacts
		WHERE phone IS NOT NULL
		  AND phone <> ''
		  AND phone NOT LIKE '+%'
		  AND id > $1
		ORDER BY id ASC
		LIMIT $2
	`, after, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	contacts := make([]contactPhone, 0)
	for rows.Next() {
		var c contactPhone
		if err := rows.Scan(&c.id, &c.agencyID, &c.phone); err != nil {
			return nil, err
		}
		contacts = append(contacts, c)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return contacts, nil
}
