package gateway

import (
	"strings"
	"testing"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
)

func TestBuildPropertyWhereAlwaysScopesToAgency(t *testing.T) {
	agencyID := uuid.New()
	where := buildPropertyWhere(agencyID, PropertyFilter{})

	if where.sql() != "agency_id = $1" {
		t.Fatalf("unexpected where clause %q", where.sql())
	}
	if len(where.args) != 1 || where.args[0] != agencyID {
		t.Fatalf("expected agency id as only argument, got %v", where.args)
	}
}

func TestBuildPropertyWhereNumbersPlaceholders(t *testing.T) {
	propertyType := "apartment"
	status := domain.PropertyPublished
	minPrice := 100000.0
	maxPrice := 500000.0
	city := " Lyon "

	where := buildPropertyWhere(uuid.New(), PropertyFilter{
		Type:     &propertyType,
		Status:   &status,
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		City:     &city,
		Search:   "50%_off",
	})

	sql := where.sql()
	for _, want := range []string{
		"agency_id = $1",
		"type = $2",
		"status = $3",
		"price >= $4",
		"price <= $5",
		"lower(city) = lower($6)",
		"reference ILIKE $7 OR title ILIKE $7",
	} {
		if !strings.Contains(sql, want) {
			t.Fatalf("expected %q in %q", want, sql)
		}
	}
	if where.next() != 8 {
		t.Fatalf("expected next placeholder 8, got %d", where.next())
	}
	if where.args[5] != "Lyon" {
		t.Fatalf("expected trimmed city, got %v", where.args[5])
	}
	if where.args[6] != `%50\%\_off%` {
		t.Fatalf("expected escaped search pattern, got %v", where.args[6])
	}
}

func TestPageNormalized(t *testing.T) {
	cases := []struct {
		in   Page
		want Page
	}{
		{Page{}, Page{Limit: DefaultPageSize}},
		{Page{Limit: 500, Offset: -3}, Page{Limit: MaxPageSize}},
		{Page{Limit: 10, Offset: 40}, Page{Limit: 10, Offset: 40}},
	}
	for _, tc := range cases {
		if got := tc.in.normalized(); got != tc.want {
			t.Fatalf("normalized(%+v) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestEntityTableRejectsUnknown(t *testing.T) {
	if EntityTask.table() != "tasks" {
		t.Fatal("task entity should map to tasks table")
	}
	if Entity("users").table() != "" {
		t.Fatal("unknown entity must not map to a table")
	}
}

func TestBuildContactWhere(t *testing.T) {
	contactType := domain.ContactSeller
	status := "active"
	where := buildContactWhere(uuid.New(), ContactFilter{Type: &contactType, Status: &status, Search: " dupont "})

	want := "agency_id = $1 AND type = $2 AND status = $3 AND (first_name ILIKE $4 OR last_name ILIKE $4 OR email ILIKE $4 OR phone ILIKE $4)"
	if where.sql() != want {
		t.Fatalf("unexpected where clause %q", where.sql())
	}
	if where.args[1] != "seller" || where.args[3] != "%dupont%" {
		t.Fatalf("unexpected arguments %v", where.args)
	}
	if where.next() != 5 {
		t.Fatalf("expected next placeholder 5, got %d", where.next())
	}
}

func TestBuildContractWhere(t *testing.T) {
	agencyID, propertyID := uuid.New(), uuid.New()
	status := domain.ContractSigned
	where := buildContractWhere(agencyID, ContractFilter{PropertyID: &propertyID, Status: &status})

	if where.sql() != "agency_id = $1 AND property_id = $2 AND status = $3" {
		t.Fatalf("unexpected where clause %q", where.sql())
	}
	if where.args[0] != agencyID || where.args[1] != propertyID || where.args[2] != "signed" {
		t.Fatalf("unexpected arguments %v", where.args)
	}
}

func TestBuildTaskWhere(t *testing.T) {
	status := domain.TaskTodo
	relation := domain.TaskRelation{Type: "contract", ID: uuid.New()}
	due := time.Date(2026, 3, 13, 18, 0, 0, 0, time.UTC)
	where := buildTaskWhere(uuid.New(), TaskFilter{Status: &status, RelatedTo: &relation, DueBefore: &due})

	want := "agency_id = $1 AND status = $2 AND related_type = $3 AND related_id = $4 AND due_date <= $5::date"
	if where.sql() != want {
		t.Fatalf("unexpected where clause %q", where.sql())
	}
	if where.args[3] != relation.ID || where.args[4] != "2026-03-13" {
		t.Fatalf("unexpected arguments %v", where.args)
	}
}

func TestDeleteStatementIsTenantScoped(t *testing.T) {
	query, err := deleteStatement(EntityVisit)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if query != "DELETE FROM visits WHERE id = $1 AND agency_id = $2" {
		t.Fatalf("unexpected statement %q", query)
	}
	if _, err := deleteStatement(Entity("users; DROP TABLE contacts")); !apperr.Is(err, apperr.KindBadRequest) {
		t.Fatalf("expected bad request for unknown entity, got %v", err)
	}
}

func TestPropertyInsertArgsDefaults(t *testing.T) {
	agencyID := uuid.New()
	args, err := propertyInsertArgs(agencyID, NewProperty{
		Reference: "MAI-004",
		Title:     "Maison avec jardin",
		Type:      "house",
		Price:     610000,
		Address:   domain.Address{Street: "3 chemin des Vignes", City: "Bordeaux", PostalCode: "33000"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(args) != 12 || args[0] != agencyID {
		t.Fatalf("unexpected arguments %v", args)
	}
	if args[4] != "draft" || args[9] != "FR" {
		t.Fatalf("expected draft status in FR, got %v and %v", args[4], args[9])
	}

	args, err = propertyInsertArgs(agencyID, NewProperty{
		Status:  domain.PropertyPublished,
		Address: domain.Address{Country: "BE"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if args[4] != "published" || args[9] != "BE" {
		t.Fatalf("explicit status and country must win, got %v and %v", args[4], args[9])
	}
}
