package gateway

import (
	"time"

	"agency_backoffice/internal/domain"

	"github.com/google/uuid"
)

// Entity names a table reachable through Delete.
type Entity string

const (
	EntityContact  Entity = "contact"
	EntityProperty Entity = "property"
	EntityContract Entity = "contract"
	EntityTask     Entity = "task"
	EntityVisit    Entity = "visit"
)

// table maps an entity to its table. Unknown entities yield "".
func (e Entity) table() string {
	switch e {
	case EntityContact:
		return "contacts"
	case EntityProperty:
		return "properties"
	case EntityContract:
		return "contracts"
	case EntityTask:
		return "tasks"
	case EntityVisit:
		return "visits"
	default:
		return ""
	}
}

// Page is limit/offset pagination. A zero limit means DefaultPageSize.
type Page struct {
	Limit  int
	Offset int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// normalized clamps the page into the accepted range.
func (p Page) normalized() Page {
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ContactFilter narrows contact listings.
type ContactFilter struct {
	Type   *domain.ContactType
	Status *string
	Search string
	Page
}

// PropertyFilter narrows property listings and the fuzzy candidate fetch.
type PropertyFilter struct {
	Type     *string
	Status   *domain.PropertyStatus
	MinPrice *float64
	MaxPrice *float64
	City     *string
	Search   string
	Page
}

// ContractFilter narrows contract listings.
type ContractFilter struct {
	PropertyID *uuid.UUID
	ContactID  *uuid.UUID
	Status     *domain.ContractStatus
	Page
}

// TaskFilter narrows task listings.
type TaskFilter struct {
	Status    *domain.TaskStatus
	RelatedTo *domain.TaskRelation
	DueBefore *time.Time
	Page
}

// NewContact holds the columns of a contact insert.
type NewContact struct {
	Type      domain.ContactType
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Status    string
	Notes     *string
}

// ContactUpdate holds optional contact columns; nil leaves a column unchanged.
type ContactUpdate struct {
	Type      *domain.ContactType
	FirstName *string
	LastName  *string
	Email     *string
	Phone     *string
	Status    *string
	Notes     *string
}

// NewProperty holds the columns of a property insert.
type NewProperty struct {
	Reference       string
	Title           string
	Type            string
	Status          domain.PropertyStatus
	Price           float64
	Address         domain.Address
	Characteristics domain.Characteristics
	OwnerID         *uuid.UUID
}

// NewContract holds the columns of a contract insert.
type NewContract struct {
	Type       domain.ContractType
	Status     domain.ContractStatus
	PropertyID uuid.UUID
	ContactID  uuid.UUID
	Data       domain.ContractTerms
}

// NewTask holds the columns of a task insert.
type NewTask struct {
	Title       string
	Description *string
	DueDate     time.Time
	Priority    domain.TaskPriority
	Status      domain.TaskStatus
	RelatedTo   *domain.TaskRelation
}

// NewVisit holds the columns of a visit insert.
type NewVisit struct {
	PropertyID      uuid.UUID
	ContactID       uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes int
	Status          domain.VisitStatus
}
