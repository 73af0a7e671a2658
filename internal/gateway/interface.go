// Package gateway is the tenant-scoped query layer over the agency store.
// It issues plain CRUD statements and carries no business rules; every
// statement filters on the caller's agency id.
package gateway

import (
	"context"

	"agency_backoffice/internal/domain"

	"github.com/google/uuid"
)

// ContactReader provides read access to contacts.
type ContactReader interface {
	ListContacts(ctx context.Context, agencyID uuid.UUID, filter ContactFilter) ([]domain.Contact, int, error)
	GetContact(ctx context.Context, agencyID, id uuid.UUID) (domain.Contact, error)
	FindContactByEmail(ctx context.Context, agencyID uuid.UUID, email string) (domain.Contact, error)
	FindContactsByPhoneSuffix(ctx context.Context, agencyID uuid.UUID, suffix string) ([]domain.Contact, error)
	ContactCandidates(ctx context.Context, agencyID uuid.UUID, limit int) ([]domain.Contact, error)
}

// ContactWriter provides write access to contacts.
type ContactWriter interface {
	InsertContact(ctx context.Context, agencyID uuid.UUID, params NewContact) (domain.Contact, error)
	UpdateContact(ctx context.Context, agencyID, id uuid.UUID, params ContactUpdate) (domain.Contact, error)
}

// PropertyReader provides read access to properties.
type PropertyReader interface {
	ListProperties(ctx context.Context, agencyID uuid.UUID, filter PropertyFilter) ([]domain.Property, int, error)
	GetProperty(ctx context.Context, agencyID, id uuid.UUID) (domain.Property, error)
	FindPropertyByReference(ctx context.Context, agencyID uuid.UUID, reference string) (domain.Property, error)
	PropertyCandidates(ctx context.Context, agencyID uuid.UUID, filter PropertyFilter, limit int) ([]domain.Property, error)
}

// PropertyWriter provides write access to properties.
type PropertyWriter interface {
	InsertProperty(ctx context.Context, agencyID uuid.UUID, params NewProperty) (domain.Property, error)
	UpdatePropertyStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.PropertyStatus) (domain.Property, error)
}

// ContractStore reads and writes contracts.
type ContractStore interface {
	GetContract(ctx context.Context, agencyID, id uuid.UUID) (domain.Contract, error)
	ListContracts(ctx context.Context, agencyID uuid.UUID, filter ContractFilter) ([]domain.Contract, int, error)
	InsertContract(ctx context.Context, agencyID uuid.UUID, params NewContract) (domain.Contract, error)
	UpdateContractStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error)
}

// TaskStore reads and writes follow-up tasks.
type TaskStore interface {
	GetTask(ctx context.Context, agencyID, id uuid.UUID) (domain.Task, error)
	InsertTask(ctx context.Context, agencyID uuid.UUID, params NewTask) (domain.Task, error)
	ListTasks(ctx context.Context, agencyID uuid.UUID, filter TaskFilter) ([]domain.Task, int, error)
}

// VisitStore reads and writes property visits.
type VisitStore interface {
	GetVisit(ctx context.Context, agencyID, id uuid.UUID) (domain.Visit, error)
	InsertVisit(ctx context.Context, agencyID uuid.UUID, params NewVisit) (domain.Visit, error)
}

// Deleter removes a single row of the given entity by id.
type Deleter interface {
	Delete(ctx context.Context, agencyID uuid.UUID, entity Entity, id uuid.UUID) error
}

// Gateway is the full query surface used by the resolver and the workflows.
type Gateway interface {
	ContactReader
	ContactWriter
	PropertyReader
	PropertyWriter
	ContractStore
	TaskStore
	VisitStore
	Deleter
}
