// Package domain holds the agency entities consumed by the agent tool server
// and the business rules that apply to them regardless of storage.
package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ContactType classifies a contact's relationship with the agency.
type ContactType string

const (
	ContactLead     ContactType = "lead"
	ContactBuyer    ContactType = "buyer"
	ContactSeller   ContactType = "seller"
	ContactInvestor ContactType = "investor"
)

// ContactTypes lists every valid contact type.
var ContactTypes = []ContactType{ContactLead, ContactBuyer, ContactSeller, ContactInvestor}

// IsValid reports whether t is a known contact type.
func (t ContactType) IsValid() bool {
	for _, known := range ContactTypes {
		if t == known {
			return true
		}
	}
	return false
}

// ContactStatusNew is the status given to contacts created by workflows.
const ContactStatusNew = "new"

// Contact is a person the agency works with.
type Contact struct {
	ID        uuid.UUID
	AgencyID  uuid.UUID
	Type      ContactType
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	Status    string
	Notes     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// FullName joins first and last name.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Label is the short human-facing name used in suggestions and transcripts.
func (c Contact) Label() string {
	if c.Email != nil && *c.Email != "" {
		return c.FullName() + " <" + *c.Email + ">"
	}
	return c.FullName()
}

// PropertyStatus is the marketing lifecycle of a property.
type PropertyStatus string

const (
	PropertyDraft      PropertyStatus = "draft"
	PropertyPublished  PropertyStatus = "published"
	PropertyUnderOffer PropertyStatus = "under_offer"
	PropertySold       PropertyStatus = "sold"
	PropertyRented     PropertyStatus = "rented"
	PropertyArchived   PropertyStatus = "archived"
)

// PropertyStatuses lists every valid property status.
var PropertyStatuses = []PropertyStatus{
	PropertyDraft, PropertyPublished, PropertyUnderOffer, PropertySold, PropertyRented, PropertyArchived,
}

// IsValid reports whether s is a known property status.
func (s PropertyStatus) IsValid() bool {
	for _, known := range PropertyStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Address is the postal location of a property.
type Address struct {
	Street     string `json:"street"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country,omitempty"`
}

// String renders the address on one line.
func (a Address) String() string {
	parts := make([]string, 0, 3)
	if a.Street != "" {
		parts = append(parts, a.Street)
	}
	city := strings.TrimSpace(a.PostalCode + " " + a.City)
	if city != "" {
		parts = append(parts, city)
	}
	return strings.Join(parts, ", ")
}

// Characteristics is the free-form physical description stored as JSON.
type Characteristics struct {
	SurfaceM2   *float64 `json:"surfaceM2,omitempty"`
	Rooms       *int     `json:"rooms,omitempty"`
	Bedrooms    *int     `json:"bedrooms,omitempty"`
	Floor       *int     `json:"floor,omitempty"`
	EnergyClass string   `json:"energyClass,omitempty"`
	Parking     bool     `json:"parking,omitempty"`
}

// Property is a listing managed by the agency.
type Property struct {
	ID              uuid.UUID
	AgencyID        uuid.UUID
	Reference       string
	Title           string
	Type            string
	Status          PropertyStatus
	Price           float64
	Address         Address
	Characteristics Characteristics
	OwnerID         *uuid.UUID
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Label is the short human-facing name used in suggestions and transcripts.
func (p Property) Label() string {
	addr := p.Address.String()
	if addr == "" {
		return p.Reference
	}
	return p.Reference + " (" + addr + ")"
}

// TaskPriority orders follow-up work.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// TaskStatus is the progress of a task.
type TaskStatus string

const (
	TaskTodo       TaskStatus = "todo"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

// TaskRelation is a weak back-reference to the entity that spawned a task.
// It never implies ownership: deleting the task leaves the entity untouched.
type TaskRelation struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// Task is a follow-up item for an agent.
type Task struct {
	ID          uuid.UUID
	AgencyID    uuid.UUID
	Title       string
	Description *string
	DueDate     time.Time
	Priority    TaskPriority
	Status      TaskStatus
	RelatedTo   *TaskRelation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// VisitStatus is the state of a property visit.
type VisitStatus string

const (
	VisitScheduled VisitStatus = "scheduled"
	VisitCompleted VisitStatus = "completed"
	VisitCancelled VisitStatus = "cancelled"
)

// Visit is a scheduled viewing of a property with a contact.
type Visit struct {
	ID              uuid.UUID
	AgencyID        uuid.UUID
	PropertyID      uuid.UUID
	ContactID       uuid.UUID
	ScheduledAt     time.Time
	DurationMinutes int
	Status          VisitStatus
	Feedback        *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
