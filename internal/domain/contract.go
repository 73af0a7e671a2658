package domain

import (
	"time"

	"github.com/google/uuid"
)

// ContractType is the legal nature of a contract.
type ContractType string

const (
	ContractMandate      ContractType = "mandate"
	ContractSaleExisting ContractType = "sale_existing"
	ContractSaleVEFA     ContractType = "sale_vefa"
	ContractRental       ContractType = "rental"
	ContractOffer        ContractType = "offer"
	ContractReservation  ContractType = "reservation"
)

// ContractTypes lists every valid contract type.
var ContractTypes = []ContractType{
	ContractMandate, ContractSaleExisting, ContractSaleVEFA, ContractRental, ContractOffer, ContractReservation,
}

// IsValid reports whether t is a known contract type.
func (t ContractType) IsValid() bool {
	for _, known := range ContractTypes {
		if t == known {
			return true
		}
	}
	return false
}

// IsSale reports whether the contract commits the property to a buyer.
// Offers and reservations are part of the sale path; mandates and rentals are not.
func (t ContractType) IsSale() bool {
	switch t {
	case ContractSaleExisting, ContractSaleVEFA, ContractOffer, ContractReservation:
		return true
	default:
		return false
	}
}

// DefaultContactType is the contact type inferred for a contact created
// while preparing a contract of type t.
func (t ContractType) DefaultContactType() ContactType {
	if t == ContractMandate {
		return ContactSeller
	}
	return ContactBuyer
}

// ContractStatus is the lifecycle state of a contract.
type ContractStatus string

const (
	ContractDraft     ContractStatus = "draft"
	ContractPending   ContractStatus = "pending"
	ContractActive    ContractStatus = "active"
	ContractSigned    ContractStatus = "signed"
	ContractCompleted ContractStatus = "completed"
	ContractCancelled ContractStatus = "cancelled"
	ContractExpired   ContractStatus = "expired"
)

// ContractStatuses lists every valid contract status.
var ContractStatuses = []ContractStatus{
	ContractDraft, ContractPending, ContractActive, ContractSigned, ContractCompleted, ContractCancelled, ContractExpired,
}

// IsValid reports whether s is a known contract status.
func (s ContractStatus) IsValid() bool {
	for _, known := range ContractStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// forwardTransitions holds the non-exit edges of the status machine:
// draft -> pending <-> active -> signed -> completed.
var forwardTransitions = map[ContractStatus][]ContractStatus{
	ContractDraft:   {ContractPending},
	ContractPending: {ContractActive},
	ContractActive:  {ContractPending, ContractSigned},
	ContractSigned:  {ContractCompleted},
}

// IsTerminal reports whether no further transition is possible from s.
func (s ContractStatus) IsTerminal() bool {
	return s == ContractCompleted || s == ContractCancelled || s == ContractExpired
}

// CanTransition reports whether a contract may move from one status to another.
// Cancelled and expired are reachable from every non-terminal status.
func CanTransition(from, to ContractStatus) bool {
	if !from.IsValid() || !to.IsValid() || from.IsTerminal() || from == to {
		return false
	}
	if to == ContractCancelled || to == ContractExpired {
		return true
	}
	for _, next := range forwardTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the statuses reachable from s, used in error hints.
func AllowedTransitions(s ContractStatus) []ContractStatus {
	if s.IsTerminal() || !s.IsValid() {
		return nil
	}
	out := append([]ContractStatus{}, forwardTransitions[s]...)
	return append(out, ContractCancelled, ContractExpired)
}

// ContractTerms is the free-form payload stored with a contract.
type ContractTerms struct {
	CommissionRate *float64 `json:"commissionRate,omitempty"`
	DurationMonths *int     `json:"durationMonths,omitempty"`
	Exclusive      *bool    `json:"exclusive,omitempty"`
	Price          *float64 `json:"price,omitempty"`
	StartDate      string   `json:"startDate,omitempty"`
	Notes          string   `json:"notes,omitempty"`
}

// Contract binds a property and a contact under a legal agreement.
type Contract struct {
	ID         uuid.UUID
	AgencyID   uuid.UUID
	Type       ContractType
	Status     ContractStatus
	PropertyID uuid.UUID
	ContactID  uuid.UUID
	Data       ContractTerms
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
