package tools

// Tool inputs. validate tags are the declared schema checked at the
// boundary; jsonschema tags describe fields to MCP clients and to the model.

type ResolveContactInput struct {
	AgencyID string `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Query    string `json:"query" validate:"required,max=200" jsonschema:"contact UUID, email, phone number or free-text name"`
}

func (in *ResolveContactInput) agency() string { return in.AgencyID }

type ResolvePropertyInput struct {
	AgencyID string   `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Query    string   `json:"query" validate:"required,max=200" jsonschema:"property UUID, reference (e.g. APT-001) or free-text address"`
	City     *string  `json:"city,omitempty" validate:"omitempty,max=100" jsonschema:"restrict fuzzy matching to this city"`
	Type     *string  `json:"type,omitempty" validate:"omitempty,max=50" jsonschema:"restrict fuzzy matching to this property type"`
	Status   *string  `json:"status,omitempty" validate:"omitempty,property_status" jsonschema:"restrict fuzzy matching to this listing status"`
	MinPrice *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0" jsonschema:"restrict fuzzy matching to listings at or above this price in euros"`
	MaxPrice *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0" jsonschema:"restrict fuzzy matching to listings at or below this price in euros"`
}

func (in *ResolvePropertyInput) agency() string { return in.AgencyID }

type ListPropertiesInput struct {
	AgencyID string   `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Type     *string  `json:"type,omitempty" validate:"omitempty,max=50" jsonschema:"property type, e.g. apartment or house"`
	Status   *string  `json:"status,omitempty" validate:"omitempty,property_status" jsonschema:"draft, published, under_offer, sold, rented or archived"`
	MinPrice *float64 `json:"minPrice,omitempty" validate:"omitempty,gte=0" jsonschema:"minimum price in euros"`
	MaxPrice *float64 `json:"maxPrice,omitempty" validate:"omitempty,gte=0" jsonschema:"maximum price in euros"`
	City     *string  `json:"city,omitempty" validate:"omitempty,max=100" jsonschema:"city name"`
	Search   string   `json:"search,omitempty" validate:"max=200" jsonschema:"substring matched against reference, title and address"`
	Limit    int      `json:"limit,omitempty" validate:"omitempty,min=1,max=100" jsonschema:"page size, default 20"`
	Offset   int      `json:"offset,omitempty" validate:"omitempty,min=0" jsonschema:"rows to skip"`
}

func (in *ListPropertiesInput) agency() string { return in.AgencyID }

// TermsInput carries the free-form contract terms.
type TermsInput struct {
	CommissionRate *float64 `json:"commissionRate,omitempty" validate:"omitempty,gte=0,lte=100" jsonschema:"agency commission in percent"`
	DurationMonths *int     `json:"durationMonths,omitempty" validate:"omitempty,min=1,max=120" jsonschema:"mandate or lease duration in months"`
	Exclusive      *bool    `json:"exclusive,omitempty" jsonschema:"exclusive mandate"`
	Price          *float64 `json:"price,omitempty" validate:"omitempty,gte=0" jsonschema:"agreed price or monthly rent in euros"`
	StartDate      string   `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02" jsonschema:"start date, YYYY-MM-DD"`
	Notes          string   `json:"notes,omitempty" validate:"max=2000" jsonschema:"free-text notes"`
}

type CreateContractInput struct {
	AgencyID      string      `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Type          string      `json:"type" validate:"required,contract_type" jsonschema:"mandate, sale_existing, sale_vefa, rental, offer or reservation"`
	PropertyQuery string      `json:"property" validate:"required,max=200" jsonschema:"property UUID, reference or address"`
	ContactQuery  string      `json:"contact" validate:"required,max=200" jsonschema:"contact UUID, email, phone or name"`
	Terms         *TermsInput `json:"terms,omitempty" validate:"omitempty" jsonschema:"contract terms"`
}

func (in *CreateContractInput) agency() string { return in.AgencyID }

type UpdateContractStatusInput struct {
	AgencyID   string `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	ContractID string `json:"contractId" validate:"required,uuid" jsonschema:"contract UUID"`
	Status     string `json:"status" validate:"required,contract_status" jsonschema:"draft, pending, active, signed, completed, cancelled or expired"`
}

func (in *UpdateContractStatusInput) agency() string { return in.AgencyID }

// NewContactInput describes the contact created when none matches.
type NewContactInput struct {
	FirstName string  `json:"firstName" validate:"required,max=100" jsonschema:"first name"`
	LastName  string  `json:"lastName" validate:"required,max=100" jsonschema:"last name"`
	Email     *string `json:"email,omitempty" validate:"omitempty,email" jsonschema:"email address"`
	Phone     *string `json:"phone,omitempty" validate:"omitempty,max=30" jsonschema:"phone number"`
	Type      *string `json:"type,omitempty" validate:"omitempty,contact_type" jsonschema:"lead, buyer, seller or investor; inferred from the contract type when omitted"`
}

type PrepareContractInput struct {
	AgencyID      string           `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Type          string           `json:"type" validate:"required,contract_type" jsonschema:"mandate, sale_existing, sale_vefa, rental, offer or reservation"`
	PropertyQuery string           `json:"property" validate:"required,max=200" jsonschema:"property UUID, reference or address"`
	ContactQuery  string           `json:"contact" validate:"required,max=200" jsonschema:"contact UUID, email, phone or name"`
	Terms         *TermsInput      `json:"terms,omitempty" validate:"omitempty" jsonschema:"contract terms"`
	NewContact    *NewContactInput `json:"newContact,omitempty" validate:"omitempty" jsonschema:"contact to create when the contact query matches nobody; if a later step fails the error details list the created contact id"`
	CreateTasks   *bool            `json:"createTasks,omitempty" jsonschema:"create follow-up tasks, default true"`
}

func (in *PrepareContractInput) agency() string { return in.AgencyID }

type DraftEmailInput struct {
	AgencyID      string `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Type          string `json:"type" validate:"required,email_type" jsonschema:"visit_confirmation, visit_followup, contract_ready or document_request"`
	ContactQuery  string `json:"contact" validate:"required,max=200" jsonschema:"recipient: contact UUID, email, phone or name"`
	PropertyQuery string `json:"property,omitempty" validate:"max=200" jsonschema:"property UUID, reference or address"`
	VisitID       string `json:"visitId,omitempty" validate:"omitempty,uuid" jsonschema:"visit UUID; supplies the date and the property"`
	Tone          string `json:"tone,omitempty" validate:"omitempty,email_tone" jsonschema:"formal or friendly, default formal"`
	Language      string `json:"language,omitempty" validate:"omitempty,email_language" jsonschema:"fr or en, default fr"`
}

func (in *DraftEmailInput) agency() string { return in.AgencyID }

type ScheduleVisitInput struct {
	AgencyID        string `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	PropertyQuery   string `json:"property" validate:"required,max=200" jsonschema:"property UUID, reference or address"`
	ContactQuery    string `json:"contact" validate:"required,max=200" jsonschema:"visitor: contact UUID, email, phone or name"`
	When            string `json:"when" validate:"required,max=100" jsonschema:"date and time, e.g. 2026-03-12 14:30, demain 10h or next friday at 3pm"`
	DurationMinutes int    `json:"durationMinutes,omitempty" validate:"omitempty,min=15,max=480" jsonschema:"visit length, default 60"`
	CreateTask      *bool  `json:"createTask,omitempty" jsonschema:"add a confirmation task, default true"`
}

func (in *ScheduleVisitInput) agency() string { return in.AgencyID }

type CreateTaskInput struct {
	AgencyID    string  `json:"agencyId,omitempty" validate:"omitempty,uuid" jsonschema:"agency UUID; optional when the caller is already bound to an agency"`
	Title       string  `json:"title" validate:"required,max=200" jsonschema:"task title"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=2000" jsonschema:"details"`
	Due         string  `json:"due" validate:"required,max=100" jsonschema:"due date, e.g. 2026-03-20, demain or next monday"`
	Priority    string  `json:"priority,omitempty" validate:"omitempty,oneof=low medium high urgent" jsonschema:"low, medium, high or urgent, default medium"`
	RelatedType string  `json:"relatedType,omitempty" validate:"omitempty,oneof=contact property contract visit" jsonschema:"kind of the related record"`
	RelatedID   string  `json:"relatedId,omitempty" validate:"omitempty,uuid" jsonschema:"UUID of the related record"`
}

func (in *CreateTaskInput) agency() string { return in.AgencyID }
