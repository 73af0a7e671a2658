package workflow

import (
	"context"
	"fmt"
	"strings"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/events"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/resolver"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// NewContactFields describes a contact to create when the contact query
// does not resolve.
type NewContactFields struct {
	FirstName string
	LastName  string
	Email     *string
	Phone     *string
	// Type overrides the type inferred from the contract type.
	Type *domain.ContactType
}

func (f *NewContactFields) usable() bool {
	return f != nil && strings.TrimSpace(f.FirstName) != "" && strings.TrimSpace(f.LastName) != ""
}

// PrepareContractParams are the inputs of PrepareContract.
type PrepareContractParams struct {
	AgencyID      uuid.UUID
	Type          domain.ContractType
	PropertyQuery string
	ContactQuery  string
	Terms         domain.ContractTerms
	// NewContact is used only when ContactQuery does not resolve. Retrying a
	// call with the same fields creates a second contact.
	NewContact  *NewContactFields
	CreateTasks bool
}

// PrepareContractResult reports what PrepareContract did.
type PrepareContractResult struct {
	Contract       domain.Contract
	Property       domain.Property
	Contact        domain.Contact
	ContactCreated bool
	Tasks          []domain.Task
	Transcript     *Transcript
}

// checklists holds the recommended next steps per contract type.
var checklists = map[domain.ContractType][]string{
	domain.ContractMandate: {
		"Collect the owner's ID and title deed",
		"Attach the mandatory diagnostics (DPE, asbestos, lead, electricity)",
		"Confirm commission rate and mandate duration with the owner",
		"Send the mandate for signature and register it in the mandate book",
	},
	domain.ContractSaleExisting: {
		"Check the buyer's financing (loan agreement in principle or proof of funds)",
		"Gather the seller's diagnostics and co-ownership documents",
		"Send the draft to the notary",
		"Schedule the preliminary sale agreement signature",
	},
	domain.ContractSaleVEFA: {
		"Attach the developer's reservation contract and technical notice",
		"Verify the completion guarantee",
		"Check the buyer's financing",
		"Schedule the signature with the developer's notary",
	},
	domain.ContractRental: {
		"Collect the tenant's application file (ID, payslips, tax notice)",
		"Check the guarantor or rental insurance",
		"Prepare the check-in inventory",
		"Collect the security deposit",
	},
	domain.ContractOffer: {
		"Send the offer to the seller",
		"Set a response deadline",
		"Check the buyer's financing",
	},
	domain.ContractReservation: {
		"Collect the reservation deposit",
		"Send the reservation contract to the buyer",
		"Notify the developer of the reservation",
	},
}

// NextSteps returns the checklist for a contract type.
func NextSteps(t domain.ContractType) []string {
	return append([]string{}, checklists[t]...)
}

// PrepareContract resolves the property and the contact, creates a draft
// contract, marks a published property as under offer for sale contracts,
// and adds follow-up tasks. Resolution failures abort before any write;
// the property update and the tasks are best-effort.
func (s *Service) PrepareContract(ctx context.Context, params PrepareContractParams) (PrepareContractResult, error) {
	if err := requireAgency(params.AgencyID); err != nil {
		return PrepareContractResult{}, err
	}
	if !params.Type.IsValid() {
		return PrepareContractResult{}, apperr.Validation(fmt.Sprintf("unknown contract type %q", params.Type))
	}

	property, contactOutcome, err := s.resolvePair(ctx, params.AgencyID, params.PropertyQuery, params.ContactQuery)
	if err != nil {
		return PrepareContractResult{}, err
	}

	result := PrepareContractResult{Property: property, Transcript: newTranscript()}
	tr := result.Transcript
	tr.action("Resolved property %s", property.Label())

	switch {
	case contactOutcome.Resolved():
		result.Contact = contactOutcome.Record
		tr.action("Resolved contact %s", result.Contact.Label())
	case params.NewContact.usable():
	default:
		return PrepareContractResult{}, contactOutcome.Err("contact", params.ContactQuery)
	}

	steps := []Step{}
	if !contactOutcome.Resolved() {
		steps = append(steps, Step{Name: "create contact", Policy: Fatal, Run: func(ctx context.Context) (string, error) {
			contact, err := s.createContact(ctx, params.AgencyID, params.Type, params.NewContact)
			if err != nil {
				return "", err
			}
			result.Contact = contact
			result.ContactCreated = true
			tr.created("contact", contact.ID)
			return fmt.Sprintf("Created contact %s (%s)", contact.FullName(), contact.Type), nil
		}})
	}

	steps = append(steps,
		Step{Name: "create contract", Policy: Fatal, Run: func(ctx context.Context) (string, error) {
			contract, err := s.gw.InsertContract(ctx, params.AgencyID, gateway.NewContract{
				Type:       params.Type,
				Status:     domain.ContractDraft,
				PropertyID: property.ID,
				ContactID:  result.Contact.ID,
				Data:       params.Terms,
			})
			if err != nil {
				return "", writeErr("could not create contract", err)
			}
			result.Contract = contract
			tr.created("contract", contract.ID)
			return fmt.Sprintf("Created %s contract %s in draft", contract.Type, contract.ID), nil
		}},
		Step{Name: "mark property under offer", Policy: BestEffort, Run: func(ctx context.Context) (string, error) {
			if !params.Type.IsSale() || property.Status != domain.PropertyPublished {
				return "", nil
			}
			updated, err := s.gw.UpdatePropertyStatus(ctx, params.AgencyID, property.ID, domain.PropertyUnderOffer)
			if err != nil {
				return "", err
			}
			result.Property = updated
			tr.updated("property", updated.ID)
			return fmt.Sprintf("Moved property %s from published to under_offer", updated.Reference), nil
		}},
	)

	if params.CreateTasks {
		today := s.today()
		steps = append(steps,
			s.taskStep(params.AgencyID, &result.Tasks, tr, func() gateway.NewTask {
				return gateway.NewTask{
					Title:     fmt.Sprintf("Review and send %s contract for %s", params.Type, property.Reference),
					DueDate:   today,
					Priority:  domain.PriorityHigh,
					RelatedTo: &domain.TaskRelation{Type: "contract", ID: result.Contract.ID},
				}
			}),
			s.taskStep(params.AgencyID, &result.Tasks, tr, func() gateway.NewTask {
				return gateway.NewTask{
					Title:     fmt.Sprintf("Follow up on signature with %s", result.Contact.FullName()),
					DueDate:   today.AddDate(0, 0, 3),
					Priority:  domain.PriorityMedium,
					RelatedTo: &domain.TaskRelation{Type: "contract", ID: result.Contract.ID},
				}
			}),
		)
	}

	if err := s.runSteps(ctx, "prepare_contract", tr, steps); err != nil {
		return PrepareContractResult{}, err
	}

	tr.NextSteps = append(tr.NextSteps, fmt.Sprintf("Review draft contract %s", result.Contract.ID))
	tr.NextSteps = append(tr.NextSteps, NextSteps(params.Type)...)

	s.log.WithContext(ctx).Info("contract prepared",
		"contractId", result.Contract.ID,
		"type", params.Type,
		"contactCreated", result.ContactCreated,
		"warnings", len(tr.Warnings),
	)
	s.publish(ctx, events.ContractPrepared{
		BaseEvent:    events.NewBaseEvent(params.AgencyID),
		ContractID:   result.Contract.ID,
		ContractType: string(params.Type),
		PropertyID:   property.ID,
		ContactID:    result.Contact.ID,
		ContactNew:   result.ContactCreated,
		Warnings:     len(tr.Warnings),
	})
	return result, nil
}

// resolvePair resolves the property and the contact concurrently. Both are
// reads; the property must resolve, the contact outcome is returned as is.
// A property problem is reported ahead of any contact failure.
func (s *Service) resolvePair(ctx context.Context, agencyID uuid.UUID, propertyQuery, contactQuery string) (domain.Property, resolver.Outcome[domain.Contact], error) {
	var propertyOutcome resolver.Outcome[domain.Property]
	var contactOutcome resolver.Outcome[domain.Contact]
	var propertyErr, contactErr error

	var g errgroup.Group
	g.Go(func() error {
		propertyOutcome, propertyErr = s.resolver.ResolveProperty(ctx, agencyID, propertyQuery, gateway.PropertyFilter{})
		return nil
	})
	g.Go(func() error {
		contactOutcome, contactErr = s.resolver.ResolveContact(ctx, agencyID, contactQuery)
		return nil
	})
	_ = g.Wait()

	switch {
	case propertyErr != nil:
		return domain.Property{}, contactOutcome, propertyErr
	case !propertyOutcome.Resolved():
		return domain.Property{}, contactOutcome, propertyOutcome.Err("property", propertyQuery)
	case contactErr != nil:
		return domain.Property{}, contactOutcome, contactErr
	}
	return propertyOutcome.Record, contactOutcome, nil
}

func (s *Service) createContact(ctx context.Context, agencyID uuid.UUID, contractType domain.ContractType, fields *NewContactFields) (domain.Contact, error) {
	contactType := contractType.DefaultContactType()
	if fields.Type != nil {
		if !fields.Type.IsValid() {
			return domain.Contact{}, apperr.Validation(fmt.Sprintf("unknown contact type %q", *fields.Type))
		}
		contactType = *fields.Type
	}
	contact, err := s.gw.InsertContact(ctx, agencyID, gateway.NewContact{
		Type:      contactType,
		FirstName: strings.TrimSpace(fields.FirstName),
		LastName:  strings.TrimSpace(fields.LastName),
		Email:     fields.Email,
		Phone:     fields.Phone,
		Status:    domain.ContactStatusNew,
	})
	if err != nil {
		return domain.Contact{}, writeErr("could not create contact", err)
	}
	return contact, nil
}

// taskStep builds a best-effort step inserting the task returned by build
// and queueing its reminder. build runs at execution time so it sees ids
// produced by earlier steps.
func (s *Service) taskStep(agencyID uuid.UUID, into *[]domain.Task, tr *Transcript, build func() gateway.NewTask) Step {
	return Step{Name: "create task", Policy: BestEffort, Run: func(ctx context.Context) (string, error) {
		params := build()
		task, err := s.gw.InsertTask(ctx, agencyID, params)
		if err != nil {
			return "", err
		}
		*into = append(*into, task)
		tr.created("task", task.ID)
		s.scheduleReminder(ctx, "create task", task, tr)
		return fmt.Sprintf("Created task %q due %s", task.Title, task.DueDate.Format("2006-01-02")), nil
	}}
}

// scheduleReminder queues a reminder; failure is a warning only.
func (s *Service) scheduleReminder(ctx context.Context, operation string, task domain.Task, tr *Transcript) {
	if s.reminders == nil {
		return
	}
	if err := s.reminders.ScheduleReminder(ctx, task); err != nil {
		tr.warn("reminder for task %s failed: %v", task.ID, err)
		s.log.WithContext(ctx).WorkflowWarning(operation, "schedule reminder", err)
	}
}

// CreateContractParams are the inputs of CreateContract.
type CreateContractParams struct {
	AgencyID      uuid.UUID
	Type          domain.ContractType
	PropertyQuery string
	ContactQuery  string
	Terms         domain.ContractTerms
}

// CreateContract resolves both parties and inserts a draft contract. It
// never creates contacts and has no side effects.
func (s *Service) CreateContract(ctx context.Context, params CreateContractParams) (domain.Contract, error) {
	if err := requireAgency(params.AgencyID); err != nil {
		return domain.Contract{}, err
	}
	if !params.Type.IsValid() {
		return domain.Contract{}, apperr.Validation(fmt.Sprintf("unknown contract type %q", params.Type))
	}

	property, contactOutcome, err := s.resolvePair(ctx, params.AgencyID, params.PropertyQuery, params.ContactQuery)
	if err != nil {
		return domain.Contract{}, err
	}
	if !contactOutcome.Resolved() {
		return domain.Contract{}, contactOutcome.Err("contact", params.ContactQuery)
	}

	contract, err := s.gw.InsertContract(ctx, params.AgencyID, gateway.NewContract{
		Type:       params.Type,
		Status:     domain.ContractDraft,
		PropertyID: property.ID,
		ContactID:  contactOutcome.Record.ID,
		Data:       params.Terms,
	})
	if err != nil {
		return domain.Contract{}, writeErr("could not create contract", err)
	}

	s.log.WithContext(ctx).Info("contract created", "contractId", contract.ID, "type", contract.Type)
	return contract, nil
}

// UpdateContractStatus moves a contract along the status machine. Setting
// the current status again is a no-op that returns the contract unchanged.
func (s *Service) UpdateContractStatus(ctx context.Context, agencyID, contractID uuid.UUID, status domain.ContractStatus) (domain.Contract, error) {
	if err := requireAgency(agencyID); err != nil {
		return domain.Contract{}, err
	}
	if !status.IsValid() {
		return domain.Contract{}, apperr.Validation(fmt.Sprintf("unknown contract status %q", status))
	}

	current, err := s.gw.GetContract(ctx, agencyID, contractID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) || apperr.Is(err, apperr.KindTimeout) {
			return domain.Contract{}, err
		}
		return domain.Contract{}, apperr.Resolution("could not load contract", err)
	}
	if current.Status == status {
		return current, nil
	}
	if !domain.CanTransition(current.Status, status) {
		allowed := domain.AllowedTransitions(current.Status)
		suggestions := make([]string, 0, len(allowed))
		for _, a := range allowed {
			suggestions = append(suggestions, string(a))
		}
		return domain.Contract{}, apperr.Conflict(
			fmt.Sprintf("cannot move contract from %s to %s", current.Status, status),
		).WithSuggestions(suggestions)
	}

	updated, err := s.gw.UpdateContractStatus(ctx, agencyID, contractID, status)
	if err != nil {
		return domain.Contract{}, writeErr("could not update contract status", err)
	}

	s.log.WithContext(ctx).Info("contract status changed", "contractId", contractID, "from", current.Status, "to", status)
	s.publish(ctx, events.ContractStatusChanged{
		BaseEvent:  events.NewBaseEvent(agencyID),
		ContractID: contractID,
		OldStatus:  string(current.Status),
		NewStatus:  string(status),
	})
	return updated, nil
}
