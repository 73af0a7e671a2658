package tools

import (
	"context"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/internal/workflow"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/sanitize"

	"github.com/google/uuid"
)

// Tool names.
const (
	NameResolveContact       = "resolve_contact"
	NameResolveProperty      = "resolve_property"
	NameListProperties       = "list_properties"
	NameCreateContract       = "create_contract"
	NameUpdateContractStatus = "update_contract_status"
	NamePrepareContract      = "prepare_contract"
	NameDraftEmail           = "draft_email"
	NameScheduleVisit        = "schedule_visit"
	NameCreateTask           = "create_task"
)

func (r *Registry) definitions() []Tool {
	return []Tool{
		newTool[ResolveContactInput](NameResolveContact,
			"Find one contact from an id, an email, a phone number or a name. Returns ranked suggestions when the query is ambiguous or matches nobody.",
			true, r.resolveContact),
		newTool[ResolvePropertyInput](NameResolveProperty,
			"Find one property from an id, a reference such as APT-001 or an address. Optional filters narrow fuzzy matching.",
			true, r.resolveProperty),
		newTool[ListPropertiesInput](NameListProperties,
			"List the agency's properties with optional type, status, price range, city and text filters. Paginated.",
			true, r.listProperties),
		newTool[CreateContractInput](NameCreateContract,
			"Create a draft contract between an existing property and an existing contact. No other record is touched.",
			false, r.createContract),
		newTool[UpdateContractStatusInput](NameUpdateContractStatus,
			"Move a contract to another status. Allowed: draft to pending, pending to active, active to pending or signed, signed to completed, and any open contract to cancelled or expired.",
			false, r.updateContractStatus),
		newTool[PrepareContractInput](NamePrepareContract,
			"Prepare a contract end to end: resolve the property and the contact (creating the contact from newContact when nobody matches), create the draft, mark a published property under offer for sale contracts and add follow-up tasks. Returns a transcript with warnings and next steps.",
			false, r.prepareContract),
		newTool[DraftEmailInput](NameDraftEmail,
			"Draft an email to a contact from a template (visit confirmation, visit follow-up, contract ready, document request) in a formal or friendly tone, in French or English. Nothing is sent.",
			true, r.draftEmail),
		newTool[ScheduleVisitInput](NameScheduleVisit,
			"Schedule a property visit with a contact at a date given in plain language, and add a confirmation task.",
			false, r.scheduleVisit),
		newTool[CreateTaskInput](NameCreateTask,
			"Add a follow-up task due at a date given in plain language, optionally linked to a contact, property, contract or visit.",
			false, r.createTask),
	}
}

func (r *Registry) resolveContact(ctx context.Context, agencyID uuid.UUID, in *ResolveContactInput) (any, error) {
	contact, err := r.svc.ResolveContact(ctx, agencyID, in.Query)
	if err != nil {
		return nil, err
	}
	return contactView(contact), nil
}

func (r *Registry) resolveProperty(ctx context.Context, agencyID uuid.UUID, in *ResolvePropertyInput) (any, error) {
	filter := gateway.PropertyFilter{City: in.City, Type: in.Type, MinPrice: in.MinPrice, MaxPrice: in.MaxPrice}
	if in.Status != nil {
		status := domain.PropertyStatus(*in.Status)
		filter.Status = &status
	}
	property, err := r.svc.ResolveProperty(ctx, agencyID, in.Query, filter)
	if err != nil {
		return nil, err
	}
	return propertyView(property), nil
}

func (r *Registry) listProperties(ctx context.Context, agencyID uuid.UUID, in *ListPropertiesInput) (any, error) {
	filter := gateway.PropertyFilter{
		Type:     in.Type,
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		City:     in.City,
		Search:   in.Search,
		Page:     gateway.Page{Limit: in.Limit, Offset: in.Offset},
	}
	if in.Status != nil {
		status := domain.PropertyStatus(*in.Status)
		filter.Status = &status
	}
	items, total, err := r.svc.ListProperties(ctx, agencyID, filter)
	if err != nil {
		return nil, err
	}
	page := PropertyPage{Items: make([]PropertyView, 0, len(items)), Total: total, Limit: in.Limit, Offset: in.Offset}
	if page.Limit == 0 {
		page.Limit = gateway.DefaultPageSize
	}
	for _, p := range items {
		page.Items = append(page.Items, propertyView(p))
	}
	return page, nil
}

func (r *Registry) createContract(ctx context.Context, agencyID uuid.UUID, in *CreateContractInput) (any, error) {
	contract, err := r.svc.CreateContract(ctx, workflow.CreateContractParams{
		AgencyID:      agencyID,
		Type:          domain.ContractType(in.Type),
		PropertyQuery: in.PropertyQuery,
		ContactQuery:  in.ContactQuery,
		Terms:         terms(in.Terms),
	})
	if err != nil {
		return nil, err
	}
	return contractView(contract), nil
}

func (r *Registry) updateContractStatus(ctx context.Context, agencyID uuid.UUID, in *UpdateContractStatusInput) (any, error) {
	contract, err := r.svc.UpdateContractStatus(ctx, agencyID, uuid.MustParse(in.ContractID), domain.ContractStatus(in.Status))
	if err != nil {
		return nil, err
	}
	return contractView(contract), nil
}

func (r *Registry) prepareContract(ctx context.Context, agencyID uuid.UUID, in *PrepareContractInput) (any, error) {
	params := workflow.PrepareContractParams{
		AgencyID:      agencyID,
		Type:          domain.ContractType(in.Type),
		PropertyQuery: in.PropertyQuery,
		ContactQuery:  in.ContactQuery,
		Terms:         terms(in.Terms),
		CreateTasks:   in.CreateTasks == nil || *in.CreateTasks,
	}
	if nc := in.NewContact; nc != nil {
		params.NewContact = &workflow.NewContactFields{
			FirstName: sanitize.Line(nc.FirstName),
			LastName:  sanitize.Line(nc.LastName),
			Email:     nc.Email,
			Phone:     nc.Phone,
		}
		if nc.Type != nil {
			t := domain.ContactType(*nc.Type)
			params.NewContact.Type = &t
		}
	}

	result, err := r.svc.PrepareContract(ctx, params)
	if err != nil {
		return nil, err
	}
	out := PrepareContractOutput{
		Contract:       contractView(result.Contract),
		Property:       propertyView(result.Property),
		Contact:        contactView(result.Contact),
		ContactCreated: result.ContactCreated,
		Tasks:          make([]TaskView, 0, len(result.Tasks)),
		Transcript:     result.Transcript,
	}
	for _, t := range result.Tasks {
		out.Tasks = append(out.Tasks, taskView(t))
	}
	return out, nil
}

func (r *Registry) draftEmail(ctx context.Context, agencyID uuid.UUID, in *DraftEmailInput) (any, error) {
	params := workflow.DraftEmailParams{
		AgencyID:      agencyID,
		Type:          workflow.EmailType(in.Type),
		ContactQuery:  in.ContactQuery,
		PropertyQuery: in.PropertyQuery,
		Tone:          workflow.Tone(in.Tone),
		Language:      workflow.Language(in.Language),
	}
	if in.VisitID != "" {
		id := uuid.MustParse(in.VisitID)
		params.VisitID = &id
	}
	return r.svc.DraftEmail(ctx, params)
}

func (r *Registry) scheduleVisit(ctx context.Context, agencyID uuid.UUID, in *ScheduleVisitInput) (any, error) {
	result, err := r.svc.ScheduleVisit(ctx, workflow.ScheduleVisitParams{
		AgencyID:        agencyID,
		PropertyQuery:   in.PropertyQuery,
		ContactQuery:    in.ContactQuery,
		When:            in.When,
		DurationMinutes: in.DurationMinutes,
		CreateTask:      in.CreateTask == nil || *in.CreateTask,
	})
	if err != nil {
		return nil, err
	}
	out := ScheduleVisitOutput{
		Visit:      visitView(result.Visit),
		Property:   propertyView(result.Property),
		Contact:    contactView(result.Contact),
		Transcript: result.Transcript,
	}
	if result.Task != nil {
		tv := taskView(*result.Task)
		out.Task = &tv
	}
	return out, nil
}

func (r *Registry) createTask(ctx context.Context, agencyID uuid.UUID, in *CreateTaskInput) (any, error) {
	params := workflow.CreateTaskParams{
		AgencyID:    agencyID,
		Title:       sanitize.Line(in.Title),
		Description: sanitize.TextPtr(in.Description),
		Due:         in.Due,
		Priority:    domain.TaskPriority(in.Priority),
	}
	if params.Priority == "" {
		params.Priority = domain.PriorityMedium
	}
	if (in.RelatedType == "") != (in.RelatedID == "") {
		return nil, apperr.Validation("relatedType and relatedId go together")
	}
	if in.RelatedType != "" {
		params.RelatedTo = &domain.TaskRelation{Type: in.RelatedType, ID: uuid.MustParse(in.RelatedID)}
	}
	result, err := r.svc.CreateTask(ctx, params)
	if err != nil {
		return nil, err
	}
	return CreateTaskOutput{Task: taskView(result.Task), Transcript: result.Transcript}, nil
}

func terms(in *TermsInput) domain.ContractTerms {
	if in == nil {
		return domain.ContractTerms{}
	}
	return domain.ContractTerms{
		CommissionRate: in.CommissionRate,
		DurationMonths: in.DurationMonths,
		Exclusive:      in.Exclusive,
		Price:          in.Price,
		StartDate:      in.StartDate,
		Notes:          sanitize.Text(in.Notes),
	}
}
