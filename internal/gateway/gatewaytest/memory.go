// Package gatewaytest provides an in-memory gateway for tests, with a write
// counter and per-method fault injection.
package gatewaytest

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/phone"

	"github.com/google/uuid"
)

// Method names accepted by FailOn.
const (
	MethodListContacts         = "ListContacts"
	MethodGetContact           = "GetContact"
	MethodFindContactByEmail   = "FindContactByEmail"
	MethodFindContactsByPhone  = "FindContactsByPhoneSuffix"
	MethodContactCandidates    = "ContactCandidates"
	MethodInsertContact        = "InsertContact"
	MethodUpdateContact        = "UpdateContact"
	MethodListProperties       = "ListProperties"
	MethodGetProperty          = "GetProperty"
	MethodFindPropertyByRef    = "FindPropertyByReference"
	MethodPropertyCandidates   = "PropertyCandidates"
	MethodInsertProperty       = "InsertProperty"
	MethodUpdatePropertyStatus = "UpdatePropertyStatus"
	MethodGetContract          = "GetContract"
	MethodListContracts        = "ListContracts"
	MethodInsertContract       = "InsertContract"
	MethodUpdateContractStatus = "UpdateContractStatus"
	MethodGetTask              = "GetTask"
	MethodInsertTask           = "InsertTask"
	MethodListTasks            = "ListTasks"
	MethodGetVisit             = "GetVisit"
	MethodInsertVisit          = "InsertVisit"
	MethodDelete               = "Delete"
)

// Memory is a Gateway backed by maps.
type Memory struct {
	mu         sync.Mutex
	contacts   map[uuid.UUID]domain.Contact
	properties map[uuid.UUID]domain.Property
	contracts  map[uuid.UUID]domain.Contract
	tasks      map[uuid.UUID]domain.Task
	visits     map[uuid.UUID]domain.Visit

	failures map[string]error
	writes   map[string]int
	clock    time.Time
}

var _ gateway.Gateway = (*Memory)(nil)

// New returns an empty store.
func New() *Memory {
	return &Memory{
		contacts:   make(map[uuid.UUID]domain.Contact),
		properties: make(map[uuid.UUID]domain.Property),
		contracts:  make(map[uuid.UUID]domain.Contract),
		tasks:      make(map[uuid.UUID]domain.Task),
		visits:     make(map[uuid.UUID]domain.Visit),
		failures:   make(map[string]error),
		writes:     make(map[string]int),
		clock:      time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC),
	}
}

// FailOn makes every later call to method return err.
func (m *Memory) FailOn(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[method] = err
}

// Writes returns the number of attempted write calls, successful or not.
func (m *Memory) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.writes {
		total += n
	}
	return total
}

// WritesTo returns the number of attempted calls to one write method.
func (m *Memory) WritesTo(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[method]
}

// tick advances the fake clock so seeded rows get strictly increasing
// update times. Caller holds the lock.
func (m *Memory) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *Memory) fail(method string) error {
	return m.failures[method]
}

func (m *Memory) write(method string) error {
	m.writes[method]++
	return m.failures[method]
}

// SeedContact stores c, assigning an id and timestamps when missing.
func (m *Memory) SeedContact(c domain.Contact) domain.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = domain.ContactStatusNew
	}
	now := m.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	m.contacts[c.ID] = c
	return c
}

// SeedProperty stores p, assigning an id and timestamps when missing.
func (m *Memory) SeedProperty(p domain.Property) domain.Property {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = domain.PropertyDraft
	}
	now := m.tick()
	p.CreatedAt, p.UpdatedAt = now, now
	m.properties[p.ID] = p
	return p
}

// SeedContract stores c, assigning an id when missing.
func (m *Memory) SeedContract(c domain.Contract) domain.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := m.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	m.contracts[c.ID] = c
	return c
}

// SeedVisit stores v, assigning an id when missing.
func (m *Memory) SeedVisit(v domain.Visit) domain.Visit {
	m.mu.Lock()
	defer m.mu.Unlock()
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	now := m.tick()
	v.CreatedAt, v.UpdatedAt = now, now
	m.visits[v.ID] = v
	return v
}

// AllContracts returns every stored contract of the agency.
func (m *Memory) AllContracts(agencyID uuid.UUID) []domain.Contract {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Contract, 0)
	for _, c := range m.contracts {
		if c.AgencyID == agencyID {
			out = append(out, c)
		}
	}
	return out
}

// AllTasks returns every stored task of the agency ordered by due date.
func (m *Memory) AllTasks(agencyID uuid.UUID) []domain.Task {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Task, 0)
	for _, t := range m.tasks {
		if t.AgencyID == agencyID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return out
}

// AllContacts returns every stored contact of the agency.
func (m *Memory) AllContacts(agencyID uuid.UUID) []domain.Contact {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.contactsOf(agencyID)
}

// contactsOf returns the agency's contacts, most recently updated first.
func (m *Memory) contactsOf(agencyID uuid.UUID) []domain.Contact {
	out := make([]domain.Contact, 0)
	for _, c := range m.contacts {
		if c.AgencyID == agencyID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func (m *Memory) propertiesOf(agencyID uuid.UUID, filter gateway.PropertyFilter) []domain.Property {
	out := make([]domain.Property, 0)
	for _, p := range m.properties {
		if p.AgencyID == agencyID && propertyMatches(p, filter) {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out
}

func propertyMatches(p domain.Property, f gateway.PropertyFilter) bool {
	if f.Type != nil && *f.Type != "" && p.Type != *f.Type {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.City != nil && strings.TrimSpace(*f.City) != "" && !strings.EqualFold(p.Address.City, strings.TrimSpace(*f.City)) {
		return false
	}
	if term := strings.ToLower(strings.TrimSpace(f.Search)); term != "" {
		hay := strings.ToLower(strings.Join([]string{
			p.Reference, p.Title, p.Address.Street, p.Address.City, p.Address.PostalCode,
		}, " "))
		if !strings.Contains(hay, term) {
			return false
		}
	}
	return true
}

func paginate[T any](items []T, page gateway.Page) []T {
	limit := page.Limit
	if limit <= 0 {
		limit = gateway.DefaultPageSize
	}
	if limit > gateway.MaxPageSize {
		limit = gateway.MaxPageSize
	}
	offset := page.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

func (m *Memory) ListContacts(ctx context.Context, agencyID uuid.UUID, filter gateway.ContactFilter) ([]domain.Contact, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodListContacts); err != nil {
		return nil, 0, err
	}
	term := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Contact, 0)
	for _, c := range m.contactsOf(agencyID) {
		if filter.Type != nil && c.Type != *filter.Type {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(c.Label()), term) {
			continue
		}
		out = append(out, c)
	}
	return paginate(out, filter.Page), len(out), nil
}

func (m *Memory) GetContact(ctx context.Context, agencyID, id uuid.UUID) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodGetContact); err != nil {
		return domain.Contact{}, err
	}
	c, ok := m.contacts[id]
	if !ok || c.AgencyID != agencyID {
		return domain.Contact{}, apperr.NotFound("contact not found")
	}
	return c, nil
}

func (m *Memory) FindContactByEmail(ctx context.Context, agencyID uuid.UUID, email string) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodFindContactByEmail); err != nil {
		return domain.Contact{}, err
	}
	for _, c := range m.contactsOf(agencyID) {
		if c.Email != nil && strings.EqualFold(*c.Email, strings.TrimSpace(email)) {
			return c, nil
		}
	}
	return domain.Contact{}, apperr.NotFound("contact not found")
}

func (m *Memory) FindContactsByPhoneSuffix(ctx context.Context, agencyID uuid.UUID, suffix string) ([]domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodFindContactsByPhone); err != nil {
		return nil, err
	}
	out := make([]domain.Contact, 0)
	for _, c := range m.contactsOf(agencyID) {
		if c.Phone != nil && strings.HasSuffix(phone.Digits(*c.Phone), suffix) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *Memory) ContactCandidates(ctx context.Context, agencyID uuid.UUID, limit int) ([]domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodContactCandidates); err != nil {
		return nil, err
	}
	out := m.contactsOf(agencyID)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) InsertContact(ctx context.Context, agencyID uuid.UUID, params gateway.NewContact) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodInsertContact); err != nil {
		return domain.Contact{}, err
	}
	status := params.Status
	if status == "" {
		status = domain.ContactStatusNew
	}
	now := m.tick()
	c := domain.Contact{
		ID: uuid.New(), AgencyID: agencyID, Type: params.Type,
		FirstName: params.FirstName, LastName: params.LastName,
		Email: params.Email, Phone: params.Phone, Status: status, Notes: params.Notes,
		CreatedAt: now, UpdatedAt: now,
	}
	m.contacts[c.ID] = c
	return c, nil
}

func (m *Memory) UpdateContact(ctx context.Context, agencyID, id uuid.UUID, params gateway.ContactUpdate) (domain.Contact, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contact{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodUpdateContact); err != nil {
		return domain.Contact{}, err
	}
	c, ok := m.contacts[id]
	if !ok || c.AgencyID != agencyID {
		return domain.Contact{}, apperr.NotFound("contact not found")
	}
	if params.Type != nil {
		c.Type = *params.Type
	}
	if params.FirstName != nil {
		c.FirstName = *params.FirstName
	}
	if params.LastName != nil {
		c.LastName = *params.LastName
	}
	if params.Email != nil {
		c.Email = params.Email
	}
	if params.Phone != nil {
		c.Phone = params.Phone
	}
	if params.Status != nil {
		c.Status = *params.Status
	}
	if params.Notes != nil {
		c.Notes = params.Notes
	}
	c.UpdatedAt = m.tick()
	m.contacts[id] = c
	return c, nil
}

func (m *Memory) ListProperties(ctx context.Context, agencyID uuid.UUID, filter gateway.PropertyFilter) ([]domain.Property, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodListProperties); err != nil {
		return nil, 0, err
	}
	out := m.propertiesOf(agencyID, filter)
	return paginate(out, filter.Page), len(out), nil
}

func (m *Memory) GetProperty(ctx context.Context, agencyID, id uuid.UUID) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodGetProperty); err != nil {
		return domain.Property{}, err
	}
	p, ok := m.properties[id]
	if !ok || p.AgencyID != agencyID {
		return domain.Property{}, apperr.NotFound("property not found")
	}
	return p, nil
}

func (m *Memory) FindPropertyByReference(ctx context.Context, agencyID uuid.UUID, reference string) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodFindPropertyByRef); err != nil {
		return domain.Property{}, err
	}
	for _, p := range m.propertiesOf(agencyID, gateway.PropertyFilter{}) {
		if strings.EqualFold(p.Reference, strings.TrimSpace(reference)) {
			return p, nil
		}
	}
	return domain.Property{}, apperr.NotFound("property not found")
}

func (m *Memory) PropertyCandidates(ctx context.Context, agencyID uuid.UUID, filter gateway.PropertyFilter, limit int) ([]domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodPropertyCandidates); err != nil {
		return nil, err
	}
	filter.Search = ""
	out := m.propertiesOf(agencyID, filter)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) InsertProperty(ctx context.Context, agencyID uuid.UUID, params gateway.NewProperty) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodInsertProperty); err != nil {
		return domain.Property{}, err
	}
	status := params.Status
	if status == "" {
		status = domain.PropertyDraft
	}
	now := m.tick()
	p := domain.Property{
		ID: uuid.New(), AgencyID: agencyID, Reference: params.Reference, Title: params.Title,
		Type: params.Type, Status: status, Price: params.Price, Address: params.Address,
		Characteristics: params.Characteristics, OwnerID: params.OwnerID,
		CreatedAt: now, UpdatedAt: now,
	}
	m.properties[p.ID] = p
	return p, nil
}

func (m *Memory) UpdatePropertyStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.PropertyStatus) (domain.Property, error) {
	if err := ctx.Err(); err != nil {
		return domain.Property{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodUpdatePropertyStatus); err != nil {
		return domain.Property{}, err
	}
	p, ok := m.properties[id]
	if !ok || p.AgencyID != agencyID {
		return domain.Property{}, apperr.NotFound("property not found")
	}
	p.Status = status
	p.UpdatedAt = m.tick()
	m.properties[id] = p
	return p, nil
}

func (m *Memory) GetContract(ctx context.Context, agencyID, id uuid.UUID) (domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contract{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodGetContract); err != nil {
		return domain.Contract{}, err
	}
	c, ok := m.contracts[id]
	if !ok || c.AgencyID != agencyID {
		return domain.Contract{}, apperr.NotFound("contract not found")
	}
	return c, nil
}

func (m *Memory) ListContracts(ctx context.Context, agencyID uuid.UUID, filter gateway.ContractFilter) ([]domain.Contract, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodListContracts); err != nil {
		return nil, 0, err
	}
	out := make([]domain.Contract, 0)
	for _, c := range m.contracts {
		if c.AgencyID != agencyID {
			continue
		}
		if filter.PropertyID != nil && c.PropertyID != *filter.PropertyID {
			continue
		}
		if filter.ContactID != nil && c.ContactID != *filter.ContactID {
			continue
		}
		if filter.Status != nil && c.Status != *filter.Status {
			continue
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return paginate(out, filter.Page), len(out), nil
}

func (m *Memory) InsertContract(ctx context.Context, agencyID uuid.UUID, params gateway.NewContract) (domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contract{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodInsertContract); err != nil {
		return domain.Contract{}, err
	}
	status := params.Status
	if status == "" {
		status = domain.ContractDraft
	}
	now := m.tick()
	c := domain.Contract{
		ID: uuid.New(), AgencyID: agencyID, Type: params.Type, Status: status,
		PropertyID: params.PropertyID, ContactID: params.ContactID, Data: params.Data,
		CreatedAt: now, UpdatedAt: now,
	}
	m.contracts[c.ID] = c
	return c, nil
}

func (m *Memory) UpdateContractStatus(ctx context.Context, agencyID, id uuid.UUID, status domain.ContractStatus) (domain.Contract, error) {
	if err := ctx.Err(); err != nil {
		return domain.Contract{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodUpdateContractStatus); err != nil {
		return domain.Contract{}, err
	}
	c, ok := m.contracts[id]
	if !ok || c.AgencyID != agencyID {
		return domain.Contract{}, apperr.NotFound("contract not found")
	}
	c.Status = status
	c.UpdatedAt = m.tick()
	m.contracts[id] = c
	return c, nil
}

func (m *Memory) GetTask(ctx context.Context, agencyID, id uuid.UUID) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodGetTask); err != nil {
		return domain.Task{}, err
	}
	t, ok := m.tasks[id]
	if !ok || t.AgencyID != agencyID {
		return domain.Task{}, apperr.NotFound("task not found")
	}
	return t, nil
}

func (m *Memory) InsertTask(ctx context.Context, agencyID uuid.UUID, params gateway.NewTask) (domain.Task, error) {
	if err := ctx.Err(); err != nil {
		return domain.Task{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodInsertTask); err != nil {
		return domain.Task{}, err
	}
	priority := params.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}
	status := params.Status
	if status == "" {
		status = domain.TaskTodo
	}
	now := m.tick()
	due := params.DueDate
	t := domain.Task{
		ID: uuid.New(), AgencyID: agencyID, Title: params.Title, Description: params.Description,
		DueDate:  time.Date(due.Year(), due.Month(), due.Day(), 0, 0, 0, 0, time.UTC),
		Priority: priority,
		Status:   status, RelatedTo: params.RelatedTo,
		CreatedAt: now, UpdatedAt: now,
	}
	m.tasks[t.ID] = t
	return t, nil
}

func (m *Memory) ListTasks(ctx context.Context, agencyID uuid.UUID, filter gateway.TaskFilter) ([]domain.Task, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodListTasks); err != nil {
		return nil, 0, err
	}
	out := make([]domain.Task, 0)
	for _, t := range m.tasks {
		if t.AgencyID != agencyID {
			continue
		}
		if filter.Status != nil && t.Status != *filter.Status {
			continue
		}
		if filter.RelatedTo != nil && (t.RelatedTo == nil || *t.RelatedTo != *filter.RelatedTo) {
			continue
		}
		if filter.DueBefore != nil && t.DueDate.After(*filter.DueBefore) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DueDate.Before(out[j].DueDate) })
	return paginate(out, filter.Page), len(out), nil
}

func (m *Memory) GetVisit(ctx context.Context, agencyID, id uuid.UUID) (domain.Visit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Visit{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.fail(MethodGetVisit); err != nil {
		return domain.Visit{}, err
	}
	v, ok := m.visits[id]
	if !ok || v.AgencyID != agencyID {
		return domain.Visit{}, apperr.NotFound("visit not found")
	}
	return v, nil
}

func (m *Memory) InsertVisit(ctx context.Context, agencyID uuid.UUID, params gateway.NewVisit) (domain.Visit, error) {
	if err := ctx.Err(); err != nil {
		return domain.Visit{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodInsertVisit); err != nil {
		return domain.Visit{}, err
	}
	duration := params.DurationMinutes
	if duration <= 0 {
		duration = 60
	}
	status := params.Status
	if status == "" {
		status = domain.VisitScheduled
	}
	now := m.tick()
	v := domain.Visit{
		ID: uuid.New(), AgencyID: agencyID, PropertyID: params.PropertyID, ContactID: params.ContactID,
		ScheduledAt: params.ScheduledAt, DurationMinutes: duration, Status: status,
		CreatedAt: now, UpdatedAt: now,
	}
	m.visits[v.ID] = v
	return v, nil
}

func (m *Memory) Delete(ctx context.Context, agencyID uuid.UUID, entity gateway.Entity, id uuid.UUID) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.write(MethodDelete); err != nil {
		return err
	}
	found := false
	switch entity {
	case gateway.EntityContact:
		if c, ok := m.contacts[id]; ok && c.AgencyID == agencyID {
			delete(m.contacts, id)
			found = true
		}
	case gateway.EntityProperty:
		if p, ok := m.properties[id]; ok && p.AgencyID == agencyID {
			delete(m.properties, id)
			found = true
		}
	case gateway.EntityContract:
		if c, ok := m.contracts[id]; ok && c.AgencyID == agencyID {
			delete(m.contracts, id)
			found = true
		}
	case gateway.EntityTask:
		if t, ok := m.tasks[id]; ok && t.AgencyID == agencyID {
			delete(m.tasks, id)
			found = true
		}
	case gateway.EntityVisit:
		if v, ok := m.visits[id]; ok && v.AgencyID == agencyID {
			delete(m.visits, id)
			found = true
		}
	default:
		return apperr.BadRequest("unknown entity " + string(entity))
	}
	if !found {
		return apperr.NotFound(string(entity) + " not found")
	}
	return nil
}
