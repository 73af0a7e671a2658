// Package resolver turns free-text or identifier queries into contacts and
// properties of one agency.
//
// Resolution walks an ordered list of strategies (identifier, exact field,
// exact reference, fuzzy rank) and stops at the first one that does not
// report NotFound. Backend failures surface as resolution errors and are
// never reported as NotFound.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"
	"agency_backoffice/platform/logger"
	"agency_backoffice/platform/phone"
	"agency_backoffice/platform/validator"

	"github.com/google/uuid"
)

// Status is the kind of outcome a resolution produced.
type Status int

const (
	StatusNotFound Status = iota
	StatusResolved
	StatusAmbiguous
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusAmbiguous:
		return "ambiguous"
	default:
		return "not_found"
	}
}

// Tier names the strategy that produced an outcome.
type Tier string

const (
	TierID        Tier = "id"
	TierEmail     Tier = "email"
	TierPhone     Tier = "phone"
	TierReference Tier = "reference"
	TierFuzzy     Tier = "fuzzy"
)

// Outcome is the result of resolving one query.
type Outcome[T any] struct {
	Status      Status
	Record      T
	Tier        Tier
	Score       float64
	Suggestions []string
}

// Resolved reports whether the outcome carries a record.
func (o Outcome[T]) Resolved() bool {
	return o.Status == StatusResolved
}

// Err converts a NotFound or Ambiguous outcome into a typed error carrying
// the suggestions. It returns nil for resolved outcomes.
func (o Outcome[T]) Err(noun, query string) error {
	switch o.Status {
	case StatusResolved:
		return nil
	case StatusAmbiguous:
		return apperr.Ambiguous(
			fmt.Sprintf("%q matches several %ss; please be more specific", query, noun),
			o.Suggestions,
		)
	default:
		return apperr.NotFound(fmt.Sprintf("no %s matches %q", noun, query)).WithSuggestions(o.Suggestions)
	}
}

func notFound[T any]() Outcome[T] {
	return Outcome[T]{Status: StatusNotFound}
}

// Options tunes the fuzzy tier.
type Options struct {
	// Threshold is the highest score a fuzzy winner may have.
	Threshold float64
	// TieMargin is the minimum lead the winner needs over the runner-up.
	TieMargin float64
	// MatchCutoff drops candidates scoring above it from the pool.
	MatchCutoff float64
	// CandidateLimit bounds the fuzzy candidate fetch.
	CandidateLimit int
	// SuggestionLimit bounds the labels returned with ambiguous outcomes.
	SuggestionLimit int
}

// DefaultOptions returns the production tuning.
func DefaultOptions() Options {
	return Options{
		Threshold:       0.3,
		TieMargin:       0.05,
		MatchCutoff:     0.6,
		CandidateLimit:  500,
		SuggestionLimit: 3,
	}
}

// strategy is one resolution tier.
type strategy[T any] struct {
	tier Tier
	run  func(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[T], error)
}

// Resolver resolves contacts and properties for one agency at a time.
type Resolver struct {
	contacts   gateway.ContactReader
	properties gateway.PropertyReader
	opts       Options
	check      *validator.Validator
	log        *logger.Logger
}

// New creates a resolver over the given readers.
func New(contacts gateway.ContactReader, properties gateway.PropertyReader, opts Options, log *logger.Logger) *Resolver {
	defaults := DefaultOptions()
	if opts.Threshold <= 0 {
		opts.Threshold = defaults.Threshold
	}
	if opts.TieMargin <= 0 {
		opts.TieMargin = defaults.TieMargin
	}
	if opts.MatchCutoff <= 0 {
		opts.MatchCutoff = defaults.MatchCutoff
	}
	if opts.CandidateLimit <= 0 {
		opts.CandidateLimit = defaults.CandidateLimit
	}
	if opts.SuggestionLimit <= 0 {
		opts.SuggestionLimit = defaults.SuggestionLimit
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Resolver{contacts: contacts, properties: properties, opts: opts, check: validator.New(), log: log}
}

// ResolveContact resolves a contact by id, email, phone or fuzzy name match.
func (r *Resolver) ResolveContact(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Contact], error) {
	strategies := []strategy[domain.Contact]{
		{tier: TierID, run: r.contactByID},
		{tier: TierEmail, run: r.contactByEmail},
		{tier: TierPhone, run: r.contactByPhone},
		{tier: TierFuzzy, run: r.fuzzyContact},
	}
	return run(ctx, r, "contact", agencyID, query, strategies)
}

// ResolveProperty resolves a property by id, reference or fuzzy address
// match. The filter only narrows the fuzzy tier.
func (r *Resolver) ResolveProperty(ctx context.Context, agencyID uuid.UUID, query string, filter gateway.PropertyFilter) (Outcome[domain.Property], error) {
	strategies := []strategy[domain.Property]{
		{tier: TierID, run: r.propertyByID},
		{tier: TierReference, run: r.propertyByReference},
		{tier: TierFuzzy, run: func(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Property], error) {
			return r.fuzzyProperty(ctx, agencyID, query, filter)
		}},
	}
	return run(ctx, r, "property", agencyID, query, strategies)
}

func run[T any](ctx context.Context, r *Resolver, noun string, agencyID uuid.UUID, query string, strategies []strategy[T]) (Outcome[T], error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return notFound[T](), apperr.Validation(noun + " query is required")
	}
	if agencyID == uuid.Nil {
		return notFound[T](), apperr.Validation("agencyId is required")
	}

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			return notFound[T](), apperr.Wrap(apperr.KindTimeout, "resolution cancelled", err)
		}
		outcome, err := s.run(ctx, agencyID, query)
		if err != nil {
			return notFound[T](), apperr.Resolution(fmt.Sprintf("could not resolve %s %q", noun, query), err).WithOp(string(s.tier))
		}
		if outcome.Status != StatusNotFound {
			outcome.Tier = s.tier
			r.log.Debug("entity resolution", "kind", noun, "tier", s.tier, "status", outcome.Status.String(), "score", outcome.Score)
			return outcome, nil
		}
	}

	r.log.Debug("entity resolution", "kind", noun, "status", StatusNotFound.String())
	return notFound[T](), nil
}

// miss reports whether err means "no row" rather than a backend failure.
func miss(err error) bool {
	return apperr.Is(err, apperr.KindNotFound)
}

func (r *Resolver) contactByID(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Contact], error) {
	id, err := uuid.Parse(query)
	if err != nil {
		return notFound[domain.Contact](), nil
	}
	c, err := r.contacts.GetContact(ctx, agencyID, id)
	if miss(err) {
		return notFound[domain.Contact](), nil
	}
	if err != nil {
		return notFound[domain.Contact](), err
	}
	return Outcome[domain.Contact]{Status: StatusResolved, Record: c}, nil
}

func (r *Resolver) contactByEmail(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Contact], error) {
	if r.check.Var(query, "email") != nil {
		return notFound[domain.Contact](), nil
	}
	c, err := r.contacts.FindContactByEmail(ctx, agencyID, query)
	if miss(err) {
		return notFound[domain.Contact](), nil
	}
	if err != nil {
		return notFound[domain.Contact](), err
	}
	return Outcome[domain.Contact]{Status: StatusResolved, Record: c}, nil
}

func (r *Resolver) contactByPhone(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Contact], error) {
	if !phone.LooksLikePhone(query) {
		return notFound[domain.Contact](), nil
	}
	key := phone.MatchKey(query)
	if key == "" {
		return notFound[domain.Contact](), nil
	}
	matches, err := r.contacts.FindContactsByPhoneSuffix(ctx, agencyID, key)
	if err != nil {
		return notFound[domain.Contact](), err
	}
	switch len(matches) {
	case 0:
		return notFound[domain.Contact](), nil
	case 1:
		return Outcome[domain.Contact]{Status: StatusResolved, Record: matches[0]}, nil
	default:
		labels := make([]string, 0, r.opts.SuggestionLimit)
		for i := 0; i < len(matches) && i < r.opts.SuggestionLimit; i++ {
			labels = append(labels, matches[i].Label())
		}
		return Outcome[domain.Contact]{Status: StatusAmbiguous, Suggestions: labels}, nil
	}
}

func (r *Resolver) fuzzyContact(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Contact], error) {
	candidates, err := r.contacts.ContactCandidates(ctx, agencyID, r.opts.CandidateLimit)
	if err != nil {
		return notFound[domain.Contact](), err
	}
	pool := rank(query, candidates, contactFields, r.opts.MatchCutoff)
	return decide(pool, r.opts, domain.Contact.Label), nil
}

func (r *Resolver) propertyByID(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Property], error) {
	id, err := uuid.Parse(query)
	if err != nil {
		return notFound[domain.Property](), nil
	}
	p, err := r.properties.GetProperty(ctx, agencyID, id)
	if miss(err) {
		return notFound[domain.Property](), nil
	}
	if err != nil {
		return notFound[domain.Property](), err
	}
	return Outcome[domain.Property]{Status: StatusResolved, Record: p}, nil
}

func (r *Resolver) propertyByReference(ctx context.Context, agencyID uuid.UUID, query string) (Outcome[domain.Property], error) {
	p, err := r.properties.FindPropertyByReference(ctx, agencyID, query)
	if miss(err) {
		return notFound[domain.Property](), nil
	}
	if err != nil {
		return notFound[domain.Property](), err
	}
	return Outcome[domain.Property]{Status: StatusResolved, Record: p}, nil
}

func (r *Resolver) fuzzyProperty(ctx context.Context, agencyID uuid.UUID, query string, filter gateway.PropertyFilter) (Outcome[domain.Property], error) {
	candidates, err := r.properties.PropertyCandidates(ctx, agencyID, filter, r.opts.CandidateLimit)
	if err != nil {
		return notFound[domain.Property](), err
	}
	pool := rank(query, candidates, propertyFields, r.opts.MatchCutoff)
	return decide(pool, r.opts, domain.Property.Label), nil
}

// decide promotes the top of the pool when it clears the threshold with a
// clear lead over the runner-up, and otherwise returns the top labels. An
// exact match leads any inexact runner-up regardless of the margin, so
// "jean" picks Jean over Jeanne.
func decide[T any](pool []scored[T], opts Options, label func(T) string) Outcome[T] {
	if len(pool) == 0 {
		return notFound[T]()
	}
	top := pool[0]
	clearLead := len(pool) == 1 || pool[1].score-top.score > opts.TieMargin
	soleExact := top.score == 0 && (len(pool) == 1 || pool[1].score > 0)
	if top.score < opts.Threshold && (clearLead || soleExact) {
		return Outcome[T]{Status: StatusResolved, Record: top.item, Score: top.score}
	}

	n := opts.SuggestionLimit
	if n > len(pool) {
		n = len(pool)
	}
	labels := make([]string, 0, n)
	for _, s := range pool[:n] {
		labels = append(labels, label(s.item))
	}
	return Outcome[T]{Status: StatusAmbiguous, Score: top.score, Suggestions: labels}
}

func contactFields(c domain.Contact) []Field {
	fields := []Field{
		{Value: c.FirstName, Weight: 0.4},
		{Value: c.LastName, Weight: 0.4},
	}
	if c.Email != nil {
		fields = append(fields, Field{Value: *c.Email, Weight: 0.15})
	}
	if c.Phone != nil {
		fields = append(fields, Field{Value: phone.Digits(*c.Phone), Weight: 0.05})
	}
	return fields
}

func propertyFields(p domain.Property) []Field {
	return []Field{
		{Value: p.Reference, Weight: 0.5},
		{Value: p.Address.Street, Weight: 0.25},
		{Value: p.Address.City, Weight: 0.15},
		{Value: p.Address.PostalCode, Weight: 0.1},
	}
}
