package workflow

import (
	"context"

	"agency_backoffice/internal/domain"
	"agency_backoffice/internal/gateway"
	"agency_backoffice/platform/apperr"

	"github.com/google/uuid"
)

// ResolveContact returns the contact a query designates, or a NotFound or
// Ambiguous error carrying suggestions.
func (s *Service) ResolveContact(ctx context.Context, agencyID uuid.UUID, query string) (domain.Contact, error) {
	outcome, err := s.resolver.ResolveContact(ctx, agencyID, query)
	if err != nil {
		return domain.Contact{}, err
	}
	if err := outcome.Err("contact", query); err != nil {
		return domain.Contact{}, err
	}
	return outcome.Record, nil
}

// ResolveProperty returns the property a query designates, or a NotFound
// or Ambiguous error carrying suggestions.
func (s *Service) ResolveProperty(ctx context.Context, agencyID uuid.UUID, query string, filter gateway.PropertyFilter) (domain.Property, error) {
	if err := checkPriceRange(filter); err != nil {
		return domain.Property{}, err
	}
	outcome, err := s.resolver.ResolveProperty(ctx, agencyID, query, filter)
	if err != nil {
		return domain.Property{}, err
	}
	if err := outcome.Err("property", query); err != nil {
		return domain.Property{}, err
	}
	return outcome.Record, nil
}

// ListProperties returns one page of the agency's properties.
func (s *Service) ListProperties(ctx context.Context, agencyID uuid.UUID, filter gateway.PropertyFilter) ([]domain.Property, int, error) {
	if err := requireAgency(agencyID); err != nil {
		return nil, 0, err
	}
	if err := checkPriceRange(filter); err != nil {
		return nil, 0, err
	}
	items, total, err := s.gw.ListProperties(ctx, agencyID, filter)
	if err != nil {
		if apperr.Is(err, apperr.KindTimeout) {
			return nil, 0, err
		}
		return nil, 0, apperr.Resolution("could not list properties", err)
	}
	return items, total, nil
}

func checkPriceRange(filter gateway.PropertyFilter) error {
	if filter.MinPrice != nil && filter.MaxPrice != nil && *filter.MinPrice > *filter.MaxPrice {
		return apperr.Validation("minPrice must not exceed maxPrice")
	}
	return nil
}
