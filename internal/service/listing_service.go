package service

import (
	"context"
	"log/slog"

	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
	"github.com/tradepost/internal/validation"
)

// listingService implements the ListingService interface
type listingService struct {
	db     *store.Store
	logger *slog.Logger
}

// NewListingService creates a new listing service
func NewListingService(db *store.Store, logger *slog.Logger) domain.ListingService {
	return &listingService{db: db, logger: logger}
}

// Create adds a listing for the seller. With auto-approve enabled the
// listing goes straight to active, otherwise it starts as a draft.
func (s *listingService) Create(ctx context.Context, seller *store.User, req domain.CreateListingRequest) (*store.Listing, error) {
	s.logger.InfoContext(ctx, "creating listing", "seller", seller.Username, "title", req.Title)

	if err := validateListingFields(req.Title, req.Description, req.PriceCents, req.Category); err != nil {
		s.logger.WarnContext(ctx, "invalid listing", "error", err)
		return nil, err
	}

	listing := store.NewListing(seller.ID, req.Title, req.Description, req.PriceCents, req.Currency, req.Category)
	if s.db.GetSettings().ListingAutoApprove {
		listing.Status = constants.ListingStatusActive
	}

	if err := s.db.CreateListing(listing); err != nil {
		return nil, err
	}
	return listing, nil
}

// Get fetches a single listing
func (s *listingService) Get(ctx context.Context, id string) (*store.Listing, error) {
	listing, err := s.db.GetListing(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return listing, nil
}

// List returns listings matching the filter
func (s *listingService) List(ctx context.Context, filter store.ListingFilter) ([]*store.Listing, error) {
	return s.db.ListListings(filter), nil
}

// Update applies a partial update. Only the owner or an admin may touch a
// listing, and sold listings are frozen.
func (s *listingService) Update(ctx context.Context, actor *store.User, id string, req domain.UpdateListingRequest) (*store.Listing, error) {
	listing, err := s.authorize(actor, id)
	if err != nil {
		return nil, err
	}
	if listing.Status == constants.ListingStatusSold {
		return nil, domain.ErrListingInvalidState
	}

	if req.Title != nil {
		listing.Title = *req.Title
	}
	if req.Description != nil {
		listing.Description = *req.Description
	}
	if req.PriceCents != nil {
		listing.PriceCents = *req.PriceCents
	}
	if req.Category != nil {
		listing.Category = *req.Category
	}

	if err := validateListingFields(listing.Title, listing.Description, listing.PriceCents, listing.Category); err != nil {
		return nil, err
	}

	if err := s.db.UpdateListing(listing); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.db.GetListing(id)
}

// Delete marks a listing removed rather than erasing it, so the record
// survives for the seller's history. Admins can delete anything.
func (s *listingService) Delete(ctx context.Context, actor *store.User, id string) error {
	listing, err := s.authorize(actor, id)
	if err != nil {
		return err
	}

	listing.Status = constants.ListingStatusRemoved
	if err := s.db.UpdateListing(listing); err != nil {
		return mapStoreErr(err)
	}
	s.logger.InfoContext(ctx, "listing removed", "id", id, "actor", actor.Username)
	return nil
}

// Publish moves a draft listing to active
func (s *listingService) Publish(ctx context.Context, actor *store.User, id string) (*store.Listing, error) {
	return s.transition(ctx, actor, id, constants.ListingStatusDraft, constants.ListingStatusActive)
}

// MarkSold moves an active listing to sold
func (s *listingService) MarkSold(ctx context.Context, actor *store.User, id string) (*store.Listing, error) {
	return s.transition(ctx, actor, id, constants.ListingStatusActive, constants.ListingStatusSold)
}

func (s *listingService) transition(ctx context.Context, actor *store.User, id, from, to string) (*store.Listing, error) {
	listing, err := s.authorize(actor, id)
	if err != nil {
		return nil, err
	}
	if listing.Status != from {
		s.logger.WarnContext(ctx, "invalid listing transition", "id", id, "from", listing.Status, "to", to)
		return nil, domain.ErrListingInvalidState
	}

	listing.Status = to
	if err := s.db.UpdateListing(listing); err != nil {
		return nil, mapStoreErr(err)
	}
	return s.db.GetListing(id)
}

// authorize loads the listing and checks the actor may modify it
func (s *listingService) authorize(actor *store.User, id string) (*store.Listing, error) {
	listing, err := s.db.GetListing(id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	if listing.SellerID != actor.ID && !actor.IsAdmin() {
		return nil, domain.ErrNotListingOwner
	}
	return listing, nil
}

func validateListingFields(title, description string, priceCents int64, category string) error {
	if err := validation.ValidateListingTitle(title); err != nil {
		return domain.WrapValidationError("title", err)
	}
	if err := validation.ValidateListingDescription(description); err != nil {
		return domain.WrapValidationError("description", err)
	}
	if err := validation.ValidatePrice(priceCents); err != nil {
		return domain.WrapValidationError("price", err)
	}
	if err := validation.ValidateCategory(category); err != nil {
		return domain.WrapValidationError("category", err)
	}
	return nil
}
