package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tradepost/internal/constants"
	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/httputil"
	"github.com/tradepost/internal/store"
)

// listListings returns marketplace listings. Anonymous callers only ever
// see active listings; the status filter is honored for everyone else via
// the authenticated /api/my/listings endpoint.
func (s *Server) listListings(c *gin.Context) {
	filter := store.ListingFilter{
		Status:   constants.ListingStatusActive,
		Category: c.Query("category"),
	}

	listings, err := s.listingService.List(c.Request.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list listings", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// getListing returns one listing. Anonymous callers only see active ones.
func (s *Server) getListing(c *gin.Context) {
	id, err := httputil.RequireIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	listing, err := s.listingService.Get(c.Request.Context(), id)
	if err != nil {
		s.renderError(c, err, "Failed to fetch listing")
		return
	}
	if listing.Status != constants.ListingStatusActive {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: domain.ErrListingNotFound.Error()})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// listMyListings returns the caller's listings in every status
func (s *Server) listMyListings(c *gin.Context) {
	user, _ := getUserFromContext(c)

	filter := store.ListingFilter{
		SellerID: user.ID,
		Status:   c.Query("status"),
		Category: c.Query("category"),
	}
	listings, err := s.listingService.List(c.Request.Context(), filter)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "failed to list own listings", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list listings"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"listings": listings, "count": len(listings)})
}

// createListing creates a new listing for the caller
func (s *Server) createListing(c *gin.Context) {
	user, _ := getUserFromContext(c)

	var req domain.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		slog.WarnContext(c.Request.Context(), "invalid create listing request", "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	listing, err := s.listingService.Create(c.Request.Context(), user, req)
	if err != nil {
		s.renderError(c, err, "Failed to create listing")
		return
	}

	c.JSON(http.StatusCreated, listing)
}

// updateListing applies a partial update to the caller's listing
func (s *Server) updateListing(c *gin.Context) {
	user, _ := getUserFromContext(c)
	id, err := httputil.RequireIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	var req domain.UpdateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format"})
		return
	}

	listing, err := s.listingService.Update(c.Request.Context(), user, id, req)
	if err != nil {
		s.renderError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}

// deleteListing removes the caller's listing
func (s *Server) deleteListing(c *gin.Context) {
	user, _ := getUserFromContext(c)
	id, err := httputil.RequireIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	if err := s.listingService.Delete(c.Request.Context(), user, id); err != nil {
		s.renderError(c, err, "Failed to delete listing")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Listing removed"})
}

// publishListing moves a draft listing to active
func (s *Server) publishListing(c *gin.Context) {
	s.transitionListing(c, s.listingService.Publish)
}

// markListingSold moves an active listing to sold
func (s *Server) markListingSold(c *gin.Context) {
	s.transitionListing(c, s.listingService.MarkSold)
}

func (s *Server) transitionListing(c *gin.Context, fn func(ctx context.Context, actor *store.User, id string) (*store.Listing, error)) {
	user, _ := getUserFromContext(c)
	id, err := httputil.RequireIDParam(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid listing ID"})
		return
	}

	listing, err := fn(c.Request.Context(), user, id)
	if err != nil {
		s.renderError(c, err, "Failed to update listing")
		return
	}

	c.JSON(http.StatusOK, listing)
}
