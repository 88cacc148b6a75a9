package store

import (
	"time"
)

// ListingFilter narrows listing queries. Empty fields match everything.
type ListingFilter struct {
	Status   string
	Category string
	SellerID string
}

// CreateListing adds a new listing
func (s *Store) CreateListing(listing *Listing) error {
	return s.mutate(func(d *dataset) error {
		cp := *listing
		d.Listings = append(d.Listings, &cp)
		return nil
	})
}

// GetListing retrieves a listing by ID
func (s *Store) GetListing(id string) (*Listing, error) {
	var found *Listing
	s.view(func(d *dataset) {
		for _, l := range d.Listings {
			if l.ID == id {
				cp := *l
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, ErrListingNotFound
	}
	return found, nil
}

// ListListings returns listings matching the filter, newest first. Empty
// filter fields match everything.
func (s *Store) ListListings(filter ListingFilter) []*Listing {
	var out []*Listing
	s.view(func(d *dataset) {
		for _, l := range d.Listings {
			if filter.Status != "" && l.Status != filter.Status {
				continue
			}
			if filter.Category != "" && l.Category != filter.Category {
				continue
			}
			if filter.SellerID != "" && l.SellerID != filter.SellerID {
				continue
			}
			cp := *l
			out = append(out, &cp)
		}
	})
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// UpdateListing replaces the stored listing with the same ID
func (s *Store) UpdateListing(listing *Listing) error {
	return s.mutate(func(d *dataset) error {
		for i, l := range d.Listings {
			if l.ID == listing.ID {
				cp := *listing
				cp.UpdatedAt = time.Now()
				d.Listings[i] = &cp
				return nil
			}
		}
		return ErrListingNotFound
	})
}

// DeleteListing removes a listing by ID
func (s *Store) DeleteListing(id string) error {
	return s.mutate(func(d *dataset) error {
		for i, l := range d.Listings {
			if l.ID == id {
				d.Listings = append(d.Listings[:i], d.Listings[i+1:]...)
				return nil
			}
		}
		return ErrListingNotFound
	})
}

// CountListings returns the total listing count and a per-status breakdown
func (s *Store) CountListings() (total int, byStatus map[string]int) {
	byStatus = make(map[string]int)
	s.view(func(d *dataset) {
		total = len(d.Listings)
		for _, l := range d.Listings {
			byStatus[l.Status]++
		}
	})
	return total, byStatus
}
