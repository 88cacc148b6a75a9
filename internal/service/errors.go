package service

import (
	"errors"

	"github.com/tradepost/internal/domain"
	"github.com/tradepost/internal/store"
)

// mapStoreErr translates store sentinels into domain errors so handlers
// can map them to HTTP statuses without knowing about the store package.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrUserNotFound):
		return domain.ErrUserNotFound
	case errors.Is(err, store.ErrUserExists):
		return domain.ErrUserExists
	case errors.Is(err, store.ErrListingNotFound):
		return domain.ErrListingNotFound
	}
	return err
}
