// Package services holds the server actions. Every protected action takes the
// caller's session explicitly and checks its role before touching the store.
package services

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/vnkhanh/survey-hub/exports"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid name or password")
	ErrSelfDelete         = errors.New("you cannot delete your own account")
	ErrSelfDemote         = errors.New("you cannot remove your own admin role")
	ErrNotReady           = errors.New("export is not ready")
)

type Service struct {
	db    *gorm.DB
	store exports.Store
	now   func() time.Time

	jobs sync.WaitGroup
}

func New(db *gorm.DB, store exports.Store) *Service {
	return &Service{db: db, store: store, now: time.Now}
}

// Wait blocks until background export jobs have finished.
func (s *Service) Wait() {
	s.jobs.Wait()
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T   `json:"items"`
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// translate maps driver level errors to the service sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrConflict
	default:
		return err
	}
}
