// Package service holds the business operations. Each operation authorizes the caller
// through the policy package before touching a repository.
package service

import (
	"errors"

	"github.com/ariebrainware/medibook/repository"
	"github.com/ariebrainware/medibook/util"
)

// Services bundles every service sharing one store.
type Services struct {
	Identity   *IdentityService
	Profiles   *ProfileService
	Scheduling *SchedulingService
	Records    *RecordService
}

func New(store repository.Store, tokens *util.TokenIssuer) *Services {
	return &Services{
		Identity:   NewIdentityService(store, tokens),
		Profiles:   NewProfileService(store),
		Scheduling: NewSchedulingService(store),
		Records:    NewRecordService(store),
	}
}

// notFound swaps repository.ErrNotFound for the given sentinel and wraps anything
// unexpected as internal.
func notFound(err error, sentinel *util.AppError) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return internal(err)
}

// internal passes AppErrors through and classifies everything else as internal.
func internal(err error) error {
	if err == nil {
		return nil
	}
	var appErr *util.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return util.NewInternalError(err)
}
