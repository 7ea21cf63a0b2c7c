package service

import (
	"errors"

	"github.com/custodian-app/upkeep/internal/pkg/ics"
	"github.com/custodian-app/upkeep/internal/pkg/timeutil"
)

// Error taxonomy surfaced by services. Handlers map these to HTTP statuses;
// everything else is an internal error.
var (
	// ErrNotFound covers both a missing record and one owned by another
	// user, so existence is never leaked across owners.
	ErrNotFound = errors.New("not found")

	// ErrGenerationInProgress means another generation holds the per-asset
	// lease. It is a normal outcome (202), not a failure.
	ErrGenerationInProgress = errors.New("tasks generation in progress")

	// ErrGeneration wraps external generator and persistence failures during
	// a generation run; the asset has been stamped error (best effort).
	ErrGeneration = errors.New("failed to generate tasks")

	// ErrMissingTimezone: no tz supplied and no default configured.
	ErrMissingTimezone = errors.New("missing timezone")

	// Re-exported so handlers depend on one package for error mapping.
	ErrInvalidTimezone    = timeutil.ErrInvalidTimezone
	ErrInvalidEventWindow = ics.ErrInvalidEventWindow

	// ErrEmailTaken reports a signup against an existing email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials covers bad email/password and bad refresh tokens.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
