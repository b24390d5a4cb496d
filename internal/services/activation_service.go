// internal/services/activation_service.go
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/metrics"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/store"
)

// Activation is the result of a find-or-activate. Reused is true when the
// hardware id was already bound to an active license and nothing was written.
type Activation struct {
	License *models.License
	Reused  bool
}

// ConfirmFunc runs inside the activation's transaction once a license is
// found or bound. Returning an error rolls the bind back.
type ConfirmFunc func(*Activation) error

// LicenseMatcher trades a pooled license for a hardware binding.
type LicenseMatcher interface {
	FindOrActivate(ctx context.Context, userID uint, swid, hardwareID string, confirm ConfirmFunc) (*Activation, error)
}

type ActivationMatcher struct {
	store    *store.LicenseStore
	clock    Clock
	attempts int
	metrics  metrics.Recorder
}

var _ LicenseMatcher = (*ActivationMatcher)(nil)

func NewActivationMatcher(licenseStore *store.LicenseStore, clock Clock, attempts int, recorder metrics.Recorder) *ActivationMatcher {
	if attempts < 1 {
		attempts = 1
	}
	return &ActivationMatcher{
		store:    licenseStore,
		clock:    clock,
		attempts: attempts,
		metrics:  recorder,
	}
}

// FindOrActivate returns the active license of (userID, swid) already bound
// to hardwareID, or binds the oldest available one. Both lookups, the bind
// and confirm run under the pair's lock; a lost bind retries the whole unit.
// confirm may be nil.
func (m *ActivationMatcher) FindOrActivate(ctx context.Context, userID uint, swid, hardwareID string, confirm ConfirmFunc) (*Activation, error) {
	if swid == "" || hardwareID == "" {
		return nil, fmt.Errorf("%w: product and hardware id are required", ErrInvalidArgument)
	}

	for attempt := 1; attempt <= m.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		activation, err := m.tryActivate(ctx, userID, swid, hardwareID, confirm)
		if err == nil {
			return activation, nil
		}
		if !store.IsConflict(err) {
			return nil, err
		}

		m.metrics.RecordBindConflict()
		logrus.WithFields(logrus.Fields{
			"user_id": userID,
			"swid":    swid,
			"attempt": attempt,
		}).WithError(err).Debug("License bind lost, retrying")
	}

	return nil, ErrConflict
}

func (m *ActivationMatcher) tryActivate(ctx context.Context, userID uint, swid, hardwareID string, confirm ConfirmFunc) (*Activation, error) {
	var activation *Activation
	now := m.clock.Now()

	err := m.store.WithPair(ctx, userID, swid, func(pair *store.PairTx) error {
		var err error
		if activation, err = match(pair, hardwareID, now); err != nil {
			return err
		}
		if confirm != nil {
			return confirm(activation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return activation, nil
}

func match(pair *store.PairTx, hardwareID string, now time.Time) (*Activation, error) {
	licenses := pair.Licenses()

	for i := range licenses {
		if licenses[i].IsBoundTo(hardwareID, now) {
			license := licenses[i]
			return &Activation{License: &license, Reused: true}, nil
		}
	}

	for i := range licenses {
		if !licenses[i].IsAvailable(now) {
			continue
		}
		bound, err := pair.Bind(licenses[i].ID, hardwareID)
		if err != nil {
			return nil, err
		}
		return &Activation{License: bound}, nil
	}

	return nil, ErrNoEntitlement
}
