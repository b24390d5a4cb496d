// internal/services/entitlement_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/metrics"
	"github.com/javajoker/license-server/internal/models"
)

const (
	strategyPrivileged = "privileged"
	strategyStandard   = "standard"
)

// activationStrategy is how one class of caller turns a token into a
// license code. unpacked is nil when the token has not been decoded yet.
type activationStrategy interface {
	name() string
	activate(ctx context.Context, token string, caller *models.Identity, unpacked *UnpackedToken) (string, error)
}

// EntitlementService serves issuance, removal, listing and activation.
type EntitlementService struct {
	pool       LicensePool
	gateway    TokenGateway
	directory  IdentityDirectory
	metrics    metrics.Recorder
	strategies map[models.Role]activationStrategy
	fallback   activationStrategy
}

type EntitlementOptions struct {
	// PrivilegedBypass lets administrators and developers mint codes
	// without consuming or even checking a license.
	PrivilegedBypass bool
	Clock            Clock
	Metrics          metrics.Recorder
}

func NewEntitlementService(pool LicensePool, matcher LicenseMatcher, gateway TokenGateway, directory IdentityDirectory, opts EntitlementOptions) *EntitlementService {
	if opts.Clock == nil {
		opts.Clock = SystemClock
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.NewNoopMetrics()
	}

	standard := &standardActivation{matcher: matcher, gateway: gateway}
	s := &EntitlementService{
		pool:       pool,
		gateway:    gateway,
		directory:  directory,
		metrics:    opts.Metrics,
		strategies: map[models.Role]activationStrategy{},
		fallback:   standard,
	}

	if opts.PrivilegedBypass {
		privileged := &privilegedActivation{gateway: gateway, clock: opts.Clock}
		s.strategies[models.RoleAdministrator] = privileged
		s.strategies[models.RoleDeveloper] = privileged
	}
	return s
}

func (s *EntitlementService) strategyFor(role models.Role) activationStrategy {
	if strategy, ok := s.strategies[role]; ok {
		return strategy
	}
	return s.fallback
}

func (s *EntitlementService) Issue(ctx context.Context, req *IssueOrRemoveRequest) ([]models.License, error) {
	return s.pool.Issue(ctx, req.UserID, req.Swid, req.Amount)
}

func (s *EntitlementService) Remove(ctx context.Context, req *IssueOrRemoveRequest) error {
	return s.pool.Remove(ctx, req.UserID, req.Swid, req.Amount)
}

func (s *EntitlementService) ListEntitlements(ctx context.Context, userID uint) ([]models.ProductEntitlement, error) {
	return s.pool.CountEntitlements(ctx, userID)
}

// Activate turns token into a license code for an authenticated caller.
func (s *EntitlementService) Activate(ctx context.Context, token string, caller *models.Identity) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token cannot be empty", ErrInvalidArgument)
	}
	if caller == nil {
		return "", ErrUnauthorized
	}
	return s.run(ctx, token, caller, nil)
}

// ActivateWithCredentials resolves the caller from the username and
// password embedded in the token itself.
func (s *EntitlementService) ActivateWithCredentials(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", fmt.Errorf("%w: token cannot be empty", ErrInvalidArgument)
	}

	unpacked, err := s.gateway.UnpackToken(ctx, token)
	if err != nil {
		s.metrics.RecordActivation(strategyStandard, outcomeOf(err))
		return "", err
	}

	caller, err := s.directory.ResolveByPassword(ctx, unpacked.User, unpacked.Pass)
	if err != nil {
		s.metrics.RecordActivation(strategyStandard, outcomeOf(err))
		return "", err
	}

	return s.run(ctx, token, caller, unpacked)
}

func (s *EntitlementService) run(ctx context.Context, token string, caller *models.Identity, unpacked *UnpackedToken) (string, error) {
	strategy := s.strategyFor(caller.Role)

	code, err := strategy.activate(ctx, token, caller, unpacked)
	s.metrics.RecordActivation(strategy.name(), outcomeOf(err))
	if err != nil {
		return "", err
	}
	return code, nil
}

type privilegedActivation struct {
	gateway TokenGateway
	clock   Clock
}

func (p *privilegedActivation) name() string { return strategyPrivileged }

// activate mints a code expiring on today's date next year. No license is
// read or written, so these codes cannot be traced back to the store.
func (p *privilegedActivation) activate(ctx context.Context, token string, caller *models.Identity, unpacked *UnpackedToken) (string, error) {
	expire := PrivilegedExpiry(p.clock.Now())

	fields := logrus.Fields{
		"user_id":  caller.ID,
		"username": caller.Username,
		"role":     caller.Role,
		"expire":   expire,
	}
	if unpacked != nil {
		fields["swid"] = unpacked.Swid
	}
	logrus.WithFields(fields).Warn("Privileged activation bypassed license checks")

	return p.gateway.MintLicenseCode(ctx, token, expire)
}

// PrivilegedExpiry is (year+1)-MM-DD of now's UTC date. The month and day
// are kept verbatim, so Feb 29 yields a Feb 29 of a non-leap year.
func PrivilegedExpiry(now time.Time) string {
	now = now.UTC()
	return fmt.Sprintf("%04d-%s", now.Year()+1, now.Format("01-02"))
}

type standardActivation struct {
	matcher LicenseMatcher
	gateway TokenGateway
}

func (s *standardActivation) name() string { return strategyStandard }

// activate binds a license and mints a code for it. The code is minted while
// the bind is still uncommitted, so a gateway failure leaves no binding.
func (s *standardActivation) activate(ctx context.Context, token string, caller *models.Identity, unpacked *UnpackedToken) (string, error) {
	if unpacked == nil {
		var err error
		if unpacked, err = s.gateway.UnpackToken(ctx, token); err != nil {
			return "", err
		}
	}

	var code string
	activation, err := s.matcher.FindOrActivate(ctx, caller.ID, unpacked.Swid, unpacked.Hwid, func(a *Activation) error {
		var err error
		code, err = s.gateway.MintLicenseCode(ctx, token, a.License.ExpireDay())
		return err
	})
	if errors.Is(err, ErrNoEntitlement) {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	if err != nil {
		return "", err
	}

	logrus.WithFields(logrus.Fields{
		"user_id":    caller.ID,
		"swid":       unpacked.Swid,
		"license_id": activation.License.ID,
		"reused":     activation.Reused,
	}).Info("License activated")

	return code, nil
}

// outcomeOf labels an activation result for metrics.
func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNoEntitlement):
		return "not_found"
	case errors.Is(err, ErrLicensingServiceUnavailable):
		return "unavailable"
	case errors.Is(err, ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	default:
		return "error"
	}
}
