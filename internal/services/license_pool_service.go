// internal/services/license_pool_service.go
package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/metrics"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/store"
)

// IssueOrRemoveRequest is the body of both issuance and removal.
type IssueOrRemoveRequest struct {
	UserID uint   `json:"userId" validate:"required"`
	Swid   string `json:"swid" validate:"required,swid,max=128"`
	Amount int    `json:"amount" validate:"required,gt=0"`
}

// LicensePool issues, removes and counts pooled licenses.
type LicensePool interface {
	Issue(ctx context.Context, userID uint, swid string, amount int) ([]models.License, error)
	Remove(ctx context.Context, userID uint, swid string, amount int) error
	CountEntitlements(ctx context.Context, userID uint) ([]models.ProductEntitlement, error)
}

type LicensePoolService struct {
	store   *store.LicenseStore
	catalog ProductCatalog
	clock   Clock
	metrics metrics.Recorder
}

var _ LicensePool = (*LicensePoolService)(nil)

func NewLicensePoolService(licenseStore *store.LicenseStore, catalog ProductCatalog, clock Clock, recorder metrics.Recorder) *LicensePoolService {
	return &LicensePoolService{
		store:   licenseStore,
		catalog: catalog,
		clock:   clock,
		metrics: recorder,
	}
}

// Issue creates amount unbound licenses that all expire one year from now.
func (s *LicensePoolService) Issue(ctx context.Context, userID uint, swid string, amount int) ([]models.License, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}
	if swid == "" {
		return nil, fmt.Errorf("%w: product is required", ErrInvalidArgument)
	}

	expireDate := s.clock.Now().AddDate(1, 0, 0)

	licenses := make([]models.License, amount)
	for i := range licenses {
		licenses[i] = models.License{
			UserID:     userID,
			Swid:       swid,
			ExpireDate: expireDate,
		}
	}

	if err := s.store.CreateBatch(ctx, licenses); err != nil {
		return nil, err
	}

	s.metrics.RecordLicensesIssued(amount)
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"swid":    swid,
		"amount":  amount,
	}).Info("Licenses issued")

	return licenses, nil
}

// Remove deletes the amount oldest available licenses of the pair. If fewer
// are available nothing is deleted.
func (s *LicensePoolService) Remove(ctx context.Context, userID uint, swid string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidArgument)
	}

	now := s.clock.Now()
	err := s.store.WithPair(ctx, userID, swid, func(pair *store.PairTx) error {
		ids := make([]uint, 0, amount)
		for _, license := range pair.Licenses() {
			if len(ids) == amount {
				break
			}
			if license.IsAvailable(now) {
				ids = append(ids, license.ID)
			}
		}

		if len(ids) < amount {
			return fmt.Errorf("%w: %d requested, %d available", ErrInsufficientEntitlements, amount, len(ids))
		}
		return pair.Delete(ids)
	})
	if err != nil {
		return err
	}

	s.metrics.RecordLicensesRemoved(amount)
	logrus.WithFields(logrus.Fields{
		"user_id": userID,
		"swid":    swid,
		"amount":  amount,
	}).Info("Licenses removed")

	return nil
}

// CountEntitlements returns per-product totals for userID, in catalog order.
// Products the catalog does not know are left out, as are products the user
// holds no licenses for.
func (s *LicensePoolService) CountEntitlements(ctx context.Context, userID uint) ([]models.ProductEntitlement, error) {
	counts, err := s.store.CountByProduct(ctx, userID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	if len(counts) == 0 {
		return []models.ProductEntitlement{}, nil
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, err
	}

	entitlements := make([]models.ProductEntitlement, 0, len(counts))
	for _, product := range products {
		count, ok := counts[product.SWID]
		if !ok || count.Total == 0 {
			continue
		}
		count.ProductName = product.Name
		entitlements = append(entitlements, count)
		delete(counts, product.SWID)
	}
	return entitlements, nil
}
