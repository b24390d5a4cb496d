// internal/store/license_store.go
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/license-server/internal/models"
)

// ErrBindLost is returned by PairTx.Bind when the row was bound by someone
// else between the read and the write.
var ErrBindLost = errors.New("license was bound concurrently")

// LicenseStore is the license table. Everything that reads and then writes
// rows of a (user, product) pair goes through WithPair.
type LicenseStore struct {
	db *gorm.DB
}

func NewLicenseStore(db *gorm.DB) *LicenseStore {
	return &LicenseStore{db: db}
}

// CreateBatch inserts all licenses in one transaction.
func (s *LicenseStore) CreateBatch(ctx context.Context, licenses []models.License) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&licenses, 100).Error; err != nil {
			return fmt.Errorf("failed to create licenses: %w", err)
		}
		return nil
	})
}

// ListForUser returns every license owned by userID in creation order.
func (s *LicenseStore) ListForUser(ctx context.Context, userID uint) ([]models.License, error) {
	var licenses []models.License
	if err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&licenses).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch licenses: %w", err)
	}
	return licenses, nil
}

// Get returns one license by id.
func (s *LicenseStore) Get(ctx context.Context, id uint) (*models.License, error) {
	var license models.License
	if err := s.db.WithContext(ctx).First(&license, id).Error; err != nil {
		return nil, err
	}
	return &license, nil
}

type productCountRow struct {
	Swid   string
	Total  int64
	Unused int64
}

// CountByProduct aggregates userID's licenses per swid. Unused counts only
// active unbound rows.
func (s *LicenseStore) CountByProduct(ctx context.Context, userID uint, now time.Time) (map[string]models.ProductEntitlement, error) {
	var rows []productCountRow
	if err := s.db.WithContext(ctx).
		Model(&models.License{}).
		Select("swid, COUNT(*) AS total, "+
			"COUNT(CASE WHEN hardware_id IS NULL AND expire_date > ? THEN 1 END) AS unused", now).
		Where("user_id = ?", userID).
		Group("swid").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count licenses: %w", err)
	}

	counts := make(map[string]models.ProductEntitlement, len(rows))
	for _, row := range rows {
		counts[row.Swid] = models.ProductEntitlement{
			ProductKey: row.Swid,
			Total:      row.Total,
			Unused:     row.Unused,
		}
	}
	return counts, nil
}

// PairTx is the exclusive unit of work over one (user, product) pair.
type PairTx struct {
	tx       *gorm.DB
	licenses []models.License
}

// Licenses returns the pair's rows as read under lock, in creation order.
func (p *PairTx) Licenses() []models.License {
	return p.licenses
}

// Bind sets the hardware id of an unbound license. The write only applies
// while hardware_id is still NULL.
func (p *PairTx) Bind(id uint, hardwareID string) (*models.License, error) {
	result := p.tx.Model(&models.License{}).
		Where("id = ? AND hardware_id IS NULL", id).
		Update("hardware_id", hardwareID)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to bind license: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, ErrBindLost
	}

	for i := range p.licenses {
		if p.licenses[i].ID == id {
			p.licenses[i].HardwareID = &hardwareID
			bound := p.licenses[i]
			return &bound, nil
		}
	}

	var license models.License
	if err := p.tx.First(&license, id).Error; err != nil {
		return nil, fmt.Errorf("failed to reload license: %w", err)
	}
	return &license, nil
}

// Delete removes exactly the given unbound licenses. If any of them was
// bound in the meantime nothing is deleted.
func (p *PairTx) Delete(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	result := p.tx.Where("id IN ? AND hardware_id IS NULL", ids).Delete(&models.License{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete licenses: %w", result.Error)
	}
	if result.RowsAffected != int64(len(ids)) {
		return ErrBindLost
	}
	return nil
}

// WithPair runs fn in a transaction holding row locks on every license of
// (userID, swid). Returning an error from fn rolls everything back.
func (s *LicenseStore) WithPair(ctx context.Context, userID uint, swid string, fn func(*PairTx) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var licenses []models.License
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND swid = ?", userID, swid).
			Order("id ASC").
			Find(&licenses).Error; err != nil {
			return fmt.Errorf("failed to lock licenses: %w", err)
		}

		return fn(&PairTx{tx: tx, licenses: licenses})
	})
}

// IsConflict reports whether err is a concurrency failure that is safe to
// retry: a lost compare-and-swap, a serialization failure or a deadlock.
func IsConflict(err error) bool {
	if errors.Is(err, ErrBindLost) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01":
			return true
		}
	}
	return false
}
