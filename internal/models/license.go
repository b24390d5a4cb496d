// internal/models/license.go
package models

import (
	"time"
)

// License is one entitlement unit for a (user, product) pair. HardwareID is
// nil while the license sits in the pool and is written exactly once when it
// is activated.
type License struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID     uint      `json:"userId" gorm:"not null;index:idx_licenses_user_swid"`
	Swid       string    `json:"swid" gorm:"size:128;not null;index:idx_licenses_user_swid"`
	ExpireDate time.Time `json:"expireDate" gorm:"not null"`
	HardwareID *string   `json:"hwid,omitempty" gorm:"column:hardware_id;size:255"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LicenseState is either Available or BoundTo.
type LicenseState interface {
	isLicenseState()
}

// Available is the state of a license that has not been activated.
type Available struct{}

// BoundTo is the state of a license activated on a hardware fingerprint.
type BoundTo struct {
	HardwareID string
}

func (Available) isLicenseState() {}
func (BoundTo) isLicenseState()   {}

func (l *License) State() LicenseState {
	if l.HardwareID == nil {
		return Available{}
	}
	return BoundTo{HardwareID: *l.HardwareID}
}

// IsActive reports whether the license has not yet expired at now.
func (l *License) IsActive(now time.Time) bool {
	return l.ExpireDate.After(now)
}

// IsAvailable reports whether the license is active and unbound.
func (l *License) IsAvailable(now time.Time) bool {
	_, ok := l.State().(Available)
	return ok && l.IsActive(now)
}

// IsBoundTo reports whether the license is active and bound to hardwareID.
func (l *License) IsBoundTo(hardwareID string, now time.Time) bool {
	bound, ok := l.State().(BoundTo)
	return ok && bound.HardwareID == hardwareID && l.IsActive(now)
}

// ExpireDay renders the expiry as the YYYY-MM-DD day string the licensing
// service expects.
func (l *License) ExpireDay() string {
	return l.ExpireDate.UTC().Format("2006-01-02")
}

// ProductEntitlement is an aggregate of a user's licenses for one product.
type ProductEntitlement struct {
	ProductKey  string `json:"productKey"`
	ProductName string `json:"name"`
	Total       int64  `json:"total"`
	Unused      int64  `json:"unused"`
}
