package domain

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a tracked domain
type Status string

// Domain lifecycle states
const (
	StatusActive      Status = "active"
	StatusUnreachable Status = "unreachable"
	StatusDead        Status = "dead"
	StatusUnknown     Status = "unknown"
)

// VerificationStatus is the ownership state of a tracked domain
type VerificationStatus string

// Ownership states
const (
	VerificationDetected VerificationStatus = "detected"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
)

// TombstoneThreshold is the number of consecutive DNS-absence failures after
// which a domain is declared dead.
const TombstoneThreshold = 5

// Domain is one row per canonical domain name.
type Domain struct {
	ID                  uuid.UUID
	Domain              string
	BirthAt             *time.Time
	VerifiedBirthAt     *time.Time
	DeathAt             *time.Time
	Status              Status
	VerificationStatus  VerificationStatus
	ConsecutiveFailures int
	BadgeEmbedded       bool
	LastCheckedAt       *time.Time
	LastAliveAt         *time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// EffectiveBirthAt returns the owner-verified birth date when present,
// falling back to the discovered one.
func (d *Domain) EffectiveBirthAt() *time.Time {
	if d.VerifiedBirthAt != nil {
		return d.VerifiedBirthAt
	}
	return d.BirthAt
}

// Lookup is the result shape of a birth date resolution.
type Lookup struct {
	Domain             string             `json:"domain"`
	BirthAt            *time.Time         `json:"birth_at"`
	Status             Status             `json:"status"`
	VerificationStatus VerificationStatus `json:"verification_status"`
}
