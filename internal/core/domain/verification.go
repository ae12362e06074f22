package domain

import (
	"time"

	"github.com/google/uuid"
)

// VerificationMethod is the challenge type used to prove domain control
type VerificationMethod string

// Challenge methods
const (
	MethodDNSTxt    VerificationMethod = "dns_txt"
	MethodMetaTag   VerificationMethod = "meta_tag"
	MethodWellKnown VerificationMethod = "well_known"
)

// Challenge state values. Expiry is never persisted; it is derived from
// ExpiresAt at check time.
const (
	ChallengePending  = "pending"
	ChallengeVerified = "verified"
)

// TXTRecordPrefix is the key of the expected DNS TXT payload.
const TXTRecordPrefix = "siteage-verify"

// WellKnownPath is the path probed for well_known challenges.
const WellKnownPath = "/.well-known/siteage-verify.txt"

// Verification is one row per challenge attempt for a domain/email pair.
// Rows are never deleted; they form the ownership audit trail.
type Verification struct {
	ID            uuid.UUID
	DomainID      uuid.UUID
	Email         string
	Method        VerificationMethod
	Token         string
	MagicKey      *string
	Status        string
	LastAttemptAt *time.Time
	VerifiedAt    *time.Time
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the challenge token has outlived its window.
func (v *Verification) Expired(now time.Time) bool {
	return now.After(v.ExpiresAt)
}

// ExpectedTXTRecord is the exact TXT payload a dns_txt challenge looks for.
func ExpectedTXTRecord(token string) string {
	return TXTRecordPrefix + "=" + token
}
