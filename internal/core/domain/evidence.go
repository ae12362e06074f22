package domain

import (
	"time"

	"github.com/google/uuid"
)

// EvidenceType classifies an owner submitted birth date claim
type EvidenceType string

// Evidence types
const (
	EvidenceWhois      EvidenceType = "whois"
	EvidenceGitHistory EvidenceType = "git_history"
	EvidenceDNSRecord  EvidenceType = "dns_record"
	EvidenceOther      EvidenceType = "other"
)

// EvidenceStatus is the review state of a claim
type EvidenceStatus string

// Review states
const (
	EvidencePending  EvidenceStatus = "pending"
	EvidenceApproved EvidenceStatus = "approved"
	EvidenceRejected EvidenceStatus = "rejected"
)

// Evidence is an owner submitted claim about a domain's real birth date,
// reviewed by an administrator.
type Evidence struct {
	ID          uuid.UUID
	DomainID    uuid.UUID
	Type        EvidenceType
	ClaimedAt   time.Time
	Description *string
	URL         *string
	Status      EvidenceStatus
	CreatedAt   time.Time
	ReviewedAt  *time.Time
}
