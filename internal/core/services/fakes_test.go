package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/siteage/siteage-platform/internal/core/domain"
	"github.com/siteage/siteage-platform/internal/repositories"
)

func fixedNow() time.Time { return time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC) }

// fakeDomains is an in-memory DomainsRepository for service tests.
type fakeDomains struct {
	mu     sync.Mutex
	byName map[string]*domain.Domain
	err    error
}

func newFakeDomains(seed ...*domain.Domain) *fakeDomains {
	f := &fakeDomains{byName: map[string]*domain.Domain{}}
	for _, d := range seed {
		if d.ID == uuid.Nil {
			d.ID = uuid.New()
		}
		f.byName[d.Domain] = d
	}
	return f
}

func (f *fakeDomains) get(name string) *domain.Domain {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.byName[name]
}

func (f *fakeDomains) byIDLocked(id uuid.UUID) *domain.Domain {
	for _, d := range f.byName {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (f *fakeDomains) GetByName(_ context.Context, name string) (*domain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	d, ok := f.byName[name]
	if !ok {
		return nil, repositories.ErrDomainNotFound
	}
	cp := *d
	return &cp, nil
}

func (f *fakeDomains) GetByID(_ context.Context, id uuid.UUID) (*domain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d := f.byIDLocked(id); d != nil {
		cp := *d
		return &cp, nil
	}
	return nil, repositories.ErrDomainNotFound
}

func (f *fakeDomains) GetOrCreate(_ context.Context, candidate *domain.Domain) (*domain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.byName[candidate.Domain]; ok {
		cp := *existing
		return &cp, nil
	}
	cp := *candidate
	cp.ID = uuid.New()
	cp.CreatedAt = time.Now().UTC()
	f.byName[cp.Domain] = &cp
	out := cp
	return &out, nil
}

func (f *fakeDomains) SetAlive(_ context.Context, id uuid.UUID, badgeEmbedded bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byIDLocked(id)
	now := time.Now().UTC()
	d.Status = domain.StatusActive
	d.ConsecutiveFailures = 0
	d.DeathAt = nil
	d.BadgeEmbedded = badgeEmbedded
	d.LastCheckedAt = &now
	d.LastAliveAt = &now
	return nil
}

func (f *fakeDomains) SetUnreachable(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byIDLocked(id)
	now := time.Now().UTC()
	d.Status = domain.StatusUnreachable
	d.LastCheckedAt = &now
	return nil
}

func (f *fakeDomains) SetFailures(_ context.Context, id uuid.UUID, failures int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byIDLocked(id)
	now := time.Now().UTC()
	d.ConsecutiveFailures = failures
	d.LastCheckedAt = &now
	return nil
}

func (f *fakeDomains) Tombstone(_ context.Context, id uuid.UUID, failures int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byIDLocked(id)
	now := time.Now().UTC()
	d.Status = domain.StatusDead
	d.ConsecutiveFailures = failures
	d.DeathAt = &now
	d.LastCheckedAt = &now
	return nil
}

func (f *fakeDomains) Reactivate(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := f.byIDLocked(id)
	d.Status = domain.StatusActive
	d.ConsecutiveFailures = 0
	d.DeathAt = nil
	return nil
}

func (f *fakeDomains) SetVerificationStatus(_ context.Context, id uuid.UUID, status domain.VerificationStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDLocked(id).VerificationStatus = status
	return nil
}

func (f *fakeDomains) SetVerifiedBirth(_ context.Context, id uuid.UUID, birthAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byIDLocked(id).VerifiedBirthAt = &birthAt
	return nil
}

func (f *fakeDomains) Delete(_ context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byName, name)
	return nil
}

func (f *fakeDomains) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byName), nil
}

func (f *fakeDomains) GetAllLiving(_ context.Context) ([]domain.Domain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Domain
	for _, d := range f.byName {
		if d.Status != domain.StatusDead {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDomains) EffectiveBirthDates(_ context.Context) ([]time.Time, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []time.Time
	for _, d := range f.byName {
		if d.Status == domain.StatusDead {
			continue
		}
		if b := d.EffectiveBirthAt(); b != nil {
			out = append(out, *b)
		}
	}
	return out, nil
}

// fakeCdx records archive lookup audit rows.
type fakeCdx struct {
	mu      sync.Mutex
	saved   []domain.CdxQuery
	deleted []string
}

func (f *fakeCdx) Save(_ context.Context, q *domain.CdxQuery) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q.ID = uuid.New()
	f.saved = append(f.saved, *q)
	return q.ID, nil
}

func (f *fakeCdx) GetLatestByDomain(_ context.Context, domainName string) (*domain.CdxQuery, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.saved) - 1; i >= 0; i-- {
		if f.saved[i].Domain == domainName {
			cp := f.saved[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrCdxQueryNotFound
}

func (f *fakeCdx) DeleteByDomain(_ context.Context, domainName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, domainName)
	return nil
}

// fakeArchive answers with a fixed result or error.
type fakeArchive struct {
	result *domain.CdxResult
	err    error
	calls  int
}

func (f *fakeArchive) EarliestSnapshot(_ context.Context, _ string) (*domain.CdxResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

// fakeChecks records health check audit rows.
type fakeChecks struct {
	mu    sync.Mutex
	saved []domain.HealthCheck
}

func (f *fakeChecks) Save(_ context.Context, check *domain.HealthCheck) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	check.ID = uuid.New()
	f.saved = append(f.saved, *check)
	return check.ID, nil
}

// fakeProber returns a canned probe result.
type fakeProber struct {
	result domain.ProbeResult
}

func (f *fakeProber) Probe(_ context.Context, _ string) domain.ProbeResult {
	return f.result
}

// fakeDNS is a canned DNSGateway.
type fakeDNS struct {
	resolvable bool
	lookups    []domain.DNSLookup
}

func (f *fakeDNS) CheckResolvable(_ context.Context, _ string) bool {
	return f.resolvable
}

func (f *fakeDNS) LookupTXT(_ context.Context, _ string) []domain.DNSLookup {
	return f.lookups
}

// fakeSysDNS is a canned local stub resolver.
type fakeSysDNS struct {
	records []string
	err     error
	calls   int
}

func (f *fakeSysDNS) LookupTXT(_ context.Context, _ string) ([]string, error) {
	f.calls++
	return f.records, f.err
}

// fakeSite serves canned verification artifacts.
type fakeSite struct {
	homepage    []byte
	homepageErr error
	wellKnown   string
	wkErr       error
}

func (f *fakeSite) Homepage(_ context.Context, _ string) ([]byte, error) {
	return f.homepage, f.homepageErr
}

func (f *fakeSite) WellKnown(_ context.Context, _ string) (string, error) {
	return f.wellKnown, f.wkErr
}

// fakeVerifications is an in-memory VerificationsRepository.
type fakeVerifications struct {
	mu   sync.Mutex
	rows []*domain.Verification
}

func (f *fakeVerifications) Save(_ context.Context, v *domain.Verification) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v.ID = uuid.New()
	v.CreatedAt = time.Now().UTC()
	cp := *v
	f.rows = append(f.rows, &cp)
	return v.ID, nil
}

func (f *fakeVerifications) find(match func(*domain.Verification) bool) (*domain.Verification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.rows) - 1; i >= 0; i-- {
		if match(f.rows[i]) {
			cp := *f.rows[i]
			return &cp, nil
		}
	}
	return nil, repositories.ErrVerificationNotFound
}

func (f *fakeVerifications) GetLatestPending(_ context.Context, domainName, token string) (*domain.Verification, error) {
	return f.find(func(v *domain.Verification) bool {
		return v.Token == token && v.Status == domain.ChallengePending
	})
}

func (f *fakeVerifications) SetLastAttempt(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.rows {
		if v.ID == id {
			v.LastAttemptAt = &at
		}
	}
	return nil
}

func (f *fakeVerifications) MarkVerified(_ context.Context, id uuid.UUID, magicKey string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.rows {
		if v.ID == id {
			v.Status = domain.ChallengeVerified
			v.MagicKey = &magicKey
			v.VerifiedAt = &at
		}
	}
	return nil
}

func (f *fakeVerifications) GetLatestVerified(_ context.Context, _, email string) (*domain.Verification, error) {
	return f.find(func(v *domain.Verification) bool {
		return v.Email == email && v.Status == domain.ChallengeVerified
	})
}

func (f *fakeVerifications) SetMagicKey(_ context.Context, id uuid.UUID, magicKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, v := range f.rows {
		if v.ID == id {
			v.MagicKey = &magicKey
		}
	}
	return nil
}

func (f *fakeVerifications) GetByMagicKey(_ context.Context, _, magicKey string) (*domain.Verification, error) {
	return f.find(func(v *domain.Verification) bool {
		return v.MagicKey != nil && *v.MagicKey == magicKey && v.Status == domain.ChallengeVerified
	})
}

// fakeEvidence is an in-memory EvidenceRepository.
type fakeEvidence struct {
	mu   sync.Mutex
	rows []*domain.Evidence
}

func (f *fakeEvidence) Save(_ context.Context, e *domain.Evidence) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e.ID = uuid.New()
	cp := *e
	f.rows = append(f.rows, &cp)
	return e.ID, nil
}

func (f *fakeEvidence) GetByID(_ context.Context, id uuid.UUID) (*domain.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.rows {
		if e.ID == id {
			cp := *e
			return &cp, nil
		}
	}
	return nil, repositories.ErrEvidenceNotFound
}

func (f *fakeEvidence) GetByDomainID(_ context.Context, domainID uuid.UUID) ([]domain.Evidence, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []domain.Evidence{}
	for _, e := range f.rows {
		if e.DomainID == domainID {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (f *fakeEvidence) Review(_ context.Context, id uuid.UUID, status domain.EvidenceStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	for _, e := range f.rows {
		if e.ID == id {
			e.Status = status
			e.ReviewedAt = &now
		}
	}
	return nil
}

// fakeStats is an in-memory StatsRepository.
type fakeStats struct {
	mu        sync.Mutex
	snapshots []domain.StatsSnapshot
}

func (f *fakeStats) SaveSnapshot(_ context.Context, s *domain.StatsSnapshot) (uuid.UUID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s.ID = uuid.New()
	f.snapshots = append(f.snapshots, *s)
	return s.ID, nil
}

func (f *fakeStats) GetLatestSnapshot(_ context.Context) (*domain.StatsSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.snapshots) == 0 {
		return nil, repositories.ErrSnapshotNotFound
	}
	cp := f.snapshots[len(f.snapshots)-1]
	return &cp, nil
}

// fakeMailer records delivered management links.
type fakeMailer struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (f *fakeMailer) SendMagicLink(_ context.Context, email, domainName, magicKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, email+"|"+domainName+"|"+magicKey)
	return nil
}
