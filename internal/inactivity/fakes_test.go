package inactivity

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/lifevault/lifevault/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fixedClock struct {
	t time.Time
}

func (c fixedClock) Now() time.Time { return c.t }

// fakeUserStore is an in-memory UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User

	failList     bool
	failSetToken bool
	failTouch    bool
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[string]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) get(id string) *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *fakeUserStore) ListActiveUsers(ctx context.Context) ([]*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failList {
		return nil, errors.New("list failed")
	}
	var out []*model.User
	for _, u := range s.users {
		if u.IsActive {
			out = append(out, u)
		}
	}
	return out, nil
}

func (s *fakeUserStore) SetActivityToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSetToken {
		return errors.New("set token failed")
	}
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.ActivityToken = &token
	u.ActivityTokenExpiry = &expiresAt
	return nil
}

func (s *fakeUserStore) RedeemActivityToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ActivityToken == nil || *u.ActivityToken != token {
			continue
		}
		if !u.IsActive || u.ActivityTokenExpiry == nil || !u.ActivityTokenExpiry.After(now) {
			break
		}
		u.LastActivityAt = now
		u.LastNotificationCheckAt = now
		u.ActivityToken = nil
		u.ActivityTokenExpiry = nil
		u.VaultRevealedAt = nil
		return u, nil
	}
	return nil, ErrTokenInvalid
}

func (s *fakeUserStore) TouchNotificationCheck(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTouch {
		return errors.New("touch failed")
	}
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	u.LastNotificationCheckAt = at
	return nil
}

func (s *fakeUserStore) MarkVaultRevealed(ctx context.Context, userID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	t := at
	u.VaultRevealedAt = &t
	return nil
}

// fakeContactStore is an in-memory ContactStore.
type fakeContactStore struct {
	mu       sync.Mutex
	contacts []*model.TrustedContact
	failFind bool
}

func (s *fakeContactStore) FindByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failFind {
		return nil, errors.New("find failed")
	}
	var out []*model.TrustedContact
	for _, c := range s.contacts {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeContactStore) FindVerifiedByUser(ctx context.Context, userID string) ([]*model.TrustedContact, error) {
	all, err := s.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var out []*model.TrustedContact
	for _, c := range all {
		if c.IsVerified {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeContactStore) MarkNotified(ctx context.Context, contactID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.contacts {
		if c.ID == contactID {
			c.IsNotified = true
			if c.NotifiedAt == nil {
				t := at
				c.NotifiedAt = &t
			}
			return nil
		}
	}
	return errors.New("contact not found")
}

type sentWarning struct {
	userID string
	tier   model.WarningTier
	days   int
	token  string
}

type sentDisclosure struct {
	contactID string
	userID    string
	accessRef string
}

// fakeSender records outbound mail instead of delivering it.
type fakeSender struct {
	mu          sync.Mutex
	warnings    []sentWarning
	disclosures []sentDisclosure

	failWarnings   bool
	failContactIDs map[string]bool
}

func (s *fakeSender) SendWarning(ctx context.Context, user *model.User, tier model.WarningTier, daysInactive int, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWarnings {
		return errors.New("smtp down")
	}
	s.warnings = append(s.warnings, sentWarning{user.ID, tier, daysInactive, token})
	return nil
}

func (s *fakeSender) SendDisclosure(ctx context.Context, contact *model.TrustedContact, user *model.User, accessRef string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failContactIDs[contact.ID] {
		return errors.New("smtp down")
	}
	s.disclosures = append(s.disclosures, sentDisclosure{contact.ID, user.ID, accessRef})
	return nil
}

type loggedEntry struct {
	userID      string
	kind        model.ActivityKind
	description string
}

// fakeActivityLog records audit entries.
type fakeActivityLog struct {
	mu      sync.Mutex
	entries []loggedEntry
	fail    bool
}

func (l *fakeActivityLog) Record(ctx context.Context, userID string, kind model.ActivityKind, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fail {
		return errors.New("stream down")
	}
	l.entries = append(l.entries, loggedEntry{userID, kind, description})
	return nil
}

func (l *fakeActivityLog) byKind(kind model.ActivityKind) []loggedEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []loggedEntry
	for _, e := range l.entries {
		if e.kind == kind {
			out = append(out, e)
		}
	}
	return out
}

// staticSigner mints predictable access references.
type staticSigner struct{}

func (staticSigner) AccessReference(contactID string) string {
	return "ref-" + contactID
}

// fakeLock implements RunLock with a local flag.
type fakeLock struct {
	mu   sync.Mutex
	held bool
	err  error
}

func (l *fakeLock) Acquire(ctx context.Context) (func(), bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, false, l.err
	}
	if l.held {
		return nil, false, nil
	}
	l.held = true
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
	}, true, nil
}
