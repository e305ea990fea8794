package memstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/learnmate/learnmate-backend/internal/service"
)

func isUnique(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeUniqueViolation
}

// Sessions implements service.SessionStore with expiring entries.
type Sessions struct {
	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewSessions creates an empty session denylist.
func NewSessions() *Sessions {
	return &Sessions{revoked: map[string]time.Time{}}
}

func (s *Sessions) Revoke(_ context.Context, sessionID string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[sessionID] = time.Now().Add(ttl)
	return nil
}

func (s *Sessions) IsRevoked(_ context.Context, sessionID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	until, ok := s.revoked[sessionID]
	if !ok {
		return false, nil
	}
	if time.Now().After(until) {
		delete(s.revoked, sessionID)
		return false, nil
	}
	return true, nil
}

// Bus implements service.EventBus in process.
type Bus struct {
	mu   sync.Mutex
	subs map[string]map[*subscription]struct{}
	// Published records every payload per channel, for assertions.
	Published map[string][][]byte
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{
		subs:      map[string]map[*subscription]struct{}{},
		Published: map[string][][]byte{},
	}
}

func (b *Bus) Publish(_ context.Context, channel string, payload []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.Published[channel] = append(b.Published[channel], payload)
	for sub := range b.subs[channel] {
		select {
		case sub.out <- payload:
		default:
		}
	}
	return nil
}

func (b *Bus) Subscribe(_ context.Context, channel string) (service.Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := &subscription{bus: b, channel: channel, out: make(chan []byte, 16)}
	if b.subs[channel] == nil {
		b.subs[channel] = map[*subscription]struct{}{}
	}
	b.subs[channel][sub] = struct{}{}
	return sub, nil
}

// Count returns how many payloads were published on channel.
func (b *Bus) Count(channel string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Published[channel])
}

type subscription struct {
	bus     *Bus
	channel string
	out     chan []byte
	once    sync.Once
}

func (s *subscription) Messages() <-chan []byte {
	return s.out
}

func (s *subscription) Close() error {
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs[s.channel], s)
		s.bus.mu.Unlock()
		close(s.out)
	})
	return nil
}

// Provisioner implements service.UserProvisioner like the auth service
// would: one account per email.
type Provisioner struct {
	mu    sync.Mutex
	users map[uuid.UUID]string
}

// NewProvisioner creates an empty account registry.
func NewProvisioner() *Provisioner {
	return &Provisioner{users: map[uuid.UUID]string{}}
}

func (p *Provisioner) CreateUser(_ context.Context, email, password string, _ map[string]interface{}) (uuid.UUID, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(password) < 8 {
		return uuid.Nil, fmt.Errorf("%w: password too short", service.ErrValidation)
	}
	for _, e := range p.users {
		if strings.EqualFold(e, email) {
			return uuid.Nil, fmt.Errorf("%w: email already registered", service.ErrConflict)
		}
	}
	id := uuid.New()
	p.users[id] = email
	return id, nil
}

func (p *Provisioner) DeleteUser(_ context.Context, id uuid.UUID) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.users, id)
	return nil
}

// Len returns the number of provisioned accounts.
func (p *Provisioner) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.users)
}
