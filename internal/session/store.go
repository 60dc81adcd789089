// Package session holds the single source of truth for "who is logged in
// right now". A Store is bound to one durable storage slot; any number of
// subscribers (guards, views) observe it through a replay-latest stream.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/flightdeck/gateway-api/internal/models"

	"github.com/sirupsen/logrus"
)

// Storage keys. One slot holds the serialized session record; the second
// optionally holds a username pre-filling the forced password-change flow.
const (
	currentUserKey         = "currentUser"
	expiredPasswordUserKey = "expiredPasswordUsername"
)

// Store owns one session slot. All mutations replace the record wholesale and
// persist it before publishing, so a subscriber can never observe a published
// user that is not yet durably stored.
type Store struct {
	storage    Storage
	userKey    string
	expiredKey string
	logger     *logrus.Logger

	mu      sync.Mutex
	current *models.User
	subs    map[uint64]*subscriber
	nextSub uint64
}

// NewStore creates a Store over the default storage slot.
func NewStore(storage Storage, logger *logrus.Logger) *Store {
	return newStore(storage, "", logger)
}

func newStore(storage Storage, prefix string, logger *logrus.Logger) *Store {
	if logger == nil {
		logger = logrus.New()
	}
	return &Store{
		storage:    storage,
		userKey:    prefix + currentUserKey,
		expiredKey: prefix + expiredPasswordUserKey,
		logger:     logger,
		subs:       make(map[uint64]*subscriber),
	}
}

// Initialize loads the persisted record. A missing or malformed record yields
// an absent published value; it never fails the caller.
func (s *Store) Initialize(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, s.userKey)
	if err != nil {
		s.logger.WithError(err).Warn("Session storage read failed, starting unauthenticated")
		s.publish(nil)
		return
	}
	if !ok {
		s.publish(nil)
		return
	}

	var user models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.logger.WithError(err).Warn("Stored session record is malformed, ignoring it")
		s.publish(nil)
		return
	}
	s.publish(&user)
}

// Set persists user and then publishes it to all current and future
// subscribers. user must be non-nil; ending a session goes through Clear.
func (s *Store) Set(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("session: Set requires a user, use Clear to end the session")
	}
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	if err := s.storage.Set(ctx, s.userKey, string(data)); err != nil {
		return err
	}
	u := *user
	s.publish(&u)
	return nil
}

// Clear removes the persisted record and the expired-password key, then
// publishes an absent value. Safe to call when nothing is stored.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.userKey, s.expiredKey); err != nil {
		return err
	}
	s.publish(nil)
	return nil
}

// Current returns the last published value, or nil when no user is logged in.
func (s *Store) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Subscribe returns a channel carrying the latest value followed by every
// subsequent change, in the order mutations were issued. Each subscription is
// an independent live view; cancel releases it.
func (s *Store) Subscribe() (<-chan *models.User, func()) {
	sub := newSubscriber()

	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = sub
	sub.enqueue(s.current)
	s.mu.Unlock()

	go sub.run()

	cancel := func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
		sub.close()
	}
	return sub.ch, cancel
}

// SetExpiredPasswordUsername flags username for the forced password-change
// flow after the backend reported an expired password.
func (s *Store) SetExpiredPasswordUsername(ctx context.Context, username string) error {
	return s.storage.Set(ctx, s.expiredKey, username)
}

// ExpiredPasswordUsername returns the flagged username, or "" when none is
// set.
func (s *Store) ExpiredPasswordUsername(ctx context.Context) (string, error) {
	v, ok, err := s.storage.Get(ctx, s.expiredKey)
	if err != nil || !ok {
		return "", err
	}
	return v, nil
}

func (s *Store) hasSubscribers() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs) > 0
}

func (s *Store) publish(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = user
	for _, sub := range s.subs {
		sub.enqueue(user)
	}
}

// subscriber decouples publishing from consumption: enqueue never blocks the
// store, and the run loop delivers values in publish order.
type subscriber struct {
	ch   chan *models.User
	done chan struct{}

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []*models.User
	closed bool
}

func newSubscriber() *subscriber {
	sub := &subscriber{
		ch:   make(chan *models.User, 1),
		done: make(chan struct{}),
	}
	sub.cond = sync.NewCond(&sub.mu)
	return sub
}

func (sub *subscriber) enqueue(user *models.User) {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	if sub.closed {
		return
	}
	sub.queue = append(sub.queue, user)
	sub.cond.Signal()
}

func (sub *subscriber) close() {
	sub.mu.Lock()
	if sub.closed {
		sub.mu.Unlock()
		return
	}
	sub.closed = true
	sub.cond.Signal()
	sub.mu.Unlock()
	close(sub.done)
}

func (sub *subscriber) run() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			close(sub.ch)
			return
		}
		next := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.ch <- next:
		case <-sub.done:
			close(sub.ch)
			return
		}
	}
}
