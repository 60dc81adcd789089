package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	defaultIdleTTL = 30 * time.Minute
	sweepEvery     = time.Minute
)

// Manager maps opaque context IDs (one per browser context, carried in a
// cookie) to lazily created Stores sharing one Storage. It is constructed
// explicitly and handed to whatever builds guards and clients; there is no
// ambient global session state.
//
// Stores left untouched past the idle TTL are dropped so one-shot callers
// that never replay their cookie cannot grow the map without bound. The
// durable session record stays in Storage; a returning cookie rehydrates.
type Manager struct {
	storage Storage
	logger  *logrus.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	stores    map[string]*managedStore
	lastSweep time.Time
}

type managedStore struct {
	store    *Store
	lastSeen time.Time
}

func NewManager(storage Storage, logger *logrus.Logger, idleTTL time.Duration) *Manager {
	if idleTTL <= 0 {
		idleTTL = defaultIdleTTL
	}
	return &Manager{
		storage: storage,
		logger:  logger,
		idleTTL: idleTTL,
		now:     time.Now,
		stores:  make(map[string]*managedStore),
	}
}

// Context returns the Store for the given context ID, creating and
// initializing it on first use. Repeated calls with the same ID return the
// same Store so subscriptions survive across requests.
func (m *Manager) Context(ctx context.Context, id string) *Store {
	now := m.now()

	m.mu.Lock()
	m.sweep(now)
	entry, ok := m.stores[id]
	if !ok {
		entry = &managedStore{store: newStore(m.storage, id+"/", m.logger)}
		m.stores[id] = entry
	}
	entry.lastSeen = now
	m.mu.Unlock()

	if !ok {
		entry.store.Initialize(ctx)
	}
	return entry.store
}

// sweep drops stores idle past the TTL. A store with live subscriptions is
// never dropped; its owner still holds the cancel. Caller must hold m.mu.
func (m *Manager) sweep(now time.Time) {
	if now.Sub(m.lastSweep) < sweepEvery {
		return
	}
	m.lastSweep = now

	evicted := 0
	for id, entry := range m.stores {
		if now.Sub(entry.lastSeen) >= m.idleTTL && !entry.store.hasSubscribers() {
			delete(m.stores, id)
			evicted++
		}
	}
	if evicted > 0 {
		m.logger.WithFields(logrus.Fields{
			"evicted":  evicted,
			"resident": len(m.stores),
		}).Debug("Swept idle session contexts")
	}
}
