package middleware

import (
	"fmt"

	"github.com/flightdeck/gateway-api/internal/auth"
	"github.com/flightdeck/gateway-api/internal/config"
	"github.com/flightdeck/gateway-api/internal/session"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// Manager wires the session storage backend and the middlewares built on it.
type Manager struct {
	Sessions    *session.Manager
	Auth        *auth.Service
	Storage     session.Storage
	RedisClient *redis.Client
	Config      *config.Config
	Logger      *logrus.Logger
}

// NewManager selects the session storage backend from config and builds the
// session manager over it.
func NewManager(cfg *config.Config, logger *logrus.Logger) (*Manager, error) {
	var (
		storage     session.Storage
		redisClient *redis.Client
	)

	switch cfg.Session.Backend {
	case "redis":
		client, err := session.NewRedisClient(&cfg.Redis, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis client: %w", err)
		}
		redisClient = client
		storage = session.NewRedisStorage(client)
	case "file":
		storage = session.NewFileStorage(cfg.Session.FilePath)
	default:
		storage = session.NewMemoryStorage()
	}

	logger.WithField("backend", cfg.Session.Backend).Info("Session storage initialized")

	return &Manager{
		Sessions:    session.NewManager(storage, logger, cfg.Session.IdleTTL),
		Auth:        auth.NewService(&cfg.Backend, logger, ContextTokenSource()),
		Storage:     storage,
		RedisClient: redisClient,
		Config:      cfg,
		Logger:      logger,
	}, nil
}

// Ready reports whether the session storage backend is reachable.
func (m *Manager) Ready() error {
	if m.RedisClient != nil {
		return session.RedisHealthCheck(m.RedisClient, m.Logger)()
	}
	return nil
}

// Close releases storage resources.
func (m *Manager) Close() error {
	if m.RedisClient != nil {
		return m.RedisClient.Close()
	}
	return nil
}
