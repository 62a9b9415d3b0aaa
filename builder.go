package authcore

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/veloraweb/authcore/password"
	"github.com/veloraweb/authcore/token"
)

// Builder assembles an [Engine]. Obtain one with [New], configure it
// fluently, then call [Builder.Build] exactly once.
type Builder struct {
	config     Config
	userStore  UserStore
	logger     *zap.Logger
	registerer prometheus.Registerer
	now        func() time.Time

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

func (b *Builder) WithUserStore(store UserStore) *Builder {
	b.userStore = store
	return b
}

func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithRegisterer overrides the Prometheus registry used for the engine's
// collectors. Defaults to the global registerer.
func (b *Builder) WithRegisterer(reg prometheus.Registerer) *Builder {
	b.registerer = reg
	return b
}

// WithClock overrides the clock. Tests use it to pin the midnight-expiry
// policy to a known instant.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.userStore == nil {
		return nil, errors.New("user store required")
	}

	tm, err := token.NewManager(token.Config{
		Secret: cloneBytes(cfg.JWT.Secret),
		Issuer: cfg.JWT.Issuer,
		Leeway: cfg.JWT.Leeway,
	})
	if err != nil {
		return nil, err
	}

	ph, err := password.NewHasher(cfg.Password.Cost)
	if err != nil {
		return nil, err
	}

	mtr, err := newMetrics(cfg.Metrics, b.registerer)
	if err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	now := b.now
	if now == nil {
		now = time.Now
	}

	engine := &Engine{
		config:       cfg,
		tokenManager: tm,
		passwordHash: ph,
		userStore:    b.userStore,
		metrics:      mtr,
		logger:       logger,
		now:          now,
		sources:      defaultSources(cfg.Session.CookieName),
	}

	b.built = true
	return engine, nil
}
