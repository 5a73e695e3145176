package gymdesk

import (
	"net/http"

	"github.com/MrEthical07/gymdesk/api"
	"github.com/MrEthical07/gymdesk/jwt"
	"github.com/MrEthical07/gymdesk/middleware"
	"github.com/MrEthical07/gymdesk/permission"
	"github.com/MrEthical07/gymdesk/storage"
	"github.com/rs/zerolog"
)

// Builder assembles an [Engine]. Configure it during initialization, call Build once,
// then discard it.
type Builder struct {
	config Config

	store      storage.Store
	decoder    jwt.Decoder
	policy     permission.Policy
	httpClient *http.Client
	logger     zerolog.Logger
	auditSink  AuditSink

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
		logger: zerolog.Nop(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithStore sets the credential backend. Required.
func (b *Builder) WithStore(store storage.Store) *Builder {
	b.store = store
	return b
}

// WithDecoder replaces the default unverified decoder, for example with a
// [jwt.VerifyingDecoder].
func (b *Builder) WithDecoder(decoder jwt.Decoder) *Builder {
	b.decoder = decoder
	return b
}

// WithPolicy replaces [permission.DefaultPolicy].
func (b *Builder) WithPolicy(policy permission.Policy) *Builder {
	b.policy = policy
	return b
}

// WithHTTPClient sets the client the engine wraps with its authorization binding. The
// client itself is never modified.
func (b *Builder) WithHTTPClient(client *http.Client) *Builder {
	b.httpClient = client
	return b
}

func (b *Builder) WithLogger(logger zerolog.Logger) *Builder {
	b.logger = logger
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and starts the engine's transition goroutine.
// The returned engine is in the Unknown state until Initialize or Login runs.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}

	cfg := cloneConfig(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if b.store == nil {
		return nil, ErrStoreRequired
	}

	decoder := b.decoder
	if decoder == nil {
		decoder = jwt.NewUnverifiedDecoder()
	}
	policy := b.policy
	if policy == nil {
		policy = permission.DefaultPolicy()
	}
	base := b.httpClient
	if base == nil {
		base = &http.Client{Timeout: cfg.API.Timeout}
	}

	binding := middleware.NewBinding()
	httpClient := binding.Client(base)

	engine := &Engine{
		config:     cfg,
		store:      b.store,
		decoder:    decoder,
		policy:     policy,
		binding:    binding,
		httpClient: httpClient,
		client:     api.NewClient(cfg.API.BaseURL, httpClient, api.WithLoginPath(cfg.API.LoginPath)),
		logger:     b.logger.With().Str("component", "session").Logger(),
		audit:      newAuditDispatcher(cfg.Audit, b.auditSink),
		metrics:    NewMetrics(cfg.Metrics),
		inbox:      make(chan command),
		done:       make(chan struct{}),
		subs:       make(map[uint64]*Subscription),
	}
	engine.snapshot.Store(&Session{})
	engine.start()

	b.built = true

	return engine, nil
}
