package gymdesk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/gymdesk/api"
	"github.com/MrEthical07/gymdesk/jwt"
	"github.com/MrEthical07/gymdesk/middleware"
	"github.com/MrEthical07/gymdesk/permission"
	"github.com/MrEthical07/gymdesk/storage"
	"github.com/rs/zerolog"
)

// Engine owns the console session. All methods are safe for concurrent use.
type Engine struct {
	config Config

	store      storage.Store
	decoder    jwt.Decoder
	policy     permission.Policy
	binding    *middleware.Binding
	httpClient *http.Client
	client     *api.Client
	logger     zerolog.Logger
	audit      *auditDispatcher
	metrics    *Metrics

	snapshot atomic.Pointer[Session]

	inbox     chan command
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once

	subMu   sync.Mutex
	subs    map[uint64]*Subscription
	nextSub uint64
}

type command struct {
	run      func()
	finished chan struct{}
}

func (e *Engine) start() {
	e.wg.Add(1)
	go e.loop()
}

// loop is the only writer of the session snapshot.
func (e *Engine) loop() {
	defer e.wg.Done()

	for {
		select {
		case cmd := <-e.inbox:
			cmd.run()
			close(cmd.finished)
		case <-e.done:
			return
		}
	}
}

// submit hands fn to the transition goroutine and waits for it to finish. ctx only
// bounds the wait for a turn; once fn starts it runs to completion.
func (e *Engine) submit(ctx context.Context, fn func()) error {
	cmd := command{run: fn, finished: make(chan struct{})}

	select {
	case e.inbox <- cmd:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.done:
		return ErrEngineClosed
	}

	<-cmd.finished
	return nil
}

// Session returns the current snapshot.
func (e *Engine) Session() Session {
	return *e.snapshot.Load()
}

// HTTPClient returns the client that carries the session credential on every request.
// Screens that call other backend endpoints should use it.
func (e *Engine) HTTPClient() *http.Client {
	return e.httpClient
}

// API returns the backend client used by the engine.
func (e *Engine) API() *api.Client {
	return e.client
}

// Config returns a copy of the engine configuration.
func (e *Engine) Config() Config {
	return cloneConfig(e.config)
}

// Initialize resolves the session from storage. It never calls the backend.
//
// A missing or expired credential leaves the session Unauthenticated. A credential that
// cannot be decoded or that the policy denies is cleared from storage first. A storage
// read failure also yields Unauthenticated and is returned.
func (e *Engine) Initialize(ctx context.Context) (Session, error) {
	var (
		snap Session
		err  error
	)
	if serr := e.submit(ctx, func() { snap, err = e.initialize(ctx) }); serr != nil {
		return e.Session(), serr
	}
	return snap, err
}

func (e *Engine) initialize(ctx context.Context) (Session, error) {
	credential, err := e.store.Load(ctx)
	if err != nil {
		e.metrics.Inc(MetricRestoreFailure)
		snap := e.publish(unauthenticatedSession())
		if errors.Is(err, storage.ErrNotFound) {
			e.logger.Debug().Str("event", "initialize").Str("state", string(snap.State())).Msg("no stored credential")
			e.emitAudit(ctx, AuditInitialize, snap.State(), nil, nil, map[string]string{"reason": "not_found"})
			return snap, nil
		}
		e.logger.Error().Err(err).Str("event", "initialize").Msg("credential store read failed")
		e.emitAudit(ctx, AuditInitialize, snap.State(), nil, err, nil)
		return snap, fmt.Errorf("load credential: %w", err)
	}

	claims, err := e.decoder.Decode(credential)
	if err != nil {
		e.revoke(ctx, nil, err)
		return e.Session(), nil
	}

	decision := e.policy.Evaluate(claims)
	if !decision.Granted {
		e.revoke(ctx, claims, ErrAccessDenied)
		return e.Session(), nil
	}

	e.metrics.Inc(MetricRestoreSuccess)
	snap := e.publish(authenticatedSession(credential, claims))
	e.logger.Info().Str("event", "initialize").Str("state", string(snap.State())).Str("role", decision.Role).Msg("session restored")
	e.emitAudit(ctx, AuditInitialize, snap.State(), claims, nil, nil)
	return snap, nil
}

// revoke clears a stored credential the engine refuses to use.
func (e *Engine) revoke(ctx context.Context, claims *jwt.Claims, reason error) {
	e.metrics.Inc(MetricRestoreFailure)
	e.metrics.Inc(MetricCredentialRevoked)

	if err := e.store.Clear(ctx); err != nil {
		e.logger.Error().Err(err).Str("event", "initialize").Msg("clearing rejected credential failed")
	}
	snap := e.publish(unauthenticatedSession())

	role := ""
	if claims != nil {
		role = claims.Role
	}
	e.logger.Warn().Err(reason).Str("event", "initialize").Str("role", role).Str("state", string(snap.State())).Msg("stored credential rejected")
	e.emitAudit(ctx, AuditCredentialDrop, snap.State(), claims, reason, nil)
}

// Login exchanges email and password for a credential.
//
// Network, protocol and malformed-credential failures leave the session as it was. A
// credential the policy denies is discarded, the session becomes Unauthenticated and
// ErrAccessDenied is returned. Otherwise the credential is persisted for Credential.TTL
// and the session becomes Authenticated.
func (e *Engine) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var (
		result *LoginResult
		err    error
	)
	if serr := e.submit(ctx, func() { result, err = e.login(ctx, email, password) }); serr != nil {
		return nil, serr
	}
	return result, err
}

func (e *Engine) login(ctx context.Context, email, password string) (*LoginResult, error) {
	start := time.Now()
	resp, err := e.client.Login(ctx, email, password)
	e.metrics.Observe(MetricLoginLatency, time.Since(start))
	if err != nil {
		e.loginFailed(ctx, err)
		return nil, err
	}

	claims, err := e.decoder.Decode(resp.Token)
	if err != nil {
		if !errors.Is(err, jwt.ErrMalformed) {
			err = fmt.Errorf("%w: %w", jwt.ErrMalformed, err)
		}
		e.loginFailed(ctx, err)
		return nil, err
	}

	decision := e.policy.Evaluate(claims)
	if !decision.Granted {
		e.metrics.Inc(MetricLoginDenied)
		if err := e.store.Clear(ctx); err != nil {
			e.logger.Error().Err(err).Str("event", "login").Msg("clearing credential after denial failed")
		}
		snap := e.publish(unauthenticatedSession())
		e.logger.Warn().Str("event", "login").Str("role", claims.Role).Str("state", string(snap.State())).Msg("login denied by policy")
		e.emitAudit(ctx, AuditLoginDenied, snap.State(), claims, ErrAccessDenied, nil)
		return nil, ErrAccessDenied
	}

	persisted := true
	if err := e.store.Save(ctx, resp.Token, e.config.Credential.TTL); err != nil {
		persisted = false
		e.logger.Error().Err(err).Str("event", "login").Msg("persisting credential failed")
	}

	e.metrics.Inc(MetricLoginSuccess)
	snap := e.publish(authenticatedSession(resp.Token, claims))
	e.logger.Info().Str("event", "login").Str("role", decision.Role).Str("state", string(snap.State())).Msg("login succeeded")
	e.emitAudit(ctx, AuditLoginSuccess, snap.State(), claims, nil, map[string]string{"persisted": fmt.Sprint(persisted)})

	return &LoginResult{
		Session:   snap,
		Payload:   resp.Raw,
		Persisted: persisted,
	}, nil
}

func (e *Engine) loginFailed(ctx context.Context, err error) {
	e.metrics.Inc(MetricLoginFailure)
	e.countBackendError(err)

	evt := e.logger.Warn().Err(err).Str("event", "login")
	if status := api.StatusOf(err); status != 0 {
		evt = evt.Int("status", status)
	}
	evt.Msg("login failed")

	e.emitAudit(ctx, AuditLoginFailure, e.Session().State(), nil, err, nil)
}

func (e *Engine) countBackendError(err error) {
	switch {
	case api.IsNetwork(err):
		e.metrics.Inc(MetricNetworkError)
	case api.StatusOf(err) != 0:
		e.metrics.Inc(MetricProtocolError)
	}
}

// Logout clears the stored credential and cached gym id and ends the session. It is
// idempotent. A storage failure is returned, but the session still ends.
func (e *Engine) Logout(ctx context.Context) error {
	var err error
	if serr := e.submit(ctx, func() { err = e.logout(ctx) }); serr != nil {
		return serr
	}
	return err
}

func (e *Engine) logout(ctx context.Context) error {
	prev := e.Session()
	clearErr := e.store.Clear(ctx)
	snap := e.publish(unauthenticatedSession())
	e.metrics.Inc(MetricLogout)

	if clearErr != nil {
		e.logger.Error().Err(clearErr).Str("event", "logout").Msg("clearing stored credential failed")
		e.emitAudit(ctx, AuditLogout, snap.State(), prev.Claims, clearErr, nil)
		return fmt.Errorf("clear credential: %w", clearErr)
	}

	e.logger.Info().Str("event", "logout").Str("state", string(snap.State())).Msg("logged out")
	e.emitAudit(ctx, AuditLogout, snap.State(), prev.Claims, nil, nil)
	return nil
}

// publish stores snap, syncs the request binding, then notifies subscribers.
func (e *Engine) publish(snap Session) Session {
	e.snapshot.Store(&snap)
	e.binding.Sync(snap)
	e.notify(snap)
	return snap
}

// MetricsSnapshot returns a copy of the engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	return e.metrics.Snapshot()
}

// AuditDropped reports how many audit events were dropped under backpressure.
func (e *Engine) AuditDropped() uint64 {
	return e.audit.Dropped()
}

// Close stops the transition goroutine, closes every subscription and flushes the audit
// dispatcher. The store is not closed. Close is idempotent.
func (e *Engine) Close() {
	e.closeOnce.Do(func() {
		close(e.done)
		e.wg.Wait()
		e.closeSubscriptions()
		e.audit.Close()
	})
}
