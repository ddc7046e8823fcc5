package session

import (
	"context"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopease/shopease-engine/internal/apiclient"
	"github.com/shopease/shopease-engine/internal/store"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopease/shopease-engine/pkg/logger"
	"github.com/shopease/shopease-engine/pkg/metrics"
)

const documentVersion = 1

// Authenticator is the slice of the storefront API the manager consumes.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (apiclient.Credentials, error)
	Register(ctx context.Context, input apiclient.RegisterInput) error
	Refresh(ctx context.Context) (apiclient.Credentials, error)
}

// State is the session snapshot handed to the view layer. Token and User
// are both set or both empty, never one without the other.
type State struct {
	Token string                 `json:"token"`
	User  *apiclient.UserProfile `json:"user"`
	Phase enums.SessionPhase     `json:"phase"`
}

// persistedSession is the durable token/user document.
type persistedSession struct {
	Token string                 `json:"token"`
	User  *apiclient.UserProfile `json:"user"`
}

// ManagerParams groups dependencies for the session manager.
type ManagerParams struct {
	Store   store.Store
	Keys    store.Keys
	API     Authenticator
	Logger  *logger.Logger
	Metrics *metrics.EngineMetrics
}

// Manager owns the authentication token and user identity across the
// session lifecycle: boot-time restore, login/logout, refresh, and forced
// expiry on unauthorized responses.
type Manager struct {
	mu      sync.Mutex
	token   string
	user    *apiclient.UserProfile
	phase   enums.SessionPhase
	epoch   uint64
	persist store.Store
	key     string
	api     Authenticator
	logg    *logger.Logger
	metrics *metrics.EngineMetrics
	now     func() time.Time
}

// NewManager builds a session manager in the Uninitialized phase; call
// Restore before reading the session.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Store == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "store is required")
	}
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "api client is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &Manager{
		phase:   enums.SessionPhaseUninitialized,
		persist: params.Store,
		key:     params.Keys.Session(),
		api:     params.API,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

// Restore loads the persisted session at boot. A missing or malformed
// document lands Anonymous; a half-populated pair is treated as corrupted
// and cleared rather than trusted; an expired token triggers one refresh
// attempt before giving up.
func (m *Manager) Restore(ctx context.Context) State {
	m.mu.Lock()
	if m.phase != enums.SessionPhaseUninitialized {
		state := m.snapshotLocked()
		m.mu.Unlock()
		return state
	}
	m.setPhaseLocked(enums.SessionPhaseRestoring)
	epoch := m.epoch
	m.mu.Unlock()

	var doc persistedSession
	loaded := store.LoadJSON(ctx, m.persist, m.logg, m.key, documentVersion, &doc)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		return m.snapshotLocked()
	}

	if !loaded {
		m.setPhaseLocked(enums.SessionPhaseAnonymous)
		return m.snapshotLocked()
	}
	if (doc.Token == "") != (doc.User == nil) {
		// Half a pair means the document was tampered with or truncated.
		m.logg.Warn(ctx, "persisted session is partially populated, discarding")
		m.clearLocked(ctx)
		m.setPhaseLocked(enums.SessionPhaseAnonymous)
		return m.snapshotLocked()
	}
	if doc.Token == "" {
		m.setPhaseLocked(enums.SessionPhaseAnonymous)
		return m.snapshotLocked()
	}

	if tokenExpired(doc.Token, m.now()) {
		m.token = doc.Token
		m.user = doc.User
		return m.refreshLocked(ctx)
	}

	m.token = doc.Token
	m.user = doc.User
	m.setPhaseLocked(enums.SessionPhaseAuthenticated)
	return m.snapshotLocked()
}

// Login authenticates against the storefront API. The phase reports
// Restoring while the call is in flight so consumers suppress premature
// redirects. A result arriving after a newer transition (logout, another
// login) is discarded.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	m.mu.Lock()
	if m.phase == enums.SessionPhaseAuthenticated {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeConflict, "already authenticated")
	}
	previous := m.phase
	m.setPhaseLocked(enums.SessionPhaseRestoring)
	epoch := m.epoch
	m.mu.Unlock()

	creds, err := m.api.Login(ctx, email, password)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || ctx.Err() != nil {
		return pkgerrors.New(pkgerrors.CodeConflict, "login superseded by a newer session transition")
	}
	if err != nil {
		if previous == enums.SessionPhaseUninitialized {
			previous = enums.SessionPhaseAnonymous
		}
		m.setPhaseLocked(previous)
		return err
	}

	m.applyCredentialsLocked(ctx, creds)
	return nil
}

// Register creates an account without touching session state.
func (m *Manager) Register(ctx context.Context, input apiclient.RegisterInput) error {
	return m.api.Register(ctx, input)
}

// Refresh exchanges the current token for a fresh pair. Unauthorized
// refreshes expire the session via the 401 hook; transport failures leave
// the session untouched so the user can retry.
func (m *Manager) Refresh(ctx context.Context) error {
	m.mu.Lock()
	if m.token == "" {
		m.mu.Unlock()
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "no session to refresh")
	}
	epoch := m.epoch
	m.mu.Unlock()

	creds, err := m.api.Refresh(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch || ctx.Err() != nil {
		// Stale result: the session moved on while the request was in flight.
		return nil
	}
	if err != nil {
		return err
	}

	m.applyCredentialsLocked(ctx, creds)
	return nil
}

// Logout clears the token, user, and persisted document.
func (m *Manager) Logout(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearLocked(ctx)
	m.setPhaseLocked(enums.SessionPhaseAnonymous)
}

// HandleUnauthorized is the 401 hook: it force-clears the session and marks
// it Expired so route authorization pushes the user back to login.
func (m *Manager) HandleUnauthorized(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.token == "" && m.phase != enums.SessionPhaseAuthenticated {
		return
	}
	m.logg.Warn(ctx, "unauthorized response received, expiring session")
	m.clearLocked(ctx)
	m.setPhaseLocked(enums.SessionPhaseExpired)
}

// AcknowledgeExpired collapses the transient Expired phase to Anonymous
// once the view has shown its "session expired" notice.
func (m *Manager) AcknowledgeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phase == enums.SessionPhaseExpired {
		m.setPhaseLocked(enums.SessionPhaseAnonymous)
	}
}

// Token implements apiclient.TokenSource.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// Snapshot returns the current session state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// refreshLocked runs one refresh attempt during restore. The lock is
// released for the network call and re-acquired to apply the outcome.
func (m *Manager) refreshLocked(ctx context.Context) State {
	epoch := m.epoch
	m.mu.Unlock()
	creds, err := m.api.Refresh(ctx)
	m.mu.Lock()

	if m.epoch != epoch {
		return m.snapshotLocked()
	}
	if err != nil {
		m.logg.Warn(ctx, "session refresh during restore failed, starting anonymous")
		m.clearLocked(ctx)
		m.setPhaseLocked(enums.SessionPhaseAnonymous)
		return m.snapshotLocked()
	}

	m.applyCredentialsLocked(ctx, creds)
	return m.snapshotLocked()
}

// applyCredentialsLocked stores a token/user pair atomically: memory first,
// then the persisted document, both fields always together.
func (m *Manager) applyCredentialsLocked(ctx context.Context, creds apiclient.Credentials) {
	m.token = creds.Token
	m.user = creds.User
	m.setPhaseLocked(enums.SessionPhaseAuthenticated)
	if err := store.SaveJSON(ctx, m.persist, m.key, documentVersion, persistedSession{
		Token: creds.Token,
		User:  creds.User,
	}); err != nil {
		m.logg.Error(ctx, "persisting session document failed", err)
	}
}

func (m *Manager) clearLocked(ctx context.Context) {
	m.token = ""
	m.user = nil
	if err := m.persist.Clear(ctx, m.key); err != nil {
		m.logg.Error(ctx, "clearing session document failed", err)
	}
}

// setPhaseLocked records the transition and bumps the epoch so stale async
// results are recognizable.
func (m *Manager) setPhaseLocked(phase enums.SessionPhase) {
	if m.phase == phase {
		return
	}
	m.phase = phase
	m.epoch++
	m.metrics.IncTransition(phase.String())
}

func (m *Manager) snapshotLocked() State {
	var user *apiclient.UserProfile
	if m.user != nil {
		copied := *m.user
		user = &copied
	}
	return State{Token: m.token, User: user, Phase: m.phase}
}

// tokenExpired inspects the JWT exp claim without verifying the signature;
// verification belongs to the server. Opaque tokens are trusted until the
// server rejects them.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(now)
}
