package session

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shopease/shopease-engine/internal/apiclient"
	"github.com/shopease/shopease-engine/internal/store"
	pkgerrors "github.com/shopease/shopease-engine/pkg/errors"
	"github.com/shopease/shopease-engine/pkg/enums"
	"github.com/shopease/shopease-engine/pkg/logger"
)

type fakeAuthenticator struct {
	loginCreds   apiclient.Credentials
	loginErr     error
	refreshCreds apiclient.Credentials
	refreshErr   error
	refreshCalls int
	onRefresh    func()
	onLogin      func()
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (apiclient.Credentials, error) {
	if f.onLogin != nil {
		f.onLogin()
	}
	return f.loginCreds, f.loginErr
}

func (f *fakeAuthenticator) Register(ctx context.Context, input apiclient.RegisterInput) error {
	return nil
}

func (f *fakeAuthenticator) Refresh(ctx context.Context) (apiclient.Credentials, error) {
	f.refreshCalls++
	if f.onRefresh != nil {
		f.onRefresh()
	}
	return f.refreshCreds, f.refreshErr
}

func profile(id string) *apiclient.UserProfile {
	return &apiclient.UserProfile{ID: id, Name: "Asha", Email: "asha@example.com", Role: enums.UserRoleCustomer}
}

func newTestManager(t *testing.T, backend store.Store, api Authenticator) *Manager {
	t.Helper()
	manager, err := NewManager(ManagerParams{
		Store:  backend,
		Keys:   store.NewKeys("test"),
		API:    api,
		Logger: logger.New(logger.Options{ServiceName: "session-test"}),
	})
	if err != nil {
		t.Fatalf("NewManager() error: %v", err)
	}
	return manager
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("SignedString() error: %v", err)
	}
	return signed
}

func TestRestoreWithoutDocumentIsAnonymous(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t, store.NewMemory(), &fakeAuthenticator{})

	state := manager.Restore(context.Background())
	if state.Phase != enums.SessionPhaseAnonymous {
		t.Fatalf("expected anonymous phase, got %s", state.Phase)
	}
	if state.Token != "" || state.User != nil {
		t.Fatalf("expected empty session, got %+v", state)
	}
}

func TestRestoreRecoversPersistedSession(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	keys := store.NewKeys("test")
	if err := store.SaveJSON(ctx, backend, keys.Session(), documentVersion, persistedSession{
		Token: "opaque-token",
		User:  profile("u1"),
	}); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}

	api := &fakeAuthenticator{}
	manager := newTestManager(t, backend, api)
	state := manager.Restore(ctx)
	if state.Phase != enums.SessionPhaseAuthenticated {
		t.Fatalf("expected authenticated phase, got %s", state.Phase)
	}
	if state.Token != "opaque-token" || state.User == nil || state.User.ID != "u1" {
		t.Fatalf("unexpected state %+v", state)
	}
	if api.refreshCalls != 0 {
		t.Fatalf("opaque token must not trigger a refresh, got %d calls", api.refreshCalls)
	}
}

func TestRestoreDiscardsHalfPopulatedDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	keys := store.NewKeys("test")
	if err := store.SaveJSON(ctx, backend, keys.Session(), documentVersion, persistedSession{
		Token: "token-without-user",
	}); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}

	manager := newTestManager(t, backend, &fakeAuthenticator{})
	state := manager.Restore(ctx)
	if state.Phase != enums.SessionPhaseAnonymous {
		t.Fatalf("expected anonymous phase, got %s", state.Phase)
	}
	if _, ok, _ := backend.Load(ctx, keys.Session()); ok {
		t.Fatal("expected corrupted document to be cleared")
	}
}

func TestRestoreRefreshesExpiredToken(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	keys := store.NewKeys("test")
	expired := signedToken(t, time.Now().Add(-time.Hour))
	if err := store.SaveJSON(ctx, backend, keys.Session(), documentVersion, persistedSession{
		Token: expired,
		User:  profile("u1"),
	}); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}

	api := &fakeAuthenticator{
		refreshCreds: apiclient.Credentials{Token: "fresh-token", User: profile("u1")},
	}
	manager := newTestManager(t, backend, api)
	state := manager.Restore(ctx)
	if api.refreshCalls != 1 {
		t.Fatalf("expected one refresh attempt, got %d", api.refreshCalls)
	}
	if state.Phase != enums.SessionPhaseAuthenticated || state.Token != "fresh-token" {
		t.Fatalf("unexpected state %+v", state)
	}

	var doc persistedSession
	if !store.LoadJSON(ctx, backend, nil, keys.Session(), documentVersion, &doc) || doc.Token != "fresh-token" {
		t.Fatalf("expected refreshed token persisted, got %+v", doc)
	}
}

func TestRestoreFailedRefreshStartsAnonymous(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	keys := store.NewKeys("test")
	if err := store.SaveJSON(ctx, backend, keys.Session(), documentVersion, persistedSession{
		Token: signedToken(t, time.Now().Add(-time.Hour)),
		User:  profile("u1"),
	}); err != nil {
		t.Fatalf("SaveJSON() error: %v", err)
	}

	api := &fakeAuthenticator{
		refreshErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "token expired"),
	}
	manager := newTestManager(t, backend, api)
	state := manager.Restore(ctx)
	if state.Phase != enums.SessionPhaseAnonymous || state.Token != "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, ok, _ := backend.Load(ctx, keys.Session()); ok {
		t.Fatal("expected stale session document cleared")
	}
}

func TestLoginPersistsCredentials(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	api := &fakeAuthenticator{
		loginCreds: apiclient.Credentials{Token: "tok-1", User: profile("u1")},
	}
	manager := newTestManager(t, backend, api)
	manager.Restore(ctx)

	if err := manager.Login(ctx, "asha@example.com", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	state := manager.Snapshot()
	if state.Phase != enums.SessionPhaseAuthenticated || state.Token != "tok-1" {
		t.Fatalf("unexpected state %+v", state)
	}

	var doc persistedSession
	if !store.LoadJSON(ctx, backend, nil, store.NewKeys("test").Session(), documentVersion, &doc) {
		t.Fatal("expected session document persisted after login")
	}
	if doc.Token != "tok-1" || doc.User == nil {
		t.Fatalf("unexpected persisted document %+v", doc)
	}
}

func TestLoginFailureRestoresPriorPhase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAuthenticator{
		loginErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "bad credentials"),
	}
	manager := newTestManager(t, store.NewMemory(), api)
	manager.Restore(ctx)

	if err := manager.Login(ctx, "asha@example.com", "wrong"); err == nil {
		t.Fatal("expected login error")
	}
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseAnonymous || state.Token != "" {
		t.Fatalf("unexpected state %+v", state)
	}
}

func TestLoginWhileAuthenticatedIsConflict(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAuthenticator{
		loginCreds: apiclient.Credentials{Token: "tok-1", User: profile("u1")},
	}
	manager := newTestManager(t, store.NewMemory(), api)
	manager.Restore(ctx)
	if err := manager.Login(ctx, "asha@example.com", "secret"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	err := manager.Login(ctx, "asha@example.com", "secret")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLogoutClearsSessionAndDocument(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	api := &fakeAuthenticator{
		loginCreds: apiclient.Credentials{Token: "tok-1", User: profile("u1")},
	}
	manager := newTestManager(t, backend, api)
	manager.Restore(ctx)
	_ = manager.Login(ctx, "asha@example.com", "secret")

	manager.Logout(ctx)
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseAnonymous || state.Token != "" || state.User != nil {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, ok, _ := backend.Load(ctx, store.NewKeys("test").Session()); ok {
		t.Fatal("expected session document cleared on logout")
	}
}

func TestUnauthorizedExpiresThenAcknowledges(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := store.NewMemory()
	api := &fakeAuthenticator{
		loginCreds: apiclient.Credentials{Token: "tok-1", User: profile("u1")},
	}
	manager := newTestManager(t, backend, api)
	manager.Restore(ctx)
	_ = manager.Login(ctx, "asha@example.com", "secret")

	manager.HandleUnauthorized(ctx)
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseExpired || state.Token != "" {
		t.Fatalf("unexpected state %+v", state)
	}
	if _, ok, _ := backend.Load(ctx, store.NewKeys("test").Session()); ok {
		t.Fatal("expected session document cleared on expiry")
	}

	manager.AcknowledgeExpired()
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseAnonymous {
		t.Fatalf("expected anonymous after acknowledgement, got %s", state.Phase)
	}
}

func TestAcknowledgeExpiredElsewhereIsNoOp(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t, store.NewMemory(), &fakeAuthenticator{})
	manager.Restore(context.Background())

	manager.AcknowledgeExpired()
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseAnonymous {
		t.Fatalf("unexpected phase %s", state.Phase)
	}
}

func TestStaleRefreshResultDiscardedAfterLogout(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	api := &fakeAuthenticator{
		loginCreds:   apiclient.Credentials{Token: "tok-1", User: profile("u1")},
		refreshCreds: apiclient.Credentials{Token: "late-token", User: profile("u1")},
	}
	manager := newTestManager(t, store.NewMemory(), api)
	manager.Restore(ctx)
	_ = manager.Login(ctx, "asha@example.com", "secret")

	// Logout lands while the refresh request is in flight; the late result
	// must not resurrect the session.
	api.onRefresh = func() { manager.Logout(ctx) }
	if err := manager.Refresh(ctx); err != nil {
		t.Fatalf("Refresh() error: %v", err)
	}
	if state := manager.Snapshot(); state.Phase != enums.SessionPhaseAnonymous || state.Token != "" {
		t.Fatalf("stale refresh applied, state %+v", state)
	}
}

func TestRefreshWithoutSessionIsUnauthorized(t *testing.T) {
	t.Parallel()
	manager := newTestManager(t, store.NewMemory(), &fakeAuthenticator{})
	manager.Restore(context.Background())

	err := manager.Refresh(context.Background())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
}
