package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptotracker/tracker/internal/agent"
	"github.com/cryptotracker/tracker/internal/agent/api"
	"github.com/cryptotracker/tracker/internal/agent/session"
	"github.com/cryptotracker/tracker/internal/agent/storage"
)

const testToken = "tok-1"

// fakeServer answers the tracker API for a single account.
type fakeServer struct {
	mu          sync.Mutex
	profile     session.Profile
	loggedIn    bool
	rateLimited bool
	requests    []string
}

func newFakeServer(t *testing.T) (*fakeServer, *httptest.Server) {
	t.Helper()
	f := &fakeServer{profile: session.Profile{
		Favorites: []string{},
		Settings:  session.Settings{Language: "ua", Theme: "dark", Currency: "uah"},
	}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeServer) seen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func (f *fakeServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.rateLimited {
		writeError(w, http.StatusTooManyRequests, "too many requests, try again later")
		return
	}

	authorized := f.loggedIn && r.Header.Get("Authorization") == "Bearer "+testToken

	switch r.Method + " " + r.URL.Path {
	case "POST /api/auth/register", "POST /api/auth/login":
		var creds struct{ Email, Password string }
		_ = json.NewDecoder(r.Body).Decode(&creds)
		if creds.Password == "wrong" {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		f.loggedIn = true
		f.profile.Email = creds.Email
		writeJSON(w, http.StatusOK, api.AuthResponse{Token: testToken, User: f.profile})
	case "POST /api/auth/logout":
		f.loggedIn = false
		w.WriteHeader(http.StatusNoContent)
	case "GET /api/user/me":
		if !authorized {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		writeJSON(w, http.StatusOK, f.profile)
	case "PUT /api/user/settings":
		_ = json.NewDecoder(r.Body).Decode(&f.profile.Settings)
		writeJSON(w, http.StatusOK, f.profile)
	case "PUT /api/user/favorites":
		var body struct{ Favorites []string }
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.profile.Favorites = body.Favorites
		writeJSON(w, http.StatusOK, f.profile)
	case "GET /api/market/coins":
		writeJSON(w, http.StatusOK, []api.Coin{
			{ID: "bitcoin", Symbol: "BTC", CurrentPrice: 1234.5, Change24h: 1.5, MarketCap: 1e9},
			{ID: "solana", Symbol: "SOL", CurrentPrice: 99, Change24h: -2, MarketCap: 1e8},
		})
		f.requests[len(f.requests)-1] += "?currency=" + r.URL.Query().Get("currency")
	case "GET /api/market/coins/bitcoin/chart":
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"time":"2024-01-01T00:00:00Z","price":100},{"time":"2024-01-02T00:00:00Z","price":110.5}]`)
	case "GET /api/market/coins/bitcoin":
		writeJSON(w, http.StatusOK, api.CoinDetails{
			ID:          "bitcoin",
			Name:        "Bitcoin",
			Symbol:      "btc",
			GenesisDate: "2009-01-03",
			Description: map[string]string{"en": "Digital gold.", "uk": "Цифрове золото."},
			Links:       api.CoinLinks{Homepage: []string{"https://bitcoin.org"}},
		})
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

type runner struct {
	t         *testing.T
	serverURL string
	statePath string
}

func newRunner(t *testing.T, serverURL string) *runner {
	return &runner{t: t, serverURL: serverURL, statePath: filepath.Join(t.TempDir(), "state.json")}
}

func (r *runner) run(args ...string) (string, error) {
	r.t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd("test", "today", zerolog.Nop())
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", r.serverURL, "--state", r.statePath}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (r *runner) mustRun(args ...string) string {
	r.t.Helper()
	out, err := r.run(args...)
	require.NoError(r.t, err, out)
	return out
}

func (r *runner) state() *storage.Store {
	r.t.Helper()
	st, err := storage.Open(r.statePath)
	require.NoError(r.t, err)
	return st
}

func TestRegister_SignsInAndStoresToken(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	out := r.mustRun("register", "--email", "alice@test.com", "--password", "secret123")
	assert.Contains(t, out, "registered and signed in as alice@test.com")

	tok, _ := r.state().Get(storage.KeyAuthToken)
	assert.Equal(t, testToken, tok)

	out = r.mustRun("status")
	assert.Contains(t, out, "authenticated")
	assert.Contains(t, out, "alice@test.com")
}

func TestRegister_PasswordFlagDescribesServerLimit(t *testing.T) {
	cmd := NewRegisterCmd(&App{})
	usage := cmd.Flags().Lookup("password").Usage
	assert.Equal(t, "account password (at most 72 bytes)", usage)

	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	out := r.mustRun("register", "--email", "bob@test.com", "--password", "abc")
	assert.Contains(t, out, "registered and signed in as bob@test.com")
}

func TestSettings_AnonymousStaysLocal(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	out := r.mustRun("settings", "--currency", "usd", "--language", "en")
	assert.Equal(t, "language=en theme=dark currency=usd\n", out)
	assert.Empty(t, f.seen())

	out = r.mustRun("settings")
	assert.Equal(t, "language=en theme=dark currency=usd\n", out, "persisted across runs")
}

func TestSettings_RejectsUnknownValue(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	_, err := r.run("settings", "--currency", "eur")
	assert.ErrorIs(t, err, agent.ErrInvalidValue)
}

func TestSettings_SignedInPushesToServer(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	r.mustRun("login", "--email", "alice@test.com", "--password", "secret123")

	r.mustRun("settings", "--theme", "light")

	assert.Contains(t, f.seen(), "PUT /api/user/settings")
	f.mu.Lock()
	defer f.mu.Unlock()
	assert.Equal(t, session.Settings{Language: "ua", Theme: "light", Currency: "uah"}, f.profile.Settings)
}

func TestLogin_ServerPreferencesWin(t *testing.T) {
	f, srv := newFakeServer(t)
	f.profile.Settings = session.Settings{Language: "en", Theme: "light", Currency: "usd"}
	f.profile.Favorites = []string{"solana"}
	r := newRunner(t, srv.URL)
	r.mustRun("settings", "--currency", "uah")
	r.mustRun("favorites", "toggle", "dogecoin")

	r.mustRun("login", "--email", "alice@test.com", "--password", "secret123")

	assert.Equal(t, "language=en theme=light currency=usd\n", r.mustRun("settings"))
	assert.Equal(t, "solana\n", r.mustRun("favorites", "list"))
}

func TestLogin_BadCredentials(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	_, err := r.run("login", "--email", "alice@test.com", "--password", "wrong")

	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.Equal(t, "invalid credentials", Describe(err))
}

func TestFavorites_ToggleSyncsWholeList(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	r.mustRun("register", "--email", "alice@test.com", "--password", "secret123")

	assert.Equal(t, "bitcoin added to favorites\n", r.mustRun("favorites", "toggle", "bitcoin"))
	r.mustRun("favorites", "toggle", "solana")
	assert.Equal(t, "bitcoin removed from favorites\n", r.mustRun("favorites", "toggle", "bitcoin"))

	f.mu.Lock()
	assert.Equal(t, []string{"solana"}, f.profile.Favorites)
	f.mu.Unlock()
	assert.Equal(t, "solana\n", r.mustRun("favorites", "list"))
}

func TestLogout_ResetsAndRevokes(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	r.mustRun("register", "--email", "alice@test.com", "--password", "secret123")
	r.mustRun("settings", "--currency", "usd")

	assert.Equal(t, "signed out\n", r.mustRun("logout"))

	assert.Contains(t, f.seen(), "POST /api/auth/logout")
	_, ok := r.state().Get(storage.KeyAuthToken)
	assert.False(t, ok)
	assert.Equal(t, "language=ua theme=dark currency=uah\n", r.mustRun("settings"))
}

func TestStoredTokenRejected_ContinuesSignedOut(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	st := r.state()
	st.Set(storage.KeyAuthToken, "stale")
	require.NoError(t, st.Save())

	out := r.mustRun("status")

	assert.Contains(t, out, "anonymous")
	_, ok := r.state().Get(storage.KeyAuthToken)
	assert.False(t, ok)
}

func TestCoins_UsesDisplayCurrencyAndMarksFavorites(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)
	r.mustRun("settings", "--currency", "usd")
	r.mustRun("favorites", "toggle", "solana")

	out := r.mustRun("coins")

	assert.Contains(t, f.seen(), "GET /api/market/coins?currency=usd")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "bitcoin")
	assert.Contains(t, lines[1], "1234.50 USD")
	assert.False(t, strings.HasPrefix(lines[1], "*"))
	assert.True(t, strings.HasPrefix(lines[2], "*"))
	assert.Contains(t, lines[2], "-2.00%")
}

func TestCoins_RateLimited(t *testing.T) {
	f, srv := newFakeServer(t)
	f.rateLimited = true
	r := newRunner(t, srv.URL)

	_, err := r.run("coins")

	require.Error(t, err)
	assert.Equal(t, "too many requests, try again later", Describe(err))
}

func TestChart(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	out := r.mustRun("chart", "bitcoin", "--days", "2")

	assert.Contains(t, out, "2024-01-01")
	assert.Contains(t, out, "110.50 UAH")
}

func TestDetails_DescriptionFollowsLanguage(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	out := r.mustRun("details", "bitcoin")
	assert.Contains(t, out, "Bitcoin (BTC)")
	assert.Contains(t, out, "homepage: https://bitcoin.org")
	assert.Contains(t, out, "Цифрове золото.")

	r.mustRun("settings", "--language", "en")
	assert.Contains(t, r.mustRun("details", "bitcoin"), "Digital gold.")
}

func TestShow_LoadsDetailsAndChart(t *testing.T) {
	f, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	out := r.mustRun("show", "bitcoin", "--days", "2")

	assert.Contains(t, out, "Bitcoin (BTC)")
	assert.Contains(t, out, "Цифрове золото.")
	assert.Contains(t, out, "2024-01-02")
	assert.Contains(t, out, "110.50 UAH")
	assert.Contains(t, f.seen(), "GET /api/market/coins/bitcoin")
	assert.Contains(t, f.seen(), "GET /api/market/coins/bitcoin/chart")
}

func TestShow_UnknownCoin(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	_, err := r.run("show", "dogecoin")

	require.Error(t, err)
	assert.Equal(t, "not found", Describe(err))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", &api.Error{StatusCode: http.StatusTooManyRequests, Message: "slow down"}, "too many requests, try again later"},
		{"server message", &api.Error{StatusCode: http.StatusBadRequest, Message: "email already registered"}, "email already registered"},
		{"not signed in", agent.ErrNotSignedIn, "not signed in, run `tracker login` first"},
		{"other", errors.New("connection refused"), "connection refused"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestVersion(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	assert.Equal(t, "version=test\nbuild_date=today\n", r.mustRun("version"))
}

func TestMe_RequiresSignIn(t *testing.T) {
	_, srv := newFakeServer(t)
	r := newRunner(t, srv.URL)

	_, err := r.run("me")
	assert.ErrorIs(t, err, agent.ErrNotSignedIn)

	r.mustRun("register", "--email", "alice@test.com", "--password", "secret123")
	out := r.mustRun("me")
	assert.Contains(t, out, "alice@test.com")
	assert.Contains(t, out, "favorites:  -")
}
