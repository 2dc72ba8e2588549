// Package agent is the client state controller: it keeps the session token
// and display preferences in the local state file, reconciles them with the
// server and pushes local changes back in the background.
package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cryptotracker/tracker/internal/agent/api"
	"github.com/cryptotracker/tracker/internal/agent/session"
	"github.com/cryptotracker/tracker/internal/agent/storage"
)

var (
	ErrInvalidValue = errors.New("invalid value")
	// ErrStale is returned by a load that was superseded before it finished.
	ErrStale = errors.New("result superseded by a newer selection")
	// ErrNotSignedIn is returned by operations that need a session.
	ErrNotSignedIn = errors.New("not signed in")
)

const (
	flowChart   = "chart"
	flowDetails = "details"
)

// API is the server surface the controller depends on.
type API interface {
	PreferenceAPI
	Register(ctx context.Context, email, password string) (api.AuthResponse, error)
	Login(ctx context.Context, email, password string) (api.AuthResponse, error)
	Me(ctx context.Context, token string) (session.Profile, error)
	MarketCoins(ctx context.Context, currency string, perPage int) ([]api.Coin, error)
	MarketChart(ctx context.Context, coinID, currency string, days int) ([]api.PricePoint, error)
	CoinDetails(ctx context.Context, coinID string) (*api.CoinDetails, error)
}

type Controller struct {
	mu    sync.Mutex
	state session.Session

	store     *storage.Store
	api       API
	pusher    *Pusher
	selection *Selection
	getenv    func(string) string
	log       zerolog.Logger
}

func New(store *storage.Store, client API, log zerolog.Logger) *Controller {
	return &Controller{
		store:     store,
		api:       client,
		pusher:    NewPusher(client, log),
		selection: NewSelection(),
		getenv:    os.Getenv,
		log:       log,
	}
}

// Start restores the session from local storage before any network call,
// then resolves a stored token into a profile.
func (c *Controller) Start(ctx context.Context) error {
	c.pusher.Start(ctx)

	token, _ := c.store.Get(storage.KeyAuthToken)
	prefs := c.initialPreferences()
	return c.transition(ctx, func(session.Session) (session.Session, []session.Effect) {
		return session.Boot(prefs, token)
	})
}

// Close waits for queued pushes to reach the server.
func (c *Controller) Close() {
	c.pusher.Close()
}

// Session returns a snapshot of the current session.
func (c *Controller) Session() session.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Register(ctx context.Context, email, password string) error {
	resp, err := c.api.Register(ctx, email, password)
	if err != nil {
		return err
	}
	return c.signedIn(ctx, resp)
}

func (c *Controller) Login(ctx context.Context, email, password string) error {
	resp, err := c.api.Login(ctx, email, password)
	if err != nil {
		return err
	}
	return c.signedIn(ctx, resp)
}

// Logout clears the session locally and revokes the token in the background.
func (c *Controller) Logout(ctx context.Context) error {
	return c.transition(ctx, session.Session.SignedOut)
}

func (c *Controller) SetLanguage(ctx context.Context, v string) error {
	if !session.ValidLanguage(v) {
		return fmt.Errorf("%w: language must be ua or en", ErrInvalidValue)
	}
	return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		return s.WithLanguage(v)
	})
}

func (c *Controller) SetTheme(ctx context.Context, v string) error {
	if !session.ValidTheme(v) {
		return fmt.Errorf("%w: theme must be dark or light", ErrInvalidValue)
	}
	return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		return s.WithTheme(v)
	})
}

func (c *Controller) SetCurrency(ctx context.Context, v string) error {
	if !session.ValidCurrency(v) {
		return fmt.Errorf("%w: currency must be uah or usd", ErrInvalidValue)
	}
	return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		return s.WithCurrency(v)
	})
}

// ToggleFavorite flips coinID in favorites and reports whether it is now a
// favorite.
func (c *Controller) ToggleFavorite(ctx context.Context, coinID string) (bool, error) {
	if coinID == "" {
		return false, fmt.Errorf("%w: coin id is required", ErrInvalidValue)
	}
	var added bool
	err := c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		next, effects := s.ToggleFavorite(coinID)
		added = next.Prefs.IsFavorite(coinID)
		return next, effects
	})
	if err != nil {
		return false, err
	}
	return added, nil
}

// Profile re-reads the profile from the server without touching local state.
func (c *Controller) Profile(ctx context.Context) (session.Profile, error) {
	s := c.Session()
	if s.Status != session.Authenticated {
		return session.Profile{}, ErrNotSignedIn
	}
	return c.api.Me(ctx, s.Token)
}

// Coins lists the market overview in the display currency.
func (c *Controller) Coins(ctx context.Context, perPage int) ([]api.Coin, error) {
	return c.api.MarketCoins(ctx, c.Session().Prefs.Currency, perPage)
}

// Chart loads the price history of coinID in the display currency. The
// result is ErrStale if another chart load started meanwhile.
func (c *Controller) Chart(ctx context.Context, coinID string, days int) ([]api.PricePoint, error) {
	currency := c.Session().Prefs.Currency
	ticket := c.selection.Begin(flowChart, coinID+"|"+currency+"|"+strconv.Itoa(days))

	points, err := c.api.MarketChart(ctx, coinID, currency, days)
	if !c.selection.Current(ticket) {
		return nil, ErrStale
	}
	return points, err
}

// Details loads coin metadata for the display language. The result is
// ErrStale if another details load started meanwhile.
func (c *Controller) Details(ctx context.Context, coinID string) (*api.CoinDetails, error) {
	ticket := c.selection.Begin(flowDetails, coinID+"|"+c.Session().Prefs.Language)

	details, err := c.api.CoinDetails(ctx, coinID)
	if !c.selection.Current(ticket) {
		return nil, ErrStale
	}
	return details, err
}

// Selected is everything shown for a selected coin.
type Selected struct {
	Chart   []api.PricePoint
	Details *api.CoinDetails
}

// SelectCoin loads chart and details concurrently.
func (c *Controller) SelectCoin(ctx context.Context, coinID string, days int) (*Selected, error) {
	var out Selected
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		points, err := c.Chart(gctx, coinID, days)
		out.Chart = points
		return err
	})
	g.Go(func() error {
		details, err := c.Details(gctx, coinID)
		out.Details = details
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Controller) signedIn(ctx context.Context, resp api.AuthResponse) error {
	return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		return s.SignedIn(resp.Token, resp.User)
	})
}

// transition computes and installs the next state and runs its local
// effects in one critical section, so concurrent changes neither overwrite
// each other nor reach the state file or the push queue out of order.
// FetchProfile runs after the lock is released and feeds its outcome back as
// another transition.
func (c *Controller) transition(ctx context.Context, fn func(session.Session) (session.Session, []session.Effect)) error {
	c.mu.Lock()
	next, effects := fn(c.state)
	c.state = next

	var (
		firstErr error
		fetch    []string
	)
	for _, e := range effects {
		switch e.Kind {
		case session.Persist:
			if err := c.persist(e); err != nil && firstErr == nil {
				firstErr = err
			}
		case session.PushSettings, session.PushFavorites, session.RevokeToken:
			c.pusher.Enqueue(e)
		case session.FetchProfile:
			fetch = append(fetch, e.Token)
		}
	}
	c.mu.Unlock()

	for _, token := range fetch {
		if err := c.fetchProfile(ctx, token); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (c *Controller) fetchProfile(ctx context.Context, token string) error {
	profile, err := c.api.Me(ctx, token)
	if err != nil {
		c.log.Warn().Err(err).Msg("stored session rejected, continuing signed out")
		return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
			return s.ProfileFailed(token)
		})
	}
	return c.transition(ctx, func(s session.Session) (session.Session, []session.Effect) {
		return s.ProfileLoaded(token, profile)
	})
}

func (c *Controller) persist(e session.Effect) error {
	c.store.Set(storage.KeyLanguage, e.Settings.Language)
	c.store.Set(storage.KeyTheme, e.Settings.Theme)
	c.store.Set(storage.KeyCurrency, e.Settings.Currency)
	c.store.SetFavorites(e.Favorites)
	if e.Token == "" {
		c.store.Delete(storage.KeyAuthToken)
	} else {
		c.store.Set(storage.KeyAuthToken, e.Token)
	}
	if err := c.store.Save(); err != nil {
		c.log.Error().Err(err).Str("path", c.store.Path()).Msg("failed to persist state")
		return err
	}
	return nil
}

func (c *Controller) initialPreferences() session.Preferences {
	prefs := session.DefaultPreferences()

	if v, _ := c.store.Get(storage.KeyCurrency); session.ValidCurrency(v) {
		prefs.Currency = v
	}
	if v, _ := c.store.Get(storage.KeyLanguage); session.ValidLanguage(v) {
		prefs.Language = v
	}
	if v, _ := c.store.Get(storage.KeyTheme); session.ValidTheme(v) {
		prefs.Theme = v
	} else if sys := SystemTheme(c.getenv); sys != "" {
		prefs.Theme = sys
	}
	prefs.Favorites = c.store.Favorites()
	return prefs
}
