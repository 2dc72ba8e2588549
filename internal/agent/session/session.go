// Package session models the client's login lifecycle as a pure state
// machine. Every transition returns the next Session together with the
// effects the caller must run; nothing here touches disk or network.
package session

import "slices"

type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
	LoggedOut
)

func (s Status) String() string {
	switch s {
	case Anonymous:
		return "anonymous"
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case LoggedOut:
		return "logged out"
	default:
		return "unknown"
	}
}

// Display values understood by the dashboard.
const (
	LanguageUA  = "ua"
	LanguageEN  = "en"
	ThemeDark   = "dark"
	ThemeLight  = "light"
	CurrencyUAH = "uah"
	CurrencyUSD = "usd"
)

func ValidLanguage(v string) bool { return v == LanguageUA || v == LanguageEN }
func ValidTheme(v string) bool { return v == ThemeDark || v == ThemeLight }
func ValidCurrency(v string) bool { return v == CurrencyUAH || v == CurrencyUSD }

// Settings mirrors the server's settings record.
type Settings struct {
	Language string `json:"language"`
	Theme    string `json:"theme"`
	Currency string `json:"currency"`
}

// Profile is the public projection of the signed-in user.
type Profile struct {
	Email     string   `json:"email"`
	Favorites []string `json:"favorites"`
	Settings  Settings `json:"settings"`
}

// Preferences is the locally cached display state.
type Preferences struct {
	Language  string
	Theme     string
	Currency  string
	Favorites []string
}

func DefaultPreferences() Preferences {
	return Preferences{
		Language:  LanguageUA,
		Theme:     ThemeDark,
		Currency:  CurrencyUAH,
		Favorites: []string{},
	}
}

func (p Preferences) Settings() Settings {
	return Settings{Language: p.Language, Theme: p.Theme, Currency: p.Currency}
}

func (p Preferences) IsFavorite(coinID string) bool {
	return slices.Contains(p.Favorites, coinID)
}

func (p Preferences) clone() Preferences {
	p.Favorites = slices.Clone(p.Favorites)
	if p.Favorites == nil {
		p.Favorites = []string{}
	}
	return p
}

type EffectKind int

const (
	// Persist writes preferences and token to local storage.
	Persist EffectKind = iota + 1
	// PushSettings sends the full settings triple to the server.
	PushSettings
	// PushFavorites sends the full favorites array to the server.
	PushFavorites
	// FetchProfile loads the profile for Token.
	FetchProfile
	// RevokeToken asks the server to revoke Token.
	RevokeToken
)

func (k EffectKind) String() string {
	switch k {
	case Persist:
		return "persist"
	case PushSettings:
		return "push settings"
	case PushFavorites:
		return "push favorites"
	case FetchProfile:
		return "fetch profile"
	case RevokeToken:
		return "revoke token"
	default:
		return "unknown"
	}
}

// Effect carries a snapshot of the data it needs, so running it later never
// observes a newer state.
type Effect struct {
	Kind      EffectKind
	Token     string
	Settings  Settings
	Favorites []string
}

type Session struct {
	Status  Status
	Token   string
	Profile *Profile
	Prefs   Preferences
}

// Boot builds the initial session from local storage. A stored token is not
// trusted until its profile loads.
func Boot(prefs Preferences, token string) (Session, []Effect) {
	s := Session{Status: Anonymous, Prefs: prefs.clone()}
	if token == "" {
		return s, nil
	}
	s.Status = Authenticating
	s.Token = token
	return s, []Effect{{Kind: FetchProfile, Token: token}}
}

// ProfileLoaded completes Authenticating. Server values win over local ones.
// A result for a token that is no longer current is ignored.
func (s Session) ProfileLoaded(token string, p Profile) (Session, []Effect) {
	if s.Status != Authenticating || s.Token != token {
		return s, nil
	}
	return s.signIn(token, p)
}

// ProfileFailed drops a token whose profile could not be loaded.
func (s Session) ProfileFailed(token string) (Session, []Effect) {
	if s.Status != Authenticating || s.Token != token {
		return s, nil
	}
	s.Status = Anonymous
	s.Token = ""
	s.Profile = nil
	return s, []Effect{s.persist()}
}

// SignedIn applies a successful login or registration from any state.
func (s Session) SignedIn(token string, p Profile) (Session, []Effect) {
	return s.signIn(token, p)
}

// SignedOut clears credentials and resets preferences to defaults.
func (s Session) SignedOut() (Session, []Effect) {
	var effects []Effect
	if s.Token != "" {
		effects = append(effects, Effect{Kind: RevokeToken, Token: s.Token})
	}
	next := Session{Status: LoggedOut, Prefs: DefaultPreferences()}
	return next, append(effects, next.persist())
}

func (s Session) WithLanguage(v string) (Session, []Effect) {
	s.Prefs = s.Prefs.clone()
	s.Prefs.Language = v
	return s, s.settingsChanged()
}

func (s Session) WithTheme(v string) (Session, []Effect) {
	s.Prefs = s.Prefs.clone()
	s.Prefs.Theme = v
	return s, s.settingsChanged()
}

func (s Session) WithCurrency(v string) (Session, []Effect) {
	s.Prefs = s.Prefs.clone()
	s.Prefs.Currency = v
	return s, s.settingsChanged()
}

// ToggleFavorite adds coinID to favorites or removes it when present.
func (s Session) ToggleFavorite(coinID string) (Session, []Effect) {
	s.Prefs = s.Prefs.clone()
	if i := slices.Index(s.Prefs.Favorites, coinID); i >= 0 {
		s.Prefs.Favorites = slices.Delete(s.Prefs.Favorites, i, i+1)
	} else {
		s.Prefs.Favorites = append(s.Prefs.Favorites, coinID)
	}

	effects := []Effect{s.persist()}
	if s.Status == Authenticated {
		effects = append(effects, Effect{
			Kind:      PushFavorites,
			Token:     s.Token,
			Favorites: slices.Clone(s.Prefs.Favorites),
		})
	}
	return s, effects
}

func (s Session) signIn(token string, p Profile) (Session, []Effect) {
	prefs := s.Prefs.clone()
	if p.Settings.Language != "" {
		prefs.Language = p.Settings.Language
	}
	if p.Settings.Theme != "" {
		prefs.Theme = p.Settings.Theme
	}
	if p.Settings.Currency != "" {
		prefs.Currency = p.Settings.Currency
	}
	if p.Favorites != nil {
		prefs.Favorites = slices.Clone(p.Favorites)
	}

	profile := p
	profile.Favorites = slices.Clone(p.Favorites)

	next := Session{Status: Authenticated, Token: token, Profile: &profile, Prefs: prefs}
	return next, []Effect{next.persist()}
}

func (s Session) settingsChanged() []Effect {
	effects := []Effect{s.persist()}
	if s.Status == Authenticated {
		effects = append(effects, Effect{Kind: PushSettings, Token: s.Token, Settings: s.Prefs.Settings()})
	}
	return effects
}

func (s Session) persist() Effect {
	return Effect{Kind: Persist, Token: s.Token, Settings: s.Prefs.Settings(), Favorites: slices.Clone(s.Prefs.Favorites)}
}
