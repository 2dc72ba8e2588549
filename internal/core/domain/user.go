package domain

import (
	"strings"
	"time"
)

// Default display preferences applied to every new account and restored on logout.
const (
	DefaultLanguage = "ua"
	DefaultTheme    = "dark"
	DefaultCurrency = "uah"
)

// Settings is the closed set of display preferences stored per user.
type Settings struct {
	Language string `json:"language" bson:"language"`
	Theme    string `json:"theme" bson:"theme"`
	Currency string `json:"currency" bson:"currency"`
}

// DefaultSettings returns the settings a freshly registered user starts with.
func DefaultSettings() Settings {
	return Settings{
		Language: DefaultLanguage,
		Theme:    DefaultTheme,
		Currency: DefaultCurrency,
	}
}

// SettingsPatch carries a partial settings update. Nil fields are left untouched.
type SettingsPatch struct {
	Language *string
	Theme    *string
	Currency *string
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.Language == nil && p.Theme == nil && p.Currency == nil
}

// Apply returns s with the supplied fields of p merged in.
func (p SettingsPatch) Apply(s Settings) Settings {
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	return s
}

// User is the single persisted document: credentials plus preferences.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Favorites    []string  `json:"favorites"`
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// PublicUser is the projection of a User that is safe to return to clients.
type PublicUser struct {
	Email     string   `json:"email"`
	Favorites []string `json:"favorites"`
	Settings  Settings `json:"settings"`
}

// Public projects the user without its identifiers or password hash.
func (u *User) Public() PublicUser {
	favorites := u.Favorites
	if favorites == nil {
		favorites = []string{}
	}
	return PublicUser{
		Email:     u.Email,
		Favorites: favorites,
		Settings:  u.Settings,
	}
}

// NormalizeEmail trims and lowercases an email so lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
