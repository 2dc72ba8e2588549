package agent

import (
	"strconv"
	"strings"

	"github.com/cryptotracker/tracker/internal/agent/session"
)

// SystemTheme guesses the terminal background from COLORFGBG ("fg;bg" or
// "fg;default;bg", as set by rxvt, Konsole and others). It returns "" when
// there is no usable hint.
func SystemTheme(getenv func(string) string) string {
	v := getenv("COLORFGBG")
	if v == "" {
		return ""
	}
	parts := strings.Split(v, ";")
	bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1]))
	if err != nil || bg < 0 || bg > 15 {
		return ""
	}
	// ANSI 7 (light grey) and the bright colours 9-15 are light backgrounds.
	if bg == 7 || bg >= 9 {
		return session.ThemeLight
	}
	return session.ThemeDark
}
