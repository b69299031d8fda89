// Package i18n resolves display strings by key plus interpolation values.
// The engine and bus stay language-agnostic; only the side-effect consumers
// talk to this package.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var supported = []language.Tag{
	language.English, // default
	language.German,
}

var matcher = language.NewMatcher(supported)

func init() {
	for tag, cat := range catalogs {
		for key, msg := range cat {
			message.SetString(tag, key, msg)
		}
	}
}

// Localizer looks up keyed message templates for one matched language.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// New matches the preferred language strings (BCP 47) against the supported
// catalog languages and returns a localizer for the best fit. With no usable
// preference it falls back to English.
func New(preferred ...string) *Localizer {
	tags := make([]language.Tag, 0, len(preferred))
	for _, p := range preferred {
		if tag, err := language.Parse(p); err == nil {
			tags = append(tags, tag)
		}
	}
	_, idx, _ := matcher.Match(tags...)
	tag := supported[idx]
	return &Localizer{tag: tag, printer: message.NewPrinter(tag)}
}

// Tag returns the matched language.
func (l *Localizer) Tag() language.Tag { return l.tag }

// T renders the message registered under key with the given values. Unknown
// keys render as the key itself so a missing translation stays visible
// instead of silently vanishing.
func (l *Localizer) T(key string, args ...any) string {
	if _, ok := catalogs[l.tag][key]; !ok {
		if _, ok := catalogs[language.English][key]; !ok {
			return key
		}
	}
	return l.printer.Sprintf(key, args...)
}

// catalogs holds the per-language message strings, registered with
// x/text/message at init. The key doubles as the message id.
var catalogs = map[language.Tag]map[string]string{
	language.English: {
		"notify.joined":          "%s joined the game",
		"notify.left":            "%s left the game",
		"notify.removed":         "You were removed from the game",
		"notify.game_started":    "The game has started",
		"notify.game_ended":      "The game is over, %s wins",
		"notify.game_ended_draw": "The game is over",
		"notify.token_received":  "%s received a token",
		"notify.scored":          "%s guessed correctly and takes the hit",
		"notify.scored_nobody":   "Nobody got the hit",
		"notify.guessed":         "%s placed a guess",
		"notify.guess_passed":    "%s passed",
		"notify.skipped":         "%s skipped %s by %s",
		"notify.claimed":         "%s paid a token to claim the hit",
		"notify.hit_revealed":    "That was %s by %s, released %d",
		"notify.connection_lost": "Connection lost, trying to reconnect",
		"speech.joined":          "%s joined",
		"speech.left":            "%s left",
		"speech.removed":         "You were removed",
		"speech.hit_revealed":    "%s, %s, %d",
	},
	language.German: {
		"notify.joined":          "%s ist dem Spiel beigetreten",
		"notify.left":            "%s hat das Spiel verlassen",
		"notify.removed":         "Du wurdest aus dem Spiel entfernt",
		"notify.game_started":    "Das Spiel hat begonnen",
		"notify.game_ended":      "Das Spiel ist vorbei, %s gewinnt",
		"notify.game_ended_draw": "Das Spiel ist vorbei",
		"notify.token_received":  "%s hat einen Token erhalten",
		"notify.scored":          "%s hat richtig geraten und bekommt den Hit",
		"notify.scored_nobody":   "Niemand hat den Hit bekommen",
		"notify.guessed":         "%s hat geraten",
		"notify.guess_passed":    "%s hat gepasst",
		"notify.skipped":         "%s hat %s von %s übersprungen",
		"notify.claimed":         "%s hat einen Token für den Hit bezahlt",
		"notify.hit_revealed":    "Das war %s von %s aus dem Jahr %d",
		"notify.connection_lost": "Verbindung verloren, versuche erneut zu verbinden",
		"speech.joined":          "%s ist da",
		"speech.left":            "%s ist weg",
		"speech.removed":         "Du wurdest entfernt",
		"speech.hit_revealed":    "%s, %s, %d",
	},
}
