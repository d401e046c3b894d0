package utils

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var wsRe = regexp.MustCompile(`\s+`)
var nonDigitRe = regexp.MustCompile(`\D`)
var timeSlotRe = regexp.MustCompile(`^\d{2}:\d{2}$`)

// ErrInvalidTimeFormat is returned when time parsing fails
var ErrInvalidTimeFormat = errors.New("invalid time format")

// FoldAccents strips combining marks so "João" folds to "Joao".
// Brazilian names and street names are full of these.
func FoldAccents(s string) string {
	t := norm.NFD.String(s)
	b := make([]rune, 0, len(t))
	for _, r := range t {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b = append(b, r)
	}
	return norm.NFC.String(string(b))
}

func NormalizeNameLower(s string) string {
	s = strings.TrimSpace(FoldAccents(s))
	s = wsRe.ReplaceAllString(s, " ")
	return strings.ToLower(s)
}

// SearchTokens generates lowercase search tokens from multiple strings.
func SearchTokens(strs ...string) []string {
	tokens := make([]string, 0)
	seen := make(map[string]bool)
	for _, s := range strs {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		lower := NormalizeNameLower(s)
		if !seen[lower] {
			tokens = append(tokens, lower)
			seen[lower] = true
		}
		for _, word := range strings.Fields(lower) {
			if !seen[word] && len(word) >= 2 {
				tokens = append(tokens, word)
				seen[word] = true
			}
		}
	}
	return tokens
}

// Digits strips everything but 0-9. Used for CEP, CNPJ and phone input.
func Digits(s string) string {
	return nonDigitRe.ReplaceAllString(s, "")
}

// IsTimeSlot reports whether s looks like an "HH:MM" slot label.
// Slots are compared as strings everywhere else; this only gates input.
func IsTimeSlot(s string) bool {
	return timeSlotRe.MatchString(s)
}

// StartOfDay / EndOfDay bound a visit date for slot conflict queries.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func EndOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// ParseTime parses a time string in RFC3339 or other common formats.
func ParseTime(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, ErrInvalidTimeFormat
}

// TrimMax trims a string to a maximum length.
func TrimMax(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max]
}
