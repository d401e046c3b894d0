package utils

import (
	"testing"
	"time"
)

func TestFoldAccents(t *testing.T) {
	cases := map[string]string{
		"João":        "Joao",
		"São Paulo":   "Sao Paulo",
		"Conceição":   "Conceicao",
		"plain ascii": "plain ascii",
	}
	for in, want := range cases {
		if got := FoldAccents(in); got != want {
			t.Fatalf("FoldAccents(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeNameLower(t *testing.T) {
	if got := NormalizeNameLower("  João   da  Silva "); got != "joao da silva" {
		t.Fatalf("got %q", got)
	}
}

func TestSearchTokens(t *testing.T) {
	tokens := SearchTokens("João da Silva", "Atacante")

	want := map[string]bool{
		"joao da silva": true,
		"joao":          true,
		"da":            true,
		"silva":         true,
		"atacante":      true,
	}
	if len(tokens) != len(want) {
		t.Fatalf("tokens %v, want keys %v", tokens, want)
	}
	for _, tok := range tokens {
		if !want[tok] {
			t.Fatalf("unexpected token %q in %v", tok, tokens)
		}
	}

	if got := SearchTokens("", "  "); len(got) != 0 {
		t.Fatalf("blank input should yield no tokens: %v", got)
	}
}

func TestDigits(t *testing.T) {
	if got := Digits("01.310-100"); got != "01310100" {
		t.Fatalf("got %q", got)
	}
	if got := Digits("(11) 99999-0000"); got != "11999990000" {
		t.Fatalf("got %q", got)
	}
}

func TestIsTimeSlot(t *testing.T) {
	valid := []string{"09:00", "14:30", "23:59"}
	for _, s := range valid {
		if !IsTimeSlot(s) {
			t.Fatalf("%q should be a valid slot", s)
		}
	}

	invalid := []string{"9:00", "14:30:00", "14h30", " 14:00", "14:00 ", ""}
	for _, s := range invalid {
		if IsTimeSlot(s) {
			t.Fatalf("%q should not be a valid slot", s)
		}
	}
}

func TestDayBounds(t *testing.T) {
	ts := time.Date(2026, 3, 2, 15, 42, 7, 123, time.UTC)

	start := StartOfDay(ts)
	if start != time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) {
		t.Fatalf("start: %v", start)
	}

	end := EndOfDay(ts)
	if end.Day() != 2 || end.Hour() != 23 || end.Minute() != 59 {
		t.Fatalf("end: %v", end)
	}
	if !end.After(ts) || !start.Before(ts) {
		t.Fatalf("bounds do not bracket the input")
	}
}

func TestParseTime(t *testing.T) {
	for _, s := range []string{"2026-03-02T15:00:00Z", "2026-03-02 15:00:00", "2026-03-02"} {
		if _, err := ParseTime(s); err != nil {
			t.Fatalf("ParseTime(%q): %v", s, err)
		}
	}
	if _, err := ParseTime("yesterday"); err != ErrInvalidTimeFormat {
		t.Fatalf("want ErrInvalidTimeFormat, got %v", err)
	}
}

func TestTrimMax(t *testing.T) {
	if got := TrimMax("  hello  ", 10); got != "hello" {
		t.Fatalf("got %q", got)
	}
	if got := TrimMax("abcdefgh", 3); got != "abc" {
		t.Fatalf("got %q", got)
	}
}
