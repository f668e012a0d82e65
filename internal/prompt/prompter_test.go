package prompt

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestAskRepeatsUntilValid(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("3\nabc\n 2 \n"), &out)

	got, err := p.Ask("Which scope?", OneOf("1", "2"))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "2" {
		t.Errorf("answer = %q, want 2", got)
	}
	if n := strings.Count(out.String(), "invalid input"); n != 2 {
		t.Errorf("expected 2 invalid notices, got %d in %q", n, out.String())
	}
}

func TestAskCancelledOnEOF(t *testing.T) {
	p := New(strings.NewReader("x\n"), &bytes.Buffer{})

	_, err := p.Ask("name?", MinLength(3))
	if !errors.Is(err, ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAskAcceptsFinalLineWithoutNewline(t *testing.T) {
	p := New(strings.NewReader("alice"), &bytes.Buffer{})

	got, err := p.Ask("name?", MinLength(3))
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if got != "alice" {
		t.Errorf("answer = %q", got)
	}
}

func TestAskSecretFallsBackToLineInput(t *testing.T) {
	p := New(strings.NewReader("hunter2\n"), &bytes.Buffer{})

	got, err := p.AskSecret("password", MinLength(4))
	if err != nil {
		t.Fatalf("AskSecret: %v", err)
	}
	if got != "hunter2" {
		t.Errorf("answer = %q", got)
	}
}

func TestValidators(t *testing.T) {
	if !OneOf("y", "n", "s")("Y") {
		t.Error("OneOf should ignore case")
	}
	if OneOf("y", "n")("yes") {
		t.Error("OneOf should not accept prefixes")
	}
	if MinLength(3)("ab") {
		t.Error("MinLength(3) accepted 2 chars")
	}
	if NonEmpty("") {
		t.Error("NonEmpty accepted empty answer")
	}
}
