package serialcmd

import (
	"strings"
	"testing"
)

func collect(ch chan string) []string {
	var out []string
	for {
		select {
		case w := <-ch:
			out = append(out, w)
		default:
			return out
		}
	}
}

func TestRunForwardsWords(t *testing.T) {
	in := strings.NewReader("pulse\ntoggle\nreconnect\n")
	ch := make(chan string, 8)

	if err := Run(in, ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := collect(ch)
	want := []string{"pulse", "toggle", "reconnect"}
	if len(got) != len(want) {
		t.Fatalf("expected %d words, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRunTrimsAndSkips(t *testing.T) {
	in := strings.NewReader("  assert  \r\n\n# a comment\n\t\ndeassert\n")
	ch := make(chan string, 8)

	if err := Run(in, ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := collect(ch)
	want := []string{"assert", "deassert"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("word %d: expected %q, got %q", i, want[i], got[i])
		}
	}
}

func TestRunDropsWhenChannelFull(t *testing.T) {
	in := strings.NewReader("a\nb\nc\n")
	ch := make(chan string, 1)

	if err := Run(in, ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := collect(ch)
	if len(got) != 1 || got[0] != "a" {
		t.Errorf("expected only %q to be kept, got %v", "a", got)
	}
}

func TestRunNoTrailingNewline(t *testing.T) {
	in := strings.NewReader("pulse")
	ch := make(chan string, 8)

	if err := Run(in, ch); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got := collect(ch)
	if len(got) != 1 || got[0] != "pulse" {
		t.Errorf("expected final unterminated line to be delivered, got %v", got)
	}
}
