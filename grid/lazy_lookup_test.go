package grid

import (
	"testing"

	"github.com/feltech/felt"
)

func TestLazyLookupActivation(t *testing.T) {
	g, err := NewLazyLookup(felt.VecDi{4, 4}, felt.VecDi{0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := g.Track(felt.VecDi{1, 1}, 0); err != felt.ErrInactiveGrid {
		t.Fatalf("expected ErrInactiveGrid before activation, got %v", err)
	}
	if err := g.Activate(); err != nil {
		t.Fatal(err)
	}
	if ok, err := g.Track(felt.VecDi{1, 1}, 0); err != nil || !ok {
		t.Fatalf("track: %v, %v", ok, err)
	}
	if !g.AnyTracked() {
		t.Fatal("expected AnyTracked true")
	}
	if err := g.Untrack(felt.VecDi{1, 1}, 0); err != nil {
		t.Fatal(err)
	}
	if g.AnyTracked() {
		t.Fatal("expected AnyTracked false after untrack")
	}
	g.Deactivate()
	if err := g.Untrack(felt.VecDi{1, 1}, 0); err != nil {
		t.Fatalf("untrack on inactive grid must be a no-op, not error: %v", err)
	}
}
