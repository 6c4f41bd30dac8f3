package lobby

import (
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestJoinLeave(t *testing.T) {
	d := NewDirectory(zaptest.NewLogger(t))

	d.Join("conn-1", "alice")
	d.Join("conn-2", "bob")

	if !d.Contains("conn-1") || !d.Contains("conn-2") {
		t.Fatal("joined connections missing from directory")
	}
	if got := d.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	name, ok := d.Leave("conn-1")
	if !ok || name != "alice" {
		t.Fatalf("Leave() = %q, %v; want alice, true", name, ok)
	}
	if d.Contains("conn-1") {
		t.Fatal("left connection still in directory")
	}
}

func TestLeaveUnknown(t *testing.T) {
	d := NewDirectory(zaptest.NewLogger(t))

	if _, ok := d.Leave("missing"); ok {
		t.Fatal("Leave on unknown connection reported ok")
	}
}

func TestNamesSorted(t *testing.T) {
	d := NewDirectory(zaptest.NewLogger(t))

	d.Join("conn-1", "zoe")
	d.Join("conn-2", "alice")
	d.Join("conn-3", "mira")

	names := d.Names()
	want := []string{"alice", "mira", "zoe"}
	if len(names) != len(want) {
		t.Fatalf("Names() = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names() = %v, want %v", names, want)
		}
	}
}

func TestConns(t *testing.T) {
	d := NewDirectory(zaptest.NewLogger(t))

	d.Join("conn-1", "alice")
	d.Join("conn-2", "bob")

	conns := d.Conns()
	if len(conns) != 2 {
		t.Fatalf("Conns() returned %d entries, want 2", len(conns))
	}
	seen := map[string]bool{}
	for _, c := range conns {
		seen[c] = true
	}
	if !seen["conn-1"] || !seen["conn-2"] {
		t.Fatalf("Conns() = %v, missing expected connections", conns)
	}
}
