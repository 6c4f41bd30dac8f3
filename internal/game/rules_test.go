package game

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/tristano-game/tristano-server-go/internal/card"
)

func cardOf(rank card.Rank) card.Card {
	return card.Card{
		Color: card.ColorRed,
		Rank:  rank,
		Suit:  card.SuitHearts,
		Image: card.ImagePath(rank, card.SuitHearts),
	}
}

func TestShuffle_IsPermutation(t *testing.T) {
	deck := card.NewDeck(card.ColorRed)
	rng := rand.New(rand.NewSource(42))

	shuffled := Shuffle(deck, rng)
	if len(shuffled) != len(deck) {
		t.Fatalf("expected %d cards after shuffle, got %d", len(deck), len(shuffled))
	}

	key := func(c card.Card) string { return string(c.Suit) + "/" + c.Rank.String() }
	want := make([]string, len(deck))
	got := make([]string, len(shuffled))
	for i := range deck {
		want[i] = key(deck[i])
		got[i] = key(shuffled[i])
	}
	sort.Strings(want)
	sort.Strings(got)
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("shuffle is not a permutation: %s vs %s", want[i], got[i])
		}
	}
}

func TestShuffle_SeededReproducible(t *testing.T) {
	deck := card.NewDeck(card.ColorBlack)

	a := Shuffle(deck, rand.New(rand.NewSource(7)))
	b := Shuffle(deck, rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orders at index %d", i)
		}
	}
}

func TestShuffle_InputUntouched(t *testing.T) {
	deck := card.NewDeck(card.ColorRed)
	original := append([]card.Card(nil), deck...)

	Shuffle(deck, rand.New(rand.NewSource(1)))
	for i := range deck {
		if deck[i] != original[i] {
			t.Fatalf("shuffle mutated its input at index %d", i)
		}
	}
}

func TestDraw_EmptyDeckIsNoOp(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.Hand = []card.Card{cardOf(card.RankSeven)}

	if c := ps.Draw(); c != nil {
		t.Errorf("expected nil card from empty deck, got %v", c)
	}
	if len(ps.Hand) != 1 || len(ps.Deck) != 0 {
		t.Errorf("empty-deck draw changed state: hand=%d deck=%d", len(ps.Hand), len(ps.Deck))
	}
}

func TestDraw_MovesTopCard(t *testing.T) {
	ps := NewPlayerState([]card.Card{cardOf(card.RankFour), cardOf(card.RankKing)})

	c := ps.Draw()
	if c == nil || c.Rank != card.RankKing {
		t.Fatalf("expected to draw the king off the top, got %v", c)
	}
	if len(ps.Deck) != 1 || len(ps.Hand) != 1 {
		t.Errorf("unexpected sizes after draw: deck=%d hand=%d", len(ps.Deck), len(ps.Hand))
	}
}

func TestPlayToField(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.Hand = []card.Card{cardOf(card.RankNine), cardOf(card.RankFive)}

	if err := ps.PlayToField(5, 0); err == nil {
		t.Error("expected error for out-of-bounds hand index")
	}
	if err := ps.PlayToField(0, 3); err == nil {
		t.Error("expected error for out-of-bounds zone index")
	}

	if err := ps.PlayToField(0, 1); err != nil {
		t.Fatalf("play failed: %v", err)
	}
	if ps.Zones[1] == nil || ps.Zones[1].Rank != card.RankNine {
		t.Errorf("expected nine in zone 1, got %v", ps.Zones[1])
	}
	if len(ps.Hand) != 1 {
		t.Errorf("expected 1 card left in hand, got %d", len(ps.Hand))
	}

	if err := ps.PlayToField(0, 1); err == nil {
		t.Error("expected error for occupied zone")
	}
}

func TestResolveCombat_HigherDestroysLower(t *testing.T) {
	attacker := NewPlayerState(nil)
	defender := NewPlayerState(nil)
	ten := cardOf(card.RankTen)
	seven := cardOf(card.RankSeven)
	attacker.Zones[0] = &ten
	defender.Zones[2] = &seven

	if err := ResolveCombat(attacker, defender, 0, 2); err != nil {
		t.Fatalf("combat failed: %v", err)
	}
	if attacker.Zones[0] == nil {
		t.Error("winning card must stay on the field")
	}
	if defender.Zones[2] != nil {
		t.Error("losing card must leave its zone")
	}
	if len(defender.Graveyard) != 1 || defender.Graveyard[0].Rank != card.RankSeven {
		t.Errorf("losing card must land in its owner's graveyard, got %v", defender.Graveyard)
	}
	if len(attacker.Graveyard) != 0 {
		t.Errorf("attacker graveyard must stay empty, got %v", attacker.Graveyard)
	}
}

func TestResolveCombat_EqualDestroysBoth(t *testing.T) {
	attacker := NewPlayerState(nil)
	defender := NewPlayerState(nil)
	k1 := cardOf(card.RankKing)
	k2 := cardOf(card.RankKing)
	attacker.Zones[1] = &k1
	defender.Zones[1] = &k2

	if err := ResolveCombat(attacker, defender, 1, 1); err != nil {
		t.Fatalf("combat failed: %v", err)
	}
	if attacker.Zones[1] != nil || defender.Zones[1] != nil {
		t.Error("both zones must be cleared on a tie")
	}
	if len(attacker.Graveyard) != 1 || len(defender.Graveyard) != 1 {
		t.Errorf("each card must land in its own graveyard: %d/%d",
			len(attacker.Graveyard), len(defender.Graveyard))
	}
}

func TestResolveCombat_JokerOutranksAce(t *testing.T) {
	attacker := NewPlayerState(nil)
	defender := NewPlayerState(nil)
	joker := cardOf(card.RankJoker)
	ace := cardOf(card.RankAce)
	attacker.Zones[0] = &joker
	defender.Zones[0] = &ace

	if err := ResolveCombat(attacker, defender, 0, 0); err != nil {
		t.Fatalf("combat failed: %v", err)
	}
	if attacker.Zones[0] == nil {
		t.Error("joker must survive combat against an ace")
	}
	if defender.Zones[0] != nil {
		t.Error("ace must be destroyed by a joker")
	}
}

func TestResolveCombat_EmptyZoneFails(t *testing.T) {
	attacker := NewPlayerState(nil)
	defender := NewPlayerState(nil)
	seven := cardOf(card.RankSeven)
	attacker.Zones[0] = &seven

	if err := ResolveCombat(attacker, defender, 0, 0); err == nil {
		t.Error("expected error attacking an empty zone")
	}
	if err := ResolveCombat(attacker, defender, 1, 0); err == nil {
		t.Error("expected error attacking from an empty zone")
	}
}

func TestAttackShield(t *testing.T) {
	ps := NewPlayerState(nil)

	if err := ps.AttackShield(5); err == nil {
		t.Error("expected error for out-of-bounds shield index")
	}
	if err := ps.AttackShield(2); err != nil {
		t.Fatalf("attack failed: %v", err)
	}
	if ps.Shields[2] {
		t.Error("shield 2 must be broken")
	}
	if err := ps.AttackShield(2); err == nil {
		t.Error("expected error attacking a broken shield")
	}
	if ps.IntactShields() != 4 {
		t.Errorf("expected 4 intact shields, got %d", ps.IntactShields())
	}
}

func TestRegenerateShield(t *testing.T) {
	ps := NewPlayerState(nil)
	ps.Hand = []card.Card{cardOf(card.RankAce), cardOf(card.RankSeven)}
	ps.Shields[1] = false

	if err := ps.RegenerateShield(); err != nil {
		t.Fatalf("regenerate failed: %v", err)
	}
	if len(ps.Hand) != 1 || ps.Hand[0].Rank != card.RankSeven {
		t.Errorf("expected only the seven left in hand, got %v", ps.Hand)
	}
	if len(ps.Graveyard) != 1 || !ps.Graveyard[0].IsAce() {
		t.Errorf("expected the ace in the graveyard, got %v", ps.Graveyard)
	}
	if ps.IntactShields() != NumShields {
		t.Errorf("expected all shields intact, got %d", ps.IntactShields())
	}

	// No ace left: state must be untouched.
	ps.Shields[0] = false
	handBefore := len(ps.Hand)
	graveBefore := len(ps.Graveyard)
	if err := ps.RegenerateShield(); err == nil {
		t.Error("expected error with no ace in hand")
	}
	if len(ps.Hand) != handBefore || len(ps.Graveyard) != graveBefore || ps.Shields[0] {
		t.Error("failed regenerate must leave state unchanged")
	}

	// Ace but nothing broken.
	ps.Shields[0] = true
	ps.Hand = append(ps.Hand, cardOf(card.RankAce))
	if err := ps.RegenerateShield(); err == nil {
		t.Error("expected error with no broken shield")
	}
	if len(ps.Hand) != 2 {
		t.Error("ace must stay in hand when nothing is broken")
	}
}
