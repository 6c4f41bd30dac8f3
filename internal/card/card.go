package card

import (
	"encoding/json"
	"fmt"
)

// Color identifies which half of the Tristano deck a card belongs to.
// Each player owns one color for the whole match.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
)

// Rank represents a card rank. The declaration order is the single total
// order used for all combat comparisons, low to high.
type Rank int

const (
	RankFour Rank = iota
	RankFive
	RankSix
	RankSeven
	RankEight
	RankNine
	RankTen
	RankJack
	RankQueen
	RankKing
	RankAce
	RankJoker
)

var rankNames = map[Rank]string{
	RankFour:  "4",
	RankFive:  "5",
	RankSix:   "6",
	RankSeven: "7",
	RankEight: "8",
	RankNine:  "9",
	RankTen:   "10",
	RankJack:  "jack",
	RankQueen: "queen",
	RankKing:  "king",
	RankAce:   "ace",
	RankJoker: "joker",
}

var ranksByName = func() map[string]Rank {
	m := make(map[string]Rank, len(rankNames))
	for r, name := range rankNames {
		m[name] = r
	}
	return m
}()

func (r Rank) String() string {
	if name, ok := rankNames[r]; ok {
		return name
	}
	return fmt.Sprintf("RANK_%d", int(r))
}

// Beats reports whether r wins combat against other. Equal ranks beat
// neither side; combat resolution destroys both.
func (r Rank) Beats(other Rank) bool {
	return r > other
}

// MarshalJSON encodes the rank by name so snapshots stay readable on the wire.
func (r Rank) MarshalJSON() ([]byte, error) {
	name, ok := rankNames[r]
	if !ok {
		return nil, fmt.Errorf("unknown rank %d", int(r))
	}
	return json.Marshal(name)
}

func (r *Rank) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	rank, ok := ranksByName[name]
	if !ok {
		return fmt.Errorf("unknown rank %q", name)
	}
	*r = rank
	return nil
}

// Suit identifies the printed suit of a card.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitSpades   Suit = "spades"
	SuitClubs    Suit = "clubs"
	SuitJoker    Suit = "joker"
)

// SuitsFor returns the two suits printed on a color's cards.
func SuitsFor(color Color) [2]Suit {
	if color == ColorRed {
		return [2]Suit{SuitHearts, SuitDiamonds}
	}
	return [2]Suit{SuitSpades, SuitClubs}
}

// Card is an immutable playing card. The Image field carries the asset
// reference the presentation layer renders; the engine never reads it.
type Card struct {
	Color Color  `json:"color"`
	Rank  Rank   `json:"rank"`
	Suit  Suit   `json:"suit"`
	Image string `json:"image"`
}

// IsAce reports whether the card can be discarded to repair a shield.
func (c Card) IsAce() bool {
	return c.Rank == RankAce
}
