package game

import (
	"github.com/tristano-game/tristano-server-go/internal/card"
)

// NumZones is the fixed number of field slots per player.
const NumZones = 3

// NumShields is the fixed number of defense tokens per player.
const NumShields = 5

// PlayerState is one seat's side of the board. The multiset union of
// Deck, Hand, occupied Zones and Graveyard always equals the player's
// originally generated 23-card deck.
type PlayerState struct {
	Hand      []card.Card           `json:"hand"`
	Deck      []card.Card           `json:"deck"`
	Zones     [NumZones]*card.Card  `json:"zones"`
	Shields   [NumShields]bool      `json:"shields"`
	Graveyard []card.Card           `json:"graveyard"`
}

// NewPlayerState builds an empty board side with all shields intact.
func NewPlayerState(deck []card.Card) *PlayerState {
	ps := &PlayerState{
		Hand:      make([]card.Card, 0, 8),
		Deck:      deck,
		Graveyard: make([]card.Card, 0, card.DeckSize),
	}
	for i := range ps.Shields {
		ps.Shields[i] = true
	}
	return ps
}

// IntactShields counts shields not yet broken.
func (ps *PlayerState) IntactShields() int {
	n := 0
	for _, intact := range ps.Shields {
		if intact {
			n++
		}
	}
	return n
}

// OccupiedZones counts field slots holding a card.
func (ps *PlayerState) OccupiedZones() int {
	n := 0
	for _, z := range ps.Zones {
		if z != nil {
			n++
		}
	}
	return n
}

// clone deep-copies the state for snapshots.
func (ps *PlayerState) clone() *PlayerState {
	cp := &PlayerState{
		Hand:      append([]card.Card(nil), ps.Hand...),
		Deck:      append([]card.Card(nil), ps.Deck...),
		Shields:   ps.Shields,
		Graveyard: append([]card.Card(nil), ps.Graveyard...),
	}
	for i, z := range ps.Zones {
		if z != nil {
			c := *z
			cp.Zones[i] = &c
		}
	}
	return cp
}
