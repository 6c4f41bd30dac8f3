package game

import (
	"math/rand"

	"github.com/tristano-game/tristano-server-go/internal/card"
)

// Shuffle returns a uniformly random permutation of deck using the given
// source. The input slice is left untouched; this is the only place the
// core consumes randomness, so tests can pin the seed.
func Shuffle(deck []card.Card, rng *rand.Rand) []card.Card {
	shuffled := append([]card.Card(nil), deck...)
	for i := len(shuffled) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	}
	return shuffled
}

// Draw moves the top card of the deck into the hand and returns it.
// Drawing from an empty deck is a no-op, not an error.
func (ps *PlayerState) Draw() *card.Card {
	if len(ps.Deck) == 0 {
		return nil
	}
	c := ps.Deck[len(ps.Deck)-1]
	ps.Deck = ps.Deck[:len(ps.Deck)-1]
	ps.Hand = append(ps.Hand, c)
	return &c
}

// PlayToField moves a hand card into an empty field zone.
func (ps *PlayerState) PlayToField(handIndex, zoneIndex int) error {
	if handIndex < 0 || handIndex >= len(ps.Hand) {
		return Validationf("hand index %d out of bounds", handIndex)
	}
	if zoneIndex < 0 || zoneIndex >= NumZones {
		return Validationf("zone index %d out of bounds", zoneIndex)
	}
	if ps.Zones[zoneIndex] != nil {
		return Validationf("zone %d is occupied", zoneIndex)
	}

	c := ps.Hand[handIndex]
	ps.Hand = append(ps.Hand[:handIndex], ps.Hand[handIndex+1:]...)
	ps.Zones[zoneIndex] = &c
	return nil
}

// bury clears a zone and appends its card to the owner's graveyard.
func (ps *PlayerState) bury(zoneIndex int) {
	c := ps.Zones[zoneIndex]
	ps.Zones[zoneIndex] = nil
	ps.Graveyard = append(ps.Graveyard, *c)
}

// ResolveCombat compares the two cards by rank. The lower rank is
// destroyed and moves to its owner's graveyard; equal ranks destroy
// both. A joker on the field outranks everything, ace included.
func ResolveCombat(attacker, defender *PlayerState, attackerIndex, defenderIndex int) error {
	if attackerIndex < 0 || attackerIndex >= NumZones {
		return Validationf("attacker zone index %d out of bounds", attackerIndex)
	}
	if defenderIndex < 0 || defenderIndex >= NumZones {
		return Validationf("defender zone index %d out of bounds", defenderIndex)
	}

	aCard := attacker.Zones[attackerIndex]
	dCard := defender.Zones[defenderIndex]
	if aCard == nil {
		return Validationf("attacker zone %d is empty", attackerIndex)
	}
	if dCard == nil {
		return Validationf("defender zone %d is empty", defenderIndex)
	}

	switch {
	case aCard.Rank.Beats(dCard.Rank):
		defender.bury(defenderIndex)
	case dCard.Rank.Beats(aCard.Rank):
		attacker.bury(attackerIndex)
	default:
		attacker.bury(attackerIndex)
		defender.bury(defenderIndex)
	}
	return nil
}

// AttackShield flips an intact shield to broken. No card is consumed.
func (ps *PlayerState) AttackShield(targetIndex int) error {
	if targetIndex < 0 || targetIndex >= NumShields {
		return Validationf("shield index %d out of bounds", targetIndex)
	}
	if !ps.Shields[targetIndex] {
		return Validationf("shield %d is already broken", targetIndex)
	}
	ps.Shields[targetIndex] = false
	return nil
}

// RegenerateShield discards the first ace in hand to restore the first
// broken shield. At most one shield is restored per call.
func (ps *PlayerState) RegenerateShield() error {
	aceIndex := -1
	for i, c := range ps.Hand {
		if c.IsAce() {
			aceIndex = i
			break
		}
	}
	if aceIndex == -1 {
		return Validationf("no ace in hand")
	}

	brokenIndex := -1
	for i, intact := range ps.Shields {
		if !intact {
			brokenIndex = i
			break
		}
	}
	if brokenIndex == -1 {
		return Validationf("no broken shield")
	}

	ace := ps.Hand[aceIndex]
	ps.Hand = append(ps.Hand[:aceIndex], ps.Hand[aceIndex+1:]...)
	ps.Graveyard = append(ps.Graveyard, ace)
	ps.Shields[brokenIndex] = true
	return nil
}
