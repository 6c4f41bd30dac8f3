package card

import "fmt"

// DeckSize is the fixed number of cards each player starts with:
// 11 ranks in two suits plus one joker.
const DeckSize = 23

// deckRanks are the non-joker ranks, lowest first. Deck order before
// shuffling is deterministic: ranks ascending, suits in SuitsFor order.
var deckRanks = []Rank{
	RankFour, RankFive, RankSix, RankSeven, RankEight, RankNine,
	RankTen, RankJack, RankQueen, RankKing, RankAce,
}

// ImagePath derives the asset path for a rank/suit pair.
func ImagePath(rank Rank, suit Suit) string {
	return fmt.Sprintf("/cards/img/cards/%s_of_%s.png", rank, suit)
}

func jokerImage(color Color) string {
	if color == ColorRed {
		return "/cards/img/cards/red_joker.png"
	}
	return "/cards/img/cards/black_joker.png"
}

// NewDeck builds the fixed 23-card sequence for a color. It is a pure
// function; shuffling is the caller's responsibility.
func NewDeck(color Color) []Card {
	deck := make([]Card, 0, DeckSize)
	suits := SuitsFor(color)

	for _, rank := range deckRanks {
		for _, suit := range suits {
			deck = append(deck, Card{
				Color: color,
				Rank:  rank,
				Suit:  suit,
				Image: ImagePath(rank, suit),
			})
		}
	}

	deck = append(deck, Card{
		Color: color,
		Rank:  RankJoker,
		Suit:  SuitJoker,
		Image: jokerImage(color),
	})

	return deck
}
