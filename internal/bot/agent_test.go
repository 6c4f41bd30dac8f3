package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/tristano-game/tristano-server-go/internal/card"
	"github.com/tristano-game/tristano-server-go/internal/game"
	"github.com/tristano-game/tristano-server-go/internal/protocol"
)

func botSnapshot(phase game.Phase) game.Snapshot {
	self := game.NewPlayerState(nil)
	opponent := game.NewPlayerState(nil)
	return game.Snapshot{
		RoomID:  "room-1",
		Players: [2]string{"alice", PlayerName},
		Turn:    PlayerName,
		Phase:   phase,
		States: map[string]*game.PlayerState{
			"alice":    opponent,
			PlayerName: self,
		},
	}
}

func TestAgent_DrawPhase(t *testing.T) {
	agent := New(zaptest.NewLogger(t))
	snap := botSnapshot(game.PhaseDraw)

	cmd := agent.NextCommand(snap, false)
	draw, ok := cmd.(*protocol.Draw)
	require.True(t, ok, "expected draw, got %T", cmd)
	assert.Equal(t, "room-1", draw.RoomID)

	// Already drew this phase: advance.
	cmd = agent.NextCommand(snap, true)
	_, ok = cmd.(*protocol.EndPhase)
	assert.True(t, ok, "expected endPhase, got %T", cmd)
}

func TestAgent_MainPhasePlaysFirstCardToFirstEmptyZone(t *testing.T) {
	agent := New(zaptest.NewLogger(t))
	snap := botSnapshot(game.PhaseMain)

	seven := card.Card{Color: card.ColorBlack, Rank: card.RankSeven, Suit: card.SuitSpades}
	five := card.Card{Color: card.ColorBlack, Rank: card.RankFive, Suit: card.SuitClubs}
	snap.States[PlayerName].Hand = []card.Card{seven, five}
	occupied := card.Card{Color: card.ColorBlack, Rank: card.RankNine, Suit: card.SuitSpades}
	snap.States[PlayerName].Zones[0] = &occupied

	cmd := agent.NextCommand(snap, false)
	play, ok := cmd.(*protocol.PlayToField)
	require.True(t, ok, "expected playToField, got %T", cmd)
	assert.Equal(t, 0, play.HandIndex)
	assert.Equal(t, 1, play.ZoneIndex)
}

func TestAgent_MainPhaseWithoutPlayableMoveAdvances(t *testing.T) {
	agent := New(zaptest.NewLogger(t))

	// Empty hand.
	snap := botSnapshot(game.PhaseMain)
	cmd := agent.NextCommand(snap, false)
	_, ok := cmd.(*protocol.EndPhase)
	assert.True(t, ok, "expected endPhase with empty hand, got %T", cmd)

	// Full board.
	snap = botSnapshot(game.PhaseMain)
	c := card.Card{Color: card.ColorBlack, Rank: card.RankFour, Suit: card.SuitSpades}
	snap.States[PlayerName].Hand = []card.Card{c}
	for i := range snap.States[PlayerName].Zones {
		zc := c
		snap.States[PlayerName].Zones[i] = &zc
	}
	cmd = agent.NextCommand(snap, false)
	_, ok = cmd.(*protocol.EndPhase)
	assert.True(t, ok, "expected endPhase with full board, got %T", cmd)
}

func TestAgent_BattlePhasePrefersMonstersOverShields(t *testing.T) {
	agent := New(zaptest.NewLogger(t))
	snap := botSnapshot(game.PhaseBattle)

	mine := card.Card{Color: card.ColorBlack, Rank: card.RankKing, Suit: card.SuitSpades}
	theirs := card.Card{Color: card.ColorRed, Rank: card.RankSix, Suit: card.SuitHearts}
	snap.States[PlayerName].Zones[1] = &mine
	snap.States["alice"].Zones[2] = &theirs

	cmd := agent.NextCommand(snap, false)
	attack, ok := cmd.(*protocol.AttackMonster)
	require.True(t, ok, "expected attackMonster, got %T", cmd)
	assert.Equal(t, 1, attack.AttackerIndex)
	assert.Equal(t, 2, attack.DefenderIndex)
}

func TestAgent_BattlePhaseFallsBackToShields(t *testing.T) {
	agent := New(zaptest.NewLogger(t))
	snap := botSnapshot(game.PhaseBattle)

	mine := card.Card{Color: card.ColorBlack, Rank: card.RankKing, Suit: card.SuitSpades}
	snap.States[PlayerName].Zones[0] = &mine
	snap.States["alice"].Shields[0] = false

	cmd := agent.NextCommand(snap, false)
	attack, ok := cmd.(*protocol.AttackShield)
	require.True(t, ok, "expected attackShield, got %T", cmd)
	assert.Equal(t, 1, attack.TargetIndex, "must target the first intact shield")
}

func TestAgent_BattlePhaseWithEmptyBoardAdvances(t *testing.T) {
	agent := New(zaptest.NewLogger(t))
	snap := botSnapshot(game.PhaseBattle)

	cmd := agent.NextCommand(snap, false)
	_, ok := cmd.(*protocol.EndPhase)
	assert.True(t, ok, "expected endPhase, got %T", cmd)
}

func TestAgent_EndPhaseAndOffTurn(t *testing.T) {
	agent := New(zaptest.NewLogger(t))

	snap := botSnapshot(game.PhaseEnd)
	cmd := agent.NextCommand(snap, false)
	_, ok := cmd.(*protocol.EndPhase)
	assert.True(t, ok, "expected endPhase, got %T", cmd)

	snap.Turn = "alice"
	assert.Nil(t, agent.NextCommand(snap, false), "agent must not act off-turn")

	snap.Turn = PlayerName
	snap.Finished = true
	assert.Nil(t, agent.NextCommand(snap, false), "agent must not act after game over")
}
