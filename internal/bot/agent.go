// Package bot implements the built-in scripted opponent. The agent is
// purely reactive: given a session snapshot it emits the next command a
// human in its seat could legally issue, one action per invocation. All
// decisions are deterministic; the only randomness in a bot match is
// the deck shuffle the session already fixed.
package bot

import (
	"go.uber.org/zap"

	"github.com/tristano-game/tristano-server-go/internal/game"
	"github.com/tristano-game/tristano-server-go/internal/protocol"
)

// PlayerName is the reserved seat name of the built-in opponent.
// identify rejects it so the bot can never be impersonated.
const PlayerName = "Tristano"

// Agent is the scripted stand-in for a second human.
type Agent struct {
	name   string
	logger *zap.Logger
}

// New creates the scripted opponent.
func New(logger *zap.Logger) *Agent {
	return &Agent{name: PlayerName, logger: logger}
}

// Name returns the agent's seat name.
func (a *Agent) Name() string {
	return a.name
}

// NextCommand picks the agent's next move from the snapshot. The acted
// flag tells the agent whether it already took its card action in the
// current phase; the caller resets it whenever the agent ends a phase.
func (a *Agent) NextCommand(snap game.Snapshot, acted bool) protocol.Command {
	endPhase := &protocol.EndPhase{RoomID: snap.RoomID}

	if snap.Finished || snap.Turn != a.name {
		return nil
	}
	if acted {
		return endPhase
	}

	self := snap.States[a.name]
	opponent := snap.States[snap.Players[0]]
	if snap.Players[0] == a.name {
		opponent = snap.States[snap.Players[1]]
	}

	switch snap.Phase {
	case game.PhaseDraw:
		return &protocol.Draw{RoomID: snap.RoomID}

	case game.PhaseMain:
		if len(self.Hand) > 0 {
			for zone, c := range self.Zones {
				if c == nil {
					return &protocol.PlayToField{
						RoomID:    snap.RoomID,
						HandIndex: 0,
						ZoneIndex: zone,
					}
				}
			}
		}
		return endPhase

	case game.PhaseBattle:
		attacker := firstOccupied(self)
		if attacker == -1 {
			return endPhase
		}
		if defender := firstOccupied(opponent); defender != -1 {
			return &protocol.AttackMonster{
				RoomID:        snap.RoomID,
				AttackerIndex: attacker,
				DefenderIndex: defender,
			}
		}
		if shield := firstIntactShield(opponent); shield != -1 {
			return &protocol.AttackShield{
				RoomID:      snap.RoomID,
				TargetIndex: shield,
			}
		}
		return endPhase

	default:
		return endPhase
	}
}

func firstOccupied(ps *game.PlayerState) int {
	for i, c := range ps.Zones {
		if c != nil {
			return i
		}
	}
	return -1
}

func firstIntactShield(ps *game.PlayerState) int {
	for i, intact := range ps.Shields {
		if intact {
			return i
		}
	}
	return -1
}
