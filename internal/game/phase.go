package game

import (
	"encoding/json"
	"fmt"
)

// Phase represents one stage of a turn. A turn always passes through the
// four phases in declaration order; leaving PhaseEnd hands the turn to
// the other player.
type Phase int

const (
	PhaseDraw Phase = iota
	PhaseMain
	PhaseBattle
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseDraw:   "draw",
	PhaseMain:   "main",
	PhaseBattle: "battle",
	PhaseEnd:    "end",
}

var phasesByName = func() map[string]Phase {
	m := make(map[string]Phase, len(phaseNames))
	for p, name := range phaseNames {
		m[name] = p
	}
	return m
}()

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// MarshalJSON encodes the phase by name.
func (p Phase) MarshalJSON() ([]byte, error) {
	name, ok := phaseNames[p]
	if !ok {
		return nil, fmt.Errorf("unknown phase %d", int(p))
	}
	return json.Marshal(name)
}

func (p *Phase) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	phase, ok := phasesByName[name]
	if !ok {
		return fmt.Errorf("unknown phase %q", name)
	}
	*p = phase
	return nil
}

// next returns the phase following p in the fixed cycle.
func (p Phase) next() Phase {
	if p == PhaseEnd {
		return PhaseDraw
	}
	return p + 1
}
