package sim

import "fmt"

// ConfigError reports an invalid simulation input. It is a caller-contract
// violation detected before any play resolves.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid simulation config: %s: %s", e.Field, e.Reason)
}

// InvariantError reports a game-state invariant violation. It is fatal: the
// run aborts rather than clamping, since silent correction would corrupt the
// determinism guarantee without anyone noticing.
type InvariantError struct {
	Invariant string
	State     GameState
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("game state invariant violated: %s (quarter=%s clock=%d down=%d ytg=%d ball=%d)",
		e.Invariant, e.State.Quarter, e.State.Clock, e.State.Down, e.State.YardsToGo, e.State.BallPosition)
}
