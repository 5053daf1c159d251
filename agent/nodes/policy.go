package assistantnode

import (
	"time"

	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
)

const (
	DefaultMaxToolCalls    = 4
	DefaultDispatchTimeout = 20 * time.Second
)

// Policy bounds what one turn may do.
type Policy struct {
	MaxToolCalls    int
	DispatchTimeout time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.MaxToolCalls <= 0 {
		p.MaxToolCalls = DefaultMaxToolCalls
	}
	if p.DispatchTimeout <= 0 {
		p.DispatchTimeout = DefaultDispatchTimeout
	}
	return p
}

// shouldContinue stops the turn after the first failed call: later calls
// usually depend on the earlier one, and the user has to answer first.
func shouldContinue(results []contractx.ToolResult) bool {
	return len(results) == 0 || !results[len(results)-1].IsError
}
