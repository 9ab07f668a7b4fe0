package saga

import "testing"

func TestTerminalStates(t *testing.T) {
	terminal := []State{StateCompleted, StateFailed}
	for _, s := range terminal {
		if !s.Terminal() {
			t.Errorf("%s: expected terminal", s)
		}
	}

	nonTerminal := []State{StateInitial, StateWalletCreated, StateFundsAdded, StateFundsWithdrawn, StateFundsTransferred}
	for _, s := range nonTerminal {
		if s.Terminal() {
			t.Errorf("%s: expected non-terminal", s)
		}
	}
}
