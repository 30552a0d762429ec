package ui

import (
	tea "github.com/charmbracelet/bubbletea"

	"swapdeck/internal/quoter"
)

// Tea message types for UI communication.

// QuoteUpdateMsg carries a quote published by the quoter.
type QuoteUpdateMsg struct {
	Update quoter.Update
}

// TxResultMsg reports the outcome of a submitted transaction.
type TxResultMsg struct {
	TxID    string
	Success bool
	Err     error
}

// BalancesMsg signals that wallet balances were refreshed.
type BalancesMsg struct{}

// ErrorMsg represents error conditions.
type ErrorMsg struct {
	Err   error
	Title string
}

// ListenQuotes returns a command that blocks on the quoter's update channel
// and delivers the next quote as a message. Re-issue it after every receive.
func ListenQuotes(updates <-chan quoter.Update) tea.Cmd {
	return func() tea.Msg {
		u, ok := <-updates
		if !ok {
			return nil
		}
		return QuoteUpdateMsg{Update: u}
	}
}
