// Package ui renders the chat client in a plain terminal.
package ui

import (
	"chat-relay/contract"
	"chat-relay/domain"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const historySize = 100

var (
	presenceStyle = color.New(color.FgCyan)
	errorStyle    = color.New(color.FgRed, color.OpBold)
	promptStyle   = color.New(color.FgGreen)
)

// Terminal writes client output line by line. It is safe for use from the
// client read loop and the input loop at the same time.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	colours bool
	online  int
	history []domain.LogEntry
}

var _ contract.Presenter = (*Terminal)(nil)

func NewTerminal(out io.Writer, colours bool) *Terminal {
	return &Terminal{out: out, colours: colours}
}

func (t *Terminal) AppendOutput(text string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, t.style(text))
}

func (t *Terminal) style(text string) string {
	if !t.colours {
		return text
	}
	switch {
	case strings.HasPrefix(text, "* "):
		return presenceStyle.Render(text)
	case strings.HasPrefix(text, "Error"), strings.HasPrefix(text, "invalid"):
		return errorStyle.Render(text)
	default:
		return text
	}
}

func (t *Terminal) OnUserEvent(_ domain.Participant, connected bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if connected {
		t.online++
	} else if t.online > 0 {
		t.online--
	}
}

// OnLogReceived keeps the latest messages for History.
func (t *Terminal) OnLogReceived(entry domain.LogEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.history = append(t.history, entry)
	if len(t.history) > historySize {
		t.history = slices.Delete(t.history, 0, len(t.history)-historySize)
	}
}

func (t *Terminal) History() []domain.LogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return slices.Clone(t.history)
}

// Prompt shows how many participants the client knows about, itself included.
func (t *Terminal) Prompt() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	prompt := fmt.Sprintf("[%d online] > ", t.online)
	if t.colours {
		return promptStyle.Render(prompt)
	}
	return prompt
}

// PrintParticipants renders the participant list as a table, marking the
// local user.
func PrintParticipants(w io.Writer, participants []domain.Participant, current domain.Participant) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Name", "Address", ""})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)
	for _, p := range participants {
		marker := ""
		if p == current {
			marker = "(you)"
		}
		table.Append([]string{p.Name, p.Address, marker})
	}
	table.Render()
}
