package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/logger"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/validation"
)

// views are the tab-cycled states, in tab order.
var views = []constants.SessionState{
	constants.StateJournal,
	constants.StateProgress,
	constants.StateGarden,
}

type entrySavedMsg struct {
	entry     models.JournalEntry
	days      int
	butterfly bool
	err       error
}

type entryDeletedMsg struct {
	id  string
	err error
}

type reanalyzedMsg struct {
	updated int
	err     error
}

func saveEntryCmd(ctx *cli.Context, content string, mood models.Mood) tea.Cmd {
	return func() tea.Msg {
		entry, days, err := ctx.Journal.AddEntry(ctx.Base, content, mood)
		if err != nil {
			return entrySavedMsg{err: err}
		}
		created, err := ctx.Ledger.Sync(ctx.Base, ctx.Journal.Entries(), ctx.WeeklyGoal())
		if err != nil {
			logger.Warn("Completed-week sync failed", "error", err)
		}
		return entrySavedMsg{entry: entry, days: days, butterfly: len(created) > 0}
	}
}

func deleteEntryCmd(ctx *cli.Context, id string) tea.Cmd {
	return func() tea.Msg {
		return entryDeletedMsg{id: id, err: ctx.Journal.DeleteEntry(ctx.Base, id)}
	}
}

func reanalyzeCmd(ctx *cli.Context) tea.Cmd {
	return func() tea.Msg {
		n, err := ctx.Journal.Reanalyze(ctx.Base)
		return reanalyzedMsg{updated: n, err: err}
	}
}

func (m *Model) setStatus(text string, isErr bool) {
	m.status = text
	m.statusErr = isErr
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.entries.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case entrySavedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Failed to save entry: %v", msg.err), true)
			return m, nil
		}
		m.refreshEntries()
		status := fmt.Sprintf("✓ Entry saved · %d/%d days this week", msg.days, m.ctx.WeeklyGoal())
		if msg.butterfly {
			status += " · 🦋 a butterfly joined your garden"
		}
		m.setStatus(status, false)
		return m, nil

	case entryDeletedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Failed to delete entry: %v", msg.err), true)
			return m, nil
		}
		m.refreshEntries()
		m.setStatus(fmt.Sprintf("Deleted entry %s", cli.ShortID(msg.id)), false)
		return m, nil

	case reanalyzedMsg:
		if msg.err != nil {
			m.setStatus(fmt.Sprintf("Reanalysis failed: %v", msg.err), true)
			return m, nil
		}
		m.refreshEntries()
		m.setStatus(fmt.Sprintf("Reanalyzed %d entries", msg.updated), false)
		return m, nil
	}

	switch m.state {
	case constants.StateCompose:
		return m.updateCompose(msg)
	case constants.StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok && !m.filtering() {
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		case key.Matches(msg, m.keys.Tab):
			m.state = m.cycleView(1)
			return m, nil
		case key.Matches(msg, m.keys.ShiftTab):
			m.state = m.cycleView(-1)
			return m, nil
		}

		if m.state == constants.StateJournal {
			switch {
			case key.Matches(msg, m.keys.Add):
				m.prevState = m.state
				m.state = constants.StateCompose
				m.form = m.newComposeForm()
				return m, m.form.Init()
			case key.Matches(msg, m.keys.Delete):
				if item, ok := m.entries.SelectedItem().(entryItem); ok {
					m.entryToDeleteID = item.entry.ID
					m.prevState = m.state
					m.state = constants.StateConfirmDelete
				}
				return m, nil
			case key.Matches(msg, m.keys.Reload):
				m.setStatus("Reanalyzing entries…", false)
				return m, reanalyzeCmd(m.ctx)
			}
		}
	}

	var cmd tea.Cmd
	if m.state == constants.StateJournal {
		m.entries, cmd = m.entries.Update(msg)
	}
	return m, cmd
}

func (m Model) filtering() bool {
	return m.state == constants.StateJournal && m.entries.FilterState() == list.Filtering
}

func (m Model) cycleView(step int) constants.SessionState {
	for i, v := range views {
		if v == m.state {
			return views[(i+step+len(views))%len(views)]
		}
	}
	return constants.StateJournal
}

func (m Model) updateCompose(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		m.state = m.prevState
		return m, nil
	}

	var cmds []tea.Cmd
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	cmds = append(cmds, cmd)

	switch m.form.State {
	case huh.StateCompleted:
		m.state = m.prevState
		mood, err := validation.ParseMood(m.composeForm.Mood)
		if err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.setStatus("Saving entry…", false)
		return m, saveEntryCmd(m.ctx, m.composeForm.Content, mood)
	case huh.StateAborted:
		m.state = m.prevState
	}
	return m, tea.Batch(cmds...)
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case "y", "Y":
		id := m.entryToDeleteID
		m.entryToDeleteID = ""
		m.state = m.prevState
		return m, deleteEntryCmd(m.ctx, id)
	case "n", "N", "esc", "q":
		m.entryToDeleteID = ""
		m.state = m.prevState
	}
	return m, nil
}
