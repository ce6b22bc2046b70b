// Package tui is the interactive journal: a list of entries, the week's
// progress and the butterfly garden, with a compose form for new entries.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/models"
	"github.com/julianstephens/bloomlet/internal/validation"
)

type ComposeFormModel struct {
	Content string
	Mood    string
}

// entryItem adapts a journal entry to the list component.
type entryItem struct {
	entry models.JournalEntry
}

func (i entryItem) Title() string {
	title := cli.Preview(i.entry.Content, 60)
	if i.entry.Mood != "" {
		title = fmt.Sprintf("[%s] %s", i.entry.Mood, title)
	}
	return title
}

func (i entryItem) Description() string {
	return fmt.Sprintf("%s  %s", cli.ShortID(i.entry.ID), cli.FormatScore(i.entry.SentimentScore))
}

func (i entryItem) FilterValue() string { return i.entry.Content }

type Model struct {
	ctx         *cli.Context
	state       constants.SessionState
	prevState   constants.SessionState
	keys        KeyMap
	help        help.Model
	entries     list.Model
	form        *huh.Form
	composeForm *ComposeFormModel

	entryToDeleteID string
	status          string
	statusErr       bool
	quitting        bool
	width           int
	height          int
}

func NewModel(ctx *cli.Context) Model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Journal"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	m := Model{
		ctx:     ctx,
		state:   constants.StateJournal,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		entries: l,
	}
	m.refreshEntries()
	return m
}

func (m *Model) refreshEntries() {
	entries := m.ctx.Journal.Entries()
	items := make([]list.Item, len(entries))
	for i, e := range entries {
		items[i] = entryItem{entry: e}
	}
	m.entries.SetItems(items)
}

func (m *Model) newComposeForm() *huh.Form {
	m.composeForm = &ComposeFormModel{}

	moods := []huh.Option[string]{huh.NewOption("none", "")}
	for _, mood := range models.Moods {
		moods = append(moods, huh.NewOption(string(mood), string(mood)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("What's on your mind?").
				Value(&m.composeForm.Content).
				Validate(validation.ValidateContent),
			huh.NewSelect[string]().
				Title("Mood").
				Options(moods...).
				Value(&m.composeForm.Mood),
		),
	).WithShowHelp(true)
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	if m.state == constants.StateJournal {
		keys = append(keys, m.keys.Add, m.keys.Delete, m.keys.Reload)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}
	navigation := []key.Binding{m.keys.Up, m.keys.Down}

	var actions []key.Binding
	if m.state == constants.StateJournal {
		actions = []key.Binding{m.keys.Add, m.keys.Delete, m.keys.Reload}
	}
	return [][]key.Binding{global, navigation, actions}
}

func (m Model) Init() tea.Cmd {
	return nil
}
