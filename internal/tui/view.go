package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/bloomlet/internal/cli"
	"github.com/julianstephens/bloomlet/internal/constants"
	"github.com/julianstephens/bloomlet/internal/growth"
	"github.com/julianstephens/bloomlet/internal/progress"
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	var content string
	switch m.state {
	case constants.StateJournal:
		content = m.viewJournal()
	case constants.StateProgress:
		content = m.viewProgress()
	case constants.StateGarden:
		content = m.viewGarden()
	case constants.StateCompose:
		content = docStyle.Render(m.form.View())
	case constants.StateConfirmDelete:
		content = m.viewConfirmDelete()
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.viewTabs(),
		content,
		m.viewStatus(),
		m.help.View(m),
	)
}

func (m Model) viewTabs() string {
	titles := map[constants.SessionState]string{
		constants.StateJournal:  "Journal",
		constants.StateProgress: "Progress",
		constants.StateGarden:   "Garden",
	}
	active := m.state
	if active == constants.StateCompose || active == constants.StateConfirmDelete {
		active = m.prevState
	}

	var tabs []string
	for _, v := range views {
		if v == active {
			tabs = append(tabs, activeTabStyle.Render(titles[v]))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(titles[v]))
		}
	}
	if !m.ctx.Online() {
		tabs = append(tabs, mutedStyle.Render(" offline"))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (m Model) viewStatus() string {
	if m.status == "" {
		return ""
	}
	if m.statusErr {
		return dangerStyle.Render(m.status)
	}
	return successStyle.Render(m.status)
}

func (m Model) viewJournal() string {
	if len(m.entries.Items()) == 0 {
		return docStyle.Render(mutedStyle.Render("No entries yet. Press a to write your first one."))
	}
	return docStyle.Render(m.entries.View())
}

func (m Model) viewProgress() string {
	goal := m.ctx.WeeklyGoal()
	entries := m.ctx.Journal.Entries()
	now := m.ctx.Now()
	p := progress.Current(entries, goal, now, m.ctx.Location)

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Week of %s", p.WeekStart)))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s %s\n", p.Stage.Emoji(), p.Stage.Name())
	fmt.Fprintf(&b, "%s  %d/%d days\n", meter(p.EntriesCount, p.Goal), min(p.EntriesCount, p.Goal), p.Goal)
	b.WriteString(p.Stage.Message(false))
	b.WriteString("\n\n")
	b.WriteString(lifeCycle(p.Stage, growth.ClampGoal(goal)))
	b.WriteString("\n")

	if left := p.EntriesToComplete(); left > 0 {
		fmt.Fprintf(&b, "\n%d more to complete this week.\n", left)
	}

	week := progress.InWeek(entries, now, m.ctx.Location)
	if s, ok := progress.Sentiment(week); ok {
		fmt.Fprintf(&b, "\nThis week's sentiment: %+.2f (%d positive, %d neutral, %d negative)\n",
			s.Average, s.Positive, s.Neutral, s.Negative)
	}
	if themes := progress.Themes(week); len(themes) > 0 {
		labels := make([]string, 0, 3)
		for _, t := range themes[:min(3, len(themes))] {
			labels = append(labels, t.Label)
		}
		b.WriteString(mutedStyle.Render("Themes: " + strings.Join(labels, ", ")))
		b.WriteString("\n")
	}
	return docStyle.Render(b.String())
}

// lifeCycle renders the stage sequence for goal, dimming stages not yet reached.
func lifeCycle(current growth.Stage, goal int) string {
	stages := growth.StagesForGoal(goal)
	reached := -1
	for i, s := range stages {
		if s == current {
			reached = i
		}
	}

	parts := make([]string, len(stages))
	for i, s := range stages {
		if i <= reached {
			parts[i] = s.Emoji()
		} else {
			parts[i] = mutedStyle.Render("·")
		}
	}
	return strings.Join(parts, " → ")
}

func meter(count, goal int) string {
	filled := min(count, goal)
	return "[" + strings.Repeat("●", filled) + strings.Repeat("○", goal-filled) + "]"
}

func (m Model) viewGarden() string {
	weeks := m.ctx.Ledger.Weeks()
	if len(weeks) == 0 {
		return docStyle.Render(mutedStyle.Render("Your garden is waiting for its first butterfly."))
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("🌸 %d butterflies", len(weeks))))
	b.WriteString("\n\n")
	for _, w := range weeks {
		fmt.Fprintf(&b, "%s  week of %s  %s\n",
			butterflyStyle(w.ButterflyColor).Render("🦋"),
			w.WeekStart,
			mutedStyle.Render(fmt.Sprintf("(%d)", w.EntriesCount)))
	}
	return docStyle.Render(b.String())
}

func (m Model) viewConfirmDelete() string {
	preview := ""
	if e, err := m.ctx.Journal.Find(m.entryToDeleteID); err == nil {
		preview = cli.Preview(e.Content, 50)
	}
	return lipgloss.Place(m.width, max(m.height-4, 0),
		lipgloss.Center, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center,
			dangerStyle.Render("Are you sure you want to delete this entry?"),
			warningStyle.Render(preview),
			"",
			"[y] Yes",
			"[n] No",
		),
	)
}
