// Package tui implements the Bubble Tea review interface: paragraphs on
// the left, the selected paragraph's changes on the right, with
// per-paragraph confirmation, confirm-all, and reject actions driving the
// session state machine.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/scribeworks/redline/internal/session"
)

// Model is the top-level Bubble Tea model for a review session.
type Model struct {
	manager *session.Manager
	doc     string

	// UI state
	width  int
	height int

	paraIndex    int // currently selected paragraph
	scrollOffset int // scroll position within the change view
	viewHeight   int

	// Rendered lines for the current view
	lines []renderedLine

	// View mode: paragraph changes vs raw diff records
	recordView bool

	showHelp bool

	// Outcome once the session resolves
	outcome  session.State
	resolved bool
	applyErr error
}

// New creates a review model for the document's pending session.
func New(manager *session.Manager, doc string) Model {
	m := Model{
		manager: manager,
		doc:     doc,
		outcome: session.StatePending,
	}
	m.updateLines()
	return m
}

// Outcome reports how the review ended and any apply error.
func (m Model) Outcome() (session.State, error) {
	return m.outcome, m.applyErr
}

func (m *Model) paragraphs() []session.ParagraphView {
	sess := m.manager.Get(m.doc)
	if sess == nil {
		return nil
	}
	return sess.Paragraphs()
}

func (m *Model) updateLines() {
	sess := m.manager.Get(m.doc)
	if sess == nil {
		m.lines = nil
		return
	}
	if m.recordView {
		m.lines = renderRecords(sess.Diffs)
		return
	}
	paras := sess.Paragraphs()
	if m.paraIndex >= len(paras) {
		m.paraIndex = len(paras) - 1
	}
	if m.paraIndex < 0 {
		m.lines = nil
		return
	}
	m.lines = renderParagraph(paras[m.paraIndex])
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewHeight = m.height - 4 // status bar + help bar + borders
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.scrollOffset < len(m.lines)-1 {
				m.scrollOffset++
			}

		case key.Matches(msg, keys.Up):
			if m.scrollOffset > 0 {
				m.scrollOffset--
			}

		case key.Matches(msg, keys.NextPara):
			if m.paraIndex < len(m.paragraphs())-1 {
				m.paraIndex++
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.PrevPara):
			if m.paraIndex > 0 {
				m.paraIndex--
				m.scrollOffset = 0
				m.updateLines()
			}

		case key.Matches(msg, keys.Confirm):
			paras := m.paragraphs()
			if m.paraIndex < len(paras) {
				m.manager.ConfirmParagraph(m.doc, paras[m.paraIndex].ID)
			}

		case key.Matches(msg, keys.ConfirmAll):
			m.applyErr = m.manager.ConfirmAll(m.doc)
			m.outcome = session.StateApplied
			m.resolved = true
			return m, tea.Quit

		case key.Matches(msg, keys.Reject):
			m.manager.Reject(m.doc)
			m.outcome = session.StateDiscarded
			m.resolved = true
			return m, tea.Quit

		case key.Matches(msg, keys.Toggle):
			m.recordView = !m.recordView
			m.scrollOffset = 0
			m.updateLines()

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	listWidth := m.paraListWidth()
	changeWidth := m.width - listWidth - 1 // -1 for gap

	paraList := m.renderParaList(listWidth, m.height-2)
	changeView := m.renderChangeView(changeWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, paraList, " ", changeView)
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m Model) paraListWidth() int {
	w := m.width / 4
	if w < 24 {
		w = 24
	}
	if w > 40 {
		w = 40
	}
	return w
}

func (m Model) renderParaList(width, height int) string {
	paras := m.paragraphs()
	var b strings.Builder
	for i, p := range paras {
		marker := paraPendingStyle.Render("○")
		if p.Confirmed {
			marker = paraConfirmedStyle.Render("✓")
		}
		label := fmt.Sprintf("%s ¶ lines %d–%d (%d)", marker, p.StartLine, p.EndLine, len(p.Changes))
		if i == m.paraIndex && !m.recordView {
			b.WriteString(paraItemSelectedStyle.Render(label))
		} else {
			b.WriteString(paraItemStyle.Render(label))
		}
		b.WriteString("\n")
	}
	if len(paras) == 0 {
		b.WriteString(hintStyle.Render("no pending session"))
	}
	return paraListStyle.Width(width - 2).Height(height - 2).Render(b.String())
}

func (m Model) renderChangeView(width, height int) string {
	visible := m.lines
	if m.scrollOffset < len(visible) {
		visible = visible[m.scrollOffset:]
	}
	if len(visible) > height-2 {
		visible = visible[:height-2]
	}

	var b strings.Builder
	for _, l := range visible {
		b.WriteString(l.render(width - 4))
		b.WriteString("\n")
	}
	return changeViewStyle.Width(width - 2).Height(height - 2).Render(b.String())
}

func (m Model) renderStatusBar() string {
	sess := m.manager.Get(m.doc)
	if sess == nil {
		label := "resolved"
		if m.resolved {
			label = m.outcome.String()
		}
		return statusBarStyle.Width(m.width).Render(label)
	}

	paras := sess.Paragraphs()
	status := fmt.Sprintf("%s  %s  %d/%d confirmed  old %s → new %s",
		statusKeyStyle.Render(sess.DiffAreaID),
		sess.FilePath,
		sess.ConfirmedCount(), len(paras),
		humanize.Bytes(uint64(len(sess.OldContent))),
		humanize.Bytes(uint64(len(sess.NewContent))),
	)
	return statusBarStyle.Width(m.width).Render(status)
}

func (m Model) renderHelp() string {
	bindings := []key.Binding{
		keys.Up, keys.Down, keys.NextPara, keys.PrevPara,
		keys.Confirm, keys.ConfirmAll, keys.Reject,
		keys.Toggle, keys.Help, keys.Quit,
	}
	var b strings.Builder
	b.WriteString(paraHeaderStyle.Render("redline review keys"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Render(fmt.Sprintf("%-10s", bind.Help().Key)),
			helpBarStyle.Render(bind.Help().Desc)))
	}
	return b.String()
}

// Run opens the review TUI and blocks until the session resolves or the
// user quits, returning the outcome.
func Run(manager *session.Manager, doc string) (session.State, error) {
	p := tea.NewProgram(New(manager, doc), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return session.StatePending, err
	}
	m := final.(Model)
	outcome, applyErr := m.Outcome()
	if applyErr != nil {
		return outcome, applyErr
	}
	return outcome, nil
}
