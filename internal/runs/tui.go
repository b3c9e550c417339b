// Package runs is the interactive run-history browser: a split-pane TUI
// with the run list on the left and the selected run's detail on the
// right.
package runs

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Ubaidofficial/six-figure-jobs-sub002/internal/runstatus"
)

// Lines per run item in the list view (headline + counters + blank separator).
const runItemHeight = 3

var (
	activeBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("39")) // bright blue

	inactiveBorderStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("240")) // dim gray

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	activeHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("39"))

	inactiveHeaderStyle = headerStyle.
				Foreground(lipgloss.Color("240"))

	statusBarStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("236"))

	runIDStyle = lipgloss.NewStyle().
			Bold(true)

	runMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	selectedRunIDStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("15")).
				Background(lipgloss.Color("24"))

	selectedRunMetaStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("252")).
				Background(lipgloss.Color("24"))

	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	detailLabelStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Width(16)

	detailValueStyle = lipgloss.NewStyle()

	errorBodyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	dividerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

func statusBadge(s runstatus.Status) string {
	switch s {
	case runstatus.StatusCompleted:
		return completedStyle.Render("✔ completed")
	case runstatus.StatusFailed:
		return failedStyle.Render("✘ failed")
	default:
		return runningStyle.Render("● running")
	}
}

type browserModel struct {
	runs []runstatus.Run

	listViewport   viewport.Model
	detailViewport viewport.Model
	activePane     int // 0=list, 1=detail
	cursor         int
	width          int
	height         int
	ready          bool
}

func (m browserModel) Init() tea.Cmd {
	return nil
}

func (m browserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.recalcLayout()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "left", "right":
			m.activePane = 1 - m.activePane
			m.recalcContent()
			return m, nil
		case "up", "k":
			if m.activePane == 0 {
				m.moveCursor(-1)
				return m, nil
			}
		case "down", "j":
			if m.activePane == 0 {
				m.moveCursor(1)
				return m, nil
			}
		}

		// Remaining keys scroll the active viewport.
		var cmd tea.Cmd
		if m.activePane == 0 {
			m.listViewport, cmd = m.listViewport.Update(msg)
		} else {
			m.detailViewport, cmd = m.detailViewport.Update(msg)
		}
		return m, cmd
	}

	return m, nil
}

func (m *browserModel) moveCursor(delta int) {
	m.cursor = clamp(m.cursor+delta, 0, max(len(m.runs)-1, 0))
	m.recalcContent()
	m.ensureCursorVisible()
}

func (m *browserModel) ensureCursorVisible() {
	cursorTop := m.cursor * runItemHeight
	cursorBottom := cursorTop + runItemHeight - 1

	if cursorTop < m.listViewport.YOffset {
		m.listViewport.SetYOffset(cursorTop)
	} else if cursorBottom >= m.listViewport.YOffset+m.listViewport.Height {
		m.listViewport.SetYOffset(cursorBottom - m.listViewport.Height + 1)
	}
}

func (m *browserModel) recalcLayout() {
	// 2 border chars per pane + 1 gap between panes.
	paneWidth := max((m.width-5)/2, 20)

	// Header (1 line) + border top/bottom (2) + status bar (1) = 4 lines overhead.
	paneHeight := max(m.height-4, 5)

	if !m.ready {
		m.listViewport = viewport.New(paneWidth, paneHeight)
		m.detailViewport = viewport.New(paneWidth, paneHeight)
		m.ready = true
	} else {
		m.listViewport.Width = paneWidth
		m.listViewport.Height = paneHeight
		m.detailViewport.Width = paneWidth
		m.detailViewport.Height = paneHeight
	}

	m.recalcContent()
}

func (m *browserModel) recalcContent() {
	m.listViewport.SetContent(renderRunList(m.runs, m.cursor, m.activePane == 0))
	m.detailViewport.SetContent(m.renderDetail())
}

func (m browserModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	paneWidth := m.listViewport.Width

	listHeader := fmt.Sprintf(" Runs (%d)", len(m.runs))
	detailHeader := " Run Detail"

	var listHeaderRendered, detailHeaderRendered string
	var listBorder, detailBorder lipgloss.Style

	if m.activePane == 0 {
		listHeaderRendered = activeHeaderStyle.Render(listHeader)
		detailHeaderRendered = inactiveHeaderStyle.Render(detailHeader)
		listBorder = activeBorderStyle.Width(paneWidth)
		detailBorder = inactiveBorderStyle.Width(paneWidth)
	} else {
		listHeaderRendered = inactiveHeaderStyle.Render(listHeader)
		detailHeaderRendered = activeHeaderStyle.Render(detailHeader)
		listBorder = inactiveBorderStyle.Width(paneWidth)
		detailBorder = activeBorderStyle.Width(paneWidth)
	}

	headerRow := lipgloss.JoinHorizontal(lipgloss.Top,
		lipgloss.NewStyle().Width(paneWidth+2).Render(listHeaderRendered),
		" ",
		lipgloss.NewStyle().Width(paneWidth+2).Render(detailHeaderRendered),
	)

	panes := lipgloss.JoinHorizontal(lipgloss.Top,
		listBorder.Render(m.listViewport.View()),
		" ",
		detailBorder.Render(m.detailViewport.View()),
	)

	statusText := " ←/→/Tab switch  ↑/↓/j/k navigate  q quit"
	statusBar := statusBarStyle.Width(m.width).Render(statusText)

	return headerRow + "\n" + panes + "\n" + statusBar
}

func renderRunList(runs []runstatus.Run, cursor int, isActive bool) string {
	if len(runs) == 0 {
		return "  (no runs yet)"
	}

	var b strings.Builder
	for i, r := range runs {
		isSelected := isActive && i == cursor

		idSt := runIDStyle
		metaSt := runMetaStyle
		prefix := "  "
		if isSelected {
			idSt = selectedRunIDStyle
			metaSt = selectedRunMetaStyle
			prefix = "> "
		}

		b.WriteString(prefix)
		b.WriteString(idSt.Render(shortID(r.ID)))
		b.WriteString("  ")
		b.WriteString(statusBadge(r.Status))
		b.WriteByte('\n')

		b.WriteString(prefix)
		b.WriteString(metaSt.Render(fmt.Sprintf("%s · %d added · %d failed",
			r.StartedAt.Format("2006-01-02 15:04"), r.Stats.JobsAdded, r.Stats.Failures)))
		b.WriteByte('\n')

		if i < len(runs)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m browserModel) renderDetail() string {
	if len(m.runs) == 0 {
		return "  (no runs yet)"
	}
	r := m.runs[clamp(m.cursor, 0, len(m.runs)-1)]

	var b strings.Builder
	addField := func(label, value string) {
		if value == "" {
			return
		}
		b.WriteString(detailLabelStyle.Render(label))
		b.WriteString(detailValueStyle.Render(value))
		b.WriteByte('\n')
	}

	addField("Run ID", r.ID)
	addField("Status", string(r.Status))
	if r.Stage != "" && r.Status != runstatus.StatusCompleted {
		addField("Stage", string(r.Stage))
	}

	b.WriteByte('\n')
	addField("Started", r.StartedAt.Format("2006-01-02 15:04:05 MST"))
	if r.FinishedAt != nil {
		addField("Finished", r.FinishedAt.Format("2006-01-02 15:04:05 MST"))
		addField("Duration", r.FinishedAt.Sub(r.StartedAt).Round(time.Second).String())
	}

	b.WriteByte('\n')
	addField("Jobs Added", fmt.Sprintf("%d", r.Stats.JobsAdded))
	addField("Failures", fmt.Sprintf("%d", r.Stats.Failures))

	wrapWidth := max(m.detailViewport.Width-4, 20)
	if len(r.Stats.FailedSources) > 0 {
		b.WriteByte('\n')
		b.WriteString(divider("── Failed Sources ", wrapWidth) + "\n\n")
		for _, src := range r.Stats.FailedSources {
			b.WriteString(detailValueStyle.Render("  • "+src) + "\n")
		}
	}

	if r.Error != "" {
		b.WriteByte('\n')
		b.WriteString(divider("── Error ", wrapWidth) + "\n\n")
		b.WriteString(errorBodyStyle.Render(wordWrap(r.Error, wrapWidth)) + "\n")
	}

	return b.String()
}

func divider(label string, width int) string {
	fill := strings.Repeat("─", max(width-len(label), 3))
	return dividerStyle.Render(label + fill)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func wordWrap(text string, width int) string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len(line)+1+len(w) <= width {
			line += " " + w
		} else {
			lines = append(lines, line)
			line = w
		}
	}
	lines = append(lines, line)
	return strings.Join(lines, "\n")
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Browse launches the split-pane run browser over the given runs.
func Browse(runs []runstatus.Run) error {
	m := browserModel{runs: runs}
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
