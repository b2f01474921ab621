package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/EternalUpdate/solfege-tuner/internal/scale"
	"github.com/EternalUpdate/solfege-tuner/internal/tuner"
)

var (
	// Styles
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			PaddingLeft(2).
			PaddingRight(2).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CCCCCC"))

	errStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#CC0000")).
			Padding(0, 1)

	rootStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	rootActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	// Card colors keyed by note letter; flats share their letter's
	// color.
	noteColors = map[byte]string{
		'C': "#E8D6B0", // Beige
		'D': "#A020F0", // Purple
		'E': "#FFFF00", // Yellow
		'F': "#FFA500", // Orange
		'G': "#00FF00", // Green
		'A': "#FF0000", // Red
		'B': "#0000FF", // Blue
	}
)

// syllableStyle builds the big solfège card colored by the detected
// note.
func syllableStyle(note string) lipgloss.Style {
	color := "#444444"
	if note != "" {
		if c, ok := noteColors[note[0]]; ok {
			color = c
		}
	}
	return lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FAFAFA")).
		Background(lipgloss.Color(color)).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#333333")).
		Padding(2, 4).
		MarginBottom(1)
}

// Controller is the part of the detection scheduler the UI drives.
type Controller interface {
	Start() error
	Stop() error
	SetRoot(root string) error
	Root() string
	Subscribe() *tuner.Listener
	Unsubscribe(l *tuner.Listener)
}

// EventMsg carries a scheduler publication into the bubbletea loop.
type EventMsg tuner.Event

// listenerClosedMsg means the subscription ended.
type listenerClosedMsg struct{}

// Model represents the UI state.
type Model struct {
	ctrl     Controller
	listener *tuner.Listener

	state   tuner.DetectionState
	captErr error
	active  bool
	rootIdx int
	width   int
	height  int
}

// NewModel creates the UI model and subscribes it to the scheduler.
func NewModel(ctrl Controller) Model {
	idx := 0
	for i, c := range scale.Chromatic {
		if c == ctrl.Root() {
			idx = i
			break
		}
	}
	return Model{
		ctrl:     ctrl,
		listener: ctrl.Subscribe(),
		rootIdx:  idx,
	}
}

// Init starts listening for scheduler events.
func (m Model) Init() tea.Cmd {
	return waitForEvent(m.listener)
}

// waitForEvent blocks on the subscription and converts the next
// publication into a message.
func waitForEvent(l *tuner.Listener) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev := <-l.C:
			return EventMsg(ev)
		case <-l.Done():
			return listenerClosedMsg{}
		}
	}
}

// Update handles key presses and scheduler events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.ctrl.Stop()
			m.ctrl.Unsubscribe(m.listener)
			return m, tea.Quit

		case " ":
			if m.active {
				m.ctrl.Stop()
				m.active = false
			} else {
				m.captErr = nil
				if err := m.ctrl.Start(); err == nil {
					m.active = true
				}
			}

		case "left", "h":
			m.rootIdx = (m.rootIdx + 11) % 12
			m.ctrl.SetRoot(scale.Chromatic[m.rootIdx])

		case "right", "l":
			m.rootIdx = (m.rootIdx + 1) % 12
			m.ctrl.SetRoot(scale.Chromatic[m.rootIdx])
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		if msg.Err != nil {
			m.captErr = msg.Err
			m.active = false
		} else {
			m.state = msg.State
			m.active = msg.State.Active
		}
		return m, waitForEvent(m.listener)

	case listenerClosedMsg:
		return m, nil
	}

	return m, nil
}

// View renders the UI.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Solfège Tuner"))
	b.WriteString("\n")

	if m.captErr != nil {
		b.WriteString(errStyle.Render(fmt.Sprintf("Microphone unavailable: %v", m.captErr)))
		b.WriteString("\n\n")
	}

	syllable := m.state.Syllable
	if syllable == "" {
		syllable = "--"
	}
	b.WriteString(syllableStyle(m.state.Note).Render(syllable))
	b.WriteString("\n")

	if m.state.Note != "" {
		b.WriteString(infoStyle.Render(fmt.Sprintf("Note: %s | Pitch: %s Hz", m.state.Note, m.state.Pitch)))
	} else if m.active {
		b.WriteString(infoStyle.Render("Listening for audio..."))
	} else {
		b.WriteString(infoStyle.Render("Press space to start"))
	}
	b.WriteString("\n\n")

	// Root selector row.
	var roots []string
	for i, c := range scale.Chromatic {
		if i == m.rootIdx {
			roots = append(roots, rootActiveStyle.Render(c))
		} else {
			roots = append(roots, rootStyle.Render(c))
		}
	}
	b.WriteString(infoStyle.Render("Root: "))
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, roots...))
	b.WriteString("\n\n")

	status := "stopped"
	if m.active {
		status = "listening"
	}
	b.WriteString(infoStyle.Render(fmt.Sprintf("[%s]  space: start/stop  ←/→: root  q: quit", status)))

	return b.String()
}
