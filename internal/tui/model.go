// Package tui provides the BubbleTea-based toast viewport.
package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jmylchreest/toasty/internal/config"
	"github.com/jmylchreest/toasty/internal/display"
	"github.com/jmylchreest/toasty/internal/model"
)

// Mode represents the current UI mode.
type Mode int

const (
	ModeView Mode = iota
	ModeComposeTitle
	ModeComposeDescription
	ModeHelp
)

// Viewport is the display state the TUI renders and acts on.
type Viewport interface {
	Visible() []display.ToastState
	Hidden() int
	Position() string
	Width() int
	Dismiss(id string)
	DismissTop() bool
	Pause(id string) bool
	Resume(id string) bool
	Subscribe() <-chan struct{}
}

// Registry is the part of the toast registry the TUI writes to.
type Registry interface {
	Push(data model.PushData) model.Toast
	Clear()
}

// Model is the main TUI model.
type Model struct {
	viewport Viewport
	reg      Registry

	mode Mode

	// Components
	input textinput.Model
	help  help.Model

	// State
	toasts   []display.ToastState
	hidden   int
	selected int
	width    int
	height   int
	ready    bool

	// Toast being composed
	composeVariant model.Variant
	composeTitle   string

	keys KeyMap

	statusMsg string
	statusErr bool

	changes <-chan struct{}

	copyText func(string) error
}

// New creates a new TUI model.
func New(vp Viewport, reg Registry) Model {
	input := textinput.New()
	input.CharLimit = 200

	h := help.New()
	h.ShowAll = true

	m := Model{
		viewport: vp,
		reg:      reg,
		mode:     ModeView,
		input:    input,
		help:     h,
		keys:     DefaultKeyMap(),
		copyText: clipboard.WriteAll,
	}
	if vp != nil {
		m.changes = vp.Subscribe()
	}
	return m
}

// Init initializes the TUI.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadToasts,
		m.watchForChanges,
		tickAges(),
	)
}

type loadToastsMsg struct{}

func (m Model) loadToasts() tea.Msg {
	return loadToastsMsg{}
}

type viewportChangedMsg struct{}

// watchForChanges waits for the next viewport change.
func (m Model) watchForChanges() tea.Msg {
	if m.changes == nil {
		return nil
	}
	if _, ok := <-m.changes; !ok {
		return nil
	}
	return viewportChangedMsg{}
}

type ageTickMsg time.Time

// tickAges re-renders once a second so ages and countdowns stay current.
func tickAges() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return ageTickMsg(t)
	})
}

type statusMsg struct {
	text  string
	isErr bool
}

type clearStatusMsg struct{}

type copyResultMsg struct {
	err error
}

func setStatus(text string, isErr bool) tea.Cmd {
	return func() tea.Msg {
		return statusMsg{text: text, isErr: isErr}
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.help.Width = msg.Width
		return m, nil

	case loadToastsMsg:
		m.refresh()
		return m, nil

	case viewportChangedMsg:
		m.refresh()
		return m, m.watchForChanges

	case ageTickMsg:
		return m, tickAges()

	case statusMsg:
		m.statusMsg = msg.text
		m.statusErr = msg.isErr
		return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		})

	case clearStatusMsg:
		m.statusMsg = ""
		m.statusErr = false
		return m, nil

	case copyResultMsg:
		if msg.err != nil {
			return m, setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, setStatus("Copied to clipboard", false)
	}

	if m.composing() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// refresh re-reads the viewport and keeps the selection in range.
func (m *Model) refresh() {
	if m.viewport == nil {
		return
	}
	m.toasts = m.viewport.Visible()
	m.hidden = m.viewport.Hidden()
	if m.selected >= len(m.toasts) {
		m.selected = len(m.toasts) - 1
	}
	if m.selected < 0 {
		m.selected = 0
	}
}

func (m Model) composing() bool {
	return m.mode == ModeComposeTitle || m.mode == ModeComposeDescription
}

// selectedToast returns the highlighted toast, if any.
func (m Model) selectedToast() (display.ToastState, bool) {
	if m.selected < 0 || m.selected >= len(m.toasts) {
		return display.ToastState{}, false
	}
	return m.toasts[m.selected], true
}

// handleKey handles key presses.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.composing() {
		return m.handleComposeKey(msg)
	}

	// Global keys
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		if m.mode == ModeHelp {
			m.mode = ModeView
		} else {
			m.mode = ModeHelp
		}
		return m, nil
	}

	if m.mode == ModeHelp {
		if key.Matches(msg, m.keys.Back) {
			m.mode = ModeView
		}
		return m, nil
	}

	return m.handleViewKey(msg)
}

// handleViewKey handles keys while the toast stack is shown.
func (m Model) handleViewKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.selected > 0 {
			m.selected--
		}
		return m, nil

	case key.Matches(msg, m.keys.Down):
		if m.selected < len(m.toasts)-1 {
			m.selected++
		}
		return m, nil

	case key.Matches(msg, m.keys.New):
		return m.startCompose(model.VariantDefault)

	case key.Matches(msg, m.keys.NewDanger):
		return m.startCompose(model.VariantDanger)

	case key.Matches(msg, m.keys.Dismiss):
		if st, ok := m.selectedToast(); ok {
			m.viewport.Dismiss(st.Toast.ID)
			return m, setStatus("Toast dismissed", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.DismissTop):
		if m.viewport.DismissTop() {
			return m, setStatus("Newest toast dismissed", false)
		}
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.reg != nil {
			m.reg.Clear()
		}
		return m, setStatus("All toasts cleared", false)

	case key.Matches(msg, m.keys.Pause):
		st, ok := m.selectedToast()
		if !ok {
			return m, nil
		}
		if st.Paused {
			m.viewport.Resume(st.Toast.ID)
			m.refresh()
			return m, setStatus("Timer resumed", false)
		}
		m.viewport.Pause(st.Toast.ID)
		m.refresh()
		return m, setStatus("Timer paused", false)

	case key.Matches(msg, m.keys.Copy):
		if st, ok := m.selectedToast(); ok {
			return m, m.copyToClipboard(st.Toast)
		}
		return m, nil
	}

	return m, nil
}

// startCompose opens the title prompt for a new toast.
func (m Model) startCompose(variant model.Variant) (tea.Model, tea.Cmd) {
	m.mode = ModeComposeTitle
	m.composeVariant = variant
	m.composeTitle = ""
	m.input.Reset()
	m.input.Placeholder = "Title"
	cmd := m.input.Focus()
	return m, cmd
}

// handleComposeKey handles keys while a toast is being written.
func (m Model) handleComposeKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit

	case key.Matches(msg, m.keys.Back):
		m.mode = ModeView
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		value := strings.TrimSpace(m.input.Value())
		if m.mode == ModeComposeTitle {
			if value == "" {
				return m, setStatus("Title is required", true)
			}
			m.composeTitle = value
			m.mode = ModeComposeDescription
			m.input.Reset()
			m.input.Placeholder = "Description (optional)"
			return m, nil
		}

		m.mode = ModeView
		m.input.Blur()
		m.input.Reset()
		if m.reg == nil {
			return m, nil
		}
		t := m.reg.Push(model.PushData{
			Title:       m.composeTitle,
			Description: value,
			Variant:     m.composeVariant,
		})
		return m, setStatus("Pushed "+t.ID, false)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// copyToClipboard copies a toast's text to the system clipboard.
func (m Model) copyToClipboard(t model.Toast) tea.Cmd {
	text := t.Title
	if t.Description != "" {
		text += "\n" + t.Description
	}
	copyText := m.copyText
	return func() tea.Msg {
		return copyResultMsg{err: copyText(text)}
	}
}

// View renders the TUI.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	if m.mode == ModeHelp {
		return m.viewHelp()
	}

	footer := m.buildKeybindBar(m.width)
	if m.statusMsg != "" {
		statusStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("7"))
		if m.statusErr {
			statusStyle = statusStyle.Foreground(lipgloss.Color("9"))
		}
		footer = statusStyle.Render(m.statusMsg)
	}

	h, v := alignment(m.position())
	body := lipgloss.Place(m.width, max(m.height-1, 1), h, v, m.viewStack())
	return body + "\n" + footer
}

// viewStack renders the compose prompt and the toast boxes.
func (m Model) viewStack() string {
	var parts []string
	if m.composing() {
		parts = append(parts, m.viewCompose())
	}

	if len(m.toasts) == 0 && !m.composing() {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Render("No toasts. Press n to create one."))
	}

	now := time.Now()
	for i, st := range m.toasts {
		parts = append(parts, m.renderToast(st, i == m.selected, now))
	}

	if m.hidden > 0 {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Render(fmt.Sprintf("+%d more", m.hidden)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// renderToast renders one toast as a bordered box.
func (m Model) renderToast(st display.ToastState, selected bool, now time.Time) string {
	accent := lipgloss.Color("12")
	if st.Toast.IsDanger() {
		accent = lipgloss.Color("9")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(m.toastWidth())
	if selected {
		box = box.Border(lipgloss.ThickBorder()).BorderForeground(lipgloss.Color("11"))
	}

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(accent)
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	lines := []string{titleStyle.Render(st.Toast.Title)}
	if st.Toast.Description != "" {
		lines = append(lines, st.Toast.Description)
	}
	lines = append(lines, metaStyle.Render(toastMeta(st, now)))

	return box.Render(strings.Join(lines, "\n"))
}

// toastMeta describes a toast's age and remaining time.
func toastMeta(st display.ToastState, now time.Time) string {
	meta := humanize.RelTime(st.Toast.CreatedAt, now, "ago", "from now")
	switch {
	case st.Paused:
		meta += " · paused"
	case !st.ExpiresAt.IsZero():
		remaining := max(st.ExpiresAt.Sub(now), 0).Round(time.Second)
		meta += " · closes in " + remaining.String()
	}
	return meta
}

func (m Model) viewCompose() string {
	label := "New toast"
	if m.composeVariant == model.VariantDanger {
		label = "New danger toast"
	}
	prompt := "Title"
	if m.mode == ModeComposeDescription {
		prompt = "Description"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("10")).
		Padding(0, 1).
		Width(m.toastWidth())

	return style.Render(label + " · " + prompt + "\n" + m.input.View())
}

func (m Model) viewHelp() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		MarginBottom(1)

	s := titleStyle.Render("Keyboard Shortcuts") + "\n\n"
	s += m.help.View(m.keys)
	s += "\n\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render(
		"Press ? or esc to return")
	return s
}

func (m Model) position() string {
	if m.viewport == nil {
		return config.DefaultPosition
	}
	return m.viewport.Position()
}

func (m Model) toastWidth() int {
	width := config.DefaultWidth
	if m.viewport != nil && m.viewport.Width() > 0 {
		width = m.viewport.Width()
	}
	if m.width > 0 && width > m.width-2 {
		width = max(m.width-2, 10)
	}
	return width
}

// alignment maps a viewport corner to lipgloss placement.
func alignment(position string) (lipgloss.Position, lipgloss.Position) {
	switch position {
	case config.PositionTopLeft:
		return lipgloss.Left, lipgloss.Top
	case config.PositionTopRight:
		return lipgloss.Right, lipgloss.Top
	case config.PositionBottomLeft:
		return lipgloss.Left, lipgloss.Bottom
	default:
		return lipgloss.Right, lipgloss.Bottom
	}
}

// keybind is a single entry of the status bar.
type keybind struct {
	key  string
	desc string
}

// buildKeybindBar builds a keybind bar that fits within the given width.
func (m Model) buildKeybindBar(width int) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	keyStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	// Most important first
	binds := []keybind{
		{"q", "quit"},
		{"n/N", "new"},
		{"d", "dismiss"},
		{"?", "help"},
		{"p", "pause"},
		{"x", "clear"},
		{"c", "copy"},
		{"j/k", "select"},
	}
	if m.composing() {
		binds = []keybind{
			{"enter", "next"},
			{"esc", "cancel"},
		}
	}

	const separator = "  "
	result := ""
	for _, b := range binds {
		item := keyStyle.Render(b.key) + " " + b.desc
		testLen := lipgloss.Width(result) + len(b.key) + 1 + len(b.desc)
		if result != "" {
			testLen += len(separator)
		}
		if width > 0 && testLen > width {
			break
		}
		if result != "" {
			result += separator
		}
		result += item
	}

	return style.Render(result)
}

// RunOptions configures the TUI.
type RunOptions struct {
	Viewport Viewport
	Registry Registry
}

// Run starts the TUI and blocks until the user quits.
func Run(opts RunOptions) error {
	p := tea.NewProgram(New(opts.Viewport, opts.Registry), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
