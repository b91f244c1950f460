package host

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/llehouerou/keyhold/internal/controller"
	"github.com/llehouerou/keyhold/internal/dispatch"
	"github.com/llehouerou/keyhold/internal/errmsg"
	"github.com/llehouerou/keyhold/internal/keymap"
)

const statusInterval = 100 * time.Millisecond

// RefreshMsg asks the view to redraw after the page or player changed.
type RefreshMsg struct{}

// ErrorMsg shows a failure in the footer until the next key.
type ErrorMsg struct {
	Text string
}

// PointerMsg is a pointer button press forwarded from the terminal.
type PointerMsg struct {
	X, Y int
}

type statusTickMsg struct{}

// StatusFunc returns the gesture status, or false once the controller is
// gone.
type StatusFunc func() (controller.Status, bool)

// Options configures a Model.
type Options struct {
	Page     *Page
	Player   *Player
	Sinks    *Sinks
	Status   StatusFunc
	Settings func() keymap.Settings
}

// Model is the bubbletea model of the host document.
type Model struct {
	page     *Page
	player   *Player
	sinks    *Sinks
	status   StatusFunc
	settings func() keymap.Settings

	keys     keyMap
	help     help.Model
	viewport viewport.Model
	prompt   textinput.Model

	ctrl         controller.Status
	showBindings bool
	errText      string
	width        int
	height       int

	// content cache key
	version  int
	column   int
	selected int
	rendered bool
}

// NewModel creates the host model.
func NewModel(opts Options) Model {
	prompt := textinput.New()
	prompt.Prompt = ":"
	prompt.Placeholder = "line number or file"

	settings := opts.Settings
	if settings == nil {
		settings = keymap.DefaultSettings
	}
	return Model{
		page:     opts.Page,
		player:   opts.Player,
		sinks:    opts.Sinks,
		status:   opts.Status,
		settings: settings,
		keys:     defaultKeyMap(),
		help:     help.New(),
		viewport: viewport.New(0, 0),
		prompt:   prompt,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return statusTick()
}

func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(time.Time) tea.Msg { return statusTickMsg{} })
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	if m.width > 0 {
		m.syncContent(m.page.Snapshot())
	}
	return m, cmd
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-chromeRows, 1)
		m.help.Width = msg.Width
		m.page.SetViewport(1, m.viewport.Height)
		m.rendered = false
		return m, nil

	case statusTickMsg:
		if m.status != nil {
			if st, ok := m.status(); ok {
				m.ctrl = st
			}
		}
		return m, statusTick()

	case RefreshMsg:
		return m, nil

	case ErrorMsg:
		m.errText = msg.Text
		return m, nil

	case PointerMsg:
		err := m.page.ClickAt(dispatch.Point{X: msg.X, Y: msg.Y})
		if err != nil && !errors.Is(err, ErrNoLine) {
			m.errText = errmsg.Format(errmsg.OpClick, err)
		}
		return m, nil

	case tea.KeyMsg:
		m.errText = ""
		if m.prompt.Focused() {
			return m.updatePrompt(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Prompt):
		m.prompt.Reset()
		cmd := m.prompt.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Media):
		if m.sinks != nil {
			m.sinks.ToggleAttached()
		}
	case key.Matches(msg, m.keys.Play):
		if m.player != nil && m.sinks != nil && m.sinks.Attached() {
			m.player.Toggle()
		}
	case key.Matches(msg, m.keys.Help):
		m.showBindings = !m.showBindings
	case key.Matches(msg, m.keys.Cancel):
		m.showBindings = false
	}
	return m, nil
}

func (m Model) updatePrompt(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		m.closePrompt()
		m.submit(strings.TrimSpace(m.prompt.Value()))
		return m, nil
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil
	}
	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompt.Blur()
}

// submit jumps to a line number or opens a file.
func (m *Model) submit(value string) {
	if value == "" {
		return
	}
	if n, err := strconv.Atoi(value); err == nil {
		m.page.GotoLine(n)
		return
	}
	if err := m.page.Open(value); err != nil {
		m.errText = errmsg.FormatWith(errmsg.OpDocumentOpen, value, err)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	ps := m.page.Snapshot()

	var body string
	if m.showBindings {
		body = renderBindings(m.settings(), m.width, m.viewport.Height)
	} else {
		body = m.viewport.View()
	}

	var player PlayerState
	attached := false
	if m.player != nil && m.sinks != nil {
		player = m.player.Snapshot()
		attached = m.sinks.Attached()
	}

	var footer string
	switch {
	case m.prompt.Focused():
		footer = m.prompt.View()
	case m.errText != "":
		footer = errorStyle().Render(m.errText)
	default:
		footer = m.help.View(m.keys)
	}

	return strings.Join([]string{
		renderHeader(ps, m.width),
		body,
		renderPlayerBar(player, attached, m.width),
		renderStatus(m.ctrl, ps.LastKey),
		footer,
	}, "\n")
}

// syncContent re-renders the document when it changed shape and moves the
// viewport to the page offset.
func (m *Model) syncContent(ps PageState) {
	if !m.rendered || m.version != ps.Version || m.column != ps.Column || m.selected != ps.Selected {
		m.viewport.SetContent(renderContent(ps, m.width))
		m.version, m.column, m.selected = ps.Version, ps.Column, ps.Selected
		m.rendered = true
	}
	m.viewport.SetYOffset(int(ps.Offset))
}
