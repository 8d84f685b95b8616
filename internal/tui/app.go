// Package tui renders the conversational storefront builder: a transcript
// viewport, a status bar, and a chat input wired to the orchestrator.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ShayCichocki/topshelf/internal/orchestrator"
	"github.com/ShayCichocki/topshelf/pkg/models"
)

// eventMsg wraps an orchestrator event for the update loop.
type eventMsg orchestrator.Event

// eventsClosedMsg signals the orchestrator shut its event channel.
type eventsClosedMsg struct{}

// turnDoneMsg signals a background user turn finished.
type turnDoneMsg struct{ err error }

// App is the bubbletea model for the chat interface.
type App struct {
	orch *orchestrator.Orchestrator

	vp    viewport.Model
	input textinput.Model
	spin  spinner.Model

	width  int
	height int
	ready  bool
	busy   bool
	quit   bool
}

// NewApp creates the chat model around an orchestrator.
func NewApp(orch *orchestrator.Orchestrator) *App {
	ti := textinput.New()
	ti.Placeholder = "Describe your brand, or /attach a catalog..."
	ti.Focus()
	ti.CharLimit = 500

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#6366f1"))

	return &App{
		orch:  orch,
		input: ti,
		spin:  sp,
	}
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, a.spin.Tick, a.waitForEvent())
}

// waitForEvent blocks on the orchestrator's event channel.
func (a *App) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-a.orch.Events()
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(ev)
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		inputHeight := 3
		barHeight := 2
		vpHeight := msg.Height - inputHeight - barHeight
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !a.ready {
			a.vp = viewport.New(msg.Width, vpHeight)
			a.ready = true
		} else {
			a.vp.Width = msg.Width
			a.vp.Height = vpHeight
		}
		a.input.Width = msg.Width - 6
		a.refreshTranscript()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			a.quit = true
			return a, tea.Quit
		case "enter":
			if cmd := a.submit(); cmd != nil {
				cmds = append(cmds, cmd)
			}
		default:
			var cmd tea.Cmd
			a.input, cmd = a.input.Update(msg)
			cmds = append(cmds, cmd)
		}

	case eventMsg:
		a.handleEvent(orchestrator.Event(msg))
		cmds = append(cmds, a.waitForEvent())

	case eventsClosedMsg:
		a.quit = true
		return a, tea.Quit

	case turnDoneMsg:
		a.busy = false

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	a.vp, cmd = a.vp.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// submit consumes the input line and dispatches it.
func (a *App) submit() tea.Cmd {
	text := strings.TrimSpace(a.input.Value())
	if text == "" || a.busy {
		return nil
	}
	a.input.Reset()

	cmd := ParseCommand(text)
	switch cmd.Kind {
	case CommandQuit:
		a.quit = true
		return tea.Quit

	case CommandHelp:
		a.orch.Session().AppendMessage(models.RoleAssistant, helpText, models.MessageStatus, "")
		a.refreshTranscript()
		return nil

	case CommandAttach:
		a.busy = true
		return func() tea.Msg {
			return turnDoneMsg{err: a.orch.AttachCatalog(cmd.Arg)}
		}

	case CommandCrawl:
		a.busy = true
		return func() tea.Msg {
			return turnDoneMsg{err: a.orch.ImportSite(context.Background(), cmd.Arg)}
		}

	case CommandLaunch:
		a.busy = true
		return func() tea.Msg {
			return turnDoneMsg{err: a.orch.Launch(context.Background())}
		}

	case CommandDeploy:
		a.busy = true
		return func() tea.Msg {
			return turnDoneMsg{err: a.orch.Deploy(context.Background())}
		}

	default:
		a.busy = true
		return func() tea.Msg {
			return turnDoneMsg{err: a.orch.HandleUserMessage(context.Background(), cmd.Arg)}
		}
	}
}

func (a *App) handleEvent(ev orchestrator.Event) {
	switch ev.Type {
	case orchestrator.EventMessage, orchestrator.EventStatusChanged,
		orchestrator.EventBrandUpdated, orchestrator.EventProductsLoaded,
		orchestrator.EventBatchHydrated, orchestrator.EventPayloadReady,
		orchestrator.EventDeployed, orchestrator.EventError:
		a.refreshTranscript()
	}
}

// refreshTranscript re-renders the conversation into the viewport and
// pins it to the bottom.
func (a *App) refreshTranscript() {
	if !a.ready {
		return
	}
	var b strings.Builder
	for _, msg := range a.orch.Session().Transcript() {
		b.WriteString(renderMessage(msg, a.vp.Width))
		b.WriteString("\n")
	}
	a.vp.SetContent(b.String())
	a.vp.GotoBottom()
}

func renderMessage(msg models.Message, width int) string {
	wrap := lipgloss.NewStyle().Width(width - 2)

	switch {
	case msg.Type == models.MessageStatus:
		return wrap.Render(statusStyle.Render("· " + msg.Content))
	case msg.Type == models.MessageFile:
		return wrap.Render(fileStyle.Render("📎 " + msg.Content))
	case msg.Role == models.RoleUser:
		return wrap.Render(userStyle.Render("You: ") + msg.Content)
	default:
		return wrap.Render(assistantStyle.Render("TopShelf: ") + msg.Content)
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if a.quit {
		return ""
	}
	if !a.ready {
		return "loading..."
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		a.vp.View(),
		a.statusBar(),
		inputStyle.Width(a.width-2).Render(a.input.View()),
	)
}

// statusBar shows brand identity, pipeline state, and the deploy URL.
func (a *App) statusBar() string {
	snap := a.orch.Session().Snapshot()

	name := snap.Brand.CompanyName
	if name == "" {
		name = "unnamed brand"
	}

	parts := []string{
		titleStyle.Render("TopShelf"),
		fmt.Sprintf("%s %s %s", name, swatch(snap.Brand.PrimaryColor), swatch(snap.Brand.SecondaryColor)),
		fmt.Sprintf("products: %d", len(snap.Products)),
	}

	status := string(snap.Status)
	if a.busy {
		status = a.spin.View() + " " + status
	}
	if snap.Status == models.StatusError {
		status = errorStyle.Render(status)
	}
	parts = append(parts, status)

	if snap.DeployURL != "" {
		parts = append(parts, snap.DeployURL)
	}

	return barStyle.Width(a.width).Render(strings.Join(parts, "  │  "))
}

// Run starts the program and blocks until exit.
func Run(orch *orchestrator.Orchestrator) error {
	p := tea.NewProgram(NewApp(orch), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
