// internal/tui/tui.go
// Package tui provides the interactive chat interface over the retrieval
// pipeline.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/askdocs/askdocs/internal/appconfig"
	"github.com/askdocs/askdocs/internal/rag"
	"github.com/askdocs/askdocs/internal/util"
)

var (
	questionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	sourceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).Italic(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// exchange is one question/answer pair shown in the transcript.
type exchange struct {
	question string
	answer   string
	sources  []string
	errText  string
}

// askDoneMsg is sent when the pipeline finished a query.
type askDoneMsg struct {
	answer rag.Answer
}

// askErrMsg is sent when the pipeline failed a query.
type askErrMsg struct {
	err error
}

// model is the main application model for the Bubble Tea UI.
type model struct {
	ctx      context.Context
	cfg      *appconfig.Config
	pipeline *rag.Pipeline

	viewport  viewport.Model
	textArea  textarea.Model
	spinner   spinner.Model
	exchanges []exchange
	pending   string
	isAsking  bool
	width     int
	height    int
}

func initialModel(ctx context.Context, cfg *appconfig.Config, pipeline *rag.Pipeline) *model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	ta := textarea.New()
	ta.Placeholder = "Ask a question about your documents..."
	ta.Focus()
	ta.Prompt = "> "
	ta.ShowLineNumbers = false
	ta.CharLimit = -1
	ta.SetHeight(1)
	ta.KeyMap.InsertNewline.SetEnabled(false)

	return &model{
		ctx:      ctx,
		cfg:      cfg,
		pipeline: pipeline,
		viewport: viewport.New(100, 10),
		textArea: ta,
		spinner:  s,
	}
}

// Init implements tea.Model.
func (m *model) Init() tea.Cmd {
	return textarea.Blink
}

// askCmd runs one query through the pipeline off the UI goroutine.
func (m *model) askCmd(question string) tea.Cmd {
	return func() tea.Msg {
		answer, err := m.pipeline.Ask(m.ctx, question)
		if err != nil {
			return askErrMsg{err: err}
		}
		return askDoneMsg{answer: answer}
	}
}

// Update implements tea.Model.
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 4
		m.textArea.SetWidth(msg.Width - 2)
		m.refreshViewport()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			question := strings.TrimSpace(m.textArea.Value())
			if question == "" || m.isAsking {
				break
			}
			m.pending = question
			m.isAsking = true
			m.textArea.Reset()
			m.refreshViewport()
			cmds = append(cmds, m.askCmd(question), m.spinner.Tick)
		}

	case askDoneMsg:
		m.exchanges = append(m.exchanges, exchange{
			question: m.pending,
			answer:   msg.answer.Text,
			sources:  msg.answer.Sources,
		})
		m.pending = ""
		m.isAsking = false
		m.refreshViewport()

	case askErrMsg:
		m.exchanges = append(m.exchanges, exchange{
			question: m.pending,
			errText:  rag.UserMessage(msg.err),
		})
		m.pending = ""
		m.isAsking = false
		m.refreshViewport()

	case spinner.TickMsg:
		if m.isAsking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	var cmd tea.Cmd
	m.textArea, cmd = m.textArea.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// refreshViewport rebuilds the transcript text and scrolls to the bottom.
func (m *model) refreshViewport() {
	width := m.viewport.Width
	if width <= 0 {
		width = 80
	}

	var b strings.Builder
	for _, ex := range m.exchanges {
		b.WriteString(questionStyle.Render("You: "+ex.question) + "\n")
		if ex.errText != "" {
			b.WriteString(errorStyle.Render(util.WrapToWidth(ex.errText, width)) + "\n\n")
			continue
		}
		b.WriteString(answerStyle.Render(util.WrapToWidth(ex.answer, width)) + "\n")
		if len(ex.sources) > 0 {
			b.WriteString(sourceStyle.Render("Sources: "+strings.Join(ex.sources, ", ")) + "\n")
		}
		b.WriteString("\n")
	}
	if m.pending != "" {
		b.WriteString(questionStyle.Render("You: "+m.pending) + "\n")
	}

	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

// View implements tea.Model.
func (m *model) View() string {
	status := statusStyle.Render(fmt.Sprintf("model: %s | store: %d records | esc to quit",
		m.cfg.GenerationModel, m.pipeline.Store().Count()))
	if m.isAsking {
		status = m.spinner.View() + " thinking..."
	}

	return fmt.Sprintf("%s\n%s\n%s", m.viewport.View(), status, m.textArea.View())
}

// Run starts the chat UI and blocks until the user quits.
func Run(ctx context.Context, cfg *appconfig.Config, pipeline *rag.Pipeline) error {
	program := tea.NewProgram(initialModel(ctx, cfg, pipeline), tea.WithAltScreen())
	_, err := program.Run()
	return err
}
