package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

// Asker is the part of the controller the TUI needs.
type Asker interface {
	Ask(ctx context.Context, s *session.Session, question string) session.Outcome
}

type answeredMsg struct {
	out session.Outcome
}

// Model is the Bubble Tea model for chatting with processed documents.
type Model struct {
	ctx      context.Context
	asker    Asker
	sess     *session.Session
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	summary  string
	status   string
	busy     bool
	ready    bool
}

func New(ctx context.Context, asker Asker, sess *session.Session, summary string) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask a question about your documents"
	ti.Focus()
	ti.CharLimit = 0

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		ctx:      ctx,
		asker:    asker,
		sess:     sess,
		input:    ti,
		viewport: viewport.New(0, 0),
		spinner:  sp,
		summary:  summary,
		status:   "Ready. Press Enter to ask, Ctrl+C to quit.",
	}
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, th := transcriptBoxStyle.GetFrameSize()
		_, qh := queryBoxStyle.GetFrameSize()
		reserved := 2 + 1 + qh + 1 // header, summary, status, input box
		m.viewport.Width = max(20, msg.Width-2)
		m.viewport.Height = max(3, msg.Height-reserved-th)
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD {
			return m, tea.Quit
		}
		if msg.Type == tea.KeyEnter {
			q := strings.TrimSpace(m.input.Value())
			if m.busy || q == "" {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.Reset()
			return m, tea.Batch(m.askCmd(q), m.spinner.Tick)
		}

	case answeredMsg:
		m.busy = false
		var mce *models.ModelCallError
		switch {
		case msg.out.OK():
			m.status = "Ready."
		case errors.As(msg.out.Err, &mce):
			m.status = "The last question failed."
		default:
			m.status = msg.out.Message
		}
		m.refresh()
		return m, nil

	case spinner.TickMsg:
		if !m.busy {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) askCmd(q string) tea.Cmd {
	asker, sess, ctx := m.asker, m.sess, m.ctx
	return func() tea.Msg {
		return answeredMsg{out: asker.Ask(ctx, sess, q)}
	}
}

func (m *Model) refresh() {
	m.viewport.SetContent(renderTranscript(m.sess.View().Transcript, m.viewport.Width))
	m.viewport.GotoBottom()
}

func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("Chat with multiple PDFs")
	summary := summaryStyle.Render(m.summary)
	status := statusStyle.Render(m.status)
	if m.busy {
		status = m.spinner.View() + " " + status
	}
	return header + "\n" + summary + "\n" +
		transcriptBoxStyle.Render(m.viewport.View()) + "\n" +
		queryBoxStyle.Render(m.input.View()) + "\n" + status
}

func renderTranscript(entries []models.TranscriptEntry, width int) string {
	if len(entries) == 0 {
		return "No questions yet."
	}
	w := max(10, width-2)
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case e.Role == models.RoleUser:
			b.WriteString(userStyle.Width(w).Render("You: " + e.Content))
		case e.Failed:
			b.WriteString(errorStyle.Width(w).Render(e.Content))
		default:
			b.WriteString(botStyle.Width(w).Render(e.Content))
		}
	}
	return b.String()
}

var (
	headerStyle        = lipgloss.NewStyle().Bold(true)
	summaryStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	statusStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	userStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	botStyle           = lipgloss.NewStyle()
	errorStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	transcriptBoxStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBoxStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)
