package tui

import (
	"context"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

type stubAsker struct {
	calls []string
	out   session.Outcome
}

func (s *stubAsker) Ask(ctx context.Context, sess *session.Session, question string) session.Outcome {
	s.calls = append(s.calls, question)
	return s.out
}

func newModel(t *testing.T, asker Asker) Model {
	t.Helper()
	ctrl := session.NewControllerWith(nil, nil, nil, 1)
	sess, err := ctrl.NewSession()
	if err != nil {
		t.Fatal(err)
	}
	m := New(context.Background(), asker, sess, "1 document, 3 chunks")
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return updated.(Model)
}

func runAsk(t *testing.T, cmd tea.Cmd) answeredMsg {
	t.Helper()
	if cmd == nil {
		t.Fatal("no command returned")
	}
	batch, ok := cmd().(tea.BatchMsg)
	if !ok {
		t.Fatal("expected a batch of commands")
	}
	for _, c := range batch {
		if c == nil {
			continue
		}
		if msg, ok := c().(answeredMsg); ok {
			return msg
		}
	}
	t.Fatal("ask command not found in batch")
	return answeredMsg{}
}

func TestViewBeforeResize(t *testing.T) {
	m := New(context.Background(), &stubAsker{}, nil, "")
	if m.View() != "Loading..." {
		t.Errorf("view = %q", m.View())
	}
}

func TestEnterAsksOnce(t *testing.T) {
	asker := &stubAsker{out: session.Outcome{Kind: session.OutcomeSuccess}}
	m := newModel(t, asker)
	m.input.SetValue("  what is covered?  ")

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if !m.busy {
		t.Fatal("model not busy after enter")
	}
	if m.input.Value() != "" {
		t.Errorf("input not cleared: %q", m.input.Value())
	}

	// a second enter while busy is ignored
	m.input.SetValue("another")
	if _, again := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Error("second question accepted while busy")
	}

	msg := runAsk(t, cmd)
	if len(asker.calls) != 1 || asker.calls[0] != "what is covered?" {
		t.Errorf("calls = %q", asker.calls)
	}
	updated, _ = m.Update(msg)
	m = updated.(Model)
	if m.busy || m.status != "Ready." {
		t.Errorf("busy = %v, status = %q", m.busy, m.status)
	}
}

func TestEmptyQuestionIgnored(t *testing.T) {
	asker := &stubAsker{}
	m := newModel(t, asker)
	m.input.SetValue("   ")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil || updated.(Model).busy {
		t.Error("empty question submitted")
	}
}

func TestNotReadyStatus(t *testing.T) {
	asker := &stubAsker{out: session.Outcome{Kind: session.OutcomeNotReady, Message: models.MsgNotProcessed}}
	m := newModel(t, asker)
	m.input.SetValue("q?")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	updated, _ = m.Update(runAsk(t, cmd))
	m = updated.(Model)
	if m.status != models.MsgNotProcessed {
		t.Errorf("status = %q", m.status)
	}
	if !strings.Contains(m.View(), models.MsgNotProcessed) {
		t.Error("status not rendered")
	}
}

func TestCtrlCQuits(t *testing.T) {
	m := newModel(t, &stubAsker{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("no quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected quit message")
	}
}

func TestRenderTranscript(t *testing.T) {
	out := renderTranscript([]models.TranscriptEntry{
		{Role: models.RoleUser, Content: "How many days?"},
		{Role: models.RoleAssistant, Content: "Twenty."},
		{Role: models.RoleUser, Content: "And sick leave?"},
		{Role: models.RoleAssistant, Content: "Sorry, I encountered an error: timeout", Failed: true},
	}, 80)
	for _, want := range []string{"You: How many days?", "Twenty.", "timeout"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in %q", want, out)
		}
	}
	if renderTranscript(nil, 80) != "No questions yet." {
		t.Error("empty transcript placeholder missing")
	}
}
