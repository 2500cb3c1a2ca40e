package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

type boomMsg struct{}

// crashyModel panics on boomMsg and counts everything else.
type crashyModel struct {
	updates int
	crashed bool
}

func (m *crashyModel) Init() tea.Cmd { return nil }

func (m *crashyModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if _, ok := msg.(boomMsg); ok {
		m.crashed = true
		panic("update exploded")
	}
	m.updates++
	return m, nil
}

func (m *crashyModel) View() string {
	if m.crashed {
		panic("view exploded")
	}
	return "all good"
}

func TestSafeModelRecoversUpdatePanic(t *testing.T) {
	inner := &crashyModel{}
	safe := NewSafeModel(inner, zap.NewNop())

	model, cmd := safe.Update(boomMsg{})
	if cmd != nil {
		t.Errorf("expected nil cmd after recovered panic, got %T", cmd())
	}
	if model != safe {
		t.Error("expected wrapper to stay in place after panic")
	}

	// The session keeps running after the recovered panic.
	inner.crashed = false
	safe.Update(tea.KeyMsg{Type: tea.KeyTab})
	if inner.updates != 1 {
		t.Errorf("expected later updates to reach inner model, got %d", inner.updates)
	}
}

func TestSafeModelRecoversViewPanic(t *testing.T) {
	inner := &crashyModel{crashed: true}
	safe := NewSafeModel(inner, zap.NewNop())

	view := safe.View()
	if !strings.Contains(view, "Render error") {
		t.Errorf("expected fallback view, got %q", view)
	}
}

func TestSafeModelDelegates(t *testing.T) {
	inner := &crashyModel{}
	safe := NewSafeModel(inner, zap.NewNop())

	if cmd := safe.Init(); cmd != nil {
		t.Error("expected nil init cmd")
	}
	safe.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if inner.updates != 1 {
		t.Errorf("expected delegated update, got %d", inner.updates)
	}
	if view := safe.View(); view != "all good" {
		t.Errorf("expected delegated view, got %q", view)
	}
}
