package ui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func TestModelRunsActionAndRendersDetails(t *testing.T) {
	m := model{title: "seed apply", timeout: time.Second, action: func(context.Context) ([]string, error) {
		return []string{"created roles: 3"}, nil
	}}
	if !strings.Contains(m.View(), "Running...") {
		t.Fatalf("expected running view, got %q", m.View())
	}

	msg := m.Init()()
	next, cmd := m.Update(msg)
	if cmd == nil {
		t.Fatal("expected quit command after action completes")
	}
	view := next.(model).View()
	if !strings.Contains(view, "OK") || !strings.Contains(view, "- created roles: 3") {
		t.Fatalf("unexpected view: %q", view)
	}
}

func TestModelRendersFailure(t *testing.T) {
	m := model{title: "migrate up", timeout: time.Second, action: func(context.Context) ([]string, error) {
		return nil, errors.New("db unreachable")
	}}
	next, _ := m.Update(m.Init()())
	view := next.(model).View()
	if !strings.Contains(view, "FAILED") || !strings.Contains(view, "db unreachable") {
		t.Fatalf("unexpected view: %q", view)
	}
}

func TestModelCtrlCCancels(t *testing.T) {
	m := model{title: "x"}
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit")
	}
	if !errors.Is(next.(model).err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", next.(model).err)
	}
}
