package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/EternalUpdate/solfege-tuner/internal/tuner"
)

type fakeController struct {
	bcast    *tuner.Broadcaster
	root     string
	started  bool
	startErr error
}

func newFakeController() *fakeController {
	return &fakeController{bcast: tuner.NewBroadcaster(), root: "C"}
}

func (f *fakeController) Start() error {
	if f.startErr != nil {
		return f.startErr
	}
	f.started = true
	return nil
}

func (f *fakeController) Stop() error {
	f.started = false
	return nil
}

func (f *fakeController) SetRoot(root string) error {
	f.root = root
	return nil
}

func (f *fakeController) Root() string                  { return f.root }
func (f *fakeController) Subscribe() *tuner.Listener    { return f.bcast.Subscribe() }
func (f *fakeController) Unsubscribe(l *tuner.Listener) { f.bcast.Unsubscribe(l) }

func key(s string) tea.KeyMsg {
	if s == " " {
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestModelSpaceTogglesCapture(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(ctrl)

	next, _ := m.Update(key(" "))
	m = next.(Model)
	if !ctrl.started {
		t.Fatal("space did not start capture")
	}

	next, _ = m.Update(key(" "))
	m = next.(Model)
	if ctrl.started {
		t.Fatal("second space did not stop capture")
	}
}

func TestModelRootCycling(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(ctrl)

	next, _ := m.Update(key("l"))
	m = next.(Model)
	if ctrl.root != "Db" {
		t.Errorf("root after right = %q, want Db", ctrl.root)
	}

	next, _ = m.Update(key("h"))
	m = next.(Model)
	next, _ = m.Update(key("h"))
	m = next.(Model)
	if ctrl.root != "B" {
		t.Errorf("root after wrapping left = %q, want B", ctrl.root)
	}
}

func TestModelDisplaysDetection(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(ctrl)

	ev := tuner.Event{State: tuner.DetectionState{
		Pitch:    "261.63",
		Note:     "C4",
		Syllable: "do",
		Active:   true,
	}}
	next, cmd := m.Update(EventMsg(ev))
	m = next.(Model)
	if cmd == nil {
		t.Error("event handling did not re-arm the listener")
	}

	view := m.View()
	for _, want := range []string{"do", "C4", "261.63"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestModelShowsCaptureError(t *testing.T) {
	ctrl := newFakeController()
	m := NewModel(ctrl)

	next, _ := m.Update(EventMsg(tuner.Event{Err: errFake}))
	m = next.(Model)

	if !strings.Contains(m.View(), "Microphone unavailable") {
		t.Error("view missing capture error banner")
	}
}

var errFake = errString("boom")

type errString string

func (e errString) Error() string { return string(e) }
