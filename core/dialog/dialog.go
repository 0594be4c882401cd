package dialog

import (
	"sync"

	"github.com/pkg/errors"
)

// ErrUnknownDialog is returned for ids no dialog was registered under.
var ErrUnknownDialog = errors.New("unknown dialog")

type (
	// Controller opens and closes dialogs by id; components get one injected instead of looking dialogs up themselves.
	Controller interface {
		Show(id string) error
		Hide(id string) error
	}

	Dialog interface {
		Open() error
		Close()
	}

	// Func adapts a plain function into a Dialog with nothing to close.
	Func func() error
)

func (fn Func) Open() error { return fn() }

func (Func) Close() {}

var _ Controller = (*Manager)(nil)

// Manager is the Controller backed by a registry of dialogs.
type Manager struct {
	mu      sync.Mutex
	dialogs map[string]Dialog
	open    map[string]bool
}

func NewManager() *Manager {
	return &Manager{
		dialogs: make(map[string]Dialog),
		open:    make(map[string]bool),
	}
}

// Register adds (or replaces) the dialog known as id.
func (m *Manager) Register(id string, d Dialog) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dialogs[id] = d
}

// Show opens the dialog; showing an open dialog does nothing.
func (m *Manager) Show(id string) error {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(ErrUnknownDialog, "showing %q", id)
	}
	if m.open[id] {
		m.mu.Unlock()
		return nil
	}
	m.open[id] = true
	m.mu.Unlock()

	if err := d.Open(); err != nil {
		m.mu.Lock()
		delete(m.open, id)
		m.mu.Unlock()
		return errors.Wrapf(err, "opening %q", id)
	}
	return nil
}

// Hide closes the dialog; hiding a closed dialog does nothing.
func (m *Manager) Hide(id string) error {
	m.mu.Lock()
	d, ok := m.dialogs[id]
	if !ok {
		m.mu.Unlock()
		return errors.Wrapf(ErrUnknownDialog, "hiding %q", id)
	}
	wasOpen := m.open[id]
	delete(m.open, id)
	m.mu.Unlock()

	if wasOpen {
		d.Close()
	}
	return nil
}

func (m *Manager) IsOpen(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[id]
}
