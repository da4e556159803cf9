// Package tray provides a system tray menu for tailorcam.
package tray

import (
	"strconv"
	"sync"

	"github.com/getlantern/systray"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle func(enabled bool)
	onOpen   func()
	onQuit   func()
	enabled  bool
	height   string
	mu       sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuLast   *systray.MenuItem
	menuHeight *systray.MenuItem
}

// New creates a new Tray instance with measuring enabled by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		height:  HeightTitle(0),
	}
}

// OnToggle sets the callback run when measuring is switched on or off.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnOpen sets the callback run when the browser menu item is clicked.
func (t *Tray) OnOpen(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onOpen = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray and makes Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

func (t *Tray) onReady() {
	systray.SetTitle("Tailorcam")
	systray.SetTooltip("Tailorcam body measurements")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.enabled), "Toggle measuring")
	systray.AddSeparator()

	t.menuLast = systray.AddMenuItem("Last: none", "Latest measurement")
	t.menuLast.Disable()
	t.menuHeight = systray.AddMenuItem(t.height, "Reference height")
	t.menuHeight.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuOpen := systray.AddMenuItem("Open in Browser...", "Open the measuring page")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Tailorcam")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuOpen.ClickedCh:
				t.handleOpen()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

func toggleTitle(enabled bool) string {
	if enabled {
		return "● Measuring"
	}
	return "○ Paused"
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(enabled))
	}
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

func (t *Tray) handleOpen() {
	t.mu.RLock()
	callback := t.onOpen
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// LastTitle formats the menu line for the latest measurement summary.
func LastTitle(shoulder, length string) string {
	if shoulder == "" {
		return "Last: none"
	}
	return "Last: " + shoulder + " shoulders, " + length + " length"
}

// SetLast updates the latest measurement line in the menu.
func (t *Tray) SetLast(shoulder, length string) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.menuLast != nil {
		t.menuLast.SetTitle(LastTitle(shoulder, length))
	}
}

// HeightTitle formats the menu line for the reference height.
func HeightTitle(cm float64) string {
	if !(cm > 0) {
		return "Height: -"
	}
	return "Height: " + strconv.FormatFloat(cm, 'g', -1, 64) + " cm"
}

// SetHeight updates the reference height line in the menu.
// Values set before the tray is ready are shown once the menu is built.
func (t *Tray) SetHeight(cm float64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.height = HeightTitle(cm)
	if t.menuHeight != nil {
		t.menuHeight.SetTitle(t.height)
	}
}

// HeightText returns the reference height line as it is or will be shown.
func (t *Tray) HeightText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.height
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
