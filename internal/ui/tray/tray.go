package tray

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnStart       func()
	OnTogglePause func()
	OnStop        func()
	OnReset       func()
	OnExtend      func(time.Duration)
	OnPauseFor    func(time.Duration)
	OnPreferences func()
	OnQuit        func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	summaryItem *fyne.MenuItem
	startItem   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	stopItem    *fyne.MenuItem
	resetItem   *fyne.MenuItem
	extendItem  *fyne.MenuItem
	pauseFor    *fyne.MenuItem
	callbacks   Callbacks
	running     bool
	paused      bool
	statusLabel string
}

// New creates a tray manager with the provided callbacks.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:       app,
		callbacks: callbacks,
	}

	manager.statusItem = fyne.NewMenuItem("Status: idle", nil)
	manager.statusItem.Disabled = true

	manager.summaryItem = fyne.NewMenuItem("Session: not set", nil)
	manager.summaryItem.Disabled = true

	manager.startItem = fyne.NewMenuItem("Start", func() {
		if manager.callbacks.OnStart != nil {
			manager.callbacks.OnStart()
		}
	})

	manager.pauseItem = fyne.NewMenuItem("Pause", func() {
		if manager.callbacks.OnTogglePause != nil {
			manager.callbacks.OnTogglePause()
		}
	})
	manager.pauseItem.Disabled = true

	manager.stopItem = fyne.NewMenuItem("Stop", func() {
		if manager.callbacks.OnStop != nil {
			manager.callbacks.OnStop()
		}
	})
	manager.stopItem.Disabled = true

	manager.resetItem = fyne.NewMenuItem("Reset", func() {
		if manager.callbacks.OnReset != nil {
			manager.callbacks.OnReset()
		}
	})
	manager.resetItem.Disabled = true

	manager.extendItem = fyne.NewMenuItem("Add a minute", func() {
		if manager.callbacks.OnExtend != nil {
			manager.callbacks.OnExtend(time.Minute)
		}
	})
	manager.extendItem.Disabled = true

	manager.pauseFor = fyne.NewMenuItem("Pause for...", nil)
	manager.pauseFor.ChildMenu = fyne.NewMenu("", fyne.NewMenuItem("5 minutes", func() {
		if manager.callbacks.OnPauseFor != nil {
			manager.callbacks.OnPauseFor(5 * time.Minute)
		}
	}), fyne.NewMenuItem("15 minutes", func() {
		if manager.callbacks.OnPauseFor != nil {
			manager.callbacks.OnPauseFor(15 * time.Minute)
		}
	}), fyne.NewMenuItem("30 minutes", func() {
		if manager.callbacks.OnPauseFor != nil {
			manager.callbacks.OnPauseFor(30 * time.Minute)
		}
	}), fyne.NewMenuItem("60 minutes", func() {
		if manager.callbacks.OnPauseFor != nil {
			manager.callbacks.OnPauseFor(60 * time.Minute)
		}
	}))
	manager.pauseFor.Disabled = true

	manager.refreshMenu()

	return manager
}

// SetIcon updates the tray icon.
func (manager *Manager) SetIcon(resource fyne.Resource) {
	if manager.app != nil && resource != nil {
		manager.app.SetSystemTrayIcon(resource)
	}
}

// SetStatus updates the status label.
func (manager *Manager) SetStatus(status string) {
	manager.statusLabel = status
	manager.refreshStatus()
}

// SetSummary updates the session description line.
func (manager *Manager) SetSummary(summary string) {
	manager.summaryItem.Label = fmt.Sprintf("Session: %s", summary)
	manager.refreshMenu()
}

// SetRunning updates the running state.
func (manager *Manager) SetRunning(running bool) {
	manager.running = running
	if running {
		manager.paused = false
	}
	manager.updateItems()
	manager.refreshStatus()
}

// SetPaused updates the pause state.
func (manager *Manager) SetPaused(paused bool) {
	manager.paused = paused
	manager.updateItems()
	manager.refreshStatus()
}

func (manager *Manager) updateItems() {
	active := manager.running || manager.paused
	manager.startItem.Disabled = active
	manager.pauseItem.Disabled = !active
	manager.stopItem.Disabled = !active
	manager.resetItem.Disabled = !active
	manager.extendItem.Disabled = !active
	manager.pauseFor.Disabled = !manager.running
	if manager.paused {
		manager.pauseItem.Label = "Resume"
	} else {
		manager.pauseItem.Label = "Pause"
	}
}

func (manager *Manager) refreshStatus() {
	status := manager.statusLabel
	if manager.paused {
		status = fmt.Sprintf("%s (paused)", status)
	}
	manager.statusItem.Label = fmt.Sprintf("Status: %s", status)
	manager.refreshMenu()
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(fyne.NewMenu("Hourglass",
			manager.statusItem,
			manager.summaryItem,
			manager.startItem,
			manager.pauseItem,
			manager.pauseFor,
			manager.extendItem,
			manager.stopItem,
			manager.resetItem,
			fyne.NewMenuItem("Preferences", func() {
				if manager.callbacks.OnPreferences != nil {
					manager.callbacks.OnPreferences()
				}
			}),
			fyne.NewMenuItem("Quit", func() {
				if manager.callbacks.OnQuit != nil {
					manager.callbacks.OnQuit()
				}
			}),
		))
	}
}
