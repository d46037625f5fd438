package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"hourglass/internal/core/countdown"
	"hourglass/internal/core/ticker"
	"hourglass/internal/idlepause"
	"hourglass/internal/logging"
	"hourglass/internal/platform"
	"hourglass/internal/sound"
	"hourglass/internal/storage"
	"hourglass/internal/ui/animation"
	"hourglass/internal/ui/overlay"
	"hourglass/internal/ui/preferences"
	"hourglass/internal/ui/tray"
	"hourglass/resources"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"go.uber.org/zap"
)

const (
	appName      = "hourglass"
	displayName  = "Hourglass"
	alarmMessage = "Your countdown has finished"
)

func main() {
	settings, settingsErr := storage.LoadSettings(appName)
	if settingsErr != nil {
		settings = preferences.DefaultSettings()
	}

	logger, err := logging.New(logging.Options{Level: settings.LogLevel, Format: settings.LogFormat})
	if err != nil {
		log.Printf("logger config: %v, falling back to defaults", err)
		logger, err = logging.New(logging.Options{})
		if err != nil {
			log.Fatalf("build logger: %v", err)
		}
	}
	defer func() {
		_ = logger.Sync()
	}()

	if settingsErr != nil {
		logger.Warn("load settings, using defaults", zap.Error(settingsErr))
	}

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		logger.Warn("another instance is already running")
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	history, err := storage.OpenHistory(appName)
	if err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
		history = nil
	} else {
		defer func() {
			_ = history.Close()
		}()
	}

	fyneApp := app.NewWithID("com.hourglass.app")
	fyneApp.SetIcon(resources.MustLogo("hourglass.png"))
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow(displayName)
	trayWindow.SetContent(widget.NewLabel("Hourglass is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	tickLoop := ticker.NewLoop(500 * time.Millisecond)
	hub := countdown.NewHub()
	timer := countdown.New(settings.TimerConfig(), tickLoop, countdown.Config{
		Callback: func() { logger.Debug("session ended") },
		Unit:     time.Second,
		Emitter:  hub,
		Logger:   logger.Named("countdown"),
	})

	idleWatcher := idlepause.New(timer, platform.NewIdleProvider(), settings.IdlePauseConfig(), logger.Named("idlepause"))
	idleWatcher.Attach(tickLoop)
	defer idleWatcher.Detach()

	player, err := sound.NewPlayer(map[sound.Effect][]byte{
		sound.EffectComplete: resources.MustChime("complete.wav"),
		sound.EffectLoop:     resources.MustChime("loop.wav"),
	}, logger.Named("sound"))
	if err != nil {
		logger.Warn("audio unavailable", zap.Error(err))
		player = nil
	}
	player.SetEnabled(settings.SoundEnabled)
	player.SetVolume(settings.Volume)

	overlayWindow := overlay.New(fyneApp, overlay.Config{
		Opacity:    settings.OverlayOpacity,
		Fullscreen: settings.Fullscreen,
		Message:    alarmMessage,
	}, nil)
	engine := animation.New(animation.DefaultConfig(), overlayWindow.SetIntensity)
	overlayWindow.SetEngine(engine)

	overlayWindow.SetOnAgain(func() {
		overlayWindow.Hide()
		timer.Reset()
		timer.Start()
	})
	overlayWindow.SetOnDismiss(func() {
		overlayWindow.Hide()
	})

	activeIcon := resources.MustLogo("hourglass.png")
	pausedIcon := resources.MustLogo("hourglass_paused.png")

	var trayManager *tray.Manager

	applySettings := func(updated preferences.Settings) {
		previous := settings
		settings = updated

		if updated.TimerConfig() != previous.TimerConfig() {
			timer.UpdateConfig(updated.TimerConfig())
			if trayManager != nil {
				trayManager.SetRunning(false)
				trayManager.SetPaused(false)
				trayManager.SetStatus("idle")
				trayManager.SetIcon(activeIcon)
			}
		}
		idleWatcher.UpdateConfig(updated.IdlePauseConfig())
		player.SetEnabled(updated.SoundEnabled)
		player.SetVolume(updated.Volume)
		overlayWindow.UpdateConfig(overlay.Config{
			Opacity:    updated.OverlayOpacity,
			Fullscreen: updated.Fullscreen,
			Message:    alarmMessage,
		})
		if trayManager != nil {
			trayManager.SetSummary(summarizeSettings(updated))
		}
		if updated.Autostart != previous.Autostart {
			applyAutostart(logger, updated.Autostart)
		}
	}

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		if err := storage.SaveSettings(appName, updated); err != nil {
			logger.Warn("save settings", zap.Error(err))
		}
		applySettings(updated)
	})

	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnStart: func() {
			timer.Reset()
			timer.Start()
		},
		OnTogglePause: func() {
			switch timer.State() {
			case countdown.StatePaused:
				timer.Resume()
			case countdown.StateRunning:
				timer.Pause()
			}
		},
		OnStop: func() {
			timer.Stop()
		},
		OnReset: func() {
			timer.Reset()
			trayManager.SetRunning(false)
			trayManager.SetPaused(false)
			trayManager.SetStatus("idle")
			trayManager.SetIcon(activeIcon)
		},
		OnExtend: func(amount time.Duration) {
			timer.Add(amount)
			trayManager.SetStatus(countdown.FormatDuration(timer.Remaining()) + " left")
		},
		OnPauseFor: func(wait time.Duration) {
			timer.PauseFor(wait)
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			timer.Stop()
			fyneApp.Quit()
		},
	})
	trayManager.SetIcon(activeIcon)
	trayManager.SetSummary(summarizeSettings(settings))
	trayManager.SetStatus("idle")

	settingsWatcher, err := storage.WatchSettings(appName, logger.Named("storage"), func(updated preferences.Settings) {
		fyne.Do(func() {
			applySettings(updated)
			prefsWindow.UpdateSettings(updated)
		})
	})
	if err != nil {
		logger.Warn("settings watch unavailable", zap.Error(err))
	} else {
		defer func() {
			_ = settingsWatcher.Close()
		}()
	}

	events := hub.Watch(8)
	go func() {
		var sessionStart time.Time
		for event := range events {
			switch event.Channel {
			case countdown.ChannelStarted:
				sessionStart = event.At
				remaining := event.Remaining
				fyne.Do(func() {
					trayManager.SetRunning(true)
					trayManager.SetIcon(activeIcon)
					trayManager.SetStatus(countdown.FormatDuration(remaining) + " left")
				})
			case countdown.ChannelTick:
				remaining := event.Remaining
				fyne.Do(func() {
					trayManager.SetStatus(countdown.FormatDuration(remaining) + " left")
				})
			case countdown.ChannelPaused:
				fyne.Do(func() {
					trayManager.SetPaused(true)
					trayManager.SetIcon(pausedIcon)
				})
			case countdown.ChannelResumed:
				fyne.Do(func() {
					trayManager.SetPaused(false)
					trayManager.SetIcon(activeIcon)
				})
			case countdown.ChannelDidLoop:
				player.Play(sound.EffectLoop)
			case countdown.ChannelCompleted:
				player.Play(sound.EffectComplete)
				recordRun(logger, history, sessionStart, event, timer.Duration(), true)
				loops := event.Loops
				fyne.Do(func() {
					trayManager.SetRunning(false)
					trayManager.SetPaused(false)
					trayManager.SetStatus("finished")
					overlayWindow.Show(overlay.Session{Duration: timer.Duration(), Loops: loops})
				})
				fyneApp.SendNotification(fyne.NewNotification(displayName, "Time's up!"))
			case countdown.ChannelStopped:
				recordRun(logger, history, sessionStart, event, timer.Duration(), false)
				remaining := event.Remaining
				fyne.Do(func() {
					trayManager.SetRunning(false)
					trayManager.SetPaused(false)
					trayManager.SetIcon(activeIcon)
					trayManager.SetStatus("stopped at " + countdown.FormatDuration(remaining))
				})
			}
		}
	}()

	tickLoop.Start()
	defer tickLoop.Stop()

	if settings.Autostart {
		applyAutostart(logger, true)
	}

	prefsWindow.Show()
	logger.Info("hourglass ready", zap.Duration("duration", settings.Duration))
	fyneApp.Run()
	hub.Close()
}

func recordRun(logger *zap.Logger, history *storage.History, startedAt time.Time, event countdown.Event, original time.Duration, completed bool) {
	if history == nil {
		return
	}

	elapsed := time.Duration(event.Loops) * original
	if completed {
		elapsed += original
	} else {
		elapsed += original - event.Remaining
	}
	if elapsed < 0 {
		elapsed = 0
	}

	run := &storage.Run{
		StartedAt: startedAt,
		EndedAt:   event.At,
		Duration:  elapsed,
		Loops:     event.Loops,
		Completed: completed,
	}
	if err := history.RecordRun(run); err != nil {
		logger.Warn("record run", zap.Error(err))
	}
}

func summarizeSettings(settings preferences.Settings) string {
	summary := countdown.FormatDuration(settings.Duration)
	if !settings.Loop {
		return summary
	}
	if settings.LoopLimit <= 0 {
		return summary + ", repeating"
	}
	return fmt.Sprintf("%s, %d rounds", summary, settings.LoopLimit+1)
}

func applyAutostart(logger *zap.Logger, enable bool) {
	service := platform.NewService()
	if !enable {
		if err := service.DisableAutostart(displayName); err != nil {
			logger.Warn("disable autostart", zap.Error(err))
		}
		return
	}

	execPath, err := os.Executable()
	if err != nil {
		logger.Warn("resolve executable path", zap.Error(err))
		return
	}
	if err := service.EnableAutostart(displayName, execPath); err != nil {
		logger.Warn("enable autostart", zap.Error(err))
	}
}
