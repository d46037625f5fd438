package preferences

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"
)

// Window handles the preferences UI.
type Window struct {
	window      fyne.Window
	settings    Settings
	onSave      func(Settings)
	labels      map[string]*widget.Label
	durationMin *widget.Entry
	durationSec *widget.Entry
	loopCheck   *widget.Check
	loopLimit   *widget.Entry
	idleCheck   *widget.Check
	idleAfter   *widget.Entry
	soundCheck  *widget.Check
	volume      *widget.Slider
	opacity     *widget.Slider
	fullscreen  *widget.Check
	autostart   *widget.Check
}

// New creates a preferences window.
func New(app fyne.App, settings Settings, onSave func(Settings)) *Window {
	window := app.NewWindow("Hourglass Settings")

	durationMin := widget.NewEntry()
	durationSec := widget.NewEntry()
	loopLimit := widget.NewEntry()
	idleAfter := widget.NewEntry()

	durationMin.SetText(fmt.Sprintf("%d", int(settings.Duration.Minutes())))
	durationSec.SetText(fmt.Sprintf("%d", int(settings.Duration.Seconds())%60))
	loopLimit.SetText(fmt.Sprintf("%d", settings.LoopLimit))
	idleAfter.SetText(fmt.Sprintf("%d", int(settings.IdlePauseAfter.Minutes())))

	loopCheck := widget.NewCheck("Repeat when finished", nil)
	loopCheck.SetChecked(settings.Loop)

	idleCheck := widget.NewCheck("Pause when away", nil)
	idleCheck.SetChecked(settings.IdlePauseEnabled)

	soundCheck := widget.NewCheck("Play chimes", nil)
	soundCheck.SetChecked(settings.SoundEnabled)

	volume := widget.NewSlider(0, 1)
	volume.Value = settings.Volume
	volume.Step = 0.05

	opacity := widget.NewSlider(0.7, 0.95)
	opacity.Value = settings.OverlayOpacity
	opacity.Step = 0.01

	fullscreen := widget.NewCheck("Fullscreen alarm", nil)
	fullscreen.SetChecked(settings.Fullscreen)

	autostart := widget.NewCheck("Start with the system", nil)
	autostart.SetChecked(settings.Autostart)

	labels := map[string]*widget.Label{
		"durationMin": widget.NewLabel("min"),
		"durationSec": widget.NewLabel("sec"),
		"loopLimit":   widget.NewLabel("times (0 = forever)"),
		"idleAfter":   widget.NewLabel("min"),
	}

	form := container.NewVBox(
		widget.NewLabelWithStyle("Countdown", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		container.NewHBox(widget.NewLabel("Duration"), durationMin, labels["durationMin"], durationSec, labels["durationSec"]),
		loopCheck,
		container.NewHBox(widget.NewLabel("Repeat"), loopLimit, labels["loopLimit"]),
		idleCheck,
		container.NewHBox(widget.NewLabel("Pause after"), idleAfter, labels["idleAfter"]),
		widget.NewLabelWithStyle("Alarm", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		soundCheck,
		widget.NewLabel("Chime volume"),
		volume,
		widget.NewLabel("Overlay opacity"),
		opacity,
		fullscreen,
		widget.NewLabelWithStyle("System", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		autostart,
	)

	saveButton := widget.NewButton("Save", nil)
	cancelButton := widget.NewButton("Cancel", nil)
	buttons := container.NewHBox(saveButton, layout.NewSpacer(), cancelButton)

	content := container.NewBorder(nil, buttons, nil, nil, form)
	window.SetContent(content)
	window.Resize(fyne.NewSize(440, 560))

	prefs := &Window{
		window:      window,
		settings:    settings,
		onSave:      onSave,
		labels:      labels,
		durationMin: durationMin,
		durationSec: durationSec,
		loopCheck:   loopCheck,
		loopLimit:   loopLimit,
		idleCheck:   idleCheck,
		idleAfter:   idleAfter,
		soundCheck:  soundCheck,
		volume:      volume,
		opacity:     opacity,
		fullscreen:  fullscreen,
		autostart:   autostart,
	}

	saveButton.OnTapped = prefs.handleSave
	cancelButton.OnTapped = func() {
		window.Hide()
	}
	window.SetCloseIntercept(window.Hide)

	return prefs
}

// Show displays the preferences window.
func (prefs *Window) Show() {
	prefs.window.Show()
	prefs.window.RequestFocus()
}

// UpdateSettings replaces window values.
func (prefs *Window) UpdateSettings(settings Settings) {
	prefs.settings = settings
	prefs.durationMin.SetText(fmt.Sprintf("%d", int(settings.Duration.Minutes())))
	prefs.durationSec.SetText(fmt.Sprintf("%d", int(settings.Duration.Seconds())%60))
	prefs.loopCheck.SetChecked(settings.Loop)
	prefs.loopLimit.SetText(fmt.Sprintf("%d", settings.LoopLimit))
	prefs.idleCheck.SetChecked(settings.IdlePauseEnabled)
	prefs.idleAfter.SetText(fmt.Sprintf("%d", int(settings.IdlePauseAfter.Minutes())))
	prefs.soundCheck.SetChecked(settings.SoundEnabled)
	prefs.volume.Value = settings.Volume
	prefs.volume.Refresh()
	prefs.opacity.Value = settings.OverlayOpacity
	prefs.opacity.Refresh()
	prefs.fullscreen.SetChecked(settings.Fullscreen)
	prefs.autostart.SetChecked(settings.Autostart)
}

func (prefs *Window) handleSave() {
	settings := prefs.settings

	minutes, minutesOK := parseNonNegativeInt(prefs.durationMin.Text)
	seconds, secondsOK := parseNonNegativeInt(prefs.durationSec.Text)
	if minutesOK && secondsOK {
		combined := time.Duration(minutes)*time.Minute + time.Duration(seconds)*time.Second
		if combined > 0 {
			settings.Duration = combined
		}
	}

	if limit, ok := parseNonNegativeInt(prefs.loopLimit.Text); ok {
		settings.LoopLimit = limit
	}
	if minutes, ok := parsePositiveInt(prefs.idleAfter.Text); ok {
		settings.IdlePauseAfter = time.Duration(minutes) * time.Minute
	}

	settings.Loop = prefs.loopCheck.Checked
	settings.IdlePauseEnabled = prefs.idleCheck.Checked
	settings.SoundEnabled = prefs.soundCheck.Checked
	settings.Volume = prefs.volume.Value
	settings.OverlayOpacity = prefs.opacity.Value
	settings.Fullscreen = prefs.fullscreen.Checked
	settings.Autostart = prefs.autostart.Checked

	prefs.settings = settings
	if prefs.onSave != nil {
		prefs.onSave(settings)
	}
	prefs.window.Hide()
}

func parsePositiveInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return 0, false
	}
	return parsed, true
}

func parseNonNegativeInt(value string) (int, bool) {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 0 {
		return 0, false
	}
	return parsed, true
}
