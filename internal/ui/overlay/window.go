package overlay

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"hourglass/internal/core/countdown"
	"hourglass/internal/ui/animation"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Config defines overlay visuals.
type Config struct {
	Opacity    float64
	Fullscreen bool
	Message    string
}

// Session describes a finished countdown run.
type Session struct {
	Duration time.Duration
	Loops    int
}

// Window manages the alarm overlay shown when a countdown finishes.
type Window struct {
	app           fyne.App
	window        fyne.Window
	config        Config
	titleLabel    *canvas.Text
	messageLabel  *canvas.Text
	detailLabel   *canvas.Text
	againButton   *widget.Button
	dismissButton *widget.Button
	background    *canvas.Rectangle
	engine        *animation.Engine
	cancelCtx     context.CancelFunc
	onAgain       func()
	onDismiss     func()
}

const (
	overlayWidthFraction  = float32(0.34)
	overlayHeightFraction = float32(0.30)
	defaultScreenWidth    = float32(1920)
	defaultScreenHeight   = float32(1080)
)

type splashWindowDriver interface {
	CreateSplashWindow() fyne.Window
}

// New creates a new overlay window.
func New(app fyne.App, config Config, engine *animation.Engine) *Window {
	window := app.NewWindow("Hourglass")
	if driver, ok := app.Driver().(splashWindowDriver); ok {
		// Splash window is undecorated (no native frame/buttons).
		window = driver.CreateSplashWindow()
	}
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}
	window.SetPadded(false)

	background := canvas.NewRectangle(color.NRGBA{R: 0, G: 0, B: 0, A: alphaForIntensity(config.Opacity, 1)})

	titleLabel := canvas.NewText("Time's up!", color.NRGBA{R: 232, G: 190, B: 66, A: 255})
	titleLabel.Alignment = fyne.TextAlignCenter
	titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	titleLabel.TextSize = 46

	messageLabel := canvas.NewText(config.Message, color.NRGBA{R: 255, G: 255, B: 255, A: 255})
	messageLabel.Alignment = fyne.TextAlignCenter
	messageLabel.TextSize = 21

	detailLabel := canvas.NewText("", color.NRGBA{R: 220, G: 220, B: 220, A: 255})
	detailLabel.Alignment = fyne.TextAlignCenter
	detailLabel.TextSize = 16

	againButton := widget.NewButton("Go again", nil)
	dismissButton := widget.NewButton("Dismiss", nil)
	buttons := container.NewGridWithColumns(2, againButton, dismissButton)

	content := container.New(&alarmLayout{}, titleLabel, messageLabel, detailLabel, buttons)
	root := container.NewMax(background, content)

	window.SetContent(root)
	overlay := &Window{
		app:           app,
		window:        window,
		config:        config,
		titleLabel:    titleLabel,
		messageLabel:  messageLabel,
		detailLabel:   detailLabel,
		againButton:   againButton,
		dismissButton: dismissButton,
		background:    background,
		engine:        engine,
	}

	againButton.OnTapped = func() {
		if overlay.onAgain != nil {
			overlay.onAgain()
		}
	}
	dismissButton.OnTapped = func() {
		if overlay.onDismiss != nil {
			overlay.onDismiss()
		}
	}

	overlay.applyWindowMode()

	return overlay
}

// SetEngine attaches the animation engine.
func (overlay *Window) SetEngine(engine *animation.Engine) {
	overlay.engine = engine
}

// Show presents the alarm for a finished session and starts the flash
// animation.
func (overlay *Window) Show(session Session) {
	overlay.stopEngine()
	ctx, cancel := context.WithCancel(context.Background())
	overlay.cancelCtx = cancel

	overlay.setSessionUnsafe(session)
	overlay.applyWindowMode()
	overlay.window.Show()
	overlay.window.RequestFocus()
	overlay.applyNativeOpacity(alphaForIntensity(overlay.config.Opacity, 1))

	if overlay.engine != nil {
		overlay.engine.StartAlarm(ctx)
	}
}

// Hide closes the overlay and stops the animation.
func (overlay *Window) Hide() {
	overlay.stopEngine()
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(false)
	}
	overlay.window.Hide()
}

// SetOnAgain sets the restart handler.
func (overlay *Window) SetOnAgain(handler func()) {
	overlay.onAgain = handler
}

// SetOnDismiss sets the dismiss handler.
func (overlay *Window) SetOnDismiss(handler func()) {
	overlay.onDismiss = handler
}

// UpdateConfig updates overlay visuals.
func (overlay *Window) UpdateConfig(config Config) {
	overlay.config = config
	overlay.background.FillColor = color.NRGBA{R: 0, G: 0, B: 0, A: alphaForIntensity(config.Opacity, 1)}
	overlay.messageLabel.Text = config.Message
	overlay.applyWindowMode()
	canvas.Refresh(overlay.background)
	overlay.messageLabel.Refresh()
}

// SetIntensity scales the background between dim and the configured
// opacity. Driven by the animation engine.
func (overlay *Window) SetIntensity(value float64) {
	fyne.Do(func() {
		overlay.background.FillColor = color.NRGBA{R: 0, G: 0, B: 0, A: alphaForIntensity(overlay.config.Opacity, value)}
		canvas.Refresh(overlay.background)
	})
}

func (overlay *Window) setSessionUnsafe(session Session) {
	detail := countdown.FormatDuration(session.Duration)
	if session.Loops > 0 {
		detail = fmt.Sprintf("%d runs of %s", session.Loops+1, detail)
	}
	overlay.detailLabel.Text = detail
	overlay.detailLabel.Refresh()
}

func (overlay *Window) stopEngine() {
	if overlay.engine != nil {
		overlay.engine.Stop()
	}
	if overlay.cancelCtx != nil {
		overlay.cancelCtx()
		overlay.cancelCtx = nil
	}
}

func (overlay *Window) applyWindowMode() {
	if overlay.config.Fullscreen {
		overlay.window.SetFullScreen(true)
		return
	}
	overlay.window.SetFullScreen(false)
	overlay.resizeToScreenFraction()
}

func (overlay *Window) resizeToScreenFraction() {
	screenSize := fyne.NewSize(defaultScreenWidth, defaultScreenHeight)
	canvasSize := overlay.window.Canvas().Size()
	// Canvas size can be reused as a proxy for monitor size when it is clearly screen-like.
	if canvasSize.Width >= 1024 && canvasSize.Height >= 720 {
		screenSize = canvasSize
	}

	width := screenSize.Width * overlayWidthFraction
	height := screenSize.Height * overlayHeightFraction
	minSize := overlay.window.Content().MinSize()
	if width < minSize.Width {
		width = minSize.Width
	}
	if height < minSize.Height {
		height = minSize.Height
	}

	overlay.window.Resize(fyne.NewSize(width, height))
	overlay.window.CenterOnScreen()
}

func alphaForIntensity(opacity, intensity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}
	return uint8(opacity * intensity * 255)
}

type alarmLayout struct{}

const (
	alarmGap      = float32(14)
	alarmTitleGap = float32(26)
)

func (layout *alarmLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 4 {
		return
	}
	title := objects[0]
	message := objects[1]
	detail := objects[2]
	buttons := objects[3]

	titleSize := title.MinSize()
	messageSize := message.MinSize()
	detailSize := detail.MinSize()
	buttonsSize := buttons.MinSize()

	buttonsWidth := buttonsSize.Width * 1.6
	if buttonsWidth > size.Width {
		buttonsWidth = size.Width
	}

	total := titleSize.Height + alarmTitleGap + messageSize.Height + alarmGap +
		detailSize.Height + alarmTitleGap + buttonsSize.Height
	y := (size.Height - total) / 2
	if y < 0 {
		y = 0
	}

	place := func(object fyne.CanvasObject, width, height float32) {
		x := (size.Width - width) / 2
		if x < 0 {
			x = 0
		}
		object.Move(fyne.NewPos(x, y))
		object.Resize(fyne.NewSize(width, height))
		y += height
	}

	place(title, size.Width, titleSize.Height)
	y += alarmTitleGap
	place(message, size.Width, messageSize.Height)
	y += alarmGap
	place(detail, size.Width, detailSize.Height)
	y += alarmTitleGap
	place(buttons, buttonsWidth, buttonsSize.Height)
}

func (layout *alarmLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 4 {
		return fyne.NewSize(0, 0)
	}
	width := float32(0)
	height := float32(0)
	for _, object := range objects {
		objectSize := object.MinSize()
		if objectSize.Width > width {
			width = objectSize.Width
		}
		height += objectSize.Height
	}
	return fyne.NewSize(width+40, height+alarmGap*2+alarmTitleGap*2+20)
}
