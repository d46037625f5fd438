package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hourglass/internal/core/countdown"
	"hourglass/internal/core/model"
	"hourglass/internal/core/ticker"
	"hourglass/internal/logging"
	"hourglass/internal/sound"
	"hourglass/internal/storage"
	"hourglass/resources"
)

const appName = "hourglass"

var (
	flagLoop         bool
	flagLoopLimit    int
	flagSound        bool
	flagVolume       float64
	flagQuiet        bool
	flagLogLevel     string
	flagLogFormat    string
	flagHistoryLimit int
)

var rootCmd = &cobra.Command{
	Use:   "hourglass-cli <duration>",
	Short: "run a countdown in the terminal",
	Args:  cobra.ExactArgs(1),
	Run:   runCountdown,
}

func init() {
	rootCmd.Flags().BoolVar(&flagLoop, "loop", false, "restart when the countdown completes")
	rootCmd.Flags().IntVar(&flagLoopLimit, "loop-limit", 0, "restart count when looping; 0 forever")
	rootCmd.Flags().BoolVar(&flagSound, "sound", true, "play a chime on completion")
	rootCmd.Flags().Float64Var(&flagVolume, "volume", 0.8, "chime volume between 0 and 1")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress the live countdown line")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "warn", "log level")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "console", "log format, console or json")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCountdown(cmd *cobra.Command, args []string) {
	duration, err := time.ParseDuration(args[0])
	if err != nil || duration <= 0 {
		cmd.Println("Error: duration must be positive, like 25m or 1h30m")
		os.Exit(1)
	}

	logger, err := logging.New(logging.Options{Level: flagLogLevel, Format: flagLogFormat})
	if err != nil {
		cmd.Println("Error:", err.Error())
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	limit := flagLoopLimit
	if limit <= 0 {
		limit = countdown.LoopUnbounded
	}
	config := model.TimerConfig{
		Duration:  duration,
		Loop:      flagLoop || flagLoopLimit > 0,
		LoopLimit: limit,
	}

	var player *sound.Player
	if flagSound {
		player, err = sound.NewPlayer(map[sound.Effect][]byte{
			sound.EffectComplete: resources.MustChime("complete.wav"),
			sound.EffectLoop:     resources.MustChime("loop.wav"),
		}, logger.Named("sound"))
		if err != nil {
			logger.Warn("audio unavailable", zap.Error(err))
			player = nil
		}
		player.SetVolume(flagVolume)
	}

	history, err := storage.OpenHistory(appName)
	if err != nil {
		logger.Warn("run history unavailable", zap.Error(err))
		history = nil
	} else {
		defer func() {
			_ = history.Close()
		}()
	}

	tickLoop := ticker.NewLoop(200 * time.Millisecond)
	hub := countdown.NewHub()
	timer := countdown.New(config, tickLoop, countdown.Config{
		Callback: func() { fmt.Print("\a") },
		Unit:     time.Second,
		Emitter:  hub,
		Logger:   logger.Named("countdown"),
	})

	done := make(chan struct{})
	start := time.Now()

	hub.Connect(countdown.ChannelTick, func(event countdown.Event) {
		if flagQuiet {
			return
		}
		fmt.Printf("\r%-12s", countdown.FormatDuration(event.Remaining))
	})
	hub.Connect(countdown.ChannelDidLoop, func(event countdown.Event) {
		player.Play(sound.EffectLoop)
		if flagQuiet {
			return
		}
		fmt.Printf("\rround %d done\n", event.Loops+1)
	})
	hub.Connect(countdown.ChannelCompleted, func(event countdown.Event) {
		player.Play(sound.EffectComplete)
		recordRun(logger, history, start, event, duration, true)
		fmt.Print("\rTime's up!  \n")
		close(done)
	})
	hub.Connect(countdown.ChannelStopped, func(event countdown.Event) {
		recordRun(logger, history, start, event, duration, false)
		fmt.Printf("\rstopped at %s\n", countdown.FormatDuration(event.Remaining))
		close(done)
	})

	interrupts := make(chan os.Signal, 1)
	signal.Notify(interrupts, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-interrupts
		timer.Stop()
	}()

	if !flagQuiet {
		fmt.Printf("counting down %s\n", countdown.FormatDuration(duration))
	}

	tickLoop.Start()
	defer tickLoop.Stop()
	timer.Start()

	<-done
	if player != nil {
		// speaker.Play is asynchronous; give the chime time to finish
		// before the process exits.
		time.Sleep(1200 * time.Millisecond)
	}
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
