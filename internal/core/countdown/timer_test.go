package countdown

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"hourglass/internal/core/model"
	"hourglass/internal/core/ticker"
)

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (rec *recorder) Emit(event Event) {
	rec.mu.Lock()
	rec.events = append(rec.events, event)
	rec.mu.Unlock()
}

func (rec *recorder) channels() []Channel {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	out := make([]Channel, len(rec.events))
	for index, event := range rec.events {
		out[index] = event.Channel
	}
	return out
}

func (rec *recorder) byChannel(channel Channel) []Event {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	var out []Event
	for _, event := range rec.events {
		if event.Channel == channel {
			out = append(out, event)
		}
	}
	return out
}

func (rec *recorder) count(channel Channel) int {
	return len(rec.byChannel(channel))
}

func TestNew_Defaults(t *testing.T) {
	manual := ticker.NewManual()
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{})

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 3*time.Second, timer.Remaining())
	assert.Equal(t, 3*time.Second, timer.Duration())
	assert.False(t, timer.LoopEnabled())
	assert.Equal(t, 0, timer.LoopsCompleted())
}

func TestNew_LoopNormalization(t *testing.T) {
	manual := ticker.NewManual()

	zeroLimit := New(model.TimerConfig{Duration: time.Second, Loop: true, LoopLimit: 0}, manual, Config{})
	assert.False(t, zeroLimit.LoopEnabled(), "a zero limit disables looping")

	negative := New(model.TimerConfig{Duration: time.Second, Loop: true, LoopLimit: -5}, manual, Config{})
	assert.True(t, negative.LoopEnabled())
	assert.Equal(t, LoopUnbounded, negative.LoopLimit())

	bounded := New(model.TimerConfig{Duration: time.Second, Loop: true, LoopLimit: 3}, manual, Config{})
	assert.True(t, bounded.LoopEnabled())
	assert.Equal(t, 3, bounded.LoopLimit())

	loopOff := New(model.TimerConfig{Duration: time.Second, Loop: false, LoopLimit: 3}, manual, Config{})
	assert.False(t, loopOff.LoopEnabled())
}

func TestStart_BindsOnce(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	require.Equal(t, 1, manual.Attached())
	assert.Equal(t, StateRunning, timer.State())

	timer.Start()
	assert.Equal(t, 1, manual.Attached(), "second Start must not bind again")
	assert.Equal(t, 1, rec.count(ChannelStarted))

	started := rec.byChannel(ChannelStarted)
	assert.Equal(t, 3*time.Second, started[0].Remaining)
}

func TestTickSequence_CompletesOnTickAfterZero(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	callbacks := 0
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{
		Emitter:  rec,
		Callback: func() { callbacks++ },
	})

	timer.Start()
	manual.Advance(time.Second)
	manual.Advance(time.Second)
	manual.Advance(time.Second)

	assert.Equal(t, time.Duration(0), timer.Remaining())
	assert.Equal(t, StateRunning, timer.State(), "zero remaining is not yet completion")
	assert.Equal(t, 0, callbacks)

	manual.Advance(time.Second)

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 0, manual.Attached(), "completion releases the binding")
	assert.Equal(t, 1, callbacks)
	assert.Equal(t, []Channel{ChannelStarted, ChannelTick, ChannelTick, ChannelTick, ChannelCompleted}, rec.channels())

	ticks := rec.byChannel(ChannelTick)
	require.Len(t, ticks, 3)
	assert.Equal(t, 2*time.Second, ticks[0].Remaining)
	assert.Equal(t, time.Second, ticks[1].Remaining)
	assert.Equal(t, time.Duration(0), ticks[2].Remaining)
}

func TestTick_CarriesSubUnitRemainders(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 5 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	manual.Advance(2500 * time.Millisecond)
	assert.Equal(t, 3*time.Second, timer.Remaining())
	assert.Equal(t, 2, rec.count(ChannelTick))

	manual.Advance(2500 * time.Millisecond)
	assert.Equal(t, time.Duration(0), timer.Remaining())
	assert.Equal(t, 5, rec.count(ChannelTick), "the carried half second pays for a third unit")
}

func TestLoop_BoundedRestarts(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	callbacks := 0
	timer := New(model.TimerConfig{Duration: 2 * time.Second, Loop: true, LoopLimit: 2}, manual, Config{
		Emitter:  rec,
		Callback: func() { callbacks++ },
	})

	timer.Start()
	runToZero := func() {
		manual.Advance(time.Second)
		manual.Advance(time.Second)
	}

	runToZero()
	manual.Advance(time.Second)
	assert.Equal(t, 2*time.Second, timer.Remaining(), "first wrap restores the full duration")
	assert.Equal(t, 1, timer.LoopsCompleted())
	assert.Equal(t, 1, callbacks)

	runToZero()
	manual.Advance(time.Second)
	assert.Equal(t, 2, timer.LoopsCompleted())
	assert.Equal(t, 2, callbacks)

	runToZero()
	manual.Advance(time.Second)
	assert.Equal(t, StateIdle, timer.State(), "the limit is exhausted")
	assert.Equal(t, 3, callbacks)

	loops := rec.byChannel(ChannelDidLoop)
	require.Len(t, loops, 2)
	assert.Equal(t, 0, loops[0].Loops, "payload counts loops completed before the wrap")
	assert.Equal(t, 1, loops[1].Loops)

	completed := rec.byChannel(ChannelCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, 2, completed[0].Loops)
}

func TestLoop_Unbounded(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: time.Second, Loop: true, LoopLimit: LoopUnbounded}, manual, Config{Emitter: rec})

	timer.Start()
	for cycle := 0; cycle < 5; cycle++ {
		manual.Advance(time.Second)
		manual.Advance(time.Second)
	}

	assert.Equal(t, StateRunning, timer.State())
	assert.Equal(t, 5, rec.count(ChannelDidLoop))
	assert.Equal(t, 0, rec.count(ChannelCompleted))
}

func TestPauseResume(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	manual.Advance(time.Second)
	timer.Pause()
	assert.Equal(t, StatePaused, timer.State())

	manual.Advance(5 * time.Second)
	assert.Equal(t, 2*time.Second, timer.Remaining(), "ticks are ignored while paused")
	assert.Equal(t, 1, manual.Attached(), "pausing keeps the binding")

	timer.Resume()
	assert.Equal(t, StateRunning, timer.State())
	manual.Advance(time.Second)
	assert.Equal(t, time.Second, timer.Remaining())

	assert.Equal(t, 1, rec.count(ChannelPaused))
	assert.Equal(t, 1, rec.count(ChannelResumed))
}

func TestPause_BeforeStart(t *testing.T) {
	manual := ticker.NewManual()
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{})

	timer.Pause()
	assert.Equal(t, StatePaused, timer.State())

	timer.Resume()
	assert.Equal(t, StateIdle, timer.State(), "resuming a never-started timer does not run it")
}

func TestPauseFor_AutoResumes(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	timer.PauseFor(30 * time.Millisecond)
	assert.Equal(t, StatePaused, timer.State())

	require.Eventually(t, func() bool {
		return timer.State() == StateRunning
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, 1, rec.count(ChannelPaused))
	assert.Equal(t, 1, rec.count(ChannelResumed))
}

func TestPauseFor_Guards(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.PauseFor(10 * time.Millisecond)
	assert.Equal(t, StateIdle, timer.State(), "PauseFor needs a running timer")

	timer.Start()
	timer.PauseFor(0)
	assert.Equal(t, StateRunning, timer.State(), "non-positive waits are ignored")

	timer.Pause()
	timer.PauseFor(10 * time.Millisecond)
	assert.Equal(t, 1, rec.count(ChannelPaused), "PauseFor on a paused timer is a no-op")
}

func TestPauseFor_ManualResumeCancelsDeferred(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	timer.PauseFor(50 * time.Millisecond)
	timer.Resume()
	assert.Equal(t, StateRunning, timer.State())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count(ChannelResumed), "the deferred resume must not fire a second event")
}

func TestStop(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	callbacks := 0
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{
		Emitter:  rec,
		Callback: func() { callbacks++ },
	})

	timer.Start()
	manual.Advance(time.Second)
	timer.Stop()

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 0, manual.Attached())
	assert.Equal(t, 1, callbacks, "stopping early still fires the callback")
	assert.Equal(t, 2*time.Second, timer.Remaining(), "Stop keeps the partial remaining")

	stopped := rec.byChannel(ChannelStopped)
	require.Len(t, stopped, 1)
	assert.Equal(t, 2*time.Second, stopped[0].Remaining)

	timer.Stop()
	assert.Equal(t, 1, callbacks, "a second Stop is a no-op")
	assert.Equal(t, 1, rec.count(ChannelStopped))
}

func TestStop_BeforeStart(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	callbacks := 0
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{
		Emitter:  rec,
		Callback: func() { callbacks++ },
	})

	timer.Stop()
	assert.Equal(t, 0, callbacks)
	assert.Empty(t, rec.channels())
}

func TestStop_WhilePaused(t *testing.T) {
	manual := ticker.NewManual()
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{})

	timer.Start()
	timer.Pause()
	timer.Stop()
	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 0, manual.Attached())
}

func TestReset_IsSilent(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	callbacks := 0
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{
		Emitter:  rec,
		Callback: func() { callbacks++ },
	})

	timer.Start()
	manual.Advance(time.Second)
	seen := len(rec.channels())

	timer.Reset()
	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 0, manual.Attached())
	assert.Equal(t, 3*time.Second, timer.Remaining())
	assert.Equal(t, 0, callbacks, "Reset fires no callback")
	assert.Len(t, rec.channels(), seen, "Reset emits nothing")
}

func TestSetAddSub(t *testing.T) {
	manual := ticker.NewManual()
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{})

	timer.Set(10 * time.Second)
	assert.Equal(t, 10*time.Second, timer.Remaining())

	timer.Add(5 * time.Second)
	assert.Equal(t, 15*time.Second, timer.Remaining())

	timer.Sub(20 * time.Second)
	assert.Equal(t, time.Duration(0), timer.Remaining(), "Sub clamps at zero")
}

func TestSet_NegativeCompletesOnNextTick(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: time.Minute}, manual, Config{Emitter: rec})

	timer.Start()
	timer.Set(-time.Second)
	manual.Advance(time.Second)

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 1, rec.count(ChannelCompleted))
}

func TestZeroDuration_CompletesOnFirstTick(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 0}, manual, Config{Emitter: rec})

	timer.Start()
	manual.Advance(time.Second)

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, []Channel{ChannelStarted, ChannelCompleted}, rec.channels())
}

func TestRestart_AfterCompletion(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	manual.Advance(time.Second)
	manual.Advance(time.Second)
	require.Equal(t, 1, rec.count(ChannelCompleted))

	// Remaining is still zero, so a bare Start completes right away.
	timer.Start()
	manual.Advance(time.Second)
	assert.Equal(t, 2, rec.count(ChannelCompleted))

	timer.Reset()
	timer.Start()
	manual.Advance(time.Second)
	assert.Equal(t, 2, rec.count(ChannelCompleted), "after Reset the full duration runs again")
	assert.Equal(t, StateRunning, timer.State())
}

func TestCallbackPanic_ReleasesBinding(t *testing.T) {
	manual := ticker.NewManual()
	timer := New(model.TimerConfig{Duration: time.Second}, manual, Config{
		Callback: func() { panic("boom") },
	})

	timer.Start()
	manual.Advance(time.Second)

	require.Panics(t, func() {
		manual.Advance(time.Second)
	})
	assert.Equal(t, 0, manual.Attached(), "the binding is released before the callback runs")
	assert.Equal(t, StateIdle, timer.State())
}

func TestUpdateConfig_RestoresIdleWithNewDuration(t *testing.T) {
	manual := ticker.NewManual()
	rec := &recorder{}
	timer := New(model.TimerConfig{Duration: 3 * time.Second}, manual, Config{Emitter: rec})

	timer.Start()
	manual.Advance(time.Second)
	seen := len(rec.channels())

	timer.UpdateConfig(model.TimerConfig{Duration: 5 * time.Second, Loop: true, LoopLimit: 1})

	assert.Equal(t, StateIdle, timer.State())
	assert.Equal(t, 0, manual.Attached())
	assert.Equal(t, 5*time.Second, timer.Remaining())
	assert.Equal(t, 5*time.Second, timer.Duration())
	assert.True(t, timer.LoopEnabled())
	assert.Equal(t, 0, timer.LoopsCompleted())
	assert.Len(t, rec.channels(), seen, "reconfiguring emits nothing")
}

// Property-based tests

func TestPropertyRemainingNeverNegative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		manual := ticker.NewManual()
		duration := time.Duration(rapid.Int64Range(0, 30).Draw(t, "seconds")) * time.Second
		timer := New(model.TimerConfig{Duration: duration}, manual, Config{})
		timer.Start()

		steps := rapid.IntRange(1, 40).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			switch rapid.IntRange(0, 3).Draw(t, "op") {
			case 0:
				manual.Advance(time.Duration(rapid.Int64Range(0, 5000).Draw(t, "delta")) * time.Millisecond)
			case 1:
				timer.Sub(time.Duration(rapid.Int64Range(0, 10).Draw(t, "sub")) * time.Second)
			case 2:
				timer.Pause()
			case 3:
				timer.Resume()
			}
			if timer.Remaining() < 0 {
				t.Fatalf("remaining went negative: %v", timer.Remaining())
			}
		}
	})
}

func TestPropertyLoopsNeverExceedLimit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		manual := ticker.NewManual()
		limit := rapid.IntRange(1, 5).Draw(t, "limit")
		callbacks := 0
		timer := New(model.TimerConfig{Duration: time.Second, Loop: true, LoopLimit: limit}, manual, Config{
			Callback: func() { callbacks++ },
		})
		timer.Start()

		for tick := 0; tick < 2*(limit+1)+4; tick++ {
			manual.Advance(time.Second)
			if timer.LoopsCompleted() > limit {
				t.Fatalf("loops %d exceeded limit %d", timer.LoopsCompleted(), limit)
			}
		}

		if timer.State() != StateIdle {
			t.Fatalf("timer should have completed, state %s", timer.State())
		}
		if callbacks != limit+1 {
			t.Fatalf("expected %d callbacks, got %d", limit+1, callbacks)
		}
	})
}

func TestPropertyStateAlwaysValid(t *testing.T) {
	valid := map[State]bool{StateIdle: true, StateRunning: true, StatePaused: true}

	rapid.Check(t, func(t *rapid.T) {
		manual := ticker.NewManual()
		timer := New(model.TimerConfig{Duration: 2 * time.Second}, manual, Config{})

		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for step := 0; step < steps; step++ {
			switch rapid.IntRange(0, 5).Draw(t, "op") {
			case 0:
				timer.Start()
			case 1:
				timer.Stop()
			case 2:
				timer.Pause()
			case 3:
				timer.Resume()
			case 4:
				timer.Reset()
			case 5:
				manual.Advance(time.Second)
			}
			if !valid[timer.State()] {
				t.Fatalf("invalid state %q", timer.State())
			}
		}
	})
}
