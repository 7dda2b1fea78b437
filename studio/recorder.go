package studio

import (
	"sync"
	"time"

	"github.com/trombonestudio/automation"
)

type (
	// Scheduler runs f periodically until the returned stop function is
	// called. Stop must be safe to call more than once.
	Scheduler interface {
		Every(period time.Duration, f func()) (stop func())
	}

	// TickerScheduler is a Scheduler backed by time.Ticker. f runs on a
	// goroutine of its own.
	TickerScheduler struct{}

	// Recorder samples the engine at CaptureRate into a transient buffer and
	// turns the buffer into a compacted Track when stopped.
	//
	// The sampling timer is owned by the recorder: Start creates it and Stop
	// always cancels it. On every tick the recorder calls its tick function,
	// which either samples directly or, when owned by a Model, forwards the
	// tick to the model goroutine which then calls Sample.
	Recorder struct {
		engine    automation.Engine
		scheduler Scheduler
		tick      func()

		mu     sync.Mutex
		stop   func()
		buffer []automation.Frame
	}
)

// CaptureRate is the sampling rate in Hz. It is fixed and independent of how
// often the curves are drawn or edited.
const CaptureRate = 120

func (TickerScheduler) Every(period time.Duration, f func()) func() {
	ticker := time.NewTicker(period)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ticker.C:
				f()
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			ticker.Stop()
			close(done)
		})
	}
}

// NewRecorder creates a recorder reading from engine. If tick is nil, ticks
// call Sample directly on the scheduler's goroutine.
func NewRecorder(engine automation.Engine, scheduler Scheduler, tick func()) *Recorder {
	if scheduler == nil {
		scheduler = TickerScheduler{}
	}
	r := &Recorder{engine: engine, scheduler: scheduler, tick: tick}
	if r.tick == nil {
		r.tick = r.Sample
	}
	return r
}

// Recording reports whether a capture is in progress.
func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stop != nil
}

// Start freezes the engine's own movement, clears the buffer and starts the
// sampling timer. Starting an already started recorder does nothing and
// returns false.
func (r *Recorder) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop != nil {
		return false
	}
	r.engine.SetValue(automation.ParamMovementSpeed, automation.FrozenMovementSpeed)
	if f, ok := r.engine.(automation.Freezer); ok {
		f.SetFrozen(true)
	}
	r.buffer = make([]automation.Frame, 0, CaptureRate)
	r.stop = r.scheduler.Every(time.Second/CaptureRate, r.tick)
	return true
}

// Sample appends one frame with the current engine values to the buffer. It
// does nothing unless a capture is in progress, so ticks delivered late after
// Stop are dropped.
func (r *Recorder) Sample() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop == nil {
		return
	}
	r.buffer = append(r.buffer, Capture(r.engine))
}

// Stop cancels the sampling timer, restores the engine's movement and returns
// the compacted capture. ok is false if no capture was in progress. The timer
// is cancelled even when the buffer is empty.
func (r *Recorder) Stop() (t automation.Track, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stop == nil {
		return automation.Track{}, false
	}
	stop := r.stop
	r.stop = nil
	stop()
	r.engine.SetValue(automation.ParamMovementSpeed, r.engine.DefaultValue(automation.ParamMovementSpeed))
	if f, ok := r.engine.(automation.Freezer); ok {
		f.SetFrozen(false)
	}
	frames := automation.Compact(r.buffer)
	r.buffer = nil
	return automation.Track{Frames: frames}, true
}

// Capture reads one frame from the engine. Positions are converted from the
// engine's native units; the adjustment blend is always captured as 0.
func Capture(e automation.Engine) automation.Frame {
	n := e.Value(automation.ParamTractLength)
	var f automation.Frame
	for _, d := range automation.Descriptors {
		if d.Param == "" {
			continue
		}
		v := e.Value(d.Param)
		if d.Positional {
			v = automation.FromNative(automation.Round(v), n)
		}
		f.Set(d.Key, v)
	}
	return f
}
