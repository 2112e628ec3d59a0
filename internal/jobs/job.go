package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/quietcut/quietcut/internal/encoder"
	"github.com/quietcut/quietcut/internal/logger"
)

// Driver is the subset of encoder.Driver a Job depends on. Defining it here
// lets tests substitute a fake without spawning a real child process.
type Driver interface {
	Analyse(ctx context.Context, inputPath string) (encoder.Analysis, error)
	Encode(ctx context.Context, inputPath, outputPath string, audible []encoder.Interval, onSample func(encoder.Sample)) error
}

// Update is one message on a Job's broadcast channel. A non-zero Lagged
// means the subscriber missed Lagged prior updates and should treat Status
// as stale until the next message; Status is only meaningful when
// Lagged == 0.
type Update struct {
	ID     JobId
	Lagged int
	Status Status
}

// subscriberBufferSize is a bounded-channel capacity large enough to absorb
// a burst of progress samples without a slow subscriber stalling the
// supervisor.
const subscriberBufferSize = 8

// Job drives one piece of work from admission to a terminal status and
// fans status changes out to any number of subscribers.
type Job struct {
	ID         JobId
	InputPath  string
	OutputPath string

	driver Driver

	// mu is co-located with the broadcast so "update last_status then
	// publish" is atomic with respect to any subscriber reading
	// last_status immediately after subscribing.
	mu          sync.Mutex
	lastStatus  Status
	completedAt time.Time
	terminal    bool

	subsMu sync.Mutex
	subs   map[chan Update]*int

	cancelFn context.CancelFunc
	doneOnce sync.Once
	done     chan struct{}
}

// newJob constructs and starts a Job's supervisory goroutine. Callers reach
// this only through Registry.NewJob.
func newJob(id JobId, driver Driver, inputPath, outputPath string) *Job {
	ctx, cancel := context.WithCancel(context.Background())

	j := &Job{
		ID:         id,
		InputPath:  inputPath,
		OutputPath: outputPath,
		driver:     driver,
		lastStatus: InProgress(0, 0),
		subs:       make(map[chan Update]*int),
		cancelFn:   cancel,
		done:       make(chan struct{}),
	}

	go j.supervise(ctx)
	return j
}

// Subscribe registers a new receiver of (JobId, Status) updates. The
// documented idiom for callers: subscribe first, then call LastStatus to
// close the race against a terminal transition published before Subscribe
// returned.
func (j *Job) Subscribe() chan Update {
	ch := make(chan Update, subscriberBufferSize)
	missed := 0

	j.subsMu.Lock()
	j.subs[ch] = &missed
	j.subsMu.Unlock()

	return ch
}

// Unsubscribe removes and closes a subscriber channel.
func (j *Job) Unsubscribe(ch chan Update) {
	j.subsMu.Lock()
	if _, ok := j.subs[ch]; ok {
		delete(j.subs, ch)
		close(ch)
	}
	j.subsMu.Unlock()
}

// LastStatus returns the current status snapshot.
func (j *Job) LastStatus() Status {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.lastStatus
}

// CompletedAt returns the instant the Job first reached a terminal status,
// and whether it has reached one at all.
func (j *Job) CompletedAt() (time.Time, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.completedAt, j.terminal
}

// Done returns a channel closed exactly once, the moment the Job reaches its
// terminal status. Useful for a caller that wants to wait without polling
// LastStatus or subscribing to the broadcast.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Cancel aborts the supervisor, which kills the encoder child, then sets a
// terminal Cancelled status. Idempotent: a Job that is already terminal is
// left exactly as it was.
func (j *Job) Cancel() {
	j.cancelFn()
	j.transitionTerminal(Cancelled(time.Now()))
}

// publishProgress updates last_status and broadcasts it, unless the Job has
// already reached a terminal status. Once terminal, a Job's status must
// never mutate back, so stray progress samples racing a concurrent Cancel
// are silently dropped rather than applied.
func (j *Job) publishProgress(status Status) {
	j.mu.Lock()
	if j.terminal {
		j.mu.Unlock()
		return
	}
	j.lastStatus = status
	j.mu.Unlock()

	j.broadcast(status)
}

// transitionTerminal sets the first and only terminal status. Subsequent
// calls (a natural completion racing an explicit Cancel, or a second
// Cancel) are no-ops, which is what makes Cancel idempotent.
func (j *Job) transitionTerminal(status Status) {
	j.mu.Lock()
	if j.terminal {
		j.mu.Unlock()
		return
	}
	j.terminal = true
	j.lastStatus = status
	j.completedAt = status.EndTime
	if j.completedAt.IsZero() {
		j.completedAt = time.Now()
	}
	j.mu.Unlock()

	j.broadcast(status)
	j.doneOnce.Do(func() { close(j.done) })
}

// broadcast sends status to every subscriber without blocking. A
// subscriber whose buffer is full is marked as having missed a message; the
// next successful delivery is preceded by a Lagged(n) marker so it knows to
// treat the following Status as a catch-up, not a continuation.
func (j *Job) broadcast(status Status) {
	j.subsMu.Lock()
	defer j.subsMu.Unlock()

	for ch, missed := range j.subs {
		if *missed > 0 {
			select {
			case ch <- Update{ID: j.ID, Lagged: *missed}:
				*missed = 0
			default:
				*missed++
				continue
			}
		}
		select {
		case ch <- Update{ID: j.ID, Status: status}:
		default:
			*missed++
		}
	}
}

// supervise drives analyse -> encode -> terminal. It is the Job's only
// writer of non-terminal status; Cancel competes for the terminal
// transition but never for the in-progress ones.
func (j *Job) supervise(ctx context.Context) {
	analysis, err := j.driver.Analyse(ctx, j.InputPath)
	if err != nil {
		j.transitionTerminal(ErrorStatus(err.Error()))
		return
	}

	playtime := analysis.PostEncodePlaytime()
	if playtime <= 0 {
		j.transitionTerminal(ErrorStatus(ErrEmptyAudible.Error()))
		return
	}

	var progress, speed float64
	onSample := func(s encoder.Sample) {
		if s.HasOutTime {
			progress = s.OutTimeSeconds / playtime
		}
		if s.HasSpeed {
			speed = s.Speed
		}
		j.publishProgress(InProgress(progress, speed))
	}

	err = j.driver.Encode(ctx, j.InputPath, j.OutputPath, analysis.Audible, onSample)
	if err != nil {
		if ctx.Err() != nil {
			// Cancel already owns (or will own) the terminal transition.
			return
		}
		logger.Warn("encode failed", "job", j.ID.String(), "error", err)
		j.transitionTerminal(ErrorStatus(err.Error()))
		return
	}

	j.transitionTerminal(Completed(time.Now()))
}
