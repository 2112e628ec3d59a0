// Package encoder drives the external transcoder: one invocation to analyse
// silence, one to produce the trimmed output. It owns no state beyond the
// live child process of whichever call is in flight.
package encoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/quietcut/quietcut/internal/logger"
)

const (
	silenceNoise    = "-50dB"
	silenceDuration = "0.1"

	// stallWarning is how long a stdout read may go quiet before the driver
	// logs an observability "lagging" event. It is not a cancellation
	// trigger; the encoder is allowed to be slow.
	stallWarning = 1 * time.Second
)

// Driver spawns the configured encoder binary and parses its output. It is
// stateless between calls; every Analyse/Encode gets its own child.
type Driver struct {
	Binary string
}

// New returns a Driver that invokes the given encoder binary (a bare name
// resolved via PATH, or an absolute path).
func New(binary string) *Driver {
	return &Driver{Binary: binary}
}

// Analyse runs the encoder's silence detector over inputPath and returns the
// complement (audible) intervals plus the total media duration.
func (d *Driver) Analyse(ctx context.Context, inputPath string) (Analysis, error) {
	args := []string{
		"-i", inputPath,
		"-vn", "-hide_banner",
		"-af", fmt.Sprintf("silencedetect=noise=%s:d=%s,ametadata=mode=print:file=-", silenceNoise, silenceDuration),
		"-f", "null", "-",
	}

	cmd := exec.CommandContext(ctx, d.Binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Analysis{}, fmt.Errorf("%w: stdout pipe: %s", ErrIO, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return Analysis{}, fmt.Errorf("%w: spawn: %s", ErrIO, err)
	}
	defer killOnReturn(cmd)()

	silent, endedMidSilence, pendingStart, parseErr := parseSilenceOutput(stdout)

	waitErr := cmd.Wait()

	stderrText := stderr.String()
	if waitErr != nil {
		return Analysis{}, fmt.Errorf("%w: %s", ErrEncoderFailed, strings.TrimSpace(stderrText))
	}
	if parseErr != nil {
		return Analysis{}, parseErr
	}

	duration, err := parseDurationBanner(stderrText)
	if err != nil {
		return Analysis{}, err
	}

	if endedMidSilence {
		silent = append(silent, silenceInterval{start: pendingStart, end: duration})
	}

	return Analysis{
		Audible:  audibleComplement(silent, duration),
		Duration: duration,
	}, nil
}

// Encode produces the trimmed output at outputPath, keeping only the given
// audible intervals. onSample is invoked once per progress block the
// encoder emits; it must not block.
func (d *Driver) Encode(ctx context.Context, inputPath, outputPath string, audible []Interval, onSample func(Sample)) error {
	script, err := buildFilterComplex(audible)
	if err != nil {
		return err
	}

	args := []string{
		"-i", inputPath,
		"-progress", "-",
		"-loglevel", "error",
		"-stats_period", "0.3",
		"-filter_complex_script", "pipe:0",
		"-map", "[video]", "-map", "[audio]",
		"-c:v", "libx264", "-preset", "ultrafast",
		"-c:a", "libopus",
		"-f", "mp4",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, d.Binary, args...)
	cmd.Stdin = strings.NewReader(script)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: stdout pipe: %s", ErrIO, err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: spawn: %s", ErrIO, err)
	}
	defer killOnReturn(cmd)()

	type lineResult struct {
		sample Sample
		ok     bool
		err    error
	}
	lines := make(chan lineResult)
	go func() {
		ps := newProgressScanner(stdout)
		for {
			sample, ok, err := ps.next()
			lines <- lineResult{sample, ok, err}
			if !ok {
				close(lines)
				return
			}
		}
	}()

	timer := time.NewTimer(stallWarning)
	defer timer.Stop()

readLoop:
	for {
		select {
		case res, open := <-lines:
			if !open {
				break readLoop
			}
			if res.err != nil {
				break readLoop
			}
			if res.ok && onSample != nil {
				onSample(res.sample)
			}
			if !timer.Stop() {
				<-timer.C
			}
			timer.Reset(stallWarning)
		case <-timer.C:
			logger.Warn("encoder stdout lagging", "inactive_for", stallWarning)
			timer.Reset(stallWarning)
		case <-ctx.Done():
			break readLoop
		}
	}

	waitErr := cmd.Wait()
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if waitErr != nil {
		return fmt.Errorf("%w: %s", ErrEncoderFailed, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// killOnReturn returns a cleanup function that kills the child if it is
// still running. Combined with exec.CommandContext's own cancellation, this
// guarantees no orphan encoder survives a panic, an early return, or a
// cancelled context, regardless of platform signal-delivery timing.
func killOnReturn(cmd *exec.Cmd) func() {
	return func() {
		if cmd.Process == nil {
			return
		}
		if cmd.ProcessState != nil {
			return
		}
		_ = cmd.Process.Kill()
	}
}
