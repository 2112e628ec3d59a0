package encoder

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// silenceState is the analyse-output parser's expectation for the next
// recognised line.
type silenceState int

const (
	expectStart silenceState = iota
	expectEnd
	expectDuration
)

// silenceInterval is one [start, end) run of silence as reported by the
// detector, before the complement is taken to produce Analysis.Audible.
type silenceInterval struct {
	start float64
	end   float64
}

// parseSilenceOutput runs a three-state parser over the detector's standard
// output. Lines are expected in silence_start -> silence_end ->
// silence_duration triples; a recognised-prefix line that does not match
// the current expectation is a hard parse error, while any unrecognised
// line (not prefixed "lavfi") is ignored.
//
// If the stream ends while still expecting a silence_end, the parser reports
// endedMidSilence together with the open interval's start; the caller
// closes that interval at the media duration once it is known (see
// Driver.Analyse).
func parseSilenceOutput(r io.Reader) (intervals []silenceInterval, endedMidSilence bool, pendingStart float64, err error) {
	state := expectStart
	var pendingEnd float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "lavfi") {
			continue
		}

		key, value, ok := splitSilenceLine(line)
		if !ok {
			return nil, false, 0, fmt.Errorf("%w: unrecognised lavfi line %q", ErrParseFailed, line)
		}

		switch key {
		case "silence_start":
			if state != expectStart {
				return nil, false, 0, fmt.Errorf("%w: unexpected silence_start while %s", ErrParseFailed, state.describe())
			}
			v, perr := strconv.ParseFloat(value, 64)
			if perr != nil {
				return nil, false, 0, fmt.Errorf("%w: bad silence_start value %q", ErrParseFailed, value)
			}
			pendingEnd = v
			state = expectEnd
		case "silence_end":
			if state != expectEnd {
				return nil, false, 0, fmt.Errorf("%w: unexpected silence_end while %s", ErrParseFailed, state.describe())
			}
			// silence_end lines are formatted "end | silence_duration: dur";
			// only the leading number is the end timestamp.
			fields := strings.Fields(value)
			if len(fields) == 0 {
				return nil, false, 0, fmt.Errorf("%w: empty silence_end value", ErrParseFailed)
			}
			v, perr := strconv.ParseFloat(fields[0], 64)
			if perr != nil {
				return nil, false, 0, fmt.Errorf("%w: bad silence_end value %q", ErrParseFailed, fields[0])
			}
			intervals = append(intervals, silenceInterval{start: pendingEnd, end: v})
			state = expectDuration
		case "silence_duration":
			if state != expectDuration {
				return nil, false, 0, fmt.Errorf("%w: unexpected silence_duration while %s", ErrParseFailed, state.describe())
			}
			// The duration value itself is redundant with end-start and is
			// not retained; it only closes the triple.
			state = expectStart
		default:
			return nil, false, 0, fmt.Errorf("%w: unrecognised lavfi key %q", ErrParseFailed, key)
		}
	}
	if serr := scanner.Err(); serr != nil {
		return nil, false, 0, fmt.Errorf("%w: %s", ErrIO, serr)
	}

	if state == expectEnd {
		return intervals, true, pendingEnd, nil
	}
	return intervals, false, 0, nil
}

func (s silenceState) describe() string {
	switch s {
	case expectStart:
		return "expecting silence_start"
	case expectEnd:
		return "expecting silence_end"
	case expectDuration:
		return "expecting silence_duration"
	default:
		return "unknown state"
	}
}

// splitSilenceLine splits a "lavfi.silence_start=1.23" style line into its
// bare key ("silence_start") and value ("1.23").
func splitSilenceLine(line string) (key, value string, ok bool) {
	rest := strings.TrimPrefix(line, "lavfi.")
	idx := strings.Index(rest, "=")
	if idx < 0 {
		return "", "", false
	}
	return rest[:idx], rest[idx+1:], true
}

// audibleComplement computes the complement of silent over [0, duration],
// dropping zero-length segments.
func audibleComplement(silent []silenceInterval, duration float64) []Interval {
	audible := make([]Interval, 0, len(silent)+1)
	prev := 0.0
	for _, s := range silent {
		if s.start > prev {
			audible = append(audible, Interval{Start: prev, End: s.start})
		}
		prev = s.end
	}
	if duration > prev {
		audible = append(audible, Interval{Start: prev, End: duration})
	}
	return audible
}

// parseDurationBanner extracts the "Duration: H:M:S.ms" value that precedes
// the first comma in the encoder's diagnostic stream.
func parseDurationBanner(stderr string) (float64, error) {
	const marker = "Duration: "
	idx := strings.Index(stderr, marker)
	if idx < 0 {
		return 0, fmt.Errorf("%w: no Duration banner in stderr", ErrParseFailed)
	}
	rest := stderr[idx+len(marker):]
	if comma := strings.Index(rest, ","); comma >= 0 {
		rest = rest[:comma]
	}
	rest = strings.TrimSpace(rest)

	parts := strings.Split(rest, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("%w: malformed Duration value %q", ErrParseFailed, rest)
	}
	hours, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed Duration hours %q", ErrParseFailed, parts[0])
	}
	minutes, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed Duration minutes %q", ErrParseFailed, parts[1])
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil {
		return 0, fmt.Errorf("%w: malformed Duration seconds %q", ErrParseFailed, parts[2])
	}
	return hours*3600 + minutes*60 + seconds, nil
}
