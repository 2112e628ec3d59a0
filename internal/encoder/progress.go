package encoder

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// progressScanner turns the encoder's "-progress -" key=value lines into a
// stream of Sample values, one per "progress=continue"/"progress=end"
// terminator line: the point at which ffmpeg has finished emitting one
// block of statistics.
type progressScanner struct {
	scanner *bufio.Scanner
	pending Sample
}

func newProgressScanner(r io.Reader) *progressScanner {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 4096), 1<<20)
	return &progressScanner{scanner: s}
}

// next reads lines until a block terminator is hit, returning the
// accumulated Sample. It returns ok=false at EOF.
func (p *progressScanner) next() (sample Sample, ok bool, err error) {
	for p.scanner.Scan() {
		line := p.scanner.Text()
		idx := strings.Index(line, "=")
		if idx < 0 {
			continue
		}
		key, value := line[:idx], line[idx+1:]

		switch key {
		case "out_time_ms":
			us, perr := strconv.ParseInt(value, 10, 64)
			if perr == nil {
				if us < 0 {
					us = 0
				}
				p.pending.OutTimeSeconds = float64(us) / 1e6
				p.pending.HasOutTime = true
			}
		case "speed":
			trimmed := strings.TrimSuffix(strings.TrimSpace(value), "x")
			v, perr := strconv.ParseFloat(trimmed, 64)
			if perr == nil {
				p.pending.Speed = v
				p.pending.HasSpeed = true
			}
		case "progress":
			out := p.pending
			p.pending = Sample{}
			return out, true, nil
		default:
			// unknown keys are ignored
		}
	}
	if err := p.scanner.Err(); err != nil {
		return Sample{}, false, err
	}
	return Sample{}, false, nil
}
