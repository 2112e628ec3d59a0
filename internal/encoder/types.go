package encoder

// Interval is a half-open [Start, End) range of media time, in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Len returns the interval's length in seconds.
func (iv Interval) Len() float64 {
	return iv.End - iv.Start
}

// Analysis is the result of one Analyse invocation.
type Analysis struct {
	// Audible is the ordered, non-overlapping, strictly ascending list of
	// intervals to keep in the encoded output.
	Audible []Interval
	// Duration is the total media duration in seconds, as reported by the
	// encoder's diagnostic banner.
	Duration float64
}

// PostEncodePlaytime is the sum of all audible interval lengths, the
// expected duration of the encoded output. The supervisor uses this, not
// Duration, to turn encoder progress samples into a [0,1] fraction.
func (a Analysis) PostEncodePlaytime() float64 {
	var total float64
	for _, iv := range a.Audible {
		total += iv.Len()
	}
	return total
}

// Sample is one progress observation emitted while Encode runs, built from
// one block of encoder progress output. Either field may be absent from a
// block; HasOutTime/HasSpeed say which were present in it. Folding samples
// into a running status is left to the caller.
type Sample struct {
	// OutTimeSeconds is the position in the *output* stream, derived from
	// out_time_ms (which is actually microseconds).
	OutTimeSeconds float64
	HasOutTime     bool

	// Speed is the encoder's real-time factor, or 0 if never reported.
	Speed    float64
	HasSpeed bool
}
