package encoder

import "errors"

// Sentinel errors returned by Analyse and Encode. Wrapped with the captured
// stderr or a description via fmt.Errorf("%w: %s", ...) at the point of
// failure so errors.Is keeps working for callers that only care about the
// failure class.
var (
	// ErrEncoderFailed means the child process exited non-zero.
	ErrEncoderFailed = errors.New("encoder exited with an error")
	// ErrParseFailed means the encoder's side-channel output didn't match
	// the expected grammar.
	ErrParseFailed = errors.New("encoder output could not be parsed")
	// ErrIO means the child process could not be spawned, or one of its
	// pipes failed.
	ErrIO = errors.New("encoder i/o failure")
	// ErrInvalidInput means the caller asked for an encode with an empty
	// audible list.
	ErrInvalidInput = errors.New("invalid encoder input")
)
