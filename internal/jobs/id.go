package jobs

import (
	"crypto/rand"
	"encoding/binary"
	"strconv"
)

// JobId is a 64-bit identifier, uniformly random at creation, used both as
// the registry key and as the on-disk basename of a job's input and output
// files.
type JobId uint64

// NewJobId draws a fresh, uniformly random JobId. Collisions against the
// registry's existing keys are the caller's responsibility to detect and
// retry; JobId generation itself never fails.
func NewJobId() JobId {
	var buf [8]byte
	// crypto/rand never returns a short read or non-nil error on supported
	// platforms; a panic here means the OS entropy source is unavailable,
	// which is an environment problem, not a recoverable one.
	if _, err := rand.Read(buf[:]); err != nil {
		panic("jobs: failed to read random bytes for job id: " + err.Error())
	}
	return JobId(binary.BigEndian.Uint64(buf[:]))
}

// String renders the id in decimal, which doubles as the on-disk basename.
func (id JobId) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// ParseJobId parses a decimal string into a JobId. It is the inverse of
// String: ParseJobId(id.String()) == id for every JobId.
func ParseJobId(s string) (JobId, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return JobId(v), nil
}

// MarshalJSON renders the id as a JSON string, since a uint64 can exceed
// the safe integer range of a JSON-number-consuming client.
func (id JobId) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(id.String())), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (id *JobId) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*id = JobId(v)
	return nil
}
