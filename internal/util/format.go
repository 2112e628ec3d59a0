// Package util collects small formatting helpers shared by the startup
// banner and any future human-facing output.
package util

import (
	"time"

	"github.com/dustin/go-humanize"
)

// Bytes renders a byte count the way operators expect to read it in a log
// line or banner, e.g. "1.3 GB".
func Bytes(n int64) string {
	return humanize.Bytes(uint64(n))
}

// Duration renders a duration approximately, e.g. "2 minutes", for use in
// startup/shutdown log lines where sub-second precision is noise.
func Duration(d time.Duration) string {
	return humanize.RelTime(time.Now(), time.Now().Add(d), "", "")
}
