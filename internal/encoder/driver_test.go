package encoder

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// writeFakeEncoder writes an executable shell script standing in for the
// real encoder binary, so these tests exercise Driver's spawn/parse logic
// without depending on ffmpeg being installed.
func writeFakeEncoder(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fake-encoder")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755); err != nil {
		t.Fatalf("write fake encoder: %v", err)
	}
	return path
}

func TestDriverAnalyseHappyPath(t *testing.T) {
	bin := writeFakeEncoder(t, `
cat >&2 <<'EOF'
Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'in.mp4':
  Duration: 00:00:12.00, start: 0.000000, bitrate: 512 kb/s
EOF
cat <<'EOF'
lavfi.silence_start=3
lavfi.silence_end=5
lavfi.silence_duration=2
lavfi.silence_start=10
lavfi.silence_end=10.5
lavfi.silence_duration=0.5
EOF
exit 0
`)

	d := New(bin)
	analysis, err := d.Analyse(context.Background(), "in.mp4")
	if err != nil {
		t.Fatalf("Analyse: %v", err)
	}
	if analysis.Duration != 12 {
		t.Fatalf("Duration = %v, want 12", analysis.Duration)
	}
	want := []Interval{{0, 3}, {5, 10}, {10.5, 12}}
	if len(analysis.Audible) != len(want) {
		t.Fatalf("Audible = %+v, want %+v", analysis.Audible, want)
	}
	for i := range want {
		if analysis.Audible[i] != want[i] {
			t.Fatalf("Audible[%d] = %v, want %v", i, analysis.Audible[i], want[i])
		}
	}
	if got := analysis.PostEncodePlaytime(); got != 9.5 {
		t.Fatalf("PostEncodePlaytime = %v, want 9.5", got)
	}
}

func TestDriverAnalyseNonZeroExit(t *testing.T) {
	bin := writeFakeEncoder(t, `
echo "Invalid data found when processing input" >&2
exit 1
`)

	d := New(bin)
	_, err := d.Analyse(context.Background(), "in.mp4")
	if err == nil {
		t.Fatalf("expected an error for a non-zero exit")
	}
}

func TestDriverEncodeHappyPath(t *testing.T) {
	bin := writeFakeEncoder(t, `
cat <<'EOF'
out_time_ms=4750000
speed=2.0x
progress=continue
out_time_ms=9500000
speed=2.1x
progress=end
EOF
exit 0
`)

	d := New(bin)
	var samples []Sample
	err := d.Encode(context.Background(), "in.mp4", filepath.Join(t.TempDir(), "out.mp4"), []Interval{{0, 9.5}}, func(s Sample) {
		samples = append(samples, s)
	})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("got %d samples, want 2", len(samples))
	}
	if samples[0].OutTimeSeconds != 4.75 || samples[0].Speed != 2.0 {
		t.Fatalf("samples[0] = %+v", samples[0])
	}
	if samples[1].OutTimeSeconds != 9.5 || samples[1].Speed != 2.1 {
		t.Fatalf("samples[1] = %+v", samples[1])
	}
}

func TestDriverEncodeRejectsEmptyAudible(t *testing.T) {
	bin := writeFakeEncoder(t, "exit 0\n")
	d := New(bin)
	err := d.Encode(context.Background(), "in.mp4", "out.mp4", nil, nil)
	if err == nil {
		t.Fatalf("expected an error for an empty audible list")
	}
}

func TestDriverEncodeNonZeroExit(t *testing.T) {
	bin := writeFakeEncoder(t, `
echo "Invalid data found when processing input" >&2
exit 1
`)
	d := New(bin)
	err := d.Encode(context.Background(), "in.mp4", "out.mp4", []Interval{{0, 5}}, nil)
	if err == nil {
		t.Fatalf("expected an error for a non-zero exit")
	}
}

func TestDriverEncodeCancellation(t *testing.T) {
	bin := writeFakeEncoder(t, `
sleep 30
`)
	d := New(bin)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := d.Encode(ctx, "in.mp4", "out.mp4", []Interval{{0, 5}}, nil)
	if err == nil {
		t.Fatalf("expected an error for a cancelled context")
	}
}
