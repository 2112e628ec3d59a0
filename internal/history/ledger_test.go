package history

import (
	"path/filepath"
	"testing"

	"github.com/quietcut/quietcut/internal/jobs"
)

func TestOpenCreatesDatabaseFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history.db")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()
}

func TestRecordAndRecent(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	job := &jobs.Job{ID: jobs.NewJobId(), InputPath: "in.mp4", OutputPath: "out.mp4"}
	if err := l.Record(job); err != nil {
		t.Fatalf("Record: %v", err)
	}

	outcomes, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes, want 1", len(outcomes))
	}
	if outcomes[0].JobID != job.ID.String() {
		t.Fatalf("JobID = %v, want %v", outcomes[0].JobID, job.ID.String())
	}
}

func TestRecordIsIdempotentPerJob(t *testing.T) {
	l, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	job := &jobs.Job{ID: jobs.NewJobId(), InputPath: "in.mp4", OutputPath: "out.mp4"}
	if err := l.Record(job); err != nil {
		t.Fatalf("first Record: %v", err)
	}
	if err := l.Record(job); err != nil {
		t.Fatalf("second Record: %v", err)
	}

	outcomes, err := l.Recent(10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(outcomes) != 1 {
		t.Fatalf("got %d outcomes after recording the same job twice, want 1", len(outcomes))
	}
}
