package jobs

import "testing"

func TestParseJobIdInvertsString(t *testing.T) {
	id := NewJobId()
	parsed, err := ParseJobId(id.String())
	if err != nil {
		t.Fatalf("ParseJobId: %v", err)
	}
	if parsed != id {
		t.Fatalf("ParseJobId(id.String()) = %v, want %v", parsed, id)
	}
}

func TestParseJobIdRejectsNonNumeric(t *testing.T) {
	if _, err := ParseJobId("not-a-number"); err == nil {
		t.Fatalf("expected an error parsing a non-numeric job id")
	}
}

func TestJobIdJSONRoundTrip(t *testing.T) {
	id := NewJobId()
	data, err := id.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	var got JobId
	if err := got.UnmarshalJSON(data); err != nil {
		t.Fatalf("UnmarshalJSON: %v", err)
	}
	if got != id {
		t.Fatalf("round trip = %v, want %v", got, id)
	}
}

func TestNewJobIdsDiffer(t *testing.T) {
	a, b := NewJobId(), NewJobId()
	if a == b {
		t.Fatalf("two consecutive ids collided: %v", a)
	}
}
