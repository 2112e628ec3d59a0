package jobs

import (
	"encoding/json"
	"testing"
	"time"
)

func TestInProgressClampsProgress(t *testing.T) {
	if got := InProgress(-0.5, 1).Progress; got != 0 {
		t.Errorf("InProgress(-0.5, ...).Progress = %v, want 0", got)
	}
	if got := InProgress(1.5, 1).Progress; got != 1 {
		t.Errorf("InProgress(1.5, ...).Progress = %v, want 1", got)
	}
}

func TestIsTerminal(t *testing.T) {
	cases := []struct {
		status Status
		want   bool
	}{
		{InProgress(0.5, 1), false},
		{ErrorStatus("boom"), true},
		{Completed(time.Now()), true},
		{Cancelled(time.Now()), true},
	}
	for _, c := range cases {
		if got := c.status.IsTerminal(); got != c.want {
			t.Errorf("IsTerminal(%v) = %v, want %v", c.status, got, c.want)
		}
	}
}

func TestStatusJSONRoundTripsInProgress(t *testing.T) {
	want := InProgress(0.42, 1.8)
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Status
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != want {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestStatusJSONRoundTripsCompleted(t *testing.T) {
	want := Completed(time.Now().UTC().Truncate(time.Second))
	data, err := json.Marshal(want)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var got Status
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got.Kind != want.Kind || !got.EndTime.Equal(want.EndTime) {
		t.Fatalf("round trip = %+v, want %+v", got, want)
	}
}

func TestStatusJSONShapeIsTaggedUnion(t *testing.T) {
	data, err := json.Marshal(ErrorStatus("no audible content"))
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var wire map[string]any
	if err := json.Unmarshal(data, &wire); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if wire["type"] != "error" {
		t.Fatalf("type = %v, want error", wire["type"])
	}
	if wire["data"] != "no audible content" {
		t.Fatalf("data = %v, want the error message", wire["data"])
	}
}

func TestStatusUnmarshalUnknownTypeIsError(t *testing.T) {
	var s Status
	err := json.Unmarshal([]byte(`{"type":"bogus","data":null}`), &s)
	if err == nil {
		t.Fatalf("expected an error unmarshalling an unknown status type")
	}
}
