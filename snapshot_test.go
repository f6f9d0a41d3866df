package txprobe

import "testing"

func TestTxStateString(t *testing.T) {
	cases := []struct {
		state TxState
		want  string
	}{
		{StateActive, "active"},
		{StateCommitted, "committed"},
		{StateAborted, "aborted"},
		{StateIndeterminate, "indeterminate"},
		{TxState(99), "indeterminate"},
	}
	for _, tc := range cases {
		if got := tc.state.String(); got != tc.want {
			t.Fatalf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestSnapshotConsistent(t *testing.T) {
	if !(Snapshot{Depth: 1}).Consistent() {
		t.Fatalf("depth 1 must be consistent")
	}
	if (Snapshot{Depth: 0}).Consistent() {
		t.Fatalf("depth 0 must not be consistent")
	}
	if (Snapshot{Depth: 2}).Consistent() {
		t.Fatalf("depth 2 must not be consistent")
	}
}

func TestSnapshotDetails(t *testing.T) {
	snap := Snapshot{Depth: 1, State: StateActive, TxID: "421"}
	want := "depth=1 state=active tx=421"
	if got := snap.Details(); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
