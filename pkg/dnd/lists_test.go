package dnd

import (
	"encoding/json"
	"testing"
)

func TestListStateMerge(t *testing.T) {
	l := NewListState(nil)

	l.Patch(NewPatch().SourceList("A").SourceIndex(1))
	l.Patch(NewPatch().TargetIndex(3))

	want := ListCoordination{
		SourceList:     "A",
		SourceIndex:    1,
		TargetIndex:    3,
		TargetList:     "",
		TargetPosition: "",
	}
	if got := l.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestListStateClearTarget(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A").SourceIndex(4))
	l.Patch(NewPatch().TargetList("B").TargetIndex(2).TargetPosition(PositionBefore))

	l.ClearTarget()

	got := l.Snapshot()
	if got.SourceList != "A" || got.SourceIndex != 4 {
		t.Errorf("source bookkeeping lost: %+v", got)
	}
	if got.TargetList != "" || got.TargetIndex != NoIndex || got.TargetPosition != "" {
		t.Errorf("target not fully cleared: %+v", got)
	}
}

func TestListStateReset(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A").SourceIndex(0).TargetList("B").TargetIndex(1).TargetPosition(PositionAfter))

	l.Reset()

	if got := l.Snapshot(); got != emptyCoordination() {
		t.Errorf("Reset left %+v", got)
	}
}

func TestListStateIdentity(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("todo").TargetList("done"))

	if !l.IsSource("todo") || l.IsSource("done") {
		t.Error("IsSource mismatch")
	}
	if !l.IsTarget("done") || l.IsTarget("todo") {
		t.Error("IsTarget mismatch")
	}
	if l.IsSource("") || l.IsTarget("") {
		t.Error("the empty id must never match")
	}

	l.Reset()
	if l.IsSource("") {
		t.Error("the empty id must not match an unset source")
	}
}

func TestListStatePatchNil(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A"))
	l.Patch(nil)
	l.Patch(NewPatch())
	if l.Snapshot().SourceList != "A" {
		t.Error("nil or empty patch must be a no-op")
	}
}

func TestListStatePatchExplicitNull(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A").SourceIndex(2))
	l.Patch(NewPatch().SourceIndex(NoIndex))

	got := l.Snapshot()
	if got.SourceList != "A" || got.SourceIndex != NoIndex {
		t.Errorf("explicit null should clear only that field: %+v", got)
	}
}

func TestListPatchUnmarshalJSON(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A").SourceIndex(1).TargetList("B"))

	var p ListPatch
	if err := json.Unmarshal([]byte(`{"targetIndex": 3, "targetList": null, "unknown": true}`), &p); err != nil {
		t.Fatal(err)
	}
	l.Patch(&p)

	want := ListCoordination{SourceList: "A", SourceIndex: 1, TargetIndex: 3}
	if got := l.Snapshot(); got != want {
		t.Errorf("Snapshot() = %+v, want %+v", got, want)
	}
}

func TestListPatchUnmarshalJSONErrors(t *testing.T) {
	for _, input := range []string{`[]`, `{"sourceIndex": "one"}`, `{"sourceList": 5}`} {
		var p ListPatch
		if err := json.Unmarshal([]byte(input), &p); err == nil {
			t.Errorf("expected error for %s", input)
		}
	}
}

func TestListStateJSON(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A").SourceIndex(0))

	var got map[string]any
	if err := json.Unmarshal([]byte(l.JSON()), &got); err != nil {
		t.Fatal(err)
	}
	if got["sourceList"] != "A" || got["sourceIndex"] != float64(0) {
		t.Errorf("JSON = %v", got)
	}
	for _, key := range []string{"targetList", "targetIndex", "targetPosition"} {
		v, ok := got[key]
		if !ok || v != nil {
			t.Errorf("%s = %v (present=%v), want null", key, v, ok)
		}
	}
}

func TestListStateLog(t *testing.T) {
	l := NewListState(nil)
	l.Patch(NewPatch().SourceList("A"))
	l.Log("after patch")
}
