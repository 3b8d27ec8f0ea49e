package dnd

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// ListID identifies a list. Lists are compared by id, never by content, so
// two lists holding identical items stay distinct. The empty id means none.
type ListID string

// Position is an insertion hint relative to TargetIndex.
type Position string

const (
	PositionBefore Position = "before"
	PositionAfter  Position = "after"
)

// NoIndex marks an unset SourceIndex or TargetIndex.
const NoIndex = -1

// ListCoordination tracks which lists play the source and target roles of a
// list-to-list move.
type ListCoordination struct {
	SourceList     ListID
	TargetList     ListID
	SourceIndex    int
	TargetIndex    int
	TargetPosition Position
}

func emptyCoordination() ListCoordination {
	return ListCoordination{SourceIndex: NoIndex, TargetIndex: NoIndex}
}

// HasTarget reports whether a target list is set.
func (c ListCoordination) HasTarget() bool {
	return c.TargetList != ""
}

// MarshalJSON renders unset fields as null.
func (c ListCoordination) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]any{
		"sourceList":     nullString(string(c.SourceList)),
		"targetList":     nullString(string(c.TargetList)),
		"sourceIndex":    nullIndex(c.SourceIndex),
		"targetIndex":    nullIndex(c.TargetIndex),
		"targetPosition": nullString(string(c.TargetPosition)),
	})
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullIndex(i int) any {
	if i < 0 {
		return nil
	}
	return i
}

// ListPatch is a partial update. Only fields that were set are applied;
// setting a field to its null value ("" or NoIndex) clears it.
//
//	lists.Patch(dnd.NewPatch().TargetIndex(3).TargetPosition(dnd.PositionAfter))
type ListPatch struct {
	sourceList     *ListID
	targetList     *ListID
	sourceIndex    *int
	targetIndex    *int
	targetPosition *Position
}

// NewPatch creates an empty patch.
func NewPatch() *ListPatch {
	return &ListPatch{}
}

func (p *ListPatch) SourceList(id ListID) *ListPatch {
	p.sourceList = &id
	return p
}

func (p *ListPatch) TargetList(id ListID) *ListPatch {
	p.targetList = &id
	return p
}

func (p *ListPatch) SourceIndex(i int) *ListPatch {
	if i < 0 {
		i = NoIndex
	}
	p.sourceIndex = &i
	return p
}

func (p *ListPatch) TargetIndex(i int) *ListPatch {
	if i < 0 {
		i = NoIndex
	}
	p.targetIndex = &i
	return p
}

func (p *ListPatch) TargetPosition(pos Position) *ListPatch {
	p.targetPosition = &pos
	return p
}

// IsEmpty reports whether the patch sets no field.
func (p *ListPatch) IsEmpty() bool {
	return p == nil || (p.sourceList == nil && p.targetList == nil &&
		p.sourceIndex == nil && p.targetIndex == nil && p.targetPosition == nil)
}

// UnmarshalJSON decodes a patch where key presence decides what is applied.
// A key holding null clears that field; absent keys are left alone.
func (p *ListPatch) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*p = ListPatch{}
	for key, raw := range fields {
		isNull := string(raw) == "null"
		switch key {
		case "sourceList", "targetList":
			var id ListID
			if !isNull {
				if err := json.Unmarshal(raw, &id); err != nil {
					return err
				}
			}
			if key == "sourceList" {
				p.SourceList(id)
			} else {
				p.TargetList(id)
			}
		case "sourceIndex", "targetIndex":
			i := NoIndex
			if !isNull {
				if err := json.Unmarshal(raw, &i); err != nil {
					return err
				}
			}
			if key == "sourceIndex" {
				p.SourceIndex(i)
			} else {
				p.TargetIndex(i)
			}
		case "targetPosition":
			var pos Position
			if !isNull {
				if err := json.Unmarshal(raw, &pos); err != nil {
					return err
				}
			}
			p.TargetPosition(pos)
		}
	}
	return nil
}

// ListState is the shared list coordination container.
type ListState struct {
	mu     sync.RWMutex
	state  ListCoordination
	logger *slog.Logger
}

// NewListState creates an empty list state. A nil logger uses slog.Default.
func NewListState(logger *slog.Logger) *ListState {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListState{state: emptyCoordination(), logger: logger}
}

// Patch merges the fields set in p. A nil or empty patch is a no-op.
func (l *ListState) Patch(p *ListPatch) {
	if p.IsEmpty() {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if p.sourceList != nil {
		l.state.SourceList = *p.sourceList
	}
	if p.targetList != nil {
		l.state.TargetList = *p.targetList
	}
	if p.sourceIndex != nil {
		l.state.SourceIndex = *p.sourceIndex
	}
	if p.targetIndex != nil {
		l.state.TargetIndex = *p.targetIndex
	}
	if p.targetPosition != nil {
		l.state.TargetPosition = *p.targetPosition
	}
}

// ClearTarget clears the target list, index and position together and keeps
// the source bookkeeping. Lists call it when a drag leaves them.
func (l *ListState) ClearTarget() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state.TargetList = ""
	l.state.TargetIndex = NoIndex
	l.state.TargetPosition = ""
}

// Reset clears every field. Called at the end of any interaction.
func (l *ListState) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.state = emptyCoordination()
}

// IsSource reports whether id is the current source list.
func (l *ListState) IsSource(id ListID) bool {
	if id == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.SourceList == id
}

// IsTarget reports whether id is the current target list.
func (l *ListState) IsTarget(id ListID) bool {
	if id == "" {
		return false
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state.TargetList == id
}

// Snapshot returns a copy of the current state.
func (l *ListState) Snapshot() ListCoordination {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.state
}

// JSON returns the state as indented JSON with nulls for unset fields.
func (l *ListState) JSON() string {
	data, _ := json.MarshalIndent(l.Snapshot(), "", "  ")
	return string(data)
}

// Log writes the current state at debug level.
func (l *ListState) Log(message string) {
	s := l.Snapshot()
	l.logger.Debug(message,
		"sourceList", s.SourceList,
		"targetList", s.TargetList,
		"sourceIndex", s.SourceIndex,
		"targetIndex", s.TargetIndex,
		"targetPosition", s.TargetPosition,
	)
}
