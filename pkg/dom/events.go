package dom

// Drag event types.
const (
	EventDragStart = "dragstart"
	EventDrag      = "drag"
	EventDragEnter = "dragenter"
	EventDragOver  = "dragover"
	EventDragLeave = "dragleave"
	EventDrop      = "drop"
	EventDragEnd   = "dragend"
)

// Drop effects. At dragend, DropEffectNone means no target accepted the drop.
const (
	DropEffectNone = "none"
	DropEffectCopy = "copy"
	DropEffectMove = "move"
	DropEffectLink = "link"
)

// DataTransfer carries the drag operation's effect negotiation and data.
type DataTransfer struct {
	// DropEffect is the effect chosen for the current operation.
	DropEffect string

	// EffectAllowed lists the effects the source permits.
	EffectAllowed string

	data map[string]string
}

// NewDataTransfer returns a DataTransfer in its initial browser state.
func NewDataTransfer() *DataTransfer {
	return &DataTransfer{
		DropEffect:    DropEffectNone,
		EffectAllowed: "uninitialized",
	}
}

// SetData sets data for the drag operation.
func (d *DataTransfer) SetData(format, data string) {
	if d.data == nil {
		d.data = make(map[string]string)
	}
	d.data[format] = data
}

// GetData gets data from the drag operation.
func (d *DataTransfer) GetData(format string) string {
	if d.data == nil {
		return ""
	}
	return d.data[format]
}

// HasData returns true if the format exists in the data transfer.
func (d *DataTransfer) HasData(format string) bool {
	if d.data == nil {
		return false
	}
	_, ok := d.data[format]
	return ok
}

// DragEvent represents a drag-and-drop event.
type DragEvent struct {
	// Type is the event type (EventDragStart, EventDragEnd, ...).
	Type string

	// Target is the element the event was dispatched to.
	Target Element

	// DataTransfer is shared by all events of one drag operation.
	DataTransfer *DataTransfer

	// Position relative to viewport
	ClientX int
	ClientY int

	// Modifier keys
	CtrlKey  bool
	ShiftKey bool
	AltKey   bool
	MetaKey  bool
}

// NewDragEvent creates an event of the given type with a fresh DataTransfer.
func NewDragEvent(eventType string) *DragEvent {
	return &DragEvent{Type: eventType, DataTransfer: NewDataTransfer()}
}

// Listener handles a drag event.
type Listener func(*DragEvent)
