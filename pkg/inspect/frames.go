package inspect

import (
	"encoding/json"

	"github.com/vango-dev/dndlist/internal/errors"
	"github.com/vango-dev/dndlist/pkg/dnd"
)

// FrameType identifies a websocket frame.
type FrameType string

// Server to client.
const (
	FrameState  FrameType = "state"
	FrameSignal FrameType = "signal"
	FrameError  FrameType = "error"
)

// Client to server. FrameState is also accepted as a request for the
// current state.
const (
	FrameDragStart   FrameType = "dragstart"
	FrameDragEnd     FrameType = "dragend"
	FramePatch       FrameType = "patch"
	FrameClearTarget FrameType = "clearTarget"
	FrameReset       FrameType = "reset"
)

// Frame is a server to client message.
type Frame struct {
	Type FrameType `json:"type"`

	// state
	Interaction json.RawMessage       `json:"interaction,omitempty"`
	Lists       *dnd.ListCoordination `json:"lists,omitempty"`

	// signal
	Signal *dnd.Signal `json:"signal,omitempty"`

	// error
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Source  string `json:"source,omitempty"`
}

// ClientFrame is a client to server message.
type ClientFrame struct {
	Type       FrameType      `json:"type"`
	Target     string         `json:"target,omitempty"`
	DropEffect string         `json:"dropEffect,omitempty"`
	Patch      *dnd.ListPatch `json:"patch,omitempty"`
}

func stateFrame(i dnd.Interaction, lists dnd.ListCoordination) (Frame, error) {
	data, err := dnd.InteractionJSON(i)
	if err != nil {
		return Frame{}, err
	}
	return Frame{Type: FrameState, Interaction: data, Lists: &lists}, nil
}

func signalFrame(sig dnd.Signal) Frame {
	return Frame{Type: FrameSignal, Signal: &sig}
}

func errorFrame(err error) Frame {
	e := errors.FromError(err, "D011")
	return Frame{
		Type:    FrameError,
		Code:    e.Code,
		Message: e.Error(),
		Source:  e.Source,
	}
}
