package inspect

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/dndlist/internal/errors"
	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
)

var _ dnd.Observer = (*Server)(nil)

// client serializes writes to one connection.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.logger.Debug("inspector client connected", "remote", r.RemoteAddr)

	// Greet with the current state.
	s.sendTo(c, s.currentState())

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if err := s.handleFrame(data); err != nil {
			s.logger.Warn("client frame rejected", "error", err)
			s.sendTo(c, errorFrame(err))
			continue
		}
		s.broadcast(s.currentState())
	}

	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	conn.Close()
	s.logger.Debug("inspector client disconnected", "remote", r.RemoteAddr)
}

// handleFrame applies one client frame to the coordinator.
func (s *Server) handleFrame(data []byte) error {
	var f ClientFrame
	if err := json.Unmarshal(data, &f); err != nil {
		return errors.New("D011").WithDetail("Frames must be JSON objects with a type.").Wrap(err)
	}

	lists := s.coord.Lists()
	switch f.Type {
	case FrameDragStart, FrameDragEnd:
		el, err := s.element(f.Target)
		if err != nil {
			return err
		}
		e := dom.NewDragEvent(string(f.Type))
		if f.Type == FrameDragEnd && f.DropEffect != "" {
			e.DataTransfer.DropEffect = f.DropEffect
		}
		el.Dispatch(e)
	case FramePatch:
		lists.Patch(f.Patch)
	case FrameClearTarget:
		lists.ClearTarget()
	case FrameReset:
		lists.Reset()
	case FrameState:
	default:
		return errors.New("D011").WithSource(string(f.Type))
	}
	return nil
}

func (s *Server) element(id string) (*dom.Node, error) {
	if s.doc == nil {
		return nil, errors.New("D010").WithSource(id).WithDetail("The inspector has no document.")
	}
	el, ok := s.doc.GetElementByID(id)
	if !ok {
		return nil, errors.New("D010").WithSource(id)
	}
	return el, nil
}

func (s *Server) currentState() Frame {
	f, err := stateFrame(s.coord.Store().Snapshot(), s.coord.Lists().Snapshot())
	if err != nil {
		return errorFrame(err)
	}
	return f
}

func (s *Server) sendTo(c *client, f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("frame encode failed", "type", f.Type, "error", err)
		return
	}
	if err := c.send(data); err != nil {
		s.drop(c)
	}
}

// broadcast sends a frame to all connected clients.
func (s *Server) broadcast(f Frame) {
	data, err := json.Marshal(f)
	if err != nil {
		s.logger.Warn("frame encode failed", "type", f.Type, "error", err)
		return
	}

	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		if err := c.send(data); err != nil {
			s.drop(c)
		}
	}
}

func (s *Server) drop(c *client) {
	s.mu.Lock()
	delete(s.clients, c)
	s.mu.Unlock()
	c.conn.Close()
}

// ClientCount returns the number of connected websocket clients.
func (s *Server) ClientCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.clients)
}

// InteractionStarted pushes the new state.
func (s *Server) InteractionStarted(dnd.Interaction) {
	s.broadcast(s.currentState())
}

// InteractionEnded pushes the new state.
func (s *Server) InteractionEnded(dnd.Interaction, dnd.Outcome) {
	s.broadcast(s.currentState())
}

// CloneFailed pushes an error frame.
func (s *Server) CloneFailed(source string, err error) {
	f := errorFrame(err)
	f.Source = source
	s.broadcast(f)
}

// SignalEmitted pushes a signal frame.
func (s *Server) SignalEmitted(sig dnd.Signal) {
	s.broadcast(signalFrame(sig))
}
