// Package inspect serves a diagnostics view of a dnd.Coordinator over HTTP.
//
// Routes:
//
//	GET /state     current interaction, {"source": ..., "data": ...}
//	GET /lists     list coordination state
//	GET /elements  ids registered in the dom.Document
//	GET /healthz   liveness
//	GET /metrics   Prometheus exposition
//	GET /ws        websocket stream
//
// The websocket pushes a "state" frame whenever an interaction starts or
// ends and a "signal" frame for every bus signal. Clients may also drive the
// coordinator by sending frames:
//
//	{"type": "dragstart", "target": "chip-1"}
//	{"type": "dragend", "target": "chip-1", "dropEffect": "none"}
//	{"type": "patch", "patch": {"targetList": "done", "targetIndex": 0}}
//	{"type": "clearTarget"}
//	{"type": "reset"}
//	{"type": "state"}
//
// dragstart and dragend are dispatched on the element with that id, so they
// run through whatever dragsource binding is installed on it.
package inspect
