package inspect

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/vango-dev/dndlist/pkg/dnd"
	"github.com/vango-dev/dndlist/pkg/dom"
	"github.com/vango-dev/dndlist/pkg/dragsource"
	"github.com/vango-dev/dndlist/pkg/metrics"
)

// wireFrame mirrors Frame with lists left generic so nulls stay visible.
type wireFrame struct {
	Type        FrameType       `json:"type"`
	Interaction json.RawMessage `json:"interaction"`
	Lists       map[string]any  `json:"lists"`
	Signal      *dnd.Signal     `json:"signal"`
	Code        string          `json:"code"`
	Source      string          `json:"source"`
}

type fixture struct {
	coord *dnd.Coordinator
	doc   *dom.Document
	srv   *Server
	ts    *httptest.Server
	reg   *prometheus.Registry
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	reg := prometheus.NewRegistry()
	coord := dnd.New(dnd.WithObserver(metrics.New(metrics.WithRegistry(reg))))
	doc := dom.NewDocument()

	d := dragsource.New(coord)
	d.Bind(doc.CreateElement("div", "chip"), dragsource.Config{Source: "chip", Data: map[string]any{"id": 1}})

	srv := New(coord, doc, append([]Option{WithGatherer(reg)}, opts...)...)
	ts := httptest.NewServer(srv)
	t.Cleanup(func() {
		srv.Close()
		ts.Close()
	})
	return &fixture{coord: coord, doc: doc, srv: srv, ts: ts, reg: reg}
}

func (f *fixture) get(t *testing.T, path string) (int, string) {
	t.Helper()
	resp, err := http.Get(f.ts.URL + path)
	if err != nil {
		t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, string(body)
}

func (f *fixture) dial(t *testing.T, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// greeting
	if fr := readFrame(t, conn); fr.Type != FrameState {
		t.Fatalf("greeting type = %q, want state", fr.Type)
	}
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) wireFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var fr wireFrame
	if err := conn.ReadJSON(&fr); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return fr
}

// readUntil reads frames until one of the given type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, typ FrameType) wireFrame {
	t.Helper()
	for i := 0; i < 10; i++ {
		if fr := readFrame(t, conn); fr.Type == typ {
			return fr
		}
	}
	t.Fatalf("no %q frame", typ)
	return wireFrame{}
}

func TestHTTPEndpoints(t *testing.T) {
	f := newFixture(t)

	if code, body := f.get(t, "/healthz"); code != http.StatusOK || body != "ok" {
		t.Errorf("/healthz = %d %q", code, body)
	}

	if _, body := f.get(t, "/state"); body != "{\n  \"source\": null,\n  \"data\": null\n}" {
		t.Errorf("/state idle = %s", body)
	}

	_ = f.coord.Store().Start("listA", map[string]any{"id": 3})
	f.coord.Lists().Patch(dnd.NewPatch().SourceList("listA").SourceIndex(0))

	_, body := f.get(t, "/state")
	if !strings.Contains(body, `"source": "listA"`) || !strings.Contains(body, `"id": 3`) {
		t.Errorf("/state active = %s", body)
	}

	_, body = f.get(t, "/lists")
	var lists map[string]any
	if err := json.Unmarshal([]byte(body), &lists); err != nil {
		t.Fatal(err)
	}
	if lists["sourceList"] != "listA" || lists["sourceIndex"] != float64(0) || lists["targetList"] != nil {
		t.Errorf("/lists = %v", lists)
	}

	if _, body := f.get(t, "/elements"); body != `["chip"]` {
		t.Errorf("/elements = %s", body)
	}

	if _, body := f.get(t, "/metrics"); !strings.Contains(body, `dndlist_interactions_started_total{notified="false"} 1`) {
		t.Errorf("/metrics missing started counter:\n%s", body)
	}

	if code, _ := f.get(t, "/nope"); code != http.StatusNotFound {
		t.Errorf("unknown route = %d, want 404", code)
	}
}

func TestWebSocketDragLifecycle(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, nil)

	if err := conn.WriteJSON(ClientFrame{Type: FrameDragStart, Target: "chip"}); err != nil {
		t.Fatal(err)
	}
	sig := readUntil(t, conn, FrameSignal)
	if sig.Signal == nil || sig.Signal.Name != dnd.SignalDragStart || sig.Signal.Source != "chip" {
		t.Errorf("signal frame = %+v", sig)
	}
	if !f.coord.Store().Active() {
		t.Fatal("dragstart frame should start an interaction")
	}

	state := readUntil(t, conn, FrameState)
	var view map[string]any
	if err := json.Unmarshal(state.Interaction, &view); err != nil {
		t.Fatal(err)
	}
	if view["source"] != "chip" {
		t.Errorf("state interaction = %v", view)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameDragEnd, Target: "chip", DropEffect: dom.DropEffectNone}); err != nil {
		t.Fatal(err)
	}
	sig = readUntil(t, conn, FrameSignal)
	if sig.Signal == nil || sig.Signal.Name != dnd.SignalCancel {
		t.Errorf("signal frame = %+v", sig)
	}
	readUntil(t, conn, FrameState)
	if f.coord.Store().Active() {
		t.Error("dragend with dropEffect none should cancel")
	}
}

func TestWebSocketListFrames(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, nil)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"patch","patch":{"targetList":"done","targetIndex":2,"targetPosition":"after"}}`)); err != nil {
		t.Fatal(err)
	}
	state := readUntil(t, conn, FrameState)
	if state.Lists["targetList"] != "done" || state.Lists["targetIndex"] != float64(2) {
		t.Errorf("lists after patch = %v", state.Lists)
	}

	if err := conn.WriteJSON(ClientFrame{Type: FrameClearTarget}); err != nil {
		t.Fatal(err)
	}
	state = readUntil(t, conn, FrameState)
	if state.Lists["targetList"] != nil || state.Lists["targetPosition"] != nil {
		t.Errorf("lists after clearTarget = %v", state.Lists)
	}

	f.coord.Lists().Patch(dnd.NewPatch().SourceList("todo"))
	if err := conn.WriteJSON(ClientFrame{Type: FrameReset}); err != nil {
		t.Fatal(err)
	}
	state = readUntil(t, conn, FrameState)
	if state.Lists["sourceList"] != nil {
		t.Errorf("lists after reset = %v", state.Lists)
	}
}

func TestWebSocketErrors(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, nil)

	tests := []struct {
		name  string
		frame string
		code  string
	}{
		{"unknown type", `{"type":"explode"}`, "D011"},
		{"malformed", `not json`, "D011"},
		{"missing element", `{"type":"dragstart","target":"ghost"}`, "D010"},
	}
	for _, tt := range tests {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(tt.frame)); err != nil {
			t.Fatal(err)
		}
		fr := readUntil(t, conn, FrameError)
		if fr.Code != tt.code {
			t.Errorf("%s: code = %q, want %q", tt.name, fr.Code, tt.code)
		}
	}
	if f.coord.Store().Active() {
		t.Error("rejected frames must not start an interaction")
	}
}

func TestWebSocketPushesExternalChanges(t *testing.T) {
	f := newFixture(t)
	conn := f.dial(t, nil)

	if err := f.coord.Store().StartNotify("palette", []int{1, 2}); err != nil {
		t.Fatal(err)
	}
	if fr := readFrame(t, conn); fr.Type != FrameState {
		t.Errorf("first frame = %q, want state", fr.Type)
	}
	if fr := readFrame(t, conn); fr.Type != FrameSignal || fr.Signal.Source != "palette" {
		t.Errorf("second frame = %+v, want palette signal", fr)
	}

	if err := f.coord.Store().StartNotify("bad", func() {}); err == nil {
		t.Fatal("expected clone failure")
	}
	fr := readFrame(t, conn)
	if fr.Type != FrameError || fr.Code != "D001" || fr.Source != "bad" {
		t.Errorf("clone failure frame = %+v", fr)
	}
}

func TestCheckOrigin(t *testing.T) {
	f := newFixture(t, WithAllowedOrigins("http://app.example"))
	url := "ws" + strings.TrimPrefix(f.ts.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(url, http.Header{"Origin": {"http://evil.example"}})
	if err == nil {
		t.Fatal("foreign origin should be rejected")
	}
	if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Errorf("foreign origin response = %v", resp)
	}

	f.dial(t, http.Header{"Origin": {"http://app.example"}})
	f.dial(t, http.Header{"Origin": {f.ts.URL}})
	if n := f.srv.ClientCount(); n != 2 {
		t.Errorf("ClientCount() = %d, want 2", n)
	}
}

func TestCloseStopsObserving(t *testing.T) {
	f := newFixture(t)
	f.dial(t, nil)
	f.srv.Close()

	if n := f.srv.ClientCount(); n != 0 {
		t.Errorf("ClientCount() after Close = %d, want 0", n)
	}
	// Must not write to closed connections.
	_ = f.coord.Store().StartNotify("x", 1)
}

func TestMetricsRouteDisabled(t *testing.T) {
	f := newFixture(t, WithGatherer(nil))

	if code, _ := f.get(t, "/metrics"); code != http.StatusNotFound {
		t.Errorf("/metrics without a gatherer = %d, want 404", code)
	}
	if code, _ := f.get(t, "/healthz"); code != http.StatusOK {
		t.Errorf("/healthz = %d, want 200", code)
	}
}
