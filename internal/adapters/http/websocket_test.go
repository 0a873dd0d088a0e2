package http_test

import (
	"net"
	"testing"
	"time"

	fws "github.com/fasthttp/websocket"

	"github.com/hydroline/analytics/internal/core/domain"
)

type wsFrame struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id"`
	ActiveTab domain.Category    `json:"active_tab"`
	Layout    *domain.MapLayout  `json:"layout"`
	Detail    *domain.SiteDetail `json:"detail"`
	Error     string             `json:"error"`
}

func dialMapSession(t *testing.T) *fws.Conn {
	t.Helper()
	app := setupApp(makeDeps())

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go func() { _ = app.Listener(ln) }()
	t.Cleanup(func() { _ = app.Shutdown() })

	conn, _, err := fws.DefaultDialer.Dial("ws://"+ln.Addr().String()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *fws.Conn) wsFrame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f wsFrame
	if err := conn.ReadJSON(&f); err != nil {
		t.Fatalf("read frame: %v", err)
	}
	return f
}

func send(t *testing.T, conn *fws.Conn, msg map[string]string) {
	t.Helper()
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestWebSocket_MapSession(t *testing.T) {
	conn := dialMapSession(t)

	hello := readFrame(t, conn)
	if hello.Type != "session" || hello.SessionID == "" || hello.ActiveTab != domain.CategoryPotential {
		t.Fatalf("unexpected session frame %+v", hello)
	}
	initial := readFrame(t, conn)
	if initial.Type != "layout" || initial.Layout == nil || initial.Layout.Category != domain.CategoryPotential {
		t.Fatalf("unexpected initial layout frame %+v", initial)
	}

	// Sites of the other tab cannot be selected.
	send(t, conn, map[string]string{"action": "select_site", "site_id": "ex-8"})
	if f := readFrame(t, conn); f.Type != "error" {
		t.Errorf("expected error frame, got %+v", f)
	}

	send(t, conn, map[string]string{"action": "select_tab", "category": "existing"})
	layout := readFrame(t, conn)
	if layout.Type != "layout" || layout.Layout.Legend.Title != "Existing Projects" || len(layout.Layout.Markers) != 17 {
		t.Errorf("unexpected layout frame %+v", layout)
	}

	send(t, conn, map[string]string{"action": "select_site", "site_id": "ex-8"})
	detail := readFrame(t, conn)
	if detail.Type != "detail" || detail.Detail == nil || detail.Detail.Location != "28.022°N, 73.311°E" {
		t.Errorf("unexpected detail frame %+v", detail)
	}

	send(t, conn, map[string]string{"action": "clear_selection"})
	if f := readFrame(t, conn); f.Type != "cleared" || f.ActiveTab != domain.CategoryExisting {
		t.Errorf("unexpected cleared frame %+v", f)
	}
}

func TestWebSocket_BadMessages(t *testing.T) {
	conn := dialMapSession(t)
	readFrame(t, conn) // session
	readFrame(t, conn) // layout

	send(t, conn, map[string]string{"action": "select_tab", "category": "planned"})
	if f := readFrame(t, conn); f.Type != "error" {
		t.Errorf("expected error for unknown category, got %+v", f)
	}

	send(t, conn, map[string]string{"action": "zoom"})
	if f := readFrame(t, conn); f.Type != "error" || f.Error != "unknown action: zoom" {
		t.Errorf("expected unknown action error, got %+v", f)
	}

	if err := conn.WriteMessage(fws.TextMessage, []byte("not json")); err != nil {
		t.Fatal(err)
	}
	if f := readFrame(t, conn); f.Error != "invalid JSON" {
		t.Errorf("expected invalid JSON error, got %+v", f)
	}
}
