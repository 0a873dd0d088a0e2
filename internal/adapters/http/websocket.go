package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/hydroline/analytics/internal/core/domain"
	"github.com/hydroline/analytics/internal/pkg/metrics"
)

// wsMessage is sent by the client to drive its map session.
type wsMessage struct {
	Action   string `json:"action"`             // "select_tab" | "select_site" | "clear_selection"
	Category string `json:"category,omitempty"` // for select_tab
	SiteID   string `json:"site_id,omitempty"`  // for select_site
}

// wsFrame is sent by the server. Type is one of session, layout, detail,
// cleared or error.
type wsFrame struct {
	Type      string             `json:"type"`
	SessionID string             `json:"session_id,omitempty"`
	ActiveTab domain.Category    `json:"active_tab,omitempty"`
	Layout    *domain.MapLayout  `json:"layout,omitempty"`
	Detail    *domain.SiteDetail `json:"detail,omitempty"`
	Error     string             `json:"error,omitempty"`
}

// WebSocketHandler returns a handler that runs one map session per connection.
// On connect the client receives a session frame and the layout of the default
// tab. Clients then send JSON such as {"action":"select_tab","category":"existing"}
// or {"action":"select_site","site_id":"ex-8"}.
func WebSocketHandler(deps *Dependencies) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sess := deps.Sessions.NewSession()
		log := slog.Default().With("session", sess.ID, "remote", c.RemoteAddr().String())
		log.Info("map session opened")

		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex

		// Helper: thread-safe write
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}
		writeErr := func(msg string) {
			_ = writeJSON(wsFrame{Type: "error", Error: msg})
		}
		sendLayout := func() error {
			layout, err := deps.Maps.Layout(ctx, sess.ActiveTab)
			if err != nil {
				return err
			}
			return writeJSON(wsFrame{Type: "layout", ActiveTab: sess.ActiveTab, Layout: layout})
		}

		if err := writeJSON(wsFrame{Type: "session", SessionID: sess.ID, ActiveTab: sess.ActiveTab}); err != nil {
			return
		}
		if err := sendLayout(); err != nil {
			log.Error("initial layout", "error", err)
			writeErr("layout unavailable")
		}

		// Keep-alive ping
		done := make(chan struct{})
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()
		defer close(done)

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				writeErr("invalid JSON")
				continue
			}

			switch m.Action {
			case "select_tab":
				cat, err := domain.ParseCategory(m.Category)
				if err != nil {
					writeErr("category must be existing or potential")
					continue
				}
				if err := deps.Sessions.SelectTab(ctx, sess, cat); err != nil {
					writeErr(err.Error())
					continue
				}
				if err := sendLayout(); err != nil {
					log.Error("layout", "category", cat, "error", err)
					writeErr("layout unavailable")
				}

			case "select_site":
				detail, err := deps.Sessions.SelectSite(ctx, sess, m.SiteID)
				if err != nil {
					writeErr(err.Error())
					continue
				}
				_ = writeJSON(wsFrame{Type: "detail", ActiveTab: sess.ActiveTab, Detail: detail})

			case "clear_selection":
				deps.Sessions.ClearSelection(ctx, sess)
				_ = writeJSON(wsFrame{Type: "cleared", ActiveTab: sess.ActiveTab})

			default:
				writeErr("unknown action: " + m.Action)
			}
		}

		log.Info("map session closed")
	}
}
