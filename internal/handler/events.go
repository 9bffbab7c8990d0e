package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stock-opname/internal/broadcast"
)

// keepAliveInterval is how often an SSE comment line is written so
// proxies do not reap idle connections during quiet stretches.
const keepAliveInterval = 25 * time.Second

// EventsHandler serves GET /api/events, the server-to-all-clients push
// channel. Each connection is one hub subscription: the stream carries
// only events published after the client connected, so late joiners
// must call List to catch up.
type EventsHandler struct {
	Hub *broadcast.Hub
}

// Stream subscribes the caller to the hub and writes events in SSE
// framing until the client goes away. Delivery is at-most-once; if the
// session's buffer overflows, missed events are not replayed.
func (h *EventsHandler) Stream(c echo.Context) error {
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set("Cache-Control", "no-cache")
	res.Header().Set("Connection", "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	events, cancel := h.Hub.Subscribe()
	defer cancel()

	ticker := time.NewTicker(keepAliveInterval)
	defer ticker.Stop()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev.Data)
			if err != nil {
				continue
			}
			if _, err := fmt.Fprintf(res, "event: %s\ndata: %s\n\n", ev.Name, data); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
