package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"roastlog/internal/roastlog"
	"roastlog/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 1 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000 // 10s in ms
)

// Envelope used for WebSocket messages.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

const envelopeReport = "report"

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      Live roast stream
// @Description  WebSocket. Pushes {"type":"report","data":{session,summary,curve}} every interval. Accepts ?access_token= in place of the header.
// @Tags         analysis
// @Param        id           path   string  true   "Roast ID"
// @Param        mode         query  string  false  "Marker mode (default live)"  Enums(historical,live)
// @Param        ror          query  bool    false  "Include rate of rise"
// @Param        interval     query  string  false  "Push period, e.g. 2s (max 10s)"
// @Param        interval_ms  query  int     false  "Push period in ms (max 10000)"
// @Success      101
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/roasts/{id}/live [get]
// @Security     BearerAuth
func (h *Handler) liveConnect(c *gin.Context) {
	userID, ok := userOrAbort(c)
	if !ok {
		return
	}
	roastID := c.Param("id")
	q, err := parseCurveQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if c.Query("mode") == "" {
		q.Mode = roastlog.ModeLive
	}
	interval := h.parseInterval(c)

	// Fail with a plain HTTP status before upgrading when the roast is not visible.
	first, err := h.services.Analysis.Report(c.Request.Context(), userID, roastID, q)
	if err != nil {
		h.respondServiceError(c, err, "roast_live_report_failed", "roast_id", roastID)
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()
	h.metrics.StreamOpened()
	defer h.metrics.StreamClosed()

	// Configure read limits and pong handler to extend read deadline.
	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	// Reader goroutine to handle control frames and detect disconnects.
	done := make(chan struct{})
	go h.startReader(conn, done)

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	if err := writeEnvelope(conn, wsEnvelope{Type: envelopeReport, Data: first}); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	ctx := c.Request.Context()
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendReport(ctx, conn, userID, roastID, q); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "roast_id", roastID, "err", err)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds,
// falling back to the configured live interval.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}

	return h.liveInterval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Infow("ws_read_closed", "err", err)
			}
			return
		}
	}
}

// sendReport reloads the roast and writes it. A roast deleted mid-stream is
// reported to the client as an error envelope before the stream closes.
func (h *Handler) sendReport(ctx context.Context, conn *websocket.Conn, userID int, roastID string, q service.CurveQuery) error {
	r, err := h.services.Analysis.Report(ctx, userID, roastID, q)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_report_failed", "roast_id", roastID, "err", err)
		}
		_ = writeEnvelope(conn, wsEnvelope{Type: "error", Error: err.Error()})
		return err
	}
	return writeEnvelope(conn, wsEnvelope{Type: envelopeReport, Data: r})
}

func writeEnvelope(conn *websocket.Conn, env wsEnvelope) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(env)
}
