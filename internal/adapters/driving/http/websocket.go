package http

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/metrics"
	"github.com/custodia-labs/clinref/internal/typeahead"
)

const (
	wsReadLimit    = 4096
	wsPongWait     = 60 * time.Second
	wsPingInterval = 20 * time.Second
	wsWriteWait    = 10 * time.Second
)

// Typeahead search kinds
const (
	typeaheadGuidelines = "guidelines"
	typeaheadDrugs      = "drugs"
)

// typeaheadQuery is sent by the client on every keystroke
type typeaheadQuery struct {
	Kind    string `json:"kind"`
	Query   string `json:"query"`
	Country string `json:"country,omitempty"`
}

// typeaheadMessage is sent back for the latest settled query only
type typeaheadMessage struct {
	Type  string `json:"type"` // results, error
	Kind  string `json:"kind"`
	Seq   uint64 `json:"seq"`
	Query string `json:"query"`
	Data  any    `json:"data,omitempty"`
	Error string `json:"error,omitempty"`
}

// wsConn serializes writes to a websocket connection
type wsConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *wsConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	return c.conn.WriteJSON(v)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(wsWriteWait))
}

// handleTypeahead godoc
// @Summary      Search-as-you-type
// @Description  Websocket. The client sends {kind, query, country} per keystroke; results arrive only for the latest query once typing settles. The token may be passed as access_token.
// @Tags         Search
// @Security     BearerAuth
// @Param        access_token  query  string  false  "Session token"
// @Router       /ws/search [get]
func (s *Server) handleTypeahead(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			return origin == "" || s.cors.Allowed(origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	ws := &wsConn{conn: conn}
	defer conn.Close()

	metrics.TypeaheadSessions.Inc()
	defer metrics.TypeaheadSessions.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	defaultCountry := s.countryFor(r, r.URL.Query().Get("country"))

	var (
		mu      sync.Mutex
		current = typeaheadQuery{Kind: typeaheadGuidelines, Country: defaultCountry}
	)
	latest := func() typeaheadQuery {
		mu.Lock()
		defer mu.Unlock()
		return current
	}

	search := func(ctx context.Context, query string) (any, error) {
		q := latest()
		switch q.Kind {
		case typeaheadDrugs:
			return s.drugService.EnhancedSearch(ctx, query, q.Country)
		default:
			return s.guidelineService.Search(ctx, domain.GuidelineSearchRequest{Query: query, Country: q.Country})
		}
	}

	deliver := func(res typeahead.Result) {
		q := latest()
		msg := typeaheadMessage{Type: "results", Kind: q.Kind, Seq: res.Seq, Query: res.Query, Data: res.Data}
		if res.Err != nil {
			msg = typeaheadMessage{Type: "error", Kind: q.Kind, Seq: res.Seq, Query: res.Query, Error: publicError(res.Err)}
		}
		if err := ws.writeJSON(msg); err != nil {
			s.logger.Debug("typeahead write failed", zap.Error(err))
			cancel()
		}
	}

	session := typeahead.NewSession(ctx, s.cfg.TypeaheadDebounce, search, deliver, s.logger)
	defer session.Close()

	conn.SetReadLimit(wsReadLimit)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	// Reader pump
	go func() {
		defer cancel()
		for {
			var in typeaheadQuery
			if err := conn.ReadJSON(&in); err != nil {
				return
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))

			in.Query = strings.TrimSpace(in.Query)
			if in.Kind != typeaheadDrugs {
				in.Kind = typeaheadGuidelines
			}
			if in.Country == "" {
				in.Country = defaultCountry
			}
			mu.Lock()
			current = in
			mu.Unlock()

			session.Submit(in.Query)
		}
	}()

	ticker := time.NewTicker(wsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := ws.ping(); err != nil {
				return
			}
		}
	}
}

// publicError hides backend detail from clients
func publicError(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrServiceUnavailable):
		return "search is temporarily unavailable"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid query"
	default:
		return "search failed"
	}
}
