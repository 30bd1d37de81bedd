package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/drawboard-server/internal/config"
	"github.com/vovakirdan/drawboard-server/internal/core"
	"github.com/vovakirdan/drawboard-server/internal/proto"
)

// received mirrors proto.Outbound with the payload left undecoded.
type received struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func startTestServer(t *testing.T, mutate ...func(*config.Config)) (*httptest.Server, *core.Hub) {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(nil, &logger)

	cfg := config.Default()
	cfg.Addr = ":0"
	cfg.ReadHeaderTimeout = time.Second
	for _, m := range mutate {
		m(&cfg)
	}

	server := NewServer(hub, &cfg, &logger)
	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts, hub
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	inbound := proto.Inbound{Type: typ}
	if data != nil {
		payload, err := json.Marshal(data)
		require.NoError(t, err)
		inbound.Data = payload
	}
	require.NoError(t, wsjson.Write(ctx, conn, inbound))
}

// readEvent reads frames until one carries the named event.
func readEvent(ctx context.Context, t *testing.T, conn *websocket.Conn, event string) json.RawMessage {
	t.Helper()

	for {
		var out received
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			t.Fatalf("waiting for %s: %v", event, err)
		}
		if out.Event == event {
			return out.Data
		}
	}
}

// readNext returns the next frame, whatever it is.
func readNext(ctx context.Context, t *testing.T, conn *websocket.Conn) received {
	t.Helper()

	var out received
	require.NoError(t, wsjson.Read(ctx, conn, &out))
	return out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}
