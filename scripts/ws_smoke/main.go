package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/drawboard-server/internal/proto"
)

// frame is an outbound envelope with the payload kept raw for printing.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "tester", "display name")
	color := flag.String("color", "#3366ff", "cursor color")
	room := flag.String("room", "", "room to join; a new one is created when empty")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		inbound := proto.Inbound{Type: typ}
		if data != nil {
			payload, err := json.Marshal(data)
			if err != nil {
				return fmt.Errorf("marshal %s: %w", typ, err)
			}
			inbound.Data = payload
		}
		if err := wsjson.Write(ctx, conn, inbound); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	roomID := *room
	if roomID == "" {
		if err := send(proto.InboundTypeCreateRoom, nil); err != nil {
			return err
		}
		created, err := readUntil(ctx, conn, proto.EventRoomCreated)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(created.Data, &roomID); err != nil {
			return fmt.Errorf("decode room id: %w", err)
		}
		fmt.Printf("Created room %s\n", roomID)
	}

	if err := send(proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: roomID, Username: *user, Color: *color}); err != nil {
		return err
	}
	if _, err := readUntil(ctx, conn, proto.EventUserCount); err != nil {
		return err
	}

	stroke := proto.Stroke{FromX: 0, FromY: 0, ToX: 100, ToY: 100, Color: *color, Size: 4}
	if err := send(proto.InboundTypeDraw, stroke); err != nil {
		return err
	}
	if err := send(proto.InboundTypeSaveCanvas, []proto.Stroke{stroke}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeCursorMove, map[string]float64{"x": 100, "y": 100}); err != nil {
		return err
	}

	fmt.Printf("Joined %s as %s; drew one stroke. Listening until timeout.\n", roomID, *user)
	for {
		f, err := readFrame(ctx, conn)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		printFrame(f)
	}
}

func readFrame(ctx context.Context, conn *websocket.Conn) (frame, error) {
	var f frame
	if err := wsjson.Read(ctx, conn, &f); err != nil {
		return f, fmt.Errorf("read: %w", err)
	}
	return f, nil
}

// readUntil prints frames until the named event arrives.
func readUntil(ctx context.Context, conn *websocket.Conn, event string) (frame, error) {
	for {
		f, err := readFrame(ctx, conn)
		if err != nil {
			return f, err
		}
		printFrame(f)
		if f.Event == event {
			return f, nil
		}
	}
}

func printFrame(f frame) {
	fmt.Printf("Received: type=%s event=%s", f.Type, f.Event)
	if len(f.Data) > 0 {
		fmt.Printf(" data=%s", f.Data)
	}
	fmt.Println()
}
