package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/drawboard-server/internal/proto"
)

const usage = `Commands:
  draw x1 y1 x2 y2 [size]   draw a segment
  cursor x y                move your cursor
  clear                     clear the canvas for everyone
  name NAME [COLOR]         change display name and color
  save                      save the segments drawn in this session as the canvas`

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_board: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "display name")
	color := flag.String("color", "#33aa55", "stroke and cursor color")
	room := flag.String("room", "lobby", "room to join")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")
	conn.SetReadLimit(16 << 20)

	b := &board{conn: conn, color: *color}
	if err := b.send(ctx, proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: *room, Username: *user, Color: *color}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s as %s in room %s\n", *addr, *user, *room)
	fmt.Println(usage)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	b.writeLoop(ctx)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

type board struct {
	conn    *websocket.Conn
	color   string
	strokes []proto.Stroke
}

func (b *board) send(ctx context.Context, typ string, data any) error {
	inbound := proto.Inbound{Type: typ}
	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		inbound.Data = payload
	}
	if err := wsjson.Write(ctx, b.conn, inbound); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		switch f.Event {
		case proto.EventUserJoined:
			var evt proto.EventUser
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("* %s (%s) is here as %s\n", evt.Username, evt.Color, evt.UserID)
		case proto.EventUserInfos:
			var infos map[string]proto.UserInfo
			if err := json.Unmarshal(f.Data, &infos); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			for id, info := range infos {
				fmt.Printf("* %s (%s) is here as %s\n", info.Username, info.Color, id)
			}
		case proto.EventUserCount:
			fmt.Printf("* %s user(s) in room\n", f.Data)
		case proto.EventCanvasData:
			var strokes []proto.Stroke
			if err := json.Unmarshal(f.Data, &strokes); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("* canvas has %d segment(s)\n", len(strokes))
		case proto.EventDraw:
			var s proto.Stroke
			if err := json.Unmarshal(f.Data, &s); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("draw (%g,%g)->(%g,%g) %s size %g\n", s.FromX, s.FromY, s.ToX, s.ToY, s.Color, s.Size)
		case proto.EventCursorUpdate:
			var c proto.EventCursor
			if err := json.Unmarshal(f.Data, &c); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("%s cursor at (%g,%g)\n", c.Username, c.X, c.Y)
		case proto.EventClearCanvas:
			fmt.Println("* canvas cleared")
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, f.Data)
		}
	}
}

func (b *board) writeLoop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			fields := strings.Fields(line)
			if len(fields) == 0 {
				continue
			}
			if err := b.exec(ctx, fields); err != nil {
				if ctx.Err() != nil {
					return
				}
				fmt.Println(err)
			}
		}
	}
}

func (b *board) exec(ctx context.Context, fields []string) error {
	switch fields[0] {
	case "draw":
		nums, err := floats(fields[1:])
		if err != nil || (len(nums) != 4 && len(nums) != 5) {
			return errors.New("usage: draw x1 y1 x2 y2 [size]")
		}
		size := 2.0
		if len(nums) == 5 {
			size = nums[4]
		}
		s := proto.Stroke{FromX: nums[0], FromY: nums[1], ToX: nums[2], ToY: nums[3], Color: b.color, Size: size}
		b.strokes = append(b.strokes, s)
		return b.send(ctx, proto.InboundTypeDraw, s)
	case "cursor":
		nums, err := floats(fields[1:])
		if err != nil || len(nums) != 2 {
			return errors.New("usage: cursor x y")
		}
		return b.send(ctx, proto.InboundTypeCursorMove, map[string]float64{"x": nums[0], "y": nums[1]})
	case "clear":
		b.strokes = nil
		return b.send(ctx, proto.InboundTypeClearCanvas, nil)
	case "save":
		strokes := b.strokes
		if strokes == nil {
			strokes = []proto.Stroke{}
		}
		return b.send(ctx, proto.InboundTypeSaveCanvas, strokes)
	case "name":
		if len(fields) < 2 {
			return errors.New("usage: name NAME [COLOR]")
		}
		if len(fields) > 2 {
			b.color = fields[2]
		}
		return b.send(ctx, proto.InboundTypeUserInfo, proto.UserInfoData{Username: fields[1], Color: b.color})
	default:
		return errors.New(usage)
	}
}

func floats(args []string) ([]float64, error) {
	out := make([]float64, 0, len(args))
	for _, a := range args {
		f, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
