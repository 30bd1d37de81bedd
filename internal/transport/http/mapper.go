package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/drawboard-server/internal/core"
	"github.com/vovakirdan/drawboard-server/internal/proto"
)

var errUnknownType = errors.New("unknown message type")

// inboundToCommand maps a decoded envelope to a core command. Any error means
// the frame is a protocol violation and should be dropped.
func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		return &core.Command{Kind: core.CommandCreateRoom}, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if err := decodeData(inbound, &join); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:     core.CommandJoinRoom,
			Room:     join.RoomID,
			Presence: core.Presence{DisplayName: join.Username, ColorTag: join.Color},
		}, nil
	case proto.InboundTypeDraw:
		var stroke proto.Stroke
		if err := decodeData(inbound, &stroke); err != nil {
			return nil, err
		}
		return &core.Command{Kind: core.CommandDraw, Stroke: strokeFromProto(stroke)}, nil
	case proto.InboundTypeSaveCanvas:
		var strokes []proto.Stroke
		if err := decodeData(inbound, &strokes); err != nil {
			return nil, err
		}
		out := make([]core.Stroke, 0, len(strokes))
		for _, s := range strokes {
			out = append(out, strokeFromProto(s))
		}
		return &core.Command{Kind: core.CommandSaveCanvas, Strokes: out}, nil
	case proto.InboundTypeClearCanvas:
		return &core.Command{Kind: core.CommandClearCanvas}, nil
	case proto.InboundTypeCursorMove:
		var cursor proto.CursorMoveData
		if err := decodeData(inbound, &cursor); err != nil {
			return nil, err
		}
		if cursor.X == nil || cursor.Y == nil {
			return nil, fmt.Errorf("%s: x and y are required", inbound.Type)
		}
		return &core.Command{
			Kind:   core.CommandCursorMove,
			Cursor: core.Cursor{X: *cursor.X, Y: *cursor.Y},
		}, nil
	case proto.InboundTypeUserInfo:
		var info proto.UserInfoData
		if err := decodeData(inbound, &info); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:     core.CommandUserInfo,
			Presence: core.Presence{DisplayName: info.Username, ColorTag: info.Color},
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownType, inbound.Type)
	}
}

func decodeData(inbound proto.Inbound, v any) error {
	if len(inbound.Data) == 0 {
		return fmt.Errorf("%s: missing data", inbound.Type)
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		return fmt.Errorf("%s: %w", inbound.Type, err)
	}
	return nil
}

func strokeFromProto(s proto.Stroke) core.Stroke {
	return core.Stroke{
		FromX: s.FromX,
		FromY: s.FromY,
		ToX:   s.ToX,
		ToY:   s.ToY,
		Color: s.Color,
		Size:  s.Size,
	}
}

func strokeToProto(s core.Stroke) proto.Stroke {
	return proto.Stroke{
		FromX: s.FromX,
		FromY: s.FromY,
		ToX:   s.ToX,
		ToY:   s.ToY,
		Color: s.Color,
		Size:  s.Size,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Type: proto.OutboundTypeEvent}
	switch event.Kind {
	case core.EventRoomCreated:
		out.Event = proto.EventRoomCreated
		out.Data = event.Room
	case core.EventCanvasData:
		strokes := make([]proto.Stroke, 0, len(event.Strokes))
		for _, s := range event.Strokes {
			strokes = append(strokes, strokeToProto(s))
		}
		out.Event = proto.EventCanvasData
		out.Data = strokes
	case core.EventUserInfos:
		infos := make(map[string]proto.UserInfo, len(event.Presences))
		for id, p := range event.Presences {
			infos[id] = proto.UserInfo{Username: p.DisplayName, Color: p.ColorTag}
		}
		out.Event = proto.EventUserInfos
		out.Data = infos
	case core.EventUserJoined, core.EventUserInfoUpdate:
		// Presence updates reuse user-joined; clients upsert on it.
		out.Event = proto.EventUserJoined
		out.Data = proto.EventUser{
			UserID:   event.User,
			Username: event.Presence.DisplayName,
			Color:    event.Presence.ColorTag,
		}
	case core.EventUserCount:
		out.Event = proto.EventUserCount
		out.Data = event.Count
	case core.EventDraw:
		out.Event = proto.EventDraw
		out.Data = strokeToProto(event.Stroke)
	case core.EventCursorUpdate:
		out.Event = proto.EventCursorUpdate
		out.Data = proto.EventCursor{
			UserID:   event.User,
			X:        event.Cursor.X,
			Y:        event.Cursor.Y,
			Username: event.Presence.DisplayName,
			Color:    event.Presence.ColorTag,
		}
	case core.EventClearCanvas:
		out.Event = proto.EventClearCanvas
	}
	return out
}
