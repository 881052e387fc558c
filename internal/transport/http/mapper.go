package http

import (
	"encoding/json"

	"github.com/arkail/chatroom-server/internal/core"
	"github.com/arkail/chatroom-server/internal/proto"
	"github.com/arkail/chatroom-server/internal/store"
)

func inboundToCommand(inbound proto.Inbound) (*core.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeMessage:
		var msg proto.MessageData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &core.Command{
			Kind: core.CommandSendMessage,
			Candidate: store.Candidate{
				Username: msg.Username,
				Content:  msg.Content,
				FileURL:  msg.FileURL,
			},
		}, nil, nil
	case proto.InboundTypeHistory:
		var hist proto.HistoryData
		if err := json.Unmarshal(inbound.Data, &hist); err != nil {
			return nil, nil, err
		}
		if hist.Page < 1 {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "page must be positive"}, nil
		}
		return &core.Command{
			Kind: core.CommandRequestHistory,
			Page: hist.Page,
		}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventMessage:
		return proto.Outbound{
			Type: proto.OutboundTypeMessage,
			Data: eventMessage(event.Message),
		}
	case core.EventHistory:
		return proto.Outbound{
			Type: proto.OutboundTypeHistory,
			Data: proto.EventHistory{
				Messages: eventMessages(event.Messages),
			},
		}
	case core.EventHistoryPage:
		return proto.Outbound{
			Type: proto.OutboundTypeHistoryPage,
			Data: proto.EventHistoryPage{
				Messages:    eventMessages(event.Messages),
				TotalPages:  event.TotalPages,
				CurrentPage: event.Page,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown event"}}
	}
}

func eventMessage(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:        msg.ID,
		Username:  msg.Username,
		Content:   msg.Content,
		FileURL:   msg.FileURL,
		Timestamp: msg.CreatedAt,
	}
}

func eventMessages(messages []core.Message) []proto.EventMessage {
	out := make([]proto.EventMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, eventMessage(msg))
	}
	return out
}
