package http

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arkail/chatroom-server/internal/core"
	"github.com/arkail/chatroom-server/internal/proto"
)

func TestInboundToCommandMessage(t *testing.T) {
	data, _ := json.Marshal(proto.MessageData{Username: "alice", Content: "hi", FileURL: "/uploads/x.png"})

	cmd, protoErr, err := inboundToCommand(proto.Inbound{Type: proto.InboundTypeMessage, Data: data})
	require.NoError(t, err)
	require.Nil(t, protoErr)
	require.NotNil(t, cmd)

	assert.Equal(t, core.CommandSendMessage, cmd.Kind)
	assert.Equal(t, "alice", cmd.Candidate.Username)
	assert.Equal(t, "hi", cmd.Candidate.Content)
	assert.Equal(t, "/uploads/x.png", cmd.Candidate.FileURL)
}

func TestInboundToCommandHistory(t *testing.T) {
	data, _ := json.Marshal(proto.HistoryData{Page: 2})

	cmd, protoErr, err := inboundToCommand(proto.Inbound{Type: proto.InboundTypeHistory, Data: data})
	require.NoError(t, err)
	require.Nil(t, protoErr)
	assert.Equal(t, core.CommandRequestHistory, cmd.Kind)
	assert.Equal(t, 2, cmd.Page)
}

func TestInboundToCommandRejections(t *testing.T) {
	badPage, _ := json.Marshal(proto.HistoryData{Page: 0})

	tests := []struct {
		name    string
		inbound proto.Inbound
		code    string
	}{
		{"unknown type", proto.Inbound{Type: "presence"}, "invalid_message"},
		{"non-positive page", proto.Inbound{Type: proto.InboundTypeHistory, Data: badPage}, core.ErrCodeBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, protoErr, err := inboundToCommand(tt.inbound)
			require.NoError(t, err)
			require.Nil(t, cmd)
			require.NotNil(t, protoErr)
			assert.Equal(t, tt.code, protoErr.Code)
		})
	}
}

func TestOutboundFromEventShapes(t *testing.T) {
	now := time.Now().UTC()
	msg := core.Message{ID: 7, Username: "alice", Content: "hi", FileURL: "", CreatedAt: now}

	out := outboundFromEvent(&core.Event{Kind: core.EventMessage, Message: msg})
	assert.Equal(t, proto.OutboundTypeMessage, out.Type)
	assert.Equal(t, proto.EventMessage{ID: 7, Username: "alice", Content: "hi", Timestamp: now}, out.Data)

	out = outboundFromEvent(&core.Event{Kind: core.EventHistory, Messages: []core.Message{msg}})
	assert.Equal(t, proto.OutboundTypeHistory, out.Type)

	out = outboundFromEvent(&core.Event{Kind: core.EventHistoryPage, Messages: []core.Message{msg}, Page: 2, TotalPages: 5})
	require.Equal(t, proto.OutboundTypeHistoryPage, out.Type)
	page, ok := out.Data.(proto.EventHistoryPage)
	require.True(t, ok)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 5, page.TotalPages)
}
