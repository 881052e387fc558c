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
	"strings"
	"syscall"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/arkail/chatroom-server/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
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

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages and press Enter to send. Type /history <page> for older pages. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *user)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var frame struct {
			Type  string          `json:"type"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			// Treat expected shutdowns quietly.
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

		switch frame.Type {
		case proto.OutboundTypeMessage:
			var evt proto.EventMessage
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				log.Printf("unmarshal message: %v", err)
				continue
			}
			printMessage(evt)
		case proto.OutboundTypeHistory:
			var hist proto.EventHistory
			if err := json.Unmarshal(frame.Data, &hist); err != nil {
				log.Printf("unmarshal history: %v", err)
				continue
			}
			fmt.Printf("--- %d earlier messages ---\n", len(hist.Messages))
			for _, evt := range hist.Messages {
				printMessage(evt)
			}
		case proto.OutboundTypeHistoryPage:
			var page proto.EventHistoryPage
			if err := json.Unmarshal(frame.Data, &page); err != nil {
				log.Printf("unmarshal history page: %v", err)
				continue
			}
			fmt.Printf("--- page %d of %d ---\n", page.CurrentPage, page.TotalPages)
			for _, evt := range page.Messages {
				printMessage(evt)
			}
		case proto.OutboundTypeError:
			if frame.Error != nil {
				fmt.Printf("server error: %s (%s)\n", frame.Error.Msg, frame.Error.Code)
			}
		default:
			fmt.Printf("type=%s data=%s\n", frame.Type, frame.Data)
		}
	}
}

func printMessage(evt proto.EventMessage) {
	line := evt.Content
	if evt.FileURL != "" {
		line = strings.TrimSpace(line + " [file: " + evt.FileURL + "]")
	}
	fmt.Printf("%s %s: %s\n", evt.Timestamp.Local().Format("15:04:05"), evt.Username, line)
}

func writeLoop(ctx context.Context, conn *websocket.Conn, user string) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	send := func(inboundType string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			log.Printf("marshal %s: %v", inboundType, err)
			return
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: inboundType, Data: payload}); err != nil {
			log.Printf("send %s: %v", inboundType, err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if page, isHistory := parseHistoryCommand(text); isHistory {
				send(proto.InboundTypeHistory, proto.HistoryData{Page: page})
				continue
			}
			send(proto.InboundTypeMessage, proto.MessageData{Username: user, Content: text})
		}
	}
}

func parseHistoryCommand(text string) (int, bool) {
	rest, ok := strings.CutPrefix(text, "/history")
	if !ok {
		return 0, false
	}
	page := 1
	if trimmed := strings.TrimSpace(rest); trimmed != "" {
		if _, err := fmt.Sscanf(trimmed, "%d", &page); err != nil || page < 1 {
			fmt.Println("usage: /history <page>")
			return 0, false
		}
	}
	return page, true
}
