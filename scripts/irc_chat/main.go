package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/coder/websocket"

	"github.com/vovakirdan/wirechat-irc/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("irc_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket gateway address")
	nick := flag.String("nick", "cli-user", "nickname")
	channel := flag.String("channel", "#rust", "channel to join")
	password := flag.String("pass", "", "connection password, if the server requires one")
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

	send := func(line string) error {
		return conn.Write(ctx, websocket.MessageText, []byte(line))
	}

	if *password != "" {
		if err := send("PASS " + *password); err != nil {
			return fmt.Errorf("send pass: %w", err)
		}
	}
	if err := send("NICK " + *nick); err != nil {
		return fmt.Errorf("send nick: %w", err)
	}
	if err := send("JOIN " + *channel); err != nil {
		return fmt.Errorf("send join: %w", err)
	}

	fmt.Printf("Connected to %s as %s in %s\n", *addr, *nick, *channel)
	fmt.Println("Type messages and press Enter to send. /quit [reason] to leave. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn, *channel)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
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
		if out := render(string(data)); out != "" {
			fmt.Println(out)
		}
	}
}

// render turns a server line into a short human readable form.
func render(line string) string {
	msg, err := proto.Parse(line)
	if err != nil {
		return line
	}
	nick := sourceNick(line)
	channel, _ := msg.Param(0)

	switch msg.Command {
	case proto.CommandPrivmsg:
		return fmt.Sprintf("[%s] %s: %s", channel, nick, msg.Trailing)
	case proto.CommandJoin:
		return fmt.Sprintf("[%s] %s joined", channel, nick)
	case proto.CommandPart:
		return fmt.Sprintf("[%s] %s left (%s)", channel, nick, msg.Trailing)
	case "332":
		topicChannel, _ := msg.Param(1)
		return fmt.Sprintf("[%s] topic: %s", topicChannel, msg.Trailing)
	case "353":
		namesChannel, _ := msg.Param(2)
		return fmt.Sprintf("[%s] members: %s", namesChannel, msg.Trailing)
	case "366":
		return ""
	default:
		return line
	}
}

func sourceNick(line string) string {
	if !strings.HasPrefix(line, ":") {
		return ""
	}
	source, _, _ := strings.Cut(line[1:], " ")
	nick, _, _ := strings.Cut(source, "!")
	return nick
}

func writeLoop(ctx context.Context, conn *websocket.Conn, channel string) {
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
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			out := "PRIVMSG " + channel + " :" + text
			quitting := false
			if reason, found := strings.CutPrefix(text, "/quit"); found {
				out = "QUIT :" + strings.TrimSpace(reason)
				quitting = true
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(out)); err != nil {
				log.Printf("send error: %v", err)
				return
			}
			if quitting {
				return
			}
		}
	}
}
