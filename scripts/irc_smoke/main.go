package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/coder/websocket"
)

// lineConn is the smallest common surface of the two transports.
type lineConn interface {
	send(ctx context.Context, line string) error
	recv(ctx context.Context) (string, error)
	close()
}

type wsLines struct{ conn *websocket.Conn }

func (c wsLines) send(ctx context.Context, line string) error {
	return c.conn.Write(ctx, websocket.MessageText, []byte(line))
}

func (c wsLines) recv(ctx context.Context) (string, error) {
	_, data, err := c.conn.Read(ctx)
	return string(data), err
}

func (c wsLines) close() { _ = c.conn.Close(websocket.StatusNormalClosure, "bye") }

type tcpLines struct {
	conn net.Conn
	r    *bufio.Reader
}

func (c tcpLines) send(_ context.Context, line string) error {
	_, err := c.conn.Write([]byte(line + "\r\n"))
	return err
}

func (c tcpLines) recv(ctx context.Context) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		_ = c.conn.SetReadDeadline(deadline)
	}
	line, err := c.r.ReadString('\n')
	return strings.TrimRight(line, "\r\n"), err
}

func (c tcpLines) close() { _ = c.conn.Close() }

func main() {
	if err := run(); err != nil {
		log.Printf("irc_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "ws:// gateway URL or host:port of the IRC listener")
	nick := flag.String("nick", "tester", "nickname")
	channel := flag.String("channel", "#rust", "channel name")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := dial(ctx, *addr)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.close()

	steps := []struct {
		send   string
		expect string
	}{
		{"NICK " + *nick, " 001 " + *nick + " "},
		{"JOIN " + *channel, " 366 " + *nick + " " + *channel + " "},
		{"PRIVMSG " + *channel + " :" + *text, ""},
		{"PING :smoke", "PONG "},
		{"PART " + *channel + " :done", " PART " + *channel + " "},
	}

	for _, step := range steps {
		if err := conn.send(ctx, step.send); err != nil {
			return fmt.Errorf("send %q: %w", step.send, err)
		}
		fmt.Printf(">> %s\n", step.send)
		if step.expect == "" {
			continue
		}
		if err := waitFor(ctx, conn, step.expect); err != nil {
			return err
		}
	}

	fmt.Println("smoke test passed")
	return conn.send(ctx, "QUIT :smoke test finished")
}

func dial(ctx context.Context, addr string) (lineConn, error) {
	if strings.HasPrefix(addr, "ws://") || strings.HasPrefix(addr, "wss://") {
		conn, _, err := websocket.Dial(ctx, addr, nil)
		if err != nil {
			return nil, err
		}
		return wsLines{conn: conn}, nil
	}

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}
	return tcpLines{conn: conn, r: bufio.NewReader(conn)}, nil
}

func waitFor(ctx context.Context, conn lineConn, substr string) error {
	for {
		line, err := conn.recv(ctx)
		if err != nil {
			return fmt.Errorf("waiting for %q: %w", strings.TrimSpace(substr), err)
		}
		fmt.Printf("<< %s\n", line)
		if strings.Contains(line, substr) || strings.HasPrefix(line, strings.TrimSpace(substr)) {
			return nil
		}
	}
}
