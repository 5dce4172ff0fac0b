// Command drawbot is a synthetic sketchd client. It joins a room over
// the websocket endpoint and either draws a generated stroke ("draw")
// or prints everything it receives ("watch"). It exists for manual
// testing: run a server, point two drawbots at the same room, and
// watch position frames and control events flow between them.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"

	"github.com/openboard/sketchd/protocol"
)

func main() {
	cmd := &cli.Command{
		Name:  "drawbot",
		Usage: "synthetic client for a sketchd server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "url",
				Value: "ws://localhost:8002/socket",
				Usage: "websocket endpoint of the server",
			},
			&cli.IntFlag{
				Name:  "room",
				Usage: "room code to join (omit to create a new room)",
			},
			&cli.StringFlag{
				Name:  "name",
				Value: "drawbot",
				Usage: "username to join with",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "draw",
				Usage: "join a room and draw a generated stroke",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "shape",
						Value: "circle",
						Usage: "stroke shape: circle or lissajous",
					},
					&cli.IntFlag{
						Name:  "points",
						Value: 120,
						Usage: "number of coordinate pairs in the stroke",
					},
					&cli.DurationFlag{
						Name:  "interval",
						Value: 250 * time.Millisecond,
						Usage: "delay between frames (keep above the rate limit)",
					},
					&cli.BoolFlag{
						Name:  "stay",
						Usage: "keep the connection open after drawing",
					},
				},
				Action: runDraw,
			},
			{
				Name:   "watch",
				Usage:  "join a room and print received events and frames",
				Action: runWatch,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "catchup",
						Usage: "request existing drawing data after joining",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// bot wraps a websocket connection together with the identity the
// server assigned to it at join time.
type bot struct {
	conn *websocket.Conn
	join protocol.JoinData

	writeMu sync.Mutex

	// sent frames, replayed when a joiner asks for catch-up data
	historyMu sync.Mutex
	history   [][]int16
}

// connect dials the server, performs connectInit and waits for the
// joinData response that carries the actual room code and username.
func connect(cmd *cli.Command) (*bot, error) {
	url := cmd.String("url")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", url, err)
	}

	init := protocol.Message{
		Evt: protocol.EvtConnectInit,
		Val: protocol.ConnectInfo{
			RoomCode: protocol.RoomCode(cmd.Int("room")),
			Name:     cmd.String("name"),
		},
	}
	if err := conn.WriteJSON(init); err != nil {
		conn.Close()
		return nil, fmt.Errorf("send connectInit: %w", err)
	}

	b := &bot{conn: conn}
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			return nil, fmt.Errorf("wait for joinData: %w", err)
		}
		if kind != websocket.TextMessage {
			continue
		}
		var msg struct {
			Evt string          `json:"evt"`
			Val json.RawMessage `json:"val"`
		}
		if err := json.Unmarshal(data, &msg); err != nil || msg.Evt != protocol.EvtJoinData {
			continue
		}
		if err := json.Unmarshal(msg.Val, &b.join); err != nil {
			conn.Close()
			return nil, fmt.Errorf("decode joinData: %w", err)
		}
		break
	}
	conn.SetReadDeadline(time.Time{})

	log.Printf("Joined room %d (%q) as %q, %d peer(s) present",
		b.join.RoomCode, b.join.RoomName, b.join.Username, len(b.join.Peers))
	return b, nil
}

func (b *bot) close() {
	b.writeMu.Lock()
	b.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	b.writeMu.Unlock()
	b.conn.Close()
}

// sendFrame emits one binary position frame [room, mode, words...] and
// records it for later catch-up replay.
func (b *bot) sendFrame(mode int16, words []int16) error {
	frame := make([]int16, 0, len(words)+2)
	frame = append(frame, int16(b.join.RoomCode), mode)
	frame = append(frame, words...)

	b.historyMu.Lock()
	b.history = append(b.history, frame)
	b.historyMu.Unlock()

	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	return b.conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeFrame(frame))
}

// requestCatchup asks the room for existing drawing data. The server
// relays the request to one established member, which replays its
// strokes as ordinary frames.
func (b *bot) requestCatchup() error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()
	frame := []int16{int16(b.join.RoomCode), protocol.ModeBulkInit}
	return b.conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeFrame(frame))
}

// replayHistory re-sends every frame drawn so far. Called when the
// server forwards another client's catch-up request to this bot.
func (b *bot) replayHistory() {
	b.historyMu.Lock()
	frames := make([][]int16, len(b.history))
	copy(frames, b.history)
	b.historyMu.Unlock()

	log.Printf("Replaying %d frame(s) for a late joiner", len(frames))
	for _, frame := range frames {
		b.writeMu.Lock()
		err := b.conn.WriteMessage(websocket.BinaryMessage, protocol.EncodeFrame(frame))
		b.writeMu.Unlock()
		if err != nil {
			log.Printf("Replay failed: %v", err)
			return
		}
	}
}

// readLoop prints incoming traffic until the connection drops. Server
// frames arrive as [senderID, room, mode, words...].
func (b *bot) readLoop() {
	for {
		kind, data, err := b.conn.ReadMessage()
		if err != nil {
			log.Printf("Connection closed: %v", err)
			return
		}
		switch kind {
		case websocket.TextMessage:
			var msg protocol.Message
			if err := json.Unmarshal(data, &msg); err != nil {
				log.Printf("Unparseable event: %s", data)
				continue
			}
			usr := protocol.SocketID(-1)
			if msg.Usr != nil {
				usr = *msg.Usr
			}
			log.Printf("Event %q from user %d (room %d, val %v)", msg.Evt, usr, msg.Room, msg.Val)

		case websocket.BinaryMessage:
			frame, err := protocol.DecodeFrame(data)
			if err != nil || len(frame) < 3 {
				log.Printf("Unparseable frame (%d bytes)", len(data))
				continue
			}
			sender, mode := frame[0], frame[2]
			if mode == protocol.ModeBulkInit {
				log.Printf("Catch-up request from user %d", sender)
				b.replayHistory()
				continue
			}
			log.Printf("Frame from user %d: mode %d, %d coordinate pair(s)",
				sender, mode, (len(frame)-3)/2)
		}
	}
}

func runDraw(ctx context.Context, cmd *cli.Command) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.close()

	go b.readLoop()

	var stroke []int16
	points := int(cmd.Int("points"))
	switch shape := cmd.String("shape"); shape {
	case "circle":
		stroke = circleStroke(400, 300, 150, points)
	case "lissajous":
		stroke = lissajousStroke(400, 300, 200, points)
	default:
		return fmt.Errorf("unknown shape %q (want circle or lissajous)", shape)
	}

	chunks := chunkStroke(stroke, 16)
	log.Printf("Drawing %s: %d point(s) in %d frame(s)", cmd.String("shape"), points, len(chunks))

	interval := cmd.Duration("interval")
	for i, chunk := range chunks {
		if err := b.sendFrame(0, chunk); err != nil {
			return fmt.Errorf("send frame %d: %w", i, err)
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	log.Println("Stroke complete")

	if cmd.Bool("stay") {
		log.Println("Staying connected (Ctrl+C to leave)")
		waitForInterrupt(ctx)
	}
	return nil
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	b, err := connect(cmd)
	if err != nil {
		return err
	}
	defer b.close()

	if cmd.Bool("catchup") {
		if err := b.requestCatchup(); err != nil {
			return fmt.Errorf("request catch-up: %w", err)
		}
		log.Println("Requested catch-up data")
	}

	done := make(chan struct{})
	go func() {
		b.readLoop()
		close(done)
	}()

	select {
	case <-done:
	case <-interruptChan(ctx):
		log.Println("Leaving")
	}
	return nil
}

func waitForInterrupt(ctx context.Context) {
	<-interruptChan(ctx)
}

func interruptChan(ctx context.Context) <-chan struct{} {
	out := make(chan struct{})
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		select {
		case <-sig:
		case <-ctx.Done():
		}
		signal.Stop(sig)
		close(out)
	}()
	return out
}
