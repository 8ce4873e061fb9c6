package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"skirmish.ai/internal/protocol"
	"skirmish.ai/internal/sim/world"
	"skirmish.ai/internal/sim/world/logic/rates"
)

// Limits caps how fast one connection may issue commands.
type Limits struct {
	CmdWindowTicks uint64
	CmdMax         int
	OutQueue       int
}

func DefaultLimits() Limits {
	return Limits{CmdWindowTicks: 20, CmdMax: 40, OutQueue: 8}
}

type Server struct {
	world  *world.World
	log    *log.Logger
	limits Limits

	upgrader websocket.Upgrader
}

func NewServer(w *world.World, logger *log.Logger) *Server {
	s := &Server{
		world:  w,
		log:    logger,
		limits: DefaultLimits(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  64 * 1024,
			WriteBufferSize: 64 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
	return s
}

// SetLimits replaces the per-connection limits. Call before serving.
func (s *Server) SetLimits(l Limits) {
	if l.OutQueue <= 0 {
		l.OutQueue = DefaultLimits().OutQueue
	}
	s.limits = l
}

func (s *Server) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		conn, err := s.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		playerID, out := s.handshake(r.Context(), conn)
		if playerID == 0 {
			return
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// Only the writer goroutine touches the connection for writes;
		// the reader hands its ERROR replies over on errs.
		errs := make(chan []byte, 4)
		go func() {
			for {
				var b []byte
				select {
				case <-ctx.Done():
					return
				case b = <-errs:
				case b = <-out:
				}
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					cancel()
					return
				}
			}
		}()

		window := rates.Window{Ticks: s.limits.CmdWindowTicks, Max: s.limits.CmdMax}
		reply := func(code, msg string) {
			b, err := json.Marshal(errorMsg(code, msg))
			if err != nil {
				return
			}
			select {
			case errs <- b:
			default:
			}
		}

		// Reader loop.
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			_, msg, err := conn.ReadMessage()
			if err != nil {
				cancel()
				break
			}
			base, err := protocol.DecodeBase(msg)
			if err != nil || base.Type != protocol.TypeCmd {
				reply(protocol.ErrProtoBadRequest, "expected CMD")
				continue
			}
			if err := protocol.ValidateCommand(msg); err != nil {
				reply(protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			var cmd protocol.CmdMsg
			if err := json.Unmarshal(msg, &cmd); err != nil {
				reply(protocol.ErrProtoBadRequest, err.Error())
				continue
			}
			if cmd.ProtocolVersion != protocol.Version {
				reply(protocol.ErrProtoBadRequest, "bad protocol_version")
				continue
			}
			if ok, cooldown := window.Allow(s.world.CurrentTick()); !ok {
				reply(protocol.ErrRateLimit, fmt.Sprintf("retry in %d ticks", cooldown))
				continue
			}
			select {
			case s.world.Inbox() <- world.CommandFromMsg(playerID, cmd):
			default:
				reply(protocol.ErrMatchBusy, "command inbox full")
			}
		}

		s.world.Leave() <- playerID
		if s.log != nil {
			s.log.Printf("player %d disconnected", playerID)
		}
	}
}

func (s *Server) handshake(ctx context.Context, conn *websocket.Conn) (playerID int, out chan []byte) {
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return 0, nil
	}

	base, err := protocol.DecodeBase(msg)
	if err != nil || base.Type != protocol.TypeHello {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected HELLO"), time.Now().Add(time.Second))
		return 0, nil
	}
	if err := protocol.ValidateHello(msg); err != nil {
		_ = writeJSON(conn, errorMsg(protocol.ErrProtoBadRequest, err.Error()))
		return 0, nil
	}
	var hello protocol.HelloMsg
	if err := json.Unmarshal(msg, &hello); err != nil {
		return 0, nil
	}
	if hello.ProtocolVersion != protocol.Version {
		_ = conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "bad protocol_version"), time.Now().Add(time.Second))
		return 0, nil
	}

	out = make(chan []byte, s.limits.OutQueue)
	respCh := make(chan world.JoinResponse, 1)
	joinCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	select {
	case s.world.Join() <- world.JoinRequest{Name: hello.Name, Seat: hello.Seat, Out: out, Resp: respCh}:
	case <-joinCtx.Done():
		_ = writeJSON(conn, errorMsg(protocol.ErrMatchBusy, "join timed out"))
		return 0, nil
	}
	var resp world.JoinResponse
	select {
	case resp = <-respCh:
	case <-joinCtx.Done():
		// The seat may still be granted; release it once the answer lands.
		go func() {
			if r := <-respCh; r.Code == "" {
				s.world.Leave() <- r.Welcome.PlayerID
			}
		}()
		_ = writeJSON(conn, errorMsg(protocol.ErrMatchBusy, "join timed out"))
		return 0, nil
	}
	if resp.Code != "" {
		_ = writeJSON(conn, errorMsg(resp.Code, "join rejected"))
		return 0, nil
	}

	if err := writeJSON(conn, resp.Welcome); err != nil {
		s.world.Leave() <- resp.Welcome.PlayerID
		return 0, nil
	}
	if s.log != nil {
		s.log.Printf("player %d joined as %q (team %d)", resp.Welcome.PlayerID, hello.Name, resp.Welcome.Team)
	}
	return resp.Welcome.PlayerID, out
}

func errorMsg(code, msg string) protocol.ErrorMsg {
	return protocol.ErrorMsg{
		Type:            protocol.TypeError,
		ProtocolVersion: protocol.Version,
		Code:            code,
		Message:         msg,
	}
}

func writeJSON(conn *websocket.Conn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, b)
}
