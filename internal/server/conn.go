package server

import (
	"errors"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/mcoot/mindroll/internal/protocol"
	"github.com/mcoot/mindroll/internal/rpc"
)

var errNotARequest = &protocol.ProtocolError{Reason: "expected a request"}

// lingerTimeout bounds how long unread input is drained before a forced close
const lingerTimeout = time.Second

// handle runs the read/dispatch/write loop for one connection
func (s *Server) handle(conn net.Conn, id uint64) {
	defer s.wg.Done()

	logger := s.logger.With(
		slog.Uint64("conn_id", id),
		slog.String("remote_addr", conn.RemoteAddr().String()),
	)
	session := rpc.NewSession()

	logger.Info("client connected")

	defer func() {
		usernames := session.Usernames()
		for _, username := range usernames {
			s.rooms.MarkDisconnected(username)
		}
		logger.Info("client disconnected", slog.Any("usernames", usernames))
		_ = conn.Close()
		s.untrack(conn)
	}()

	frames := protocol.NewFrameReader(conn)
	for {
		frame, err := frames.ReadFrame()
		if err != nil {
			s.readFailed(conn, logger, err)
			return
		}

		var resp *protocol.Response
		msg, err := protocol.Decode(frame)
		switch {
		case err != nil:
			resp = rpc.ErrorResponse(err)
		case msg.Request == nil:
			resp = rpc.ErrorResponse(errNotARequest)
		default:
			resp = s.dispatcher.Dispatch(s.ctx, session, msg.Request)
		}

		if err := protocol.WriteResponse(conn, resp); err != nil {
			logger.Debug("write failed", slog.String("error", err.Error()))
			return
		}
	}
}

func (s *Server) readFailed(conn net.Conn, logger *slog.Logger, err error) {
	switch {
	case errors.Is(err, io.EOF):
	case errors.Is(err, protocol.ErrFrameTooLarge):
		// the stream can no longer be split reliably, so answer and hang up
		logger.Warn("frame too large")
		_ = protocol.WriteResponse(conn, rpc.ErrorResponse(&protocol.ProtocolError{
			Reason: "frame too large",
			Err:    err,
		}))
		lingerClose(conn)
	case s.isClosing():
	default:
		logger.Debug("read failed", slog.String("error", err.Error()))
	}
}

// lingerClose half-closes conn and drains what the peer is still sending so
// the final response is not lost to a reset
func lingerClose(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.CloseWrite()
	}
	_ = conn.SetReadDeadline(time.Now().Add(lingerTimeout))
	_, _ = io.Copy(io.Discard, conn)
}
