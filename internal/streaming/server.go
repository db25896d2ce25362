package streaming

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zfogg/echoprint/internal/audio"
	fperrors "github.com/zfogg/echoprint/internal/errors"
	"github.com/zfogg/echoprint/internal/index"
	"github.com/zfogg/echoprint/internal/logger"
	"github.com/zfogg/echoprint/internal/metrics"
	"github.com/zfogg/echoprint/internal/session"
)

// sessionBudget is the wall-clock limit a streaming session is allowed to
// run before the server forces a timeout verdict, per the reference
// surface's 20-second budget.
const sessionBudget = 20 * time.Second

const maxMessageSize = 16 * 1024 * 1024 // generous cap for PCM frames

// Server accepts WebSocket upgrades and runs the streaming identification
// protocol, one goroutine per connection, against a shared song index.
type Server struct {
	store *index.Store
}

func NewServer(store *index.Store) *Server {
	return &Server{store: store}
}

// Handler returns the net/http handler for the upgrade endpoint, to be
// mounted on the same mux the one-shot /api/v1/identify handler lives on.
func (s *Server) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			logger.Log.Warn("websocket accept failed", zap.Error(err))
			return
		}
		conn.SetReadLimit(maxMessageSize)
		s.serve(r.Context(), conn)
	}
}

func (s *Server) serve(ctx context.Context, conn *websocket.Conn) {
	sessionID := uuid.New().String()
	ctx, cancel := context.WithTimeout(ctx, sessionBudget)
	defer cancel()
	defer conn.Close(websocket.StatusNormalClosure, "closing")

	sampleRate, format, err := readHeader(ctx, conn)
	if err != nil {
		logger.Log.Warn("protocol error reading stream header", logger.WithSessionID(sessionID), zap.Error(err))
		conn.Close(websocket.StatusPolicyViolation, "malformed header")
		return
	}

	cfg := session.DefaultConfig(sampleRate, format)
	sess := session.New(cfg, s.store)

	verdict := s.runSession(ctx, conn, sess)
	logger.Log.Info("streaming session reached verdict", logger.WithSessionID(sessionID), zap.Int("kind", int(verdict.Kind)))
	s.sendVerdict(ctx, conn, verdict)
}

// readHeader consumes the two text frames the protocol requires before any
// PCM: the input sample rate, then the sample type literal.
func readHeader(ctx context.Context, conn *websocket.Conn) (int, audio.Format, error) {
	_, rateFrame, err := conn.Read(ctx)
	if err != nil {
		return 0, audio.FormatUnknown, fperrors.Wrap(fperrors.ProtocolError, "failed to read sample rate frame", err)
	}
	sampleRate, err := strconv.Atoi(string(rateFrame))
	if err != nil {
		return 0, audio.FormatUnknown, fperrors.Wrap(fperrors.ProtocolError, "sample rate frame is not a decimal integer", err)
	}

	_, formatFrame, err := conn.Read(ctx)
	if err != nil {
		return 0, audio.FormatUnknown, fperrors.Wrap(fperrors.ProtocolError, "failed to read sample type frame", err)
	}
	format, err := audio.ParseFormat(string(formatFrame))
	if err != nil {
		return 0, audio.FormatUnknown, err
	}

	return sampleRate, format, nil
}

// runSession feeds binary PCM frames to the session until it reaches a
// verdict, the client closes the connection, or the wall-clock budget
// enforced by ctx expires.
func (s *Server) runSession(ctx context.Context, conn *websocket.Conn, sess *session.Session) session.Verdict {
	for {
		if sess.Verdict().Kind != session.Pending {
			return sess.Verdict()
		}

		kind, data, err := conn.Read(ctx)
		if err != nil {
			if ctx.Err() != nil {
				sess.Timeout()
				return sess.Verdict()
			}
			// Client went away mid-stream; treat as a timeout verdict so the
			// caller still emits a well-formed close, matching the "closed
			// connection" outcome §7.1 documents.
			sess.Timeout()
			return sess.Verdict()
		}
		if kind != websocket.MessageBinary {
			continue
		}
		if err := sess.PushBytes(data); err != nil {
			continue
		}
	}
}

func (s *Server) sendVerdict(ctx context.Context, conn *websocket.Conn, verdict session.Verdict) {
	m := metrics.Get()
	switch verdict.Kind {
	case session.Found:
		song, err := s.store.LookupSong(verdict.SongID)
		if err != nil || song == nil {
			m.SessionVerdictsTotal.WithLabelValues("timed_out").Inc()
			wsjson.Write(ctx, conn, NewTimeoutVerdict())
			return
		}
		m.SessionVerdictsTotal.WithLabelValues("found").Inc()
		wsjson.Write(ctx, conn, NewSuccessVerdict(song.ID, song.Title, song.Artist, song.Album))
	default:
		m.SessionVerdictsTotal.WithLabelValues("timed_out").Inc()
		wsjson.Write(ctx, conn, NewTimeoutVerdict())
	}
}
