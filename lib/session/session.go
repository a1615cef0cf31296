package session

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"gfx.cafe/gfx/pgdial/lib/fed"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
	"gfx.cafe/gfx/pgdial/lib/perror"
	"gfx.cafe/gfx/pgdial/lib/util/queue"
	"gfx.cafe/gfx/pgdial/lib/util/strutil"
)

// Request is one round trip: Packets are written in order, then every
// response packet is delivered to Replies until the server reports ready,
// at which point Replies is closed. Replies may be nil when the caller does
// not care, otherwise it must be buffered or actively drained.
type Request struct {
	Packets []fed.Packet
	Replies chan fed.Packet
}

// Client is the submission half of a session. It is safe for concurrent use;
// requests are served strictly in submission order.
type Client struct {
	requests *queue.FIFO[Request]
}

// Submit enqueues a request, reporting false after Close.
func (T *Client) Submit(request Request) bool {
	return T.requests.Push(request)
}

// Close stops accepting requests. Queued requests are still served, then the
// session shuts down cleanly.
func (T *Client) Close() {
	T.requests.Close()
}

// Connection owns the server connection. Run pumps it until the Client
// closes or the context is canceled.
type Connection struct {
	conn *fed.Conn

	backendKey fed.BackendKey

	mu         sync.RWMutex
	parameters map[strutil.CIString]string

	// Notifications receives asynchronous NotificationResponse packets when
	// set. Unset, notifications are logged and dropped.
	Notifications chan *packets.NotificationResponse

	requests *queue.FIFO[Request]
	logger   *zap.Logger
}

// NewPair wraps an established connection in a Client/Connection pair.
// backendKey and parameters come from the handshake.
func NewPair(
	conn *fed.Conn,
	backendKey fed.BackendKey,
	parameters map[strutil.CIString]string,
	logger *zap.Logger,
) (*Client, *Connection) {
	if parameters == nil {
		parameters = make(map[strutil.CIString]string)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	requests := new(queue.FIFO[Request])
	return &Client{
			requests: requests,
		}, &Connection{
			conn:       conn,
			backendKey: backendKey,
			parameters: parameters,
			requests:   requests,
			logger:     logger,
		}
}

// BackendKey identifies this session for cancel requests.
func (T *Connection) BackendKey() fed.BackendKey {
	return T.backendKey
}

// Parameter returns the server-reported value of a session parameter.
// Parameter names are case-insensitive.
func (T *Connection) Parameter(name string) string {
	T.mu.RLock()
	defer T.mu.RUnlock()
	return T.parameters[strutil.MakeCIString(name)]
}

// Parameters returns a snapshot of all session parameters.
func (T *Connection) Parameters() map[strutil.CIString]string {
	T.mu.RLock()
	defer T.mu.RUnlock()
	parameters := make(map[strutil.CIString]string, len(T.parameters))
	for key, value := range T.parameters {
		parameters[key] = value
	}
	return parameters
}

func (T *Connection) setParameter(key, value string) {
	T.mu.Lock()
	defer T.mu.Unlock()
	T.parameters[strutil.MakeCIString(key)] = value
}

// Run serves requests until the Client closes or ctx is canceled. On a clean
// shutdown it sends Terminate and returns nil; on ctx cancellation it
// returns ctx.Err(). The connection is closed either way.
func (T *Connection) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, T.requests.Close)
	defer stop()

	for {
		request, ok := T.requests.Pop()
		if !ok {
			err := T.terminate(ctx)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := T.serve(ctx, request); err != nil {
			_ = T.conn.Close(ctx)
			return err
		}
	}
}

func (T *Connection) serve(ctx context.Context, request Request) (err error) {
	if request.Replies != nil {
		// a failed round trip is reported in band as a synthesized
		// ErrorResponse, then the channel closes
		defer func() {
			if err != nil {
				select {
				case request.Replies <- perror.ToPacket(perror.Wrap(err)):
				default:
				}
			}
			close(request.Replies)
		}()
	}

	for _, packet := range request.Packets {
		if err := T.conn.WritePacket(ctx, packet); err != nil {
			return err
		}
	}
	if err := T.conn.Flush(ctx); err != nil {
		return err
	}

	for {
		packet, err := T.conn.ReadPacket(ctx, true)
		if err != nil {
			return err
		}

		switch packet.Type() {
		case packets.TypeParameterStatus:
			var status packets.ParameterStatus
			if err = fed.ToConcrete(&status, packet); err != nil {
				return err
			}
			T.setParameter(status.Key, status.Value)
		case packets.TypeNoticeResponse:
			var notice packets.NoticeResponse
			if err = fed.ToConcrete(&notice, packet); err != nil {
				return err
			}
			response := perror.FromNotice(&notice)
			T.logger.Debug("server notice",
				zap.String("severity", string(response.Severity())),
				zap.String("message", response.Message()),
			)
		case packets.TypeNotificationResponse:
			var notification packets.NotificationResponse
			if err = fed.ToConcrete(&notification, packet); err != nil {
				return err
			}
			if T.Notifications != nil {
				T.Notifications <- &notification
			} else {
				T.logger.Debug("notification",
					zap.String("channel", notification.Channel),
					zap.String("payload", notification.Payload),
				)
			}
		case packets.TypeReadyForQuery:
			return nil
		default:
			if request.Replies != nil {
				var raw fed.RawPacket
				if err = fed.ToConcrete(&raw, packet); err != nil {
					return err
				}
				request.Replies <- &raw
			}
		}
	}
}

func (T *Connection) terminate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)
	if err := T.conn.WritePacket(ctx, &packets.Terminate{}); err != nil {
		_ = T.conn.Close(ctx)
		return err
	}
	if err := T.conn.Flush(ctx); err != nil {
		_ = T.conn.Close(ctx)
		return err
	}
	return T.conn.Close(ctx)
}
