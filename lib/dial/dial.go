package dial

import (
	"context"
	"net"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/fed/codecs/netconncodec"
	"gfx.cafe/gfx/pgdial/lib/instrumentation/prom"
	"gfx.cafe/gfx/pgdial/lib/session"
)

var tracer = otel.Tracer(
	"pgdial",
	trace.WithInstrumentationAttributes(
		attribute.String("component", "gfx.cafe/gfx/pgdial")),
)

// Dial opens a connection, runs the handshake, and returns the session pair.
// The Connection must be pumped with Run before the Client is usable.
func Dial(ctx context.Context, options Options) (*session.Client, *session.Connection, error) {
	ctx, span := tracer.Start(ctx, "dial",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("server.address", options.Address),
			attribute.String("db.user", options.Username),
		),
	)
	defer span.End()

	start := time.Now()

	var dialer net.Dialer
	raw, err := dialer.DialContext(ctx, options.Network, options.Address)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, newError(KindIO, err)
	}

	conn := fed.NewConn(netconncodec.NewCodec(raw))
	conn.Middleware = append(conn.Middleware, options.Middleware...)
	result, err := Handshake(ctx, conn, options)
	observeHandshake(result, err, time.Since(start))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		_ = conn.Close(ctx)
		return nil, nil, err
	}

	span.SetAttributes(attribute.Int("db.backend_pid", int(result.BackendKey.ProcessID)))
	client, connection := session.NewPair(conn, result.BackendKey, result.Parameters, options.logger())
	return client, connection, nil
}

func observeHandshake(result Result, err error, elapsed time.Duration) {
	labels := prom.HandshakeLabels{
		AuthMethod: result.AuthMethod,
		Result:     "ok",
	}
	if labels.AuthMethod == "" {
		labels.AuthMethod = "none"
	}
	if err != nil {
		labels.Result = "error"
	}
	prom.Handshake.Completed(labels).Inc()
	prom.Handshake.Duration(labels).Observe(float64(elapsed) / float64(time.Millisecond))
}
