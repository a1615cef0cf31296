package dial

import (
	"context"
	"net"

	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/fed/codecs/netconncodec"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
	"gfx.cafe/gfx/pgdial/lib/instrumentation/prom"
)

// Cancel opens a fresh connection and asks the server to cancel whatever the
// session identified by key is running. The server never replies to a cancel
// request, so a nil return only means the request was sent.
func Cancel(ctx context.Context, options Options, key fed.BackendKey) error {
	err := cancel(ctx, options, key)

	labels := prom.CancelLabels{Result: "ok"}
	if err != nil {
		labels.Result = "error"
	}
	prom.Cancel.Sent(labels).Inc()
	return err
}

func cancel(ctx context.Context, options Options, key fed.BackendKey) error {
	var dialer net.Dialer
	raw, err := dialer.DialContext(ctx, options.Network, options.Address)
	if err != nil {
		return newError(KindIO, err)
	}

	conn := fed.NewConn(netconncodec.NewCodec(raw))
	defer func() {
		_ = conn.Close(ctx)
	}()

	if err = negotiateSSL(ctx, conn, options); err != nil {
		return err
	}

	request := &packets.Startup{
		Mode: &packets.StartupControl{
			Mode: (*packets.StartupControlCancel)(&key),
		},
	}
	if err = conn.WritePacket(ctx, request); err != nil {
		return ioError(err)
	}
	if err = conn.Flush(ctx); err != nil {
		return ioError(err)
	}
	return nil
}
