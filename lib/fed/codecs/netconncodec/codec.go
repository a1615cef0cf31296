package netconncodec

import (
	"context"
	"crypto/sha512"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"net"
	"sync"
	"time"

	"github.com/minio/sha256-simd"

	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/util/ctxwatch"
	"gfx.cafe/gfx/pgdial/lib/util/decorator"
)

var errSSLAlreadyEnabled = errors.New("SSL is already enabled")

// deadline used to interrupt blocked reads and writes on context cancel
var aLongTimeAgo = time.Unix(1, 0)

// Codec frames packets over a net.Conn. Context cancellation is honored by
// bridging it onto the connection deadline while an operation is in flight.
type Codec struct {
	noCopy decorator.NoCopy

	conn net.Conn
	ssl  bool

	decoder fed.Decoder
	encoder fed.Encoder

	watcher *ctxwatch.Watcher

	mu sync.Mutex
}

func NewCodec(conn net.Conn) *Codec {
	c := &Codec{
		conn: conn,
	}
	c.decoder.Reset(conn)
	c.encoder.Reset(conn)
	c.watcher = ctxwatch.NewWatcher(
		func() { _ = c.conn.SetDeadline(aLongTimeAgo) },
		func() { _ = c.conn.SetDeadline(time.Time{}) },
	)
	return c
}

// checkErr converts the deadline error produced by a context interrupt back
// into the context's own error.
func (c *Codec) checkErr(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() && ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

func (c *Codec) ReadPacket(ctx context.Context, typed bool) (fed.Packet, error) {
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	if err := c.decoder.Next(typed); err != nil {
		return nil, c.checkErr(ctx, err)
	}
	return fed.PendingPacket{
		Decoder: &c.decoder,
	}, nil
}

func (c *Codec) WritePacket(ctx context.Context, packet fed.Packet) error {
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	if err := c.encoder.Next(packet.Type(), packet.Length()); err != nil {
		return c.checkErr(ctx, err)
	}
	return c.checkErr(ctx, packet.WriteTo(&c.encoder))
}

func (c *Codec) ReadByte(ctx context.Context) (byte, error) {
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	if err := c.encoder.Flush(); err != nil {
		return 0, c.checkErr(ctx, err)
	}
	b, err := c.decoder.ReadByte()
	return b, c.checkErr(ctx, err)
}

func (c *Codec) WriteByte(ctx context.Context, b byte) error {
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	return c.checkErr(ctx, c.encoder.WriteByte(b))
}

func (c *Codec) Flush(ctx context.Context) error {
	c.watcher.Watch(ctx)
	defer c.watcher.Unwatch()

	return c.checkErr(ctx, c.encoder.Flush())
}

func (c *Codec) Close(ctx context.Context) error {
	if err := c.encoder.Flush(); err != nil {
		_ = c.conn.Close()
		return err
	}
	return c.conn.Close()
}

func (c *Codec) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

func (c *Codec) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

func (c *Codec) SSL() bool {
	return c.ssl
}

func (c *Codec) EnableSSL(ctx context.Context, config *tls.Config, isClient bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ssl {
		return errSSLAlreadyEnabled
	}
	c.ssl = true

	// both buffers must be empty across the protocol switch
	if err := c.encoder.Flush(); err != nil {
		return err
	}
	if c.decoder.Buffered() > 0 {
		return errors.New("expected empty read buffer")
	}

	var sslConn *tls.Conn
	if isClient {
		sslConn = tls.Client(c.conn, config)
	} else {
		sslConn = tls.Server(c.conn, config)
	}
	c.encoder.Reset(sslConn)
	c.decoder.Reset(sslConn)
	c.conn = sslConn
	return sslConn.HandshakeContext(ctx)
}

// ChannelBinding returns the SCRAM channel binding type and data offered by
// the TLS layer, per RFC 5929. tls-unique is preferred when the handshake
// produced one; otherwise the peer certificate hash is used. Both are empty
// on plaintext connections.
func (c *Codec) ChannelBinding() (string, []byte) {
	sslConn, ok := c.conn.(*tls.Conn)
	if !ok {
		return "", nil
	}
	state := sslConn.ConnectionState()

	if len(state.TLSUnique) > 0 {
		return "tls-unique", state.TLSUnique
	}

	if len(state.PeerCertificates) > 0 {
		cert := state.PeerCertificates[0]
		switch cert.SignatureAlgorithm {
		case x509.SHA384WithRSA, x509.ECDSAWithSHA384, x509.SHA384WithRSAPSS:
			sum := sha512.Sum384(cert.Raw)
			return "tls-server-end-point", sum[:]
		case x509.SHA512WithRSA, x509.ECDSAWithSHA512, x509.SHA512WithRSAPSS:
			sum := sha512.Sum512(cert.Raw)
			return "tls-server-end-point", sum[:]
		default:
			// MD5 and SHA-1 signatures are hashed with SHA-256 per the RFC
			sum := sha256.Sum256(cert.Raw)
			return "tls-server-end-point", sum[:]
		}
	}

	return "", nil
}

var _ fed.PacketCodec = (*Codec)(nil)
