package fed

import (
	"context"
	"crypto/tls"
	"net"

	"gfx.cafe/gfx/pgdial/lib/util/decorator"
)

// Conn is a packet stream with an attached middleware chain.
type Conn struct {
	noCopy decorator.NoCopy

	codec PacketCodec

	Middleware []Middleware
}

func NewConn(codec PacketCodec) *Conn {
	return &Conn{
		codec: codec,
	}
}

func (T *Conn) Codec() PacketCodec {
	return T.codec
}

func (T *Conn) Flush(ctx context.Context) error {
	return T.codec.Flush(ctx)
}

func (T *Conn) ReadPacket(ctx context.Context, typed bool) (Packet, error) {
	if err := T.Flush(ctx); err != nil {
		return nil, err
	}

	for {
		packet, err := T.codec.ReadPacket(ctx, typed)
		if err != nil {
			return nil, err
		}
		for _, middleware := range T.Middleware {
			packet, err = middleware.ReadPacket(ctx, packet)
			if err != nil {
				return nil, err
			}
			if packet == nil {
				break
			}
		}
		if packet != nil {
			return packet, nil
		}
	}
}

func (T *Conn) WritePacket(ctx context.Context, packet Packet) error {
	var err error
	for i := len(T.Middleware) - 1; i >= 0; i-- {
		packet, err = T.Middleware[i].WritePacket(ctx, packet)
		if err != nil {
			return err
		}
		if packet == nil {
			return nil
		}
	}
	return T.codec.WritePacket(ctx, packet)
}

func (T *Conn) ReadByte(ctx context.Context) (byte, error) {
	return T.codec.ReadByte(ctx)
}

func (T *Conn) WriteByte(ctx context.Context, b byte) error {
	return T.codec.WriteByte(ctx, b)
}

func (T *Conn) LocalAddr() net.Addr {
	return T.codec.LocalAddr()
}

func (T *Conn) RemoteAddr() net.Addr {
	return T.codec.RemoteAddr()
}

func (T *Conn) SSL() bool {
	return T.codec.SSL()
}

func (T *Conn) EnableSSL(ctx context.Context, config *tls.Config, isClient bool) error {
	return T.codec.EnableSSL(ctx, config, isClient)
}

func (T *Conn) Close(ctx context.Context) error {
	return T.codec.Close(ctx)
}
