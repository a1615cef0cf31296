package fed

import "context"

// Middleware intercepts packets and possibly changes them. Return a nil
// packet to swallow it.
type Middleware interface {
	ReadPacket(ctx context.Context, packet Packet) (Packet, error)
	WritePacket(ctx context.Context, packet Packet) (Packet, error)
}

func LookupMiddleware[T Middleware](conn *Conn) (T, bool) {
	for _, mw := range conn.Middleware {
		m, ok := mw.(T)
		if ok {
			return m, true
		}
	}

	return *new(T), false
}
