package session

import (
	"context"
	"errors"
	"net"
	"testing"

	"gfx.cafe/gfx/pgdial/lib/fed"
	"gfx.cafe/gfx/pgdial/lib/fed/codecs/netconncodec"
	packets "gfx.cafe/gfx/pgdial/lib/fed/packets/v3.0"
	"gfx.cafe/gfx/pgdial/lib/perror"
	"gfx.cafe/gfx/pgdial/lib/util/strutil"
)

func startSession(t *testing.T, script func(ctx context.Context, conn *fed.Conn) error) (*Client, *Connection) {
	t.Helper()

	clientRaw, serverRaw := net.Pipe()
	server := fed.NewConn(netconncodec.NewCodec(serverRaw))

	errs := make(chan error, 1)
	go func() {
		errs <- script(context.Background(), server)
	}()
	t.Cleanup(func() {
		if err := <-errs; err != nil {
			t.Error("server:", err)
		}
		_ = server.Close(context.Background())
	})

	conn := fed.NewConn(netconncodec.NewCodec(clientRaw))
	client, connection := NewPair(conn, fed.BackendKey{ProcessID: 42, SecretKey: 99}, map[strutil.CIString]string{
		strutil.MakeCIString("server_version"): "16.0",
	}, nil)
	return client, connection
}

func query(sql string) fed.Packet {
	return &fed.RawPacket{
		PacketType: packets.TypeQuery,
		Payload:    append([]byte(sql), 0),
	}
}

// answerQuery reads one Query and responds with a CommandComplete and
// ReadyForQuery.
func answerQuery(ctx context.Context, conn *fed.Conn, tag string) error {
	packet, err := conn.ReadPacket(ctx, true)
	if err != nil {
		return err
	}
	if packet.Type() != packets.TypeQuery {
		return errors.New("expected query")
	}
	var raw fed.RawPacket
	if err = fed.ToConcrete(&raw, packet); err != nil {
		return err
	}

	complete := &fed.RawPacket{
		PacketType: packets.TypeCommandComplete,
		Payload:    append([]byte(tag), 0),
	}
	if err = conn.WritePacket(ctx, complete); err != nil {
		return err
	}
	ready := packets.ReadyForQuery('I')
	if err = conn.WritePacket(ctx, &ready); err != nil {
		return err
	}
	return conn.Flush(ctx)
}

func expectTerminate(ctx context.Context, conn *fed.Conn) error {
	packet, err := conn.ReadPacket(ctx, true)
	if err != nil {
		return err
	}
	if packet.Type() != packets.TypeTerminate {
		return errors.New("expected terminate")
	}
	return nil
}

func TestRoundTrip(t *testing.T) {
	client, connection := startSession(t, func(ctx context.Context, server *fed.Conn) error {
		if err := answerQuery(ctx, server, "SELECT 1"); err != nil {
			return err
		}
		return expectTerminate(ctx, server)
	})

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(context.Background())
	}()

	replies := make(chan fed.Packet, 8)
	if !client.Submit(Request{
		Packets: []fed.Packet{query("SELECT 1")},
		Replies: replies,
	}) {
		t.Fatal("submit failed")
	}

	var received []fed.Packet
	for reply := range replies {
		received = append(received, reply)
	}
	if len(received) != 1 || received[0].Type() != packets.TypeCommandComplete {
		t.Fatal("unexpected replies:", received)
	}

	client.Close()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestRequestOrder(t *testing.T) {
	client, connection := startSession(t, func(ctx context.Context, server *fed.Conn) error {
		if err := answerQuery(ctx, server, "SELECT 1"); err != nil {
			return err
		}
		if err := answerQuery(ctx, server, "SELECT 2"); err != nil {
			return err
		}
		return expectTerminate(ctx, server)
	})

	first := make(chan fed.Packet, 8)
	second := make(chan fed.Packet, 8)
	client.Submit(Request{Packets: []fed.Packet{query("SELECT 1")}, Replies: first})
	client.Submit(Request{Packets: []fed.Packet{query("SELECT 2")}, Replies: second})
	client.Close()

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(context.Background())
	}()

	tagOf := func(replies chan fed.Packet) string {
		reply := <-replies
		raw, ok := reply.(*fed.RawPacket)
		if !ok {
			t.Fatal("expected a raw packet")
		}
		return string(raw.Payload[:len(raw.Payload)-1])
	}
	if tag := tagOf(first); tag != "SELECT 1" {
		t.Error("unexpected first tag:", tag)
	}
	if tag := tagOf(second); tag != "SELECT 2" {
		t.Error("unexpected second tag:", tag)
	}

	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestParameterUpdates(t *testing.T) {
	client, connection := startSession(t, func(ctx context.Context, server *fed.Conn) error {
		packet, err := server.ReadPacket(ctx, true)
		if err != nil {
			return err
		}
		if packet.Type() != packets.TypeQuery {
			return errors.New("expected query")
		}
		var raw fed.RawPacket
		if err = fed.ToConcrete(&raw, packet); err != nil {
			return err
		}

		if err = server.WritePacket(ctx, &packets.ParameterStatus{
			Key:   "TimeZone",
			Value: "UTC",
		}); err != nil {
			return err
		}
		ready := packets.ReadyForQuery('I')
		if err = server.WritePacket(ctx, &ready); err != nil {
			return err
		}
		if err = server.Flush(ctx); err != nil {
			return err
		}
		return expectTerminate(ctx, server)
	})

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(context.Background())
	}()

	replies := make(chan fed.Packet, 8)
	client.Submit(Request{
		Packets: []fed.Packet{query("SET TIME ZONE 'UTC'")},
		Replies: replies,
	})
	for range replies {
	}

	if connection.Parameter("TimeZone") != "UTC" {
		t.Error("expected parameter update, got", connection.Parameter("TimeZone"))
	}
	if connection.Parameter("server_version") != "16.0" {
		t.Error("handshake parameters should be preserved")
	}

	client.Close()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
}

func TestFailedRoundTripReportsInBand(t *testing.T) {
	client, connection := startSession(t, func(ctx context.Context, server *fed.Conn) error {
		packet, err := server.ReadPacket(ctx, true)
		if err != nil {
			return err
		}
		if packet.Type() != packets.TypeQuery {
			return errors.New("expected query")
		}
		// drop the connection mid round trip
		return server.Close(ctx)
	})

	done := make(chan error, 1)
	go func() {
		done <- connection.Run(context.Background())
	}()

	replies := make(chan fed.Packet, 8)
	client.Submit(Request{
		Packets: []fed.Packet{query("SELECT 1")},
		Replies: replies,
	})

	var received []fed.Packet
	for reply := range replies {
		received = append(received, reply)
	}
	if len(received) != 1 || received[0].Type() != packets.TypeErrorResponse {
		t.Fatal("expected a synthesized error response, got", received)
	}
	response, ok := received[0].(*packets.ErrorResponse)
	if !ok {
		t.Fatal("expected an error response packet")
	}
	if code := perror.FromPacket(response).Code(); code != perror.InternalError {
		t.Error("unexpected code:", code)
	}

	if err := <-done; err == nil {
		t.Error("expected the pump to report the failure")
	}
}

func TestSubmitAfterClose(t *testing.T) {
	requests, _ := NewPair(nil, fed.BackendKey{}, nil, nil)
	requests.Close()
	if requests.Submit(Request{}) {
		t.Error("submit after close should report false")
	}
}
