package notify

import (
	"encoding/json"
	"io"
	"log"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegisterMessage(t *testing.T) {
	msg, err := parseRegisterMessage([]byte(`{"type":"register","user_id":42}`))
	require.NoError(t, err)
	assert.Equal(t, RegisterMessageType, msg.Type)
	assert.Equal(t, int64(42), msg.UserID)

	for _, raw := range []string{"", "not json", `{"type":"register"}`, `{"user_id":1}`, `{"type":"register","user_id":0}`} {
		_, err := parseRegisterMessage([]byte(raw))
		assert.Error(t, err, "raw %q", raw)
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

	r.Register(1, addr)
	r.Register(0, addr) // invalid id ignored
	r.Register(2, nil)  // missing addr ignored
	r.Register(1, addr) // idempotent
	require.Len(t, r.Snapshot(), 1)

	r.Remove(1)
	assert.Empty(t, r.Snapshot())
}

func startTestServer(t *testing.T, registry *Registry) *Server {
	t.Helper()
	srv := NewServer("127.0.0.1:0", registry, log.New(io.Discard, "", 0))
	go func() { _ = srv.Run() }()
	t.Cleanup(func() { _ = srv.Close() })

	deadline := time.Now().Add(2 * time.Second)
	for srv.currentConn() == nil {
		if time.Now().After(deadline) {
			t.Fatal("notify server did not start listening")
		}
		time.Sleep(5 * time.Millisecond)
	}
	return srv
}

func TestBroadcastRatingUpdateDeliversToRegisteredClients(t *testing.T) {
	registry := NewRegistry()
	srv := startTestServer(t, registry)

	client, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	defer client.Close()
	registry.Register(7, client.LocalAddr().(*net.UDPAddr))

	// broadcasters race the serve loop for the socket; every client
	// still gets each update
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			srv.BroadcastRatingUpdate(3, 4.7)
		}()
	}
	wg.Wait()

	require.NoError(t, client.SetReadDeadline(time.Now().Add(2*time.Second)))
	buf := make([]byte, 2048)
	for i := 0; i < 4; i++ {
		n, _, err := client.ReadFromUDP(buf)
		require.NoError(t, err)

		var msg RatingUpdateMessage
		require.NoError(t, json.Unmarshal(buf[:n], &msg))
		assert.Equal(t, RatingUpdateMessageType, msg.Type)
		assert.Equal(t, int64(3), msg.WorkshopID)
		assert.Equal(t, 4.7, msg.Rating)
	}
}

func TestBroadcastBeforeRunIsANoOp(t *testing.T) {
	srv := NewServer("127.0.0.1:0", NewRegistry(), log.New(io.Discard, "", 0))
	srv.BroadcastRatingUpdate(1, 4.0)
}

func TestCloseStopsRun(t *testing.T) {
	registry := NewRegistry()
	srv := startTestServer(t, registry)

	done := make(chan error, 1)
	go func() { done <- srv.Close() }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("close did not return")
	}
}
