package notify

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kasuboski/medialink/pkg/storage/sqlite/schema/gen/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"
)

func TestFanout(t *testing.T) {
	ctx := context.Background()
	var first, second atomic.Int32

	f := Fanout{
		NotifierFunc(func(context.Context, Event) { first.Add(1) }),
		NotifierFunc(func(context.Context, Event) { panic("boom") }),
		nil,
		NotifierFunc(func(context.Context, Event) { second.Add(1) }),
		Log{},
		Nop{},
	}

	assert.NotPanics(t, func() {
		f.Notify(ctx, NewEvent(FileAdded, model.ScannedFile{ID: 1}))
	})
	assert.Equal(t, int32(1), first.Load())
	assert.Equal(t, int32(1), second.Load())
}

func TestHub_Broadcast(t *testing.T) {
	hub := NewHub()
	srv := httptest.NewServer(hub)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	hub.Notify(ctx, NewEvent(FileRemoved, model.ScannedFile{ID: 7, SourceFile: "/src/a.mkv"}))

	typ, data, err := conn.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, websocket.MessageText, typ)

	var got Event
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, FileRemoved, got.Type)
	assert.Equal(t, int32(7), got.File.ID)
	assert.Equal(t, "/src/a.mkv", got.File.SourceFile)

	conn.Close(websocket.StatusNormalClosure, "")
	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHub_SlowClientDoesNotBlock(t *testing.T) {
	hub := NewHub(WithClientBuffer(1))
	c := &client{send: make(chan []byte, 1)}
	hub.addClient(c)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			hub.Notify(context.Background(), NewEvent(FileUpdated, model.ScannedFile{ID: int32(i)}))
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("broadcast blocked on a full client")
	}
	assert.Len(t, c.send, 1)

	hub.removeClient(c)
	assert.Equal(t, 0, hub.ClientCount())
}
