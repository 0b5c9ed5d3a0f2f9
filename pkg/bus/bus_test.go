package bus

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.DiscardHandler)

type recordingSink struct {
	mu     sync.Mutex
	msgs   []Message
	err    error
	closed bool
}

func (s *recordingSink) Name() string { return "recording" }

func (s *recordingSink) Handle(_ context.Context, m Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.msgs = append(s.msgs, m)
	return s.err
}

func (s *recordingSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func TestHub_AttachDeliversInOrder(t *testing.T) {
	hub := NewHub(discard, 16)
	sink := &recordingSink{}
	hub.Attach(sink, TopicVelocity, TopicJointStates)

	twist := Twist{Linear: Vector3{X: 0.35}}
	joints := Int32MultiArray{Data: []int32{10, 0, 0, 0, 0, -10, 10}}
	hub.PublishVelocity(twist)
	hub.PublishJointStates(joints)

	require.NoError(t, hub.Close())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	assert.True(t, sink.closed)
	assert.Equal(t, []Message{
		{Topic: TopicVelocity, Payload: twist},
		{Topic: TopicJointStates, Payload: joints},
	}, sink.msgs)
}

func TestHub_TopicFilter(t *testing.T) {
	hub := NewHub(discard, 16)
	sink := &recordingSink{err: errors.New("offline")}
	hub.Attach(sink, TopicJointStates)

	hub.PublishVelocity(Twist{})
	hub.PublishJointStates(Int32MultiArray{Data: make([]int32, 7)})
	require.NoError(t, hub.Close())

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.msgs, 1)
	assert.Equal(t, TopicJointStates, sink.msgs[0].Topic)
}

func TestHub_Subscribe(t *testing.T) {
	hub := NewHub(discard, 4)
	defer hub.Close()

	ch, cancel := hub.Subscribe(TopicVelocity)
	hub.PublishVelocity(Twist{Angular: Vector3{Z: -0.35}})

	select {
	case v := <-ch:
		m := v.(Message)
		assert.Equal(t, TopicVelocity, m.Topic)
		assert.Equal(t, -0.35, m.Payload.(Twist).Angular.Z)
	case <-time.After(time.Second):
		t.Fatal("no message received")
	}

	cancel()
	cancel()
	for range ch {
	}
}

func TestHub_PublishAfterClose(t *testing.T) {
	hub := NewHub(discard, 4)
	require.NoError(t, hub.Close())
	require.NoError(t, hub.Close())

	hub.PublishVelocity(Twist{})

	ch, _ := hub.Subscribe(TopicVelocity)
	_, ok := <-ch
	assert.False(t, ok)
}

type fakeArm struct {
	started, stopped, closed int
	writes                   [][]int32
	startErr                 error
}

func (a *fakeArm) Start(context.Context) error { a.started++; return a.startErr }
func (a *fakeArm) Stop(context.Context) error  { a.stopped++; return nil }
func (a *fakeArm) Close() error                 { a.closed++; return nil }
func (a *fakeArm) WriteOffsets(_ context.Context, o []int32) error {
	a.writes = append(a.writes, o)
	return nil
}

func TestArmSink(t *testing.T) {
	arm := &fakeArm{}
	sink := NewArmSink(arm)
	ctx := context.Background()

	require.NoError(t, sink.Handle(ctx, Message{Topic: TopicVelocity, Payload: Twist{}}))
	assert.Zero(t, arm.started)

	for i := int32(1); i <= 2; i++ {
		require.NoError(t, sink.Handle(ctx, Message{
			Topic:   TopicJointStates,
			Payload: Int32MultiArray{Data: []int32{10 * i}},
		}))
	}
	require.NoError(t, sink.Close())

	assert.Equal(t, 1, arm.started)
	assert.Equal(t, [][]int32{{10}, {20}}, arm.writes)
	assert.Equal(t, 1, arm.stopped)
	assert.Equal(t, 1, arm.closed)
}

func TestArmSink_StartFailureRetries(t *testing.T) {
	arm := &fakeArm{startErr: errors.New("no servos")}
	sink := NewArmSink(arm)
	msg := Message{Topic: TopicJointStates, Payload: Int32MultiArray{Data: []int32{0}}}

	assert.Error(t, sink.Handle(context.Background(), msg))
	arm.startErr = nil
	assert.NoError(t, sink.Handle(context.Background(), msg))
	assert.Equal(t, 2, arm.started)

	require.NoError(t, sink.Close())
	assert.Equal(t, 1, arm.stopped)
}

func TestNewWebSocketSink_BadURL(t *testing.T) {
	_, err := NewWebSocketSink("http://rover.local/control")
	assert.Error(t, err)
}

func TestWebSocketSink(t *testing.T) {
	type envelope struct {
		Topic string `json:"topic"`
		Msg   Twist  `json:"msg"`
	}
	received := make(chan envelope, 4)

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer ws.Close()
		for {
			var e envelope
			if err := ws.ReadJSON(&e); err != nil {
				return
			}
			received <- e
		}
	}))
	defer srv.Close()

	sink, err := NewWebSocketSink("ws" + strings.TrimPrefix(srv.URL, "http"))
	require.NoError(t, err)

	twist := Twist{Linear: Vector3{X: -0.35}}
	require.NoError(t, sink.Handle(context.Background(), Message{Topic: TopicVelocity, Payload: twist}))

	select {
	case e := <-received:
		assert.Equal(t, TopicVelocity, e.Topic)
		assert.Equal(t, twist, e.Msg)
	case <-time.After(2 * time.Second):
		t.Fatal("server received nothing")
	}

	assert.NoError(t, sink.Close())
	assert.NoError(t, sink.Close())
}

func TestWebSocketSink_RedialBackoff(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	srv.Close()

	sink, err := NewWebSocketSink(url)
	require.NoError(t, err)
	clock := time.Unix(1000, 0)
	sink.now = func() time.Time { return clock }

	msg := Message{Topic: TopicVelocity, Payload: Twist{}}
	first := sink.Handle(context.Background(), msg)
	require.Error(t, first)
	dialed := sink.lastDial

	clock = clock.Add(100 * time.Millisecond)
	assert.Equal(t, first, sink.Handle(context.Background(), msg))
	assert.Equal(t, dialed, sink.lastDial)

	clock = clock.Add(time.Second)
	assert.Error(t, sink.Handle(context.Background(), msg))
	assert.Equal(t, clock, sink.lastDial)
}
