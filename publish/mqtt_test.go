package publish

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockToken struct{ err error }

func (t *mockToken) Wait() bool                     { return true }
func (t *mockToken) WaitTimeout(time.Duration) bool { return true }
func (t *mockToken) Done() <-chan struct{}          { ch := make(chan struct{}); close(ch); return ch }
func (t *mockToken) Error() error                   { return t.err }

type published struct {
	topic   string
	payload []byte
}

// mockClient 只实现发布相关的方法, 其余方法调用时会 panic
type mockClient struct {
	mqtt.Client
	mu         sync.Mutex
	connected  bool
	publishErr error
	messages   []published
}

func (c *mockClient) IsConnected() bool { return c.connected }

func (c *mockClient) Publish(topic string, _ byte, _ bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, payload: payload.([]byte)})
	return &mockToken{err: c.publishErr}
}

func TestPublishLocate(t *testing.T) {
	client := &mockClient{connected: true}
	p := NewPublisher(client, "palace-guide/locate")

	err := p.PublishLocate(LocateEvent{
		Source:            "fix",
		Latitude:          37.5796,
		Longitude:         126.977,
		BuildingID:        "geunjeongjeon",
		InsideManagedArea: true,
	})
	require.NoError(t, err)
	require.Len(t, client.messages, 1)
	assert.Equal(t, "palace-guide/locate/fix", client.messages[0].topic)

	var ev LocateEvent
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &ev))
	assert.Equal(t, "geunjeongjeon", ev.BuildingID)
	assert.NotZero(t, ev.Timestamp)
}

func TestPublishLocateErrors(t *testing.T) {
	err := NewPublisher(&mockClient{}, "t").PublishLocate(LocateEvent{Source: "locate"})
	assert.ErrorContains(t, err, "not connected")

	boom := errors.New("boom")
	err = NewPublisher(&mockClient{connected: true, publishErr: boom}, "t").PublishLocate(LocateEvent{Source: "locate"})
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, Nop{}.PublishLocate(LocateEvent{}))
}
