package mqtt

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeToken struct {
	ok  bool
	err error
}

func (t *fakeToken) Wait() bool                     { return t.ok }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.ok }
func (t *fakeToken) Error() error                   { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	token *fakeToken

	mu           sync.Mutex
	published    []published
	disconnected int
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.published = append(c.published, published{topic, qos, retained, payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.disconnected++
}

func TestPublish(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{ok: true}}
	p := newPublisher(fc, Config{TopicPrefix: "/zigbee/nwk/", QoS: 1})

	err := p.Publish("data", map[string]any{"sequence": 7})
	require.NoError(t, err)

	require.Len(t, fc.published, 1)
	got := fc.published[0]
	assert.Equal(t, "zigbee/nwk/data", got.topic)
	assert.Equal(t, byte(1), got.qos)
	assert.False(t, got.retained)

	var payload map[string]int
	require.NoError(t, json.Unmarshal(got.payload, &payload))
	assert.Equal(t, 7, payload["sequence"])
}

func TestTopic(t *testing.T) {
	assert.Equal(t, "command", newPublisher(&fakeClient{}, Config{}).Topic("command"))
	assert.Equal(t, "a/b/command", newPublisher(&fakeClient{}, Config{TopicPrefix: "a/b"}).Topic("/command"))
}

func TestPublishErrors(t *testing.T) {
	t.Run("timeout", func(t *testing.T) {
		p := newPublisher(&fakeClient{token: &fakeToken{ok: false}}, Config{})
		assert.ErrorIs(t, p.Publish("data", 1), ErrTimeout)
	})

	t.Run("broker error", func(t *testing.T) {
		brokerErr := errors.New("not authorized")
		p := newPublisher(&fakeClient{token: &fakeToken{ok: true, err: brokerErr}}, Config{})
		assert.ErrorIs(t, p.Publish("data", 1), brokerErr)
	})

	t.Run("unmarshalable", func(t *testing.T) {
		p := newPublisher(&fakeClient{token: &fakeToken{ok: true}}, Config{})
		assert.Error(t, p.Publish("data", make(chan int)))
	})

	t.Run("closed", func(t *testing.T) {
		fc := &fakeClient{token: &fakeToken{ok: true}}
		p := newPublisher(fc, Config{})
		require.NoError(t, p.Close())
		require.NoError(t, p.Close())
		assert.Equal(t, 1, fc.disconnected)
		assert.ErrorIs(t, p.Publish("data", 1), ErrClosed)
	})
}

func TestPublishConcurrentClose(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{ok: true}}
	p := newPublisher(fc, Config{TopicPrefix: "zigbee"})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				err := p.Publish("data", j)
				if err != nil && !errors.Is(err, ErrClosed) {
					t.Errorf("Publish() error = %v", err)
					return
				}
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.NoError(t, p.Close())
	}()
	wg.Wait()

	assert.Equal(t, 1, fc.disconnected)
	assert.ErrorIs(t, p.Publish("data", 1), ErrClosed)
}

func TestDialWithoutBroker(t *testing.T) {
	_, err := Dial(Config{})
	assert.ErrorIs(t, err, ErrNoBroker)
}
