package app

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/relabs-tech/panorama_navigator/internal/pick"
	"github.com/relabs-tech/panorama_navigator/internal/sensor"
)

// connectMQTT connects to broker. A short random suffix keeps several
// instances of the same binary from kicking each other off the broker.
func connectMQTT(broker, clientID string) (mqtt.Client, error) {
	id := clientID + "-" + uuid.NewString()[:8]
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(id).
		SetAutoReconnect(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", broker, token.Error())
	}
	log.Printf("mqtt: connected to %s as %s", broker, id)
	return client, nil
}

func subscribe(client mqtt.Client, topic string, handler mqtt.MessageHandler) error {
	token := client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", topic, token.Error())
	}
	log.Printf("mqtt: subscribed to %s", topic)
	return nil
}

// orientationHandler stores every decodable orientation payload. Malformed
// payloads are logged and dropped.
func orientationHandler(state *sensor.State) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		o, err := sensor.DecodeOrientation(msg.Payload())
		if err != nil {
			log.Printf("mqtt: orientation payload on %s: %v", msg.Topic(), err)
			return
		}
		state.SetOrientation(o)
	}
}

func motionHandler(state *sensor.State) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		m, err := sensor.DecodeMotion(msg.Payload())
		if err != nil {
			log.Printf("mqtt: motion payload on %s: %v", msg.Topic(), err)
			return
		}
		state.SetMotion(m)
	}
}

// triggerHandler requests one pick per message; the payload is ignored.
func triggerHandler(request func()) mqtt.MessageHandler {
	return func(_ mqtt.Client, _ mqtt.Message) {
		request()
	}
}

// publishAsync publishes without waiting for the broker and logs failures
// from a separate goroutine, so the frame loop never waits on the network.
func publishAsync(client mqtt.Client, topic string, retained bool, payload []byte) {
	token := client.Publish(topic, 0, retained, payload)
	go func() {
		if token.Wait() && token.Error() != nil {
			log.Printf("mqtt: publish %s: %v", topic, token.Error())
		}
	}()
}

// mqttPickSink publishes pick results as JSON.
func mqttPickSink(client mqtt.Client, topic string) pick.Sink {
	return pick.SinkFunc(func(r pick.Result) {
		payload, err := json.Marshal(r)
		if err != nil {
			log.Printf("mqtt: pick marshal error: %v", err)
			return
		}
		publishAsync(client, topic, false, payload)
	})
}

// frameThrottle lets at most one frame through per interval.
type frameThrottle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

func (t *frameThrottle) allow(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.last.IsZero() && now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
