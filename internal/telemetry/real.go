package telemetry

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/kowhai/poolmon/internal/store"
)

const (
	publishTimeout = 5 * time.Second
	backlogLimit   = 64
)

// RealPublisher publishes to an MQTT broker. Connection management is
// asynchronous: construction never blocks on the broker, and messages
// published while disconnected are buffered and replayed on reconnect.
// Connection state and message counters are mirrored into the store so the
// display's MQTT status page can render them.
type RealPublisher struct {
	client paho.Client
	store  *store.Store // may be nil

	mu      sync.Mutex
	backlog *backlog
}

// NewRealPublisher creates a publisher that connects (and reconnects) to the
// broker in the background.
func NewRealPublisher(broker string, ds *store.Store) *RealPublisher {
	p := &RealPublisher{
		store:   ds,
		backlog: newBacklog(backlogLimit),
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID("poolmon").
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(p.onConnectionLost)

	p.client = paho.NewClient(opts)

	if ds != nil {
		ds.SetString(store.MQTTBrokerAddress, 0, broker)
		ds.SetUint32(store.MQTTStatus, 0, store.MQTTConnecting)
	}

	p.client.Connect()
	return p
}

func (p *RealPublisher) onConnect(paho.Client) {
	log.Printf("telemetry: connected to broker")
	if p.store != nil {
		count, _ := p.store.GetUint32(store.MQTTConnectionCount, 0)
		p.store.SetUint32(store.MQTTConnectionCount, 0, count+1)
		p.store.SetUint32(store.MQTTStatus, 0, store.MQTTConnected)
	}

	p.mu.Lock()
	events := p.backlog.drain()
	p.mu.Unlock()
	if len(events) == 0 {
		return
	}
	log.Printf("telemetry: replaying %d backlogged events", len(events))
	for _, msg := range events {
		if err := p.send(msg.topic, msg.qos, msg.retained, msg.payload); err != nil {
			log.Printf("telemetry: replay: %v", err)
		}
	}
}

func (p *RealPublisher) onConnectionLost(_ paho.Client, err error) {
	log.Printf("telemetry: connection lost: %v", err)
	if p.store != nil {
		p.store.SetUint32(store.MQTTStatus, 0, store.MQTTDisconnected)
	}
}

// IsConnected reports whether the broker connection is up.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// PublishPump sends a pump transition event at QoS 1: transitions are rare
// and each one matters to downstream energy accounting.
func (p *RealPublisher) PublishPump(event PumpEvent) error {
	payload, err := FormatPumpPayload(event)
	if err != nil {
		return fmt.Errorf("format pump payload: %w", err)
	}
	return p.publish(TopicPumpEvents, 1, false, payload)
}

// PublishSystem sends a lifecycle event at QoS 1.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}
	return p.publish(TopicSystem, 1, event.Retained, payload)
}

// PublishDump sends a store dump at QoS 0. Dumps are bulky, on-demand and
// reproducible, so one requested while disconnected is discarded rather than
// backlogged.
func (p *RealPublisher) PublishDump(dump []byte) error {
	if !p.client.IsConnectionOpen() {
		log.Printf("telemetry: broker unreachable, discarding dump")
		return nil
	}
	return p.send(TopicDiagnostic, 0, false, dump)
}

func (p *RealPublisher) publish(topic string, qos byte, retained bool, payload []byte) error {
	if !p.client.IsConnectionOpen() {
		p.mu.Lock()
		p.backlog.add(pending{topic: topic, payload: payload, qos: qos, retained: retained})
		p.mu.Unlock()
		return nil
	}
	return p.send(topic, qos, retained, payload)
}

func (p *RealPublisher) send(topic string, qos byte, retained bool, payload []byte) error {
	token := p.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	if p.store != nil {
		count, _ := p.store.GetUint32(store.MQTTMessageTxCount, 0)
		p.store.SetUint32(store.MQTTMessageTxCount, 0, count+1)
	}
	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // milliseconds
	return nil
}
