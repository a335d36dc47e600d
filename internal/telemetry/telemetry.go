// Package telemetry publishes pump and lifecycle events over MQTT, with
// abstraction for testing. Publishing is best-effort: a broker outage buffers
// events for replay and never disturbs control.
package telemetry

import (
	"encoding/json"
	"log"
	"time"

	"github.com/kowhai/poolmon/internal/pump"
)

// MQTT topics.
const (
	TopicPumpEvents = "poolmon/pump/events"
	TopicSystem     = "poolmon/system"
	TopicDiagnostic = "poolmon/diagnostic"
)

// PumpEvent records one pump state transition.
type PumpEvent struct {
	Timestamp time.Time
	Pump      string // "cp" or "pp"
	State     pump.State
}

// SystemEvent is a daemon lifecycle event.
type SystemEvent struct {
	Timestamp time.Time
	Event     string // e.g. "STARTUP", "SHUTDOWN"
	Reason    string // e.g. "SIGTERM" (shutdown only)
	Retained  bool
}

// Publisher publishes events to MQTT.
type Publisher interface {
	// PublishPump sends a pump transition event.
	PublishPump(event PumpEvent) error

	// PublishSystem sends a lifecycle event.
	PublishSystem(event SystemEvent) error

	// PublishDump sends a full store dump produced by the diagnostic
	// gesture.
	PublishDump(dump []byte) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// NopPublisher discards all events. Used when telemetry is disabled.
type NopPublisher struct{}

func (NopPublisher) PublishPump(PumpEvent) error     { return nil }
func (NopPublisher) PublishSystem(SystemEvent) error { return nil }
func (NopPublisher) PublishDump([]byte) error        { return nil }
func (NopPublisher) Close() error                    { return nil }

// PumpPayload is the JSON wire format of a pump event.
type PumpPayload struct {
	Pump PumpPayloadInner `json:"pump"`
}

// PumpPayloadInner contains the pump event details.
type PumpPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Name      string `json:"name"`
	State     string `json:"state"`
}

// FormatPumpPayload creates the JSON payload for a pump event.
func FormatPumpPayload(event PumpEvent) ([]byte, error) {
	return json.Marshal(PumpPayload{
		Pump: PumpPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Name:      event.Pump,
			State:     event.State.String(),
		},
	})
}

// SystemPayload is the JSON wire format of a lifecycle event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the lifecycle event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a lifecycle event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// InstrumentedActuator wraps a pump actuator and publishes every successful
// command as a pump event. Controllers only command on transitions, so the
// event stream is the transition history. Publish failures are logged, never
// surfaced: actuation must not depend on the broker.
type InstrumentedActuator struct {
	inner pump.Actuator
	pub   Publisher
	now   func() time.Time
}

// InstrumentActuator wraps inner with event publication.
func InstrumentActuator(inner pump.Actuator, pub Publisher) *InstrumentedActuator {
	return &InstrumentedActuator{inner: inner, pub: pub, now: time.Now}
}

// SetCP commands the circulation pump and publishes the event.
func (a *InstrumentedActuator) SetCP(s pump.State) error {
	if err := a.inner.SetCP(s); err != nil {
		return err
	}
	a.publish("cp", s)
	return nil
}

// SetPP commands the pool pump and publishes the event.
func (a *InstrumentedActuator) SetPP(s pump.State) error {
	if err := a.inner.SetPP(s); err != nil {
		return err
	}
	a.publish("pp", s)
	return nil
}

// Close closes the wrapped actuator.
func (a *InstrumentedActuator) Close() error {
	return a.inner.Close()
}

func (a *InstrumentedActuator) publish(name string, s pump.State) {
	err := a.pub.PublishPump(PumpEvent{
		Timestamp: a.now(),
		Pump:      name,
		State:     s,
	})
	if err != nil {
		log.Printf("telemetry: publish %s event: %v", name, err)
	}
}
