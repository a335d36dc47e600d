package store

// ID identifies a resource in the store. Each resource has a fixed type and
// a fixed number of instances, declared in the schema below.
type ID int

const (
	TempValue ID = iota // float, per-sensor temperature in degrees C
	TempLabel           // string, per-sensor label

	FlowRate      // float, litres per minute
	FlowFrequency // float, raw sensor frequency in Hz

	LightDetected    // bool, sensor present at boot
	LightFull        // uint32, raw full-spectrum reading
	LightVisible     // uint32
	LightInfrared    // uint32
	LightIlluminance // uint32, lux

	PowerValue     // float, watts
	PowerTempDelta // float, degrees C across the heater

	PumpCPState // uint32, circulation pump state reported by the I/O board
	PumpPPState // uint32, pool pump state reported by the I/O board

	ControlStateCP // uint32, CP controller's published state
	ControlStatePP // uint32, PP controller's published state

	ControlCPOnDelta            // float, degrees C
	ControlCPOffDelta           // float, degrees C
	ControlFlowThreshold        // float, LPM
	ControlPPCycleCount         // uint32, ON/PAUSE pairs per run
	ControlPPCycleOnDuration    // float, seconds
	ControlPPCyclePauseDuration // float, seconds
	ControlPPDailyEnable        // bool
	ControlPPDailyHour          // int32
	ControlPPDailyMinute        // int32
	ControlTempExpiry           // uint32, seconds before a temperature reading is stale

	DisplayPage             // int32, currently visible page
	DisplayBacklightTimeout // uint32, seconds of input inactivity, 0 disables

	SystemVersion // string
	SystemTimeSet // bool, wall clock has been synchronised

	MQTTStatus          // uint32, connection state
	MQTTConnectionCount // uint32
	MQTTMessageTxCount  // uint32
	MQTTMessageRxCount  // uint32
	MQTTBrokerAddress   // string

	lastID
)

// MQTT connection states stored in MQTTStatus.
const (
	MQTTDisconnected uint32 = iota
	MQTTConnecting
	MQTTConnected
)

// TempInstances is the number of temperature sensor slots.
const TempInstances = 5

type resourceInfo struct {
	name      string
	typ       Type
	instances int
}

var schema = [lastID]resourceInfo{
	TempValue:                   {"temp.value", TypeFloat, TempInstances},
	TempLabel:                   {"temp.label", TypeString, TempInstances},
	FlowRate:                    {"flow.rate", TypeFloat, 1},
	FlowFrequency:               {"flow.frequency", TypeFloat, 1},
	LightDetected:               {"light.detected", TypeBool, 1},
	LightFull:                   {"light.full", TypeUint32, 1},
	LightVisible:                {"light.visible", TypeUint32, 1},
	LightInfrared:               {"light.infrared", TypeUint32, 1},
	LightIlluminance:            {"light.illuminance", TypeUint32, 1},
	PowerValue:                  {"power.value", TypeFloat, 1},
	PowerTempDelta:              {"power.temp_delta", TypeFloat, 1},
	PumpCPState:                 {"pumps.cp.state", TypeUint32, 1},
	PumpPPState:                 {"pumps.pp.state", TypeUint32, 1},
	ControlStateCP:              {"control.cp.state", TypeUint32, 1},
	ControlStatePP:              {"control.pp.state", TypeUint32, 1},
	ControlCPOnDelta:            {"control.cp.on_delta", TypeFloat, 1},
	ControlCPOffDelta:           {"control.cp.off_delta", TypeFloat, 1},
	ControlFlowThreshold:        {"control.flow_threshold", TypeFloat, 1},
	ControlPPCycleCount:         {"control.pp.cycle_count", TypeUint32, 1},
	ControlPPCycleOnDuration:    {"control.pp.on_duration", TypeFloat, 1},
	ControlPPCyclePauseDuration: {"control.pp.pause_duration", TypeFloat, 1},
	ControlPPDailyEnable:        {"control.pp.daily_enable", TypeBool, 1},
	ControlPPDailyHour:          {"control.pp.daily_hour", TypeInt32, 1},
	ControlPPDailyMinute:        {"control.pp.daily_minute", TypeInt32, 1},
	ControlTempExpiry:           {"control.temp_expiry", TypeUint32, 1},
	DisplayPage:                 {"display.page", TypeInt32, 1},
	DisplayBacklightTimeout:     {"display.backlight_timeout", TypeUint32, 1},
	SystemVersion:               {"system.version", TypeString, 1},
	SystemTimeSet:               {"system.time_set", TypeBool, 1},
	MQTTStatus:                  {"mqtt.status", TypeUint32, 1},
	MQTTConnectionCount:         {"mqtt.connection_count", TypeUint32, 1},
	MQTTMessageTxCount:          {"mqtt.tx_count", TypeUint32, 1},
	MQTTMessageRxCount:          {"mqtt.rx_count", TypeUint32, 1},
	MQTTBrokerAddress:           {"mqtt.broker_address", TypeString, 1},
}

// Name returns the dotted resource name, or "unknown" for an ID outside the
// schema.
func (id ID) Name() string {
	if id < 0 || id >= lastID {
		return "unknown"
	}
	return schema[id].name
}
