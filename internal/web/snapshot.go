package web

import (
	"time"

	"github.com/kowhai/poolmon/internal/control"
	"github.com/kowhai/poolmon/internal/display"
	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// TempReading is one temperature sensor slot.
type TempReading struct {
	Index int
	Label string
	Value float64
	Stale bool
}

// Snapshot is a point-in-time view of the store, shaped for presentation.
// It is a value type — safe to use after the reads complete even though the
// underlying resources keep changing.
type Snapshot struct {
	Now       time.Time
	StartTime time.Time

	ControlCP string
	ControlPP string
	PumpCP    string
	PumpPP    string

	Temps     []TempReading
	FlowRate  float64
	FlowStale bool

	Version       string
	Page          string
	MQTTConnected bool
	Broker        string
	TxCount       uint32
	RxCount       uint32
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

func (s *Server) snapshot() Snapshot {
	ds := s.store
	snap := Snapshot{
		Now:       time.Now(),
		StartTime: s.start,
	}

	cpState, _ := ds.GetUint32(store.ControlStateCP, 0)
	snap.ControlCP = pump.State(cpState).String()
	ppState, _ := ds.GetUint32(store.ControlStatePP, 0)
	snap.ControlPP = control.CycleState(ppState).String()

	snap.PumpCP = reportedState(ds, store.PumpCPState)
	snap.PumpPP = reportedState(ds, store.PumpPPState)

	for i := 0; i < store.TempInstances; i++ {
		value, age := ds.GetFloat(store.TempValue, i)
		if age == store.InvalidAge {
			continue
		}
		label, _ := ds.GetString(store.TempLabel, i)
		snap.Temps = append(snap.Temps, TempReading{
			Index: i + 1,
			Label: label,
			Value: value,
			Stale: age > display.MeasurementExpiry,
		})
	}

	var flowAge time.Duration
	snap.FlowRate, flowAge = ds.GetFloat(store.FlowRate, 0)
	snap.FlowStale = flowAge > display.MeasurementExpiry

	snap.Version, _ = ds.GetString(store.SystemVersion, 0)

	page, pageAge := ds.GetInt32(store.DisplayPage, 0)
	if pageAge != store.InvalidAge && s.registry != nil {
		snap.Page = s.registry.Name(display.PageID(page))
	}

	mqttStatus, _ := ds.GetUint32(store.MQTTStatus, 0)
	snap.MQTTConnected = mqttStatus == store.MQTTConnected
	snap.Broker, _ = ds.GetString(store.MQTTBrokerAddress, 0)
	snap.TxCount, _ = ds.GetUint32(store.MQTTMessageTxCount, 0)
	snap.RxCount, _ = ds.GetUint32(store.MQTTMessageRxCount, 0)

	return snap
}

func reportedState(ds *store.Store, id store.ID) string {
	state, age := ds.GetUint32(id, 0)
	if age == store.InvalidAge {
		return "UNKNOWN"
	}
	return pump.State(state).String()
}
