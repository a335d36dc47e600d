package web

import (
	"encoding/json"
	"log"
	"time"
)

type tempJSON struct {
	Index int     `json:"index"`
	Label string  `json:"label,omitempty"`
	Value float64 `json:"value"`
	Stale bool    `json:"stale"`
}

type statusJSON struct {
	Time          string     `json:"time"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	Version       string     `json:"version,omitempty"`
	ControlCP     string     `json:"control_cp"`
	ControlPP     string     `json:"control_pp"`
	PumpCP        string     `json:"pump_cp"`
	PumpPP        string     `json:"pump_pp"`
	Temps         []tempJSON `json:"temps"`
	FlowRate      *float64   `json:"flow_rate,omitempty"`
	DisplayPage   string     `json:"display_page,omitempty"`
	MQTTConnected bool       `json:"mqtt_connected"`
	Broker        string     `json:"broker,omitempty"`
	TxCount       uint32     `json:"tx_count"`
	RxCount       uint32     `json:"rx_count"`
}

func formatJSON(snap Snapshot) []byte {
	out := statusJSON{
		Time:          snap.Now.UTC().Format(time.RFC3339),
		UptimeSeconds: int64(snap.Uptime().Seconds()),
		Version:       snap.Version,
		ControlCP:     snap.ControlCP,
		ControlPP:     snap.ControlPP,
		PumpCP:        snap.PumpCP,
		PumpPP:        snap.PumpPP,
		Temps:         []tempJSON{},
		DisplayPage:   snap.Page,
		MQTTConnected: snap.MQTTConnected,
		Broker:        snap.Broker,
		TxCount:       snap.TxCount,
		RxCount:       snap.RxCount,
	}
	for _, t := range snap.Temps {
		out.Temps = append(out.Temps, tempJSON{Index: t.Index, Label: t.Label, Value: t.Value, Stale: t.Stale})
	}
	if !snap.FlowStale {
		rate := snap.FlowRate
		out.FlowRate = &rate
	}

	buf, err := json.Marshal(out)
	if err != nil {
		log.Printf("web: marshal status: %v", err)
		return []byte("{}")
	}
	return buf
}
