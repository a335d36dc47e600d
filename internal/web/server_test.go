package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/kowhai/poolmon/internal/display"
	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()
	ds := store.New()
	srv := New(":0", ds)
	ts := httptest.NewServer(srv.httpServer.Handler)
	t.Cleanup(ts.Close)
	return ts, ds
}

func populate(ds *store.Store) {
	ds.SetString(store.SystemVersion, 0, "1.2.3")
	ds.SetUint32(store.ControlStateCP, 0, uint32(pump.On))
	ds.SetUint32(store.ControlStatePP, 0, 0)
	ds.SetUint32(store.PumpCPState, 0, uint32(pump.On))
	ds.SetFloat(store.TempValue, 0, 28.5)
	ds.SetString(store.TempLabel, 0, "Heater out")
	ds.SetFloat(store.TempValue, 1, 24.0)
	ds.SetString(store.TempLabel, 1, "Pool")
	ds.SetFloat(store.FlowRate, 0, 12.5)
	ds.SetInt32(store.DisplayPage, 0, int32(display.PageMain))
	ds.SetUint32(store.MQTTStatus, 0, store.MQTTConnected)
	ds.SetString(store.MQTTBrokerAddress, 0, "tcp://192.168.1.200:1883")
	ds.SetUint32(store.MQTTMessageTxCount, 0, 42)
}

func TestJSONEndpoint(t *testing.T) {
	ts, ds := newTestServer(t)
	populate(ds)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatalf("GET /index.json: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want application/json", ct)
	}

	var sj statusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}

	if sj.ControlCP != "ON" {
		t.Errorf("control_cp: got %q, want ON", sj.ControlCP)
	}
	if sj.ControlPP != "OFF" {
		t.Errorf("control_pp: got %q, want OFF", sj.ControlPP)
	}
	if sj.PumpCP != "ON" {
		t.Errorf("pump_cp: got %q, want ON", sj.PumpCP)
	}
	if sj.PumpPP != "UNKNOWN" {
		t.Errorf("pump_pp: got %q, want UNKNOWN (never reported)", sj.PumpPP)
	}
	if len(sj.Temps) != 2 {
		t.Fatalf("temps: got %d entries, want 2", len(sj.Temps))
	}
	if sj.Temps[0].Label != "Heater out" || sj.Temps[0].Value != 28.5 {
		t.Errorf("temps[0] = %+v", sj.Temps[0])
	}
	if sj.FlowRate == nil || *sj.FlowRate != 12.5 {
		t.Errorf("flow_rate = %v, want 12.5", sj.FlowRate)
	}
	if sj.DisplayPage != "main" {
		t.Errorf("display_page: got %q, want main", sj.DisplayPage)
	}
	if !sj.MQTTConnected {
		t.Error("mqtt_connected: got false, want true")
	}
	if sj.Broker != "tcp://192.168.1.200:1883" {
		t.Errorf("broker: got %q", sj.Broker)
	}
	if sj.TxCount != 42 {
		t.Errorf("tx_count: got %d, want 42", sj.TxCount)
	}
	if sj.Version != "1.2.3" {
		t.Errorf("version: got %q, want 1.2.3", sj.Version)
	}
}

func TestJSONEndpointEmptyStore(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/index.json")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()

	var sj statusJSON
	if err := json.NewDecoder(resp.Body).Decode(&sj); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	if sj.PumpCP != "UNKNOWN" || sj.PumpPP != "UNKNOWN" {
		t.Errorf("pump states = %q, %q; want UNKNOWN", sj.PumpCP, sj.PumpPP)
	}
	if len(sj.Temps) != 0 {
		t.Errorf("temps = %v, want none", sj.Temps)
	}
	if sj.FlowRate != nil {
		t.Errorf("flow_rate = %v, want omitted", *sj.FlowRate)
	}
}

func TestIndexPage(t *testing.T) {
	ts, ds := newTestServer(t)
	populate(ds)

	resp, err := http.Get(ts.URL + "/")
	if err != nil {
		t.Fatalf("GET /: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Errorf("status: got %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type: got %q, want text/html", ct)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	html := string(body)
	for _, want := range []string{"PoolMon", "1.2.3", "28.5", "Heater out", "connected"} {
		if !strings.Contains(html, want) {
			t.Errorf("index page missing %q", want)
		}
	}
}

func TestUnknownPathReturns404(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/nonsense")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", resp.StatusCode)
	}
}
