package display

import (
	"strings"
	"testing"
	"time"

	"github.com/kowhai/poolmon/internal/lcd"
	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// populatedStore fills every sensor and control resource with realistic
// fresh values.
func populatedStore() *store.Store {
	ds := store.New()
	ds.SetString(store.SystemVersion, 0, "1.2.3")
	ds.SetBool(store.SystemTimeSet, 0, true)

	labels := []string{"Heater out", "Pool", "Roof", "Ambient", "Cabinet"}
	for i := 0; i < store.TempInstances; i++ {
		ds.SetFloat(store.TempValue, i, 20.0+float64(i))
		ds.SetString(store.TempLabel, i, labels[i])
	}

	ds.SetFloat(store.FlowRate, 0, 12.5)
	ds.SetFloat(store.FlowFrequency, 0, 42.0)

	ds.SetBool(store.LightDetected, 0, true)
	ds.SetUint32(store.LightFull, 0, 12345)
	ds.SetUint32(store.LightVisible, 0, 10000)
	ds.SetUint32(store.LightInfrared, 0, 2345)
	ds.SetUint32(store.LightIlluminance, 0, 987)

	ds.SetFloat(store.PowerValue, 0, 3200.5)
	ds.SetFloat(store.PowerTempDelta, 0, 4.2)

	ds.SetUint32(store.PumpCPState, 0, uint32(pump.On))
	ds.SetUint32(store.PumpPPState, 0, uint32(pump.Off))
	ds.SetUint32(store.ControlStateCP, 0, uint32(pump.On))
	ds.SetUint32(store.ControlStatePP, 0, 1)

	ds.SetFloat(store.ControlCPOnDelta, 0, 5.0)
	ds.SetFloat(store.ControlCPOffDelta, 0, 2.0)
	ds.SetFloat(store.ControlFlowThreshold, 0, 5.0)
	ds.SetBool(store.ControlPPDailyEnable, 0, true)
	ds.SetInt32(store.ControlPPDailyHour, 0, 10)
	ds.SetInt32(store.ControlPPDailyMinute, 0, 30)

	ds.SetUint32(store.MQTTStatus, 0, store.MQTTConnected)
	ds.SetUint32(store.MQTTConnectionCount, 0, 2)
	ds.SetUint32(store.MQTTMessageTxCount, 0, 120)
	ds.SetUint32(store.MQTTMessageRxCount, 0, 14)
	// longer than the visible width so the broker row must shorten it
	ds.SetString(store.MQTTBrokerAddress, 0, "tcp://192.168.1.200:1883")

	return ds
}

func renderAll(t *testing.T, ds *store.Store) map[PageID]Buffer {
	t.Helper()
	registry, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	rc := RenderContext{
		Store:  ds,
		Now:    time.Now(),
		Uptime: 90 * time.Minute,
	}
	frames := make(map[PageID]Buffer)
	for page := PageID(0); page < pageCount; page++ {
		var buf Buffer
		registry.Render(&buf, page, rc)
		frames[page] = buf
	}
	return frames
}

func TestPagesFitVisibleWidth(t *testing.T) {
	for name, ds := range map[string]*store.Store{
		"empty":     store.New(),
		"populated": populatedStore(),
	} {
		for page, buf := range renderAll(t, ds) {
			for row, line := range buf {
				if len(line) > lcd.VisibleColumns {
					t.Errorf("%s store: page %d row %d is %d wide: %q",
						name, page, row, len(line), line)
				}
			}
			buf.Pad()
			for row, line := range buf {
				if len(line) != lcd.VisibleColumns {
					t.Errorf("%s store: page %d row %d padded to %d, want %d",
						name, page, row, len(line), lcd.VisibleColumns)
				}
			}
		}
	}
}

func TestStaleValuesRenderAsDashes(t *testing.T) {
	frames := renderAll(t, store.New())

	if !strings.Contains(frames[PageSensorsTemp][0], "--.-") {
		t.Errorf("unset temperature row = %q, want dashes", frames[PageSensorsTemp][0])
	}
	if !strings.Contains(frames[PageSensorsFlow][0], "---.-") {
		t.Errorf("unset flow row = %q, want dashes", frames[PageSensorsFlow][0])
	}
	if !strings.Contains(frames[PageSensorsLight][0], "?????") {
		t.Errorf("undetected light row = %q, want question marks", frames[PageSensorsLight][0])
	}
}

func TestFreshValuesRenderNumerically(t *testing.T) {
	frames := renderAll(t, populatedStore())

	if !strings.Contains(frames[PageSensorsTemp][0], "20.0") {
		t.Errorf("temp row = %q, want 20.0", frames[PageSensorsTemp][0])
	}
	if !strings.Contains(frames[PageSensorsFlow][0], "12.5") {
		t.Errorf("flow row = %q, want 12.5", frames[PageSensorsFlow][0])
	}
	if !strings.Contains(frames[PageSensorsLight][0], "12345") {
		t.Errorf("light row = %q, want 12345", frames[PageSensorsLight][0])
	}
	if !strings.Contains(frames[PagePumpStatus][0], "ON") {
		t.Errorf("pump status row = %q, want ON", frames[PagePumpStatus][0])
	}
}

func TestTemperatureExpiryIsConfigurable(t *testing.T) {
	ds := store.New()
	ds.SetUint32(store.ControlTempExpiry, 0, 3600)
	ds.SetFloat(store.TempValue, 0, 25.0)

	// With a one-hour expiry a fresh value renders numerically.
	line := renderTempLine(RenderContext{Store: ds, Now: time.Now()}, 0)
	if !strings.Contains(line, "25.0") {
		t.Errorf("temp line = %q, want 25.0", line)
	}
}

func TestMainPageBlinksActivityMarker(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	ds := populatedStore()
	rc := RenderContext{Store: ds, Now: time.Now(), Uptime: time.Minute}

	var first, second Buffer
	registry.Render(&first, PageMain, rc)
	registry.Render(&second, PageMain, rc)

	if strings.Contains(first[3], lcd.Dot) == strings.Contains(second[3], lcd.Dot) {
		t.Errorf("activity marker did not toggle: %q vs %q", first[3], second[3])
	}
}

func TestTempPagesBlinkIndependently(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	ds := populatedStore()
	rc := RenderContext{Store: ds, Now: time.Now(), Uptime: time.Minute}

	// Render the overview page once so its blink cell toggles, then the
	// detail page. The detail page's first render must start from its own
	// initial state, not the overview's.
	var a, b Buffer
	registry.Render(&a, PageSensorsTemp, rc)
	registry.Render(&b, PageSensorsTemp2, rc)

	if strings.Contains(a[3], lcd.ArrowDown) {
		t.Errorf("first overview render shows the arrow, want initial blink off: %q", a[3])
	}
	if strings.Contains(b[0], lcd.ArrowUp) {
		t.Errorf("first detail render shows the arrow, want initial blink off: %q", b[0])
	}
}

func TestDailyCountdown(t *testing.T) {
	ds := populatedStore()
	now := time.Date(2025, 6, 1, 8, 30, 0, 0, time.Local)

	line := renderDailyCountdown(RenderContext{Store: ds, Now: now})
	if line != "10:30:00  T-02:00:00" {
		t.Errorf("countdown = %q, want 10:30:00  T-02:00:00", line)
	}

	// Past today's start time: counts down to tomorrow's.
	now = time.Date(2025, 6, 1, 11, 30, 0, 0, time.Local)
	line = renderDailyCountdown(RenderContext{Store: ds, Now: now})
	if line != "10:30:00  T-23:00:00" {
		t.Errorf("countdown past start = %q, want 10:30:00  T-23:00:00", line)
	}

	ds.SetBool(store.ControlPPDailyEnable, 0, false)
	if line := renderDailyCountdown(RenderContext{Store: ds, Now: now}); line != "Daily disabled" {
		t.Errorf("disabled countdown = %q", line)
	}

	ds.SetBool(store.SystemTimeSet, 0, false)
	if line := renderDailyCountdown(RenderContext{Store: ds, Now: now}); line != "Waiting for time" {
		t.Errorf("no-clock countdown = %q", line)
	}
}

func TestBrokerRowKeepsPortVisible(t *testing.T) {
	frames := renderAll(t, populatedStore())

	row := frames[PageMQTTStatus][1]
	if len(row) > lcd.VisibleColumns {
		t.Fatalf("broker row is %d wide: %q", len(row), row)
	}
	if row != "tcp://192.168.1:1883" {
		t.Errorf("broker row = %q, want tcp://192.168.1:1883", row)
	}
}

func TestRenderBrokerRow(t *testing.T) {
	for _, tc := range []struct {
		broker string
		want   string
	}{
		{"tcp://pool:1883", "tcp://pool:1883"},
		{"tcp://192.168.1.200:1883", "tcp://192.168.1:1883"},
		{"tcp://broker.example.nz:1883", "tcp://broker.ex:1883"},
		{"no-port-very-long-hostname.example", "no-port-very-long-ho"},
		{"", ""},
	} {
		if got := renderBrokerRow(tc.broker); got != tc.want {
			t.Errorf("renderBrokerRow(%q) = %q, want %q", tc.broker, got, tc.want)
		}
	}
}

func TestRegistryFallsBackToBlank(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	rc := RenderContext{Store: store.New(), Now: time.Now()}

	var buf Buffer
	buf[0] = "left over"
	registry.Render(&buf, PageID(200), rc)
	if buf[0] != "" {
		t.Errorf("out-of-range page rendered %q, want blank", buf[0])
	}

	registry.Render(&buf, PageID(-3), rc)
	for i, line := range buf {
		if line != "" {
			t.Errorf("negative page rendered row %d = %q, want blank", i, line)
		}
	}
}

func TestRegistryNames(t *testing.T) {
	registry, err := NewRegistry()
	if err != nil {
		t.Fatal(err)
	}
	if got := registry.Name(PageMain); got != "main" {
		t.Errorf("Name(PageMain) = %q", got)
	}
	if got := registry.Name(PageID(99)); got != "invalid(99)" {
		t.Errorf("Name(99) = %q", got)
	}
}
