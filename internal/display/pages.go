package display

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/kowhai/poolmon/internal/lcd"
	"github.com/kowhai/poolmon/internal/pump"
	"github.com/kowhai/poolmon/internal/store"
)

// PageID identifies a display page. The set is closed: every ID below
// pageCount has exactly one renderer and one transition entry.
type PageID int32

const (
	PageBlank PageID = iota
	PageMain
	PageSensorsTemp
	PageSensorsTemp2
	PageSensorsLight
	PageSensorsFlow
	PagePower
	PagePumpStatus
	PageCPControl
	PagePPControl
	PageAlarm
	PageMQTTStatus
	PageSystemStatus
	pageCount
)

// PageIgnore is the transition-table sentinel for "this input does nothing
// on this page".
const PageIgnore PageID = -1

// HomePage is the page shown at startup.
const HomePage = PageMain

// PageCount returns the number of defined pages.
func PageCount() int {
	return int(pageCount)
}

// MeasurementExpiry is the general staleness window: a sensor value older
// than this renders as dashes. Temperatures use the configurable
// ControlTempExpiry resource instead.
const MeasurementExpiry = 15 * time.Second

// RenderContext carries the read-only inputs a renderer may use.
type RenderContext struct {
	Store  *store.Store
	Now    time.Time
	Uptime time.Duration
}

// pageState is a page's private animation cell. Each page owning one gets its
// own instance from the registry; no state is shared across pages.
type pageState struct {
	blink bool
}

type renderFunc func(b *Buffer, st *pageState, rc RenderContext)

func splitTime(d time.Duration) (days, hours, minutes, seconds int) {
	total := int(d / time.Second)
	return total / 86400, total / 3600 % 24, total / 60 % 60, total % 60
}

func renderUptime(d time.Duration) string {
	days, hours, minutes, seconds := splitTime(d)
	return fmt.Sprintf("Up %4dd %02d:%02d:%02d", days, hours, minutes, seconds)
}

func renderBlank(b *Buffer, _ *pageState, _ RenderContext) {
	for i := range b {
		b[i] = ""
	}
}

func renderMain(b *Buffer, st *pageState, rc RenderContext) {
	version, _ := rc.Store.GetString(store.SystemVersion, 0)
	b[0] = fmt.Sprintf("PoolMon v%-6s", version)

	if timeSet, _ := rc.Store.GetBool(store.SystemTimeSet, 0); timeSet {
		b[1] = rc.Now.Format("2006-01-02 15:04:05")
	} else {
		b[1] = "Waiting for time"
	}

	b[3] = renderUptime(rc.Uptime)
	if st.blink {
		b[3] += "  " + lcd.Dot
	}
	st.blink = !st.blink
}

func tempExpiry(ds *store.Store) time.Duration {
	if sec, _ := ds.GetUint32(store.ControlTempExpiry, 0); sec > 0 {
		return time.Duration(sec) * time.Second
	}
	return MeasurementExpiry
}

func renderTempLine(rc RenderContext, instance int) string {
	value, age := rc.Store.GetFloat(store.TempValue, instance)
	label, _ := rc.Store.GetString(store.TempLabel, instance)
	if len(label) > 10 {
		label = label[:10]
	}
	if age < tempExpiry(rc.Store) {
		return fmt.Sprintf("T%d %-10s %4.1f%s", instance+1, label, value, lcd.DegreesC)
	}
	return fmt.Sprintf("T%d %-10s --.- %s", instance+1, label, lcd.DegreesC)
}

func renderSensorsTemp(b *Buffer, st *pageState, rc RenderContext) {
	for i := 0; i < lcd.Rows; i++ {
		b[i] = renderTempLine(rc, i)
	}
	// blink a down arrow to show a fifth sensor is below the fold
	if st.blink {
		b[3] = overwriteAt(b[3], lcd.VisibleColumns-1, lcd.ArrowDown)
	}
	st.blink = !st.blink
}

func renderSensorsTemp2(b *Buffer, st *pageState, rc RenderContext) {
	for i := 0; i < lcd.Rows; i++ {
		b[i] = renderTempLine(rc, i+1)
	}
	if st.blink {
		b[0] = overwriteAt(b[0], lcd.VisibleColumns-1, lcd.ArrowUp)
	}
	st.blink = !st.blink
}

func renderSensorsLight(b *Buffer, _ *pageState, rc RenderContext) {
	detected, _ := rc.Store.GetBool(store.LightDetected, 0)
	if !detected {
		// sensor not detected at boot
		b[0] = "Light Full     ?????"
		b[1] = "      Lux      ?????"
		b[2] = "      Infrared ?????"
		b[3] = "      Visible  ?????"
		return
	}

	if rc.Store.Age(store.LightFull, 0) < MeasurementExpiry {
		full, _ := rc.Store.GetUint32(store.LightFull, 0)
		illuminance, _ := rc.Store.GetUint32(store.LightIlluminance, 0)
		infrared, _ := rc.Store.GetUint32(store.LightInfrared, 0)
		visible, _ := rc.Store.GetUint32(store.LightVisible, 0)
		b[0] = fmt.Sprintf("Light Full     %5d", full)
		b[1] = fmt.Sprintf("      Lux      %5d", illuminance)
		b[2] = fmt.Sprintf("      Infrared %5d", infrared)
		b[3] = fmt.Sprintf("      Visible  %5d", visible)
		return
	}

	b[0] = "Light Full     -----"
	b[1] = "      Lux      -----"
	b[2] = "      Infrared -----"
	b[3] = "      Visible  -----"
}

func renderSensorsFlow(b *Buffer, _ *pageState, rc RenderContext) {
	if rc.Store.Age(store.FlowFrequency, 0) < MeasurementExpiry {
		rate, _ := rc.Store.GetFloat(store.FlowRate, 0)
		frequency, _ := rc.Store.GetFloat(store.FlowFrequency, 0)
		b[0] = fmt.Sprintf("Flow Rate  %5.1f LPM", rate)
		b[1] = fmt.Sprintf("           %5.1f Hz", frequency)
		return
	}
	b[0] = "Flow Rate  ---.- LPM"
	b[1] = "           ---.- Hz"
}

func renderPower(b *Buffer, _ *pageState, rc RenderContext) {
	b[0] = "Power Calculation"

	if rc.Store.Age(store.PowerTempDelta, 0) < MeasurementExpiry {
		delta, _ := rc.Store.GetFloat(store.PowerTempDelta, 0)
		b[1] = fmt.Sprintf("Temp Delta %5.1f %s", delta, lcd.DegreesC)
	} else {
		b[1] = "Temp Delta ---.- " + lcd.DegreesC
	}

	if rc.Store.Age(store.FlowFrequency, 0) < MeasurementExpiry {
		rate, _ := rc.Store.GetFloat(store.FlowRate, 0)
		b[2] = fmt.Sprintf("Flow Rate  %5.1f LPM", rate)
	} else {
		b[2] = "Flow Rate  ---.- LPM"
	}

	if rc.Store.Age(store.PowerValue, 0) < MeasurementExpiry {
		power, _ := rc.Store.GetFloat(store.PowerValue, 0)
		b[3] = fmt.Sprintf("Power    %7.1f W", power)
	} else {
		b[3] = "Power       --.- W"
	}
}

func renderPumpLines(rc RenderContext, label string, id store.ID) (string, string) {
	state, age := rc.Store.GetUint32(id, 0)
	stateLine := fmt.Sprintf("%s Status        %3s", label, pump.State(state))
	if age == store.InvalidAge {
		// never reported: show time since boot instead
		age = rc.Uptime
	}
	days, hours, minutes, seconds := splitTime(age)
	statsLine := fmt.Sprintf("  for %4dd %02d:%02d:%02d", days, hours, minutes, seconds)
	return stateLine, statsLine
}

func renderPumpStatus(b *Buffer, _ *pageState, rc RenderContext) {
	b[0], b[1] = renderPumpLines(rc, "CP", store.PumpCPState)
	b[2], b[3] = renderPumpLines(rc, "PP", store.PumpPPState)
}

func renderCPControl(b *Buffer, _ *pageState, rc RenderContext) {
	cpState, _ := rc.Store.GetUint32(store.ControlStateCP, 0)
	b[0] = fmt.Sprintf("CP Control       %3s", pump.State(cpState))

	// T1 (instance 0) is the warm side, T2 (instance 1) the cool side
	tHigh, _ := rc.Store.GetFloat(store.TempValue, 0)
	tLow, _ := rc.Store.GetFloat(store.TempValue, 1)
	b[1] = fmt.Sprintf("Lo %4.1f%s   Hi %4.1f%s", tLow, lcd.DegreesC, tHigh, lcd.DegreesC)

	deltaOn, _ := rc.Store.GetFloat(store.ControlCPOnDelta, 0)
	deltaOff, _ := rc.Store.GetFloat(store.ControlCPOffDelta, 0)
	b[2] = fmt.Sprintf("%son %4.1f%s %soff %4.1f%s",
		lcd.Delta, deltaOn, lcd.DegreesC, lcd.Delta, deltaOff, lcd.DegreesC)

	diff := tHigh - tLow
	activeDelta := deltaOn
	if pump.State(cpState) == pump.On {
		activeDelta = deltaOff
	}
	margin := activeDelta - diff
	b[3] = fmt.Sprintf("%sT  %4.1f%s %sTh  %4.1f%s",
		lcd.Delta, diff, lcd.DegreesC, lcd.Delta, -margin, lcd.DegreesC)
}

func renderPPControl(b *Buffer, _ *pageState, rc RenderContext) {
	ppState, _ := rc.Store.GetUint32(store.ControlStatePP, 0)
	var desc string
	switch ppState {
	case 0:
		desc = "OFF"
	case 1:
		desc = "ON"
	case 2:
		desc = "PAUSE"
	default:
		desc = "ERROR"
	}
	b[0] = fmt.Sprintf("PP Control %9s", desc)

	cpState, _ := rc.Store.GetUint32(store.ControlStateCP, 0)
	cpOn := pump.State(cpState) == pump.On
	if cpOn {
		age := rc.Store.Age(store.ControlStateCP, 0)
		if age == store.InvalidAge {
			age = 0
		}
		days, hours, minutes, seconds := splitTime(age)
		b[1] = fmt.Sprintf("CP ON     %4d:%02d:%02d", days*24+hours, minutes, seconds)
	} else {
		b[1] = "CP OFF"
	}

	threshold, _ := rc.Store.GetFloat(store.ControlFlowThreshold, 0)
	if cpOn {
		flow, _ := rc.Store.GetFloat(store.FlowRate, 0)
		b[2] = fmt.Sprintf("Flow %4.1f   Min %4.1f", flow, threshold)
	} else {
		// flow is meaningless while the circulation loop is idle
		b[2] = fmt.Sprintf("Flow ----   Min %4.1f", threshold)
	}

	b[3] = renderDailyCountdown(rc)
}

// renderDailyCountdown shows the configured daily start time and a countdown
// to it. Presentation only: the PP controller is not gated by this schedule.
func renderDailyCountdown(rc RenderContext) string {
	if timeSet, _ := rc.Store.GetBool(store.SystemTimeSet, 0); !timeSet {
		return "Waiting for time"
	}

	enable, _ := rc.Store.GetBool(store.ControlPPDailyEnable, 0)
	hour, _ := rc.Store.GetInt32(store.ControlPPDailyHour, 0)
	minute, _ := rc.Store.GetInt32(store.ControlPPDailyMinute, 0)
	if !enable || hour < 0 || minute < 0 {
		return "Daily disabled"
	}

	now := rc.Now.Local()
	nowSeconds := now.Hour()*3600 + now.Minute()*60 + now.Second()
	setSeconds := int(hour)*3600 + int(minute)*60
	remaining := setSeconds - nowSeconds
	if nowSeconds-1 >= setSeconds {
		remaining = 86400 - nowSeconds + setSeconds
	}
	h := remaining / 3600
	m := (remaining - h*3600) / 60
	s := remaining - h*3600 - m*60
	return fmt.Sprintf("%02d:%02d:00  T-%02d:%02d:%02d", hour, minute, h, m, s)
}

func renderAlarm(b *Buffer, _ *pageState, _ RenderContext) {
	b[0] = "ALARM"
}

func renderMQTTStatus(b *Buffer, _ *pageState, rc RenderContext) {
	status, age := rc.Store.GetUint32(store.MQTTStatus, 0)
	switch status {
	case store.MQTTConnecting:
		b[0] = "MQTT connecting"
	case store.MQTTConnected:
		count, _ := rc.Store.GetUint32(store.MQTTConnectionCount, 0)
		b[0] = fmt.Sprintf("MQTT connected %d", count)
	default:
		b[0] = "MQTT disconnected"
	}

	broker, _ := rc.Store.GetString(store.MQTTBrokerAddress, 0)
	b[1] = renderBrokerRow(broker)

	rx, _ := rc.Store.GetUint32(store.MQTTMessageRxCount, 0)
	tx, _ := rc.Store.GetUint32(store.MQTTMessageTxCount, 0)
	b[2] = fmt.Sprintf("RX %d  TX %d", rx, tx)

	if age != store.InvalidAge {
		b[3] = renderUptime(age)
	}
}

// renderBrokerRow fits the broker URL into the visible width. An over-width
// URL has its address part shortened so the port suffix stays readable.
func renderBrokerRow(broker string) string {
	if len(broker) <= lcd.VisibleColumns {
		return broker
	}
	if i := strings.LastIndexByte(broker, ':'); i >= 0 {
		port := broker[i+1:]
		keep := lcd.VisibleColumns - len(port) - 1
		if keep > 0 && keep <= i {
			return broker[:keep] + ":" + port
		}
	}
	return broker[:lcd.VisibleColumns]
}

func renderSystemStatus(b *Buffer, _ *pageState, rc RenderContext) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	b[0] = fmt.Sprintf("Go %-17s", runtime.Version())
	b[1] = fmt.Sprintf("Goroutines %9d", runtime.NumGoroutine())
	b[2] = fmt.Sprintf("Heap  %9d KB", ms.HeapAlloc/1024)
	b[3] = renderUptime(rc.Uptime)
}
