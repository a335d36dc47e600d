package display

import (
	"fmt"
	"log"
)

type pageSpec struct {
	id     PageID
	name   string
	render renderFunc
	state  *pageState
}

// pageTable enumerates every page exactly once, in PageID order. Pages with
// an animation get their own private state cell here.
func pageTable() []pageSpec {
	return []pageSpec{
		{PageBlank, "blank", renderBlank, nil},
		{PageMain, "main", renderMain, &pageState{}},
		{PageSensorsTemp, "sensors-temp", renderSensorsTemp, &pageState{}},
		{PageSensorsTemp2, "sensors-temp-2", renderSensorsTemp2, &pageState{}},
		{PageSensorsLight, "sensors-light", renderSensorsLight, nil},
		{PageSensorsFlow, "sensors-flow", renderSensorsFlow, nil},
		{PagePower, "power", renderPower, nil},
		{PagePumpStatus, "pump-status", renderPumpStatus, nil},
		{PageCPControl, "cp-control", renderCPControl, nil},
		{PagePPControl, "pp-control", renderPPControl, nil},
		{PageAlarm, "alarm", renderAlarm, nil},
		{PageMQTTStatus, "mqtt-status", renderMQTTStatus, nil},
		{PageSystemStatus, "system-status", renderSystemStatus, nil},
	}
}

// Registry binds page identifiers to renderers and their state cells.
type Registry struct {
	specs []pageSpec
}

// NewRegistry builds and validates the page registry: every PageID must
// appear at its own position with a renderer, and every page must have a
// transition entry. A violation is a programming error caught at startup.
func NewRegistry() (*Registry, error) {
	specs := pageTable()
	if len(specs) != int(pageCount) {
		return nil, fmt.Errorf("display: page table has %d entries, want %d", len(specs), pageCount)
	}
	for i, spec := range specs {
		if spec.id != PageID(i) {
			return nil, fmt.Errorf("display: page table mismatch at position %d: %s", i, spec.name)
		}
		if spec.render == nil {
			return nil, fmt.Errorf("display: page %s has no renderer", spec.name)
		}
	}
	if err := validateTransitions(); err != nil {
		return nil, err
	}
	return &Registry{specs: specs}, nil
}

// Name returns the page's name for logging.
func (r *Registry) Name(page PageID) string {
	if page < 0 || int(page) >= len(r.specs) {
		return fmt.Sprintf("invalid(%d)", page)
	}
	return r.specs[page].name
}

// Render dispatches to the page's renderer, filling b. An out-of-range or
// inconsistent page falls back to the blank page with an error log; dispatch
// never panics.
func (r *Registry) Render(b *Buffer, page PageID, rc RenderContext) {
	spec := r.specs[PageBlank]
	switch {
	case page < 0 || int(page) >= len(r.specs):
		log.Printf("display: page %d out of range", page)
	case r.specs[page].id != page:
		log.Printf("display: page table mismatch at position %d", page)
	case r.specs[page].render == nil:
		log.Printf("display: page %d has no renderer", page)
	default:
		spec = r.specs[page]
	}
	spec.render(b, spec.state, rc)
}
