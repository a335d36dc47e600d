package display

import (
	"fmt"
	"log"

	"github.com/kowhai/poolmon/internal/input"
)

type transition struct {
	page    PageID
	onCCW   PageID // rotate counter-clockwise
	onCW    PageID // rotate clockwise
	onShort PageID // short button press
	onLong  PageID // long button press
}

// transitionTable defines the navigation: rotation walks a ring of pages,
// a short press toggles between the two temperature pages, and long presses
// are currently unused. PageIgnore means the input does nothing.
var transitionTable = []transition{
	// page            ccw               cw                short             long
	{PageBlank, PageMain, PageMain, PageIgnore, PageIgnore},
	{PageMain, PageSystemStatus, PageSensorsTemp, PageIgnore, PageIgnore},
	{PageSensorsTemp, PageMain, PageSensorsLight, PageSensorsTemp2, PageIgnore},
	{PageSensorsTemp2, PageMain, PageSensorsLight, PageSensorsTemp, PageIgnore},
	{PageSensorsLight, PageSensorsTemp, PageSensorsFlow, PageIgnore, PageIgnore},
	{PageSensorsFlow, PageSensorsLight, PagePower, PageIgnore, PageIgnore},
	{PagePower, PageSensorsFlow, PagePumpStatus, PageIgnore, PageIgnore},
	{PagePumpStatus, PagePower, PageCPControl, PageIgnore, PageIgnore},
	{PageCPControl, PagePumpStatus, PagePPControl, PageIgnore, PageIgnore},
	{PagePPControl, PageCPControl, PageAlarm, PageIgnore, PageIgnore},
	{PageAlarm, PagePPControl, PageMQTTStatus, PageIgnore, PageIgnore},
	{PageMQTTStatus, PageAlarm, PageSystemStatus, PageIgnore, PageIgnore},
	{PageSystemStatus, PageMQTTStatus, PageMain, PageIgnore, PageIgnore},
}

// validateTransitions checks the table is total: one entry per page, at its
// own position, with every target either PageIgnore or a defined page.
func validateTransitions() error {
	if len(transitionTable) != int(pageCount) {
		return fmt.Errorf("display: transition table has %d entries, want %d", len(transitionTable), pageCount)
	}
	for i, t := range transitionTable {
		if t.page != PageID(i) {
			return fmt.Errorf("display: transition table mismatch at position %d", i)
		}
		for _, target := range []PageID{t.onCCW, t.onCW, t.onShort, t.onLong} {
			if target != PageIgnore && (target < 0 || target >= pageCount) {
				return fmt.Errorf("display: transition target %d out of range on page %d", target, i)
			}
		}
	}
	return nil
}

// NextPage looks up the navigation target for an input on the current page.
// It returns PageIgnore when the input does nothing, including for an
// out-of-range current page or an unknown input kind.
func NextPage(current PageID, ev input.Event) PageID {
	if current < 0 || current >= pageCount {
		return PageIgnore
	}
	t := transitionTable[current]
	switch ev {
	case input.CounterClockwise:
		return t.onCCW
	case input.Clockwise:
		return t.onCW
	case input.ShortPress:
		return t.onShort
	case input.LongPress:
		return t.onLong
	default:
		log.Printf("display: invalid input %d", ev)
		return PageIgnore
	}
}
