package display

import (
	"fmt"

	"cloudpico-tankmonitor/internal/types"
)

// Text is one string placed on the panel. X and Y are the top-left corner.
type Text struct {
	X, Y  int
	S     string
	Large bool
}

// Layout positions the readings screen: the tank title across the top and
// PAR and temperature in two columns below. Failed readings are shown as the
// sentinel value so the operator sees the failure.
func Layout(r types.Reading, id types.Identity) []Text {
	return []Text{
		{X: 16, Y: 0, S: "Array " + id.Name, Large: true},
		{X: 12, Y: 26, S: "PAR:"},
		{X: 90, Y: 26, S: "TEMP:"},
		{X: 0, Y: 36, S: fmt.Sprintf("%.1f", r.PAR), Large: true},
		{X: 80, Y: 36, S: fmt.Sprintf("%.1f", r.Temperature), Large: true},
	}
}
