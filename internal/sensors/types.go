package sensors

import (
	"fmt"
	"sort"
	"strings"
)

// CoreTemperature holds one core's readings in whole degrees Celsius.
type CoreTemperature struct {
	Temp     uint8 `json:"temp"`
	Max      uint8 `json:"max"`
	Critical uint8 `json:"critical"`
}

// Temperatures is a snapshot of every core plus the aggregate average.
type Temperatures struct {
	Avg   uint8                     `json:"avg"`
	Cores map[uint8]CoreTemperature `json:"cores"`
}

func (c CoreTemperature) String() string {
	return fmt.Sprintf("%d°C (max %d, crit %d)", c.Temp, c.Max, c.Critical)
}

// CoreIDs returns the core indices in ascending order
func (t Temperatures) CoreIDs() []uint8 {
	ids := make([]uint8, 0, len(t.Cores))
	for id := range t.Cores {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (t Temperatures) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Average: %d°C", t.Avg)
	for _, id := range t.CoreIDs() {
		fmt.Fprintf(&b, "\n%d: %s", id, t.Cores[id])
	}

	return b.String()
}
