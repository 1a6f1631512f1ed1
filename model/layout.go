package model

// MeasureBound is the pixel extent of one measure inside one system.
type MeasureBound struct {
	StartX       float64 `json:"startX"`
	EndX         float64 `json:"endX"`
	CenterX      float64 `json:"centerX"`
	SystemIndex  int     `json:"systemIndex"`
	SystemTopY   float64 `json:"systemTopY"`
	StaffTopY    float64 `json:"staffTopY"`
	StaffBottomY float64 `json:"staffBottomY"`
	LineSpacing  float64 `json:"lineSpacing"`
}

// StaffCoordinates is recomputed wholesale for every document or viewport
// change. Inert is set when the renderer could not provide stave metrics.
type StaffCoordinates struct {
	Measures      []MeasureBound `json:"measures"`
	TotalWidth    float64        `json:"totalWidth"`
	TotalHeight   float64        `json:"totalHeight"`
	NumSystems    int            `json:"numSystems"`
	SystemHeight  float64        `json:"systemHeight"`
	SystemSpacing float64        `json:"systemSpacing"`
	LineSpacing   float64        `json:"lineSpacing"`
	Inert         bool           `json:"inert"`
}

// Interactive reports whether pointer input can be mapped onto this geometry.
func (c StaffCoordinates) Interactive() bool {
	return !c.Inert && len(c.Measures) > 0
}

// SystemBounds returns the bounds of the measures in system i, in order.
func (c StaffCoordinates) SystemBounds(i int) []MeasureBound {
	var res []MeasureBound
	for _, b := range c.Measures {
		if b.SystemIndex == i {
			res = append(res, b)
		}
	}
	return res
}
