package snapshot

// Snapshot is the complete, host-published state of the traffic system at
// the latest observed tick. The host owns the file exclusively and
// overwrites it wholesale each tick; the control side only reads it.
type Snapshot struct {
	Lights       []Light `json:"lights"`
	TotalLights  int     `json:"totalLights"`
	SystemActive bool    `json:"systemActive"`
	Timestamp    string  `json:"timestamp"`
}

// Light is one traffic light entity as published by the host.
type Light struct {
	ID            string   `json:"id"`
	Status        string   `json:"status"`
	ControlMode   string   `json:"controlMode"`
	Position      Position `json:"position"`
	Intersection  string   `json:"intersection"`
	GreenDuration float64  `json:"greenDuration"`
}

// Position is the light's world-space location in the simulation.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// LightIDs returns the ids of all lights in snapshot order.
func (s *Snapshot) LightIDs() []string {
	ids := make([]string, 0, len(s.Lights))
	for _, l := range s.Lights {
		ids = append(ids, l.ID)
	}
	return ids
}
