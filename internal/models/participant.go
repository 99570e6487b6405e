package models

// Participant is a member of the trip squad, stored as a list under the "squad" path.
type Participant struct {
	ID   string `json:"id"`   // opaque roster id
	Name string `json:"name"` // display name, may be empty while it is being typed
}

// Names returns the display names of the roster in roster order.
func Names(roster []Participant) []string {
	names := make([]string, 0, len(roster))
	for _, p := range roster {
		names = append(names, p.Name)
	}
	return names
}
