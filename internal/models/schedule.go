package models

// ScheduleItem is a single entry of a day plan.
type ScheduleItem struct {
	ID          string   `json:"id" yaml:"id"`
	Time        string   `json:"time" yaml:"time"`
	Title       string   `json:"title" yaml:"title"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Location    string   `json:"location,omitempty" yaml:"location,omitempty"`
	Images      []string `json:"images,omitempty" yaml:"images,omitempty"`
}

// DayPlan is the ordered list of items for one day of the trip ("schedule-data" path).
type DayPlan struct {
	Day   string         `json:"day" yaml:"day"`
	Items []ScheduleItem `json:"items" yaml:"items"`
}
