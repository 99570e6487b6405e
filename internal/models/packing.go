package models

// PackingItem is one entry of the shared packing list ("packing-list" path).
type PackingItem struct {
	ID      string `json:"id"`
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}
