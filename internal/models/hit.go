package models

// Hit is one song card.
type Hit struct {
	ID     string `json:"id"`
	Artist string `json:"artist"`
	Title  string `json:"title"`
	Year   int    `json:"year"`
	Pack   string `json:"pack"`
	// BelongsTo names the player a pre-assigned card belongs to; empty means
	// unassigned.
	BelongsTo string `json:"belongs_to"`
}

// Slot is a year range on the turn player's timeline. A zero bound means the
// range is unbounded on that side.
type Slot struct {
	ID       int `json:"id"`
	FromYear int `json:"from_year"`
	ToYear   int `json:"to_year"`
}
