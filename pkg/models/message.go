package models

// DisasterMessage is one row of the cleaned table.
type DisasterMessage struct {
	ID         int64          `json:"id"`
	Message    string         `json:"message"`
	Original   string         `json:"original,omitempty"`
	Genre      string         `json:"genre"`
	Categories map[string]int `json:"categories"`
}

type GenreCount struct {
	Genre string `json:"genre"`
	Count int    `json:"count"`
}

type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}
