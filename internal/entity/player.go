package entity

// Player identifies a seat in a match: id 1 or 2 and the bot name.
type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}
