package domain

// Participant — участник чата локации. Живёт ровно столько, сколько живо
// соединение; одно соединение состоит не более чем в одной локации.
type Participant struct {
	ConnID   string `json:"-"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Avatar   string `json:"avatar"`
}
