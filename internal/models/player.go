package models

const DefaultRating = 1000

type Player struct {
	ID          string `json:"id" db:"user_id"`
	Name        string `json:"name" db:"user_name"`
	Rating      int    `json:"rating" db:"elo_rating"`
	Wins        int    `json:"wins" db:"wins"`
	Losses      int    `json:"losses" db:"losses"`
	GamesPlayed int    `json:"games_played" db:"games_played"`
}

func (p *Player) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0.0
	}
	return (float64(p.Wins) / float64(p.GamesPlayed)) * 100
}
