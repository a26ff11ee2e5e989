package t3dto

type Stats struct {
	Name   string `json:"name"`
	Wins   int64  `json:"wins"`
	Losses int64  `json:"losses"`
	Draws  int64  `json:"draws"`
}

func (s Stats) Played() int64 {
	return s.Wins + s.Losses + s.Draws
}
