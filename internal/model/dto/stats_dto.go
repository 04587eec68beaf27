package dto

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	PlayerName string  `json:"player_name"`
	TeamName   string  `json:"team_name"`
	Value      float64 `json:"value"`
}

type AnalyzeResponse struct {
	Sport   string             `json:"sport"`
	Season  string             `json:"season"`
	Metric  string             `json:"metric"`
	Entries []LeaderboardEntry `json:"entries"`
}

type SeasonPoint struct {
	Season string  `json:"season"`
	Value  float64 `json:"value"`
	Count  int     `json:"count"`
}

type TrendsResponse struct {
	Sport  string        `json:"sport"`
	Metric string        `json:"metric"`
	Points []SeasonPoint `json:"points"`
}

type VisualizeResponse struct {
	Sport     string `json:"sport"`
	Season    string `json:"season"`
	ChartType string `json:"chart_type"`
	// Image is the base64-encoded PNG payload.
	Image string `json:"image"`
}
