package provider

// Subset of the ESPN site API summary document.
type espnSummary struct {
	Header struct {
		Competitions []espnCompetition `json:"competitions"`
	} `json:"header"`
	Boxscore struct {
		Teams []espnBoxTeam `json:"teams"`
	} `json:"boxscore"`
	LastFiveGames []espnTeamGames    `json:"lastFiveGames"`
	Injuries      []espnTeamInjuries `json:"injuries"`
}

type espnCompetition struct {
	Date        string           `json:"date"`
	NeutralSite bool             `json:"neutralSite"`
	Competitors []espnCompetitor `json:"competitors"`
}

type espnCompetitor struct {
	ID       string      `json:"id"`
	HomeAway string      `json:"homeAway"`
	Team     espnTeamRef `json:"team"`
}

type espnTeamRef struct {
	ID           string `json:"id"`
	Abbreviation string `json:"abbreviation"`
}

type espnBoxTeam struct {
	Team       espnTeamRef `json:"team"`
	Statistics []espnStat  `json:"statistics"`
}

type espnStat struct {
	Name         string `json:"name"`
	DisplayValue string `json:"displayValue"`
}

type espnTeamGames struct {
	Team   espnTeamRef      `json:"team"`
	Events []espnRecentGame `json:"events"`
}

type espnRecentGame struct {
	GameDate      string `json:"gameDate"`
	GameResult    string `json:"gameResult"`
	HomeTeamID    string `json:"homeTeamId"`
	AwayTeamID    string `json:"awayTeamId"`
	HomeTeamScore string `json:"homeTeamScore"`
	AwayTeamScore string `json:"awayTeamScore"`
}

type espnTeamInjuries struct {
	Team     espnTeamRef `json:"team"`
	Injuries []struct {
		Status string `json:"status"`
	} `json:"injuries"`
}
