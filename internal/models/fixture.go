package models

// Fixture is one scheduled or completed match between two teams.
// Source of truth is the upstream feed; read-only downstream.
type Fixture struct {
	ID             int  `json:"id"`
	Round          int  `json:"round"`
	HomeTeamID     int  `json:"home_team_id"`
	AwayTeamID     int  `json:"away_team_id"`
	HomeDifficulty int  `json:"home_difficulty"` // 1 easy - 5 hard, rating for the home side
	AwayDifficulty int  `json:"away_difficulty"`
	Finished       bool `json:"finished"`
	HomeScore      int  `json:"home_score"`
	AwayScore      int  `json:"away_score"`
}

// Involves reports whether teamID plays in this fixture.
func (f Fixture) Involves(teamID int) bool {
	return f.HomeTeamID == teamID || f.AwayTeamID == teamID
}

// SideFor returns the perspective of teamID in this fixture: opponent id,
// home flag and the difficulty rating assigned to teamID's side.
func (f Fixture) SideFor(teamID int) (opponentID int, isHome bool, difficulty int) {
	if f.HomeTeamID == teamID {
		return f.AwayTeamID, true, f.HomeDifficulty
	}
	return f.HomeTeamID, false, f.AwayDifficulty
}
