package logic

import (
	"math"
	"sort"

	"github.com/fplcentral/analytics-api/internal/models"
)

// Team analytics are a pure function of the snapshot: each pipeline run
// builds its own map and shares it read-only with the downstream engines.

const (
	formWindow           = 6
	fairRating           = 2.5
	fairForm             = 0.5
	fairConfidence       = 0.5
	defaultHomeAdvantage = 1.1
)

// BuildTeamSnapshots derives attack/defense strength, recent form and the
// home-advantage factor for every team from its last 6 finished fixtures.
// Teams with no finished fixtures get a static fair rating rather than an
// error.
func BuildTeamSnapshots(teams []models.Team, fixtures []models.Fixture) map[int]models.TeamSnapshot {
	out := make(map[int]models.TeamSnapshot, len(teams))
	for _, t := range teams {
		out[t.ID] = buildTeamSnapshot(t.ID, fixtures)
	}
	return out
}

// FairTeamSnapshot is the degraded-data fallback rating.
func FairTeamSnapshot(teamID int) models.TeamSnapshot {
	return models.TeamSnapshot{
		TeamID:        teamID,
		Attack:        fairRating,
		Defense:       fairRating,
		Form:          fairForm,
		Confidence:    fairConfidence,
		HomeAdvantage: 1.0,
	}
}

func buildTeamSnapshot(teamID int, fixtures []models.Fixture) models.TeamSnapshot {
	recent := lastFinishedFixtures(teamID, fixtures, formWindow)
	if len(recent) == 0 {
		return FairTeamSnapshot(teamID)
	}

	var goalsFor, goalsAgainst, points float64
	var homePoints, awayPoints float64
	var homeGames, awayGames int

	for _, f := range recent {
		gf, ga := goalsSplit(f, teamID)
		goalsFor += gf
		goalsAgainst += ga

		pts := matchPoints(gf, ga)
		points += pts
		if f.HomeTeamID == teamID {
			homePoints += pts
			homeGames++
		} else {
			awayPoints += pts
			awayGames++
		}
	}

	n := float64(len(recent))
	snap := models.TeamSnapshot{
		TeamID:          teamID,
		Attack:          goalsFor / n,
		Defense:         goalsAgainst / n,
		Form:            points / (n * 3.0),
		Confidence:      math.Min(1.0, n/formWindow),
		HomeAdvantage:   defaultHomeAdvantage,
		FixturesCounted: len(recent),
	}

	if homeGames > 0 && awayGames > 0 {
		homePPG := homePoints / float64(homeGames)
		awayPPG := awayPoints / float64(awayGames)
		if awayPPG > 0 {
			snap.HomeAdvantage = clamp(homePPG/awayPPG, 0.9, 1.3)
		} else if homePPG > 0 {
			snap.HomeAdvantage = 1.3
		} else {
			snap.HomeAdvantage = 1.0
		}
	}

	return snap
}

// lastFinishedFixtures returns the team's most recent finished fixtures,
// newest first, at most limit entries.
func lastFinishedFixtures(teamID int, fixtures []models.Fixture, limit int) []models.Fixture {
	var recent []models.Fixture
	for _, f := range fixtures {
		if f.Finished && f.Involves(teamID) {
			recent = append(recent, f)
		}
	}
	sort.Slice(recent, func(i, j int) bool {
		if recent[i].Round != recent[j].Round {
			return recent[i].Round > recent[j].Round
		}
		return recent[i].ID > recent[j].ID
	})
	if len(recent) > limit {
		recent = recent[:limit]
	}
	return recent
}

func goalsSplit(f models.Fixture, teamID int) (goalsFor, goalsAgainst float64) {
	if f.HomeTeamID == teamID {
		return float64(f.HomeScore), float64(f.AwayScore)
	}
	return float64(f.AwayScore), float64(f.HomeScore)
}

// matchPoints scores a result 3/1/0 for win/draw/loss.
func matchPoints(goalsFor, goalsAgainst float64) float64 {
	switch {
	case goalsFor > goalsAgainst:
		return 3
	case goalsFor == goalsAgainst:
		return 1
	default:
		return 0
	}
}
