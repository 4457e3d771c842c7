package logic

import (
	"sync"
	"time"

	"github.com/fplcentral/analytics-api/internal/models"
	"github.com/fplcentral/analytics-api/internal/source"
	"github.com/fplcentral/analytics-api/internal/store"
)

// captureSink records everything the engines enqueue for audit.
type captureSink struct {
	mu          sync.Mutex
	predictions [][]store.PredictionRecord
	risks       []store.RiskRecord
}

func (c *captureSink) EnqueuePredictions(records []store.PredictionRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.predictions = append(c.predictions, records)
	return true
}

func (c *captureSink) EnqueueRiskProfile(rec store.RiskRecord) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.risks = append(c.risks, rec)
	return true
}

func (c *captureSink) predictionBatches() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.predictions)
}

func (c *captureSink) riskRecords() []store.RiskRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]store.RiskRecord, len(c.risks))
	copy(out, c.risks)
	return out
}

func testTeams() []models.Team {
	return []models.Team{
		{ID: 1, Name: "Arsenal", ShortName: "ARS"},
		{ID: 2, Name: "Chelsea", ShortName: "CHE"},
		{ID: 3, Name: "Bournemouth", ShortName: "BOU"},
	}
}

// testFixtures builds a season around round 10: teams 1 and 2 have played
// each other in rounds 5-10 (team 1 winning every time) and meet again in
// rounds 11-15. Team 3 has nothing scheduled.
func testFixtures() []models.Fixture {
	var fixtures []models.Fixture
	id := 1
	for round := 5; round <= 10; round++ {
		f := models.Fixture{
			ID:             id,
			Round:          round,
			HomeTeamID:     1,
			AwayTeamID:     2,
			HomeDifficulty: 3,
			AwayDifficulty: 3,
			Finished:       true,
			HomeScore:      2,
			AwayScore:      0,
		}
		if round%2 == 0 {
			f.HomeTeamID, f.AwayTeamID = 2, 1
			f.HomeScore, f.AwayScore = 0, 2
		}
		fixtures = append(fixtures, f)
		id++
	}
	for round := 11; round <= 15; round++ {
		f := models.Fixture{
			ID:             id,
			Round:          round,
			HomeTeamID:     1,
			AwayTeamID:     2,
			HomeDifficulty: 2,
			AwayDifficulty: 4,
		}
		if round%2 == 0 {
			f.HomeTeamID, f.AwayTeamID = 2, 1
			f.HomeDifficulty, f.AwayDifficulty = 4, 2
		}
		fixtures = append(fixtures, f)
		id++
	}
	return fixtures
}

func nailedStarter() models.Competitor {
	return models.Competitor{
		ID:              1,
		Name:            "Saka",
		TeamID:          1,
		Position:        models.PositionMidfielder,
		Price:           10.0,
		TotalPoints:     80,
		Minutes:         900,
		Starts:          10,
		Appearances:     10,
		Goals:           4,
		Assists:         3,
		Bonus:           12,
		ExpectedGoals:   4.0,
		ExpectedAssists: 3.0,
		Status:          models.StatusAvailable,
		Form:            7.0,
		PointsPerGame:   5.0,
		OwnershipPct:    25.0,
		NetTransfers:    120000,
		ThreatIndex:     70,
		CreativityIdx:   65,
		Age:             24,
	}
}

func benchOption() models.Competitor {
	return models.Competitor{
		ID:            2,
		Name:          "Benchy",
		TeamID:        2,
		Position:      models.PositionMidfielder,
		Price:         5.0,
		TotalPoints:   18,
		Minutes:       200,
		Starts:        4,
		Appearances:   4,
		Status:        models.StatusAvailable,
		Form:          1.5,
		PointsPerGame: 2.0,
		OwnershipPct:  1.2,
		Age:           21,
	}
}

func injuredForward() models.Competitor {
	return models.Competitor{
		ID:            3,
		Name:          "Crocked",
		TeamID:        2,
		Position:      models.PositionForward,
		Price:         8.0,
		TotalPoints:   40,
		Minutes:       400,
		Starts:        5,
		Appearances:   6,
		Status:        models.StatusInjured,
		News:          "Hamstring injury, expected back next month",
		Form:          0.5,
		PointsPerGame: 4.0,
		OwnershipPct:  12.0,
		NetTransfers:  -250000,
		Age:           29,
	}
}

func blankRoundPlayer() models.Competitor {
	return models.Competitor{
		ID:            4,
		Name:          "Blanky",
		TeamID:        3,
		Position:      models.PositionDefender,
		Price:         4.5,
		TotalPoints:   30,
		Minutes:       810,
		Starts:        9,
		Appearances:   9,
		Status:        models.StatusAvailable,
		Form:          3.0,
		PointsPerGame: 3.0,
		OwnershipPct:  6.0,
		Age:           27,
	}
}

func testSnapshot(competitors ...models.Competitor) *source.Snapshot {
	return source.NewSnapshot(time.Now().UTC(), 10, competitors, testTeams(), testFixtures())
}
