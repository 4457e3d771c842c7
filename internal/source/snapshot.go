package source

import (
	"context"
	"time"

	"github.com/fplcentral/analytics-api/internal/models"
)

// Provider supplies immutable season snapshots. The engines never re-fetch
// mid-run; one snapshot is taken per pipeline run and threaded down.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// Snapshot is a fully-materialized, internally-consistent view of the
// season: competitors and fixtures from the same point in time. Read-only
// after construction.
type Snapshot struct {
	FetchedAt    time.Time           `json:"fetched_at"`
	CurrentRound int                 `json:"current_round"`
	Competitors  []models.Competitor `json:"competitors"`
	Teams        []models.Team       `json:"teams"`
	Fixtures     []models.Fixture    `json:"fixtures"`

	competitorsByID map[int]*models.Competitor
	teamsByID       map[int]*models.Team
	teamFixtures    map[teamRound]*models.Fixture
}

type teamRound struct {
	teamID int
	round  int
}

// NewSnapshot builds the id indexes over the given data. The slices are
// retained, not copied; callers must not mutate them afterwards.
func NewSnapshot(fetchedAt time.Time, currentRound int, competitors []models.Competitor, teams []models.Team, fixtures []models.Fixture) *Snapshot {
	s := &Snapshot{
		FetchedAt:       fetchedAt,
		CurrentRound:    currentRound,
		Competitors:     competitors,
		Teams:           teams,
		Fixtures:        fixtures,
		competitorsByID: make(map[int]*models.Competitor, len(competitors)),
		teamsByID:       make(map[int]*models.Team, len(teams)),
		teamFixtures:    make(map[teamRound]*models.Fixture, len(fixtures)*2),
	}
	for i := range competitors {
		s.competitorsByID[competitors[i].ID] = &competitors[i]
	}
	for i := range teams {
		s.teamsByID[teams[i].ID] = &teams[i]
	}
	for i := range fixtures {
		f := &fixtures[i]
		if f.Round <= 0 {
			continue // unscheduled fixture, belongs to no round yet
		}
		for _, id := range []int{f.HomeTeamID, f.AwayTeamID} {
			key := teamRound{teamID: id, round: f.Round}
			if _, ok := s.teamFixtures[key]; !ok {
				s.teamFixtures[key] = f
			}
		}
	}
	return s
}

// Competitor resolves an id against the snapshot, nil if unknown.
func (s *Snapshot) Competitor(id int) *models.Competitor {
	return s.competitorsByID[id]
}

// Team resolves a team id against the snapshot, nil if unknown.
func (s *Snapshot) Team(id int) *models.Team {
	return s.teamsByID[id]
}

// TeamName returns the short name for a team id, empty if unknown.
func (s *Snapshot) TeamName(id int) string {
	if t := s.teamsByID[id]; t != nil {
		return t.ShortName
	}
	return ""
}

// TeamFixture returns the team's fixture in the given round, nil for a
// blank round.
func (s *Snapshot) TeamFixture(teamID, round int) *models.Fixture {
	return s.teamFixtures[teamRound{teamID: teamID, round: round}]
}

// RoundsElapsed is the number of rounds the season totals cover, used as
// the denominator for per-round averages. Never below 1.
func (s *Snapshot) RoundsElapsed() int {
	if s.CurrentRound < 1 {
		return 1
	}
	return s.CurrentRound
}
