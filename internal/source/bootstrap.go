package source

import (
	"math"
	"strconv"
	"time"

	"github.com/fplcentral/analytics-api/internal/models"
)

// Wire format of the upstream fantasy feed. Numeric rates come back as
// JSON strings ("5.4"), so the DTO layer keeps them as strings and parses
// during conversion.

type bootstrapResponse struct {
	Events   []eventDTO   `json:"events"`
	Teams    []teamDTO    `json:"teams"`
	Elements []elementDTO `json:"elements"`
}

type eventDTO struct {
	ID        int  `json:"id"`
	IsCurrent bool `json:"is_current"`
	Finished  bool `json:"finished"`
}

type teamDTO struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

type elementDTO struct {
	ID                int    `json:"id"`
	WebName           string `json:"web_name"`
	Team              int    `json:"team"`
	ElementType       int    `json:"element_type"`
	NowCost           int    `json:"now_cost"` // tenths of a million
	TotalPoints       int    `json:"total_points"`
	Minutes           int    `json:"minutes"`
	Starts            int    `json:"starts"`
	GoalsScored       int    `json:"goals_scored"`
	Assists           int    `json:"assists"`
	Bonus             int    `json:"bonus"`
	ExpectedGoals     string `json:"expected_goals"`
	ExpectedAssists   string `json:"expected_assists"`
	Status            string `json:"status"`
	ChanceNextRound   *int   `json:"chance_of_playing_next_round"`
	News              string `json:"news"`
	Form              string `json:"form"`
	PointsPerGame     string `json:"points_per_game"`
	SelectedByPercent string `json:"selected_by_percent"`
	TransfersInEvent  int    `json:"transfers_in_event"`
	TransfersOutEvent int    `json:"transfers_out_event"`
	Threat            string `json:"threat"`
	Creativity        string `json:"creativity"`
	BirthDate         string `json:"birth_date"`
}

type fixtureDTO struct {
	ID              int  `json:"id"`
	Event           *int `json:"event"` // null when unscheduled
	TeamH           int  `json:"team_h"`
	TeamA           int  `json:"team_a"`
	TeamHDifficulty int  `json:"team_h_difficulty"`
	TeamADifficulty int  `json:"team_a_difficulty"`
	Finished        bool `json:"finished"`
	TeamHScore      *int `json:"team_h_score"`
	TeamAScore      *int `json:"team_a_score"`
}

func (e eventDTO) currentOrLastFinished(current, lastFinished *int) {
	if e.IsCurrent {
		*current = e.ID
	}
	if e.Finished && e.ID > *lastFinished {
		*lastFinished = e.ID
	}
}

func currentRoundOf(events []eventDTO) int {
	current, lastFinished := 0, 0
	for _, e := range events {
		e.currentOrLastFinished(&current, &lastFinished)
	}
	if current > 0 {
		return current
	}
	return lastFinished
}

func positionOf(elementType int) models.Position {
	switch elementType {
	case 1:
		return models.PositionGoalkeeper
	case 2:
		return models.PositionDefender
	case 3:
		return models.PositionMidfielder
	case 4:
		return models.PositionForward
	}
	return models.PositionMidfielder
}

func statusOf(code string) models.AvailabilityStatus {
	switch code {
	case "a":
		return models.StatusAvailable
	case "d":
		return models.StatusDoubtful
	case "i":
		return models.StatusInjured
	case "s":
		return models.StatusSuspended
	}
	return models.StatusUnavailable
}

func parseRate(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

// estimateAppearances derives total appearances from season minutes.
// The feed exposes starts but not substitute appearances, so residual
// minutes beyond a typical ~83-minute start are counted as sub outings.
func estimateAppearances(minutes, starts, roundsElapsed int) int {
	apps := starts
	residual := minutes - starts*83
	if residual > 0 {
		apps += int(math.Ceil(float64(residual) / 25.0))
	}
	if apps > roundsElapsed {
		apps = roundsElapsed
	}
	if apps == 0 && minutes > 0 {
		apps = 1
	}
	return apps
}

func ageAt(birthDate string, now time.Time) int {
	if birthDate == "" {
		return 0
	}
	born, err := time.Parse("2006-01-02", birthDate)
	if err != nil {
		return 0
	}
	age := now.Year() - born.Year()
	if now.YearDay() < born.YearDay() {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}

func convertElement(e elementDTO, roundsElapsed int, now time.Time) models.Competitor {
	return models.Competitor{
		ID:              e.ID,
		Name:            e.WebName,
		TeamID:          e.Team,
		Position:        positionOf(e.ElementType),
		Price:           float64(e.NowCost) / 10.0,
		TotalPoints:     e.TotalPoints,
		Minutes:         e.Minutes,
		Starts:          e.Starts,
		Appearances:     estimateAppearances(e.Minutes, e.Starts, roundsElapsed),
		Goals:           e.GoalsScored,
		Assists:         e.Assists,
		Bonus:           e.Bonus,
		ExpectedGoals:   parseRate(e.ExpectedGoals),
		ExpectedAssists: parseRate(e.ExpectedAssists),
		Status:          statusOf(e.Status),
		ChanceOfPlay:    e.ChanceNextRound,
		News:            e.News,
		Form:            parseRate(e.Form),
		PointsPerGame:   parseRate(e.PointsPerGame),
		OwnershipPct:    parseRate(e.SelectedByPercent),
		NetTransfers:    e.TransfersInEvent - e.TransfersOutEvent,
		ThreatIndex:     parseRate(e.Threat),
		CreativityIdx:   parseRate(e.Creativity),
		Age:             ageAt(e.BirthDate, now),
	}
}

func convertFixture(f fixtureDTO) models.Fixture {
	out := models.Fixture{
		ID:             f.ID,
		HomeTeamID:     f.TeamH,
		AwayTeamID:     f.TeamA,
		HomeDifficulty: f.TeamHDifficulty,
		AwayDifficulty: f.TeamADifficulty,
		Finished:       f.Finished,
	}
	if f.Event != nil {
		out.Round = *f.Event
	}
	if f.TeamHScore != nil {
		out.HomeScore = *f.TeamHScore
	}
	if f.TeamAScore != nil {
		out.AwayScore = *f.TeamAScore
	}
	return out
}
