package models

// Position is the roster category of a competitor.
type Position string

const (
	PositionGoalkeeper Position = "goalkeeper"
	PositionDefender   Position = "defender"
	PositionMidfielder Position = "midfielder"
	PositionForward    Position = "forward"
)

// AvailabilityStatus mirrors the upstream feed's status flag.
type AvailabilityStatus string

const (
	StatusAvailable   AvailabilityStatus = "available"
	StatusInjured     AvailabilityStatus = "injured"
	StatusDoubtful    AvailabilityStatus = "doubtful"
	StatusSuspended   AvailabilityStatus = "suspended"
	StatusUnavailable AvailabilityStatus = "unavailable"
)

// Competitor is a rosterable player. Immutable within one pipeline run;
// refreshed only by re-fetching the snapshot.
type Competitor struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	TeamID   int      `json:"team_id"`
	Position Position `json:"position"`

	// Price in the fantasy currency (millions).
	Price float64 `json:"price"`

	// Season totals.
	TotalPoints     int     `json:"total_points"`
	Minutes         int     `json:"minutes"`
	Starts          int     `json:"starts"`
	Appearances     int     `json:"appearances"`
	Goals           int     `json:"goals"`
	Assists         int     `json:"assists"`
	Bonus           int     `json:"bonus"`
	ExpectedGoals   float64 `json:"expected_goals"`
	ExpectedAssists float64 `json:"expected_assists"`

	// Current-round signals.
	Status         AvailabilityStatus `json:"status"`
	ChanceOfPlay   *int               `json:"chance_of_playing,omitempty"`
	News           string             `json:"news,omitempty"`
	Form           float64            `json:"form"`
	PointsPerGame  float64            `json:"points_per_game"`
	OwnershipPct   float64            `json:"ownership_pct"`
	NetTransfers   int                `json:"net_transfers"`
	ThreatIndex    float64            `json:"threat_index"`
	CreativityIdx  float64            `json:"creativity_index"`
	Age            int                `json:"age,omitempty"`
}

// Team is a real-world club a competitor belongs to.
type Team struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name"`
}

// TeamSnapshot holds per-team derived strength ratings, recomputed once per
// pipeline run from the last 6 completed fixtures and shared read-only by
// all downstream stages.
type TeamSnapshot struct {
	TeamID          int     `json:"team_id"`
	Attack          float64 `json:"attack"`           // mean goals scored per game
	Defense         float64 `json:"defense"`          // mean goals conceded per game
	Form            float64 `json:"form"`             // 0-1, points-won basis
	Confidence      float64 `json:"confidence"`       // 0-1, sample-size based
	HomeAdvantage   float64 `json:"home_advantage"`   // clamped [0.9, 1.3]
	FixturesCounted int     `json:"fixtures_counted"`
}
