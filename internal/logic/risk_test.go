package logic

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/fplcentral/analytics-api/internal/models"
)

func TestAssessCompetitor_UnknownID(t *testing.T) {
	snap := testSnapshot(nailedStarter())
	svc := NewRiskService(zap.NewNop(), nil)

	profile, err := svc.AssessCompetitor(context.Background(), snap, 999)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	if profile != nil {
		t.Errorf("unknown competitor profile = %+v, want nil", profile)
	}
}

func TestAssessCompetitor_ScoreRanges(t *testing.T) {
	snap := testSnapshot(nailedStarter(), benchOption(), injuredForward(), blankRoundPlayer())
	svc := NewRiskService(zap.NewNop(), nil)

	for _, id := range []int{1, 2, 3, 4} {
		profile, err := svc.AssessCompetitor(context.Background(), snap, id)
		if err != nil {
			t.Fatalf("AssessCompetitor(%d) error = %v", id, err)
		}
		dims := map[string]models.RiskDimension{
			models.RiskRotation:       profile.Rotation,
			models.RiskInjury:         profile.Injury,
			models.RiskPriceChange:    profile.PriceChange,
			models.RiskFormVolatility: profile.FormVolatility,
		}
		for name, dim := range dims {
			if dim.Score < 0 || dim.Score > 100 {
				t.Errorf("competitor %d %s score = %.1f outside [0, 100]", id, name, dim.Score)
			}
			if dim.Confidence < 0 || dim.Confidence > 1 {
				t.Errorf("competitor %d %s confidence = %.2f outside [0, 1]", id, name, dim.Confidence)
			}
			if len(dim.Factors) == 0 {
				t.Errorf("competitor %d %s has no contributing factors", id, name)
			}
		}
		if profile.Overall < 0 || profile.Overall > 100 {
			t.Errorf("competitor %d overall = %.1f outside [0, 100]", id, profile.Overall)
		}
	}
}

func TestAssessCompetitor_OverallIsWeightedBlend(t *testing.T) {
	snap := testSnapshot(nailedStarter())
	svc := NewRiskService(zap.NewNop(), nil)

	p, err := svc.AssessCompetitor(context.Background(), snap, 1)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	want := p.Rotation.Score*models.WeightRotation +
		p.Injury.Score*models.WeightInjury +
		p.PriceChange.Score*models.WeightPriceChange +
		p.FormVolatility.Score*models.WeightFormVolatility
	if p.Overall != want {
		t.Errorf("Overall = %.2f, want weighted blend %.2f", p.Overall, want)
	}
}

func TestAssessCompetitor_NailedStarter(t *testing.T) {
	snap := testSnapshot(nailedStarter())
	svc := NewRiskService(zap.NewNop(), nil)

	p, err := svc.AssessCompetitor(context.Background(), snap, 1)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	if p.StartingXIStatus != models.XINailed {
		t.Errorf("StartingXIStatus = %q, want %q", p.StartingXIStatus, models.XINailed)
	}
	if p.Rotation.Score >= 30 {
		t.Errorf("rotation score = %.1f, want < 30 for an ever-present starter", p.Rotation.Score)
	}
}

func TestAssessCompetitor_RotationProneBenchOption(t *testing.T) {
	snap := testSnapshot(benchOption())
	svc := NewRiskService(zap.NewNop(), nil)

	p, err := svc.AssessCompetitor(context.Background(), snap, 2)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	// Four starts in ten rounds at 50 minutes a game.
	if p.Rotation.Score <= 60 {
		t.Errorf("rotation score = %.1f, want > 60", p.Rotation.Score)
	}
	if p.StartingXIStatus != models.XIBench {
		t.Errorf("StartingXIStatus = %q, want %q", p.StartingXIStatus, models.XIBench)
	}
	if !containsConcern(p.PrimaryConcerns, "heavy rotation risk") {
		t.Errorf("PrimaryConcerns = %v, want rotation flagged", p.PrimaryConcerns)
	}
}

func TestAssessCompetitor_InjuredPlayer(t *testing.T) {
	snap := testSnapshot(injuredForward())
	svc := NewRiskService(zap.NewNop(), nil)

	p, err := svc.AssessCompetitor(context.Background(), snap, 3)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	if p.Injury.Score <= 60 {
		t.Errorf("injury score = %.1f, want > 60 for an injured player", p.Injury.Score)
	}
	if !containsConcern(p.PrimaryConcerns, "injury doubt") {
		t.Errorf("PrimaryConcerns = %v, want injury flagged", p.PrimaryConcerns)
	}
	// Mass exodus in the transfer market on top of the injury.
	if p.PriceChange.Score <= 70 {
		t.Errorf("price change score = %.1f, want > 70 with -250k transfers", p.PriceChange.Score)
	}
}

func TestAssessCompetitor_SquadCompetition(t *testing.T) {
	starter := nailedStarter()
	rival := nailedStarter()
	rival.ID = 20
	rival.Name = "Rival"
	rival.TotalPoints = starter.TotalPoints - 2 // breathing down his neck

	solo := testSnapshot(starter)
	contested := testSnapshot(starter, rival)
	svc := NewRiskService(zap.NewNop(), nil)

	pSolo, err := svc.AssessCompetitor(context.Background(), solo, 1)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	pContested, err := svc.AssessCompetitor(context.Background(), contested, 1)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	if pContested.Rotation.Score <= pSolo.Rotation.Score {
		t.Errorf("contested rotation %.1f should exceed uncontested %.1f",
			pContested.Rotation.Score, pSolo.Rotation.Score)
	}
}

func TestAssessCompetitor_AuditSink(t *testing.T) {
	snap := testSnapshot(nailedStarter())
	sink := &captureSink{}
	svc := NewRiskService(zap.NewNop(), sink)

	p, err := svc.AssessCompetitor(context.Background(), snap, 1)
	if err != nil {
		t.Fatalf("AssessCompetitor() error = %v", err)
	}
	records := sink.riskRecords()
	if len(records) != 1 {
		t.Fatalf("audit records = %d, want 1", len(records))
	}
	if records[0].CompetitorID != 1 || records[0].Overall != p.Overall {
		t.Errorf("audit record = %+v, mismatches profile overall %.1f", records[0], p.Overall)
	}
}

func TestNewsRisk(t *testing.T) {
	tests := []struct {
		news string
		want float64
	}{
		{"", 0},
		{"Ankle injury - expected back 15 Mar", 20},
		{"Knock, 75% chance of playing", 15},
		{"Illness", 15},
		{"Joined on loan", 0},
	}
	for _, tt := range tests {
		if got := newsRisk(tt.news); got != tt.want {
			t.Errorf("newsRisk(%q) = %.0f, want %.0f", tt.news, got, tt.want)
		}
	}
}

func TestSuitabilityScore_Tiers(t *testing.T) {
	safe := &models.RiskProfile{
		Rotation:       models.RiskDimension{Score: 10},
		Injury:         models.RiskDimension{Score: 15},
		PriceChange:    models.RiskDimension{Score: 30},
		FormVolatility: models.RiskDimension{Score: 25},
		Overall:        19.5,
	}
	risky := &models.RiskProfile{
		Rotation:       models.RiskDimension{Score: 70},
		Injury:         models.RiskDimension{Score: 60},
		PriceChange:    models.RiskDimension{Score: 50},
		FormVolatility: models.RiskDimension{Score: 80},
		Overall:        66,
	}

	if got := SuitabilityScore(models.ToleranceConservative, safe, 4.0, 30); got < 60 {
		t.Errorf("conservative suitability for a safe profile = %.1f, want >= 60", got)
	}
	if got := SuitabilityScore(models.ToleranceConservative, risky, 4.0, 30); got >= 45 {
		t.Errorf("conservative suitability for a risky profile = %.1f, want < 45", got)
	}

	if got := SuitabilityScore(models.ToleranceBalanced, safe, 4.0, 30); got < 60 {
		t.Errorf("balanced suitability = %.1f, want >= 60 with strong expected points", got)
	}
	low := SuitabilityScore(models.ToleranceBalanced, safe, 2.0, 30)
	high := SuitabilityScore(models.ToleranceBalanced, safe, 4.0, 30)
	if low >= high {
		t.Errorf("balanced suitability should reward expected points: %.1f >= %.1f", low, high)
	}

	// Aggressive rewards ceiling and low ownership, tolerates the risk.
	if got := SuitabilityScore(models.ToleranceAggressive, risky, 4.5, 5); got < 60 {
		t.Errorf("aggressive suitability = %.1f, want >= 60 for a volatile differential", got)
	}

	for _, tol := range []models.RiskTolerance{models.ToleranceConservative, models.ToleranceBalanced, models.ToleranceAggressive} {
		for _, p := range []*models.RiskProfile{safe, risky} {
			got := SuitabilityScore(tol, p, 4.0, 15)
			if got < 0 || got > 100 {
				t.Errorf("SuitabilityScore(%s) = %.1f outside [0, 100]", tol, got)
			}
		}
	}
}

func containsConcern(concerns []string, want string) bool {
	for _, c := range concerns {
		if c == want {
			return true
		}
	}
	return false
}
