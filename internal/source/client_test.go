package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

const testBootstrap = `{
	"events": [
		{"id": 9, "finished": true},
		{"id": 10, "is_current": true}
	],
	"teams": [
		{"id": 1, "name": "Arsenal", "short_name": "ARS"},
		{"id": 2, "name": "Chelsea", "short_name": "CHE"}
	],
	"elements": [
		{
			"id": 7, "web_name": "Saka", "team": 1, "element_type": 3,
			"now_cost": 102, "total_points": 88, "minutes": 900, "starts": 10,
			"goals_scored": 4, "assists": 6, "bonus": 11,
			"expected_goals": "3.75", "expected_assists": "4.10",
			"status": "a", "news": "", "form": "6.2", "points_per_game": "5.5",
			"selected_by_percent": "41.3", "transfers_in_event": 50000,
			"transfers_out_event": 20000, "threat": "71.0", "creativity": "88.4",
			"birth_date": "2001-09-05"
		}
	]
}`

const testFixturesJSON = `[
	{"id": 1, "event": 10, "team_h": 1, "team_a": 2,
	 "team_h_difficulty": 3, "team_a_difficulty": 3,
	 "finished": true, "team_h_score": 2, "team_a_score": 0},
	{"id": 2, "event": 11, "team_h": 2, "team_a": 1,
	 "team_h_difficulty": 4, "team_a_difficulty": 2}
]`

func testServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/bootstrap-static/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testBootstrap))
	})
	mux.HandleFunc("/fixtures/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(testFixturesJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientSnapshot(t *testing.T) {
	srv := testServer(t)
	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: zap.NewNop()})

	snap, err := client.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}

	if snap.CurrentRound != 10 {
		t.Errorf("CurrentRound = %d, want 10", snap.CurrentRound)
	}
	if len(snap.Competitors) != 1 || len(snap.Teams) != 2 || len(snap.Fixtures) != 2 {
		t.Fatalf("snapshot sizes = %d/%d/%d, want 1/2/2",
			len(snap.Competitors), len(snap.Teams), len(snap.Fixtures))
	}

	saka := snap.Competitor(7)
	if saka == nil {
		t.Fatal("Competitor(7) not indexed")
	}
	if saka.Price != 10.2 || saka.NetTransfers != 30000 {
		t.Errorf("converted competitor = %+v", saka)
	}
	if fx := snap.TeamFixture(1, 11); fx == nil || fx.AwayTeamID != 1 {
		t.Errorf("TeamFixture(1, 11) = %+v, want the round 11 away trip", fx)
	}
}

func TestClientSnapshot_UpstreamDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "maintenance", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: zap.NewNop()})
	_, err := client.Snapshot(context.Background())
	if !errors.Is(err, ErrSnapshotUnavailable) {
		t.Fatalf("error = %v, want ErrSnapshotUnavailable", err)
	}
}

func TestClientSnapshot_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>nope</html>"))
	}))
	t.Cleanup(srv.Close)

	client := NewClient(ClientConfig{BaseURL: srv.URL, Logger: zap.NewNop()})
	_, err := client.Snapshot(context.Background())
	if !errors.Is(err, ErrSnapshotUnavailable) {
		t.Fatalf("error = %v, want ErrSnapshotUnavailable", err)
	}
}
