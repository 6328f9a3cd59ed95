package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/attrib/internal/adapters/provider"
	"github.com/okian/attrib/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func summaryServer(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	body, err := os.ReadFile("testdata/nba_summary.json")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/basketball/nba/summary" || r.URL.Query().Get("event") != "401" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestESPN_Matchup(t *testing.T) {
	Convey("Given an ESPN provider backed by a fixture server", t, func() {
		srv, _ := summaryServer(t)
		p := provider.NewESPN(provider.WithBaseURL(srv.URL), provider.WithRateLimit(100, 10))
		ctx := context.Background()

		Convey("When resolving the matchup", func() {
			m, err := p.Matchup(ctx, model.SportNBA, "401")

			Convey("Then home and away come from the competitors", func() {
				So(err, ShouldBeNil)
				So(m.HomeTeamID, ShouldEqual, "13")
				So(m.AwayTeamID, ShouldEqual, "2")
				So(m.Neutral, ShouldBeFalse)
				So(p.Name(), ShouldEqual, "espn")
			})
		})

		Convey("When the game does not exist", func() {
			_, err := p.Matchup(ctx, model.SportNBA, "999")

			Convey("Then ErrGameNotFound is returned", func() {
				So(errors.Is(err, provider.ErrGameNotFound), ShouldBeTrue)
			})
		})

		Convey("When the sport has no ESPN path", func() {
			_, err := p.Matchup(ctx, model.Sport("curling"), "401")

			Convey("Then ErrUnsupportedSport is returned", func() {
				So(errors.Is(err, provider.ErrUnsupportedSport), ShouldBeTrue)
			})
		})
	})
}

func TestESPN_TeamStats(t *testing.T) {
	Convey("Given an ESPN provider backed by a fixture server", t, func() {
		srv, _ := summaryServer(t)
		p := provider.NewESPN(provider.WithBaseURL(srv.URL))
		ctx := context.Background()

		Convey("When fetching post-game stats", func() {
			s, err := p.TeamStats(ctx, model.SportNBA, "401", "13", model.PhasePostGame)
			So(err, ShouldBeNil)

			Convey("Then the box score is parsed", func() {
				So(s.FieldGoalPct, ShouldEqual, 46.5)
				So(s.ThreePointPct, ShouldEqual, 38.5)
				So(s.FreeThrowPct, ShouldEqual, 82.1)
				So(s.Assists, ShouldEqual, 24)
				So(s.Turnovers, ShouldEqual, 11)
				So(s.Rebounds, ShouldEqual, 45)
			})

			Convey("And context comes from the recent games", func() {
				So(s.TeamID, ShouldEqual, "13")
				So(s.OpponentID, ShouldEqual, "2")
				So(s.IsHome, ShouldBeTrue)
				So(s.HistoryGames, ShouldEqual, 5)
				So(s.Last5Wins, ShouldEqual, 3)
				So(s.WinStreak, ShouldEqual, 1)
				So(s.DaysRest, ShouldEqual, 2)
				So(s.IsBackToBack, ShouldBeFalse)
				So(s.InjuryCount, ShouldEqual, 2)
			})

			Convey("And form lines average points for and against", func() {
				So(s.Form.OffRating, ShouldAlmostEqual, 105.8, 1e-9)
				So(s.Form.DefRating, ShouldAlmostEqual, 104.8, 1e-9)
				So(s.Form.NetRating, ShouldAlmostEqual, 1.0, 1e-9)
				So(s.OpponentForm.OffRating, ShouldAlmostEqual, 115, 1e-9)
				So(s.OpponentForm.NetRating, ShouldAlmostEqual, 8, 1e-9)
			})
		})

		Convey("When fetching pre-game stats", func() {
			s, err := p.TeamStats(ctx, model.SportNBA, "401", "13", model.PhasePreGame)

			Convey("Then the final box score is not used", func() {
				So(err, ShouldBeNil)
				So(s.FieldGoalPct, ShouldEqual, 0)
				So(s.Assists, ShouldEqual, 0)
				So(s.DaysRest, ShouldEqual, 2)
			})
		})

		Convey("When the away team is named by abbreviation", func() {
			s, err := p.TeamStats(ctx, model.SportNBA, "401", "bos", model.PhasePostGame)

			Convey("Then fractional percentages are scaled", func() {
				So(err, ShouldBeNil)
				So(s.TeamID, ShouldEqual, "2")
				So(s.IsHome, ShouldBeFalse)
				So(s.FieldGoalPct, ShouldAlmostEqual, 48.9, 1e-9)
				So(s.WinStreak, ShouldEqual, 2)
				So(s.InjuryCount, ShouldEqual, 0)
			})
		})

		Convey("When the team is not in the game", func() {
			_, err := p.TeamStats(ctx, model.SportNBA, "401", "MIA", model.PhasePreGame)

			Convey("Then ErrTeamNotInGame is returned", func() {
				So(errors.Is(err, provider.ErrTeamNotInGame), ShouldBeTrue)
			})
		})
	})
}

func TestESPN_CircuitBreaker(t *testing.T) {
	Convey("Given an upstream that always fails", t, func() {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		p := provider.NewESPN(
			provider.WithBaseURL(srv.URL),
			provider.WithBreaker(1, time.Minute, 2),
		)
		ctx := context.Background()

		Convey("When requests keep failing", func() {
			_, err1 := p.Matchup(ctx, model.SportNBA, "401")
			_, err2 := p.Matchup(ctx, model.SportNBA, "401")
			_, err3 := p.Matchup(ctx, model.SportNBA, "401")

			Convey("Then the breaker opens after the threshold", func() {
				So(errors.Is(err1, provider.ErrUpstream), ShouldBeTrue)
				So(errors.Is(err2, provider.ErrUpstream), ShouldBeTrue)
				So(errors.Is(err3, provider.ErrUnavailable), ShouldBeTrue)
				So(atomic.LoadInt32(&hits), ShouldEqual, 2)
			})
		})
	})

	Convey("Given an upstream that reports missing games", t, func() {
		srv, hits := summaryServer(t)
		p := provider.NewESPN(provider.WithBaseURL(srv.URL), provider.WithBreaker(1, time.Minute, 1))

		Convey("When several unknown games are requested", func() {
			for i := 0; i < 3; i++ {
				_, err := p.Matchup(context.Background(), model.SportNBA, "missing")
				So(errors.Is(err, provider.ErrGameNotFound), ShouldBeTrue)
			}

			Convey("Then the breaker stays closed", func() {
				So(atomic.LoadInt32(hits), ShouldEqual, 3)
			})
		})
	})

	Convey("Given callers that give up before the upstream answers", t, func() {
		body, err := os.ReadFile("testdata/nba_summary.json")
		So(err, ShouldBeNil)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("event") == "slow" {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write(body)
		}))
		defer srv.Close()

		p := provider.NewESPN(provider.WithBaseURL(srv.URL), provider.WithBreaker(1, 0, 3))

		Convey("When three cancelled calls and one timed-out call are made", func() {
			for i := 0; i < 3; i++ {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				_, err := p.Matchup(ctx, model.SportNBA, "401")
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			_, err := p.Matchup(ctx, model.SportNBA, "slow")
			cancel()
			So(errors.Is(err, context.DeadlineExceeded), ShouldBeTrue)

			Convey("Then a live call still reaches the upstream", func() {
				m, err := p.Matchup(context.Background(), model.SportNBA, "401")
				So(err, ShouldBeNil)
				So(errors.Is(err, provider.ErrUnavailable), ShouldBeFalse)
				So(m.HomeTeamID, ShouldEqual, "13")
			})
		})
	})
}

func TestESPN_ContextCancelled(t *testing.T) {
	Convey("Given a cancelled context and a rate limiter", t, func() {
		srv, _ := summaryServer(t)
		p := provider.NewESPN(provider.WithBaseURL(srv.URL), provider.WithRateLimit(1, 1))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		Convey("Then the request fails without reaching the server", func() {
			_, err := p.Matchup(ctx, model.SportNBA, "401")
			So(err, ShouldNotBeNil)
		})
	})
}
