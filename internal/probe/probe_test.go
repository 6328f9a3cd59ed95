package probe

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/attrib/internal/adapters/http/api"
	"github.com/okian/attrib/internal/adapters/provider"
	service "github.com/okian/attrib/internal/app"
	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	svc := service.New(service.WithProvider(provider.NewMock(provider.WithSeed(7))))
	mux := http.NewServeMux()
	api.NewServer(svc, svc).Register(context.Background(), mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running service on the mock provider", t, func() {
		srv := newService(t)
		out := filepath.Join(t.TempDir(), "reports", "probe.json")
		config := &Config{
			BaseURL:    srv.URL,
			Games:      8,
			Workers:    3,
			Timeout:    5 * time.Second,
			Sport:      "nba",
			OutputFile: out,
		}

		Convey("When the probe runs", func() {
			stats, err := Run(context.Background(), config, logger.Nop())

			Convey("Then every game passes", func() {
				So(err, ShouldBeNil)
				So(stats.GamesProbed, ShouldEqual, 8)
				So(stats.GamesPassed, ShouldEqual, 8)
				So(stats.Violations, ShouldEqual, 0)
				So(stats.Fallbacks, ShouldEqual, 0)
				// health check plus matchup and three calls per side
				So(stats.Requests, ShouldEqual, 1+8*7)
			})

			Convey("And the report lists each game", func() {
				data, readErr := os.ReadFile(out)
				So(readErr, ShouldBeNil)
				var results []GameResult
				So(json.Unmarshal(data, &results), ShouldBeNil)
				So(len(results), ShouldEqual, 8)
				So(results[0].HomeTeamID, ShouldNotEqual, results[0].AwayTeamID)
			})
		})

		Convey("When the sport is unknown", func() {
			config.Sport = "curling"
			config.OutputFile = ""
			stats, err := Run(context.Background(), config, logger.Nop())

			Convey("Then every game errors", func() {
				So(errors.Is(err, ErrFailed), ShouldBeTrue)
				So(stats.Errors, ShouldEqual, 8)
			})
		})
	})

	Convey("Given an unhealthy service", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then the probe stops at the health check", func() {
			_, err := Run(context.Background(), &Config{BaseURL: srv.URL, Games: 1, Timeout: time.Second}, logger.Nop())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, ErrStatus), ShouldBeTrue)
		})
	})
}

func TestChecks(t *testing.T) {
	lever := func(key string, c float64) model.Lever { return model.Lever{Key: key, Contribution: c} }

	Convey("Given a valid logistic result", t, func() {
		res := model.IndexResult{
			Mode:      model.ModeLogistic,
			Score:     94,
			TopLevers: []model.Lever{lever("performance", 3), lever("morale", -1)},
			Levers:    []model.Lever{lever("performance", 3), lever("morale", -1)},
		}
		So(checkIndex("r", res), ShouldBeEmpty)

		Convey("When the score is fractional or out of range", func() {
			res.Score = 94.5
			So(checkIndex("r", res), ShouldHaveLength, 1)
			res.Score = 101
			So(checkIndex("r", res), ShouldHaveLength, 1)
		})

		Convey("When top levers are out of order", func() {
			res.TopLevers = []model.Lever{lever("morale", -1), lever("performance", 3)}
			So(checkIndex("r", res), ShouldHaveLength, 1)
		})

		Convey("When a lever is unknown", func() {
			res.Levers = append(res.Levers, lever("luck", 0))
			So(checkIndex("r", res)[0], ShouldContainSubstring, "luck")
		})
	})

	Convey("Given a comparative result", t, func() {
		rep := model.MatchupReport{
			Matchup: model.Matchup{HomeTeamID: "LAL", AwayTeamID: "BOS"},
			Index: model.IndexResult{
				Mode:    model.ModeComparative,
				Edge:    -1.5,
				Favored: "BOS",
				Levers:  []model.Lever{lever("net_rating_edge", -2), lever("home_context", 0.5)},
			},
		}
		So(checkMatchup(rep), ShouldBeEmpty)

		Convey("When the favored side contradicts the edge", func() {
			rep.Index.Favored = "LAL"
			So(checkMatchup(rep), ShouldHaveLength, 1)
		})

		Convey("When the levers do not sum to the edge", func() {
			rep.Index.Levers[1].Contribution = 1
			So(checkMatchup(rep), ShouldHaveLength, 1)
		})

		Convey("When a tie names a side", func() {
			rep.Index.Edge = 0
			rep.Index.Levers = []model.Lever{lever("net_rating_edge", 0)}
			So(checkMatchup(rep), ShouldHaveLength, 1)
		})
	})

	Convey("Given a performance report", t, func() {
		ready := model.IndexResult{Mode: model.ModeLogistic, Score: 60, TopLevers: []model.Lever{lever("fatigue", -2)}}
		perf := model.IndexResult{Mode: model.ModeLogistic, Score: 70, TopLevers: []model.Lever{lever("fatigue", 1), lever("risk", -0.5)}}
		rep := model.PerformanceReport{
			Readiness:   ready,
			Performance: perf,
			Levers: []model.LeverWithStatus{
				{Lever: perf.TopLevers[0], Status: model.StatusStronger},
				{Lever: perf.TopLevers[1], Status: model.StatusNew},
			},
		}
		So(checkPerformance("home", rep), ShouldBeEmpty)

		Convey("When a status is wrong", func() {
			rep.Levers[1].Status = model.StatusWeaker
			So(checkPerformance("home", rep), ShouldHaveLength, 1)
		})

		Convey("When a lever is missing", func() {
			rep.Levers = rep.Levers[:1]
			So(checkPerformance("home", rep), ShouldHaveLength, 1)
		})
	})

	Convey("Given two readiness responses", t, func() {
		a := model.ReadinessReport{Index: model.IndexResult{Score: 50}}
		So(checkRepeat("home", a, a), ShouldBeEmpty)
		So(checkRepeat("home", a, model.ReadinessReport{Index: model.IndexResult{Score: 51}}), ShouldHaveLength, 1)
	})
}
