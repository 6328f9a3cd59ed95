package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/attrib/internal/adapters/http/api"
	"github.com/okian/attrib/internal/domain/levers"
	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/scoring"
	"github.com/okian/attrib/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies records the last call and returns canned results.
type mockDependencies struct {
	mu  sync.Mutex
	err error

	sport     model.Sport
	mode      model.Mode
	stats     model.GameStats
	gameID    string
	teamID    string
	requestID string
}

func (m *mockDependencies) ResolveSport(v string) model.Sport {
	if v == "" {
		return model.SportNBA
	}
	return model.Sport(strings.ToLower(v))
}

func (m *mockDependencies) ComputeIndex(ctx context.Context, sport model.Sport, mode model.Mode, stats model.GameStats) (model.IndexResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sport, m.mode, m.stats = sport, mode, stats
	m.requestID = logger.RequestID(ctx)
	if m.err != nil {
		return model.IndexResult{}, m.err
	}
	return model.IndexResult{Mode: mode, Sport: sport, Score: 94, Confidence: 65}, nil
}

func (m *mockDependencies) ClassifyLevers(_ context.Context, expected, observed []model.Lever) []model.LeverWithStatus {
	return levers.Classify(expected, observed)
}

func (m *mockDependencies) Readiness(_ context.Context, sport model.Sport, gameID, teamID string) (model.ReadinessReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sport, m.gameID, m.teamID = sport, gameID, teamID
	if m.err != nil {
		return model.ReadinessReport{}, m.err
	}
	return model.ReadinessReport{GameID: gameID, TeamID: teamID, Index: model.IndexResult{Score: 71}}, nil
}

func (m *mockDependencies) Performance(_ context.Context, sport model.Sport, gameID, teamID string) (model.PerformanceReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sport, m.gameID, m.teamID = sport, gameID, teamID
	if m.err != nil {
		return model.PerformanceReport{}, m.err
	}
	return model.PerformanceReport{
		GameID:      gameID,
		TeamID:      teamID,
		Readiness:   model.IndexResult{Score: 71},
		Performance: model.IndexResult{Score: 80},
	}, nil
}

func (m *mockDependencies) Matchup(_ context.Context, sport model.Sport, gameID string) (model.MatchupReport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sport, m.gameID = sport, gameID
	if m.err != nil {
		return model.MatchupReport{}, m.err
	}
	return model.MatchupReport{
		Matchup: model.Matchup{GameID: gameID, HomeTeamID: "LAL", AwayTeamID: "BOS"},
		Index:   model.IndexResult{Mode: model.ModeComparative, Edge: 5.4, Favored: "LAL"},
	}, nil
}

func (m *mockDependencies) MasterLevers() scoring.Catalog {
	return scoring.MasterCatalog()
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func newMux(deps *mockDependencies) *http.ServeMux {
	mux := http.NewServeMux()
	stats := &mockStatsProvider{stats: map[string]interface{}{"provider": "mock"}}
	api.NewServer(deps, stats).Register(context.Background(), mux)
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeError(w *httptest.ResponseRecorder) map[string]string {
	var out map[string]string
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return out
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("Then the health endpoint serves metrics", func() {
			w := serve(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then the stats endpoint serves the provider's stats", func() {
			w := serve(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Header().Get("Content-Type"), ShouldStartWith, "application/json")
			So(w.Body.String(), ShouldContainSubstring, `"provider":"mock"`)
		})

		Convey("Then unknown paths are not found", func() {
			w := serve(mux, http.MethodGet, "/unknown", "")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a wrong method is rejected", func() {
			w := serve(mux, http.MethodGet, "/v1/index", "")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestIndexHandler(t *testing.T) {
	Convey("Given the index endpoint", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When posting stats without a mode", func() {
			w := serve(mux, http.MethodPost, "/v1/index", `{"fg_pct": 50, "days_rest": 2}`)

			Convey("Then the logistic index of the default sport is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var res model.IndexResult
				So(json.Unmarshal(w.Body.Bytes(), &res), ShouldBeNil)
				So(res.Score, ShouldEqual, 94)
				So(deps.mode, ShouldEqual, model.ModeLogistic)
				So(deps.sport, ShouldEqual, model.SportNBA)
			})

			Convey("And posted context is trusted", func() {
				So(deps.stats.FieldGoalPct, ShouldEqual, 50)
				So(deps.stats.DaysRest, ShouldEqual, 2)
				So(deps.stats.HistoryGames, ShouldEqual, 1)
			})
		})

		Convey("When the caller declares no history", func() {
			w := serve(mux, http.MethodPost, "/v1/index", `{"history_games": 0}`)

			Convey("Then the zero is kept", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.stats.HistoryGames, ShouldEqual, 0)
			})
		})

		Convey("When mode and sport are given", func() {
			w := serve(mux, http.MethodPost, "/v1/index?mode=Comparative&sport=NFL", `{}`)

			Convey("Then both reach the scorer normalized", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.mode, ShouldEqual, model.ModeComparative)
				So(deps.sport, ShouldEqual, model.SportNFL)
			})
		})

		Convey("When the body is not JSON", func() {
			w := serve(mux, http.MethodPost, "/v1/index", `{not json`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})

		Convey("When the scorer rejects the configuration", func() {
			deps.err = fmt.Errorf("%w: unknown mode %q", scoring.ErrInvalidConfiguration, "ranked")
			w := serve(mux, http.MethodPost, "/v1/index?mode=ranked", `{}`)

			Convey("Then it is reported as invalid configuration", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "invalid_configuration")
				So(decodeError(w)["message"], ShouldContainSubstring, "ranked")
			})
		})
	})
}

func TestGameHandler(t *testing.T) {
	Convey("Given the game endpoints", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When requesting readiness", func() {
			w := serve(mux, http.MethodGet, "/v1/games/401/teams/LAL/readiness?sport=soccer", "")

			Convey("Then path values and sport reach the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.gameID, ShouldEqual, "401")
				So(deps.teamID, ShouldEqual, "LAL")
				So(deps.sport, ShouldEqual, model.SportSoccer)

				var rep model.ReadinessReport
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.Index.Score, ShouldEqual, 71)
			})
		})

		Convey("When requesting performance", func() {
			w := serve(mux, http.MethodGet, "/v1/games/401/teams/BOS/performance", "")

			Convey("Then both indices are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep model.PerformanceReport
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.TeamID, ShouldEqual, "BOS")
				So(rep.Readiness.Score, ShouldEqual, 71)
				So(rep.Performance.Score, ShouldEqual, 80)
			})
		})

		Convey("When requesting a matchup", func() {
			w := serve(mux, http.MethodGet, "/v1/games/401/matchup", "")

			Convey("Then the comparative edge is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep model.MatchupReport
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep.Index.Edge, ShouldEqual, 5.4)
				So(rep.Index.Favored, ShouldEqual, "LAL")
			})
		})

		Convey("When the service fails", func() {
			deps.err = errors.New("boom")
			w := serve(mux, http.MethodGet, "/v1/games/401/matchup", "")

			Convey("Then it is an internal error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(decodeError(w)["code"], ShouldEqual, "internal_error")
			})
		})

		Convey("When the service rejects the sport", func() {
			deps.err = fmt.Errorf("%w: unknown sport %q", scoring.ErrInvalidConfiguration, "curling")
			w := serve(mux, http.MethodGet, "/v1/games/401/teams/LAL/readiness?sport=curling", "")

			Convey("Then it is reported as invalid configuration", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "invalid_configuration")
			})
		})
	})
}

func TestLeverHandler(t *testing.T) {
	Convey("Given the lever endpoints", t, func() {
		mux := newMux(&mockDependencies{})

		Convey("When listing levers", func() {
			w := serve(mux, http.MethodGet, "/v1/levers", "")

			Convey("Then the versioned master list is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var cat scoring.Catalog
				So(json.Unmarshal(w.Body.Bytes(), &cat), ShouldBeNil)
				So(cat.Version, ShouldEqual, scoring.MasterVersion)
				So(len(cat.Levers), ShouldEqual, len(scoring.MasterLevers()))
			})
		})

		Convey("When classifying levers", func() {
			body := `{
				"expected": [{"key": "performance", "contribution": 2}, {"key": "fatigue", "contribution": -1}],
				"observed": [{"key": "performance", "contribution": -0.5}, {"key": "fatigue", "contribution": 1}, {"key": "morale", "contribution": 0.3}]
			}`
			w := serve(mux, http.MethodPost, "/v1/levers/classify", body)

			Convey("Then every observed lever carries a status", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var out struct {
					Levers  []model.LeverWithStatus `json:"levers"`
					Summary map[model.Status]int    `json:"summary"`
				}
				So(json.Unmarshal(w.Body.Bytes(), &out), ShouldBeNil)
				So(len(out.Levers), ShouldEqual, 3)
				So(out.Levers[0].Status, ShouldEqual, model.StatusWeaker)
				So(out.Levers[1].Status, ShouldEqual, model.StatusStronger)
				So(out.Levers[2].Status, ShouldEqual, model.StatusNew)
				So(out.Summary[model.StatusNew], ShouldEqual, 1)
			})
		})

		Convey("When an observed lever has no key", func() {
			w := serve(mux, http.MethodPost, "/v1/levers/classify", `{"observed": [{"contribution": 1}]}`)

			Convey("Then it is a bad request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(decodeError(w)["code"], ShouldEqual, "bad_request")
			})
		})
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	Convey("Given a routed request", t, func() {
		deps := &mockDependencies{}
		mux := newMux(deps)

		Convey("When the caller supplies a request id", func() {
			req := httptest.NewRequest(http.MethodPost, "/v1/index", strings.NewReader(`{}`))
			req.Header.Set(api.HeaderRequestID, "req-123")
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is echoed and reaches the handler context", func() {
				So(w.Header().Get(api.HeaderRequestID), ShouldEqual, "req-123")
				So(deps.requestID, ShouldEqual, "req-123")
			})
		})

		Convey("When the caller supplies none", func() {
			w := serve(mux, http.MethodPost, "/v1/index", `{}`)

			Convey("Then a UUID is generated", func() {
				id := w.Header().Get(api.HeaderRequestID)
				So(len(id), ShouldEqual, 36)
				So(deps.requestID, ShouldEqual, id)
			})
		})
	})
}
