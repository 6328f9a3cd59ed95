package normalize_test

import (
	"math"
	"testing"

	"github.com/okian/attrib/internal/domain/model"
	"github.com/okian/attrib/internal/domain/normalize"
	. "github.com/smartystreets/goconvey/convey"
)

const tolerance = 0.01

func referenceGame() model.GameStats {
	return model.GameStats{
		FieldGoalPct:  46.5,
		ThreePointPct: 38.5,
		FreeThrowPct:  82.1,
		Assists:       24,
		Turnovers:     11,
		Rebounds:      45,
		DaysRest:      2,
		IsBackToBack:  false,
		InjuryCount:   0,
		AvgMinutes:    34,
		HistoryGames:  5,
		WinStreak:     1,
		IsHome:        false,
		Last5Wins:     3,
	}
}

func TestNormalizer_ReferenceGame(t *testing.T) {
	Convey("Given the reference away game after two days of rest", t, func() {
		n := normalize.New()
		b := n.Explain(referenceGame())

		Convey("Then the performance terms match the fixed weights", func() {
			So(b.Shooting, ShouldAlmostEqual, 51.22, tolerance)
			So(b.BallMovement, ShouldAlmostEqual, 100.0, tolerance) // 24/11*50 capped
			So(b.Rebounding, ShouldAlmostEqual, 90.0, tolerance)
			So(b.Metrics.Performance, ShouldAlmostEqual, 77.49, tolerance)
		})

		Convey("And fatigue comes from the two-day rest score", func() {
			So(b.RestScore, ShouldEqual, 30)
			So(b.BackToBack, ShouldEqual, 0)
			So(b.Metrics.Fatigue, ShouldAlmostEqual, 18.0, tolerance)
		})

		Convey("And 34 minutes does not count as overload", func() {
			So(b.InjuryLoad, ShouldEqual, 0)
			So(b.MinutesOverload, ShouldEqual, 0)
			So(b.Metrics.Risk, ShouldEqual, 0)
		})

		Convey("And morale blends streak, venue and recent record", func() {
			So(b.StreakMorale, ShouldAlmostEqual, 73.3, tolerance)
			So(b.VenueMorale, ShouldEqual, 40)
			So(b.FormMorale, ShouldAlmostEqual, 60.0, tolerance)
			So(b.Metrics.Morale, ShouldAlmostEqual, 60.65, tolerance)
		})

		Convey("And Normalize agrees with Explain", func() {
			So(n.Normalize(referenceGame()), ShouldResemble, b.Metrics)
		})
	})
}

func TestNormalizer_Thresholds(t *testing.T) {
	Convey("Given a normalizer", t, func() {
		n := normalize.New()
		base := referenceGame()

		Convey("When days of rest vary", func() {
			cases := map[int]float64{0: 100, 1: 60, 2: 30, 3: 10, 7: 10}
			for days, want := range cases {
				s := base
				s.DaysRest = days
				So(n.Explain(s).RestScore, ShouldEqual, want)
			}
		})

		Convey("When average minutes cross each overload boundary", func() {
			cases := map[float64]float64{34: 0, 34.5: 20, 36: 20, 36.1: 50, 38: 50, 38.1: 80}
			for minutes, want := range cases {
				s := base
				s.AvgMinutes = minutes
				So(n.Explain(s).MinutesOverload, ShouldEqual, want)
			}
		})

		Convey("When the team plays a back-to-back at home with injuries", func() {
			s := base
			s.DaysRest = 0
			s.IsBackToBack = true
			s.InjuryCount = 2
			s.IsHome = true
			b := n.Explain(s)

			So(b.Metrics.Fatigue, ShouldAlmostEqual, 100, 1e-9) // 100*0.6 + 100*0.4
			So(b.Metrics.Risk, ShouldAlmostEqual, 36, 1e-9) // 60*0.6
			So(b.VenueMorale, ShouldEqual, 80)
		})

		Convey("When the injury list is long the load caps at 100", func() {
			s := base
			s.InjuryCount = 9
			So(n.Explain(s).InjuryLoad, ShouldEqual, 100)
		})
	})
}

func TestNormalizer_Defaults(t *testing.T) {
	Convey("Given a stats record with no box-score data", t, func() {
		n := normalize.New()
		s := model.GameStats{HistoryGames: 3, DaysRest: 3}
		b := n.Explain(s)

		Convey("Then documented defaults stand in for the missing values", func() {
			d := normalize.DefaultInputs()
			So(d.FieldGoalPct, ShouldEqual, 45.0)
			So(d.Assists, ShouldEqual, 24)
			So(b.Shooting, ShouldAlmostEqual, d.FieldGoalPct*0.5+d.ThreePointPct*0.3+d.FreeThrowPct*0.2, 1e-9)
			So(b.BallMovement, ShouldAlmostEqual, math.Min(100, d.Assists/d.Turnovers*50), 1e-9)
		})

		Convey("And configured defaults override the built-ins", func() {
			custom := normalize.New(normalize.WithDefaults(normalize.Defaults{FieldGoalPct: 50}))
			So(custom.Defaults().FieldGoalPct, ShouldEqual, 50)
			So(custom.Defaults().Assists, ShouldEqual, 24)
		})
	})

	Convey("Given a team with no historical games", t, func() {
		n := normalize.New()
		s := referenceGame()
		s.HistoryGames = 0
		s.DaysRest = 0
		s.IsBackToBack = true
		s.InjuryCount = 4

		Convey("Then the neutral single-game context is used", func() {
			b := n.Explain(s)
			So(b.RestScore, ShouldEqual, 60)
			So(b.BackToBack, ShouldEqual, 0)
			So(b.InjuryLoad, ShouldEqual, 0)
		})
	})
}

func TestNormalizer_Clamping(t *testing.T) {
	Convey("Given extreme raw inputs", t, func() {
		n := normalize.New()
		extremes := []model.GameStats{
			{FieldGoalPct: 1e6, ThreePointPct: 1e6, FreeThrowPct: 1e6, Assists: 1e6, Turnovers: 1, Rebounds: 1e6,
				DaysRest: -10, IsBackToBack: true, InjuryCount: 1000, AvgMinutes: 1e6, HistoryGames: 1,
				WinStreak: 1000, IsHome: true, Last5Wins: 1000},
			{FieldGoalPct: -1e6, ThreePointPct: -1e6, FreeThrowPct: -1e6, Assists: -50, Turnovers: -3, Rebounds: -1e6,
				DaysRest: 100, InjuryCount: -1000, AvgMinutes: -5, HistoryGames: 10,
				WinStreak: -1000, Last5Wins: -1000},
		}

		Convey("Then every canonical metric stays within [0,100]", func() {
			for _, s := range extremes {
				m := n.Normalize(s)
				for _, v := range []float64{m.Performance, m.Fatigue, m.Risk, m.Morale} {
					So(v, ShouldBeGreaterThanOrEqualTo, 0)
					So(v, ShouldBeLessThanOrEqualTo, 100)
				}
			}
		})
	})
}
