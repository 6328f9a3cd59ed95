package levers_test

import (
	"math"
	"testing"

	"github.com/okian/attrib/internal/domain/levers"
	"github.com/okian/attrib/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func lever(key string, c float64) model.Lever {
	return model.Lever{Key: key, Label: key, Category: model.CategoryContext, Contribution: c, Rationale: "r-" + key}
}

func TestClassify(t *testing.T) {
	Convey("Given expected levers performance, fatigue and morale", t, func() {
		expected := []model.Lever{
			lever("performance", 4.6),
			lever("fatigue", -0.9),
			lever("morale", 3.0),
		}

		Convey("When the observed set mixes signs and a new key", func() {
			observed := []model.Lever{
				lever("morale", -1.2),
				lever("risk", -2.0),
				lever("performance", 5.1),
				lever("fatigue", 0),
			}
			got := levers.Classify(expected, observed)

			Convey("Then statuses follow membership and sign", func() {
				So(got, ShouldHaveLength, 4)
				So(got[0].Status, ShouldEqual, model.StatusWeaker)
				So(got[1].Status, ShouldEqual, model.StatusNew)
				So(got[2].Status, ShouldEqual, model.StatusStronger)
				So(got[3].Status, ShouldEqual, model.StatusExpected)
			})

			Convey("And observed order and fields are carried through", func() {
				for i, l := range got {
					So(l.Lever, ShouldResemble, observed[i])
				}
			})

			Convey("And the summary counts every status", func() {
				So(levers.Summary(got), ShouldResemble, map[model.Status]int{
					model.StatusWeaker:   1,
					model.StatusNew:      1,
					model.StatusStronger: 1,
					model.StatusExpected: 1,
				})
			})
		})

		Convey("When a new key has a positive contribution", func() {
			got := levers.Classify(expected, []model.Lever{lever("home_context", 2.5)})

			Convey("Then it is still new", func() {
				So(got[0].Status, ShouldEqual, model.StatusNew)
			})
		})

		Convey("When a known key contributes negative zero", func() {
			got := levers.Classify(expected, []model.Lever{lever("fatigue", math.Copysign(0, -1))})

			Convey("Then it is expected", func() {
				So(got[0].Status, ShouldEqual, model.StatusExpected)
			})
		})

		Convey("When nothing was observed", func() {
			got := levers.Classify(expected, nil)

			Convey("Then the result is empty", func() {
				So(got, ShouldBeEmpty)
			})
		})
	})

	Convey("Given no expected levers", t, func() {
		got := levers.Classify(nil, []model.Lever{lever("performance", -3), lever("risk", 0)})

		Convey("Then every observed lever is new", func() {
			for _, l := range got {
				So(l.Status, ShouldEqual, model.StatusNew)
			}
		})
	})
}
