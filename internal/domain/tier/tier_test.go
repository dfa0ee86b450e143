package tier_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCatalogTable(t *testing.T) {
	Convey("Given the tier catalog", t, func() {
		want := []struct {
			tasks   int
			unit    float64
			daily   float64
			deposit float64
			monthly float64
		}{
			{5, 18, 90, 0, 0},
			{5, 20, 100, 3000, 3000},
			{10, 27, 270, 8100, 8100},
			{15, 54, 810, 23400, 24300},
			{30, 77, 2310, 65800, 69300},
			{50, 135, 6750, 176000, 202500},
			{75, 238, 17850, 480000, 535500},
			{140, 300, 42000, 1080000, 1260000},
			{220, 430, 94600, 2250000, 2838000},
			{350, 560, 196000, 4260000, 5880000},
		}

		Convey("Then every tier matches the published pricing table", func() {
			for id, w := range want {
				c, err := tier.Lookup(id, model.Strict)
				So(err, ShouldBeNil)
				So(c.ID, ShouldEqual, id)
				So(c.DailyTaskCount, ShouldEqual, w.tasks)
				So(c.UnitReward, ShouldEqual, w.unit)
				So(c.DailyIncome, ShouldEqual, w.daily)
				So(c.SecurityDeposit, ShouldEqual, w.deposit)
				So(c.MonthlyIncome, ShouldEqual, w.monthly)
				So(c.AnnualIncome, ShouldEqual, w.monthly*12)
			}
		})

		Convey("Then daily income equals task count times unit reward", func() {
			for _, c := range tier.All() {
				So(c.DailyIncome, ShouldEqual, float64(c.DailyTaskCount)*c.UnitReward)
			}
		})

		Convey("Then tiers are named Intern and Job 1..9", func() {
			all := tier.All()
			So(len(all), ShouldEqual, 10)
			So(all[0].Name, ShouldEqual, "Intern")
			So(all[3].Name, ShouldEqual, "Job 3")
			So(all[9].Label(), ShouldEqual, "9")
		})

		Convey("Then All returns a copy", func() {
			all := tier.All()
			all[0].UnitReward = 9999
			So(tier.Must(0).UnitReward, ShouldEqual, 18)
		})
	})
}

func TestLookupPolicies(t *testing.T) {
	Convey("Given out-of-range tier ids", t, func() {
		for _, id := range []int{-1, 10, 1000} {
			Convey(fmt.Sprintf("When looking up %d strictly", id), func() {
				_, err := tier.Lookup(id, model.Strict)

				Convey("Then an invalid tier error is returned", func() {
					So(errors.Is(err, tier.ErrInvalidTier), ShouldBeTrue)
				})
			})

			Convey(fmt.Sprintf("When looking up %d leniently", id), func() {
				c, err := tier.Lookup(id, model.Lenient)

				Convey("Then tier 0 is the fallback", func() {
					So(err, ShouldBeNil)
					So(c.ID, ShouldEqual, 0)
				})
			})
		}

		Convey("Then Nearest clamps into range", func() {
			So(tier.Nearest(-3).ID, ShouldEqual, 0)
			So(tier.Nearest(42).ID, ShouldEqual, 9)
			So(tier.Nearest(4).ID, ShouldEqual, 4)
		})
	})
}

func TestDailyEarnings(t *testing.T) {
	Convey("Given completed task counts", t, func() {
		So(tier.DailyEarnings(3, 15), ShouldEqual, 810)
		So(tier.DailyEarnings(9, 2), ShouldEqual, 1120)
		So(tier.DailyEarnings(3, 0), ShouldEqual, 0)
		So(tier.DailyEarnings(99, 1), ShouldEqual, 18)
	})
}
