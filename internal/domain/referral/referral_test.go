package referral_test

import (
	"testing"

	"github.com/goldedge/rewards/internal/domain/referral"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommissions(t *testing.T) {
	Convey("Given a referred deposit of 3000", t, func() {
		Convey("When five uplines exist", func() {
			payouts := referral.Commissions(3000, []string{"a", "b", "c", "d", "e"})

			Convey("Then only four levels are paid, nearest first", func() {
				So(len(payouts), ShouldEqual, 4)
				So(payouts[0].UserID, ShouldEqual, "a")
				So(payouts[0].Amount, ShouldAlmostEqual, 240)
				So(payouts[1].Amount, ShouldAlmostEqual, 90)
				So(payouts[2].Amount, ShouldAlmostEqual, 60)
				So(payouts[3].Amount, ShouldAlmostEqual, 30)
				So(payouts[3].Level, ShouldEqual, 4)
			})
		})

		Convey("When a level is vacant", func() {
			payouts := referral.Commissions(3000, []string{"a", "", "c"})

			Convey("Then it is skipped but keeps its level number", func() {
				So(len(payouts), ShouldEqual, 2)
				So(payouts[1].Level, ShouldEqual, 3)
			})
		})

		Convey("When the amount is not positive", func() {
			So(referral.Commissions(0, []string{"a"}), ShouldBeEmpty)
		})
	})
}

func TestCodes(t *testing.T) {
	Convey("Given generated codes", t, func() {
		seen := map[string]bool{}
		for i := 0; i < 200; i++ {
			code := referral.NewCode()
			So(referral.ValidCode(code), ShouldBeTrue)
			seen[code] = true
		}

		Convey("Then collisions are rare", func() {
			So(len(seen), ShouldBeGreaterThan, 195)
		})

		Convey("Then malformed codes are rejected", func() {
			So(referral.ValidCode("GE12345"), ShouldBeFalse)
			So(referral.ValidCode("XX123456"), ShouldBeFalse)
			So(referral.ValidCode("GEabcdef"), ShouldBeFalse)
		})
	})
}
