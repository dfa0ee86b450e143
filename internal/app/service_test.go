package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
)

func init() {
	// Initialize logging for tests
	err := logger.Init()
	if err != nil {
		panic(err)
	}
}

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newService(c *clock, opts ...service.Option) *service.Service {
	return service.New(append([]service.Option{
		service.WithClock(c.Now),
		service.WithSeed(7),
		service.WithWorkerCount(1),
	}, opts...)...)
}

func register(ctx context.Context, svc *service.Service, name, code string) service.UserView {
	u, err := svc.Register(ctx, service.Registration{
		Name:         name,
		Email:        name + "@example.com",
		ReferralCode: code,
	})
	So(err, ShouldBeNil)
	return u
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Policy(), ShouldEqual, model.Strict)
			So(svc.Started(), ShouldBeFalse)
			So(svc.Prizes(), ShouldHaveLength, 6)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithWorkerCount(8),
			service.WithQueueSize(50_000),
			service.WithDedupeSize(25_000),
			service.WithMaxDailySpins(5),
			service.WithPolicy(model.Lenient),
		)

		Convey("Then it should be created successfully", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Policy(), ShouldEqual, model.Lenient)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a new service", t, func() {
		svc := service.New(service.WithWorkerCount(2))
		defer svc.Stop()
		ctx := context.Background()

		Convey("When starting the service twice", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Start(ctx), ShouldBeNil)

			Convey("Then it should be marked as started", func() {
				stats, err := svc.GetStats(ctx)
				So(err, ShouldBeNil)
				So(stats.Started, ShouldBeTrue)
				So(stats.Workers, ShouldEqual, 2)
			})

			Convey("And stopping should clear the flag", func() {
				svc.Stop()
				So(svc.Started(), ShouldBeFalse)
				So(errors.Is(svc.Start(ctx), service.ErrStopped), ShouldBeTrue)
			})
		})

		Convey("When stopping a service that never started", func() {
			svc.Stop()

			Convey("Then nothing happens", func() {
				So(svc.Started(), ShouldBeFalse)
			})
		})
	})
}

func TestService_Register(t *testing.T) {
	Convey("Given a strict service", t, func() {
		ctx := context.Background()
		svc := newService(newClock())

		Convey("When a user registers", func() {
			u := register(ctx, svc, "amina", "")

			Convey("Then the account starts inactive on the intern tier", func() {
				So(u.UserID, ShouldNotBeBlank)
				So(u.ReferralCode, ShouldStartWith, "GE")
				So(u.Tier, ShouldEqual, 0)
				So(u.TierName, ShouldEqual, "Intern")
				So(u.Activated, ShouldBeFalse)
				So(u.Balance, ShouldEqual, 0)
				So(u.Transactions, ShouldBeEmpty)
			})

			Convey("And it can be loaded again", func() {
				got, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(got.Email, ShouldEqual, "amina@example.com")
			})

			Convey("And a referred user links to them", func() {
				child := register(ctx, svc, "brian", u.ReferralCode)
				So(child.ReferredBy, ShouldEqual, u.UserID)

				parent, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(parent.ReferralCount, ShouldEqual, 1)
			})
		})

		Convey("When the input is invalid", func() {
			_, errName := svc.Register(ctx, service.Registration{Name: " ", Email: "x@example.com"})
			_, errEmail := svc.Register(ctx, service.Registration{Name: "x", Email: "not-an-email"})

			Convey("Then registration is refused", func() {
				So(errors.Is(errName, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errEmail, service.ErrInvalidInput), ShouldBeTrue)
			})
		})

		Convey("When the referral code is unknown", func() {
			_, err := svc.Register(ctx, service.Registration{Name: "x", Email: "x@example.com", ReferralCode: "GE0000"})

			Convey("Then registration is refused", func() {
				So(errors.Is(err, service.ErrInvalidReferral), ShouldBeTrue)
			})
		})

		Convey("When the user does not exist", func() {
			_, err := svc.User(ctx, "ghost")

			Convey("Then ErrUserNotFound is returned", func() {
				So(errors.Is(err, service.ErrUserNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a lenient service", t, func() {
		ctx := context.Background()
		svc := newService(newClock(), service.WithPolicy(model.Lenient))

		Convey("When the referral code is unknown", func() {
			u, err := svc.Register(ctx, service.Registration{Name: "x", Email: "x@example.com", ReferralCode: "GE0000"})

			Convey("Then the code is ignored", func() {
				So(err, ShouldBeNil)
				So(u.ReferredBy, ShouldBeBlank)
			})
		})
	})
}

func TestService_ActivateAndBonus(t *testing.T) {
	Convey("Given a registered user", t, func() {
		ctx := context.Background()
		svc := newService(newClock())
		u := register(ctx, svc, "amina", "")

		Convey("When activating tier 3", func() {
			got, err := svc.Activate(ctx, u.UserID, 3)
			So(err, ShouldBeNil)

			Convey("Then the account is active on that tier", func() {
				So(got.Activated, ShouldBeTrue)
				So(got.Tier, ShouldEqual, 3)
				So(got.TierName, ShouldEqual, "Job 3")
			})

			Convey("And moving down is refused", func() {
				_, err := svc.Activate(ctx, u.UserID, 2)
				So(errors.Is(err, service.ErrTierDowngrade), ShouldBeTrue)
			})

			Convey("And moving up is allowed", func() {
				got, err := svc.Activate(ctx, u.UserID, 5)
				So(err, ShouldBeNil)
				So(got.Tier, ShouldEqual, 5)
			})
		})

		Convey("When activating an unknown tier under the strict policy", func() {
			_, err := svc.Activate(ctx, u.UserID, 12)

			Convey("Then ErrInvalidTier is returned", func() {
				So(errors.Is(err, tier.ErrInvalidTier), ShouldBeTrue)
			})
		})

		Convey("When claiming the welcome bonus twice", func() {
			got, err := svc.ClaimWelcomeBonus(ctx, u.UserID)
			So(err, ShouldBeNil)
			_, again := svc.ClaimWelcomeBonus(ctx, u.UserID)

			Convey("Then it is credited once", func() {
				So(got.Balance, ShouldEqual, wallet.WelcomeBonus)
				So(got.BonusClaimed, ShouldBeTrue)
				So(again, ShouldEqual, service.ErrBonusClaimed)
			})
		})

		Convey("When the user is suspended", func() {
			_, err := svc.SuspendUser(ctx, u.UserID, true)
			So(err, ShouldBeNil)

			Convey("Then earning operations are refused", func() {
				_, err := svc.ClaimWelcomeBonus(ctx, u.UserID)
				So(errors.Is(err, service.ErrSuspended), ShouldBeTrue)
				_, err = svc.Activate(ctx, u.UserID, 1)
				So(errors.Is(err, service.ErrSuspended), ShouldBeTrue)
			})

			Convey("And lifting the suspension restores them", func() {
				_, err := svc.SuspendUser(ctx, u.UserID, false)
				So(err, ShouldBeNil)
				_, err = svc.Activate(ctx, u.UserID, 1)
				So(err, ShouldBeNil)
			})
		})
	})
}

func TestService_DailyTasks(t *testing.T) {
	Convey("Given a user", t, func() {
		ctx := context.Background()
		c := newClock()
		svc := newService(c)
		u := register(ctx, svc, "amina", "")

		Convey("When the account is not activated", func() {
			_, err := svc.DailyTasks(ctx, u.UserID)

			Convey("Then tasks are locked", func() {
				So(errors.Is(err, service.ErrNotActivated), ShouldBeTrue)
			})
		})

		Convey("When the account is on tier 1", func() {
			_, err := svc.Activate(ctx, u.UserID, 1)
			So(err, ShouldBeNil)
			batch, err := svc.DailyTasks(ctx, u.UserID)
			So(err, ShouldBeNil)

			Convey("Then today's batch matches the tier", func() {
				So(batch.Tasks, ShouldHaveLength, 5)
				So(batch.Day, ShouldEqual, "2026-10-15")
				So(batch.Tier, ShouldEqual, 1)
				for _, task := range batch.Tasks {
					So(task.Reward, ShouldEqual, 20)
				}
			})

			Convey("And the same batch is served all day", func() {
				c.Advance(8 * time.Hour)
				again, err := svc.DailyTasks(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(again.ID, ShouldEqual, batch.ID)
			})

			Convey("And a new batch is generated the next day", func() {
				c.Advance(24 * time.Hour)
				next, err := svc.DailyTasks(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(next.ID, ShouldNotEqual, batch.ID)
				So(next.Day, ShouldEqual, "2026-10-16")
			})

			Convey("And an upgrade regenerates the batch", func() {
				_, err := svc.Activate(ctx, u.UserID, 2)
				So(err, ShouldBeNil)
				next, err := svc.DailyTasks(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(next.ID, ShouldNotEqual, batch.ID)
				So(next.Tasks, ShouldHaveLength, 10)
			})

			Convey("And completing a task credits its reward once", func() {
				done, err := svc.CompleteTask(ctx, u.UserID, batch.Tasks[0].ID, 42)
				So(err, ShouldBeNil)
				So(done.Reward, ShouldEqual, 20)
				So(done.Balance, ShouldEqual, 20)
				So(done.Completed, ShouldEqual, 1)
				So(done.Remaining, ShouldEqual, 4)
				So(done.Task.Completed, ShouldBeTrue)

				_, err = svc.CompleteTask(ctx, u.UserID, batch.Tasks[0].ID, 42)
				So(errors.Is(err, tasks.ErrTaskCompleted), ShouldBeTrue)

				current, err := svc.DailyTasks(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(current.Tasks[0].Completed, ShouldBeTrue)

				got, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(got.TasksCompleted, ShouldEqual, 1)
			})

			Convey("And yesterday's task ids are refused", func() {
				c.Advance(24 * time.Hour)
				_, err := svc.CompleteTask(ctx, u.UserID, batch.Tasks[0].ID, 0)
				So(errors.Is(err, tasks.ErrTaskNotFound), ShouldBeTrue)
			})

			Convey("And the whole batch pays the daily income", func() {
				var last service.TaskCompletion
				for _, task := range batch.Tasks {
					last, err = svc.CompleteTask(ctx, u.UserID, task.ID, 0)
					So(err, ShouldBeNil)
				}
				So(last.Remaining, ShouldEqual, 0)
				So(last.Balance, ShouldEqual, tier.Must(1).DailyIncome)
			})

			Convey("And search finds tasks by title", func() {
				found, err := svc.SearchTasks(ctx, u.UserID, "")
				So(err, ShouldBeNil)
				So(found, ShouldHaveLength, 5)
			})
		})
	})
}

func TestService_Insights(t *testing.T) {
	Convey("Given an activated user with a completed task", t, func() {
		ctx := context.Background()
		svc := newService(newClock())
		u := register(ctx, svc, "amina", "")
		_, err := svc.Activate(ctx, u.UserID, 1)
		So(err, ShouldBeNil)
		batch, err := svc.DailyTasks(ctx, u.UserID)
		So(err, ShouldBeNil)
		_, err = svc.CompleteTask(ctx, u.UserID, batch.Tasks[0].ID, 30)
		So(err, ShouldBeNil)

		Convey("When asking for insights", func() {
			in, err := svc.Insights(ctx, u.UserID)
			So(err, ShouldBeNil)

			Convey("Then the profile reflects the history", func() {
				So(in.Profile.TaskPreferences, ShouldResemble, []string{string(batch.Tasks[0].Kind)})
				So(in.Profile.CompletionTimes, ShouldResemble, []int{30})
				So(in.MeanSeconds, ShouldEqual, 30)
				So(in.SpinsLeft, ShouldEqual, 3)
			})

			Convey("And the odds include the task variety bonus", func() {
				So(in.WinRate, ShouldAlmostEqual, 0.11, 1e-9)
			})

			Convey("And the remaining tasks are suggested", func() {
				last := in.Recommendations[len(in.Recommendations)-1]
				So(last.Title, ShouldEqual, "4 Tasks Left Today")
			})
		})
	})
}

func TestService_Spin(t *testing.T) {
	Convey("Given a user", t, func() {
		ctx := context.Background()
		c := newClock()
		svc := newService(c)
		u := register(ctx, svc, "amina", "")

		Convey("When the account is not activated", func() {
			_, err := svc.Spin(ctx, u.UserID)

			Convey("Then the wheel is locked", func() {
				So(errors.Is(err, service.ErrNotActivated), ShouldBeTrue)
			})
		})

		Convey("When an activated user spins", func() {
			_, err := svc.Activate(ctx, u.UserID, 1)
			So(err, ShouldBeNil)

			var won float64
			for i := 0; i < 3; i++ {
				res, err := svc.Spin(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(res.SpinsLeft, ShouldEqual, 2-i)
				So(res.WinRate, ShouldAlmostEqual, 0.1, 1e-9)
				if res.Won {
					So(res.Prize.Amount, ShouldBeGreaterThan, 0)
					won += res.Prize.Amount
				} else {
					So(res.Prize.Amount, ShouldEqual, 0)
				}
			}

			Convey("Then prizes are credited", func() {
				got, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(got.Balance, ShouldEqual, won)
			})

			Convey("And a fourth spin is refused", func() {
				_, err := svc.Spin(ctx, u.UserID)
				So(errors.Is(err, service.ErrSpinLimit), ShouldBeTrue)
			})

			Convey("And spins reset the next day", func() {
				c.Advance(24 * time.Hour)
				res, err := svc.Spin(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(res.SpinsLeft, ShouldEqual, 2)
			})
		})
	})
}

func TestService_Transactions(t *testing.T) {
	Convey("Given a user", t, func() {
		ctx := context.Background()
		svc := newService(newClock())
		u := register(ctx, svc, "amina", "")

		deposit := func(id string, amount float64) (wallet.Transaction, error) {
			return svc.RequestTransaction(ctx, u.UserID, service.TransactionRequest{
				RequestID: id, Kind: "deposit", Method: "mpesa", Phone: "0712345678", Amount: amount,
			})
		}
		withdraw := func(id string, amount float64) (wallet.Transaction, error) {
			return svc.RequestTransaction(ctx, u.UserID, service.TransactionRequest{
				RequestID: id, Kind: "withdrawal", Amount: amount,
			})
		}
		balance := func() float64 {
			got, err := svc.User(ctx, u.UserID)
			So(err, ShouldBeNil)
			return got.Balance
		}

		Convey("When depositing", func() {
			tx, err := deposit("d-1", 1000)
			So(err, ShouldBeNil)

			Convey("Then the deposit settles at once", func() {
				So(tx.Status, ShouldEqual, wallet.Completed)
				So(tx.Method, ShouldEqual, wallet.MPesa)
				So(tx.RiskScore, ShouldAlmostEqual, 0.3, 1e-9)
				So(balance(), ShouldEqual, 1000)
			})

			Convey("And a retry returns the original transaction", func() {
				again, err := deposit("d-1", 1000)
				So(err, ShouldBeNil)
				So(again.ID, ShouldEqual, tx.ID)
				So(balance(), ShouldEqual, 1000)
			})

			Convey("And a withdrawal holds the amount until review", func() {
				w, err := withdraw("w-1", 600)
				So(err, ShouldBeNil)
				So(w.Status, ShouldEqual, wallet.Pending)
				So(balance(), ShouldEqual, 400)

				Convey("Then rejecting it refunds the balance", func() {
					r, err := svc.ReviewWithdrawal(ctx, u.UserID, w.ID, false)
					So(err, ShouldBeNil)
					So(r.Status, ShouldEqual, wallet.Rejected)
					So(r.ReviewedAt, ShouldNotBeNil)
					So(balance(), ShouldEqual, 1000)
				})

				Convey("Then approving it keeps the debit", func() {
					r, err := svc.ReviewWithdrawal(ctx, u.UserID, w.ID, true)
					So(err, ShouldBeNil)
					So(r.Status, ShouldEqual, wallet.Approved)
					So(balance(), ShouldEqual, 400)

					_, err = svc.ReviewWithdrawal(ctx, u.UserID, w.ID, false)
					So(errors.Is(err, wallet.ErrInvalidTransition), ShouldBeTrue)
				})

				Convey("Then deposits cannot be reviewed", func() {
					_, err := svc.ReviewWithdrawal(ctx, u.UserID, tx.ID, true)
					So(errors.Is(err, wallet.ErrInvalidTransition), ShouldBeTrue)
				})

				Convey("Then unknown transactions are reported", func() {
					_, err := svc.ReviewWithdrawal(ctx, u.UserID, "nope", true)
					So(errors.Is(err, service.ErrTransactionNotFound), ShouldBeTrue)
				})
			})
		})

		Convey("When withdrawing more than the balance", func() {
			_, err := withdraw("w-1", 600)

			Convey("Then it is refused and the request id can be retried", func() {
				So(errors.Is(err, service.ErrInsufficientBalance), ShouldBeTrue)
				_, err := deposit("d-1", 1000)
				So(err, ShouldBeNil)
				w, err := withdraw("w-1", 600)
				So(err, ShouldBeNil)
				So(w.Status, ShouldEqual, wallet.Pending)
			})
		})

		Convey("When a large first withdrawal exceeds the balance", func() {
			_, err := withdraw("w-big", 5000)

			Convey("Then it is refused before scoring and leaves no record", func() {
				So(errors.Is(err, service.ErrInsufficientBalance), ShouldBeTrue)
				got, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(got.Transactions, ShouldBeEmpty)

				tx, err := deposit("d-1", 1000)
				So(err, ShouldBeNil)
				So(tx.RiskScore, ShouldAlmostEqual, 0.3, 1e-9)
			})
		})

		Convey("When the amount is below the minimum", func() {
			_, errDeposit := deposit("d-1", 50)
			_, errWithdraw := withdraw("w-1", 100)

			Convey("Then ErrBelowMinimum is returned and nothing is recorded", func() {
				So(errors.Is(errDeposit, wallet.ErrBelowMinimum), ShouldBeTrue)
				So(errors.Is(errWithdraw, wallet.ErrBelowMinimum), ShouldBeTrue)
				got, err := svc.User(ctx, u.UserID)
				So(err, ShouldBeNil)
				So(got.Transactions, ShouldBeEmpty)
			})
		})

		Convey("When the request looks fraudulent", func() {
			tx, err := deposit("d-1", 1500)
			So(err, ShouldBeNil)

			Convey("Then it is recorded as flagged and moves no money", func() {
				So(tx.Status, ShouldEqual, wallet.Flagged)
				So(tx.RiskScore, ShouldAlmostEqual, 0.5, 1e-9)
				So(tx.Reason, ShouldNotBeBlank)
				So(balance(), ShouldEqual, 0)
			})
		})

		Convey("When the kind or method is unknown", func() {
			_, errKind := svc.RequestTransaction(ctx, u.UserID, service.TransactionRequest{Kind: "loan", Amount: 100})
			_, errMethod := svc.RequestTransaction(ctx, u.UserID, service.TransactionRequest{Kind: "deposit", Method: "paypal", Amount: 100})

			Convey("Then ErrInvalidInput is returned", func() {
				So(errors.Is(errKind, service.ErrInvalidInput), ShouldBeTrue)
				So(errors.Is(errMethod, service.ErrInvalidInput), ShouldBeTrue)
			})
		})
	})
}

func TestService_ReferralCommissions(t *testing.T) {
	Convey("Given a five level referral chain", t, func() {
		ctx := context.Background()
		svc := newService(newClock())

		chain := []service.UserView{register(ctx, svc, "u0", "")}
		for i := 1; i < 6; i++ {
			chain = append(chain, register(ctx, svc, fmt.Sprintf("u%d", i), chain[i-1].ReferralCode))
		}
		depositor := chain[5]

		Convey("When the newest member deposits", func() {
			_, err := svc.RequestTransaction(ctx, depositor.UserID, service.TransactionRequest{
				RequestID: "d-1", Kind: "deposit", Amount: 1000,
			})
			So(err, ShouldBeNil)

			Convey("Then four uplines are paid by level", func() {
				want := []float64{0, 10, 20, 30, 80}
				for i, amount := range want {
					got, err := svc.User(ctx, chain[i].UserID)
					So(err, ShouldBeNil)
					So(got.Balance, ShouldAlmostEqual, amount, 1e-9)
				}
			})

			Convey("And each upline sees the commission against its direct referral", func() {
				team, err := svc.Team(ctx, chain[3].UserID)
				So(err, ShouldBeNil)
				So(team, ShouldHaveLength, 1)
				So(team[0].UserID, ShouldEqual, chain[4].UserID)
				So(team[0].Commission, ShouldAlmostEqual, 30, 1e-9)

				direct, err := svc.Team(ctx, chain[4].UserID)
				So(err, ShouldBeNil)
				So(direct[0].UserID, ShouldEqual, depositor.UserID)
				So(direct[0].Commission, ShouldAlmostEqual, 80, 1e-9)
			})
		})

		Convey("When a flagged deposit is recorded", func() {
			tx, err := svc.RequestTransaction(ctx, depositor.UserID, service.TransactionRequest{
				RequestID: "d-1", Kind: "deposit", Amount: 1500,
			})
			So(err, ShouldBeNil)
			So(tx.Status, ShouldEqual, wallet.Flagged)

			Convey("Then no commission is paid", func() {
				got, err := svc.User(ctx, chain[4].UserID)
				So(err, ShouldBeNil)
				So(got.Balance, ShouldEqual, 0)
			})
		})
	})
}

func TestService_Engine(t *testing.T) {
	Convey("Given a strict service", t, func() {
		svc := newService(newClock())

		Convey("When looking up tiers", func() {
			cfg, err := svc.Tier(4)
			So(err, ShouldBeNil)
			_, bad := svc.Tier(10)

			Convey("Then the catalog is served", func() {
				So(cfg.DailyTaskCount, ShouldEqual, 30)
				So(svc.Tiers(), ShouldHaveLength, 10)
				So(errors.Is(bad, tier.ErrInvalidTier), ShouldBeTrue)
			})
		})

		Convey("When generating a detached batch", func() {
			batch, err := svc.GenerateTasks(2, time.Date(2026, 10, 15, 0, 0, 0, 0, time.UTC))

			Convey("Then it follows the tier quota", func() {
				So(err, ShouldBeNil)
				So(batch.Tasks, ShouldHaveLength, 10)
			})
		})

		Convey("When evaluating a raw snapshot", func() {
			ev, err := svc.Evaluate([]byte(`{"tier": 1, "referralCount": 4, "completedTasks": [{"category": "video", "completionTime": 40}]}`))

			Convey("Then the engine output is returned", func() {
				So(err, ShouldBeNil)
				So(ev.Profile.ReferralActivity, ShouldEqual, 4)
				So(ev.WinRate, ShouldAlmostEqual, 0.19, 1e-9)
			})
		})

		Convey("When assessing a transaction", func() {
			a, err := svc.Assess(1500, nil)

			Convey("Then the fraud verdict is returned", func() {
				So(err, ShouldBeNil)
				So(a.Safe, ShouldBeFalse)
			})
		})
	})
}
