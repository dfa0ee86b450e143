package tasks_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/goldedge/rewards/internal/content"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/tier"
	. "github.com/smartystreets/goconvey/convey"
)

var day = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func TestGenerate(t *testing.T) {
	Convey("Given a seeded generator and the default banks", t, func() {
		banks := content.Default()
		gen := tasks.NewGenerator(tasks.WithSeed(7))

		for _, cfg := range tier.All() {
			Convey(fmt.Sprintf("When generating for tier %d", cfg.ID), func() {
				batch, err := gen.Generate(cfg, day, banks.Titles, banks.Features)
				So(err, ShouldBeNil)

				Convey("Then the batch holds exactly the daily quota at the flat unit reward", func() {
					So(len(batch.Tasks), ShouldEqual, cfg.DailyTaskCount)
					for _, task := range batch.Tasks {
						So(task.Reward, ShouldEqual, cfg.UnitReward)
						So(task.Completed, ShouldBeFalse)
					}
				})

				Convey("Then durations stay within the per-kind bounds", func() {
					for _, task := range batch.Tasks {
						if task.Kind == tasks.KindVideo {
							So(task.DurationSeconds, ShouldBeBetweenOrEqual, 60, 179)
						} else {
							So(task.DurationSeconds, ShouldBeBetweenOrEqual, 15, 44)
						}
					}
				})

				Convey("Then ids are unique and the batch is tagged with tier and day", func() {
					seen := map[string]bool{}
					for _, task := range batch.Tasks {
						So(seen[task.ID], ShouldBeFalse)
						seen[task.ID] = true
					}
					So(batch.Tier, ShouldEqual, cfg.ID)
					So(batch.Day, ShouldEqual, "2026-10-15")
				})
			})
		}
	})
}

func TestGenerateLayout(t *testing.T) {
	Convey("Given a tier 3 batch", t, func() {
		banks := content.Default()
		gen := tasks.NewGenerator(tasks.WithSeed(1))
		batch, err := gen.Generate(tier.Must(3), day, banks.Titles, banks.Features)
		So(err, ShouldBeNil)

		Convey("Then kinds follow video, ad, video, survey, ...", func() {
			So(batch.Tasks[0].Kind, ShouldEqual, tasks.KindVideo)
			So(batch.Tasks[1].Kind, ShouldEqual, tasks.KindAd)
			So(batch.Tasks[2].Kind, ShouldEqual, tasks.KindVideo)
			So(batch.Tasks[3].Kind, ShouldEqual, tasks.KindSurvey)
			So(batch.Tasks[5].Kind, ShouldEqual, tasks.KindAd)
			So(batch.Tasks[7].Kind, ShouldEqual, tasks.KindSurvey)
		})

		Convey("Then video titles and features cycle through the banks", func() {
			So(batch.Tasks[0].Title, ShouldEqual, banks.Titles[0])
			So(batch.Tasks[8].Title, ShouldEqual, banks.Titles[0])
			So(batch.Tasks[10].Title, ShouldEqual, banks.Titles[2])
			So(batch.Tasks[10].Features, ShouldResemble, banks.Features[0])
			So(batch.Tasks[0].Description, ShouldContainSubstring, "everett success stories")
		})

		Convey("Then ad and survey tasks are numbered", func() {
			So(batch.Tasks[1].Title, ShouldEqual, "Task 2")
			So(batch.Tasks[1].Description, ShouldEqual, banks.Descriptions.Ad)
			So(batch.Tasks[3].Description, ShouldEqual, banks.Descriptions.Survey)
			So(batch.Tasks[1].Features, ShouldBeNil)
		})

		Convey("Then difficulty is one of the three levels", func() {
			for _, task := range batch.Tasks {
				So(task.Difficulty, ShouldBeIn, tasks.Easy, tasks.Medium, tasks.Hard)
			}
		})
	})
}

func TestGenerateFreshIDs(t *testing.T) {
	Convey("Given two generations for the same tier and day", t, func() {
		banks := content.Default()
		gen := tasks.NewGenerator(tasks.WithSeed(3))
		a, errA := gen.Generate(tier.Must(1), day, banks.Titles, banks.Features)
		b, errB := gen.Generate(tier.Must(1), day, banks.Titles, banks.Features)
		So(errA, ShouldBeNil)
		So(errB, ShouldBeNil)

		Convey("Then no task id is shared between them", func() {
			So(a.ID, ShouldNotEqual, b.ID)
			for i := range a.Tasks {
				So(a.Tasks[i].ID, ShouldNotEqual, b.Tasks[i].ID)
			}
		})
	})

	Convey("Given a fixed id source", t, func() {
		gen := tasks.NewGenerator(tasks.WithIDFunc(func() string { return "batch" }))
		b, err := gen.Generate(tier.Must(0), day, []string{"t"}, [][]string{{"f"}})

		Convey("Then task ids are derived from the batch id and index", func() {
			So(err, ShouldBeNil)
			So(b.Tasks[0].ID, ShouldEqual, "batch-0")
			So(b.Tasks[4].ID, ShouldEqual, "batch-4")
		})
	})
}

func TestGenerateErrors(t *testing.T) {
	Convey("Given invalid inputs", t, func() {
		gen := tasks.NewGenerator()

		Convey("Then empty banks are rejected", func() {
			_, err := gen.Generate(tier.Must(2), day, nil, [][]string{{"x"}})
			So(errors.Is(err, tasks.ErrEmptyContent), ShouldBeTrue)
			_, err = gen.Generate(tier.Must(2), day, []string{"x"}, nil)
			So(errors.Is(err, tasks.ErrEmptyContent), ShouldBeTrue)
		})

		Convey("Then a tier without quota is rejected", func() {
			_, err := gen.Generate(tier.Config{ID: 5}, day, []string{"x"}, [][]string{{"x"}})
			So(errors.Is(err, tasks.ErrInvalidQuota), ShouldBeTrue)
		})
	})
}

func TestComplete(t *testing.T) {
	Convey("Given a fresh batch", t, func() {
		banks := content.Default()
		batch, err := tasks.NewGenerator(tasks.WithSeed(9)).Generate(tier.Must(0), day, banks.Titles, banks.Features)
		So(err, ShouldBeNil)
		id := batch.Tasks[2].ID

		Convey("When a task is completed", func() {
			task, err := batch.Complete(id)

			Convey("Then it is flagged and counted", func() {
				So(err, ShouldBeNil)
				So(task.Completed, ShouldBeTrue)
				So(batch.CompletedCount(), ShouldEqual, 1)
			})

			Convey("Then completing it again fails", func() {
				_, err := batch.Complete(id)
				So(errors.Is(err, tasks.ErrTaskCompleted), ShouldBeTrue)
				So(batch.CompletedCount(), ShouldEqual, 1)
			})

			Convey("Then a clone does not share task state", func() {
				clone := batch.Clone()
				clone.Tasks[0].Completed = true
				So(batch.Tasks[0].Completed, ShouldBeFalse)
			})
		})

		Convey("When an unknown task is completed", func() {
			_, err := batch.Complete("nope")

			Convey("Then it is not found", func() {
				So(errors.Is(err, tasks.ErrTaskNotFound), ShouldBeTrue)
			})
		})
	})
}

func TestSearch(t *testing.T) {
	Convey("Given a tier 2 batch", t, func() {
		banks := content.Default()
		batch, err := tasks.NewGenerator(tasks.WithSeed(5)).Generate(tier.Must(2), day, banks.Titles, banks.Features)
		So(err, ShouldBeNil)

		Convey("When searching for a video title", func() {
			found := tasks.Search(batch.Tasks, "Building Wealth")

			Convey("Then the matching video ranks first", func() {
				So(len(found), ShouldBeGreaterThan, 0)
				So(found[0].Title, ShouldEqual, "Building Wealth Through Tasks")
			})
		})

		Convey("When searching with a blank query", func() {
			found := tasks.Search(batch.Tasks, "  ")

			Convey("Then every task is returned", func() {
				So(len(found), ShouldEqual, len(batch.Tasks))
			})
		})

		Convey("When nothing matches", func() {
			So(tasks.Search(batch.Tasks, "zzzzqqq"), ShouldBeEmpty)
		})
	})
}
