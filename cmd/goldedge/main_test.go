package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/goldedge/rewards/internal/adapters/http/api"
	service "github.com/goldedge/rewards/internal/app"
	"github.com/goldedge/rewards/internal/config"
	"github.com/goldedge/rewards/pkg/logger"
)

func run(args ...string) (string, error) {
	var out, errOut bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCommand(t *testing.T) {
	convey.Convey("Given the goldedge CLI", t, func() {
		convey.Convey("When printing the tier catalog", func() {
			out, err := run("tiers")

			convey.Convey("Then every tier is listed", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "Intern")
				convey.So(out, convey.ShouldContainSubstring, "Job 9")
			})
		})

		convey.Convey("When printing the catalog as JSON", func() {
			out, err := run("tiers", "--json")
			convey.So(err, convey.ShouldBeNil)
			var tiers []map[string]any

			convey.Convey("Then it decodes", func() {
				convey.So(json.Unmarshal([]byte(out), &tiers), convey.ShouldBeNil)
				convey.So(tiers, convey.ShouldHaveLength, 10)
			})
		})

		convey.Convey("When generating a batch", func() {
			out, err := run("tasks", "--tier", "2", "--date", "2026-10-15", "--json")
			convey.So(err, convey.ShouldBeNil)
			var batch struct {
				Day   string           `json:"day"`
				Tasks []map[string]any `json:"tasks"`
			}

			convey.Convey("Then the tier quota is honored", func() {
				convey.So(json.Unmarshal([]byte(out), &batch), convey.ShouldBeNil)
				convey.So(batch.Day, convey.ShouldEqual, "2026-10-15")
				convey.So(batch.Tasks, convey.ShouldHaveLength, 10)
			})
		})

		convey.Convey("When the tier is out of range", func() {
			_, err := run("tasks", "--tier", "11")

			convey.Convey("Then the strict default refuses it", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When the date is malformed", func() {
			_, err := run("tasks", "--date", "15-10-2026")

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When assessing an amount", func() {
			out, err := run("assess", "1500")
			convey.So(err, convey.ShouldBeNil)
			var a map[string]any

			convey.Convey("Then the verdict is printed", func() {
				convey.So(json.Unmarshal([]byte(out), &a), convey.ShouldBeNil)
				convey.So(a["safe"], convey.ShouldEqual, false)
			})
		})

		convey.Convey("When assessing against a history", func() {
			out, err := run("assess", "137", "--history", "100, 200")
			convey.So(err, convey.ShouldBeNil)
			var a map[string]any

			convey.Convey("Then the score reflects it", func() {
				convey.So(json.Unmarshal([]byte(out), &a), convey.ShouldBeNil)
				convey.So(a["safe"], convey.ShouldEqual, true)
				convey.So(a["risk_score"], convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When the amount is not a number", func() {
			_, err := run("assess", "lots")

			convey.Convey("Then an error is returned", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given environment overrides", t, func() {
		t.Setenv("GOLDEDGE_ADDR", ":8080")
		t.Setenv("GOLDEDGE_QUEUE_SIZE", "1000")
		t.Setenv("GOLDEDGE_WORKER_COUNT", "4")
		t.Setenv("GOLDEDGE_VALIDATION_MODE", "lenient")

		convey.Convey("Then the service can be built from them", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.QueueSize, convey.ShouldEqual, 1000)
			convey.So(cfg.WorkerCount, convey.ShouldEqual, 4)

			svc, err := newService(cfg, logger.Nop())
			convey.So(err, convey.ShouldBeNil)
			tierCfg, err := svc.Tier(42)
			convey.So(err, convey.ShouldBeNil)
			convey.So(tierCfg.ID, convey.ShouldEqual, 0)
		})
	})

	convey.Convey("Given an unknown validation mode", t, func() {
		t.Setenv("GOLDEDGE_VALIDATION_MODE", "sloppy")

		convey.Convey("Then the CLI refuses to start", func() {
			_, err := run("tiers")
			convey.So(err, convey.ShouldNotBeNil)
		})
	})

	convey.Convey("Given a missing content file", t, func() {
		cfg := config.New(context.Background())
		cfg.ContentFile = os.TempDir() + "/does-not-exist.toml"

		convey.Convey("Then the service is not built", func() {
			_, err := newService(cfg, logger.Nop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestMetricsUpdaters(t *testing.T) {
	convey.Convey("Given the metric updaters", t, func() {
		_ = logger.InitWith(&bytes.Buffer{}, "text")
		svc, err := newService(config.New(context.Background()), logger.Nop())
		convey.So(err, convey.ShouldBeNil)

		convey.Convey("Then they run until the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
			defer cancel()

			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestSimulateCommand(t *testing.T) {
	convey.Convey("Given a running API", t, func() {
		svc := service.New(service.WithWorkerCount(1))
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()
		srv := httptest.NewServer(api.NewServer(svc).Router())
		defer srv.Close()

		convey.Convey("When simulate runs against it", func() {
			out, err := run("simulate", "--url", srv.URL, "--users", "3", "--tasks", "2",
				"--workers", "2", "--settle", "5s")

			convey.Convey("Then the summary reports a clean run", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(out, convey.ShouldContainSubstring, "registered 3 (failed 0), tasks 6 (failed 0), ranked 3")
				convey.So(out, convey.ShouldNotContainSubstring, "mismatch")
			})
		})
	})
}
