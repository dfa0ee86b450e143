// Package tasks generates the daily batch of rewarded tasks for a tier.
package tasks

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goldedge/rewards/internal/content"
	"github.com/goldedge/rewards/internal/domain/tier"
)

// Kind is the activity a task asks for.
type Kind string

const (
	KindVideo  Kind = "video"
	KindAd     Kind = "ad"
	KindSurvey Kind = "survey"
)

// Difficulty is informational; it does not change reward or duration.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var difficulties = [...]Difficulty{Easy, Medium, Hard} //nolint:gochecknoglobals

// Duration bounds in seconds, upper bound exclusive.
const (
	videoMinSeconds = 60
	videoMaxSeconds = 180
	shortMinSeconds = 15
	shortMaxSeconds = 45
)

// Task is one rewarded activity of a daily batch.
type Task struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Kind            Kind       `json:"kind"`
	DurationSeconds int        `json:"duration_seconds"`
	Reward          float64    `json:"reward"`
	Difficulty      Difficulty `json:"difficulty"`
	Features        []string   `json:"features,omitempty"`
	Completed       bool       `json:"completed"`
}

// Batch is the set of tasks generated for one tier on one calendar day.
type Batch struct {
	ID          string    `json:"id"`
	Tier        int       `json:"tier"`
	Day         string    `json:"day"`
	GeneratedAt time.Time `json:"generated_at"`
	Tasks       []Task    `json:"tasks"`
}

// DayKey returns the calendar day of t as YYYY-MM-DD.
func DayKey(t time.Time) string {
	return t.Format(time.DateOnly)
}

// KindAt returns the task kind for index i: even indices are videos, odd
// indices alternate ad, survey, ad, ...
func KindAt(i int) Kind {
	if i%2 == 0 {
		return KindVideo
	}
	if (i/2)%2 == 0 {
		return KindAd
	}
	return KindSurvey
}

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithSeed makes durations and difficulties reproducible. A zero seed keeps
// the clock-based default.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		if seed != 0 {
			g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // not security sensitive
		}
	}
}

// WithIDFunc overrides the batch id source.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// WithClock overrides the clock used for GeneratedAt.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// Generator produces daily task batches. It is safe for concurrent use.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	newID func() string
	now   func() time.Time
}

// NewGenerator creates a generator with a clock-seeded source.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())), //nolint:gosec // not security sensitive
		newID: uuid.NewString,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate builds the batch for cfg on date using the default task
// descriptions.
func (g *Generator) Generate(cfg tier.Config, date time.Time, titles []string, features [][]string) (Batch, error) {
	return g.GenerateFrom(cfg, date, content.Banks{
		Titles:       titles,
		Features:     features,
		Descriptions: content.Default().Descriptions,
	})
}

// GenerateFrom builds the batch for cfg on date. It always returns exactly
// cfg.DailyTaskCount tasks, each rewarding cfg.UnitReward, under a batch id
// no earlier call has used.
func (g *Generator) GenerateFrom(cfg tier.Config, date time.Time, banks content.Banks) (Batch, error) {
	if len(banks.Titles) == 0 || len(banks.Features) == 0 {
		return Batch{}, ErrEmptyContent
	}
	if cfg.DailyTaskCount <= 0 {
		return Batch{}, fmt.Errorf("%w: tier %d", ErrInvalidQuota, cfg.ID)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	batch := Batch{
		ID:          g.newID(),
		Tier:        cfg.ID,
		Day:         DayKey(date),
		GeneratedAt: g.now(),
		Tasks:       make([]Task, cfg.DailyTaskCount),
	}
	for i := range batch.Tasks {
		kind := KindAt(i)
		t := Task{
			ID:         batch.ID + "-" + strconv.Itoa(i),
			Kind:       kind,
			Reward:     cfg.UnitReward,
			Difficulty: difficulties[g.rng.Intn(len(difficulties))],
		}
		switch kind {
		case KindVideo:
			title := banks.Titles[i%len(banks.Titles)]
			t.Title = title
			t.Description = fmt.Sprintf(banks.Descriptions.Video, strings.ToLower(title))
			t.Features = append([]string(nil), banks.Features[i%len(banks.Features)]...)
			t.DurationSeconds = videoMinSeconds + g.rng.Intn(videoMaxSeconds-videoMinSeconds)
		case KindAd, KindSurvey:
			t.Title = "Task " + strconv.Itoa(i+1)
			t.Description = banks.Descriptions.Ad
			if kind == KindSurvey {
				t.Description = banks.Descriptions.Survey
			}
			t.DurationSeconds = shortMinSeconds + g.rng.Intn(shortMaxSeconds-shortMinSeconds)
		}
		batch.Tasks[i] = t
	}
	return batch, nil
}

// Find returns the index of task id in the batch.
func (b *Batch) Find(id string) (int, bool) {
	for i := range b.Tasks {
		if b.Tasks[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// Complete marks task id as completed and returns it.
func (b *Batch) Complete(id string) (Task, error) {
	i, ok := b.Find(id)
	if !ok {
		return Task{}, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if b.Tasks[i].Completed {
		return b.Tasks[i], fmt.Errorf("%w: %s", ErrTaskCompleted, id)
	}
	b.Tasks[i].Completed = true
	return b.Tasks[i], nil
}

// CompletedCount returns how many tasks of the batch are done.
func (b *Batch) CompletedCount() int {
	n := 0
	for _, t := range b.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of the batch.
func (b Batch) Clone() Batch {
	out := b
	out.Tasks = make([]Task, len(b.Tasks))
	for i, t := range b.Tasks {
		t.Features = append([]string(nil), t.Features...)
		out.Tasks[i] = t
	}
	return out
}
