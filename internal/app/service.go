// Package service wires the reward engine behind explicit user sessions and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	eventqueue "github.com/goldedge/rewards/internal/adapters/mq/queue"
	workerpool "github.com/goldedge/rewards/internal/adapters/mq/worker"
	"github.com/goldedge/rewards/internal/adapters/repository"
	"github.com/goldedge/rewards/internal/adapters/session"
	"github.com/goldedge/rewards/internal/content"
	"github.com/goldedge/rewards/internal/domain/dedupe"
	"github.com/goldedge/rewards/internal/domain/fraud"
	"github.com/goldedge/rewards/internal/domain/model"
	"github.com/goldedge/rewards/internal/domain/odds"
	"github.com/goldedge/rewards/internal/domain/recommend"
	"github.com/goldedge/rewards/internal/domain/tasks"
	"github.com/goldedge/rewards/internal/domain/wallet"
	"github.com/goldedge/rewards/pkg/logger"
	"github.com/goldedge/rewards/pkg/metrics"
)

// Reward sources, used as metric labels and leaderboard annotations.
const (
	SourceTask     = "task"
	SourceWheel    = "wheel"
	SourceBonus    = "bonus"
	SourceReferral = "referral"
)

// Service implements the API dependencies for the rewards platform.
type Service struct {
	mu sync.RWMutex

	// Core components
	store       session.Store
	deduper     dedupe.Deduper
	generator   *tasks.Generator
	recommender *recommend.Engine
	wheel       *odds.Wheel
	scorer      *fraud.Scorer
	leaderboard repository.Store
	rewardQueue *eventqueue.InMemoryQueue
	workerPool  *workerpool.Pool

	// Configuration
	policy        model.Policy
	seed          int64
	banks         content.Banks
	prizes        []odds.Prize
	maxDailySpins int
	limits        wallet.Limits
	recommendOpts []recommend.Option
	workerCount   int
	queueSize     int
	dedupeSize    int
	now           func() time.Time

	// State
	started bool
	stopped bool
	locks   sync.Map // user id -> *sync.Mutex

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPolicy selects strict or lenient handling of out-of-contract input.
func WithPolicy(p model.Policy) Option {
	return func(s *Service) { s.policy = p }
}

// WithSeed makes task generation and the wheel reproducible. Zero keeps
// clock-based seeding.
func WithSeed(seed int64) Option {
	return func(s *Service) { s.seed = seed }
}

// WithContent sets the task title and feature banks.
func WithContent(b content.Banks) Option {
	return func(s *Service) {
		if b.Validate() == nil {
			s.banks = b
		}
	}
}

// WithPrizeTable replaces the lucky wheel segments.
func WithPrizeTable(prizes []odds.Prize) Option {
	return func(s *Service) {
		if len(prizes) > 0 {
			s.prizes = append([]odds.Prize(nil), prizes...)
		}
	}
}

// WithMaxDailySpins sets how many wheel spins a user gets per day.
func WithMaxDailySpins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxDailySpins = n
		}
	}
}

// WithLimits sets the deposit and withdrawal minimums.
func WithLimits(l wallet.Limits) Option {
	return func(s *Service) {
		if l.MinDeposit > 0 && l.MinWithdrawal > 0 {
			s.limits = l
		}
	}
}

// WithRecommendOptions tunes the recommendation rules.
func WithRecommendOptions(opts ...recommend.Option) Option {
	return func(s *Service) { s.recommendOpts = append(s.recommendOpts, opts...) }
}

// WithWorkerCount sets the number of leaderboard worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending reward events.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithStore replaces the in-memory session store.
func WithStore(store session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.store = store
		}
	}
}

// WithClock overrides the wall clock.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service. Reward events queue up until Start runs
// the leaderboard workers.
func New(opts ...Option) *Service {
	s := &Service{
		policy:        model.Strict,
		banks:         content.Default(),
		prizes:        odds.DefaultPrizeTable(),
		maxDailySpins: odds.DefaultMaxSpins,
		limits:        wallet.DefaultLimits(),
		workerCount:   runtime.NumCPU(),
		queueSize:     10000,
		dedupeSize:    dedupe.DefaultMaxSize,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	if s.store == nil {
		s.store = session.NewMemoryStore()
	}

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.generator = tasks.NewGenerator(tasks.WithSeed(s.seed), tasks.WithClock(s.now))
	s.recommender = recommend.NewEngine(append([]recommend.Option{recommend.WithPolicy(s.policy)}, s.recommendOpts...)...)
	s.wheel = odds.NewWheel(odds.WithSeed(s.seed))
	s.scorer = fraud.NewScorer(fraud.WithClock(s.now))
	s.leaderboard = repository.NewTreapStore(repository.WithSeed(s.seed))
	s.rewardQueue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.workerPool = workerpool.NewPool(s.workerCount, s.rewardQueue, s.leaderboard,
		workerpool.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))),
		workerpool.WithLogger(s.logger.Named("worker")),
	)
	return s
}

// Start runs the leaderboard workers until Stop or until ctx ends. A
// stopped service cannot be started again.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return ErrStopped
	}
	if s.started {
		return nil
	}
	s.workerPool.Start(ctx)
	s.started = true
	s.logger.Info(ctx, "rewards service started",
		logger.Int("workers", s.workerPool.Size()),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("policy", s.policy.String()),
	)
	return nil
}

// Stop drains pending reward events and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping rewards service...")
	if err := s.workerPool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	s.started = false
	s.stopped = true
	s.logger.Info(ctx, "rewards service stopped")
}

// Started reports whether the workers are running.
func (s *Service) Started() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

func (s *Service) today() string {
	return tasks.DayKey(s.now())
}

// lock serializes load-modify-save cycles of one user.
func (s *Service) lock(userID string) func() {
	m, _ := s.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *Service) load(ctx context.Context, userID string) (session.Session, error) {
	sess, err := s.store.Load(ctx, userID)
	if errors.Is(err, session.ErrNotFound) {
		return session.Session{}, fmt.Errorf("%w: %s", ErrUserNotFound, userID)
	}
	if err != nil {
		return session.Session{}, fmt.Errorf("load session %s: %w", userID, err)
	}
	return sess, nil
}

// update loads a session, applies fn and saves the result unless fn fails.
func (s *Service) update(ctx context.Context, userID string, fn func(*session.Session) error) (session.Session, error) {
	unlock := s.lock(userID)
	defer unlock()

	sess, err := s.load(ctx, userID)
	if err != nil {
		return session.Session{}, err
	}
	if err := fn(&sess); err != nil {
		return sess, err
	}
	if err := s.store.Save(ctx, sess); err != nil {
		return sess, fmt.Errorf("save session %s: %w", userID, err)
	}
	return sess, nil
}

// usable rejects suspended accounts.
func usable(sess *session.Session) error {
	if sess.Suspended {
		return fmt.Errorf("%w: %s", ErrSuspended, sess.UserID)
	}
	return nil
}

// activated rejects suspended and not yet activated accounts.
func activated(sess *session.Session) error {
	if err := usable(sess); err != nil {
		return err
	}
	if !sess.Activated {
		return fmt.Errorf("%w: %s", ErrNotActivated, sess.UserID)
	}
	return nil
}

// publish records a credit and hands it to the leaderboard workers.
func (s *Service) publish(ctx context.Context, userID, source string, amount float64) {
	if amount <= 0 {
		return
	}
	metrics.RecordRewardPaid(source, amount)
	event := model.RewardEvent{
		ID:     uuid.NewString(),
		UserID: userID,
		Source: source,
		Amount: amount,
		At:     s.now(),
	}
	if !s.rewardQueue.Enqueue(ctx, event) {
		s.logger.Warn(ctx, "reward event dropped",
			logger.String("userID", userID),
			logger.String("source", source),
			logger.Float64("amount", amount),
		)
	}
}
