// Package tier holds the subscription tier catalog: daily task quota,
// per-task reward and pricing for job tiers 0 through 9.
package tier

import (
	"fmt"
	"strconv"

	"github.com/goldedge/rewards/internal/domain/model"
)

const (
	// MinID and MaxID bound valid tier identifiers.
	MinID = 0
	MaxID = 9

	daysPerMonth  = 30
	monthsPerYear = 12
	trialTierID   = 0
)

// Config describes one tier. Amounts are in KES.
type Config struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	DailyTaskCount  int     `json:"daily_task_count"`
	UnitReward      float64 `json:"unit_reward"`
	DailyIncome     float64 `json:"daily_income"`
	SecurityDeposit float64 `json:"security_deposit"`
	MonthlyIncome   float64 `json:"monthly_income"`
	AnnualIncome    float64 `json:"annual_income"`
}

// Label returns the tier id as a metric label.
func (c Config) Label() string { return strconv.Itoa(c.ID) }

func entry(id, tasks int, unit, deposit float64) Config {
	daily := float64(tasks) * unit
	monthly := daily * daysPerMonth
	if id == trialTierID {
		// the intern tier is a trial and carries no monthly contract
		monthly = 0
	}
	name := "Intern"
	if id != trialTierID {
		name = "Job " + strconv.Itoa(id)
	}
	return Config{
		ID:              id,
		Name:            name,
		DailyTaskCount:  tasks,
		UnitReward:      unit,
		DailyIncome:     daily,
		SecurityDeposit: deposit,
		MonthlyIncome:   monthly,
		AnnualIncome:    monthly * monthsPerYear,
	}
}

var catalog = [MaxID + 1]Config{ //nolint:gochecknoglobals // immutable table
	entry(0, 5, 18, 0),
	entry(1, 5, 20, 3_000),
	entry(2, 10, 27, 8_100),
	entry(3, 15, 54, 23_400),
	entry(4, 30, 77, 65_800),
	entry(5, 50, 135, 176_000),
	entry(6, 75, 238, 480_000),
	entry(7, 140, 300, 1_080_000),
	entry(8, 220, 430, 2_250_000),
	entry(9, 350, 560, 4_260_000),
}

// Valid reports whether id names a tier.
func Valid(id int) bool {
	return id >= MinID && id <= MaxID
}

// Lookup returns the configuration of tier id. Under the strict policy an
// out-of-range id is an ErrInvalidTier; under the lenient policy it resolves
// to tier 0.
func Lookup(id int, policy model.Policy) (Config, error) {
	if Valid(id) {
		return catalog[id], nil
	}
	if policy == model.Lenient {
		return catalog[trialTierID], nil
	}
	return Config{}, fmt.Errorf("%w: %d not in [%d,%d]", ErrInvalidTier, id, MinID, MaxID)
}

// Must returns tier id or tier 0 when id is out of range.
func Must(id int) Config {
	c, _ := Lookup(id, model.Lenient)
	return c
}

// Nearest clamps id into the valid range and returns that tier.
func Nearest(id int) Config {
	switch {
	case id < MinID:
		return catalog[MinID]
	case id > MaxID:
		return catalog[MaxID]
	default:
		return catalog[id]
	}
}

// All returns a copy of every tier in ascending order.
func All() []Config {
	out := make([]Config, len(catalog))
	copy(out, catalog[:])
	return out
}

// DailyEarnings is the payout for completed tasks at tier id.
func DailyEarnings(id, completed int) float64 {
	if completed <= 0 {
		return 0
	}
	return Must(id).UnitReward * float64(completed)
}
