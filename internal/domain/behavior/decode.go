package behavior

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/goldedge/rewards/internal/domain/model"
)

// snapshotKeys lists the accepted spellings of each snapshot field. The
// dashboard emits camelCase; our own API emits snake_case.
var snapshotKeys = map[string][]string{ //nolint:gochecknoglobals // lookup table
	"user_id":          {"user_id", "userId", "id"},
	"tier":             {"tier", "jobTier", "job_tier"},
	"balance":          {"balance"},
	"completed_tasks":  {"completed_tasks", "completedTasks"},
	"task_history":     {"task_history", "taskHistory"},
	"earning_history":  {"earning_history", "earningHistory"},
	"withdrawal_count": {"withdrawal_count", "withdrawalCount"},
	"referral_count":   {"referral_count", "referralCount"},
	"transactions":     {"transactions", "recentTransactions"},
}

// decoder collects type mismatches while reading a loosely typed document.
// Under the lenient policy mismatches are dropped and the field defaults.
type decoder struct {
	policy model.Policy
	errs   []string
}

// DecodeSnapshot reads a user snapshot from JSON without a fixed schema.
// Unknown fields are ignored. A field holding the wrong type defaults to its
// zero value under the lenient policy and fails with ErrMalformedSnapshot
// under the strict one. Input that is not a JSON object always fails.
func DecodeSnapshot(data []byte, policy model.Policy) (*model.UserSnapshot, error) {
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	if doc == nil {
		doc = map[string]any{}
	}

	d := &decoder{policy: policy}
	s := &model.UserSnapshot{}
	if v, key, ok := lookup(doc, "user_id"); ok {
		s.UserID = d.str(key, v)
	}
	if v, key, ok := lookup(doc, "tier"); ok {
		s.Tier = d.integer(key, v)
	}
	if v, key, ok := lookup(doc, "balance"); ok {
		s.Balance = d.number(key, v)
	}
	if v, key, ok := lookup(doc, "completed_tasks"); ok {
		s.CompletedTasks = d.records(key, v)
	}
	if v, key, ok := lookup(doc, "task_history"); ok {
		s.TaskHistory = d.records(key, v)
	}
	if v, key, ok := lookup(doc, "earning_history"); ok {
		for i, item := range d.list(key, v) {
			s.EarningHistory = append(s.EarningHistory, d.number(fmt.Sprintf("%s[%d]", key, i), item))
		}
	}
	if v, key, ok := lookup(doc, "withdrawal_count"); ok {
		s.WithdrawalCount = d.integer(key, v)
	}
	if v, key, ok := lookup(doc, "referral_count"); ok {
		s.ReferralCount = d.integer(key, v)
	}
	if v, key, ok := lookup(doc, "transactions"); ok {
		s.Transactions = d.transactions(key, v)
	}

	if policy == model.Strict && len(d.errs) > 0 {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, d.errs)
	}
	return s, nil
}

func lookup(doc map[string]any, field string) (any, string, bool) {
	for _, key := range snapshotKeys[field] {
		if v, ok := doc[key]; ok && v != nil {
			return v, key, true
		}
	}
	return nil, "", false
}

func (d *decoder) mismatch(path, want string, got any) {
	d.errs = append(d.errs, fmt.Sprintf("%s: want %s, got %T", path, want, got))
}

func (d *decoder) str(path string, v any) string {
	s, ok := v.(string)
	if !ok {
		d.mismatch(path, "string", v)
	}
	return s
}

func (d *decoder) number(path string, v any) float64 {
	f, ok := v.(float64)
	if !ok {
		d.mismatch(path, "number", v)
		return 0
	}
	return f
}

func (d *decoder) integer(path string, v any) int {
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		d.mismatch(path, "integer", v)
		return 0
	}
	return int(f)
}

func (d *decoder) list(path string, v any) []any {
	items, ok := v.([]any)
	if !ok {
		d.mismatch(path, "array", v)
	}
	return items
}

func (d *decoder) object(path string, v any) map[string]any {
	obj, ok := v.(map[string]any)
	if !ok {
		d.mismatch(path, "object", v)
	}
	return obj
}

// timestamp accepts RFC 3339 strings and Unix milliseconds.
func (d *decoder) timestamp(path string, v any) time.Time {
	switch t := v.(type) {
	case string:
		parsed, err := time.Parse(time.RFC3339, t)
		if err != nil {
			d.mismatch(path, "RFC 3339 time", v)
			return time.Time{}
		}
		return parsed
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= -math.MinInt64 {
			d.mismatch(path, "Unix milliseconds", v)
			return time.Time{}
		}
		return time.UnixMilli(int64(t)).UTC()
	default:
		d.mismatch(path, "time", v)
		return time.Time{}
	}
}

func (d *decoder) records(path string, v any) []model.TaskRecord {
	items := d.list(path, v)
	out := make([]model.TaskRecord, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj := d.object(p, item)
		if obj == nil {
			continue
		}
		var r model.TaskRecord
		if x, ok := firstOf(obj, "task_id", "taskId", "id"); ok {
			r.TaskID = d.str(p+".task_id", x)
		}
		if x, ok := firstOf(obj, "category", "type"); ok {
			r.Category = d.str(p+".category", x)
		}
		if x, ok := firstOf(obj, "completion_time", "completionTime"); ok {
			r.CompletionTime = d.integer(p+".completion_time", x)
		}
		if x, ok := firstOf(obj, "reward"); ok {
			r.Reward = d.number(p+".reward", x)
		}
		if x, ok := firstOf(obj, "completed_at", "completedAt"); ok {
			r.CompletedAt = d.timestamp(p+".completed_at", x)
		}
		out = append(out, r)
	}
	return out
}

func (d *decoder) transactions(path string, v any) []model.Transaction {
	items := d.list(path, v)
	out := make([]model.Transaction, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s[%d]", path, i)
		obj := d.object(p, item)
		if obj == nil {
			continue
		}
		var t model.Transaction
		if x, ok := firstOf(obj, "id"); ok {
			t.ID = d.str(p+".id", x)
		}
		if x, ok := firstOf(obj, "amount"); ok {
			t.Amount = d.number(p+".amount", x)
		}
		if x, ok := firstOf(obj, "date", "timestamp"); ok {
			t.Date = d.timestamp(p+".date", x)
		}
		out = append(out, t)
	}
	return out
}

func firstOf(obj map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}
