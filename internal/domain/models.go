package domain

// ==================== ENUMS ====================

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed:
		return true
	}
	return false
}

func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// ==================== STATS BUCKETS ====================

// Amount histogram buckets keyed on the upper bound of the extracted amount.
const (
	AmountRangeUnder1K  = "0-1000"
	AmountRange1KTo5K   = "1000-5000"
	AmountRange5KTo10K  = "5000-10000"
	AmountRange10KTo25K = "10000-25000"
	AmountRangeOver25K  = "25000+"
	AmountRangeUnknown  = "unknown"
)

// Deadline distribution buckets relative to the time stats are computed.
const (
	DeadlinePast        = "past"
	DeadlineThisMonth   = "this_month"
	DeadlineThisQuarter = "this_quarter"
	DeadlineLater       = "later"
	DeadlineUnknown     = "unknown"
)

func AmountRangeBuckets() []string {
	return []string{
		AmountRangeUnder1K,
		AmountRange1KTo5K,
		AmountRange5KTo10K,
		AmountRange10KTo25K,
		AmountRangeOver25K,
		AmountRangeUnknown,
	}
}

func DeadlineBuckets() []string {
	return []string{DeadlinePast, DeadlineThisMonth, DeadlineThisQuarter, DeadlineLater, DeadlineUnknown}
}
