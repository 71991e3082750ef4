package progress

import "log/slog"

// Reporter tracks running counts for a long batch run and logs a progress
// line after every increment.
type Reporter struct {
	logger *slog.Logger
	total  int64
	done   int64
}

// New builds a reporter over an expected total; the total may be zero when
// the queue is already empty.
func New(logger *slog.Logger, total int64) *Reporter {
	return &Reporter{logger: logger, total: total}
}

// Add records n more completed items.
func (r *Reporter) Add(n int) {
	r.done += int64(n)
	if r.logger != nil {
		r.logger.Info("progress", "done", r.done, "total", r.total)
	}
}

// Done returns how many items were completed so far.
func (r *Reporter) Done() int64 {
	return r.done
}
