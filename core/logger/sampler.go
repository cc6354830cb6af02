package logger

import (
	"strconv"
	"strings"
	"sync"
)

// ratioSampler passes the first allow-many events out of every window-many.
// A zero ratio means sampling is disabled and everything passes.
type ratioSampler struct {
	mu     sync.Mutex
	allow  int
	window int
	seen   int
}

func newRatioSampler(allow, window int) *ratioSampler {
	s := &ratioSampler{}
	s.Set(allow, window)
	return s
}

// Set reconfigures the ratio and restarts the current window.
func (s *ratioSampler) Set(allow, window int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if allow <= 0 || window <= 0 {
		s.allow, s.window, s.seen = 0, 0, 0
		return
	}
	if allow > window {
		allow = window
	}
	s.allow = allow
	s.window = window
	s.seen = 0
}

// Allow reports whether the next event falls inside the sampled slice of the window.
func (s *ratioSampler) Allow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.window <= 0 {
		return true
	}
	s.seen++
	if s.seen > s.window {
		s.seen = 1
	}
	return s.seen <= s.allow
}

// parseRatioSpec understands "a/b" and bare "n" (meaning 1/n). Anything else
// disables sampling.
func parseRatioSpec(spec string) (int, int) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return 0, 0
	}
	if num, den, found := strings.Cut(spec, "/"); found {
		a, errA := strconv.Atoi(strings.TrimSpace(num))
		b, errB := strconv.Atoi(strings.TrimSpace(den))
		if errA == nil && errB == nil {
			return a, b
		}
		return 0, 0
	}
	if n, err := strconv.Atoi(spec); err == nil && n > 0 {
		return 1, n
	}
	return 0, 0
}
