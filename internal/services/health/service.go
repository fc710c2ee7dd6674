package health

import (
	"context"
	"sort"
	"time"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Service reports process health plus the reachability of each registered
// dependency.
type Service struct {
	Timeout time.Duration
	checks  map[string]Pinger
}

// NewService constructs a health service. The optional db is registered as
// the "database" check.
func NewService(db ...Pinger) *Service {
	s := &Service{Timeout: 2 * time.Second, checks: map[string]Pinger{}}
	if len(db) > 0 && db[0] != nil {
		s.Add("database", db[0])
	}
	return s
}

// Add registers a named dependency check.
func (s *Service) Add(name string, p Pinger) *Service {
	if s.checks == nil {
		s.checks = map[string]Pinger{}
	}
	s.checks[name] = p
	return s
}

// Status returns {"ok": true} when every dependency answers; each
// dependency is reported as "ok" or "unreachable" under its name.
func (s *Service) Status(ctx context.Context) map[string]any {
	out := map[string]any{"ok": true}
	if s == nil || len(s.checks) == 0 {
		return out
	}
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	names := make([]string, 0, len(s.checks))
	for name := range s.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		pingCtx, cancel := context.WithTimeout(ctx, timeout)
		err := s.checks[name].PingContext(pingCtx)
		cancel()
		if err != nil {
			out["ok"] = false
			out[name] = "unreachable"
			continue
		}
		out[name] = "ok"
	}
	return out
}
