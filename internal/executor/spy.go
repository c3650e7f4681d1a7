package executor

import (
	"context"
	"sync"
)

// Call records a single invocation made through a Spy.
type Call struct {
	Bin  string
	Args []string
	Env  []string
}

// Spy is a test double that records every Run call and answers with a
// scripted response. Safe for concurrent use.
type Spy struct {
	mu    sync.Mutex
	calls []Call

	// Handler, when set, produces the response for each call. Otherwise
	// Stdout/Err are returned as-is.
	Handler func(call Call) (stdout, stderr []byte, err error)
	Stdout  []byte
	Err     error
}

func (s *Spy) Run(ctx context.Context, bin string, args []string, env []string) ([]byte, []byte, error) {
	s.mu.Lock()
	call := Call{Bin: bin, Args: append([]string(nil), args...), Env: append([]string(nil), env...)}
	s.calls = append(s.calls, call)
	s.mu.Unlock()

	if s.Handler != nil {
		return s.Handler(call)
	}
	return s.Stdout, nil, s.Err
}

// Calls returns a copy of the recorded invocations.
func (s *Spy) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}
