package server

import (
	"sync"

	"github.com/John-Robertt/kbindex/internal/domain"
)

type state struct {
	mu   sync.Mutex
	last *domain.BuildReport
}

func (s *state) set(rr domain.BuildReport) {
	s.mu.Lock()
	s.last = &rr
	s.mu.Unlock()
}

func (s *state) get() (domain.BuildReport, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil {
		return domain.BuildReport{}, false
	}
	return *s.last, true
}
