// Package killswitch holds the global trading halt state. Any subsystem may
// trip it; order submission checks it before anything else.
package killswitch

import (
	"sync"
	"time"
)

// Halt reasons. Each maps to an independent flag so overlapping incidents
// do not mask one another.
const (
	ReasonManual     = "manual"
	ReasonDrawdown   = "drawdown"
	ReasonTechnical  = "technical"
	ReasonRegulatory = "regulatory"
)

// Action is one recorded state transition.
type Action struct {
	Timestamp time.Time
	Action    string // "activate" or "deactivate"
	Reason    string
	Detail    string
}

// Status is a point-in-time view of the switch.
type Status struct {
	Active     bool
	Manual     bool
	Drawdown   bool
	Technical  bool
	Regulatory bool
}

// Switch is the process-wide trading halt. Construct with New.
type Switch struct {
	mu      sync.RWMutex
	flags   map[string]bool
	history []Action
	now     func() time.Time
}

// New creates an inactive switch.
func New() *Switch {
	return &Switch{
		flags: map[string]bool{
			ReasonManual:     false,
			ReasonDrawdown:   false,
			ReasonTechnical:  false,
			ReasonRegulatory: false,
		},
		now: time.Now,
	}
}

// Activate trips the flag for the given reason. Unknown reasons are recorded
// in the history but trip nothing, so a typo in an automated caller cannot
// silently halt trading under a reason nobody monitors.
func (s *Switch) Activate(reason, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, known := s.flags[reason]; known {
		s.flags[reason] = true
	}
	s.history = append(s.history, Action{
		Timestamp: s.now(),
		Action:    "activate",
		Reason:    reason,
		Detail:    detail,
	})
}

// Deactivate clears the flag for the given reason. An empty reason clears
// every flag, the full-reset used after an incident review.
func (s *Switch) Deactivate(reason, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reason == "" {
		for key := range s.flags {
			s.flags[key] = false
		}
	} else if _, known := s.flags[reason]; known {
		s.flags[reason] = false
	}
	s.history = append(s.history, Action{
		Timestamp: s.now(),
		Action:    "deactivate",
		Reason:    reason,
		Detail:    detail,
	})
}

// IsActive reports whether any flag is tripped.
func (s *Switch) IsActive() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeLocked()
}

func (s *Switch) activeLocked() bool {
	for _, tripped := range s.flags {
		if tripped {
			return true
		}
	}
	return false
}

// Status returns the current flag states.
func (s *Switch) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Status{
		Active:     s.activeLocked(),
		Manual:     s.flags[ReasonManual],
		Drawdown:   s.flags[ReasonDrawdown],
		Technical:  s.flags[ReasonTechnical],
		Regulatory: s.flags[ReasonRegulatory],
	}
}

// History returns a copy of the recorded transitions, oldest first.
func (s *Switch) History() []Action {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Action(nil), s.history...)
}
