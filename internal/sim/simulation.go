// Built-in dining-philosophers simulation emitting the standard log format.
package sim

import (
	"context"
	"fmt"
	"sync"
	"time"

	"philoscope/internal/config"
	"philoscope/internal/event"
	"philoscope/internal/logging"
)

// Simulation runs an actual concurrent dining-philosophers round: one
// goroutine per philosopher synchronizing over shared fork mutexes, a monitor
// enforcing the starvation deadline, and a serialized log of every action.
// Its output is exactly what the verifier consumes, so a clean simulation
// must produce a clean report.
type Simulation struct {
	params config.Params
	writer LogWriter
	faults FaultPlan

	start time.Time
	forks []sync.Mutex

	logMu    sync.Mutex
	stopped  bool
	writeErr error

	mu       sync.Mutex
	lastMeal []time.Time
	meals    []int

	done chan struct{}
	once sync.Once
}

// NewSimulation creates a simulation for the given parameters. faults may be
// the zero plan for a well-behaved run.
func NewSimulation(params config.Params, w LogWriter, faults FaultPlan) *Simulation {
	return &Simulation{
		params:   params,
		writer:   w,
		faults:   faults,
		forks:    make([]sync.Mutex, params.Philosophers),
		lastMeal: make([]time.Time, params.Philosophers+1),
		meals:    make([]int, params.Philosophers+1),
		done:     make(chan struct{}),
	}
}

// Run executes the simulation until every philosopher reached the meal cap,
// one starved, or ctx was canceled.
func (s *Simulation) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)
	n := s.params.Philosophers
	s.start = time.Now()
	for id := 1; id <= n; id++ {
		s.lastMeal[id] = s.start
	}

	log.Info("starting simulation",
		"philosophers", n,
		"time_to_die_ms", s.params.TimeToDieMS,
		"time_to_eat_ms", s.params.TimeToEatMS,
		"time_to_sleep_ms", s.params.TimeToSleepMS)

	var wg sync.WaitGroup
	for id := 1; id <= n; id++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.philosopher(id)
		}(id)
	}

	allDone := make(chan struct{})
	go func() {
		wg.Wait()
		close(allDone)
	}()

	monitor := time.NewTicker(time.Millisecond)
	defer monitor.Stop()

	for {
		select {
		case <-monitor.C:
			if id := s.findStarved(); id != 0 {
				if !s.faults.suppressDeath(id) {
					s.log(id, event.ActionDied)
				}
				s.stop()
				log.Info("philosopher starved", "id", id)
				wg.Wait()
				return s.writeErr
			}
		case <-allDone:
			s.stop()
			log.Info("simulation finished", "reason", "meal cap reached")
			return s.writeErr
		case <-ctx.Done():
			s.stop()
			wg.Wait()
			return ctx.Err()
		}
	}
}

// philosopher runs one seat's cycle: take both forks, eat, sleep, think.
// Forks are locked lowest index first, which rules out the circular-wait
// deadlock without changing the observable protocol.
func (s *Simulation) philosopher(id int) {
	n := s.params.Philosophers
	first, second := (id-1)%n, id%n
	if second < first {
		first, second = second, first
	}

	// Stagger even seats so neighbors don't hammer the same fork at t0.
	if id%2 == 0 {
		if !s.pause(time.Duration(s.params.TimeToEatMS) * time.Millisecond / 2) {
			return
		}
	}

	meals := 0
	for {
		if s.isStopped() {
			return
		}
		if s.params.MaxMeals != nil && meals >= *s.params.MaxMeals {
			return
		}

		s.forks[first].Lock()
		if first == second {
			// Single philosopher: one fork exists, the second never comes.
			// Announce the one acquisition and hold until the monitor
			// declares starvation.
			s.log(id, event.ActionForked)
			<-s.done
			s.forks[first].Unlock()
			return
		}
		s.forks[second].Lock()

		// Both fork lines are announced only once both forks are held, and
		// the sleeping line goes out before the forks are unlocked. The
		// verifier reconstructs fork ownership from the log alone, so
		// holder changes must be announced while the exclusion is real.
		s.log(id, event.ActionForked)
		s.log(id, event.ActionForked)
		if s.faults.extraFork(id) && meals == 0 {
			s.log(id, event.ActionForked)
		}

		s.log(id, event.ActionEating)
		s.recordMeal(id)
		meals++
		if !s.pause(time.Duration(s.params.TimeToEatMS) * time.Millisecond) {
			s.forks[first].Unlock()
			s.forks[second].Unlock()
			return
		}

		s.log(id, event.ActionSleeping)
		s.forks[first].Unlock()
		s.forks[second].Unlock()

		if !s.pause(time.Duration(s.params.TimeToSleepMS) * time.Millisecond) {
			return
		}
		s.log(id, event.ActionThinking)
	}
}

// log serializes one line. The timestamp is taken under the same lock that
// orders the writes, so per-philosopher timestamps can never regress.
func (s *Simulation) log(id int, a event.Action) {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	if s.stopped {
		return
	}
	e := event.Event{
		Timestamp:     time.Since(s.start).Milliseconds(),
		PhilosopherID: id,
		Action:        a,
	}
	if err := s.writer.Write(e); err != nil && s.writeErr == nil {
		s.writeErr = fmt.Errorf("write log line: %w", err)
	}
	if a == event.ActionDied {
		s.stopped = true
	}
}

func (s *Simulation) recordMeal(id int) {
	s.mu.Lock()
	s.lastMeal[id] = time.Now()
	s.meals[id]++
	s.mu.Unlock()
}

// findStarved returns the id of a philosopher past its deadline, or 0.
// Philosophers that reached the meal cap stopped eating legitimately and are
// no longer monitored.
func (s *Simulation) findStarved() int {
	limit := time.Duration(s.params.TimeToDieMS) * time.Millisecond
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := 1; id <= s.params.Philosophers; id++ {
		if s.params.MaxMeals != nil && s.meals[id] >= *s.params.MaxMeals {
			continue
		}
		if time.Since(s.lastMeal[id]) > limit {
			return id
		}
	}
	return 0
}

func (s *Simulation) stop() {
	s.once.Do(func() {
		s.logMu.Lock()
		s.stopped = true
		s.logMu.Unlock()
		close(s.done)
	})
}

func (s *Simulation) isStopped() bool {
	s.logMu.Lock()
	defer s.logMu.Unlock()
	return s.stopped
}

// pause sleeps for d unless the simulation stops first; it reports whether
// the full duration elapsed.
func (s *Simulation) pause(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.done:
		return false
	}
}
