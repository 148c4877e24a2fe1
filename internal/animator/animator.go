// Package animator turns a jump on the track into one-tile hops. It holds no
// timers; the caller schedules each Step and feeds the job id back so that
// hops belonging to a superseded job are recognised and dropped.
package animator

import "github.com/DoyleJ11/monopoly-client/internal/board"

// StepCount is the forward distance from current to target. Equal tiles mean
// a full lap.
func StepCount(current, target int) int {
	d := board.Normalize(target - current)
	if d == 0 {
		return board.Size
	}
	return d
}

type Job struct {
	ID       uint64
	PlayerID string
	From     int
	Target   int
	Steps    int
	Done     int
	Cur      int
}

type StepResult struct {
	PlayerID string
	Index    int
	Arrived  bool
	Stale    bool
}

// Animator tracks at most one job per player.
type Animator struct {
	nextID uint64
	jobs   map[string]*Job
}

func New() *Animator {
	return &Animator{jobs: map[string]*Job{}}
}

// Start replaces any running job for pid.
func (a *Animator) Start(pid string, from, target int) Job {
	a.nextID++
	from = board.Normalize(from)
	target = board.Normalize(target)
	j := &Job{
		ID:       a.nextID,
		PlayerID: pid,
		From:     from,
		Target:   target,
		Steps:    StepCount(from, target),
		Cur:      from,
	}
	a.jobs[pid] = j
	return *j
}

// Step advances job id of pid by one tile.
func (a *Animator) Step(pid string, id uint64) StepResult {
	j, ok := a.jobs[pid]
	if !ok || j.ID != id {
		return StepResult{PlayerID: pid, Stale: true}
	}
	j.Cur = (j.Cur + 1) % board.Size
	j.Done++
	res := StepResult{PlayerID: pid, Index: j.Cur}
	if j.Done >= j.Steps {
		delete(a.jobs, pid)
		res.Arrived = true
	}
	return res
}

// Cancel drops the running job for pid, if any.
func (a *Animator) Cancel(pid string) bool {
	if _, ok := a.jobs[pid]; !ok {
		return false
	}
	delete(a.jobs, pid)
	return true
}

func (a *Animator) Active(pid string) (Job, bool) {
	j, ok := a.jobs[pid]
	if !ok {
		return Job{}, false
	}
	return *j, true
}

func (a *Animator) Len() int { return len(a.jobs) }

// Reset cancels everything.
func (a *Animator) Reset() {
	clear(a.jobs)
}
