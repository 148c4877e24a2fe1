package session

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/DoyleJ11/monopoly-client/internal/engine"
)

func (s *Session) run(effects []engine.Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case engine.Send:
			s.send(e.Msg)

		case engine.Animate:
			s.animate(e.PlayerID, e.Target)

		case engine.Halt:
			s.halt(e.PlayerID)

		case engine.Notice:
			s.note(e.Text)

		case engine.Reveal:
			s.card = &CardView{Deck: e.Deck, Label: e.Deck.Label(), Title: e.Title, Text: e.Text}
			s.note(fmt.Sprintf("%s: %s", e.Deck.Name(), e.Title))

		case engine.TurnUpdate:
			s.rollUsed = false

		case engine.RosterChanged:
			s.log.Debug("roster", zap.Int("count", e.Count), zap.Int("max", e.Max))

		case engine.Unrecognized:
			s.tel.Unknown(s.ctx, e.Type, e.Raw)
			s.note("JSON: " + string(e.Raw))
		}
	}
}

// animate replaces any running job for pid and takes the first hop at once.
func (s *Session) animate(pid string, target int) {
	s.stopTimer(pid)
	job := s.anim.Start(pid, s.state.Positions[pid], target)
	s.step(pid, job.ID)
}

func (s *Session) step(pid string, jobID uint64) {
	r := s.anim.Step(pid, jobID)
	if r.Stale {
		return
	}
	delete(s.timers, pid)
	s.state.Place(pid, r.Index)

	if r.Arrived {
		s.run(s.state.Arrive(pid, r.Index))
		return
	}
	s.timers[pid] = s.clock.AfterFunc(s.hopDelay, func() {
		_ = s.post(s.ctx, StepDue{PlayerID: pid, JobID: jobID})
	})
}

func (s *Session) halt(pid string) {
	s.stopTimer(pid)
	s.anim.Cancel(pid)
}

func (s *Session) stopTimer(pid string) {
	if t, ok := s.timers[pid]; ok {
		t.Stop()
		delete(s.timers, pid)
	}
}
