package server

import "time"

// task wraps a restartable ticker so the lobby lifecycle is enforced
// structurally: a stopped task exposes a nil channel and simply never fires
// in the owning select loop.
type task struct {
	ticker *time.Ticker
	period time.Duration
}

func (t *task) start(period time.Duration) {
	if t.ticker != nil {
		t.ticker.Stop()
	}
	t.ticker = time.NewTicker(period)
	t.period = period
}

// restart retunes the period, keeping the task running. Starting a stopped
// task via restart is allowed.
func (t *task) restart(period time.Duration) {
	if period == t.period && t.ticker != nil {
		return
	}
	t.start(period)
}

func (t *task) stop() {
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
	t.period = 0
}

func (t *task) running() bool {
	return t.ticker != nil
}

// C returns the tick channel, nil while stopped.
func (t *task) C() <-chan time.Time {
	if t.ticker == nil {
		return nil
	}
	return t.ticker.C
}
