package shortcut

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tableflip.dev/barswitch/pkg/logging"
)

// DefaultDelay is the debounce window.
const DefaultDelay = 100 * time.Millisecond

type pending struct {
	cmd   Command
	timer *time.Timer
}

// Dispatcher debounces commands. It holds at most one pending command; a
// new one replaces it and restarts the window. Only the last command of a
// burst reaches fire.
type Dispatcher struct {
	mu      sync.Mutex
	delay   time.Duration
	fire    func(Command)
	pending *pending
	wg      sync.WaitGroup
	log     *logrus.Entry
}

// NewDispatcher returns a Dispatcher calling fire on its own goroutine once
// delay passes without a newer command.
func NewDispatcher(delay time.Duration, fire func(Command)) *Dispatcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Dispatcher{
		delay: delay,
		fire:  fire,
		log:   logging.NewLogger("shortcut"),
	}
}

// Dispatch schedules cmd, superseding any pending command.
func (d *Dispatcher) Dispatch(cmd Command) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil {
		d.log.WithFields(logrus.Fields{"dropped": d.pending.cmd, "by": cmd}).Debug("superseded")
		if d.pending.timer.Stop() {
			d.wg.Done()
		}
	}
	p := &pending{cmd: cmd}
	d.wg.Add(1)
	p.timer = time.AfterFunc(d.delay, func() { d.run(p) })
	d.pending = p
}

func (d *Dispatcher) run(p *pending) {
	defer d.wg.Done()
	d.mu.Lock()
	current := d.pending == p
	if current {
		d.pending = nil
	}
	d.mu.Unlock()
	if current {
		d.log.WithField("command", p.cmd).Debug("firing")
		d.fire(p.cmd)
	}
}

// Pending returns the command waiting to fire.
func (d *Dispatcher) Pending() (Command, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending == nil {
		return Command{}, false
	}
	return d.pending.cmd, true
}

// Wait blocks until no command is pending or firing.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Stop drops the pending command.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pending != nil && d.pending.timer.Stop() {
		d.wg.Done()
	}
	d.pending = nil
}
