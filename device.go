package rtao

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/gogpu/rtao/internal/parallel"
)

// Device is a software compute accelerator.
//
// Submitted command lists execute one after another in submission order on
// a single queue goroutine, which gives every command the output of all
// commands submitted before it. Within a dispatch the 8x8 groups run in
// parallel on a worker pool. Submit never waits for execution.
type Device struct {
	pool   *parallel.WorkerPool
	logger atomic.Pointer[slog.Logger]

	mu      sync.Mutex
	pending []*Submission
	closed  bool
	nextID  uint64

	wake    chan struct{}
	stopped chan struct{}

	completed atomic.Uint64
}

// NewDevice starts a device.
//
// Example:
//
//	dev := rtao.NewDevice(rtao.WithWorkers(4))
//	defer dev.Close()
func NewDevice(opts ...DeviceOption) *Device {
	var o deviceOptions
	for _, opt := range opts {
		opt(&o)
	}
	d := &Device{
		pool:    parallel.NewWorkerPool(o.workers),
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	registerDevice(d)
	go d.run()
	d.log().Info("rtao: device started", "workers", d.pool.Workers())
	return d
}

// SetLogger sets the device logger. SetLogger on the package propagates to
// every open device.
func (d *Device) SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	d.logger.Store(l)
}

func (d *Device) log() *slog.Logger {
	if l := d.logger.Load(); l != nil {
		return l
	}
	return Logger()
}

// Workers returns the number of workers executing dispatch groups.
func (d *Device) Workers() int { return d.pool.Workers() }

func (d *Device) signal() {
	select {
	case d.wake <- struct{}{}:
	default:
	}
}

func (d *Device) run() {
	defer close(d.stopped)
	for {
		d.mu.Lock()
		for len(d.pending) == 0 && !d.closed {
			d.mu.Unlock()
			<-d.wake
			d.mu.Lock()
		}
		if len(d.pending) == 0 {
			d.mu.Unlock()
			return
		}
		s := d.pending[0]
		d.pending[0] = nil
		d.pending = d.pending[1:]
		d.mu.Unlock()

		s.list.execute(d.pool, d.log())
		s.list = nil
		d.completed.Add(1)
		close(s.done)
	}
}

// Submit queues cl for execution after every previously submitted list.
// The list must not be used afterwards. If the device is closed the list is
// left untouched and ErrDeviceClosed is returned; the caller should
// Discard it.
func (d *Device) Submit(cl *CommandList) (*Submission, error) {
	if cl == nil {
		return nil, errors.New("rtao: nil command list")
	}
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return nil, ErrDeviceClosed
	}
	if cl.submitted {
		d.mu.Unlock()
		return nil, ErrSubmitted
	}
	cl.submitted = true
	d.nextID++
	s := &Submission{
		id:    d.nextID,
		label: cl.label,
		list:  cl,
		done:  make(chan struct{}),
	}
	d.pending = append(d.pending, s)
	d.mu.Unlock()

	d.signal()
	return s, nil
}

// Flush waits until everything submitted so far has executed.
func (d *Device) Flush(ctx context.Context) error {
	s, err := d.Submit(NewCommandList("flush"))
	if err != nil {
		return err
	}
	return s.Wait(ctx)
}

// Close stops accepting work, waits for queued lists to finish and stops
// the workers. Close is idempotent.
func (d *Device) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		<-d.stopped
		return
	}
	d.closed = true
	queued := len(d.pending)
	d.mu.Unlock()

	d.signal()
	<-d.stopped
	d.pool.Close()
	unregisterDevice(d)
	d.log().Info("rtao: device closed", "drained", queued, "completed", d.completed.Load())
}

// DeviceStats reports queue counters.
type DeviceStats struct {
	// Submitted counts accepted command lists.
	Submitted uint64
	// Completed counts executed command lists.
	Completed uint64
	// Pending is the number of lists waiting to start.
	Pending int
}

// Stats returns the current queue counters.
func (d *Device) Stats() DeviceStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return DeviceStats{
		Submitted: d.nextID,
		Completed: d.completed.Load(),
		Pending:   len(d.pending),
	}
}

// Submission tracks a submitted command list.
type Submission struct {
	id    uint64
	label string
	list  *CommandList
	done  chan struct{}
}

// ID returns the submission sequence number, starting at 1.
func (s *Submission) ID() uint64 { return s.id }

// Label returns the label of the submitted list.
func (s *Submission) Label() string { return s.label }

// Done returns a channel closed once the list has executed.
func (s *Submission) Done() <-chan struct{} { return s.done }

// Wait blocks until the list has executed or ctx is done. Giving up on a
// wait does not cancel execution.
func (s *Submission) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
