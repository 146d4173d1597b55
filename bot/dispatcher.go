package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"sync/atomic"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
)

// UpdateSource delivers inbound updates. *telegram.Client satisfies it.
type UpdateSource interface {
	Updates(ctx context.Context) tgbotapi.UpdatesChannel
	StopUpdates()
}

var (
	_ component.Component   = (*Dispatcher)(nil)
	_ component.Describable = (*Dispatcher)(nil)
)

// Dispatcher reads updates and handles each in its own goroutine. Stop
// stops receiving and waits for in-flight handlers until the stop context
// expires, then cancels them.
type Dispatcher struct {
	source  UpdateSource
	handler *Handler
	log     *logger.Logger

	mu      sync.Mutex
	running bool
	quit    chan struct{}
	done    chan struct{}
	cancel  context.CancelFunc

	wg       sync.WaitGroup
	inFlight atomic.Int64
	handled  atomic.Int64
}

// NewDispatcher creates a Dispatcher.
func NewDispatcher(source UpdateSource, handler *Handler, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	return &Dispatcher{
		source:  source,
		handler: handler,
		log:     log.WithComponent("dispatcher"),
	}
}

// Name implements component.Component.
func (d *Dispatcher) Name() string { return "dispatcher" }

// Start begins long polling. Handlers run on a context that outlives ctx
// so shutdown can drain them.
func (d *Dispatcher) Start(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.running {
		return fmt.Errorf("dispatcher already running")
	}

	handlerCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel
	d.quit = make(chan struct{})
	d.done = make(chan struct{})
	d.running = true

	updates := d.source.Updates(handlerCtx)
	go d.loop(handlerCtx, updates, d.quit, d.done)

	d.log.Info("Receiving updates")
	return nil
}

func (d *Dispatcher) loop(ctx context.Context, updates tgbotapi.UpdatesChannel, quit, done chan struct{}) {
	defer close(done)
	for {
		select {
		case <-quit:
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			d.Dispatch(ctx, u)
		}
	}
}

// Dispatch hands u to a new goroutine when it carries a voice message or a
// command. Other updates are dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, u tgbotapi.Update) {
	if msg, ok := VoiceFromUpdate(u); ok {
		d.spawn(u.UpdateID, func() { d.handler.HandleVoice(ctx, msg) })
		return
	}
	if cmd, ok := CommandFromUpdate(u); ok {
		d.spawn(u.UpdateID, func() { d.handler.HandleCommand(ctx, cmd) })
	}
}

func (d *Dispatcher) spawn(updateID int, fn func()) {
	d.wg.Add(1)
	d.inFlight.Add(1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				d.log.Error("Handler panic recovered", logger.Fields(
					"update_id", updateID,
					logger.FieldError, fmt.Sprintf("%v", r),
					"stack", string(debug.Stack()),
				))
			}
			d.inFlight.Add(-1)
			d.handled.Add(1)
			d.wg.Done()
		}()
		fn()
	}()
}

// Wait blocks until every dispatched handler has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Stop implements component.Component.
func (d *Dispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return nil
	}
	d.running = false
	quit, done, cancel := d.quit, d.done, d.cancel
	d.mu.Unlock()

	d.source.StopUpdates()
	close(quit)
	<-done

	drained := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		cancel()
		d.log.Info("Dispatcher stopped", logger.Fields("handled", d.handled.Load()))
		return nil
	case <-ctx.Done():
		cancel()
		<-drained
		return fmt.Errorf("dispatcher: in-flight handlers canceled: %w", ctx.Err())
	}
}

// Health implements component.Component.
func (d *Dispatcher) Health(_ context.Context) component.Health {
	d.mu.Lock()
	running := d.running
	d.mu.Unlock()

	h := component.Health{Name: d.Name(), Status: component.StatusHealthy}
	if !running {
		h.Status = component.StatusUnhealthy
		h.Message = "not receiving updates"
		return h
	}
	h.Message = fmt.Sprintf("in_flight=%d handled=%d", d.inFlight.Load(), d.handled.Load())
	return h
}

// Describe implements component.Describable.
func (d *Dispatcher) Describe() component.Description {
	return component.Description{Name: "Update dispatcher", Type: "transport", Details: "long polling, one goroutine per update"}
}
