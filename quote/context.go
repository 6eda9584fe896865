// Package quote holds market quotes and the evaluation-date context they
// share with the curves built on top of them.
//
// Observables and observers are plain integer ids in a registry owned by the
// Context, so a curve can subscribe to a quote without either holding a
// pointer to the other. The registry is not safe for concurrent use.
package quote

import (
	"time"

	"go.uber.org/zap"

	"github.com/meenmo/ratecurve/utils"
)

// ObservableID names something that can notify observers.
type ObservableID int

// ObserverID names a registered callback.
type ObserverID int

// EvaluationDateID is the observable fired when the evaluation date moves.
const EvaluationDateID ObservableID = 0

// Observable is anything that publishes change notifications through a Context.
type Observable interface {
	ObservableID() ObservableID
}

// Context carries the evaluation date and the observer registry.
type Context struct {
	evaluationDate time.Time
	logger         *zap.Logger

	nextObservable ObservableID
	nextObserver   ObserverID
	callbacks      map[ObserverID]func()
	subscribers    map[ObservableID][]ObserverID
	subscriptions  map[ObserverID]map[ObservableID]struct{}
}

// Option configures a Context.
type Option func(c *Context)

// WithLogger attaches a logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Context) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewContext starts a registry with the given evaluation date.
func NewContext(evaluationDate time.Time, opts ...Option) *Context {
	c := &Context{
		evaluationDate: utils.Normalize(evaluationDate),
		logger:         zap.NewNop(),
		nextObservable: EvaluationDateID + 1,
		callbacks:      make(map[ObserverID]func()),
		subscribers:    make(map[ObservableID][]ObserverID),
		subscriptions:  make(map[ObserverID]map[ObservableID]struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.Named("quote")
	return c
}

// Logger returns the context logger for components created against it.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// EvaluationDate returns today's date for every date-sensitive computation.
func (c *Context) EvaluationDate() time.Time {
	return c.evaluationDate
}

// SetEvaluationDate moves the evaluation date and notifies its observers.
func (c *Context) SetEvaluationDate(d time.Time) {
	d = utils.Normalize(d)
	if d.Equal(c.evaluationDate) {
		return
	}
	c.logger.Debug("evaluation date changed",
		zap.String("from", utils.FormatDate(c.evaluationDate)),
		zap.String("to", utils.FormatDate(d)))
	c.evaluationDate = d
	c.Notify(EvaluationDateID)
}

// NewObservable allocates a fresh observable id.
func (c *Context) NewObservable() ObservableID {
	id := c.nextObservable
	c.nextObservable++
	return id
}

// Register adds a callback and returns its observer id.
func (c *Context) Register(fn func()) ObserverID {
	c.nextObserver++
	id := c.nextObserver
	c.callbacks[id] = fn
	c.subscriptions[id] = make(map[ObservableID]struct{})
	return id
}

// Observe subscribes obs to notifications from id. Repeated calls are no-ops.
func (c *Context) Observe(obs ObserverID, id ObservableID) {
	subs, ok := c.subscriptions[obs]
	if !ok {
		return
	}
	if _, dup := subs[id]; dup {
		return
	}
	subs[id] = struct{}{}
	c.subscribers[id] = append(c.subscribers[id], obs)
}

// ObserveEvaluationDate subscribes obs to evaluation-date changes.
func (c *Context) ObserveEvaluationDate(obs ObserverID) {
	c.Observe(obs, EvaluationDateID)
}

// Unregister drops obs and all its subscriptions.
func (c *Context) Unregister(obs ObserverID) {
	for id := range c.subscriptions[obs] {
		list := c.subscribers[id]
		for i, o := range list {
			if o == obs {
				c.subscribers[id] = append(list[:i:i], list[i+1:]...)
				break
			}
		}
		if len(c.subscribers[id]) == 0 {
			delete(c.subscribers, id)
		}
	}
	delete(c.subscriptions, obs)
	delete(c.callbacks, obs)
}

// Observers returns how many observers listen to id.
func (c *Context) Observers(id ObservableID) int {
	return len(c.subscribers[id])
}

// Notify runs the callbacks of every observer of id, in subscription order.
// Observers unregistered by an earlier callback are skipped.
func (c *Context) Notify(id ObservableID) {
	list := append([]ObserverID(nil), c.subscribers[id]...)
	for _, obs := range list {
		if fn, ok := c.callbacks[obs]; ok {
			fn()
		}
	}
}
