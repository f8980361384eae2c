// Package promhooks exports Invoker events as Prometheus metrics.
//
//	reg := prometheus.NewRegistry()
//	h, err := promhooks.New(reg, promhooks.Options{Namespace: "app", Name: "users"})
//	iv, _ := cachecall.New[User](cachecall.Options[User]{..., Hooks: h})
//
// Keys are never used as label values.
package promhooks

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/cachecall"
)

type Options struct {
	Namespace string // metric namespace, e.g. "app"
	Subsystem string // "" => "cachecall"
	Name      string // value of the "cache" label; "" => "default"
	// TTLBuckets for the stored ttl histogram, in seconds. nil => 1s..1d exponential.
	TTLBuckets []float64
}

type Hooks struct {
	events  *prometheus.CounterVec
	evicted prometheus.Counter
	ttl     prometheus.Observer
}

var _ cachecall.Hooks = (*Hooks)(nil)

// Event label values.
const (
	EventHit      = "hit"
	EventMiss     = "miss"
	EventStored   = "stored"
	EventBypassed = "bypassed"
)

// New registers the collectors with reg. Registering a second Hooks with the
// same options on one registry returns the existing collectors.
func New(reg prometheus.Registerer, opts Options) (*Hooks, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if opts.Subsystem == "" {
		opts.Subsystem = "cachecall"
	}
	if opts.Name == "" {
		opts.Name = "default"
	}
	if opts.TTLBuckets == nil {
		opts.TTLBuckets = prometheus.ExponentialBuckets(1, 4, 9) // 1s .. ~18h
	}
	constLabels := prometheus.Labels{"cache": opts.Name}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   opts.Namespace,
		Subsystem:   opts.Subsystem,
		Name:        "events_total",
		Help:        "Invoker decisions by event.",
		ConstLabels: constLabels,
	}, []string{"event"})
	evicted := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   opts.Namespace,
		Subsystem:   opts.Subsystem,
		Name:        "bypass_evictions_total",
		Help:        "Entries deleted because caching was disabled for a call.",
		ConstLabels: constLabels,
	})
	ttl := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   opts.Namespace,
		Subsystem:   opts.Subsystem,
		Name:        "stored_ttl_seconds",
		Help:        "Lifetime of stored values.",
		ConstLabels: constLabels,
		Buckets:     opts.TTLBuckets,
	})

	var err error
	if events, err = register(reg, events); err != nil {
		return nil, err
	}
	if evicted, err = register(reg, evicted); err != nil {
		return nil, err
	}
	if ttl, err = register(reg, ttl); err != nil {
		return nil, err
	}

	h := &Hooks{events: events, evicted: evicted, ttl: ttl}
	// pre-create series so dashboards see zeros
	for _, e := range []string{EventHit, EventMiss, EventStored, EventBypassed} {
		h.events.WithLabelValues(e)
	}
	return h, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (h *Hooks) Hit(string)  { h.events.WithLabelValues(EventHit).Inc() }
func (h *Hooks) Miss(string) { h.events.WithLabelValues(EventMiss).Inc() }

func (h *Hooks) Stored(_ string, ttl time.Duration) {
	h.events.WithLabelValues(EventStored).Inc()
	h.ttl.Observe(ttl.Seconds())
}

func (h *Hooks) Bypassed(_ string, evicted bool) {
	h.events.WithLabelValues(EventBypassed).Inc()
	if evicted {
		h.evicted.Inc()
	}
}
