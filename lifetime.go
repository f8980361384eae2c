package cachecall

import (
	"fmt"
	"math"
	"strconv"
	"time"
)

// LifetimeSource is anything that can report a lifetime in whole seconds.
// Values are read once, at construction or at the start of a call; the
// Invoker never keeps a reference to the source.
type LifetimeSource interface {
	Seconds() int
}

// Lifetime is the number of seconds a stored value stays valid.
// Zero or negative means "do not cache".
type Lifetime struct {
	seconds int
}

var _ LifetimeSource = Lifetime{}

// Seconds returns a Lifetime of n seconds.
func Seconds(n int) Lifetime { return Lifetime{seconds: n} }

// NewLifetime snapshots raw into a Lifetime. Accepted inputs are Go integer
// kinds, time.Duration (truncated to whole seconds), Lifetime, *Lifetime and
// any LifetimeSource. Anything else yields ErrInvalidArgument.
func NewLifetime(raw any) (Lifetime, error) {
	if raw == nil {
		return Lifetime{}, fmt.Errorf("%w: lifetime is nil", ErrInvalidArgument)
	}
	return ResolveLifetime(raw, Lifetime{})
}

// MustLifetime is like NewLifetime but panics on error.
func MustLifetime(raw any) Lifetime {
	l, err := NewLifetime(raw)
	if err != nil {
		panic(err)
	}
	return l
}

// ResolveLifetime converts raw into a Lifetime, returning def when raw is nil.
func ResolveLifetime(raw any, def Lifetime) (Lifetime, error) {
	switch v := raw.(type) {
	case nil:
		return def, nil
	case Lifetime:
		return v, nil
	case *Lifetime:
		if v == nil {
			return def, nil
		}
		return *v, nil
	case time.Duration:
		return Lifetime{seconds: int(v / time.Second)}, nil
	case int:
		return Lifetime{seconds: v}, nil
	case int8:
		return Lifetime{seconds: int(v)}, nil
	case int16:
		return Lifetime{seconds: int(v)}, nil
	case int32:
		return Lifetime{seconds: int(v)}, nil
	case int64:
		return Lifetime{seconds: int(v)}, nil
	case uint:
		return fromUnsigned(uint64(v)), nil
	case uint8:
		return fromUnsigned(uint64(v)), nil
	case uint16:
		return fromUnsigned(uint64(v)), nil
	case uint32:
		return fromUnsigned(uint64(v)), nil
	case uint64:
		return fromUnsigned(v), nil
	case LifetimeSource:
		return Lifetime{seconds: v.Seconds()}, nil
	default:
		return Lifetime{}, fmt.Errorf("%w: lifetime of type %T", ErrInvalidArgument, raw)
	}
}

func fromUnsigned(u uint64) Lifetime {
	if u > math.MaxInt {
		return Lifetime{seconds: math.MaxInt}
	}
	return Lifetime{seconds: int(u)}
}

// Seconds returns the lifetime in whole seconds.
func (l Lifetime) Seconds() int { return l.seconds }

// Duration returns the lifetime as a time.Duration. Non-positive lifetimes map to 0.
func (l Lifetime) Duration() time.Duration {
	if l.seconds <= 0 {
		return 0
	}
	return time.Duration(l.seconds) * time.Second
}

// Enabled reports whether values should be cached under this lifetime.
func (l Lifetime) Enabled() bool { return l.seconds > 0 }

// Compare returns -1, 0 or +1 depending on whether l is shorter than, equal
// to, or longer than o.
func (l Lifetime) Compare(o Lifetime) int {
	switch {
	case l.seconds < o.seconds:
		return -1
	case l.seconds > o.seconds:
		return 1
	default:
		return 0
	}
}

func (l Lifetime) String() string { return strconv.Itoa(l.seconds) + "s" }
