package cachecall

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestResolveLifetime(t *testing.T) {
	def := Seconds(60)
	lt := Seconds(7)

	cases := []struct {
		name string
		raw  any
		want int
	}{
		{"nil uses default", nil, 60},
		{"int", 30, 30},
		{"zero", 0, 0},
		{"negative", -1, -1},
		{"int64", int64(12), 12},
		{"uint8", uint8(3), 3},
		{"uint64 clamps", uint64(math.MaxUint64), math.MaxInt},
		{"duration truncates", 1500 * time.Millisecond, 1},
		{"lifetime", lt, 7},
		{"lifetime pointer", &lt, 7},
		{"nil lifetime pointer", (*Lifetime)(nil), 60},
		{"source", &mutableLifetime{n: 9}, 9},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveLifetime(tc.raw, def)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Seconds() != tc.want {
				t.Fatalf("got %d want %d", got.Seconds(), tc.want)
			}
		})
	}

	for _, bad := range []any{"60", 1.5, struct{}{}} {
		if _, err := ResolveLifetime(bad, def); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("%T: expected ErrInvalidArgument, got %v", bad, err)
		}
	}
}

func TestNewLifetimeRejectsNil(t *testing.T) {
	if _, err := NewLifetime(nil); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
}

func TestMustLifetimePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	MustLifetime("forever")
}

func TestLifetimeMethods(t *testing.T) {
	if Seconds(0).Enabled() || Seconds(-3).Enabled() || !Seconds(1).Enabled() {
		t.Fatalf("Enabled is only true for positive lifetimes")
	}
	if d := Seconds(-3).Duration(); d != 0 {
		t.Fatalf("negative lifetime duration = %v", d)
	}
	if d := MustLifetime(90).Duration(); d != 90*time.Second {
		t.Fatalf("duration = %v", d)
	}
	if Seconds(1).Compare(Seconds(2)) != -1 || Seconds(2).Compare(Seconds(1)) != 1 || Seconds(2).Compare(Seconds(2)) != 0 {
		t.Fatalf("Compare is not ordered by seconds")
	}
	if s := Seconds(42).String(); s != "42s" {
		t.Fatalf("String = %q", s)
	}
}
