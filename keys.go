package cachecall

import (
	"crypto/md5"
	"encoding"
	"encoding/hex"
	"fmt"
	"math/big"
	"reflect"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/unkn0wn-root/cachecall/codec"
)

// KeyFunc maps a caller identifier to a backend key.
// Implementations must be pure and deterministic.
type KeyFunc func(id any) (string, error)

// canonical uses RFC 8949 core deterministic encoding: map keys are sorted
// and integers/floats take their shortest form, so equal values produce
// equal bytes across processes.
var canonical = codec.MustCBOR[any](true)

// Canonicalize returns the deterministic serialized form of id that HashKey
// digests. Strings and byte slices pass through unchanged. Every other value
// is its Go type name, a zero byte and its CBOR encoding, so values of
// different types never share a form.
//
// Identifiers must be fully visible to the encoder: structs with unexported
// fields or fields skipped by a "-" tag, and named types nested behind an
// interface (such as a struct inside []any) yield ErrInvalidArgument, as do
// values CBOR cannot represent (funcs, channels, complex numbers).
func Canonicalize(id any) ([]byte, error) {
	switch v := id.(type) {
	case nil:
		return nil, fmt.Errorf("%w: nil identifier", ErrInvalidArgument)
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	}
	if err := checkVisible(reflect.ValueOf(id), 0); err != nil {
		return nil, fmt.Errorf("%w: identifier of type %T: %v", ErrInvalidArgument, id, err)
	}
	enc, err := canonical.Encode(id)
	if err != nil {
		return nil, fmt.Errorf("%w: identifier of type %T: %v", ErrInvalidArgument, id, err)
	}
	name := typeName(reflect.TypeOf(id))
	b := make([]byte, 0, len(name)+1+len(enc))
	b = append(b, name...)
	b = append(b, 0)
	return append(b, enc...), nil
}

// typeName qualifies named types with their import path.
func typeName(t reflect.Type) string {
	if t.PkgPath() != "" && t.Name() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}

const maxIdentifierDepth = 32

var (
	cborMarshaler   = reflect.TypeOf((*cbor.Marshaler)(nil)).Elem()
	binaryMarshaler = reflect.TypeOf((*encoding.BinaryMarshaler)(nil)).Elem()
	timeType        = reflect.TypeOf(time.Time{})
	bigIntType      = reflect.TypeOf(big.Int{})
)

// opaque types are encoded whole by CBOR and are not walked.
func opaque(t reflect.Type) bool {
	if t == timeType || t == bigIntType {
		return true
	}
	for _, m := range []reflect.Type{cborMarshaler, binaryMarshaler} {
		if t.Implements(m) || reflect.PointerTo(t).Implements(m) {
			return true
		}
	}
	return false
}

// checkVisible reports struct fields the CBOR encoder would silently drop.
func checkVisible(v reflect.Value, depth int) error {
	if depth > maxIdentifierDepth {
		return fmt.Errorf("nested deeper than %d levels", maxIdentifierDepth)
	}
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return nil
		}
		return checkVisible(v.Elem(), depth+1)
	case reflect.Interface:
		if v.IsNil() {
			return nil
		}
		// CBOR drops the dynamic type, so a named type here would encode
		// the same as any other type of the same shape
		t := v.Elem().Type()
		for t.Kind() == reflect.Pointer {
			t = t.Elem()
		}
		if t.PkgPath() != "" && !opaque(t) {
			return fmt.Errorf("named type %s behind an interface", t)
		}
		return checkVisible(v.Elem(), depth+1)
	case reflect.Struct:
		t := v.Type()
		if opaque(t) {
			return nil
		}
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				return fmt.Errorf("unexported field %s.%s", t, f.Name)
			}
			if skipped(f) {
				return fmt.Errorf("field %s.%s is skipped by its tag", t, f.Name)
			}
			if err := checkVisible(v.Field(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Slice, reflect.Array:
		if v.Type().Elem().Kind() == reflect.Uint8 {
			return nil
		}
		for i := 0; i < v.Len(); i++ {
			if err := checkVisible(v.Index(i), depth+1); err != nil {
				return err
			}
		}
	case reflect.Map:
		it := v.MapRange()
		for it.Next() {
			if err := checkVisible(it.Key(), depth+1); err != nil {
				return err
			}
			if err := checkVisible(it.Value(), depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func skipped(f reflect.StructField) bool {
	if tag, ok := f.Tag.Lookup("cbor"); ok {
		return tag == "-"
	}
	return f.Tag.Get("json") == "-"
}

// IdentityKey uses the identifier itself as the backend key. Strings are
// returned unchanged; integers and booleans are formatted in base 10.
// Structured identifiers are not keys and yield ErrInvalidArgument: use
// HashKey for those.
func IdentityKey(id any) (string, error) {
	switch v := id.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int8:
		return strconv.FormatInt(int64(v), 10), nil
	case int16:
		return strconv.FormatInt(int64(v), 10), nil
	case int32:
		return strconv.FormatInt(int64(v), 10), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint8:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint16:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint32:
		return strconv.FormatUint(uint64(v), 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return "", fmt.Errorf("%w: identifier of type %T is not a backend key", ErrInvalidArgument, id)
	}
}

// HashKey returns the lower-case hex MD5 digest of Canonicalize(id). Keys are
// always 32 characters of [0-9a-f], which suits stores that restrict key
// length or character set.
func HashKey(id any) (string, error) {
	b, err := Canonicalize(id)
	if err != nil {
		return "", err
	}
	sum := md5.Sum(b)
	return hex.EncodeToString(sum[:]), nil
}
