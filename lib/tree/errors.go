package tree

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"go.uber.org/multierr"

	"github.com/benz9527/xtree/lib/infra"
)

var (
	ErrValidation         = errors.New("[xtree] invalid argument")
	ErrDuplicateKey       = errors.New("[xtree] duplicate key")
	ErrForeignNode        = errors.New("[xtree] node is not owned by this tree")
	ErrStaleIteration     = errors.New("[xtree] tree modified during iteration")
	ErrIteratorNoLast     = errors.New("[xtree] iterator has no last returned entry")
	ErrInvariantViolation = errors.New("[xtree] invariant violation")
)

// isBlank treats nil references, whitespace-only strings and
// Stringers rendering as whitespace as absent.
func isBlank(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return len(strings.TrimSpace(x)) == 0
	case []byte:
		return len(bytes.TrimSpace(x)) == 0
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func,
		reflect.Chan, reflect.Interface, reflect.UnsafePointer:
		if rv.IsNil() {
			return true
		}
	case reflect.String:
		return len(strings.TrimSpace(rv.String())) == 0
	default:
	}

	if s, ok := v.(fmt.Stringer); ok {
		return len(strings.TrimSpace(s.String())) == 0
	}
	return false
}

func isNaN(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Float32, reflect.Float64:
		return math.IsNaN(rv.Float())
	default:
	}
	return false
}

func validateKey[K any](key K) error {
	if isBlank(key) {
		return infra.WrapErrorStackWithMessage(ErrValidation, "key cannot be nil or blank")
	}
	if isNaN(key) {
		return infra.WrapErrorStackWithMessage(ErrValidation, "key cannot be NaN")
	}
	return nil
}

func validateValue[V any](val V) error {
	if isBlank(val) {
		return infra.WrapErrorStackWithMessage(ErrValidation, "value cannot be nil or blank")
	}
	return nil
}

// validateEntry reports the key and value failures together.
func validateEntry[K, V any](key K, val V) error {
	return multierr.Combine(validateKey(key), validateValue(val))
}
