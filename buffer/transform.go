package buffer

import (
	"fmt"
	"reflect"
)

// Transform converts a channel's input representation into its stored output
// representation. A Transform may close over per-call state; it runs on the
// buffer's worker goroutine, never on the producer's.
type Transform[I, O any] func(I) (O, error)

// tier identifies which rung of the conversion ladder a channel's type pair
// resolved to. The ladder mirrors the documented contract:
//
//  1. tierIdentity: I and O are the same type, assignable, or both numeric;
//     values convert directly and any Transform is ignored.
//  2. tierElementwise: I and O are both slices whose element types satisfy
//     rule 1; values convert element by element and any Transform is ignored.
//  3. tierFunc: a Transform is mandatory. Attach fails with
//     ErrMissingTransform when none is supplied.
type tier int

const (
	tierIdentity tier = iota
	tierElementwise
	tierFunc
)

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// implicitlyConvertible reports whether a value of type from converts to
// type to without caller help: identical or assignable types, or any pair of
// numeric kinds. Go's broader explicit conversions (such as int to string)
// are deliberately excluded; those pairs require a Transform.
func implicitlyConvertible(from, to reflect.Type) bool {
	if from == to || from.AssignableTo(to) {
		return true
	}
	return isNumeric(from) && isNumeric(to)
}

func isNumeric(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// resolveTier classifies the (I, O) pair once, at Attach time. The
// classification depends only on the types; the per-call Transform is
// consulted at put time so it may carry call-specific state.
func resolveTier[I, O any]() tier {
	it, ot := typeOf[I](), typeOf[O]()
	if implicitlyConvertible(it, ot) {
		return tierIdentity
	}
	if it.Kind() == reflect.Slice && ot.Kind() == reflect.Slice &&
		implicitlyConvertible(it.Elem(), ot.Elem()) {
		return tierElementwise
	}
	return tierFunc
}

// convert applies the resolved conversion rule to one value. fn is used only
// on tierFunc; on the other tiers it is ignored, matching the contract that
// convertible type pairs never consult the caller's function.
func convert[I, O any](t tier, v I, fn Transform[I, O]) (O, error) {
	var zero O
	switch t {
	case tierIdentity:
		if o, ok := any(v).(O); ok {
			return o, nil
		}
		return reflect.ValueOf(v).Convert(typeOf[O]()).Interface().(O), nil

	case tierElementwise:
		in := reflect.ValueOf(v)
		ot := typeOf[O]()
		out := reflect.MakeSlice(ot, in.Len(), in.Len())
		elem := ot.Elem()
		for i := 0; i < in.Len(); i++ {
			out.Index(i).Set(in.Index(i).Convert(elem))
		}
		return out.Interface().(O), nil

	default:
		if fn == nil {
			return zero, fmt.Errorf("buffer: convert %s to %s: %w",
				typeOf[I](), typeOf[O](), ErrMissingTransform)
		}
		return fn(v)
	}
}
