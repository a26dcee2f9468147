package engine

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Body is the executable part of an operation. args holds the positional
// arguments; cb is nil when the caller passed no callback.
type Body func(self *Instance, args []any, cb types.Callback) (any, error)

// Method pairs a body with its candidate signature. The signature is what
// Install checks against the declared definitions.
type Method struct {
	Signature types.Signature
	Body      Body

	wrapped bool // Body is a checking wrapper installed by Implementation
}

// NewMethod builds a Method from an explicit signature.
func NewMethod(sig types.Signature, body Body) Method {
	return Method{Signature: sig, Body: body}
}

var (
	instanceType = reflect.TypeFor[*Instance]()
	callbackType = reflect.TypeFor[types.Callback]()
	errorType    = reflect.TypeFor[error]()
)

// FuncMethod derives a Method from an ordinary Go func. A leading
// *Instance parameter receives the instance. Fixed parameters are
// required, a Go variadic parameter is variadic, and a trailing
// types.Callback parameter is the callback. Results may be (), (T),
// (error) or (T, error).
//
// A variadic parameter and a callback cannot both be expressed by a Go
// func; use NewMethod with an explicit signature for that shape.
func FuncMethod(fn any) (Method, error) {
	fv := reflect.ValueOf(fn)
	if fv.Kind() != reflect.Func || fv.IsNil() {
		return Method{}, fmt.Errorf("%w: %T is not a func", types.ErrUnsupportedFunc, fn)
	}
	ft := fv.Type()
	if err := checkResults(ft); err != nil {
		return Method{}, err
	}

	first := 0
	if ft.NumIn() > 0 && ft.In(0) == instanceType {
		first = 1
	}
	var sig types.Signature
	for i := first; i < ft.NumIn(); i++ {
		switch {
		case ft.IsVariadic() && i == ft.NumIn()-1:
			sig = append(sig, types.ParamVariadic)
		case ft.In(i) == callbackType && i == ft.NumIn()-1:
			sig = append(sig, types.ParamCallback)
		default:
			sig = append(sig, types.ParamRequired)
		}
	}

	body := func(self *Instance, args []any, cb types.Callback) (any, error) {
		in, err := funcArgs(ft, first, sig, self, args, cb)
		if err != nil {
			return nil, err
		}
		var out []reflect.Value
		if ft.IsVariadic() {
			out = fv.CallSlice(in)
		} else {
			out = fv.Call(in)
		}
		return funcResults(out)
	}
	return Method{Signature: sig, Body: body}, nil
}

func checkResults(ft reflect.Type) error {
	switch ft.NumOut() {
	case 0:
		return nil
	case 1:
		return nil
	case 2:
		if ft.Out(1) == errorType {
			return nil
		}
	}
	return fmt.Errorf("%w: results of %s", types.ErrUnsupportedFunc, ft)
}

// funcArgs converts dynamic arguments into reflect values for ft.
func funcArgs(ft reflect.Type, first int, sig types.Signature, self *Instance, args []any, cb types.Callback) ([]reflect.Value, error) {
	in := make([]reflect.Value, 0, ft.NumIn())
	if first == 1 {
		in = append(in, reflect.ValueOf(self))
	}
	pos := 0
	for i, kind := range sig {
		pt := ft.In(first + i)
		switch kind {
		case types.ParamCallback:
			if cb == nil {
				in = append(in, reflect.Zero(pt))
			} else {
				in = append(in, reflect.ValueOf(cb))
			}
		case types.ParamVariadic:
			elem := pt.Elem()
			rest := reflect.MakeSlice(pt, 0, max(len(args)-pos, 0))
			for ; pos < len(args); pos++ {
				v, err := convertArg(args[pos], elem, pos)
				if err != nil {
					return nil, err
				}
				rest = reflect.Append(rest, v)
			}
			in = append(in, rest)
		default:
			if pos >= len(args) {
				return nil, fmt.Errorf("%w (given %d)", types.ErrArgumentCount, len(args))
			}
			v, err := convertArg(args[pos], pt, pos)
			if err != nil {
				return nil, err
			}
			in = append(in, v)
			pos++
		}
	}
	return in, nil
}

func convertArg(arg any, t reflect.Type, pos int) (reflect.Value, error) {
	if arg == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return reflect.Zero(t), nil
		}
		return reflect.Value{}, fmt.Errorf("arg %d: cannot use nil as %s", pos, t)
	}
	v := reflect.ValueOf(arg)
	if v.Type().AssignableTo(t) {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("arg %d: cannot use %T as %s", pos, arg, t)
}

func funcResults(out []reflect.Value) (any, error) {
	switch len(out) {
	case 0:
		return nil, nil
	case 1:
		if out[0].Type() == errorType {
			err, _ := out[0].Interface().(error)
			return nil, err
		}
		return out[0].Interface(), nil
	default:
		err, _ := out[1].Interface().(error)
		if err != nil {
			return nil, err
		}
		return out[0].Interface(), nil
	}
}
