// Copyright (c) 2025 The kvsync authors
// Use of this source code is governed by a MIT license found in the LICENSE file.

package bind

import (
	"errors"
	"fmt"
	"reflect"
	"weak"
)

// Member is a settable member of an object, e.g. a struct field or a setter method.
type Member interface {
	// Name returns the name of the member used in diagnostics.
	Name() string
	// Type returns the declared type of the member.
	Type() reflect.Type
	// Set sets the member to the value, which must be assignable to Type().
	// A nil value sets the member to its zero value.
	// It returns ErrOwnerGone if the owner of the member has been collected.
	Set(value any) error
}

// ErrOwnerGone is returned by Member.Set if the owner of the member has been garbage collected.
var ErrOwnerGone = errors.New("owner of member has been collected")

// Field returns the Member for the exported field with the given name of the struct pointed to by owner.
//
// The Member holds a weak pointer to owner.
func Field[T any](owner *T, name string) (Member, error) { //nolint:ireturn
	if owner == nil {
		return nil, errNilOwner
	}

	typ := reflect.TypeFor[T]()
	if typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("field %s of %v: %w", name, typ, errNotStruct)
	}
	field, ok := typ.FieldByName(name)
	if !ok || !field.IsExported() {
		return nil, fmt.Errorf("field %s of %v: %w", name, typ, errNoField)
	}

	return fieldMember[T]{
		owner: weak.Make(owner),
		name:  name,
		index: field.Index,
		typ:   field.Type,
	}, nil
}

type fieldMember[T any] struct {
	owner weak.Pointer[T]
	name  string
	index []int
	typ   reflect.Type
}

func (f fieldMember[T]) Name() string {
	return f.name
}

func (f fieldMember[T]) Type() reflect.Type {
	return f.typ
}

func (f fieldMember[T]) Set(value any) error {
	owner := f.owner.Value()
	if owner == nil {
		return ErrOwnerGone
	}

	val, err := assignable(f.typ, value)
	if err != nil {
		return err
	}
	reflect.ValueOf(owner).Elem().FieldByIndex(f.index).Set(val)

	return nil
}

// Setter returns the Member which calls fn with owner when it is set.
//
// The Member holds a weak pointer to owner, so fn must not capture owner.
func Setter[T, V any](owner *T, name string, fn func(*T, V) error) (Member, error) { //nolint:ireturn
	if owner == nil {
		return nil, errNilOwner
	}
	if fn == nil {
		return nil, errNilSetter
	}

	return setterMember[T, V]{owner: weak.Make(owner), name: name, fn: fn}, nil
}

type setterMember[T, V any] struct {
	owner weak.Pointer[T]
	name  string
	fn    func(*T, V) error
}

func (s setterMember[T, V]) Name() string {
	return s.name
}

func (s setterMember[T, V]) Type() reflect.Type {
	return reflect.TypeFor[V]()
}

func (s setterMember[T, V]) Set(value any) error {
	owner := s.owner.Value()
	if owner == nil {
		return ErrOwnerGone
	}

	val, err := assignable(s.Type(), value)
	if err != nil {
		return err
	}

	typed, _ := val.Interface().(V) // Nil interface values are zero V.

	return s.fn(owner, typed)
}

// Func returns the Member which calls fn when it is set.
//
// The lifetime of whatever fn captures is controlled by the caller,
// so the Target has to be unbound explicitly.
func Func[V any](name string, fn func(V) error) Member { //nolint:ireturn
	if fn == nil {
		panic("cannot create member with nil func")
	}

	return funcMember[V]{name: name, fn: fn}
}

type funcMember[V any] struct {
	name string
	fn   func(V) error
}

func (f funcMember[V]) Name() string {
	return f.name
}

func (f funcMember[V]) Type() reflect.Type {
	return reflect.TypeFor[V]()
}

func (f funcMember[V]) Set(value any) error {
	val, err := assignable(f.Type(), value)
	if err != nil {
		return err
	}

	typed, _ := val.Interface().(V)

	return f.fn(typed)
}

func assignable(typ reflect.Type, value any) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(typ), nil
	}

	val := reflect.ValueOf(value)
	switch {
	case val.Type().AssignableTo(typ):
		return val, nil
	case val.Kind() == typ.Kind() && val.Type().ConvertibleTo(typ):
		// Types of the same kind are only convertible with identical underlying types,
		// e.g. int to a named int type, but not int32 to int.
		return val.Convert(typ), nil
	default:
		return reflect.Value{}, fmt.Errorf("assign %T to %v: %w", value, typ, errMismatchedType)
	}
}

var (
	errNilOwner       = errors.New("cannot bind member of nil owner")
	errNilSetter      = errors.New("cannot bind nil setter")
	errNotStruct      = errors.New("owner is not a struct")
	errNoField        = errors.New("no exported field with the name")
	errMismatchedType = errors.New("mismatched type")
)
