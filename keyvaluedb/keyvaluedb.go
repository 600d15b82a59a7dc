package keyvaluedb

import (
	"errors"
	"reflect"
)

var (
	ErrInvalidKey  = errors.New("invalid key")
	ErrValueIsNil  = errors.New("value is nil")
	ErrIteratorEnd = errors.New("iterator is not valid")
)

type (
	Reader interface {
		// Read decodes the value stored under key into v, returns false when the key is not present.
		Read(key []byte, v any) (bool, error)
	}

	// Iterator walks the keys in ascending byte order. It must be closed after use.
	Iterator interface {
		Valid() bool
		Next()
		Key() []byte
		Value(v any) error
		Close() error
	}

	KeyValueDB interface {
		Reader
		Write(key []byte, v any) error
		// Last returns an iterator positioned at the greatest key.
		Last() Iterator
		// Find returns an iterator positioned at the first key equal to or greater than key.
		Find(key []byte) Iterator
		Close() error
	}
)

func CheckKeyAndValue(key []byte, v any) error {
	if len(key) == 0 {
		return ErrInvalidKey
	}
	if v == nil {
		return ErrValueIsNil
	}
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrValueIsNil
	}
	return nil
}
