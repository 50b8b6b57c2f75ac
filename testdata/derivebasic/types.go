package derivebasic

import "fmt"

// Command is an executable invocation.
//
//derive:builder
type Command struct {
	Executable string
	Args       []string `json:"args" builder:"each=Arg"`
	Env        *string
}

//derive:debug
type Wrapper[T any] struct {
	_     [0]T
	Value T
}

//derive:debug
type Phantom[T any] struct {
	Marker Marker[T]
	Count  int `debug:"format=0x%X"`
}

//derive:debug bound="T fmt.Stringer"
type Labeled[T any] struct {
	Label string
	Item  T
}

// Marker is a zero-size phantom reference to T.
type Marker[T any] struct{}

// Plain has no directives.
type Plain struct {
	X int
}

// Name is not a struct.
type Name string

var _ fmt.Stringer
