package deriveexec

// Command is an executable invocation.
//
//derive:builder
type Command struct {
	Executable string
	Args       []string `builder:"each=Arg"`
	Env        *string
}

// Hook carries a variadic callback and an anonymous struct.
//
//derive:builder
type Hook struct {
	Name string
	Logf func(format string, args ...any)
	Meta struct {
		Owner string `json:"owner"`
	}
}

//derive:debug
type Phantom[T any] struct {
	Marker Marker[T]
	Count  int `debug:"format=0x%X"`
}

//derive:debug
type Wrapper[T any] struct {
	_     [0]T
	Value T
}

// Marker is a zero-size phantom reference to T.
type Marker[T any] struct{}

// Label renders itself in angle brackets.
type Label string

func (l Label) String() string { return "<" + string(l) + ">" }
