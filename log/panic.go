package log

import (
	"bytes"
	"runtime/debug"

	"github.com/rs/zerolog"
)

func Panic(thing any) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		e.Dict("panic", zerolog.Dict().
			Any("content", thing).
			Bytes("stack_traces", panicStack(debug.Stack())))
	}
}

// panicStack drops the frames of the recovery itself, keeping the panic call
// and everything below it.
func panicStack(stack []byte) []byte {
	if i := bytes.Index(stack, []byte("\npanic(")); i >= 0 {
		return stack[i+1:]
	}
	return stack
}
