package log

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/yandex/api"
)

// Flaw logs err with its records, joined errors and stack traces when it is a
// flaw. Other errors are logged as-is, plus the response details of any API
// error in the chain.
func Flaw(err error) func(e *zerolog.Event) {
	return func(e *zerolog.Event) {
		flawErr, ok := errutil.As[*flaw.Flaw](err)
		if !ok {
			e.Err(err)
			if httpErr, ok := errutil.As[*api.HTTPError](err); ok {
				e.Dict("http", zerolog.Dict().
					Int("status_code", httpErr.StatusCode).
					Str("name", httpErr.Name).
					Str("message", httpErr.Message).
					Bool("edge_blocked", httpErr.EdgeBlocked))
			}
			return
		}

		e.Dict("error", errorDict(flawErr.Inner, flawErr.InnerType, flawErr.InnerSyntaxRepr))

		records := zerolog.Arr()
		for _, v := range flawErr.Records {
			d := zerolog.Dict().Str("function", v.Function)
			if b, err := json.MarshalWithOption(v.Payload, json.UnorderedMap(), json.DisableNormalizeUTF8(), json.DisableHTMLEscape()); nil != err {
				d.Dict("payload", zerolog.Dict().Str("error", err.Error()).Str("raw", fmt.Sprintf("%#+v", v.Payload)))
			} else {
				d.RawJSON("payload", b)
			}
			records.Dict(d)
		}
		e.Array("records", records)

		joined := zerolog.Arr()
		for _, v := range flawErr.JoinedErrors {
			d := zerolog.Dict().Dict("error", errorDict(v.Message, v.TypeName, v.SyntaxRepr))
			if st := v.CallerStackTrace; nil != st {
				d.Dict("caller_stack_trace", frameDict(st.File, st.Line, st.Function))
			} else {
				d.Stringer("caller_stack_trace", nil)
			}
			joined.Dict(d)
		}
		e.Array("joined_errors", joined)

		stackTraces := zerolog.Arr()
		for _, v := range flawErr.StackTrace {
			stackTraces.Dict(frameDict(v.File, v.Line, v.Function))
		}
		e.Array("stack_traces", stackTraces)
	}
}

func errorDict(message, typeName, syntaxRepr string) *zerolog.Event {
	return zerolog.Dict().
		Str("message", message).
		Str("type_name", typeName).
		Str("syntax_representation", syntaxRepr)
}

func frameDict(file string, line int, function string) *zerolog.Event {
	return zerolog.Dict().Str("location", fmt.Sprintf("%s:%d", file, line)).Str("function", function)
}
