package log

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/tidwall/pretty"

	"github.com/xeptore/yamusic/constant"
)

func init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
}

func newBaseLogger() zerolog.Logger {
	app := zerolog.Dict().
		Str("name", "yamusic").
		Str("version", constant.Version).
		Str("compilation_time", constant.CompileTime.Format(time.RFC3339))
	return zerolog.New(io.Discard).With().Dict("app", app).Timestamp().Logger().Level(zerolog.TraceLevel)
}

// New logs colourised lines when f is a terminal and JSON lines otherwise.
func New(f *os.File, level zerolog.Level) zerolog.Logger {
	if fd := f.Fd(); isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return NewPretty(f).Level(level)
	}
	return NewPacked(f).Level(level)
}

func NewPretty(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(prettyWriter{out: w})
}

func NewPacked(w io.Writer) zerolog.Logger {
	return newBaseLogger().Output(w)
}

type prettyWriter struct {
	out io.Writer
}

func (p prettyWriter) Write(line []byte) (int, error) {
	if n, err := p.out.Write(pretty.Color(pretty.Pretty(line), nil)); nil != err {
		return n, err
	}
	return len(line), nil
}
