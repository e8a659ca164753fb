package constant

import (
	_ "embed"
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultUserAgent mimics the desktop browser the web player ships in.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/122.0.0.0 YaBrowser/24.4.0.0 Safari/537.36"
	DefaultClientID  = "YandexMusicDesktopAppWindows/5.13.2"
)

var (
	//go:embed version
	version     string
	Version     = strings.TrimSpace(version)
	compileTime = "2025-03-01T00:00:00Z" // set with -ldflags "-X github.com/xeptore/yamusic/constant.compileTime=..."
	CompileTime time.Time
)

func init() {
	t, err := time.Parse(time.RFC3339, compileTime)
	if nil != err {
		panic(fmt.Errorf("could not parse CompileTime constant %q. Make sure you it is set at build time", compileTime))
	}
	CompileTime = t
}
