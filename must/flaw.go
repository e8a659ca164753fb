package must

import (
	"fmt"

	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/errutil"
)

// BeFlaw returns the flaw in err's chain. Callers reach it only after
// errutil.IsFlaw, so a missing flaw is a programming error.
func BeFlaw(err error) *flaw.Flaw {
	if f, ok := errutil.As[*flaw.Flaw](err); ok {
		return f
	}
	panic(fmt.Sprintf("expected error to be of type *flaw.Flaw, got error of type %T: %v", err, err))
}
