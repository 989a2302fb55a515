//go:build no_bubbletea

package relay

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/krau/RelayAny-Bot/core/upload"
)

// RelayProgress prints one line per stage and percent step.
type RelayProgress struct {
	fileName string
	mu       sync.Mutex
	last     map[string]int64
}

func NewRelayProgress(ctx context.Context, fileName string) *RelayProgress {
	return &RelayProgress{fileName: fileName, last: make(map[string]int64)}
}

func (rp *RelayProgress) Start() {}

func (rp *RelayProgress) Stage(stage string) upload.ProgressFunc {
	if rp == nil {
		return nil
	}
	return func(done, total int64) {
		if total <= 0 {
			return
		}
		pct := done * 100 / total
		rp.mu.Lock()
		defer rp.mu.Unlock()
		if prev, ok := rp.last[stage]; ok && pct < prev+10 && pct < 100 {
			return
		}
		rp.last[stage] = pct
		fmt.Fprintf(os.Stderr, "%s %s: %d%% (%s / %s)\n", stage, rp.fileName, pct,
			humanize.Bytes(uint64(done)), humanize.Bytes(uint64(total)))
	}
}

func (rp *RelayProgress) SetError(err error) {
	fmt.Fprintf(os.Stderr, "relay failed: %v\n", err)
}

func (rp *RelayProgress) Done() {
	fmt.Fprintf(os.Stderr, "relay of %s complete\n", rp.fileName)
}

func (rp *RelayProgress) Wait() {}
