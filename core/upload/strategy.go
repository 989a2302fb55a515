// Package upload decides how a local file is shipped to Telegram and
// carries out that decision.
package upload

import (
	"github.com/krau/RelayAny-Bot/pkg/consts/tglimit"
	"github.com/krau/RelayAny-Bot/pkg/enums/tier"
)

type Strategy int

const (
	Direct Strategy = iota
	Split
	HighCapacity
)

func (s Strategy) String() string {
	switch s {
	case Direct:
		return "direct"
	case Split:
		return "split"
	case HighCapacity:
		return "highcapacity"
	}
	return "unknown"
}

// Limits are the upload thresholds. PartSize must be below SizeLimit.
type Limits struct {
	SizeLimit int64
	PartSize  int64
}

func DefaultLimits() Limits {
	return Limits{SizeLimit: tglimit.SizeLimit, PartSize: tglimit.PartSize}
}

func (l Limits) orDefault() Limits {
	def := DefaultLimits()
	if l.SizeLimit <= 0 {
		l.SizeLimit = def.SizeLimit
	}
	if l.PartSize <= 0 || l.PartSize >= l.SizeLimit {
		l.PartSize = min(def.PartSize, l.SizeLimit-1)
	}
	return l
}

// Select picks the strategy for a file of size bytes. Oversized files go
// through the privileged client only when the user is HighCapacity and such
// a client exists, and are split otherwise.
func Select(size int64, t tier.Tier, hasPrivileged bool, l Limits) Strategy {
	l = l.orDefault()
	if size <= l.SizeLimit {
		return Direct
	}
	if t == tier.HighCapacity && hasPrivileged {
		return HighCapacity
	}
	return Split
}
