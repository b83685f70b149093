package harvest

import (
	"math/rand"
	"time"
)

// randomDelay picks a whole number of seconds between min and max, inclusive.
func randomDelay(min, max time.Duration) func() time.Duration {
	lo := int64(min / time.Second)
	hi := int64(max / time.Second)
	if hi < lo {
		hi = lo
	}
	return func() time.Duration {
		return time.Duration(lo+rand.Int63n(hi-lo+1)) * time.Second
	}
}
