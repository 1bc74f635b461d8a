//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package bench

import "time"

// cpuTime is not available on this platform.
func cpuTime() time.Duration {
	return 0
}
