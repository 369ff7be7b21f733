//go:build !linux

package kstat

// Only the SPL text files are portable; procfs providers are Linux-only
func providers() []provider {
	return []provider{splKstats}
}
