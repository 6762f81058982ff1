//go:build !unix && !windows

package sigilcrypto

// Memory locking is unavailable here (js/wasm among others).
func mlock([]byte) bool { return false }

func munlock([]byte) {}
