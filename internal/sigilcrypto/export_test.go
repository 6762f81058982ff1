package sigilcrypto

// Mlock exposes mlock to the external test package.
func Mlock(data []byte) bool { return mlock(data) }

// Munlock exposes munlock to the external test package.
func Munlock(data []byte) { munlock(data) }
