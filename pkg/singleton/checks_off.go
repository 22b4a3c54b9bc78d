//go:build solo_nochecks

package singleton

// ChecksEnabled reports whether Mutable and Const assert against violations.
const ChecksEnabled = false
