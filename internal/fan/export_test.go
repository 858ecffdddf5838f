package fan

import (
	"io"
	"testing"
)

// StubOpenControl replaces the opener SetSpeed uses until t finishes.
func StubOpenControl(t testing.TB, fn func(path string) (io.ReadWriteCloser, error)) {
	t.Helper()

	old := openControlFn
	openControlFn = fn
	t.Cleanup(func() { openControlFn = old })
}
