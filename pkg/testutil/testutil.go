// Package testutil contains common test utilities.
package testutil

import (
	"os"
	"path/filepath"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// TempDirer is the subset of [testing.TB] used by TempDir.
type TempDirer interface {
	TempDir() string
}

// Set sets *p to v for the duration of a test, restoring the old value
// afterwards.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Setenv sets an environment variable for the duration of a test and returns
// value.
func Setenv(c Cleanuper, name, value string) string {
	saveEnv(c, name)
	os.Setenv(name, value)
	return value
}

// Unsetenv unsets an environment variable for the duration of a test.
func Unsetenv(c Cleanuper, name string) {
	saveEnv(c, name)
	os.Unsetenv(name)
}

func saveEnv(c Cleanuper, name string) {
	oldValue, existed := os.LookupEnv(name)
	if existed {
		c.Cleanup(func() { os.Setenv(name, oldValue) })
	} else {
		c.Cleanup(func() { os.Unsetenv(name) })
	}
}

// TempFile returns the path of a not-yet-existing file inside a temporary
// directory that is removed when the test finishes.
func TempFile(t TempDirer, name string) string {
	return filepath.Join(t.TempDir(), name)
}

// TB is the subset of [testing.TB] used by InTempDir.
type TB interface {
	Cleanuper
	TempDirer
}

// InTempDir changes into a temporary directory for the duration of a test,
// and returns its path.
func InTempDir(t TB) string {
	dir := t.TempDir()
	old, err := os.Getwd()
	if err != nil {
		panic(err)
	}
	if err := os.Chdir(dir); err != nil {
		panic(err)
	}
	t.Cleanup(func() { os.Chdir(old) })
	return dir
}
