package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDrivePath(t *testing.T) {
	tests := map[string]string{
		"":              "/",
		"  ":            "/",
		"docs":          "/docs",
		"/docs/":        "/docs",
		"/a/../b":       "/b",
		"/../../escape": "/escape",
	}
	for in, want := range tests {
		assert.Equal(t, want, CleanDrivePath(in), in)
	}
}

func TestDriveDir(t *testing.T) {
	assert.Equal(t, "/docs", DriveDir("/docs/a.txt"))
	assert.Equal(t, "/", DriveDir("a.txt"))
	assert.Equal(t, "/", DriveDir("/"))
}

func TestJoinDrivePath(t *testing.T) {
	assert.Equal(t, "/docs/a.txt", JoinDrivePath("/docs", "a.txt"))
	assert.Equal(t, "/a.txt", JoinDrivePath("", "a.txt"))
}
