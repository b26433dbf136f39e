package contracts

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersionString(t *testing.T) {
	assert.Equal(t, "Foreign Flyers v"+Version, GetVersionString())
}

func TestGetFullVersionString(t *testing.T) {
	full := GetFullVersionString()

	assert.Contains(t, full, GetVersionString())
	assert.Contains(t, full, runtime.Version())
	assert.Contains(t, full, runtime.GOOS+"/"+runtime.GOARCH)
}
