package version

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetVersion(t *testing.T) {
	defer func() { Version, GitCommit = "", "" }()

	Version, GitCommit = "", ""
	assert.Equal(t, "v0.1.0", GetVersion())

	Version = "v1.2.3"
	assert.Equal(t, "v1.2.3", GetVersion())

	GitCommit = "abcdef1234567890"
	assert.Equal(t, "v1.2.3-abcdef1", GetVersion())

	GitCommit = "ab12"
	assert.Equal(t, "v1.2.3-ab12", GetVersion())
}
