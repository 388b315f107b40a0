package versions

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

// Tests mutate the package level Version and are not parallel.

func TestGetVersionInfo(t *testing.T) {
	original := Version
	t.Cleanup(func() { Version = original })

	tests := []struct {
		name        string
		version     string
		wantVersion string
		wantRelease bool
	}{
		{name: "release with v prefix", version: "v1.4.0", wantVersion: "1.4.0", wantRelease: true},
		{name: "prerelease", version: "1.5.0-rc.1", wantVersion: "1.5.0-rc.1", wantRelease: false},
		{name: "non semver", version: "dev", wantVersion: "dev", wantRelease: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version = tt.version

			info := GetVersionInfo()
			assert.Equal(t, tt.wantVersion, info.Version)
			assert.Equal(t, tt.wantRelease, info.Release)
			assert.Equal(t, runtime.Version(), info.GoVersion)
			assert.NotEmpty(t, info.Commit)
			assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
		})
	}
}
