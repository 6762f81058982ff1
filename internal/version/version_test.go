package version

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInfo_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info Info
		want string
	}{
		{
			name: "all fields populated",
			info: Info{Version: "v1.2.3", Commit: "abc1234", Date: "2024-01-15"},
			want: "v1.2.3 (commit: abc1234, built: 2024-01-15)",
		},
		{
			name: "all fields empty",
			info: Info{},
			want: "dev (commit: unknown, built: unknown)",
		},
		{
			name: "only commit empty",
			info: Info{Version: "v2.0.0", Date: "2024-03-25"},
			want: "v2.0.0 (commit: unknown, built: 2024-03-25)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, tt.info.String())
		})
	}
}

func TestInfo_IsDev(t *testing.T) {
	t.Parallel()

	assert.True(t, Info{}.IsDev())
	assert.True(t, Info{Version: "dev"}.IsDev())
	assert.True(t, Info{Version: "abc1234"}.IsDev())
	assert.True(t, Info{Version: "abc1234-dirty"}.IsDev())
	assert.False(t, Info{Version: "v1.0.0"}.IsDev())
	assert.False(t, Info{Version: "1234567"}.IsDev(), "all digits is not a hash")
}

func TestGet(t *testing.T) {
	t.Parallel()

	info := Get()
	assert.Equal(t, runtime.Version(), info.GoVersion)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, info.Platform)
	assert.LessOrEqual(t, len(info.Commit), 7)
	assert.True(t, strings.HasPrefix(info.String(), info.Version) || info.Version == "")
}

func TestIsCommitHash(t *testing.T) {
	t.Parallel()

	assert.True(t, isCommitHash("deadbeef"))
	assert.True(t, isCommitHash("DEADBEEF"))
	assert.False(t, isCommitHash("abc"))
	assert.False(t, isCommitHash("xyz1234"))
	assert.False(t, isCommitHash(strings.Repeat("a", 41)))
}
