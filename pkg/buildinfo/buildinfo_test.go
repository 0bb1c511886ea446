package buildinfo

import (
	"fmt"
	"runtime/debug"
	"testing"

	. "src.rook.sh/pkg/prog/progtest"
	"src.rook.sh/pkg/tt"
)

func TestProgram(t *testing.T) {
	Test(t, &Program{},
		ThatRook("-version").WritesStdout(Value.Version+"\n"),
		ThatRook("-version", "-json").WritesStdout(mustToJSON(Value.Version)+"\n"),
		ThatRook("-buildinfo").WritesStdout(fmt.Sprintf(
			"Version: %v\nGo version: %v\nPlatform: %v\n",
			Value.Version, Value.GoVersion, Value.Platform)),
		ThatRook("-buildinfo", "-json").WritesStdout(mustToJSON(Value)+"\n"),
		ThatRook().ExitsWith(1).WritesStderr("internal error: no suitable subprogram\n"),
	)
}

func vcs(revision, vcsTime, modified string) *debug.BuildInfo {
	return &debug.BuildInfo{Settings: []debug.BuildSetting{
		{Key: "vcs.revision", Value: revision},
		{Key: "vcs.time", Value: vcsTime},
		{Key: "vcs.modified", Value: modified},
	}}
}

// Calls devVersion with "1.0.0" as the next release.
func devVersionWith(override string, bi *debug.BuildInfo) string {
	return devVersion("1.0.0", override, func() (*debug.BuildInfo, bool) {
		return bi, bi != nil
	})
}

func TestDevVersion(t *testing.T) {
	tt.Test(t, tt.Fn("devVersion", devVersionWith), tt.Table{
		tt.Args("", nil).Rets("1.0.0-dev.unknown"),
		tt.Args("", &debug.BuildInfo{Main: debug.Module{Version: "(devel)"}}).
			Rets("1.0.0-dev.unknown"),
		tt.Args("", &debug.BuildInfo{Main: debug.Module{Version: "v1.0.0-rc.1"}}).
			Rets("1.0.0-rc.1"),
		tt.Args("", vcs("abcdef0123456789", "2026-03-01T10:20:30Z", "false")).
			Rets("1.0.0-dev.0.20260301102030-abcdef012345"),
		tt.Args("", vcs("abcdef0123456789", "2026-03-01T10:20:30Z", "true")).
			Rets("1.0.0-dev.0.20260301102030-abcdef012345-dirty"),
		tt.Args("", vcs("abcdef0123456789", "yesterday", "false")).
			Rets("1.0.0-dev.unknown"),
		tt.Args("", vcs("", "2026-03-01T10:20:30Z", "false")).
			Rets("1.0.0-dev.unknown"),
		tt.Args("20260301102030-abcdef012345", nil).
			Rets("1.0.0-dev.0.20260301102030-abcdef012345"),
	})
}
