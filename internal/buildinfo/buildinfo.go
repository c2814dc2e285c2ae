// Package buildinfo reports the version of the running binary. The variables
// are set by the linker:
//
//	go build -ldflags "-X github.com/cracksmith/cracksmith/internal/buildinfo.buildVersion=v1.2.0"
//
// and fall back to the module build information embedded by the toolchain.
package buildinfo

import (
	"fmt"
	"io"
	"runtime/debug"
)

const unknown = "N/A"

var (
	buildVersion = ""
	buildDate    = ""
	buildCommit  = ""
)

// Info is the resolved build metadata.
type Info struct {
	Version string
	Date    string
	Commit  string
}

// Current resolves the metadata of the running binary.
func Current() Info {
	info, _ := debug.ReadBuildInfo()
	return resolve(info)
}

func resolve(info *debug.BuildInfo) Info {
	out := Info{Version: buildVersion, Date: buildDate, Commit: buildCommit}

	if info != nil {
		if out.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			out.Version = info.Main.Version
		}
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if out.Commit == "" {
					out.Commit = s.Value
				}
			case "vcs.time":
				if out.Date == "" {
					out.Date = s.Value
				}
			}
		}
	}

	if out.Version == "" {
		out.Version = "dev"
	}
	if out.Date == "" {
		out.Date = unknown
	}
	if out.Commit == "" {
		out.Commit = unknown
	}
	return out
}

// PrintBuildData writes the version banner to w.
func PrintBuildData(w io.Writer) {
	i := Current()
	fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n", i.Version, i.Date, i.Commit)
}
