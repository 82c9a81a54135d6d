// Package version 링커 플래그로 주입된 빌드 정보와 런타임 환경 정보를 제공합니다.
//
//	go build -ldflags "-X github.com/darkkaiser/app-runtime/internal/pkg/version.appVersion=v1.0.0"
package version

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
)

const unknown = "unknown"

// -ldflags -X 로 주입됩니다. 직접 참조하지 말고 Get()을 사용합니다.
var (
	appVersion    = ""
	gitCommitHash = ""
	gitTreeState  = ""
	buildDate     = ""
	buildNumber   = ""
)

// readBuildInfo 테스트에서 교체합니다.
var readBuildInfo = debug.ReadBuildInfo

var (
	current     Info
	currentOnce sync.Once
)

// Info 빌드 및 실행 환경 정보
type Info struct {
	Version     string `json:"version"`
	Commit      string `json:"commit"`
	BuildDate   string `json:"build_date"`
	BuildNumber string `json:"build_number"`
	GoVersion   string `json:"go_version"`
	OS          string `json:"os"`
	Arch        string `json:"arch"`
	DirtyBuild  bool   `json:"dirty_build"`
}

// Get 프로세스 전체에서 동일한 빌드 정보를 반환합니다.
func Get() Info {
	currentOnce.Do(func() {
		current = resolve(Info{
			Version:     strings.TrimSpace(appVersion),
			Commit:      strings.TrimSpace(gitCommitHash),
			BuildDate:   strings.TrimSpace(buildDate),
			BuildNumber: strings.TrimSpace(buildNumber),
			DirtyBuild:  strings.EqualFold(strings.TrimSpace(gitTreeState), "dirty"),
		})
	})
	return current
}

// resolve 비어있는 항목을 런타임 정보와 모듈의 VCS 메타데이터로 채웁니다.
// 주입된 값이 있으면 VCS 메타데이터보다 우선합니다.
func resolve(bi Info) Info {
	bi.GoVersion = runtime.Version()
	bi.OS = runtime.GOOS
	bi.Arch = runtime.GOARCH

	if info, ok := readBuildInfo(); ok {
		for _, s := range info.Settings {
			switch s.Key {
			case "vcs.revision":
				if bi.Commit == "" {
					bi.Commit = s.Value
				}
			case "vcs.time":
				if bi.BuildDate == "" {
					bi.BuildDate = s.Value
				}
			case "vcs.modified":
				bi.DirtyBuild = bi.DirtyBuild || s.Value == "true"
			}
		}
		if bi.Version == "" && info.Main.Version != "" && info.Main.Version != "(devel)" {
			bi.Version = info.Main.Version
		}
	}

	for _, field := range []*string{&bi.Version, &bi.Commit, &bi.BuildDate} {
		if *field == "" {
			*field = unknown
		}
	}
	if bi.BuildNumber == "" {
		bi.BuildNumber = "0"
	}

	return bi
}

// Fields 구조화 로깅용 필드를 반환합니다.
func (i Info) Fields() map[string]any {
	return map[string]any{
		"version":      i.Version,
		"commit":       i.Commit,
		"build_date":   i.BuildDate,
		"build_number": i.BuildNumber,
		"go_version":   i.GoVersion,
		"dirty_build":  i.DirtyBuild,
	}
}

// String 예: "v1.2.0+dirty (commit: f25b8bf, build: 42, go1.24.0 linux/amd64)"
func (i Info) String() string {
	v := i.Version
	if v == "" {
		v = unknown
	}
	if i.DirtyBuild {
		v += "+dirty"
	}

	var details []string
	if i.Commit != "" && i.Commit != unknown {
		commit := i.Commit
		if len(commit) > 7 {
			commit = commit[:7]
		}
		details = append(details, "commit: "+commit)
	}
	if i.BuildNumber != "" && i.BuildNumber != "0" {
		details = append(details, "build: "+i.BuildNumber)
	}
	if i.GoVersion != "" {
		details = append(details, fmt.Sprintf("%s %s/%s", i.GoVersion, i.OS, i.Arch))
	}

	if len(details) == 0 {
		return v
	}
	return fmt.Sprintf("%s (%s)", v, strings.Join(details, ", "))
}
