// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package version reports the doclens build. The values are printed by
// `doclens version`, returned by the API's /health endpoint and stamped on
// generated reports and outbound embedding requests.
package version

import (
	"fmt"
	"runtime"
)

// Release builds override these with
// -ldflags "-X doclens/internal/version.Version=1.2.0 -X doclens/internal/version.GitCommit=$(git rev-parse --short HEAD)".
var (
	Version   = "0.0.0-development"
	GitCommit = "unknown"
	BuildDate = "unknown"

	GoVersion = runtime.Version()
	Platform  = fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)
)

// Info is the one-line banner of `doclens version`.
func Info() string {
	return fmt.Sprintf("doclens %s (commit: %s, built: %s, go: %s, platform: %s)",
		Version, GitCommit, BuildDate, GoVersion, Platform)
}

// Short is the version recorded in the tool block of JSON and YAML reports.
func Short() string {
	return Version
}

// UserAgent identifies doclens to HTTP embedding providers.
func UserAgent() string {
	return "doclens/" + Version
}

// Full feeds the build_info object of GET /health.
func Full() map[string]string {
	return map[string]string{
		"version":   Version,
		"commit":    GitCommit,
		"buildDate": BuildDate,
		"goVersion": GoVersion,
		"platform":  Platform,
	}
}
