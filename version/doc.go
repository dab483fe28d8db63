// Package version reports the build identity of the asr-server binary.
//
// Values are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/asr-server/version.Version=1.2.0 \
//	  -X github.com/kbukum/asr-server/version.GitCommit=$(git rev-parse --short HEAD)"
//
// Missing values fall back to the module build info embedded by the Go toolchain.
package version
