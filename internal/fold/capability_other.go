//go:build !amd64 && !arm64

package fold

func init() {
	initCapabilities()
}
