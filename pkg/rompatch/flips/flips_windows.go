//go:build windows

package flips

func toolName() string {
	return "flips.exe"
}
