package osrelease

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

const osReleasePath = "/etc/os-release"

// Info holds the detected OS release facts
type Info struct {
	ID         string // e.g. "ubuntu"
	Release    string // e.g. "14.04"
	PrettyName string
}

// Detect reads the host OS release, preferring /etc/os-release and
// falling back to lsb_release when the file is missing
func Detect() (*Info, error) {
	if runtime.GOOS != "linux" {
		return nil, fmt.Errorf("os release detection is only supported on Linux (current platform: %s)", runtime.GOOS)
	}

	data, err := os.ReadFile(osReleasePath)
	if err == nil {
		info := Parse(string(data))
		if info.Release != "" {
			return info, nil
		}
	}

	release, lsbErr := lsbRelease()
	if lsbErr != nil {
		return nil, fmt.Errorf("failed to detect OS release: %w", lsbErr)
	}

	return &Info{Release: release}, nil
}

// Parse extracts release facts from os-release file content
func Parse(content string) *Info {
	info := &Info{}

	scanner := bufio.NewScanner(strings.NewReader(content))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		value = strings.Trim(value, `"`)

		switch key {
		case "ID":
			info.ID = value
		case "VERSION_ID":
			info.Release = value
		case "PRETTY_NAME":
			info.PrettyName = value
		}
	}

	return info
}

// lsbRelease shells out to lsb_release for hosts without /etc/os-release
func lsbRelease() (string, error) {
	if _, err := exec.LookPath("lsb_release"); err != nil {
		return "", fmt.Errorf("lsb_release not found: %w", err)
	}

	output, err := exec.Command("lsb_release", "-r", "-s").Output()
	if err != nil {
		return "", fmt.Errorf("lsb_release failed: %w", err)
	}

	return strings.TrimSpace(string(output)), nil
}

// ReleaseNum returns the numeric form of a release string with the
// decimal point removed, so "14.04" becomes 1404. Returns 0 for
// unparseable input.
func ReleaseNum(release string) int {
	digits := strings.ReplaceAll(strings.TrimSpace(release), ".", "")
	if digits == "" {
		return 0
	}

	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

// Num returns the numeric form of the detected release
func (i *Info) Num() int {
	return ReleaseNum(i.Release)
}
