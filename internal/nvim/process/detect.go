package process

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Version is the engine version parsed from its --version banner.
type Version struct {
	Major int
	Minor int
	Patch int

	// Raw is the full first banner line, e.g. "NVIM v0.10.2".
	Raw string
}

// String returns the dotted version.
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// AtLeast reports whether the version is >= major.minor.patch.
func (v Version) AtLeast(major, minor, patch int) bool {
	if v.Major != major {
		return v.Major > major
	}
	if v.Minor != minor {
		return v.Minor > minor
	}
	return v.Patch >= patch
}

// Detect runs the executable with --version and parses the banner.
// Used to validate a configured engine path before spawning a session.
func Detect(path string) (Version, error) {
	if path == "" {
		path = DefaultPath()
	}

	cmd := exec.Command(path, "--version")
	cmd.SysProcAttr = sysProcAttr()
	out, err := cmd.Output()
	if err != nil {
		return Version{}, fmt.Errorf("%w: %s: %v", ErrSpawn, path, err)
	}

	line, _, _ := strings.Cut(string(out), "\n")
	line = strings.TrimSpace(line)
	v, ok := ParseVersionBanner(line)
	if !ok {
		return Version{}, fmt.Errorf("%w: %s: unrecognized banner %q", ErrNotAnEngine, path, line)
	}
	return v, nil
}

// ParseVersionBanner parses a banner line like "NVIM v0.10.2" or
// "NVIM v0.11.0-dev-123+gabc".
func ParseVersionBanner(line string) (Version, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 || !strings.EqualFold(fields[0], "NVIM") {
		return Version{}, false
	}

	raw := strings.TrimPrefix(fields[1], "v")
	// Strip prerelease and build suffixes.
	if i := strings.IndexAny(raw, "-+"); i >= 0 {
		raw = raw[:i]
	}

	parts := strings.Split(raw, ".")
	if len(parts) < 2 {
		return Version{}, false
	}

	v := Version{Raw: line}
	var err error
	if v.Major, err = strconv.Atoi(parts[0]); err != nil {
		return Version{}, false
	}
	if v.Minor, err = strconv.Atoi(parts[1]); err != nil {
		return Version{}, false
	}
	if len(parts) >= 3 {
		if v.Patch, err = strconv.Atoi(parts[2]); err != nil {
			return Version{}, false
		}
	}
	return v, true
}
