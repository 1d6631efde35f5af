package pkgmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripVersionSuffix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple version", "firefox-128.0_1", "firefox"},
		{"apk release suffix", "firefox-128.0-r1", "firefox"},
		{"no hyphen", "firefox", "firefox"},
		{"hyphen without following digit", "libfoo-dev", "libfoo-dev"},
		{"known limitation: hyphen-digit inside name", "libfoo-1-dev", "libfoo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, stripVersionSuffix(tt.in))
		})
	}
}

func TestParsePacmanOwner(t *testing.T) {
	pkg, ok := parsePacmanOwner("/usr/bin/firefox is owned by firefox 128.0-1\n")
	assert.True(t, ok)
	assert.Equal(t, "firefox", pkg)

	_, ok = parsePacmanOwner("error: No package owns /tmp/foo\n")
	assert.False(t, ok)
}

func TestParseDpkgOwner(t *testing.T) {
	pkg, ok := parseDpkgOwner("firefox: /usr/bin/firefox\n")
	assert.True(t, ok)
	assert.Equal(t, "firefox", pkg)

	_, ok = parseDpkgOwner("dpkg-query: no path found matching pattern /tmp/foo\n")
	assert.False(t, ok)
}

func TestParseRpmOwner(t *testing.T) {
	pkg, ok := parseRpmOwner("firefox")
	assert.True(t, ok)
	assert.Equal(t, "firefox", pkg)

	_, ok = parseRpmOwner("file /tmp/foo is not owned by any package")
	assert.False(t, ok)
}

func TestParseXbpsOwner(t *testing.T) {
	pkg, ok := parseXbpsOwner("firefox-128.0_1: /usr/bin/firefox\n")
	assert.True(t, ok)
	assert.Equal(t, "firefox", pkg)
}

func TestParseXbpsList(t *testing.T) {
	out := "ii firefox-128.0_1 Mozilla Firefox web browser\nii vim-9.1.0_1 Vi IMproved\n"
	names := parseXbpsList(out)
	assert.Equal(t, []string{"firefox", "vim"}, names)
}

func TestParseApkOwner(t *testing.T) {
	pkg, ok := parseApkOwner("/usr/bin/firefox is owned by firefox-128.0-r1\n")
	assert.True(t, ok)
	assert.Equal(t, "firefox", pkg)
}

func TestParseApkList(t *testing.T) {
	out := "firefox-128.0-r1\nvim-9.1.0-r2\n"
	names := parseApkList(out)
	assert.Equal(t, []string{"firefox", "vim"}, names)
}

func TestDetect_FixedOrder(t *testing.T) {
	origLookPath := lookPath
	defer func() { lookPath = origLookPath }()

	// Both pacman and dpkg are "present"; pacman must win (first in order).
	lookPath = func(name string) bool {
		return name == "pacman" || name == "dpkg"
	}

	mgr, ok := Detect()
	assert.True(t, ok)
	assert.Equal(t, "pacman", mgr.Name())
}

func TestDetect_NoneFound(t *testing.T) {
	origLookPath := lookPath
	defer func() { lookPath = origLookPath }()

	lookPath = func(name string) bool { return false }

	_, ok := Detect()
	assert.False(t, ok)
}

func TestIsSelfPackage(t *testing.T) {
	assert.True(t, IsSelfPackage(newPacman(), "pacman"))
	assert.False(t, IsSelfPackage(newPacman(), "firefox"))
	assert.False(t, IsSelfPackage(nil, "pacman"))
}
