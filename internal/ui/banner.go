package ui

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fatih/color"
)

var (
	brandPinkRed = color.RGB(219, 39, 119).Add(color.Bold).SprintFunc() // #DB2777 Brand Pink
	whiteDim     = color.New(color.Faint).SprintFunc()
)

// GenerateBanner renders the hdas startup banner, giving the number of
// monitored directories and naming each one so an operator can confirm
// the daemon picked up the configuration they expect.
func GenerateBanner(version, commit string, monitoredDirs []string) string {
	line1 := fmt.Sprintf("█░█ █▀▄ ▄▀█ █▀▀\t%s", whiteDim("(github.com/hdas-project/hdas)"))
	line2 := "█▀█ █▄▀ █▀█ ▄▄▄"

	hdasASCIIText := "\n" + line1 + "\n" + line2

	if len(commit) >= 6 {
		commit = commit[:6]
	}

	version = cleanVersion(version)

	banner := fmt.Sprintf("%s 	%s: %s %s: %s \n\n", brandPinkRed(hdasASCIIText),
		whiteDim("version"), Colors.Bold(version),
		whiteDim("commit"), Colors.Bold(commit),
	)

	if len(monitoredDirs) > 0 {
		banner += fmt.Sprintf("%s %d\n", whiteDim("watching directories:"), len(monitoredDirs))
		for _, d := range monitoredDirs {
			banner += fmt.Sprintf("  %s %s\n", Colors.Dim("-"), d)
		}
		banner += "\n"
	}

	return banner
}

// cleanVersion removes ugly pseudo-version timestamps and dirty flags
// Keeps clean versions like v1.2.3-alpha.1 and v0.3.5-edfdd54 as-is
func cleanVersion(version string) string {
	if version == "" {
		return version
	}

	// Remove build metadata (+dirty, +build.1, etc.)
	version = strings.Split(version, "+")[0]

	// Only clean pseudo-versions with timestamps
	// Pattern: v1.2.3-0.20220101123456-abcdef123456
	pseudoPattern := regexp.MustCompile(`^(v?\d+\.\d+\.\d+)-0\.\d{14}-[a-f0-9]{12}$`)
	if matches := pseudoPattern.FindStringSubmatch(version); len(matches) > 1 {
		return matches[1]
	}

	return version
}
