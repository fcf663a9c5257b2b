package cmd

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

func printHeader(title string) {
	line := strings.Repeat("=", len(title)+4)
	color.Cyan(line)
	color.Cyan("  %s", title)
	color.Cyan(line)
	fmt.Println()
}

func printSection(title string) {
	fmt.Println()
	color.New(color.FgCyan, color.Bold).Printf("--- %s ---\n", title)
}

func printSuccess(format string, a ...interface{}) {
	color.Green("✓ "+format, a...)
}

func printWarning(format string, a ...interface{}) {
	color.Yellow("⚠ "+format, a...)
}
