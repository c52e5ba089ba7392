package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

// statusf prints user-facing status output to stdout unless --quiet.
func statusf(format string, args ...any) {
	if flagQuiet {
		return
	}

	fmt.Printf(format, args...)
}

// formatSize renders a byte count as a human-readable string.
func formatSize(bytes int64) string {
	const unit = 1024

	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// stdoutIsTerminal reports whether stdout is an interactive terminal.
// In-place progress rewriting only makes sense on a real TTY.
func stdoutIsTerminal() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// progressPrinter returns a callback suitable for upload progress
// reporting. On a terminal it rewrites a single line in place; when
// output is redirected or --quiet is set it stays silent.
func progressPrinter() func(sent, total int64) {
	if flagQuiet || !stdoutIsTerminal() {
		return nil
	}

	return func(sent, total int64) {
		pct := float64(0)
		if total > 0 {
			pct = float64(sent) / float64(total) * 100
		}

		fmt.Printf("\r%s / %s (%.0f%%)", formatSize(sent), formatSize(total), pct)

		if sent >= total {
			fmt.Println()
		}
	}
}
