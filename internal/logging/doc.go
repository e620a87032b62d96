// Package logging configures slog output for the podium CLIs: a pretty
// console handler for interactive use, a JSON handler for log files, and
// small attr helpers shared across packages.
package logging
