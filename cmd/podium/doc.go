// Command podium is the terminal presentation player: it registers a
// viewer, loads a product presentation, and narrates it section by section
// with interactive pause, skip, and chat controls.
package main
