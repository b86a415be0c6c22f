// Command bookmarks renders a zoomable 24-hour timeline of generated
// bookmark events in the terminal.
//
// Usage:
//
//	bookmarks                       Interactive timeline
//	bookmarks --count 1000000       Generate a million events on start
//	bookmarks bench --svg out.svg   Headless generate + cluster, optional SVG
//	bookmarks events -f             JSONL trace event viewer
//	bookmarks config init           Write the default config file
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "bookmarks: %v\n", err)
		os.Exit(1)
	}
}
