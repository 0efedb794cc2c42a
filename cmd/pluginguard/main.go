// Command pluginguard validates a marketplace index against its
// declared plugins and renders (or checks) the generated plugin
// catalog page.
package main

import (
	"fmt"
	"os"
)

var version = "dev"

var commands = map[string]func([]string) error{
	"validate": runValidate,
	"catalog":  runCatalog,
}

func usage() {
	fmt.Fprintf(os.Stderr, `pluginguard - marketplace plugin validator (version %s)

Usage:
  pluginguard <command> [options]

Commands:
  validate   Validate a marketplace index and all of its plugins (default)
  catalog    Render the plugin catalog, or check it for drift with --check

Run 'pluginguard <command> -h' for command-specific help.
`, version)
}

func main() {
	args := os.Args[1:]

	cmd := "validate"
	if len(args) > 0 && !looksLikeFlag(args[0]) {
		cmd = args[0]
		args = args[1:]
	}

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		usage()
		os.Exit(0)
	}
	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println(version)
		os.Exit(0)
	}

	fn, ok := commands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(1)
	}

	if err := fn(args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func looksLikeFlag(s string) bool {
	return len(s) > 0 && s[0] == '-'
}
