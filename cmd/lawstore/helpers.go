// Shared output helpers for lawstore CLI commands.
package main

import (
	"encoding/json"
	"fmt"
)

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// emit prints v as JSON when --json is set, otherwise runs the plain
// printer.
func emit(v any, plain func()) error {
	if flagJSON {
		return printJSON(v)
	}
	plain()
	return nil
}
