//go:build ignore

// Writes the JSON Schemas of playctl's --json reports to schemas/.
// Usage: go run scripts/gen-schema.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ormasoftchile/playctl/pkg/report"
)

func main() {
	if err := os.MkdirAll("schemas", 0755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	for _, kind := range report.SchemaKinds {
		data, err := report.Schema(kind)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error generating %s schema: %v\n", kind, err)
			os.Exit(1)
		}
		path := filepath.Join("schemas", kind+"-report.json")
		if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("wrote", path)
	}
}
