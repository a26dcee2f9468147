// Package main provides the dbc CLI.
package main

import "github.com/mesh-intelligence/dbc/internal/cli"

func main() {
	cli.Execute()
}
