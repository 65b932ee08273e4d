// Package main is the entry point for the mendc CLI.
package main

import "mendc.dev/pkg/mendc/cmd"

func main() {
	cmd.Execute()
}
