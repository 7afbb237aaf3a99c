// This program signs instructions and invokes the ToLower program.
package main

import "github.com/ardanlabs/tolower/app/tooling/tolower/cmd"

func main() {
	cmd.Execute()
}
