// SPDX-License-Identifier: MPL-2.0

// denv is a CLI for declarative environment specifications in TOML.
package main

import cmd "github.com/denvkit/denv/cmd/denv"

func main() {
	cmd.Execute()
}
