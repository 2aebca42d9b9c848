// SPDX-License-Identifier: MPL-2.0

package main

import cmd "upack-cli/cmd/upack"

func main() {
	cmd.Execute()
}
