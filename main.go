// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/nextmain/nextmain/cmd/nextmain"

func main() {
	cmd.Execute()
}
