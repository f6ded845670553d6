// SPDX-License-Identifier: MPL-2.0

package main

import cmd "pmdetect/cmd/pmdetect"

func main() {
	cmd.Execute()
}
