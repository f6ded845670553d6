// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"pmdetect/pkg/agent"

	"github.com/spf13/cobra"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List the package managers pmdetect knows about",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(TitleStyle.Render("Known agents"))
		fmt.Println()
		for _, a := range agent.All() {
			fmt.Printf("  %s\n", CmdStyle.Render(string(a)))
		}

		fmt.Println()
		fmt.Println(TitleStyle.Render("Lockfiles"))
		fmt.Println()
		for _, lf := range agent.Lockfiles() {
			fmt.Printf("  %s %s %s\n",
				CmdStyle.Render(lf.File),
				SubtitleStyle.Render("->"),
				SuccessStyle.Render(string(lf.Name)))
		}
	},
}
