// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"pmdetect/internal/config"
	"pmdetect/internal/issue"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage pmdetect configuration",
	Long: `Manage pmdetect configuration.

Configuration is stored in:
  - Linux: ~/.config/pmdetect/config.yaml
  - macOS: ~/Library/Application Support/pmdetect/config.yaml
  - Windows: %APPDATA%\pmdetect\config.yaml`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

func init() {
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig()
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfigPath()
		},
	})
}

func showConfig() error {
	cfg, err := config.Load()
	if err != nil {
		rendered, renderErr := issue.Get(issue.ConfigLoadFailedId).Render("dark")
		if renderErr == nil {
			fmt.Fprint(os.Stderr, rendered)
		}
		return err
	}

	fmt.Println(TitleStyle.Render("Current Configuration"))
	fmt.Println()

	cfgDir, dirErr := config.ConfigDir()
	if dirErr == nil {
		cfgPath := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
		if fileExistsCheck(cfgPath) {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), cfgPath)
		} else {
			fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
		}
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("Config file"), SubtitleStyle.Render("(using defaults)"))
	}
	fmt.Println()

	fmt.Printf("%s:\n", CmdStyle.Render("strategies"))
	for _, s := range cfg.Strategies {
		fmt.Printf("  - %s\n", SuccessStyle.Render(string(s)))
	}

	fmt.Println()
	if cfg.StopDir == "" {
		fmt.Printf("%s: %s\n", CmdStyle.Render("stop_dir"), SubtitleStyle.Render("(filesystem root)"))
	} else {
		fmt.Printf("%s: %s\n", CmdStyle.Render("stop_dir"), SuccessStyle.Render(cfg.StopDir))
	}
	fmt.Printf("%s: %s\n", CmdStyle.Render("env_fast_path"), SuccessStyle.Render(fmt.Sprintf("%v", cfg.EnvFastPath)))
	fmt.Printf("%s: %s\n", CmdStyle.Render("output"), SuccessStyle.Render(string(cfg.Output)))

	fmt.Println()
	fmt.Printf("%s:\n", CmdStyle.Render("ui"))
	fmt.Printf("  verbose: %s\n", SuccessStyle.Render(fmt.Sprintf("%v", cfg.UI.Verbose)))

	return nil
}

func showConfigPath() error {
	cfgDir, err := config.ConfigDir()
	if err != nil {
		return err
	}

	fmt.Printf("Config directory: %s\n", cfgDir)
	fmt.Printf("Config file: %s\n", filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
	return nil
}

// fileExistsCheck checks if a file exists and is not a directory.
func fileExistsCheck(path string) bool {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}
