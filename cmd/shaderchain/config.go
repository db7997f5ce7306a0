package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alphanu1/MME4CRT-v2.0/storage"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the settings file",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(o.config, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s\n", o.configPath, data)
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default settings unless a settings file exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.EnsureDirectories(); err != nil {
				return err
			}
			created, err := storage.CreateConfigIfMissing(o.configPath)
			if err != nil {
				return err
			}
			if created {
				fmt.Fprintln(cmd.OutOrStdout(), "created", o.configPath)
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", o.configPath)
			}
			return nil
		},
	}

	reset := &cobra.Command{
		Use:   "reset",
		Short: "Delete the settings file so defaults apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.DeleteConfig(o.configPath)
		},
	}

	setPreset := &cobra.Command{
		Use:   "set-preset [PATH]",
		Short: "Set the preset the viewer starts with, or clear it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.config.Video.ShaderPreset = ""
			if len(args) == 1 {
				o.config.Video.ShaderPreset = args[0]
			}
			return o.saveConfig()
		},
	}

	cmd.AddCommand(show, initCmd, reset, setPreset)
	return cmd
}
