package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snesctl/snesctl/pkg/tracker"
)

func flagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "flags",
		Short: "Show the Free Enterprise seed flags of the running ROM",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := attach(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			flags, err := tracker.ReadFlags(cmd.Context(), s)
			if err != nil {
				return err
			}
			fmt.Println(flags)
			return nil
		},
	}
}
