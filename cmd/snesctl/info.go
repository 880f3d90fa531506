package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func infoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show device and firmware information",
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

			info, err := s.Info(cmd.Context())
			if err != nil {
				return err
			}
			for _, line := range info {
				fmt.Printf(" * %s\n", line)
			}
			return nil
		},
	}
}
