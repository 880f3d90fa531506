package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <path>...",
		Short: "Remove files from the device filesystem",
		Args:  cobra.MinimumNArgs(1),
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

			for _, path := range args {
				fmt.Printf("removing %s\n", path)
				if err := s.Remove(cmd.Context(), path); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
