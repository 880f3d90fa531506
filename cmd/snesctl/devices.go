package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List devices attached to the bridge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := connect(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			devices, err := s.DeviceList(cmd.Context())
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Println(d)
			}
			return nil
		},
	}
}
