package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snesctl/snesctl/pkg/protocol"
)

func lsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ls [path]",
		Short: "List a directory on the device filesystem",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			s, err := attach(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			files, err := s.ListFiles(cmd.Context(), path)
			if err != nil {
				return err
			}
			for _, fi := range files {
				suffix := ""
				if fi.Type == protocol.TypeDir {
					suffix = "/"
				}
				fmt.Printf("%s%s\n", fi.Name, suffix)
			}
			return nil
		},
	}
}
