package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"
)

func readCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <addr> <len>",
		Short: "Read raw device memory",
		Long: `Read a range of device memory and print a hex dump.

Address and length accept decimal or 0x-prefixed hexadecimal.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			addr, err := parseNum(args[0])
			if err != nil {
				return fmt.Errorf("bad address %q: %w", args[0], err)
			}
			length, err := parseNum(args[1])
			if err != nil {
				return fmt.Errorf("bad length %q: %w", args[1], err)
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

			data, err := s.ReadMemory(cmd.Context(), addr, length)
			if err != nil {
				return err
			}

			dumper := hex.Dumper(os.Stdout)
			defer dumper.Close()
			dumper.Write(data)
			return nil
		},
	}
}

// parseNum accepts decimal or 0x-prefixed hex.
func parseNum(s string) (uint32, error) {
	n, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, err
	}
	return uint32(n), nil
}
