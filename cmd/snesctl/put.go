package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/snesctl/snesctl/internal/romsource"
)

func putCmd() *cobra.Command {
	var destDir string

	cmd := &cobra.Command{
		Use:   "put <file|s3://bucket/key>...",
		Short: "Upload files to the device",
		Long: `Upload one or more files to the device filesystem.

Sources may be local paths or s3://bucket/key objects. After each upload
a listing round-trip is issued as a synchronization point, since the
protocol has no upload-completion acknowledgment.`,
		Args: cobra.MinimumNArgs(1),
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

			for _, arg := range args {
				src, err := romsource.Resolve(arg)
				if err != nil {
					return err
				}
				data, err := src.Fetch(cmd.Context())
				if err != nil {
					return err
				}

				remote := src.Name()
				if destDir != "" {
					remote = strings.TrimRight(destDir, "/") + "/" + remote
				}

				fmt.Printf("%s -> %s\n", arg, remote)
				if err := s.PutFile(cmd.Context(), remote, data); err != nil {
					return err
				}
				if err := s.AwaitCompletion(cmd.Context()); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&destDir, "dest-dir", "", "destination directory on the device")
	return cmd
}
