package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/mapview/pkg/mapfile"
	"github.com/ha1tch/mapview/pkg/mapper"
)

func connectCmd() *cobra.Command {
	var (
		staged bool
		muted  bool
		remove bool
		output string
	)

	cmd := &cobra.Command{
		Use:   "connect <scene> <src> <dst>",
		Short: "Add or remove a map between two signals",
		Args:  cobra.ExactArgs(3),
		Example: `  mapview connect patch.toml synth/freq fx/cutoff
  mapview connect patch.toml synth/freq fx/cutoff --remove`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, src, dst := args[0], args[1], args[2]
			m, meta, err := mapfile.ReadFile(path)
			if err != nil {
				return err
			}
			if output == "" {
				output = path
			}

			key := mapper.MapKey(src, dst)
			if remove {
				if !m.RemoveMap(key) {
					return fmt.Errorf("map %s: %w", key, mapper.ErrNotFound)
				}
				logger.Debug("removed map", "map", key)
			} else {
				status := mapper.StatusActive
				if staged {
					status = mapper.StatusStaged
				}
				mp, err := m.Connect(src, dst, status)
				switch {
				case errors.Is(err, mapper.ErrDuplicate):
					warn.Printf("  map %s already exists\n", key)
				case err != nil:
					return err
				}
				mp.Muted = muted
				logger.Debug("connected", "map", key, "status", mp.Status)
			}

			if err := mapfile.WriteFile(output, m, meta); err != nil {
				return err
			}
			verb := "connected"
			if remove {
				verb = "removed"
			}
			fmt.Printf("  %s %s %s\n", statusIcon(true), verb, key)
			return nil
		},
	}
	cmd.Flags().BoolVar(&staged, "staged", false, "Add the map as staged")
	cmd.Flags().BoolVar(&muted, "muted", false, "Mute the map")
	cmd.Flags().BoolVar(&remove, "remove", false, "Remove the map instead")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to another file")
	return cmd
}
