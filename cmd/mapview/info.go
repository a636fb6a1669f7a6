package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ha1tch/mapview/pkg/mapfile"
	"github.com/ha1tch/mapview/pkg/mapper"
)

func infoCmd() *cobra.Command {
	var showSignals bool

	cmd := &cobra.Command{
		Use:   "info <scene>",
		Short: "Show devices, signals and maps in a scene",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, meta, err := mapfile.ReadFile(args[0])
			if err != nil {
				return err
			}

			name := meta.Name
			if name == "" {
				name = args[0]
			}
			fmt.Printf("  %s", brand.Sprint(name))
			if meta.View != "" {
				fmt.Print(subtle.Sprintf(" (%s view)", meta.View))
			}
			fmt.Println()
			if meta.Description != "" {
				fmt.Printf("  %s\n", meta.Description)
			}
			fmt.Println()

			devices := newListing("DEVICE", "OUTPUTS", "INPUTS", "COLOR")
			m.Devices.Each(func(d *mapper.Device) bool {
				in, out := countDirections(d)
				devices.add(plain(d.Key), plain(strconv.Itoa(out)), plain(strconv.Itoa(in)), plain(d.Color))
				return true
			})
			devices.print()

			if showSignals {
				fmt.Println()
				signals := newListing("SIGNAL", "DIRECTION", "POSITION")
				m.Devices.Each(func(d *mapper.Device) bool {
					d.Signals.Each(func(s *mapper.Signal) bool {
						pos := "-"
						if s.Position != nil {
							pos = fmt.Sprintf("%.0f,%.0f", s.Position.X, s.Position.Y)
						}
						signals.add(plain(s.Key), plain(string(s.Direction)), plain(pos))
						return true
					})
					return true
				})
				signals.print()
			}

			fmt.Println()
			maps := mapListing(m)
			if len(maps.rows) == 0 {
				warn.Println("  no maps")
			}
			maps.print()

			fmt.Printf("\n  %d devices, %d signals, %d maps\n", m.Devices.Len(), m.NumSignals(), m.Maps.Len())
			return nil
		},
	}
	cmd.Flags().BoolVarP(&showSignals, "signals", "s", false, "List every signal")
	return cmd
}

// mapListing lists maps as source, arrow, destination and status.
func mapListing(m *mapper.Model) *listing {
	l := newListing("SOURCE", "", "DESTINATION", "STATUS", "FLAGS")
	m.Maps.Each(func(mp *mapper.Map) bool {
		flags := plain("")
		if mp.Muted {
			flags = cell{"muted", subtle}
		}
		l.add(plain(mp.Src.Key), cell{"→", subtle}, plain(mp.Dst.Key), statusCell(mp.Status), flags)
		return true
	})
	return l
}

func countDirections(d *mapper.Device) (in, out int) {
	d.Signals.Each(func(s *mapper.Signal) bool {
		if s.Direction == mapper.DirInput {
			in++
		} else {
			out++
		}
		return true
	})
	return in, out
}
