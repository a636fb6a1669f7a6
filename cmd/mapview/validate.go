package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ha1tch/mapview/pkg/mapfile"
	"github.com/ha1tch/mapview/pkg/mapper"
)

// lint reports problems that do not stop a scene from loading.
func lint(m *mapper.Model) []string {
	var issues []string
	m.Devices.Each(func(d *mapper.Device) bool {
		if d.Signals.Len() == 0 {
			issues = append(issues, fmt.Sprintf("device %s has no signals", d.Key))
		}
		return true
	})
	m.Maps.Each(func(mp *mapper.Map) bool {
		if mp.Src.Direction != mapper.DirOutput {
			issues = append(issues, fmt.Sprintf("map %s starts at input %s", mp.Key, mp.Src.Key))
		}
		if mp.Dst.Direction != mapper.DirInput {
			issues = append(issues, fmt.Sprintf("map %s ends at output %s", mp.Key, mp.Dst.Key))
		}
		if mp.Src == mp.Dst {
			issues = append(issues, fmt.Sprintf("map %s connects a signal to itself", mp.Key))
		}
		return true
	})
	return issues
}

func validateCmd() *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate <scene>...",
		Short: "Check that scenes load and their maps are consistent",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				m, _, err := mapfile.ReadFile(path)
				if err == nil {
					err = m.Validate()
				}
				if err != nil {
					fmt.Printf("  %s %s\n", statusIcon(false), err)
					failed++
					continue
				}
				issues := lint(m)
				if strict && len(issues) > 0 {
					failed++
				}
				fmt.Printf("  %s %s %s\n", statusIcon(!strict || len(issues) == 0), path,
					subtle.Sprintf("(%d devices, %d maps)", m.Devices.Len(), m.Maps.Len()))
				for _, issue := range issues {
					warn.Printf("      %s\n", issue)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d scenes failed validation", failed, len(args))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Treat warnings as errors")
	return cmd
}
