package main

import (
	"fmt"
	"io/fs"
	"path"
	"strings"

	"github.com/milk9111/physync/assets"
	"github.com/milk9111/physync/prefabs"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list embedded prefabs, scenes and scripts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			groups := []struct {
				title string
				fsys  fs.FS
				dir   string
			}{
				{"prefabs", prefabs.PrefabsFS, "."},
				{"scenes", prefabs.ScenesFS, "scenes"},
				{"scripts", prefabs.ScriptsFS, "scripts"},
			}
			for _, g := range groups {
				entries, err := fs.ReadDir(g.fsys, g.dir)
				if err != nil {
					return fmt.Errorf("list %s: %w", g.title, err)
				}
				fmt.Fprintf(out, "%s:\n", g.title)
				for _, e := range entries {
					if e.IsDir() {
						continue
					}
					fmt.Fprintf(out, "  %s\n", strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
				}
			}
			fmt.Fprintln(out, "costumes:")
			for _, name := range assets.Costumes() {
				fmt.Fprintf(out, "  %s\n", name)
			}
			return nil
		},
	}
}
