// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ik5/musicreplacer"
	"github.com/ik5/musicreplacer/store"
	"github.com/spf13/cobra"
)

var overrideCmd = &cobra.Command{
	Use:   "override <track> <file>",
	Short: "Override a track with a local audio file",
	Long: `Copy an audio file into the override cache and play it in place of <track>.

Supported files: .wav, .mp3, .ogg, .aiff

Examples:
  musicreplacer override "Harmony" ~/music/harmony.ogg`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(r *musicreplacer.Replacer) {
			r.OverrideWithFile(args[0], args[1])
		})
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <track>",
	Short: "Remove a track's override",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(r *musicreplacer.Replacer) {
			r.RemoveOverride(args[0])
		})
	},
}

var removeAllCmd = &cobra.Command{
	Use:   "remove-all",
	Short: "Remove every override",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(r *musicreplacer.Replacer) {
			r.RemoveAllOverrides()
		})
	},
}

var bulkCmd = &cobra.Command{
	Use:   "bulk <dir>",
	Short: "Override tracks from a directory of files",
	Long: `Override every track that has a file in <dir>. A file named after a track,
such as "Harmony.ogg", overrides that track. Unsupported files are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(func(r *musicreplacer.Replacer) {
			r.BulkOverride(args[0])
		})
	},
}

var presetCmd = &cobra.Command{
	Use:   "preset <file>",
	Short: "Apply a preset of remote overrides",
	Long: `Download every track listed in a YAML or JSON preset.

Example preset:
  name: Sea songs
  credits: someone
  tracks:
    Harmony:
      id: abc123
      name: Sea Shanty 2
      duration: 125
      uploader: someone`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := store.LoadPreset(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Applying %q (%d tracks)\n", p.Name, len(p.Tracks))
		return runJob(func(r *musicreplacer.Replacer) {
			r.ApplyPreset(p)
		})
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List overridden tracks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, logger, err := openReplacer(newConsoleHost(os.Stderr, 0, false))
		if err != nil {
			return err
		}
		defer logger.Sync()
		defer r.Shutdown(cmd.Context())

		names := r.Overridden()
		if len(names) == 0 {
			fmt.Println("No overrides")
			return nil
		}

		for _, name := range names {
			rec, ok := r.Lookup(name)
			if !ok {
				continue
			}
			fmt.Printf("%s  [%s%s] %s\n", name, rec.Origin.Kind, rec.Extension, rec.Origin.Locator)
			var parts []string
			for _, m := range rec.Metadata {
				if m.Label == "From" || m.Label == "Url" {
					continue
				}
				parts = append(parts, m.Label+": "+m.Text)
			}
			if len(parts) > 0 {
				fmt.Printf("    %s\n", strings.Join(parts, ", "))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overrideCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(removeAllCmd)
	rootCmd.AddCommand(bulkCmd)
	rootCmd.AddCommand(presetCmd)
	rootCmd.AddCommand(listCmd)
}
