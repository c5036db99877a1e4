// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ik5/musicreplacer"
	"github.com/ik5/musicreplacer/search"
	"github.com/spf13/cobra"
)

var (
	searchPages int
	searchPick  int
)

var searchCmd = &cobra.Command{
	Use:   "search <track> <term...>",
	Short: "Search for a replacement and optionally use it",
	Long: `Search the configured provider for <term> and print numbered results.
With --pick, the chosen result is downloaded as the override for <track>.

Examples:
  musicreplacer search "Harmony" sea shanty 2
  musicreplacer search "Harmony" sea shanty 2 --pages 3 --pick 5`,
	Args: cobra.MinimumNArgs(2),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchPages, "pages", "p", 1, "number of result pages to fetch")
	searchCmd.Flags().IntVar(&searchPick, "pick", 0, "override <track> with result number n")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	track, term := args[0], strings.Join(args[1:], " ")

	var hits []search.Hit
	return runJob(func(r *musicreplacer.Replacer) {
		pages := make(chan search.Page, 1)
		r.Search(term, func(p search.Page) { pages <- p })

		for fetched := 0; ; {
			p := <-pages
			fetched++
			for _, h := range p.Hits {
				hits = append(hits, h)
				fmt.Printf("%3d. %s  (%s, %s)\n", len(hits), h.Name, h.Uploader, h.Duration)
			}
			if p.Next == nil || fetched >= searchPages {
				break
			}
			p.Next()
		}

		if len(hits) == 0 {
			fmt.Fprintln(os.Stderr, "No results")
			return
		}
		if searchPick <= 0 {
			return
		}
		if searchPick > len(hits) {
			fmt.Fprintf(os.Stderr, "No result %d\n", searchPick)
			return
		}

		hit := hits[searchPick-1]
		fmt.Fprintf(os.Stderr, "Overriding %s with %q\n", track, hit.Name)
		r.OverrideWithHit(track, hit)
	})
}
