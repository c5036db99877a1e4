// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	playVolume   int
	playLoop     bool
	playDuration time.Duration
)

var playCmd = &cobra.Command{
	Use:   "play <track>",
	Short: "Play a track's override as the host would",
	Long: `Run a simulated host that reports <track> as playing, driving the
replacer at the configured frame and track rates until interrupted or
--duration elapses.

Examples:
  musicreplacer play "Harmony"
  musicreplacer play "Harmony" --volume 128 --loop --duration 30s`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().IntVar(&playVolume, "volume", 255, "host music volume, 0 off, 1..255")
	playCmd.Flags().BoolVar(&playLoop, "loop", true, "restart the override when it ends")
	playCmd.Flags().DurationVarP(&playDuration, "duration", "d", 0, "stop after this long (0 runs until interrupted)")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	track := args[0]
	if playVolume < 0 || playVolume > cfg.Playback.MaxVolumeUnits {
		return fmt.Errorf("--volume %d is outside 0..%d", playVolume, cfg.Playback.MaxVolumeUnits)
	}

	host := newConsoleHost(os.Stderr, playVolume, playLoop)
	r, logger, err := openReplacer(host)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if _, ok := r.Lookup(track); !ok {
		r.Shutdown(context.Background())
		return fmt.Errorf("%s has no override", track)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if playDuration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, playDuration)
		defer cancel()
	}

	frames := time.NewTicker(cfg.Playback.Frame())
	defer frames.Stop()
	tracks := time.NewTicker(cfg.Playback.Track())
	defer tracks.Stop()

	fmt.Fprintf(os.Stderr, "Playing override for %s, Ctrl-C to stop\n", track)
	r.TrackTick(track)

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case <-tracks.C:
			r.TrackTick(track)
		case <-frames.C:
			r.FrameTick()
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	err = r.Shutdown(shutdownCtx)

	logger.Debug("host volume restored", zap.Int("volume", host.hostVolume()))
	return err
}
