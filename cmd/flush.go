package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/diag"
	"github.com/shoalaudio/shoal/internal/scrobble"
)

var flushCmd = &cobra.Command{
	Use:   "flush",
	Short: "Submit queued offline scrobbles",
	Long: `Submit every scrobble cached while offline to Last.fm in one batch.
The queue is kept intact when submission fails.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		log := newLogger()

		st := openStore()
		defer st.Close()

		queue := scrobble.NewQueue(st)
		count, err := queue.Count()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read queue: %v\n", err)
			os.Exit(1)
		}
		if count == 0 {
			fmt.Println("No cached scrobbles to submit.")
			return
		}

		sess, err := st.GetLastfmSession()
		if err != nil || sess == nil {
			fmt.Fprintln(os.Stderr, "No Last.fm account linked. Run 'shoal auth' first.")
			os.Exit(1)
		}

		client := scrobble.NewClient(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		client.SetSessionKey(sess.SessionKey)

		pipeline := scrobble.NewPipeline(client, queue, cfg, diag.NewSink(log), log)
		submitted, err := pipeline.Flush()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Flush failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Submitted %d cached scrobbles.\n", submitted)
	},
}

func init() {
	rootCmd.AddCommand(flushCmd)
}
