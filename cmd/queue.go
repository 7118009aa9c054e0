package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/scrobble"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "List scrobbles cached while offline",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		_, records, err := scrobble.NewQueue(st).All()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read queue: %v\n", err)
			os.Exit(1)
		}
		if len(records) == 0 {
			fmt.Println("No cached scrobbles.")
			return
		}
		for _, r := range records {
			fmt.Printf("%s  %s - %s\n", r.Timestamp.Format("2006-01-02 15:04"), r.Artist, r.Track)
		}
		fmt.Printf("%d cached scrobbles. Run 'shoal flush' to submit.\n", len(records))
	},
}

func init() {
	rootCmd.AddCommand(queueCmd)
}
