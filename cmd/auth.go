package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/shoalaudio/shoal/internal/scrobble"
)

const authTimeout = 2 * time.Minute

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Link a Last.fm account",
	Long: `Link a Last.fm account for scrobbling. Opens the authorization
page in your browser and waits for the callback.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if !cfg.HasLastfmConfig() {
			fmt.Fprintln(os.Stderr, "Last.fm API key and secret are not configured.")
			fmt.Fprintln(os.Stderr, "Set lastfm.api_key and lastfm.api_secret in config.toml first.")
			os.Exit(1)
		}

		st := openStore()
		defer st.Close()

		if sess, err := st.GetLastfmSession(); err == nil && sess != nil {
			fmt.Printf("Already linked as %s. Run 'shoal auth remove' first to relink.\n", sess.Username)
			return
		}

		client := scrobble.NewClient(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		fmt.Println("Waiting for authorization in your browser...")
		username, sessionKey, err := scrobble.Link(client, authTimeout, func(url string) {
			fmt.Printf("Could not open a browser. Visit this URL to authorize:\n  %s\n", url)
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Authorization failed: %v\n", err)
			os.Exit(1)
		}

		if err := st.SaveLastfmSession(username, sessionKey); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save session: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Linked Last.fm account: %s\n", username)
	},
}

var authRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Unlink the Last.fm account",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		if err := st.DeleteLastfmSession(); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to unlink: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Last.fm account unlinked.")
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the linked Last.fm account",
	Run: func(cmd *cobra.Command, args []string) {
		st := openStore()
		defer st.Close()

		sess, err := st.GetLastfmSession()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read session: %v\n", err)
			os.Exit(1)
		}
		if sess == nil {
			fmt.Println("No Last.fm account linked.")
			return
		}
		fmt.Printf("Linked as %s\n", sess.Username)

		cfg := loadConfig()
		if !cfg.HasLastfmConfig() {
			return
		}
		client := scrobble.NewClient(cfg.Lastfm.APIKey, cfg.Lastfm.APISecret)
		client.SetSessionKey(sess.SessionKey)
		if info, err := client.GetUserInfo(); err == nil {
			fmt.Printf("Scrobbles: %s\n%s\n", info.PlayCount, info.URL)
		}
	},
}

func init() {
	authCmd.AddCommand(authRemoveCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
