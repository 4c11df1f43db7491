package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/olsonja88/ICS499-Bears/internal/chat"
	"github.com/olsonja88/ICS499-Bears/internal/client"
	"github.com/olsonja88/ICS499-Bears/internal/tui"
)

var (
	chatServerURL string
	chatToken     string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the dance assistant",
	Long: `Open an interactive chat with the dance assistant.

On a terminal this runs a full-screen interface; with piped input it
falls back to a plain line-based loop.

Pass --token with an admin credential to add dances conversationally.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatServerURL, "server", "", "server URL (default from DANCEHALL_SERVER_URL)")
	chatCmd.Flags().StringVar(&chatToken, "token", "", "bearer credential")
}

func runChat(cmd *cobra.Command, args []string) error {
	api := client.New(chatServerURL, chatToken)

	if err := api.Health(context.Background()); err != nil {
		return fmt.Errorf("server not reachable: %w", err)
	}

	if term.IsTerminal(int(os.Stdin.Fd())) {
		return tui.Run(api)
	}
	return lineChat(api)
}

// lineChat reads one message per line from stdin and prints replies.
// Used when stdin is not a terminal.
func lineChat(api *client.Client) error {
	fmt.Println(chat.Greeting)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}

		result, err := api.Ask(context.Background(), message)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}

		fmt.Println(result.Reply)
		for _, ch := range result.Changes {
			fmt.Printf("  [%s] %s %s\n", ch.Kind, ch.Status, ch.Detail)
		}
	}
	return scanner.Err()
}
