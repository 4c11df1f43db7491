package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/olsonja88/ICS499-Bears/internal/client"
)

var (
	askServerURL string
	askToken     string
)

var askCmd = &cobra.Command{
	Use:   "ask <message>",
	Short: "Ask the assistant a single question",
	Long: `Ask a single question and print the reply.

Examples:
  dancehall ask "Where does the tango come from?"
  dancehall ask --token $ADMIN_TOKEN "Add the samba from Brazil"`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().StringVar(&askServerURL, "server", "", "server URL (default from DANCEHALL_SERVER_URL)")
	askCmd.Flags().StringVar(&askToken, "token", "", "bearer credential")
}

func runAsk(cmd *cobra.Command, args []string) error {
	api := client.New(askServerURL, askToken)

	result, err := api.Ask(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	fmt.Println(result.Reply)
	for _, ch := range result.Changes {
		fmt.Printf("  [%s] %s %s\n", ch.Kind, ch.Status, ch.Detail)
	}
	return nil
}
