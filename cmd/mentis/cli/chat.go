package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Ask questions about your diary",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, _, err := openMentis()
		if err != nil {
			return err
		}
		defer m.Close()

		return runChatLoop(cmd.Context(), m, os.Stdin, os.Stdout)
	},
}

type chatter interface {
	Chat(ctx context.Context, query string) (string, error)
}

// runChatLoop drives the interactive session. Exit tokens quit/exit/q are
// matched case-insensitively; empty input reprompts; a failing question
// keeps the session alive.
func runChatLoop(ctx context.Context, m chatter, in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, "Mentis initialized - Advanced semantic diary analysis!")
	fmt.Fprintln(out, "Type 'quit' to exit")
	fmt.Fprintln(out)

	frame := strings.Repeat("=", 80)
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Ask Mentis about your diary: ")
		if !scanner.Scan() {
			fmt.Fprintln(out, "\nGoodbye from Mentis!")
			return scanner.Err()
		}

		query := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(query) {
		case "quit", "exit", "q":
			fmt.Fprintln(out, "Goodbye from Mentis!")
			return nil
		case "":
			fmt.Fprintln(out, "Please enter a question.")
			continue
		}

		fmt.Fprintln(out, "\nMentis is analyzing your semantic knowledge graph...")

		response, err := m.Chat(ctx, query)
		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
			fmt.Fprintln(out, "Please try again.")
			fmt.Fprintln(out)
			continue
		}

		fmt.Fprintln(out, "\n"+frame)
		fmt.Fprintln(out, "MENTIS RESPONSE")
		fmt.Fprintln(out, frame)
		fmt.Fprintln(out, response)
		fmt.Fprintln(out, "\n"+frame)
		fmt.Fprintln(out)
	}
}
