package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/nbryan/concierge/internal/conversation"
	"github.com/nbryan/concierge/internal/transcript"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the assistant in an interactive session",
	Long: `Starts a terminal conversation. Type requests in plain language.

Special input:
  +       approve the assistant's last action
  -       flag the assistant's last action as wrong
  exit    leave the session`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := loadConfig()
		exitOnError(err)

		application, err := buildApp(cfg)
		exitOnError(err)
		defer application.Close()

		runChat(application)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(application *app) {
	ctx := context.Background()
	fmt.Println("concierge is listening. Type 'exit' to leave.")

	var lastActionTurn string

	for {
		prompt := promptui.Prompt{Label: "you"}
		text, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D end the session.
			return
		}
		text = strings.TrimSpace(text)

		switch {
		case text == "":
			continue
		case text == "exit" || text == "quit":
			return
		case text == "+" || text == "-":
			if lastActionTurn == "" {
				fmt.Println("concierge: nothing to react to yet.")
				continue
			}
			verdict := transcript.VerdictUp
			if text == "-" {
				verdict = transcript.VerdictDown
			}
			promptTurn, err := application.manager.React(ctx, lastActionTurn, verdict)
			if err != nil {
				fmt.Printf("concierge: %v\n", err)
				continue
			}
			if promptTurn != nil {
				fmt.Printf("concierge: %s\n", promptTurn.Text)
			} else {
				fmt.Println("concierge: noted, thanks.")
			}
			continue
		}

		turn, err := application.manager.Submit(ctx, text)
		if errors.Is(err, conversation.ErrBusy) {
			fmt.Println("concierge: still working on the last one.")
			continue
		}
		if err != nil {
			fmt.Printf("concierge: %v\n", err)
			continue
		}

		fmt.Printf("concierge: %s\n", turn.Text)
		if turn.ActionKind != "" {
			lastActionTurn = turn.ID
		}
	}
}
