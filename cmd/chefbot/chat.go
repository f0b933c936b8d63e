package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/spf13/cobra"
)

func newChatCmd(a *app) *cobra.Command {
	var restaurant bool
	var demo bool

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Conversation multi-tours avec les outils (Partie 5)",
		Long: "Conversation multi-tours: l'historique est conservé d'un message à l'autre.\n" +
			"Tapez 'reset' pour l'effacer, 'exit' ou 'quit' pour sortir.",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.newModel(a.cfg.ToolModel)
			if err != nil {
				return err
			}

			registry, prompt := toolchain.Kitchen(), manual.DefaultSystemPrompt
			if restaurant || demo {
				registry, prompt = toolchain.Restaurant(), manual.RestaurantSystemPrompt
			}
			agent := manual.NewAgent(model, registry).
				WithSystemPrompt(prompt).
				WithMaxIterations(a.cfg.MaxIterations).
				WithTrace("chefbot_chat", chefbot.TagChefBot, "Partie 5").
				WithSink(a.sink).
				WithLogger(a.logger)
			session := agent.NewSession()

			if demo {
				return playDialogue(cmd.Context(), cmd.OutOrStdout(), session, manual.RestaurantDialogue)
			}
			return chatLoop(cmd.Context(), cmd.OutOrStdout(), session)
		},
	}
	cmd.Flags().BoolVar(&restaurant, "restaurant", false, "Parle au maître d'hôtel (menu_db et calculate)")
	cmd.Flags().BoolVar(&demo, "demo", false, "Joue le dialogue scripté avec le maître d'hôtel")
	return cmd
}

// playDialogue sends each message in turn over one session.
func playDialogue(ctx context.Context, out io.Writer, session *manual.Session, messages []string) error {
	for _, msg := range messages {
		fmt.Fprintf(out, "Client : %s\n", msg)
		answer, err := session.Send(ctx, msg)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "ChefBot : %s\n\n", answer)
	}
	return nil
}

func chatLoop(ctx context.Context, out io.Writer, session *manual.Session) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt: "Vous : ",
		Stdout: out,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()

	for {
		input, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
				fmt.Fprintln(out, "Au revoir !")
				return nil
			}
			return fmt.Errorf("failed to read input: %w", err)
		}

		input = strings.TrimSpace(input)
		switch input {
		case "":
			continue
		case "exit", "quit":
			fmt.Fprintln(out, "Au revoir !")
			return nil
		case "reset":
			session.Reset()
			fmt.Fprintln(out, "Historique effacé.")
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		answer, err := session.Send(ctx, input)
		if err != nil {
			fmt.Fprintf(out, "Erreur : %v\n", err)
			continue
		}
		fmt.Fprintf(out, "ChefBot : %s\n\n", answer)
	}
}
