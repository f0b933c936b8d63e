package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/spf13/cobra"
)

// demoConstraints are the weekly menu constraints of the demonstration.
const demoConstraints = "Le menu doit être végétarien, adapté pour une famille de 4 personnes, et utiliser " +
	"des ingrédients de saison pour le printemps. Inclure des options pour le déjeuner et le dîner, " +
	"ainsi que des suggestions de desserts légers."

func newRootCmd(a *app) *cobra.Command {
	var logLevel string
	var showStats bool

	root := &cobra.Command{
		Use:           "chefbot",
		Short:         "ChefBot, assistant culinaire français",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd.Context(), logLevel)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if showStats {
				a.printStats(cmd.ErrOrStderr())
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runDemo(cmd.Context(), cmd.OutOrStdout())
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides CHEFBOT_LOG_LEVEL")
	root.PersistentFlags().BoolVar(&showStats, "stats", false, "Affiche les compteurs d'appels et de tokens à la fin")

	root.AddCommand(
		newAskCmd(a),
		newManualCmd(a),
		newMenuCmd(a),
		newCrewCmd(a),
		newChatCmd(a),
		newEvalCmd(a),
		newCompareCmd(a),
		newToolsCmd(a),
		newServeCmd(a),
	)
	return root
}

// runDemo is the fixed demonstration: the fridge question through the tool loop, then a
// weekly menu through the staged pipeline.
func (a *app) runDemo(ctx context.Context, out io.Writer) error {
	toolModel, err := a.newModel(a.cfg.ToolModel)
	if err != nil {
		return err
	}
	model, err := a.newModel(a.cfg.Model)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "=== Partie 4 : appel d'outils manuel ===")
	fmt.Fprintf(out, "Question : %s\n\n", manual.DemoQuestion)
	agent := manual.NewAgent(toolModel, nil).
		WithMaxIterations(a.cfg.MaxIterations).
		WithSink(a.sink).
		WithLogger(a.logger)
	answer, err := agent.Run(ctx, manual.DemoQuestion)
	if err != nil {
		return fmt.Errorf("tool loop: %w", err)
	}
	fmt.Fprintf(out, "%s\n\n", answer)

	fmt.Fprintln(out, "=== Partie 2 : menu hebdomadaire ===")
	fmt.Fprintf(out, "Contraintes : %s\n\n", demoConstraints)
	pipeline := staged.NewPipeline(model).WithSink(a.sink).WithLogger(a.logger)
	menu, err := generateMenu(ctx, pipeline, demoConstraints)
	if err != nil {
		return err
	}
	return printJSON(out, menu)
}
