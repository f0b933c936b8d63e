package main

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rickchristie/chefbot"
	"github.com/rickchristie/chefbot/agents/ask"
	"github.com/rickchristie/chefbot/agents/crew"
	"github.com/rickchristie/chefbot/agents/manual"
	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rickchristie/chefbot/server"
	"github.com/rickchristie/chefbot/toolchain"
	"github.com/spf13/cobra"
)

func newAskCmd(a *app) *cobra.Command {
	var season string
	var temperature float64

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Pose une question au chef de saison (Partie 1)",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.newModel(a.cfg.Model)
			if err != nil {
				return err
			}
			s := chefbot.Season(season)
			if s == "" {
				s = a.clock.Season()
			}
			question := strings.Join(args, " ")
			if question == "" {
				question = ask.ExampleQuestion(s)
			}

			agent := ask.NewAgent(model).
				WithTimeProvider(a.clock).
				WithSink(a.sink).
				WithLogger(a.logger)
			answer, err := agent.Ask(cmd.Context(), question, s, temperature)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), answer)
			return nil
		},
	}
	cmd.Flags().StringVar(&season, "season", "", "Saison (printemps, été, automne, hiver); par défaut la saison courante")
	cmd.Flags().Float64Var(&temperature, "temperature", ask.DefaultTemperature, "Température d'échantillonnage")
	return cmd
}

func newManualCmd(a *app) *cobra.Command {
	var maxIterations int
	var allTools bool
	var verbose bool

	cmd := &cobra.Command{
		Use:   "manual [question]",
		Short: "Boucle d'appel d'outils manuelle sur le frigo (Partie 4)",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.newModel(a.cfg.ToolModel)
			if err != nil {
				return err
			}
			question := strings.Join(args, " ")
			if question == "" {
				question = manual.DemoQuestion
			}
			registry := toolchain.Fridge()
			if allTools {
				registry = toolchain.Kitchen()
			}
			if maxIterations <= 0 {
				maxIterations = a.cfg.MaxIterations
			}

			agent := manual.NewAgent(model, registry).
				WithMaxIterations(maxIterations).
				WithSink(a.sink).
				WithLogger(a.logger)
			res, err := agent.RunDetailed(cmd.Context(), question)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, verbose)
			return nil
		},
	}
	cmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Nombre maximal d'appels au modèle; par défaut CHEFBOT_MAX_ITERATIONS")
	cmd.Flags().BoolVar(&allTools, "all-tools", false, "Ajoute menu_db et calculate aux outils du frigo")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Affiche les appels d'outils")
	return cmd
}

func newMenuCmd(a *app) *cobra.Command {
	var format string
	var attempts int

	cmd := &cobra.Command{
		Use:   "menu [contraintes]",
		Short: "Génère un menu en trois étapes: plan, exécution, synthèse (Parties 2 et 7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			f, ok := staged.FormatByName(format)
			if !ok {
				return fmt.Errorf("unknown menu format %q", format)
			}
			model, err := a.newModel(a.cfg.Model)
			if err != nil {
				return err
			}
			constraints := strings.Join(args, " ")
			if constraints == "" {
				constraints = demoConstraints
			}

			pipeline := staged.NewPipeline(model).
				WithMenuFormat(f).
				WithAttempts(attempts).
				WithSink(a.sink).
				WithLogger(a.logger)
			menu, err := generateMenu(cmd.Context(), pipeline, constraints)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), menu)
		},
	}
	cmd.Flags().StringVar(&format, "format", staged.WeeklyMenu.Name, "Format du menu: weekly_menu ou event_menu")
	cmd.Flags().IntVar(&attempts, "attempts", staged.DefaultAttempts, "Tentatives par étape de planification et de synthèse")
	return cmd
}

func newCrewCmd(a *app) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "crew [demande]",
		Short: "Système multi-agent: manager et spécialistes (Partie 6)",
		RunE: func(cmd *cobra.Command, args []string) error {
			model, err := a.newModel(a.cfg.ToolModel)
			if err != nil {
				return err
			}
			query := strings.Join(args, " ")
			if query == "" {
				query = crew.ComplexQuery
			}

			c, err := crew.New(model)
			if err != nil {
				return err
			}
			res, err := c.WithSink(a.sink).WithLogger(a.logger).RunDetailed(cmd.Context(), query)
			if err != nil {
				return err
			}
			printResult(cmd.OutOrStdout(), res, verbose)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Affiche les délégations")
	return cmd
}

func newToolsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Liste les outils disponibles",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, t := range toolchain.Kitchen().Tools() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s\n", t.Name(), t.Description())
			}
			return nil
		},
	}
}

func newServeCmd(a *app) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose les agents en HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := a.services()
			if err != nil {
				return err
			}
			if port <= 0 {
				port = a.cfg.Port
			}

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", port),
				Handler:           server.NewRouter(svc, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().Int("port", port).Msg("ChefBot HTTP server listening")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-cmd.Context().Done():
				a.logger.Info().Msg("shutting down HTTP server")
				ctx, cancel := contextWithShutdownTimeout()
				defer cancel()
				return srv.Shutdown(ctx)
			}
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "Port d'écoute; par défaut CHEFBOT_PORT")
	return cmd
}

// services builds every agent the HTTP surface exposes.
func (a *app) services() (server.Services, error) {
	model, err := a.newModel(a.cfg.Model)
	if err != nil {
		return server.Services{}, err
	}
	toolModel, err := a.newModel(a.cfg.ToolModel)
	if err != nil {
		return server.Services{}, err
	}
	c, err := crew.New(toolModel)
	if err != nil {
		return server.Services{}, err
	}

	pipelines := make(map[string]*staged.Pipeline, 2)
	for _, f := range []staged.MenuFormat{staged.WeeklyMenu, staged.EventMenu} {
		pipelines[f.Name] = staged.NewPipeline(model).WithMenuFormat(f).WithSink(a.sink).WithLogger(a.logger)
	}

	return server.Services{
		Ask: ask.NewAgent(model).WithTimeProvider(a.clock).WithSink(a.sink).WithLogger(a.logger),
		Manual: manual.NewAgent(toolModel, toolchain.Kitchen()).
			WithMaxIterations(a.cfg.MaxIterations).
			WithSink(a.sink).
			WithLogger(a.logger),
		Crew:      c.WithSink(a.sink).WithLogger(a.logger),
		Pipelines: pipelines,
		Stats:     a.stats,
	}, nil
}
