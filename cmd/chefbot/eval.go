package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/rickchristie/chefbot/agents/staged"
	"github.com/rickchristie/chefbot/evaluation"
	"github.com/spf13/cobra"
)

// ruleCriteria are the scores reported by evaluation.RuleEvaluator.
var ruleCriteria = []string{"avoid_score", "include_ratio", "overall_rule"}

func newEvalCmd(a *app) *cobra.Command {
	var datasetFile string
	var noJudge bool

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Évalue le pipeline de menus sur le jeu de données (Partie 3)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(datasetFile, evaluation.MenuDatasetName)
			if err != nil {
				return err
			}
			model, err := a.newModel(a.cfg.Model)
			if err != nil {
				return err
			}

			pipeline := staged.NewPipeline(model).WithSink(a.sink).WithLogger(a.logger)
			evaluators := []evaluation.Evaluator{evaluation.RuleEvaluator{}}
			criteria := append([]string(nil), ruleCriteria...)
			if !noJudge {
				judge := evaluation.NewJudge(model, evaluation.MenuRubric).WithSink(a.sink).WithLogger(a.logger)
				evaluators = append(evaluators, judge)
				criteria = append(criteria, evaluation.MenuRubric.Criteria...)
			}

			exp := evaluation.NewExperiment(ds.Name, evaluation.PipelineTask(pipeline), evaluators...).
				WithDescription("Évaluation du pipeline de menus ChefBot").
				WithMetadata(map[string]any{"model": a.cfg.Model}).
				WithTimeProvider(a.clock).
				WithSink(a.sink).
				WithLogger(a.logger)
			res, err := exp.Run(cmd.Context(), ds)
			if err != nil {
				return err
			}

			printExperiment(cmd.OutOrStdout(), res, criteria)
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "Fichier YAML de jeu de données; par défaut "+evaluation.MenuDatasetName)
	cmd.Flags().BoolVar(&noJudge, "no-judge", false, "N'utilise que les règles, sans juge LLM")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var datasetFile string
	var models []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare des modèles sur le jeu de données multi-agent (Partie 7)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := loadDataset(datasetFile, evaluation.MultiAgentDatasetName)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				models = a.cfg.CompareModels
			}
			judgeModel, err := a.newModel(a.cfg.Model)
			if err != nil {
				return err
			}
			judge := evaluation.NewJudge(judgeModel, evaluation.MultiAgentRubric).WithSink(a.sink).WithLogger(a.logger)

			factory := func(name string) (*evaluation.Experiment, error) {
				model, err := a.newModel(name)
				if err != nil {
					return nil, err
				}
				pipeline := staged.NewPipeline(model).
					WithMenuFormat(staged.EventMenu).
					WithSink(a.sink).
					WithLogger(a.logger)
				prefix := ds.Name + "-" + evaluation.ShortModelName(name)
				return evaluation.NewExperiment(prefix, evaluation.PipelineTask(pipeline), judge).
					WithDescription("Partie 7 comparison for model " + name).
					WithMetadata(map[string]any{"model": name}).
					WithTimeProvider(a.clock).
					WithSink(a.sink).
					WithLogger(a.logger), nil
			}

			cmp, runs, err := evaluation.CompareModels(cmd.Context(), ds, models, evaluation.MultiAgentRubric.Criteria, factory)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, run := range runs {
				if run.Err != nil {
					fmt.Fprintf(out, "%s: échec (%v)\n", run.Model, run.Err)
					continue
				}
				fmt.Fprintf(out, "%s: %s\n", run.Model, formatAggregates(cmp.Aggregates[run.Model], cmp.Criteria))
			}
			if cmp.Analysis != "" {
				fmt.Fprintln(out, cmp.Analysis)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&datasetFile, "dataset", "", "Fichier YAML de jeu de données; par défaut "+evaluation.MultiAgentDatasetName)
	cmd.Flags().StringSliceVar(&models, "models", nil, "Modèles à comparer; par défaut CHEFBOT_COMPARE_MODELS")
	return cmd
}

func loadDataset(file, fallback string) (*evaluation.Dataset, error) {
	if file != "" {
		return evaluation.LoadDatasetFile(file)
	}
	return evaluation.LoadDataset(fallback)
}

func printExperiment(out io.Writer, res *evaluation.ExperimentResult, criteria []string) {
	fmt.Fprintf(out, "Expérience %s (%s)\n", res.Name, res.Dataset)
	for _, item := range res.Items {
		if item.Error != "" {
			fmt.Fprintf(out, "  %-14s erreur: %s\n", item.Item.ID, item.Error)
			continue
		}
		var parts []string
		for _, ev := range item.Evaluations {
			parts = append(parts, fmt.Sprintf("%s=%g", ev.Name, ev.Value))
		}
		fmt.Fprintf(out, "  %-14s %s\n", item.Item.ID, strings.Join(parts, " "))
	}
	fmt.Fprintf(out, "Moyennes: %s\n", formatAggregates(evaluation.Aggregate(res, criteria), criteria))
}

func formatAggregates(agg evaluation.Aggregates, criteria []string) string {
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = fmt.Sprintf("%s=%g", c, agg[c])
	}
	return strings.Join(parts, " ")
}
