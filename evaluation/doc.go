// Package evaluation scores ChefBot outputs against datasets.
//
// Datasets are YAML documents embedded in the binary ([MenuDatasetName] and
// [MultiAgentDatasetName]); each item carries input constraints, a free-form expected output
// and metadata. An [Experiment] runs a [Task] over every item and passes each output to its
// [Evaluator]s:
//
//   - [RuleEvaluator] checks must_avoid and must_include keywords.
//   - [Judge] asks a model to grade the output on a [Rubric] and parses its JSON reply.
//
// [CompareModels] runs the same experiment once per model and summarizes per-criterion means.
//
//	ds, _ := evaluation.LoadDataset(evaluation.MenuDatasetName)
//	exp := evaluation.NewExperiment(ds.Name,
//	    evaluation.PipelineTask(pipeline),
//	    evaluation.RuleEvaluator{},
//	    evaluation.NewJudge(model, evaluation.MenuRubric))
//	res, err := exp.Run(ctx, ds)
package evaluation
