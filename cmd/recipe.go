package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/kyle-brindley/turbo-turtle/pkg/plan"
	"github.com/spf13/cobra"
)

var recipeDryRun bool

var recipeCmd = &cobra.Command{
	Use:   "recipe",
	Short: "Evaluate, validate and build recipe files",
	Long: `A recipe is a lisp file declaring parts and the steps applied to them:

  (defaults :model-name "Turtle" :global-seed 0.25)
  (sphere "ball" :inner-radius 1 :outer-radius 2 :quadrant :upper)
  (partition "ball" :center (vec3 0 0 0))
  (mesh "ball" :element-type "S3R")
  (export "ball" :output-file "turtle.inp" :assembly true)

Recipes are always built with the sdfx kernel.`,
}

var recipeEvaluateCmd = &cobra.Command{
	Use:   "evaluate FILE",
	Short: "Print the plan a recipe evaluates to",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadRecipe(args[0])
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(p)
	},
}

var recipeValidateCmd = &cobra.Command{
	Use:   "validate FILE",
	Short: "Check a recipe without building it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadRecipe(args[0])
		if err != nil {
			return err
		}
		return report(cmd.OutOrStdout(), p)
	},
}

var recipeBuildCmd = &cobra.Command{
	Use:   "build FILE",
	Short: "Build every part of a recipe",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadRecipe(args[0])
		if err != nil {
			return err
		}
		if recipeDryRun {
			return report(cmd.OutOrStdout(), p)
		}
		return runPlan(cmd, p)
	},
}

// report prints the validation findings and the parts of p.
func report(out io.Writer, p *plan.Plan) error {
	res := plan.ValidateAll(p)
	for _, w := range res.Warnings {
		fmt.Fprintln(out, w)
	}
	for _, e := range res.Errors {
		fmt.Fprintln(out, e)
	}
	if !res.OK() {
		return errors.New("recipe is not valid")
	}
	for _, part := range p.Parts() {
		fmt.Fprintf(out, "%s %s: %d steps\n", part.Kind, part.Name, len(p.StepsFor(part.ID)))
	}
	return nil
}

func init() {
	rootCmd.AddCommand(recipeCmd)
	recipeCmd.AddCommand(recipeEvaluateCmd, recipeValidateCmd, recipeBuildCmd)
	recipeBuildCmd.Flags().BoolVar(&recipeDryRun, "dry-run", false, "Validate and list the parts without building")
}
