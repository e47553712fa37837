package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"mdp-backend/algorithms"
	"mdp-backend/models"
	"mdp-backend/services"

	"github.com/spf13/cobra"
)

var (
	planFile   string
	planRandom int
	planSeed   int64
	planPretty bool
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Plan one request and print the /path response JSON",
	Long: `Reads a /path request (JSON) from --file or stdin, or generates a random
valid obstacle layout with --random, and prints the planner response.

Planner settings come from the same PLANNER_* environment variables as "serve".`,
	Args: cobra.NoArgs,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planFile, "file", "f", "", "request JSON file (- for stdin)")
	planCmd.Flags().IntVar(&planRandom, "random", 0, "generate N random obstacles instead of reading a request")
	planCmd.Flags().Int64Var(&planSeed, "seed", 0, "random seed for --random (0 = time based)")
	planCmd.Flags().BoolVar(&planPretty, "pretty", true, "indent output JSON")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	services.LoadEnv()
	cfg := services.LoadPlannerConfig()

	req, err := loadPlanRequest(cmd.InOrStdin(), cfg)
	if err != nil {
		return err
	}

	services.InitLogging(0, 0)
	defer services.StopLogging()

	svc := services.NewPlanService(algorithms.NewPlanner(cfg), nil)
	resp := models.PathResponse{}
	outcome, err := svc.Plan(context.Background(), req, "cli")
	if err != nil {
		msg := err.Error()
		resp.Error = &msg
	} else {
		resp.Data = outcome.Data
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if planPretty {
		enc.SetIndent("", "  ")
	}
	if encErr := enc.Encode(resp); encErr != nil {
		return encErr
	}
	return err
}

func loadPlanRequest(stdin io.Reader, cfg algorithms.Config) (models.PathRequest, error) {
	var req models.PathRequest

	if planRandom > 0 {
		gen := services.NewScenarioGenerator(cfg, algorithms.NewPose(1, 1, algorithms.North))
		scenario, err := gen.Generate(planRandom, planSeed)
		if err != nil {
			return req, err
		}
		return scenario.Request, nil
	}

	var r io.Reader = stdin
	if planFile != "" && planFile != "-" {
		f, err := os.Open(planFile)
		if err != nil {
			return req, fmt.Errorf("failed to open request: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return req, fmt.Errorf("failed to parse request: %w", err)
	}
	return req, nil
}
