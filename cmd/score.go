package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/jobs"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/resume"
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score a resume against a single job description",
	Run: func(cmd *cobra.Command, _ []string) {
		score(cmd)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("resume", "r", "", "path to the resume JSON file")
	scoreCmd.Flags().StringP("job", "f", "", "path to the job description (.txt, .md, .html or .json)")
	scoreCmd.Flags().Bool("rule-based", false, "skip AI scoring and use the rule-based scorer only")
	scoreCmd.Flags().Bool("pretty", false, "indent the JSON result")

	scoreCmd.MarkFlagRequired("resume")
	scoreCmd.MarkFlagRequired("job")
}

func score(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	ruleBased, _ := cmd.Flags().GetBool("rule-based")
	svc, err := newService(ctx, config, log, ruleBased)
	if err != nil {
		log.Fatal("building scoring service", zap.Error(err))
	}

	resumePath, _ := cmd.Flags().GetString("resume")
	data, err := resume.Load(resumePath)
	if err != nil {
		log.Fatal("loading resume", zap.String("path", resumePath), zap.Error(err))
	}

	jobPath, _ := cmd.Flags().GetString("job")
	job, err := loadSingleJob(jobPath)
	if err != nil {
		log.Fatal("loading job description", zap.String("path", jobPath), zap.Error(err))
	}

	log.Debug("scoring resume",
		zap.String(logger.FieldJobID, job.ID),
		zap.Bool("ai_enabled", svc.AIEnabled()),
	)

	result, err := svc.ComputeScore(ctx, data, job.Text)
	if err != nil {
		log.Fatal("scoring resume", zap.Error(err))
	}

	log.Info("resume scored",
		zap.String(logger.FieldJobID, job.ID),
		zap.String(logger.FieldStrategy, result.Strategy),
		zap.Int("score", result.Score),
	)

	pretty, _ := cmd.Flags().GetBool("pretty")
	if err := writeJSON(cmd.OutOrStdout(), result, pretty); err != nil {
		log.Fatal("writing result", zap.Error(err))
	}
}

// loadSingleJob loads path and requires exactly one job description in it.
func loadSingleJob(path string) (*jobs.Job, error) {
	list, err := jobs.Load(path)
	if err != nil {
		return nil, err
	}

	switch list.Len() {
	case 0:
		return nil, fmt.Errorf("no job description found in %s", path)
	case 1:
		if strings.TrimSpace(list.Items[0].Text) == "" {
			return nil, fmt.Errorf("no job description found in %s", path)
		}
		return list.Items[0], nil
	default:
		return nil, fmt.Errorf("%s holds %d job descriptions, use the rank command", path, list.Len())
	}
}

func writeJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
