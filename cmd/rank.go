package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/jobs"
	"github.com/spigell/ats-scorer/internal/ranking"
	"github.com/spigell/ats-scorer/internal/resume"
)

const (
	PromptPrint            = "Print results"
	PromptReport           = "Report by job"
	PromptManualDismiss    = "Review and dismiss jobs in manual mode"
	PromptDismissAll       = "Append all jobs to exclude file"
	PromptResultsToFile    = "Dump results to file"
	PromptExit             = "Exit"
	PromptBack             = "back"
	PromptYes              = "Yes"
	PromptNo               = "No"
	excludeFileStepName    = "exclude_file"
	includeDismissedReason = "include-dismissed flag is set"
)

var errExit = errors.New("exit requested")

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Score a resume against many job descriptions and rank them",
	Run: func(cmd *cobra.Command, _ []string) {
		rank(cmd)
	},
}

func init() {
	rootCmd.AddCommand(rankCmd)

	rankCmd.Flags().StringP("resume", "r", "", "path to the resume JSON file")
	rankCmd.Flags().StringP("jobs", "f", "", "job description file or directory of them")
	rankCmd.Flags().Int("minimum-score", 0, "drop jobs scoring below this value")
	rankCmd.Flags().Int("concurrency", 0, "parallel scoring calls (default is the number of CPUs)")
	rankCmd.Flags().StringP("exclude-file", "e", "", "special file with dismissed jobs to exclude. Default is unset.")
	rankCmd.Flags().Bool("include-dismissed", false, "do not exclude jobs listed in the exclude file")
	rankCmd.Flags().Bool("rule-based", false, "skip AI scoring and use the rule-based scorer only")
	rankCmd.Flags().BoolP("interactive", "i", false, "review the ranking interactively")
	rankCmd.Flags().Bool("pretty", false, "indent the JSON result")

	rankCmd.MarkFlagRequired("resume")
	rankCmd.MarkFlagRequired("jobs")

	viper.BindPFlag("ranking.exclude-file", rankCmd.Flags().Lookup("exclude-file"))
	viper.BindPFlag("ranking.minimum-score", rankCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("ranking.concurrency", rankCmd.Flags().Lookup("concurrency"))
}

// rank is the batch command of the cli.
func rank(cmd *cobra.Command) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log := newLogger()
	defer log.Sync()

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config.Ranking, "", "  ")
	log.Debug(fmt.Sprintf("ranking with config: \n %s", pretty))

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

	jobsPath, _ := cmd.Flags().GetString("jobs")
	list, err := jobs.Load(jobsPath)
	if err != nil {
		log.Fatal("loading job descriptions", zap.String("path", jobsPath), zap.Error(err))
	}

	log.Info("loaded job descriptions", zap.Int("count", list.Len()), zap.Bool("ai_enabled", svc.AIEnabled()))

	if list.Len() == 0 {
		log.Info("exiting", zap.String("reason", "no job descriptions found"))
		return
	}

	steps := ranking.DefaultSteps()
	if includeDismissed, _ := cmd.Flags().GetBool("include-dismissed"); includeDismissed {
		ranking.DisableByName(steps, excludeFileStepName, includeDismissedReason)
	}

	ranked, err := ranking.Rank(ctx, config.Ranking, ranking.Deps{Logger: log, Scorer: svc, Resume: data}, steps, list)
	if err != nil {
		log.Fatal("ranking failed", zap.Error(err))
	}

	for _, status := range ranking.Describe(steps) {
		log.Debug("ranking step status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	indent, _ := cmd.Flags().GetBool("pretty")
	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		if err := writeJSON(cmd.OutOrStdout(), ranked, indent); err != nil {
			log.Fatal("writing results", zap.Error(err))
		}
		return
	}

	if len(ranked) == 0 {
		log.Info("exiting", zap.String("reason", "no jobs left after ranking"))
		return
	}

	session := &review{log: log, excludeFile: config.Ranking.ExcludeFile, ranked: ranked, indent: indent, cmd: cmd}
	if err := session.loop(); err != nil && !errors.Is(err, errExit) {
		log.Fatal("exiting", zap.Error(err))
	}
}

// review is the interactive loop over ranked jobs.
type review struct {
	log         *zap.Logger
	cmd         *cobra.Command
	excludeFile string
	ranked      []ranking.Ranked
	indent      bool
}

func (r *review) loop() error {
	for {
		if len(r.ranked) == 0 {
			r.log.Info("exiting", zap.String("reason", "no jobs left to review"))
			return errExit
		}

		r.log.Info("current list of jobs", zap.Int("count", len(r.ranked)))

		items := []string{PromptPrint, PromptReport, PromptManualDismiss}
		if r.excludeFile != "" {
			items = append(items, PromptDismissAll)
		}
		items = append(items, PromptResultsToFile, PromptExit)

		prompt := promptui.Select{Label: "What next?", Items: items}
		_, action, err := prompt.Run()
		if err != nil {
			return err
		}

		if err := r.handleAction(action); err != nil {
			return err
		}
	}
}

func (r *review) handleAction(action string) error {
	switch action {
	case PromptPrint:
		return writeJSON(r.cmd.OutOrStdout(), r.ranked, r.indent)
	case PromptReport:
		pretty, _ := json.MarshalIndent(ranking.Report(r.ranked), "", "  ")
		r.log.Info(string(pretty), zap.Int("jobs count", len(r.ranked)))
		return nil
	case PromptManualDismiss:
		return r.manualDismiss()
	case PromptDismissAll:
		if err := r.dismiss(r.ranked); err != nil {
			return err
		}
		r.ranked = nil
		return nil
	case PromptResultsToFile:
		filename, err := ranking.DumpToTmpFile(r.ranked)
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		r.log.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		r.log.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func (r *review) manualDismiss() error {
	for {
		items := make([]string, 0, len(r.ranked)+1)
		for _, ranked := range r.ranked {
			items = append(items, fmt.Sprintf("%s %d / %s", ranked.Job.ID, ranked.Result.Score, ranked.Job.Title))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, _, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if idx < 0 || idx >= len(r.ranked) {
			return nil
		}

		chosen := r.ranked[idx]
		jobID := chosen.Job.ID

		if err := writeJSON(r.cmd.OutOrStdout(), chosen.Result, true); err != nil {
			return err
		}

		confirm := promptui.Select{
			Label: fmt.Sprintf("Dismiss job %s?", jobID),
			Items: []string{PromptNo, PromptYes},
		}
		_, answer, err := confirm.Run()
		if err != nil {
			return err
		}
		if answer != PromptYes {
			continue
		}

		if err := r.dismiss([]ranking.Ranked{chosen}); err != nil {
			return err
		}
		r.ranked = ranking.Without(r.ranked, jobID)

		if len(r.ranked) == 0 {
			return nil
		}
	}
}

// dismiss records the jobs in the exclude file when one is configured.
func (r *review) dismiss(items []ranking.Ranked) error {
	if r.excludeFile == "" {
		r.log.Warn("exclude file is not set, dismissed jobs will show up again next run")
		return nil
	}

	excluded, err := jobs.LoadExcluded(r.excludeFile)
	if err != nil {
		return err
	}

	excluded.Append(jobs.ToExcluded(ranking.Jobs(items), ranking.Scores(items)))

	if err := excluded.ToFile(r.excludeFile); err != nil {
		return err
	}

	r.log.Info("appended to exclude file", zap.String("filename", r.excludeFile), zap.Int("count", len(items)))
	return nil
}
