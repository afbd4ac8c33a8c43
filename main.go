package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	"speech-coach/audio"
	"speech-coach/config"
	"speech-coach/reports"
	"speech-coach/utils"

	"github.com/joho/godotenv"
	"github.com/mdobak/go-xerrors"
	"github.com/spf13/cobra"
)

func main() {
	err := utils.CreateFolder("tmp")
	if err != nil {
		logger := utils.GetLogger()
		err := xerrors.New(err)
		ctx := context.Background()
		logger.ErrorContext(ctx, "Failed create tmp dir.", slog.Any("error", err))
	}

	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "speech-coach",
		Short:        "Score the delivery of recorded speech",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&configPath, "config", utils.GetEnv("SPEECHCOACH_CONFIG"), "analysis config file (yaml)")

	root.AddCommand(
		newServeCmd(&configPath),
		newAnalyzeCmd(&configPath),
		newConfigCmd(&configPath),
	)
	return root
}

func newServeCmd(configPath *string) *cobra.Command {
	var protocol, port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and socket.io server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := audio.CheckFFmpegAvailable(); err != nil {
				log.Printf("WARNING: %v\n", err)
				log.Println("The server will start but video and m4a uploads will fail until FFmpeg is installed.")
			} else {
				log.Println("FFmpeg is available")
			}

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			svc, err := newAnalysisService(cmd.Context(), cfg, serviceOptions{withStore: true, withCoach: true})
			if err != nil {
				return err
			}
			defer svc.Close()

			serve(svc, protocol, port)
			return nil
		},
	}
	cmd.Flags().StringVar(&protocol, "proto", "http", "Protocol to use (http or https)")
	cmd.Flags().StringVarP(&port, "port", "p", "5000", "Port to use")
	return cmd
}

func newAnalyzeCmd(configPath *string) *cobra.Command {
	var (
		asJSON         bool
		withCoach      bool
		store          bool
		transcriptPath string
		jobPath        string
	)

	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze one recording and print its score and feedback",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			transcript, err := readOptional(transcriptPath)
			if err != nil {
				return err
			}
			jobDescription, err := readOptional(jobPath)
			if err != nil {
				return err
			}

			svc, err := newAnalysisService(ctx, cfg, serviceOptions{withStore: store, withCoach: withCoach})
			if err != nil {
				return err
			}
			defer svc.Close()

			sig, err := audio.Load(ctx, args[0], audio.DefaultSampleRate)
			if err != nil {
				return err
			}

			record, err := svc.run(ctx, analysisRequest{
				Signal:         sig,
				Source:         filepath.Base(args[0]),
				Transcript:     transcript,
				JobDescription: jobDescription,
				Coach:          withCoach,
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(record)
			}

			if err := reports.WriteText(out, record.Analysis); err != nil {
				return err
			}
			if record.Critique != "" {
				fmt.Fprintf(out, "\nCoach:\n%s\n", record.Critique)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full analysis record as JSON")
	cmd.Flags().BoolVar(&withCoach, "coach", false, "ask Gemini for a written critique (needs GEMINI_API_KEY)")
	cmd.Flags().BoolVar(&store, "store", false, "persist the analysis to the history store")
	cmd.Flags().StringVar(&transcriptPath, "transcript", "", "text file with the transcript, passed to the coach")
	cmd.Flags().StringVar(&jobPath, "job", "", "text file with a job description, passed to the coach")
	return cmd
}

func newConfigCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect the analysis configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			out, err := config.Render(cfg)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	})
	return cmd
}

func readOptional(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}
