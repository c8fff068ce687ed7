package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bryanwahyu/cyberrisk-advisor/internal/domain/analysis"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		file string
		req  analysis.Request
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze one batch of logs and print the JSON result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// stdout carries the result
			cfg, err := loadConfig("stderr")
			if err != nil {
				return err
			}

			logs, err := readLogs(file, cmd.InOrStdin())
			if err != nil {
				return err
			}
			req.Logs = logs

			svc := newService(cfg)
			svc.FollowCaller = true
			res, err := svc.Analyze(cmd.Context(), req)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(res.Response)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "-", `log file to analyze ("-" reads stdin)`)
	cmd.Flags().StringVarP(&req.Environment, "environment", "e", "", "where the logs came from (AWS, GCP, Windows AD...)")
	cmd.Flags().StringVarP(&req.Question, "question", "q", "", "analyst focus question")
	return cmd
}

func readLogs(path string, stdin io.Reader) (string, error) {
	if path == "" || path == "-" {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}
