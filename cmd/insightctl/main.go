package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL string
	accountID string
)

func main() {
	root := &cobra.Command{
		Use:   "insightctl",
		Short: "Operator CLI for the insight orchestrator",
	}
	root.PersistentFlags().StringVar(&serverURL, "server", envOr("ORCHESTRATOR_URL", "http://localhost:9020"), "orchestrator base URL")
	root.PersistentFlags().StringVar(&accountID, "account", "", "account id (required)")

	root.AddCommand(askCommand(), refreshCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func askCommand() *cobra.Command {
	var question string
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Ask an analytics question about an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" || question == "" {
				return fmt.Errorf("--account and --question are required")
			}
			payload := map[string]string{
				"account_id": accountID,
				"question":   question,
			}
			body, err := postJSON("/v1/chat/answer", payload)
			if err != nil {
				return err
			}

			var parsed struct {
				Reply    string `json:"reply"`
				Intent   string `json:"intent"`
				Mode     string `json:"mode"`
				Fallback bool   `json:"fallback"`
			}
			if err := json.Unmarshal(body, &parsed); err != nil {
				return fmt.Errorf("failed to parse reply: %w", err)
			}

			fmt.Printf("intent=%s mode=%s fallback=%v\n\n", parsed.Intent, parsed.Mode, parsed.Fallback)
			fmt.Println(parsed.Reply)
			return nil
		},
	}
	cmd.Flags().StringVar(&question, "question", "", "question text (required)")
	return cmd
}

func refreshCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "Queue a precomputed-analytics rebuild for an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if accountID == "" {
				return fmt.Errorf("--account is required")
			}
			body, err := postJSON("/internal/insights/refresh", map[string]string{"account_id": accountID})
			if err != nil {
				return err
			}
			fmt.Println(string(body))
			return nil
		},
	}
}

func postJSON(path string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Post(serverURL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
