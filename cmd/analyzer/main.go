// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// analyzer is a small CLI client for the code-analyzer service.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/CodeAnalyzer/pkg/logging"
)

var (
	serverURL string
	apiKey    string
	sessionID string

	bugType  string
	severity int
	numBugs  int
)

var httpClient = &http.Client{Timeout: 4 * time.Minute}

var rootCmd = &cobra.Command{
	Use:   "analyzer",
	Short: "Client for the code-analyzer service",
}

func main() {
	logging.Setup(logging.Config{Service: "analyzer-cli", Level: logging.LevelFromEnv()})
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}

func init() {
	defaultServer := os.Getenv("ANALYZER_URL")
	if defaultServer == "" {
		defaultServer = "http://localhost:8000"
	}
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "analyzer service base URL")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "model API key for this request")
	rootCmd.PersistentFlags().StringVar(&sessionID, "session", "", "snippet session to target")

	injectCmd.Flags().StringVar(&bugType, "bug-type", "", "type of bug to inject")
	injectCmd.Flags().IntVar(&severity, "severity", 5, "severity level 1-5")
	injectCmd.Flags().IntVar(&numBugs, "count", 2, "number of bugs to inject")

	rootCmd.AddCommand(healthCmd, loadCmd, analyzeCmd, metricsCmd, injectCmd)
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check service liveness",
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := httpClient.Get(serverURL + "/health")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		return printBody(resp.Body)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load <file> [file...]",
	Short: "Store code snippets for later analysis",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snippets := make([]string, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("reading %s: %w", path, err)
			}
			snippets = append(snippets, string(data))
		}
		return post("/rag/code-input", map[string]any{
			"code_snippets": snippets,
			"session_id":    sessionID,
		})
	},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze code for issues",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := codeRequestBody(args)
		if err != nil {
			return err
		}
		return post("/rag/analyze-code", body)
	},
}

var metricsCmd = &cobra.Command{
	Use:   "metrics [file]",
	Short: "Derive quality metrics for code",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := codeRequestBody(args)
		if err != nil {
			return err
		}
		return post("/rag/code-metrics", body)
	},
}

var injectCmd = &cobra.Command{
	Use:   "inject [file]",
	Short: "Inject bugs into code for testing",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		body, err := codeRequestBody(args)
		if err != nil {
			return err
		}
		if bugType != "" {
			body["bug_type"] = bugType
		}
		body["severity_level"] = severity
		body["num_bugs"] = numBugs
		return post("/rag/inject-bugs", body)
	},
}

// codeRequestBody builds the shared request body: inline code from the
// file argument when given, otherwise the stored session snippets.
func codeRequestBody(args []string) (map[string]any, error) {
	body := map[string]any{
		"api_key":    apiKey,
		"session_id": sessionID,
	}
	if len(args) == 1 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", args[0], err)
		}
		body["code"] = string(data)
	}
	return body, nil
}

func post(path string, body map[string]any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(serverURL+path, "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %s: %s", resp.Status, data)
	}
	return printBody(resp.Body)
}

// printBody pretty-prints a JSON response to stdout.
func printBody(r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, "", "  "); err != nil {
		fmt.Println(string(data))
		return nil
	}
	fmt.Println(out.String())
	return nil
}
