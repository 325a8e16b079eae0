package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/oratohq/orato/internal/retriever"
)

const previewLength = 200

var queryCmd = &cobra.Command{
	Use:   "query [question]",
	Short: "Ask the knowledge base a question",
	Long: `Answers a free-text question with the single most relevant slide
fragment. With no argument, starts an interactive loop.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().Bool("json", false, "output the result as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	embedder, err := createEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openStore(cfg, embedder)
	if err != nil {
		return err
	}

	ret := buildRetriever(cfg, embedder, store)
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if len(args) == 1 {
		return answerOnce(ctx, ret, args[0], jsonOutput)
	}
	return interactiveLoop(ctx, ret)
}

func answerOnce(ctx context.Context, ret *retriever.Retriever, query string, jsonOutput bool) error {
	result, err := ret.Retrieve(ctx, query)
	if err != nil {
		return fmt.Errorf("retrieval failed: %w", err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if result == nil {
			return enc.Encode(map[string]bool{"match": false})
		}
		return enc.Encode(result)
	}

	printResult(result)
	return nil
}

func interactiveLoop(ctx context.Context, ret *retriever.Retriever) error {
	prompt := promptui.Prompt{Label: "Query"}

	for {
		query, err := prompt.Run()
		if err != nil {
			// Ctrl-C / Ctrl-D end the session.
			if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
				return nil
			}
			return err
		}
		if strings.TrimSpace(query) == "" {
			continue
		}

		result, err := ret.Retrieve(ctx, query)
		if err != nil {
			// A failed retrieval is not the same as an empty one; say so
			// and keep the loop alive.
			fmt.Fprintf(os.Stderr, "Retrieval failed: %v\n", err)
			continue
		}
		printResult(result)
	}
}

func printResult(result *retriever.Result) {
	if result == nil {
		fmt.Println("No result found")
		return
	}

	preview := result.Content
	if len(preview) > previewLength {
		preview = preview[:previewLength] + "..."
	}

	fmt.Println("\n--- RESULT ---")
	fmt.Printf("Intent   : %s\n", result.Intent)
	fmt.Printf("Slide    : %d\n", result.Slide)
	fmt.Printf("Type     : %s\n", result.Type)
	fmt.Printf("Section  : %s\n", result.Section)
	fmt.Printf("BBox     : (%.3f, %.3f, %.3f, %.3f)\n", result.BBox.X, result.BBox.Y, result.BBox.W, result.BBox.H)
	fmt.Printf("Title    : %s\n", result.Title)
	fmt.Printf("Content  : %s\n", preview)
}
