package main

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/deskd/deskd/internal/config"
)

// --- ask ---

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Submit a customer inquiry to the support pipeline",
	Long: `Submit a customer inquiry to the support pipeline.

Examples:
  deskd ask "How do I reset my password?" --email jo@example.com
  deskd ask "Why was I charged twice?" --email billing@example.com`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		question := strings.Join(args, " ")
		email, _ := cmd.Flags().GetString("email")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		printStep("Submitting inquiry...")
		resp, err := client.post(cmd.Context(), "/api/support/inquiry", map[string]any{
			"question":       question,
			"customer_email": email,
		})
		if err != nil {
			return err
		}

		var result struct {
			InquiryID        string  `json:"inquiry_id"`
			Category         string  `json:"category"`
			Response         string  `json:"response"`
			ValidationStatus string  `json:"validation_status"`
			FAQMatches       int     `json:"faq_matches"`
			Logged           bool    `json:"logged"`
			ElapsedMs        float64 `json:"elapsed_ms"`
		}
		if err := decodeJSON(resp, &result); err != nil {
			return err
		}

		printStatus("Inquiry", "%s", result.InquiryID)
		printStatus("Category", "%s", result.Category)
		printStatus("Validation", "%s", result.ValidationStatus)
		printStatus("FAQ matches", "%d", result.FAQMatches)
		printStatus("Logged", "%t", result.Logged)
		fmt.Printf("\n%s\n", result.Response)
		return nil
	},
}

func init() {
	askCmd.Flags().String("email", "", "customer email address")
	askCmd.MarkFlagRequired("email")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the FAQ knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		category, _ := cmd.Flags().GetString("category")
		topK, _ := cmd.Flags().GetInt("top-k")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		path := fmt.Sprintf("/api/support/faq/search?q=%s&top_k=%d", url.QueryEscape(query), topK)
		if category != "" {
			path += "&category=" + url.QueryEscape(category)
		}
		resp, err := client.get(cmd.Context(), path)
		if err != nil {
			return err
		}

		var body struct {
			Results []struct {
				Category string  `json:"category"`
				Question string  `json:"question"`
				Answer   string  `json:"answer"`
				Score    float64 `json:"score"`
			} `json:"results"`
			Count int `json:"count"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if body.Count == 0 {
			fmt.Println("No matching FAQ entries.")
			return nil
		}

		for i, r := range body.Results {
			fmt.Printf("\n%s [%s, score %.1f]\n", colorize(colorBold, fmt.Sprintf("Result %d", i+1)), r.Category, r.Score)
			fmt.Printf("  Q: %s\n", r.Question)
			fmt.Printf("  A: %s\n", r.Answer)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().String("category", "", "restrict to one category (account, billing, technical, general)")
	searchCmd.Flags().Int("top-k", 3, "maximum number of results")
}

// --- responses ---

var responsesCmd = &cobra.Command{
	Use:   "responses",
	Short: "Show recently sent responses",
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), fmt.Sprintf("/api/support/responses?count=%d", count))
		if err != nil {
			return err
		}

		var body struct {
			Responses []string `json:"responses"`
			Count     int      `json:"count"`
		}
		if err := decodeJSON(resp, &body); err != nil {
			return err
		}

		if body.Count == 0 {
			fmt.Println("No responses sent yet.")
			return nil
		}

		for _, r := range body.Responses {
			fmt.Println(r)
			fmt.Println(strings.Repeat("-", 40))
		}
		return nil
	},
}

func init() {
	responsesCmd.Flags().Int("count", 5, "number of responses to show")
}

// --- stats ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show inquiry statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}

		resp, err := client.get(cmd.Context(), "/api/support/stats")
		if err != nil {
			return err
		}

		var stats struct {
			TotalInquiries    int            `json:"total_inquiries"`
			ByCategory        map[string]int `json:"by_category"`
			AvgResponseLength float64        `json:"avg_response_length"`
			UptimeSeconds     float64        `json:"uptime_seconds"`
		}
		if err := decodeJSON(resp, &stats); err != nil {
			return err
		}

		printStatus("Total inquiries", "%d", stats.TotalInquiries)
		for cat, n := range stats.ByCategory {
			printStatus("  "+cat, "%d", n)
		}
		printStatus("Avg response length", "%.0f chars", stats.AvgResponseLength)
		printStatus("Uptime", "%.0fs", stats.UptimeSeconds)
		return nil
	},
}

// --- config ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or update configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		keys := config.ShowAll(cfg)
		for _, k := range keys {
			fmt.Printf("  %s = %s\n", colorize(colorBold, k.Key), k.Value)
		}
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, value := args[0], args[1]

		if err := config.SetKey(key, value); err != nil {
			return err
		}

		printSuccess("Set %s = %s", key, value)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
