package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/iho/gobudget/internal/adapter/http/dto"
)

type options struct {
	baseURL string
	timeout time.Duration
	json    bool
}

func (o *options) client() *apiClient {
	return newAPIClient(strings.TrimRight(o.baseURL, "/"), o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "gobudget-cli",
		Short:         "GoBudget CLI tool",
		Long:          `A command line interface for interacting with the GoBudget API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", "http://localhost:8080", "Base URL of the GoBudget API")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON instead of tables")

	rootCmd.AddCommand(
		streamsCmd(opts),
		categoriesCmd(opts),
		weeklyCmd(opts),
		expensesCmd(opts),
		rolloverCmd(opts),
		resetWeekCmd(opts),
		consistencyCmd(opts),
	)

	return rootCmd
}

func streamsCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "streams",
		Short: "Income streams and allocations",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List income streams",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListStreamsResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/streams", nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printStreams(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	var name, amount string
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an income stream",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			var resp dto.StreamResponse
			req := dto.CreateStreamRequest{Name: name, Amount: amt}
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/streams", nil, req, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added stream %s (%s)\n", resp.ID, money(resp.Amount))
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Stream name")
	add.Flags().StringVar(&amount, "amount", "0", "Monthly amount")
	_ = add.MarkFlagRequired("name")

	distribute := &cobra.Command{
		Use:   "distribute <stream-id> <bucket=percent>...",
		Short: "Set the bucket distribution of a stream",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			percentages, err := parsePercentages(args[1:])
			if err != nil {
				return err
			}
			var resp dto.DistributionResponse
			req := dto.SetDistributionRequest{Percentages: percentages}
			path := "/api/v1/streams/" + url.PathEscape(args[0]) + "/distribution"
			if _, err := opts.client().do(cmd.Context(), http.MethodPut, path, nil, req, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printDistribution(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	allocations := &cobra.Command{
		Use:   "allocations [stream-id]",
		Short: "Show bucket allocations of one stream or of all streams",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			if len(args) == 1 {
				var resp dto.AllocationResponse
				path := "/api/v1/streams/" + url.PathEscape(args[0]) + "/allocations"
				if _, err := client.do(cmd.Context(), http.MethodGet, path, nil, nil, &resp); err != nil {
					return err
				}
				if opts.json {
					return printJSON(cmd.OutOrStdout(), resp)
				}
				printAllocation(cmd.OutOrStdout(), &resp)
				return nil
			}

			var resp dto.TotalsResponse
			if _, err := client.do(cmd.Context(), http.MethodGet, "/api/v1/allocations", nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printTotals(cmd.OutOrStdout(), resp)
			return nil
		},
	}

	cmd.AddCommand(list, add, distribute, allocations)
	return cmd
}

// parsePercentages parses bucket=percent pairs.
func parsePercentages(pairs []string) (map[string]decimal.Decimal, error) {
	out := make(map[string]decimal.Decimal, len(pairs))
	for _, pair := range pairs {
		bucket, value, ok := strings.Cut(pair, "=")
		if !ok || bucket == "" {
			return nil, fmt.Errorf("expected bucket=percent, got %q", pair)
		}
		p, err := decimal.NewFromString(strings.TrimSuffix(value, "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid percentage for %s: %w", bucket, err)
		}
		out[bucket] = p
	}
	return out, nil
}

func categoriesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Budget categories and the monthly view",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List categories with this month's goal and spend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListCategoriesResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/categories", nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printCategories(cmd.OutOrStdout(), resp.Categories)
			return nil
		},
	}

	var name, bucket, goal, weeklyLimit string
	var tracked bool
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a budget category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decimal.NewFromString(goal)
			if err != nil {
				return fmt.Errorf("invalid goal %q: %w", goal, err)
			}
			limit, err := decimal.NewFromString(weeklyLimit)
			if err != nil {
				return fmt.Errorf("invalid weekly limit %q: %w", weeklyLimit, err)
			}
			req := dto.CreateCategoryRequest{Name: name, Bucket: bucket, Goal: g, WeeklyLimit: limit, IsTracked: tracked}
			var resp dto.CategoryResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/categories", nil, req, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added category %s (%s)\n", resp.ID, resp.Name)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "Category name")
	add.Flags().StringVar(&bucket, "bucket", "spending", "Bucket (wolcc, savings, investments, taxes, spending)")
	add.Flags().StringVar(&goal, "goal", "0", "Monthly goal")
	add.Flags().StringVar(&weeklyLimit, "weekly-limit", "0", "Weekly limit")
	add.Flags().BoolVar(&tracked, "tracked", false, "Track the category weekly")
	_ = add.MarkFlagRequired("name")

	setGoal := &cobra.Command{
		Use:   "goal <category-id> <amount>",
		Short: "Set this month's goal",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid goal %q: %w", args[1], err)
			}
			var resp dto.CategoryResponse
			path := "/api/v1/categories/" + url.PathEscape(args[0]) + "/goal"
			if _, err := opts.client().do(cmd.Context(), http.MethodPut, path, nil, dto.SetGoalRequest{Goal: g}, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printCategories(cmd.OutOrStdout(), []*dto.CategoryResponse{&resp})
			return nil
		},
	}

	toggle := &cobra.Command{
		Use:   "toggle <category-id>",
		Short: "Flip weekly tracking of a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.CategoryResponse
			path := "/api/v1/categories/" + url.PathEscape(args[0]) + "/toggle"
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, path, nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			state := "off"
			if resp.IsTracked {
				state = "on"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Weekly tracking for %s is %s\n", resp.Name, state)
			return nil
		},
	}

	cmd.AddCommand(list, add, setGoal, toggle)
	return cmd
}

func weeklyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "weekly",
		Short: "Show tracked categories with safe-to-spend today",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListWeeklyResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/weekly", nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printWeekly(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func expensesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expense ledger",
	}

	var category, since string
	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if category != "" {
				query.Set("category_id", category)
			}
			if since != "" {
				query.Set("since", since)
			}
			if limit > 0 {
				query.Set("limit", fmt.Sprint(limit))
			}
			var resp dto.ListExpensesResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/expenses", query, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printExpenses(cmd.OutOrStdout(), resp)
			return nil
		},
	}
	list.Flags().StringVar(&category, "category", "", "Only entries of this category")
	list.Flags().StringVar(&since, "since", "", "Only entries at or after this RFC 3339 time")
	list.Flags().IntVar(&limit, "limit", 0, "Maximum number of entries")

	var note string
	add := &cobra.Command{
		Use:   "add <category-id> <amount>",
		Short: "Record an expense",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amt, err := decimal.NewFromString(args[1])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[1], err)
			}
			req := dto.CreateExpenseRequest{CategoryID: args[0], Amount: amt, Note: note}
			var resp dto.AddExpenseResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/expenses", nil, req, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s in %s (month %s of %s)\n",
				money(resp.Expense.Amount), resp.Category.Name,
				money(resp.Category.ThisMonthSpent), money(resp.Category.ThisMonthGoal))
			return nil
		},
	}
	add.Flags().StringVar(&note, "note", "", "Free-form note")

	cmd.AddCommand(list, add)
	return cmd
}

func rolloverCmd(opts *options) *cobra.Command {
	var resetGoals bool
	cmd := &cobra.Command{
		Use:   "rollover",
		Short: "Close the month",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListCategoriesResponse
			req := dto.RolloverRequest{ResetGoals: resetGoals}
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/periods/rollover", nil, req, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printCategories(cmd.OutOrStdout(), resp.Categories)
			return nil
		},
	}
	cmd.Flags().BoolVar(&resetGoals, "reset-goals", false, "Zero every goal instead of carrying it over")
	return cmd
}

func resetWeekCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "reset-week",
		Short: "Start a new week for tracked categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ListWeeklyResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodPost, "/api/v1/periods/reset-week", nil, nil, &resp); err != nil {
				return err
			}
			if opts.json {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			printWeekly(cmd.OutOrStdout(), resp)
			return nil
		},
	}
}

func consistencyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "consistency",
		Short: "Check category totals against the ledger",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var resp dto.ConsistencyResponse
			if _, err := opts.client().do(cmd.Context(), http.MethodGet, "/api/v1/ledger/consistency", nil, nil, &resp, http.StatusConflict); err != nil {
				return err
			}
			if opts.json {
				if err := printJSON(cmd.OutOrStdout(), resp); err != nil {
					return err
				}
			} else {
				printConsistency(cmd.OutOrStdout(), resp)
			}
			if !resp.Consistent {
				return fmt.Errorf("ledger drift in %d categories", len(resp.Issues))
			}
			return nil
		},
	}
}
