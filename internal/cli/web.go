package cli

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ppiankov/policyqa/internal/search"
	"github.com/ppiankov/policyqa/internal/util"
	"github.com/ppiankov/policyqa/internal/validate"
	"github.com/ppiankov/policyqa/internal/worker"
)

var (
	webInsurer string
	webLimit   int
	webTimeout time.Duration
)

var webCmd = &cobra.Command{
	Use:   "web <question>",
	Short: "List candidate pages from the web search provider",
	Long: `Web sends the question to the configured search provider and prints
the result URLs as they are read. The pages themselves are not fetched or
scored, so these results are not comparable with document answers.

Example:
  policyqa web "What is the minimum age for funeral cover?" --insurer Sanlam`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWeb,
}

func init() {
	rootCmd.AddCommand(webCmd)
	webCmd.Flags().StringVar(&webInsurer, "insurer", "", "insurer name added to the query")
	webCmd.Flags().IntVar(&webLimit, "limit", 0, "maximum number of URLs (default from config)")
	webCmd.Flags().DurationVar(&webTimeout, "timeout", time.Minute, "overall timeout (0 for none)")
}

func runWeb(cmd *cobra.Command, args []string) error {
	question, err := validate.Question(strings.Join(args, " "))
	if err != nil {
		return err
	}
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("limit") {
		cfg.Search.WebResults = webLimit
	}

	opts := []search.WebOption{
		search.WithWebLimiter(worker.NewLimiter(cfg.RateLimiting.RequestsPerSecond, cfg.RateLimiting.BurstSize)),
		search.WithWebLogger(slog.Default()),
	}
	if cfg.Search.RespectRobots {
		opts = append(opts, search.WithRobots(util.NewRobotsChecker(cfg.HTTP.UserAgent, cfg.HTTP.Timeout)))
	}
	web := search.NewWebSearch(search.WebConfig{
		Endpoint:   cfg.Search.WebEndpoint,
		MaxResults: cfg.Search.WebResults,
		UserAgent:  cfg.HTTP.UserAgent,
		Timeout:    cfg.HTTP.Timeout,
		HTTPProxy:  cfg.HTTP.HTTPProxy,
		HTTPSProxy: cfg.HTTP.HTTPSProxy,
		NoProxy:    cfg.HTTP.NoProxy,
	}, opts...)

	ctx, cancel := runContext(cmd.Context(), webTimeout)
	defer cancel()

	it := web.URLs(search.Query(question, webInsurer))
	n := 0
	for it.Next(ctx) {
		n++
		fmt.Printf("%d. %s\n", n, it.URL())
	}
	if err := it.Err(); err != nil {
		return fmt.Errorf("web search: %w", err)
	}
	if n == 0 {
		fmt.Println("No results.")
	}
	return nil
}
