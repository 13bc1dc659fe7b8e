package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/zen-systems/helmsman/pkg/adapter"
	"github.com/zen-systems/helmsman/pkg/analytics"
	"github.com/zen-systems/helmsman/pkg/capability"
	"github.com/zen-systems/helmsman/pkg/classify"
	"github.com/zen-systems/helmsman/pkg/config"
	"github.com/zen-systems/helmsman/pkg/router"
	"github.com/zen-systems/helmsman/pkg/server"
)

var (
	configFile string
	debugFlag  bool
	mockFlag   bool
	aliases    *config.ModelAliases
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "helmsman",
		Short: "Deterministic prompt router for LLM providers",
		Long: `Helmsman inspects each prompt and decides which model should answer it.
	The scored strategy classifies the prompt (task type, stakes, signals)
	and ranks candidate models by capability fit; the keyword strategy is
	a fixed-tier fallback for candidate sets without capability data.
	The same prompt always produces the same decision.`,
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to routing config file")
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "log routing internals")
	rootCmd.PersistentFlags().BoolVar(&mockFlag, "mock", false, "use the mock provider instead of real APIs")

	rootCmd.AddCommand(routeCmd())
	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(rulesCmd())
	rootCmd.AddCommand(modelsCmd())
	rootCmd.AddCommand(benchCmd())
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(historyCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func routeCmd() *cobra.Command {
	var jsonOut bool
	var modelOverride string

	cmd := &cobra.Command{
		Use:   "route [prompt]",
		Short: "Decide which model should handle a prompt",
		Long: `Prints the routing decision for a prompt without calling any provider.
	Use --model to see the override path, --json for machine-readable output.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}

			decision, err := rt.Route(prompt, aliases.Resolve(modelOverride))
			if err != nil {
				return err
			}
			recordDecision(cfg, prompt, decision)

			if jsonOut {
				data, err := json.MarshalIndent(decision, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(data))
				return nil
			}

			fmt.Printf("Model:      %s\n", decision.Model)
			fmt.Printf("Strategy:   %s\n", decision.Strategy)
			fmt.Printf("Confidence: %s\n", decision.Confidence)
			fmt.Printf("Reason:     %s\n", decision.Reason)
			if decision.TaskType != "" {
				fmt.Printf("Task:       %s (stakes: %s)\n", decision.TaskType, decision.Stakes)
			}
			if decision.Tier != "" {
				fmt.Printf("Tier:       %s\n", decision.Tier)
			}
			if decision.ExpectedSuccess > 0 {
				fmt.Printf("Expected:   %d/100\n", decision.ExpectedSuccess)
			}
			if len(decision.KeyFactors) > 0 {
				fmt.Println("Factors:")
				for _, f := range decision.KeyFactors {
					fmt.Printf("  - %s (%d): %s\n", f.Label, f.Score, f.Detail)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the decision as JSON")
	cmd.Flags().StringVar(&modelOverride, "model", "", "override model (alias or canonical name)")

	return cmd
}

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify [prompt]",
		Short: "Show how a prompt is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(rt.Classify(args[0]), "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func askCmd() *cobra.Command {
	var modelOverride string

	cmd := &cobra.Command{
		Use:   "ask [prompt]",
		Short: "Route a prompt and send it to the chosen provider",
		Long: `Routes the prompt, calls the chosen provider, and prints the response.
	Use --model to bypass routing, --mock to answer locally without API keys.
	Token usage and an estimated cost are reported when the provider returns
	usage figures.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := args[0]

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}

			registry, err := createRegistry(cfg)
			if err != nil {
				return err
			}

			decision, err := rt.Route(prompt, aliases.Resolve(modelOverride))
			if err != nil {
				return err
			}
			recordDecision(cfg, prompt, decision)
			fmt.Fprintf(os.Stderr, "Routing to %s: %s\n", decision.Model, decision.Reason)

			ad, err := registry.ForModel(decision.Model)
			if err != nil {
				return err
			}

			resp, err := ad.Generate(context.Background(), decision.Model, prompt)
			if err != nil {
				return err
			}

			fmt.Println(resp.Content)

			if resp.Usage != nil {
				fmt.Fprintf(os.Stderr, "Tokens: %d prompt, %d completion\n",
					resp.Usage.PromptTokens, resp.Usage.CompletionTokens)
				if cost, ok := cfg.Routing.Pricing.Estimate(resp.Provider, resp.Model,
					resp.Usage.PromptTokens, resp.Usage.CompletionTokens); ok {
					fmt.Fprintf(os.Stderr, "Estimated cost: $%.4f\n", cost.Amount)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelOverride, "model", "", "override model (alias or canonical name)")

	return cmd
}

func rulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "Show the keyword strategy's branch table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}
			fmt.Printf("strategy: %s\n\n", rt.Strategy())

			kw := router.NewKeywordRouter(cfg.Routing.Tiers)
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "BRANCH\tTIER\tMODEL\tTRIGGERS")
			for _, rule := range kw.Rules() {
				triggers := "-"
				if len(rule.Triggers) > 0 {
					triggers = strings.Join(rule.Triggers, ", ")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", rule.Branch, rule.Tier, rule.Model, triggers)
			}
			return w.Flush()
		},
	}
}

func modelsCmd() *cobra.Command {
	var resolveFlag bool
	var validateFlag bool

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List candidate models and their capability profiles",
		Long: `Lists every model in the capability matrix with its dimension scores
	and whether an API key for its provider is configured.

	Use --resolve to show aliases and what they resolve to.
	Use --validate to check the configured tiers name real provider models.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if resolveFlag {
				return showAliases()
			}
			if validateFlag {
				return validateTiers(cfg)
			}

			matrix, err := loadMatrix(cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tREASON\tCODEGEN\tDEBUG\tSTRUCT\tINSTR\tSPEED\tCOST\tRECENCY\tSTATUS")
			for _, name := range matrix.Names() {
				vec, _ := matrix.Lookup(name)
				provider := adapter.ProviderFor(name)
				status := "no key"
				if cfg.HasAdapter(provider) || mockFlag {
					status = "ready"
				}
				fmt.Fprintf(w, "%s", name)
				for _, dim := range vec.Dimensions() {
					fmt.Fprintf(w, "\t%.2f", dim.Value)
				}
				fmt.Fprintf(w, "\t%s\n", status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&resolveFlag, "resolve", false, "show aliases and what they resolve to")
	cmd.Flags().BoolVar(&validateFlag, "validate", false, "check configured tiers against provider model lists")

	return cmd
}

func showAliases() error {
	if aliases == nil {
		fmt.Println("No model aliases configured.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ALIAS\tMODEL\tPROVIDER")

	aliasMap := aliases.ListAliases()
	var aliasNames []string
	for name := range aliasMap {
		aliasNames = append(aliasNames, name)
	}
	sort.Strings(aliasNames)

	for _, alias := range aliasNames {
		model := aliasMap[alias]
		provider := aliases.GetProviderForModel(model)
		fmt.Fprintf(w, "%s\t%s\t%s\n", alias, model, provider)
	}

	return w.Flush()
}

func validateTiers(cfg *config.Config) error {
	if aliases == nil {
		fmt.Println("No model aliases configured - nothing to validate.")
		return nil
	}

	errors := aliases.ValidateTiers(cfg.Routing.Tiers)
	if len(errors) == 0 {
		fmt.Println("All tier models are valid.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d validation errors:\n", len(errors))
	for _, err := range errors {
		fmt.Fprintf(os.Stderr, "  - %s\n", err)
	}
	return fmt.Errorf("validation failed")
}

func benchCmd() *cobra.Command {
	var concurrency int
	var routeFlag bool

	cmd := &cobra.Command{
		Use:   "bench [corpus-file]",
		Short: "Classify a prompt corpus and report the distribution",
		Long: `Reads prompts from a file (one per line, # for comments) and classifies
	them in parallel. With --route each prompt is also routed and the model
	distribution is reported. Useful for checking how a corpus spreads
	across task types and stakes grades.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read corpus: %w", err)
			}

			var prompts []string
			for _, line := range strings.Split(string(data), "\n") {
				line = strings.TrimSpace(line)
				if line == "" || strings.HasPrefix(line, "#") {
					continue
				}
				prompts = append(prompts, line)
			}
			if len(prompts) == 0 {
				return fmt.Errorf("corpus is empty")
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}

			classifications := make([]classify.Classification, len(prompts))
			decisions := make([]router.Decision, len(prompts))

			var g errgroup.Group
			g.SetLimit(concurrency)
			for i, prompt := range prompts {
				g.Go(func() error {
					classifications[i] = rt.Classify(prompt)
					if routeFlag {
						d, err := rt.Route(prompt, "")
						if err != nil {
							return fmt.Errorf("route prompt %d: %w", i+1, err)
						}
						decisions[i] = d
					}
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}

			taskCounts := make(map[string]int)
			stakesCounts := make(map[string]int)
			modelCounts := make(map[string]int)
			for i := range prompts {
				taskCounts[string(classifications[i].TaskType)]++
				stakesCounts[string(classifications[i].Stakes)]++
				if routeFlag {
					modelCounts[decisions[i].Model]++
				}
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "prompts: %d\n\n", len(prompts))
			printDistribution(w, "TASK TYPE", taskCounts, len(prompts))
			printDistribution(w, "STAKES", stakesCounts, len(prompts))
			if routeFlag {
				printDistribution(w, "MODEL", modelCounts, len(prompts))
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&concurrency, "concurrency", 8, "parallel classification workers")
	cmd.Flags().BoolVar(&routeFlag, "route", false, "also route each prompt and report model counts")

	return cmd
}

func printDistribution(w *tabwriter.Writer, header string, counts map[string]int, total int) {
	fmt.Fprintf(w, "%s\tCOUNT\tSHARE\n", header)

	var keys []string
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\n", k, counts[k], float64(counts[k])*100/float64(total))
	}
	fmt.Fprintln(w)
}

func serveCmd() *cobra.Command {
	var addrFlag string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP routing server",
		Long: `Serves routing decisions over HTTP:

	  POST /v1/route     decide a model for a prompt
	  POST /v1/classify  classify a prompt
	  POST /v1/chat      route, then stream the provider response (SSE)
	  GET  /healthz      health check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if addrFlag != "" {
				cfg.Routing.Server.Addr = addrFlag
			}

			rt, err := buildRouter(cfg)
			if err != nil {
				return err
			}

			registry, err := createRegistry(cfg)
			if err != nil {
				return err
			}

			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			opts := []server.Option{
				server.WithLogger(logger),
				server.WithRegistry(registry),
				server.WithPricing(cfg.Routing.Pricing),
			}

			if cfg.Routing.Analytics.IsEnabled() {
				store, err := analytics.Open(cfg.AnalyticsPath())
				if err != nil {
					log.Printf("[analytics] store unavailable: %v", err)
				} else {
					defer store.Close()
					opts = append(opts, server.WithStore(store))
				}
			}

			srv := server.New(rt, cfg.Routing.Server, opts...)

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&addrFlag, "addr", "", "listen address (overrides config)")

	return cmd
}

func historyCmd() *cobra.Command {
	var limit int
	var summaryFlag bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent routing decisions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			store, err := analytics.Open(cfg.AnalyticsPath())
			if err != nil {
				return fmt.Errorf("failed to open history: %w", err)
			}
			defer store.Close()

			ctx := context.Background()

			if summaryFlag {
				summary, err := store.Summarize(ctx)
				if err != nil {
					return err
				}
				w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "decisions: %d\n\n", summary.Total)
				printDistribution(w, "TASK TYPE", summary.ByTask, max(summary.Total, 1))
				printDistribution(w, "STAKES", summary.ByStakes, max(summary.Total, 1))
				printDistribution(w, "MODEL", summary.ByModel, max(summary.Total, 1))
				return w.Flush()
			}

			records, err := store.Recent(ctx, limit)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No decisions recorded yet.")
				return nil
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "TIME\tMODEL\tTASK\tSTAKES\tCONF\tSTRATEGY\tSUCCESS")
			for _, rec := range records {
				task := rec.TaskType
				if task == "" {
					task = "-"
				}
				stakes := rec.Stakes
				if stakes == "" {
					stakes = "-"
				}
				success := "-"
				if rec.ExpectedSuccess > 0 {
					success = fmt.Sprintf("%d", rec.ExpectedSuccess)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					rec.Model, task, stakes, rec.Confidence, rec.Strategy, success)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "number of records to show")
	cmd.Flags().BoolVar(&summaryFlag, "summary", false, "show aggregate counts instead of records")

	return cmd
}

func loadConfig() (*config.Config, error) {
	var cfg *config.Config
	var err error

	if configFile != "" {
		cfg, err = config.LoadWithRoutingFile(configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	aliases = config.LoadAliasesWithFallback()

	return cfg, nil
}

func buildRouter(cfg *config.Config) (*router.Router, error) {
	opts := []router.Option{
		router.WithStrategy(cfg.Routing.Strategy),
		router.WithTiers(cfg.Routing.Tiers),
	}

	if len(cfg.Routing.Candidates) > 0 {
		opts = append(opts, router.WithCandidates(cfg.Routing.Candidates))
	}

	if cfg.Routing.MatrixPath != "" {
		matrix, err := capability.Load(cfg.Routing.MatrixPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load capability matrix: %w", err)
		}
		opts = append(opts, router.WithMatrix(matrix))
	}

	if cfg.Routing.Debug || debugFlag {
		opts = append(opts, router.WithDebug(true))
	}

	return router.New(opts...), nil
}

func createRegistry(cfg *config.Config) (*adapter.Registry, error) {
	registry := adapter.NewRegistry()

	if mockFlag {
		registry.SetFallback(adapter.NewMockAdapter())
		return registry, nil
	}

	retry := cfg.Routing.Retry.AdapterConfig()

	if cfg.AnthropicAPIKey != "" {
		a, err := adapter.NewAnthropicAdapter(cfg.AnthropicAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create anthropic adapter: %w", err)
		}
		registry.Register(adapter.WithRetry(a, retry))
	}

	if cfg.OpenAIAPIKey != "" {
		a, err := adapter.NewOpenAIAdapter(cfg.OpenAIAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai adapter: %w", err)
		}
		registry.Register(adapter.WithRetry(a, retry))
	}

	if cfg.GoogleAPIKey != "" {
		a, err := adapter.NewGoogleAdapter(cfg.GoogleAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create google adapter: %w", err)
		}
		registry.Register(adapter.WithRetry(a, retry))
	}

	if cfg.DeepSeekAPIKey != "" {
		a, err := adapter.NewDeepSeekAdapter(cfg.DeepSeekAPIKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create deepseek adapter: %w", err)
		}
		registry.Register(adapter.WithRetry(a, retry))
	}

	return registry, nil
}

func recordDecision(cfg *config.Config, prompt string, decision router.Decision) {
	if !cfg.Routing.Analytics.IsEnabled() {
		return
	}
	store, err := analytics.Open(cfg.AnalyticsPath())
	if err != nil {
		log.Printf("[analytics] open store: %v", err)
		return
	}
	defer store.Close()
	if err := store.Insert(context.Background(), analytics.FromDecision(prompt, decision)); err != nil {
		log.Printf("[analytics] record decision: %v", err)
	}
}

func loadMatrix(cfg *config.Config) (*capability.Matrix, error) {
	if cfg.Routing.MatrixPath == "" {
		return capability.Default(), nil
	}
	matrix, err := capability.Load(cfg.Routing.MatrixPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load capability matrix: %w", err)
	}
	return matrix, nil
}
