package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/lawndlwd/review-client/internal/client"
	"github.com/lawndlwd/review-client/internal/config"
	"github.com/lawndlwd/review-client/internal/diff"
	"github.com/lawndlwd/review-client/internal/filter"
	"github.com/lawndlwd/review-client/internal/git"
	"github.com/lawndlwd/review-client/internal/logger"
	"github.com/lawndlwd/review-client/internal/output"
	"github.com/lawndlwd/review-client/internal/parser"
	"github.com/lawndlwd/review-client/internal/retry"
	"github.com/lawndlwd/review-client/internal/types"
)

const demoComment = "🐛 Multiple issues found: missing error handling, security concerns, and performance opportunities"

var demoExclusions = []string{"*.log", "node_modules/*"}

type app struct {
	cfg    *config.Config
	log    logger.Logger
	client *client.ReviewClient
	out    *output.Printer
}

func main() {
	_ = godotenv.Load()

	cfg, command, err := loadConfig()
	if err != nil {
		exitWithError(err)
	}

	zl, err := logger.NewZap(cfg.LogLevel)
	if err != nil {
		exitWithError(err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	policy := retry.Default()
	policy.Total = cfg.Retry.Total
	policy.BackoffFactor = cfg.Retry.BackoffFactor

	a := &app{
		cfg: cfg,
		log: zl,
		client: client.New(cfg.BaseURL, cfg.Timeout,
			client.WithLogger(zl),
			client.WithOutput(os.Stdout),
			client.WithRetryPolicy(policy),
		),
		out: output.New(os.Stdout),
	}
	defer a.client.Close()

	switch command {
	case "demo":
		a.demo(ctx)
	case "health":
		a.health(ctx)
	case "summary":
		a.out.Summary(a.client.GetSummary(ctx))
	case "context":
		a.codeContext(ctx)
	case "individual":
		a.individual(ctx)
	default:
		exitWithError(fmt.Errorf("unknown command %q", command))
	}
}

// demo checks health, lists staged files and exports them for review.
func (a *app) demo(ctx context.Context) {
	health := a.client.GetHealthStatus(ctx)
	a.out.ServerStatus(health.Status)

	files := a.client.GetStagedFiles(ctx)
	a.out.StagedFiles(len(files))
	if len(files) == 0 {
		return
	}

	kept, excluded := filter.Apply(files, demoExclusions)
	if len(excluded) > 0 {
		a.out.ExclusionPreview(len(kept), len(excluded))
	}

	ok := a.client.ExportForAIReview(ctx, a.demoRequest(files))
	a.out.ExportCompleted(ok)
}

func (a *app) demoRequest(files []string) types.ReviewRequest {
	return types.ReviewRequest{
		Files: files,
		Comments: map[string]string{
			"test/api-client.py": demoComment,
		},
		ExcludePatterns: demoExclusions,
	}
}

func (a *app) health(ctx context.Context) {
	var checker client.HealthChecker = client.AsyncChecker{
		BaseURL: a.cfg.BaseURL,
		Timeout: a.cfg.HealthTimeout,
		Logger:  a.log,
	}
	a.out.ServerStatus(checker.CheckHealth(ctx).Status)
}

func (a *app) individual(ctx context.Context) {
	files := a.client.GetStagedFiles(ctx)
	a.out.StagedFiles(len(files))
	if len(files) == 0 {
		return
	}
	_, ok := a.client.ExportIndividualReviews(ctx, types.ReviewRequest{
		Files:           files,
		Comments:        map[string]string{},
		ExcludePatterns: demoExclusions,
	})
	a.out.ExportCompleted(ok)
}

// codeContext prints the enclosing scope of every changed JS/TS line.
func (a *app) codeContext(ctx context.Context) {
	if !git.IsRepo(a.cfg.ProjectPath) {
		fmt.Printf("⚠️  %s is not a git repository; reading working tree files\n", a.cfg.ProjectPath)
	}

	p := parser.NewParser()
	defer p.Close()
	if err := p.Init(); err != nil {
		fmt.Printf("⚠️  Tree-sitter initialization failed: %v. Showing plain context.\n", err)
		p = nil
	}

	var contexts []*types.CodeContext
	for _, file := range a.client.GetStagedFiles(ctx) {
		if !filter.Eligible(file) {
			continue
		}
		fd, ok := a.client.GetFileDiff(ctx, file)
		if !ok {
			continue
		}
		cc, err := diff.Context(a.cfg.ProjectPath, fd, p)
		if err != nil {
			fmt.Printf("  ⚠️  Failed to load %s\n", file)
			continue
		}
		contexts = append(contexts, cc)
	}
	a.out.CodeContexts(contexts)
}

func loadConfig() (*config.Config, string, error) {
	fs := pflag.NewFlagSet("review-client", pflag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Client for the local AI review service\n\nUsage:\n  review-client [demo|health|summary|context|individual] [flags]\n\nExamples:\n  review-client\n  review-client health --health-timeout 5s\n  review-client context --project-path ../project-name\n\nFlags:\n")
		fs.PrintDefaults()
	}
	config.Flags(fs)

	fs.AddGoFlagSet(flag.CommandLine)
	_ = fs.Parse(os.Args[1:])

	command := "demo"
	if fs.NArg() > 0 {
		command = fs.Arg(0)
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return nil, "", err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, command, nil
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
