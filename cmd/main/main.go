package main

import (
	"github.com/alecthomas/kingpin/v2"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/critiq/internal/app"
	"github.com/maxbolgarin/erro"
	"github.com/maxbolgarin/logze/v2"
)

var (
	Version, Branch, Commit, BuildDate string
)

var (
	configPath = kingpin.Flag("config", "path to config file").Short('c').String()
	projectID  = kingpin.Flag("project", "project to review, 'owner/repo' for GitHub or a numeric GitLab ID").Short('p').String()
	serve      = kingpin.Flag("serve", "run the webhook server instead of a one-shot review").Bool()
	verbose    = kingpin.Flag("verbose", "enable debug logging").Short('v').Bool()
)

func main() {
	kingpin.Parse()

	var err error
	ctx := contem.New(contem.WithLogger(logze.DefaultPtr()), contem.Exit(&err))
	defer ctx.Shutdown()

	err = run(ctx)
	if err != nil {
		logze.DefaultPtr().Error("cannot run", "error", err)
	}
}

func run(ctx contem.Context) error {
	level := logze.LevelInfo
	if *verbose {
		level = logze.LevelDebug
	}
	logze.Init(logze.C().WithConsole().WithLevel(level))

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		return erro.Wrap(err, "load config")
	}

	critiq, err := app.New(ctx, cfg)
	if err != nil {
		return erro.Wrap(err, "create service")
	}

	if *serve {
		if err := critiq.StartWebhook(ctx); err != nil {
			return erro.Wrap(err, "start webhook server")
		}
		<-ctx.Done()
		return nil
	}

	if *projectID == "" {
		return erro.New("either --project or --serve is required")
	}

	if err := critiq.RunReview(ctx, *projectID); err != nil {
		return erro.Wrap(err, "run review")
	}

	return nil
}
