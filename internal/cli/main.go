package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/thomiceli/gistsearch/internal/config"
	"github.com/thomiceli/gistsearch/internal/github"
	"github.com/thomiceli/gistsearch/internal/metrics"
	"github.com/thomiceli/gistsearch/internal/search"
	"github.com/thomiceli/gistsearch/internal/validator"
	"github.com/thomiceli/gistsearch/internal/web/server"
	"github.com/urfave/cli/v2"
)

var CmdVersion = cli.Command{
	Name:  "version",
	Usage: "Print the version of Gistsearch",
	Action: func(c *cli.Context) error {
		fmt.Println("Gistsearch " + config.GistsearchVersion)
		return nil
	},
}

var CmdStart = cli.Command{
	Name:  "start",
	Usage: "Start Gistsearch server",
	Action: func(ctx *cli.Context) error {
		if err := Initialize(ctx); err != nil {
			return err
		}

		searcher, err := NewSearcher()
		if err != nil {
			return err
		}

		webServer := server.NewServer(searcher)
		go webServer.Start()

		var metricsServer *metrics.Server
		if config.C.MetricsEnabled {
			metricsServer = metrics.NewServer()
			go metricsServer.Start()
		}

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		log.Info().Msg("Shutting down...")
		webServer.Stop()
		if metricsServer != nil {
			metricsServer.Stop()
		}
		return nil
	},
}

var CmdSearch = cli.Command{
	Name:  "search",
	Usage: "Search the gists of a user once and print the result as JSON",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Usage:    "GitHub username whose public gists are searched",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "pattern",
			Aliases:  []string{"p"},
			Usage:    "Regular expression to look for in gist files",
			Required: true,
		},
	},
	Action: func(ctx *cli.Context) error {
		pattern := ctx.String("pattern")
		if err := validator.NewValidator().Var(pattern, "regexp"); err != nil {
			return printResult(ctx, search.Failure(search.MsgInvalidPattern))
		}

		if err := Initialize(ctx); err != nil {
			return err
		}

		searcher, err := NewSearcher()
		if err != nil {
			return err
		}

		return printResult(ctx, searcher.Search(ctx.Context, ctx.String("username"), pattern))
	},
}

// printResult writes res as indented JSON and exits with 1 on an error result.
func printResult(ctx *cli.Context, res search.Result) error {
	enc := json.NewEncoder(ctx.App.Writer)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return err
	}

	if res.Status != search.StatusSuccess {
		return cli.Exit("", 1)
	}
	return nil
}

var ConfigFlag = cli.StringFlag{
	Name:    "config",
	Aliases: []string{"c"},
	Usage:   "Path to a config file in YAML format",
}

func App() error {
	return NewApp().RunContext(context.Background(), os.Args)
}

func NewApp() *cli.App {
	app := cli.NewApp()
	app.Name = "Gistsearch"
	app.Usage = "Search the public gists of a GitHub user with a regular expression."
	app.HelpName = "gistsearch"

	app.Commands = []*cli.Command{&CmdVersion, &CmdStart, &CmdSearch}
	app.DefaultCommand = CmdStart.Name
	app.Flags = []cli.Flag{
		&ConfigFlag,
	}
	return app
}

func Initialize(ctx *cli.Context) error {
	if err := config.InitConfig(ctx.String("config"), os.Stderr); err != nil {
		return err
	}

	config.InitLog()
	log.Info().Msg("Gistsearch " + config.GistsearchVersion)

	return nil
}

// NewSearcher wires the GitHub client into a searcher using the loaded config.
func NewSearcher() (*search.Searcher, error) {
	client, err := github.NewClient(github.Options{
		BaseURL:  config.C.GithubApiUrl,
		Timeout:  config.C.GithubTimeout,
		PerPage:  config.C.GithubPerPage,
		MaxPages: config.C.SearchMaxPages,
	})
	if err != nil {
		return nil, err
	}

	return search.NewSearcher(client, client, search.MatchOptions{
		GistBaseURL: config.C.GithubGistUrl,
		Workers:     config.C.SearchWorkers,
	}), nil
}
