package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"github.com/xeptore/flaw/v8"

	"github.com/xeptore/yamusic/config"
	"github.com/xeptore/yamusic/constant"
	"github.com/xeptore/yamusic/errutil"
	"github.com/xeptore/yamusic/log"
	"github.com/xeptore/yamusic/yandex"
	"github.com/xeptore/yamusic/yandex/api"
)

const (
	flagConfigFilePath = "config"
	flagDebug          = "debug"
	envToken           = "YANDEX_MUSIC_TOKEN"
	envConfig          = "CONFIG"
)

func main() {
	logger := log.New(os.Stderr, zerolog.InfoLevel)
	defer func() {
		if r := recover(); nil != r {
			logger.Fatal().Func(log.Panic(r)).Msg("Application panicked")
		}
	}()

	if err := godotenv.Load(); nil != err {
		if errors.Is(err, os.ErrNotExist) {
			logger.Debug().Msg(".env file was not found")
		} else {
			logger.Fatal().Err(err).Msg("Failed to load .env file")
		}
	}

	//nolint:exhaustruct
	app := &cli.App{
		Name:     "yamusic",
		Version:  constant.Version,
		Compiled: constant.CompileTime,
		Suggest:  true,
		Usage:    "Yandex Music command line client",
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:    flagConfigFilePath,
				Aliases: []string{"c"},
				Usage:   "Config file path",
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "Log requests and dump error details",
			},
		},
		Commands: []*cli.Command{
			whoamiCommand(),
			searchCommand(),
			trackCommand(),
			linkCommand(),
			downloadCommand(),
			likeCommand(),
			dislikeCommand(),
			likesCommand(),
			playlistCommand(),
		},
	}

	if err := app.Run(os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			return
		}
		if flawErr := new(flaw.Flaw); errors.As(err, &flawErr) {
			logger.Fatal().Func(log.Flaw(flawErr)).Msg("Application exited with flaw")
			return
		}
		logger.Fatal().Func(log.Flaw(err)).Msg("Application exited with error")
	}
}

// env is what every command action receives.
type env struct {
	cfg    *config.Config
	client *yandex.Client
	logger zerolog.Logger
	cli    *cli.Context
}

func (e *env) printf(format string, args ...any) {
	fmt.Fprintf(e.cli.App.Writer, format, args...)
}

// action wraps fn with signal handling, config loading and client setup.
func action(fn func(ctx context.Context, e *env) error) cli.ActionFunc {
	return func(cliCtx *cli.Context) error {
		ctx, cancel := signal.NotifyContext(cliCtx.Context, syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		level := zerolog.InfoLevel
		if cliCtx.Bool(flagDebug) {
			level = zerolog.DebugLevel
		}
		logger := log.New(os.Stderr, level)

		cfg, err := loadConfig(cliCtx, logger)
		if nil != err {
			return err
		}

		token := os.Getenv(envToken)
		if token == "" {
			logger.Debug().Msg(envToken + " is not set. Sending anonymous requests")
		}
		client := yandex.New(
			token,
			api.WithBaseURL(cfg.BaseURL),
			api.WithUserAgent(cfg.UserAgent),
			api.WithClientID(cfg.ClientID),
			api.WithLogger(logger.With().Str("module", "api").Logger()),
		)

		e := &env{cfg: cfg, client: client, logger: logger, cli: cliCtx}
		if err := fn(ctx, e); nil != err {
			if errutil.IsContext(ctx) {
				return ctx.Err()
			}
			if cliCtx.Bool(flagDebug) && errutil.IsFlaw(err) {
				dumpFlaw(cliCtx, logger, err)
			}
			return err
		}
		return nil
	}
}

func loadConfig(cliCtx *cli.Context, logger zerolog.Logger) (*config.Config, error) {
	var (
		cfgEnv      = os.Getenv(envConfig)
		cfgFilePath = cliCtx.String(flagConfigFilePath)
	)
	switch {
	case cfgFilePath != "" && cfgEnv != "":
		return nil, errors.New("config file path and config environment variable are both set. specify only one")
	case cfgFilePath != "":
		logger.Debug().Str("config_file_path", cfgFilePath).Msg("Loading config from file")
		cfg, err := config.FromFile(cfgFilePath)
		if nil != err {
			return nil, fmt.Errorf("failed to load config file: %v", err)
		}
		return cfg, nil
	case cfgEnv != "":
		logger.Debug().Msg("Loading config from environment variable")
		cfg, err := config.FromString(cfgEnv)
		if nil != err {
			return nil, fmt.Errorf("failed to load config from environment variable: %v", err)
		}
		return cfg, nil
	default:
		return config.Default(), nil
	}
}

func dumpFlaw(cliCtx *cli.Context, logger zerolog.Logger, err error) {
	flawErr := new(flaw.Flaw)
	if !errors.As(err, &flawErr) {
		return
	}
	b, yamlErr := errutil.FlawToYAML(flawErr)
	if nil != yamlErr {
		logger.Error().Func(log.Flaw(yamlErr)).Msg("Failed to convert flaw to YAML")
		return
	}
	if _, writeErr := cliCtx.App.ErrWriter.Write(b); nil != writeErr {
		logger.Error().Err(writeErr).Msg("Failed to write flaw details")
	}
}
