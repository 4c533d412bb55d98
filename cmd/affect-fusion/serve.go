package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/justestif/go-affect-fusion/internal/advice"
	"github.com/justestif/go-affect-fusion/internal/analysis"
	"github.com/justestif/go-affect-fusion/internal/config"
	"github.com/justestif/go-affect-fusion/internal/db"
	"github.com/justestif/go-affect-fusion/internal/fusion"
	"github.com/justestif/go-affect-fusion/internal/logging"
	"github.com/justestif/go-affect-fusion/internal/modality"
	"github.com/justestif/go-affect-fusion/internal/modality/audio"
	"github.com/justestif/go-affect-fusion/internal/modality/face"
	"github.com/justestif/go-affect-fusion/internal/modality/text"
	"github.com/justestif/go-affect-fusion/internal/remote"
	"github.com/justestif/go-affect-fusion/internal/report"
	"github.com/justestif/go-affect-fusion/internal/web"
	webfs "github.com/justestif/go-affect-fusion/web"
)

func newServeCmd(load func() (*config.Config, error)) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := logging.New(cfg.Logging)

	var (
		estimators []modality.Estimator
		opts       []analysis.Option
	)

	if cfg.Face.BaseURL != "" {
		fc := face.NewClient(remoteClient(cfg.Face))
		estimators = append(estimators, fc)
		opts = append(opts, analysis.WithPinger(string(fusion.Face), fc))
	} else {
		logger.Warn().Msg("face.base_url not set, face analysis disabled")
	}

	if cfg.Audio.BaseURL != "" {
		ac := audio.NewClient(remoteClient(cfg.Audio))
		estimators = append(estimators, ac)
		opts = append(opts, analysis.WithPinger(string(fusion.Audio), ac))
	} else {
		logger.Warn().Msg("audio.base_url not set, audio analysis disabled")
	}

	lex, err := loadLexicon(ctx, cfg)
	if err != nil {
		logger.Error().Err(err).Str("source", cfg.Lexicon.Source).Msg("lexicon unavailable, text analysis will report neutral")
		lex = text.EmptyLexicon()
	} else {
		logger.Info().Int("words", lex.Len()).Str("source", cfg.Lexicon.Source).Msg("lexicon loaded")
	}
	estimators = append(estimators, text.NewAnalyzer(lex))

	advisor, err := newAdvisor(cfg.OpenAI, logger)
	if err != nil {
		return err
	}

	renderer, err := report.NewRenderer(webfs.Templates())
	if err != nil {
		return fmt.Errorf("loading report templates: %w", err)
	}

	collector := modality.NewCollector(estimators,
		modality.WithTimeout(cfg.Pipeline.AdapterTimeout),
		modality.WithLogger(logger),
	)

	opts = append(opts,
		analysis.WithEngine(fusion.NewEngine(fusion.WithWeights(cfg.Fusion))),
		analysis.WithAdvisor(advisor),
		analysis.WithRenderer(renderer, cfg.Pipeline.RenderReport),
		analysis.WithLexicon(lex),
		analysis.WithLogger(logger),
	)
	svc := analysis.New(collector, opts...)

	server := web.NewServer(web.ServerConfig{
		Server: cfg.Server,
		CORS:   cfg.CORS,
		Logger: logger,
	}, svc)

	return server.Run(ctx)
}

func remoteClient(sc config.ServiceConfig) *remote.Client {
	return remote.New(sc.BaseURL,
		remote.WithTimeout(sc.Timeout),
		remote.WithRetryDelays(sc.RetryDelays()...),
	)
}

func loadLexicon(ctx context.Context, cfg *config.Config) (*text.Lexicon, error) {
	switch cfg.Lexicon.Source {
	case config.LexiconNone:
		return text.EmptyLexicon(), nil
	case config.LexiconPostgres:
		database, err := db.New(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		defer database.Close()
		return text.StoreSource{Store: database.Lexicon()}.Load(ctx)
	default:
		return text.FileSource{Path: cfg.Lexicon.Path, WordColumn: cfg.Lexicon.WordColumn}.Load(ctx)
	}
}

func newAdvisor(cfg config.OpenAIConfig, logger zerolog.Logger) (advice.Generator, error) {
	canned := advice.NewCannedGenerator()
	if cfg.APIKey == "" {
		logger.Warn().Msg("no OpenAI API key, using canned advice")
		return canned, nil
	}

	gen, err := advice.NewOpenAIGenerator(cfg.APIKey,
		advice.WithModel(cfg.Model),
		advice.WithMaxOutputTokens(cfg.MaxOutputTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OpenAI generator: %w", err)
	}
	logger.Info().Str("model", gen.Model()).Msg("OpenAI advice enabled")
	return advice.NewFallback(gen, canned, logger), nil
}
