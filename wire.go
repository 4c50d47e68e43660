package main

import (
	"context"

	"github.com/researchaccelerator-hub/comment-sentiment/client"
	"github.com/researchaccelerator-hub/comment-sentiment/config"
	"github.com/researchaccelerator-hub/comment-sentiment/llm"
	youtubemodel "github.com/researchaccelerator-hub/comment-sentiment/model/youtube"
	"github.com/researchaccelerator-hub/comment-sentiment/notify"
	"github.com/researchaccelerator-hub/comment-sentiment/pipeline"
	"github.com/researchaccelerator-hub/comment-sentiment/retriever"
	"github.com/researchaccelerator-hub/comment-sentiment/sentiment"
	"github.com/researchaccelerator-hub/comment-sentiment/summary"
	"github.com/rs/zerolog/log"
)

// buildPipeline assembles the analysis pipeline from configuration. Missing
// credentials leave the affected stage unconfigured so that runs fail with
// CONFIG_MISSING instead of the process refusing to start.
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, func()) {
	logger := log.Ctx(ctx)
	cleanup := func() {}

	fetcher := client.NewFetcher(
		client.WithTimeout(cfg.HTTP.Timeout),
		client.WithUserAgent(cfg.HTTP.UserAgent),
	)

	var source youtubemodel.CommentSource
	src, err := client.NewCommentSource(client.SourceConfig{
		Provider: cfg.Source.Provider,
		RapidAPI: client.RapidAPIConfig{
			APIKey: cfg.Source.RapidAPIKey,
			Host:   cfg.Source.RapidAPIHost,
		},
		YouTube: client.YouTubeDataConfig{APIKey: cfg.Source.YouTubeAPIKey},
	}, fetcher)
	if err != nil {
		logger.Warn().Err(err).Str("provider", cfg.Source.Provider).Msg("Comment source not configured")
	} else {
		source = src
	}

	var chat llm.ChatClient
	if cfg.LLM.APIKey != "" {
		c, err := llm.NewChatClient(llm.Config{
			Provider: cfg.LLM.Provider,
			APIKey:   cfg.LLM.APIKey,
			BaseURL:  cfg.LLM.BaseURL,
			Model:    cfg.LLM.Model,
		}, fetcher)
		if err != nil {
			logger.Warn().Err(err).Str("provider", cfg.LLM.Provider).Msg("Language model not configured")
		} else {
			chat = c
		}
	}

	var primary summary.Producer
	if chat != nil {
		primary = summary.NewModelProducer(chat)
	}

	r := retriever.New(source,
		retriever.WithStrategies(cfg.Source.Strategies),
		retriever.WithMaxComments(cfg.Source.MaxComments),
	)

	var opts []pipeline.Option
	if cfg.Events.Enabled {
		pub, err := notify.NewDaprPublisher(notify.DaprConfig{
			PubSubComponent: cfg.Events.PubSubComponent,
			Topic:           cfg.Events.Topic,
			GRPCPort:        cfg.Events.GRPCPort,
		})
		if err != nil {
			logger.Warn().Err(err).Msg("Event publishing disabled: Dapr client unavailable")
		} else {
			opts = append(opts, pipeline.WithPublisher(pub))
			cleanup = func() {
				if err := pub.Close(); err != nil {
					logger.Warn().Err(err).Msg("Failed to close Dapr client")
				}
			}
		}
	}

	p := pipeline.New(r, sentiment.NewClassifier(chat), summary.NewGenerator(primary), opts...)
	return p, cleanup
}
