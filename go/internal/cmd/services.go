package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/mcdev12/predictduel/go/clients"
	"github.com/mcdev12/predictduel/go/clients/gamma_client"
	"github.com/mcdev12/predictduel/go/internal/dbconfig"
	"github.com/mcdev12/predictduel/go/internal/duel/engine"
	"github.com/mcdev12/predictduel/go/internal/duel/eventbus"
	"github.com/mcdev12/predictduel/go/internal/duel/gateway"
	"github.com/mcdev12/predictduel/go/internal/duel/ledger"
	"github.com/mcdev12/predictduel/go/internal/duel/questions"
	"github.com/mcdev12/predictduel/go/internal/duel/settlement"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type Services struct {
	Engine   *engine.Engine
	Gateway  *gateway.Service
	Settler  *settlement.Settler
	EventBus *eventbus.Publisher

	// storage handles closed last
	closers []func() error
}

func setupServices(ctx context.Context, config *Config) (*Services, error) {
	// Wire up dependency injection chain
	// Storage → Ledger → Settler → Engine → Gateway
	services := &Services{}

	scoreLedger, err := services.setupLedger(ctx, getEnvAsList("LEDGER"))
	if err != nil {
		services.Close()
		return nil, err
	}

	settler := settlement.NewSettler(scoreLedger, settlement.DefaultConfig())
	settler.Start()
	services.Settler = settler

	source, err := setupQuestionSource(config.Questions)
	if err != nil {
		services.Close()
		return nil, err
	}

	var observer engine.Observer
	if natsURL := getEnv("NATS_URL", ""); natsURL != "" {
		busConfig := eventbus.DefaultConfig()
		busConfig.URL = natsURL
		bus, err := eventbus.NewPublisher(ctx, busConfig)
		if err != nil {
			services.Close()
			return nil, fmt.Errorf("failed to setup event bus: %w", err)
		}
		services.EventBus = bus
		observer = bus
	} else {
		log.Info().Msg("NATS_URL not set, duel events are not published")
	}

	engineConfig, err := config.engineConfig()
	if err != nil {
		services.Close()
		return nil, fmt.Errorf("invalid duel config: %w", err)
	}
	duelEngine, err := engine.New(engineConfig, engine.Deps{
		Source:   source,
		Settler:  settler,
		Observer: observer,
	})
	if err != nil {
		services.Close()
		return nil, err
	}
	services.Engine = duelEngine

	gatewayConfig := gateway.DefaultConfig()
	gatewayConfig.ConnectionConfig.CheckOrigin = gateway.OriginChecker(getEnvAsList("ALLOWED_ORIGINS"))
	services.Gateway = gateway.NewService(gatewayConfig, duelEngine)

	log.Info().
		Int("rounds_total", engineConfig.RoundsTotal).
		Dur("round_time", engineConfig.RoundTime).
		Str("on_source_failure", string(engineConfig.OnSourceFailure)).
		Str("question_provider", config.Questions.Provider).
		Msg("duel services ready")
	return services, nil
}

// setupLedger builds the score ledger from the LEDGER list. An empty list keeps scores in memory only.
func (s *Services) setupLedger(ctx context.Context, kinds []string) (ledger.Ledger, error) {
	var ledgers ledger.Multi
	for _, kind := range kinds {
		switch kind {
		case "postgres":
			database, err := setupDatabase(ctx, dbconfig.NewConfigFromEnv())
			if err != nil {
				return nil, err
			}
			s.closers = append(s.closers, database.Close)
			ledgers = append(ledgers, ledger.NewPostgres(database))

		case "redis":
			client := redis.NewClient(&redis.Options{
				Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
				Password: getEnv("REDIS_PASSWORD", ""),
				DB:       getEnvAsInt("REDIS_DB", 0),
			})
			if err := client.Ping(ctx).Err(); err != nil {
				client.Close()
				return nil, fmt.Errorf("failed to ping redis: %w", err)
			}
			s.closers = append(s.closers, client.Close)
			ledgers = append(ledgers, ledger.NewRedis(client, getEnv("REDIS_PREFIX", "duel:")))
			log.Info().Str("addr", client.Options().Addr).Msg("connected to redis")

		default:
			return nil, fmt.Errorf("unknown ledger %q", kind)
		}
	}

	switch len(ledgers) {
	case 0:
		log.Warn().Msg("no score ledger configured, duel scores are not persisted")
		return ledger.Nop{}, nil
	case 1:
		return ledgers[0], nil
	default:
		return ledgers, nil
	}
}

func setupQuestionSource(config QuestionsConfig) (questions.Source, error) {
	provider, err := clients.ParseQuestionProvider(config.Provider)
	if err != nil {
		return nil, err
	}
	if clients.GetQuestionProviders()[provider].NeedsURL && config.URL == "" {
		return nil, fmt.Errorf("question provider %s needs QUESTION_URL", provider)
	}

	switch provider {
	case clients.QuestionProviderGamma:
		return questions.NewGammaSource(gamma_client.NewGammaClient(config.URL), config.MarketLimit), nil
	case clients.QuestionProviderHTTP:
		return questions.NewHTTPSource(config.URL), nil
	case clients.QuestionProviderStatic:
		list := config.Static
		if len(list) == 0 {
			list = questions.DefaultStaticQuestions()
		}
		return questions.NewStaticSource(list...), nil
	default:
		return nil, fmt.Errorf("question provider %s is not wired", provider)
	}
}

// Close stops the services in reverse dependency order
func (s *Services) Close() error {
	if s.Gateway != nil {
		s.Gateway.Stop()
	}
	if s.Engine != nil {
		s.Engine.Shutdown()
	}
	if s.Settler != nil {
		s.Settler.Close()
	}

	var errs []error
	if s.EventBus != nil {
		errs = append(errs, s.EventBus.Close())
	}
	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i]())
	}
	return errors.Join(errs...)
}
