package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/assistant"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/agents/planner"
	contractx "github.com/tanpawarit/Chative-Airline-Assistant/agent/contract"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/facade/profiledb"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/facade/sandbox"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/llm"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/prompt"
	statex "github.com/tanpawarit/Chative-Airline-Assistant/agent/state"
	"github.com/tanpawarit/Chative-Airline-Assistant/agent/tool"
	configx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/config"
	openrouterx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/openrouter"
	postgresx "github.com/tanpawarit/Chative-Airline-Assistant/pkg/postgres"
	"github.com/tanpawarit/Chative-Airline-Assistant/pkg/redisx"
)

// App is the wired assistant plus whatever connections it opened.
type App struct {
	Config    assistant.Config
	Assistant *assistant.Assistant

	closers []func() error
}

func NewApp(ctx context.Context) (*App, error) {
	cfg, err := configx.New[assistant.Config]("ASSISTANT")
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	app := &App{Config: *cfg}
	ok := false
	defer func() {
		if !ok {
			_ = app.Close()
		}
	}()

	sb, err := sandbox.New(sandbox.WithLocation(loc))
	if err != nil {
		return nil, err
	}
	facades := sb.Facades()
	if cfg.ProfileBackend == assistant.ProfilePostgres {
		profile, err := app.openProfile(ctx)
		if err != nil {
			return nil, err
		}
		facades.Profile = profile
	}

	registry, err := tool.NewCatalog(facades, tool.WithFanout(cfg.Fanout))
	if err != nil {
		return nil, err
	}
	dispatcher := tool.NewDispatcher(registry, tool.WithLocation(loc))

	store, err := app.openStore(ctx)
	if err != nil {
		return nil, err
	}

	p, err := newPlanner(ctx, registry)
	if err != nil {
		return nil, err
	}

	a, err := assistant.New(store, dispatcher, p, *cfg)
	if err != nil {
		return nil, err
	}
	app.Assistant = a

	log.Info().
		Str("session_store", string(cfg.SessionStore)).
		Str("profile_backend", string(cfg.ProfileBackend)).
		Bool("planner", p != nil).
		Str("timezone", loc.String()).
		Msg("assistant wired")

	ok = true
	return app, nil
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) openStore(ctx context.Context) (statex.Store, error) {
	opts := []statex.StoreOption{statex.WithTTL(a.Config.SessionTTL)}

	switch a.Config.SessionStore {
	case statex.StoreTypeMemory:
		return statex.NewMemoryStore(opts...), nil
	case statex.StoreTypeRedis:
		rc, err := configx.New[redisx.Config]("REDIS")
		if err != nil {
			return nil, err
		}
		client, err := redisx.NewClient(*rc)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		if err := redisx.Ping(ctx, client, rc.DialTimeout); err != nil {
			return nil, err
		}
		return statex.NewRedisStore(client, opts...)
	case statex.StoreTypeUpstash:
		uc, err := configx.New[statex.UpstashRedisConfig]("UPSTASH_REDIS")
		if err != nil {
			return nil, err
		}
		return statex.NewUpstashRedisStore(*uc, opts...)
	default:
		return nil, fmt.Errorf("%w: %q", statex.ErrInvalidStore, a.Config.SessionStore)
	}
}

func (a *App) openProfile(ctx context.Context) (*profiledb.Store, error) {
	pc, err := configx.New[postgresx.Config]("POSTGRES")
	if err != nil {
		return nil, err
	}
	db, err := postgresx.Open(*pc)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, db.Close)
	if err := postgresx.Ping(ctx, db, pc.Timeout); err != nil {
		return nil, err
	}

	profile := profiledb.New(db)
	if err := profile.Migrate(ctx); err != nil {
		return nil, err
	}
	return profile, nil
}

// newPlanner returns nil when free-text planning is disabled.
func newPlanner(ctx context.Context, registry *tool.Registry) (contractx.Planner, error) {
	pc, err := configx.New[llm.Config]("PLANNER")
	if err != nil {
		return nil, err
	}
	if err := pc.Validate(); err != nil {
		return nil, err
	}
	if !pc.Enabled() {
		return nil, nil
	}

	prompts := prompt.LoadPromptSet()
	if err := prompts.Validate(); err != nil {
		return nil, err
	}
	orc, err := configx.New[openrouterx.Config]("OPENROUTER")
	if err != nil {
		return nil, err
	}
	conf := pc.ForPlanner(*orc)

	switch pc.Backend {
	case llm.BackendEino:
		chatModel, err := conf.NewChatModel(ctx)
		if err != nil {
			return nil, err
		}
		p, err := planner.NewEinoPlanner(ctx, chatModel, registry, prompts.Planner)
		if err != nil {
			return nil, err
		}
		return p, nil
	case llm.BackendOpenAI:
		client, err := openrouterx.NewClient(conf)
		if err != nil {
			return nil, err
		}
		p, err := planner.NewOpenAIPlanner(client, conf.Model, registry, prompts.Planner,
			planner.WithTemperature(conf.Temperature),
			planner.WithMaxTokens(conf.MaxCompletionToken),
		)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("%w: unknown planner backend %q", contractx.ErrValidation, pc.Backend)
	}
}
