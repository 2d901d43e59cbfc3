package vote

import (
	"log/slog"

	"voteboard/vote/adapters/hexid"
	httpadapter "voteboard/vote/adapters/http"
	"voteboard/vote/adapters/memory"
	"voteboard/vote/application"
	"voteboard/vote/domain/entities"
	"voteboard/vote/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Store    ports.VoteStore
	IDGen    ports.VoterIDGenerator
	Clock    ports.Clock
	Observer ports.OutcomeObserver
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.VoteService{
		Store:    deps.Store,
		IDGen:    deps.IDGen,
		Clock:    deps.Clock,
		Observer: deps.Observer,
		Logger:   deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{
			Votes:  service,
			Logger: deps.Logger,
		},
	}
}

// NewInMemoryModule wires the module against the memory store, for tests and
// backendless local runs.
func NewInMemoryModule(seed []entities.VoteRecord, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Store:  store,
		IDGen:  hexid.Generator{},
		Clock:  store,
		Logger: logger,
	})
	module.Store = store
	return module
}
