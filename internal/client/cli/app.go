package cli

import (
	"bufio"
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/focustank/internal/authstate"
	"github.com/dmitrijs2005/focustank/internal/client/client"
	"github.com/dmitrijs2005/focustank/internal/client/config"
	"github.com/dmitrijs2005/focustank/internal/client/platform"
	"github.com/dmitrijs2005/focustank/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/focustank/internal/client/services"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/commitment"
	"github.com/dmitrijs2005/focustank/internal/filex"
	"github.com/dmitrijs2005/focustank/internal/logging"
	"github.com/dmitrijs2005/focustank/internal/reward"
	"github.com/dmitrijs2005/focustank/internal/syncer"
	"github.com/dmitrijs2005/focustank/internal/tuning"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

type App struct {
	config       *config.Config
	log          logging.Logger
	repos        *client.Repositories
	authService  services.AuthService
	focusService *services.FocusService
	store        *collection.Store
	syncer       *syncer.Coordinator
	events       *authstate.Broadcaster
	winnerSlot   int

	mu       sync.Mutex
	userName string
	Mode     Mode

	reader *bufio.Reader
	out    io.Writer
}

// NewApp opens local storage, loads tuning and wires the focus, collection,
// auth and sync services together. Nothing runs until Run is called.
func NewApp(c *config.Config) (*App, error) {
	ctx := context.Background()
	l := logging.New(c.LogLevel, false, os.Stderr)

	dir, err := filex.EnsureDir(c.DataDir)
	if err != nil {
		return nil, err
	}
	c.DataDir = dir

	repos, err := client.InitDatabase(ctx, c.DSN())
	if err != nil {
		l.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	tune, err := tuning.Load(c.TuningFile)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	cat, err := tune.BuildCatalog()
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	table, err := reward.TableFromTuning(tune)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	reader := bufio.NewReader(os.Stdin)
	out := os.Stdout

	roller := reward.NewRoller(cat, table,
		reward.WithDecoyCount(tune.Reward.Decoys),
		reward.WithExceptionalChance(tune.Reward.ExceptionalChance),
		reward.WithLogger(l),
	)

	machine, err := commitment.NewMachine(commitment.DefinitionsFromTuning(tune), metadata.NewCommitmentStore(repos.DB),
		commitment.WithBlocker(platform.NewLogBlocker(l)),
		commitment.WithNotifier(platform.NewTimerNotifier(out)),
		commitment.WithLogger(l),
	)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	if err := machine.Restore(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}

	store, err := collection.NewStore(tune.Collection.VisibleCapacity, repos.Items, collection.WithLogger(l))
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	if err := store.Load(ctx); err != nil {
		_ = repos.Close()
		return nil, err
	}

	apiClient, err := client.NewTankClient(c.ServerEndpointAddr, c.SyncTimeout)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	events := authstate.NewBroadcaster()
	as := services.NewAuthService(apiClient, repos.DB, events, l)

	fs, err := services.NewFocusService(machine, roller, reward.TiersFromTuning(tune), store, repos.Metadata,
		platform.NewPromptPurchaser(reader, out), l)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}

	coord := syncer.NewCoordinator(store, apiClient,
		syncer.WithLogger(l),
		syncer.WithTimeout(c.SyncTimeout),
		syncer.WithOnSync(func(r syncer.Result) { fs.RecordSync(context.Background(), r.At) }),
	)

	return &App{
		config:       c,
		log:          l,
		repos:        repos,
		authService:  as,
		focusService: fs,
		store:        store,
		syncer:       coord,
		events:       events,
		winnerSlot:   tune.Reward.WinnerSlot,
		Mode:         ModeDisabled,
		reader:       reader,
		out:          out,
	}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connection mode changed", "mode", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// Run starts the background workers and blocks in the REPL until the user
// exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	detach := a.syncer.Attach()
	events, unsubscribe := a.events.Subscribe(4)

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		a.syncer.Run(ctx, events)
	}()
	go func() {
		defer wg.Done()
		a.focusService.Watch(ctx, a.config.WatchInterval, a.printCompletion)
	}()
	go func() {
		defer wg.Done()
		a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}()

	a.Root(ctx)

	cancel()
	detach()
	unsubscribe()
	wg.Wait()
	a.syncer.Close()

	if err := a.authService.Close(ctx); err != nil {
		a.log.Warn(ctx, "client close", "error", err)
	}
	if err := a.repos.Close(); err != nil {
		a.log.Warn(ctx, "database close", "error", err)
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) setUser(name string) {
	a.mu.Lock()
	a.userName = name
	a.mu.Unlock()
}

// StartOnlineStatusWatcher pings the server every interval and flips Mode
// between online and offline. It never signs the user in or out.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if !a.isLoggedIn() {
				continue
			}
			pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			err := a.authService.Ping(pctx)
			cancel()

			if err != nil {
				if a.mode() == ModeOnline {
					a.setMode(ModeOffline)
				}
			} else if a.mode() != ModeOnline {
				a.setMode(ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
