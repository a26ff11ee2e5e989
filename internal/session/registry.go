package session

import (
	"context"
	"sync"
	"time"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"go.uber.org/zap"
)

// DropReason says why a game left the registry for good.
type DropReason string

const (
	DropFinished  DropReason = "finished"
	DropAbandoned DropReason = "abandoned"
	DropExpired   DropReason = "expired"
)

// DropHook observes games that are removed permanently. It runs on the caller's
// goroutine after the registry lock has been released.
type DropHook func(g *tictactoe.Game, reason DropReason)

type Config struct {
	// MaxGames bounds idle plus checked-out games; zero means unbounded.
	MaxGames int
	Logger   *zap.Logger
	OnDrop   DropHook
	// Now is the clock used for idle tracking.
	Now func() time.Time
}

type entry struct {
	game  *tictactoe.Game
	since time.Time
}

// Registry is the single shared collection of games in progress. A game is either
// stored here or held by exactly one Lease, never both.
type Registry struct {
	mu      sync.Mutex
	entries []entry

	// names of players whose game is currently checked out
	leased   map[string]struct{}
	inFlight int

	maxGames int
	logger   *zap.Logger
	onDrop   DropHook
	now      func() time.Time
}

func NewRegistry(cfg Config) *Registry {
	r := &Registry{
		leased:   make(map[string]struct{}),
		maxGames: cfg.MaxGames,
		logger:   cfg.Logger,
		onDrop:   cfg.OnDrop,
		now:      cfg.Now,
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// Start registers a new game between two players. Either player already owning a
// game, stored or checked out, rejects the start.
func (r *Registry) Start(player1, player2 tictactoe.Player) error {
	if err := tictactoe.ValidatePlayers(player1, player2); err != nil {
		return err
	}

	r.mu.Lock()
	for _, p := range []tictactoe.Player{player1, player2} {
		if r.ownsGameLocked(p.Name) {
			r.mu.Unlock()
			return &PlayerAlreadyInGameError{Name: p.Name}
		}
	}
	if r.maxGames > 0 && len(r.entries)+r.inFlight >= r.maxGames {
		r.mu.Unlock()
		return ErrRegistryFull
	}
	g := tictactoe.NewGame(player1, player2)
	r.entries = append(r.entries, entry{game: g, since: r.now()})
	r.mu.Unlock()

	r.logger.Info("t3_game_start",
		zap.String("game_id", g.ID),
		zap.String("player1", player1.Name),
		zap.String("player2", player2.Name),
	)
	return nil
}

// Checkout removes the game of name from the registry and hands it to the caller.
// It returns nil when the player has no stored game, including when the game is
// already checked out by someone else.
func (r *Registry) Checkout(name string) *Lease {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if !e.game.HasPlayer(name) {
			continue
		}
		r.entries = append(r.entries[:i], r.entries[i+1:]...)
		r.markLeasedLocked(e.game, true)
		return &Lease{reg: r, game: e.game}
	}
	return nil
}

// With checks out the game of name, runs fn on it and always checks it back in,
// also when fn panics. found is false when the player has no game.
func (r *Registry) With(name string, fn func(g *tictactoe.Game) error) (found bool, err error) {
	lease := r.Checkout(name)
	if lease == nil {
		return false, nil
	}
	defer lease.Checkin()
	return true, fn(lease.Game())
}

// Abandon drops the game of name without checking it back in.
func (r *Registry) Abandon(name string) bool {
	lease := r.Checkout(name)
	if lease == nil {
		return false
	}
	lease.Discard()
	return true
}

// Sweep drops stored games that have not been checked in for longer than maxIdle.
func (r *Registry) Sweep(maxIdle time.Duration) int {
	if maxIdle <= 0 {
		return 0
	}
	cutoff := r.now().Add(-maxIdle)

	r.mu.Lock()
	var expired []*tictactoe.Game
	kept := r.entries[:0]
	for _, e := range r.entries {
		if e.since.Before(cutoff) {
			expired = append(expired, e.game)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.entries); i++ {
		r.entries[i] = entry{}
	}
	r.entries = kept
	r.mu.Unlock()

	for _, g := range expired {
		r.dropped(g, DropExpired)
	}
	return len(expired)
}

// RunSweeper calls Sweep every interval until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, interval, maxIdle time.Duration) {
	if interval <= 0 || maxIdle <= 0 {
		return
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := r.Sweep(maxIdle); n > 0 {
				r.logger.Info("t3_sweep", zap.Int("expired", n))
			}
		}
	}
}

// Len returns the number of stored and checked-out games.
func (r *Registry) Len() (stored, leased int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries), r.inFlight
}

func (r *Registry) ownsGameLocked(name string) bool {
	if _, ok := r.leased[name]; ok {
		return true
	}
	for _, e := range r.entries {
		if e.game.HasPlayer(name) {
			return true
		}
	}
	return false
}

func (r *Registry) markLeasedLocked(g *tictactoe.Game, leased bool) {
	if leased {
		r.inFlight++
	} else {
		r.inFlight--
	}
	for _, name := range []string{g.Player1().Name, g.Player2().Name} {
		if leased {
			r.leased[name] = struct{}{}
		} else {
			delete(r.leased, name)
		}
	}
}

func (r *Registry) checkin(g *tictactoe.Game) {
	r.mu.Lock()
	r.markLeasedLocked(g, false)
	r.entries = append(r.entries, entry{game: g, since: r.now()})
	r.mu.Unlock()
}

func (r *Registry) release(g *tictactoe.Game) {
	r.mu.Lock()
	r.markLeasedLocked(g, false)
	r.mu.Unlock()
}

func (r *Registry) dropped(g *tictactoe.Game, reason DropReason) {
	r.logger.Info("t3_game_drop",
		zap.String("game_id", g.ID),
		zap.String("reason", string(reason)),
		zap.String("state", g.State().String()),
		zap.Int("moves", g.Moves()),
	)
	if r.onDrop != nil {
		r.onDrop(g, reason)
	}
}
