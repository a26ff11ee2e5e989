package bot

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/adapter/presenter"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/boardimage"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/facts"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/irisfast"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/msgcat"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/results"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/scoreboard"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/session"
	"github.com/park285/Eugene-KakaoTalk-bot/internal/tictactoe"
	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	room    = "room-1"
	ownerID = "owner-42"
)

type reply struct {
	room  string
	text  string
	image bool
}

// recorder is a Replier that keeps every reply.
type recorder struct {
	mu      sync.Mutex
	replies []reply
}

func (r *recorder) Text(room, message string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply{room: room, text: message})
	return nil
}

func (r *recorder) Board(room, message string, view *t3dto.GameView) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, reply{room: room, text: message, image: view != nil && len(view.BoardImage) > 0})
	return nil
}

func (r *recorder) last(t *testing.T) reply {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	require.NotEmpty(t, r.replies)
	return r.replies[len(r.replies)-1]
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.replies)
}

type fakeImages struct{ err error }

func (f fakeImages) RenderPNG(context.Context, tictactoe.Board, tictactoe.Player, tictactoe.Player, boardimage.Options) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []byte{0x89, 'P', 'N', 'G'}, nil
}

type fixture struct {
	bot     *Bot
	replies *recorder
	reg     *session.Registry
	scores  *scoreboard.MemoryStore
	archive results.Repository
}

type prefix string

func (p prefix) Prefix() string { return string(p) }

func newFixture(t *testing.T, tweak ...func(*Deps)) *fixture {
	t.Helper()
	cat, err := msgcat.New("")
	require.NoError(t, err)
	book, err := facts.Parse([]byte("spongebob:\n  - SpongeBob lives in a pineapple.\n  - SpongeBob is a fry cook.\n"),
		facts.WithPicker(func(int) int { return 0 }))
	require.NoError(t, err)

	f := &fixture{
		replies: &recorder{},
		scores:  scoreboard.NewMemoryStore(),
		archive: results.NewMemoryRepository(),
	}
	f.reg = session.NewRegistry(session.Config{
		MaxGames: 2,
		OnDrop:   RecordResults(f.scores, f.archive, nil),
	})
	deps := Deps{
		Registry:  f.reg,
		Formatter: presenter.NewFormatter(cat, prefix("~"), nil),
		Replier:   f.replies,
		Scores:    f.scores,
		Archive:   f.archive,
		Facts:     book,
	}
	for _, fn := range tweak {
		fn(&deps)
	}
	f.bot, err = New(deps, Config{Prefix: "~", OwnerID: ownerID, Status: "tic tac toe"})
	require.NoError(t, err)
	return f
}

func message(sender, userID, text string) *irisfast.Message {
	m := &irisfast.Message{Msg: text, Room: room, Sender: &sender}
	if userID != "" {
		m.JSON = &irisfast.MessageJSON{UserID: userID}
	}
	return m
}

// say sends text as sender and returns the reply it produced.
func (f *fixture) say(t *testing.T, sender, text string) string {
	t.Helper()
	before := f.replies.count()
	f.bot.Handle(context.Background(), message(sender, "", text))
	require.Equal(t, before+1, f.replies.count(), "expected exactly one reply to %q", text)
	return f.replies.last(t).text
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Deps{}, Config{Prefix: "~"})
	assert.Error(t, err)
}

func TestHandle_IgnoresUnprefixedMessages(t *testing.T) {
	f := newFixture(t)

	f.bot.Handle(context.Background(), message("Alice", "", "t3 start X Bob O"))
	f.bot.Handle(context.Background(), message("Alice", "", "   "))
	f.bot.Handle(context.Background(), nil)

	assert.Zero(t, f.replies.count())
}

func TestHandle_UnknownCommand(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Unknown command!", f.say(t, "Alice", "~dance"))
	assert.Equal(t, "Unknown command!", f.say(t, "Alice", "~t3 dance"))
}

func TestHandle_Help(t *testing.T) {
	f := newFixture(t)

	for _, text := range []string{"~help", "~", "~t3", "~t3 help"} {
		out := f.say(t, "Alice", text)
		assert.True(t, strings.HasPrefix(out, "Eugene is playing tic tac toe"), text)
		assert.Contains(t, out, "~t3 put <position>", text)
	}
}

func TestHandle_UsageErrors(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		text string
		want string
	}{
		{"~t3 start X Bob", "Usage: ~t3 start <player-1-mark> <player-2-name/@> <player-2-mark>"},
		{"~t3 start X Bob O extra", "Usage: ~t3 start <player-1-mark> <player-2-name/@> <player-2-mark>"},
		{"~t3 put", "Usage: ~t3 put <position>"},
		{"~t3 put 1 2", "Usage: ~t3 put <position>"},
		{"~t3 quit now", "Usage: ~t3 quit"},
		{"~t3 board please", "Usage: ~t3 board"},
		{"~t3 stats a b", "Usage: ~t3 stats [name]"},
		{"~t3 history many", "Usage: ~t3 history [count]"},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, f.say(t, "Alice", tt.text))
		})
	}
}

func TestT3_FullGame(t *testing.T) {
	// Given
	f := newFixture(t)
	out := f.say(t, "Alice", "~t3 start X @Bob O")
	require.True(t, strings.HasPrefix(out, "A new game of tic tac toe has been started between Alice and Bob!"))
	assert.True(t, strings.HasSuffix(out, tictactoe.Legend()))

	// When
	assert.True(t, strings.HasSuffix(f.say(t, "Alice", "~t3 put 0"), "Bob O, it's your turn!"))
	assert.True(t, strings.HasSuffix(f.say(t, "Bob", "~t3 put 3"), "Alice X, it's your turn!"))
	f.say(t, "Alice", "~t3 put 1")
	f.say(t, "Bob", "~t3 put 4")
	out = f.say(t, "Alice", "~t3 PUT 2")

	// Then
	assert.True(t, strings.HasSuffix(out, "Alice has won!"))
	stored, leased := f.reg.Len()
	assert.Zero(t, stored)
	assert.Zero(t, leased)

	alice, err := f.scores.Get(context.Background(), "Alice")
	require.NoError(t, err)
	assert.EqualValues(t, 1, alice.Wins)
	bob, err := f.scores.Get(context.Background(), "Bob")
	require.NoError(t, err)
	assert.EqualValues(t, 1, bob.Losses)

	archived, err := f.archive.Recent(context.Background(), "Bob", 5)
	require.NoError(t, err)
	require.Len(t, archived, 1)
	assert.Equal(t, results.OutcomePlayer1, archived[0].Outcome)
	assert.Equal(t, string(session.DropFinished), archived[0].Reason)

	assert.Equal(t, "You are not in a game!", f.say(t, "Alice", "~t3 put 5"))
	assert.Equal(t, "Alice: 1 wins, 0 losses, 0 draws", f.say(t, "Bob", "~t3 stats @Alice"))
	assert.Equal(t, "Bob: 0 wins, 1 losses, 0 draws", f.say(t, "Bob", "~t3 stats"))
}

func TestT3_RejectedMovesKeepTheTurn(t *testing.T) {
	f := newFixture(t)
	f.say(t, "Alice", "~t3 start X Bob O")

	assert.Equal(t, "Wait for your turn, Bob!", f.say(t, "Bob", "~t3 put 4"))
	assert.Equal(t, "x is not a position. Pick a number from 0 to 8.", f.say(t, "Alice", "~t3 put x"))
	assert.Equal(t, "9 is not a position. Pick a number from 0 to 8.", f.say(t, "Alice", "~t3 put 9"))
	f.say(t, "Alice", "~t3 put 4")
	assert.Equal(t, "Position 4 is already taken!", f.say(t, "Bob", "~t3 put 4"))

	out := f.say(t, "Bob", "~t3 board")
	assert.True(t, strings.HasSuffix(out, "Bob O, it's your turn!"))
	stored, leased := f.reg.Len()
	assert.Equal(t, 1, stored)
	assert.Zero(t, leased)
}

func TestT3_StartErrors(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "You can't play against yourself!", f.say(t, "Alice", "~t3 start X @Alice O"))
	assert.Equal(t, "Both players picked X, choose different marks.", f.say(t, "Alice", "~t3 start X Bob X"))

	f.say(t, "Alice", "~t3 start X Bob O")
	assert.Equal(t, "Alice is already in a game!", f.say(t, "Alice", "~t3 start X Carol O"))
	assert.Equal(t, "Bob is already in a game!", f.say(t, "Carol", "~t3 start X Bob O"))

	f.say(t, "Carol", "~t3 start X Dave O")
	assert.Equal(t, "Too many games are running right now, try again later.", f.say(t, "Erin", "~t3 start X Frank O"))
}

func TestT3_Quit(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "You are not in a game!", f.say(t, "Alice", "~t3 quit"))

	f.say(t, "Alice", "~t3 start X Bob O")
	f.say(t, "Alice", "~t3 put 0")
	assert.Equal(t, "Your game has been ended early.", f.say(t, "Bob", "~t3 quit"))
	assert.Equal(t, "You are not in a game!", f.say(t, "Alice", "~t3 board"))

	rec, err := f.scores.Get(context.Background(), "Alice")
	require.NoError(t, err)
	assert.Zero(t, rec.Played())

	out := f.say(t, "Alice", "~t3 history")
	assert.True(t, strings.HasPrefix(out, "Last games of Alice:\nAbandoned vs Bob in 1 moves"), out)
}

func TestT3_HistoryWithoutGames(t *testing.T) {
	f := newFixture(t)

	assert.Equal(t, "Alice has no archived games yet.", f.say(t, "Alice", "~t3 history 3"))
}

func TestT3_HistoryWithoutArchive(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.Archive = nil })

	assert.Equal(t, "Stats are not available right now.", f.say(t, "Alice", "~t3 history"))
}

func TestT3_BoardImage(t *testing.T) {
	t.Run("Attached when rendered", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Images = fakeImages{} })
		f.say(t, "Alice", "~t3 start X Bob O")

		f.say(t, "Alice", "~t3 put 4")

		assert.True(t, f.replies.last(t).image)
	})

	t.Run("Text only when rendering fails", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) { d.Images = fakeImages{err: errors.New("no font")} })
		f.say(t, "Alice", "~t3 start X Bob O")

		out := f.say(t, "Alice", "~t3 board")

		assert.False(t, f.replies.last(t).image)
		assert.True(t, strings.HasSuffix(out, "Alice X, it's your turn!"))
	})
}

func TestFact(t *testing.T) {
	f := newFixture(t)

	t.Run("Owner only", func(t *testing.T) {
		f.bot.Handle(context.Background(), message("Alice", "someone-else", "~fact spongebob"))
		assert.Equal(t, "Only my owner can ask for facts.", f.replies.last(t).text)
	})

	t.Run("Owner by user id", func(t *testing.T) {
		f.bot.Handle(context.Background(), message("Boss", ownerID, "~fact SpongeBob"))
		assert.Equal(t, "SpongeBob lives in a pineapple.", f.replies.last(t).text)
	})

	t.Run("Unknown character", func(t *testing.T) {
		f.bot.Handle(context.Background(), message("Boss", ownerID, "~fact mr krabs"))
		assert.Equal(t, "I don't know any facts about mr krabs.", f.replies.last(t).text)
	})

	t.Run("Missing character", func(t *testing.T) {
		f.bot.Handle(context.Background(), message("Boss", ownerID, "~fact"))
		assert.Equal(t, "Usage: ~fact <character>", f.replies.last(t).text)
	})
}

type panickingImages struct{}

func (panickingImages) RenderPNG(context.Context, tictactoe.Board, tictactoe.Player, tictactoe.Player, boardimage.Options) ([]byte, error) {
	panic("renderer exploded")
}

func TestHandle_RecoversPanicAndChecksGameIn(t *testing.T) {
	// Given
	f := newFixture(t, func(d *Deps) { d.Images = panickingImages{} })
	f.say(t, "Alice", "~t3 start X Bob O")

	// When
	out := f.say(t, "Alice", "~t3 put 0")

	// Then
	assert.Equal(t, "Something went wrong, try again.", out)
	stored, leased := f.reg.Len()
	assert.Equal(t, 1, stored)
	assert.Zero(t, leased)
}

func TestHandle_ConcurrentPlayers(t *testing.T) {
	f := newFixture(t)
	f.say(t, "Alice", "~t3 start X Bob O")

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			f.bot.Handle(context.Background(), message("Alice", "", "~t3 board"))
		}()
		go func() {
			defer wg.Done()
			f.bot.Handle(context.Background(), message("Bob", "", "~t3 put 4"))
		}()
	}
	wg.Wait()

	assert.Equal(t, 33, f.replies.count())
	stored, leased := f.reg.Len()
	assert.Equal(t, 1, stored)
	assert.Zero(t, leased)
}
