package bot

import (
	"errors"
	"strings"

	"github.com/park285/Eugene-KakaoTalk-bot/internal/facts"
	"go.uber.org/zap"
)

func (b *Bot) handleFact(req request) {
	if !b.isOwner(req) {
		b.text(req.room, b.deps.Formatter.FactNotOwner())
		return
	}
	args, ok := b.bind(req, b.fact, req.inv)
	if !ok {
		return
	}
	character := strings.Join(args, " ")
	fact, err := b.deps.Facts.Random(character)
	if err != nil {
		if !errors.Is(err, facts.ErrUnknownCharacter) {
			b.logger.Warn("fact_lookup_failed", zap.String("character", character), zap.Error(err))
		}
		b.text(req.room, b.deps.Formatter.FactUnknown(character))
		return
	}
	b.text(req.room, fact)
}
