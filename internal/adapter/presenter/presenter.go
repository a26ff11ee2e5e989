package presenter

import (
	"encoding/base64"
	"strings"

	"github.com/park285/Eugene-KakaoTalk-bot/pkg/t3dto"
)

// Presenter delivers formatted messages and board images without coupling to the command layer.
type Presenter struct {
	sendMessage func(room, message string) error
	sendImage   func(room, imageBase64 string) error
}

func NewPresenter(sendMessage func(room, message string) error, sendImage func(room, imageBase64 string) error) *Presenter {
	return &Presenter{
		sendMessage: sendMessage,
		sendImage:   sendImage,
	}
}

// Text sends a plain reply. Blank messages are skipped.
func (p *Presenter) Text(room, message string) error {
	if p == nil || p.sendMessage == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	return p.sendMessage(room, message)
}

// Board sends message followed by the board image of view when one was rendered.
func (p *Presenter) Board(room, message string, view *t3dto.GameView) error {
	if p == nil {
		return nil
	}
	if err := p.Text(room, message); err != nil {
		return err
	}
	if view != nil && len(view.BoardImage) > 0 && p.sendImage != nil {
		encoded := base64.StdEncoding.EncodeToString(view.BoardImage)
		if err := p.sendImage(room, encoded); err != nil {
			return err
		}
	}
	return nil
}
