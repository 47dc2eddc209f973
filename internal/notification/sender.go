package notification

import (
	"context"
	"fmt"
)

// Handler はイベントを1件処理する
type Handler interface {
	Handle(ctx context.Context, ev Event) error
}

// Sender はテンプレートを描画してメールを送る
type Sender struct {
	renderer *Renderer
	mailer   Mailer
}

func NewSender(renderer *Renderer, mailer Mailer) *Sender {
	return &Sender{renderer: renderer, mailer: mailer}
}

func (s *Sender) Handle(ctx context.Context, ev Event) error {
	msg, err := s.renderer.Render(ev)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg); err != nil {
		return fmt.Errorf("%s to %s: %w", ev.Kind, ev.To, err)
	}
	return nil
}
