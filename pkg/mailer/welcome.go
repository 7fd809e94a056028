package mailer

import (
	"context"
	"time"

	"github.com/oksasatya/movie-review-api/pkg/mailer/templates"
)

// Publisher is satisfied by *Queue.
type Publisher interface {
	Publish(ctx context.Context, job EmailJob) error
}

// WelcomeNotifier enqueues a welcome email for freshly created accounts.
type WelcomeNotifier struct {
	Pub        Publisher
	AppName    string
	SupportURL string
}

func NewWelcomeNotifier(pub Publisher, appName, supportURL string) *WelcomeNotifier {
	return &WelcomeNotifier{Pub: pub, AppName: appName, SupportURL: supportURL}
}

func (n *WelcomeNotifier) NotifyWelcome(ctx context.Context, email, username string, viaGoogle bool) error {
	data := templates.WelcomeData{
		AppName:    n.AppName,
		Name:       username,
		Email:      email,
		ViaGoogle:  viaGoogle,
		SupportURL: n.SupportURL,
		JoinedAt:   time.Now().UTC().Format("02 January 2006"),
	}
	return n.Pub.Publish(ctx, EmailJob{
		To:       email,
		Template: TemplateWelcome,
		Data:     templates.ToMap(data),
	})
}
