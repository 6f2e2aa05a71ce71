package slack

import (
	"context"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pergamene/pergamene/pkg/domain/interfaces"
	"github.com/pergamene/pergamene/pkg/domain/model"
	"github.com/slack-go/slack"
)

// Notifier posts archive summaries to a Slack incoming webhook
type Notifier struct {
	webhookURL string
	channel    string
}

var _ interfaces.Notifier = (*Notifier)(nil)

// NewNotifier creates a notifier. channel overrides the webhook default when set.
func NewNotifier(webhookURL, channel string) *Notifier {
	return &Notifier{webhookURL: webhookURL, channel: channel}
}

func (n *Notifier) NotifyArchive(ctx context.Context, result *model.ArchiveResult) error {
	msg := &slack.WebhookMessage{
		Channel: n.channel,
		Text:    fmt.Sprintf("Archiviazione completata. Protocollo: %s", result.Protocol),
		Attachments: []slack.Attachment{
			{
				Color: "good",
				Title: result.Name,
				Fields: []slack.AttachmentField{
					{Title: "Tipologia", Value: result.Category, Short: true},
					{Title: "Facoltà", Value: result.Faculty, Short: true},
					{Title: "Anno Laurea", Value: result.Year, Short: true},
					{Title: "Totale", Value: fmt.Sprintf("%d", result.Total), Short: true},
					{Title: "Destinazioni", Value: strings.Join(result.Destinations, "\n")},
				},
			},
		},
	}

	if err := slack.PostWebhookContext(ctx, n.webhookURL, msg); err != nil {
		return goerr.Wrap(err, "failed to post slack notification", goerr.V("archive", result.Name))
	}
	return nil
}
