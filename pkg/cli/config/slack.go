package config

import (
	"github.com/pergamene/pergamene/pkg/infra/slack"
	"github.com/urfave/cli/v3"
)

// Slack holds archive notification configuration
type Slack struct {
	WebhookURL string `masq:"secret"`
	Channel    string
}

// Flags returns CLI flags for Slack configuration
func (c *Slack) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "slack-webhook-url",
			Usage:       "Slack incoming webhook for archive notifications",
			Destination: &c.WebhookURL,
			Sources:     cli.EnvVars("PERGAMENE_SLACK_WEBHOOK_URL"),
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel overriding the webhook default",
			Destination: &c.Channel,
			Sources:     cli.EnvVars("PERGAMENE_SLACK_CHANNEL"),
		},
	}
}

// Notifier returns the Slack notifier, or nil when no webhook is configured
func (c *Slack) Notifier() *slack.Notifier {
	if c.WebhookURL == "" {
		return nil
	}
	return slack.NewNotifier(c.WebhookURL, c.Channel)
}
