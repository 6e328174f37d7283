package models

import "gorm.io/gorm"

type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelWebhook Channel = "webhook"
	ChannelSlack   Channel = "slack"
	ChannelDiscord Channel = "discord"
)

// Trigger addresses one notification channel for an alert config. The
// pipeline only reads triggers; rendering and transport live behind the
// notifier's capabilities.
type Trigger struct {
	gorm.Model

	ConfigID uint `gorm:"index"`

	Channel    Channel
	TemplateID uint

	// Meta is the channel addressing blob (recipient, webhook URL, ...),
	// opaque to the core.
	Meta string

	IsActive bool
}

// Secret is one name/value pair materialized into the executor environment
// before each scheduling pass. Deployments with an external secrets store
// implement the store capability instead.
type Secret struct {
	gorm.Model

	Name  string `gorm:"unique"`
	Value string
}
