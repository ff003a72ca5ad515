package config

import "time"

const (
	// Messages
	MaxContentLength          = 2000
	NotificationPreviewLength = 50
	HistoryDefaultLimit       = 50
	HistoryMaxLimit           = 100

	// Connections
	SendBufferSize = 256
	MaxFrameSize   = 16 << 10
	WriteWait      = 10 * time.Second
	PongWait       = 60 * time.Second
	PingPeriod     = (PongWait * 9) / 10

	// SendTimeout bounds the persistence work of one inbound event. It is
	// detached from the connection, so a disconnect does not abort it.
	SendTimeout = 10 * time.Second

	// Telegram
	TelegramLinkCodeTTL = 10 * time.Minute
)

// Event payload limits per connection.
const (
	DefaultEventRatePerSecond = 10
	DefaultEventBurst         = 20
)
