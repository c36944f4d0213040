package config

import "time"

const (
	// Conversation context
	HistoryLimit = 10

	// AI request timeout
	RequestTimeout = 90 * time.Second

	// Audio upload processing poll
	MediaPollInterval = 1 * time.Second
	MediaPollTimeout  = 60 * time.Second

	// Display update cadence
	EditMinInterval = 1 * time.Second
	EditBurstChars  = 100

	// Telegram limits
	MaxTelegramMessageLen = 4096

	// Input validation
	MaxTextLength = 4000
	MaxFileSize   = 20 * 1024 * 1024 // 20MB

	// Rate limit: requests per window per chat
	RateLimitRequests = 3
	RateLimitWindow   = 60 * time.Second

	// Typing indicator refresh
	TypingInterval = 4 * time.Second
)

// TemperatureOptions shown in the settings keyboard.
var TemperatureOptions = []float64{0.2, 0.5, 0.7, 1.0, 1.5}

// FallbackModels is used when the model list cannot be fetched at startup.
var FallbackModels = []string{"gemini-2.5-flash", "gemini-2.5-pro"}
