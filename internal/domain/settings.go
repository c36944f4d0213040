package domain

// Defaults applied when a settings row is created on first access.
const (
	DefaultModel             = "gemini-2.5-flash"
	DefaultSystemInstruction = "Ты — умный и полезный ассистент."
	DefaultTemperature       = 0.7
	DefaultMaxTokens         = 2048
)

// SettingField enumerates the mutable settings columns. Writes go through a
// fixed statement per field, so a value outside this set can never reach SQL.
type SettingField string

const (
	FieldUsername          SettingField = "username"
	FieldSelectedModel     SettingField = "selected_model"
	FieldSystemInstruction SettingField = "system_instruction"
	FieldTemperature       SettingField = "temperature"
	FieldMaxTokens         SettingField = "max_tokens"
	FieldUseTools          SettingField = "use_tools"
	FieldStreamResponse    SettingField = "stream_response"
)

func (f SettingField) Valid() bool {
	switch f {
	case FieldUsername, FieldSelectedModel, FieldSystemInstruction,
		FieldTemperature, FieldMaxTokens, FieldUseTools, FieldStreamResponse:
		return true
	}
	return false
}

type Settings struct {
	UserID            int64
	Username          string
	SelectedModel     string
	SystemInstruction string
	Temperature       float64
	MaxTokens         int
	UseTools          bool
	StreamResponse    bool
}

func DefaultSettings(userID int64) Settings {
	return Settings{
		UserID:            userID,
		SelectedModel:     DefaultModel,
		SystemInstruction: DefaultSystemInstruction,
		Temperature:       DefaultTemperature,
		MaxTokens:         DefaultMaxTokens,
		UseTools:          false,
		StreamResponse:    true,
	}
}
