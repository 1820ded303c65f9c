package session

// Capability identifies a pending multi-turn feature awaiting free-text input.
// The set is closed: routing matches it exhaustively so a new capability that
// is not handled fails compilation review, not silently at runtime.
type Capability int

const (
	// CapNone means no conversation is in progress.
	CapNone Capability = iota
	// CapImagePrompt awaits a description for image generation.
	CapImagePrompt
	// CapTextPrompt awaits a question for the text AI.
	CapTextPrompt
	// CapWeatherLocation awaits a city name.
	CapWeatherLocation
	// CapCurrencyInput awaits "<amount> <from> <to>".
	CapCurrencyInput
	// CapQRInput awaits the QR payload text.
	CapQRInput
	// CapBookQuery awaits a book title.
	CapBookQuery
	// CapBroadcastMessage awaits the admin broadcast body.
	CapBroadcastMessage
)

var capabilityNames = map[Capability]string{
	CapNone:             "none",
	CapImagePrompt:      "image_prompt",
	CapTextPrompt:       "text_prompt",
	CapWeatherLocation:  "weather_location",
	CapCurrencyInput:    "currency_input",
	CapQRInput:          "qr_input",
	CapBookQuery:        "book_query",
	CapBroadcastMessage: "broadcast_message",
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return "unknown"
}
