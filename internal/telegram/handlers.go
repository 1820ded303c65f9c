package telegram

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"universebot/internal/feature"
	"universebot/internal/session"
)

// Prompt texts shown when a capability is armed and the bot waits for the
// next free-text message.
const (
	promptImage = "🎨 *AI Image Generator*\n\n" +
		"Send me a description and I'll create an image!\n\n" +
		"Example: _A futuristic city at sunset_"
	promptChat = "💬 *AI Chat*\n\n" +
		"Ask me anything! I'll use AI to respond.\n\n" +
		"Example: _Explain quantum computing_"
	promptStory = "✍️ *Story Generator*\n\n" +
		"Give me a topic and I'll write a story!\n\n" +
		"Example: _A robot learning to love_"
	promptCreative = "🎭 *Creative Writing*\n\n" +
		"Tell me what to write about!\n\n" +
		"Example: _A poem about the ocean_"
	promptWeather = "🌤️ *Weather Information*\n\n" +
		"Send me a city name!\n\n" +
		"Example: _London_"
	promptCurrency = "💱 *Currency Converter*\n\n" +
		"Format: amount from to\n\n" +
		"Example: _100 USD EUR_"
	promptQR = "📱 *QR Code Generator*\n\n" +
		"Send me text or URL to convert!\n\n" +
		"Example: _https://telegram.org_"
	promptBook = "📚 *Book Search*\n\n" +
		"Send me a book title!\n\n" +
		"Example: _1984_"
	promptCountry = "🌍 *Country Information*\n\n" +
		"Send me a country name!\n\n" +
		"Example: _Japan_"
	promptBroadcast = "📢 *Broadcast Message*\n\n" +
		"Send me the message to deliver to all users."
)

const groupToolsText = "🌐 *Group Tools*\n\n" +
	"Add me to your group for:\n" +
	"• Auto-welcome new members\n" +
	"• Group statistics\n" +
	"• Fun group interactions\n\n" +
	"Just add me and I'll work automatically!"

const helpText = "📖 *Universe Bot - Help Guide*\n\n" +
	"*🤖 AI Commands:*\n" +
	"/imagine <prompt> - Generate AI image\n" +
	"/ask <question> - Ask AI anything\n\n" +
	"*🎉 Entertainment Commands:*\n" +
	"/meme - Random meme\n" +
	"/joke - Random joke\n" +
	"/quote - Inspirational quote\n" +
	"/dog - Random dog image\n" +
	"/cat - Random cat image\n" +
	"/recipe - Random recipe\n" +
	"/activity - Suggest an activity\n" +
	"/fact - Random fact\n" +
	"/comic - Random comic\n\n" +
	"*💰 Utility Commands:*\n" +
	"/weather <city> - Get weather\n" +
	"/convert <amount> <from> <to> - Currency\n" +
	"/qr <text> - Generate QR code\n" +
	"/book <title> - Search books\n" +
	"/country <name> - Country info\n\n" +
	"*📊 Crypto Commands:*\n" +
	"/btc - Bitcoin price\n" +
	"/eth - Ethereum price\n" +
	"/doge - Dogecoin price\n" +
	"/crypto <symbol> - Any crypto price\n\n" +
	"*⚙️ Admin Commands:*\n" +
	"/broadcast <message> - Send to all users\n" +
	"/stats - Bot statistics\n" +
	"/users - List all users\n\n" +
	"*Other:*\n" +
	"/cancel - Cancel the current operation\n\n" +
	"💡 *Tip: Use the menu buttons for easy navigation!*"

const adminDeniedText = "❌ Admin access required!"

// Handlers binds the feature service, conversation state, and broadcast flow
// to the command and callback registry.
type Handlers struct {
	svc     *feature.Service
	conv    *session.Conversations
	users   *session.Registry
	flow    *BroadcastFlow
	adminID int64
}

// NewHandlers constructs the handler set.
func NewHandlers(svc *feature.Service, conv *session.Conversations, flow *BroadcastFlow, adminID int64) *Handlers {
	return &Handlers{
		svc:     svc,
		conv:    conv,
		users:   svc.Users(),
		flow:    flow,
		adminID: adminID,
	}
}

// track records the sender in the user registry.
func (h *Handlers) track(c tele.Context) {
	if u := c.Sender(); u != nil {
		h.users.Touch(u.ID, u.Username)
	}
}

func (h *Handlers) ids(c tele.Context) (chatID, userID int64) {
	if chat := c.Chat(); chat != nil {
		chatID = chat.ID
	}
	if u := c.Sender(); u != nil {
		userID = u.ID
	}
	return chatID, userID
}

func isGroup(c tele.Context) bool {
	chat := c.Chat()
	if chat == nil {
		return false
	}
	return chat.Type == tele.ChatGroup || chat.Type == tele.ChatSuperGroup
}

// wrap counts the command and tracks the user.
func (h *Handlers) wrap(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.track(c)
		h.svc.Stats().Command()
		return next(c)
	}
}

// Register fills the registry with every command and callback route.
// Admin-only commands pass through the admin gate middleware.
func (h *Handlers) Register(reg *Registry) {
	adminGate := AdminOnlyMiddleware(AdminOptions{
		AdminID: h.adminID,
		OnReject: func(c tele.Context) error {
			return c.Send(adminDeniedText)
		},
	})
	register := func(name string, meta Command) {
		if meta.AdminOnly {
			meta.Handler = adminGate(meta.Handler)
		}
		meta.Handler = h.wrap(meta.Handler)
		reg.RegisterCommand(name, meta)
	}

	register("/start", Command{Handler: h.start, Description: "Start the bot"})
	register("/help", Command{Handler: h.help, Description: "Show help"})
	register("/cancel", Command{Handler: h.cancel, Description: "Cancel the current operation"})

	register("/imagine", Command{Handler: h.armed(session.CapImagePrompt, promptImage, h.svc.Imagine), Description: "Generate AI image", Aliases: []string{"image"}})
	register("/ask", Command{Handler: h.armed(session.CapTextPrompt, promptChat, h.svc.Ask), Description: "Ask AI anything"})
	register("/weather", Command{Handler: h.armed(session.CapWeatherLocation, promptWeather, h.svc.Weather), Description: "Get weather"})
	register("/convert", Command{Handler: h.armed(session.CapCurrencyInput, promptCurrency, h.svc.Convert), Description: "Convert currency"})
	register("/qr", Command{Handler: h.armed(session.CapQRInput, promptQR, h.svc.QR), Description: "Generate QR code", Aliases: []string{"qrcode"}})
	register("/book", Command{Handler: h.armed(session.CapBookQuery, promptBook, h.svc.Book), Description: "Search books"})

	register("/country", Command{Handler: h.country, Description: "Country info"})
	register("/crypto", Command{Handler: h.crypto, Description: "Any crypto price"})
	register("/btc", Command{Handler: h.coin("btc"), Description: "Bitcoin price"})
	register("/eth", Command{Handler: h.coin("eth"), Description: "Ethereum price"})
	register("/doge", Command{Handler: h.coin("doge"), Description: "Dogecoin price"})

	register("/meme", Command{Handler: h.simple(h.svc.Meme), Description: "Random meme"})
	register("/joke", Command{Handler: h.simple(h.svc.Joke), Description: "Random joke"})
	register("/quote", Command{Handler: h.simple(h.svc.Quote), Description: "Inspirational quote"})
	register("/dog", Command{Handler: h.simple(h.svc.Dog), Description: "Random dog image"})
	register("/cat", Command{Handler: h.simple(h.svc.Cat), Description: "Random cat image"})
	register("/recipe", Command{Handler: h.simple(h.svc.Recipe), Description: "Random recipe"})
	register("/activity", Command{Handler: h.simple(h.svc.Activity), Description: "Suggest an activity"})
	register("/fact", Command{Handler: h.simple(h.svc.Fact), Description: "Random fact"})
	register("/comic", Command{Handler: h.simple(h.svc.Comic), Description: "Random comic"})

	register("/ping", Command{Handler: h.ping, Description: "Liveness check", Hidden: true})

	register("/stats", Command{Handler: h.stats, Description: "Bot statistics", AdminOnly: true})
	register("/users", Command{Handler: h.usersCmd, Description: "List all users", AdminOnly: true})
	register("/broadcast", Command{Handler: h.broadcast, Description: "Send to all users", AdminOnly: true})

	// AI prompts arm a capability and wait for the next message.
	reg.RegisterCallback(CBAIImage, h.armCallback(session.CapImagePrompt, promptImage))
	reg.RegisterCallback(CBAIChat, h.armCallback(session.CapTextPrompt, promptChat))
	reg.RegisterCallback(CBAIStory, h.armCallback(session.CapTextPrompt, promptStory))
	reg.RegisterCallback(CBAICreative, h.armCallback(session.CapTextPrompt, promptCreative))

	reg.RegisterCallback(CBEntMeme, h.featureCallback(h.svc.Meme))
	reg.RegisterCallback(CBEntJoke, h.featureCallback(h.svc.Joke))
	reg.RegisterCallback(CBEntQuote, h.featureCallback(h.svc.Quote))
	reg.RegisterCallback(CBEntDog, h.featureCallback(h.svc.Dog))
	reg.RegisterCallback(CBEntCat, h.featureCallback(h.svc.Cat))
	reg.RegisterCallback(CBEntRecipe, h.featureCallback(h.svc.Recipe))
	reg.RegisterCallback(CBEntActivity, h.featureCallback(h.svc.Activity))
	reg.RegisterCallback(CBEntFact, h.featureCallback(h.svc.Fact))
	reg.RegisterCallback(CBEntComic, h.featureCallback(h.svc.Comic))

	reg.RegisterCallback(CBUtilWeather, h.armCallback(session.CapWeatherLocation, promptWeather))
	reg.RegisterCallback(CBUtilCurrency, h.armCallback(session.CapCurrencyInput, promptCurrency))
	reg.RegisterCallback(CBUtilQR, h.armCallback(session.CapQRInput, promptQR))
	reg.RegisterCallback(CBUtilBook, h.armCallback(session.CapBookQuery, promptBook))
	reg.RegisterCallback(CBUtilCountry, func(c tele.Context) error {
		return c.Edit(promptCountry, tele.ModeMarkdown)
	})

	reg.RegisterCallback(CBCryptoBTC, h.coinCallback("bitcoin"))
	reg.RegisterCallback(CBCryptoETH, h.coinCallback("ethereum"))
	reg.RegisterCallback(CBCryptoDOGE, h.coinCallback("dogecoin"))
	reg.RegisterCallback(CBCryptoTop10, h.featureCallback(h.svc.TopCryptos))
	reg.RegisterCallback(CBCryptoMarket, h.featureCallback(h.svc.MarketOverview))

	reg.RegisterCallback(CBMainMenu, func(c tele.Context) error {
		return c.Send("🏠 *Main Menu*\n\nChoose a category:", MainMenu(), tele.ModeMarkdown)
	})
}

func (h *Handlers) start(c tele.Context) error {
	if isGroup(c) {
		msg := "👋 Hello everyone! I'm *Universe Bot*\n\n" +
			"I can help with:\n" +
			"🤖 AI Image & Text Generation\n" +
			"🎉 Entertainment (Memes, Jokes, etc.)\n" +
			"💰 Utilities (Weather, Currency, etc.)\n" +
			"📊 Crypto Prices & Market Data\n\n" +
			"Use /help to see all commands!"
		return c.Send(msg, tele.ModeMarkdown)
	}

	name := "there"
	if u := c.Sender(); u != nil && u.FirstName != "" {
		name = EscapeMarkdown(u.FirstName)
	}
	msg := fmt.Sprintf("🌟 *Welcome to Universe Bot, %s!* 🌟\n\n", name) +
		"I'm your all-in-one bot with amazing features:\n\n" +
		"🤖 *AI Features* - Generate images, chat with AI\n" +
		"🎉 *Entertainment* - Memes, jokes, quotes, animals\n" +
		"💰 *Utilities* - Weather, currency, QR codes\n" +
		"📊 *Crypto* - Real-time cryptocurrency prices\n" +
		"🌐 *Group Tools* - Auto-welcome, management\n\n" +
		"👇 *Choose from the menu below or use /help*"
	return c.Send(msg, MainMenu(), tele.ModeMarkdown)
}

func (h *Handlers) help(c tele.Context) error {
	return c.Send(helpText, tele.ModeMarkdown)
}

func (h *Handlers) ping(c tele.Context) error {
	return c.Send("🏓 Pong!")
}

func (h *Handlers) cancel(c tele.Context) error {
	chatID, userID := h.ids(c)
	if _, ok := h.conv.Cancel(chatID, userID); ok {
		return c.Send("✅ Operation cancelled.")
	}
	return c.Send("Nothing to cancel!")
}

// armed builds a command handler that runs immediately with a payload and
// otherwise arms the capability for the next message.
func (h *Handlers) armed(pending session.Capability, prompt string, run featureInputFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		payload := commandPayload(c)
		chatID, userID := h.ids(c)
		if payload != "" {
			return run(BuildContext(c), chatID, payload)
		}
		h.conv.Arm(chatID, userID, pending)
		return c.Send(prompt, tele.ModeMarkdown)
	}
}

type featureInputFunc func(ctx context.Context, chat int64, input string) error

func (h *Handlers) country(c tele.Context) error {
	payload := commandPayload(c)
	if payload == "" {
		return c.Send("🌍 Usage: /country <country name>")
	}
	chatID, _ := h.ids(c)
	return h.svc.CountryInfo(BuildContext(c), chatID, payload)
}

func (h *Handlers) crypto(c tele.Context) error {
	payload := commandPayload(c)
	if payload == "" {
		return c.Send("📊 Usage: /crypto <symbol> (e.g., /crypto btc)")
	}
	chatID, _ := h.ids(c)
	return h.svc.Crypto(BuildContext(c), chatID, payload)
}

func (h *Handlers) coin(symbol string) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID, _ := h.ids(c)
		return h.svc.Crypto(BuildContext(c), chatID, symbol)
	}
}

func (h *Handlers) simple(run func(ctx context.Context, chat int64) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		chatID, _ := h.ids(c)
		return run(BuildContext(c), chatID)
	}
}

func (h *Handlers) stats(c tele.Context) error {
	chatID, _ := h.ids(c)
	return h.svc.StatsReport(BuildContext(c), chatID)
}

func (h *Handlers) usersCmd(c tele.Context) error {
	chatID, _ := h.ids(c)
	return h.svc.UsersList(BuildContext(c), chatID)
}

func (h *Handlers) broadcast(c tele.Context) error {
	chatID, userID := h.ids(c)
	payload := commandPayload(c)
	if payload == "" {
		h.conv.Arm(chatID, userID, session.CapBroadcastMessage)
		return c.Send(promptBroadcast, tele.ModeMarkdown)
	}
	return h.flow.Execute(BuildContext(c), chatID, userID, payload)
}

// armCallback replaces the menu with the prompt and arms the capability.
func (h *Handlers) armCallback(pending session.Capability, prompt string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.track(c)
		chatID, userID := h.ids(c)
		h.conv.Arm(chatID, userID, pending)
		return c.Edit(prompt, tele.ModeMarkdown)
	}
}

func (h *Handlers) featureCallback(run func(ctx context.Context, chat int64) error) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.track(c)
		h.svc.Stats().Command()
		chatID, _ := h.ids(c)
		return run(BuildContext(c), chatID)
	}
}

func (h *Handlers) coinCallback(id string) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.track(c)
		h.svc.Stats().Command()
		chatID, _ := h.ids(c)
		return h.svc.CoinCard(BuildContext(c), chatID, id)
	}
}

// OnCallback routes inline-button presses through the registry.
func (h *Handlers) OnCallback(reg *Registry) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		_ = c.Respond()

		key := callbackKey(cb)
		handler, ok := reg.GetCallback(key)
		if !ok {
			return nil
		}
		return handler(c)
	}
}

// callbackKey extracts the button key from telebot's \f<unique>|<payload>
// callback data encoding.
func callbackKey(cb *tele.Callback) string {
	if cb.Unique != "" {
		return cb.Unique
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	if i := strings.IndexByte(raw, '|'); i >= 0 {
		raw = raw[:i]
	}
	return strings.TrimSpace(raw)
}

// OnText handles every plain text message: armed conversations first, then
// menu buttons, then idle keyword chatter.
func (h *Handlers) OnText(c tele.Context) error {
	h.track(c)
	h.svc.Stats().Message()

	text := strings.TrimSpace(c.Text())
	if text == "" {
		return nil
	}

	chatID, userID := h.ids(c)

	if pending, ok := h.conv.Consume(chatID, userID); ok {
		ctx := BuildContext(c)
		if pending == session.CapBroadcastMessage {
			return h.flow.Execute(ctx, chatID, userID, text)
		}
		return h.svc.HandleArmed(ctx, chatID, pending, text)
	}

	switch text {
	case BtnAI:
		return c.Send("🤖 *AI Features*\n\nChoose an AI feature below:", AIMenu(), tele.ModeMarkdown)
	case BtnEntertainment:
		return c.Send("🎉 *Entertainment Hub*\n\nPick your entertainment:", EntertainmentMenu(), tele.ModeMarkdown)
	case BtnUtilities:
		return c.Send("💰 *Utilities*\n\nSelect a utility tool:", UtilitiesMenu(), tele.ModeMarkdown)
	case BtnCrypto:
		return c.Send("📊 *Crypto & Finance*\n\nCheck cryptocurrency prices:", CryptoMenu(), tele.ModeMarkdown)
	case BtnGroupTools:
		return c.Send(groupToolsText, tele.ModeMarkdown)
	case BtnAdminPanel:
		sender := c.Sender()
		if sender == nil || !Authorize(h.adminID, sender.ID) {
			return c.Send(adminDeniedText)
		}
		adminText := "⚙️ *Admin Panel*\n\n" +
			"Available commands:\n" +
			"/broadcast <message> - Send to all users\n" +
			"/stats - View bot statistics\n" +
			"/users - List all users"
		return c.Send(adminText, tele.ModeMarkdown)
	case BtnHelp:
		return h.help(c)
	}

	// Unregistered commands fall through to the text handler.
	if strings.HasPrefix(text, "/") {
		if isGroup(c) {
			return nil
		}
		return c.Send("❓ Unknown command! Use /help to see available commands.")
	}

	// Idle chatter only in private chats; groups stay quiet.
	if isGroup(c) {
		return nil
	}
	return h.svc.IdleText(BuildContext(c), chatID, text)
}

// OnUserJoined welcomes a new chat member.
func (h *Handlers) OnUserJoined(c tele.Context) error {
	m := c.Message()
	if m == nil || m.UserJoined == nil {
		return nil
	}
	title := ""
	if chat := c.Chat(); chat != nil {
		title = EscapeMarkdown(chat.Title)
	}
	name := m.UserJoined.FirstName
	if name == "" {
		name = m.UserJoined.Username
	}
	name = EscapeMarkdown(name)
	msg := fmt.Sprintf("👋 Welcome %s, to *%s*!\n\nWe're glad to have you here! 🎉", name, title)
	return c.Send(msg, tele.ModeMarkdown)
}

// OnAddedToGroup introduces the bot after it is added to a group.
func (h *Handlers) OnAddedToGroup(c tele.Context) error {
	title := ""
	if chat := c.Chat(); chat != nil {
		title = EscapeMarkdown(chat.Title)
	}
	msg := fmt.Sprintf("👋 Thanks for adding me to *%s*!\n\n", title) +
		"I'll help make this group awesome with:\n" +
		"• Auto-welcome messages\n" +
		"• Fun commands and entertainment\n" +
		"• Useful utilities\n\n" +
		"Use /help to see what I can do!"
	return c.Send(msg, tele.ModeMarkdown)
}

func commandPayload(c tele.Context) string {
	if m := c.Message(); m != nil {
		return strings.TrimSpace(m.Payload)
	}
	return ""
}
