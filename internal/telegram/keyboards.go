package telegram

import tele "gopkg.in/telebot.v4"

// Main-menu reply keyboard labels. The text router matches incoming
// messages against these verbatim.
const (
	BtnAI            = "🤖 AI Features"
	BtnEntertainment = "🎉 Entertainment"
	BtnUtilities     = "💰 Utilities"
	BtnCrypto        = "📊 Crypto & Finance"
	BtnGroupTools    = "🌐 Group Tools"
	BtnAdminPanel    = "⚙️ Admin Panel"
	BtnHelp          = "ℹ️ Help"
)

// Inline callback keys.
const (
	CBAIImage    = "ai_image"
	CBAIChat     = "ai_chat"
	CBAIStory    = "ai_story"
	CBAICreative = "ai_creative"

	CBEntMeme     = "ent_meme"
	CBEntJoke     = "ent_joke"
	CBEntQuote    = "ent_quote"
	CBEntDog      = "ent_dog"
	CBEntCat      = "ent_cat"
	CBEntRecipe   = "ent_recipe"
	CBEntActivity = "ent_activity"
	CBEntFact     = "ent_fact"
	CBEntComic    = "ent_comic"

	CBUtilWeather  = "util_weather"
	CBUtilCurrency = "util_currency"
	CBUtilQR       = "util_qr"
	CBUtilBook     = "util_book"
	CBUtilCountry  = "util_country"

	CBCryptoBTC    = "crypto_btc"
	CBCryptoETH    = "crypto_eth"
	CBCryptoDOGE   = "crypto_doge"
	CBCryptoTop10  = "crypto_top10"
	CBCryptoMarket = "crypto_market"

	CBMainMenu = "main_menu"
)

const backToMenuLabel = "🔙 Back to Menu"

type inlineBtn struct {
	Text string
	Key  string
}

func replyButtons(rows ...[]string) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{ResizeKeyboard: true}
	var keyboard []tele.Row
	for _, row := range rows {
		var buttons []tele.Btn
		for _, label := range row {
			buttons = append(buttons, markup.Text(label))
		}
		keyboard = append(keyboard, markup.Row(buttons...))
	}
	markup.Reply(keyboard...)
	return markup
}

func inlineButtons(buttons ...inlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, len(buttons))
	for i, btn := range buttons {
		inline[i] = []tele.InlineButton{*markup.Data(btn.Text, btn.Key).Inline()}
	}
	markup.InlineKeyboard = inline
	return markup
}

// MainMenu is the persistent reply keyboard shown in private chats.
func MainMenu() *tele.ReplyMarkup {
	return replyButtons(
		[]string{BtnAI, BtnEntertainment},
		[]string{BtnUtilities, BtnCrypto},
		[]string{BtnGroupTools, BtnAdminPanel},
		[]string{BtnHelp},
	)
}

// AIMenu lists the AI capabilities.
func AIMenu() *tele.ReplyMarkup {
	return inlineButtons(
		inlineBtn{"🎨 Generate Image", CBAIImage},
		inlineBtn{"💬 AI Chat", CBAIChat},
		inlineBtn{"✍️ Story Generator", CBAIStory},
		inlineBtn{"🎭 Creative Writing", CBAICreative},
		inlineBtn{backToMenuLabel, CBMainMenu},
	)
}

// EntertainmentMenu lists the entertainment capabilities.
func EntertainmentMenu() *tele.ReplyMarkup {
	return inlineButtons(
		inlineBtn{"😂 Random Meme", CBEntMeme},
		inlineBtn{"🎭 Random Joke", CBEntJoke},
		inlineBtn{"💭 Inspirational Quote", CBEntQuote},
		inlineBtn{"🐕 Random Dog", CBEntDog},
		inlineBtn{"🐱 Random Cat", CBEntCat},
		inlineBtn{"🍕 Random Recipe", CBEntRecipe},
		inlineBtn{"🎲 Random Activity", CBEntActivity},
		inlineBtn{"🤓 Random Fact", CBEntFact},
		inlineBtn{"📖 Random Comic", CBEntComic},
		inlineBtn{backToMenuLabel, CBMainMenu},
	)
}

// UtilitiesMenu lists the utility capabilities.
func UtilitiesMenu() *tele.ReplyMarkup {
	return inlineButtons(
		inlineBtn{"🌤️ Weather", CBUtilWeather},
		inlineBtn{"💱 Currency Converter", CBUtilCurrency},
		inlineBtn{"📱 QR Code Generator", CBUtilQR},
		inlineBtn{"📚 Book Search", CBUtilBook},
		inlineBtn{"🌍 Country Info", CBUtilCountry},
		inlineBtn{backToMenuLabel, CBMainMenu},
	)
}

// CryptoMenu lists the crypto capabilities.
func CryptoMenu() *tele.ReplyMarkup {
	return inlineButtons(
		inlineBtn{"₿ Bitcoin Price", CBCryptoBTC},
		inlineBtn{"Ξ Ethereum Price", CBCryptoETH},
		inlineBtn{"Ð Dogecoin Price", CBCryptoDOGE},
		inlineBtn{"📊 Top 10 Cryptos", CBCryptoTop10},
		inlineBtn{"💹 Market Overview", CBCryptoMarket},
		inlineBtn{backToMenuLabel, CBMainMenu},
	)
}
