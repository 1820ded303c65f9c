package feature

import (
	"context"
	"fmt"
	"strings"

	"universebot/internal/provider"
)

// coinIDs maps ticker shorthand to CoinGecko asset ids. Unknown symbols pass
// through unchanged so full ids keep working.
var coinIDs = map[string]string{
	"btc":   "bitcoin",
	"eth":   "ethereum",
	"doge":  "dogecoin",
	"ada":   "cardano",
	"xrp":   "ripple",
	"dot":   "polkadot",
	"sol":   "solana",
	"matic": "polygon",
	"link":  "chainlink",
	"ltc":   "litecoin",
}

var coinGlyphs = map[string]string{
	"bitcoin":  "₿",
	"ethereum": "Ξ",
	"dogecoin": "Ð",
}

// CoinID resolves a user-typed symbol to an asset id.
func CoinID(symbol string) string {
	symbol = strings.ToLower(strings.TrimSpace(symbol))
	if id, ok := coinIDs[symbol]; ok {
		return id
	}
	return symbol
}

// Crypto replies with the price card for one coin, /crypto command style.
func (s *Service) Crypto(ctx context.Context, chat int64, symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return s.gw.SendText(ctx, chat, "📊 Usage: /crypto <symbol> (e.g., /crypto btc)", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionTyping)

	id := CoinID(symbol)
	prices, live := provider.Resolve(ctx, s.resolver, s.chains.Price, provider.Params{"id": id})
	s.record("crypto.price", live)
	if !live {
		return s.gw.SendText(ctx, chat, "📊 Couldn't fetch crypto data. Try again!", false)
	}
	price, ok := prices[id]
	if !ok {
		return s.gw.SendText(ctx, chat, fmt.Sprintf("❌ Cryptocurrency '%s' not found!", symbol), false)
	}

	text := fmt.Sprintf(
		"📊 *%s*\n\n💵 Price: $%s\n%s 24h: %s%.2f%%\n📊 Market Cap: $%s",
		strings.ToUpper(id),
		commaf(price.USD, 4),
		changeEmoji(price.Change24h), changeSign(price.Change24h), price.Change24h,
		commaf(price.MarketCap, 0),
	)
	return s.gw.SendText(ctx, chat, text, true)
}

// CoinCard replies with the multi-currency card used by the crypto menu
// buttons (Bitcoin / Ethereum / Dogecoin).
func (s *Service) CoinCard(ctx context.Context, chat int64, id string) error {
	prices, live := provider.Resolve(ctx, s.resolver, s.chains.Price, provider.Params{"id": id})
	s.record("crypto.price", live)
	price, ok := prices[id]
	if !live || !ok {
		return s.gw.SendText(ctx, chat, "📊 Couldn't fetch crypto data. Try again!", false)
	}

	glyph := coinGlyphs[id]
	if glyph == "" {
		glyph = "📊"
	}
	text := fmt.Sprintf(
		"%s *%s*\n\n💵 USD: $%s\n💶 EUR: €%s\n💷 GBP: £%s\n\n%s 24h Change: %s%.2f%%\n📊 Market Cap: $%s",
		glyph, strings.ToUpper(id),
		commaf(price.USD, 2), commaf(price.EUR, 2), commaf(price.GBP, 2),
		changeEmoji(price.Change24h), changeSign(price.Change24h), price.Change24h,
		commaf(price.MarketCap, 0),
	)
	return s.gw.SendText(ctx, chat, text, true)
}

// TopCryptos replies with the top-10 market-cap leaderboard.
func (s *Service) TopCryptos(ctx context.Context, chat int64) error {
	coins, live := provider.Resolve(ctx, s.resolver, s.chains.Top, nil)
	s.record("crypto.top10", live)
	if !live || len(coins) == 0 {
		return s.gw.SendText(ctx, chat, "📊 Couldn't fetch top cryptos. Try again!", false)
	}

	var b strings.Builder
	b.WriteString("📊 *Top 10 Cryptocurrencies*\n\n")
	for i, coin := range coins {
		fmt.Fprintf(&b, "%d. *%s* - $%s\n   %s %.2f%%\n\n",
			i+1, strings.ToUpper(coin.Symbol), commaf(coin.Price, 2),
			changeEmoji(coin.Change24h), coin.Change24h,
		)
	}
	return s.gw.SendText(ctx, chat, b.String(), true)
}

// MarketOverview replies with the global crypto market snapshot.
func (s *Service) MarketOverview(ctx context.Context, chat int64) error {
	market, live := provider.Resolve(ctx, s.resolver, s.chains.Market, nil)
	s.record("crypto.market", live)
	if !live {
		return s.gw.SendText(ctx, chat, "💹 Couldn't fetch market data. Try again!", false)
	}

	text := fmt.Sprintf(
		"💹 *Crypto Market Overview*\n\n🌐 Total Market Cap: $%s\n📊 24h Volume: $%s\n₿ BTC Dominance: %.2f%%\nΞ ETH Dominance: %.2f%%\n🪙 Active Cryptos: %s",
		commaf(market.TotalMarketCapUSD, 0),
		commaf(market.TotalVolumeUSD, 0),
		market.BTCDominance,
		market.ETHDominance,
		commaInt(int64(market.ActiveCoins)),
	)
	return s.gw.SendText(ctx, chat, text, true)
}

func changeEmoji(change float64) string {
	if change > 0 {
		return "📈"
	}
	return "📉"
}

func changeSign(change float64) string {
	if change > 0 {
		return "+"
	}
	return ""
}
