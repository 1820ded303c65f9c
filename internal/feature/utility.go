package feature

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"universebot/internal/provider"
)

var weatherConditions = map[int]string{
	0:  "☀️ Clear sky",
	1:  "🌤️ Mainly clear",
	2:  "⛅ Partly cloudy",
	3:  "☁️ Overcast",
	45: "🌫️ Foggy",
	48: "🌫️ Foggy",
	51: "🌦️ Light drizzle",
	61: "🌧️ Light rain",
	71: "🌨️ Light snow",
	95: "⛈️ Thunderstorm",
}

// Weather geocodes the city, then fetches current conditions. An unknown
// city is user input to correct, not a provider failure.
func (s *Service) Weather(ctx context.Context, chat int64, city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return s.gw.SendText(ctx, chat, "🌤️ Usage: /weather <city name>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionTyping)

	geo, _ := provider.Resolve(ctx, s.resolver, s.chains.Geocode, provider.Params{"city": city})
	if !geo.Found {
		s.record("weather", false)
		return s.gw.SendText(ctx, chat, fmt.Sprintf("❌ City '%s' not found. Try again!", city), false)
	}

	weather, live := provider.Resolve(ctx, s.resolver, s.chains.Forecast, provider.Params{
		"lat": strconv.FormatFloat(geo.Lat, 'f', -1, 64),
		"lon": strconv.FormatFloat(geo.Lon, 'f', -1, 64),
	})
	s.record("weather", live)
	if !weather.Available {
		return s.gw.SendText(ctx, chat, "❌ Failed to fetch weather. Try again!", false)
	}

	condition := weatherConditions[weather.Code]
	if condition == "" {
		condition = "🌡️ Weather"
	}
	text := fmt.Sprintf(
		"🌤️ *Weather in %s, %s*\n\n%s\n\n🌡️ Temperature: %.1f°C\n💧 Humidity: %.0f%%\n💨 Wind Speed: %.1f km/h",
		geo.Name, geo.Country, condition, weather.TempC, weather.Humidity, weather.WindKMH,
	)
	return s.gw.SendText(ctx, chat, text, true)
}

// Convert parses "<amount> <from> <to>" and replies with the conversion.
func (s *Service) Convert(ctx context.Context, chat int64, input string) error {
	fields := strings.Fields(input)
	if len(fields) < 3 {
		return s.gw.SendText(ctx, chat, "💱 Usage: /convert <amount> <from> <to>\nExample: /convert 100 USD EUR", false)
	}

	amount, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return s.gw.SendText(ctx, chat, "❌ Invalid amount! Use numbers only.", false)
	}
	from := strings.ToUpper(fields[1])
	to := strings.ToUpper(fields[2])

	_ = s.gw.Notify(ctx, chat, ActionTyping)

	rates, live := provider.Resolve(ctx, s.resolver, s.chains.Rates, provider.Params{"base": from, "to": to})
	s.record("currency", live)
	if !live {
		return s.gw.SendText(ctx, chat, "❌ Failed to fetch exchange rates!", false)
	}
	rate, ok := rates[to]
	if !ok || rate <= 0 {
		return s.gw.SendText(ctx, chat, "❌ Invalid currency codes!", false)
	}

	result := amount * rate
	text := fmt.Sprintf(
		"💱 *Currency Conversion*\n\n%s %s = %s %s\n\n📊 Rate: 1 %s = %.4f %s",
		commaf(amount, 2), from, commaf(result, 2), to, from, rate, to,
	)
	return s.gw.SendText(ctx, chat, text, true)
}

// QR builds the deterministic code-image URL for the given payload. No
// provider chain: the URL is always constructible.
func (s *Service) QR(ctx context.Context, chat int64, payload string) error {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return s.gw.SendText(ctx, chat, "📱 Usage: /qr <text or URL>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)
	s.record("qr", true)

	qrURL := s.endpoints.QRServer + "/v1/create-qr-code/?size=500x500&data=" + url.QueryEscape(payload)
	caption := fmt.Sprintf("📱 *QR Code Generated*\n\nData: `%s`", payload)
	return s.gw.SendPhoto(ctx, chat, qrURL, caption, true)
}

// Book searches Open Library and lists up to five hits.
func (s *Service) Book(ctx context.Context, chat int64, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return s.gw.SendText(ctx, chat, "📚 Usage: /book <title>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionTyping)

	books, live := provider.Resolve(ctx, s.resolver, s.chains.Books, provider.Params{"q": query})
	s.record("book", live)
	if !live {
		return s.gw.SendText(ctx, chat, "❌ Failed to search books. Try again!", false)
	}
	if len(books) == 0 {
		return s.gw.SendText(ctx, chat, fmt.Sprintf("❌ No books found for '%s'", query), false)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📚 *Search results for '%s'*\n\n", query)
	for i, book := range books {
		fmt.Fprintf(&b, "%d. *%s*\n   Author: %s\n   Year: %s\n\n", i+1, book.Title, book.Authors, book.Year)
	}
	return s.gw.SendText(ctx, chat, b.String(), true)
}

// CountryInfo replies with the country card.
func (s *Service) CountryInfo(ctx context.Context, chat int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.gw.SendText(ctx, chat, "🌍 Usage: /country <country name>", false)
	}
	_ = s.gw.Notify(ctx, chat, ActionTyping)

	country, live := provider.Resolve(ctx, s.resolver, s.chains.Country, provider.Params{"name": name})
	s.record("country", live)
	if !live || country.Name == "" {
		return s.gw.SendText(ctx, chat, fmt.Sprintf("❌ Country '%s' not found!", name), false)
	}

	text := fmt.Sprintf(
		"🌍 *%s*\n\n🏛️ Capital: %s\n👥 Population: %s\n🗺️ Region: %s\n💬 Languages: %s\n💰 Currency: %s\n🌐 TLD: %s\n%s Flag",
		country.Name, country.Capital, commaInt(country.Population), country.Region,
		country.Languages, country.Currencies, country.TLD, country.Flag,
	)
	return s.gw.SendText(ctx, chat, text, true)
}
