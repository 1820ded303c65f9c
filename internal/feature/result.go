// Package feature implements one handler per bot capability. Handlers call
// the fallback resolver, format the normalized result, and reply through the
// messaging gateway.
package feature

// Meme is the normalized result of the meme capability.
type Meme struct {
	Title     string
	URL       string
	Ups       int
	Subreddit string
}

// Quote pairs a quotation with its author.
type Quote struct {
	Text   string
	Author string
}

// Recipe is a random meal suggestion.
type Recipe struct {
	Name        string
	Category    string
	Area        string
	Thumb       string
	Ingredients []string
	Link        string
}

// Activity is a random pastime suggestion.
type Activity struct {
	Text         string
	Type         string
	Participants int
	Price        float64
}

// Comic is one xkcd strip.
type Comic struct {
	Num   int
	Title string
	Img   string
	Alt   string
}

// CoinPrice is one cryptocurrency snapshot in USD terms. EUR/GBP are zero
// when the source does not quote them.
type CoinPrice struct {
	USD       float64
	EUR       float64
	GBP       float64
	Change24h float64
	MarketCap float64
}

// TopCoin is one row of the market-cap leaderboard.
type TopCoin struct {
	Symbol    string
	Price     float64
	Change24h float64
}

// Market is the global crypto market overview.
type Market struct {
	TotalMarketCapUSD float64
	TotalVolumeUSD    float64
	BTCDominance      float64
	ETHDominance      float64
	ActiveCoins       int
}

// Geo is a resolved city location. Found is false when the geocoder knows no
// such place; that is a successful lookup, not a provider failure.
type Geo struct {
	Found   bool
	Name    string
	Country string
	Lat     float64
	Lon     float64
}

// Weather is the current-conditions reading for one location.
type Weather struct {
	Code      int
	TempC     float64
	Humidity  float64
	WindKMH   float64
	Available bool
}

// Book is one search hit.
type Book struct {
	Title   string
	Authors string
	Year    string
}

// Country is the normalized country-info record.
type Country struct {
	Name       string
	Capital    string
	Population int64
	Region     string
	Languages  string
	Currencies string
	TLD        string
	Flag       string
}
