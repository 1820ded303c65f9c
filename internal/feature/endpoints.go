package feature

// Endpoints collects every provider base URL. Tests point individual entries
// at httptest servers; production always uses DefaultEndpoints.
type Endpoints struct {
	MemeAPI        string
	DadJoke        string
	OfficialJoke   string
	JokeAPI        string
	Quotable       string
	ZenQuotes      string
	DogCEO         string
	RandomDog      string
	CatAPI         string
	Cataas         string
	MealDB         string
	BoredAppBrew   string
	BoredAPI       string
	NumbersAPI     string
	UselessFacts   string
	XKCD           string
	CoinGecko      string
	CoinCap        string
	OpenMeteoGeo   string
	OpenMeteo      string
	ExchangeHost   string
	OpenERAPI      string
	Frankfurter    string
	OpenLibrary    string
	RESTCountries  string
	PollinationsAI string
	PollinationsTx string
	QRServer       string
}

// DefaultEndpoints returns the production provider URLs.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		MemeAPI:        "https://meme-api.com",
		DadJoke:        "https://icanhazdadjoke.com",
		OfficialJoke:   "https://official-joke-api.appspot.com",
		JokeAPI:        "https://v2.jokeapi.dev",
		Quotable:       "https://api.quotable.io",
		ZenQuotes:      "https://zenquotes.io",
		DogCEO:         "https://dog.ceo",
		RandomDog:      "https://random.dog",
		CatAPI:         "https://api.thecatapi.com",
		Cataas:         "https://cataas.com",
		MealDB:         "https://www.themealdb.com",
		BoredAppBrew:   "https://bored-api.appbrewery.com",
		BoredAPI:       "https://www.boredapi.com",
		NumbersAPI:     "http://numbersapi.com",
		UselessFacts:   "https://uselessfacts.jsph.pl",
		XKCD:           "https://xkcd.com",
		CoinGecko:      "https://api.coingecko.com",
		CoinCap:        "https://api.coincap.io",
		OpenMeteoGeo:   "https://geocoding-api.open-meteo.com",
		OpenMeteo:      "https://api.open-meteo.com",
		ExchangeHost:   "https://api.exchangerate.host",
		OpenERAPI:      "https://open.er-api.com",
		Frankfurter:    "https://api.frankfurter.app",
		OpenLibrary:    "https://openlibrary.org",
		RESTCountries:  "https://restcountries.com",
		PollinationsAI: "https://image.pollinations.ai",
		PollinationsTx: "https://text.pollinations.ai",
		QRServer:       "https://api.qrserver.com",
	}
}
