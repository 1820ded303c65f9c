package feature

import (
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"universebot/internal/provider"
)

// Static fallbacks. Each capability declares one so the user never gets
// silence when every provider is down.
const (
	FallbackJoke  = "Why don't scientists trust atoms? Because they make up everything!"
	FallbackFact  = "Honey never spoils: edible honey has been found in tombs over 3,000 years old."
	FallbackDog   = "https://images.dog.ceo/breeds/shiba/shiba-16.jpg"
	FallbackCat   = "https://cdn2.thecatapi.com/images/MTY3ODIyMQ.jpg"
	FallbackAskAI = "🤖 The AI service is taking a nap right now. Try again in a bit!"
)

var memeSubreddits = []string{"memes", "dankmemes", "wholesomememes"}

// Chains holds every capability's declared provider chain. Provider order is
// fixed; only explicit random sub-resources (meme subreddit, trivia number,
// comic id) vary per call, chosen once before the chain is walked.
type Chains struct {
	Meme        provider.Chain[Meme]
	Joke        provider.Chain[string]
	Quote       provider.Chain[Quote]
	Dog         provider.Chain[string]
	Cat         provider.Chain[string]
	Recipe      provider.Chain[Recipe]
	Activity    provider.Chain[Activity]
	Fact        provider.Chain[string]
	ComicLatest provider.Chain[int]
	Comic       provider.Chain[Comic]
	Price       provider.Chain[map[string]CoinPrice]
	Top         provider.Chain[[]TopCoin]
	Market      provider.Chain[Market]
	Geocode     provider.Chain[Geo]
	Forecast    provider.Chain[Weather]
	Rates       provider.Chain[map[string]float64]
	Books       provider.Chain[[]Book]
	Country     provider.Chain[Country]
	Ask         provider.Chain[string]
}

// ChainOptions tune the declared chains.
type ChainOptions struct {
	// CatAPIKey is optional; without it the thecatapi provider is skipped
	// and the chain falls through to the next source.
	CatAPIKey string
	// SnapshotTTL caches idempotent market snapshots (prices, top-10,
	// overview) so menu mashing does not hammer the public APIs.
	SnapshotTTL time.Duration
}

// BuildChains wires the provider table against the given endpoints.
func BuildChains(ep Endpoints, opts ChainOptions) Chains {
	return Chains{
		Meme:        memeChain(ep),
		Joke:        jokeChain(ep),
		Quote:       quoteChain(ep),
		Dog:         dogChain(ep),
		Cat:         catChain(ep, opts.CatAPIKey),
		Recipe:      recipeChain(ep),
		Activity:    activityChain(ep),
		Fact:        factChain(ep),
		ComicLatest: comicLatestChain(ep),
		Comic:       comicChain(ep),
		Price:       priceChain(ep, opts.SnapshotTTL),
		Top:         topChain(ep, opts.SnapshotTTL),
		Market:      marketChain(ep, opts.SnapshotTTL),
		Geocode:     geocodeChain(ep),
		Forecast:    forecastChain(ep),
		Rates:       ratesChain(ep),
		Books:       booksChain(ep),
		Country:     countryChain(ep),
		Ask:         askChain(ep),
	}
}

func get(u string) (provider.Request, bool) {
	return provider.Request{URL: u}, true
}

func memeChain(ep Endpoints) provider.Chain[Meme] {
	return provider.Chain[Meme]{
		Capability: "meme",
		Providers: []provider.Spec[Meme]{{
			Name: "meme-api",
			Request: func(provider.Params) (provider.Request, bool) {
				sub := memeSubreddits[rand.Intn(len(memeSubreddits))]
				return get(ep.MemeAPI + "/gimme/" + sub)
			},
			Parse: func(data []byte) (Meme, error) {
				var body struct {
					URL       string `json:"url"`
					Title     string `json:"title"`
					Ups       int    `json:"ups"`
					Subreddit string `json:"subreddit"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Meme{}, err
				}
				if body.URL == "" {
					return Meme{}, errors.New("meme without url")
				}
				return Meme{Title: body.Title, URL: body.URL, Ups: body.Ups, Subreddit: body.Subreddit}, nil
			},
		}},
		Fallback: func() Meme {
			return Meme{
				Title:     "One does not simply fetch a meme when the API is down",
				URL:       "https://i.imgflip.com/1bij.jpg",
				Subreddit: "memes",
			}
		},
	}
}

func jokeChain(ep Endpoints) provider.Chain[string] {
	return provider.Chain[string]{
		Capability: "joke",
		Providers: []provider.Spec[string]{
			{
				Name: "icanhazdadjoke",
				Request: func(provider.Params) (provider.Request, bool) {
					return provider.Request{
						URL:    ep.DadJoke + "/",
						Header: http.Header{"Accept": []string{"application/json"}},
					}, true
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						Joke string `json:"joke"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.Joke == "" {
						return "", errors.New("empty joke")
					}
					return body.Joke, nil
				},
			},
			{
				Name: "official-joke-api",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.OfficialJoke + "/random_joke")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						Setup     string `json:"setup"`
						Punchline string `json:"punchline"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.Setup == "" || body.Punchline == "" {
						return "", errors.New("incomplete joke")
					}
					return body.Setup + "\n" + body.Punchline, nil
				},
			},
			{
				Name: "jokeapi",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.JokeAPI + "/joke/Any?type=single&safe-mode")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						Joke string `json:"joke"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.Joke == "" {
						return "", errors.New("empty joke")
					}
					return body.Joke, nil
				},
			},
		},
		Fallback: func() string { return FallbackJoke },
	}
}

func quoteChain(ep Endpoints) provider.Chain[Quote] {
	return provider.Chain[Quote]{
		Capability: "quote",
		Providers: []provider.Spec[Quote]{
			{
				Name: "quotable",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.Quotable + "/random")
				},
				Parse: func(data []byte) (Quote, error) {
					var body struct {
						Content string `json:"content"`
						Author  string `json:"author"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return Quote{}, err
					}
					if body.Content == "" {
						return Quote{}, errors.New("empty quote")
					}
					return Quote{Text: body.Content, Author: body.Author}, nil
				},
			},
			{
				Name: "zenquotes",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.ZenQuotes + "/api/random")
				},
				Parse: func(data []byte) (Quote, error) {
					var body []struct {
						Q string `json:"q"`
						A string `json:"a"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return Quote{}, err
					}
					if len(body) == 0 || body[0].Q == "" {
						return Quote{}, errors.New("empty quote")
					}
					return Quote{Text: body[0].Q, Author: body[0].A}, nil
				},
			},
		},
		Fallback: func() Quote {
			return Quote{
				Text:   "The best way to predict the future is to invent it.",
				Author: "Alan Kay",
			}
		},
	}
}

func dogChain(ep Endpoints) provider.Chain[string] {
	return provider.Chain[string]{
		Capability: "dog",
		Providers: []provider.Spec[string]{
			{
				Name: "dog.ceo",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.DogCEO + "/api/breeds/image/random")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						Message string `json:"message"`
						Status  string `json:"status"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.Status != "success" || body.Message == "" {
						return "", errors.New("no dog image")
					}
					return body.Message, nil
				},
			},
			{
				Name: "random.dog",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.RandomDog + "/woof.json")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						URL string `json:"url"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					// Telegram photo sends cannot take videos.
					if body.URL == "" || strings.HasSuffix(body.URL, ".mp4") || strings.HasSuffix(body.URL, ".webm") {
						return "", errors.New("not a still image")
					}
					return body.URL, nil
				},
			},
		},
		Fallback: func() string { return FallbackDog },
	}
}

func catChain(ep Endpoints, apiKey string) provider.Chain[string] {
	return provider.Chain[string]{
		Capability: "cat",
		Providers: []provider.Spec[string]{
			{
				Name: "thecatapi",
				Request: func(provider.Params) (provider.Request, bool) {
					if apiKey == "" {
						return provider.Request{}, false
					}
					return provider.Request{
						URL:    ep.CatAPI + "/v1/images/search",
						Header: http.Header{"X-Api-Key": []string{apiKey}},
					}, true
				},
				Parse: func(data []byte) (string, error) {
					var body []struct {
						URL string `json:"url"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if len(body) == 0 || body[0].URL == "" {
						return "", errors.New("no cat image")
					}
					return body[0].URL, nil
				},
			},
			{
				Name: "cataas",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.Cataas + "/cat?json=true")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						URL string `json:"url"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.URL == "" {
						return "", errors.New("no cat image")
					}
					if strings.HasPrefix(body.URL, "/") {
						return ep.Cataas + body.URL, nil
					}
					return body.URL, nil
				},
			},
		},
		Fallback: func() string { return FallbackCat },
	}
}

func recipeChain(ep Endpoints) provider.Chain[Recipe] {
	return provider.Chain[Recipe]{
		Capability: "recipe",
		Providers: []provider.Spec[Recipe]{{
			Name: "themealdb",
			Request: func(provider.Params) (provider.Request, bool) {
				return get(ep.MealDB + "/api/json/v1/1/random.php")
			},
			Parse: parseMeal,
		}},
		Fallback: func() Recipe {
			return Recipe{
				Name:     "Classic Pancakes",
				Category: "Breakfast",
				Area:     "American",
				Ingredients: []string{
					"• 1 cup Flour",
					"• 2 tbsp Sugar",
					"• 1 Egg",
					"• 1 cup Milk",
					"• 1 tsp Baking Powder",
				},
				Link: "https://www.themealdb.com",
			}
		},
	}
}

func parseMeal(data []byte) (Recipe, error) {
	var body struct {
		Meals []map[string]string `json:"meals"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return Recipe{}, err
	}
	if len(body.Meals) == 0 {
		return Recipe{}, errors.New("no meals")
	}
	meal := body.Meals[0]
	if meal["strMeal"] == "" {
		return Recipe{}, errors.New("meal without name")
	}

	var ingredients []string
	for i := 1; i <= 20; i++ {
		ingredient := strings.TrimSpace(meal["strIngredient"+strconv.Itoa(i)])
		if ingredient == "" {
			continue
		}
		measure := strings.TrimSpace(meal["strMeasure"+strconv.Itoa(i)])
		ingredients = append(ingredients, strings.TrimSpace("• "+measure+" "+ingredient))
	}

	link := meal["strSource"]
	if link == "" {
		link = meal["strYoutube"]
	}
	return Recipe{
		Name:        meal["strMeal"],
		Category:    meal["strCategory"],
		Area:        meal["strArea"],
		Thumb:       meal["strMealThumb"],
		Ingredients: ingredients,
		Link:        link,
	}, nil
}

func activityChain(ep Endpoints) provider.Chain[Activity] {
	parse := func(data []byte) (Activity, error) {
		var body struct {
			Activity     string  `json:"activity"`
			Type         string  `json:"type"`
			Participants int     `json:"participants"`
			Price        float64 `json:"price"`
		}
		if err := json.Unmarshal(data, &body); err != nil {
			return Activity{}, err
		}
		if body.Activity == "" {
			return Activity{}, errors.New("empty activity")
		}
		return Activity{Text: body.Activity, Type: body.Type, Participants: body.Participants, Price: body.Price}, nil
	}
	return provider.Chain[Activity]{
		Capability: "activity",
		Providers: []provider.Spec[Activity]{
			{
				Name: "bored-appbrewery",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.BoredAppBrew + "/random")
				},
				Parse: parse,
			},
			{
				Name: "boredapi",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.BoredAPI + "/api/activity")
				},
				Parse: parse,
			},
		},
		Fallback: func() Activity {
			return Activity{Text: "Take a short walk outside", Type: "recreational", Participants: 1}
		},
	}
}

func factChain(ep Endpoints) provider.Chain[string] {
	return provider.Chain[string]{
		Capability: "fact",
		Providers: []provider.Spec[string]{
			{
				Name: "numbersapi",
				Request: func(provider.Params) (provider.Request, bool) {
					n := rand.Intn(1000) + 1
					return get(fmt.Sprintf("%s/%d/trivia", ep.NumbersAPI, n))
				},
				Parse: func(data []byte) (string, error) {
					fact := strings.TrimSpace(string(data))
					if fact == "" {
						return "", errors.New("empty fact")
					}
					return fact, nil
				},
			},
			{
				Name: "uselessfacts",
				Request: func(provider.Params) (provider.Request, bool) {
					return get(ep.UselessFacts + "/api/v2/facts/random?language=en")
				},
				Parse: func(data []byte) (string, error) {
					var body struct {
						Text string `json:"text"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return "", err
					}
					if body.Text == "" {
						return "", errors.New("empty fact")
					}
					return body.Text, nil
				},
			},
		},
		Fallback: func() string { return FallbackFact },
	}
}

func comicLatestChain(ep Endpoints) provider.Chain[int] {
	return provider.Chain[int]{
		Capability: "comic.latest",
		Providers: []provider.Spec[int]{{
			Name: "xkcd-latest",
			Request: func(provider.Params) (provider.Request, bool) {
				return get(ep.XKCD + "/info.0.json")
			},
			Parse: func(data []byte) (int, error) {
				var body struct {
					Num int `json:"num"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return 0, err
				}
				if body.Num <= 0 {
					return 0, errors.New("bad comic number")
				}
				return body.Num, nil
			},
		}},
		// A safely old strip count; random picks still land on real comics.
		Fallback: func() int { return 614 },
		CacheTTL: time.Hour,
	}
}

func comicChain(ep Endpoints) provider.Chain[Comic] {
	return provider.Chain[Comic]{
		Capability: "comic",
		Providers: []provider.Spec[Comic]{{
			Name: "xkcd",
			Request: func(p provider.Params) (provider.Request, bool) {
				num := p["num"]
				if num == "" {
					return provider.Request{}, false
				}
				return get(ep.XKCD + "/" + num + "/info.0.json")
			},
			Parse: func(data []byte) (Comic, error) {
				var body struct {
					Num   int    `json:"num"`
					Title string `json:"title"`
					Img   string `json:"img"`
					Alt   string `json:"alt"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Comic{}, err
				}
				if body.Img == "" {
					return Comic{}, errors.New("comic without image")
				}
				return Comic{Num: body.Num, Title: body.Title, Img: body.Img, Alt: body.Alt}, nil
			},
		}},
		Fallback: func() Comic {
			return Comic{
				Num:   353,
				Title: "Python",
				Img:   "https://imgs.xkcd.com/comics/python.png",
				Alt:   "I wrote 20 short programs in Python yesterday. It was wonderful.",
			}
		},
	}
}

func priceChain(ep Endpoints, ttl time.Duration) provider.Chain[map[string]CoinPrice] {
	return provider.Chain[map[string]CoinPrice]{
		Capability: "crypto.price",
		Providers: []provider.Spec[map[string]CoinPrice]{
			{
				Name: "coingecko",
				Request: func(p provider.Params) (provider.Request, bool) {
					id := p["id"]
					if id == "" {
						return provider.Request{}, false
					}
					u := ep.CoinGecko + "/api/v3/simple/price?ids=" + url.QueryEscape(id) +
						"&vs_currencies=usd,eur,gbp&include_24hr_change=true&include_market_cap=true"
					return get(u)
				},
				Parse: func(data []byte) (map[string]CoinPrice, error) {
					var body map[string]struct {
						USD       float64 `json:"usd"`
						EUR       float64 `json:"eur"`
						GBP       float64 `json:"gbp"`
						Change    float64 `json:"usd_24h_change"`
						MarketCap float64 `json:"usd_market_cap"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return nil, err
					}
					if len(body) == 0 {
						return nil, errors.New("no price data")
					}
					out := make(map[string]CoinPrice, len(body))
					for id, row := range body {
						out[id] = CoinPrice{
							USD:       row.USD,
							EUR:       row.EUR,
							GBP:       row.GBP,
							Change24h: row.Change,
							MarketCap: row.MarketCap,
						}
					}
					return out, nil
				},
			},
			{
				Name: "coincap",
				Request: func(p provider.Params) (provider.Request, bool) {
					id := p["id"]
					if id == "" {
						return provider.Request{}, false
					}
					return get(ep.CoinCap + "/v2/assets/" + url.PathEscape(id))
				},
				Parse: func(data []byte) (map[string]CoinPrice, error) {
					var body struct {
						Data struct {
							ID        string `json:"id"`
							PriceUSD  string `json:"priceUsd"`
							Change24h string `json:"changePercent24Hr"`
							MarketCap string `json:"marketCapUsd"`
						} `json:"data"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return nil, err
					}
					if body.Data.ID == "" || body.Data.PriceUSD == "" {
						return nil, errors.New("no asset data")
					}
					price, err := strconv.ParseFloat(body.Data.PriceUSD, 64)
					if err != nil {
						return nil, err
					}
					change, _ := strconv.ParseFloat(body.Data.Change24h, 64)
					mcap, _ := strconv.ParseFloat(body.Data.MarketCap, 64)
					return map[string]CoinPrice{
						body.Data.ID: {USD: price, Change24h: change, MarketCap: mcap},
					}, nil
				},
			},
		},
		Fallback: func() map[string]CoinPrice { return nil },
		CacheTTL: ttl,
	}
}

func topChain(ep Endpoints, ttl time.Duration) provider.Chain[[]TopCoin] {
	return provider.Chain[[]TopCoin]{
		Capability: "crypto.top10",
		Providers: []provider.Spec[[]TopCoin]{{
			Name: "coingecko-markets",
			Request: func(provider.Params) (provider.Request, bool) {
				return get(ep.CoinGecko + "/api/v3/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=10&page=1")
			},
			Parse: func(data []byte) ([]TopCoin, error) {
				var body []struct {
					Symbol string  `json:"symbol"`
					Price  float64 `json:"current_price"`
					Change float64 `json:"price_change_percentage_24h"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return nil, err
				}
				if len(body) == 0 {
					return nil, errors.New("empty market list")
				}
				out := make([]TopCoin, 0, len(body))
				for _, row := range body {
					out = append(out, TopCoin{Symbol: row.Symbol, Price: row.Price, Change24h: row.Change})
				}
				return out, nil
			},
		}},
		Fallback: func() []TopCoin { return nil },
		CacheTTL: ttl,
	}
}

func marketChain(ep Endpoints, ttl time.Duration) provider.Chain[Market] {
	return provider.Chain[Market]{
		Capability: "crypto.market",
		Providers: []provider.Spec[Market]{{
			Name: "coingecko-global",
			Request: func(provider.Params) (provider.Request, bool) {
				return get(ep.CoinGecko + "/api/v3/global")
			},
			Parse: func(data []byte) (Market, error) {
				var body struct {
					Data struct {
						TotalMarketCap map[string]float64 `json:"total_market_cap"`
						TotalVolume    map[string]float64 `json:"total_volume"`
						Dominance      map[string]float64 `json:"market_cap_percentage"`
						ActiveCoins    int                `json:"active_cryptocurrencies"`
					} `json:"data"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Market{}, err
				}
				if body.Data.TotalMarketCap["usd"] == 0 {
					return Market{}, errors.New("no market data")
				}
				return Market{
					TotalMarketCapUSD: body.Data.TotalMarketCap["usd"],
					TotalVolumeUSD:    body.Data.TotalVolume["usd"],
					BTCDominance:      body.Data.Dominance["btc"],
					ETHDominance:      body.Data.Dominance["eth"],
					ActiveCoins:       body.Data.ActiveCoins,
				}, nil
			},
		}},
		Fallback: func() Market { return Market{} },
		CacheTTL: ttl,
	}
}

func geocodeChain(ep Endpoints) provider.Chain[Geo] {
	return provider.Chain[Geo]{
		Capability: "weather.geocode",
		Providers: []provider.Spec[Geo]{{
			Name: "open-meteo-geocoding",
			Request: func(p provider.Params) (provider.Request, bool) {
				city := p["city"]
				if city == "" {
					return provider.Request{}, false
				}
				return get(ep.OpenMeteoGeo + "/v1/search?name=" + url.QueryEscape(city) + "&count=1")
			},
			Parse: func(data []byte) (Geo, error) {
				var body struct {
					Results []struct {
						Name      string  `json:"name"`
						Country   string  `json:"country"`
						Latitude  float64 `json:"latitude"`
						Longitude float64 `json:"longitude"`
					} `json:"results"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Geo{}, err
				}
				// Zero results is a definite "no such city", not a
				// provider failure.
				if len(body.Results) == 0 {
					return Geo{Found: false}, nil
				}
				r := body.Results[0]
				return Geo{Found: true, Name: r.Name, Country: r.Country, Lat: r.Latitude, Lon: r.Longitude}, nil
			},
		}},
		Fallback: func() Geo { return Geo{Found: false} },
	}
}

func forecastChain(ep Endpoints) provider.Chain[Weather] {
	return provider.Chain[Weather]{
		Capability: "weather.current",
		Providers: []provider.Spec[Weather]{{
			Name: "open-meteo",
			Request: func(p provider.Params) (provider.Request, bool) {
				lat, lon := p["lat"], p["lon"]
				if lat == "" || lon == "" {
					return provider.Request{}, false
				}
				u := ep.OpenMeteo + "/v1/forecast?latitude=" + url.QueryEscape(lat) +
					"&longitude=" + url.QueryEscape(lon) +
					"&current=temperature_2m,relative_humidity_2m,wind_speed_10m,weather_code&timezone=auto"
				return get(u)
			},
			Parse: func(data []byte) (Weather, error) {
				var body struct {
					Current struct {
						Temp     float64 `json:"temperature_2m"`
						Humidity float64 `json:"relative_humidity_2m"`
						Wind     float64 `json:"wind_speed_10m"`
						Code     int     `json:"weather_code"`
					} `json:"current"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Weather{}, err
				}
				return Weather{
					Available: true,
					Code:      body.Current.Code,
					TempC:     body.Current.Temp,
					Humidity:  body.Current.Humidity,
					WindKMH:   body.Current.Wind,
				}, nil
			},
		}},
		Fallback: func() Weather { return Weather{Available: false} },
	}
}

func ratesChain(ep Endpoints) provider.Chain[map[string]float64] {
	return provider.Chain[map[string]float64]{
		Capability: "currency",
		Providers: []provider.Spec[map[string]float64]{
			{
				Name: "exchangerate.host",
				Request: func(p provider.Params) (provider.Request, bool) {
					base, to := p["base"], p["to"]
					if base == "" || to == "" {
						return provider.Request{}, false
					}
					return get(ep.ExchangeHost + "/latest?base=" + url.QueryEscape(base) + "&symbols=" + url.QueryEscape(to))
				},
				Parse: func(data []byte) (map[string]float64, error) {
					var body struct {
						Success *bool              `json:"success"`
						Rates   map[string]float64 `json:"rates"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return nil, err
					}
					if body.Success != nil && !*body.Success {
						return nil, errors.New("lookup unsuccessful")
					}
					if len(body.Rates) == 0 {
						return nil, errors.New("no rates")
					}
					return body.Rates, nil
				},
			},
			{
				Name: "open-er-api",
				Request: func(p provider.Params) (provider.Request, bool) {
					base := p["base"]
					if base == "" {
						return provider.Request{}, false
					}
					return get(ep.OpenERAPI + "/v6/latest/" + url.PathEscape(base))
				},
				Parse: func(data []byte) (map[string]float64, error) {
					var body struct {
						Result string             `json:"result"`
						Rates  map[string]float64 `json:"rates"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return nil, err
					}
					if body.Result != "success" || len(body.Rates) == 0 {
						return nil, errors.New("no rates")
					}
					return body.Rates, nil
				},
			},
			{
				Name: "frankfurter",
				Request: func(p provider.Params) (provider.Request, bool) {
					base, to := p["base"], p["to"]
					if base == "" || to == "" {
						return provider.Request{}, false
					}
					return get(ep.Frankfurter + "/latest?from=" + url.QueryEscape(base) + "&to=" + url.QueryEscape(to))
				},
				Parse: func(data []byte) (map[string]float64, error) {
					var body struct {
						Rates map[string]float64 `json:"rates"`
					}
					if err := json.Unmarshal(data, &body); err != nil {
						return nil, err
					}
					if len(body.Rates) == 0 {
						return nil, errors.New("no rates")
					}
					return body.Rates, nil
				},
			},
		},
		// No fake exchange rates. The handler apologizes instead.
		Fallback: func() map[string]float64 { return nil },
	}
}

func booksChain(ep Endpoints) provider.Chain[[]Book] {
	return provider.Chain[[]Book]{
		Capability: "book",
		Providers: []provider.Spec[[]Book]{{
			Name: "openlibrary",
			Request: func(p provider.Params) (provider.Request, bool) {
				q := p["q"]
				if q == "" {
					return provider.Request{}, false
				}
				return get(ep.OpenLibrary + "/search.json?q=" + url.QueryEscape(q) + "&limit=5")
			},
			Parse: func(data []byte) ([]Book, error) {
				var body struct {
					Docs []struct {
						Title   string   `json:"title"`
						Authors []string `json:"author_name"`
						Year    int      `json:"first_publish_year"`
					} `json:"docs"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return nil, err
				}
				out := make([]Book, 0, len(body.Docs))
				for _, doc := range body.Docs {
					if len(out) == 5 {
						break
					}
					title := doc.Title
					if title == "" {
						title = "Unknown"
					}
					authors := strings.Join(doc.Authors, ", ")
					if authors == "" {
						authors = "Unknown"
					}
					year := "N/A"
					if doc.Year != 0 {
						year = strconv.Itoa(doc.Year)
					}
					out = append(out, Book{Title: title, Authors: authors, Year: year})
				}
				return out, nil
			},
		}},
		Fallback: func() []Book { return nil },
	}
}

func countryChain(ep Endpoints) provider.Chain[Country] {
	return provider.Chain[Country]{
		Capability: "country",
		Providers: []provider.Spec[Country]{{
			Name: "restcountries",
			Request: func(p provider.Params) (provider.Request, bool) {
				name := p["name"]
				if name == "" {
					return provider.Request{}, false
				}
				return get(ep.RESTCountries + "/v3.1/name/" + url.PathEscape(name))
			},
			Parse: func(data []byte) (Country, error) {
				var body []struct {
					Name struct {
						Common string `json:"common"`
					} `json:"name"`
					Capital    []string `json:"capital"`
					Population int64    `json:"population"`
					Region     string   `json:"region"`
					Languages  map[string]string `json:"languages"`
					Currencies map[string]struct {
						Name string `json:"name"`
					} `json:"currencies"`
					TLD  []string `json:"tld"`
					Flag string   `json:"flag"`
				}
				if err := json.Unmarshal(data, &body); err != nil {
					return Country{}, err
				}
				if len(body) == 0 || body[0].Name.Common == "" {
					return Country{}, errors.New("no country data")
				}
				c := body[0]

				capital := "N/A"
				if len(c.Capital) > 0 {
					capital = c.Capital[0]
				}
				languages := sortedValues(c.Languages)
				currencies := make([]string, 0, len(c.Currencies))
				for _, cur := range c.Currencies {
					currencies = append(currencies, cur.Name)
				}
				sort.Strings(currencies)
				tld := strings.Join(c.TLD, ", ")
				if tld == "" {
					tld = "N/A"
				}
				flag := c.Flag
				if flag == "" {
					flag = "🏴"
				}
				return Country{
					Name:       c.Name.Common,
					Capital:    capital,
					Population: c.Population,
					Region:     c.Region,
					Languages:  strings.Join(languages, ", "),
					Currencies: strings.Join(currencies, ", "),
					TLD:        tld,
					Flag:       flag,
				}, nil
			},
		}},
		Fallback: func() Country { return Country{} },
	}
}

func sortedValues(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func askChain(ep Endpoints) provider.Chain[string] {
	return provider.Chain[string]{
		Capability: "ask",
		Providers: []provider.Spec[string]{{
			Name: "pollinations-text",
			Request: func(p provider.Params) (provider.Request, bool) {
				q := p["q"]
				if q == "" {
					return provider.Request{}, false
				}
				return provider.Request{
					URL:     ep.PollinationsTx + "/" + url.PathEscape(q),
					Timeout: provider.TextGenTimeout,
				}, true
			},
			Parse: func(data []byte) (string, error) {
				answer := strings.TrimSpace(string(data))
				if answer == "" {
					return "", errors.New("empty answer")
				}
				return answer, nil
			},
		}},
		Fallback: func() string { return FallbackAskAI },
	}
}
