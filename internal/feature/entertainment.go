package feature

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"universebot/internal/provider"
)

// Meme sends a random meme photo with its title and upvote count.
func (s *Service) Meme(ctx context.Context, chat int64) error {
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)
	meme, live := provider.Resolve(ctx, s.resolver, s.chains.Meme, nil)
	s.record("meme", live)

	caption := fmt.Sprintf("😂 *%s*\n\n👍 %d upvotes\nr/%s", meme.Title, meme.Ups, meme.Subreddit)
	return s.gw.SendPhoto(ctx, chat, meme.URL, caption, true)
}

// Joke sends a random joke, or the canned one when every source is down.
func (s *Service) Joke(ctx context.Context, chat int64) error {
	joke, live := provider.Resolve(ctx, s.resolver, s.chains.Joke, nil)
	s.record("joke", live)
	if !live {
		return s.gw.SendText(ctx, chat, joke, false)
	}
	return s.gw.SendText(ctx, chat, fmt.Sprintf("🎭 *Dad Joke*\n\n%s", joke), true)
}

// Quote sends an inspirational quote.
func (s *Service) Quote(ctx context.Context, chat int64) error {
	quote, live := provider.Resolve(ctx, s.resolver, s.chains.Quote, nil)
	s.record("quote", live)
	text := fmt.Sprintf("💭 *Quote of the Moment*\n\n_%s_\n\n— *%s*", quote.Text, quote.Author)
	return s.gw.SendText(ctx, chat, text, true)
}

// Dog sends a random dog photo.
func (s *Service) Dog(ctx context.Context, chat int64) error {
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)
	imageURL, live := provider.Resolve(ctx, s.resolver, s.chains.Dog, nil)
	s.record("dog", live)
	return s.gw.SendPhoto(ctx, chat, imageURL, "🐕 Here's a random good boy/girl!", false)
}

// Cat sends a random cat photo.
func (s *Service) Cat(ctx context.Context, chat int64) error {
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)
	imageURL, live := provider.Resolve(ctx, s.resolver, s.chains.Cat, nil)
	s.record("cat", live)
	return s.gw.SendPhoto(ctx, chat, imageURL, "🐱 Here's a random feline friend!", false)
}

// Recipe sends a random meal with its ingredient list.
func (s *Service) Recipe(ctx context.Context, chat int64) error {
	recipe, live := provider.Resolve(ctx, s.resolver, s.chains.Recipe, nil)
	s.record("recipe", live)

	var b strings.Builder
	fmt.Fprintf(&b, "🍕 *%s*\n\n", recipe.Name)
	fmt.Fprintf(&b, "📍 Category: %s\n", recipe.Category)
	fmt.Fprintf(&b, "🌍 Cuisine: %s\n\n", recipe.Area)
	b.WriteString("*Ingredients:*\n")
	ingredients := recipe.Ingredients
	if len(ingredients) > 10 {
		ingredients = ingredients[:10]
	}
	b.WriteString(strings.Join(ingredients, "\n"))
	if recipe.Link != "" {
		fmt.Fprintf(&b, "\n\n🔗 [Full Recipe](%s)", recipe.Link)
	}

	if recipe.Thumb != "" {
		return s.gw.SendPhoto(ctx, chat, recipe.Thumb, b.String(), true)
	}
	return s.gw.SendText(ctx, chat, b.String(), true)
}

// Activity suggests something to do.
func (s *Service) Activity(ctx context.Context, chat int64) error {
	activity, live := provider.Resolve(ctx, s.resolver, s.chains.Activity, nil)
	s.record("activity", live)

	price := "Free"
	if activity.Price > 0 {
		price = strings.Repeat("$", int(activity.Price*5))
	}
	text := fmt.Sprintf(
		"🎲 *Activity Suggestion*\n\n*%s*\n\nType: %s\nParticipants: %d\nPrice: %s",
		activity.Text, capitalize(activity.Type), activity.Participants, price,
	)
	return s.gw.SendText(ctx, chat, text, true)
}

// Fact sends a random trivia fact.
func (s *Service) Fact(ctx context.Context, chat int64) error {
	fact, live := provider.Resolve(ctx, s.resolver, s.chains.Fact, nil)
	s.record("fact", live)
	return s.gw.SendText(ctx, chat, fmt.Sprintf("🤓 *Random Fact*\n\n%s", fact), true)
}

// Comic sends a random xkcd strip. The random pick is made once against the
// latest strip number, then the chain fetches exactly that strip.
func (s *Service) Comic(ctx context.Context, chat int64) error {
	_ = s.gw.Notify(ctx, chat, ActionUploadPhoto)

	latest, _ := provider.Resolve(ctx, s.resolver, s.chains.ComicLatest, nil)
	num := rand.Intn(latest) + 1
	comic, live := provider.Resolve(ctx, s.resolver, s.chains.Comic, provider.Params{"num": strconv.Itoa(num)})
	s.record("comic", live)

	caption := fmt.Sprintf("🗨️ *xkcd #%d: %s*\n\n_%s_", comic.Num, comic.Title, comic.Alt)
	return s.gw.SendPhoto(ctx, chat, comic.Img, caption, true)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
