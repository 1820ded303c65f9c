package telegram

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegisterCommandRequiresSlash(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("start", Command{Handler: noop})
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "Start"})

	if len(reg.Commands()) != 1 {
		t.Fatalf("got %d commands, want 1", len(reg.Commands()))
	}
	if _, _, ok := reg.LookupCommand("/start"); !ok {
		t.Fatalf("/start not found")
	}
}

func TestRegisterCommandKeepsFirst(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/help", Command{Handler: noop, Description: "first"})
	reg.RegisterCommand("/help", Command{Handler: noop, Description: "second"})

	_, cmd, ok := reg.LookupCommand("help")
	if !ok {
		t.Fatalf("/help not found")
	}
	if cmd.Description != "first" {
		t.Fatalf("duplicate registration replaced the original: %q", cmd.Description)
	}
}

func TestLookupCommandResolvesAliases(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/imagine", Command{Handler: noop, Aliases: []string{"img"}})

	key, _, ok := reg.LookupCommand("img")
	if !ok || key != "/imagine" {
		t.Fatalf("alias lookup = %q, %v", key, ok)
	}
	key, _, ok = reg.LookupCommand("/img")
	if !ok || key != "/imagine" {
		t.Fatalf("slashed alias lookup = %q, %v", key, ok)
	}
}

func TestListCommandsHidesAdminEntries(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/meme", Command{Handler: noop, Description: "Random meme"})
	reg.RegisterCommand("/broadcast", Command{Handler: noop, Description: "Send to all users", AdminOnly: true})
	reg.RegisterCommand("/debug", Command{Handler: noop, Hidden: true})

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "/meme" {
		t.Fatalf("visible commands = %+v", visible)
	}
	if all := reg.ListCommands(false); len(all) != 3 {
		t.Fatalf("got %d total commands, want 3", len(all))
	}
}

func TestCallbackRegistryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCallback("ent_meme", noop)
	reg.RegisterCallback("main_menu", noop)

	if _, ok := reg.GetCallback("ent_meme"); !ok {
		t.Fatalf("ent_meme not found")
	}
	if _, ok := reg.GetCallback("missing"); ok {
		t.Fatalf("unexpected hit for missing key")
	}
	keys := reg.ListCallbacks()
	if len(keys) != 2 || keys[0] != "ent_meme" || keys[1] != "main_menu" {
		t.Fatalf("callback keys = %v", keys)
	}
}

func TestCallbackKeyParsesEncodedData(t *testing.T) {
	cases := []struct {
		cb   tele.Callback
		want string
	}{
		{tele.Callback{Unique: "ent_joke"}, "ent_joke"},
		{tele.Callback{Data: "\fcrypto_top10"}, "crypto_top10"},
		{tele.Callback{Data: "\fcrypto_btc|extra"}, "crypto_btc"},
		{tele.Callback{Data: "main_menu"}, "main_menu"},
	}
	for _, tc := range cases {
		if got := callbackKey(&tc.cb); got != tc.want {
			t.Errorf("callbackKey(%q/%q) = %q, want %q", tc.cb.Unique, tc.cb.Data, got, tc.want)
		}
	}
}

func TestAuthorize(t *testing.T) {
	if Authorize(0, 0) {
		t.Fatalf("no admin configured must never authorize")
	}
	if Authorize(500, 501) {
		t.Fatalf("mismatched id authorized")
	}
	if !Authorize(500, 500) {
		t.Fatalf("admin id rejected")
	}
}
