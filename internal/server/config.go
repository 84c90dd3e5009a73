package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/lox/cardczar/internal/card"
)

// Config represents the complete server configuration
type Config struct {
	Server ServerSettings `hcl:"server,block"`
	Game   GameSettings   `hcl:"game,block"`
	Decks  []DeckConfig   `hcl:"deck,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
}

// GameSettings contains defaults applied to new games
type GameSettings struct {
	HandSize     int `hcl:"hand_size,optional"`
	WinningScore int `hcl:"winning_score,optional"`
}

// DeckConfig defines one deck of cards
type DeckConfig struct {
	Name  string            `hcl:"name,label"`
	White []WhiteCardConfig `hcl:"white,block"`
	Black []BlackCardConfig `hcl:"black,block"`
}

// WhiteCardConfig is one answer card
type WhiteCardConfig struct {
	Content string `hcl:"content"`
}

// BlackCardConfig is one prompt card
type BlackCardConfig struct {
	Content string `hcl:"content"`
	Pick    int    `hcl:"pick,optional"`
	Draw    int    `hcl:"draw,optional"`
}

// Addr returns the listen address in host:port form
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// CardDecks converts the configured decks into the engine's deck
// model. IDs are derived from deck names and card positions so they
// stay stable across restarts, which keeps games replayable against an
// unchanged config.
func (c *Config) CardDecks() []*card.Deck {
	out := make([]*card.Deck, 0, len(c.Decks))
	for _, dc := range c.Decks {
		d := &card.Deck{
			ID:     dc.Name,
			Name:   dc.Name,
			Active: true,
		}
		for i, wc := range dc.White {
			d.Cards = append(d.Cards, card.Card{
				ID:      fmt.Sprintf("%s/w%03d", dc.Name, i),
				DeckID:  d.ID,
				Type:    card.White,
				Content: wc.Content,
				Active:  true,
			})
		}
		for i, bc := range dc.Black {
			pick := bc.Pick
			if pick < 1 {
				pick = 1
			}
			d.Cards = append(d.Cards, card.Card{
				ID:      fmt.Sprintf("%s/b%03d", dc.Name, i),
				DeckID:  d.ID,
				Type:    card.Black,
				Content: bc.Content,
				Pick:    pick,
				Draw:    bc.Draw,
				Active:  true,
			})
		}
		out = append(out, d)
	}
	return out
}

// DefaultConfig returns the built-in configuration, including a
// starter deck so the server and simulator work with no config file.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Game: GameSettings{
			HandSize:     7,
			WinningScore: 5,
		},
		Decks: []DeckConfig{starterDeck()},
	}
}

// LoadConfig loads configuration from an HCL file, falling back to the
// defaults when the file does not exist. Settings the file omits keep
// their default values; decks in the file replace the starter deck.
func LoadConfig(filename string) (*Config, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse config file: %s", diags.Error())
	}

	config := &Config{}
	if diags := gohcl.DecodeBody(file.Body, nil, config); diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode config file: %s", diags.Error())
	}

	defaults := DefaultConfig()
	if config.Server.Address == "" {
		config.Server.Address = defaults.Server.Address
	}
	if config.Server.Port == 0 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = defaults.Server.LogLevel
	}
	if config.Game.HandSize == 0 {
		config.Game.HandSize = defaults.Game.HandSize
	}
	if config.Game.WinningScore == 0 {
		config.Game.WinningScore = defaults.Game.WinningScore
	}
	if len(config.Decks) == 0 {
		config.Decks = defaults.Decks
	}
	return config, nil
}

// starterDeck is a built-in deck sized so a default game cannot
// exhaust the draw pile before someone reaches the winning score.
func starterDeck() DeckConfig {
	return DeckConfig{
		Name: "starter",
		Black: []BlackCardConfig{
			{Content: "What's that sound?"},
			{Content: "Why can't I sleep at night?"},
			{Content: "I got 99 problems but ____ ain't one."},
			{Content: "____: good to the last drop."},
			{Content: "What's the next big thing?"},
			{Content: "____ + ____ = world peace.", Pick: 2},
			{Content: "What never fails to liven up a party?"},
			{Content: "What's my secret power?"},
			{Content: "Instead of studying, I spent the whole night with ____."},
			{Content: "The meeting could have been ____."},
			{Content: "First ____, then ____, finally profit.", Pick: 2, Draw: 1},
			{Content: "What do cats dream about?"},
			{Content: "What's in my pocket right now?"},
			{Content: "The real treasure was ____."},
			{Content: "My therapist says I rely too much on ____."},
			{Content: "Nothing ruins a road trip like ____."},
			{Content: "The museum's newest exhibit: ____."},
			{Content: "I would walk 500 miles for ____."},
			{Content: "Step aside, science. The answer is ____."},
			{Content: "This year's office party was cancelled due to ____."},
		},
		White: []WhiteCardConfig{
			{Content: "A lifetime supply of rubber ducks."},
			{Content: "The last slice of pizza."},
			{Content: "An extremely confident pigeon."},
			{Content: "Forgetting why you walked into the room."},
			{Content: "A suspiciously cheap parachute."},
			{Content: "The office printer, finally working."},
			{Content: "Synergy."},
			{Content: "A robot that apologizes too much."},
			{Content: "Twelve angry geese."},
			{Content: "Unlimited breadsticks."},
			{Content: "The wrong meeting link."},
			{Content: "A very long Monday."},
			{Content: "Mysterious fridge leftovers."},
			{Content: "My browser's 73 open tabs."},
			{Content: "An inspirational poster about teamwork."},
			{Content: "A dramatic weather forecast."},
			{Content: "Socks with sandals."},
			{Content: "The group chat at 3am."},
			{Content: "A slightly haunted vending machine."},
			{Content: "Compound interest."},
			{Content: "An apology written by a lawyer."},
			{Content: "The fifth cup of coffee."},
			{Content: "A motivational seagull."},
			{Content: "Someone else's shopping cart."},
			{Content: "The snooze button."},
			{Content: "A firmware update at the worst moment."},
			{Content: "Free samples."},
			{Content: "A very sincere scarecrow."},
			{Content: "The neighbor's wifi."},
			{Content: "An overly detailed spreadsheet."},
			{Content: "Decorative soap nobody may use."},
			{Content: "A queue that forms for no reason."},
			{Content: "The missing sock."},
			{Content: "An aggressively friendly golden retriever."},
			{Content: "Elevator small talk."},
			{Content: "A conspiracy involving pigeons."},
			{Content: "A fog machine with no off switch."},
			{Content: "The mute button, pressed too late."},
			{Content: "An emotional support cactus."},
			{Content: "The concept of brunch."},
			{Content: "A flock of untrained interns."},
			{Content: "Industrial quantities of glitter."},
			{Content: "The one shopping trolley with a broken wheel."},
			{Content: "A heated debate about fonts."},
			{Content: "The world's most average sandwich."},
			{Content: "A password written on a sticky note."},
			{Content: "Interpretive dance, unprompted."},
			{Content: "A deeply committed mime."},
			{Content: "The smell of a new book."},
			{Content: "Forty-five minutes of hold music."},
			{Content: "An escaped birthday balloon."},
			{Content: "A llama with opinions."},
			{Content: "The hotel's continental breakfast."},
			{Content: "A perfectly timed fire drill."},
			{Content: "My retirement plan: lottery tickets."},
			{Content: "A spreadsheet named final_final_v3."},
			{Content: "The self-checkout's unexpected item."},
			{Content: "An ominous weather balloon."},
			{Content: "Free wifi with a 40-character password."},
			{Content: "A very polite tax audit."},
			{Content: "The ceremonial cutting of the ribbon."},
			{Content: "A trampoline in the boardroom."},
			{Content: "An heirloom sourdough starter."},
			{Content: "The office thermostat wars."},
			{Content: "A raccoon in a tiny hard hat."},
			{Content: "The phrase 'per my last email'."},
			{Content: "A vending machine that takes exact change only."},
			{Content: "An unsolicited bagpipe solo."},
			{Content: "The fourth attempt at parallel parking."},
			{Content: "A ghost who pays rent on time."},
			{Content: "The decorative throw pillows."},
			{Content: "A surprisingly aggressive book club."},
			{Content: "The last working pen in the building."},
			{Content: "An all-hands meeting about meetings."},
			{Content: "A suspicious abundance of cake."},
			{Content: "The printer's third paper jam today."},
			{Content: "A karaoke machine at a funeral home."},
			{Content: "An expired coupon, presented confidently."},
			{Content: "The committee for naming committees."},
			{Content: "A dog wearing prescription goggles."},
			{Content: "The unskippable ad."},
			{Content: "A chandelier made of spoons."},
			{Content: "The backup plan's backup plan."},
			{Content: "An extremely local newspaper."},
			{Content: "The gym membership I never used."},
			{Content: "A parrot that only says 'noted'."},
			{Content: "The emergency snack drawer."},
			{Content: "A fax machine in the year 2026."},
			{Content: "The scenic route, under protest."},
			{Content: "An artisanal ice cube."},
			{Content: "The part of the map labeled 'here be dragons'."},
			{Content: "A standing ovation for the bus driver."},
			{Content: "The instruction manual, unread."},
		},
	}
}
