package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lox/cardczar/internal/card"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "localhost:8080", cfg.Addr())
	assert.Equal(t, 7, cfg.Game.HandSize)
	assert.Equal(t, 5, cfg.Game.WinningScore)
	require.Len(t, cfg.Decks, 1)

	decks := cfg.CardDecks()
	require.Len(t, decks, 1)
	white, black := decks[0].Counts()
	assert.Greater(t, white, 50, "starter deck needs enough answers for a full game")
	assert.Greater(t, black, 10)
}

func TestLoadConfigMissingFileFallsBack(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "does-not-exist.hcl"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Addr(), cfg.Addr())
	assert.NotEmpty(t, cfg.Decks)
}

func TestLoadConfig(t *testing.T) {
	content := `
server {
  address = "0.0.0.0"
  port    = 9090
}

game {
  winning_score = 8
}

deck "animals" {
  white { content = "A very good dog." }
  white { content = "Three raccoons in a trenchcoat." }

  black { content = "What's in the box?" }
  black {
    content = "____ and ____, together at last."
    pick    = 2
  }
}
`
	path := filepath.Join(t.TempDir(), "cardczar.hcl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9090", cfg.Addr())
	assert.Equal(t, 8, cfg.Game.WinningScore)
	// Omitted settings keep their defaults
	assert.Equal(t, 7, cfg.Game.HandSize)
	assert.Equal(t, "info", cfg.Server.LogLevel)

	// Configured decks replace the starter deck
	require.Len(t, cfg.Decks, 1)
	decks := cfg.CardDecks()
	require.Len(t, decks, 1)
	assert.Equal(t, "animals", decks[0].ID)

	white, black := decks[0].Counts()
	assert.Equal(t, 2, white)
	assert.Equal(t, 2, black)
}

func TestCardDecksStableIDs(t *testing.T) {
	cfg := DefaultConfig()
	a := cfg.CardDecks()[0]
	b := cfg.CardDecks()[0]

	require.Equal(t, len(a.Cards), len(b.Cards))
	for i := range a.Cards {
		assert.Equal(t, a.Cards[i].ID, b.Cards[i].ID, "card IDs must be stable across conversions")
	}
	assert.Equal(t, "starter/w000", a.Cards[0].ID)
}

func TestCardDecksDefaultsPick(t *testing.T) {
	cfg := &Config{
		Decks: []DeckConfig{{
			Name:  "d",
			White: []WhiteCardConfig{{Content: "w"}},
			Black: []BlackCardConfig{{Content: "b"}},
		}},
	}
	deck := cfg.CardDecks()[0]
	for _, c := range deck.Cards {
		if c.Type == card.Black {
			assert.Equal(t, 1, c.Pick, "unset pick defaults to 1")
		}
	}
}

func TestLoadConfigParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte("server {"), 0644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}
