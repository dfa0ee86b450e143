// Package content loads the title and feature banks used to dress up
// generated tasks.
package content

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed banks.toml
var defaultBanks []byte

// Descriptions holds the per-kind task descriptions. Video is a format
// string receiving the lower-cased title.
type Descriptions struct {
	Video  string `toml:"video"`
	Ad     string `toml:"ad"`
	Survey string `toml:"survey"`
}

// Banks is the content a task generator draws from.
type Banks struct {
	Titles       []string     `toml:"titles"`
	Features     [][]string   `toml:"features"`
	Descriptions Descriptions `toml:"descriptions"`
}

// Default returns the embedded banks.
func Default() Banks {
	b, err := Parse(defaultBanks)
	if err != nil {
		panic(fmt.Sprintf("embedded content banks are invalid: %v", err))
	}
	return b
}

// Parse decodes TOML banks and validates them.
func Parse(data []byte) (Banks, error) {
	var b Banks
	if _, err := toml.Decode(string(data), &b); err != nil {
		return Banks{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if err := b.Validate(); err != nil {
		return Banks{}, err
	}
	return b, nil
}

// Load reads banks from path. An empty path yields Default. Descriptions
// missing from the file are taken from the defaults.
func Load(path string) (Banks, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}
	var b Banks
	if _, err := toml.DecodeFile(path, &b); err != nil {
		return Banks{}, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	def := Default()
	if b.Descriptions.Video == "" {
		b.Descriptions.Video = def.Descriptions.Video
	}
	if b.Descriptions.Ad == "" {
		b.Descriptions.Ad = def.Descriptions.Ad
	}
	if b.Descriptions.Survey == "" {
		b.Descriptions.Survey = def.Descriptions.Survey
	}
	if err := b.Validate(); err != nil {
		return Banks{}, err
	}
	return b, nil
}

// Validate rejects banks a generator cannot index into.
func (b Banks) Validate() error {
	if len(b.Titles) == 0 || len(b.Features) == 0 {
		return ErrEmptyBanks
	}
	return nil
}
