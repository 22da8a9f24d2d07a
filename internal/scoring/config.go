// Package scoring assigns heuristic importance scores to messages.
package scoring

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// AddressRule fires when any address appears in the To header.
type AddressRule struct {
	Addresses []string `yaml:"addresses" json:"addresses"`
	Score     int      `yaml:"score" json:"score"`
}

// TermRule fires when any term appears in the checked text.
type TermRule struct {
	Terms []string `yaml:"terms" json:"terms"`
	Score int      `yaml:"score" json:"score"`
}

// ContactBonus holds the points awarded for directory matches.
type ContactBonus struct {
	FromContact       int `yaml:"from_contact" json:"from_contact"`
	FullNameMatch     int `yaml:"full_name_match" json:"full_name_match"`
	FirstNameMatch    int `yaml:"first_name_match" json:"first_name_match"`
	LastNameMatch     int `yaml:"last_name_match" json:"last_name_match"`
	OrganizationMatch int `yaml:"organization_match" json:"organization_match"`
}

// ReplyBonus holds the points awarded to replies.
type ReplyBonus struct {
	IsReply int `yaml:"is_reply" json:"is_reply"`
}

// Config is the rule set. A nil section disables its rule.
type Config struct {
	BillingAddresses   *AddressRule  `yaml:"billing_addresses" json:"billing_addresses"`
	FinancialDocuments *TermRule     `yaml:"financial_documents" json:"financial_documents"`
	Receipts           *TermRule     `yaml:"receipts" json:"receipts"`
	ImportantKeywords  *TermRule     `yaml:"important_keywords" json:"important_keywords"`
	ContactBonus       *ContactBonus `yaml:"contact_bonus" json:"contact_bonus"`
	ReplyBonus         *ReplyBonus   `yaml:"reply_bonus" json:"reply_bonus"`
}

// ParseConfig decodes a rule set from YAML or JSON. Terms and addresses are
// lower-cased so matching is case-insensitive.
func ParseConfig(data []byte) (*Config, error) {
	cfg := &Config{}
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing scoring config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

// LoadConfig reads a rule set file. A missing file yields an empty rule
// set, which scores every message 0.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Config{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading scoring config %s: %w", path, err)
	}
	return ParseConfig(data)
}

func (c *Config) normalize() {
	if c.BillingAddresses != nil {
		c.BillingAddresses.Addresses = lowerAll(c.BillingAddresses.Addresses)
	}
	for _, r := range []*TermRule{c.FinancialDocuments, c.Receipts, c.ImportantKeywords} {
		if r != nil {
			r.Terms = lowerAll(r.Terms)
		}
	}
}

func lowerAll(in []string) []string {
	out := in[:0]
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadBlacklist reads one term per line. Blank lines and lines starting
// with '#' are ignored. A missing file yields an empty list.
func LoadBlacklist(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading blacklist %s: %w", path, err)
	}

	var terms []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		term := strings.ToLower(strings.TrimSpace(sc.Text()))
		if term == "" || strings.HasPrefix(term, "#") || seen[term] {
			continue
		}
		seen[term] = true
		terms = append(terms, term)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading blacklist %s: %w", path, err)
	}
	return terms, nil
}
