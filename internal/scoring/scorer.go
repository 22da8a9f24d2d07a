package scoring

import (
	"strings"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/model"
)

// BlacklistPenalty is subtracted once per matching blacklist term.
const BlacklistPenalty = 2

// Rule names reported in Contribution.Rule.
const (
	RuleBilling      = "billing_addresses"
	RuleFinancial    = "financial_documents"
	RuleReceipts     = "receipts"
	RuleKeywords     = "important_keywords"
	RuleBlacklist    = "blacklist"
	RuleFullName     = "full_name_match"
	RuleFirstName    = "first_name_match"
	RuleLastName     = "last_name_match"
	RuleOrganization = "organization_match"
	RuleFromContact  = "from_contact"
	RuleReply        = "is_reply"
)

// Contribution is one rule's effect on a score.
type Contribution struct {
	Rule   string
	Points int

	// Detail names what triggered the rule (term, address, organization).
	Detail string
}

// Result is a score with the contributions that produced it.
type Result struct {
	Score         int
	Contributions []Contribution
}

func (r *Result) add(rule string, points int, detail string) {
	r.Score += points
	r.Contributions = append(r.Contributions, Contribution{Rule: rule, Points: points, Detail: detail})
}

// Evaluate scores m. It is a pure function of its arguments; cfg and dir
// may be nil.
//
// Rules run in a fixed order. A billing address match returns that rule's
// score immediately and nothing else is evaluated.
func Evaluate(m model.Message, cfg *Config, dir *contacts.Directory, blacklist []string) Result {
	var res Result
	if cfg == nil {
		cfg = &Config{}
	}

	if r := cfg.BillingAddresses; r != nil {
		to := strings.ToLower(m.To)
		for _, addr := range r.Addresses {
			if addr != "" && strings.Contains(to, addr) {
				res.add(RuleBilling, r.Score, addr)
				return res
			}
		}
	}

	text := strings.ToLower(m.Subject + " " + m.From + " " + m.Body)
	subject := strings.ToLower(m.Subject)

	if term, ok := firstTerm(cfg.FinancialDocuments, text); ok {
		res.add(RuleFinancial, cfg.FinancialDocuments.Score, term)
	}
	if term, ok := firstTerm(cfg.Receipts, text); ok {
		res.add(RuleReceipts, cfg.Receipts.Score, term)
	}
	if term, ok := firstTerm(cfg.ImportantKeywords, subject); ok {
		res.add(RuleKeywords, cfg.ImportantKeywords.Score, term)
	}

	for _, term := range blacklist {
		if term != "" && strings.Contains(text, term) {
			res.add(RuleBlacklist, -BlacklistPenalty, term)
		}
	}

	if b := cfg.ContactBonus; b != nil && dir != nil {
		name := contacts.DisplayName(m.From)
		match := dir.MatchName(name)
		switch {
		case match.Full:
			res.add(RuleFullName, b.FullNameMatch, name)
		default:
			if match.First {
				res.add(RuleFirstName, b.FirstNameMatch, name)
			}
			if match.Last {
				res.add(RuleLastName, b.LastNameMatch, name)
			}
		}
		if org, ok := dir.MatchOrganization(text); ok {
			res.add(RuleOrganization, b.OrganizationMatch, org)
		}
		if m.IsFromContact {
			res.add(RuleFromContact, b.FromContact, "")
		}
	}

	if r := cfg.ReplyBonus; r != nil && m.IsReply {
		res.add(RuleReply, r.IsReply, "")
	}

	return res
}

// Score returns only the total of Evaluate.
func Score(m model.Message, cfg *Config, dir *contacts.Directory, blacklist []string) int {
	return Evaluate(m, cfg, dir, blacklist).Score
}

func firstTerm(r *TermRule, text string) (string, bool) {
	if r == nil {
		return "", false
	}
	for _, term := range r.Terms {
		if term != "" && strings.Contains(text, term) {
			return term, true
		}
	}
	return "", false
}

// Scorer binds a rule set, directory and blacklist for repeated use.
type Scorer struct {
	cfg       *Config
	dir       *contacts.Directory
	blacklist []string
}

// NewScorer creates a Scorer. Any argument may be nil.
func NewScorer(cfg *Config, dir *contacts.Directory, blacklist []string) *Scorer {
	return &Scorer{cfg: cfg, dir: dir, blacklist: blacklist}
}

// Score scores one message.
func (s *Scorer) Score(m model.Message) int {
	return Score(m, s.cfg, s.dir, s.blacklist)
}

// Evaluate scores one message and explains the result.
func (s *Scorer) Evaluate(m model.Message) Result {
	return Evaluate(m, s.cfg, s.dir, s.blacklist)
}
