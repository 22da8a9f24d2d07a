// Package pipeline turns raw messages into scored records.
package pipeline

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"

	"github.com/nhle/mailscore/internal/contacts"
	"github.com/nhle/mailscore/internal/dates"
	"github.com/nhle/mailscore/internal/decode"
	"github.com/nhle/mailscore/internal/model"
	"github.com/nhle/mailscore/internal/scoring"
	"github.com/nhle/mailscore/internal/source"
)

var (
	// ErrUnparseableDate marks a Date header no layout accepted.
	ErrUnparseableDate = errors.New("unparseable date")

	// ErrPanic wraps a panic recovered while processing one message.
	ErrPanic = errors.New("panic while processing message")
)

// Config selects the collaborators of a Processor. A nil Directory or
// Scoring disables the matching step.
type Config struct {
	Directory *contacts.Directory
	Scoring   *scoring.Config
	Blacklist []string

	// DecodeOptions are passed to decode.NewDecoder.
	DecodeOptions []decode.Option
}

// Processor decodes, dates, matches and scores messages. It is safe for
// concurrent use as long as its Directory and Config are not modified.
type Processor struct {
	decoder *decode.Decoder
	dir     *contacts.Directory
	scorer  *scoring.Scorer
	log     zerolog.Logger
}

// New creates a Processor.
func New(cfg Config, logger zerolog.Logger) *Processor {
	p := &Processor{
		decoder: decode.NewDecoder(cfg.DecodeOptions...),
		dir:     cfg.Directory,
		log:     logger.With().Str("component", "pipeline").Logger(),
	}
	if cfg.Scoring != nil {
		p.scorer = scoring.NewScorer(cfg.Scoring, cfg.Directory, cfg.Blacklist)
	}
	return p
}

// Normalize decodes raw into a message with its date resolved. Contact
// and score fields are left zero. Every field that fell back to a default
// is listed in the returned issues.
func (p *Processor) Normalize(raw []byte) (model.Message, []decode.Issue, error) {
	d, err := p.decoder.Decode(raw)
	if err != nil {
		return model.Message{}, nil, err
	}

	m := model.Message{
		Subject:     d.Subject,
		From:        d.From,
		To:          d.To,
		MessageID:   d.MessageID,
		InReplyTo:   d.InReplyTo,
		References:  model.References(d.References),
		IsReply:     d.InReplyTo != "",
		Body:        d.Body,
		Attachments: d.Attachments,
	}

	issues := d.Issues
	t, ok, fromID := dates.Resolve(d.DateHeader, d.MessageID)
	switch {
	case ok:
		m.Date = &t
		if fromID && d.DateHeader != "" {
			issues = append(issues, decode.Issue{Field: "date", Value: d.DateHeader, Err: ErrUnparseableDate})
		}
	case d.DateHeader != "":
		issues = append(issues, decode.Issue{Field: "date", Value: d.DateHeader, Err: ErrUnparseableDate})
	}

	return m, issues, nil
}

// Enrich sets the contact flag and importance score of m.
func (p *Processor) Enrich(m *model.Message) {
	if p.dir != nil {
		m.IsFromContact = contacts.IsContact(m.From, p.dir)
	}
	if p.scorer != nil {
		m.ImportanceScore = p.scorer.Score(*m)
	}
}

// Drop records a message left out of a batch.
type Drop struct {
	Folder    string
	UID       uint32
	MessageID string
	Err       error
}

// Batch is the outcome of ProcessBatch.
type Batch struct {
	Messages []model.Message
	Drops    []Drop

	// Issues counts per-field fallbacks across kept messages.
	Issues int
}

// ProcessBatch normalizes and enriches every raw message. A message that
// fails or panics is dropped and logged; the rest of the batch continues.
func (p *Processor) ProcessBatch(raws []source.RawMessage) Batch {
	var b Batch
	for _, raw := range raws {
		m, issues, err := p.processOne(raw)
		if err != nil {
			p.log.Warn().
				Err(err).
				Str("folder", raw.Folder).
				Uint32("uid", raw.UID).
				Str("message_id", m.MessageID).
				Msg("dropping message")
			b.Drops = append(b.Drops, Drop{Folder: raw.Folder, UID: raw.UID, MessageID: m.MessageID, Err: err})
			continue
		}

		for _, issue := range issues {
			p.log.Warn().
				Err(issue.Err).
				Str("folder", raw.Folder).
				Uint32("uid", raw.UID).
				Str("message_id", m.MessageID).
				Str("field", issue.Field).
				Str("value", issue.Value).
				Msg("field replaced by default")
		}
		b.Issues += len(issues)
		b.Messages = append(b.Messages, m)
	}
	return b
}

func (p *Processor) processOne(raw source.RawMessage) (m model.Message, issues []decode.Issue, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Debug().Bytes("stack", debug.Stack()).Msg("recovered panic")
			err = fmt.Errorf("%w: %v", ErrPanic, r)
		}
	}()

	m, issues, err = p.Normalize(raw.Raw)
	if err != nil {
		return m, nil, err
	}
	p.Enrich(&m)
	return m, issues, nil
}
