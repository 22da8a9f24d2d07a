package sync

import (
	"context"
	"errors"
	"fmt"
	"sort"
	gosync "sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nhle/mailscore/internal/pipeline"
	"github.com/nhle/mailscore/internal/source"
	"github.com/nhle/mailscore/internal/store"
)

// SyncState represents the current state of a folder sync.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

func (s SyncState) String() string {
	switch s {
	case SyncIdle:
		return "idle"
	case SyncRunning:
		return "running"
	case SyncError:
		return "error"
	default:
		return "unknown"
	}
}

// SyncStatus holds the sync state for a single folder.
type SyncStatus struct {
	Folder   string
	State    SyncState
	LastSync time.Time
	Error    error
}

// FolderResult reports the outcome of syncing one folder.
type FolderResult struct {
	Folder     string
	Collection string
	State      SyncState
	Err        error

	// Fetched is the number of raw messages the store returned.
	Fetched int

	// Added is the number of new messages merged into the collection.
	Added int

	// Total is the collection size after the merge.
	Total int

	Drops    []pipeline.Drop
	Duration time.Duration
}

// Options narrows a sync.
type Options struct {
	MaxCount int
	Since    time.Time
}

// fetchTimeout is the maximum time allowed for fetching one folder.
const fetchTimeout = 5 * time.Minute

// Runner fetches folders, processes their messages and merges them into
// the collection store. Folders are synced one at a time so each
// collection has a single writer.
type Runner struct {
	mail  source.MailStore
	store store.CollectionStore
	proc  *pipeline.Processor
	log   zerolog.Logger
	now   func() time.Time

	mu       gosync.Mutex
	statuses map[string]*SyncStatus
}

// NewRunner creates a Runner. mail may be nil when only Rescore is used.
func NewRunner(
	mail source.MailStore,
	s store.CollectionStore,
	proc *pipeline.Processor,
	logger zerolog.Logger,
) *Runner {
	return &Runner{
		mail:     mail,
		store:    s,
		proc:     proc,
		log:      logger.With().Str("component", "sync").Logger(),
		now:      time.Now,
		statuses: make(map[string]*SyncStatus),
	}
}

// SyncFolders syncs each folder in order. A folder that fails is reported
// in its result and the remaining folders still run.
func (r *Runner) SyncFolders(ctx context.Context, folders []string, opts Options) []FolderResult {
	results := make([]FolderResult, 0, len(folders))
	for _, folder := range folders {
		if err := ctx.Err(); err != nil {
			results = append(results, FolderResult{
				Folder:     folder,
				Collection: store.CollectionName(folder),
				State:      SyncError,
				Err:        err,
			})
			continue
		}
		results = append(results, r.syncFolder(ctx, folder, opts))
	}
	return results
}

func (r *Runner) syncFolder(ctx context.Context, folder string, opts Options) FolderResult {
	start := time.Now()
	res := FolderResult{Folder: folder, Collection: store.CollectionName(folder)}
	log := r.log.With().Str("folder", folder).Logger()

	fail := func(err error) FolderResult {
		res.State = SyncError
		res.Err = err
		res.Duration = time.Since(start)
		r.setStatus(folder, SyncError, err)
		log.Error().Err(err).Msg("folder sync failed")
		return res
	}

	r.setStatus(folder, SyncRunning, nil)

	if r.mail == nil {
		return fail(errors.New("no mail store configured"))
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	raws, err := r.mail.Fetch(fetchCtx, folder, source.FetchOptions{
		MaxCount: opts.MaxCount,
		Since:    opts.Since,
	})
	cancel()
	if err != nil {
		if source.IsAuthError(err) {
			return fail(fmt.Errorf("authenticating: %w", err))
		}
		return fail(fmt.Errorf("fetching %s: %w", folder, err))
	}
	res.Fetched = len(raws)
	log.Info().Int("fetched", len(raws)).Msg("fetched messages")

	batch := r.proc.ProcessBatch(raws)
	res.Drops = batch.Drops

	existing, err := r.store.Load(ctx, res.Collection)
	if err != nil {
		return fail(fmt.Errorf("loading collection %s: %w", res.Collection, err))
	}

	merged, added := store.Apply(existing, batch.Messages, r.now())
	if err := r.store.Save(ctx, res.Collection, merged); err != nil {
		return fail(fmt.Errorf("saving collection %s: %w", res.Collection, err))
	}

	res.Added = added
	res.Total = len(merged.Emails)
	res.State = SyncIdle
	res.Duration = time.Since(start)
	r.setStatus(folder, SyncIdle, nil)

	log.Info().
		Int("added", added).
		Int("total", res.Total).
		Int("dropped", len(batch.Drops)).
		Dur("duration", res.Duration).
		Msg("folder synced")

	return res
}

// RescoreResult reports the outcome of rescoring one collection.
type RescoreResult struct {
	Collection string
	Stats      pipeline.RescoreStats
	Err        error
}

// Rescore re-runs contact matching and scoring over saved collections.
// An empty names list means every collection in the store.
func (r *Runner) Rescore(ctx context.Context, names []string) ([]RescoreResult, error) {
	if len(names) == 0 {
		all, err := r.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing collections: %w", err)
		}
		names = all
	}

	results := make([]RescoreResult, 0, len(names))
	for _, name := range names {
		res := RescoreResult{Collection: name}

		c, err := r.store.Load(ctx, name)
		switch {
		case err != nil:
			res.Err = fmt.Errorf("loading collection %s: %w", name, err)
		case c == nil:
			res.Err = fmt.Errorf("collection %s not found", name)
		default:
			res.Stats = r.proc.Rescore(c.Emails)
			updated, _ := store.Apply(c, nil, r.now())
			if err := r.store.Save(ctx, name, updated); err != nil {
				res.Err = fmt.Errorf("saving collection %s: %w", name, err)
			}
		}

		if res.Err != nil {
			r.log.Error().Err(res.Err).Str("collection", name).Msg("rescore failed")
		} else {
			r.log.Info().
				Str("collection", name).
				Int("messages", res.Stats.Total).
				Int("total_change", res.Stats.TotalChange).
				Msg("collection rescored")
		}
		results = append(results, res)
	}
	return results, nil
}

// Statuses returns the sync status of every folder seen so far, sorted by
// folder name.
func (r *Runner) Statuses() []SyncStatus {
	r.mu.Lock()
	defer r.mu.Unlock()

	statuses := make([]SyncStatus, 0, len(r.statuses))
	for _, s := range r.statuses {
		statuses = append(statuses, *s)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Folder < statuses[j].Folder })
	return statuses
}

// setStatus updates the sync status for a folder.
func (r *Runner) setStatus(folder string, state SyncState, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	status, ok := r.statuses[folder]
	if !ok {
		status = &SyncStatus{Folder: folder}
		r.statuses[folder] = status
	}

	status.State = state
	status.Error = err
	if state == SyncIdle && err == nil {
		status.LastSync = r.now()
	}
}
