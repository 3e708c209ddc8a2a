package index

import (
	"errors"
	"log/slog"

	"github.com/starford/fitch/internal/apperr"
	"github.com/starford/fitch/internal/models"
	"github.com/starford/fitch/internal/verify"
)

// Event kinds reported by a Recorder.
const (
	EventVerified = "verified"
	EventDeleted  = "deleted"
)

// Event describes an index change. Pass is nil for deletions and for files
// that could not be decoded.
type Event struct {
	Kind    string
	Path    string
	Summary *models.ProofSummary
	Pass    *verify.Pass
}

// EventCallback is called after a recorded index change.
type EventCallback func(Event)

// Recorder verifies proof files in the background and stores the results.
// Passes for the same path follow the scheduler's last-write-wins rule.
type Recorder struct {
	db     ProofIndex
	def    verify.Config
	sched  *verify.Scheduler
	logger *slog.Logger
	cb     EventCallback
}

// NewRecorder returns a recorder writing to db. def supplies the logic for
// files whose header leaves it unset.
func NewRecorder(db ProofIndex, def verify.Config, logger *slog.Logger, cb EventCallback, opts ...verify.SchedulerOption) *Recorder {
	r := &Recorder{db: db, def: def, logger: logger, cb: cb}
	r.sched = verify.NewScheduler(r.done, opts...)
	return r
}

// Defaults returns the verification config applied to files without a header.
func (r *Recorder) Defaults() verify.Config { return r.def }

// Submit indexes data as the new content of rel and schedules its
// verification. The returned summary is pending unless the file failed to
// decode.
func (r *Recorder) Submit(rel string, data []byte) (models.ProofSummary, error) {
	p := Prepare(rel, data, r.def)
	if err := r.db.UpsertProof(p.Summary); err != nil {
		return p.Summary, err
	}
	if p.Doc == nil {
		r.sched.Forget(rel)
		r.logger.Debug("recorder: undecodable", slog.String("path", rel), slog.String("error", p.Summary.Error))
		r.emit(Event{Kind: EventVerified, Path: rel, Summary: &p.Summary})
		return p.Summary, nil
	}
	if _, err := r.sched.Submit(rel, p.Doc, p.Config); err != nil {
		return p.Summary, err
	}
	return p.Summary, nil
}

// Remove drops rel from the index and discards its in-flight passes.
func (r *Recorder) Remove(rel string) error {
	r.sched.Forget(rel)
	if err := r.db.DeleteProof(rel); err != nil {
		return err
	}
	r.emit(Event{Kind: EventDeleted, Path: rel})
	return nil
}

// Close waits for in-flight passes.
func (r *Recorder) Close() {
	r.sched.Close()
}

func (r *Recorder) done(p verify.Pass) {
	if r.sched.Generation(p.Key) != p.Generation {
		return
	}
	if err := r.db.SaveReport(p.Key, p); err != nil {
		if !errors.Is(err, apperr.ErrNotFound) {
			r.logger.Warn("recorder: save report failed", slog.String("path", p.Key), slog.String("error", err.Error()))
		}
		return
	}
	r.logger.Debug("recorder: verified",
		slog.String("path", p.Key),
		slog.String("pass", p.ID.String()),
		slog.Int("invalid", len(p.Report.Invalid())),
		slog.Duration("took", p.Duration))

	s, err := r.db.GetProof(p.Key)
	if err != nil {
		return
	}
	r.emit(Event{Kind: EventVerified, Path: p.Key, Summary: s, Pass: &p})
}

func (r *Recorder) emit(ev Event) {
	if r.cb != nil {
		r.cb(ev)
	}
}
