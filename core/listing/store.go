package listing

import (
	"context"
	"reflect"
	"sync"
	"time"

	"github.com/kat-co/vala"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
)

var (
	// ErrClosed is returned by a Store used after Close.
	ErrClosed = errors.New("store closed")
	// ErrSuperseded is returned by a fetch whose result was discarded because a newer fetch started.
	ErrSuperseded = errors.New("fetch superseded by a newer one")
	// ErrReadOnly is returned by mutations on a Store without a Mutator.
	ErrReadOnly = errors.New("store is read-only")
)

type (
	// Params are the dependency arguments of a list fetch, eg. {"class_id": "3"}.
	Params map[string]string

	// Source fetches the raw list payload of one entity.
	Source interface {
		List(ctx context.Context, params Params) (interface{}, error)
	}

	// Mutator performs writes on one entity; each returns the raw response payload.
	Mutator interface {
		Create(ctx context.Context, payload map[string]interface{}) (interface{}, error)
		Update(ctx context.Context, id string, payload map[string]interface{}) (interface{}, error)
		Delete(ctx context.Context, id string) (interface{}, error)
	}

	// State is a snapshot of a Store.
	State struct {
		Items   []entity.ViewRow
		Loading bool
		Error   null.String
		Seq     uint64 // sequence number of the fetch that produced Items/Error; 0 before any
	}

	Option func(*Store)
)

func WithMutator(mut Mutator) Option { return func(s *Store) { s.mut = mut } }

func WithParams(p Params) Option { return func(s *Store) { s.params = copyParams(p) } }

func WithLogger(logger core.Logger) Option { return func(s *Store) { s.logger = logger } }

// WithTimeout bounds every list fetch.
func WithTimeout(d time.Duration) Option { return func(s *Store) { s.timeout = d } }

// OnChange registers fn to receive every new state.
// States are delivered one at a time and in the order they were applied; a state
// overtaken by a newer delivery is dropped. fn must not start a fetch synchronously.
func OnChange(fn func(State)) Option {
	return func(s *Store) { s.listeners = append(s.listeners, fn) }
}

// Store owns the fetch/mutate lifecycle of one entity list.
// Fetches are sequenced: starting a fetch cancels the one in flight and only the latest settles the state.
// Failed fetches keep the last good items next to the error.
type Store struct {
	name      string
	src       Source
	mut       Mutator
	norm      entity.RowNormalizer
	logger    core.Logger
	timeout   time.Duration
	listeners []func(State)

	mu       sync.Mutex
	state    State
	params   Params
	seq      uint64
	inflight context.CancelFunc
	closed   bool
	version  uint64 // bumped for every state handed to listeners
	wg       sync.WaitGroup

	notifyMu  sync.Mutex
	delivered uint64
}

func NewStore(name string, src Source, norm entity.RowNormalizer, opts ...Option) (*Store, error) {
	if err := vala.BeginValidation().Validate(
		vala.StringNotEmpty(name, "name"),
		vala.IsNotNil(src, "src"),
		vala.IsNotNil(norm, "norm"),
	).Check(); err != nil {
		return nil, errors.Wrap(err, "validating store arguments")
	}

	s := &Store{
		name:   name,
		src:    src,
		norm:   norm,
		logger: core.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Name() string { return s.name }

// State returns a snapshot; the Items slice is a copy.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot()
}

func (s *Store) snapshot() State {
	st := s.state
	if s.state.Items != nil {
		st.Items = make([]entity.ViewRow, len(s.state.Items))
		copy(st.Items, s.state.Items)
	}
	return st
}

// Params returns the current dependency arguments.
func (s *Store) Params() Params {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyParams(s.params)
}

// Mount starts the initial fetch; the store is Loading when Mount returns.
func (s *Store) Mount(ctx context.Context) {
	s.RefetchAsync(ctx)
}

// Refetch fetches the list and waits for it to settle.
// It returns ErrSuperseded when a newer fetch started meanwhile; the newer one settles the state.
func (s *Store) Refetch(ctx context.Context) error {
	seq, fetchCtx, params, err := s.begin(ctx)
	if err != nil {
		return err
	}
	return s.fetch(fetchCtx, seq, params)
}

// RefetchAsync starts a fetch without waiting for it; see Wait.
func (s *Store) RefetchAsync(ctx context.Context) {
	seq, fetchCtx, params, err := s.begin(ctx)
	if err != nil {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.fetch(fetchCtx, seq, params); err != nil && err != ErrSuperseded {
			s.logger.Debug("fetching "+s.name, err)
		}
	}()
}

// Wait blocks until every asynchronous fetch returned.
func (s *Store) Wait() {
	s.wg.Wait()
}

// SetParams replaces the dependency arguments; a change triggers an asynchronous refetch.
func (s *Store) SetParams(ctx context.Context, p Params) bool {
	s.mu.Lock()
	changed := !sameParams(s.params, p)
	if changed {
		s.params = copyParams(p)
	}
	s.mu.Unlock()

	if changed {
		s.RefetchAsync(ctx)
	}
	return changed
}

// Close cancels the fetch in flight; results arriving afterwards are dropped.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	if s.inflight != nil {
		s.inflight()
		s.inflight = nil
	}
}

func (s *Store) begin(ctx context.Context) (uint64, context.Context, Params, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, nil, nil, ErrClosed
	}

	if s.inflight != nil {
		s.inflight()
	}
	var fetchCtx context.Context
	var cancel context.CancelFunc
	if s.timeout > 0 {
		fetchCtx, cancel = context.WithTimeout(ctx, s.timeout)
	} else {
		fetchCtx, cancel = context.WithCancel(ctx)
	}
	s.inflight = cancel

	s.seq++
	seq := s.seq
	s.state.Loading = true
	params := copyParams(s.params)
	st, version := s.snapshot(), s.nextVersion()
	s.mu.Unlock()

	s.notify(version, st)
	return seq, fetchCtx, params, nil
}

func (s *Store) fetch(ctx context.Context, seq uint64, params Params) error {
	payload, err := s.src.List(ctx, params)
	var rows []entity.ViewRow
	if err == nil {
		var recs []entity.RawRecord
		if recs, err = Coerce(payload); err == nil {
			rows = entity.NormalizeAll(s.norm, recs)
		}
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	if seq != s.seq {
		s.mu.Unlock()
		return ErrSuperseded
	}
	s.inflight()
	s.inflight = nil

	s.state.Loading = false
	s.state.Seq = seq
	if err != nil {
		// keep the last good items
		s.state.Error = null.StringFrom(ErrorMessage(err, "failed to fetch "+s.name))
	} else {
		if rows == nil {
			rows = []entity.ViewRow{}
		}
		s.state.Items = rows
		s.state.Error = null.String{}
	}
	st, version := s.snapshot(), s.nextVersion()
	s.mu.Unlock()

	s.notify(version, st)
	if err != nil {
		return errors.Wrapf(err, "fetching %s", s.name)
	}
	return nil
}

// nextVersion must be called with s.mu held.
func (s *Store) nextVersion() uint64 {
	s.version++
	return s.version
}

// notify hands st to the listeners unless a newer state was delivered already.
func (s *Store) notify(version uint64, st State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if version <= s.delivered {
		return
	}
	s.delivered = version
	for _, fn := range s.listeners {
		fn(st)
	}
}

// Create performs one write and, once it succeeded, refreshes the whole list.
// A failed write returns its error and leaves the items untouched; a failed refresh only shows in State.
func (s *Store) Create(ctx context.Context, payload map[string]interface{}) error {
	return s.mutate(ctx, "creating", func(mut Mutator) (interface{}, error) {
		return mut.Create(ctx, payload)
	})
}

// Update is Create for an existing record.
func (s *Store) Update(ctx context.Context, id string, payload map[string]interface{}) error {
	return s.mutate(ctx, "updating", func(mut Mutator) (interface{}, error) {
		return mut.Update(ctx, id, payload)
	})
}

// Delete is Create for a removal.
func (s *Store) Delete(ctx context.Context, id string) error {
	return s.mutate(ctx, "deleting", func(mut Mutator) (interface{}, error) {
		return mut.Delete(ctx, id)
	})
}

func (s *Store) mutate(ctx context.Context, action string, write func(Mutator) (interface{}, error)) error {
	if s.mut == nil {
		return ErrReadOnly
	}
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return ErrClosed
	}

	resp, err := write(s.mut)
	if err == nil {
		err = CheckStatus(resp)
	}
	if err != nil {
		return errors.Wrapf(err, "%s %s", action, s.name)
	}

	// a failed refresh is reported through the state, like any fetch
	if err = s.Refetch(ctx); err != nil && errors.Cause(err) != ErrSuperseded {
		s.logger.Debug("refreshing "+s.name+" after write", err)
	}
	return nil
}

func copyParams(p Params) Params {
	if p == nil {
		return nil
	}
	cp := make(Params, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

func sameParams(a, b Params) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	return reflect.DeepEqual(a, b)
}
