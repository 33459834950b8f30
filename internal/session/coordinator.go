package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/cleanse369/internal/codec"
	"github.com/verte-zerg/cleanse369/internal/cycle"
	"github.com/verte-zerg/cleanse369/internal/model"
)

// Coordinator runs cycle operations and pushes each change to the
// authoritative backend.
type Coordinator struct {
	remote RemoteStore
	slot   Slot
	medals MedalCounter
	logger *zap.Logger
	now    func() time.Time
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithMedals keeps anonymous medal counts in m.
func WithMedals(m MedalCounter) Option {
	return func(c *Coordinator) {
		c.medals = m
	}
}

// NewCoordinator wires the backends. remote may be nil when no user store
// is configured; signed-in operations then fail with a PersistError.
func NewCoordinator(remote RemoteStore, slot Slot, logger *zap.Logger, opts ...Option) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Coordinator{
		remote: remote,
		slot:   slot,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now returns the coordinator clock.
func (c *Coordinator) Now() time.Time {
	return c.now()
}

// FinishResult describes a finish attempt.
type FinishResult struct {
	Finished bool
	// NeedsConfirm is set when the ratio is below cycle.EarlyFinishRatio and
	// force was not given. Nothing changed.
	NeedsConfirm bool
	Ratio        float64
}

// Load builds the session for userID ("" for anonymous) from the backends.
// For a signed-in user an anonymous token in the slot is handed over to the
// remote store first and wins over older remote rows. A PersistError return
// still comes with a usable session.
func (c *Coordinator) Load(ctx context.Context, userID string) (*Session, error) {
	s := &Session{UserID: userID}
	var errs []error

	var row *model.CycleRow
	if s.Authenticated() {
		if err := c.handOverSlot(ctx, s); err != nil {
			errs = append(errs, err)
		}
		n, err := c.countCompleted(ctx, userID)
		if err != nil {
			errs = append(errs, err)
		}
		s.CompletedCycles = n
		if s.Active == nil {
			r, err := c.latestIncomplete(ctx, userID)
			if err != nil {
				errs = append(errs, err)
			}
			row = r
		}
	} else if c.medals != nil {
		n, err := c.medals.LocalMedals(ctx)
		if err != nil {
			errs = append(errs, c.warn(SourceNone, "load medals", err))
		}
		s.CompletedCycles = n
	}

	switch ResolveSource(s.Authenticated(), row != nil) {
	case SourceRemote:
		s.Active = stateFromRow(row)
		s.Source = SourceRemote
	case SourceToken:
		if s.Authenticated() {
			// The slot was consumed by handOverSlot.
			break
		}
		token, err := c.slot.Read()
		if err != nil {
			errs = append(errs, c.warn(SourceToken, "read", err))
			break
		}
		if token == "" {
			break
		}
		if st := codec.DecodeToken(token); st != nil {
			s.Active = st
			s.Source = SourceToken
		} else {
			c.logger.Debug("discarding undecodable token", zap.Int("length", len(token)))
		}
		// Re-write right away: slims a good token and clears a bad one.
		if err := c.push(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return s, errors.Join(errs...)
}

// handOverSlot moves an anonymous token into the signed-in user's store.
// The slot is cleared only once the remote copy exists; on failure the
// token state stays active and the slot is kept.
func (c *Coordinator) handOverSlot(ctx context.Context, s *Session) error {
	token, err := c.slot.Read()
	if err != nil {
		return c.warn(SourceToken, "read", err)
	}
	if token == "" {
		return nil
	}
	st := codec.DecodeToken(token)
	if st == nil {
		c.logger.Debug("discarding undecodable token", zap.Int("length", len(token)))
		return c.clearSlot()
	}
	s.Active = st
	s.Source = SourceToken
	c.logger.Info("handing anonymous cycle to user store", zap.String("cycle", st.ID))
	if err := c.push(ctx, s); err != nil {
		return err
	}
	s.Source = SourceRemote
	return c.clearSlot()
}

// Begin starts a new cycle, replacing any active one.
func (c *Coordinator) Begin(ctx context.Context, s *Session, programKey string, start time.Time) error {
	st, err := cycle.New(programKey, start)
	if err != nil {
		return err
	}
	s.Active = st
	c.logger.Info("cycle started", zap.String("cycle", st.ID), zap.Bool("signed_in", s.Authenticated()))
	return c.push(ctx, s)
}

// Toggle sets one identity. Only an actual change is pushed.
func (c *Coordinator) Toggle(ctx context.Context, s *Session, identity string, done bool) (bool, error) {
	if s.Active == nil {
		return false, ErrNoActiveCycle
	}
	if !s.Active.Set(identity, done) {
		return false, nil
	}
	return true, c.push(ctx, s)
}

// ToggleItem sets the task at day, section, item (section and item zero-based).
func (c *Coordinator) ToggleItem(ctx context.Context, s *Session, day, section, item int, done bool) (bool, error) {
	if s.Active == nil {
		return false, ErrNoActiveCycle
	}
	id, err := s.Active.ItemIdentity(day, section, item)
	if err != nil {
		return false, err
	}
	return c.Toggle(ctx, s, id, done)
}

// Finish closes the active cycle and awards a medal. Below the early-finish
// ratio a first call without force only reports the ratio.
func (c *Coordinator) Finish(ctx context.Context, s *Session, force bool) (FinishResult, error) {
	if s.Active == nil {
		return FinishResult{}, ErrNoActiveCycle
	}
	ok, ratio := cycle.CanFinish(s.Active, force)
	if !ok {
		return FinishResult{NeedsConfirm: true, Ratio: ratio}, nil
	}

	var errs []error
	finished := s.Active
	if s.Authenticated() {
		if err := c.upsert(ctx, s.UserID, finished); err != nil {
			errs = append(errs, err)
		}
		if err := c.markCompleted(ctx, s.UserID, finished.ID); err != nil {
			errs = append(errs, err)
		}
	} else if c.medals != nil {
		if err := c.medals.IncrementLocalMedals(ctx); err != nil {
			errs = append(errs, c.warn(SourceNone, "increment medals", err))
		}
	}
	s.CompletedCycles++
	s.Active = nil
	c.logger.Info("cycle finished",
		zap.String("cycle", finished.ID),
		zap.Float64("ratio", ratio),
		zap.Int("medals", s.CompletedCycles))
	if err := c.push(ctx, s); err != nil {
		errs = append(errs, err)
	}
	return FinishResult{Finished: true, Ratio: ratio}, errors.Join(errs...)
}

// StartOver drops the active cycle without awarding a medal.
func (c *Coordinator) StartOver(ctx context.Context, s *Session) error {
	var errs []error
	if s.Active != nil && s.Authenticated() {
		if c.remote == nil {
			errs = append(errs, c.warn(SourceRemote, "discard", errNoRemote))
		} else if err := c.remote.Discard(ctx, s.UserID, s.Active.ID); err != nil {
			errs = append(errs, c.warn(SourceRemote, "discard", err))
		}
	}
	s.Active = nil
	if err := c.push(ctx, s); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Import replaces the active cycle with an exported file. A
// codec.ValidationError leaves the session untouched.
func (c *Coordinator) Import(ctx context.Context, s *Session, data []byte) error {
	st, err := codec.UnmarshalFile(data)
	if err != nil {
		return err
	}
	s.Active = st
	return c.push(ctx, s)
}

// Export renders the active cycle as an export file.
func (c *Coordinator) Export(s *Session) ([]byte, error) {
	if s.Active == nil {
		return nil, ErrNoActiveCycle
	}
	return codec.MarshalFile(s.Active)
}

// SignIn attaches an identity. An anonymous active cycle is handed over to
// the remote store; otherwise the user's latest incomplete row is loaded.
// A session signed in as someone else is signed out first, so that user's
// cycle never reaches the new user's store.
func (c *Coordinator) SignIn(ctx context.Context, s *Session, userID string) error {
	if userID == "" {
		return fmt.Errorf("sign in: empty user id")
	}
	if s.UserID == userID {
		return nil
	}
	var errs []error
	if s.Authenticated() {
		if err := c.SignOut(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	s.UserID = userID
	n, err := c.countCompleted(ctx, userID)
	if err != nil {
		errs = append(errs, err)
	}
	s.CompletedCycles = n

	handedOver := true
	if s.Active != nil {
		c.logger.Info("handing anonymous cycle to user store", zap.String("cycle", s.Active.ID))
		if err := c.push(ctx, s); err != nil {
			errs = append(errs, err)
			handedOver = false
		}
	} else {
		row, err := c.latestIncomplete(ctx, userID)
		if err != nil {
			errs = append(errs, err)
		}
		if row != nil {
			s.Active = stateFromRow(row)
		}
	}
	if s.Active != nil {
		s.Source = SourceRemote
	}
	// Keep the token until the remote copy exists.
	if handedOver {
		if err := c.clearSlot(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// SignOut detaches the identity and forgets the in-memory cycle; it stays
// in the remote store.
func (c *Coordinator) SignOut(ctx context.Context, s *Session) error {
	s.UserID = ""
	s.Active = nil
	s.Source = SourceNone
	s.CompletedCycles = 0
	if c.medals != nil {
		n, err := c.medals.LocalMedals(ctx)
		if err != nil {
			return c.warn(SourceNone, "load medals", err)
		}
		s.CompletedCycles = n
	}
	return nil
}

var errNoRemote = errors.New("user store not configured")

// push writes the session to its PushTarget.
func (c *Coordinator) push(ctx context.Context, s *Session) error {
	s.Pushes++
	switch PushTarget(s.Authenticated()) {
	case SourceRemote:
		if s.Active == nil {
			return nil
		}
		return c.upsert(ctx, s.UserID, s.Active)
	default:
		if s.Active == nil {
			return c.clearSlot()
		}
		token, err := codec.EncodeToken(s.Active)
		if err != nil {
			return c.warn(SourceToken, "encode", err)
		}
		if err := c.slot.Write(token); err != nil {
			return c.warn(SourceToken, "write", err)
		}
		return nil
	}
}

func (c *Coordinator) upsert(ctx context.Context, userID string, st *cycle.State) error {
	if c.remote == nil {
		return c.warn(SourceRemote, "upsert", errNoRemote)
	}
	if err := c.remote.Upsert(ctx, rowFromState(userID, st, c.now())); err != nil {
		return c.warn(SourceRemote, "upsert", err)
	}
	return nil
}

func (c *Coordinator) markCompleted(ctx context.Context, userID, cycleID string) error {
	if c.remote == nil {
		return c.warn(SourceRemote, "mark completed", errNoRemote)
	}
	if err := c.remote.MarkCompleted(ctx, userID, cycleID); err != nil {
		return c.warn(SourceRemote, "mark completed", err)
	}
	return nil
}

func (c *Coordinator) latestIncomplete(ctx context.Context, userID string) (*model.CycleRow, error) {
	if c.remote == nil {
		return nil, c.warn(SourceRemote, "load", errNoRemote)
	}
	row, err := c.remote.LatestIncomplete(ctx, userID)
	if err != nil {
		return nil, c.warn(SourceRemote, "load", err)
	}
	if row != nil && stateFromRow(row) == nil {
		c.logger.Warn("ignoring unreadable cycle row", zap.String("cycle", row.CycleID))
		return nil, nil
	}
	return row, nil
}

func (c *Coordinator) countCompleted(ctx context.Context, userID string) (int, error) {
	if c.remote == nil {
		return 0, c.warn(SourceRemote, "count", errNoRemote)
	}
	n, err := c.remote.CountCompleted(ctx, userID)
	if err != nil {
		return 0, c.warn(SourceRemote, "count", err)
	}
	return n, nil
}

func (c *Coordinator) clearSlot() error {
	if err := c.slot.Clear(); err != nil {
		return c.warn(SourceToken, "clear", err)
	}
	return nil
}

func (c *Coordinator) warn(backend Source, op string, err error) error {
	c.logger.Warn("persistence failed",
		zap.Stringer("backend", backend),
		zap.String("op", op),
		zap.Error(err))
	return &PersistError{Backend: backend, Op: op, Err: err}
}

func rowFromState(userID string, st *cycle.State, now time.Time) model.CycleRow {
	checks := make(map[string]bool, len(st.Completed))
	for id := range st.Completed {
		checks[id] = true
	}
	return model.CycleRow{
		UserID:     userID,
		CycleID:    st.ID,
		ProgramKey: st.ProgramKey,
		StartISO:   st.StartISO(),
		Checks:     checks,
		UpdatedAt:  now,
	}
}

// stateFromRow returns nil for rows the catalog cannot interpret.
func stateFromRow(r *model.CycleRow) *cycle.State {
	if r == nil {
		return nil
	}
	start, err := cycle.ParseDate(r.StartISO)
	if err != nil {
		return nil
	}
	st, err := cycle.New(r.ProgramKey, start)
	if err != nil {
		return nil
	}
	st.ID = r.CycleID
	for id, done := range r.Checks {
		if done {
			st.Completed[id] = struct{}{}
		}
	}
	return st
}
