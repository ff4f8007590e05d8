package service

import (
	"context"
	"sync"
	"sync/atomic"

	"setmatch-service/internal/metrics"
	"setmatch-service/internal/setmatch/model"
)

type State int32

const (
	StateInit State = iota
	StateSelecting
	StateStreaming
	StateDone
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "init"
	case StateSelecting:
		return "selecting"
	case StateStreaming:
		return "streaming"
	case StateDone:
		return "done"
	case StateErrored:
		return "errored"
	}
	return "unknown"
}

// Stream carries the events of one comparison. Events is closed when the
// coordinator finishes or is abandoned; Close must be called once the
// consumer stops reading.
type Stream struct {
	events    chan model.Event
	done      chan struct{}
	cancel    context.CancelFunc
	closeOnce sync.Once

	state       atomic.Int32
	batchErrors atomic.Int32
	total       int
	userParts   int
}

func (st *Stream) Events() <-chan model.Event { return st.events }
func (st *Stream) State() State               { return State(st.state.Load()) }
func (st *Stream) Total() int                 { return st.total }
func (st *Stream) BatchErrors() int           { return int(st.batchErrors.Load()) }

// Done is closed after the coordinator goroutine has exited.
func (st *Stream) Done() <-chan struct{} { return st.done }

// Close abandons any pending emission and waits for the coordinator to exit.
func (st *Stream) Close() {
	st.closeOnce.Do(st.cancel)
	<-st.done
}

func (st *Stream) setState(s State) { st.state.Store(int32(s)) }

// Compare selects candidates synchronously, so a selection failure is returned
// before anything is streamed, then scores them in batches on a goroutine.
// The metadata event always comes first; a failed batch becomes an error event
// and the remaining batches still run.
func (s *Service) Compare(ctx context.Context, inv model.UserInventory, themes []string) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)
	st := &Stream{
		events: make(chan model.Event),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	st.setState(StateInit)

	owned := inv.Quantities()
	st.userParts = len(inv)

	st.setState(StateSelecting)
	cands, themeIDs, err := s.selectCandidates(ctx, inv, themes)
	if err != nil {
		st.setState(StateErrored)
		cancel()
		close(st.events)
		close(st.done)
		return nil, err
	}
	st.total = len(cands)
	metrics.CandidatesPerRequest.Observe(float64(len(cands)))

	ids := make([]int64, len(cands))
	for i, c := range cands {
		ids[i] = c.InventoryID
	}

	st.setState(StateStreaming)
	go s.run(ctx, st, ids, owned, themeIDs)
	return st, nil
}

func (s *Service) run(ctx context.Context, st *Stream, ids []int64, owned map[model.PartKey]int, themeIDs []int) {
	defer close(st.done)
	defer close(st.events)
	defer st.cancel()

	send := func(ev model.Event) bool {
		select {
		case st.events <- ev:
			return true
		case <-ctx.Done():
			return false
		}
	}
	abort := func(batch int) {
		st.setState(StateErrored)
		metrics.StreamsAborted.Inc()
		s.logger.Info().Int("batch", batch).Int("total", st.total).Msg("comparison abandoned by consumer")
	}

	if !send(model.NewMetadata(st.total, st.userParts)) {
		abort(0)
		return
	}
	if s.debug {
		ev := model.NewDebug(map[string]any{
			"theme_ids":   themeIDs,
			"user_parts":  st.userParts,
			"batch_size":  s.batchSize,
			"batch_count": (len(ids) + s.batchSize - 1) / s.batchSize,
		})
		if !send(ev) {
			abort(0)
			return
		}
	}

	batch := 0
	for start := 0; start < len(ids); start += s.batchSize {
		batch++
		if ctx.Err() != nil {
			abort(batch)
			return
		}
		end := min(start+s.batchSize, len(ids))
		scored, err := s.scoreBatch(ctx, batch, ids[start:end], owned)
		if err != nil {
			if ctx.Err() != nil {
				abort(batch)
				return
			}
			st.batchErrors.Add(1)
			metrics.BatchErrors.Inc()
			s.logger.Warn().Err(err).Int("batch", batch).Msg("batch scoring failed")
			if !send(model.NewError(batch, err.Error())) {
				abort(batch)
				return
			}
			continue
		}
		if len(scored) == 0 {
			continue
		}
		if !send(model.NewBatch(batch, scored)) {
			abort(batch)
			return
		}
		metrics.BatchesEmitted.Inc()
	}
	st.setState(StateDone)
}
