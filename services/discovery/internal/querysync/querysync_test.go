package querysync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/atul950/NearBuy-ed/pkg/errors"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/domain"
	"github.com/atul950/NearBuy-ed/services/discovery/internal/filter"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func listing(id string) domain.Listing {
	return domain.Listing{ProductSummary: domain.ProductSummary{ProductID: domain.ID(id), ProductName: id}}
}

// recordingSearcher answers synchronously and records every state it saw.
type recordingSearcher struct {
	mu     sync.Mutex
	states []filter.State
	reply  func(filter.State) ([]domain.Listing, error)
}

func (r *recordingSearcher) Search(_ context.Context, st filter.State) ([]domain.Listing, error) {
	r.mu.Lock()
	r.states = append(r.states, st)
	r.mu.Unlock()
	if r.reply == nil {
		return []domain.Listing{listing(st.Query)}, nil
	}
	return r.reply(st)
}

func (r *recordingSearcher) calls() []filter.State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]filter.State(nil), r.states...)
}

type recordingPublisher struct {
	published []filter.Query
}

func (p *recordingPublisher) Publish(_ context.Context, q filter.Query) {
	p.published = append(p.published, q)
}

func TestSetFilter_PublishesAndFetchesOnce(t *testing.T) {
	searcher := &recordingSearcher{}
	pub := &recordingPublisher{}
	s := New(searcher, pub, newTestLogger())

	out, err := s.SetFilter(context.Background(), filter.KeyQuery, "rice")

	require.NoError(t, err)
	assert.Equal(t, []filter.State{{Query: "rice"}}, searcher.calls())
	assert.Equal(t, []filter.Query{{"q": "rice"}}, pub.published)
	assert.Equal(t, filter.Query{"q": "rice"}, out.Snapshot.Location)
	assert.Equal(t, []domain.Listing{listing("rice")}, out.Snapshot.Listings)
	assert.False(t, out.Snapshot.Loading)
	assert.False(t, out.Stale)
	assert.Nil(t, out.Snapshot.Failure)
}

func TestSetFilter_UnknownKeyChangesNothing(t *testing.T) {
	searcher := &recordingSearcher{}
	pub := &recordingPublisher{}
	s := New(searcher, pub, newTestLogger())

	_, err := s.SetFilter(context.Background(), "colour", "red")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Empty(t, searcher.calls())
	assert.Empty(t, pub.published)
	assert.Equal(t, filter.State{}, s.Snapshot().State)
}

func TestNavigate_FetchesWithoutPublishing(t *testing.T) {
	searcher := &recordingSearcher{}
	pub := &recordingPublisher{}
	s := New(searcher, pub, newTestLogger())

	out, err := s.Navigate(context.Background(), "?q=dal&city=Pune&utm_source=x")

	require.NoError(t, err)
	assert.Equal(t, []filter.State{{Query: "dal", City: "Pune"}}, searcher.calls())
	assert.Empty(t, pub.published)
	assert.Equal(t, filter.State{Query: "dal", City: "Pune"}, out.Snapshot.State)
	assert.Equal(t, filter.Query{"q": "dal", "city": "Pune"}, out.Snapshot.Location)
}

func TestNavigate_MalformedLocation(t *testing.T) {
	searcher := &recordingSearcher{}
	s := New(searcher, nil, newTestLogger())

	_, err := s.Navigate(context.Background(), "q=%zz")

	assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	assert.Empty(t, searcher.calls())
}

func TestClear_PublishesEmptyLocation(t *testing.T) {
	searcher := &recordingSearcher{}
	pub := &recordingPublisher{}
	s := New(searcher, pub, newTestLogger())
	ctx := context.Background()

	_, err := s.SetFilter(ctx, filter.KeyCity, "Pune")
	require.NoError(t, err)
	out := s.Clear(ctx)

	assert.Equal(t, filter.Clear(), out.Snapshot.State)
	assert.Empty(t, out.Snapshot.Location)
	require.Len(t, pub.published, 2)
	assert.Empty(t, pub.published[1])
	assert.Len(t, searcher.calls(), 2)
	assert.Equal(t, filter.Clear(), filter.Decode(pub.published[1]))
}

func TestFailure_EmptiesListingsAndKeepsLocation(t *testing.T) {
	fail := false
	searcher := &recordingSearcher{reply: func(st filter.State) ([]domain.Listing, error) {
		if fail {
			return nil, apperrors.TransportFailure("catalog-service", errors.New("connection refused"))
		}
		return []domain.Listing{listing(st.Query)}, nil
	}}
	s := New(searcher, nil, newTestLogger())
	ctx := context.Background()

	_, err := s.SetFilter(ctx, filter.KeyQuery, "tea")
	require.NoError(t, err)

	fail = true
	out, err := s.SetFilter(ctx, filter.KeyCity, "Pune")
	require.NoError(t, err)

	assert.True(t, errors.Is(out.Err, apperrors.ErrTransport))
	assert.Empty(t, out.Snapshot.Listings)
	require.NotNil(t, out.Snapshot.Failure)
	assert.Equal(t, "TRANSPORT_FAILURE", out.Snapshot.Failure.Kind)
	assert.Equal(t, filter.State{Query: "tea", City: "Pune"}, out.Snapshot.State)
	assert.Equal(t, filter.Query{"q": "tea", "city": "Pune"}, out.Snapshot.Location)

	fail = false
	out = s.Refresh(ctx)
	assert.Nil(t, out.Snapshot.Failure)
	assert.Len(t, out.Snapshot.Listings, 1)
}

func TestInvalidPriceRange_SurfacesValidationFailure(t *testing.T) {
	searcher := &recordingSearcher{reply: func(st filter.State) ([]domain.Listing, error) {
		if err := st.Validate(); err != nil {
			return nil, err
		}
		return []domain.Listing{listing("x")}, nil
	}}
	s := New(searcher, nil, newTestLogger())
	ctx := context.Background()

	_, err := s.SetFilter(ctx, filter.KeyMinPrice, "500")
	require.NoError(t, err)
	out, err := s.SetFilter(ctx, filter.KeyMaxPrice, "100")
	require.NoError(t, err)

	require.NotNil(t, out.Snapshot.Failure)
	assert.Equal(t, "INVALID_INPUT", out.Snapshot.Failure.Kind)
	assert.Equal(t, "100", out.Snapshot.State.MaxPrice, "state is not corrected")
}

type reply struct {
	listings []domain.Listing
	err      error
}

type pendingCall struct {
	state filter.State
	reply chan reply
}

// gatedSearcher blocks every search until the test answers it.
type gatedSearcher struct {
	calls chan pendingCall
}

func (g *gatedSearcher) Search(_ context.Context, st filter.State) ([]domain.Listing, error) {
	c := pendingCall{state: st, reply: make(chan reply, 1)}
	g.calls <- c
	r := <-c.reply
	return r.listings, r.err
}

func TestStaleResponse_IsDiscarded(t *testing.T) {
	searcher := &gatedSearcher{calls: make(chan pendingCall)}
	s := New(searcher, nil, newTestLogger())
	ctx := context.Background()

	outA := make(chan Outcome, 1)
	go func() {
		out, _ := s.SetFilter(ctx, filter.KeyQuery, "a")
		outA <- out
	}()
	callA := <-searcher.calls

	outB := make(chan Outcome, 1)
	go func() {
		out, _ := s.SetFilter(ctx, filter.KeyQuery, "b")
		outB <- out
	}()
	callB := <-searcher.calls
	assert.True(t, s.Snapshot().Loading)

	callB.reply <- reply{listings: []domain.Listing{listing("b")}}
	b := <-outB
	callA.reply <- reply{listings: []domain.Listing{listing("a")}}
	a := <-outA

	assert.False(t, b.Stale)
	assert.True(t, a.Stale)
	assert.Less(t, a.Ticket, b.Ticket)

	final := s.Snapshot()
	assert.Equal(t, []domain.Listing{listing("b")}, final.Listings)
	assert.Equal(t, filter.State{Query: "b"}, final.State)
	assert.False(t, final.Loading)
}

func TestStaleFailure_DoesNotOverwriteNewerResult(t *testing.T) {
	searcher := &gatedSearcher{calls: make(chan pendingCall)}
	s := New(searcher, nil, newTestLogger())
	ctx := context.Background()

	outA := make(chan Outcome, 1)
	go func() {
		out, _ := s.SetFilter(ctx, filter.KeyQuery, "a")
		outA <- out
	}()
	callA := <-searcher.calls

	outB := make(chan Outcome, 1)
	go func() { outB <- s.Refresh(ctx) }()
	callB := <-searcher.calls

	callA.reply <- reply{err: apperrors.TransportFailure("catalog-service", errors.New("timeout"))}
	a := <-outA
	callB.reply <- reply{listings: []domain.Listing{listing("a")}}
	<-outB

	assert.True(t, a.Stale)
	assert.Nil(t, a.Err)
	final := s.Snapshot()
	assert.Nil(t, final.Failure)
	assert.Len(t, final.Listings, 1)
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := New(&recordingSearcher{}, nil, newTestLogger())
	out, err := s.SetFilter(context.Background(), filter.KeyQuery, "oil")
	require.NoError(t, err)

	out.Snapshot.Location["q"] = "changed"
	out.Snapshot.Listings[0].ProductName = "changed"

	again := s.Snapshot()
	assert.Equal(t, "oil", again.Location["q"])
	assert.Equal(t, "oil", again.Listings[0].ProductName)
}
