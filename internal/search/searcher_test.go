package search

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/talent-search/internal/headhunter"
	"github.com/jonathan/talent-search/internal/types"
)

// fakeAPI answers each call from a queue and records the parameters.
type fakeAPI struct {
	responses []fakeResponse
	calls     []url.Values
}

type fakeResponse struct {
	page *types.ResumePage
	err  error
}

func (f *fakeAPI) SearchResumes(_ context.Context, params url.Values) (*types.ResumePage, error) {
	f.calls = append(f.calls, params)
	if len(f.responses) == 0 {
		return &types.ResumePage{Items: []types.Resume{}}, nil
	}
	r := f.responses[0]
	f.responses = f.responses[1:]
	return r.page, r.err
}

func (f *fakeAPI) texts() []string {
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.Get("text"))
	}
	return out
}

func found(ids ...string) fakeResponse {
	items := make([]types.Resume, 0, len(ids))
	for _, id := range ids {
		var r types.Resume
		if err := json.Unmarshal([]byte(`{"id":"`+id+`","title":"Engineer"}`), &r); err != nil {
			panic(err)
		}
		items = append(items, r)
	}
	return fakeResponse{page: &types.ResumePage{Found: len(ids), Items: items}}
}

func empty() fakeResponse {
	return fakeResponse{page: &types.ResumePage{Found: 0, Items: []types.Resume{}}}
}

func newSearcher(t *testing.T, api *fakeAPI, token string) (*Searcher, *Recorder) {
	t.Helper()
	rec := &Recorder{}
	s, err := New(Config{API: api, Token: headhunter.StaticToken(token), Reporter: rec})
	require.NoError(t, err)
	return s, rec
}

func javaKeywords() types.KeywordSet {
	return types.KeywordSet{MustHave: []string{"Java"}, Optional: []string{"Spring", "Hibernate"}}
}

func TestSearch_PrimaryHasResults(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{found("1", "2")}}
	s, rec := newSearcher(t, api, "tok")

	env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{Area: types.StringList{"160"}}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, env.Found)
	require.Len(t, env.Items, 2)
	assert.Equal(t, "1", env.Items[0].Data.ID)
	assert.Equal(t, PlaceholderScore, env.Items[0].Score)

	require.Len(t, api.calls, 1)
	assert.Equal(t, "(Java) AND (Spring OR Hibernate)", api.calls[0].Get("text"))
	assert.Equal(t, "160", api.calls[0].Get("area"))
	assert.Equal(t, "0", api.calls[0].Get("page"))
	assert.Equal(t, []Stage{StageStart, StageAttempt, StageSuccess}, rec.Stages())
}

func TestSearch_FallbackOnEmptyFirstPage(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty(), found("7")}}
	s, rec := newSearcher(t, api, "tok")

	out, err := s.Run(context.Background(), javaKeywords(), types.SearchFilters{Area: types.StringList{"160"}}, 0, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"(Java) AND (Spring OR Hibernate)", "(Java)"}, api.texts())
	assert.Equal(t, "0", api.calls[1].Get("page"))
	assert.Equal(t, "160", api.calls[1].Get("area"))
	assert.True(t, out.Relaxed)
	assert.Equal(t, "(Java)", out.Query)
	assert.Equal(t, 2, out.Attempts)
	assert.Equal(t, 1, out.Envelope.Found)
	assert.Equal(t, []Stage{StageStart, StageAttempt, StageFallback, StageAttempt, StageSuccess}, rec.Stages())
	assert.True(t, rec.Statuses[len(rec.Statuses)-1].Relaxed)
}

func TestSearch_FallbackAlsoEmpty(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty(), empty()}}
	s, rec := newSearcher(t, api, "tok")

	env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, 0)
	require.NoError(t, err)
	assert.Equal(t, 0, env.Found)
	assert.Empty(t, env.Items)
	assert.Len(t, api.calls, 2)

	last := rec.Statuses[len(rec.Statuses)-1]
	assert.Equal(t, StageEmpty, last.Stage)
	assert.Contains(t, last.Message, "relaxed")
}

func TestSearch_FallbackIssuedEvenWhenRelaxedEqualsIdeal(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty(), empty()}}
	s, _ := newSearcher(t, api, "tok")

	_, err := s.Search(context.Background(), types.KeywordSet{MustHave: []string{"Go"}}, types.SearchFilters{}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"(Go)", "(Go)"}, api.texts())
}

func TestSearch_NoFallbackWithoutMustHave(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty()}}
	s, rec := newSearcher(t, api, "tok")

	_, err := s.Search(context.Background(), types.KeywordSet{Optional: []string{"Go"}}, types.SearchFilters{}, 0)
	require.NoError(t, err)
	assert.Len(t, api.calls, 1)
	assert.Equal(t, StageEmpty, rec.Statuses[len(rec.Statuses)-1].Stage)
}

func TestSearch_NoFallbackOnLaterPages(t *testing.T) {
	for _, page := range []int{1, 2, 7} {
		api := &fakeAPI{responses: []fakeResponse{empty()}}
		s, rec := newSearcher(t, api, "tok")

		env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, page)
		require.NoError(t, err)
		assert.Equal(t, 0, env.Found)
		require.Len(t, api.calls, 1, "page %d", page)
		assert.NotContains(t, rec.Stages(), StageFallback)
	}
}

func TestSearch_ConstraintsKeptInRelaxedQuery(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty(), empty()}}
	s, _ := newSearcher(t, api, "tok")

	f := types.SearchFilters{UserJobTitle: "Data Engineer", BankOnly: true}
	_, err := s.Search(context.Background(), types.KeywordSet{MustHave: []string{"Python"}, Optional: []string{"Airflow"}}, f, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{
		`"Data Engineer" AND банк AND (Python) AND (Airflow)`,
		`"Data Engineer" AND банк AND (Python)`,
	}, api.texts())

	for _, c := range api.calls {
		assert.NotContains(t, c, "user_job_title")
		assert.NotContains(t, c, "bank_only")
	}
}

func TestSearch_MissingCredentialMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	s, rec := newSearcher(t, api, "")

	env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, 0)
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, types.EmptyEnvelope(), env)
	assert.Empty(t, api.calls)
	assert.Equal(t, StageFailure, rec.Statuses[len(rec.Statuses)-1].Stage)
}

func TestSearch_EmptyQueryMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	s, rec := newSearcher(t, api, "tok")

	env, err := s.Search(context.Background(), types.KeywordSet{MustHave: []string{" ", "/"}}, types.SearchFilters{}, 0)
	require.ErrorIs(t, err, ErrEmptyQuery)
	assert.Equal(t, 0, env.Found)
	assert.Empty(t, api.calls)
	assert.Equal(t, []Stage{StageStart, StageFailure}, rec.Stages())
}

func TestSearch_TransportErrorNoRetry(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{{err: errors.New("connection reset")}}}
	s, rec := newSearcher(t, api, "tok")

	env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, 0)
	require.Error(t, err)
	assert.Equal(t, types.EmptyEnvelope(), env)
	assert.Len(t, api.calls, 1)

	var attemptErr *AttemptError
	require.ErrorAs(t, err, &attemptErr)
	assert.Equal(t, "primary", attemptErr.Attempt)
	assert.Equal(t, StageFailure, rec.Statuses[len(rec.Statuses)-1].Stage)
}

func TestSearch_FallbackTransportError(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{empty(), {err: errors.New("timeout")}}}
	s, _ := newSearcher(t, api, "tok")

	env, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, 0)
	var attemptErr *AttemptError
	require.ErrorAs(t, err, &attemptErr)
	assert.Equal(t, "fallback", attemptErr.Attempt)
	assert.Equal(t, 0, env.Found)
}

func TestSearch_IsRepeatable(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{found("1"), found("1")}}
	s, _ := newSearcher(t, api, "tok")

	for i := 0; i < 2; i++ {
		_, err := s.Search(context.Background(), javaKeywords(), types.SearchFilters{}, 0)
		require.NoError(t, err)
	}
	assert.Equal(t, api.calls[0].Encode(), api.calls[1].Encode())
}

func TestRun_ExtraReporter(t *testing.T) {
	api := &fakeAPI{responses: []fakeResponse{found("1")}}
	s, rec := newSearcher(t, api, "tok")

	extra := &Recorder{}
	_, err := s.Run(context.Background(), javaKeywords(), types.SearchFilters{}, 0, extra)
	require.NoError(t, err)
	assert.Equal(t, rec.Stages(), extra.Stages())
}

func TestNew_RequiresAPI(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestNew_UsesAPIAsTokenSource(t *testing.T) {
	client := headhunter.New(nil, headhunter.StaticToken("tok"), nil)
	s, err := New(Config{API: client})
	require.NoError(t, err)
	assert.True(t, s.hasToken())
}
