package search

import (
	"fmt"
	"testing"

	"bwtui/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func login(name, rev string, uris ...string) model.Item {
	l := &model.Login{}
	for _, u := range uris {
		l.URIs = append(l.URIs, model.URI{URI: u})
	}
	return model.Item{ID: name, Type: model.ItemTypeLogin, Name: name, RevisionDate: rev, Login: l}
}

func names(rs []Result) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Item.Name)
	}
	return out
}

func scenario() []model.Item {
	return []model.Item{
		login("Zebra Mail", ""),
		login("GitHub Personal", "", "https://github.com"),
		login("AWS Console", ""),
		login("Amazon Shopping", ""),
	}
}

func TestSearch_EmptyQueryReturnsAllSortedByName(t *testing.T) {
	t.Parallel()

	ix := New(scenario())
	for _, q := range []string{"", "   ", "\t"} {
		got := ix.Search(q, SortDefault)
		require.Len(t, got, 4)
		assert.Equal(t, []string{"Amazon Shopping", "AWS Console", "GitHub Personal", "Zebra Mail"}, names(got))
		for _, r := range got {
			assert.Zero(t, r.Score)
		}
	}
	// Stable across repeated calls.
	assert.Equal(t, names(ix.Search("", SortDefault)), names(ix.Search("", SortDefault)))
}

func TestSearch_FuzzyFindsGitHub(t *testing.T) {
	t.Parallel()

	ix := New(scenario())
	got := ix.Search("git", SortDefault)
	require.NotEmpty(t, got)
	assert.Equal(t, "GitHub Personal", got[0].Item.Name)
	assert.Positive(t, got[0].Score)
}

func TestSearch_SubstringBeatsSubsequence(t *testing.T) {
	t.Parallel()

	ix := New([]model.Item{
		login("Mail Archive Server", ""),
		login("Email", ""),
	})
	got := ix.Search("mail", SortDefault)
	require.Len(t, got, 2)
	for _, r := range got {
		assert.Greater(t, r.Score, substringBonus/2)
	}

	got = ix.Search("mas", SortDefault)
	require.NotEmpty(t, got)
	assert.Equal(t, "Mail Archive Server", got[0].Item.Name)
	assert.Less(t, got[0].Score, substringBonus/2)
}

func TestSearch_MatchesURIs(t *testing.T) {
	t.Parallel()

	ix := New([]model.Item{
		login("Work", "", "https://intranet.example.org"),
		login("Home", ""),
	})
	got := ix.Search("intranet", SortDefault)
	assert.Equal(t, []string{"Work"}, names(got))
}

func TestSearch_DateModeOrdersByRevisionDescending(t *testing.T) {
	t.Parallel()

	ix := New([]model.Item{
		login("b-old", "2023-01-01T00:00:00.000Z"),
		login("a-none", ""),
		login("c-new", "2024-06-01T10:00:00.000Z"),
	})
	got := ix.Search("", SortDate)
	assert.Equal(t, []string{"c-new", "b-old", "a-none"}, names(got))

	// Query is honoured in date mode.
	got = ix.Search("old", SortDate)
	assert.Equal(t, []string{"b-old"}, names(got))
}

func TestSortMode_Toggle(t *testing.T) {
	t.Parallel()

	assert.Equal(t, SortDate, SortDefault.Toggle())
	assert.Equal(t, SortDefault, SortDate.Toggle())
}

func BenchmarkSearch(b *testing.B) {
	items := make([]model.Item, 0, 5000)
	for i := 0; i < 5000; i++ {
		items = append(items, login(fmt.Sprintf("site %d", i), "", fmt.Sprintf("https://host%d.example.com", i)))
	}
	ix := New(items)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = ix.Search("host42", SortDefault)
	}
}
