package service

import (
	"context"
	"fmt"
	"testing"

	ierr "github.com/gamalabdu/purchase-ledger/internal/errors"
	"github.com/stretchr/testify/require"
)

type pagedRecord struct {
	ID string
}

// makePageFunc serves records pageSize at a time, tracking the cursors it was
// called with
func makePageFunc(total, pageSize int, cursors *[]string) pageFunc[pagedRecord] {
	records := make([]*pagedRecord, total)
	for i := range records {
		records[i] = &pagedRecord{ID: fmt.Sprintf("rec_%04d", i)}
	}
	return func(_ context.Context, cursor string) ([]*pagedRecord, bool, error) {
		*cursors = append(*cursors, cursor)
		start := 0
		if cursor != "" {
			for i, r := range records {
				if r.ID == cursor {
					start = i + 1
					break
				}
			}
		}
		end := start + pageSize
		if end > total {
			end = total
		}
		return records[start:end], end < total, nil
	}
}

func recordID(r *pagedRecord) string { return r.ID }

func TestFetchAllDrainsEveryPage(t *testing.T) {
	var cursors []string
	fetch := makePageFunc(25, 10, &cursors)

	records, truncated, err := fetchAll(context.Background(), fetch, recordID, 1000)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Len(t, records, 25)

	// first call has no cursor, each later call resumes after the previous
	// page's last record
	require.Equal(t, []string{"", "rec_0009", "rec_0019"}, cursors)
}

func TestFetchAllEmptyCollection(t *testing.T) {
	var cursors []string
	fetch := makePageFunc(0, 10, &cursors)

	records, truncated, err := fetchAll(context.Background(), fetch, recordID, 1000)
	require.NoError(t, err)
	require.False(t, truncated)
	require.Empty(t, records)
	require.Equal(t, []string{""}, cursors)
}

func TestFetchAllStopsAtCap(t *testing.T) {
	var cursors []string
	fetch := makePageFunc(100, 10, &cursors)

	records, truncated, err := fetchAll(context.Background(), fetch, recordID, 35)
	require.NoError(t, err)
	require.True(t, truncated)
	require.Len(t, records, 35)

	// 4 pages of 10 reach the cap of 35; no further pages are fetched
	require.Len(t, cursors, 4)
}

func TestFetchAllCapOnExactPageBoundary(t *testing.T) {
	var cursors []string
	fetch := makePageFunc(100, 10, &cursors)

	records, truncated, err := fetchAll(context.Background(), fetch, recordID, 30)
	require.NoError(t, err)
	require.True(t, truncated)
	require.Len(t, records, 30)
	require.Len(t, cursors, 3)
}

func TestFetchAllPropagatesPageError(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, cursor string) ([]*pagedRecord, bool, error) {
		calls++
		if calls == 2 {
			return nil, false, ierr.NewError("listing failed").Mark(ierr.ErrHTTPClient)
		}
		return []*pagedRecord{{ID: "rec_0001"}}, true, nil
	}

	records, truncated, err := fetchAll(context.Background(), fetch, recordID, 1000)
	require.Error(t, err)
	require.False(t, truncated)
	require.Nil(t, records)
	require.Equal(t, 2, calls)
}

func TestFetchAllCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetch := func(_ context.Context, _ string) ([]*pagedRecord, bool, error) {
		t.Fatal("fetch must not run once the context is canceled")
		return nil, false, nil
	}

	records, _, err := fetchAll(ctx, fetch, recordID, 1000)
	require.Error(t, err)
	require.True(t, ierr.IsUpstreamUnavailable(err))
	require.Nil(t, records)
}
