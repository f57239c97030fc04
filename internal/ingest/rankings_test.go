package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/netusage/internal/fetcher"
	"github.com/sells-group/netusage/internal/source"
	"github.com/sells-group/netusage/internal/source/mocks"
)

type rankTree = map[string]map[string]map[string]map[string]json.RawMessage

func entry(doc string) json.RawMessage { return json.RawMessage(doc) }

func TestRankings_AllCarriersAndLowercasedTypes(t *testing.T) {
	st := newMemStore(1)
	client := mocks.NewMockClient(t)
	client.On("Rankings", mock.Anything, jan2023).Return(&source.RankingReport{
		URL: "https://stats.example/apps.json",
		Carriers: rankTree{
			"ALL_CARRIERS": {"Download": {"TOTAL": {
				"1": entry(`{"app_name":"Video","bytes_per_user":10.5,"total_bytes":1000,"total_devices":50}`),
				"2": entry(`{"app_name":"Social","bytes_per_user":4,"total_bytes":400,"total_devices":60}`),
			}}},
			"1": {"Upload": {"Mobile": {
				"1": entry(`{"app_name":"Mail","total_bytes":7,"total_devices":1}`),
			}}},
			"9": {"upload": {"mobile": {
				"1": entry(`{"app_name":"Ignored"}`),
				"2": entry(`{"app_name":"Ignored too"}`),
			}}},
		},
	}, nil)

	res, err := NewRankings(client, st).Import(context.Background(), jan2023)
	require.NoError(t, err)

	assert.Equal(t, &Result{Inserted: 3, Skipped: 2}, res)
	all := st.rankings[rankingKey{2023, 1, 0, "download", "total", 1}]
	assert.Equal(t, "Video", all.AppName)
	assert.Equal(t, 10.5, all.BytesPerUser)
	assert.Contains(t, st.rankings, rankingKey{2023, 1, 1, "upload", "mobile", 1})
	for k := range st.rankings {
		assert.NotEqual(t, int64(9), k.carrier)
	}
}

func TestRankings_BadRankNumberFlushesParsedEntries(t *testing.T) {
	st := newMemStore(1)
	client := mocks.NewMockClient(t)
	client.On("Rankings", mock.Anything, jan2023).Return(&source.RankingReport{
		URL: "https://stats.example/apps.json",
		Carriers: rankTree{
			"1": {"download": {"total": {
				"1":     entry(`{"app_name":"Video"}`),
				"first": entry(`{"app_name":"Broken"}`),
			}}},
		},
	}, nil)

	res, err := NewRankings(client, st).Import(context.Background(), jan2023)

	require.Error(t, err)
	assert.True(t, errors.Is(err, fetcher.ErrMalformedPayload))
	assert.Equal(t, "https://stats.example/apps.json", fetcher.URLOf(err))
	assert.Equal(t, int64(1), res.Inserted)
	assert.Len(t, st.rankings, 1)
}

func TestRankings_MalformedEntryKeepsEarlierCarriers(t *testing.T) {
	st := newMemStore(1, 2)
	client := mocks.NewMockClient(t)
	client.On("Rankings", mock.Anything, jan2023).Return(&source.RankingReport{
		URL: "https://stats.example/apps.json",
		Carriers: rankTree{
			"1": {"web": {"download": {
				"1": entry(`{"app_name":"Mail","bytes_per_user":2.5,"total_bytes":70,"total_devices":3}`),
			}}},
			"2": {"web": {"download": {
				"1": entry(`{"app_name":"Video","total_bytes":9}`),
				"2": entry(`{"app_name":"Social","total_bytes":1.5}`),
			}}},
		},
	}, nil)

	res, err := NewRankings(client, st).Import(context.Background(), jan2023)

	require.Error(t, err)
	assert.ErrorIs(t, err, fetcher.ErrMalformedPayload)
	assert.Equal(t, "https://stats.example/apps.json", fetcher.URLOf(err))
	assert.Equal(t, int64(2), res.Inserted)
	mail := st.rankings[rankingKey{2023, 1, 1, "web", "download", 1}]
	assert.Equal(t, "Mail", mail.AppName)
	assert.Equal(t, int64(70), mail.TotalBytes)
	assert.Contains(t, st.rankings, rankingKey{2023, 1, 2, "web", "download", 1})
	assert.NotContains(t, st.rankings, rankingKey{2023, 1, 2, "web", "download", 2})
}

func TestRankings_InvalidCarrierKey(t *testing.T) {
	st := newMemStore(1)
	client := mocks.NewMockClient(t)
	client.On("Rankings", mock.Anything, jan2023).Return(&source.RankingReport{
		URL:      "https://stats.example/apps.json",
		Carriers: rankTree{"carrier-one": {}},
	}, nil)

	_, err := NewRankings(client, st).Import(context.Background(), jan2023)
	assert.True(t, errors.Is(err, fetcher.ErrMalformedPayload))
}
