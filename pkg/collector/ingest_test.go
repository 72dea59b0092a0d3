package collector

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"OptionFlow/pkg/messaging"
	"OptionFlow/pkg/model"
)

type fakeQuoteStore struct {
	saved []model.OptionQuote
	err   error
}

func (s *fakeQuoteStore) SaveBatch(quotes []model.OptionQuote) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.saved = append(s.saved, quotes...)
	return int64(len(quotes)), nil
}

type fakePublisher struct {
	subjects []string
	events   []interface{}
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	p.subjects = append(p.subjects, subject)
	p.events = append(p.events, data)
	return nil
}

func chainServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data": [
			{"contract_id": "AAPL230317C00150000", "symbol": "AAPL", "expiration": "2023-03-17",
			 "strike": 150, "type": "call", "last": 5.1, "volume": 120, "underlying_price": 151.2},
			{"contract_id": "AAPL230310C00150000", "symbol": "AAPL", "expiration": "2023-03-10",
			 "strike": 150, "type": "call", "last": 2.0}
		]}`))
	}))
}

func TestIngestDayPublishesEvent(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	adapter := NewOptionsAdapter("k", server.URL, "AAPL", time.Second)
	store := &fakeQuoteStore{}
	publisher := &fakePublisher{}
	day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	result, err := IngestDay(adapter, store, publisher, "AAPL", day)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Filtered)
	assert.Equal(t, int64(1), result.Inserted)
	require.Len(t, store.saved, 1)

	// 采集事件与入库结果一致
	require.Len(t, publisher.events, 1)
	assert.Equal(t, messaging.SubjectIngestDay, publisher.subjects[0])
	event, ok := publisher.events[0].(model.IngestEvent)
	require.True(t, ok)
	assert.Equal(t, "AAPL", event.Symbol)
	assert.Equal(t, "2023-03-06", event.QuoteDate)
	assert.Equal(t, 2, event.Fetched)
	assert.Equal(t, 1, event.Filtered)
	assert.Equal(t, int64(1), event.Inserted)
}

func TestIngestDayNilPublisher(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	adapter := NewOptionsAdapter("k", server.URL, "AAPL", time.Second)
	store := &fakeQuoteStore{}
	day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	result, err := IngestDay(adapter, store, nil, "AAPL", day)
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Inserted)
}

func TestIngestDayStoreFailure(t *testing.T) {
	server := chainServer(t)
	defer server.Close()

	adapter := NewOptionsAdapter("k", server.URL, "AAPL", time.Second)
	store := &fakeQuoteStore{err: errors.New("数据库不可用")}
	publisher := &fakePublisher{}
	day := time.Date(2023, 3, 6, 0, 0, 0, 0, time.UTC)

	_, err := IngestDay(adapter, store, publisher, "AAPL", day)
	require.Error(t, err)

	// 入库失败不发布事件
	assert.Empty(t, publisher.events)
}
