package winet

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// hijackClose drops the TCP connection without writing a response, which the
// client sees as a transient connection failure.
func hijackClose(w http.ResponseWriter) {
	hj, ok := w.(http.Hijacker)
	if !ok {
		panic("response writer does not support hijacking")
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		panic(err)
	}
	_ = conn.Close()
}

func TestExecute_RetriesTransientFailuresThenSucceeds(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) <= 2 {
			hijackClose(w)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"signal":42}`))
	}))
	defer srv.Close()

	e := NewExecutor(nil, WithRetryDelay(time.Millisecond))
	res, err := e.Execute(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.NoError(t, err)
	assert.True(t, res.IsJSON())
	assert.Equal(t, int32(3), attempts.Load(), "two failed attempts plus the successful one")
}

func TestExecute_ExhaustedRetriesWrapConnectionError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		hijackClose(w)
	}))
	defer srv.Close()

	e := NewExecutor(nil, WithRetryDelay(time.Millisecond))
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.ErrorIs(t, err, ErrConnection)
	assert.Equal(t, int32(defaultMaxRetries), attempts.Load())
}

func TestExecute_BadStatusFailsWithoutRetry(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewExecutor(nil, WithRetryDelay(time.Millisecond))
	_, err := e.Execute(context.Background(), Request{Method: http.MethodGet, URL: srv.URL})
	require.ErrorIs(t, err, ErrStatus)
	assert.Equal(t, int32(1), attempts.Load())
}

func TestExecute_SendsFormBodyAndHeaders(t *testing.T) {
	var gotBody url.Values
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		gotBody, _ = url.ParseQuery(string(data))
		gotContentType = r.Header.Get("Content-Type")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	builder := NewRequestBuilder(srv.URL, map[string]string{"User-Agent": "test"})
	req := builder.Post("/ajax/get-registers", url.Values{"key": {"020"}, "category": {"2"}}, ajaxHeaders)

	e := NewExecutor(nil)
	_, err := e.Execute(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "020", gotBody.Get("key"))
	assert.Equal(t, "2", gotBody.Get("category"))
	assert.Equal(t, "application/json; charset=utf-8", gotContentType)
}

func TestResponse_ResultKey(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		isJSON  bool
		value   bool
		present bool
	}{
		{name: "state payload", body: `{"signal":10,"params":[[2,5]]}`, isJSON: true},
		{name: "rejection", body: `{"result":false}`, isJSON: true, present: true},
		{name: "acknowledgement", body: `{"result":true}`, isJSON: true, value: true, present: true},
		{name: "plain text", body: `OK`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res := newResponse([]byte(tc.body))
			assert.Equal(t, tc.isJSON, res.IsJSON())
			value, present := res.Result()
			assert.Equal(t, tc.value, value)
			assert.Equal(t, tc.present, present)
			assert.Equal(t, tc.body, res.Text())
		})
	}
}

func TestResponse_DecodeMalformed(t *testing.T) {
	res := newResponse([]byte(`{"params":"not a list"}`))
	require.True(t, res.IsJSON())
	err := res.Decode(&GetRegistersResult{})
	assert.ErrorIs(t, err, ErrDecode)
}
