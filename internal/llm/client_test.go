package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	})
	require.NoError(t, err)
	return body
}

func TestClientComplete_SendsExpectedPayloadAndParsesContent(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, `{"action":"check_stock","confidence":0.92}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		Model:   "gpt-4o-mini",
		BaseURL: srv.URL,
		APIKey:  "test-api-key",
	}, srv.Client())
	require.NoError(t, err)

	out, err := client.Complete(context.Background(), []Message{
		System("You classify inventory commands."),
		User("how many widgets are left?"),
	}, Options{Temperature: 0.1, MaxOutputTokens: 256})
	require.NoError(t, err)
	require.Equal(t, `{"action":"check_stock","confidence":0.92}`, out)

	require.Equal(t, "Bearer test-api-key", gotAuth)
	require.Equal(t, "gpt-4o-mini", gotBody["model"])

	msgs, ok := gotBody["messages"].([]any)
	require.True(t, ok)
	require.Len(t, msgs, 2)
	first := msgs[0].(map[string]any)
	require.Equal(t, "system", first["role"])
}

func TestClientComplete_MapsNonSuccessStatusToUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), []Message{User("hi")}, Options{})
	var upstream *UpstreamError
	require.ErrorAs(t, err, &upstream)
	require.Equal(t, http.StatusInternalServerError, upstream.StatusCode)
	require.Contains(t, upstream.Body, "model overloaded")
}

func TestClientComplete_TimesOutAndAbortsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(release) })

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	start := time.Now()
	_, err = client.Complete(context.Background(), []Message{User("hi")}, Options{Timeout: 30 * time.Millisecond})
	var timeout *TimeoutError
	require.ErrorAs(t, err, &timeout)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestClientComplete_CancelledCallerContextIsNotUpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = client.Complete(ctx, []Message{User("hi")}, Options{Timeout: 10 * time.Second})
	require.ErrorIs(t, err, context.Canceled)
	require.False(t, IsUpstream(err))
}

func TestCompleteStructured_ParsesEmbeddedObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, "Sure!\n```json\n{\"action\":\"none\",\"confidence\":0.4,\"reasoning\":\"greeting\"}\n```"))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	type classification struct {
		Action     string  `json:"action"`
		Confidence float64 `json:"confidence"`
		Reasoning  string  `json:"reasoning"`
	}
	got, err := CompleteStructured[classification](context.Background(), client, []Message{User("hello")}, Options{})
	require.NoError(t, err)
	require.Equal(t, "none", got.Action)
	require.InDelta(t, 0.4, got.Confidence, 1e-9)
}

func TestCompleteStructured_ProseOutputIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(completionBody(t, "I am not sure what you mean."))
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{Model: "gpt-4o-mini", BaseURL: srv.URL, APIKey: "k"}, srv.Client())
	require.NoError(t, err)

	_, err = CompleteStructured[map[string]any](context.Background(), client, []Message{User("hello")}, Options{})
	var malformed *MalformedResponseError
	require.ErrorAs(t, err, &malformed)
	require.Contains(t, malformed.Output, "not sure")
}

func TestNewClient_RequiresAPIKey(t *testing.T) {
	const envKey = "STOCKHAND_LLM_MISSING_KEY"
	t.Setenv(envKey, "")

	_, err := NewClient(Config{Model: "gpt-4o-mini", APIKeyEnv: envKey}, nil)
	require.Error(t, err)
}
