package oracle_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrone/internal/config"
	"gstrone/internal/oracle/gemini"
	"gstrone/internal/port"
)

func newGeminiTestOracle(serverURL string) *gemini.Oracle {
	cfg := &config.OracleConfig{
		Provider:    "gemini",
		APIKey:      "test-gemini-key",
		Model:       "gemini-2.0-flash",
		TimeoutSecs: 30,
	}
	return gemini.NewWithEndpoint(cfg, serverURL)
}

func geminiSuccessResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"candidates": []map[string]interface{}{
			{
				"content": map[string]interface{}{
					"role": "model",
					"parts": []map[string]interface{}{
						{"text": text},
					},
				},
				"finishReason": "STOP",
			},
		},
	}
}

func TestGeminiOracle_Classify_Success(t *testing.T) {
	responseBody := geminiSuccessResponse(`{"category":"b2cl","confidence":0.92,"rationale":"value above threshold"}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "test-gemini-key", r.Header.Get("x-goog-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var reqBody map[string]interface{}
		err := json.NewDecoder(r.Body).Decode(&reqBody)
		assert.NoError(t, err)

		contents := reqBody["contents"].([]interface{})
		assert.Len(t, contents, 1)
		msg := contents[0].(map[string]interface{})
		assert.Equal(t, "user", msg["role"])

		parts := msg["parts"].([]interface{})
		assert.Len(t, parts, 1)
		textPart := parts[0].(map[string]interface{})
		assert.Contains(t, textPart["text"], "INV900")

		genConfig := reqBody["generationConfig"].(map[string]interface{})
		assert.Equal(t, "application/json", genConfig["responseMimeType"])

		w.WriteHeader(http.StatusOK)
		err = json.NewEncoder(w).Encode(responseBody)
		if err != nil {
			return
		}
	}))
	defer server.Close()

	o := newGeminiTestOracle(server.URL)

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{
		DocTypeLabel: "Invoice",
		DocNumber:    "INV900",
		TaxableValue: "260000.00",
		Rate:         "18",
	})

	require.NoError(t, err)
	require.NotNil(t, sugg)
	assert.Equal(t, "b2cl", sugg.Category)
	assert.InDelta(t, 0.92, sugg.Confidence, 0.001)
	assert.NotEmpty(t, sugg.Rationale)
}

func TestGeminiOracle_Classify_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, err := w.Write([]byte(`{"error":{"code":429,"message":"Resource has been exhausted","status":"RESOURCE_EXHAUSTED"}}`))
		if err != nil {
			return
		}
	}))
	defer server.Close()

	o := newGeminiTestOracle(server.URL)

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{DocNumber: "INV1"})

	assert.Nil(t, sugg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "gemini API error (status 429)")
}

func TestGeminiOracle_Classify_EmptyResponse(t *testing.T) {
	responseBody := map[string]interface{}{
		"candidates": []map[string]interface{}{},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(responseBody)
		if err != nil {
			return
		}
	}))
	defer server.Close()

	o := newGeminiTestOracle(server.URL)

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{DocNumber: "INV1"})

	assert.Nil(t, sugg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "empty response from gemini")
}

func TestGeminiOracle_Classify_MissingCategory(t *testing.T) {
	responseBody := geminiSuccessResponse(`{"confidence":0.9}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(responseBody)
		if err != nil {
			return
		}
	}))
	defer server.Close()

	o := newGeminiTestOracle(server.URL)

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{DocNumber: "INV1"})

	assert.Nil(t, sugg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "missing category")
}

func TestGeminiOracle_Insights_Success(t *testing.T) {
	responseBody := geminiSuccessResponse(`{"insights":["2 invoice series had gaps","all supplies taxed at 18%"]}`)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		err := json.NewEncoder(w).Encode(responseBody)
		if err != nil {
			return
		}
	}))
	defer server.Close()

	o := newGeminiTestOracle(server.URL)

	insights, err := o.Insights(context.Background(), map[string]any{
		"transaction_count": 120,
		"warning_count":     2,
	})

	require.NoError(t, err)
	require.Len(t, insights, 2)
	assert.Contains(t, insights[0], "gaps")
}

func TestGeminiOracle_Classify_ConnectionRefused(t *testing.T) {
	o := newGeminiTestOracle("http://localhost:1")

	sugg, err := o.Classify(context.Background(), port.ClassifyInput{DocNumber: "INV1"})

	assert.Nil(t, sugg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "calling gemini API")
}
