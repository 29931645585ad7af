package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/otterhq/intent-sdk-go/logging"
	"github.com/otterhq/intent-sdk-go/types"
)

func TestClassify(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req classifyRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request failed: %v", err)
		}
		if req.RequestID == "" {
			t.Error("request is missing a request ID")
		}
		if req.Message != "swap 10 SUI for USDC" {
			t.Errorf("message = %q", req.Message)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"intents": [{
				"action": "swap",
				"params": {"inputToken": "SUI", "outputToken": "USDC", "amount": "10", "slippage": "0.01"},
				"confidence": 0.92
			}],
			"summary": "Swap 10 SUI to USDC",
			"confidence": 0.92
		}`))
	}))
	defer server.Close()

	s := NewService(server.URL, 5, logging.NewNop())
	outcome, err := s.Classify(context.Background(), "swap 10 SUI for USDC")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if !outcome.Understood {
		t.Fatal("outcome should be understood")
	}
	if len(outcome.Intents) != 1 {
		t.Fatalf("expected 1 intent, got %d", len(outcome.Intents))
	}
	intent := outcome.Intents[0]
	if intent.Action != types.ActionSwap || intent.Swap == nil {
		t.Fatalf("intent = %+v", intent)
	}
	if intent.Swap.InputToken != "SUI" || intent.Swap.Amount != "10" {
		t.Errorf("swap params = %+v", intent.Swap)
	}
}

func TestClassifyMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("I'm sorry, I can't parse that"))
	}))
	defer server.Close()

	s := NewService(server.URL, 5, logging.NewNop())
	outcome, err := s.Classify(context.Background(), "do something")
	if err != nil {
		t.Fatalf("malformed response must not hard-fail: %v", err)
	}
	if outcome.Understood {
		t.Error("malformed response should yield not-understood")
	}
	if len(outcome.Intents) != 0 {
		t.Errorf("expected zero intents, got %d", len(outcome.Intents))
	}
}

func TestClassifyEmptyIntents(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"intents": [], "summary": "", "confidence": 0}`))
	}))
	defer server.Close()

	s := NewService(server.URL, 5, logging.NewNop())
	outcome, err := s.Classify(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if outcome.Understood {
		t.Error("zero intents should yield not-understood")
	}
}

func TestClassifyServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	s := NewService(server.URL, 5, logging.NewNop())
	if _, err := s.Classify(context.Background(), "hello"); err == nil {
		t.Error("HTTP 500 should be a hard error")
	}
}
