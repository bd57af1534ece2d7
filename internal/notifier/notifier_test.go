package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/guregu/null/v6"

	"StockAdvisor/internal/model"
)

func sampleResult() *model.AnalysisResult {
	counts := model.NewRecommendationCounts()
	counts[model.RecommendBuy] = 1
	return &model.AnalysisResult{
		GeneratedAt: time.Date(2025, 3, 3, 16, 30, 0, 0, time.UTC),
		Budget:      1000,
		Symbols:     []string{"AAPL", "XYZ"},
		Info: []model.InfoRow{{
			Symbol:           "AAPL",
			DividendYieldPct: null.FloatFrom(2.5),
			Description:      "Phones & <computers>",
		}},
		Recommendations: []model.RecommendationRecord{{
			Symbol: "AAPL", Open: 10, Close: 11.5, High: 12, Low: 9,
			Recommendation: model.RecommendBuy, Reason: "crossed above", Quantity: 86,
		}},
		Counts:      counts,
		Allocations: []model.Allocation{{Symbol: "AAPL", Quantity: 86}},
		Warnings:    []model.Warning{{Symbol: "XYZ", Kind: model.WarnSymbolNotFound, Message: "Data for XYZ is unavailable. Skipping..."}},
	}
}

func TestFormatAnalysisReport(t *testing.T) {
	msg := FormatAnalysisReport(sampleResult())

	for _, want := range []string{
		"Budget: 1000.00",
		"Dividend Yield (%): 2.50",
		"Market Cap: N/A",
		"Phones &amp; &lt;computers&gt;",
		"<b>AAPL</b>: Buy",
		"qty 86",
		"Buy: 1 | Sell: 0 | Hold: 0",
		"AAPL: 86",
		"Data for XYZ is unavailable. Skipping...",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("report missing %q:\n%s", want, msg)
		}
	}
}

func TestFormatFetchError(t *testing.T) {
	msg := FormatFetchError(sampleResult(), errors.New("fetch price data: timeout"))
	if !strings.Contains(msg, "timeout") || !strings.Contains(msg, "Stock information") {
		t.Errorf("unexpected message:\n%s", msg)
	}
}

func TestSplitMessage(t *testing.T) {
	text := strings.Repeat("0123456789\n", 10)
	chunks := splitMessage(text, 25)
	if strings.Join(chunks, "") != text {
		t.Fatal("chunks must reassemble to the original text")
	}
	for _, c := range chunks {
		if len(c) > 25 {
			t.Errorf("chunk too long: %d", len(c))
		}
	}
	long := strings.Repeat("é", 20) + "\n"
	chunks = splitMessage(long, 7)
	if strings.Join(chunks, "") != long {
		t.Fatal("chunks must reassemble to the original text")
	}
	for _, c := range chunks {
		if len(c) > 7 || !utf8.ValidString(c) {
			t.Errorf("chunk %q is too long or splits a rune", c)
		}
	}

	if got := splitMessage("short", 25); len(got) != 1 {
		t.Errorf("expected one chunk, got %d", len(got))
	}
}

func TestSend(t *testing.T) {
	var mu sync.Mutex
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/botTOKEN/sendMessage" {
			http.NotFound(w, r)
			return
		}
		mu.Lock()
		defer mu.Unlock()
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	if err := tn.Send(context.Background(), "hello"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got["chat_id"] != "42" || got["text"] != "hello" || got["parse_mode"] != "HTML" {
		t.Errorf("unexpected payload %v", got)
	}
}

func TestSendError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL
	if err := tn.Send(context.Background(), "hello"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected status error, got %v", err)
	}
	if err := tn.SendWithRetry(context.Background(), "hello", 0); err == nil {
		t.Error("expected retry exhaustion")
	}
}

func TestDispatch(t *testing.T) {
	var sent []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p map[string]string
		_ = json.NewDecoder(r.Body).Decode(&p)
		sent = append(sent, p["text"])
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tn := NewTelegramNotifier("TOKEN", "42", "")
	tn.APIBase = srv.URL

	var updates []telegramUpdate
	raw := `[
		{"update_id": 7, "message": {"text": " /help ", "chat": {"id": 42}}},
		{"update_id": 8, "message": {"text": "/help", "chat": {"id": 99}}},
		{"update_id": 9}
	]`
	if err := json.Unmarshal([]byte(raw), &updates); err != nil {
		t.Fatal(err)
	}

	var commands []string
	next := tn.dispatch(context.Background(), updates, 0, func(_ context.Context, cmd string) string {
		commands = append(commands, cmd)
		return "reply to " + cmd
	})
	if next != 10 {
		t.Errorf("expected offset 10, got %d", next)
	}
	if len(commands) != 1 || commands[0] != "/help" {
		t.Errorf("unexpected commands %v", commands)
	}
	if len(sent) != 1 || sent[0] != "reply to /help" {
		t.Errorf("unexpected replies %v", sent)
	}
}
