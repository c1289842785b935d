package assetledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"
)

// HTTPLedger talks to a remote asset ledger over its JSON interface. Calls
// go through a circuit breaker so a misbehaving ledger trips fast instead
// of hanging every engine operation.
type HTTPLedger struct {
	addr    string
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewHTTPLedger returns a ledger client for the given base address.
func NewHTTPLedger(addr string) *HTTPLedger {
	return &HTTPLedger{
		addr:   addr,
		client: &http.Client{Timeout: 15 * time.Second},
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name: "assetledger",
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests > 10 && ratio >= 0.6
			},
		}),
	}
}

type amountResponse struct {
	Amount uint64 `json:"amount"`
}

type transferRequest struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Asset  string `json:"asset"`
	Amount uint64 `json:"amount"`
}

func (l *HTTPLedger) BalanceOf(ctx context.Context, holder, asset string) (uint64, error) {
	return l.getAmount(ctx, "/balance", url.Values{
		"holder": {holder}, "asset": {asset},
	})
}

func (l *HTTPLedger) Allowance(ctx context.Context, holder, spender, asset string) (uint64, error) {
	return l.getAmount(ctx, "/allowance", url.Values{
		"holder": {holder}, "spender": {spender}, "asset": {asset},
	})
}

func (l *HTTPLedger) Transfer(ctx context.Context, from, to, asset string, amount uint64) error {
	return l.postTransfer(ctx, "/transfer", transferRequest{from, to, asset, amount})
}

func (l *HTTPLedger) TransferFrom(ctx context.Context, from, to, asset string, amount uint64) error {
	return l.postTransfer(ctx, "/transferfrom", transferRequest{from, to, asset, amount})
}

func (l *HTTPLedger) getAmount(ctx context.Context, path string, params url.Values) (uint64, error) {
	resp, err := l.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodGet, l.addr+path+"?"+params.Encode(), nil,
		)
		if err != nil {
			return nil, err
		}
		return l.do(req)
	})
	if err != nil {
		return 0, err
	}

	var out amountResponse
	if err := json.Unmarshal(resp.([]byte), &out); err != nil {
		return 0, err
	}
	return out.Amount, nil
}

func (l *HTTPLedger) postTransfer(ctx context.Context, path string, body transferRequest) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	_, err = l.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(
			ctx, http.MethodPost, l.addr+path, bytes.NewReader(payload),
		)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		return l.do(req)
	})
	return err
}

func (l *HTTPLedger) do(req *http.Request) ([]byte, error) {
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf(
			"asset ledger returned status %d: %s", resp.StatusCode, buf.String(),
		)
	}
	return buf.Bytes(), nil
}
