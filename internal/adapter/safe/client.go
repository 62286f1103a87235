package safe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/avast/retry-go"
	"github.com/shopspring/decimal"

	"github.com/polkiloo/custodian/internal/domain/model"
)

// ErrUnsupportedChain indicates no Safe transaction service exists for the
// configured chain.
var ErrUnsupportedChain = errors.New("no safe transaction service for chain")

// ErrNotConfigured is returned by the disabled client when no Safe address
// was configured.
var ErrNotConfigured = errors.New("safe address not configured")

// RateLimitError represents a throttling signal from the Safe service.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e RateLimitError) Error() string {
	return fmt.Sprintf("safe service rate limited, retry after %s", e.RetryAfter)
}

// Client exposes read operations against the Safe transaction service.
type Client interface {
	SafeInfo(ctx context.Context) (*model.SafeInfo, error)
	PendingTransactions(ctx context.Context) ([]model.SafePendingTx, error)
	MultisigHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error)
}

// HTTPClient implements Client via the Safe transaction service REST API.
type HTTPClient struct {
	baseURL     *url.URL
	safeAddress string
	chainID     int64
	apiKey      string
	httpClient  *http.Client
	logger      *slog.Logger
}

// NewHTTPClient creates a client for the chain's Safe transaction service.
func NewHTTPClient(chainID int64, safeAddress, apiKey string, logger *slog.Logger) (*HTTPClient, error) {
	base, ok := txServiceBaseURLs[chainID]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedChain, chainID)
	}
	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse safe service url: %w", err)
	}
	return &HTTPClient{
		baseURL:     parsed,
		safeAddress: safeAddress,
		chainID:     chainID,
		apiKey:      apiKey,
		logger:      logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

type disabledClient struct{}

// NewDisabled returns a Client for deployments without a Safe. Every call
// fails with ErrNotConfigured.
func NewDisabled() Client {
	return disabledClient{}
}

func (disabledClient) SafeInfo(ctx context.Context) (*model.SafeInfo, error) {
	return nil, ErrNotConfigured
}

func (disabledClient) PendingTransactions(ctx context.Context) ([]model.SafePendingTx, error) {
	return nil, ErrNotConfigured
}

func (disabledClient) MultisigHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error) {
	return nil, ErrNotConfigured
}

type safeInfoResponse struct {
	Address   string   `json:"address"`
	Nonce     int64    `json:"nonce"`
	Threshold int      `json:"threshold"`
	Owners    []string `json:"owners"`
}

type confirmationResponse struct {
	Owner string `json:"owner"`
}

type multisigTxResponse struct {
	SafeTxHash            string                 `json:"safeTxHash"`
	To                    string                 `json:"to"`
	Value                 string                 `json:"value"`
	Confirmations         []confirmationResponse `json:"confirmations"`
	ConfirmationsRequired int                    `json:"confirmationsRequired"`
	SubmissionDate        time.Time              `json:"submissionDate"`
	IsExecuted            bool                   `json:"isExecuted"`
	IsSuccessful          *bool                  `json:"isSuccessful"`
	TransactionHash       string                 `json:"transactionHash"`
	ExecutionDate         *time.Time             `json:"executionDate"`
}

type multisigTxListResponse struct {
	Results []multisigTxResponse `json:"results"`
}

// SafeInfo fetches owners, threshold, and nonce of the Safe.
func (c *HTTPClient) SafeInfo(ctx context.Context) (*model.SafeInfo, error) {
	var data safeInfoResponse
	path := fmt.Sprintf("/api/v1/safes/%s/", c.safeAddress)
	if err := c.getJSON(ctx, path, nil, &data); err != nil {
		return nil, err
	}
	return &model.SafeInfo{
		Address:   data.Address,
		Owners:    data.Owners,
		Threshold: data.Threshold,
		Nonce:     data.Nonce,
	}, nil
}

// PendingTransactions lists multisig transactions still collecting signatures.
func (c *HTTPClient) PendingTransactions(ctx context.Context) ([]model.SafePendingTx, error) {
	var data multisigTxListResponse
	path := fmt.Sprintf("/api/v1/safes/%s/multisig-transactions/", c.safeAddress)
	if err := c.getJSON(ctx, path, url.Values{"executed": {"false"}}, &data); err != nil {
		return nil, err
	}

	out := make([]model.SafePendingTx, 0, len(data.Results))
	for _, tx := range data.Results {
		owners := make([]string, 0, len(tx.Confirmations))
		for _, conf := range tx.Confirmations {
			owners = append(owners, conf.Owner)
		}
		out = append(out, model.SafePendingTx{
			SafeTxHash:            tx.SafeTxHash,
			To:                    tx.To,
			Value:                 weiStringToEth(tx.Value),
			Confirmations:         len(tx.Confirmations),
			ConfirmationsRequired: tx.ConfirmationsRequired,
			ConfirmingOwners:      owners,
			SubmittedAt:           tx.SubmissionDate,
			SigningURL:            SigningURL(c.chainID, c.safeAddress, tx.SafeTxHash),
		})
	}
	return out, nil
}

// MultisigHistory lists executed multisig transactions, newest first.
func (c *HTTPClient) MultisigHistory(ctx context.Context, limit int) ([]model.SafeTransfer, error) {
	var data multisigTxListResponse
	path := fmt.Sprintf("/api/v1/safes/%s/multisig-transactions/", c.safeAddress)
	if err := c.getJSON(ctx, path, url.Values{"executed": {"true"}}, &data); err != nil {
		return nil, err
	}

	out := make([]model.SafeTransfer, 0, limit)
	for _, tx := range data.Results {
		if !tx.IsExecuted {
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		transfer := model.SafeTransfer{
			TxHash:     tx.TransactionHash,
			To:         tx.To,
			Value:      weiStringToEth(tx.Value),
			Successful: tx.IsSuccessful != nil && *tx.IsSuccessful,
		}
		if tx.ExecutionDate != nil {
			transfer.ExecutedAt = *tx.ExecutionDate
		}
		out = append(out, transfer)
	}
	return out, nil
}

func (c *HTTPClient) getJSON(ctx context.Context, path string, query url.Values, dst any) error {
	endpoint := *c.baseURL
	endpoint.Path = path
	if query != nil {
		endpoint.RawQuery = query.Encode()
	}

	return retry.Do(
		func() error { return c.doRequest(ctx, endpoint.String(), dst) },
		retry.Attempts(3),
		retry.Delay(200*time.Millisecond),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var rateLimited RateLimitError
			return !errors.As(err, &rateLimited) && ctx.Err() == nil
		}),
	)
}

func (c *HTTPClient) doRequest(ctx context.Context, endpoint string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return json.Unmarshal(body, dst)
	case http.StatusTooManyRequests:
		return RateLimitError{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("safe service request failed",
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return fmt.Errorf("safe service error: %s", resp.Status)
	}
}

func weiStringToEth(value string) decimal.Decimal {
	wei, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return decimal.Zero
	}
	return model.FromWei(wei)
}

func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 5 * time.Second
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 5 * time.Second
}
