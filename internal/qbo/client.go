package qbo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	"github.com/smallledger/arview/internal/config"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"github.com/smallledger/arview/internal/observability/metrics"
	"go.uber.org/zap"
)

const (
	sandboxBaseURL    = "https://sandbox-quickbooks.api.intuit.com"
	productionBaseURL = "https://quickbooks.api.intuit.com"

	minorVersion   = "75"
	defaultBatch   = 100
	defaultDueDays = 14
)

// Client is a thin QuickBooks Online REST client scoped to the invoice
// and company-info resources. It implements the invoice source and
// creator ports.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  *TokenStore
	clock   clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger
}

func NewClient(cfg config.Config, tokens *TokenStore, c clock.Clock, m *metrics.Metrics, log *zap.Logger) *Client {
	baseURL := sandboxBaseURL
	if cfg.QBO.Environment == "production" {
		baseURL = productionBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		tokens:  tokens,
		clock:   c,
		metrics: m,
		log:     log.Named("qbo.client"),
	}
}

type qboDate struct {
	time.Time
}

func (d *qboDate) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	t, err := time.ParseInLocation("2006-01-02", s, time.UTC)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d qboDate) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format("2006-01-02"))
}

type qboRef struct {
	Value string `json:"value,omitempty"`
	Name  string `json:"name,omitempty"`
}

type qboInvoice struct {
	ID          string          `json:"Id"`
	DocNumber   string          `json:"DocNumber"`
	TxnStatus   string          `json:"TxnStatus"`
	TotalAmt    decimal.Decimal `json:"TotalAmt"`
	Balance     decimal.Decimal `json:"Balance"`
	TxnDate     *qboDate        `json:"TxnDate"`
	DueDate     *qboDate        `json:"DueDate"`
	CustomerRef *qboRef         `json:"CustomerRef"`
	PrivateNote string          `json:"PrivateNote,omitempty"`
	Line        []qboLine       `json:"Line,omitempty"`
}

type qboLine struct {
	Amount     decimal.Decimal `json:"Amount"`
	DetailType string          `json:"DetailType"`
	Detail     *qboLineDetail  `json:"SalesItemLineDetail,omitempty"`
	Desc       string          `json:"Description,omitempty"`
}

type qboLineDetail struct {
	ItemRef   *qboRef          `json:"ItemRef,omitempty"`
	Qty       *decimal.Decimal `json:"Qty,omitempty"`
	UnitPrice *decimal.Decimal `json:"UnitPrice,omitempty"`
}

type qboCustomer struct {
	ID          string `json:"Id"`
	DisplayName string `json:"DisplayName"`
}

type qboItem struct {
	ID   string `json:"Id"`
	Name string `json:"Name"`
}

// CompanyInfo is the connected company's identity, as shown on the
// settings page.
type CompanyInfo struct {
	CompanyName string `json:"companyName"`
	Country     string `json:"country"`
	RealmID     string `json:"realmId"`
}

// FetchInvoices pulls up to batch invoices via the QBO query endpoint.
func (c *Client) FetchInvoices(ctx context.Context, batch int) ([]invoicedomain.RawInvoice, error) {
	if batch <= 0 {
		batch = defaultBatch
	}
	query := fmt.Sprintf("SELECT * FROM Invoice ORDERBY MetaData.CreateTime DESC MAXRESULTS %d", batch)

	var resp struct {
		QueryResponse struct {
			Invoice []qboInvoice `json:"Invoice"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, query, &resp); err != nil {
		return nil, err
	}

	raws := make([]invoicedomain.RawInvoice, 0, len(resp.QueryResponse.Invoice))
	for _, inv := range resp.QueryResponse.Invoice {
		raws = append(raws, toRaw(inv))
	}
	return raws, nil
}

// CreateInvoice writes a one-line sales invoice upstream. Customer and
// item are resolved to existing active QBO records: by name when given,
// otherwise the first active one.
func (c *Client) CreateInvoice(ctx context.Context, req invoicedomain.CreateInvoiceRequest) (invoicedomain.RawInvoice, error) {
	customer, err := c.resolveCustomer(ctx, req.CustomerName)
	if err != nil {
		return invoicedomain.RawInvoice{}, err
	}
	item, err := c.resolveItem(ctx, req.ItemName)
	if err != nil {
		return invoicedomain.RawInvoice{}, err
	}

	dueDays := defaultDueDays
	if req.DaysUntilDue != nil {
		dueDays = *req.DaysUntilDue
		if dueDays < 0 {
			dueDays = 0
		}
	}
	today := clock.Today(c.clock)
	due := qboDate{today.AddDate(0, 0, dueDays)}
	txn := qboDate{today}

	qty := decimal.NewFromInt(1)
	unitPrice := req.Amount.Round(2)
	line := qboLine{
		Amount:     unitPrice.Mul(qty).Round(2),
		DetailType: "SalesItemLineDetail",
		Detail: &qboLineDetail{
			ItemRef:   &qboRef{Value: item.ID, Name: item.Name},
			Qty:       &qty,
			UnitPrice: &unitPrice,
		},
		Desc: strings.TrimSpace(req.Note),
	}
	body := qboInvoice{
		CustomerRef: &qboRef{Value: customer.ID, Name: customer.DisplayName},
		TxnDate:     &txn,
		DueDate:     &due,
		PrivateNote: strings.TrimSpace(req.Note),
		Line:        []qboLine{line},
	}

	var resp struct {
		Invoice qboInvoice `json:"Invoice"`
	}
	if err := c.post(ctx, "invoice", body, &resp); err != nil {
		return invoicedomain.RawInvoice{}, err
	}

	raw := toRaw(resp.Invoice)
	if raw.CustomerName == "" {
		raw.CustomerName = customer.DisplayName
	}
	// QBO occasionally omits amounts on the create response; fall back to
	// the requested amount so the local mirror is never zero.
	if raw.TotalAmt.IsZero() {
		raw.TotalAmt = unitPrice
	}
	if raw.Balance.IsZero() {
		raw.Balance = unitPrice
	}
	return raw, nil
}

// Company fetches the connected company's profile.
func (c *Client) Company(ctx context.Context) (CompanyInfo, error) {
	_, realmID, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return CompanyInfo{}, err
	}

	var resp struct {
		CompanyInfo struct {
			CompanyName string `json:"CompanyName"`
			Country     string `json:"Country"`
		} `json:"CompanyInfo"`
	}
	path := fmt.Sprintf("/v3/company/%s/companyinfo/%s", realmID, realmID)
	if err := c.get(ctx, path, nil, &resp); err != nil {
		return CompanyInfo{}, err
	}
	return CompanyInfo{
		CompanyName: resp.CompanyInfo.CompanyName,
		Country:     resp.CompanyInfo.Country,
		RealmID:     realmID,
	}, nil
}

func (c *Client) resolveCustomer(ctx context.Context, name string) (qboCustomer, error) {
	query := "SELECT Id, DisplayName FROM Customer WHERE Active = true STARTPOSITION 1 MAXRESULTS 1"
	if name = strings.TrimSpace(name); name != "" {
		query = fmt.Sprintf("SELECT Id, DisplayName FROM Customer WHERE Active = true AND DisplayName = '%s'", escapeQuery(name))
	}
	var found struct {
		QueryResponse struct {
			Customer []qboCustomer `json:"Customer"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, query, &found); err != nil {
		return qboCustomer{}, err
	}
	if len(found.QueryResponse.Customer) == 0 {
		return qboCustomer{}, fmt.Errorf("%w: no active customer found", ErrUpstream)
	}
	return found.QueryResponse.Customer[0], nil
}

func (c *Client) resolveItem(ctx context.Context, name string) (qboItem, error) {
	query := "SELECT Id, Name FROM Item WHERE Active = true AND Type = 'Service' STARTPOSITION 1 MAXRESULTS 1"
	if name = strings.TrimSpace(name); name != "" {
		query = fmt.Sprintf("SELECT Id, Name FROM Item WHERE Active = true AND Name = '%s' AND Type = 'Service'", escapeQuery(name))
	}
	var found struct {
		QueryResponse struct {
			Item []qboItem `json:"Item"`
		} `json:"QueryResponse"`
	}
	if err := c.query(ctx, query, &found); err != nil {
		return qboItem{}, err
	}
	if len(found.QueryResponse.Item) == 0 {
		return qboItem{}, fmt.Errorf("%w: no active service item found", ErrUpstream)
	}
	return found.QueryResponse.Item[0], nil
}

func (c *Client) query(ctx context.Context, query string, out any) error {
	realmID := c.tokens.RealmID()
	path := fmt.Sprintf("/v3/company/%s/query", realmID)
	return c.get(ctx, path, url.Values{"query": {query}}, out)
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, params, nil, out)
}

func (c *Client) post(ctx context.Context, resource string, body, out any) error {
	realmID := c.tokens.RealmID()
	path := fmt.Sprintf("/v3/company/%s/%s", realmID, resource)
	return c.do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, params url.Values, body, out any) error {
	accessToken, _, err := c.tokens.AccessToken(ctx)
	if err != nil {
		return err
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("minorversion", minorVersion)
	endpoint := c.baseURL + path + "?" + params.Encode()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.RecordQBORequest(ctx, method, 0)
		return fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()
	c.metrics.RecordQBORequest(ctx, method, resp.StatusCode)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrReauthorize
	}
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		c.log.Warn("quickbooks request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode))
		return fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, payload)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return nil
}

func toRaw(inv qboInvoice) invoicedomain.RawInvoice {
	raw := invoicedomain.RawInvoice{
		ExternalID: inv.ID,
		TxnStatus:  inv.TxnStatus,
		TotalAmt:   inv.TotalAmt,
		Balance:    inv.Balance,
	}
	if inv.CustomerRef != nil {
		raw.CustomerName = inv.CustomerRef.Name
	}
	if inv.TxnDate != nil && !inv.TxnDate.IsZero() {
		t := inv.TxnDate.Time
		raw.TxnDate = &t
	}
	if inv.DueDate != nil && !inv.DueDate.IsZero() {
		t := inv.DueDate.Time
		raw.DueDate = &t
	}
	return raw
}

// escapeQuery escapes single quotes per the QBO query grammar.
func escapeQuery(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
