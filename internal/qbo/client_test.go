package qbo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallledger/arview/internal/clock"
	invoicedomain "github.com/smallledger/arview/internal/invoice/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	store, _ := newTestStore(t, "http://127.0.0.1:0")
	store.Connect("realm-9", &oauth2.Token{
		AccessToken: "token",
		Expiry:      testNow.Add(time.Hour),
	})

	return &Client{
		baseURL: srv.URL,
		http:    srv.Client(),
		tokens:  store,
		clock:   clock.NewFakeClock(testNow),
		log:     zap.NewNop(),
	}
}

func invoiceCreateFixture(amount string) invoicedomain.CreateInvoiceRequest {
	return invoicedomain.CreateInvoiceRequest{
		Amount:       decimal.RequireFromString(amount),
		CustomerName: "Acme Corp",
		ItemName:     "Consulting",
	}
}

func TestFetchInvoices(t *testing.T) {
	var gotPath, gotQuery, gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"QueryResponse":{"Invoice":[
			{"Id":"77","TotalAmt":1000.00,"Balance":400.00,"TxnDate":"2024-06-01","DueDate":"2024-06-30","CustomerRef":{"value":"5","name":"Acme Corp"}},
			{"Id":"78","TxnStatus":"VOID","TotalAmt":500.00,"Balance":0}
		]}}`))
	}))

	raws, err := client.FetchInvoices(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "/v3/company/realm-9/query", gotPath)
	assert.Contains(t, gotQuery, "MAXRESULTS 50")
	assert.Equal(t, "Bearer token", gotAuth)

	require.Len(t, raws, 2)
	assert.Equal(t, "77", raws[0].ExternalID)
	assert.Equal(t, "Acme Corp", raws[0].CustomerName)
	assert.Equal(t, "1000", raws[0].TotalAmt.String())
	assert.Equal(t, "400", raws[0].Balance.String())
	require.NotNil(t, raws[0].DueDate)
	assert.Equal(t, "2024-06-30", raws[0].DueDate.Format("2006-01-02"))

	assert.Equal(t, "VOID", raws[1].TxnStatus)
	assert.Nil(t, raws[1].DueDate)
}

func TestFetchInvoicesUnauthorized(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))

	_, err := client.FetchInvoices(context.Background(), 10)
	assert.ErrorIs(t, err, ErrReauthorize)
}

func TestFetchInvoicesServerError(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"Fault":{}}`))
	}))

	_, err := client.FetchInvoices(context.Background(), 10)
	assert.ErrorIs(t, err, ErrUpstream)
}

func TestCompany(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v3/company/realm-9/companyinfo/realm-9", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"CompanyInfo":{"CompanyName":"Sandbox Co","Country":"US"}}`))
	}))

	info, err := client.Company(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Sandbox Co", info.CompanyName)
	assert.Equal(t, "US", info.Country)
	assert.Equal(t, "realm-9", info.RealmID)
}

func TestCreateInvoiceResolvesRefs(t *testing.T) {
	var paths []string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Query().Get("query"), "FROM Customer"):
			_, _ = w.Write([]byte(`{"QueryResponse":{"Customer":[{"Id":"5","DisplayName":"Acme Corp"}]}}`))
		case r.Method == http.MethodGet && strings.Contains(r.URL.Query().Get("query"), "FROM Item"):
			_, _ = w.Write([]byte(`{"QueryResponse":{"Item":[{"Id":"11","Name":"Consulting"}]}}`))
		default:
			_, _ = w.Write([]byte(`{"Invoice":{"Id":"900","TotalAmt":250.00,"Balance":250.00,"TxnDate":"2024-06-15","DueDate":"2024-06-29","CustomerRef":{"value":"5","name":"Acme Corp"}}}`))
		}
	}))

	raw, err := client.CreateInvoice(context.Background(), invoiceCreateFixture("250.00"))
	require.NoError(t, err)

	assert.Equal(t, "900", raw.ExternalID)
	assert.Equal(t, "Acme Corp", raw.CustomerName)
	assert.Equal(t, "250", raw.TotalAmt.String())
	require.Len(t, paths, 3)
	assert.Equal(t, "POST /v3/company/realm-9/invoice", paths[2])
}

func TestCreateInvoiceFailsWithoutCustomer(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"QueryResponse":{}}`))
	}))

	_, err := client.CreateInvoice(context.Background(), invoiceCreateFixture("100.00"))
	assert.ErrorIs(t, err, ErrUpstream)
}
