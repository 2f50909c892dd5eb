package yandex

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const resultXML = `<?xml version="1.0" encoding="utf-8"?>
<yandexsearch version="1.0">
<response>
<results>
<grouping>
<group><doc><url>https://consultant.ru/doc1</url></doc></group>
<group><doc><url>https://garant.ru/doc2</url></doc></group>
<group><doc><url>https://nalog.gov.ru/doc3</url></doc></group>
</grouping>
</results>
</response>
</yandexsearch>`

const errorXML = `<?xml version="1.0" encoding="utf-8"?>
<yandexsearch version="1.0">
<response>
<error code="15">No results found</error>
</response>
</yandexsearch>`

func xmlBody(t *testing.T, rawXML string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]string{
		"rawData": base64.StdEncoding.EncodeToString([]byte(rawXML)),
	})
	if err != nil {
		t.Fatalf("marshal response: %v", err)
	}
	return body
}

func newTestClient(srvURL string) *Client {
	return NewClient(ClientConfig{
		FolderID: "folder-1",
		APIKey:   "key-1",
		Endpoint: srvURL,
	})
}

func TestLinks_ParsesResultXML(t *testing.T) {
	var gotAuth string
	var gotReq searchRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotReq)
		_, _ = w.Write(xmlBody(t, resultXML))
	}))
	defer srv.Close()

	links, err := newTestClient(srv.URL).Links(context.Background(), "кассовые операции", 10)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}

	want := []string{"https://consultant.ru/doc1", "https://garant.ru/doc2", "https://nalog.gov.ru/doc3"}
	if len(links) != len(want) {
		t.Fatalf("expected %d links, got %d: %v", len(want), len(links), links)
	}
	for i := range want {
		if links[i] != want[i] {
			t.Errorf("link %d = %q, want %q", i, links[i], want[i])
		}
	}

	if gotAuth != "Api-Key key-1" {
		t.Errorf("unexpected authorization header: %q", gotAuth)
	}
	if gotReq.FolderID != "folder-1" {
		t.Errorf("unexpected folderId: %q", gotReq.FolderID)
	}
	if gotReq.Query.QueryText != "кассовые операции" {
		t.Errorf("unexpected query text: %q", gotReq.Query.QueryText)
	}
	if gotReq.Query.SearchType != searchTypeRussian {
		t.Errorf("unexpected search type: %q", gotReq.Query.SearchType)
	}
}

func TestLinks_TruncatesToN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(xmlBody(t, resultXML))
	}))
	defer srv.Close()

	links, err := newTestClient(srv.URL).Links(context.Background(), "q", 2)
	if err != nil {
		t.Fatalf("Links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
}

func TestLinks_HTTPErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Links(context.Background(), "q", 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestLinks_APIErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(xmlBody(t, errorXML))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Links(context.Background(), "q", 5)
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("expected ErrUnavailable, got %v", err)
	}
}

func TestLinks_MalformedPayload(t *testing.T) {
	cases := []struct {
		name string
		body []byte
	}{
		{"invalid json", []byte("not json")},
		{"invalid base64", []byte(`{"rawData":"%%%"}`)},
		{"invalid xml", []byte(`{"rawData":"` + base64.StdEncoding.EncodeToString([]byte("<broken")) + `"}`)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write(tc.body)
			}))
			defer srv.Close()

			_, err := newTestClient(srv.URL).Links(context.Background(), "q", 5)
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}
