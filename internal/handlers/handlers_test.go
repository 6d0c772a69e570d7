package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) get(t *testing.T, target string, headers ...string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func objects(t *testing.T, doc map[string]any) []map[string]any {
	t.Helper()
	raw, ok := doc["objects"].([]any)
	require.True(t, ok, "objects missing from %v", doc)
	out := make([]map[string]any, len(raw))
	for i, o := range raw {
		out[i] = o.(map[string]any)
	}
	return out
}

func TestBillDetailPage(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/bills/41-1/C-10/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)

	assert.Contains(t, html, "<title>Bill C-10")
	assert.NotContains(t, html, "Historical")
	assert.Contains(t, html, "Pierre Poilievre")

	// newest ten of twelve statements
	for i := 3; i <= 12; i++ {
		assert.Contains(t, html, "speech "+strconv.Itoa(i)+"<")
	}
	assert.NotContains(t, html, "speech 2<")
	assert.NotContains(t, html, "speech 1<")
	assert.Contains(t, html, "Page 1 of 2")

	// votes newest first
	i15 := strings.Index(html, "#15")
	i12 := strings.Index(html, "#12")
	i10 := strings.Index(html, "#10")
	require.True(t, i15 > 0 && i12 > 0 && i10 > 0)
	assert.True(t, i15 < i12 && i12 < i10)
}

func TestBillDetailHistorical(t *testing.T) {
	f := newFixture()
	resp := f.get(t, "/bills/40-3/C-5/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Bill C-5 (Historical)")
}

func TestBillDetailNotFound(t *testing.T) {
	f := newFixture()
	assert.Equal(t, http.StatusNotFound, f.get(t, "/bills/41-1/C-999/").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/bills/41-1/C-999/?format=json").StatusCode)
}

func TestBillDetailFragment(t *testing.T) {
	f := newFixture()

	for _, h := range [][]string{
		{"X-Requested-With", "XMLHttpRequest"},
		{"HX-Request", "true"},
	} {
		resp := f.get(t, "/bills/41-1/C-10/?page=2", h...)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		html := body(t, resp)

		assert.NotContains(t, html, "<html")
		assert.Contains(t, html, "speech 2<")
		assert.Contains(t, html, "speech 1<")
		assert.NotContains(t, html, "speech 3<")
		assert.Contains(t, resp.Header.Get("Vary"), "X-Requested-With")
	}
}

func TestBillDetailJSON(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/bills/41-1/C-10/", "Accept", "application/json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Vary"), "Accept")

	doc := decode(t, resp)
	assert.Equal(t, "C-10", doc["number"])
	assert.Equal(t, "/bills/41-1/C-10/", doc["url"])
	assert.Equal(t, "2011-09-20", doc["introduced"])
	assert.Equal(t, true, doc["law"])
	assert.Equal(t, "House", doc["home_chamber"])
	assert.Equal(t, "/politicians/pierre-poilievre/", doc["sponsor_politician_url"])
	assert.Equal(t, "/politicians/roles/326/", doc["sponsor_politician_membership_url"])
	assert.Equal(t, map[string]any{"bills_url": "/bills/"}, doc["related"])
}

func TestBillListFilters(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/bills/?format=json&introduced__gt=2010-01-01")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	doc := decode(t, resp)

	objs := objects(t, doc)
	require.Len(t, objs, 2)
	for _, o := range objs {
		assert.NotEqual(t, "C-5", o["number"])
	}
	assert.Equal(t, map[string]any{"introduced__gt": "2010-01-01"}, doc["filters"])
	assert.NotContains(t, doc, "help")

	resp = f.get(t, "/bills/?format=json&private_member_bill=True")
	objs = objects(t, decode(t, resp))
	require.Len(t, objs, 1)
	assert.Equal(t, "C-311", objs[0]["number"])

	resp = f.get(t, "/bills/?format=json&sponsor_politician=pierre-poilievre")
	objs = objects(t, decode(t, resp))
	require.Len(t, objs, 1)
	assert.Equal(t, "C-10", objs[0]["number"])
}

func TestBillListHelpWithoutFilters(t *testing.T) {
	f := newFixture()

	doc := decode(t, f.get(t, "/bills/?format=json"))
	help, ok := doc["help"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, help, "introduced")
	assert.Contains(t, help, "sponsor_politician")

	pagination := doc["pagination"].(map[string]any)
	assert.Equal(t, float64(1), pagination["page"])
	assert.Nil(t, pagination["next_url"])
	assert.Len(t, objects(t, doc), 3)
}

func TestInvalidFilter(t *testing.T) {
	f := newFixture()

	tests := []struct {
		query string
		param string
	}{
		{"introduced__gt=yesterday", "introduced__gt"},
		{"colour=red", "colour"},
		{"session__gt=41-1", "session__gt"},
		{"introduced__between=2010-01-01", "introduced__between"},
		{"sponsor_politician=nobody", "sponsor_politician"},
	}
	for _, tt := range tests {
		resp := f.get(t, "/bills/?format=json&"+tt.query)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode, tt.query)
		doc := decode(t, resp)
		assert.Equal(t, tt.param, doc["parameter"])
		assert.Contains(t, doc["error"], tt.param)
	}
}

func TestBillSessionRedirectsStructuredClients(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/bills/41-1/", "Accept", "application/json")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/bills/?session=41-1", resp.Header.Get("Location"))

	resp = f.get(t, "/bills/41-1/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Bills for the 41st Parliament, 1st Session")
	assert.Contains(t, html, "C-311")
	assert.NotContains(t, html, "Old Business Act")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/bills/39-9/").StatusCode)
}

func TestBillIndexPage(t *testing.T) {
	f := newFixture()
	resp := f.get(t, "/bills/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Bills &amp; Votes")
	assert.Contains(t, html, "/bills/40-3/")
	assert.Contains(t, html, "Safe Streets and Communities Act")
}

func TestLegacyRedirects(t *testing.T) {
	f := newFixture()

	for i := 0; i < 2; i++ {
		resp := f.get(t, "/bills/1/")
		assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
		assert.Equal(t, "/bills/41-1/C-10/", resp.Header.Get("Location"))
		assert.Equal(t, "public, max-age=31536000", resp.Header.Get("Cache-Control"))
	}

	resp := f.get(t, "/votes/101/")
	assert.Equal(t, http.StatusMovedPermanently, resp.StatusCode)
	assert.Equal(t, "/votes/41-1/15/", resp.Header.Get("Location"))

	assert.Equal(t, http.StatusNotFound, f.get(t, "/bills/999/").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/votes/999/").StatusCode)
}

func TestVoteList(t *testing.T) {
	f := newFixture()

	doc := decode(t, f.get(t, "/votes/?format=json&session=41-1"))
	objs := objects(t, doc)
	require.Len(t, objs, 3)
	assert.Equal(t, float64(15), objs[0]["number"])
	assert.Equal(t, float64(12), objs[1]["number"])
	assert.Equal(t, float64(10), objs[2]["number"])
	assert.Equal(t, "/bills/41-1/C-10/", objs[0]["bill_url"])
	assert.Contains(t, doc["notes"], "divisions")

	objs = objects(t, decode(t, f.get(t, "/votes/?format=json&result=Failed")))
	require.Len(t, objs, 1)
	assert.Equal(t, float64(12), objs[0]["number"])
	assert.Equal(t, "Failed", objs[0]["result"])

	objs = objects(t, decode(t, f.get(t, "/votes/?format=json&"+url.Values{"bill": {"/bills/41-1/C-10/"}}.Encode())))
	assert.Len(t, objs, 3)

	objs = objects(t, decode(t, f.get(t, "/votes/?format=json&nay_total__gt=128&date__lte=2011-11-30")))
	require.Len(t, objs, 2)
	assert.Equal(t, float64(12), objs[0]["number"])
}

func TestVoteSession(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/votes/41-1/?format=json")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "/votes/?session=41-1", resp.Header.Get("Location"))

	resp = f.get(t, "/votes/40-3/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Votes for the 40th Parliament, 3rd Session")
	assert.Contains(t, html, "/votes/40-3/3/")
}

func TestVoteDetail(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/votes/41-1/15/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Vote #15 on December 5, 2011")
	assert.Contains(t, html, "Third reading")

	// ballots ordered by party, then family name
	iBrown := strings.Index(html, "Bob Brown")
	iPoilievre := strings.Index(html, "Pierre Poilievre")
	iAdams := strings.Index(html, "Anne Adams")
	iLayton := strings.Index(html, "Jack Layton")
	assert.True(t, iBrown < iPoilievre && iPoilievre < iAdams && iAdams < iLayton)
	assert.Contains(t, html, `<tr class="dissent">`)

	doc := decode(t, f.get(t, "/votes/41-1/15/?format=json"))
	assert.Equal(t, "Passed", doc["result"])
	related := doc["related"].(map[string]any)
	assert.Equal(t, "/votes/ballots/?vote=%2Fvotes%2F41-1%2F15%2F", related["ballots_url"])

	assert.Equal(t, http.StatusNotFound, f.get(t, "/votes/41-1/99/").StatusCode)
	assert.Equal(t, http.StatusNotFound, f.get(t, "/votes/41-1/99/?format=json").StatusCode)
}

func TestBallotList(t *testing.T) {
	f := newFixture()

	doc := decode(t, f.get(t, "/votes/ballots/?format=json&ballot=Y&dissent=True"))
	objs := objects(t, doc)
	require.Len(t, objs, 1)
	assert.Equal(t, "/politicians/anne-adams/", objs[0]["politician_url"])
	assert.Equal(t, "Yes", objs[0]["ballot"])
	assert.Equal(t, "/votes/41-1/15/", objs[0]["vote_url"])

	objs = objects(t, decode(t, f.get(t, "/votes/ballots/?format=json&"+
		url.Values{"vote": {"/votes/41-1/15/"}, "politician": {"/politicians/jack-layton/"}}.Encode())))
	require.Len(t, objs, 1)
	assert.Equal(t, "No", objs[0]["ballot"])
	assert.Equal(t, "/politicians/roles/301/", objs[0]["politician_membership_url"])

	resp := f.get(t, "/votes/ballots/?format=json&vote=/votes/41-1/fifteen/")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "vote", decode(t, resp)["parameter"])
}

func TestBallotListBrowsable(t *testing.T) {
	f := newFixture()
	resp := f.get(t, "/votes/ballots/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	html := body(t, resp)
	assert.Contains(t, html, "Ballots")
	assert.Contains(t, html, "dissent")
}

func TestBillFeeds(t *testing.T) {
	f := newFixture()

	resp := f.get(t, "/bills/feed/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, rssContentType, resp.Header.Get("Content-Type"))
	rss := body(t, resp)
	assert.Contains(t, rss, "Bill C-311 (Private member&#39;s)")
	assert.Less(t, strings.Index(rss, "C-311"), strings.Index(rss, "C-10 "))

	resp = f.get(t, "/bills/1/feed/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	rss = body(t, resp)
	assert.Equal(t, 13, strings.Count(rss, "<item>"))
	assert.Contains(t, rss, "Vote #15 (Passed)")
	assert.Contains(t, rss, "Vote #10 (Passed)")
	assert.NotContains(t, rss, "statement-2/")

	assert.Equal(t, http.StatusNotFound, f.get(t, "/bills/999/feed/").StatusCode)
}
