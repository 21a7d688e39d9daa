package congress

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"congresswire/app/database"
	"congresswire/app/retry"
)

func testDate(t *testing.T, value string) time.Time {
	t.Helper()
	d, err := time.Parse(database.DateLayout, value)
	if err != nil {
		t.Fatal(err)
	}
	return d
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(server.URL, "test-key", "congresswire-test")
}

func TestListActivity_Votes(t *testing.T) {
	votesJSON := `{
		"houseRollCallVotes": [
			{
				"congress": 119,
				"sessionNumber": 1,
				"rollCallNumber": 123,
				"startDate": "2025-09-08T18:56:00-04:00",
				"voteQuestion": "On Passage",
				"result": "Passed",
				"legislationType": "HR",
				"legislationNumber": "2988",
				"url": "https://api.congress.gov/v3/house-vote/119/123"
			},
			{
				"congress": 119,
				"sessionNumber": 1,
				"rollCallNumber": 122,
				"startDate": "2025-09-05T12:00:00-04:00",
				"voteQuestion": "On Agreeing to the Resolution",
				"result": "Agreed to"
			}
		]
	}`

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/house-vote/119" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_key") != "test-key" {
			t.Error("Missing api_key query parameter")
		}
		fmt.Fprint(w, votesJSON)
	}))

	records, err := client.ListActivity(context.Background(), database.KindVote, testDate(t, "2025-09-08"))
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 1 {
		t.Fatalf("Expected only the matching-date vote, got %d records", len(records))
	}

	record := records[0]
	if record.NaturalKey != "119-1-house-123" {
		t.Errorf("Unexpected natural key: %q", record.NaturalKey)
	}
	if record.Payload.Title != "On Passage: HR 2988" {
		t.Errorf("Unexpected title: %q", record.Payload.Title)
	}
	if record.Payload.Result != "Passed" {
		t.Errorf("Unexpected result: %q", record.Payload.Result)
	}
	if !strings.Contains(record.Payload.RawData, "rollCallNumber") {
		t.Error("Raw upstream JSON should be preserved")
	}
}

func TestListActivity_VotesPagination(t *testing.T) {
	total := pageSize + 3
	day := "2025-09-08"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

		var entries []string
		for i := offset; i < total && i < offset+pageSize; i++ {
			entries = append(entries, fmt.Sprintf(
				`{"congress":119,"sessionNumber":1,"rollCallNumber":%d,"startDate":"%sT10:00:00-04:00","voteQuestion":"On Passage","result":"Passed"}`,
				i+1, day))
		}
		fmt.Fprintf(w, `{"houseRollCallVotes":[%s]}`, strings.Join(entries, ","))
	}))

	records, err := client.ListActivity(context.Background(), database.KindVote, testDate(t, day))
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != total {
		t.Errorf("Expected %d records across pages, got %d", total, len(records))
	}
}

func TestNormalizeVoteResult(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Passed", "Passed"},
		{"Bill Passed", "Passed"},
		{"Failed", "Failed"},
		{"Agreed to", "Agreed to"},
		{"Motion Rejected", "Rejected"},
		{"Present", "Present"},
	}
	for _, tc := range cases {
		if got := normalizeVoteResult(tc.in); got != tc.want {
			t.Errorf("normalizeVoteResult(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestListActivity_Bills(t *testing.T) {
	billsJSON := `{
		"bills": [
			{
				"congress": 119,
				"type": "HR",
				"number": "2988",
				"title": "Example Act",
				"latestAction": {"actionDate": "2025-09-07", "text": "Referred to committee"},
				"url": "https://api.congress.gov/v3/bill/119/hr/2988"
			},
			{
				"congress": 119,
				"type": "S",
				"number": "15",
				"latestAction": {"text": "Introduced"}
			}
		]
	}`

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bill/119" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("fromDateTime") != "2025-09-08T00:00:00Z" {
			t.Errorf("Unexpected fromDateTime: %s", r.URL.Query().Get("fromDateTime"))
		}
		fmt.Fprint(w, billsJSON)
	}))

	records, err := client.ListActivity(context.Background(), database.KindBill, testDate(t, "2025-09-08"))
	if err != nil {
		t.Fatal(err)
	}

	if len(records) != 2 {
		t.Fatalf("Expected 2 bill records, got %d", len(records))
	}

	first := records[0]
	if first.NaturalKey != "119-hr-2988" {
		t.Errorf("Unexpected natural key: %q", first.NaturalKey)
	}
	if first.Payload.Title != "HR 2988: Example Act" {
		t.Errorf("Unexpected title: %q", first.Payload.Title)
	}
	if first.Payload.Result != "Referred to committee" {
		t.Errorf("Unexpected latest action: %q", first.Payload.Result)
	}
	if first.ActivityDate.Format(database.DateLayout) != "2025-09-07" {
		t.Errorf("Activity date should follow the latest action, got %s", first.ActivityDate)
	}

	// Without an action date the fetch date stands in.
	second := records[1]
	if second.NaturalKey != "119-s-15" {
		t.Errorf("Unexpected natural key: %q", second.NaturalKey)
	}
	if second.ActivityDate.Format(database.DateLayout) != "2025-09-08" {
		t.Errorf("Missing action date should fall back to the target date, got %s", second.ActivityDate)
	}
	if second.Payload.Title != "S 15" {
		t.Errorf("Untitled bill should use its designation, got %q", second.Payload.Title)
	}
}

func TestListActivity_Speeches(t *testing.T) {
	issuesJSON := `{
		"dailyCongressionalRecord": [
			{"volumeNumber": "171", "issueNumber": "148", "issueDate": "2025-09-08T00:00:00Z", "congress": 119},
			{"volumeNumber": "171", "issueNumber": "147", "issueDate": "2025-09-05T00:00:00Z", "congress": 119}
		]
	}`
	articlesJSON := `{
		"articles": [
			{
				"name": "House",
				"sectionArticles": [
					{"granuleId": "CREC-2025-09-08-pt1-PgH4301", "title": "FARM SECURITY ACT", "speaker": "Mr. SMITH of Iowa"},
					{"title": "PRAYER"}
				]
			},
			{
				"name": "Senate",
				"sectionArticles": [
					{"granuleId": "CREC-2025-09-08-pt1-PgS5120", "title": "CLIMATE RESILIENCE", "speaker": "Ms. JONES"}
				]
			}
		]
	}`

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/daily-congressional-record":
			fmt.Fprint(w, issuesJSON)
		case "/daily-congressional-record/171/148/articles":
			fmt.Fprint(w, articlesJSON)
		default:
			t.Errorf("Unexpected path: %s", r.URL.Path)
			http.NotFound(w, r)
		}
	}))

	records, err := client.ListActivity(context.Background(), database.KindSpeech, testDate(t, "2025-09-08"))
	if err != nil {
		t.Fatal(err)
	}

	// The granule-less article is dropped.
	if len(records) != 2 {
		t.Fatalf("Expected 2 speech records, got %d", len(records))
	}
	if records[0].NaturalKey != "CREC-2025-09-08-pt1-PgH4301" {
		t.Errorf("Unexpected natural key: %q", records[0].NaturalKey)
	}
	if records[0].Payload.Sponsor != "Mr. SMITH of Iowa" {
		t.Errorf("Unexpected speaker: %q", records[0].Payload.Sponsor)
	}
	if records[1].Payload.Title != "CLIMATE RESILIENCE" {
		t.Errorf("Unexpected title: %q", records[1].Payload.Title)
	}
}

func TestListActivity_NoRecordIssue(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	records, err := client.ListActivity(context.Background(), database.KindSpeech, testDate(t, "2025-09-08"))
	if err != nil {
		t.Fatalf("A missing Record issue is not an error, got %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected no records, got %d", len(records))
	}
}

func TestGetJSON_FailureClassification(t *testing.T) {
	cases := []struct {
		status int
		want   retry.Kind
	}{
		{http.StatusTooManyRequests, retry.KindTransient},
		{http.StatusInternalServerError, retry.KindTransient},
		{http.StatusBadRequest, retry.KindPermanent},
		{http.StatusNotFound, retry.KindPermanent},
	}

	for _, tc := range cases {
		status := tc.status
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

		_, err := client.ListActivity(context.Background(), database.KindVote, testDate(t, "2025-09-08"))
		if err == nil {
			t.Fatalf("Status %d should fail", status)
		}
		if got := retry.KindOf(err); got != tc.want {
			t.Errorf("Status %d classified as %s, want %s", status, got, tc.want)
		}
	}
}

func TestGetJSON_MissingAPIKey(t *testing.T) {
	client := NewClient("http://unused", "", "congresswire-test")

	_, err := client.ListActivity(context.Background(), database.KindVote, testDate(t, "2025-09-08"))
	if err == nil {
		t.Fatal("Expected an error without an API key")
	}
	if !retry.IsPermanent(err) {
		t.Errorf("Missing API key should be permanent, got %v", err)
	}
}

func TestCongressForDate(t *testing.T) {
	cases := []struct {
		date string
		want int
	}{
		{"2025-01-03", 119},
		{"2026-06-01", 119},
		{"2023-02-01", 118},
		{"2024-12-31", 118},
		{"2022-05-01", 117},
	}
	for _, tc := range cases {
		if got := CongressForDate(testDate(t, tc.date)); got != tc.want {
			t.Errorf("CongressForDate(%s) = %d, want %d", tc.date, got, tc.want)
		}
	}
}
