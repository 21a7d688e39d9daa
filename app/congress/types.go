package congress

import "encoding/json"

// Wire types for the Congress.gov v3 API. List entries are decoded in
// two steps so the untouched upstream JSON can be kept as the stored
// item's raw snapshot.

type voteListResponse struct {
	Votes []json.RawMessage `json:"houseRollCallVotes"`
}

type voteEntry struct {
	Congress          int    `json:"congress"`
	SessionNumber     int    `json:"sessionNumber"`
	RollCallNumber    int    `json:"rollCallNumber"`
	StartDate         string `json:"startDate"`
	Question          string `json:"voteQuestion"`
	Description       string `json:"description"`
	Result            string `json:"result"`
	LegislationType   string `json:"legislationType"`
	LegislationNumber string `json:"legislationNumber"`
	URL               string `json:"url"`
}

type billListResponse struct {
	Bills []json.RawMessage `json:"bills"`
}

type billEntry struct {
	Congress     int    `json:"congress"`
	Type         string `json:"type"`
	Number       string `json:"number"`
	Title        string `json:"title"`
	LatestAction struct {
		ActionDate string `json:"actionDate"`
		Text       string `json:"text"`
	} `json:"latestAction"`
	URL string `json:"url"`
}

type recordListResponse struct {
	Issues []recordIssue `json:"dailyCongressionalRecord"`
}

type recordIssue struct {
	VolumeNumber string `json:"volumeNumber"`
	IssueNumber  string `json:"issueNumber"`
	IssueDate    string `json:"issueDate"`
	Congress     int    `json:"congress"`
}

type articlesResponse struct {
	Articles []articleSection `json:"articles"`
}

type articleSection struct {
	Name            string            `json:"name"`
	SectionArticles []json.RawMessage `json:"sectionArticles"`
}

type article struct {
	GranuleID string `json:"granuleId"`
	Title     string `json:"title"`
	Speaker   string `json:"speaker"`
	URL       string `json:"url"`
}
