package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

// Setup a test server with a fresh temp database
func setupTestServer(t *testing.T) (*httptest.Server, *http.Client) {
	t.Helper()

	db := newTestDB(t)

	cfg := &Config{
		DatabasePath:  "unused",
		SecretKey:     "test-secret-key",
		SessionMaxAge: 3600,
		TemplateDir:   "templates",
		StaticDir:     "static",
	}

	log := logrus.New()
	log.SetOutput(io.Discard)

	app := newApp(cfg, newCredentialStore(db), newEntryStore(db), log)
	ts := httptest.NewServer(app.routes())
	t.Cleanup(ts.Close)

	return ts, newClient(t)
}

// Client with its own cookie jar — follows redirects automatically
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatal(err)
	}
	return &http.Client{Jar: jar}
}

// Helper: read response body as string
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return string(body)
}

// Helper: register a user
func register(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/register", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// Helper: login
func login(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// Helper: register and login
func registerAndLogin(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) string {
	t.Helper()
	readBody(t, register(t, ts, client, username, password))
	return readBody(t, login(t, ts, client, username, password))
}

// Helper: logout
func doLogout(t *testing.T, ts *httptest.Server, client *http.Client) string {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/logout", url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	return readBody(t, resp)
}

// Helper: add an entry
func addEntry(t *testing.T, ts *httptest.Server, client *http.Client, content string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/entry", url.Values{
		"content": {content},
	})
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

// Helper: fetch the caller's entries as JSON
func listEntries(t *testing.T, ts *httptest.Server, client *http.Client) []Entry {
	t.Helper()
	resp, err := client.Get(ts.URL + "/entries")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /entries status %d", resp.StatusCode)
	}
	var entries []Entry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		t.Fatal(err)
	}
	return entries
}

func TestRegister(t *testing.T) {
	ts, client := setupTestServer(t)

	// Successful registration lands on the login page with a flash
	resp := register(t, ts, client, "user1", "default")
	body := readBody(t, resp)
	if !strings.Contains(body, "You were successfully registered and can log in now") {
		t.Error("Expected successful registration message")
	}

	// Duplicate username
	resp = register(t, ts, client, "user1", "default")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("duplicate register status %d, want 400", resp.StatusCode)
	}
	if body = readBody(t, resp); !strings.Contains(body, "The username is already taken") {
		t.Error("Expected 'username already taken' message")
	}

	// Empty username
	resp = register(t, ts, client, "", "default")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty username status %d, want 400", resp.StatusCode)
	}
	if body = readBody(t, resp); !strings.Contains(body, "You have to enter a username") {
		t.Error("Expected 'enter a username' message")
	}

	// Empty password
	resp = register(t, ts, client, "meh", "")
	if body = readBody(t, resp); !strings.Contains(body, "You have to enter a password") {
		t.Error("Expected 'enter a password' message")
	}
}

func TestLoginLogout(t *testing.T) {
	ts, client := setupTestServer(t)

	body := registerAndLogin(t, ts, client, "user1", "default")
	if !strings.Contains(body, "You were logged in") {
		t.Error("Expected 'logged in' message")
	}

	body = doLogout(t, ts, client)
	if !strings.Contains(body, "You were logged out") {
		t.Error("Expected 'logged out' message")
	}

	// Wrong password
	resp := login(t, ts, client, "user1", "wrongpassword")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password status %d, want 401", resp.StatusCode)
	}
	if body = readBody(t, resp); !strings.Contains(body, "Invalid password") {
		t.Error("Expected 'Invalid password' message")
	}

	// Wrong username
	resp = login(t, ts, client, "user2", "wrongpassword")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong username status %d, want 401", resp.StatusCode)
	}
	if body = readBody(t, resp); !strings.Contains(body, "Invalid username") {
		t.Error("Expected 'Invalid username' message")
	}
}

func TestEntryRecording(t *testing.T) {
	ts, client := setupTestServer(t)

	registerAndLogin(t, ts, client, "foo", "default")
	body := readBody(t, addEntry(t, ts, client, "test entry 1"))
	if !strings.Contains(body, "Your entry was recorded") {
		t.Error("Expected entry recorded flash")
	}
	if !strings.Contains(body, "test entry 1") {
		t.Error("Expected 'test entry 1' on journal page")
	}

	entries := listEntries(t, ts, client)
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Content != "test entry 1" {
		t.Errorf("content = %q", entries[0].Content)
	}
	if entries[0].Timestamp.IsZero() {
		t.Error("entry timestamp missing from JSON")
	}
}

func TestEmptyEntryRejected(t *testing.T) {
	ts, client := setupTestServer(t)

	registerAndLogin(t, ts, client, "foo", "default")
	resp := addEntry(t, ts, client, "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty entry status %d, want 400", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Entry content required") {
		t.Error("Expected 'Entry content required' message")
	}
}

func TestOwnershipAcrossUsers(t *testing.T) {
	ts, alice := setupTestServer(t)

	// alice writes an entry
	registerAndLogin(t, ts, alice, "alice", "pw1")
	readBody(t, addEntry(t, ts, alice, "hello"))

	aliceEntries := listEntries(t, ts, alice)
	if len(aliceEntries) != 1 || aliceEntries[0].Content != "hello" {
		t.Fatalf("alice's entries = %+v", aliceEntries)
	}
	entryID := aliceEntries[0].ID

	// bob sees an empty journal
	bob := newClient(t)
	registerAndLogin(t, ts, bob, "bob", "pw2")
	if bobEntries := listEntries(t, ts, bob); len(bobEntries) != 0 {
		t.Errorf("bob's entries = %+v, want none", bobEntries)
	}

	// bob cannot edit alice's entry
	resp, err := bob.PostForm(ts.URL+"/edit/"+itoa(entryID), url.Values{"content": {"hacked"}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-user edit status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// bob cannot view alice's edit page either
	resp, err = bob.Get(ts.URL + "/edit/" + itoa(entryID))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-user edit page status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// bob cannot delete alice's entry
	resp, err = bob.PostForm(ts.URL+"/entry/delete/"+itoa(entryID), url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-user delete status %d, want 404", resp.StatusCode)
	}
	resp.Body.Close()

	// alice's entry is unchanged
	aliceEntries = listEntries(t, ts, alice)
	if len(aliceEntries) != 1 || aliceEntries[0].Content != "hello" {
		t.Errorf("alice's entry changed: %+v", aliceEntries)
	}
}

func TestEditAndDelete(t *testing.T) {
	ts, client := setupTestServer(t)

	registerAndLogin(t, ts, client, "alice", "pw1")
	readBody(t, addEntry(t, ts, client, "draft"))
	entryID := listEntries(t, ts, client)[0].ID

	// Edit page shows the current content
	resp, err := client.Get(ts.URL + "/edit/" + itoa(entryID))
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "draft") {
		t.Error("Expected current content on edit page")
	}

	// Update the entry
	resp, err = client.PostForm(ts.URL+"/edit/"+itoa(entryID), url.Values{"content": {"final"}})
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "final") || !strings.Contains(body, "Your entry was updated") {
		t.Error("Expected updated content and flash on journal page")
	}

	// Empty update is rejected
	resp, err = client.PostForm(ts.URL+"/edit/"+itoa(entryID), url.Values{"content": {""}})
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty update status %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()

	// Delete the entry
	resp, err = client.PostForm(ts.URL+"/entry/delete/"+itoa(entryID), url.Values{})
	if err != nil {
		t.Fatal(err)
	}
	if body := readBody(t, resp); !strings.Contains(body, "Your entry was deleted") {
		t.Error("Expected delete flash")
	}
	if entries := listEntries(t, ts, client); len(entries) != 0 {
		t.Errorf("entries after delete = %+v", entries)
	}
}

func TestUnauthenticatedAccess(t *testing.T) {
	ts, client := setupTestServer(t)

	// Journal page bounces to login
	resp, err := client.Get(ts.URL + "/")
	if err != nil {
		t.Fatal(err)
	}
	if resp.Request.URL.Path != "/login" {
		t.Errorf("unauthenticated GET / landed on %s", resp.Request.URL.Path)
	}
	resp.Body.Close()

	// Mutations and the JSON endpoint answer 401
	for _, check := range []struct {
		name string
		do   func() (*http.Response, error)
	}{
		{"POST /entry", func() (*http.Response, error) {
			return client.PostForm(ts.URL+"/entry", url.Values{"content": {"x"}})
		}},
		{"GET /entries", func() (*http.Response, error) {
			return client.Get(ts.URL + "/entries")
		}},
		{"POST /edit/1", func() (*http.Response, error) {
			return client.PostForm(ts.URL+"/edit/1", url.Values{"content": {"x"}})
		}},
		{"POST /entry/delete/1", func() (*http.Response, error) {
			return client.PostForm(ts.URL+"/entry/delete/1", url.Values{})
		}},
	} {
		resp, err := check.do()
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != http.StatusUnauthorized {
			t.Errorf("%s status %d, want 401", check.name, resp.StatusCode)
		}
		resp.Body.Close()
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	ts, client := setupTestServer(t)

	registerAndLogin(t, ts, client, "alice", "pw1")
	readBody(t, addEntry(t, ts, client, "private"))
	doLogout(t, ts, client)

	// The old cookie no longer resolves to an identity
	resp, err := client.Get(ts.URL + "/entries")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("GET /entries after logout status %d, want 401", resp.StatusCode)
	}
	if body := readBody(t, resp); strings.Contains(body, "private") {
		t.Error("entry content leaked after logout")
	}

	// Logging out twice is harmless
	doLogout(t, ts, client)
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
