// Command smoke walks a deployed instance through the happy path:
// register, login, create a session, run one chat turn and print the
// event stream. Useful after deploys and for manual approval testing.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	baseURL  = flag.String("base-url", "http://localhost:3000", "API base URL")
	email    = flag.String("email", "", "account email (default: generated)")
	password = flag.String("password", "smoke-test-password", "account password")
	message  = flag.String("message", "Find me remote Go backend jobs", "chat message to send")
	approve  = flag.Bool("approve", true, "approve the first tool confirmation")
)

var (
	header  = color.New(color.FgCyan, color.Bold)
	okMark  = color.New(color.FgGreen)
	errMark = color.New(color.FgRed, color.Bold)
	dim     = color.New(color.Faint)
)

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type client struct {
	http  *http.Client
	base  string
	token string
}

func main() {
	flag.Parse()

	c := &client{
		http: &http.Client{Timeout: 5 * time.Minute},
		base: strings.TrimRight(*baseURL, "/"),
	}

	addr := *email
	if addr == "" {
		addr = fmt.Sprintf("smoke-%d@example.com", time.Now().Unix())
	}

	header.Println("== Register ==")
	_, err := c.post("/api/auth/register", map[string]string{
		"full_name": "Smoke Test",
		"email":     addr,
		"password":  *password,
	})
	if err != nil {
		// Re-runs against the same account are fine.
		dim.Printf("register: %v (continuing, account may exist)\n", err)
	} else {
		okMark.Println("registered", addr)
	}

	header.Println("== Login ==")
	loginData, err := c.post("/api/auth/login", map[string]string{
		"email":    addr,
		"password": *password,
	})
	if err != nil {
		log.Fatal(errMark.Sprintf("login failed: %v", err))
	}
	var login struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(loginData, &login); err != nil || login.AccessToken == "" {
		log.Fatal(errMark.Sprint("login response missing access token"))
	}
	c.token = login.AccessToken
	okMark.Println("logged in")

	header.Println("== Create session ==")
	sessionData, err := c.post("/api/chat/v1/sessions", map[string]string{"title": "smoke run"})
	if err != nil {
		log.Fatal(errMark.Sprintf("create session failed: %v", err))
	}
	var session struct {
		Id       string `json:"id"`
		ThreadId string `json:"thread_id"`
	}
	if err := json.Unmarshal(sessionData, &session); err != nil {
		log.Fatal(errMark.Sprintf("bad session response: %v", err))
	}
	okMark.Println("session", session.Id, "thread", session.ThreadId)

	header.Println("== Stream chat ==")
	interrupted := c.stream("/api/chat/v1/stream", map[string]interface{}{
		"chat_session_id": session.Id,
		"chat":            *message,
	})

	if interrupted && *approve {
		header.Println("== Confirm ==")
		c.stream("/api/chat/v1/confirm", map[string]interface{}{
			"chat_session_id": session.Id,
			"approved":        true,
		})
	}

	okMark.Println("smoke run finished")
}

func (c *client) post(path string, body interface{}) (json.RawMessage, error) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var api apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&api); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if !api.Success {
		return nil, fmt.Errorf("%s: %s", path, api.Message)
	}
	return api.Data, nil
}

// stream posts the request and prints SSE events until the stream
// closes. Returns true if the run stopped on a confirmation request.
func (c *client) stream(path string, body interface{}) (interrupted bool) {
	payload, _ := json.Marshal(body)
	req, err := http.NewRequest(http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		log.Fatal(errMark.Sprintf("stream request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		log.Fatal(errMark.Sprintf("stream failed: %v", err))
	}
	defer resp.Body.Close()

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		var ev struct {
			Type    string `json:"type"`
			Message string `json:"message"`
			Event   string `json:"event"`
			Label   string `json:"label"`
			Content string `json:"content"`
			Error   string `json:"error"`
		}
		if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data: ")), &ev); err != nil {
			dim.Println(line)
			continue
		}
		switch ev.Type {
		case "status":
			dim.Println("status:", ev.Message)
		case "agent_event":
			dim.Printf("agent: %s %s\n", ev.Event, ev.Label)
		case "text":
			fmt.Println(ev.Content)
		case "confirmation":
			color.Yellow("confirmation needed: %s", ev.Label)
			interrupted = true
		case "done":
			okMark.Println("done")
		case "error":
			errMark.Println("error:", ev.Error)
		}
	}
	return interrupted
}
