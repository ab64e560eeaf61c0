// Command smoke drives one request through the full lifecycle against a
// running API: draft, add an item, submit, approve, fulfill. It exits
// non-zero on the first unexpected response, making it usable as a deploy
// gate.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type request struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type actionResult struct {
	Request request `json:"request"`
}

func main() {
	var (
		baseURL   string
		token     string
		adminTok  string
		productID string
		quantity  int
		timeout   time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&token, "token", "", "Bearer token for the requesting user")
	flag.StringVar(&adminTok, "admin-token", "", "Bearer token for the approving admin")
	flag.StringVar(&productID, "product", "", "Product ID to request")
	flag.IntVar(&quantity, "quantity", 1, "Quantity to request")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	if token == "" || adminTok == "" || productID == "" {
		log.Fatal("-token, -admin-token and -product are required")
	}

	c := &client{base: baseURL, http: &http.Client{Timeout: timeout}}

	var created request
	err := c.do("POST", "/requests", token, map[string]interface{}{
		"item": map[string]interface{}{"product_id": productID, "quantity": quantity},
		"note": "smoke run",
	}, &created)
	if err != nil {
		log.Fatalf("create draft: %v", err)
	}
	log.Printf("draft created: %s", created.ID)

	var submitted request
	if err := c.do("POST", "/requests/"+created.ID+"/submit", token, nil, &submitted); err != nil {
		log.Fatalf("submit: %v", err)
	}
	if submitted.Status != "PENDING" {
		log.Fatalf("unexpected status after submit: %s", submitted.Status)
	}
	log.Printf("submitted: %s", submitted.Status)

	var approved actionResult
	err = c.do("POST", "/requests/"+created.ID+"/actions", adminTok, map[string]interface{}{
		"action": "approve",
	}, &approved)
	if err != nil {
		log.Fatalf("approve: %v", err)
	}
	if approved.Request.Status != "APPROVED" {
		log.Fatalf("unexpected status after approve: %s", approved.Request.Status)
	}
	log.Printf("approved: %s", approved.Request.Status)

	var fulfilled request
	if err := c.do("POST", "/requests/"+created.ID+"/fulfill", adminTok, nil, &fulfilled); err != nil {
		log.Fatalf("fulfill: %v", err)
	}
	if fulfilled.Status != "COMPLETED" {
		log.Fatalf("unexpected status after fulfill: %s", fulfilled.Status)
	}
	log.Printf("completed: request %s done", created.ID)
}

type client struct {
	base string
	http *http.Client
}

func (c *client) do(method, path, token string, payload interface{}, out interface{}) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, c.base+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("status %d: unreadable body: %s", resp.StatusCode, raw)
	}
	if env.Error != nil {
		return fmt.Errorf("status %d: %s: %s", resp.StatusCode, env.Error.Code, env.Error.Message)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	if out != nil && len(env.Data) > 0 {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}
