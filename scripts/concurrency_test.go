//go:build ignore
// +build ignore

// Package main is a manual concurrency stress test for the reserve endpoint.
//
// Usage:
//
//	go run ./scripts/concurrency_test.go <livro_id> <usuario_id> [usuario_id ...]
//
// Or through the environment:
//
//	BOOK_ID=5  USER_IDS=1,2,3,4  go run ./scripts/concurrency_test.go
//
// It reads the book's stock, fires one reserve per user at the same instant,
// then checks that the number of 201 answers never exceeds that stock and that
// the stock left over matches.
//
// The server must be running with the schema migrated, and the book and users must exist.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultServerURL = "http://localhost:8080"

type reserveResult struct {
	UserID     int64
	StatusCode int
	Message    string
	Err        error
}

var client = &http.Client{Timeout: 10 * time.Second}

func main() {
	serverURL := os.Getenv("SERVER_URL")
	if serverURL == "" {
		serverURL = defaultServerURL
	}

	bookArg := os.Getenv("BOOK_ID")
	var userArgs []string
	if env := os.Getenv("USER_IDS"); env != "" {
		userArgs = strings.Split(env, ",")
	}
	if args := os.Args[1:]; len(args) >= 1 {
		bookArg = args[0]
		if len(args) >= 2 {
			userArgs = args[1:]
		}
	}

	bookID, err := strconv.ParseInt(strings.TrimSpace(bookArg), 10, 64)
	if err != nil {
		log.Fatal("Usage: BOOK_ID=<id> USER_IDS=<u1,u2,...> go run ./scripts/concurrency_test.go\n" +
			"  or: go run ./scripts/concurrency_test.go <livro_id> <usuario_id> [usuario_id ...]")
	}
	userIDs := make([]int64, 0, len(userArgs))
	for _, raw := range userArgs {
		id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			log.Fatalf("bad user id %q: %v", raw, err)
		}
		userIDs = append(userIDs, id)
	}
	if len(userIDs) == 0 {
		log.Fatal("At least one user id must be provided via USER_IDS or positional args")
	}

	before, err := stockOf(serverURL, bookID)
	if err != nil {
		log.Fatalf("read stock: %v", err)
	}

	fmt.Printf("=== Reserve Concurrency Test ===\n")
	fmt.Printf("Server : %s\n", serverURL)
	fmt.Printf("Book   : %d (stock %d)\n", bookID, before)
	fmt.Printf("Users  : %d\n\n", len(userIDs))

	results := make([]reserveResult, len(userIDs))
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i, uid := range userIDs {
		wg.Add(1)
		go func(idx int, userID int64) {
			defer wg.Done()
			<-start
			results[idx] = reserve(serverURL, bookID, userID)
		}(i, uid)
	}

	fmt.Println("Firing all requests simultaneously...")
	close(start)
	wg.Wait()
	fmt.Println("All requests completed.")

	var reserved, unavailable, failures int
	for _, r := range results {
		switch {
		case r.Err != nil:
			failures++
			fmt.Printf("  [ERR ] user=%-6d err=%v\n", r.UserID, r.Err)
		case r.StatusCode == http.StatusCreated:
			reserved++
			fmt.Printf("  [RESV] user=%-6d status=%d\n", r.UserID, r.StatusCode)
		case r.StatusCode == http.StatusBadRequest:
			unavailable++
			fmt.Printf("  [FULL] user=%-6d status=%d %s\n", r.UserID, r.StatusCode, r.Message)
		default:
			failures++
			fmt.Printf("  [FAIL] user=%-6d status=%d %s\n", r.UserID, r.StatusCode, r.Message)
		}
	}

	after, err := stockOf(serverURL, bookID)
	if err != nil {
		log.Fatalf("read stock: %v", err)
	}

	fmt.Printf("\n--- Summary ---\n")
	fmt.Printf("Reserved    : %d\n", reserved)
	fmt.Printf("Unavailable : %d\n", unavailable)
	fmt.Printf("Failures    : %d\n", failures)
	fmt.Printf("Stock       : %d -> %d\n\n", before, after)

	ok := true
	if reserved > before {
		fmt.Printf("[BROKEN] %d reservations for %d copies\n", reserved, before)
		ok = false
	}
	if after != before-reserved {
		fmt.Printf("[BROKEN] stock %d after %d reservations, want %d\n", after, reserved, before-reserved)
		ok = false
	}
	if after < 0 {
		fmt.Printf("[BROKEN] negative stock %d\n", after)
		ok = false
	}
	if failures > 0 {
		fmt.Printf("[WARNING] %d request(s) failed, check server logs\n", failures)
		ok = false
	}
	if !ok {
		os.Exit(1)
	}
	fmt.Println("Invariant holds: no overbooking.")
}

func reserve(serverURL string, bookID, userID int64) reserveResult {
	url := fmt.Sprintf("%s/livros/%d/reservar", serverURL, bookID)
	body, _ := json.Marshal(map[string]int64{"usuarioId": userID})

	resp, err := client.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return reserveResult{UserID: userID, Err: err}
	}
	defer resp.Body.Close()

	var parsed struct {
		Mensagem string `json:"mensagem"`
		Erro     string `json:"erro"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return reserveResult{UserID: userID, StatusCode: resp.StatusCode, Err: fmt.Errorf("bad JSON: %w", err)}
	}
	msg := parsed.Mensagem
	if msg == "" {
		msg = parsed.Erro
	}
	return reserveResult{UserID: userID, StatusCode: resp.StatusCode, Message: msg}
}

func stockOf(serverURL string, bookID int64) (int, error) {
	resp, err := client.Get(fmt.Sprintf("%s/livros/%d", serverURL, bookID))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("GET /livros/%d: status %d", bookID, resp.StatusCode)
	}
	var book struct {
		Quantity int `json:"quantidade_estoque"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&book); err != nil {
		return 0, err
	}
	return book.Quantity, nil
}
