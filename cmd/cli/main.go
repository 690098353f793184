package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"mechsathi/pkg/models"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

type workshopListResponse struct {
	Total int               `json:"total"`
	Items []models.Workshop `json:"items"`
}

type reviewListResponse struct {
	Total int             `json:"total"`
	Items []models.Review `json:"items"`
}

type locationListResponse struct {
	Total int                    `json:"total"`
	Items []models.SavedLocation `json:"items"`
}

func main() {
	global := flag.NewFlagSet("mechsathi", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 15 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "workshops":
		handleWorkshops(ctx, client, *baseURL, sub, args[2:])
	case "locations":
		handleLocations(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "reviews":
		handleReviews(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "assist":
		handleAssist(ctx, client, *baseURL, sub, args[2:])
	case "watch":
		handleWatch(*baseURL, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" {
			log.Fatal("email is required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		name := fs.String("name", "", "full name")
		email := fs.String("email", "", "email address")
		phone := fs.String("phone", "", "phone number")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *name == "" || *email == "" {
			log.Fatal("name and email are required")
		}

		payload := map[string]string{
			"name": *name, "email": *email, "phone": *phone, "password": *password,
		}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: mechsathi auth <login|register|logout>")
	}
}

func handleWorkshops(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "list":
		var resp workshopListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/workshops", "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printWorkshops(resp.Items)
	case "near":
		fs := flag.NewFlagSet("workshops near", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		radius := fs.Float64("radius", 50, "search radius (squared degrees)")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/workshops/nearby")
		if err != nil {
			log.Fatalf("url: %v", err)
		}
		qv := u.Query()
		qv.Set("lat", fmt.Sprintf("%g", *lat))
		qv.Set("lng", fmt.Sprintf("%g", *lng))
		qv.Set("radius", fmt.Sprintf("%g", *radius))
		u.RawQuery = qv.Encode()

		var resp workshopListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("nearby failed: %v", err)
		}
		printWorkshops(resp.Items)
	case "search":
		fs := flag.NewFlagSet("workshops search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		_ = fs.Parse(args)

		if *query == "" {
			log.Fatal("q is required")
		}

		u, err := url.Parse(baseURL + "/workshops/search")
		if err != nil {
			log.Fatalf("url: %v", err)
		}
		qv := u.Query()
		qv.Set("q", *query)
		u.RawQuery = qv.Encode()

		var resp workshopListResponse
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printWorkshops(resp.Items)
	case "show":
		fs := flag.NewFlagSet("workshops show", flag.ExitOnError)
		id := fs.Int64("id", 0, "workshop id")
		_ = fs.Parse(args)

		if *id <= 0 {
			log.Fatal("id is required")
		}

		var resp map[string]any
		endpoint := fmt.Sprintf("%s/workshops/%d", baseURL, *id)
		if err := doJSON(ctx, client, http.MethodGet, endpoint, "", nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: mechsathi workshops <list|near|search|show>")
	}
}

func handleLocations(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "list":
		token := mustToken(tokenPath)
		var resp locationListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/locations", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp.Items)
	case "add":
		fs := flag.NewFlagSet("locations add", flag.ExitOnError)
		name := fs.String("name", "", "location name")
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		address := fs.String("address", "", "address")
		_ = fs.Parse(args)

		if *name == "" {
			log.Fatal("name is required")
		}

		token := mustToken(tokenPath)
		payload := map[string]any{
			"name": *name, "latitude": *lat, "longitude": *lng, "address": *address,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/locations", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "delete":
		fs := flag.NewFlagSet("locations delete", flag.ExitOnError)
		id := fs.Int64("id", 0, "saved location id")
		_ = fs.Parse(args)

		if *id <= 0 {
			log.Fatal("id is required")
		}

		token := mustToken(tokenPath)
		endpoint := fmt.Sprintf("%s/users/locations/%d", baseURL, *id)
		if err := doJSON(ctx, client, http.MethodDelete, endpoint, token, nil, nil); err != nil {
			log.Fatalf("delete failed: %v", err)
		}
		fmt.Println("deleted")
	default:
		log.Fatal("usage: mechsathi locations <list|add|delete>")
	}
}

func handleReviews(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "add":
		fs := flag.NewFlagSet("reviews add", flag.ExitOnError)
		workshopID := fs.Int64("workshop", 0, "workshop id")
		rating := fs.Int("rating", 0, "rating 1-5")
		comment := fs.String("comment", "", "comment")
		_ = fs.Parse(args)

		if *workshopID <= 0 {
			log.Fatal("workshop is required")
		}

		token := mustToken(tokenPath)
		payload := map[string]any{
			"workshop_id": *workshopID, "rating": *rating, "comment": *comment,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/users/reviews", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "mine":
		token := mustToken(tokenPath)
		var resp reviewListResponse
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/users/reviews", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp.Items)
	case "for-workshop":
		fs := flag.NewFlagSet("reviews for-workshop", flag.ExitOnError)
		id := fs.Int64("id", 0, "workshop id")
		_ = fs.Parse(args)

		if *id <= 0 {
			log.Fatal("id is required")
		}

		endpoint := fmt.Sprintf("%s/workshops/%d/reviews", baseURL, *id)
		var resp reviewListResponse
		if err := doJSON(ctx, client, http.MethodGet, endpoint, "", nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp.Items)
	default:
		log.Fatal("usage: mechsathi reviews <add|mine|for-workshop>")
	}
}

func handleAssist(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "emergency":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/assist/emergency", "", nil, &resp); err != nil {
			log.Fatalf("emergency lookup failed: %v", err)
		}
		printJSON(resp)
	case "navigate":
		fs := flag.NewFlagSet("assist navigate", flag.ExitOnError)
		lat := fs.Float64("lat", 0, "latitude")
		lng := fs.Float64("lng", 0, "longitude")
		label := fs.String("label", "", "destination label")
		_ = fs.Parse(args)

		u, err := url.Parse(baseURL + "/assist/navigate")
		if err != nil {
			log.Fatalf("url: %v", err)
		}
		qv := u.Query()
		qv.Set("lat", fmt.Sprintf("%g", *lat))
		qv.Set("lng", fmt.Sprintf("%g", *lng))
		if *label != "" {
			qv.Set("label", *label)
		}
		u.RawQuery = qv.Encode()

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u.String(), "", nil, &resp); err != nil {
			log.Fatalf("navigate failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: mechsathi assist <emergency|navigate>")
	}
}

func handleWatch(baseURL, sub string, args []string) {
	switch sub {
	case "ws", "":
		fs := flag.NewFlagSet("watch ws", flag.ExitOnError)
		wsURL := fs.String("ws", "", "WebSocket URL (defaults to /ws on API host)")
		_ = fs.Parse(args)

		endpoint := *wsURL
		if endpoint == "" {
			var err error
			endpoint, err = websocketURL(baseURL, "/ws")
			if err != nil {
				log.Fatalf("ws url: %v", err)
			}
		}
		if err := runWebSocket(endpoint); err != nil {
			log.Fatalf("watch failed: %v", err)
		}
	case "tcp":
		fs := flag.NewFlagSet("watch tcp", flag.ExitOnError)
		addr := fs.String("addr", "127.0.0.1:7070", "TCP event server address")
		pretty := fs.Bool("pretty", true, "pretty print JSON events")
		_ = fs.Parse(args)
		for {
			if err := runWatchTCP(*addr, *pretty); err != nil {
				log.Printf("[watch] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: mechsathi watch <ws|tcp>")
	}
}

func runWatchTCP(addr string, pretty bool) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	log.Printf("[watch] connected to %s", addr)
	reader := bufio.NewScanner(conn)
	for reader.Scan() {
		line := reader.Bytes()
		if !pretty {
			fmt.Println(string(line))
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal(line, &obj); err != nil {
			fmt.Println(string(line))
			continue
		}
		b, _ := json.MarshalIndent(obj, "", "  ")
		fmt.Println(string(b))
	}
	if err := reader.Err(); err != nil {
		return err
	}
	return os.ErrClosed
}

func runWebSocket(wsURL string) error {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[watch] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func printWorkshops(items []models.Workshop) {
	if len(items) == 0 {
		fmt.Println("no workshops found")
		return
	}
	for _, w := range items {
		open := w.Hours
		if w.Is24x7 {
			open = "24/7"
		}
		fmt.Printf("#%d %s - %s (%s)\n", w.ID, w.Name, w.Location, w.Highway)
		fmt.Printf("    rating %.1f | %s | %s\n", w.Rating, open, strings.Join(w.Services, ", "))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return err
	}
	return nil
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.mechsathi-token.json"
	}
	return filepath.Join(home, ".mechsathi", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("mechsathi <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  workshops list|near|search|show")
	fmt.Println("  locations list|add|delete")
	fmt.Println("  reviews add|mine|for-workshop")
	fmt.Println("  assist emergency|navigate")
	fmt.Println("  watch ws|tcp")
}
