// Package main seeds a running content service. It restores every default
// segment through the admin API and can optionally replace the product
// catalogue with a generated one for load testing the storefront index.
//
// Run: go run ./scripts/seed -products 5000
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/slug"
)

// --------------------------------------------------------------------------
// Configuration helpers
// --------------------------------------------------------------------------

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --------------------------------------------------------------------------
// HTTP helpers
// --------------------------------------------------------------------------

var client = &http.Client{Timeout: 60 * time.Second}

func httpPost(url, token string, body any) (map[string]any, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal body: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result map[string]any
	if len(respBody) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return result, nil
}

func login(contentURL, username, password string) (string, error) {
	resp, err := httpPost(contentURL+"/api/v1/admin/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}
	data, _ := resp["data"].(map[string]any)
	token, _ := data["token"].(string)
	if token == "" {
		return "", fmt.Errorf("login response carried no token")
	}
	return token, nil
}

// --------------------------------------------------------------------------
// Catalogue generation
// --------------------------------------------------------------------------

type categoryDef struct {
	name   string
	group  string
	prefix string
}

var categories = []categoryDef{
	{name: "Jerseys", group: "Teamwear", prefix: "JER"},
	{name: "Shorts", group: "Teamwear", prefix: "SHO"},
	{name: "Tracksuits", group: "Teamwear", prefix: "TRK"},
	{name: "T-Shirts", group: "Casual", prefix: "TEE"},
	{name: "Hoodies", group: "Casual", prefix: "HOD"},
	{name: "Polos", group: "Corporate", prefix: "POL"},
	{name: "Caps", group: "Accessories", prefix: "CAP"},
}

var (
	adjectives = []string{"Pro", "Elite", "Classic", "Pulse", "Vapor", "Core", "Heritage", "Strike"}
	colors     = []struct{ name, hex string }{
		{"Black", "#000000"}, {"White", "#FFFFFF"}, {"Navy", "#1F2A44"}, {"Red", "#C62828"},
		{"Royal Blue", "#1E4BD2"}, {"Forest Green", "#1B5E20"}, {"Heather Grey", "#9E9E9E"},
	}
	sizes    = []string{"XS", "S", "M", "L", "XL", "2XL"}
	genders  = []string{"Men", "Women", "Unisex"}
	printing = []string{"Heat Transfer", "Embroidery", "Sublimation", "DTF Print", "Silk Screen"}
)

func pick[T any](rng *rand.Rand, from []T, n int) []T {
	idx := rng.Perm(len(from))[:n]
	out := make([]T, 0, n)
	for _, i := range idx {
		out = append(out, from[i])
	}
	return out
}

func generateProducts(n int, seed int64) []map[string]any {
	rng := rand.New(rand.NewSource(seed))
	products := make([]map[string]any, 0, n)

	for i := 0; i < n; i++ {
		cat := categories[i%len(categories)]
		name := fmt.Sprintf("%s %s %d", adjectives[rng.Intn(len(adjectives))], strings.TrimSuffix(cat.name, "s"), 100+i)

		var availableColors []map[string]string
		imageURLs := map[string][]string{}
		for _, c := range pick(rng, colors, 1+rng.Intn(4)) {
			availableColors = append(availableColors, map[string]string{"name": c.name, "hex": c.hex})
			imageURLs[c.name] = []string{
				fmt.Sprintf("https://cdn.example.com/products/%s/%s.jpg", slug.Generate(name), slug.Generate(c.name)),
			}
		}

		var availableSizes []map[string]any
		for _, s := range sizes[rng.Intn(2) : 3+rng.Intn(4)] {
			availableSizes = append(availableSizes, map[string]any{
				"name":   s,
				"width":  16 + rng.Intn(10),
				"length": 26 + rng.Intn(8),
			})
		}

		products = append(products, map[string]any{
			"id":                fmt.Sprintf("%s-%d", cat.prefix, 1000+i),
			"name":              name,
			"description":       fmt.Sprintf("Custom %s built for %s orders.", strings.ToLower(cat.name), strings.ToLower(cat.group)),
			"category":          cat.name,
			"categoryGroup":     cat.group,
			"gender":            genders[rng.Intn(len(genders))],
			"availableColors":   availableColors,
			"imageUrls":         imageURLs,
			"availableSizes":    availableSizes,
			"features":          []map[string]string{{"name": "Fabric", "value": "Recycled polyester"}},
			"supportedPrinting": pick(rng, printing, 1+rng.Intn(3)),
			"displayOrder":      i,
			"moq":               12 * (1 + rng.Intn(4)),
			"leadTimeWeeks":     2 + rng.Intn(4),
			"isFeatured":        rng.Intn(10) == 0,
			"isBestSeller":      rng.Intn(12) == 0,
			"isNew":             rng.Intn(8) == 0,
		})
	}
	return products
}

// --------------------------------------------------------------------------
// main
// --------------------------------------------------------------------------

func main() {
	log.SetFlags(log.Ltime | log.Lmsgprefix)
	log.SetPrefix("[seed] ")

	count := flag.Int("products", 0, "replace the catalogue with this many generated products (0 keeps the defaults)")
	randSeed := flag.Int64("seed", 42, "random seed for generated products")
	flag.Parse()

	contentURL := getEnv("CONTENT_URL", "http://localhost:8101")
	storefrontURL := getEnv("STOREFRONT_URL", "http://localhost:8102")

	// 1. Authenticate against the content service.
	log.Println("Logging in to content service...")
	token, err := login(contentURL, getEnv("ADMIN_USERNAME", "admin"), getEnv("ADMIN_PASSWORD", "password123"))
	if err != nil {
		log.Fatalf("login: %v", err)
	}

	// 2. Restore every segment to its default value.
	log.Println("Seeding default segments...")
	resp, err := httpPost(contentURL+"/api/v1/admin/seed", token, nil)
	if err != nil {
		log.Fatalf("seed defaults: %v", err)
	}
	if data, ok := resp["data"].(map[string]any); ok {
		log.Printf("Seeded %v segments.", data["seeded"])
	}

	// 3. Optionally replace the product catalogue.
	if *count > 0 {
		log.Printf("Generating %d products...", *count)
		products := generateProducts(*count, *randSeed)
		if _, err := httpPost(contentURL+"/api/v1/segments/products", token, products); err != nil {
			log.Fatalf("save products: %v", err)
		}
		log.Println("Product catalogue replaced.")
	}

	// 4. Ask the storefront to pick up the new content. Not fatal: the
	// storefront also refreshes from content change events.
	if _, err := httpPost(storefrontURL+"/api/v1/admin/content/reload", token, nil); err != nil {
		log.Printf("storefront reload skipped: %v", err)
	} else {
		log.Println("Storefront content reloaded.")
	}

	log.Println("Done.")
}
