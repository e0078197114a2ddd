package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/storefront-backend/internal/customers"
	"github.com/angelmondragon/storefront-backend/internal/inventory"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
)

var (
	adjectives = []string{"Crisp", "Bold", "Quiet", "Bright", "Rustic", "Smart", "Cozy", "Swift", "Classic", "Urban"}
	nouns      = map[enums.GoodCategory][]string{
		enums.GoodCategoryFood:        {"Apples", "Coffee Beans", "Granola", "Olive Oil", "Honey"},
		enums.GoodCategoryClothes:     {"Jacket", "Sweater", "Jeans", "Scarf", "Sneakers"},
		enums.GoodCategoryAccessories: {"Wallet", "Sunglasses", "Watch", "Backpack", "Belt"},
		enums.GoodCategoryElectronics: {"Headphones", "Keyboard", "Charger", "Speaker", "Monitor"},
	}
	firstNames = []string{"Ada", "Grace", "Linus", "Ken", "Barbara", "Alan", "Edsger", "Margaret", "Dennis", "Frances"}
	lastNames  = []string{"Lovelace", "Hopper", "Torvalds", "Thompson", "Liskov", "Turing", "Dijkstra", "Hamilton", "Ritchie", "Allen"}
	streets    = []string{"Main St", "Oak Ave", "Pine Rd", "Elm St", "Maple Dr"}
)

// seeder posts generated demo data to the customer and inventory services.
type seeder struct {
	client       *http.Client
	customerURL  string
	inventoryURL string
	adminToken   string
	rng          *rand.Rand
	out          io.Writer
}

func newSeeder(opts options, adminToken string, out io.Writer) *seeder {
	return &seeder{
		client:       &http.Client{Timeout: opts.timeout},
		customerURL:  strings.TrimRight(opts.customerURL, "/"),
		inventoryURL: strings.TrimRight(opts.inventoryURL, "/"),
		adminToken:   adminToken,
		rng:          rand.New(rand.NewPCG(opts.seed, opts.seed^0x9e3779b97f4a7c15)),
		out:          out,
	}
}

func (s *seeder) fakeGood() inventory.CreateGoodInput {
	categories := enums.GoodCategories()
	category := categories[s.rng.IntN(len(categories))]
	names := nouns[category]
	cents := 100 + s.rng.Int64N(99900)
	return inventory.CreateGoodInput{
		Name:        adjectives[s.rng.IntN(len(adjectives))] + " " + names[s.rng.IntN(len(names))],
		Category:    category,
		Price:       decimal.New(cents, -2),
		Description: fmt.Sprintf("Demo %s item", category),
		Count:       s.rng.IntN(101),
	}
}

func (s *seeder) fakeCustomer(i int) customers.RegisterRequest {
	first := firstNames[s.rng.IntN(len(firstNames))]
	last := lastNames[s.rng.IntN(len(lastNames))]
	statuses := enums.MaritalStatuses()
	return customers.RegisterRequest{
		Username:      fmt.Sprintf("%s.%s%d", strings.ToLower(first), strings.ToLower(last), s.rng.IntN(1000)+i*1000),
		Name:          first + " " + last,
		Password:      fmt.Sprintf("demo-%08d", s.rng.IntN(100000000)),
		Age:           18 + s.rng.IntN(83),
		Address:       fmt.Sprintf("%d %s", 1+s.rng.IntN(9999), streets[s.rng.IntN(len(streets))]),
		Gender:        s.rng.IntN(2) == 1,
		MaritalStatus: statuses[s.rng.IntN(len(statuses))],
	}
}

func (s *seeder) seedGoods(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		good := s.fakeGood()
		var created inventory.GoodDTO
		if err := s.send(ctx, http.MethodPost, s.inventoryURL+"/inventory/add", s.adminToken, good, &created); err != nil {
			return fmt.Errorf("add good %q: %w", good.Name, err)
		}
		fmt.Fprintf(s.out, "good %d %s (%s) price=%s count=%d\n", created.ID, created.Name, created.Category, created.Price, created.Count)
	}
	return nil
}

// seedCustomers registers n customers and funds each wallet with up to maxBalance.
func (s *seeder) seedCustomers(ctx context.Context, n int, maxBalance decimal.Decimal) error {
	for i := 0; i < n; i++ {
		req := s.fakeCustomer(i)
		if err := s.send(ctx, http.MethodPost, s.customerURL+"/customer/auth/register", "", req, nil); err != nil {
			return fmt.Errorf("register %q: %w", req.Username, err)
		}

		balance := decimal.Zero
		if maxBalance.IsPositive() {
			balance = maxBalance.Mul(decimal.NewFromFloat(s.rng.Float64())).Round(2)
			body := map[string]any{"amount": balance}
			path := fmt.Sprintf("%s/customer/wallet/%s/charge", s.customerURL, req.Username)
			if err := s.send(ctx, http.MethodPut, path, "", body, nil); err != nil {
				return fmt.Errorf("fund %q: %w", req.Username, err)
			}
		}
		fmt.Fprintf(s.out, "customer %s password=%s balance=%s\n", req.Username, req.Password, balance.StringFixed(2))
	}
	return nil
}

func (s *seeder) send(ctx context.Context, method, url, token string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out != nil {
		return json.Unmarshal(raw, out)
	}
	return nil
}

type options struct {
	customerURL  string
	inventoryURL string
	jwtSecret    string
	jwtIssuer    string
	timeout      time.Duration
	seed         uint64
	goods        int
	customers    int
	maxBalance   string
}
