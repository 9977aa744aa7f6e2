package seeds

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

func Setup(ctx context.Context, pool *pgxpool.Pool) error {
	rng := rand.New(rand.NewSource(42))

	// Truncate existing data before insert
	log.Println("[seed] truncating existing data")
	if _, err := pool.Exec(ctx, `
		TRUNCATE recommendation_runs, interactions, products RESTART IDENTITY CASCADE
	`); err != nil {
		return fmt.Errorf("truncate: %w", err)
	}

	log.Println("[seed] inserting products")
	productCount, err := seedProducts(ctx, pool, rng)
	if err != nil {
		return fmt.Errorf("seed products: %w", err)
	}

	log.Println("[seed] inserting interactions")
	if err := seedInteractions(ctx, pool, rng, productCount, 25, 1500); err != nil {
		return fmt.Errorf("seed interactions: %w", err)
	}

	log.Println("[seed] done")
	return nil
}

type productTemplate struct {
	category string
	ptype    string
	brands   []string
	names    []string
	tags     []string
	minPrice float64
	maxPrice float64
}

var templates = []productTemplate{
	{
		category: "crop-care",
		ptype:    "fertilizer",
		brands:   []string{"Bio", "GreenGrow", "TerraNova"},
		names:    []string{"NPK Mix", "Organic Compost", "Urea Blend", "Micronutrient Boost"},
		tags:     []string{"organic", "npk", "granular", "soil"},
		minPrice: 300, maxPrice: 900,
	},
	{
		category: "crop-care",
		ptype:    "pesticide",
		brands:   []string{"Bio", "CropShield", "TerraNova"},
		names:    []string{"Neem Extract", "Broad Spectrum Spray", "Fungal Guard", "Aphid Control"},
		tags:     []string{"organic", "spray", "protection"},
		minPrice: 250, maxPrice: 1200,
	},
	{
		category: "seeds",
		ptype:    "seed",
		brands:   []string{"GreenGrow", "SeedWorks", "AgriGold"},
		names:    []string{"Hybrid Tomato", "Wheat HD-2967", "Maize Sweet", "Mustard Bold"},
		tags:     []string{"hybrid", "high-yield", "certified"},
		minPrice: 80, maxPrice: 600,
	},
	{
		category: "irrigation",
		ptype:    "sprinkler",
		brands:   []string{"AquaFlow", "RainMaker"},
		names:    []string{"Rotary Sprinkler", "Micro Sprinkler Set", "Drip Kit"},
		tags:     []string{"water-saving", "field"},
		minPrice: 500, maxPrice: 4000,
	},
	{
		category: "irrigation",
		ptype:    "pump",
		brands:   []string{"AquaFlow", "PowerJet"},
		names:    []string{"Submersible Pump 1HP", "Booster Pump", "Solar Pump"},
		tags:     []string{"electric", "field"},
		minPrice: 3000, maxPrice: 25000,
	},
	{
		category: "tools",
		ptype:    "sprayer",
		brands:   []string{"CropShield", "FarmHand"},
		names:    []string{"Knapsack Sprayer 16L", "Battery Sprayer", "Hand Sprayer 2L"},
		tags:     []string{"spray", "manual"},
		minPrice: 200, maxPrice: 3500,
	},
}

func seedProducts(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand) (int, error) {
	count := 0
	for _, tpl := range templates {
		for _, name := range tpl.names {
			for _, brand := range tpl.brands {
				price := tpl.minPrice + rng.Float64()*(tpl.maxPrice-tpl.minPrice)
				tags := pickTags(rng, tpl.tags)
				createdAt := time.Now().AddDate(0, 0, -rng.Intn(180))

				_, err := pool.Exec(ctx,
					`INSERT INTO products (name, category_id, brand, price, tags, specs, active, created_at)
					VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)`,
					fmt.Sprintf("%s %s", brand, name), tpl.category, brand,
					float64(int(price)), tags,
					map[string]string{"type": tpl.ptype, "grade": pickGrade(rng)},
					createdAt,
				)
				if err != nil {
					return 0, fmt.Errorf("insert product %q: %w", name, err)
				}
				count++
			}
		}
	}
	log.Printf("[seed] %d products inserted", count)
	return count, nil
}

// seedInteractions generates a skewed interaction log: a few popular
// products collect most of the views, and each user leans on one or two
// categories so the personalization and collaborative paths have signal.
func seedInteractions(ctx context.Context, pool *pgxpool.Pool, rng *rand.Rand, productCount, userCount, total int) error {
	for i := 0; i < total; i++ {
		// Zipf-ish skew towards low product ids
		productID := int64(1 + rng.Intn(1+rng.Intn(productCount)))
		userID := int64(0)
		if rng.Float64() < 0.8 {
			userID = int64(1 + rng.Intn(userCount))
		}

		kind := "view"
		switch r := rng.Float64(); {
		case r < 0.10:
			kind = "purchase"
		case r < 0.25:
			kind = "add_to_cart"
		}

		createdAt := time.Now().Add(-time.Duration(rng.Intn(14*24)) * time.Hour)

		_, err := pool.Exec(ctx,
			`INSERT INTO interactions (user_id, product_id, kind, created_at)
			VALUES ($1, $2, $3, $4)`,
			userID, productID, kind, createdAt,
		)
		if err != nil {
			return fmt.Errorf("insert interaction: %w", err)
		}
	}
	log.Printf("[seed] %d interactions inserted", total)
	return nil
}

func pickTags(rng *rand.Rand, available []string) []string {
	n := 1 + rng.Intn(len(available))
	picked := make([]string, 0, n)
	for _, tag := range available {
		if len(picked) == n {
			break
		}
		if rng.Float64() < 0.7 {
			picked = append(picked, tag)
		}
	}
	if len(picked) == 0 {
		picked = append(picked, available[0])
	}
	return picked
}

func pickGrade(rng *rand.Rand) string {
	grades := []string{"standard", "premium", "pro"}
	return grades[rng.Intn(len(grades))]
}
