package main

import (
	"context"
	"errors"
	"flag"
	"log"

	"github.com/shopspring/decimal"

	"github.com/safar/sweet-shop/internal/auth"
	"github.com/safar/sweet-shop/internal/config"
	"github.com/safar/sweet-shop/internal/database"
	"github.com/safar/sweet-shop/internal/models"
	"github.com/safar/sweet-shop/internal/store"
)

// seedSweets is the initial catalog.
var seedSweets = []store.SweetParams{
	{Name: "Chocolate Fudge", Category: "Fudge", Price: decimal.NewFromFloat(3.50), Quantity: 50, Description: "Rich and creamy chocolate fudge."},
	{Name: "Strawberry Bonbons", Category: "Hard Candy", Price: decimal.NewFromFloat(2.00), Quantity: 100, Description: "Classic strawberry flavored bonbons."},
	{Name: "Gummy Bears", Category: "Gummies", Price: decimal.NewFromFloat(1.50), Quantity: 200, Description: "Assorted fruit flavored gummy bears."},
	{Name: "Lemon Sherbets", Category: "Hard Candy", Price: decimal.NewFromFloat(2.20), Quantity: 80, Description: "Zesty lemon sherbets with a fizzy center."},
	{Name: "Dark Chocolate Truffles", Category: "Chocolate", Price: decimal.NewFromFloat(5.00), Quantity: 30, Description: "Luxury dark chocolate truffles."},
	{Name: "Mint Humbugs", Category: "Hard Candy", Price: decimal.NewFromFloat(1.80), Quantity: 120, Description: "Traditional mint flavored striped sweets."},
	{Name: "Jelly Beans", Category: "Gummies", Price: decimal.NewFromFloat(2.50), Quantity: 150, Description: "Colorful jelly beans in various flavors."},
	{Name: "Caramel Chews", Category: "Toffee", Price: decimal.NewFromFloat(2.00), Quantity: 90, Description: "Soft and chewy caramel candies."},
}

func main() {
	var adminEmail, adminPassword string
	var adminOnly bool

	flag.StringVar(&adminEmail, "admin-email", "admin@sweetshop.local", "admin user email")
	flag.StringVar(&adminPassword, "admin-password", "admin123", "admin user password")
	flag.BoolVar(&adminOnly, "admin-only", false, "create the admin user and skip the catalog")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	st := store.New(db)

	hash, err := auth.HashPassword(adminPassword, cfg.Auth.BcryptCost)
	if err != nil {
		log.Fatalf("Hash admin password: %v", err)
	}

	admin, err := st.CreateUser(ctx, adminEmail, hash, models.RoleAdmin)
	switch {
	case err == nil:
		log.Printf("Admin user created: %s", admin.Email)
	case errors.Is(err, database.ErrEmailTaken):
		log.Printf("Admin user already exists: %s", adminEmail)
	default:
		log.Fatalf("Create admin user: %v", err)
	}

	if adminOnly {
		return
	}

	for _, params := range seedSweets {
		sweet, err := st.CreateSweet(ctx, params)
		if err != nil {
			log.Fatalf("Create sweet %q: %v", params.Name, err)
		}
		log.Printf("Created sweet %d: %s", sweet.ID, sweet.Name)
	}

	log.Println("Seeding finished")
}
