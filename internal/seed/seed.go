// Package seed loads sample catalog data on startup.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/abelikov/gocatalog/internal/service"
	"github.com/shopspring/decimal"
)

type sample struct {
	name        string
	description string
	price       string
	quantity    int32
}

var samples = []sample{
	{"Laptop", "High-performance laptop with 16GB RAM and 512GB SSD", "1299.99", 50},
	{"Smartphone", "Latest smartphone with advanced camera and 5G connectivity", "799.99", 100},
	{"Wireless Headphones", "Premium wireless headphones with noise cancellation", "299.99", 75},
	{"Gaming Mouse", "High-precision gaming mouse with RGB lighting", "89.99", 200},
	{"Mechanical Keyboard", "Mechanical keyboard with Cherry MX switches", "149.99", 120},
	{"Monitor", "27-inch 4K UHD monitor", "399.99", 60},
	{"External SSD", "1TB portable SSD", "179.99", 80},
	{"Webcam", "1080p HD webcam for video conferencing", "69.99", 150},
	{"Bluetooth Speaker", "Portable Bluetooth speaker with deep bass", "49.99", 90},
	{"Smartwatch", "Fitness smartwatch with heart rate monitor", "199.99", 110},
	{"Tablet", "10-inch tablet with stylus support", "329.99", 70},
	{"Router", "Wi-Fi 6 router with high-speed connectivity", "129.99", 85},
	{"Printer", "Wireless color printer", "149.99", 40},
	{"Desk Lamp", "LED desk lamp with adjustable brightness", "39.99", 130},
	{"External HDD", "2TB external hard drive", "89.99", 75},
	{"Microphone", "USB condenser microphone for streaming", "99.99", 65},
	{"Graphics Tablet", "Drawing tablet with pressure-sensitive pen", "249.99", 55},
	{"Smart Home Hub", "Voice-controlled smart home hub", "129.99", 40},
	{"VR Headset", "Virtual reality headset for immersive gaming", "399.99", 30},
	{"Fitness Tracker", "Waterproof fitness tracker with sleep monitoring", "79.99", 100},
}

// Load creates the sample products through the catalog service when the
// catalog is empty. A non-empty catalog is left untouched.
func Load(ctx context.Context, svc service.CatalogService, logger *slog.Logger) error {
	page, err := svc.List(ctx, 0, 1, "id", "asc")
	if err != nil {
		return fmt.Errorf("failed to check for existing data: %w", err)
	}
	if page.TotalElements > 0 {
		logger.Info("Data already exists, skipping initialization", "count", page.TotalElements)
		return nil
	}

	logger.Info("Initializing sample data")
	for _, s := range samples {
		price, err := decimal.NewFromString(s.price)
		if err != nil {
			return fmt.Errorf("invalid sample price %q: %w", s.price, err)
		}
		created, err := svc.Create(ctx, service.ProductInput{
			Name:        s.name,
			Description: s.description,
			Price:       price,
			Quantity:    s.quantity,
		})
		if err != nil {
			return fmt.Errorf("failed to seed product %q: %w", s.name, err)
		}
		logger.Debug("Seeded product", "ID", created.ID, "Name", created.Name)
	}
	logger.Info("Sample data initialized", "count", len(samples))
	return nil
}
