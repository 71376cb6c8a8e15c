//go:build ignore

package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

// generateSampleCatalog writes a product catalogue in the storefront data
// format, plain for local runs and gzipped for upload under the S3 prefix.
// IDs mix numbers and strings the way the live data does.
func main() {
	dataDir := "data/catalog"

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	products := []model.Product{
		sample("1", "Cotton Panjabi", "men", "1450"),
		sample("2", "Denim Jacket", "men", "2890.50"),
		sample("3", "Jamdani Saree", "women", "7800"),
		sample("4", "Printed Kurti", "women", "1199.99"),
		sample("kids-01", "Kids Hoodie", "kids", "950"),
		sample("acc-07", "Leather Belt", "accessories", "650.49"),
	}

	data, err := json.MarshalIndent(products, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode catalogue: %v", err)
	}

	if err := os.WriteFile("data.json", data, 0644); err != nil {
		log.Fatalf("Failed to write data.json: %v", err)
	}
	fmt.Printf("Created data.json with %d products\n", len(products))

	gzPath := filepath.Join(dataDir, "data.json.gz")
	if err := writeGzip(gzPath, data); err != nil {
		log.Fatalf("Failed to create %s: %v", gzPath, err)
	}
	fmt.Printf("Created %s (upload to s3://$S3_BUCKET/$S3_PREFIX, set CATALOG_PATH=data.json.gz)\n", gzPath)
}

func sample(id, name, category, price string) model.Product {
	return model.Product{
		ID:       model.ItemID(id),
		Name:     name,
		Category: category,
		Price:    model.Price{NewPrice: decimal.RequireFromString(price)},
		Img:      model.Image{SingleImage: "/images/products/" + id + ".jpg"},
	}
}

func writeGzip(filePath string, data []byte) error {
	file, err := os.Create(filePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	if _, err := gzipWriter.Write(data); err != nil {
		return fmt.Errorf("failed to write catalogue: %w", err)
	}

	return nil
}
