//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "storefront-api"
	ConsumerName = "storefront-portal"

	StateCatalogSeeded     = "catalog and inventory seeded"
	StateInventoryDepleted = "inventory exhausted for product mug"
	StateProductMissing    = "no product named ghost"
)

const (
	ExampleProduct  = "mug"
	MissingProduct  = "ghost"
	ExampleOwner    = "pact-user"
	ExampleQuantity = 2
	SeededCapacity  = 5
	ExamplePrice    = "10.00"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the storefront consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExamplePlacementPayload provides stable test data for placement interactions.
func ExamplePlacementPayload() map[string]any {
	return map[string]any{
		"productName": ExampleProduct,
		"quantity":    ExampleQuantity,
		"address":     "1 Pact Street",
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
