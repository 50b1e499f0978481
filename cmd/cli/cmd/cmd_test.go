package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestCalcJSON(t *testing.T) {
	out, err := run(t, "calc",
		"--revenue", "20000000", "--cost", "12000000",
		"--tier", "starter_pro", "--rate", "3", "--size", "medium",
		"--format", "json")
	if err != nil {
		t.Fatalf("calc failed: %v\n%s", err, out)
	}
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if result["partner_final_profit"] != "-706000" {
		t.Errorf("expected -706000, got %v", result["partner_final_profit"])
	}
}

func TestCalcRejectsBadNumber(t *testing.T) {
	if _, err := run(t, "calc", "--revenue", "lots", "--tier", "starter_pro", "--rate", "3"); err == nil {
		t.Fatal("expected an error")
	}
}

func TestSummaryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sales.yaml")
	data := `
tier_id: business_standard
lines:
  - marketplace: uzum
    sales_revenue: 10000000
    product_cost: 4000000
    quantity: 10
    category: clothing
    logistics_size: small
  - marketplace: ozon
    sales_revenue: 5000000
    product_cost: 2000000
    quantity: 5
    marketplace_commission_rate: 12
    logistics_size: medium
`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "summary", path, "--format", "json")
	if err != nil {
		t.Fatalf("summary failed: %v\n%s", err, out)
	}
	var summary map[string]interface{}
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, out)
	}
	if summary["monthly_fee"] != "5000000" {
		t.Errorf("expected monthly fee 5000000, got %v", summary["monthly_fee"])
	}
}
