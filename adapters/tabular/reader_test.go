package tabular

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"adinsight/domain/core"
	"adinsight/internal/adgen"
)

const csvHeader = "date,campaign_name,creative_type,platform,country,creative_message,spend,revenue,impressions,clicks,purchases,ctr,roas\n"

func writeTempCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "ads.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadParsesCSV(t *testing.T) {
	content := csvHeader +
		"2025-01-02,Spring_Sale,Video,Instagram,US,See it,100.50,402.00,40000,800,16,0.02,4.0\n" +
		"2025-01-01,Spring_Sale,Image,Facebook,US,Shop now,200.00,300.00,80000,800,10,0.01,1.5\n"
	path := writeTempCSV(t, content)

	ds, err := NewLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", ds.Len())
	}
	// Rows come back date-ordered regardless of file order.
	if ds.Rows[0].CreativeType != "Image" {
		t.Errorf("expected earliest row first, got %s", ds.Rows[0].CreativeType)
	}
	if ds.Rows[1].Spend != 100.50 || ds.Rows[1].ROAS != 4.0 {
		t.Errorf("unexpected parsed values %+v", ds.Rows[1])
	}
	// CPC column absent: derived as spend/clicks.
	if got := ds.Rows[0].CPC; got != 0.25 {
		t.Errorf("expected derived CPC 0.25, got %f", got)
	}
}

func TestLoadMissingColumns(t *testing.T) {
	path := writeTempCSV(t, "date,spend\n2025-01-01,100\n")

	_, err := NewLoader(nil).Load(context.Background(), path)
	if !core.IsDataLoadError(err) {
		t.Fatalf("expected data load error for missing columns, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := NewLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "absent.csv"))
	if !core.IsDataLoadError(err) {
		t.Fatalf("expected data load error for missing file, got %v", err)
	}
}

func TestLoadRejectsMalformedNumber(t *testing.T) {
	content := csvHeader +
		"2025-01-01,Spring_Sale,Video,Instagram,US,See it,not-a-number,400,40000,800,16,0.02,4.0\n"
	path := writeTempCSV(t, content)

	_, err := NewLoader(nil).Load(context.Background(), path)
	if !core.IsDataLoadError(err) {
		t.Fatalf("expected data load error for malformed number, got %v", err)
	}
}

func TestLoadRejectsUnparseableDate(t *testing.T) {
	content := csvHeader +
		"January 1st,Spring_Sale,Video,Instagram,US,See it,100,400,40000,800,16,0.02,4.0\n"
	path := writeTempCSV(t, content)

	_, err := NewLoader(nil).Load(context.Background(), path)
	if !core.IsDataLoadError(err) {
		t.Fatalf("expected data load error for bad date, got %v", err)
	}
}

func TestLoadReadsGeneratedWorkbook(t *testing.T) {
	cfg := adgen.DefaultConfig()
	cfg.Days = 3
	ds, err := adgen.Generate(cfg)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	path := filepath.Join(t.TempDir(), "ads.xlsx")
	if err := adgen.WriteXLSX(path, ds); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}

	loaded, err := NewLoader(nil).Load(context.Background(), path)
	if err != nil {
		t.Fatalf("load xlsx: %v", err)
	}
	if loaded.Len() != ds.Len() {
		t.Errorf("expected %d rows, got %d", ds.Len(), loaded.Len())
	}
}
