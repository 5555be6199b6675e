package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"billing/internal/domain"

	"github.com/shopspring/decimal"
)

type harness struct {
	t   *testing.T
	dir string
}

func newHarness(t *testing.T) harness {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range []string{"DB_PATH", "DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "LOG_OUTPUT", "CURRENCY_SYMBOL", "HTTP_ADDR"} {
		t.Setenv(key, "")
	}
	return harness{t: t, dir: dir}
}

func (h harness) run(args ...string) (string, error) {
	h.t.Helper()
	root, a := newRootCommand()
	defer a.Close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--db", filepath.Join(h.dir, "shop.db"), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func (h harness) mustRun(args ...string) string {
	h.t.Helper()
	out, err := h.run(args...)
	if err != nil {
		h.t.Fatalf("billing %s: %v\n%s", strings.Join(args, " "), err, out)
	}
	return out
}

func TestParseLine(t *testing.T) {
	line, err := parseLine("Tea: Assam:3:12.50")
	if err != nil {
		t.Fatalf("parseLine: %v", err)
	}
	if line.Name != "Tea: Assam" || line.Quantity != 3 || !line.Price.Equal(decimal.RequireFromString("12.5")) {
		t.Fatalf("line = %+v", line)
	}

	for _, raw := range []string{"Tea", "Tea:3", ":3:1", "Tea:x:1", "Tea:1:abc"} {
		if _, err := parseLine(raw); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("parseLine(%q) err = %v", raw, err)
		}
	}
}

func TestBillWorkflow(t *testing.T) {
	h := newHarness(t)

	h.mustRun("product", "add", "Widget", "--stock", "3", "--cost", "4", "--sale", "10")

	out := h.mustRun("bill", "add", "--party", "Asha", "--item", "Widget:5:10")
	if !strings.Contains(out, "created Sale bill #1") || !strings.Contains(out, "warning: Widget: requested 5, available 3") {
		t.Fatalf("bill add output:\n%s", out)
	}

	out = h.mustRun("bill", "add", "--kind", "purchase", "--party", "Supplier", "--item", "Widget:10:3", "--item", "Gadget:2:1")
	if !strings.Contains(out, "created Purchase bill #1") || !strings.Contains(out, "new item added to inventory: Gadget") {
		t.Fatalf("purchase output:\n%s", out)
	}

	out = h.mustRun("product", "list")
	if !strings.Contains(out, "Widget") || !strings.Contains(out, "8") {
		t.Fatalf("product list:\n%s", out)
	}

	out = h.mustRun("bill", "list", "--kind", "sale")
	if !strings.Contains(out, "Asha") || strings.Contains(out, "Supplier") {
		t.Fatalf("bill list:\n%s", out)
	}

	out = h.mustRun("bill", "edit", "1", "--party", "Asha", "--item", "Widget:1:10")
	if !strings.Contains(out, "updated Sale bill #1") {
		t.Fatalf("edit output:\n%s", out)
	}

	out = h.mustRun("report", "sales")
	if !strings.Contains(out, "Total profit: Rs. 6.00") {
		t.Fatalf("sales report:\n%s", out)
	}

	h.mustRun("bill", "delete", "1")
	if _, err := h.run("bill", "show", "1"); err == nil {
		t.Fatal("deleted bill should not be found")
	}

	out = h.mustRun("bill", "add", "--party", "Asha", "--item", "Widget:1:10")
	if !strings.Contains(out, "created Sale bill #2") {
		t.Fatalf("sequence reused after delete:\n%s", out)
	}
}

func TestExportAndPDF(t *testing.T) {
	h := newHarness(t)
	h.mustRun("profile", "set", "--name", "Corner Store", "--phone", "555")
	h.mustRun("bill", "add", "--party", "Asha", "--item", "Widget:2:10")

	out := h.mustRun("profile", "show")
	if !strings.Contains(out, "Corner Store") || !strings.Contains(out, "555") {
		t.Fatalf("profile:\n%s", out)
	}

	out = h.mustRun("bill", "pdf", "1")
	if !strings.Contains(out, "Invoice_Sale_1.pdf") {
		t.Fatalf("pdf output:\n%s", out)
	}
	raw, err := os.ReadFile(filepath.Join(h.dir, "Invoice_Sale_1.pdf"))
	if err != nil || !bytes.HasPrefix(raw, []byte("%PDF")) {
		t.Fatalf("pdf file: %v", err)
	}

	h.mustRun("export", "inventory", "-o", "stock.xlsx")
	out = h.mustRun("import", "stock.xlsx")
	if !strings.Contains(out, "imported 1 rows: 0 created, 1 updated") {
		t.Fatalf("import output:\n%s", out)
	}

	if _, err := h.run("export", "customers", "--from", "1990-01-01", "--to", "1990-01-31", "-o", "empty.xlsx"); err == nil {
		t.Fatal("empty export should fail")
	}
	if _, err := os.Stat(filepath.Join(h.dir, "empty.xlsx")); !os.IsNotExist(err) {
		t.Fatalf("failed export left a file behind: %v", err)
	}
}
