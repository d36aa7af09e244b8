package db

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// tableColumns returns the column definitions of table keyed by column name.
func tableColumns(t *testing.T, file, table string) map[string]string {
	t.Helper()
	data, err := embeddedMigrations.ReadFile("migrations/" + file)
	require.NoError(t, err)

	_, body, ok := strings.Cut(string(data), "CREATE TABLE IF NOT EXISTS "+table+" (")
	require.True(t, ok, "table %s not found in %s", table, file)
	body, _, ok = strings.Cut(body, ");")
	require.True(t, ok)

	cols := map[string]string{}
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		name, def, _ := strings.Cut(line, " ")
		cols[name] = def
	}
	return cols
}

func TestPaymentInvoiceLinkIsWeak(t *testing.T) {
	cols := tableColumns(t, "000001_init.up.sql", "payments")

	require.Contains(t, cols, "invoice_id")
	require.NotContains(t, cols["invoice_id"], "REFERENCES")
	require.Contains(t, cols["client_id"], "REFERENCES clients(id)")
}

func TestContactsFollowTheirParty(t *testing.T) {
	for table, parent := range map[string]string{"client_contacts": "clients", "vendor_contacts": "vendors"} {
		cols := tableColumns(t, "000003_contacts_details.up.sql", table)
		owner := strings.TrimSuffix(parent, "s") + "_id"
		require.Contains(t, cols[owner], "REFERENCES "+parent+"(id) ON DELETE CASCADE", table)
	}

	details := tableColumns(t, "000003_contacts_details.up.sql", "payment_details")
	require.Contains(t, details["payment_id"], "ON DELETE CASCADE")
	require.Contains(t, details["client_id"], "REFERENCES clients(id)")
}
