// Package export renders the transaction history in the fixed CSV exchange
// format: localized Spanish headers, quoted text fields with doubled inner
// quotes, unsigned two-decimal amounts. The column order and header row are
// a byte-exact contract with downstream consumers.
package export

import (
	"strings"

	"bukocash/internal/core"
)

// Placeholder category names for rows without a real category.
const (
	transferCategory = "Transferencia Interna"
	noCategory       = "Sin Categoría"
	unknownWallet    = "Desconocido"
)

var headers = []string{
	"Fecha", "Tipo", "Descripción", "Categoría", "Monto", "Moneda",
	"Cuenta (Origen)", "Cuenta (Destino)", "Es Negocio", "Es Recurrente",
}

// CSV renders the transactions in the export format, one row per
// transaction in the given order, preceded by the fixed header row.
func CSV(transactions []core.Transaction, wallets []core.Wallet, categories []core.Category) string {
	walletsByID := make(map[string]core.Wallet, len(wallets))
	for _, w := range wallets {
		walletsByID[w.ID] = w
	}
	categoriesByID := make(map[string]core.Category, len(categories))
	for _, c := range categories {
		categoriesByID[c.ID] = c
	}

	lines := make([]string, 0, len(transactions)+1)
	lines = append(lines, strings.Join(headers, ","))

	for _, tx := range transactions {
		lines = append(lines, row(tx, walletsByID, categoriesByID))
	}
	return strings.Join(lines, "\n")
}

func row(tx core.Transaction, wallets map[string]core.Wallet, categories map[string]core.Category) string {
	origin, hasOrigin := wallets[tx.WalletID]

	originName := unknownWallet
	currency := "USD"
	if hasOrigin {
		originName = origin.Name
		currency = origin.Currency
	}

	destName := ""
	if tx.TransferToWalletID != "" {
		if dest, ok := wallets[tx.TransferToWalletID]; ok {
			destName = dest.Name
		}
	}

	categoryName := noCategory
	if tx.Type == core.Transfer {
		categoryName = transferCategory
	}
	if c, ok := categories[tx.CategoryID]; ok {
		categoryName = c.Name
	}

	fields := []string{
		quote(tx.Date.UTC().Format(core.DateFormat)),
		quote(typeLabel(tx.Type)),
		quote(tx.Description),
		quote(categoryName),
		core.FormatAmount(tx.Amount),
		currency,
		quote(originName),
		quote(destName),
		flag(tx.IsBusiness),
		flag(tx.IsRecurring),
	}
	return strings.Join(fields, ",")
}

func typeLabel(t core.TransactionType) string {
	switch t {
	case core.Income:
		return "INGRESO"
	case core.Expense:
		return "GASTO"
	default:
		return "TRANSFERENCIA"
	}
}

// quote wraps a text field in double quotes, doubling any inner quotes.
func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func flag(b bool) string {
	if b {
		return "SI"
	}
	return "NO"
}
