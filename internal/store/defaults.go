package store

import "bukocash/internal/core"

// DefaultWallets returns the two wallets a fresh ledger starts with. At
// least one wallet must always exist, so a reset restores these.
func DefaultWallets() []core.Wallet {
	return []core.Wallet{
		{ID: "w1", Name: "Efectivo (Billetera)", Balance: 0, InitialBalance: 0, Currency: "USD", Kind: core.WalletCash},
		{ID: "w2", Name: "Cuenta de Nómina", Balance: 0, InitialBalance: 0, Currency: "USD", Kind: core.WalletDebit},
	}
}

// DefaultCategories returns the seeded category set for a fresh ledger.
func DefaultCategories() []core.Category {
	return []core.Category{
		{ID: "inc1", Name: "Nómina / Salario", Icon: "Briefcase", Color: "text-emerald-400", Type: core.Income},
		{ID: "inc2", Name: "Ventas Extra", Icon: "TrendingUp", Color: "text-teal-400", Type: core.Income},
		{ID: "inc3", Name: "Regalos / Otros", Icon: "Gift", Color: "text-slate-400", Type: core.Income},
		{ID: "exp1", Name: "Supermercado", Icon: "ShoppingCart", Color: "text-blue-400", Type: core.Expense},
		{ID: "exp2", Name: "Transporte / Gasolina", Icon: "Car", Color: "text-orange-400", Type: core.Expense},
		{ID: "exp3", Name: "Vivienda / Servicios", Icon: "Home", Color: "text-purple-400", Type: core.Expense},
		{ID: "exp4", Name: "Comida Fuera / UberEats", Icon: "Coffee", Color: "text-yellow-400", Type: core.Expense},
		{ID: "exp5", Name: "Suscripciones (Netflix/Spotify)", Icon: "Tv", Color: "text-indigo-400", Type: core.Expense},
		{ID: "exp6", Name: "Salud / Farmacia", Icon: "Heart", Color: "text-rose-500", Type: core.Expense},
		{ID: "exp7", Name: "Entretenimiento / Ocio", Icon: "Gamepad2", Color: "text-pink-400", Type: core.Expense},
		{ID: "exp8", Name: "Deudas / Préstamos", Icon: "CreditCard", Color: "text-slate-500", Type: core.Expense},
	}
}

// NewSnapshot returns the initial snapshot for a fresh ledger.
func NewSnapshot() Snapshot {
	return Snapshot{
		Version:    1,
		Wallets:    DefaultWallets(),
		Categories: DefaultCategories(),
	}
}
