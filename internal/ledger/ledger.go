// Package ledger implements the pure balance arithmetic of the wallet
// ledger: mapping a transaction to signed per-wallet deltas and applying or
// reverting its effect on a wallet set.
//
// Every function here is snapshot-in/snapshot-out over value slices, so the
// caller (the entity store) composes them without synchronization and an
// edit is always revert-old followed by apply-new in one logical step.
package ledger

import "bukocash/internal/core"

// Impact returns the signed effect a transaction has on the given wallet.
//
// Transfers debit the origin and credit the destination; income credits the
// origin; expenses debit it. Wallets not referenced by the transaction have
// zero impact.
func Impact(tx core.Transaction, walletID string) float64 {
	switch tx.Type {
	case core.Transfer:
		if tx.WalletID == walletID {
			return -tx.Amount
		}
		if tx.TransferToWalletID == walletID {
			return tx.Amount
		}
	case core.Income:
		if tx.WalletID == walletID {
			return tx.Amount
		}
	case core.Expense:
		if tx.WalletID == walletID {
			return -tx.Amount
		}
	}
	return 0
}

// Apply returns a new wallet set with the transaction's impact added to each
// affected balance. Balances are sanitized after the addition; unaffected
// wallets are carried over unchanged.
func Apply(wallets []core.Wallet, tx core.Transaction) []core.Wallet {
	return shift(wallets, tx, 1)
}

// Revert returns a new wallet set with the transaction's impact subtracted.
// It is the exact inverse of Apply for the same transaction: amounts are
// cent-quantized, so Revert(Apply(w, tx), tx) restores w exactly.
func Revert(wallets []core.Wallet, tx core.Transaction) []core.Wallet {
	return shift(wallets, tx, -1)
}

func shift(wallets []core.Wallet, tx core.Transaction, sign float64) []core.Wallet {
	out := make([]core.Wallet, len(wallets))
	for i, w := range wallets {
		impact := Impact(tx, w.ID)
		if impact != 0 {
			w.Balance = core.Sanitize(w.Balance + sign*impact)
		}
		out[i] = w
	}
	return out
}

// Recompute derives a wallet's balance from scratch: initial balance plus
// the impact of every transaction, sanitized step by step. Used only for
// integrity checks, never to maintain the running balance.
func Recompute(w core.Wallet, transactions []core.Transaction) float64 {
	balance := core.Sanitize(w.InitialBalance)
	for _, tx := range transactions {
		if impact := Impact(tx, w.ID); impact != 0 {
			balance = core.Sanitize(balance + impact)
		}
	}
	return balance
}
