// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the persistence layer for owners, sessions, vouchers and
voucher events.

Every voucher query carries the owner ID, so one seller can never read or
change another seller's vouchers.

# Transitions

Transition applies a guarded status change in one transaction:

	v, err := st.Transition(ctx, store.TransitionParams{
		OwnerID:   ownerID,
		VoucherID: id,
		Expected:  models.StatusUnused,
		Target:    models.StatusSent,
		CustomerName: "Nguyễn Văn A",
		Now:       time.Now(),
	})

The UPDATE is conditional on the expected status. When it changes no row
the voucher is re-read and the caller gets ErrNotFound or a
*StatusChangedError carrying the current status. Each successful change
appends a row to voucher_events.

# Imports

ImportVouchers runs csvio.PlanImport against the owner's existing codes and
inserts the accepted rows in the same transaction.
*/
package store
