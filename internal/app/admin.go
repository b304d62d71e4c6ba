package app

import "greenlaunch/pkg/store"

// Overview returns platform-wide entity counts for the admin dashboard.
func (a *App) Overview() (store.Totals, error) {
	return a.store.Counts()
}
