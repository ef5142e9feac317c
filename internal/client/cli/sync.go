package cli

import (
	"context"
	"fmt"
	"time"
)

func (a *App) Sync(ctx context.Context) error {
	result, err := a.sync.Sync(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Sync %s: uploaded %d, downloaded %d, rejected %d.\n",
		result.Status, result.Uploaded, result.Downloaded, result.Rejected)
	return nil
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.sync.Status(ctx)
	if err != nil {
		return err
	}
	if st.LoggedIn {
		fmt.Println("Logged in.")
	} else {
		fmt.Println("Not logged in.")
	}
	if st.LastSyncTime.IsZero() {
		fmt.Println("Never synced.")
	} else {
		fmt.Printf("Last sync: %s\n", st.LastSyncTime.Local().Format(time.RFC1123))
	}
	fmt.Printf("Pending local changes: %d\n", st.PendingLocal)
	return nil
}
