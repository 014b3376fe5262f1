package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/focustank/internal/catalog"
	"github.com/dmitrijs2005/focustank/internal/collection"
	"github.com/dmitrijs2005/focustank/internal/common"
	"github.com/dmitrijs2005/focustank/internal/filex"
)

// shortID is how many id characters the listings print. Any unambiguous
// prefix is accepted back.
const shortID = 8

var errAmbiguousID = errors.New("ambiguous id prefix")

// Tank lists the visible items.
func (a *App) Tank(ctx context.Context) error {
	items := a.store.Visible()
	fmt.Fprintf(a.out, "Tank %d/%d\n", len(items), a.store.Capacity())
	a.printItems(items)
	return nil
}

// Hidden lists the items kept in storage.
func (a *App) Hidden(ctx context.Context) error {
	items := a.store.Hidden()
	fmt.Fprintf(a.out, "Storage: %d items\n", len(items))
	a.printItems(items)
	return nil
}

func (a *App) printItems(items []collection.CollectedItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "  (empty)")
		return
	}
	for _, it := range items {
		id := it.ID
		if len(id) > shortID {
			id = id[:shortID]
		}
		mark := ""
		if it.Exceptional {
			mark = " *"
		}
		fmt.Fprintf(a.out, "  %s  %-20s %-9s %-6s%s\n", id, it.Name, it.Rarity, it.Size, mark)
	}
}

// Info prints one item in full.
func (a *App) Info(ctx context.Context, args []string) error {
	it, err := a.lookup(args)
	if err != nil {
		return err
	}
	where := "storage"
	if it.Visible {
		where = "tank"
	}
	fmt.Fprintf(a.out, "%s\n  id:        %s\n  species:   %s\n  rarity:    %s\n  size:      %s\n  caught:    %s\n  location:  %s\n",
		it.Name, it.ID, it.ItemID, it.Rarity, it.Size, it.CaughtAt.Local().Format(time.DateTime), where)
	if it.Exceptional {
		fmt.Fprintln(a.out, "  exceptional catch")
	}
	return nil
}

// Show moves an item from storage into the tank.
func (a *App) Show(ctx context.Context, args []string) error {
	return a.setVisible(ctx, args, true)
}

// Hide moves an item from the tank into storage.
func (a *App) Hide(ctx context.Context, args []string) error {
	return a.setVisible(ctx, args, false)
}

func (a *App) setVisible(ctx context.Context, args []string, visible bool) error {
	it, err := a.lookup(args)
	if err != nil {
		return err
	}
	err = a.store.SetVisible(ctx, it.ID, visible)
	if errors.Is(err, common.ErrCapacityExceeded) {
		return fmt.Errorf("the tank holds %d items, hide one first", a.store.Capacity())
	}
	return err
}

// Rename sets a custom name: rename <id> <name...>.
func (a *App) Rename(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: rename <id> <name>")
	}
	it, err := a.lookup(args[:1])
	if err != nil {
		return err
	}
	return a.store.Rename(ctx, it.ID, strings.Join(args[1:], " "))
}

// Remove releases an item for good.
func (a *App) Remove(ctx context.Context, args []string) error {
	it, err := a.lookup(args)
	if err != nil {
		return err
	}
	if err := a.store.Remove(ctx, it.ID); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Released %s.\n", it.Name)
	return nil
}

// Export writes the whole collection as JSON, to args[0] or to stdout.
func (a *App) Export(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return a.store.Export(a.out)
	}

	var b bytes.Buffer
	if err := a.store.Export(&b); err != nil {
		return err
	}
	if err := filex.WriteFileAtomic(args[0], b.Bytes()); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Exported %d items to %s\n", a.store.Len(), args[0])
	return nil
}

// Stats prints lifetime counters and the collection breakdown.
func (a *App) Stats(ctx context.Context) error {
	st, err := a.focusService.Stats(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Focused for %s, %d items caught\n", st.TotalFocus, st.ItemsCaught)
	fmt.Fprintf(a.out, "Tank %d/%d, storage %d\n", st.Visible, st.Capacity, st.Hidden)
	for _, r := range catalog.Rarities() {
		fmt.Fprintf(a.out, "  %-9s %d\n", r, st.Counts[r])
	}
	if st.LastSync.IsZero() {
		fmt.Fprintln(a.out, "Never synced")
	} else {
		fmt.Fprintf(a.out, "Last sync %s\n", st.LastSync.Local().Format(time.DateTime))
	}
	return nil
}

// lookup resolves args[0] as a full id or an unambiguous id prefix.
func (a *App) lookup(args []string) (collection.CollectedItem, error) {
	if len(args) == 0 || args[0] == "" {
		return collection.CollectedItem{}, errors.New("an item id is required")
	}
	if it, ok := a.store.Get(args[0]); ok {
		return it, nil
	}

	var (
		found collection.CollectedItem
		n     int
	)
	for _, it := range a.store.All() {
		if strings.HasPrefix(it.ID, args[0]) {
			found = it
			n++
		}
	}
	switch n {
	case 0:
		return collection.CollectedItem{}, fmt.Errorf("%w: %s", common.ErrNotFound, args[0])
	case 1:
		return found, nil
	default:
		return collection.CollectedItem{}, fmt.Errorf("%w: %s", errAmbiguousID, args[0])
	}
}
