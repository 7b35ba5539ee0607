package inventory

import (
	"errors"
	"fmt"
	"sync"
)

// Default backpack limits for a new player.
const (
	DefaultBackpackSlots  = 24
	DefaultBackpackWeight = 250
)

var (
	// ErrBackpackFull is returned when no slot is free.
	ErrBackpackFull = errors.New("backpack: no free slot")
	// ErrOverweight is returned when an item would exceed the weight limit.
	ErrOverweight = errors.New("backpack: weight limit exceeded")
)

// ItemInstance is one picked-up item. InstanceID is the ID the item had in
// its zone.
type ItemInstance struct {
	InstanceID string
	ItemDefID  string
	Name       string
	Weight     float64
	Value      float64
}

// Backpack is a container with slot and weight limits. It is safe for
// concurrent use.
type Backpack struct {
	MaxSlots  int
	MaxWeight float64

	mu    sync.Mutex
	items []ItemInstance
}

// NewBackpack creates a Backpack with the given limits.
//
// Precondition: maxSlots >= 0 and maxWeight >= 0.
// Postcondition: returned Backpack has zero items and the specified limits.
func NewBackpack(maxSlots int, maxWeight float64) *Backpack {
	return &Backpack{
		MaxSlots:  maxSlots,
		MaxWeight: maxWeight,
	}
}

// Add places inst in the backpack. It is atomic: if a limit would be
// exceeded, no state is modified.
//
// Precondition: inst.InstanceID is non-empty.
// Postcondition: on success the item is stored and limits still hold; the
// returned error wraps ErrBackpackFull or ErrOverweight on refusal.
func (b *Backpack) Add(inst ItemInstance) error {
	if inst.InstanceID == "" {
		return errors.New("backpack: instance ID must not be empty")
	}
	if inst.Weight < 0 {
		return fmt.Errorf("backpack: %q has negative weight %v", inst.InstanceID, inst.Weight)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, it := range b.items {
		if it.InstanceID == inst.InstanceID {
			return fmt.Errorf("backpack: %q already packed", inst.InstanceID)
		}
	}
	if len(b.items) >= b.MaxSlots {
		return fmt.Errorf("%w: %d of %d slots used", ErrBackpackFull, len(b.items), b.MaxSlots)
	}
	current := b.totalWeight()
	if current+inst.Weight > b.MaxWeight {
		return fmt.Errorf("%w: adding %q (%.2f + %.2f > %.2f)",
			ErrOverweight, inst.Name, current, inst.Weight, b.MaxWeight)
	}
	b.items = append(b.items, inst)
	return nil
}

// Remove takes the instance out of the backpack.
//
// Postcondition: Returns the removed item, or an error if it is not packed.
func (b *Backpack) Remove(instanceID string) (ItemInstance, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].InstanceID == instanceID {
			inst := b.items[i]
			b.items = append(b.items[:i], b.items[i+1:]...)
			return inst, nil
		}
	}
	return ItemInstance{}, fmt.Errorf("backpack: instance %q not found", instanceID)
}

// Items returns a snapshot copy of all items in pickup order.
func (b *Backpack) Items() []ItemInstance {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]ItemInstance, len(b.items))
	copy(out, b.items)
	return out
}

// UsedSlots returns the number of occupied slots.
func (b *Backpack) UsedSlots() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// TotalWeight returns the summed weight of every item.
//
// Postcondition: result >= 0 and <= MaxWeight.
func (b *Backpack) TotalWeight() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalWeight()
}

func (b *Backpack) totalWeight() float64 {
	var total float64
	for _, it := range b.items {
		total += it.Weight
	}
	return total
}

// TotalValue returns the summed value of every item.
func (b *Backpack) TotalValue() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	var total float64
	for _, it := range b.items {
		total += it.Value
	}
	return total
}

// FindByItemDefID returns all instances of the given item definition.
//
// Postcondition: returned slice is a copy.
func (b *Backpack) FindByItemDefID(itemDefID string) []ItemInstance {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []ItemInstance
	for _, inst := range b.items {
		if inst.ItemDefID == itemDefID {
			out = append(out, inst)
		}
	}
	return out
}
