package methodref

import (
	"sync"

	"github.com/heshanpadmasiri/lambdaref/java"
)

// bindings associates speculative method references with the functional
// type they are checked against. Each reference is its own key, so
// concurrent analyses never see each other's entries.
type bindings struct {
	mu      sync.RWMutex
	targets map[*java.MethodRef]java.Type
}

func newBindings() *bindings {
	return &bindings{targets: make(map[*java.MethodRef]java.Type)}
}

// bind registers ref's target type and returns the function that removes it
func (b *bindings) bind(ref *java.MethodRef, target java.Type) func() {
	b.mu.Lock()
	b.targets[ref] = target
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		delete(b.targets, ref)
		b.mu.Unlock()
	}
}

// TargetType implements java.TargetTypes
func (b *bindings) TargetType(ref *java.MethodRef) (java.Type, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.targets[ref]
	return t, ok
}

func (b *bindings) size() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.targets)
}
