package keyedmutex

import "sync"

// KeyedMutex serializa operaciones por agregado (p.ej. por macho en el
// calendario, por plan en el ciclo de nacimiento). Los locks no se liberan
// del map: el cardinal de agregados es pequeño y acotado por el catálogo.
type KeyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New() *KeyedMutex {
	return &KeyedMutex{locks: map[string]*sync.Mutex{}}
}

// Lock toma el lock de la clave y devuelve el unlock.
func (k *KeyedMutex) Lock(key string) func() {
	k.mu.Lock()
	m, ok := k.locks[key]
	if !ok {
		m = &sync.Mutex{}
		k.locks[key] = m
	}
	k.mu.Unlock()

	m.Lock()
	return m.Unlock
}
