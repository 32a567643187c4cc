package keyedlock

import "sync"

// Arena 按 key 互斥的锁仲裁器
// 同一个 key 的临界区串行执行，不同 key 完全并行。
// 锁对象按引用计数回收，长时间运行不会积累已失效 key 的锁
type Arena struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New 创建锁仲裁器
func New() *Arena {
	return &Arena{locks: make(map[string]*entry)}
}

// Lock 获取 key 对应的互斥锁
func (a *Arena) Lock(key string) {
	a.mu.Lock()
	e, ok := a.locks[key]
	if !ok {
		e = &entry{}
		a.locks[key] = e
	}
	e.refs++
	a.mu.Unlock()

	e.mu.Lock()
}

// Unlock 释放 key 对应的互斥锁
// 没有等待者时回收锁对象
func (a *Arena) Unlock(key string) {
	a.mu.Lock()
	e, ok := a.locks[key]
	if !ok {
		a.mu.Unlock()
		panic("keyedlock: unlock of unheld key " + key)
	}
	e.refs--
	if e.refs == 0 {
		delete(a.locks, key)
	}
	a.mu.Unlock()

	e.mu.Unlock()
}
