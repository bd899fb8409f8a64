package cache

// node is an entry of the intrusive LRU list.
type node[K comparable, V any] struct {
	key   K
	value V
	prev  *node[K, V]
	next  *node[K, V]
}

// lruList orders nodes by recency: head is the most recently used, tail the
// least. It is not thread-safe; the owning Cache holds the lock.
type lruList[K comparable, V any] struct {
	head *node[K, V]
	tail *node[K, V]
	len  int
}

func (l *lruList[K, V]) pushFront(n *node[K, V]) {
	n.prev = nil
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

func (l *lruList[K, V]) remove(n *node[K, V]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}

func (l *lruList[K, V]) moveToFront(n *node[K, V]) {
	if n == l.head {
		return
	}
	l.remove(n)
	l.pushFront(n)
}
