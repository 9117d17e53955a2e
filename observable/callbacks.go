package observable

func (c *callbacks[T]) add(fn Handler[T]) Handle {
	if fn == nil {
		return InvalidHandle
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.nextHandle++
	h := c.nextHandle
	c.entries = append(c.entries, callback[T]{fn: fn, handle: h})
	return h
}

func (c *callbacks[T]) remove(h Handle) {
	if h == InvalidHandle {
		return
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i := range c.entries {
		if c.entries[i].handle == h {
			c.entries = append(c.entries[:i:i], c.entries[i+1:]...)
			return
		}
	}
}

func (c *callbacks[T]) len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return len(c.entries)
}

// lookup returns the handler currently registered under h, if any.
func (c *callbacks[T]) lookup(h Handle) Handler[T] {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for _, cb := range c.entries {
		if cb.handle == h {
			return cb.fn
		}
	}
	return nil
}

// dispatch calls every registered handler with ch. The registry lock is
// not held while a handler runs: handlers may subscribe or unsubscribe,
// and a handler removed during dispatch is not called afterwards.
func (c *callbacks[T]) dispatch(ch Change[T]) {
	c.mutex.Lock()
	handles := make([]Handle, len(c.entries))
	for i, cb := range c.entries {
		handles[i] = cb.handle
	}
	c.mutex.Unlock()

	for _, h := range handles {
		if fn := c.lookup(h); fn != nil {
			fn(ch)
		}
	}
}
