package crawler

// task is one claimed URL waiting to be fetched.
type task struct {
	// url is the canonical URL to fetch.
	url string

	// depth is the link distance from the seed. The seed has depth 0.
	depth int

	// parent is the canonical URL of the page this URL was found on.
	// Empty for the seed.
	parent string
}

// frontier is the FIFO queue of claimed URLs waiting for a worker.
// It is owned by the coordinator goroutine and needs no locking.
type frontier struct {
	items []task
}

// push appends a task to the back of the queue.
func (f *frontier) push(t task) {
	f.items = append(f.items, t)
}

// next returns the task at the front of the queue without removing it.
// Callers must check empty() first.
func (f *frontier) next() task {
	return f.items[0]
}

// pop removes and returns the task at the front of the queue.
// Callers must check empty() first.
func (f *frontier) pop() task {
	t := f.items[0]
	f.items = f.items[1:]
	return t
}

// empty reports whether the queue holds no tasks.
func (f *frontier) empty() bool {
	return len(f.items) == 0
}

// len returns the number of queued tasks.
func (f *frontier) len() int {
	return len(f.items)
}

// clear drops all queued tasks.
// Used when the crawl is interrupted or the page cap is reached.
func (f *frontier) clear() {
	f.items = nil
}
