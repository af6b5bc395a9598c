package ecs

// borrowGuard enforces one exclusive view or any number of shared views.
// Violations panic with *BorrowError; there is no waiting.
type borrowGuard struct {
	target  string
	readers int
	writing bool
}

func (g *borrowGuard) acquireRead() {
	if g.writing {
		panic(&BorrowError{Target: g.target, Op: "already borrowed mutably"})
	}
	g.readers++
}

func (g *borrowGuard) releaseRead() {
	if g.readers == 0 {
		panic(&BorrowError{Target: g.target, Op: "release of unheld shared borrow"})
	}
	g.readers--
}

func (g *borrowGuard) acquireWrite() {
	if g.writing {
		panic(&BorrowError{Target: g.target, Op: "already borrowed mutably"})
	}
	if g.readers > 0 {
		panic(&BorrowError{Target: g.target, Op: "already borrowed"})
	}
	g.writing = true
}

func (g *borrowGuard) releaseWrite() {
	if !g.writing {
		panic(&BorrowError{Target: g.target, Op: "release of unheld exclusive borrow"})
	}
	g.writing = false
}

// busy reports whether any view is outstanding.
func (g *borrowGuard) busy() bool { return g.writing || g.readers > 0 }

// exclusive runs fn while holding s's write borrow, so structural changes
// never happen under an outstanding view.
func exclusive(s storage, fn func()) {
	g := s.guard()
	g.acquireWrite()
	defer g.releaseWrite()
	fn()
}
