package gossip

// Statement is an immutable ledger entry. Source == Speaker for direct
// statements; for indirect ones Predicate == Listener.
type Statement struct {
	Seq       int
	Turn      int
	Speaker   int
	Listener  int
	Source    int
	Predicate int
	Level     int
}

func (s Statement) Direct() bool { return s.Source == s.Speaker }

type testimonyKey struct {
	listener, source, predicate int
}

// ledger is the append-only statement history. The index keeps lookups by
// {listener, source, predicate} off the full scan.
type ledger struct {
	entries []Statement
	index   map[testimonyKey][]int
}

func newLedger() *ledger {
	return &ledger{index: make(map[testimonyKey][]int)}
}

func (l *ledger) append(s Statement) Statement {
	s.Seq = len(l.entries)
	l.entries = append(l.entries, s)
	k := testimonyKey{s.Listener, s.Source, s.Predicate}
	l.index[k] = append(l.index[k], s.Seq)
	return s
}

func (l *ledger) len() int { return len(l.entries) }

// testimony returns every entry heard by listener from source about
// predicate, oldest first.
func (l *ledger) testimony(listener, source, predicate int) []Statement {
	seqs := l.index[testimonyKey{listener, source, predicate}]
	out := make([]Statement, 0, len(seqs))
	for _, seq := range seqs {
		out = append(out, l.entries[seq])
	}
	return out
}

// recency returns how many entries ago speaker last told listener about
// predicate (1 = most recent). No match, or a match only at the first entry,
// yields len. An empty ledger yields 0.
func (l *ledger) recency(speaker, listener, predicate int) int {
	n := len(l.entries)
	for i := n - 1; i > 0; i-- {
		e := l.entries[i]
		if e.Speaker == speaker && e.Listener == listener && (predicate == Anybody || e.Predicate == predicate) {
			return n - i
		}
	}
	return n
}

// since returns a copy of the entries with Seq >= from.
func (l *ledger) since(from int) []Statement {
	if from < 0 {
		from = 0
	}
	if from >= len(l.entries) {
		return nil
	}
	return append([]Statement{}, l.entries[from:]...)
}
