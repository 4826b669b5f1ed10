// Package fingerprint derives content-based identities for located matches so
// that one run never processes the same physical occurrence twice.
package fingerprint

import (
	"fmt"

	"golang.org/x/text/unicode/norm"

	"github.com/f4ah6o/docstyler-go/internal/host"
)

const (
	DefaultBefore = 10
	DefaultAfter  = 20
)

// Windows bounds how much context goes into a fingerprint, in runes.
type Windows struct {
	Before int
	After  int
}

// DefaultWindows returns the 10 before / 20 after windows.
func DefaultWindows() Windows {
	return Windows{Before: DefaultBefore, After: DefaultAfter}
}

// Fingerprint identifies an occurrence by the text around it. Collisions are
// possible in documents with repeated short context.
type Fingerprint struct {
	Before string
	Offset int
	After  string
}

func (f Fingerprint) String() string {
	return fmt.Sprintf("%q@%d%q", f.Before, f.Offset, f.After)
}

// Of fingerprints the match starting at r using the text of its enclosing
// container. The after window starts at the match itself.
func Of(in host.Inspector, r host.Range, w Windows) (Fingerprint, error) {
	c, err := in.ContainerAt(r)
	if err != nil {
		return Fingerprint{}, fmt.Errorf("failed to read container: %w", err)
	}
	return FromContainer(c, w), nil
}

// FromContainer builds the fingerprint for the position c.Offset inside
// c.Text. Both windows are NFC normalized.
func FromContainer(c host.Container, w Windows) Fingerprint {
	runes := []rune(c.Text)
	off := min(max(c.Offset, 0), len(runes))

	lo := max(off-max(w.Before, 0), 0)
	hi := min(off+max(w.After, 0), len(runes))

	return Fingerprint{
		Before: norm.NFC.String(string(runes[lo:off])),
		Offset: off,
		After:  norm.NFC.String(string(runes[off:hi])),
	}
}

// Ledger is the set of fingerprints seen during one run. The zero value is
// ready to use. It is owned by a single run and not safe for concurrent use.
type Ledger struct {
	seen map[Fingerprint]struct{}
}

// Seen reports whether fp was recorded before.
func (l *Ledger) Seen(fp Fingerprint) bool {
	_, ok := l.seen[fp]
	return ok
}

// Record adds fp to the ledger.
func (l *Ledger) Record(fp Fingerprint) {
	if l.seen == nil {
		l.seen = make(map[Fingerprint]struct{})
	}
	l.seen[fp] = struct{}{}
}

// Len returns the number of distinct fingerprints recorded.
func (l *Ledger) Len() int { return len(l.seen) }
